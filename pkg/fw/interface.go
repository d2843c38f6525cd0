package fw

import (
	"github.com/pkg/errors"

	"github.com/trustwall/trustwall/pkg/rules/types"
)

// ErrPipeNotFound is returned by PipeShow when the requested pipe is not
// configured in the engine
var ErrPipeNotFound = errors.New("pipe not found")

// FW defines an interface to interact with the packet filter engine.
// An implementation drives one engine instance; it is the only contact
// point between this module and the underlying filter.
type FW interface {
	// Flush removes every rule, pipe and queue from the engine
	Flush() error

	// RuleAdd installs the specified rule
	RuleAdd(rule *types.Rule) error

	// PipeConfigure creates or reconfigures the specified pipe
	PipeConfigure(pipe *types.PipeConfig) error
	// QueueConfigure creates or reconfigures the specified queue
	QueueConfigure(queue *types.QueueConfig) error

	// PipeShow returns the current configuration of the pipe identified
	// by id, or ErrPipeNotFound if the engine has no such pipe
	PipeShow(id uint32) (*types.PipeConfig, error)
}
