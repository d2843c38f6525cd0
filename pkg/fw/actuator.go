package fw

import (
	"github.com/trustwall/trustwall/pkg/rules"
)

// Actuator is an interface that applies a compiled rule Program
type Actuator interface {
	// Actuate applies the provided Program
	Actuate(program *rules.Program) error
}
