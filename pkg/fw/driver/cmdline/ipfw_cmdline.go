// Package cmdline drives the packet filter engine through its command line
// utility. It is the only place engine output is parsed.
package cmdline

import (
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	"github.com/trustwall/trustwall/pkg/fw"
	"github.com/trustwall/trustwall/pkg/rules/types"
)

// NewIpfwCmdLineImpl creates a new instance of IpfwCmdLineImpl
func NewIpfwCmdLineImpl(log klog.Logger, executor exec.Interface) *IpfwCmdLineImpl {
	return &IpfwCmdLineImpl{
		log:      log,
		executor: executor,
		cmdline:  "ipfw",
		options:  []string{"-q"},
	}
}

// IpfwCmdLineImpl is a concrete implementation of FW interface utilizing the
// ipfw command line
type IpfwCmdLineImpl struct {
	log      klog.Logger
	executor exec.Interface

	cmdline string
	options []string
}

// execCmdNoOutput executes the engine command with args, returning error if occurred
func (i *IpfwCmdLineImpl) execCmdNoOutput(args []string) error {
	finalArgs := append(i.options, args...)
	i.log.V(10).Info("executing", "cmd", i.cmdline, "args", finalArgs)
	cmd := i.executor.Command(i.cmdline, finalArgs...)
	err := cmd.Run()
	i.log.V(10).Info("exec result", "err", err)
	return err
}

// execCmd executes the engine command with args, returning stdout output and error
func (i *IpfwCmdLineImpl) execCmd(args []string) ([]byte, error) {
	finalArgs := append(i.options, args...)
	i.log.V(10).Info("executing", "cmd", i.cmdline, "args", finalArgs)
	cmd := i.executor.Command(i.cmdline, finalArgs...)
	out, err := cmd.Output()
	i.log.V(10).Info("exec result", "err", err, "out", out)
	return out, err
}

// Flush implements FW interface. -f suppresses the interactive confirmation.
func (i *IpfwCmdLineImpl) Flush() error {
	if err := i.execCmdNoOutput([]string{"-f", "flush"}); err != nil {
		return err
	}
	if err := i.execCmdNoOutput([]string{"-f", "pipe", "flush"}); err != nil {
		return err
	}
	return i.execCmdNoOutput([]string{"-f", "queue", "flush"})
}

// RuleAdd implements FW interface
func (i *IpfwCmdLineImpl) RuleAdd(rule *types.Rule) error {
	return i.execCmdNoOutput(rule.GenCmdLineArgs())
}

// PipeConfigure implements FW interface
func (i *IpfwCmdLineImpl) PipeConfigure(pipe *types.PipeConfig) error {
	return i.execCmdNoOutput(pipe.GenCmdLineArgs())
}

// QueueConfigure implements FW interface
func (i *IpfwCmdLineImpl) QueueConfigure(queue *types.QueueConfig) error {
	return i.execCmdNoOutput(queue.GenCmdLineArgs())
}

// PipeShow implements FW interface
func (i *IpfwCmdLineImpl) PipeShow(id uint32) (*types.PipeConfig, error) {
	out, err := i.execCmd([]string{"pipe", formatPipeID(id), "show"})
	if err != nil {
		// the engine exits non-zero when the pipe does not exist
		return nil, fw.ErrPipeNotFound
	}
	return parsePipeShow(id, out)
}
