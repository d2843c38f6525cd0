// Package app wires the descriptor parser, compiler and actuators into the
// trustwall command.
package app

import (
	"flag"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
	"k8s.io/utils/exec"

	"github.com/trustwall/trustwall/pkg/compiler"
	"github.com/trustwall/trustwall/pkg/fw"
	"github.com/trustwall/trustwall/pkg/fw/driver/cmdline"
	"github.com/trustwall/trustwall/pkg/net"
	"github.com/trustwall/trustwall/pkg/spec"
)

// NewApp creates a new App with the provided options
func NewApp(opts *Options, log klog.Logger) *App {
	return &App{opts: opts, log: log}
}

// App compiles the interface descriptor tokens into a rule program and
// applies it through the configured actuators
type App struct {
	opts *Options
	log  klog.Logger
}

// Run compiles tokens and applies the resulting program. Tokens are the
// raw interface descriptor arguments in registration order.
func (a *App) Run(tokens []string) error {
	if a.opts.debug {
		_ = flag.Set("v", "5")
	}
	reg, err := spec.BuildRegistry(tokens)
	if err != nil {
		return errors.Wrap(err, "failed to build interface registry")
	}
	a.log.V(2).Info("registry built",
		"descriptors", reg.Len(), "interfaces", len(reg.UniqueNames()))

	if a.opts.VerifyLinks {
		verifier := net.NewLinkVerifier(net.NewNetlinkProviderImpl(), a.log)
		if err := verifier.Verify(reg.UniqueNames()); err != nil {
			return err
		}
	}

	compileOpts, err := a.opts.CompilerOptions()
	if err != nil {
		return err
	}
	comp, err := compiler.NewCompiler(reg, compileOpts, a.log)
	if err != nil {
		return err
	}
	program, err := comp.Compile()
	if err != nil {
		return errors.Wrap(err, "compilation failed")
	}

	for _, actuator := range a.actuators() {
		if err := actuator.Actuate(program); err != nil {
			return err
		}
	}

	// service toggles are reported, not applied; the init system owns
	// service state
	for _, svc := range program.Services {
		a.log.Info("service toggle requested", "service", svc.Service, "enable", svc.Enable)
	}
	return nil
}

func (a *App) actuators() []fw.Actuator {
	actuators := make([]fw.Actuator, 0, 2)
	if a.opts.RulesPath != "" {
		actuators = append(actuators, fw.NewActuatorFileWriterImpl(a.opts.RulesPath, a.log))
	}
	if !a.opts.DryRun {
		driver := cmdline.NewIpfwCmdLineImpl(a.log, exec.New())
		actuators = append(actuators, fw.NewActuatorFWImpl(driver, a.log))
	}
	return actuators
}
