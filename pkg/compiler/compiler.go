// Package compiler turns an interface registry and global options into an
// ordered rule program. The compiler runs a fixed sequence of passes, one
// per logical rule set; pass order never depends on input, only each pass's
// output volume does. All numeric rule placement goes through the numbering
// band table in pkg/rules.
package compiler

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
	"github.com/trustwall/trustwall/pkg/shaping"
	"github.com/trustwall/trustwall/pkg/spec"
)

// Compiler compiles one registry with one set of options. It is
// single-threaded and stateless across invocations: compiling the same
// input twice yields identical programs.
type Compiler struct {
	reg   *spec.Registry
	opts  *Options
	alloc *shaping.Allocator
	log   klog.Logger
}

// NewCompiler creates a new Compiler for the provided registry and options.
// It fails if the numbering table cannot hold the registry or if router
// mode is declared incompletely.
func NewCompiler(reg *spec.Registry, opts *Options, log klog.Logger) (*Compiler, error) {
	if err := rules.ValidateNumbering(); err != nil {
		return nil, errors.Wrap(err, "invalid rule numbering table")
	}
	if reg.Len() > rules.MaxInterfaces {
		return nil, errors.Errorf("too many interface descriptors: %d (max %d)",
			reg.Len(), rules.MaxInterfaces)
	}
	if opts.Router != nil {
		if opts.Router.External == "" || opts.Router.Client == "" || opts.Router.ClientNet == nil {
			return nil, errors.New("router mode requires external interface, client interface and client network")
		}
	}
	return &Compiler{
		reg:   reg,
		opts:  opts,
		alloc: shaping.NewAllocator(log),
		log:   log,
	}, nil
}

// Compile emits the complete rule program. Passes execute in fixed order;
// disabled sets are skipped as a unit. No partial program is ever returned.
func (c *Compiler) Compile() (*rules.Program, error) {
	p := &rules.Program{
		Rules:    make([]*types.Rule, 0),
		Pipes:    make([]*types.PipeConfig, 0),
		Queues:   make([]*types.QueueConfig, 0),
		Services: make([]rules.ServiceToggle, 0),
	}

	c.genBaseline(p)
	c.genRouting(p)
	c.genStateTracking(p)
	c.genMacServices(p)
	c.genWinServices(p)
	c.genTrustedNets(p)
	if c.opts.EnableBootstrap {
		c.genBootstrap(p)
	}
	c.genAntiSpoof(p)
	if c.opts.EnableShaping {
		c.genShaping(p)
	}
	if c.opts.EnableOutbound {
		c.genOutbound(p)
	}
	if c.opts.EnableOpenPorts {
		c.genOpenPorts(p)
	}
	c.genDefaultDeny(p)

	c.log.V(4).Info("compiled rule program",
		"rules", len(p.Rules), "pipes", len(p.Pipes), "queues", len(p.Queues))
	return p, nil
}

// reject returns the configured response action for a reject site.
// Stealth mode overrides every reject site with a silent drop.
func (c *Compiler) reject(kind types.RejectKind) types.Action {
	if c.opts.Stealth {
		return types.NewDenyAction()
	}
	return types.NewRejectAction(kind)
}

// rejectProbe is reject narrowed further by blackhole mode; it covers the
// final catch-all and the auth-port probe response.
func (c *Compiler) rejectProbe(kind types.RejectKind) types.Action {
	if c.opts.Stealth || c.opts.Blackhole {
		return types.NewDenyAction()
	}
	return types.NewRejectAction(kind)
}
