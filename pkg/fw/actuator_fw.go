package fw

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/rules"
)

// NewActuatorFWImpl creates a new ActuatorFWImpl
func NewActuatorFWImpl(fwIfc FW, log klog.Logger) *ActuatorFWImpl {
	return &ActuatorFWImpl{fwAPI: fwIfc, log: log}
}

// ActuatorFWImpl is an implementation of Actuator interface using the
// provided FW interface to apply rule programs
type ActuatorFWImpl struct {
	fwAPI FW
	log   klog.Logger
}

// Actuate is an implementation of Actuator interface. It replaces the
// engine's entire program under one logical transaction: flush, then
// install. If any install step fails the engine is flushed again so no
// packet is ever evaluated against a half-installed program; the engine is
// left denying everything rather than allowing everything.
func (a *ActuatorFWImpl) Actuate(program *rules.Program) error {
	txn := uuid.NewString()
	log := a.log.WithValues("txn", txn)
	log.V(4).Info("applying rule program",
		"rules", len(program.Rules), "pipes", len(program.Pipes), "queues", len(program.Queues))

	if err := a.fwAPI.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush engine")
	}

	if err := a.install(program); err != nil {
		log.Error(err, "install failed, flushing partial program")
		if ferr := a.fwAPI.Flush(); ferr != nil {
			log.Error(ferr, "failed to flush partial program")
		}
		return err
	}

	log.V(4).Info("rule program applied")
	return nil
}

func (a *ActuatorFWImpl) install(program *rules.Program) error {
	for _, p := range program.Pipes {
		if err := a.fwAPI.PipeConfigure(p); err != nil {
			return errors.Wrapf(err, "failed to configure pipe %d", p.ID)
		}
	}
	for _, q := range program.Queues {
		if err := a.fwAPI.QueueConfigure(q); err != nil {
			return errors.Wrapf(err, "failed to configure queue %d", q.ID)
		}
	}
	for _, r := range program.Rules {
		if err := a.fwAPI.RuleAdd(r); err != nil {
			return errors.Wrapf(err, "failed to add rule %d in set %d", r.Number, r.SetID)
		}
	}
	return nil
}
