// Package adjust reconfigures the bandwidth pipes of an already installed
// rule program. Pipe identifiers are a fixed function of the interface
// index, so the adjuster needs no access to the original argument list.
package adjust

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/fw"
	"github.com/trustwall/trustwall/pkg/rules/types"
	"github.com/trustwall/trustwall/pkg/shaping"
)

// NewAdjuster creates a new Adjuster over the provided engine and schedule
func NewAdjuster(fwIfc fw.FW, sched Schedule, log klog.Logger) *Adjuster {
	return &Adjuster{fwAPI: fwIfc, sched: sched, log: log}
}

// Adjuster reconfigures the inbound and outbound pipe of one interface
// index. It is stateless per invocation; concurrent invocations against
// the same index must be serialized by the caller.
type Adjuster struct {
	fwAPI fw.FW
	sched Schedule
	log   klog.Logger
}

// Adjust reconfigures the pipes of the provided interface index. With both
// rates given they are applied directly. With neither, the schedule's
// recommendation applies, and if the inbound pipe already carries the
// recommended bandwidth the call is a no-op with no engine writes. Giving
// exactly one rate is an error.
func (a *Adjuster) Adjust(index int, inKbps, outKbps *uint32) error {
	if (inKbps == nil) != (outKbps == nil) {
		return errors.New("inbound and outbound rates must be given together")
	}

	inPipe := shaping.InPipeID(index)
	outPipe := shaping.OutPipeID(index)

	current, err := a.fwAPI.PipeShow(inPipe)
	if err != nil {
		if errors.Is(err, fw.ErrPipeNotFound) {
			return &IndexOutOfRangeError{Index: index}
		}
		return errors.Wrapf(err, "failed to read pipe %d", inPipe)
	}

	var in, out uint32
	if inKbps != nil {
		in, out = *inKbps, *outKbps
	} else {
		in, out = a.sched.Recommend()
		if current.BandwidthKbps == in {
			a.log.V(4).Info("bandwidth already at recommended value",
				"index", index, "kbps", in)
			return nil
		}
	}

	a.log.V(4).Info("reconfiguring pipes",
		"index", index, "in-kbps", in, "out-kbps", out)
	if err := a.fwAPI.PipeConfigure(&types.PipeConfig{ID: inPipe, BandwidthKbps: in}); err != nil {
		return errors.Wrapf(err, "failed to configure pipe %d", inPipe)
	}
	if err := a.fwAPI.PipeConfigure(&types.PipeConfig{ID: outPipe, BandwidthKbps: out}); err != nil {
		return errors.Wrapf(err, "failed to configure pipe %d", outPipe)
	}
	return nil
}
