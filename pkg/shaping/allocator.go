// Package shaping allocates bandwidth pipes and weighted fair queues for
// interfaces carrying a declared rate budget, and emits the classification
// rules routing traffic into them.
package shaping

import (
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
	"github.com/trustwall/trustwall/pkg/spec"
)

const (
	// inPipeBase is the pipe ID of interface index 0's inbound pipe
	inPipeBase uint32 = 100
	// outPipeBase is the pipe ID of interface index 0's outbound pipe
	outPipeBase uint32 = 200
	// queueBase is the queue ID of interface index 0's high priority queue
	queueBase         uint32 = 300
	queuesPerIfc      uint32 = 3
	queueOffsetHigh   uint32 = 0
	queueOffsetMedium uint32 = 1
	queueOffsetLow    uint32 = 2

	// Queue weights. The 7/5/1 ratio is the fairness contract between the
	// three priority classes nested in the outbound pipe.
	WeightHigh   uint32 = 7
	WeightMedium uint32 = 5
	WeightLow    uint32 = 1

	// smallAckMaxLen is the maximum total packet length classified as a
	// bare TCP ACK for high priority queueing
	smallAckMaxLen uint16 = 80
)

var (
	// privateNets are the RFC1918 ranges. Traffic staying inside them is
	// exempted from shaping since pipes are interface-scoped, not
	// network-scoped.
	privateNets = []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"}

	// interactive/DNS/VPN ports classified into the medium priority queue
	mediumTCPPorts = []uint16{22, 23, 53, 1194}
	mediumUDPPorts = []uint16{53, 500, 1194, 4500}
)

// InPipeID returns the inbound pipe ID of the provided interface index.
// The mapping is fixed: the Rate Adjuster relies on it across invocations.
func InPipeID(index int) uint32 {
	return inPipeBase + uint32(index)
}

// OutPipeID returns the outbound pipe ID of the provided interface index
func OutPipeID(index int) uint32 {
	return outPipeBase + uint32(index)
}

// QueueIDs returns the high, medium and low priority queue IDs of the
// provided interface index
func QueueIDs(index int) (high, medium, low uint32) {
	base := queueBase + queuesPerIfc*uint32(index)
	return base + queueOffsetHigh, base + queueOffsetMedium, base + queueOffsetLow
}

// Entry is the shaping allocation of one rate-bearing interface descriptor
type Entry struct {
	Index       int
	Interface   string
	InRateKbps  uint32
	OutRateKbps uint32
	InPipe      uint32
	OutPipe     uint32
	QueueHigh   uint32
	QueueMedium uint32
	QueueLow    uint32
}

// Plan is the complete shaping allocation derived from a registry. All
// identifiers are a pure function of descriptor indices, so re-compiling
// the same argument list yields the same Plan.
type Plan struct {
	Entries []Entry
}

// Allocator builds shaping Plans and generates their pipe, queue and
// classification objects
type Allocator struct {
	log klog.Logger
}

// NewAllocator creates a new Allocator
func NewAllocator(log klog.Logger) *Allocator {
	return &Allocator{log: log}
}

// Allocate builds the shaping Plan for every descriptor carrying a rate budget
func (a *Allocator) Allocate(reg *spec.Registry) *Plan {
	plan := &Plan{Entries: make([]Entry, 0)}
	for _, d := range reg.Descriptors() {
		if !d.HasRate() {
			continue
		}
		high, medium, low := QueueIDs(d.Index)
		plan.Entries = append(plan.Entries, Entry{
			Index:       d.Index,
			Interface:   d.Name,
			InRateKbps:  *d.InRateKbps,
			OutRateKbps: *d.OutRateKbps,
			InPipe:      InPipeID(d.Index),
			OutPipe:     OutPipeID(d.Index),
			QueueHigh:   high,
			QueueMedium: medium,
			QueueLow:    low,
		})
		a.log.V(5).Info("allocated shaping entry",
			"interface", d.Name, "index", d.Index,
			"in-pipe", InPipeID(d.Index), "out-pipe", OutPipeID(d.Index))
	}
	return plan
}

// Generate emits the pipe and queue configurations of the plan plus the
// classification rules of the shaping set:
//   - intra-private traffic skips shaping entirely
//   - inbound non-SYN TCP and UDP route through the inbound pipe
//   - outbound traffic classifies into the three priority queues nested in
//     the outbound pipe: small ACKs high, interactive/DNS/VPN ports medium,
//     the rest low
func (a *Allocator) Generate(plan *Plan) ([]*types.PipeConfig, []*types.QueueConfig, []*types.Rule) {
	pipes := make([]*types.PipeConfig, 0, len(plan.Entries)*2)
	queues := make([]*types.QueueConfig, 0, len(plan.Entries)*3)
	out := make([]*types.Rule, 0)

	if len(plan.Entries) == 0 {
		return pipes, queues, out
	}

	exemptBand := rules.BandFor(rules.PurposeShapingExempt)
	out = append(out, types.NewRuleBuilder().
		WithSet(rules.SetShaping).
		WithNumber(exemptBand.Base).
		WithAction(types.NewSkipToAction(rules.SkipToOutbound)).
		WithProto(types.ProtoIP).
		WithSrc(privateNets...).
		WithDst(privateNets...).
		Build())

	band := rules.BandFor(rules.PurposeShapingPerIfc)
	for _, e := range plan.Entries {
		pipes = append(pipes,
			&types.PipeConfig{ID: e.InPipe, BandwidthKbps: e.InRateKbps},
			&types.PipeConfig{ID: e.OutPipe, BandwidthKbps: e.OutRateKbps})
		queues = append(queues,
			&types.QueueConfig{ID: e.QueueHigh, PipeID: e.OutPipe, Weight: WeightHigh},
			&types.QueueConfig{ID: e.QueueMedium, PipeID: e.OutPipe, Weight: WeightMedium},
			&types.QueueConfig{ID: e.QueueLow, PipeID: e.OutPipe, Weight: WeightLow})

		n := band.SlotStart(e.Index)
		out = append(out,
			// inbound: established TCP and all UDP through the inbound pipe
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n).
				WithAction(types.NewPipeAction(e.InPipe)).
				WithProto(types.ProtoTCP).
				WithDirection(types.DirectionIn).WithVia(e.Interface).
				WithTCPFlags(types.TCPFlagNotSyn).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n+1).
				WithAction(types.NewPipeAction(e.InPipe)).
				WithProto(types.ProtoUDP).
				WithDirection(types.DirectionIn).WithVia(e.Interface).
				Build(),
			// outbound: small ACKs first, interactive ports next, rest low
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n+2).
				WithAction(types.NewQueueAction(e.QueueHigh)).
				WithProto(types.ProtoTCP).
				WithDirection(types.DirectionOut).WithVia(e.Interface).
				WithTCPFlags(types.TCPFlagAck).
				WithIPLenMax(smallAckMaxLen).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n+3).
				WithAction(types.NewQueueAction(e.QueueMedium)).
				WithProto(types.ProtoTCP).
				WithDstPorts(types.Ports(mediumTCPPorts...)...).
				WithDirection(types.DirectionOut).WithVia(e.Interface).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n+4).
				WithAction(types.NewQueueAction(e.QueueMedium)).
				WithProto(types.ProtoUDP).
				WithDstPorts(types.Ports(mediumUDPPorts...)...).
				WithDirection(types.DirectionOut).WithVia(e.Interface).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetShaping).WithNumber(n+5).
				WithAction(types.NewQueueAction(e.QueueLow)).
				WithProto(types.ProtoIP).
				WithDirection(types.DirectionOut).WithVia(e.Interface).
				Build())
	}

	return pipes, queues, out
}
