package rules

import (
	"bytes"
	"strings"

	"github.com/trustwall/trustwall/pkg/rules/types"
)

const (
	// ServiceMDNSResponder is the OS multicast discovery responder
	ServiceMDNSResponder = "mdns-responder"
)

// ServiceToggle is a declarative request to enable or disable an OS-level
// service. Toggles are emitted alongside the rule program so the caller can
// apply them after the program is confirmed installed, instead of
// interleaving side effects with rule emission.
type ServiceToggle struct {
	Service string
	Enable  bool
}

// Program is an ordered rule program: numbered rules partitioned into
// logical sets, the pipe and queue configurations they reference, and the
// service toggles implied by the input. A Program is immutable once
// compiled; compiling the same input twice yields an identical Program.
type Program struct {
	Rules    []*types.Rule
	Pipes    []*types.PipeConfig
	Queues   []*types.QueueConfig
	Services []ServiceToggle
}

// RulesInSet returns the program's rules belonging to the provided set,
// in program order.
func (p *Program) RulesInSet(set types.SetID) []*types.Rule {
	out := make([]*types.Rule, 0)
	for _, r := range p.Rules {
		if r.SetID == set {
			out = append(out, r)
		}
	}
	return out
}

// Equals compares this Program with other, returns true if they are equal or false otherwise
func (p *Program) Equals(other *Program) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	if len(p.Rules) != len(other.Rules) ||
		len(p.Pipes) != len(other.Pipes) ||
		len(p.Queues) != len(other.Queues) ||
		len(p.Services) != len(other.Services) {
		return false
	}
	for i := range p.Rules {
		if !p.Rules[i].Equals(other.Rules[i]) {
			return false
		}
	}
	for i := range p.Pipes {
		if !p.Pipes[i].Equals(other.Pipes[i]) {
			return false
		}
	}
	for i := range p.Queues {
		if !p.Queues[i].Equals(other.Queues[i]) {
			return false
		}
	}
	for i := range p.Services {
		if p.Services[i] != other.Services[i] {
			return false
		}
	}
	return true
}

// Render returns a stable textual rendering of the program, one engine
// command per line: pipe configurations, then queue configurations, then
// rules in program order. The rendering is deterministic for a fixed
// program and doubles as the file actuator's on-disk format.
func (p *Program) Render() string {
	buf := bytes.Buffer{}
	for _, pipe := range p.Pipes {
		buf.WriteString(strings.Join(pipe.GenCmdLineArgs(), " "))
		buf.WriteRune('\n')
	}
	for _, q := range p.Queues {
		buf.WriteString(strings.Join(q.GenCmdLineArgs(), " "))
		buf.WriteRune('\n')
	}
	for _, r := range p.Rules {
		buf.WriteString(strings.Join(r.GenCmdLineArgs(), " "))
		buf.WriteRune('\n')
	}
	return buf.String()
}
