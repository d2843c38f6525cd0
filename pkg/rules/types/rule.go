package types

import (
	"strconv"
	"strings"
)

// SetID identifies the logical rule set a rule belongs to. Lower sets are
// evaluated first; sets can be enabled and disabled as a unit by the engine.
type SetID uint8

// Rule is one entry of a rule program: a numbered, set-partitioned action
// with a match predicate. Match is nil for actions that take no predicate
// body (check-state).
type Rule struct {
	SetID  SetID
	Number uint32
	Action Action
	Match  *MatchSpec
	// Log marks the rule for per-match logging
	Log bool
}

// Equals compares this Rule with other, returns true if they are equal or false otherwise
func (r *Rule) Equals(other *Rule) bool {
	if r == other {
		return true
	}
	if r == nil || other == nil {
		return false
	}
	if r.SetID != other.SetID || r.Number != other.Number || r.Log != other.Log {
		return false
	}
	if (r.Action == nil) != (other.Action == nil) {
		return false
	}
	if r.Action != nil && !r.Action.Equals(other.Action) {
		return false
	}
	if (r.Match == nil) != (other.Match == nil) {
		return false
	}
	if r.Match != nil && !r.Match.Equals(other.Match) {
		return false
	}
	return true
}

// GenCmdLineArgs implements CmdLineGenerator interface, it renders the rule
// as an ipfw add command:
//
//	add <number> set <set> <action> [log] [<match body>]
func (r *Rule) GenCmdLineArgs() []string {
	args := []string{
		"add", strconv.FormatUint(uint64(r.Number), 10),
		"set", strconv.FormatUint(uint64(r.SetID), 10),
	}
	args = append(args, r.Action.GenCmdLineArgs()...)
	if r.Log {
		args = append(args, "log")
	}
	if r.Match != nil {
		args = append(args, r.Match.GenCmdLineArgs()...)
	}
	return args
}

func (r *Rule) String() string {
	return strings.Join(r.GenCmdLineArgs(), " ")
}

// Builder

// NewRuleBuilder returns a new RuleBuilder
func NewRuleBuilder() *RuleBuilder {
	return &RuleBuilder{rule: Rule{Match: &MatchSpec{}}}
}

// RuleBuilder is a Rule builder
type RuleBuilder struct {
	rule Rule
}

// WithSet adds SetID to RuleBuilder
func (rb *RuleBuilder) WithSet(s SetID) *RuleBuilder {
	rb.rule.SetID = s
	return rb
}

// WithNumber adds rule Number to RuleBuilder
func (rb *RuleBuilder) WithNumber(n uint32) *RuleBuilder {
	rb.rule.Number = n
	return rb
}

// WithAction adds Action to RuleBuilder
func (rb *RuleBuilder) WithAction(a Action) *RuleBuilder {
	rb.rule.Action = a
	return rb
}

// WithLog marks the rule for logging
func (rb *RuleBuilder) WithLog() *RuleBuilder {
	rb.rule.Log = true
	return rb
}

// WithProto adds match Protocol to RuleBuilder
func (rb *RuleBuilder) WithProto(p Protocol) *RuleBuilder {
	rb.rule.Match.Proto = p
	return rb
}

// WithSrc adds source address expressions to RuleBuilder
func (rb *RuleBuilder) WithSrc(addrs ...string) *RuleBuilder {
	rb.rule.Match.Src.Addrs = addrs
	return rb
}

// WithSrcPorts adds source port ranges to RuleBuilder
func (rb *RuleBuilder) WithSrcPorts(ports ...PortRange) *RuleBuilder {
	rb.rule.Match.Src.Ports = ports
	return rb
}

// WithDst adds destination address expressions to RuleBuilder
func (rb *RuleBuilder) WithDst(addrs ...string) *RuleBuilder {
	rb.rule.Match.Dst.Addrs = addrs
	return rb
}

// WithDstPorts adds destination port ranges to RuleBuilder
func (rb *RuleBuilder) WithDstPorts(ports ...PortRange) *RuleBuilder {
	rb.rule.Match.Dst.Ports = ports
	return rb
}

// WithDirection adds match Direction to RuleBuilder
func (rb *RuleBuilder) WithDirection(d Direction) *RuleBuilder {
	rb.rule.Match.Direction = d
	return rb
}

// WithVia adds interface binding to RuleBuilder
func (rb *RuleBuilder) WithVia(ifc string) *RuleBuilder {
	rb.rule.Match.Via = ifc
	return rb
}

// WithTCPFlags adds TCP flag keywords to RuleBuilder
func (rb *RuleBuilder) WithTCPFlags(flags ...TCPFlag) *RuleBuilder {
	rb.rule.Match.TCPFlags = flags
	return rb
}

// WithICMPTypes adds ICMP type constraints to RuleBuilder
func (rb *RuleBuilder) WithICMPTypes(icmpTypes ...uint8) *RuleBuilder {
	rb.rule.Match.ICMPTypes = icmpTypes
	return rb
}

// WithIPOptions adds IP option constraints to RuleBuilder
func (rb *RuleBuilder) WithIPOptions(opts ...IPOption) *RuleBuilder {
	rb.rule.Match.IPOptions = opts
	return rb
}

// WithFrag matches packet fragments
func (rb *RuleBuilder) WithFrag() *RuleBuilder {
	rb.rule.Match.Frag = true
	return rb
}

// WithIPLenMax adds a maximum packet length constraint to RuleBuilder
func (rb *RuleBuilder) WithIPLenMax(l uint16) *RuleBuilder {
	rb.rule.Match.IPLenMax = &l
	return rb
}

// WithNotVerRevPath matches packets failing the reverse path check
func (rb *RuleBuilder) WithNotVerRevPath() *RuleBuilder {
	rb.rule.Match.NotVerRevPath = true
	return rb
}

// WithKeepState installs a dynamic rule on match
func (rb *RuleBuilder) WithKeepState() *RuleBuilder {
	rb.rule.Match.KeepState = true
	return rb
}

// Build builds and returns a new Rule instance.
// A check-state action drops the match body since the action takes none.
// Note: calling Build() multiple times will not return a completely
// new object on each call. that is, pointer/slice/map types will not be deep copied.
// to create several objects, different builders should be used.
func (rb *RuleBuilder) Build() *Rule {
	rule := rb.rule
	if rule.Action != nil && rule.Action.Type() == ActionTypeCheckState {
		rule.Match = nil
	}
	return &rule
}
