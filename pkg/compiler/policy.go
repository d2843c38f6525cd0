package compiler

import (
	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
)

const dnsPort uint16 = 53

var (
	// well-known outbound destinations allowed without logging: ftp, ssh,
	// smtp, dns, http, pop3, imap, https, imaps, pop3s over TCP; dns, ntp,
	// IKE, openvpn, NAT-T over UDP
	outboundTCPPorts = []uint16{21, 22, 25, 53, 80, 110, 143, 443, 993, 995}
	outboundUDPPorts = []uint16{53, 123, 500, 1194, 4500}
)

// genShaping emits set 10 through the shaping allocator
func (c *Compiler) genShaping(p *rules.Program) {
	plan := c.alloc.Allocate(c.reg)
	pipes, queues, shaped := c.alloc.Generate(plan)
	p.Pipes = append(p.Pipes, pipes...)
	p.Queues = append(p.Queues, queues...)
	p.Rules = append(p.Rules, shaped...)
}

// genOutbound emits set 11: curated well-known outbound ports without
// logging, then the residual outbound allowance from this host. The
// residual rule logs only under --log-all; stealth mode never touches it.
func (c *Compiler) genOutbound(p *rules.Program) {
	band := rules.BandFor(rules.PurposeOutbound)
	n := band.Base

	curated := types.NewRuleBuilder().
		WithSet(rules.SetOutbound).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoTCP).
		WithSrc(types.AddrMe).
		WithDstPorts(types.Ports(outboundTCPPorts...)...).
		WithDirection(types.DirectionOut).
		WithTCPFlags(types.TCPFlagSetup).WithKeepState().
		Build()

	curatedUDP := types.NewRuleBuilder().
		WithSet(rules.SetOutbound).WithNumber(n + 1).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoUDP).
		WithSrc(types.AddrMe).
		WithDstPorts(types.Ports(outboundUDPPorts...)...).
		WithDirection(types.DirectionOut).
		WithKeepState().
		Build()

	residual := types.NewRuleBuilder().
		WithSet(rules.SetOutbound).WithNumber(n + 2).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithSrc(types.AddrMe).
		WithDirection(types.DirectionOut).
		WithKeepState()
	if c.opts.LogAll {
		residual.WithLog()
	}

	p.Rules = append(p.Rules, curated, curatedUDP, residual.Build())
}

// genOpenPorts emits set 20: operator-opened inbound ports per descriptor,
// gated by trust tier. Trusted ports require a trusted descriptor; local
// ports require a bounded network or trust; public ports open everywhere.
// Sub-slot offsets are fixed per tier and protocol so skipped tiers leave
// gaps instead of shifting later rules.
func (c *Compiler) genOpenPorts(p *rules.Program) {
	band := rules.BandFor(rules.PurposeOpenPorts)

	for _, d := range c.reg.Descriptors() {
		n := band.SlotStart(d.Index)

		// source scope: the descriptor's own network when bounded
		src := []string{types.AddrAny}
		if d.HasNetwork() {
			src = []string{d.NetworkString()}
		}

		if d.Trusted {
			c.openPorts(p, n, d.Name, src, c.opts.TrustedTCPPorts, c.opts.TrustedUDPPorts)
		}
		if d.Trusted || d.HasNetwork() {
			c.openPorts(p, n+2, d.Name, src, c.opts.LocalTCPPorts, c.opts.LocalUDPPorts)
		}
		c.openPorts(p, n+4, d.Name, []string{types.AddrAny},
			c.opts.PublicTCPPorts, c.opts.PublicUDPPorts)
	}
}

// openPorts emits the TCP rule at n and the UDP rule at n+1 for one trust
// tier of one descriptor. Empty port lists emit nothing.
func (c *Compiler) openPorts(p *rules.Program, n uint32, ifc string, src []string, tcp, udp []uint16) {
	if len(tcp) > 0 {
		p.Rules = append(p.Rules, types.NewRuleBuilder().
			WithSet(rules.SetOpenPorts).WithNumber(n).
			WithAction(types.NewAllowAction()).
			WithProto(types.ProtoTCP).
			WithSrc(src...).WithDst(types.AddrMe).
			WithDstPorts(types.Ports(tcp...)...).
			WithDirection(types.DirectionIn).WithVia(ifc).
			WithTCPFlags(types.TCPFlagSetup).WithKeepState().
			Build())
	}
	if len(udp) > 0 {
		p.Rules = append(p.Rules, types.NewRuleBuilder().
			WithSet(rules.SetOpenPorts).WithNumber(n+1).
			WithAction(types.NewAllowAction()).
			WithProto(types.ProtoUDP).
			WithSrc(src...).WithDst(types.AddrMe).
			WithDstPorts(types.Ports(udp...)...).
			WithDirection(types.DirectionIn).WithVia(ifc).
			WithKeepState().
			Build())
	}
}

// genDefaultDeny emits set 30: unsolicited DNS responses first (legitimate
// answers already matched the dynamic rule set), then the protocol-correct
// catch-all responses and the final logged drop.
func (c *Compiler) genDefaultDeny(p *rules.Program) {
	band := rules.BandFor(rules.PurposeDefaultDeny)
	n := band.Base

	p.Rules = append(p.Rules,
		types.NewRuleBuilder().
			WithSet(rules.SetDefaultDeny).WithNumber(n).
			WithAction(c.reject(types.RejectKindUnreachPort)).WithLog().
			WithProto(types.ProtoUDP).
			WithSrcPorts(types.Port(dnsPort)).
			WithDirection(types.DirectionIn).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetDefaultDeny).WithNumber(n+1).
			WithAction(c.rejectProbe(types.RejectKindReset)).WithLog().
			WithProto(types.ProtoTCP).
			WithDirection(types.DirectionIn).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetDefaultDeny).WithNumber(n+2).
			WithAction(c.rejectProbe(types.RejectKindUnreachPort)).WithLog().
			WithProto(types.ProtoUDP).
			WithDirection(types.DirectionIn).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetDefaultDeny).WithNumber(n+3).
			WithAction(types.NewDenyAction()).WithLog().
			WithProto(types.ProtoIP).
			Build())
}
