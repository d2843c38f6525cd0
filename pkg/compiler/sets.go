package compiler

import (
	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
)

const (
	loopbackIfc = "lo0"
	loopbackNet = "127.0.0.0/8"

	// natdPort is the divert socket of the address translation daemon
	natdPort uint16 = 8668

	// Fixed baseline pipes. These exist regardless of per-interface rate
	// budgets and are not user configurable.
	tcpSetupPipeID   uint32 = 10
	tcpSetupPipeKbps uint32 = 64
	icmpPipeID       uint32 = 20
	icmpPipeKbps     uint32 = 16
	rstDelayPipeID   uint32 = 30
	rstDelayMs       uint32 = 500

	broadcastAddr = "255.255.255.255"
	multicastNet  = "224.0.0.0/4"

	authPort uint16 = 113
)

var (
	// rfc1918Nets plus loopback form the spoofing signature on a
	// public-facing interface
	spoofSourceNets = []string{"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", loopbackNet}

	dhcpPorts = []uint16{67, 68}

	// bootstrapICMPTypes are allowed on all known interfaces even before
	// an address is leased: echo reply/request, unreachable, source
	// quench, time exceeded, parameter problem
	bootstrapICMPTypes = []uint8{0, 3, 4, 8, 11, 12}

	// mac service ports: AFP, SLP, IPP over TCP; mDNS and SLP over UDP
	macTCPServicePorts = []uint16{548, 427, 631}
	macUDPServicePorts = []uint16{5353, 427}

	// windows service ports: NetBIOS session and SMB over TCP, NetBIOS
	// name/datagram over UDP
	winTCPServicePorts = []uint16{139, 445}
	winUDPServicePorts = []uint16{137, 138}

	// residual service ports denied in the containment pass when no
	// OS-type rule matched them earlier
	residualTCPServicePorts = []uint16{139, 445, 548, 427, 631}
	residualUDPServicePorts = []uint16{137, 138, 5353, 427}
)

// genBaseline emits set 0: loopback, routing divert, connection and ICMP
// rate limiting, RST delay, and unconditional rejection of malformed
// packets and IP routing options.
func (c *Compiler) genBaseline(p *rules.Program) {
	band := rules.BandFor(rules.PurposeBaseline)
	n := band.Base

	p.Pipes = append(p.Pipes,
		&types.PipeConfig{ID: tcpSetupPipeID, BandwidthKbps: tcpSetupPipeKbps},
		&types.PipeConfig{ID: icmpPipeID, BandwidthKbps: icmpPipeKbps},
		&types.PipeConfig{ID: rstDelayPipeID, DelayMs: rstDelayMs})

	add := func(r *types.Rule) {
		p.Rules = append(p.Rules, r)
		n++
	}

	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithVia(loopbackIfc).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoIP).
		WithDst(loopbackNet).
		Build())

	if c.opts.Router != nil {
		add(types.NewRuleBuilder().
			WithSet(rules.SetBaseline).WithNumber(n).
			WithAction(types.NewDivertAction(natdPort)).
			WithProto(types.ProtoIP).
			WithVia(c.opts.Router.External).
			Build())
	}

	// rate-limit new connections and ICMP through the fixed pipes; delay
	// RST segments to defeat promiscuous-mode reset injection
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewPipeAction(tcpSetupPipeID)).
		WithProto(types.ProtoTCP).
		WithTCPFlags(types.TCPFlagSetup).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewPipeAction(icmpPipeID)).
		WithProto(types.ProtoICMP).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewPipeAction(rstDelayPipeID)).
		WithProto(types.ProtoTCP).
		WithTCPFlags(types.TCPFlagRst).
		Build())

	// port 0 is never legitimate
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoTCP).
		WithSrcPorts(types.Port(0)).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoTCP).
		WithDstPorts(types.Port(0)).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoUDP).
		WithSrcPorts(types.Port(0)).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoUDP).
		WithDstPorts(types.Port(0)).
		Build())

	add(types.NewRuleBuilder().
		WithSet(rules.SetBaseline).WithNumber(n).
		WithAction(types.NewDenyAction()).WithLog().
		WithProto(types.ProtoIP).
		WithIPOptions(types.IPOptionRR, types.IPOptionTS, types.IPOptionLSRR, types.IPOptionSSRR).
		Build())
}

// genRouting emits set 1: bidirectional traffic strictly between the
// declared router pair plus client traffic addressed to the router itself.
// The set is empty without router mode.
func (c *Compiler) genRouting(p *rules.Program) {
	r := c.opts.Router
	if r == nil {
		return
	}
	band := rules.BandFor(rules.PurposeRouting)
	n := band.Base
	clientNet := r.ClientNet.String()

	add := func(rule *types.Rule) {
		p.Rules = append(p.Rules, rule)
		n++
	}

	add(types.NewRuleBuilder().
		WithSet(rules.SetRouting).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithSrc(clientNet).WithDst(types.AddrMe).
		WithDirection(types.DirectionIn).WithVia(r.Client).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetRouting).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithSrc(clientNet).
		WithDirection(types.DirectionIn).WithVia(r.Client).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetRouting).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithDst(clientNet).
		WithDirection(types.DirectionOut).WithVia(r.Client).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetRouting).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithSrc(clientNet).
		WithDirection(types.DirectionOut).WithVia(r.External).
		Build())
	add(types.NewRuleBuilder().
		WithSet(rules.SetRouting).WithNumber(n).
		WithAction(types.NewAllowAction()).
		WithProto(types.ProtoIP).
		WithDst(clientNet).
		WithDirection(types.DirectionIn).WithVia(r.External).
		Build())
}

// genStateTracking emits set 2: the dynamic state check, fragment denial
// and stale established handling. It precedes every set relying on
// keep-state so dynamic allowances work for all of them.
func (c *Compiler) genStateTracking(p *rules.Program) {
	band := rules.BandFor(rules.PurposeState)
	n := band.Base

	p.Rules = append(p.Rules,
		types.NewRuleBuilder().
			WithSet(rules.SetState).WithNumber(n).
			WithAction(types.NewCheckStateAction()).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetState).WithNumber(n+1).
			WithAction(types.NewDenyAction()).WithLog().
			WithProto(types.ProtoIP).
			WithFrag().
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetState).WithNumber(n+2).
			WithAction(c.reject(types.RejectKindReset)).WithLog().
			WithProto(types.ProtoTCP).
			WithTCPFlags(types.TCPFlagEstablished).
			Build())
}

// genMacServices emits set 3: mac service ports scoped strictly to each
// matching descriptor's own network, plus local broadcast/multicast
// allowances. Emitting at least one slot implies enabling the multicast
// discovery responder; the toggle is recorded declaratively.
func (c *Compiler) genMacServices(p *rules.Program) {
	band := rules.BandFor(rules.PurposeMacServices)
	matched := false

	for _, d := range c.reg.Descriptors() {
		if !d.MatchesMac() || !d.HasNetwork() {
			continue
		}
		matched = true
		network := d.NetworkString()
		n := band.SlotStart(d.Index)

		p.Rules = append(p.Rules,
			types.NewRuleBuilder().
				WithSet(rules.SetMacServices).WithNumber(n).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoTCP).
				WithSrc(network).WithDst(network).
				WithDstPorts(types.Ports(macTCPServicePorts...)...).
				WithVia(d.Name).
				WithTCPFlags(types.TCPFlagSetup).WithKeepState().
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetMacServices).WithNumber(n+1).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithSrc(network).WithDst(network).
				WithDstPorts(types.Ports(macUDPServicePorts...)...).
				WithVia(d.Name).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetMacServices).WithNumber(n+2).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithSrc(network).WithDst(multicastNet).
				WithDstPorts(types.Port(5353)).
				WithVia(d.Name).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetMacServices).WithNumber(n+3).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithSrc(network).WithDst(broadcastAddr).
				WithVia(d.Name).
				Build())
	}

	if matched {
		p.Services = append(p.Services,
			rules.ServiceToggle{Service: rules.ServiceMDNSResponder, Enable: true})
	}
}

// genWinServices emits set 4: windows service ports scoped strictly to each
// matching descriptor's own network.
func (c *Compiler) genWinServices(p *rules.Program) {
	band := rules.BandFor(rules.PurposeWinServices)

	for _, d := range c.reg.Descriptors() {
		if !d.MatchesWindows() || !d.HasNetwork() {
			continue
		}
		network := d.NetworkString()
		n := band.SlotStart(d.Index)

		p.Rules = append(p.Rules,
			types.NewRuleBuilder().
				WithSet(rules.SetWinServices).WithNumber(n).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoTCP).
				WithSrc(network).WithDst(network).
				WithDstPorts(types.Ports(winTCPServicePorts...)...).
				WithVia(d.Name).
				WithTCPFlags(types.TCPFlagSetup).WithKeepState().
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetWinServices).WithNumber(n+1).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithSrc(network).WithDst(network).
				WithDstPorts(types.Ports(winUDPServicePorts...)...).
				WithVia(d.Name).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetWinServices).WithNumber(n+2).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithSrc(network).WithDst(broadcastAddr).
				WithDstPorts(types.Ports(winUDPServicePorts...)...).
				WithVia(d.Name).
				Build())
	}
}

// genTrustedNets emits set 5: unrestricted ICMP within trusted networks,
// then broadcast containment and residual service port denial.
func (c *Compiler) genTrustedNets(p *rules.Program) {
	band := rules.BandFor(rules.PurposeTrustedNets)

	for _, d := range c.reg.Descriptors() {
		if !d.Trusted || !d.HasNetwork() {
			continue
		}
		network := d.NetworkString()
		p.Rules = append(p.Rules,
			types.NewRuleBuilder().
				WithSet(rules.SetTrustedNets).WithNumber(band.SlotStart(d.Index)).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoICMP).
				WithSrc(network).WithDst(network).
				WithVia(d.Name).
				Build())
	}

	tail := rules.BandFor(rules.PurposeBroadcastContainment)
	n := tail.Base
	p.Rules = append(p.Rules,
		types.NewRuleBuilder().
			WithSet(rules.SetTrustedNets).WithNumber(n).
			WithAction(types.NewAllowAction()).
			WithProto(types.ProtoUDP).
			WithDst(broadcastAddr).
			WithDstPorts(types.Ports(dhcpPorts...)...).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetTrustedNets).WithNumber(n+1).
			WithAction(types.NewDenyAction()).
			WithProto(types.ProtoIP).
			WithDst(broadcastAddr).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetTrustedNets).WithNumber(n+2).
			WithAction(types.NewDenyAction()).
			WithProto(types.ProtoIP).
			WithDst(multicastNet).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetTrustedNets).WithNumber(n+3).
			WithAction(c.reject(types.RejectKindUnreachPort)).
			WithProto(types.ProtoTCP).
			WithDstPorts(types.Ports(residualTCPServicePorts...)...).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetTrustedNets).WithNumber(n+4).
			WithAction(c.reject(types.RejectKindUnreachPort)).
			WithProto(types.ProtoUDP).
			WithDstPorts(types.Ports(residualUDPServicePorts...)...).
			Build())
}

// genBootstrap emits set 6: the ICMP whitelist and DHCP ports on every
// known interface. Required even before an address is leased, which is why
// the set toggles independently of everything else.
func (c *Compiler) genBootstrap(p *rules.Program) {
	band := rules.BandFor(rules.PurposeBootstrap)

	for i, name := range c.reg.UniqueNames() {
		n := band.SlotStart(i)
		p.Rules = append(p.Rules,
			types.NewRuleBuilder().
				WithSet(rules.SetBootstrap).WithNumber(n).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoICMP).
				WithVia(name).
				WithICMPTypes(bootstrapICMPTypes...).
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetBootstrap).WithNumber(n+1).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoUDP).
				WithDstPorts(types.Ports(dhcpPorts...)...).
				WithVia(name).
				Build())
	}
}

// genAntiSpoof emits set 7: reverse path verification, rejection of traffic
// not addressed to this host, a skip past generic checks for traffic
// already known legitimate on its declared network, and the RFC1918 spoof
// signature denial on unbounded interfaces. Descriptors with network "any"
// receive the spoof denial regardless of trust.
func (c *Compiler) genAntiSpoof(p *rules.Program) {
	fixed := rules.BandFor(rules.PurposeAntiSpoofFixed)
	n := fixed.Base

	p.Rules = append(p.Rules,
		types.NewRuleBuilder().
			WithSet(rules.SetAntiSpoof).WithNumber(n).
			WithAction(types.NewDenyAction()).WithLog().
			WithProto(types.ProtoIP).
			WithDirection(types.DirectionIn).
			WithNotVerRevPath().
			Build(),
		// a protocol-correct reset so services probing the auth port
		// (IRC, SMTP) are not left hanging
		types.NewRuleBuilder().
			WithSet(rules.SetAntiSpoof).WithNumber(n+1).
			WithAction(c.rejectProbe(types.RejectKindReset)).
			WithProto(types.ProtoTCP).
			WithDst(types.AddrMe).
			WithDstPorts(types.Port(authPort)).
			WithDirection(types.DirectionIn).
			Build(),
		types.NewRuleBuilder().
			WithSet(rules.SetAntiSpoof).WithNumber(n+2).
			WithAction(types.NewDenyAction()).WithLog().
			WithProto(types.ProtoIP).
			WithDst(types.AddrNotMe).
			WithDirection(types.DirectionIn).
			Build())

	band := rules.BandFor(rules.PurposeAntiSpoofPerIfc)
	for _, d := range c.reg.Descriptors() {
		num := band.SlotStart(d.Index)
		if d.HasNetwork() {
			p.Rules = append(p.Rules,
				types.NewRuleBuilder().
					WithSet(rules.SetAntiSpoof).WithNumber(num).
					WithAction(types.NewSkipToAction(rules.SkipToShaping)).
					WithProto(types.ProtoIP).
					WithSrc(d.NetworkString()).
					WithDirection(types.DirectionIn).WithVia(d.Name).
					Build())
		} else {
			p.Rules = append(p.Rules,
				types.NewRuleBuilder().
					WithSet(rules.SetAntiSpoof).WithNumber(num).
					WithAction(types.NewDenyAction()).WithLog().
					WithProto(types.ProtoIP).
					WithSrc(spoofSourceNets...).
					WithDirection(types.DirectionIn).WithVia(d.Name).
					Build())
		}
	}
}
