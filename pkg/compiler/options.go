package compiler

import "net"

// RouterConfig declares router mode: traffic is forwarded between the
// external and client interfaces, with address translation on the external
// side.
type RouterConfig struct {
	// External is the interface facing the upstream network
	External string
	// Client is the interface facing the routed client network
	Client string
	// ClientNet is the network served on the client interface
	ClientNet *net.IPNet
}

// Options are the global compile options. Port lists open inbound ports at
// three trust tiers; the Enable fields toggle the independently switchable
// rule sets.
type Options struct {
	// Stealth converts every protocol-specific reject response into a
	// silent drop. Match predicates are unaffected
	Stealth bool
	// Blackhole silences the final catch-all and auth-probe responses
	// without affecting other reject sites
	Blackhole bool
	// LogAll marks the residual outbound allowance for logging
	LogAll bool

	// Router enables the routing set when non-nil
	Router *RouterConfig

	// Operator-opened inbound ports per trust tier.
	// Trusted ports open only on trusted descriptors, local ports on
	// descriptors with a bounded network or trust, public ports on all.
	TrustedTCPPorts []uint16
	TrustedUDPPorts []uint16
	LocalTCPPorts   []uint16
	LocalUDPPorts   []uint16
	PublicTCPPorts  []uint16
	PublicUDPPorts  []uint16

	// EnableBootstrap toggles the DHCP/ICMP bootstrap set, required
	// before an address is leased
	EnableBootstrap bool
	// EnableShaping toggles the shaping set
	EnableShaping bool
	// EnableOutbound toggles the default outbound allowances, letting an
	// external per-application outbound controller take over when off
	EnableOutbound bool
	// EnableOpenPorts toggles the operator-opened inbound port set
	EnableOpenPorts bool
}

// DefaultOptions returns Options with all switchable sets enabled
func DefaultOptions() *Options {
	return &Options{
		EnableBootstrap: true,
		EnableShaping:   true,
		EnableOutbound:  true,
		EnableOpenPorts: true,
	}
}
