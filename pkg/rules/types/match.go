package types

import (
	"strconv"
	"strings"
)

const (
	// ProtoIP matches any IP packet
	ProtoIP Protocol = "ip"
	// ProtoTCP matches TCP segments
	ProtoTCP Protocol = "tcp"
	// ProtoUDP matches UDP datagrams
	ProtoUDP Protocol = "udp"
	// ProtoICMP matches ICMP messages
	ProtoICMP Protocol = "icmp"

	// DirectionIn matches inbound packets
	DirectionIn Direction = "in"
	// DirectionOut matches outbound packets
	DirectionOut Direction = "out"
	// DirectionAny matches packets in either direction
	DirectionAny Direction = ""

	// AddrAny matches any address
	AddrAny = "any"
	// AddrMe matches addresses configured on this host
	AddrMe = "me"
	// AddrNotMe matches addresses not configured on this host
	AddrNotMe = "not me"

	// TCPFlagSetup matches TCP connection attempts (SYN without ACK)
	TCPFlagSetup TCPFlag = "setup"
	// TCPFlagEstablished matches segments of established connections
	TCPFlagEstablished TCPFlag = "established"
	// TCPFlagRst matches segments carrying RST
	TCPFlagRst TCPFlag = "rst"
	// TCPFlagAck matches segments carrying ACK
	TCPFlagAck TCPFlag = "ack"
	// TCPFlagNotSyn matches segments not carrying SYN
	TCPFlagNotSyn TCPFlag = "!syn"

	// IPOptionRR is the record-route IP option
	IPOptionRR IPOption = "rr"
	// IPOptionTS is the timestamp IP option
	IPOptionTS IPOption = "ts"
	// IPOptionLSRR is the loose source-route IP option
	IPOptionLSRR IPOption = "lsrr"
	// IPOptionSSRR is the strict source-route IP option
	IPOptionSSRR IPOption = "ssrr"
)

// Protocol is the protocol a match predicate applies to
type Protocol string

// Direction is the packet direction a match predicate applies to
type Direction string

// TCPFlag is a TCP flag match keyword
type TCPFlag string

// IPOption is an IP option match keyword
type IPOption string

// PortRange is an inclusive port range. Lo == Hi matches a single port
type PortRange struct {
	Lo uint16
	Hi uint16
}

// Port returns a PortRange matching a single port
func Port(p uint16) PortRange {
	return PortRange{Lo: p, Hi: p}
}

// Ports returns PortRanges matching each provided single port
func Ports(ports ...uint16) []PortRange {
	prs := make([]PortRange, 0, len(ports))
	for _, p := range ports {
		prs = append(prs, Port(p))
	}
	return prs
}

func (p PortRange) String() string {
	if p.Lo == p.Hi {
		return strconv.FormatUint(uint64(p.Lo), 10)
	}
	return strconv.FormatUint(uint64(p.Lo), 10) + "-" + strconv.FormatUint(uint64(p.Hi), 10)
}

// Endpoint is one side (source or destination) of a match predicate
type Endpoint struct {
	// Addrs are address expressions (CIDRs, AddrAny, AddrMe, AddrNotMe).
	// Empty means AddrAny. Multiple entries render as a comma list.
	Addrs []string
	// Ports constrain the endpoint's port. Empty means any port
	Ports []PortRange
}

// Equals compares this Endpoint with other
func (e *Endpoint) Equals(other *Endpoint) bool {
	if !equalStringSlices(e.addrsOrAny(), other.addrsOrAny()) {
		return false
	}
	if len(e.Ports) != len(other.Ports) {
		return false
	}
	for i := range e.Ports {
		if e.Ports[i] != other.Ports[i] {
			return false
		}
	}
	return true
}

func (e *Endpoint) addrsOrAny() []string {
	if len(e.Addrs) == 0 {
		return []string{AddrAny}
	}
	return e.Addrs
}

// GenCmdLineArgs implements CmdLineGenerator interface
func (e *Endpoint) GenCmdLineArgs() []string {
	args := []string{strings.Join(e.addrsOrAny(), ",")}

	if len(e.Ports) > 0 {
		ports := make([]string, 0, len(e.Ports))
		for _, p := range e.Ports {
			ports = append(ports, p.String())
		}
		args = append(args, strings.Join(ports, ","))
	}
	return args
}

// MatchSpec is the match predicate of a rule: protocol, endpoints, direction,
// interface binding and protocol options represented as a tagged structure.
// It renders to the engine's syntax only at the command line boundary.
type MatchSpec struct {
	Proto     Protocol
	Src       Endpoint
	Dst       Endpoint
	Direction Direction
	// Via binds the predicate to packets received or sent through the named interface
	Via string
	// TCPFlags hold TCP flag match keywords. TCPFlagSetup and TCPFlagEstablished
	// render standalone, others combine under a single tcpflags expression
	TCPFlags []TCPFlag
	// ICMPTypes constrain ICMP message types
	ICMPTypes []uint8
	// IPOptions match packets carrying the listed IP options
	IPOptions []IPOption
	// Frag matches packet fragments with a non-zero offset
	Frag bool
	// IPLenMax matches packets whose total length is at most this value
	IPLenMax *uint16
	// NotVerRevPath matches packets failing the reverse path check
	NotVerRevPath bool
	// KeepState installs a dynamic rule on match
	KeepState bool
}

// Equals compares this MatchSpec with other, returns true if they are equal or false otherwise
func (m *MatchSpec) Equals(other *MatchSpec) bool {
	if m == other {
		return true
	}
	if m == nil || other == nil {
		return false
	}
	if m.Proto != other.Proto || m.Direction != other.Direction || m.Via != other.Via {
		return false
	}
	if !m.Src.Equals(&other.Src) || !m.Dst.Equals(&other.Dst) {
		return false
	}
	if len(m.TCPFlags) != len(other.TCPFlags) {
		return false
	}
	for i := range m.TCPFlags {
		if m.TCPFlags[i] != other.TCPFlags[i] {
			return false
		}
	}
	if len(m.ICMPTypes) != len(other.ICMPTypes) {
		return false
	}
	for i := range m.ICMPTypes {
		if m.ICMPTypes[i] != other.ICMPTypes[i] {
			return false
		}
	}
	if len(m.IPOptions) != len(other.IPOptions) {
		return false
	}
	for i := range m.IPOptions {
		if m.IPOptions[i] != other.IPOptions[i] {
			return false
		}
	}
	if m.Frag != other.Frag || m.NotVerRevPath != other.NotVerRevPath || m.KeepState != other.KeepState {
		return false
	}
	return compare(m.IPLenMax, other.IPLenMax, nil)
}

// GenCmdLineArgs implements CmdLineGenerator interface, rendering the
// predicate in ipfw body syntax:
//
//	proto from src [ports] to dst [ports] [in|out] [via ifc] [options]
func (m *MatchSpec) GenCmdLineArgs() []string {
	proto := m.Proto
	if proto == "" {
		proto = ProtoIP
	}
	args := []string{string(proto), "from"}
	args = append(args, m.Src.GenCmdLineArgs()...)
	args = append(args, "to")
	args = append(args, m.Dst.GenCmdLineArgs()...)

	if m.Direction != DirectionAny {
		args = append(args, string(m.Direction))
	}
	if m.Via != "" {
		args = append(args, "via", m.Via)
	}

	var tcpflags []string
	for _, f := range m.TCPFlags {
		switch f {
		case TCPFlagSetup, TCPFlagEstablished:
			args = append(args, string(f))
		default:
			tcpflags = append(tcpflags, string(f))
		}
	}
	if len(tcpflags) > 0 {
		args = append(args, "tcpflags", strings.Join(tcpflags, ","))
	}

	if len(m.ICMPTypes) > 0 {
		icmpTypes := make([]string, 0, len(m.ICMPTypes))
		for _, t := range m.ICMPTypes {
			icmpTypes = append(icmpTypes, strconv.FormatUint(uint64(t), 10))
		}
		args = append(args, "icmptypes", strings.Join(icmpTypes, ","))
	}

	if len(m.IPOptions) > 0 {
		opts := make([]string, 0, len(m.IPOptions))
		for _, o := range m.IPOptions {
			opts = append(opts, string(o))
		}
		args = append(args, "ipoptions", strings.Join(opts, ","))
	}

	if m.Frag {
		args = append(args, "frag")
	}
	if m.IPLenMax != nil {
		args = append(args, "iplen", "0-"+strconv.FormatUint(uint64(*m.IPLenMax), 10))
	}
	if m.NotVerRevPath {
		args = append(args, "not", "verrevpath")
	}
	if m.KeepState {
		args = append(args, "keep-state")
	}

	return args
}
