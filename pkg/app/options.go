package app

import (
	"flag"
	"net"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/compiler"
)

// klog flags register on the global flag set, which tolerates only one
// registration per process
var initKlogFlags sync.Once

// Options stores option for the command
type Options struct {
	// RulesPath, if non-empty, is a file the compiled program is written
	// to in addition to (or with DryRun, instead of) the engine
	RulesPath string
	// DryRun compiles without touching the engine
	DryRun bool
	// VerifyLinks fails compilation when a descriptor names an interface
	// absent from the host
	VerifyLinks bool

	debug     bool
	stealth   bool
	blackhole bool
	logAll    bool

	routerExternal  string
	routerClient    string
	routerClientNet string

	trustedTCPPorts []uint
	trustedUDPPorts []uint
	localTCPPorts   []uint
	localUDPPorts   []uint
	publicTCPPorts  []uint
	publicUDPPorts  []uint

	disableBootstrap bool
	disableShaping   bool
	disableOutbound  bool
	disableOpenPorts bool
}

// NewOptions initializes Options
func NewOptions() *Options {
	return &Options{}
}

// AddFlags adds command line flags into command
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	initKlogFlags.Do(func() { klog.InitFlags(nil) })
	fs.SortFlags = false
	fs.StringVar(&o.RulesPath, "rules-path", o.RulesPath, "If non-empty, will use this path to store the compiled rule program.")
	fs.BoolVar(&o.DryRun, "dry-run", o.DryRun, "Compile the rule program without applying it to the packet filter engine.")
	fs.BoolVar(&o.VerifyLinks, "verify-links", o.VerifyLinks, "Fail if an interface descriptor names an interface that does not exist on the host.")
	fs.BoolVar(&o.debug, "debug", o.debug, "Raise log verbosity, equivalent to -v=5.")
	fs.BoolVar(&o.stealth, "stealth", o.stealth, "Silently drop instead of sending protocol error responses.")
	fs.BoolVar(&o.blackhole, "blackhole", o.blackhole, "Silence the final catch-all and auth-probe responses only.")
	fs.BoolVar(&o.logAll, "log-all", o.logAll, "Log outbound traffic not matched by explicit policy.")
	fs.StringVar(&o.routerExternal, "router-external", o.routerExternal, "External interface for router mode.")
	fs.StringVar(&o.routerClient, "router-client", o.routerClient, "Client interface for router mode.")
	fs.StringVar(&o.routerClientNet, "router-client-net", o.routerClientNet, "Client network (CIDR) for router mode.")
	fs.UintSliceVar(&o.trustedTCPPorts, "trusted-tcp-ports", nil, "TCP ports opened inbound on trusted interfaces only.")
	fs.UintSliceVar(&o.trustedUDPPorts, "trusted-udp-ports", nil, "UDP ports opened inbound on trusted interfaces only.")
	fs.UintSliceVar(&o.localTCPPorts, "local-tcp-ports", nil, "TCP ports opened inbound on interfaces with a bounded network or trust.")
	fs.UintSliceVar(&o.localUDPPorts, "local-udp-ports", nil, "UDP ports opened inbound on interfaces with a bounded network or trust.")
	fs.UintSliceVar(&o.publicTCPPorts, "public-tcp-ports", nil, "TCP ports opened inbound on all interfaces.")
	fs.UintSliceVar(&o.publicUDPPorts, "public-udp-ports", nil, "UDP ports opened inbound on all interfaces.")
	fs.BoolVar(&o.disableBootstrap, "disable-bootstrap", o.disableBootstrap, "Disable the DHCP/ICMP bootstrap rule set.")
	fs.BoolVar(&o.disableShaping, "disable-shaping", o.disableShaping, "Disable the traffic shaping rule set.")
	fs.BoolVar(&o.disableOutbound, "disable-outbound", o.disableOutbound, "Disable the default outbound allowances.")
	fs.BoolVar(&o.disableOpenPorts, "disable-open-ports", o.disableOpenPorts, "Disable the operator-opened inbound port rule set.")
	fs.AddGoFlagSet(flag.CommandLine)
}

// CompilerOptions translates command line options into compile options
func (o *Options) CompilerOptions() (*compiler.Options, error) {
	opts := compiler.DefaultOptions()
	opts.Stealth = o.stealth
	opts.Blackhole = o.blackhole
	opts.LogAll = o.logAll
	opts.EnableBootstrap = !o.disableBootstrap
	opts.EnableShaping = !o.disableShaping
	opts.EnableOutbound = !o.disableOutbound
	opts.EnableOpenPorts = !o.disableOpenPorts

	if o.routerExternal != "" || o.routerClient != "" || o.routerClientNet != "" {
		_, clientNet, err := net.ParseCIDR(o.routerClientNet)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid router client network %q", o.routerClientNet)
		}
		opts.Router = &compiler.RouterConfig{
			External:  o.routerExternal,
			Client:    o.routerClient,
			ClientNet: clientNet,
		}
	}

	var err error
	conv := func(name string, in []uint) []uint16 {
		out, cerr := toPorts(in)
		if cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "invalid %s", name)
		}
		return out
	}
	opts.TrustedTCPPorts = conv("trusted-tcp-ports", o.trustedTCPPorts)
	opts.TrustedUDPPorts = conv("trusted-udp-ports", o.trustedUDPPorts)
	opts.LocalTCPPorts = conv("local-tcp-ports", o.localTCPPorts)
	opts.LocalUDPPorts = conv("local-udp-ports", o.localUDPPorts)
	opts.PublicTCPPorts = conv("public-tcp-ports", o.publicTCPPorts)
	opts.PublicUDPPorts = conv("public-udp-ports", o.publicUDPPorts)
	if err != nil {
		return nil, err
	}
	return opts, nil
}

func toPorts(in []uint) ([]uint16, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]uint16, 0, len(in))
	for _, p := range in {
		if p == 0 || p > 65535 {
			return nil, errors.Errorf("port %d out of range", p)
		}
		out = append(out, uint16(p))
	}
	return out, nil
}
