package compiler_test

import (
	"fmt"
	"net"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	klog "k8s.io/klog/v2"

	"github.com/trustwall/trustwall/pkg/compiler"
	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
	"github.com/trustwall/trustwall/pkg/spec"
)

var log = klog.NewKlogr().WithName("compiler-test")

func compile(tokens []string, opts *compiler.Options) *rules.Program {
	reg, err := spec.BuildRegistry(tokens)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	c, err := compiler.NewCompiler(reg, opts, log)
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	p, err := c.Compile()
	ExpectWithOffset(1, err).ToNot(HaveOccurred())
	return p
}

func rulesVia(p *rules.Program, set types.SetID, ifc string) []*types.Rule {
	out := make([]*types.Rule, 0)
	for _, r := range p.RulesInSet(set) {
		if r.Match != nil && r.Match.Via == ifc {
			out = append(out, r)
		}
	}
	return out
}

var _ = Describe("Compiler tests", func() {
	Context("construction", func() {
		It("rejects more descriptors than the numbering bands hold", func() {
			tokens := make([]string, rules.MaxInterfaces+1)
			for i := range tokens {
				tokens[i] = fmt.Sprintf("en%d", i)
			}
			reg, err := spec.BuildRegistry(tokens)
			Expect(err).ToNot(HaveOccurred())

			_, err = compiler.NewCompiler(reg, compiler.DefaultOptions(), log)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an incomplete router declaration", func() {
			reg, err := spec.BuildRegistry([]string{"en0"})
			Expect(err).ToNot(HaveOccurred())

			opts := compiler.DefaultOptions()
			opts.Router = &compiler.RouterConfig{External: "en0"}
			_, err = compiler.NewCompiler(reg, opts, log)
			Expect(err).To(HaveOccurred())
		})
	})

	Context("numbering invariants", func() {
		tokens := []string{
			"en0+mac::192.168.1.0/24", "en1{504,120}", "en2+win:10.0.0.0/8", "tap0"}

		It("never reuses a (set, number) pair", func() {
			p := compile(tokens, compiler.DefaultOptions())

			type key struct {
				set types.SetID
				num uint32
			}
			seen := make(map[key]struct{})
			for _, r := range p.Rules {
				k := key{r.SetID, r.Number}
				_, dup := seen[k]
				Expect(dup).To(BeFalse(), "duplicate rule number %d in set %d", r.Number, r.SetID)
				seen[k] = struct{}{}
			}
		})

		It("emits strictly increasing numbers within each set", func() {
			p := compile(tokens, compiler.DefaultOptions())

			last := make(map[types.SetID]uint32)
			for _, r := range p.Rules {
				if prev, ok := last[r.SetID]; ok {
					Expect(r.Number).To(BeNumerically(">", prev),
						"rule %d not after %d in set %d", r.Number, prev, r.SetID)
				}
				last[r.SetID] = r.Number
			}
		})

		It("compiles the same argument list to an identical program", func() {
			p1 := compile(tokens, compiler.DefaultOptions())
			p2 := compile(tokens, compiler.DefaultOptions())

			Expect(p1.Equals(p2)).To(BeTrue())
			Expect(p1.Render()).To(Equal(p2.Render()))
		})
	})

	Context("mac and windows service sets", func() {
		It("scopes mac service rules to the descriptor's own network, never any", func() {
			p := compile([]string{"en0+mac::192.168.1.0/24", "en1{504,120}"}, compiler.DefaultOptions())

			macRules := p.RulesInSet(rules.SetMacServices)
			Expect(macRules).ToNot(BeEmpty())
			for _, r := range macRules {
				Expect(r.Match.Via).To(Equal("en0"))
				Expect(r.Match.Src.Addrs).To(Equal([]string{"192.168.1.0/24"}))
				Expect(r.Match.Src.Addrs).ToNot(ContainElement(types.AddrAny))
			}
			Expect(p.RulesInSet(rules.SetWinServices)).To(BeEmpty())
		})

		It("emits no service rules for a mac descriptor without a bounded network", func() {
			p := compile([]string{"en0+mac"}, compiler.DefaultOptions())

			Expect(p.RulesInSet(rules.SetMacServices)).To(BeEmpty())
			Expect(p.Services).To(BeEmpty())
		})

		It("requests the multicast discovery responder iff mac rules were emitted", func() {
			withMac := compile([]string{"en0+mac:192.168.1.0/24"}, compiler.DefaultOptions())
			Expect(withMac.Services).To(Equal([]rules.ServiceToggle{
				{Service: rules.ServiceMDNSResponder, Enable: true}}))

			withoutMac := compile([]string{"en0+win:192.168.1.0/24"}, compiler.DefaultOptions())
			Expect(withoutMac.Services).To(BeEmpty())
		})

		It("emits windows service rules for a both-marker descriptor", func() {
			p := compile([]string{"en0+mac+win:192.168.1.0/24"}, compiler.DefaultOptions())

			Expect(p.RulesInSet(rules.SetMacServices)).ToNot(BeEmpty())
			Expect(p.RulesInSet(rules.SetWinServices)).ToNot(BeEmpty())
		})
	})

	Context("trust invariant", func() {
		It("emits trusted ICMP rules only for trusted descriptors", func() {
			p := compile([]string{"en0::192.168.1.0/24", "en1:10.0.0.0/8"}, compiler.DefaultOptions())

			Expect(rulesVia(p, rules.SetTrustedNets, "en0")).ToNot(BeEmpty())
			Expect(rulesVia(p, rules.SetTrustedNets, "en1")).To(BeEmpty())
		})

		It("never opens trusted-tier ports on an untrusted descriptor", func() {
			opts := compiler.DefaultOptions()
			opts.TrustedTCPPorts = []uint16{8080}
			p := compile([]string{"en0::192.168.1.0/24", "en1:10.0.0.0/8"}, opts)

			band := rules.BandFor(rules.PurposeOpenPorts)
			for _, r := range rulesVia(p, rules.SetOpenPorts, "en1") {
				// trusted-tier rules occupy the first two numbers of a slot
				offset := r.Number - band.SlotStart(1)
				Expect(offset).To(BeNumerically(">=", 2),
					"trusted-tier rule emitted for untrusted descriptor")
			}
		})

		It("gates local-tier ports on a bounded network or trust", func() {
			opts := compiler.DefaultOptions()
			opts.LocalTCPPorts = []uint16{631}
			p := compile([]string{"en0:192.168.1.0/24", "tap0"}, opts)

			Expect(rulesVia(p, rules.SetOpenPorts, "en0")).ToNot(BeEmpty())
			Expect(rulesVia(p, rules.SetOpenPorts, "tap0")).To(BeEmpty())
		})

		It("opens public-tier ports on every descriptor", func() {
			opts := compiler.DefaultOptions()
			opts.PublicTCPPorts = []uint16{80}
			p := compile([]string{"en0::192.168.1.0/24", "tap0"}, opts)

			Expect(rulesVia(p, rules.SetOpenPorts, "en0")).ToNot(BeEmpty())
			Expect(rulesVia(p, rules.SetOpenPorts, "tap0")).ToNot(BeEmpty())
		})
	})

	Context("bare descriptor", func() {
		It("receives only default-path rules", func() {
			p := compile([]string{"tap0"}, compiler.DefaultOptions())

			Expect(p.RulesInSet(rules.SetMacServices)).To(BeEmpty())
			Expect(p.RulesInSet(rules.SetWinServices)).To(BeEmpty())
			Expect(p.RulesInSet(rules.SetTrustedNets)).ToNot(BeEmpty(),
				"broadcast containment tail is always present")
			Expect(rulesVia(p, rules.SetTrustedNets, "tap0")).To(BeEmpty())
			Expect(rulesVia(p, rules.SetBootstrap, "tap0")).ToNot(BeEmpty())
			Expect(rulesVia(p, rules.SetAntiSpoof, "tap0")).ToNot(BeEmpty())
		})

		It("denies private-source inbound traffic on its unbounded interface", func() {
			p := compile([]string{"tap0"}, compiler.DefaultOptions())

			perIfc := rulesVia(p, rules.SetAntiSpoof, "tap0")
			Expect(perIfc).To(HaveLen(1))
			r := perIfc[0]
			Expect(r.Action.Type()).To(Equal(types.ActionTypeDeny))
			Expect(r.Match.Src.Addrs).To(ContainElements(
				"10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16", "127.0.0.0/8"))
		})

		It("skips bounded-network inbound traffic past the generic checks", func() {
			p := compile([]string{"en0:192.168.1.0/24"}, compiler.DefaultOptions())

			perIfc := rulesVia(p, rules.SetAntiSpoof, "en0")
			Expect(perIfc).To(HaveLen(1))
			skipto, ok := perIfc[0].Action.(*types.SkipToAction)
			Expect(ok).To(BeTrue())
			Expect(skipto.Target()).To(Equal(rules.SkipToShaping))
		})
	})

	Context("shaping", func() {
		It("allocates pipes only for rate-bearing descriptors", func() {
			p := compile([]string{"en0+mac::192.168.1.0/24", "en1{504,120}"}, compiler.DefaultOptions())

			var ids []uint32
			for _, pipe := range p.Pipes {
				ids = append(ids, pipe.ID)
			}
			// fixed baseline pipes plus index 1's pair; nothing for index 0
			Expect(ids).To(ConsistOf(uint32(10), uint32(20), uint32(30), uint32(101), uint32(201)))
		})
	})

	Context("stealth mode", func() {
		tokens := []string{"en0::192.168.1.0/24", "tap0"}

		It("replaces every reject response with a silent drop", func() {
			opts := compiler.DefaultOptions()
			opts.Stealth = true
			p := compile(tokens, opts)

			for _, r := range p.Rules {
				Expect(r.Action.Type()).ToNot(Equal(types.ActionTypeReject))
			}
		})

		It("changes only response kinds, never match predicates", func() {
			normal := compile(tokens, compiler.DefaultOptions())
			opts := compiler.DefaultOptions()
			opts.Stealth = true
			stealth := compile(tokens, opts)

			Expect(stealth.Rules).To(HaveLen(len(normal.Rules)))
			for i := range normal.Rules {
				n, s := normal.Rules[i], stealth.Rules[i]
				Expect(s.SetID).To(Equal(n.SetID))
				Expect(s.Number).To(Equal(n.Number))
				if n.Match == nil {
					Expect(s.Match).To(BeNil())
					continue
				}
				Expect(s.Match.Equals(n.Match)).To(BeTrue(),
					"match predicate changed for rule %d in set %d", n.Number, n.SetID)
			}
		})

		It("leaves the residual outbound allowance untouched", func() {
			opts := compiler.DefaultOptions()
			opts.Stealth = true
			p := compile(tokens, opts)

			outbound := p.RulesInSet(rules.SetOutbound)
			Expect(outbound).ToNot(BeEmpty())
			last := outbound[len(outbound)-1]
			Expect(last.Action.Type()).To(Equal(types.ActionTypeAllow))
			Expect(last.Match.KeepState).To(BeTrue())
		})
	})

	Context("blackhole mode", func() {
		It("silences only the catch-all and auth-probe responses", func() {
			opts := compiler.DefaultOptions()
			opts.Blackhole = true
			p := compile([]string{"en0"}, opts)

			// the catch-all responses turn silent
			deny := p.RulesInSet(rules.SetDefaultDeny)
			Expect(deny[1].Action.Type()).To(Equal(types.ActionTypeDeny))
			Expect(deny[2].Action.Type()).To(Equal(types.ActionTypeDeny))

			// other reject sites keep their protocol responses
			state := p.RulesInSet(rules.SetState)
			reject, ok := state[2].Action.(*types.RejectAction)
			Expect(ok).To(BeTrue())
			Expect(reject.Kind()).To(Equal(types.RejectKindReset))
		})
	})

	Context("set toggles", func() {
		tokens := []string{"en0::192.168.1.0/24", "en1{504,120}"}

		It("disables the bootstrap set", func() {
			opts := compiler.DefaultOptions()
			opts.EnableBootstrap = false
			p := compile(tokens, opts)

			Expect(p.RulesInSet(rules.SetBootstrap)).To(BeEmpty())
		})

		It("disables shaping including pipes and queues", func() {
			opts := compiler.DefaultOptions()
			opts.EnableShaping = false
			p := compile(tokens, opts)

			Expect(p.RulesInSet(rules.SetShaping)).To(BeEmpty())
			Expect(p.Queues).To(BeEmpty())
			for _, pipe := range p.Pipes {
				Expect(pipe.ID).To(BeNumerically("<", 100), "shaping pipe emitted while disabled")
			}
		})

		It("disables the outbound set", func() {
			opts := compiler.DefaultOptions()
			opts.EnableOutbound = false
			p := compile(tokens, opts)

			Expect(p.RulesInSet(rules.SetOutbound)).To(BeEmpty())
		})

		It("always emits the default deny set", func() {
			opts := compiler.DefaultOptions()
			opts.EnableBootstrap = false
			opts.EnableShaping = false
			opts.EnableOutbound = false
			opts.EnableOpenPorts = false
			p := compile(tokens, opts)

			deny := p.RulesInSet(rules.SetDefaultDeny)
			Expect(deny).ToNot(BeEmpty())
			last := deny[len(deny)-1]
			Expect(last.Action.Type()).To(Equal(types.ActionTypeDeny))
			Expect(last.Log).To(BeTrue())
		})
	})

	Context("router mode", func() {
		routerOpts := func() *compiler.Options {
			_, clientNet, err := net.ParseCIDR("192.168.2.0/24")
			Expect(err).ToNot(HaveOccurred())
			opts := compiler.DefaultOptions()
			opts.Router = &compiler.RouterConfig{
				External:  "en1",
				Client:    "en0",
				ClientNet: clientNet,
			}
			return opts
		}

		It("diverts external traffic to the translation daemon", func() {
			p := compile([]string{"en0::192.168.2.0/24", "en1"}, routerOpts())

			var divert *types.Rule
			for _, r := range p.RulesInSet(rules.SetBaseline) {
				if r.Action.Type() == types.ActionTypeDivert {
					divert = r
				}
			}
			Expect(divert).ToNot(BeNil())
			Expect(divert.Match.Via).To(Equal("en1"))
		})

		It("emits the five pair-forwarding rules", func() {
			p := compile([]string{"en0::192.168.2.0/24", "en1"}, routerOpts())

			routing := p.RulesInSet(rules.SetRouting)
			Expect(routing).To(HaveLen(5))
			for _, r := range routing {
				Expect(r.Action.Type()).To(Equal(types.ActionTypeAllow))
				Expect(strings.Join(append(r.Match.Src.Addrs, r.Match.Dst.Addrs...), " ")).
					To(ContainSubstring("192.168.2.0/24"))
			}
		})

		It("emits no routing rules without router mode", func() {
			p := compile([]string{"en0", "en1"}, compiler.DefaultOptions())

			Expect(p.RulesInSet(rules.SetRouting)).To(BeEmpty())
		})
	})

	Context("repeated interface names", func() {
		It("gives each occurrence its own rule slots but one bootstrap slot per name", func() {
			p := compile([]string{
				"en0::192.168.1.0/24", "en0:10.0.0.0/8", "en1"}, compiler.DefaultOptions())

			// two anti-spoof slots for en0, one per occurrence
			Expect(rulesVia(p, rules.SetAntiSpoof, "en0")).To(HaveLen(2))
			// bootstrap keys on unique names: 2 rules per name
			Expect(p.RulesInSet(rules.SetBootstrap)).To(HaveLen(4))
		})
	})
})
