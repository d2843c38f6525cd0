package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/trustwall/trustwall/pkg/rules"
	"github.com/trustwall/trustwall/pkg/rules/types"
)

func sampleProgram() *rules.Program {
	return &rules.Program{
		Rules: []*types.Rule{
			types.NewRuleBuilder().
				WithSet(rules.SetBaseline).WithNumber(100).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoIP).
				WithVia("lo0").
				Build(),
			types.NewRuleBuilder().
				WithSet(rules.SetDefaultDeny).WithNumber(30003).
				WithAction(types.NewDenyAction()).WithLog().
				WithProto(types.ProtoIP).
				Build(),
		},
		Pipes:  []*types.PipeConfig{{ID: 100, BandwidthKbps: 504}},
		Queues: []*types.QueueConfig{{ID: 300, PipeID: 200, Weight: 7}},
		Services: []rules.ServiceToggle{
			{Service: rules.ServiceMDNSResponder, Enable: true},
		},
	}
}

var _ = Describe("Program tests", func() {
	Context("RulesInSet", func() {
		It("returns only rules of the requested set, in program order", func() {
			p := sampleProgram()

			baseline := p.RulesInSet(rules.SetBaseline)
			Expect(baseline).To(HaveLen(1))
			Expect(baseline[0].Number).To(BeEquivalentTo(100))
			Expect(p.RulesInSet(rules.SetShaping)).To(BeEmpty())
		})
	})

	Context("Equals", func() {
		It("returns true for identical programs", func() {
			Expect(sampleProgram().Equals(sampleProgram())).To(BeTrue())
		})

		It("returns false when a rule differs", func() {
			other := sampleProgram()
			other.Rules[0] = types.NewRuleBuilder().
				WithSet(rules.SetBaseline).WithNumber(101).
				WithAction(types.NewAllowAction()).
				WithProto(types.ProtoIP).
				WithVia("lo0").
				Build()
			Expect(sampleProgram().Equals(other)).To(BeFalse())
		})

		It("returns false when a pipe differs", func() {
			other := sampleProgram()
			other.Pipes[0] = &types.PipeConfig{ID: 100, BandwidthKbps: 120}
			Expect(sampleProgram().Equals(other)).To(BeFalse())
		})
	})

	Context("Render", func() {
		It("renders pipes, queues then rules, one command per line", func() {
			expected := "pipe 100 config bw 504Kbit/s\n" +
				"queue 300 config pipe 200 weight 7\n" +
				"add 100 set 0 allow ip from any to any via lo0\n" +
				"add 30003 set 30 deny log ip from any to any\n"

			Expect(sampleProgram().Render()).To(Equal(expected))
		})

		It("is stable across calls", func() {
			p := sampleProgram()
			Expect(p.Render()).To(Equal(p.Render()))
		})
	})
})
