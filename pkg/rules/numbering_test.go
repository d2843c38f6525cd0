package rules_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/trustwall/trustwall/pkg/rules"
)

var _ = Describe("Numbering tests", func() {
	Context("ValidateNumbering", func() {
		It("accepts the built-in table", func() {
			Expect(rules.ValidateNumbering()).ToNot(HaveOccurred())
		})
	})

	Context("table layout", func() {
		It("keeps bands strictly ordered and non-overlapping", func() {
			var prevEnd uint32
			for _, b := range rules.Bands() {
				Expect(b.Base).To(BeNumerically(">=", prevEnd),
					"band %q overlaps its predecessor", b.Purpose)
				prevEnd = b.End()
			}
		})

		It("sizes per-interface bands for the maximum interface count", func() {
			for _, b := range rules.Bands() {
				if b.Stride == 0 {
					continue
				}
				lastSlot := b.SlotStart(rules.MaxInterfaces - 1)
				Expect(lastSlot + b.Stride).To(BeNumerically("<=", b.End()),
					"band %q overflows at the last interface slot", b.Purpose)
			}
		})

		It("lands skipto targets on their band bases", func() {
			Expect(rules.BandFor(rules.PurposeShapingExempt).Base).To(Equal(rules.SkipToShaping))
			Expect(rules.BandFor(rules.PurposeOutbound).Base).To(Equal(rules.SkipToOutbound))
		})
	})

	Context("SlotStart", func() {
		It("assigns disjoint slots per interface index", func() {
			b := rules.BandFor(rules.PurposeMacServices)
			Expect(b.SlotStart(0)).To(Equal(b.Base))
			Expect(b.SlotStart(1)).To(Equal(b.Base + b.Stride))
			Expect(b.SlotStart(2) - b.SlotStart(1)).To(Equal(b.Stride))
		})
	})

	Context("BandFor", func() {
		It("panics on an unknown purpose", func() {
			Expect(func() { rules.BandFor("no-such-purpose") }).To(Panic())
		})
	})
})
