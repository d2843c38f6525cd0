package spec_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/trustwall/trustwall/pkg/spec"
)

var _ = Describe("Parser tests", func() {
	Context("bare name", func() {
		It("defaults network to any, untrusted, unknown OS", func() {
			d, err := spec.Parse("tap0")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.Name).To(Equal("tap0"))
			Expect(d.HasNetwork()).To(BeFalse())
			Expect(d.NetworkString()).To(Equal("any"))
			Expect(d.Trusted).To(BeFalse())
			Expect(d.OSType).To(Equal(spec.OSTypeUnknown))
			Expect(d.HasRate()).To(BeFalse())
		})
	})

	Context("network separators", func() {
		It("parses a single colon as untrusted network", func() {
			d, err := spec.Parse("en0:192.168.1.0/24")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.Trusted).To(BeFalse())
			Expect(d.NetworkString()).To(Equal("192.168.1.0/24"))
		})

		It("parses a double colon as trusted network", func() {
			d, err := spec.Parse("en0::192.168.1.0/24")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.Trusted).To(BeTrue())
			Expect(d.NetworkString()).To(Equal("192.168.1.0/24"))
		})

		It("normalizes a host address to its network", func() {
			d, err := spec.Parse("en0:10.1.2.3/8")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.NetworkString()).To(Equal("10.0.0.0/8"))
		})

		It("accepts an explicit any network", func() {
			d, err := spec.Parse("en0:any")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.HasNetwork()).To(BeFalse())
		})

		It("fails on a non-CIDR network", func() {
			_, err := spec.Parse("en0:not-a-network")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedSpecError{}))
		})
	})

	Context("OS markers", func() {
		It("parses +mac", func() {
			d, err := spec.Parse("en0+mac:192.168.1.0/24")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.OSType).To(Equal(spec.OSTypeMac))
			Expect(d.MatchesMac()).To(BeTrue())
			Expect(d.MatchesWindows()).To(BeFalse())
		})

		It("parses +win", func() {
			d, err := spec.Parse("en0+win:192.168.1.0/24")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.OSType).To(Equal(spec.OSTypeWindows))
			Expect(d.MatchesWindows()).To(BeTrue())
		})

		It("parses both markers as both, in either order", func() {
			d1, err := spec.Parse("en0+mac+win")
			Expect(err).ToNot(HaveOccurred())
			d2, err := spec.Parse("en0+win+mac")
			Expect(err).ToNot(HaveOccurred())

			Expect(d1.OSType).To(Equal(spec.OSTypeBoth))
			Expect(d2.OSType).To(Equal(spec.OSTypeBoth))
			Expect(d1.MatchesMac()).To(BeTrue())
			Expect(d1.MatchesWindows()).To(BeTrue())
		})

		It("combines markers with a trusted network", func() {
			d, err := spec.Parse("en0+mac::192.168.1.0/24")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.OSType).To(Equal(spec.OSTypeMac))
			Expect(d.Trusted).To(BeTrue())
			Expect(d.NetworkString()).To(Equal("192.168.1.0/24"))
		})

		It("fails on an unrecognized marker", func() {
			_, err := spec.Parse("en0+linux:192.168.1.0/24")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedSpecError{}))
		})
	})

	Context("rate suffix", func() {
		It("parses {in,out} rates", func() {
			d, err := spec.Parse("en1{504,120}")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.Name).To(Equal("en1"))
			Expect(d.HasRate()).To(BeTrue())
			Expect(*d.InRateKbps).To(BeEquivalentTo(504))
			Expect(*d.OutRateKbps).To(BeEquivalentTo(120))
		})

		It("combines rates with markers and network", func() {
			d, err := spec.Parse("en1{504,120}+win::10.0.0.0/8")

			Expect(err).ToNot(HaveOccurred())
			Expect(d.Name).To(Equal("en1"))
			Expect(d.HasRate()).To(BeTrue())
			Expect(d.OSType).To(Equal(spec.OSTypeWindows))
			Expect(d.Trusted).To(BeTrue())
		})

		It("fails on unbalanced braces", func() {
			_, err := spec.Parse("en1{504,120")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedRateError{}))
		})

		It("fails on a single rate", func() {
			_, err := spec.Parse("en1{504}")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedRateError{}))
		})

		It("fails on a non-numeric rate", func() {
			_, err := spec.Parse("en1{fast,120}")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedRateError{}))
		})

		It("fails on a zero rate", func() {
			_, err := spec.Parse("en1{0,120}")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedRateError{}))
		})
	})

	Context("malformed tokens", func() {
		It("fails on an empty name", func() {
			_, err := spec.Parse(":192.168.1.0/24")

			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(&spec.MalformedSpecError{}))
		})

		It("fails on an empty token", func() {
			_, err := spec.Parse("")

			Expect(err).To(HaveOccurred())
		})
	})
})
