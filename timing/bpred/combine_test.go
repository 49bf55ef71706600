package bpred_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gselect/timing/bpred"
)

var _ = Describe("Combine", func() {
	It("should return 1 when both operands are zero", func() {
		Expect(bpred.Combine(0, 0, 3)).To(Equal(uint32(1)))
		Expect(bpred.Combine(0, 0, 255)).To(Equal(uint32(1)))
	})

	It("should NOR the low eight bits MSB first", func() {
		// 0b00000101 NOR 0b00000000 = 0b11111010
		Expect(bpred.Combine(5, 0, 255)).To(Equal(uint32(0xFA)))
		Expect(bpred.Combine(5, 0, 3)).To(Equal(uint32(2)))
	})

	It("should yield zero where either operand has a bit set", func() {
		Expect(bpred.Combine(0xF0, 0x0F, 255)).To(Equal(uint32(0)))
		Expect(bpred.Combine(0xFF, 0, 255)).To(Equal(uint32(0)))
	})

	It("should be symmetric", func() {
		for a := uint32(0); a < 64; a++ {
			for h := uint32(0); h < 64; h++ {
				Expect(bpred.Combine(a, h, 63)).To(
					Equal(bpred.Combine(h, a, 63)),
					"a=%d h=%d", a, h)
			}
		}
	})

	It("should ignore bits above the 8-bit window", func() {
		Expect(bpred.Combine(0x105, 0x200, 0xFFFF)).To(
			Equal(bpred.Combine(0x05, 0x00, 0xFFFF)))
		Expect(bpred.Combine(0x105, 0x200, 0xFFFF)).To(Equal(uint32(0xFA)))
	})

	It("should never exceed 8 bits even with a wide mask", func() {
		for a := uint32(1); a < 1024; a += 7 {
			Expect(bpred.Combine(a, a*3, 0xFFFF)).To(BeNumerically("<", 256))
		}
	})

	It("should keep results within the mask", func() {
		for a := uint32(0); a < 300; a++ {
			for h := uint32(1); h < 16; h++ {
				Expect(bpred.Combine(a, h, 15)).To(BeNumerically("<=", 15))
			}
		}
	})

	It("should accept the full 32-bit operand range", func() {
		Expect(bpred.Combine(0xFFFFFF05, 0, 255)).To(Equal(uint32(0xFA)))
		Expect(bpred.Combine(0, 0xFFFFFF05, 255)).To(Equal(uint32(0xFA)))
	})
})
