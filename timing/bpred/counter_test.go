package bpred_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/gselect/timing/bpred"
)

var _ = Describe("SatCounter", func() {
	It("should start at zero and predict not taken", func() {
		c := bpred.NewSatCounter(2)
		Expect(c.Value()).To(Equal(uint8(0)))
		Expect(c.Max()).To(Equal(uint8(3)))
		Expect(c.Taken()).To(BeFalse())
	})

	It("should saturate at the maximum", func() {
		c := bpred.NewSatCounter(2)
		for i := 0; i < 10; i++ {
			c.Increment()
		}
		Expect(c.Value()).To(Equal(uint8(3)))
		Expect(c.Taken()).To(BeTrue())
	})

	It("should saturate at zero", func() {
		c := bpred.NewSatCounter(3)
		c.Increment()
		for i := 0; i < 10; i++ {
			c.Decrement()
		}
		Expect(c.Value()).To(Equal(uint8(0)))
	})

	It("should predict from the most significant bit", func() {
		c := bpred.NewSatCounter(3)
		for i := 0; i < 3; i++ {
			c.Increment()
		}
		Expect(c.Taken()).To(BeFalse()) // 3 = 0b011

		c.Increment()
		Expect(c.Taken()).To(BeTrue()) // 4 = 0b100
	})

	It("should support the full 8-bit width", func() {
		c := bpred.NewSatCounter(8)
		Expect(c.Max()).To(Equal(uint8(255)))
		for i := 0; i < 300; i++ {
			c.Increment()
		}
		Expect(c.Value()).To(Equal(uint8(255)))
	})

	It("should treat a 1-bit counter as last outcome", func() {
		c := bpred.NewSatCounter(1)
		c.Increment()
		Expect(c.Taken()).To(BeTrue())
		c.Decrement()
		Expect(c.Taken()).To(BeFalse())
	})
})

var _ = Describe("PatternHistoryTable", func() {
	var pht *bpred.PatternHistoryTable

	BeforeEach(func() {
		pht = bpred.NewPatternHistoryTable(8, 2)
	})

	It("should initialize every counter to zero", func() {
		Expect(pht.Size()).To(Equal(8))
		for i := uint32(0); i < 8; i++ {
			Expect(pht.Counter(i).Value()).To(Equal(uint8(0)))
			Expect(pht.Predict(i)).To(BeFalse())
		}
	})

	It("should require two taken outcomes to flip a 2-bit counter", func() {
		pht.Train(5, true)
		Expect(pht.Predict(5)).To(BeFalse())
		pht.Train(5, true)
		Expect(pht.Predict(5)).To(BeTrue())
	})

	It("should only train the addressed entry", func() {
		pht.Train(2, true)
		pht.Train(2, true)
		Expect(pht.Counter(2).Value()).To(Equal(uint8(2)))
		Expect(pht.Counter(3).Value()).To(Equal(uint8(0)))
	})

	It("should clamp in both directions", func() {
		for i := 0; i < 20; i++ {
			pht.Train(1, true)
		}
		Expect(pht.Counter(1).Value()).To(Equal(uint8(3)))
		for i := 0; i < 20; i++ {
			pht.Train(1, false)
		}
		Expect(pht.Counter(1).Value()).To(Equal(uint8(0)))
	})

	It("should clear on reset", func() {
		pht.Train(0, true)
		pht.Reset()
		Expect(pht.Counter(0).Value()).To(Equal(uint8(0)))
	})
})
