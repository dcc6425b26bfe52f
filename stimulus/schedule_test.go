package stimulus

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schedule", func() {
	It("should release operations tick by tick in insertion order", func() {
		s := NewSchedule()
		Expect(s.AddTestOp("RX", ActionWrite, 0, 8)).To(Succeed())
		Expect(s.AddTestOp("RX", ActionWrite, 1, 4)).To(Succeed())
		Expect(s.AddTestOp("TX", ActionRead, 1, 4)).To(Succeed())
		Expect(s.AddBigTestOp("accum", ActionRead, []uint64{1, 2}, 4)).To(Succeed())

		Expect(s.Ticks()).To(Equal([]uint64{4, 8}))
		Expect(s.Len()).To(Equal(4))
		Expect(s.At(4)).To(HaveLen(3))

		seq := NewSequence("Uart")
		for _, t := range s.Ticks() {
			Expect(s.FlushTick(seq, t)).To(Succeed())
		}

		ops := seq.Ops()
		Expect(ops).To(HaveLen(4))
		Expect(ops[0].Port).To(Equal("RX"))
		Expect(ops[1].Port).To(Equal("TX"))
		Expect(ops[2].Limbs).To(Equal([]uint64{1, 2}))
		Expect(ops[3].Tick).To(Equal(uint64(8)))
		Expect(s.Len()).To(Equal(0))
	})

	It("should reject empty limb lists", func() {
		Expect(NewSchedule().AddBigTestOp("a", ActionRead, nil, 0)).NotTo(Succeed())
	})
})
