package counter

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/stimulus"
)

func ticksWhere(ops []stimulus.Operation, value uint64) []uint64 {
	var ticks []uint64

	for _, op := range ops {
		if op.Value == value {
			ticks = append(ticks, op.Tick)
		}
	}

	return ticks
}

var _ = Describe("Counter", func() {
	It("should span ticks [0, 20) for 20 cycles", func() {
		seq, err := MakeBuilder().Build("Counter").Generate(20)
		Expect(err).NotTo(HaveOccurred())

		ops := seq.Ops()
		Expect(ops[0].Tick).To(Equal(uint64(0)))
		Expect(seq.MaxTick()).To(Equal(uint64(19)))

		resets := seq.OpsOn("reset_l")
		Expect(resets).To(HaveLen(2))
		Expect(resets[0].Tick).To(Equal(uint64(0)))
		Expect(resets[0].Value).To(Equal(uint64(0)))
		Expect(resets[1].Tick).To(Equal(uint64(1)))
		Expect(resets[1].Value).To(Equal(uint64(1)))

		Expect(stimulus.Validate(ops, Ports())).To(Succeed())
	})

	It("should program stop from 1 through 10, one per cycle", func() {
		seq, err := MakeBuilder().Build("Counter").Generate(20)
		Expect(err).NotTo(HaveOccurred())

		stops := seq.OpsOn("stop")
		Expect(stops).To(HaveLen(WindowCycles))
		for i, op := range stops {
			Expect(op.Value).To(Equal(uint64(i + 1)))
			Expect(op.Tick).To(Equal(uint64(i + 2)))
		}
	})

	It("should pulse done with a period of 8 after the window", func() {
		seq, err := MakeBuilder().Build("Counter").Generate(60)
		Expect(err).NotTo(HaveOccurred())

		var steady []stimulus.Operation
		for _, op := range seq.OpsOn("done") {
			if op.Tick > 1+WindowCycles {
				steady = append(steady, op)
			}
		}

		pulses := ticksWhere(steady, 1)
		Expect(pulses).To(Equal([]uint64{19, 27, 35, 43, 51, 59}))
		Expect(ticksWhere(steady, 0)).To(HaveLen(len(steady) - len(pulses)))
	})

	It("should pulse done at the last tick of a 20 cycle run", func() {
		seq, err := MakeBuilder().Build("Counter").Generate(20)
		Expect(err).NotTo(HaveOccurred())

		done := seq.OpsOn("done")
		last := done[len(done)-1]
		Expect(last.Tick).To(Equal(uint64(19)))
		Expect(last.Value).To(Equal(uint64(1)))
	})

	It("should shift the first cycles by the reset delay", func() {
		seq, err := MakeBuilder().
			WithResetDelay(3).
			Build("Counter").
			Generate(40)
		Expect(err).NotTo(HaveOccurred())

		resets := seq.OpsOn("reset_l")
		Expect(resets[1].Tick).To(Equal(uint64(4)))

		stops := seq.OpsOn("stop")
		Expect(stops[0].Tick).To(Equal(uint64(5)))

		var steady []stimulus.Operation
		for _, op := range seq.OpsOn("done") {
			if op.Tick > 4+WindowCycles {
				steady = append(steady, op)
			}
		}
		Expect(ticksWhere(steady, 1)).To(Equal([]uint64{22, 30, 38}))
	})

	It("should wrap every cycle in clock writes", func() {
		seq, err := MakeBuilder().Build("Counter").Generate(5)
		Expect(err).NotTo(HaveOccurred())

		clk := seq.OpsOn("clk")
		Expect(clk).To(HaveLen(10))

		ops := seq.Ops()
		Expect(ops[0].Port).To(Equal("clk"))
		Expect(ops[0].Value).To(Equal(uint64(1)))
		Expect(ops[len(ops)-1].Port).To(Equal("clk"))
		Expect(ops[len(ops)-1].Value).To(Equal(uint64(0)))
	})

	It("should drop clock writes in direct mode", func() {
		seq, err := MakeBuilder().
			WithOptions(devices.Options{DirectMode: true}).
			Build("Counter").
			Generate(20)
		Expect(err).NotTo(HaveOccurred())

		Expect(seq.OpsOn("clk")).To(BeEmpty())
		Expect(seq.Suppressed()).To(Equal(40))
	})

	It("should refuse a budget that does not cover reset", func() {
		_, err := MakeBuilder().WithResetDelay(5).Build("Counter").Generate(6)
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
	})

	It("should be created from macros", func() {
		g, err := New("Counter", devices.Params{MacroResetDelay: "2"}, devices.Options{})
		Expect(err).NotTo(HaveOccurred())
		Expect(g.Class()).To(Equal(Class))

		seq, err := g.Generate(10)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.OpsOn("reset_l")[1].Tick).To(Equal(uint64(3)))
	})

	It("should reject malformed and unknown macros", func() {
		_, err := New("Counter", devices.Params{MacroResetDelay: "soon"}, devices.Options{})
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())

		_, err = New("Counter", devices.Params{"BAUD_PERIOD": "4"}, devices.Options{})
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
	})
})
