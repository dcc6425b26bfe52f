package uartmem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/uart"
)

// line decodes frames from the ops of one port.
type line struct {
	bits   map[uint64]uint64
	baud   uint64
	sample uint64
}

func newLine(seq *stimulus.Sequence, portName string, baud, sample uint64) line {
	l := line{bits: make(map[uint64]uint64), baud: baud, sample: sample}
	for _, op := range seq.OpsOn(portName) {
		l.bits[op.Tick] = op.Value
	}

	return l
}

func (l line) frame(start uint64, width uint) uart.Frame {
	bits := make([]uint64, width+uart.FrameOverhead)
	for i := range bits {
		tick := start + uint64(i)*l.baud + l.sample
		v, ok := l.bits[tick]
		ExpectWithOffset(1, ok).To(BeTrue(), "no bit at tick %d", tick)
		bits[i] = v
	}

	f, err := uart.DecodeFrame(bits, width)
	ExpectWithOffset(1, err).NotTo(HaveOccurred())

	return f
}

var _ = Describe("UART register file", func() {
	var (
		g   *Generator
		cfg uart.Config
	)

	BeforeEach(func() {
		cfg = DefaultConfig

		var err error
		g, err = MakeBuilder().
			WithOptions(devices.Options{}.WithSeed(8)).
			Build("Uart")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should need room for reset and every transaction", func() {
		Expect(g.MinCycles()).To(Equal(uint64(2 + 16*92)))
	})

	It("should write every register, then read them back", func() {
		seq, err := g.Generate(g.MinCycles())
		Expect(err).NotTo(HaveOccurred())
		Expect(stimulus.Validate(seq.Ops(), g.Ports())).To(Succeed())

		baud := uint64(cfg.BaudPeriod)
		rx := newLine(seq, "RX", baud, 0)
		tx := newLine(seq, "TX", baud, baud-1)

		addrTicks := cfg.FrameTicks(cfg.AddrWidth)
		dataTicks := cfg.FrameTicks(cfg.DataWidth)

		tick := uint64(2)
		written := make(map[uint64]uint64)

		for i := uint64(0); i < cfg.Registers(); i++ {
			Expect(rx.frame(tick, cfg.AddrWidth).Payload).To(Equal(uart.FlagWrite))
			addr := rx.frame(tick+addrTicks, cfg.AddrWidth).Payload
			Expect(addr).To(Equal(i))
			written[addr] = rx.frame(tick+2*addrTicks, cfg.DataWidth).Payload
			tick += 2*addrTicks + dataTicks
		}

		for i := uint64(0); i < cfg.Registers(); i++ {
			Expect(rx.frame(tick, cfg.AddrWidth).Payload).To(Equal(uart.FlagRead))
			addr := rx.frame(tick+addrTicks, cfg.AddrWidth).Payload
			Expect(addr).To(Equal(i))
			Expect(tx.frame(tick+2*addrTicks, cfg.DataWidth).Payload).
				To(Equal(written[addr]))
			tick += 2*addrTicks + dataTicks
		}

		Expect(tick).To(Equal(g.MinCycles()))
	})

	It("should hold reset with the line idle", func() {
		seq, err := g.Generate(g.MinCycles())
		Expect(err).NotTo(HaveOccurred())

		resets := seq.OpsOn("rst_l")
		Expect(resets).To(HaveLen(2))
		Expect(resets[0].Tick).To(Equal(uint64(0)))
		Expect(resets[1].Tick).To(Equal(uint64(1)))

		rx := seq.OpsOn("RX")
		Expect(rx[0].Tick).To(Equal(uint64(0)))
		Expect(rx[0].Value).To(Equal(uart.StopBit))
		Expect(rx[1].Tick).To(Equal(uint64(2)))
		Expect(rx[1].Value).To(Equal(uart.StartBit))
	})

	It("should read back fewer registers when asked", func() {
		g, err := MakeBuilder().WithNumReads(3).Build("Uart")
		Expect(err).NotTo(HaveOccurred())

		seq, err := g.Generate(g.MinCycles() + 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(seq.OpsOn("TX")).To(HaveLen(3 * 11))
		Expect(seq.MaxTick()).To(Equal(g.MinCycles() + 9))
	})

	It("should report every frame", func() {
		driven := 0
		g.AcceptFrameHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == uart.HookPosFrameDriven {
				driven++
			}
		}))

		_, err := g.Generate(g.MinCycles())
		Expect(err).NotTo(HaveOccurred())
		Expect(driven).To(Equal(8*3 + 8*2))
	})

	It("should refuse a budget that is too small", func() {
		seq, err := g.Generate(g.MinCycles() - 1)
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
		Expect(seq).To(BeNil())
	})

	It("should refuse more reads than writes", func() {
		_, err := MakeBuilder().WithNumReads(9).Build("Uart")
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
	})

	It("should refuse a zero baud period", func() {
		_, err := New("Uart", devices.Params{MacroBaudPeriod: "0"}, devices.Options{})
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())

		_, err = MakeBuilder().
			WithConfig(uart.Config{BaudPeriod: 0, DataWidth: 8, AddrWidth: 3}).
			Build("Uart")
		Expect(errors.Is(err, devices.ErrInvalidConfig)).To(BeTrue())
	})

	It("should be created from macros", func() {
		gen, err := New("Uart", devices.Params{
			MacroBaudPeriod: "2",
			MacroDataWidth:  "16",
			MacroAddrWidth:  "2",
			MacroNumReads:   "4",
		}, devices.Options{})
		Expect(err).NotTo(HaveOccurred())

		u := gen.(*Generator)
		Expect(u.Config()).To(Equal(uart.Config{BaudPeriod: 2, DataWidth: 16, AddrWidth: 2}))
		Expect(u.NumReads()).To(Equal(uint64(4)))
	})
})
