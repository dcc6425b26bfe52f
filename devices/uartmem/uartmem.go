// Package uartmem generates stimulus for a register file that is written and
// read over a UART link.
package uartmem

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/uart"
)

// Class is the device class name.
const Class = "UART"

// The macros read by the factory.
const (
	MacroBaudPeriod = "BAUD_PERIOD"
	MacroDataWidth  = "DATA_WIDTH"
	MacroAddrWidth  = "ADDR_WIDTH"
	MacroNumReads   = "NUM_READS"
	MacroResetDelay = "RESET_DELAY"
)

// DefaultConfig is the link of the reference DUT.
var DefaultConfig = uart.Config{BaudPeriod: 4, DataWidth: 8, AddrWidth: 3}

// Ports returns the port map of the DUT.
func Ports() *port.Map {
	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("rst_l", 1, port.DirWrite).
		AddPort("RX", 1, port.DirWrite).
		AddPort("TX", 1, port.DirRead).
		AddPort("mem_debug", 1, port.DirRead).
		MustBuild()
}

// Builder builds UART register file generators.
type Builder struct {
	cfg        uart.Config
	numReads   uint64
	readsSet   bool
	resetDelay uint64
	opts       devices.Options
}

// MakeBuilder creates a builder with DefaultConfig that reads back every
// register.
func MakeBuilder() Builder {
	return Builder{cfg: DefaultConfig}
}

// WithConfig sets the link parameters.
func (b Builder) WithConfig(cfg uart.Config) Builder {
	b.cfg = cfg
	return b
}

// WithNumReads sets how many registers are read back. It cannot exceed the
// number of registers.
func (b Builder) WithNumReads(n uint64) Builder {
	b.numReads = n
	b.readsSet = true

	return b
}

// WithResetDelay sets how many extra cycles reset is held.
func (b Builder) WithResetDelay(d uint64) Builder {
	b.resetDelay = d
	return b
}

// WithOptions sets the generator options.
func (b Builder) WithOptions(opts devices.Options) Builder {
	b.opts = opts
	return b
}

// Build validates the configuration and creates a generator.
func (b Builder) Build(name string) (*Generator, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, errors.Wrap(devices.ErrInvalidConfig, err.Error())
	}

	reads := b.cfg.Registers()
	if b.readsSet {
		reads = b.numReads
	}

	if reads > b.cfg.Registers() {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"%d reads exceed %d writes", reads, b.cfg.Registers())
	}

	return &Generator{
		Base:       devices.MakeBase(name, Class, Ports(), b.opts),
		cfg:        b.cfg,
		numReads:   reads,
		resetDelay: b.resetDelay,
	}, nil
}

// New is the registry factory of the class.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	err := p.Only(MacroBaudPeriod, MacroDataWidth, MacroAddrWidth,
		MacroNumReads, MacroResetDelay)
	if err != nil {
		return nil, err
	}

	baud, err := p.UintIn(MacroBaudPeriod, uint64(DefaultConfig.BaudPeriod), 1, 1<<16)
	if err != nil {
		return nil, err
	}

	data, err := p.UintIn(MacroDataWidth, uint64(DefaultConfig.DataWidth), 1, uart.MaxPayloadWidth)
	if err != nil {
		return nil, err
	}

	addr, err := p.UintIn(MacroAddrWidth, uint64(DefaultConfig.AddrWidth), 1, 16)
	if err != nil {
		return nil, err
	}

	delay, err := p.UintIn(MacroResetDelay, 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}

	b := MakeBuilder().
		WithConfig(uart.Config{
			BaudPeriod: uint(baud),
			DataWidth:  uint(data),
			AddrWidth:  uint(addr),
		}).
		WithResetDelay(delay).
		WithOptions(opts)

	if _, ok := p[MacroNumReads]; ok {
		reads, err := p.Uint(MacroNumReads, 0)
		if err != nil {
			return nil, err
		}

		b = b.WithNumReads(reads)
	}

	g, err := b.Build(name)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Generator generates UART register file stimulus.
type Generator struct {
	devices.Base
	devices.QueueHooks

	cfg        uart.Config
	numReads   uint64
	resetDelay uint64
	frameHooks []hooking.Hook
}

// AcceptFrameHook registers a hook on the transactors of later Generate
// calls.
func (g *Generator) AcceptFrameHook(h hooking.Hook) {
	g.frameHooks = append(g.frameHooks, h)
}

// Config returns the link parameters.
func (g *Generator) Config() uart.Config {
	return g.cfg
}

// NumReads returns how many registers are read back.
func (g *Generator) NumReads() uint64 {
	return g.numReads
}

func (g *Generator) reset() devices.Reset {
	return devices.Reset{Port: "rst_l", Delay: g.resetDelay}
}

// MinCycles returns the smallest budget that fits reset, every write and
// every read.
func (g *Generator) MinCycles() uint64 {
	txn := 2*g.cfg.FrameTicks(g.cfg.AddrWidth) + g.cfg.FrameTicks(g.cfg.DataWidth)

	return g.reset().Release() + 1 + (g.cfg.Registers()+g.numReads)*txn
}

func (g *Generator) newTransactor(e stimulus.Emitter) *uart.Transactor {
	t, err := uart.MakeTransactorBuilder().
		WithConfig(g.cfg).
		WithPendingQueue(g.NewQueue(g.Name() + ".Pending")).
		Build(g.Name()+".Transactor", e)
	if err != nil {
		panic(err)
	}

	for _, h := range g.frameHooks {
		t.AcceptHook(h)
	}

	return t
}

// Generate holds reset with the RX line idle, then writes every register once
// with random data and reads back NUM_READS of them. The address counter wraps
// after the writes, so reads start again at register 0. The budget must fit
// all transactions.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	if err := devices.NeedCycles(Class, cycles, g.MinCycles()); err != nil {
		return nil, err
	}

	sched := stimulus.NewSchedule()
	t := g.newTransactor(sched)
	rng := g.Options().Source()
	reset := g.reset()

	tick := reset.Release() + 1

	for i := uint64(0); i < g.cfg.Registers(); i++ {
		var err error

		tick, err = t.Write(tick, rng.Uint64())
		if err != nil {
			return nil, err
		}
	}

	for i := uint64(0); i < g.numReads; i++ {
		var err error

		tick, err = t.Read(tick)
		if err != nil {
			return nil, err
		}
	}

	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}

	err := reset.Apply(clk, func(tick uint64) error {
		if tick == 0 {
			if err := seq.AddTestOp("RX", stimulus.ActionWrite, uart.StopBit, tick); err != nil {
				return err
			}
		}

		return sched.FlushTick(seq, tick)
	})
	if err != nil {
		return nil, err
	}

	for tick := reset.Release() + 1; tick < cycles; tick++ {
		err := clk.Cycle(tick, func(tick uint64) error {
			return sched.FlushTick(seq, tick)
		})
		if err != nil {
			return nil, err
		}
	}

	if sched.Len() != 0 {
		return nil, errors.Errorf("%d operations of %s fall after tick %d",
			sched.Len(), g.Name(), cycles)
	}

	return seq, nil
}
