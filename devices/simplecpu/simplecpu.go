// Package simplecpu generates stimulus for a small RISC-V core with a
// PicoRV32-style valid/ready memory bus. The generator plays the memory.
package simplecpu

import (
	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

// Class is the device class name.
const Class = "SimpleCPU"

// The macros read by the factory.
const (
	MacroResetDelay = "RESET_DELAY"
	MacroLoadValue  = "LOAD_VALUE"
)

type phase int

const (
	phaseRespond phase = iota
	phaseWait
)

var transitions = map[phase]devices.Transition[phase]{
	phaseRespond: {Next: phaseWait, Cycles: 1},
	phaseWait:    {Next: phaseRespond, Cycles: 1},
}

// Ports returns the memory bus of the core.
func Ports() *port.Map {
	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("resetn", 1, port.DirWrite).
		AddPort("mem_valid", 1, port.DirRead).
		AddPort("mem_instr", 1, port.DirRead).
		AddPort("mem_ready", 1, port.DirWrite).
		AddPort("mem_addr", 4, port.DirRead).
		AddPort("mem_wdata", 4, port.DirRead).
		AddPort("mem_wstrb", 1, port.DirRead).
		AddPort("mem_rdata", 4, port.DirWrite).
		MustBuild()
}

// Builder builds simple CPU generators.
type Builder struct {
	resetDelay uint64
	loadValue  uint32
	opts       devices.Options
}

// MakeBuilder creates a builder whose first load returns 0.
func MakeBuilder() Builder {
	return Builder{}
}

// WithResetDelay sets how many extra cycles reset is held.
func (b Builder) WithResetDelay(d uint64) Builder {
	b.resetDelay = d
	return b
}

// WithLoadValue sets the value returned by the first load.
func (b Builder) WithLoadValue(v uint32) Builder {
	b.loadValue = v
	return b
}

// WithOptions sets the generator options.
func (b Builder) WithOptions(opts devices.Options) Builder {
	b.opts = opts
	return b
}

// Build creates a generator.
func (b Builder) Build(name string) *Generator {
	return &Generator{
		Base:       devices.MakeBase(name, Class, Ports(), b.opts),
		resetDelay: b.resetDelay,
		loadValue:  b.loadValue,
	}
}

// New is the registry factory of the class.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroResetDelay, MacroLoadValue); err != nil {
		return nil, err
	}

	delay, err := p.UintIn(MacroResetDelay, 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}

	load, err := p.UintIn(MacroLoadValue, 0, 0, 1<<32-1)
	if err != nil {
		return nil, err
	}

	return MakeBuilder().
		WithResetDelay(delay).
		WithLoadValue(uint32(load)).
		WithOptions(opts).
		Build(name), nil
}

// Generator generates simple CPU stimulus.
type Generator struct {
	devices.Base

	resetDelay uint64
	loadValue  uint32
}

// Generate releases reset and then answers one bus transaction every two
// cycles. In the first cycle the request is checked and answered with ready
// set. The second cycle is a wait state with ready cleared.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	reset := devices.Reset{Port: "resetn", Delay: g.resetDelay}
	if err := devices.NeedCycles(Class, cycles, reset.Release()+1); err != nil {
		return nil, err
	}

	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}

	err := reset.Apply(clk, func(tick uint64) error {
		if tick != 0 {
			return nil
		}

		return seq.AddTestOp("mem_ready", stimulus.ActionWrite, 0, tick)
	})
	if err != nil {
		return nil, err
	}

	s := &state{seq: seq, value: g.loadValue}
	m := devices.NewMachine(phaseRespond, transitions)

	for tick := reset.Release() + 1; tick < cycles; tick++ {
		err := clk.Cycle(tick, func(tick uint64) error {
			return s.cycle(m.Phase(), tick)
		})
		if err != nil {
			return nil, err
		}

		m.Step()
	}

	return seq, nil
}

type state struct {
	seq   *stimulus.Sequence
	prog  program
	value uint32
}

type op struct {
	port   string
	action stimulus.Action
	value  uint64
}

func (s *state) cycle(p phase, tick uint64) error {
	switch p {
	case phaseRespond:
		return s.emit(tick, s.respond(s.prog.next())...)
	case phaseWait:
		return s.emit(tick, op{"mem_ready", stimulus.ActionWrite, 0})
	}

	return nil
}

// respond checks the request the core must be making and answers it.
func (s *state) respond(t transaction) []op {
	ops := []op{
		{"mem_valid", stimulus.ActionRead, 1},
		{"mem_addr", stimulus.ActionRead, uint64(t.addr)},
	}

	var rdata uint64

	switch t.kind {
	case kindFetch:
		ops = append(ops,
			op{"mem_instr", stimulus.ActionRead, 1},
			op{"mem_wstrb", stimulus.ActionRead, 0})
		rdata = uint64(t.word)
	case kindLoad:
		ops = append(ops,
			op{"mem_instr", stimulus.ActionRead, 0},
			op{"mem_wstrb", stimulus.ActionRead, 0})
		rdata = uint64(s.value)
	case kindStore:
		s.value++
		ops = append(ops,
			op{"mem_instr", stimulus.ActionRead, 0},
			op{"mem_wstrb", stimulus.ActionRead, FullWordStrobe},
			op{"mem_wdata", stimulus.ActionRead, uint64(s.value)})
	}

	return append(ops,
		op{"mem_ready", stimulus.ActionWrite, 1},
		op{"mem_rdata", stimulus.ActionWrite, rdata})
}

func (s *state) emit(tick uint64, ops ...op) error {
	for _, o := range ops {
		if err := s.seq.AddTestOp(o.port, o.action, o.value, tick); err != nil {
			return err
		}
	}

	return nil
}
