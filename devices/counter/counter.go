// Package counter generates stimulus for a counter that raises done when it
// reaches a programmable stop value.
package counter

import (
	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

// Class is the device class name.
const Class = "Counter"

// MacroResetDelay adds cycles between reset assertion and release.
const MacroResetDelay = "RESET_DELAY"

// WindowCycles is the number of cycles, after reset, during which the stop
// value is reprogrammed every cycle.
const WindowCycles = 10

// DonePeriod is the distance in cycles between done pulses after the window
// closes.
const DonePeriod = 8

type phase int

const (
	phaseWindow phase = iota
	phaseSteady
)

var transitions = map[phase]devices.Transition[phase]{
	phaseWindow: {Next: phaseSteady, Cycles: WindowCycles},
	phaseSteady: {Next: phaseSteady},
}

// Ports returns the counter port map.
func Ports() *port.Map {
	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("reset_l", 1, port.DirWrite).
		AddPort("stop", 1, port.DirWrite).
		AddPort("done", 1, port.DirRead).
		MustBuild()
}

// Builder builds counter generators.
type Builder struct {
	resetDelay uint64
	opts       devices.Options
}

// MakeBuilder creates a builder with no reset delay.
func MakeBuilder() Builder {
	return Builder{}
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

// Build creates a generator.
func (b Builder) Build(name string) *Generator {
	return &Generator{
		Base:       devices.MakeBase(name, Class, Ports(), b.opts),
		resetDelay: b.resetDelay,
	}
}

// New is the registry factory of the class.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroResetDelay); err != nil {
		return nil, err
	}

	delay, err := p.UintIn(MacroResetDelay, 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}

	return MakeBuilder().
		WithResetDelay(delay).
		WithOptions(opts).
		Build(name), nil
}

// Generator generates counter stimulus.
type Generator struct {
	devices.Base

	resetDelay uint64
}

// Generate emits one tick per cycle. Reset is asserted at tick 0 and released
// at tick 1+RESET_DELAY. Each later cycle k, counted from 1, either programs
// stop=k and expects done while k is inside the window, or expects done to
// pulse every DonePeriod cycles.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	reset := devices.Reset{Port: "reset_l", Delay: g.resetDelay}
	if err := devices.NeedCycles(Class, cycles, reset.Release()+1); err != nil {
		return nil, err
	}

	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}

	if err := reset.Apply(clk, nil); err != nil {
		return nil, err
	}

	m := devices.NewMachine(phaseWindow, transitions)

	for tick := reset.Release() + 1; tick < cycles; tick++ {
		err := clk.Cycle(tick, func(tick uint64) error {
			return g.cycle(seq, m, tick)
		})
		if err != nil {
			return nil, err
		}

		m.Step()
	}

	return seq, nil
}

func (g *Generator) cycle(
	seq *stimulus.Sequence,
	m *devices.Machine[phase],
	tick uint64,
) error {
	switch m.Phase() {
	case phaseWindow:
		stop := m.Elapsed() + 1

		if err := seq.AddTestOp("done", stimulus.ActionRead, 1, tick); err != nil {
			return err
		}

		return seq.AddTestOp("stop", stimulus.ActionWrite, stop, tick)
	case phaseSteady:
		var done uint64
		if (m.Elapsed()+1)%DonePeriod == 0 {
			done = 1
		}

		return seq.AddTestOp("done", stimulus.ActionRead, done, tick)
	}

	return nil
}
