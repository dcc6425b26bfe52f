// Package pin generates stimulus for a bidirectional I/O pin. The DUT either
// drives the shared pin from pin_out or captures it into pin_in, depending on
// dir.
package pin

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

// Class is the device class name.
const Class = "Pin"

// The macros read by the factory.
const (
	MacroPinWidth   = "PIN_WIDTH"
	MacroPatternOut = "PATTERN_OUT"
	MacroPatternIn  = "PATTERN_IN"
)

// Defaults of the macros.
const (
	DefaultPinWidth          = 8
	DefaultPatternOut uint64 = 0xa5
	DefaultPatternIn  uint64 = 0x5a
)

// The values of the dir port.
const (
	DirIn  uint64 = 0
	DirOut uint64 = 1
)

type phase int

const (
	phaseDriveOut phase = iota
	phaseCheckOut
	phaseDriveIn
	phaseCheckIn
)

var transitions = map[phase]devices.Transition[phase]{
	phaseDriveOut: {Next: phaseCheckOut, Cycles: 1},
	phaseCheckOut: {Next: phaseDriveIn, Cycles: 1},
	phaseDriveIn:  {Next: phaseCheckIn, Cycles: 1},
	phaseCheckIn:  {Next: phaseDriveOut, Cycles: 1},
}

// Builder builds pin generators.
type Builder struct {
	width      uint
	patternOut uint64
	patternIn  uint64
	opts       devices.Options
}

// MakeBuilder creates a builder for an 8-bit pin with the default patterns.
func MakeBuilder() Builder {
	return Builder{
		width:      DefaultPinWidth,
		patternOut: DefaultPatternOut,
		patternIn:  DefaultPatternIn,
	}
}

// WithWidth sets the pin width in bits.
func (b Builder) WithWidth(bits uint) Builder {
	b.width = bits
	return b
}

// WithPatterns sets the value driven out through pin_out and the value driven
// in through the shared pin.
func (b Builder) WithPatterns(out, in uint64) Builder {
	b.patternOut = out
	b.patternIn = in
	return b
}

// WithOptions sets the generator options.
func (b Builder) WithOptions(opts devices.Options) Builder {
	b.opts = opts
	return b
}

// Build validates the width and creates a generator. Patterns are truncated
// to the width.
func (b Builder) Build(name string) (*Generator, error) {
	if b.width == 0 || b.width > 64 {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"pin width %d not in [1, 64]", b.width)
	}

	mask := ^uint64(0)
	if b.width < 64 {
		mask = uint64(1)<<b.width - 1
	}

	out, in := b.patternOut&mask, b.patternIn&mask
	if out == in {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"pin patterns must differ, both are 0x%x", out)
	}

	return &Generator{
		Base:       devices.MakeBase(name, Class, ports(b.width), b.opts),
		patternOut: out,
		patternIn:  in,
	}, nil
}

func ports(width uint) *port.Map {
	bytes := int((width + 7) / 8)

	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("dir", 1, port.DirWrite).
		AddPort("pin_out", bytes, port.DirWrite).
		AddPort("pin", bytes, port.DirInOut).
		AddPort("pin_in", bytes, port.DirRead).
		MustBuild()
}

// New is the registry factory of the class.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroPinWidth, MacroPatternOut, MacroPatternIn); err != nil {
		return nil, err
	}

	width, err := p.UintIn(MacroPinWidth, DefaultPinWidth, 1, 64)
	if err != nil {
		return nil, err
	}

	out, err := p.Uint(MacroPatternOut, DefaultPatternOut)
	if err != nil {
		return nil, err
	}

	in, err := p.Uint(MacroPatternIn, DefaultPatternIn)
	if err != nil {
		return nil, err
	}

	g, err := MakeBuilder().
		WithWidth(uint(width)).
		WithPatterns(out, in).
		WithOptions(opts).
		Build(name)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Generator generates pin stimulus.
type Generator struct {
	devices.Base

	patternOut uint64
	patternIn  uint64
}

// Patterns returns the masked out and in patterns.
func (g *Generator) Patterns() (out, in uint64) {
	return g.patternOut, g.patternIn
}

// Generate repeats a 4-cycle pattern from tick 0. The pin is first turned
// into an output driving the out pattern, which must then show on the shared
// pin. It is then turned into an input and the in pattern is driven on the
// shared pin, which must then show in pin_in.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}
	m := devices.NewMachine(phaseDriveOut, transitions)

	for tick := uint64(0); tick < cycles; tick++ {
		err := clk.Cycle(tick, func(tick uint64) error {
			return g.cycle(seq, m.Phase(), tick)
		})
		if err != nil {
			return nil, err
		}

		m.Step()
	}

	return seq, nil
}

func (g *Generator) cycle(seq *stimulus.Sequence, p phase, tick uint64) error {
	switch p {
	case phaseDriveOut:
		if err := seq.AddTestOp("dir", stimulus.ActionWrite, DirOut, tick); err != nil {
			return err
		}

		return seq.AddTestOp("pin_out", stimulus.ActionWrite, g.patternOut, tick)
	case phaseCheckOut:
		return seq.AddTestOp("pin", stimulus.ActionRead, g.patternOut, tick)
	case phaseDriveIn:
		if err := seq.AddTestOp("dir", stimulus.ActionWrite, DirIn, tick); err != nil {
			return err
		}

		return seq.AddTestOp("pin", stimulus.ActionWrite, g.patternIn, tick)
	case phaseCheckIn:
		return seq.AddTestOp("pin_in", stimulus.ActionRead, g.patternIn, tick)
	}

	return nil
}
