// Package accum generates stimulus for accumulators that add a random addend
// every third cycle and expose the running sum.
package accum

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
	"github.com/sarchlab/vstim/wide"
)

// The device classes built by this package.
const (
	// Class packs independent lanes into one 64-bit sum.
	Class = "Accum"
	// BigClass keeps a single sum of ACCUM_WIDTH bits over several limbs.
	BigClass = "BigAccum"
)

// The macros read by the factories.
const (
	MacroResetDelay = "RESET_DELAY"
	MacroLaneWidth  = "LANE_WIDTH"
	MacroAccumWidth = "ACCUM_WIDTH"
)

// Defaults of the macros.
const (
	DefaultLaneWidth  = 16
	DefaultAccumWidth = 128
	MaxAccumWidth     = 4096
)

type phase int

const (
	phaseDrive phase = iota
	phaseCheck
	phaseIdle
)

var transitions = map[phase]devices.Transition[phase]{
	phaseDrive: {Next: phaseCheck, Cycles: 1},
	phaseCheck: {Next: phaseIdle, Cycles: 1},
	phaseIdle:  {Next: phaseDrive, Cycles: 1},
}

// Builder builds accumulator generators.
type Builder struct {
	resetDelay uint64
	laneBits   uint
	width      uint
	wide       bool
	opts       devices.Options
}

// MakeBuilder creates a builder for the narrow accumulator with 16-bit lanes.
func MakeBuilder() Builder {
	return Builder{
		laneBits: DefaultLaneWidth,
		width:    wide.LimbBits,
	}
}

// WithResetDelay sets how many extra cycles reset is held.
func (b Builder) WithResetDelay(d uint64) Builder {
	b.resetDelay = d
	return b
}

// WithLaneWidth sets the lane width of the narrow accumulator. It must divide
// 64.
func (b Builder) WithLaneWidth(bits uint) Builder {
	b.laneBits = bits
	return b
}

// WithWidth switches to the wide accumulator with a sum of the given width.
func (b Builder) WithWidth(bits uint) Builder {
	b.wide = true
	b.width = bits
	return b
}

// WithOptions sets the generator options.
func (b Builder) WithOptions(opts devices.Options) Builder {
	b.opts = opts
	return b
}

// Build validates the configuration and creates a generator.
func (b Builder) Build(name string) (*Generator, error) {
	class := Class

	if b.wide {
		class = BigClass

		if b.width == 0 || b.width > MaxAccumWidth {
			return nil, errors.Wrapf(devices.ErrInvalidConfig,
				"accumulator width %d not in [1, %d]", b.width, MaxAccumWidth)
		}
	} else if b.laneBits == 0 || b.laneBits > wide.LimbBits ||
		wide.LimbBits%b.laneBits != 0 {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"lane width %d does not divide 64", b.laneBits)
	}

	return &Generator{
		Base:       devices.MakeBase(name, class, ports(b.width), b.opts),
		resetDelay: b.resetDelay,
		laneBits:   b.laneBits,
		width:      b.width,
		wide:       b.wide,
	}, nil
}

func ports(width uint) *port.Map {
	bytes := int((width + 7) / 8)

	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("reset_l", 1, port.DirWrite).
		AddPort("en", 1, port.DirWrite).
		AddPort("add", bytes, port.DirWrite).
		AddPort("accum", bytes, port.DirRead).
		AddPort("done", 1, port.DirRead).
		MustBuild()
}

// New is the registry factory of the narrow accumulator.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroResetDelay, MacroLaneWidth); err != nil {
		return nil, err
	}

	delay, err := p.UintIn(MacroResetDelay, 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}

	lane, err := p.UintIn(MacroLaneWidth, DefaultLaneWidth, 1, wide.LimbBits)
	if err != nil {
		return nil, err
	}

	g, err := MakeBuilder().
		WithResetDelay(delay).
		WithLaneWidth(uint(lane)).
		WithOptions(opts).
		Build(name)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// NewBig is the registry factory of the wide accumulator.
func NewBig(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroResetDelay, MacroAccumWidth); err != nil {
		return nil, err
	}

	delay, err := p.UintIn(MacroResetDelay, 0, 0, 1<<20)
	if err != nil {
		return nil, err
	}

	width, err := p.UintIn(MacroAccumWidth, DefaultAccumWidth, 1, MaxAccumWidth)
	if err != nil {
		return nil, err
	}

	g, err := MakeBuilder().
		WithResetDelay(delay).
		WithWidth(uint(width)).
		WithOptions(opts).
		Build(name)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Generator generates accumulator stimulus.
type Generator struct {
	devices.Base

	resetDelay uint64
	laneBits   uint
	width      uint
	wide       bool
}

// Width returns the width of the sum in bits.
func (g *Generator) Width() uint {
	return g.width
}

// Generate releases reset and then repeats Drive, Check and Idle cycles. A
// Drive cycle writes a random addend with en set and adds it to the expected
// sum. A Check cycle expects the sum and done, and clears en.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	reset := devices.Reset{Port: "reset_l", Delay: g.resetDelay}
	if err := devices.NeedCycles(g.Class(), cycles, reset.Release()+1); err != nil {
		return nil, err
	}

	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}

	if err := reset.Apply(clk, nil); err != nil {
		return nil, err
	}

	s := &state{
		g:   g,
		seq: seq,
		rng: g.Options().Source(),
		sum: wide.NewValue(g.width),
	}
	m := devices.NewMachine(phaseDrive, transitions)

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

// state is the ground truth of one Generate call.
type state struct {
	g   *Generator
	seq *stimulus.Sequence
	rng *rand.Rand
	sum wide.Value
}

func (s *state) cycle(p phase, tick uint64) error {
	switch p {
	case phaseDrive:
		return s.drive(tick)
	case phaseCheck:
		return s.check(tick)
	}

	return nil
}

func (s *state) drive(tick uint64) error {
	addend := s.randomAddend()

	if err := s.emit("add", stimulus.ActionWrite, addend, tick); err != nil {
		return err
	}

	if err := s.seq.AddTestOp("en", stimulus.ActionWrite, 1, tick); err != nil {
		return err
	}

	if !s.g.wide {
		sum, err := wide.AddLanes(s.sum.Limbs[0], addend.Limbs[0], s.g.laneBits)
		if err != nil {
			return err
		}

		s.sum.Limbs[0] = sum

		return nil
	}

	sum, err := wide.Add(s.sum, addend)
	if err != nil {
		return err
	}

	s.sum = sum

	return nil
}

func (s *state) check(tick uint64) error {
	if err := s.emit("accum", stimulus.ActionRead, s.sum, tick); err != nil {
		return err
	}

	if err := s.seq.AddTestOp("done", stimulus.ActionRead, 1, tick); err != nil {
		return err
	}

	return s.seq.AddTestOp("en", stimulus.ActionWrite, 0, tick)
}

func (s *state) randomAddend() wide.Value {
	v := wide.NewValue(s.g.width)
	for i := range v.Limbs {
		v.Limbs[i] = s.rng.Uint64()
	}

	v.Limbs[len(v.Limbs)-1] &= wide.TopMask(s.g.width)

	return v
}

func (s *state) emit(
	portName string,
	action stimulus.Action,
	v wide.Value,
	tick uint64,
) error {
	if !s.g.wide {
		return s.seq.AddTestOp(portName, action, v.Limbs[0], tick)
	}

	return s.seq.AddBigTestOp(portName, action, v.Limbs, tick)
}
