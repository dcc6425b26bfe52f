// Package scratchpad generates stimulus for a byte-addressed scratchpad memory
// that is written and read back through a single request port.
package scratchpad

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/devices"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/queueing"
	"github.com/sarchlab/vstim/stimulus"
)

// Class is the device class name.
const Class = "Scratchpad"

// The macros read by the factory.
const (
	MacroAddrBase = "ADDR_BASE"
	MacroAddrSpan = "ADDR_SPAN"
)

// DefaultAddrBase is where the scratchpad is mapped.
const DefaultAddrBase uint64 = 0x0300_0000_0000_0000

// DefaultAddrSpan is the number of bytes that random offsets cover.
const DefaultAddrSpan uint64 = 1 << 20

// MaxAddrSpan bounds the address window.
const MaxAddrSpan uint64 = 1 << 62

// An access is one entry of the size rotation. Len is the value of the len
// port, log2 of the size in bytes.
type access struct {
	Size uint64
	Len  uint64
}

// sizes rotates once per transaction, so the access size repeats every
// 4 transactions of 5 cycles.
var sizes = []access{
	{Size: 8, Len: 3},
	{Size: 4, Len: 2},
	{Size: 2, Len: 1},
	{Size: 1, Len: 0},
}

type phase int

const (
	phaseIdle phase = iota
	phaseWriteSetup
	phaseEnableClear
	phaseReadSetup
	phaseReadAssert
)

var transitions = map[phase]devices.Transition[phase]{
	phaseIdle:        {Next: phaseWriteSetup, Cycles: 1},
	phaseWriteSetup:  {Next: phaseEnableClear, Cycles: 1},
	phaseEnableClear: {Next: phaseReadSetup, Cycles: 1},
	phaseReadSetup:   {Next: phaseReadAssert, Cycles: 1},
	phaseReadAssert:  {Next: phaseIdle, Cycles: 1},
}

// Ports returns the scratchpad port map.
func Ports() *port.Map {
	return port.MapBuilder{}.
		WithStrictNames().
		AddPort("clk", 1, port.DirWrite).
		AddPort("en", 1, port.DirWrite).
		AddPort("write", 1, port.DirWrite).
		AddPort("addr", 8, port.DirWrite).
		AddPort("len", 1, port.DirWrite).
		AddPort("wdata", 8, port.DirWrite).
		AddPort("rdata", 8, port.DirRead).
		MustBuild()
}

// Builder builds scratchpad generators.
type Builder struct {
	base uint64
	span uint64
	opts devices.Options
}

// MakeBuilder creates a builder with the default address window.
func MakeBuilder() Builder {
	return Builder{
		base: DefaultAddrBase,
		span: DefaultAddrSpan,
	}
}

// WithAddrBase sets the address the scratchpad is mapped at.
func (b Builder) WithAddrBase(base uint64) Builder {
	b.base = base
	return b
}

// WithAddrSpan sets how many bytes above the base are used.
func (b Builder) WithAddrSpan(span uint64) Builder {
	b.span = span
	return b
}

// WithOptions sets the generator options.
func (b Builder) WithOptions(opts devices.Options) Builder {
	b.opts = opts
	return b
}

// Build validates the address window and creates a generator.
func (b Builder) Build(name string) (*Generator, error) {
	if b.span < sizes[0].Size {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"address span %d is smaller than one %d-byte access",
			b.span, sizes[0].Size)
	}

	if b.span > MaxAddrSpan {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"address span 0x%x is larger than 0x%x", b.span, MaxAddrSpan)
	}

	if b.base%sizes[0].Size != 0 {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"address base 0x%x is not %d-byte aligned", b.base, sizes[0].Size)
	}

	if b.base+b.span < b.base {
		return nil, errors.Wrapf(devices.ErrInvalidConfig,
			"address window 0x%x+0x%x overflows", b.base, b.span)
	}

	return &Generator{
		Base: devices.MakeBase(name, Class, Ports(), b.opts),
		base: b.base,
		span: b.span,
	}, nil
}

// New is the registry factory of the class.
func New(name string, p devices.Params, opts devices.Options) (devices.Generator, error) {
	if err := p.Only(MacroAddrBase, MacroAddrSpan); err != nil {
		return nil, err
	}

	base, err := p.Uint(MacroAddrBase, DefaultAddrBase)
	if err != nil {
		return nil, err
	}

	span, err := p.Uint(MacroAddrSpan, DefaultAddrSpan)
	if err != nil {
		return nil, err
	}

	g, err := MakeBuilder().
		WithAddrBase(base).
		WithAddrSpan(span).
		WithOptions(opts).
		Build(name)
	if err != nil {
		return nil, err
	}

	return g, nil
}

// Generator generates scratchpad stimulus.
type Generator struct {
	devices.Base
	devices.QueueHooks

	base uint64
	span uint64
}

// Generate runs one 5-cycle transaction after another, starting at tick 0. A
// transaction writes random data to a random aligned address, then reads the
// same address back and expects the same data. The addresses and data wait
// in a pending queue between the write and the read.
func (g *Generator) Generate(cycles uint64) (*stimulus.Sequence, error) {
	seq := g.Options().NewSequence(g.Name())
	clk := devices.Clocker{Port: g.Options().Clock(), Emitter: seq}

	s := &state{
		g:       g,
		seq:     seq,
		rng:     g.Options().Source(),
		pending: g.NewQueue(g.Name() + ".Pending"),
	}
	m := devices.NewMachine(phaseIdle, transitions)

	for tick := uint64(0); tick < cycles; tick++ {
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
	g       *Generator
	seq     *stimulus.Sequence
	rng     *rand.Rand
	pending queueing.PendingQueue
	txn     int
	access  access
}

func (s *state) cycle(p phase, tick uint64) error {
	switch p {
	case phaseWriteSetup:
		return s.writeSetup(tick)
	case phaseEnableClear:
		return s.seq.AddTestOp("en", stimulus.ActionWrite, 0, tick)
	case phaseReadSetup:
		return s.readSetup(tick)
	case phaseReadAssert:
		return s.readAssert(tick)
	}

	return nil
}

func (s *state) writeSetup(tick uint64) error {
	s.access = sizes[s.txn%len(sizes)]
	s.txn++

	slots := (s.g.span - s.access.Size) / s.access.Size
	addr := s.g.base + uint64(s.rng.Int63n(int64(slots)+1))*s.access.Size
	data := s.rng.Uint64() & sizeMask(s.access.Size)

	if err := s.pending.Enqueue(addr); err != nil {
		return err
	}

	if err := s.pending.Enqueue(data); err != nil {
		return err
	}

	return s.emit(tick,
		op{"write", stimulus.ActionWrite, 1},
		op{"addr", stimulus.ActionWrite, addr},
		op{"len", stimulus.ActionWrite, s.access.Len},
		op{"wdata", stimulus.ActionWrite, data},
		op{"en", stimulus.ActionWrite, 1},
	)
}

func (s *state) readSetup(tick uint64) error {
	addr, err := queueing.DequeueUint64(s.pending)
	if err != nil {
		return err
	}

	return s.emit(tick,
		op{"write", stimulus.ActionWrite, 0},
		op{"addr", stimulus.ActionWrite, addr},
		op{"len", stimulus.ActionWrite, s.access.Len},
		op{"en", stimulus.ActionWrite, 1},
	)
}

func (s *state) readAssert(tick uint64) error {
	data, err := queueing.DequeueUint64(s.pending)
	if err != nil {
		return err
	}

	return s.emit(tick,
		op{"rdata", stimulus.ActionRead, data},
		op{"en", stimulus.ActionWrite, 0},
	)
}

type op struct {
	port   string
	action stimulus.Action
	value  uint64
}

func (s *state) emit(tick uint64, ops ...op) error {
	for _, o := range ops {
		if err := s.seq.AddTestOp(o.port, o.action, o.value, tick); err != nil {
			return err
		}
	}

	return nil
}

func sizeMask(size uint64) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}

	return uint64(1)<<(8*size) - 1
}
