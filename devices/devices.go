// Package devices defines the stimulus generators of the supported DUT
// classes and the registry that selects one by class name.
package devices

import (
	"math/rand"

	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/naming"
	"github.com/sarchlab/vstim/port"
	"github.com/sarchlab/vstim/stimulus"
)

// ErrUnknownClass is returned when no generator is registered for a class.
var ErrUnknownClass = errors.New("unknown device class")

// ErrInvalidConfig is returned when a device parameter is malformed or out of
// range. It is always returned before any operation is emitted.
var ErrInvalidConfig = errors.New("invalid device configuration")

// DefaultClockPort is the port that carries the DUT clock in every class.
const DefaultClockPort = "clk"

// A Generator turns a cycle budget into the operation sequence of one DUT
// instance.
type Generator interface {
	naming.Named

	// Class returns the device class the generator was created for.
	Class() string

	// Ports returns the port map of the DUT, in wiring order.
	Ports() *port.Map

	// Generate builds a new sequence. It either returns a complete sequence
	// or an error, never both.
	Generate(cycles uint64) (*stimulus.Sequence, error)
}

// Options are the per-instance settings that are not device parameters.
type Options struct {
	// Rand is the source of random operands. A nil Rand uses a source seeded
	// with DefaultSeed, so that output is reproducible.
	Rand *rand.Rand

	// DirectMode drops every write to ClockPort.
	DirectMode bool

	// ClockPort overrides DefaultClockPort.
	ClockPort string

	// Observe, if set, is called with every sequence the generator creates
	// before any operation is added to it.
	Observe func(seq *stimulus.Sequence)
}

// DefaultSeed seeds the random source when Options carries none.
const DefaultSeed int64 = 1

// WithSeed returns a copy of o that draws operands from a source seeded with
// seed.
func (o Options) WithSeed(seed int64) Options {
	o.Rand = rand.New(rand.NewSource(seed))
	return o
}

// Source returns the random source of o.
func (o Options) Source() *rand.Rand {
	if o.Rand == nil {
		return rand.New(rand.NewSource(DefaultSeed))
	}

	return o.Rand
}

// Clock returns the name of the clock port.
func (o Options) Clock() string {
	if o.ClockPort == "" {
		return DefaultClockPort
	}

	return o.ClockPort
}

// NewSequence creates the sequence a generator emits into, honoring direct
// mode and calling Observe.
func (o Options) NewSequence(name string) *stimulus.Sequence {
	seq := stimulus.NewSequence(name)
	if o.DirectMode {
		seq.WithDirectMode(o.Clock())
	}

	if o.Observe != nil {
		o.Observe(seq)
	}

	return seq
}

// Base carries the parts every Generator shares.
type Base struct {
	naming.NamedBase

	class string
	ports *port.Map
	opts  Options
}

// MakeBase creates a Base.
func MakeBase(name, class string, ports *port.Map, opts Options) Base {
	return Base{
		NamedBase: naming.MakeNamedBase(name),
		class:     class,
		ports:     ports,
		opts:      opts,
	}
}

// Class returns the device class.
func (b Base) Class() string {
	return b.class
}

// Ports returns the port map.
func (b Base) Ports() *port.Map {
	return b.ports
}

// Options returns the generator options.
func (b Base) Options() Options {
	return b.opts
}
