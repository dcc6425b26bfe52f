package devices

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/stimulus"
)

// DefaultResetPort is the active-low reset port of most classes.
const DefaultResetPort = "reset_l"

// A Clocker wraps the operations of each cycle between a rising and a falling
// clock write on the same tick.
type Clocker struct {
	Port    string
	Emitter stimulus.Emitter
}

// Cycle emits clk=1, calls body, then emits clk=0, all at tick.
func (c Clocker) Cycle(tick uint64, body func(tick uint64) error) error {
	if err := c.Emitter.AddTestOp(c.Port, stimulus.ActionWrite, 1, tick); err != nil {
		return err
	}

	if body != nil {
		if err := body(tick); err != nil {
			return err
		}
	}

	return c.Emitter.AddTestOp(c.Port, stimulus.ActionWrite, 0, tick)
}

// Reset describes an active-low reset pulse. The reset is asserted at tick 0
// and released Delay+1 ticks later.
type Reset struct {
	Port  string
	Delay uint64
}

// Release returns the tick at which reset is deasserted.
func (r Reset) Release() uint64 {
	return 1 + r.Delay
}

// Apply emits the reset pulse through the release tick, clocking every tick.
// extra is called on each tick after the reset write, and may be nil.
func (r Reset) Apply(c Clocker, extra func(tick uint64) error) error {
	for tick := uint64(0); tick <= r.Release(); tick++ {
		err := c.Cycle(tick, func(tick uint64) error {
			switch tick {
			case 0:
				if err := c.Emitter.AddTestOp(r.Port, stimulus.ActionWrite, 0, tick); err != nil {
					return err
				}
			case r.Release():
				if err := c.Emitter.AddTestOp(r.Port, stimulus.ActionWrite, 1, tick); err != nil {
					return err
				}
			}

			if extra != nil {
				return extra(tick)
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// NeedCycles fails with ErrInvalidConfig if cycles is smaller than min.
func NeedCycles(class string, cycles, min uint64) error {
	if cycles < min {
		return errors.Wrapf(ErrInvalidConfig,
			"%s needs at least %d cycles, got %d", class, min, cycles)
	}

	return nil
}

// A Transition says which phase follows a phase, and after how many cycles. A
// transition of 0 cycles never fires.
type Transition[P comparable] struct {
	Next   P
	Cycles uint64
}

// A Machine walks a transition table one cycle at a time.
type Machine[P comparable] struct {
	table   map[P]Transition[P]
	phase   P
	elapsed uint64
}

// NewMachine creates a machine that starts in phase start. Every phase
// reachable from start must have an entry in table.
func NewMachine[P comparable](start P, table map[P]Transition[P]) *Machine[P] {
	if _, ok := table[start]; !ok {
		panic("start phase has no transition")
	}

	return &Machine[P]{table: table, phase: start}
}

// Phase returns the current phase.
func (m *Machine[P]) Phase() P {
	return m.phase
}

// Elapsed returns how many whole cycles were already spent in the current
// phase.
func (m *Machine[P]) Elapsed() uint64 {
	return m.elapsed
}

// Step ends the current cycle.
func (m *Machine[P]) Step() {
	m.elapsed++

	t := m.table[m.phase]
	if t.Cycles == 0 || m.elapsed < t.Cycles {
		return
	}

	if _, ok := m.table[t.Next]; !ok {
		panic("phase has no transition")
	}

	m.phase = t.Next
	m.elapsed = 0
}
