package stimulus

import (
	"sort"

	"github.com/pkg/errors"
)

// An Emitter accepts operations. Both Sequence and Schedule are Emitters.
type Emitter interface {
	AddTestOp(port string, action Action, value uint64, tick uint64) error
	AddBigTestOp(port string, action Action, limbs []uint64, tick uint64) error
}

// A Schedule collects operations that are produced out of tick order, such as
// the bits of a serial frame, and releases them tick by tick. Operations that
// share a tick keep their insertion order.
type Schedule struct {
	byTick map[uint64][]Operation
}

// NewSchedule creates an empty schedule.
func NewSchedule() *Schedule {
	return &Schedule{byTick: make(map[uint64][]Operation)}
}

// AddTestOp schedules a scalar operation.
func (s *Schedule) AddTestOp(
	port string,
	action Action,
	value uint64,
	tick uint64,
) error {
	s.byTick[tick] = append(s.byTick[tick], Operation{
		Port:   port,
		Action: action,
		Value:  value,
		Tick:   tick,
	})

	return nil
}

// AddBigTestOp schedules a wide operation.
func (s *Schedule) AddBigTestOp(
	port string,
	action Action,
	limbs []uint64,
	tick uint64,
) error {
	if len(limbs) == 0 {
		return errors.Errorf("wide operation on %s has no limbs", port)
	}

	l := make([]uint64, len(limbs))
	copy(l, limbs)

	s.byTick[tick] = append(s.byTick[tick], Operation{
		Port:   port,
		Action: action,
		Limbs:  l,
		Tick:   tick,
	})

	return nil
}

// At returns the operations scheduled at tick.
func (s *Schedule) At(tick uint64) []Operation {
	return s.byTick[tick]
}

// Ticks returns the ticks that have operations, in increasing order.
func (s *Schedule) Ticks() []uint64 {
	ticks := make([]uint64, 0, len(s.byTick))
	for t := range s.byTick {
		ticks = append(ticks, t)
	}

	sort.Slice(ticks, func(i, j int) bool { return ticks[i] < ticks[j] })

	return ticks
}

// Len returns the number of scheduled operations.
func (s *Schedule) Len() int {
	n := 0
	for _, ops := range s.byTick {
		n += len(ops)
	}

	return n
}

// FlushTick appends the operations scheduled at tick to e and forgets them.
func (s *Schedule) FlushTick(e Emitter, tick uint64) error {
	for _, op := range s.byTick[tick] {
		var err error
		if op.IsWide() {
			err = e.AddBigTestOp(op.Port, op.Action, op.Limbs, op.Tick)
		} else {
			err = e.AddTestOp(op.Port, op.Action, op.Value, op.Tick)
		}

		if err != nil {
			return err
		}
	}

	delete(s.byTick, tick)

	return nil
}
