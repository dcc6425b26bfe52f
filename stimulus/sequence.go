package stimulus

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/naming"
)

// HookPosOpEmit marks when an operation is appended to a sequence.
var HookPosOpEmit = &hooking.HookPos{Name: "Op Emit"}

// HookPosOpSuppressed marks when a clock write is dropped in direct mode.
var HookPosOpSuppressed = &hooking.HookPos{Name: "Op Suppressed"}

// ErrSequenceFrozen is returned when appending to a frozen sequence.
var ErrSequenceFrozen = errors.New("sequence is frozen")

// A Sequence is the append-only, ordered list of operations of one test. The
// order of operations that share a tick is kept exactly as emitted.
type Sequence struct {
	naming.NamedBase
	hooking.HookableBase

	ops        []Operation
	directMode bool
	clockPort  string
	frozen     bool
	suppressed int
}

// NewSequence creates an empty sequence.
func NewSequence(name string) *Sequence {
	return &Sequence{NamedBase: naming.MakeNamedBase(name)}
}

// WithDirectMode drops every write to clockPort. The harness then drives the
// clock by itself. Reads and other ports are not affected.
func (s *Sequence) WithDirectMode(clockPort string) *Sequence {
	s.directMode = true
	s.clockPort = clockPort

	return s
}

// DirectMode tells whether clock writes are suppressed.
func (s *Sequence) DirectMode() bool {
	return s.directMode
}

// AddTestOp appends a scalar operation.
func (s *Sequence) AddTestOp(
	port string,
	action Action,
	value uint64,
	tick uint64,
) error {
	return s.add(Operation{
		Port:   port,
		Action: action,
		Value:  value,
		Tick:   tick,
	})
}

// AddBigTestOp appends an operation that carries a limb list, least
// significant limb first.
func (s *Sequence) AddBigTestOp(
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

	return s.add(Operation{
		Port:   port,
		Action: action,
		Limbs:  l,
		Tick:   tick,
	})
}

func (s *Sequence) add(op Operation) error {
	if s.frozen {
		return errors.Wrapf(ErrSequenceFrozen, "sequence %s", s.Name())
	}

	if s.directMode && op.Action == ActionWrite && op.Port == s.clockPort {
		s.suppressed++
		s.invoke(HookPosOpSuppressed, op, s.suppressed)

		return nil
	}

	s.ops = append(s.ops, op)
	s.invoke(HookPosOpEmit, op, len(s.ops)-1)

	return nil
}

// invoke passes the op as Item. Detail is the op's index for emitted ops and
// the running suppression count for dropped ones.
func (s *Sequence) invoke(pos *hooking.HookPos, op Operation, detail int) {
	if s.NumHooks() == 0 {
		return
	}

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   op,
		Detail: detail,
	})
}

// Freeze makes the sequence immutable. It is called when the sequence is
// handed to the harness.
func (s *Sequence) Freeze() {
	s.frozen = true
}

// Frozen tells whether the sequence has been frozen.
func (s *Sequence) Frozen() bool {
	return s.frozen
}

// Ops returns a copy of the operations in emission order.
func (s *Sequence) Ops() []Operation {
	out := make([]Operation, len(s.ops))
	for i, op := range s.ops {
		out[i] = op
		if op.Limbs != nil {
			out[i].Limbs = op.Values()
		}
	}

	return out
}

// Len returns the number of operations.
func (s *Sequence) Len() int {
	return len(s.ops)
}

// Suppressed returns how many clock writes were dropped in direct mode.
func (s *Sequence) Suppressed() int {
	return s.suppressed
}

// MaxTick returns the largest tick in the sequence, or 0 if it is empty.
func (s *Sequence) MaxTick() uint64 {
	var max uint64
	for _, op := range s.ops {
		if op.Tick > max {
			max = op.Tick
		}
	}

	return max
}

// OpsOn returns the operations on the given port, in emission order.
func (s *Sequence) OpsOn(port string) []Operation {
	var out []Operation

	for _, op := range s.Ops() {
		if op.Port == port {
			out = append(out, op)
		}
	}

	return out
}
