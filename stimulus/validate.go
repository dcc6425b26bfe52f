package stimulus

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/port"
)

// ErrInvalidSequence is returned when a sequence cannot be replayed against a
// port map.
var ErrInvalidSequence = errors.New("invalid sequence")

// Validate checks that a harness can replay ops against the ports in m. The
// harness walks ops in order and aborts on an op whose tick is already in the
// past, so ticks must never decrease.
func Validate(ops []Operation, m *port.Map) error {
	var last uint64

	for i, op := range ops {
		if op.Tick < last {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d (%s) at tick %d comes after tick %d", i, op.Port, op.Tick, last)
		}

		last = op.Tick

		p, ok := m.Lookup(op.Port)
		if !ok {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d targets unknown port %s", i, op.Port)
		}

		if err := checkAction(i, op, p); err != nil {
			return err
		}

		if err := checkWidth(i, op, p); err != nil {
			return err
		}
	}

	return nil
}

func checkAction(i int, op Operation, p port.Descriptor) error {
	switch op.Action {
	case ActionWrite:
		if !p.Dir.CanWrite() {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d writes to %s port %s", i, p.Dir, p.Name)
		}
	case ActionRead:
		if !p.Dir.CanRead() {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d reads from %s port %s", i, p.Dir, p.Name)
		}
	default:
		return errors.Wrapf(ErrInvalidSequence,
			"op %d has action %s", i, op.Action)
	}

	return nil
}

func checkWidth(i int, op Operation, p port.Descriptor) error {
	if !op.IsWide() {
		if p.IsWide() {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d carries a scalar for %d-limb port %s", i, p.Limbs(), p.Name)
		}

		if op.Value > p.MaxScalar() {
			return errors.Wrapf(ErrInvalidSequence,
				"op %d value %d does not fit %d-byte port %s",
				i, op.Value, p.WidthBytes, p.Name)
		}

		return nil
	}

	if len(op.Limbs) != p.Limbs() {
		return errors.Wrapf(ErrInvalidSequence,
			"op %d carries %d limbs for %d-limb port %s",
			i, len(op.Limbs), p.Limbs(), p.Name)
	}

	return nil
}
