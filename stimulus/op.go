// Package stimulus holds the timed port operations that a replay harness
// applies to a device under test.
package stimulus

import "fmt"

// Action tells whether an operation drives a port or checks it.
type Action int

// The actions of an operation.
const (
	ActionWrite Action = iota + 1
	ActionRead
)

func (a Action) String() string {
	switch a {
	case ActionWrite:
		return "write"
	case ActionRead:
		return "read"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// ParseAction converts the text form of an action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "write":
		return ActionWrite, true
	case "read":
		return ActionRead, true
	default:
		return 0, false
	}
}

// An Operation writes a value to a port, or expects a value on it, at a tick.
//
// Scalar operations carry Value. Wide operations carry Limbs, least
// significant first, and leave Value at zero.
type Operation struct {
	Port   string
	Action Action
	Value  uint64
	Limbs  []uint64
	Tick   uint64
}

// IsWide returns true if the operation carries a limb list.
func (o Operation) IsWide() bool {
	return o.Limbs != nil
}

// Values returns the operation's value as a limb list. A scalar operation
// yields a single limb.
func (o Operation) Values() []uint64 {
	if !o.IsWide() {
		return []uint64{o.Value}
	}

	out := make([]uint64, len(o.Limbs))
	copy(out, o.Limbs)

	return out
}

func (o Operation) String() string {
	if o.IsWide() {
		return fmt.Sprintf("%s %s %v @%d", o.Port, o.Action, o.Limbs, o.Tick)
	}

	return fmt.Sprintf("%s %s %d @%d", o.Port, o.Action, o.Value, o.Tick)
}
