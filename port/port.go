// Package port describes how a device under test is wired to the replay
// harness.
package port

import "fmt"

// Direction tells which way data flows through a port, seen from the DUT.
type Direction int

// The port directions. A Write port is driven by the generator, a Read port is
// sampled and checked, and an InOut port can be both.
const (
	DirRead Direction = iota + 1
	DirWrite
	DirInOut
)

// CanWrite returns true if the generator may drive the port.
func (d Direction) CanWrite() bool {
	return d == DirWrite || d == DirInOut
}

// CanRead returns true if the generator may check the port.
func (d Direction) CanRead() bool {
	return d == DirRead || d == DirInOut
}

// Valid returns true if d is one of the declared directions.
func (d Direction) Valid() bool {
	return d >= DirRead && d <= DirInOut
}

func (d Direction) String() string {
	switch d {
	case DirRead:
		return "read"
	case DirWrite:
		return "write"
	case DirInOut:
		return "inout"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// A Descriptor is the static declaration of one DUT port.
type Descriptor struct {
	Name       string
	Index      int
	WidthBytes int
	Dir        Direction
}

// Limbs returns the number of 64-bit words needed to carry a value of the
// port's width.
func (d Descriptor) Limbs() int {
	return (d.WidthBytes + 7) / 8
}

// IsWide returns true if values on the port span more than one 64-bit word.
func (d Descriptor) IsWide() bool {
	return d.Limbs() > 1
}

// MaxScalar returns the largest value that fits a non-wide port.
func (d Descriptor) MaxScalar() uint64 {
	if d.WidthBytes >= 8 {
		return ^uint64(0)
	}

	return uint64(1)<<(8*uint(d.WidthBytes)) - 1
}
