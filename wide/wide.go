// Package wide represents integers wider than 64 bits as ordered 64-bit limbs,
// least significant limb first.
package wide

import (
	"math/big"
	"math/bits"

	"github.com/pkg/errors"
)

// LimbBits is the width of one limb.
const LimbBits = 64

// A Value is an integer of Bits logical bits stored over LimbsFor(Bits) limbs.
// When Bits is not a multiple of 64, the top limb only keeps its low
// Bits%64 bits.
type Value struct {
	Limbs []uint64
	Bits  uint
}

// LimbsFor returns how many limbs hold a value of the given width.
func LimbsFor(width uint) int {
	return int((width + LimbBits - 1) / LimbBits)
}

// TopMask returns the mask applied to the most significant limb.
func TopMask(width uint) uint64 {
	rem := width % LimbBits
	if rem == 0 {
		return ^uint64(0)
	}

	return uint64(1)<<rem - 1
}

// NewValue returns a zero value of the given width.
func NewValue(width uint) Value {
	return Value{
		Limbs: make([]uint64, LimbsFor(width)),
		Bits:  width,
	}
}

// FromLimbs builds a value from limbs. The top limb is masked to width.
func FromLimbs(limbs []uint64, width uint) (Value, error) {
	if width == 0 {
		return Value{}, errors.New("width must be positive")
	}

	if len(limbs) != LimbsFor(width) {
		return Value{}, errors.Errorf(
			"%d-bit value needs %d limbs, got %d",
			width, LimbsFor(width), len(limbs))
	}

	v := Value{Limbs: make([]uint64, len(limbs)), Bits: width}
	copy(v.Limbs, limbs)
	v.mask()

	return v, nil
}

func (v *Value) mask() {
	if len(v.Limbs) == 0 {
		return
	}

	v.Limbs[len(v.Limbs)-1] &= TopMask(v.Bits)
}

// Clone returns a deep copy of v.
func (v Value) Clone() Value {
	c := Value{Limbs: make([]uint64, len(v.Limbs)), Bits: v.Bits}
	copy(c.Limbs, v.Limbs)

	return c
}

// Add returns a+b. A carry out of limb i goes into limb i+1, and the carry out
// of the top limb is discarded, so the sum wraps at 2^Bits.
func Add(a, b Value) (Value, error) {
	if a.Bits != b.Bits || len(a.Limbs) != len(b.Limbs) {
		return Value{}, errors.Errorf(
			"cannot add %d-bit and %d-bit values", a.Bits, b.Bits)
	}

	sum := Value{Limbs: make([]uint64, len(a.Limbs)), Bits: a.Bits}

	var carry uint64
	for i := range a.Limbs {
		sum.Limbs[i], carry = bits.Add64(a.Limbs[i], b.Limbs[i], carry)
	}

	sum.mask()

	return sum, nil
}

// Decompose splits x into limbs for a value of the given width. x is reduced
// modulo 2^width first.
func Decompose(x *big.Int, width uint) Value {
	v := NewValue(width)

	r := new(big.Int).Set(x)
	if r.Sign() < 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(v.Limbs))*LimbBits)
		r.Mod(r, mod)
	}

	limbMask := new(big.Int).SetUint64(^uint64(0))
	word := new(big.Int)

	for i := range v.Limbs {
		word.And(r, limbMask)
		v.Limbs[i] = word.Uint64()
		r.Rsh(r, LimbBits)
	}

	v.mask()

	return v
}

// Combine joins the limbs of v back into a single integer.
func Combine(v Value) *big.Int {
	x := new(big.Int)
	word := new(big.Int)

	for i := len(v.Limbs) - 1; i >= 0; i-- {
		x.Lsh(x, LimbBits)
		x.Or(x, word.SetUint64(v.Limbs[i]))
	}

	return x
}

// Equal tells whether two values have the same width and limbs.
func Equal(a, b Value) bool {
	if a.Bits != b.Bits || len(a.Limbs) != len(b.Limbs) {
		return false
	}

	for i := range a.Limbs {
		if a.Limbs[i] != b.Limbs[i] {
			return false
		}
	}

	return true
}
