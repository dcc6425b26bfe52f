package wide

import "github.com/pkg/errors"

// AddLanes adds a and b as independent lanes of laneBits bits packed into one
// 64-bit word. A carry never crosses from one lane into the next.
func AddLanes(a, b uint64, laneBits uint) (uint64, error) {
	if laneBits == 0 || laneBits > LimbBits || LimbBits%laneBits != 0 {
		return 0, errors.Errorf("lane width %d does not divide 64", laneBits)
	}

	if laneBits == LimbBits {
		return a + b, nil
	}

	mask := uint64(1)<<laneBits - 1

	var sum uint64
	for shift := uint(0); shift < LimbBits; shift += laneBits {
		lane := ((a >> shift) + (b >> shift)) & mask
		sum |= lane << shift
	}

	return sum, nil
}

// Lane extracts lane i of width laneBits from a packed word.
func Lane(word uint64, i int, laneBits uint) uint64 {
	mask := uint64(1)<<laneBits - 1
	if laneBits >= LimbBits {
		mask = ^uint64(0)
	}

	return (word >> (uint(i) * laneBits)) & mask
}
