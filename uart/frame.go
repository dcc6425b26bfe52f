// Package uart builds the timed bit sequences of a serial register-file
// protocol. The generator drives RX and checks TX.
package uart

import (
	"github.com/pkg/errors"
)

// FrameOverhead is the number of non-payload bits in a frame: one start bit
// and two stop bits.
const FrameOverhead = 3

// MaxPayloadWidth is the widest payload a frame can carry.
const MaxPayloadWidth = 32

// The line levels of the framing bits.
const (
	StartBit uint64 = 0
	StopBit  uint64 = 1
)

// ErrInvalidConfig is returned for a serial configuration that cannot produce
// frames.
var ErrInvalidConfig = errors.New("invalid uart configuration")

// Config holds the serial link parameters, as set on the DUT by the
// BAUD_PERIOD, DATA_WIDTH and ADDR_WIDTH macros.
type Config struct {
	// BaudPeriod is the number of ticks per bit.
	BaudPeriod uint
	// DataWidth is the payload width of data frames.
	DataWidth uint
	// AddrWidth is the payload width of flag and address frames. The DUT has
	// 2^AddrWidth registers.
	AddrWidth uint
}

// Validate rejects configurations before any operation is emitted.
func (c Config) Validate() error {
	if c.BaudPeriod == 0 {
		return errors.Wrap(ErrInvalidConfig, "baud period must be positive")
	}

	if c.DataWidth == 0 || c.DataWidth > MaxPayloadWidth {
		return errors.Wrapf(ErrInvalidConfig,
			"data width %d not in [1, %d]", c.DataWidth, MaxPayloadWidth)
	}

	if c.AddrWidth == 0 || c.AddrWidth > 16 {
		return errors.Wrapf(ErrInvalidConfig,
			"address width %d not in [1, 16]", c.AddrWidth)
	}

	return nil
}

// Registers returns the size of the DUT register file.
func (c Config) Registers() uint64 {
	return uint64(1) << c.AddrWidth
}

// FrameTicks returns how many ticks a frame with the given payload width
// lasts.
func (c Config) FrameTicks(width uint) uint64 {
	return uint64(c.BaudPeriod) * uint64(width+FrameOverhead)
}

// A Frame is one start bit, Width payload bits and two stop bits.
type Frame struct {
	Payload uint64
	Width   uint
}

// NewFrame creates a frame. Payload bits above width are dropped.
func NewFrame(payload uint64, width uint) Frame {
	return Frame{Payload: payload & payloadMask(width), Width: width}
}

func payloadMask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}

	return uint64(1)<<width - 1
}

// Len returns the number of bits in the frame.
func (f Frame) Len() int {
	return int(f.Width) + FrameOverhead
}

// Word packs the frame as [stop x2][payload xW][start], so that shifting the
// word right one bit at a time yields the bits in line order.
func (f Frame) Word() uint64 {
	return StopBit<<(f.Width+2) | StopBit<<(f.Width+1) | f.Payload<<1 | StartBit
}

// Bits returns the frame in line order: the start bit, the payload least
// significant bit first, then the stop bits.
func (f Frame) Bits() []uint64 {
	bits := make([]uint64, 0, f.Len())
	w := f.Word()

	for i := 0; i < f.Len(); i++ {
		bits = append(bits, w&1)
		w >>= 1
	}

	return bits
}

// DecodeFrame rebuilds a frame from bits in line order.
func DecodeFrame(bits []uint64, width uint) (Frame, error) {
	if len(bits) != int(width)+FrameOverhead {
		return Frame{}, errors.Errorf("frame of width %d needs %d bits, got %d",
			width, int(width)+FrameOverhead, len(bits))
	}

	if bits[0] != StartBit {
		return Frame{}, errors.New("missing start bit")
	}

	if bits[len(bits)-1] != StopBit || bits[len(bits)-2] != StopBit {
		return Frame{}, errors.New("missing stop bits")
	}

	var payload uint64
	for i := int(width) - 1; i >= 0; i-- {
		payload = payload<<1 | bits[1+i]&1
	}

	return Frame{Payload: payload, Width: width}, nil
}
