package uart

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/naming"
	"github.com/sarchlab/vstim/queueing"
	"github.com/sarchlab/vstim/stimulus"
)

// HookPosFrameDriven marks when a frame is scheduled on RX.
var HookPosFrameDriven = &hooking.HookPos{Name: "Frame Driven"}

// HookPosFrameExpected marks when a frame is expected on TX.
var HookPosFrameExpected = &hooking.HookPos{Name: "Frame Expected"}

// ErrAddressMismatch is returned when a read is matched with a pending write
// to another register.
var ErrAddressMismatch = errors.New("read address does not match pending write")

// The low bit of a flag frame selects the transaction kind.
const (
	FlagRead  uint64 = 0
	FlagWrite uint64 = 1
)

// An Entry is a register write waiting for its read back.
type Entry struct {
	Addr uint64
	Data uint64
}

// TransactorBuilder builds Transactors.
type TransactorBuilder struct {
	cfg     Config
	rxPort  string
	txPort  string
	pending queueing.PendingQueue
}

// MakeTransactorBuilder returns a builder with the RX/TX port names of the
// reference DUT.
func MakeTransactorBuilder() TransactorBuilder {
	return TransactorBuilder{
		rxPort: "RX",
		txPort: "TX",
	}
}

// WithConfig sets the serial link parameters.
func (b TransactorBuilder) WithConfig(cfg Config) TransactorBuilder {
	b.cfg = cfg
	return b
}

// WithRXPort sets the port the generator drives.
func (b TransactorBuilder) WithRXPort(name string) TransactorBuilder {
	b.rxPort = name
	return b
}

// WithTXPort sets the port the DUT answers on.
func (b TransactorBuilder) WithTXPort(name string) TransactorBuilder {
	b.txPort = name
	return b
}

// WithPendingQueue sets the queue that remembers written registers. If not
// set, Build creates one.
func (b TransactorBuilder) WithPendingQueue(q queueing.PendingQueue) TransactorBuilder {
	b.pending = q
	return b
}

// Build validates the configuration and creates a Transactor that emits into
// e.
func (b TransactorBuilder) Build(name string, e stimulus.Emitter) (*Transactor, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}

	q := b.pending
	if q == nil {
		q = queueing.PendingQueueBuilder{}.Build(name + ".Pending")
	}

	return &Transactor{
		NamedBase: naming.MakeNamedBase(name),
		cfg:       b.cfg,
		rx:        b.rxPort,
		tx:        b.txPort,
		emitter:   e,
		pending:   q,
	}, nil
}

// A Transactor turns register writes and reads into frames.
//
// Bits driven on RX change at phase offset 0 of each baud period. Bits
// expected on TX are checked at offset BaudPeriod-1, which leaves the DUT one
// period minus a tick of output latency.
//
// The address counter is shared by every transaction of the transactor. It
// advances after each transaction and wraps at 2^AddrWidth.
type Transactor struct {
	naming.NamedBase
	hooking.HookableBase

	cfg     Config
	rx, tx  string
	emitter stimulus.Emitter
	pending queueing.PendingQueue
	addr    uint64
	writes  int
	reads   int
}

// Config returns the serial link parameters.
func (t *Transactor) Config() Config {
	return t.cfg
}

// Pending returns the queue of writes waiting to be read back.
func (t *Transactor) Pending() queueing.PendingQueue {
	return t.pending
}

// Address returns the value of the shared address counter.
func (t *Transactor) Address() uint64 {
	return t.addr
}

// Writes returns the number of write transactions issued.
func (t *Transactor) Writes() int {
	return t.writes
}

// Reads returns the number of read transactions issued.
func (t *Transactor) Reads() int {
	return t.reads
}

// WriteTicks returns the duration of a write transaction.
func (t *Transactor) WriteTicks() uint64 {
	return 2*t.cfg.FrameTicks(t.cfg.AddrWidth) + t.cfg.FrameTicks(t.cfg.DataWidth)
}

// ReadTicks returns the duration of a read transaction, including the answer
// frame.
func (t *Transactor) ReadTicks() uint64 {
	return 2*t.cfg.FrameTicks(t.cfg.AddrWidth) + t.cfg.FrameTicks(t.cfg.DataWidth)
}

// Drive schedules f on RX starting at tick and returns the first tick after
// the frame.
func (t *Transactor) Drive(tick uint64, f Frame) (uint64, error) {
	baud := uint64(t.cfg.BaudPeriod)

	for i, bit := range f.Bits() {
		err := t.emitter.AddTestOp(t.rx, stimulus.ActionWrite, bit,
			tick+uint64(i)*baud)
		if err != nil {
			return tick, err
		}
	}

	t.invoke(HookPosFrameDriven, f, tick)

	return tick + t.cfg.FrameTicks(f.Width), nil
}

// Expect schedules checks of f on TX starting at tick and returns the first
// tick after the frame.
func (t *Transactor) Expect(tick uint64, f Frame) (uint64, error) {
	baud := uint64(t.cfg.BaudPeriod)
	sample := baud - 1

	for i, bit := range f.Bits() {
		err := t.emitter.AddTestOp(t.tx, stimulus.ActionRead, bit,
			tick+uint64(i)*baud+sample)
		if err != nil {
			return tick, err
		}
	}

	t.invoke(HookPosFrameExpected, f, tick)

	return tick + t.cfg.FrameTicks(f.Width), nil
}

func (t *Transactor) invoke(pos *hooking.HookPos, f Frame, tick uint64) {
	if t.NumHooks() == 0 {
		return
	}

	t.InvokeHook(hooking.HookCtx{
		Domain: t,
		Pos:    pos,
		Item:   f,
		Detail: tick,
	})
}

// Write stores data in the register selected by the address counter.
func (t *Transactor) Write(tick, data uint64) (uint64, error) {
	return t.WriteTo(tick, t.addr, data)
}

// WriteTo stores data in register addr. It sends a flag frame with the write
// bit set, an address frame and a data frame, and remembers the write for a
// later read.
func (t *Transactor) WriteTo(tick, addr, data uint64) (uint64, error) {
	addr &= payloadMask(t.cfg.AddrWidth)
	data &= payloadMask(t.cfg.DataWidth)

	next, err := t.driveHeader(tick, FlagWrite, addr)
	if err != nil {
		return tick, err
	}

	next, err = t.Drive(next, NewFrame(data, t.cfg.DataWidth))
	if err != nil {
		return tick, err
	}

	if err := t.pending.Enqueue(Entry{Addr: addr, Data: data}); err != nil {
		return tick, err
	}

	t.writes++
	t.advance()

	return next, nil
}

// Read reads back the register selected by the address counter.
func (t *Transactor) Read(tick uint64) (uint64, error) {
	return t.ReadFrom(tick, t.addr)
}

// ReadFrom reads back register addr. It sends a flag frame with the write bit
// clear and an address frame, then expects the DUT to answer on TX with the
// oldest pending write, which must target addr.
func (t *Transactor) ReadFrom(tick, addr uint64) (uint64, error) {
	addr &= payloadMask(t.cfg.AddrWidth)

	v, err := t.pending.Dequeue()
	if err != nil {
		return tick, errors.Wrapf(err, "read %d of %s", t.reads, t.Name())
	}

	entry, ok := v.(Entry)
	if !ok {
		return tick, errors.Errorf("pending queue of %s holds %T", t.Name(), v)
	}

	if entry.Addr != addr {
		return tick, errors.Wrapf(ErrAddressMismatch,
			"read of register %d matched write to register %d", addr, entry.Addr)
	}

	next, err := t.driveHeader(tick, FlagRead, addr)
	if err != nil {
		return tick, err
	}

	next, err = t.Expect(next, NewFrame(entry.Data, t.cfg.DataWidth))
	if err != nil {
		return tick, err
	}

	t.reads++
	t.advance()

	return next, nil
}

func (t *Transactor) driveHeader(tick, flag, addr uint64) (uint64, error) {
	next, err := t.Drive(tick, NewFrame(flag, t.cfg.AddrWidth))
	if err != nil {
		return tick, err
	}

	return t.Drive(next, NewFrame(addr, t.cfg.AddrWidth))
}

func (t *Transactor) advance() {
	t.addr = (t.addr + 1) & payloadMask(t.cfg.AddrWidth)
}
