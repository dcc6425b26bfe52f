// Package queueing provides the FIFO that links a value written in one phase
// of a test to the value expected in a later read phase.
package queueing

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/naming"
)

// HookPosEnqueue marks when a value is pushed into the queue.
var HookPosEnqueue = &hooking.HookPos{Name: "Pending Enqueue"}

// HookPosDequeue marks when a value is popped from the queue.
var HookPosDequeue = &hooking.HookPos{Name: "Pending Dequeue"}

// ErrUnderflow is returned when a read phase asks for a value that no earlier
// write phase produced. It always means the builder is broken.
var ErrUnderflow = errors.New("pending queue underflow")

// ErrOverflow is returned when a bounded queue is full.
var ErrOverflow = errors.New("pending queue overflow")

// A PendingQueue is a FIFO of written values waiting for their matching read.
// Across the life of a queue the number of dequeues never exceeds the number
// of enqueues.
type PendingQueue interface {
	naming.Named
	hooking.Hookable

	Enqueue(v any) error
	Dequeue() (any, error)
	Peek() (any, bool)
	Len() int
	Capacity() int

	// Enqueued and Dequeued count every successful push and pop.
	Enqueued() int
	Dequeued() int
}

// PendingQueueBuilder builds PendingQueues.
type PendingQueueBuilder struct {
	capacity int
}

// WithCapacity bounds the queue. A capacity of 0 means unbounded.
func (b PendingQueueBuilder) WithCapacity(capacity int) PendingQueueBuilder {
	b.capacity = capacity
	return b
}

// Build creates a new, empty queue.
func (b PendingQueueBuilder) Build(name string) PendingQueue {
	if b.capacity < 0 {
		panic("pending queue capacity must not be negative")
	}

	return &pendingQueue{
		NamedBase: naming.MakeNamedBase(name),
		capacity:  b.capacity,
	}
}

type pendingQueue struct {
	naming.NamedBase
	hooking.HookableBase

	capacity int
	elements []any
	enqueued int
	dequeued int
}

func (q *pendingQueue) Enqueue(v any) error {
	if q.capacity > 0 && len(q.elements) >= q.capacity {
		return errors.Wrapf(ErrOverflow, "queue %s holds %d values",
			q.Name(), q.capacity)
	}

	q.elements = append(q.elements, v)
	q.enqueued++

	q.invoke(HookPosEnqueue, v)

	return nil
}

func (q *pendingQueue) Dequeue() (any, error) {
	if len(q.elements) == 0 {
		return nil, errors.Wrapf(ErrUnderflow,
			"queue %s after %d enqueues and %d dequeues",
			q.Name(), q.enqueued, q.dequeued)
	}

	v := q.elements[0]
	q.elements[0] = nil
	q.elements = q.elements[1:]
	q.dequeued++

	q.invoke(HookPosDequeue, v)

	return v, nil
}

func (q *pendingQueue) invoke(pos *hooking.HookPos, v any) {
	if q.NumHooks() == 0 {
		return
	}

	q.InvokeHook(hooking.HookCtx{
		Domain: q,
		Pos:    pos,
		Item:   v,
		Detail: len(q.elements),
	})
}

func (q *pendingQueue) Peek() (any, bool) {
	if len(q.elements) == 0 {
		return nil, false
	}

	return q.elements[0], true
}

func (q *pendingQueue) Len() int {
	return len(q.elements)
}

func (q *pendingQueue) Capacity() int {
	return q.capacity
}

func (q *pendingQueue) Enqueued() int {
	return q.enqueued
}

func (q *pendingQueue) Dequeued() int {
	return q.dequeued
}

// DequeueUint64 pops a value that must be a uint64.
func DequeueUint64(q PendingQueue) (uint64, error) {
	v, err := q.Dequeue()
	if err != nil {
		return 0, err
	}

	u, ok := v.(uint64)
	if !ok {
		return 0, errors.Errorf("queue %s holds %T, want uint64", q.Name(), v)
	}

	return u, nil
}
