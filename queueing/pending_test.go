package queueing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/sarchlab/vstim/hooking"
)

var _ = Describe("PendingQueue", func() {
	var q PendingQueue

	BeforeEach(func() {
		q = PendingQueueBuilder{}.Build("Scratch.Pending")
	})

	It("should dequeue in write order", func() {
		Expect(q.Enqueue(uint64(1))).To(Succeed())
		Expect(q.Enqueue(uint64(2))).To(Succeed())
		Expect(q.Enqueue(uint64(3))).To(Succeed())

		v, ok := q.Peek()
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(uint64(1)))

		for _, want := range []uint64{1, 2, 3} {
			got, err := DequeueUint64(q)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		}

		Expect(q.Len()).To(Equal(0))
		Expect(q.Enqueued()).To(Equal(3))
		Expect(q.Dequeued()).To(Equal(3))
	})

	It("should fail on underflow instead of returning a default", func() {
		_, err := q.Dequeue()
		Expect(errors.Is(err, ErrUnderflow)).To(BeTrue())

		_, ok := q.Peek()
		Expect(ok).To(BeFalse())
		Expect(q.Dequeued()).To(Equal(0))
	})

	It("should bound the queue when a capacity is given", func() {
		q = PendingQueueBuilder{}.WithCapacity(1).Build("Bounded")

		Expect(q.Capacity()).To(Equal(1))
		Expect(q.Enqueue(1)).To(Succeed())
		Expect(errors.Is(q.Enqueue(2), ErrOverflow)).To(BeTrue())
	})

	It("should refuse values of the wrong type", func() {
		Expect(q.Enqueue("x")).To(Succeed())

		_, err := DequeueUint64(q)
		Expect(err).To(HaveOccurred())
	})

	It("should invoke hooks", func() {
		var positions []*hooking.HookPos
		q.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			positions = append(positions, ctx.Pos)
		}))

		Expect(q.Enqueue(uint64(7))).To(Succeed())
		_, err := q.Dequeue()
		Expect(err).NotTo(HaveOccurred())

		Expect(positions).To(Equal([]*hooking.HookPos{
			HookPosEnqueue, HookPosDequeue,
		}))
	})

	It("should panic on negative capacity", func() {
		Expect(func() {
			PendingQueueBuilder{}.WithCapacity(-1).Build("Bad")
		}).To(Panic())
	})
})
