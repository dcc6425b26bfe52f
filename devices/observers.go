package devices

import (
	"github.com/sarchlab/vstim/hooking"
	"github.com/sarchlab/vstim/queueing"
)

// A QueueObserver is a Generator that correlates writes and reads through a
// pending queue and lets hooks watch that queue.
type QueueObserver interface {
	AcceptQueueHook(h hooking.Hook)
}

// QueueHooks keeps the hooks to attach to every pending queue a generator
// creates. Each Generate call uses a fresh queue.
type QueueHooks struct {
	hooks []hooking.Hook
}

// AcceptQueueHook registers a hook for the queues created from now on.
func (q *QueueHooks) AcceptQueueHook(h hooking.Hook) {
	q.hooks = append(q.hooks, h)
}

// NewQueue creates an unbounded pending queue with the registered hooks.
func (q *QueueHooks) NewQueue(name string) queueing.PendingQueue {
	pq := queueing.PendingQueueBuilder{}.Build(name)
	for _, h := range q.hooks {
		pq.AcceptHook(h)
	}

	return pq
}

// A FrameObserver is a Generator that talks a serial protocol and lets hooks
// watch every frame it schedules.
type FrameObserver interface {
	AcceptFrameHook(h hooking.Hook)
}
