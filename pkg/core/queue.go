package core

import "sync"

// message is one unit of work for the dispatcher: an optional state
// mutation plus an implicit "re-render the target" flag. A nil apply
// is a pure flag, used by the watcher poll.
type message struct {
	target NodeID
	apply  func(rt *Runtime, n *mountedNode)
}

// msgQueue is the unbounded multi-producer queue drained by Pump.
// Producers never block: setters must be safe to call from event
// handlers and effect goroutines without backpressure.
type msgQueue struct {
	mu    sync.Mutex
	items []message
}

func (q *msgQueue) push(m message) {
	q.mu.Lock()
	q.items = append(q.items, m)
	q.mu.Unlock()
}

// drain removes and returns all queued messages in arrival order.
// Messages pushed while a drained batch is being processed land in the
// next batch.
func (q *msgQueue) drain() []message {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.mu.Unlock()
	return items
}

func (q *msgQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
