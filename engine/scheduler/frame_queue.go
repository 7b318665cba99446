package scheduler

import (
	"sync"
	"time"
)

// FrameQueue is a Host that collects animation-frame requests and runs them when the
// owner flushes it, once per display refresh. Callbacks requested while a flush is
// running are deferred to the next flush.
type FrameQueue struct {
	mu      sync.Mutex
	pending []func(now time.Time)
}

var _ Host = &FrameQueue{}

// RequestAnimationFrame queues cb for the next Flush.
func (q *FrameQueue) RequestAnimationFrame(cb func(now time.Time)) {
	q.mu.Lock()
	q.pending = append(q.pending, cb)
	q.mu.Unlock()
}

// Flush runs every callback queued before the call with the given timestamp.
//
// Parameters:
//   - now: the frame timestamp handed to each callback
//
// Returns:
//   - int: the number of callbacks run
func (q *FrameQueue) Flush(now time.Time) int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, cb := range batch {
		cb(now)
	}
	return len(batch)
}

// Len returns the number of queued callbacks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
