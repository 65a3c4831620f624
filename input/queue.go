package input

import "sync/atomic"

const (
	queueSize = 256 // Must be a power of two
	queueMask = queueSize - 1
)

// Queue is a lock-free MPSC ring buffer of input events
// Thread-Safety:
//   - Push: Lock-free CAS, multiple producers OK
//   - Drain: Single consumer (loop goroutine)
//   - Published flags prevent reading partial writes
//
// Overflow: Oldest events overwritten when full
type Queue struct {
	events    [queueSize]Event
	published [queueSize]atomic.Bool // True = slot fully written
	head      atomic.Uint64          // Read index
	tail      atomic.Uint64          // Write index
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event, safe for concurrent producers
func (q *Queue) Push(ev Event) {
	for {
		currentTail := q.tail.Load()
		nextTail := currentTail + 1

		if q.tail.CompareAndSwap(currentTail, nextTail) {
			idx := currentTail & queueMask

			q.events[idx] = ev
			q.published[idx].Store(true) // MUST be after write

			currentHead := q.head.Load()
			if nextTail-currentHead > queueSize {
				q.head.CompareAndSwap(currentHead, nextTail-queueSize)
			}
			return
		}
	}
}

// Drain returns pending events in FIFO order and advances head
func (q *Queue) Drain() []Event {
	for {
		currentHead := q.head.Load()
		currentTail := q.tail.Load()

		if currentTail == currentHead {
			return nil
		}

		available := currentTail - currentHead
		if available > queueSize {
			available = queueSize
			currentHead = currentTail - queueSize
		}

		result := make([]Event, 0, available)
		for i := uint64(0); i < available; i++ {
			idx := (currentHead + i) & queueMask
			if !q.published[idx].Load() {
				break // Writer incomplete
			}
			result = append(result, q.events[idx])
			q.published[idx].Store(false)
		}

		if q.head.CompareAndSwap(currentHead, currentHead+uint64(len(result))) {
			if len(result) == 0 {
				return nil
			}
			return result
		}
	}
}

// Len returns the number of pending events
func (q *Queue) Len() int {
	n := q.tail.Load() - q.head.Load()
	if n > queueSize {
		n = queueSize
	}
	return int(n)
}
