// Package frame provides display-synchronized callback scheduling. A host calls RunFrame on
// its Queue once per display refresh; callbacks scheduled during a frame run on the next one.
package frame

import "sync"

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler schedules one-shot callbacks for the next display frame.
type Scheduler interface {
	// ScheduleNext queues fn for the next frame.
	//
	// Parameters:
	//   - fn: the callback
	//
	// Returns:
	//   - Handle: the handle to pass to Cancel
	ScheduleNext(fn func()) Handle

	// Cancel removes a pending callback. Cancelling a handle that already ran or was
	// already cancelled does nothing.
	//
	// Parameters:
	//   - h: the handle returned by ScheduleNext
	Cancel(h Handle)
}

type entry struct {
	handle Handle
	fn     func()
}

// Queue is a Scheduler driven by explicit RunFrame calls.
type Queue struct {
	mu *sync.Mutex

	next    Handle
	pending []entry
}

var _ Scheduler = &Queue{}

// NewQueue creates an empty frame queue.
//
// Returns:
//   - *Queue: the queue
func NewQueue() *Queue {
	return &Queue{mu: &sync.Mutex{}}
}

func (q *Queue) ScheduleNext(fn func()) Handle {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.next++
	q.pending = append(q.pending, entry{handle: q.next, fn: fn})
	return q.next
}

func (q *Queue) Cancel(h Handle) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, e := range q.pending {
		if e.handle == h {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
}

// RunFrame runs the callbacks that were pending when it was called, in scheduling order.
// Callbacks scheduled while the frame runs wait for the next RunFrame.
//
// Returns:
//   - int: the number of callbacks run
func (q *Queue) RunFrame() int {
	q.mu.Lock()
	batch := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, e := range batch {
		e.fn()
	}
	return len(batch)
}

// Pending returns the number of callbacks waiting for the next frame.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
