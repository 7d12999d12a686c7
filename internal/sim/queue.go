package sim

import "sync"

// EditQueue funnels edits from input goroutines to the simulation goroutine.
type EditQueue struct {
	mu      sync.Mutex
	pending []Edit
}

func NewEditQueue() *EditQueue {
	return &EditQueue{pending: make([]Edit, 0, 8)}
}

// Push is safe for concurrent use.
func (q *EditQueue) Push(edits ...Edit) {
	q.mu.Lock()
	q.pending = append(q.pending, edits...)
	q.mu.Unlock()
}

// Drain returns pending edits in arrival order and empties the queue.
func (q *EditQueue) Drain() []Edit {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.pending) == 0 {
		return nil
	}
	out := q.pending
	q.pending = make([]Edit, 0, cap(out))
	return out
}

func (q *EditQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
