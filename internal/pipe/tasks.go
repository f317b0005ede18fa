package pipe

import "sync"

// Tasks is a multi-producer queue of closures executed on the goroutine
// that owns T. Post may be called from anywhere; Drain only from the
// owner.
type Tasks[T any] struct {
	mu    sync.Mutex
	queue []func(T)
}

// Post schedules fn for the next Drain.
func (q *Tasks[T]) Post(fn func(T)) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Drain runs every task queued so far in FIFO order and returns how many
// ran. Tasks posted while draining wait for the next call.
func (q *Tasks[T]) Drain(owner T) int {
	q.mu.Lock()
	batch := q.queue
	q.queue = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn(owner)
	}
	return len(batch)
}
