package sami

// Queue is a bounded FIFO safe for one-producer/one-consumer use without
// external locking. The channel is the synchronization primitive.
type Queue[T any] struct {
	items chan T
}

func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{
		items: make(chan T, capacity),
	}
}

// Push enqueues without blocking. Returns false when the queue is full.
func (q *Queue[T]) Push(item T) bool {
	select {
	case q.items <- item:
		return true
	default:
		return false
	}
}

// TryPop dequeues without blocking. Returns false when the queue is empty.
func (q *Queue[T]) TryPop() (T, bool) {
	select {
	case item := <-q.items:
		return item, true
	default:
		var zero T
		return zero, false
	}
}

func (q *Queue[T]) Len() int {
	return len(q.items)
}
