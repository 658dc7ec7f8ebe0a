package queue

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	ring "github.com/eapache/queue"
)

// ErrInvalidCapacity is returned by New for capacities below one.
var ErrInvalidCapacity = fmt.Errorf("queue capacity must be at least 1")

// Queue is a bounded, thread-safe FIFO of T. The zero value is not usable;
// construct with New.
type Queue[T any] struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond

	buf      *ring.Queue
	capacity int

	// size mirrors buf.Length() so Size/Occupancy can read it without the
	// lock. It is a heuristic snapshot: stale by the time the caller acts
	// on it, and safe only for scaling decisions.
	size atomic.Int64
}

// New constructs a queue with the given fixed capacity. Capacity is
// immutable after construction.
func New[T any](capacity int) (*Queue[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
	}
	q := &Queue[T]{
		buf:      ring.New(),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	q.notEmpty = sync.NewCond(&q.mu)
	return q, nil
}

// Enqueue appends v at the tail, blocking while the queue is full. It never
// fails and never times out.
func (q *Queue[T]) Enqueue(v T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Length() == q.capacity {
		q.notFull.Wait()
	}
	q.buf.Add(v)
	q.size.Store(int64(q.buf.Length()))
	q.notEmpty.Signal()
}

// Dequeue removes and returns the head item, blocking while the queue is
// empty. It never fails and never times out.
func (q *Queue[T]) Dequeue() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.buf.Length() == 0 {
		q.notEmpty.Wait()
	}
	return q.remove()
}

// DequeueContext behaves like Dequeue but gives up with ctx.Err() if the
// context is cancelled before an item has been claimed. Cancellation wins
// over an item arriving at the same moment, so a caller cancelled while
// waiting never takes new work; once an item has been removed, however, it
// is returned and can no longer be lost to cancellation.
func (q *Queue[T]) DequeueContext(ctx context.Context) (T, error) {
	stop := context.AfterFunc(ctx, func() {
		// Wake every waiter so cancelled ones can observe ctx.Err().
		q.mu.Lock()
		q.notEmpty.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			if q.buf.Length() > 0 {
				// A signal may have been aimed at this waiter; pass it on
				// rather than strand the item.
				q.notEmpty.Signal()
			}
			var zero T
			return zero, err
		}
		if q.buf.Length() > 0 {
			return q.remove(), nil
		}
		q.notEmpty.Wait()
	}
}

// remove pops the head. Callers must hold q.mu and have checked non-emptiness.
func (q *Queue[T]) remove() T {
	v := q.buf.Remove().(T)
	q.size.Store(int64(q.buf.Length()))
	q.notFull.Signal()
	return v
}

// Capacity returns the fixed capacity set at construction.
func (q *Queue[T]) Capacity() int {
	return q.capacity
}

// Size returns an instantaneous snapshot of the queue length. The value may
// be stale the moment it is returned; use it for scaling heuristics only,
// never to decide whether a blocking call is safe.
func (q *Queue[T]) Size() int {
	return int(q.size.Load())
}

// Occupancy returns Size/Capacity as a ratio in [0,1], with the same racy
// snapshot semantics as Size.
func (q *Queue[T]) Occupancy() float64 {
	return float64(q.size.Load()) / float64(q.capacity)
}
