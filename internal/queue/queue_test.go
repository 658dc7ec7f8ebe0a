package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid capacity", func(t *testing.T) {
		q, err := New[int](4)
		require.NoError(t, err)
		assert.Equal(t, 4, q.Capacity())
		assert.Equal(t, 0, q.Size())
	})

	t.Run("zero capacity", func(t *testing.T) {
		_, err := New[int](0)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})

	t.Run("negative capacity", func(t *testing.T) {
		_, err := New[int](-3)
		assert.ErrorIs(t, err, ErrInvalidCapacity)
	})
}

func TestFIFOSingleWriterSingleReader(t *testing.T) {
	q, err := New[int](8)
	require.NoError(t, err)

	const total = 100
	go func() {
		for i := 0; i < total; i++ {
			q.Enqueue(i)
		}
	}()

	for i := 0; i < total; i++ {
		assert.Equal(t, i, q.Dequeue())
	}
}

func TestEnqueueBlocksWhenFull(t *testing.T) {
	q, err := New[int](2)
	require.NoError(t, err)
	q.Enqueue(1)
	q.Enqueue(2)

	entered := make(chan struct{})
	landed := make(chan struct{})
	go func() {
		close(entered)
		q.Enqueue(3)
		close(landed)
	}()

	<-entered
	select {
	case <-landed:
		t.Fatal("enqueue on a full queue returned without space")
	case <-time.After(50 * time.Millisecond):
	}

	assert.Equal(t, 1, q.Dequeue())
	select {
	case <-landed:
	case <-time.After(time.Second):
		t.Fatal("enqueue did not unblock after space appeared")
	}
	assert.Equal(t, 2, q.Size())
}

func TestDequeueBlocksWhenEmpty(t *testing.T) {
	q, err := New[int](2)
	require.NoError(t, err)

	got := make(chan int, 1)
	go func() {
		got <- q.Dequeue()
	}()

	select {
	case v := <-got:
		t.Fatalf("dequeue on an empty queue returned %d", v)
	case <-time.After(50 * time.Millisecond):
	}

	q.Enqueue(42)
	select {
	case v := <-got:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("dequeue did not unblock after an item appeared")
	}
}

func TestCapacityInvariantUnderConcurrency(t *testing.T) {
	const (
		capacity  = 8
		writers   = 4
		readers   = 4
		perWriter = 500
	)

	q, err := New[int](capacity)
	require.NoError(t, err)

	var violations atomic.Int64
	samplerDone := make(chan struct{})
	stopSampler := make(chan struct{})
	go func() {
		defer close(samplerDone)
		for {
			select {
			case <-stopSampler:
				return
			default:
				if s := q.Size(); s < 0 || s > capacity {
					violations.Add(1)
				}
			}
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				q.Enqueue(w*perWriter + i)
			}
		}(w)
	}

	seen := make(map[int]int)
	var seenMu sync.Mutex
	var rg sync.WaitGroup
	for r := 0; r < readers; r++ {
		rg.Add(1)
		go func() {
			defer rg.Done()
			for i := 0; i < writers*perWriter/readers; i++ {
				v := q.Dequeue()
				seenMu.Lock()
				seen[v]++
				seenMu.Unlock()
			}
		}()
	}

	wg.Wait()
	rg.Wait()
	close(stopSampler)
	<-samplerDone

	assert.Zero(t, violations.Load(), "queue length escaped [0, capacity]")
	assert.Equal(t, 0, q.Size())

	// No loss, no duplication.
	require.Len(t, seen, writers*perWriter)
	for v, n := range seen {
		assert.Equal(t, 1, n, "item %d observed %d times", v, n)
	}
}

func TestDequeueContext(t *testing.T) {
	t.Run("cancelled while empty", func(t *testing.T) {
		q, err := New[int](2)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := q.DequeueContext(ctx)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, context.Canceled)
		case <-time.After(time.Second):
			t.Fatal("cancelled DequeueContext did not return")
		}
	})

	t.Run("cancellation wins over available item", func(t *testing.T) {
		q, err := New[int](2)
		require.NoError(t, err)
		q.Enqueue(1)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err = q.DequeueContext(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, q.Size(), "item claimed despite cancellation")
	})

	t.Run("returns item when not cancelled", func(t *testing.T) {
		q, err := New[int](2)
		require.NoError(t, err)
		q.Enqueue(7)

		v, err := q.DequeueContext(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("plain waiters survive a cancelled sibling", func(t *testing.T) {
		q, err := New[int](2)
		require.NoError(t, err)

		got := make(chan int, 1)
		go func() {
			got <- q.Dequeue()
		}()

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() {
			_, err := q.DequeueContext(ctx)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()
		require.ErrorIs(t, <-errCh, context.Canceled)

		q.Enqueue(9)
		select {
		case v := <-got:
			assert.Equal(t, 9, v)
		case <-time.After(time.Second):
			t.Fatal("plain dequeue starved after sibling cancellation")
		}
	})
}

func TestOccupancy(t *testing.T) {
	q, err := New[string](4)
	require.NoError(t, err)

	assert.Equal(t, 0.0, q.Occupancy())
	q.Enqueue("a")
	assert.Equal(t, 0.25, q.Occupancy())
	q.Enqueue("b")
	q.Enqueue("c")
	assert.Equal(t, 0.75, q.Occupancy())
	q.Dequeue()
	assert.Equal(t, 0.5, q.Occupancy())
}
