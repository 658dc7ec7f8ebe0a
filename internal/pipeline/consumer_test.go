package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beltline/beltline/internal/item"
	"github.com/beltline/beltline/internal/logging"
)

func waitClosed(t *testing.T, ch <-chan struct{}, d time.Duration, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(d):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestConsumerProcessesItems(t *testing.T) {
	in := mustQueue(t, 8)
	out := mustQueue(t, 8)

	addOne := func(op item.Opcode, value uint64) uint64 { return value + 1 }
	c := NewConsumer(0, in, out, addOne, logging.NewNop(), testMetrics())
	c.Start()

	for i := 0; i < 5; i++ {
		in.Enqueue(item.New(i, uint64(i), item.OpAdd))
	}
	for i := 0; i < 5; i++ {
		it := dequeueWait(t, out, 5*time.Second)
		assert.Equal(t, it.Value, uint64(it.Key)+1)
	}
}

func TestConsumerCancelWhileIdle(t *testing.T) {
	in := mustQueue(t, 8)
	out := mustQueue(t, 8)

	c := NewConsumer(0, in, out, passthrough, logging.NewNop(), testMetrics())
	c.Start()

	// Let the worker reach its blocking dequeue, then cancel it while the
	// queue is empty.
	time.Sleep(20 * time.Millisecond)
	c.Cancel()
	waitClosed(t, c.Done(), time.Second, "idle consumer to stop")

	// Work arriving after the stop must not be touched by this consumer.
	in.Enqueue(item.New(1, 10, item.OpAdd))
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, in.Size())
	assert.Equal(t, 0, out.Size())
}

func TestConsumerCancelMidFlight(t *testing.T) {
	in := mustQueue(t, 8)
	out := mustQueue(t, 8)

	entered := make(chan struct{})
	release := make(chan struct{})
	slow := func(op item.Opcode, value uint64) uint64 {
		close(entered)
		<-release
		return value + 100
	}

	c := NewConsumer(0, in, out, slow, logging.NewNop(), testMetrics())
	c.Start()
	in.Enqueue(item.New(7, 1, item.OpAdd))

	// The item is mid-operation; a cancel now must not interrupt it.
	waitClosed(t, entered, time.Second, "consumer to start the transform")
	c.Cancel()
	close(release)

	it := dequeueWait(t, out, 5*time.Second)
	assert.Equal(t, 7, it.Key)
	assert.Equal(t, uint64(101), it.Value)

	// The stop is honored at the loop boundary that follows.
	waitClosed(t, c.Done(), time.Second, "consumer to stop after delivery")
	assert.Equal(t, 0, in.Size())
}

func TestConsumerCancelIdempotent(t *testing.T) {
	in := mustQueue(t, 8)
	out := mustQueue(t, 8)

	c := NewConsumer(0, in, out, passthrough, logging.NewNop(), testMetrics())
	c.Start()

	c.Cancel()
	c.Cancel()
	c.Cancel()
	waitClosed(t, c.Done(), time.Second, "consumer to stop once")
}

func TestConsumerDeliversBeforeObservingStop(t *testing.T) {
	// An item dequeued into a full downstream queue must still land, even
	// if the consumer is cancelled while blocked on the enqueue.
	in := mustQueue(t, 8)
	out := mustQueue(t, 1)
	out.Enqueue(item.New(99, 0, item.OpAdd)) // occupy the only slot

	c := NewConsumer(0, in, out, passthrough, logging.NewNop(), testMetrics())
	c.Start()
	in.Enqueue(item.New(1, 5, item.OpAdd))

	time.Sleep(50 * time.Millisecond) // consumer is now blocked enqueueing
	c.Cancel()

	require.Equal(t, 99, dequeueWait(t, out, time.Second).Key)
	it := dequeueWait(t, out, 5*time.Second)
	assert.Equal(t, 1, it.Key)
	assert.Equal(t, uint64(5), it.Value)
	waitClosed(t, c.Done(), time.Second, "consumer to stop after delivery")
}
