/*
Package pipeline implements the staged producer-consumer pipeline and its
feedback-controlled consumer pool.

# Data Flow

	source -> input queue -> producer pool -> worker queue -> consumer pool -> output queue -> sink

Producers form a fixed pool; consumers form an elastic pool resized by a
single controller goroutine that periodically samples worker-queue occupancy
and grows or shrinks the pool by one worker per tick.

# Cancellation

Consumer shutdown is cooperative. A cancel request takes effect either while
the consumer is idle (blocked waiting for work) or at the loop boundary after
a completed dequeue-transform-enqueue cycle. An item that has been dequeued
is always transformed and delivered before the consumer exits, so cancellation
never drops, duplicates, or half-processes an item.

# Lifetime

Producers and the controller have no stop mechanism: they run until the
process exits, matching the pipeline's ownership model in which the source
and sink decide overall lifetime. Items still in flight at teardown are
discarded.
*/
package pipeline
