// Package queue provides a fixed-capacity, thread-safe FIFO with blocking
// enqueue and dequeue.
//
// A full queue blocks enqueuers and an empty queue blocks dequeuers, so the
// capacity bound is enforced by waiting rather than by rejecting. One mutex
// and two condition variables (not-full, not-empty) guard each queue; no two
// queues ever share a lock, so moving an item between queues is two
// independent operations, not an atomic hop.
//
// Size and Occupancy are unsynchronized snapshots intended solely as scaling
// heuristics. They must never be used to predicate the safety of a blocking
// operation.
package queue
