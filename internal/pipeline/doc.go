// Package pipeline runs a two-stage producer/consumer pipeline over a
// bounded FIFO queue.
//
// One producer goroutine reads lines and pushes owned copies into a [Queue];
// one consumer goroutine pops them in order and hands them to a callback.
// The queue blocks the producer while full and the consumer while empty, so
// at most Capacity line copies are in flight regardless of input size or
// callback latency.
//
// # Lifecycle
//
//	Idle ──Run──▶ Running ──producer returns──▶ Draining ──queue empty──▶ Stopped
//
// When the producer returns, the queue is stopped and BOTH wait conditions
// are broadcast, so a consumer parked on an empty queue always wakes up.
// Cancelling the context passed to [Pipeline.Run] cancels the queue: the
// producer stops at its next push and the consumer stops before its next
// dispatch, discarding anything still queued.
package pipeline
