package pipeline

import "sync"

// DefaultCapacity is the number of in-flight lines a Queue holds.
const DefaultCapacity = 100

// Queue is a fixed-capacity ring of owned byte slices shared by exactly one
// producer and one consumer.
type Queue struct {
	mu       sync.Mutex
	notEmpty sync.Cond
	notFull  sync.Cond

	items [][]byte
	head  int
	tail  int
	size  int

	stopped   bool
	cancelled bool

	onDepth func(depth int)
}

// NewQueue returns an empty queue. capacity <= 0 selects DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	q := &Queue{items: make([][]byte, capacity)}
	q.notEmpty.L = &q.mu
	q.notFull.L = &q.mu
	return q
}

// OnDepth registers fn to observe the size after every push and pop.
// fn runs with the queue lock held and must not call back into the queue.
func (q *Queue) OnDepth(fn func(depth int)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onDepth = fn
}

// Push appends line, blocking while the queue is full. The queue takes
// ownership of line. Push returns false, without enqueuing, once the queue
// is stopped or cancelled.
func (q *Queue) Push(line []byte) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == len(q.items) && !q.stopped && !q.cancelled {
		q.notFull.Wait()
	}
	if q.stopped || q.cancelled {
		return false
	}

	q.items[q.tail] = line
	q.tail = (q.tail + 1) % len(q.items)
	q.size++
	q.observe()
	q.notEmpty.Signal()
	return true
}

// Pop removes the head, blocking while the queue is empty and not stopped.
// After Stop it keeps returning items until the queue is drained, then
// reports false. After Cancel it reports false immediately.
func (q *Queue) Pop() ([]byte, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.size == 0 && !q.stopped && !q.cancelled {
		q.notEmpty.Wait()
	}
	if q.cancelled || q.size == 0 {
		return nil, false
	}

	line := q.items[q.head]
	q.items[q.head] = nil
	q.head = (q.head + 1) % len(q.items)
	q.size--
	q.observe()
	q.notFull.Signal()
	return line, true
}

// Stop marks the end of production and wakes every waiter.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.stopped = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Cancel aborts both sides and wakes every waiter.
func (q *Queue) Cancel() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.cancelled = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

// Cancelled reports whether Cancel was called.
func (q *Queue) Cancelled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.cancelled
}

// Drain removes and returns everything still queued.
func (q *Queue) Drain() [][]byte {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([][]byte, 0, q.size)
	for q.size > 0 {
		out = append(out, q.items[q.head])
		q.items[q.head] = nil
		q.head = (q.head + 1) % len(q.items)
		q.size--
	}
	q.observe()
	q.notFull.Broadcast()
	return out
}

// Len returns the number of queued lines.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.size
}

// Cap returns the fixed capacity.
func (q *Queue) Cap() int {
	return len(q.items)
}

func (q *Queue) observe() {
	if q.onDepth != nil {
		q.onDepth(q.size)
	}
}
