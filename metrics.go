package logfilter

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordOpen is called after each open. err is nil if successful.
	RecordOpen(duration time.Duration, err error)

	// RecordEnumerate is called after each enumeration, including a single
	// NextMatchingLine call. lines is the number of lines read, matched the
	// number delivered.
	RecordEnumerate(mode Mode, lines, matched int64, duration time.Duration, err error)

	// RecordQueueDepth is called after every push and pop of a pipelined
	// enumeration. It runs on the hot path and must not block.
	RecordQueueDepth(depth int)

	// RecordFailure is called when a reader invalidates itself.
	RecordFailure(msg string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(time.Duration, error)                          {}
func (NoopMetricsCollector) RecordEnumerate(Mode, int64, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordQueueDepth(int)                                     {}
func (NoopMetricsCollector) RecordFailure(string)                                     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount       atomic.Int64
	OpenErrors      atomic.Int64
	EnumerateCount  atomic.Int64
	EnumerateErrors atomic.Int64
	PipelinedCount  atomic.Int64
	LinesRead       atomic.Int64
	LinesMatched    atomic.Int64
	EnumerateNanos  atomic.Int64
	MaxQueueDepth   atomic.Int64
	FailureCount    atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(duration time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordEnumerate implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEnumerate(mode Mode, lines, matched int64, duration time.Duration, err error) {
	b.EnumerateCount.Add(1)
	if mode == ModePipelined {
		b.PipelinedCount.Add(1)
	}
	b.LinesRead.Add(lines)
	b.LinesMatched.Add(matched)
	b.EnumerateNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EnumerateErrors.Add(1)
	}
}

// RecordQueueDepth implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQueueDepth(depth int) {
	d := int64(depth)
	for {
		cur := b.MaxQueueDepth.Load()
		if d <= cur || b.MaxQueueDepth.CompareAndSwap(cur, d) {
			return
		}
	}
}

// RecordFailure implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFailure(string) {
	b.FailureCount.Add(1)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:         b.OpenCount.Load(),
		OpenErrors:        b.OpenErrors.Load(),
		EnumerateCount:    b.EnumerateCount.Load(),
		EnumerateErrors:   b.EnumerateErrors.Load(),
		PipelinedCount:    b.PipelinedCount.Load(),
		LinesRead:         b.LinesRead.Load(),
		LinesMatched:      b.LinesMatched.Load(),
		EnumerateAvgNanos: b.getAvgEnumerateNanos(),
		MaxQueueDepth:     b.MaxQueueDepth.Load(),
		FailureCount:      b.FailureCount.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEnumerateNanos() int64 {
	count := b.EnumerateCount.Load()
	if count == 0 {
		return 0
	}
	return b.EnumerateNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount         int64
	OpenErrors        int64
	EnumerateCount    int64
	EnumerateErrors   int64
	PipelinedCount    int64
	LinesRead         int64
	LinesMatched      int64
	EnumerateAvgNanos int64
	MaxQueueDepth     int64
	FailureCount      int64
}
