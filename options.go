package logfilter

import (
	"log/slog"

	"github.com/hupe1980/logfilter/internal/fs"
	"github.com/hupe1980/logfilter/internal/pipeline"
	"github.com/hupe1980/logfilter/resource"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	resource         *resource.Controller
	memoryLimit      int64
	ioRate           int64
	maxLineLength    int
	chunkSize        int
	queueCapacity    int
	decompress       bool
	onFailure        func(msg string)
	fileSystem       fs.FileSystem
}

// Option configures a LogFilter.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &logfilter.BasicMetricsCollector{}
//	lf := logfilter.New(logfilter.WithMetricsCollector(metrics))
//	// ... use lf ...
//	stats := metrics.GetStats()
//	fmt.Printf("Lines: %d, matched: %d\n", stats.LinesRead, stats.LinesMatched)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := logfilter.NewJSONLogger(slog.LevelInfo)
//	lf := logfilter.New(logfilter.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithResourceController shares a resource controller between filters.
// A shared controller bounds their combined memory, IO rate and number of
// concurrent pipelined enumerations. It takes precedence over
// WithMemoryLimit and WithIORateLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithMemoryLimit caps the bytes held by line buffers and in-flight line
// copies. Exceeding it fails the current read with ErrAllocation.
// 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithIORateLimit throttles reads to bytesPerSec. 0 means unlimited.
func WithIORateLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioRate = bytesPerSec
	}
}

// WithMaxLineLength caps a single line in bytes. Longer lines fail with
// ErrAllocation. 0 means unlimited.
func WithMaxLineLength(n int) Option {
	return func(o *options) {
		o.maxLineLength = n
	}
}

// WithChunkSize overrides the mapping window. It must be a positive multiple
// of the platform allocation granularity, otherwise Open fails.
// 0 selects the granularity.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

// WithQueueCapacity sets the number of in-flight lines of a pipelined
// enumeration. 0 selects the default of 100.
func WithQueueCapacity(n int) Option {
	return func(o *options) {
		o.queueCapacity = n
	}
}

// WithDecompression enables or disables transparent reading of zstd and LZ4
// compressed inputs. Enabled by default.
func WithDecompression(enabled bool) Option {
	return func(o *options) {
		o.decompress = enabled
	}
}

// WithFailureHook registers fn to receive a short message whenever a reader
// hits an unrecoverable condition. It does not influence control flow.
func WithFailureHook(fn func(msg string)) Option {
	return func(o *options) {
		o.onFailure = fn
	}
}

// WithFileSystem replaces the file system used to open inputs.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		o.fileSystem = fsys
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		queueCapacity:    pipeline.DefaultCapacity,
		decompress:       true,
		fileSystem:       fs.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.resource == nil && (o.memoryLimit > 0 || o.ioRate > 0) {
		o.resource = resource.NewController(resource.Config{
			MemoryLimitBytes:   o.memoryLimit,
			IOLimitBytesPerSec: o.ioRate,
		})
	}
	return o
}
