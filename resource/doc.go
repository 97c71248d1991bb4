// Package resource implements the Controller for shared limits across filters.
//
// The Controller provides centralized management of three resource types:
//
//   - Memory: line buffers and in-flight pipeline copies (non-blocking, fail-fast)
//   - Concurrency: concurrent pipelined enumerations
//   - IO: scan throughput (chunk maps and compressed stream reads)
//
// # Architecture
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Pipeline       │  IO Rate Limiter        │
//	│  (fail-fast)    │  Slots (sem)    │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  AcquireMemory  │  AcquireBack-   │  AcquireIO              │
//	│  ReleaseMemory  │  ground         │  RateLimitedReader      │
//	│  MemoryUsage    │  TryAcquire     │                         │
//	│                 │  Release        │                         │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory Management
//
// AcquireMemory is non-blocking and returns ErrMemoryLimitExceeded
// immediately if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 64 << 20,
//	})
//
//	if err := rc.AcquireMemory(4096); err != nil {
//	    // ErrMemoryLimitExceeded - surfaced as an allocation failure
//	}
//	defer rc.ReleaseMemory(4096)
//
// # IO Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    IOLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireIO(ctx, chunkSize); err != nil {
//	    return err
//	}
//
//	reader := resource.NewRateLimitedReader(ctx, file, rc)
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
