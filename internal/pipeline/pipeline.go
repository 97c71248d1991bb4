package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/hupe1980/logfilter/resource"
	"golang.org/x/sync/errgroup"
)

// ErrAllocation is returned when an in-flight copy exceeds the memory budget.
var ErrAllocation = errors.New("pipeline: in-flight line allocation failed")

// State is the lifecycle phase of a Pipeline.
type State int32

const (
	// Idle means Run has not been called.
	Idle State = iota
	// Running means producer and consumer are both active.
	Running
	// Draining means the producer has finished and the consumer is flushing.
	Draining
	// Stopped means both goroutines have returned.
	Stopped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// ProduceFunc returns the next line, or io.EOF when the input is exhausted.
// The returned slice may be borrowed; the pipeline copies it.
type ProduceFunc func() ([]byte, error)

// ConsumeFunc receives lines in input order. line is valid only for the
// duration of the call.
type ConsumeFunc func(line []byte)

// Config configures a Pipeline.
type Config struct {
	// Capacity is the queue size. 0 selects DefaultCapacity.
	Capacity int

	// Resource charges in-flight copies and bounds concurrent runs. May be nil.
	Resource *resource.Controller

	// OnDepth observes the queue size after every push and pop. May be nil.
	OnDepth func(depth int)

	// Logger receives lifecycle debug logs. May be nil.
	Logger *slog.Logger
}

// Pipeline is a single-use producer/consumer run.
type Pipeline struct {
	cfg   Config
	queue *Queue
	state atomic.Int32
}

// New returns an idle Pipeline.
func New(cfg Config) *Pipeline {
	q := NewQueue(cfg.Capacity)
	if cfg.OnDepth != nil {
		q.OnDepth(cfg.OnDepth)
	}
	return &Pipeline{cfg: cfg, queue: q}
}

// State returns the current lifecycle phase.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

// Queue exposes the bounded queue.
func (p *Pipeline) Queue() *Queue {
	return p.queue
}

// Run drives produce and consume to completion and returns once both have
// returned. A producer error ends production early; lines already queued are
// still delivered and the error is returned. If ctx is cancelled Run returns
// ctx.Err().
func (p *Pipeline) Run(ctx context.Context, produce ProduceFunc, consume ConsumeFunc) error {
	if !p.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return fmt.Errorf("pipeline: run in state %s", p.State())
	}
	defer p.state.Store(int32(Stopped))

	if err := p.cfg.Resource.AcquireBackground(ctx); err != nil {
		return err
	}
	defer p.cfg.Resource.ReleaseBackground()

	stop := context.AfterFunc(ctx, p.queue.Cancel)
	defer stop()

	p.debug(ctx, "pipeline started", "capacity", p.queue.Cap())

	var g errgroup.Group
	g.Go(func() error {
		defer func() {
			p.state.CompareAndSwap(int32(Running), int32(Draining))
			p.queue.Stop()
		}()
		return p.produce(produce)
	})
	g.Go(func() error {
		return p.consume(ctx, consume)
	})
	err := g.Wait()

	for _, line := range p.queue.Drain() {
		p.cfg.Resource.ReleaseMemory(int64(len(line)))
	}

	if err == nil && p.queue.Cancelled() {
		err = ctx.Err()
	}
	p.debug(ctx, "pipeline stopped", "error", err)
	return err
}

func (p *Pipeline) produce(produce ProduceFunc) error {
	for {
		line, err := produce()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		if err := p.cfg.Resource.AcquireMemory(int64(len(line))); err != nil {
			return fmt.Errorf("%w: %w", ErrAllocation, err)
		}
		owned := bytes.Clone(line)
		if owned == nil {
			owned = []byte{}
		}
		if !p.queue.Push(owned) {
			p.cfg.Resource.ReleaseMemory(int64(len(owned)))
			return nil
		}
	}
}

func (p *Pipeline) consume(ctx context.Context, consume ConsumeFunc) error {
	for {
		line, ok := p.queue.Pop()
		if !ok {
			return nil
		}
		if err := ctx.Err(); err != nil {
			p.cfg.Resource.ReleaseMemory(int64(len(line)))
			p.queue.Cancel()
			return err
		}
		consume(line)
		p.cfg.Resource.ReleaseMemory(int64(len(line)))
	}
}

func (p *Pipeline) debug(ctx context.Context, msg string, args ...any) {
	if p.cfg.Logger != nil {
		p.cfg.Logger.DebugContext(ctx, msg, args...)
	}
}
