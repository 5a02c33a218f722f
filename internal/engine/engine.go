// Package engine runs the background writer that drains log buffers to a
// size-rolling file.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jittakal/asynclog/internal/buffer"
	"github.com/jittakal/asynclog/internal/errors"
	"github.com/jittakal/asynclog/internal/latch"
	"github.com/jittakal/asynclog/internal/observability"
	fstorage "github.com/jittakal/asynclog/internal/storage"
	pbuffer "github.com/jittakal/asynclog/pkg/buffer"
	"github.com/jittakal/asynclog/pkg/storage"
)

// Ensure implementation satisfies interfaces at compile time.
var (
	_ pbuffer.Appender = (*Engine)(nil)
	_ io.Writer        = (*Engine)(nil)
)

// MetricsCollector defines metrics operations for the engine and the
// components it wires together.
type MetricsCollector interface {
	buffer.MetricsCollector
	fstorage.MetricsCollector
	IncIterations()
	ObserveDrain(buffers int, duration float64)
	IncDroppedAppends()
}

// Engine accepts log lines from any number of goroutines and writes them
// to disk from a single writer goroutine.
type Engine struct {
	buffers       *buffer.DoubleBuffer
	sink          storage.Sink
	latch         *latch.CountDownLatch
	flushInterval time.Duration
	logger        *slog.Logger
	metrics       MetricsCollector

	mu      sync.Mutex
	started bool
	stopped bool

	terminated atomic.Bool
	running    atomic.Bool
	closed     atomic.Bool
	iterations atomic.Uint64
	done       chan struct{}
	panicked   atomic.Pointer[errors.WriterPanic]

	stopOnce sync.Once
	stopErr  error
}

// New creates an engine writing to {basename}-{YYYYMMDD-HHMMSS}.log,
// rolling to a new file once rollSize bytes have been written. It fails
// only if the first file cannot be created. The writer does not run until
// Start is called.
func New(basename string, rollSize int64, flushInterval time.Duration, opts ...Option) (*Engine, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = observability.DefaultLogger()
	}

	var sinkMetrics fstorage.MetricsCollector
	if o.metrics != nil {
		sinkMetrics = o.metrics
	}

	sink, err := fstorage.NewRollingFileWriter(fstorage.FileConfig{
		Basename: basename,
		RollSize: rollSize,
		Policy:   o.policy,
		Now:      o.now,
	}, o.logger, sinkMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return newEngine(sink, flushInterval, o), nil
}

func newEngine(sink storage.Sink, flushInterval time.Duration, o options) *Engine {
	if flushInterval <= 0 {
		flushInterval = DefaultFlushInterval
	}
	if o.logger == nil {
		o.logger = observability.DefaultLogger()
	}

	var bufferMetrics buffer.MetricsCollector
	if o.metrics != nil {
		bufferMetrics = o.metrics
	}

	return &Engine{
		buffers:       buffer.NewDoubleBuffer(o.bufferSize, bufferMetrics),
		sink:          sink,
		latch:         latch.New(1),
		flushInterval: flushInterval,
		logger:        o.logger,
		metrics:       o.metrics,
		done:          make(chan struct{}),
	}
}

// Start launches the writer goroutine and blocks until it is running.
// Calling Start twice is a no-op; Start after Stop is an error.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped {
		return errors.ErrEngineStopped
	}
	if e.started {
		return nil
	}
	e.started = true

	go e.run()
	e.latch.Wait()

	return nil
}

// Append buffers line for writing. It never blocks on I/O. Lines longer
// than the buffer size are truncated. Lines appended after Stop returns
// are dropped.
func (e *Engine) Append(line string) {
	if e.closed.Load() {
		e.drop()
		return
	}
	e.buffers.Append(line)
}

// Write implements io.Writer. p is copied before Write returns.
func (e *Engine) Write(p []byte) (int, error) {
	if e.closed.Load() {
		e.drop()
		return 0, errors.ErrEngineStopped
	}
	e.buffers.AppendBytes(p)
	return len(p), nil
}

// Sync wakes the writer so buffered data is written without waiting for
// the flush interval. It does not wait for the write.
func (e *Engine) Sync() error {
	if e.closed.Load() {
		return errors.ErrEngineStopped
	}
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if !started {
		return errors.ErrEngineNotStarted
	}
	e.buffers.Signal()
	return nil
}

func (e *Engine) drop() {
	if e.metrics != nil {
		e.metrics.IncDroppedAppends()
	}
}

// Stop blocks until everything appended before the call has been written
// and flushed, then closes the log file. It panics if the writer goroutine
// panicked. Further calls return the first call's result.
func (e *Engine) Stop() error {
	e.stopOnce.Do(func() {
		e.mu.Lock()
		started := e.started
		e.stopped = true
		e.mu.Unlock()

		e.terminated.Store(true)
		if started {
			e.buffers.Signal()
		} else {
			// Drain anything appended before Start on this goroutine.
			e.run()
		}
		<-e.done

		e.closed.Store(true)
		e.stopErr = e.sink.Close()
		e.logger.Info("writer stopped", "iterations", e.iterations.Load())
	})

	if p := e.panicked.Load(); p != nil {
		panic(p)
	}
	return e.stopErr
}

// Running reports whether the writer goroutine is live.
func (e *Engine) Running() bool {
	return e.running.Load()
}

// Iterations returns the number of completed writer passes.
func (e *Engine) Iterations() uint64 {
	return e.iterations.Load()
}

// FlushInterval returns the configured idle flush interval.
func (e *Engine) FlushInterval() time.Duration {
	return e.flushInterval
}

// run is the writer loop. Each pass waits for work or the flush interval,
// takes every sealed buffer plus the current one, writes them in seal
// order, recycles them as backups and flushes. Once termination is seen it
// makes one more pass without waiting and exits.
func (e *Engine) run() {
	defer close(e.done)
	defer e.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			e.panicked.Store(&errors.WriterPanic{Value: r, Stack: debug.Stack()})
			e.logger.Error("writer goroutine panicked", "panic", r)
		}
	}()

	e.running.Store(true)
	e.latch.CountDown()
	e.logger.Debug("writer started", "flush_interval", e.flushInterval)

	reserve := buffer.NewReserve(e.buffers.BufferSize())
	drain := make([]*buffer.FixedBuffer, 0, 16)

	for {
		stopping := e.terminated.Load()
		timeout := e.flushInterval
		if stopping {
			timeout = 0
		}

		drained := e.buffers.Swap(timeout, reserve, drain)

		start := time.Now()
		for _, b := range drained {
			if b.Len() == 0 {
				continue
			}
			e.sink.Append(b.Bytes())
		}
		reserve.Refill(drained)
		clear(drained)
		drain = drained[:0]

		e.sink.Flush()
		e.iterations.Add(1)

		if e.metrics != nil {
			e.metrics.IncIterations()
			e.metrics.ObserveDrain(len(drained), time.Since(start).Seconds())
		}

		if stopping {
			break
		}
	}

	e.sink.Flush()
}
