// Package buffer implements the double-buffered state shared between log
// producers and the background writer.
package buffer

import (
	"sync"
	"time"

	"github.com/jittakal/asynclog/pkg/buffer"
)

// Ensure implementation satisfies interface at compile time.
var _ buffer.Appender = (*DoubleBuffer)(nil)

// initialPending is the starting capacity of the pending queue.
const initialPending = 16

// MetricsCollector defines metrics operations for the producer side.
type MetricsCollector interface {
	IncAppends(bytes int)
	IncSwaps(degraded bool)
}

// DoubleBuffer holds the buffer receiving appends, a spare buffer held in
// reserve and the FIFO of sealed buffers waiting for the writer.
// A single mutex guards all three; no I/O happens while it is held.
type DoubleBuffer struct {
	mu      sync.Mutex
	current *FixedBuffer
	spare   *FixedBuffer
	pending []*FixedBuffer

	size    int
	notify  chan struct{}
	metrics MetricsCollector
}

// NewDoubleBuffer creates the shared state with buffers of the given size.
// metrics may be nil.
func NewDoubleBuffer(size int, metrics MetricsCollector) *DoubleBuffer {
	if size <= 0 {
		size = DefaultSize
	}
	return &DoubleBuffer{
		current: NewFixed(size),
		spare:   NewFixed(size),
		pending: make([]*FixedBuffer, 0, initialPending),
		size:    size,
		notify:  make(chan struct{}, 1),
		metrics: metrics,
	}
}

// BufferSize returns the capacity of every buffer in the pool.
func (d *DoubleBuffer) BufferSize() int {
	return d.size
}

// Append writes line into the current buffer. When it does not fit, the
// current buffer is sealed onto the pending queue, the spare takes its place
// and the writer is signalled. A line longer than BufferSize is truncated.
func (d *DoubleBuffer) Append(line string) {
	d.AppendBytes([]byte(line))
}

// AppendBytes is Append for byte slices. p is copied before returning.
func (d *DoubleBuffer) AppendBytes(p []byte) {
	d.mu.Lock()
	if len(p) <= d.current.Avail() {
		d.current.Append(p)
		d.mu.Unlock()
		d.observeAppend(len(p))
		return
	}

	next := d.spare
	d.spare = nil
	degraded := next == nil
	if degraded {
		next = NewFixed(d.size)
	}
	d.pending = append(d.pending, d.current)
	d.current = next
	n := d.current.Append(p)
	d.Signal()
	d.mu.Unlock()

	d.observeAppend(n)
	if d.metrics != nil {
		d.metrics.IncSwaps(degraded)
	}
}

func (d *DoubleBuffer) observeAppend(n int) {
	if d.metrics != nil {
		d.metrics.IncAppends(n)
	}
}

// Signal wakes the writer if it is waiting. It never blocks.
func (d *DoubleBuffer) Signal() {
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// Pending returns the number of sealed buffers waiting for the writer.
func (d *DoubleBuffer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// Swap is the writer side of the exchange. If nothing is pending it first
// waits up to timeout for a signal; either way it then seals the current
// buffer (even when empty), hands the whole pending queue back to the caller
// in seal order and installs drain, which must be empty, as the new queue.
// Replacement buffers come from r, never from the allocator.
func (d *DoubleBuffer) Swap(timeout time.Duration, r *Reserve, drain []*FixedBuffer) []*FixedBuffer {
	d.mu.Lock()
	if len(d.pending) == 0 && timeout > 0 {
		d.mu.Unlock()
		d.wait(timeout)
		d.mu.Lock()
	}

	d.pending = append(d.pending, d.current)
	d.current = r.takePrimary()
	d.pending, drain = drain[:0], d.pending
	if d.spare == nil {
		d.spare = r.takeSecondary()
	}

	// Signals sent so far are for buffers taken above.
	select {
	case <-d.notify:
	default:
	}
	d.mu.Unlock()

	return drain
}

// wait blocks until Signal is called or timeout elapses. The caller does not
// need to know which happened.
func (d *DoubleBuffer) wait(timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.notify:
	case <-timer.C:
	}
}
