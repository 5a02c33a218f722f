package buffer

import "github.com/jittakal/asynclog/pkg/buffer"

// Ensure implementation satisfies interface at compile time.
var _ buffer.Fixed = (*FixedBuffer)(nil)

// DefaultSize is the capacity of each log buffer when none is configured.
const DefaultSize = 4000 * 1000

// FixedBuffer is a fixed-capacity byte region. It never grows: bytes that
// do not fit are dropped.
type FixedBuffer struct {
	data []byte
}

// NewFixed allocates an empty buffer holding up to size bytes.
func NewFixed(size int) *FixedBuffer {
	return &FixedBuffer{data: make([]byte, 0, size)}
}

// Append copies min(len(p), Avail()) bytes and returns the count copied.
func (b *FixedBuffer) Append(p []byte) int {
	n := min(len(p), b.Avail())
	b.data = append(b.data, p[:n]...)
	return n
}

// Avail returns the remaining capacity.
func (b *FixedBuffer) Avail() int {
	return cap(b.data) - len(b.data)
}

// Len returns the number of bytes written.
func (b *FixedBuffer) Len() int {
	return len(b.data)
}

// Cap returns the fixed capacity.
func (b *FixedBuffer) Cap() int {
	return cap(b.data)
}

// Bytes returns the written region.
func (b *FixedBuffer) Bytes() []byte {
	return b.data
}

// Reset empties the buffer, keeping its storage for reuse.
func (b *FixedBuffer) Reset() {
	b.data = b.data[:0]
}
