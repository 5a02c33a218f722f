// Package buffer defines interfaces for in-memory log buffering.
//
// Buffers collect formatted log lines on producer goroutines so that
// disk I/O can happen on a single background writer.
package buffer

// Appender accepts complete, already formatted log lines.
// All implementations must be safe for concurrent use and must never
// block on file I/O.
type Appender interface {
	// Append copies line into the buffered state.
	// Lines longer than the buffer capacity are truncated.
	Append(line string)
}

// Fixed is a fixed-capacity byte region with append-until-full semantics.
type Fixed interface {
	// Append copies as many bytes of p as fit and returns the count copied.
	Append(p []byte) int

	// Avail returns the remaining capacity in bytes.
	Avail() int

	// Len returns the number of bytes written.
	Len() int

	// Bytes exposes the written region. Callers must not modify it.
	Bytes() []byte

	// Reset empties the buffer without releasing its storage.
	Reset()
}
