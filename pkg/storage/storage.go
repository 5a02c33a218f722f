// Package storage defines interfaces for persisting drained log buffers.
package storage

import "time"

// SegmentStats describes the segment file currently receiving writes.
type SegmentStats struct {
	// Path of the open segment file.
	Path string
	// BytesWritten since the segment was opened.
	BytesWritten int64
	// Writes is the number of buffer writes into the segment.
	Writes int
	// OpenedAt is when the segment was created.
	OpenedAt time.Time
}

// Sink receives drained buffers from the writer goroutine.
// Sinks are owned by a single goroutine and need no locking.
type Sink interface {
	// Append writes p to the active segment, rotating first if the
	// rotation policy says so. Failures are logged, never returned.
	Append(p []byte)

	// Flush forces buffered data down to the OS.
	Flush()

	// Stats returns statistics for the active segment.
	Stats() SegmentStats

	// Close flushes and closes the active segment.
	Close() error
}

// RotationPolicy determines when the active segment should be replaced.
type RotationPolicy interface {
	// ShouldRotate returns true if a new segment must be opened before the
	// next write.
	ShouldRotate(stats SegmentStats) bool
}
