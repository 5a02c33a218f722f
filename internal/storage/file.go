// Package storage implements the size-rolling file sink for drained log buffers.
package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jittakal/asynclog/internal/errors"
	"github.com/jittakal/asynclog/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.Sink = (*RollingFileWriter)(nil)

// SegmentTimeLayout is the timestamp part of a segment file name.
const SegmentTimeLayout = "20060102-150405"

// MetricsCollector defines metrics operations for storage.
type MetricsCollector interface {
	ObserveWrite(bytes int, err error)
	IncRotations(status string)
	IncFlushes()
}

// FileConfig contains rolling file configuration.
type FileConfig struct {
	// Basename is the path prefix; segments are named {Basename}-{YYYYMMDD-HHMMSS}.log.
	Basename string
	// RollSize is the byte count after which the next write opens a new segment.
	RollSize int64
	// Policy overrides the size-only policy built from RollSize.
	Policy storage.RotationPolicy
	// Now overrides the clock used for segment names.
	Now func() time.Time
}

// RollingFileWriter appends buffers to a timestamped segment file and rolls
// over to a new one once the rotation policy fires. It is used by the
// writer goroutine only and holds no lock.
type RollingFileWriter struct {
	basename string
	policy   storage.RotationPolicy
	now      func() time.Time
	logger   *slog.Logger
	metrics  MetricsCollector

	file     *os.File
	path     string
	written  int64
	writes   int
	openedAt time.Time
	segments int
}

// NewRollingFileWriter opens the first segment. It fails only if that file
// cannot be created. metrics may be nil.
func NewRollingFileWriter(config FileConfig, logger *slog.Logger, metrics MetricsCollector) (*RollingFileWriter, error) {
	if config.Basename == "" {
		return nil, fmt.Errorf("%w: basename is required", errors.ErrInvalidConfig)
	}

	if dir := filepath.Dir(config.Basename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, &errors.SinkError{Operation: errors.OpOpen, Path: dir, Err: err}
		}
	}

	policy := config.Policy
	if policy == nil {
		policy = NewPolicy(PolicyConfig{RollSizeBytes: config.RollSize})
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}

	w := &RollingFileWriter{
		basename: config.Basename,
		policy:   policy,
		now:      now,
		logger:   logger,
		metrics:  metrics,
	}

	f, path, err := w.openSegment()
	if err != nil {
		return nil, err
	}
	w.install(f, path)

	logger.Info("log segment opened", "path", path, "roll_size", config.RollSize)

	return w, nil
}

// SegmentPath returns the segment name for basename at time t.
func SegmentPath(basename string, t time.Time) string {
	return fmt.Sprintf("%s-%s.log", basename, t.Format(SegmentTimeLayout))
}

// openSegment creates a new segment file. It refuses to reuse an existing
// name, so two rotations within the same second fail the second time.
func (w *RollingFileWriter) openSegment() (*os.File, string, error) {
	path := SegmentPath(w.basename, w.now())

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			err = fmt.Errorf("%w: %w", errors.ErrSegmentExists, err)
		}
		return nil, path, &errors.SinkError{Operation: errors.OpOpen, Path: path, Err: err}
	}
	return f, path, nil
}

func (w *RollingFileWriter) install(f *os.File, path string) {
	w.file = f
	w.path = path
	w.written = 0
	w.writes = 0
	w.openedAt = w.now()
	w.segments++
}

// Append writes p to the active segment, rotating first when the policy
// says so. A single write may carry a segment past the roll size.
// Write errors are logged and the byte counter still advances.
func (w *RollingFileWriter) Append(p []byte) {
	if w.policy.ShouldRotate(w.Stats()) {
		w.rotate()
	}

	_, err := w.file.Write(p)
	if err != nil {
		sinkErr := &errors.SinkError{Operation: errors.OpWrite, Path: w.path, Err: err}
		w.logger.Error("failed to write log segment",
			"path", w.path,
			"bytes", len(p),
			"retryable", errors.IsRetryable(sinkErr),
			"error", sinkErr,
		)
	}
	w.written += int64(len(p))
	w.writes++

	if w.metrics != nil {
		w.metrics.ObserveWrite(len(p), err)
	}
}

// rotate replaces the active segment. On failure the previous segment stays
// active and its counters are kept, so the next write tries again.
func (w *RollingFileWriter) rotate() {
	w.Flush()

	f, path, err := w.openSegment()
	if err != nil {
		w.logger.Error("failed to rotate log segment",
			"current_path", w.path,
			"retryable", errors.IsRetryable(err),
			"error", err,
		)
		if w.metrics != nil {
			w.metrics.IncRotations("failure")
		}
		return
	}

	old, oldPath, oldSize := w.file, w.path, w.written
	w.install(f, path)

	if err := old.Close(); err != nil {
		w.logger.Error("failed to close rotated log segment",
			"path", oldPath,
			"error", &errors.SinkError{Operation: errors.OpClose, Path: oldPath, Err: err},
		)
	}

	w.logger.Info("rotated log segment",
		"previous_path", oldPath,
		"previous_size", oldSize,
		"path", path,
	)
	if w.metrics != nil {
		w.metrics.IncRotations("success")
	}
}

// Flush commits the active segment to stable storage. Errors are logged.
func (w *RollingFileWriter) Flush() {
	if err := w.file.Sync(); err != nil {
		w.logger.Error("failed to flush log segment",
			"path", w.path,
			"error", &errors.SinkError{Operation: errors.OpFlush, Path: w.path, Err: err},
		)
	}
	if w.metrics != nil {
		w.metrics.IncFlushes()
	}
}

// Stats returns statistics for the active segment.
func (w *RollingFileWriter) Stats() storage.SegmentStats {
	return storage.SegmentStats{
		Path:         w.path,
		BytesWritten: w.written,
		Writes:       w.writes,
		OpenedAt:     w.openedAt,
	}
}

// Segments returns how many segments have been opened, including the first.
func (w *RollingFileWriter) Segments() int {
	return w.segments
}

// Close flushes and closes the active segment.
func (w *RollingFileWriter) Close() error {
	w.logger.Info("closing log segment", "path", w.path, "bytes", w.written)

	syncErr := w.file.Sync()
	if err := w.file.Close(); err != nil {
		return &errors.SinkError{Operation: errors.OpClose, Path: w.path, Err: err}
	}
	if syncErr != nil {
		return &errors.SinkError{Operation: errors.OpFlush, Path: w.path, Err: syncErr}
	}
	return nil
}
