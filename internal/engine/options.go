package engine

import (
	"log/slog"
	"time"

	"github.com/jittakal/asynclog/internal/buffer"
	"github.com/jittakal/asynclog/pkg/storage"
)

// DefaultFlushInterval bounds how long appended data may sit in memory
// when traffic is too low to fill a buffer.
const DefaultFlushInterval = 3 * time.Second

type options struct {
	bufferSize int
	logger     *slog.Logger
	metrics    MetricsCollector
	policy     storage.RotationPolicy
	now        func() time.Time
}

func defaultOptions() options {
	return options{
		bufferSize: buffer.DefaultSize,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithBufferSize sets the capacity of each log buffer.
func WithBufferSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.bufferSize = size
		}
	}
}

// WithLogger sets the logger for the engine's own diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(metrics MetricsCollector) Option {
	return func(o *options) {
		o.metrics = metrics
	}
}

// WithPolicy replaces the size-only rotation policy.
func WithPolicy(policy storage.RotationPolicy) Option {
	return func(o *options) {
		o.policy = policy
	}
}

// WithClock overrides the clock used for segment names.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}
