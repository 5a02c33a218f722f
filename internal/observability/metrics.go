package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "asynclog"

// Metrics holds all Prometheus metrics.
type Metrics struct {
	// Producer metrics
	Appends        prometheus.Counter
	AppendedBytes  prometheus.Counter
	DroppedAppends prometheus.Counter
	Swaps          *prometheus.CounterVec

	// Writer metrics
	WriterIterations prometheus.Counter
	DrainedBuffers   prometheus.Gauge
	DrainDuration    prometheus.Histogram

	// Storage metrics
	BuffersWritten *prometheus.CounterVec
	BytesWritten   prometheus.Counter
	Rotations      *prometheus.CounterVec
	Flushes        prometheus.Counter

	// Load generator metrics
	LinesGenerated prometheus.Counter
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics(registry *prometheus.Registry) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Producer metrics
		Appends: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appends_total",
				Help:      "Total number of lines appended",
			},
		),
		AppendedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "appended_bytes_total",
				Help:      "Total bytes accepted into buffers after truncation",
			},
		),
		DroppedAppends: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "dropped_appends_total",
				Help:      "Lines appended after the engine was stopped",
			},
		),
		Swaps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "buffer_swaps_total",
				Help:      "Buffers sealed by producers, by source of the replacement buffer",
			},
			[]string{"source"},
		),

		// Writer metrics
		WriterIterations: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "writer_iterations_total",
				Help:      "Writer loop passes, including idle flushes",
			},
		),
		DrainedBuffers: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "drained_buffers",
				Help:      "Buffers taken by the most recent writer pass",
			},
		),
		DrainDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "drain_duration_seconds",
				Help:      "Time spent writing and flushing one drained batch",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
			},
		),

		// Storage metrics
		BuffersWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "buffers_written_total",
				Help:      "Buffers written to the active segment",
			},
			[]string{"status"},
		),
		BytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "written_bytes_total",
				Help:      "Bytes handed to segment files",
			},
		),
		Rotations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rotations_total",
				Help:      "Segment rotations",
			},
			[]string{"status"},
		),
		Flushes: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "flushes_total",
				Help:      "Segment flushes",
			},
		),

		// Load generator metrics
		LinesGenerated: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loadgen_lines_total",
				Help:      "Lines produced by the load generator",
			},
		),
	}
}

// IncAppends counts one appended line of n accepted bytes.
func (m *Metrics) IncAppends(n int) {
	m.Appends.Inc()
	m.AppendedBytes.Add(float64(n))
}

// IncSwaps counts a producer-side buffer swap.
func (m *Metrics) IncSwaps(degraded bool) {
	source := "spare"
	if degraded {
		source = "allocated"
	}
	m.Swaps.WithLabelValues(source).Inc()
}

// IncDroppedAppends counts a line appended after Stop.
func (m *Metrics) IncDroppedAppends() {
	m.DroppedAppends.Inc()
}

// IncIterations counts one writer loop pass.
func (m *Metrics) IncIterations() {
	m.WriterIterations.Inc()
}

// ObserveDrain records the size and duration of one writer pass.
func (m *Metrics) ObserveDrain(buffers int, duration float64) {
	m.DrainedBuffers.Set(float64(buffers))
	m.DrainDuration.Observe(duration)
}

// ObserveWrite records one buffer write to a segment.
func (m *Metrics) ObserveWrite(n int, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.BuffersWritten.WithLabelValues(status).Inc()
	m.BytesWritten.Add(float64(n))
}

// IncRotations counts a segment rotation attempt.
func (m *Metrics) IncRotations(status string) {
	m.Rotations.WithLabelValues(status).Inc()
}

// IncFlushes counts a segment flush.
func (m *Metrics) IncFlushes() {
	m.Flushes.Inc()
}

// IncLinesGenerated counts one line from the load generator.
func (m *Metrics) IncLinesGenerated() {
	m.LinesGenerated.Inc()
}
