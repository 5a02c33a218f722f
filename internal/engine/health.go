package engine

import (
	"context"
	"strconv"
)

// Liveness is false only when the writer goroutine died unexpectedly.
func (e *Engine) Liveness() bool {
	return e.panicked.Load() == nil
}

// Readiness reports whether appended lines are currently reaching disk.
func (e *Engine) Readiness(ctx context.Context) bool {
	return e.running.Load()
}

// IsHealthy reports whether the writer is running.
func (e *Engine) IsHealthy() bool {
	return e.running.Load()
}

// GetStatus returns writer state for the readiness endpoint.
func (e *Engine) GetStatus() map[string]string {
	writer := "stopped"
	if e.running.Load() {
		writer = "running"
	}
	return map[string]string{
		"writer":            writer,
		"writer_iterations": strconv.FormatUint(e.iterations.Load(), 10),
		"flush_interval":    e.flushInterval.String(),
	}
}
