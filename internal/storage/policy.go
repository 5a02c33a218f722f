package storage

import (
	"time"

	"github.com/jittakal/asynclog/pkg/storage"
)

// Ensure implementation satisfies interface at compile time.
var _ storage.RotationPolicy = (*CompositePolicy)(nil)

// PolicyConfig configures rotation behavior. Zero values disable a criterion.
type PolicyConfig struct {
	RollSizeBytes int64
	MaxWrites     int
	MaxDuration   time.Duration
}

// CompositePolicy rotates when any configured criterion is met.
type CompositePolicy struct {
	rollSize    int64
	maxWrites   int
	maxDuration time.Duration
	now         func() time.Time
}

// NewPolicy creates a new rotation policy (alias for NewCompositePolicy).
func NewPolicy(config PolicyConfig) *CompositePolicy {
	return NewCompositePolicy(config)
}

// NewCompositePolicy creates a new composite rotation policy.
func NewCompositePolicy(config PolicyConfig) *CompositePolicy {
	return &CompositePolicy{
		rollSize:    config.RollSizeBytes,
		maxWrites:   config.MaxWrites,
		maxDuration: config.MaxDuration,
		now:         time.Now,
	}
}

// ShouldRotate returns true if any rotation condition is met.
func (p *CompositePolicy) ShouldRotate(stats storage.SegmentStats) bool {
	// Size-based rotation
	if p.rollSize > 0 && stats.BytesWritten >= p.rollSize {
		return true
	}

	// Count-based rotation
	if p.maxWrites > 0 && stats.Writes >= p.maxWrites {
		return true
	}

	// Time-based rotation, only once the segment holds data
	if p.maxDuration > 0 && stats.BytesWritten > 0 && !stats.OpenedAt.IsZero() {
		if p.now().Sub(stats.OpenedAt) >= p.maxDuration {
			return true
		}
	}

	return false
}
