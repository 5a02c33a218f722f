package dto

import (
	"fmt"
	"time"
)

// ApplicationConfig is the root configuration structure
type ApplicationConfig struct {
	Application   ApplicationInfo     `mapstructure:"application"`
	Engine        EngineConfig        `mapstructure:"engine"`
	Rotation      RotationConfig      `mapstructure:"rotation"`
	LoadGen       LoadGenConfig       `mapstructure:"loadgen"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Shutdown      ShutdownConfig      `mapstructure:"shutdown"`
}

// ApplicationInfo contains application metadata
type ApplicationInfo struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// EngineConfig contains the asynchronous log engine settings
type EngineConfig struct {
	Basename             string `mapstructure:"basename"`
	RollSizeBytes        int64  `mapstructure:"roll_size_bytes"`
	FlushIntervalSeconds int    `mapstructure:"flush_interval_seconds"`
	BufferSizeBytes      int    `mapstructure:"buffer_size_bytes"`
	Level                string `mapstructure:"level"`
}

// FlushInterval returns the writer wake-up interval.
func (c *EngineConfig) FlushInterval() time.Duration {
	return time.Duration(c.FlushIntervalSeconds) * time.Second
}

// Validate validates engine configuration.
func (c *EngineConfig) Validate() error {
	if c.Basename == "" {
		return fmt.Errorf("engine basename is required")
	}
	if c.RollSizeBytes <= 0 {
		return fmt.Errorf("engine roll size must be positive, got %d", c.RollSizeBytes)
	}
	if c.FlushIntervalSeconds <= 0 {
		return fmt.Errorf("engine flush interval must be positive, got %d", c.FlushIntervalSeconds)
	}
	if c.BufferSizeBytes <= 0 {
		return fmt.Errorf("engine buffer size must be positive, got %d", c.BufferSizeBytes)
	}
	return nil
}

// RotationConfig contains additional segment rotation triggers.
// Zero disables a trigger.
type RotationConfig struct {
	MaxWrites          int `mapstructure:"max_writes"`
	MaxDurationSeconds int `mapstructure:"max_duration_seconds"`
}

// MaxDuration returns the segment age limit.
func (c *RotationConfig) MaxDuration() time.Duration {
	return time.Duration(c.MaxDurationSeconds) * time.Second
}

// Validate validates rotation configuration.
func (c *RotationConfig) Validate() error {
	if c.MaxWrites < 0 {
		return fmt.Errorf("rotation max writes must not be negative, got %d", c.MaxWrites)
	}
	if c.MaxDurationSeconds < 0 {
		return fmt.Errorf("rotation max duration must not be negative, got %d", c.MaxDurationSeconds)
	}
	return nil
}

// LoadGenConfig contains synthetic producer settings for the demo daemon
type LoadGenConfig struct {
	Producers        int `mapstructure:"producers"`
	LinesPerProducer int `mapstructure:"lines_per_producer"`
	IntervalMS       int `mapstructure:"interval_ms"`
}

// Interval returns the pause between lines of a single producer.
func (c *LoadGenConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMS) * time.Millisecond
}

// Validate validates load generator configuration.
func (c *LoadGenConfig) Validate() error {
	if c.Producers < 0 {
		return fmt.Errorf("loadgen producers must not be negative, got %d", c.Producers)
	}
	if c.LinesPerProducer < 0 {
		return fmt.Errorf("loadgen lines per producer must not be negative, got %d", c.LinesPerProducer)
	}
	if c.IntervalMS < 0 {
		return fmt.Errorf("loadgen interval must not be negative, got %d", c.IntervalMS)
	}
	return nil
}

// ObservabilityConfig contains observability settings
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
}

// LoggingConfig contains diagnostic logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics settings
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// HealthConfig contains health check settings
type HealthConfig struct {
	Port          int    `mapstructure:"port"`
	LivenessPath  string `mapstructure:"liveness_path"`
	ReadinessPath string `mapstructure:"readiness_path"`
}

// ShutdownConfig contains shutdown settings
type ShutdownConfig struct {
	GracePeriodSeconds int `mapstructure:"grace_period_seconds"`
}

// GracePeriod returns how long shutdown may take.
func (c *ShutdownConfig) GracePeriod() time.Duration {
	return time.Duration(c.GracePeriodSeconds) * time.Second
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	if c.Application.Name == "" {
		return fmt.Errorf("application name is required")
	}
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if err := c.Rotation.Validate(); err != nil {
		return err
	}
	return c.LoadGen.Validate()
}
