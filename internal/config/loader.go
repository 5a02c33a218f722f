package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/jittakal/asynclog/internal/config/dto"
	apperrors "github.com/jittakal/asynclog/internal/errors"
	"github.com/jittakal/asynclog/pkg/logger"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. ASYNCLOG_ENGINE_BASENAME.
const EnvPrefix = "ASYNCLOG"

// Loader handles configuration loading and validation
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Load loads configuration from file and environment variables
func (l *Loader) Load(path string) (*dto.ApplicationConfig, error) {
	l.setDefaults()

	if path != "" {
		l.v.SetConfigFile(path)
		if err := l.v.ReadInConfig(); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	// Only expand values containing ${...}
	for _, key := range l.v.AllKeys() {
		value := l.v.GetString(key)
		if strings.Contains(value, "${") {
			l.v.Set(key, os.ExpandEnv(value))
		}
	}

	var config dto.ApplicationConfig
	if err := l.v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&config); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidConfig, err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func (l *Loader) setDefaults() {
	// Application defaults
	l.v.SetDefault("application.name", "asynclogd")
	l.v.SetDefault("application.version", "1.0.0")
	l.v.SetDefault("application.environment", "development")

	// Engine defaults
	l.v.SetDefault("engine.basename", "logs/asynclog")
	l.v.SetDefault("engine.roll_size_bytes", 64*1024*1024)
	l.v.SetDefault("engine.flush_interval_seconds", 3)
	l.v.SetDefault("engine.buffer_size_bytes", 4000*1000)
	l.v.SetDefault("engine.level", "info")

	// Rotation defaults, size only
	l.v.SetDefault("rotation.max_writes", 0)
	l.v.SetDefault("rotation.max_duration_seconds", 0)

	// Load generator defaults
	l.v.SetDefault("loadgen.producers", 4)
	l.v.SetDefault("loadgen.lines_per_producer", 10000)
	l.v.SetDefault("loadgen.interval_ms", 0)

	// Observability defaults
	l.v.SetDefault("observability.logging.level", "info")
	l.v.SetDefault("observability.logging.format", "text")
	l.v.SetDefault("observability.logging.output", "stderr")
	l.v.SetDefault("observability.metrics.enabled", true)
	l.v.SetDefault("observability.metrics.port", 9090)
	l.v.SetDefault("observability.metrics.path", "/metrics")
	l.v.SetDefault("observability.health.port", 8080)
	l.v.SetDefault("observability.health.liveness_path", "/health/live")
	l.v.SetDefault("observability.health.readiness_path", "/health/ready")

	// Shutdown defaults
	l.v.SetDefault("shutdown.grace_period_seconds", 30)
}

// Validate validates the configuration
func (l *Loader) Validate(config *dto.ApplicationConfig) error {
	if err := config.Engine.Validate(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(config.Engine.Level); err != nil {
		return fmt.Errorf("engine.level: %w", err)
	}
	if err := config.Rotation.Validate(); err != nil {
		return err
	}
	if err := config.LoadGen.Validate(); err != nil {
		return err
	}

	switch config.Observability.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unsupported logging format: %s", config.Observability.Logging.Format)
	}

	// Port validation
	if config.Observability.Metrics.Enabled {
		if config.Observability.Metrics.Port < 1 || config.Observability.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", config.Observability.Metrics.Port)
		}
	}
	if config.Observability.Health.Port < 1 || config.Observability.Health.Port > 65535 {
		return fmt.Errorf("invalid health port: %d", config.Observability.Health.Port)
	}

	return nil
}
