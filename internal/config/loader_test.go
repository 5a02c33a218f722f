package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jittakal/asynclog/internal/config/dto"
	apperrors "github.com/jittakal/asynclog/internal/errors"
)

func validConfig() *dto.ApplicationConfig {
	return &dto.ApplicationConfig{
		Application: dto.ApplicationInfo{Name: "asynclogd"},
		Engine: dto.EngineConfig{
			Basename:             "/tmp/test/app",
			RollSizeBytes:        1024,
			FlushIntervalSeconds: 3,
			BufferSizeBytes:      4096,
			Level:                "info",
		},
		Observability: dto.ObservabilityConfig{
			Metrics: dto.MetricsConfig{Enabled: true, Port: 9090},
			Health:  dto.HealthConfig{Port: 8080},
		},
	}
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader()
	if loader == nil {
		t.Fatal("expected non-nil loader")
	}
	if loader.v == nil {
		t.Fatal("expected non-nil viper instance")
	}
}

func TestLoader_LoadWithValidConfig(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "asynclog.yaml")

	configContent := `
application:
  name: test-app
  version: 1.0.0

engine:
  basename: /var/log/test/app
  roll_size_bytes: 1048576
  flush_interval_seconds: 1
  level: debug

rotation:
  max_writes: 500

loadgen:
  producers: 2
  lines_per_producer: 100
`

	if err := os.WriteFile(configFile, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	loader := NewLoader()
	config, err := loader.Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Application.Name != "test-app" {
		t.Errorf("Application.Name = %s, want test-app", config.Application.Name)
	}
	if config.Engine.Basename != "/var/log/test/app" {
		t.Errorf("Engine.Basename = %s, want /var/log/test/app", config.Engine.Basename)
	}
	if config.Engine.RollSizeBytes != 1048576 {
		t.Errorf("Engine.RollSizeBytes = %d, want 1048576", config.Engine.RollSizeBytes)
	}
	if config.Engine.FlushInterval() != time.Second {
		t.Errorf("Engine.FlushInterval() = %v, want 1s", config.Engine.FlushInterval())
	}
	if config.Engine.BufferSizeBytes != 4000*1000 {
		t.Errorf("Engine.BufferSizeBytes = %d, want default 4000000", config.Engine.BufferSizeBytes)
	}
	if config.Rotation.MaxWrites != 500 {
		t.Errorf("Rotation.MaxWrites = %d, want 500", config.Rotation.MaxWrites)
	}
	if config.LoadGen.Producers != 2 || config.LoadGen.LinesPerProducer != 100 {
		t.Errorf("LoadGen = %+v, want 2 producers x 100 lines", config.LoadGen)
	}
}

func TestLoader_LoadDefaults(t *testing.T) {
	config, err := NewLoader().Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if config.Engine.RollSizeBytes != 64*1024*1024 {
		t.Errorf("RollSizeBytes = %d, want 64MiB", config.Engine.RollSizeBytes)
	}
	if config.Engine.FlushInterval() != 3*time.Second {
		t.Errorf("FlushInterval() = %v, want 3s", config.Engine.FlushInterval())
	}
	if config.Shutdown.GracePeriod() != 30*time.Second {
		t.Errorf("GracePeriod() = %v, want 30s", config.Shutdown.GracePeriod())
	}
	if config.Observability.Health.LivenessPath != "/health/live" {
		t.Errorf("LivenessPath = %s, want /health/live", config.Observability.Health.LivenessPath)
	}
}

func TestLoader_LoadWithMissingFile(t *testing.T) {
	config, err := NewLoader().Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v, want defaults", err)
	}
	if config.Application.Name != "asynclogd" {
		t.Errorf("Application.Name = %s, want asynclogd", config.Application.Name)
	}
}

func TestLoader_LoadEnvOverride(t *testing.T) {
	t.Setenv("ASYNCLOG_ENGINE_BASENAME", "/srv/logs/from-env")
	t.Setenv("ASYNCLOG_ENGINE_FLUSH_INTERVAL_SECONDS", "7")

	config, err := NewLoader().Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Engine.Basename != "/srv/logs/from-env" {
		t.Errorf("Engine.Basename = %s, want /srv/logs/from-env", config.Engine.Basename)
	}
	if config.Engine.FlushIntervalSeconds != 7 {
		t.Errorf("FlushIntervalSeconds = %d, want 7", config.Engine.FlushIntervalSeconds)
	}
}

func TestLoader_LoadExpandsEnv(t *testing.T) {
	t.Setenv("LOG_ROOT", "/data")
	configFile := filepath.Join(t.TempDir(), "asynclog.yaml")
	if err := os.WriteFile(configFile, []byte("engine:\n  basename: ${LOG_ROOT}/app\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	config, err := NewLoader().Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if config.Engine.Basename != "/data/app" {
		t.Errorf("Engine.Basename = %s, want /data/app", config.Engine.Basename)
	}
}

func TestLoader_LoadInvalid(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "asynclog.yaml")
	if err := os.WriteFile(configFile, []byte("engine:\n  roll_size_bytes: 0\n"), 0644); err != nil {
		t.Fatalf("failed to create test config file: %v", err)
	}

	_, err := NewLoader().Load(configFile)
	if !errors.Is(err, apperrors.ErrInvalidConfig) {
		t.Errorf("Load() error = %v, want ErrInvalidConfig", err)
	}
}

func TestLoader_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *dto.ApplicationConfig)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *dto.ApplicationConfig) {},
			wantErr: false,
		},
		{
			name:    "missing basename",
			mutate:  func(c *dto.ApplicationConfig) { c.Engine.Basename = "" },
			wantErr: true,
		},
		{
			name:    "negative roll size",
			mutate:  func(c *dto.ApplicationConfig) { c.Engine.RollSizeBytes = -1 },
			wantErr: true,
		},
		{
			name:    "zero flush interval",
			mutate:  func(c *dto.ApplicationConfig) { c.Engine.FlushIntervalSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "unknown engine level",
			mutate:  func(c *dto.ApplicationConfig) { c.Engine.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "negative rotation writes",
			mutate:  func(c *dto.ApplicationConfig) { c.Rotation.MaxWrites = -5 },
			wantErr: true,
		},
		{
			name:    "negative producers",
			mutate:  func(c *dto.ApplicationConfig) { c.LoadGen.Producers = -1 },
			wantErr: true,
		},
		{
			name:    "unsupported logging format",
			mutate:  func(c *dto.ApplicationConfig) { c.Observability.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name:    "invalid metrics port",
			mutate:  func(c *dto.ApplicationConfig) { c.Observability.Metrics.Port = 70000 },
			wantErr: true,
		},
		{
			name: "metrics port ignored when disabled",
			mutate: func(c *dto.ApplicationConfig) {
				c.Observability.Metrics.Enabled = false
				c.Observability.Metrics.Port = 0
			},
			wantErr: false,
		},
		{
			name:    "invalid health port",
			mutate:  func(c *dto.ApplicationConfig) { c.Observability.Health.Port = 0 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validConfig()
			tt.mutate(config)

			err := NewLoader().Validate(config)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoader_setDefaults(t *testing.T) {
	loader := NewLoader()
	loader.setDefaults()

	if loader.v.GetString("application.name") != "asynclogd" {
		t.Error("default application.name not set correctly")
	}
	if loader.v.GetInt("engine.buffer_size_bytes") != 4000*1000 {
		t.Error("default engine.buffer_size_bytes not set correctly")
	}
	if loader.v.GetString("observability.metrics.path") != "/metrics" {
		t.Error("default observability.metrics.path not set correctly")
	}
}
