package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jittakal/asynclog/internal/config"
	"github.com/jittakal/asynclog/internal/engine"
	"github.com/jittakal/asynclog/internal/loadgen"
	"github.com/jittakal/asynclog/internal/observability"
	"github.com/jittakal/asynclog/internal/server"
	"github.com/jittakal/asynclog/internal/storage"
	"github.com/jittakal/asynclog/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("application error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	// Priority: CLI flag > CONFIG_PATH env var > default path
	var cfgPath string
	if *configPath != "" {
		cfgPath = *configPath
	} else if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		cfgPath = envPath
	} else {
		cfgPath = "config/asynclog.yaml"
	}

	cfg, err := config.NewLoader().Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	diag := observability.NewLogger(observability.LoggingConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: cfg.Observability.Logging.Output,
	})
	diag.Info("starting asynclogd",
		"version", cfg.Application.Version,
		"environment", cfg.Application.Environment,
		"basename", cfg.Engine.Basename,
	)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	policy := storage.NewPolicy(storage.PolicyConfig{
		RollSizeBytes: cfg.Engine.RollSizeBytes,
		MaxWrites:     cfg.Rotation.MaxWrites,
		MaxDuration:   cfg.Rotation.MaxDuration(),
	})

	eng, err := engine.New(
		cfg.Engine.Basename,
		cfg.Engine.RollSizeBytes,
		cfg.Engine.FlushInterval(),
		engine.WithBufferSize(cfg.Engine.BufferSizeBytes),
		engine.WithLogger(diag),
		engine.WithMetrics(metrics),
		engine.WithPolicy(policy),
	)
	if err != nil {
		return fmt.Errorf("failed to create log engine: %w", err)
	}
	if err := eng.Start(); err != nil {
		return fmt.Errorf("failed to start log engine: %w", err)
	}

	// Level was validated by the loader.
	level, _ := logger.ParseLevel(cfg.Engine.Level)
	appLog := logger.New(eng, level)
	zl := logger.NewZapLogger(eng, level).Named(cfg.Application.Name)
	zl.Info("log engine started",
		zap.String("version", cfg.Application.Version),
		zap.Int64("roll_size_bytes", cfg.Engine.RollSizeBytes),
		zap.Duration("flush_interval", eng.FlushInterval()),
	)

	httpServer := server.NewServer(server.Config{
		HealthPort:     cfg.Observability.Health.Port,
		LivenessPath:   cfg.Observability.Health.LivenessPath,
		ReadinessPath:  cfg.Observability.Health.ReadinessPath,
		MetricsEnabled: cfg.Observability.Metrics.Enabled,
		MetricsPort:    cfg.Observability.Metrics.Port,
		MetricsPath:    cfg.Observability.Metrics.Path,
	}, eng, registry, diag)
	if err := httpServer.Start(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A nil channel never fires, so without producers we wait for a signal.
	var loadDone chan error
	if cfg.LoadGen.Producers > 0 {
		loadDone = make(chan error, 1)
		gen := loadgen.New(appLog, loadgen.Config{
			Producers:        cfg.LoadGen.Producers,
			LinesPerProducer: cfg.LoadGen.LinesPerProducer,
			Interval:         cfg.LoadGen.Interval(),
		}, diag, metrics)
		go func() {
			loadDone <- gen.Run(ctx)
		}()
	}

	diag.Info("application started successfully")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		diag.Info("received termination signal", "signal", sig.String())
		cancel()
		if loadDone != nil {
			<-loadDone
		}
	case err := <-loadDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			diag.Error("load generator failed", "error", err)
		}
	}

	diag.Info("initiating graceful shutdown")
	zl.Info("log engine stopping", zap.Uint64("writer_iterations", eng.Iterations()))
	if err := zl.Sync(); err != nil {
		diag.Warn("failed to sync zap logger", "error", err)
	}

	// Stop drains every appended line before returning.
	stopErr := eng.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Shutdown.GracePeriod())
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		diag.Error("failed to shut down HTTP server", "error", err)
	}

	if stopErr != nil {
		return fmt.Errorf("failed to stop log engine: %w", stopErr)
	}

	diag.Info("application stopped successfully")
	return nil
}
