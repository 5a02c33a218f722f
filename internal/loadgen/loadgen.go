// Package loadgen drives the log engine with synthetic request logs from
// concurrent producers.
package loadgen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jaswdr/faker"
	"github.com/jittakal/asynclog/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// MetricsCollector interface for load generator metrics.
type MetricsCollector interface {
	IncLinesGenerated()
}

// Config contains producer settings.
type Config struct {
	Producers        int
	LinesPerProducer int
	Interval         time.Duration
}

// Generator runs producers that log through a shared Logger.
type Generator struct {
	log     *logger.Logger
	config  Config
	logger  *slog.Logger
	metrics MetricsCollector
}

// New creates a generator. metrics may be nil.
func New(log *logger.Logger, config Config, diag *slog.Logger, metrics MetricsCollector) *Generator {
	return &Generator{
		log:     log,
		config:  config,
		logger:  diag,
		metrics: metrics,
	}
}

// Run starts all producers and waits for them. It returns the context error
// if ctx is cancelled before every producer finished.
func (g *Generator) Run(ctx context.Context) error {
	start := time.Now()
	g.logger.Info("starting load generator",
		"producers", g.config.Producers,
		"lines_per_producer", g.config.LinesPerProducer,
		"interval", g.config.Interval)

	eg, ctx := errgroup.WithContext(ctx)
	for i := 0; i < g.config.Producers; i++ {
		p := &producer{
			id:    uuid.New(),
			log:   g.log.Named(fmt.Sprintf("producer-%d", i)),
			faker: faker.New(),
		}
		eg.Go(func() error {
			return g.produce(ctx, p)
		})
	}

	if err := eg.Wait(); err != nil {
		g.logger.Warn("load generator interrupted", "error", err)
		return err
	}

	g.logger.Info("load generator finished",
		"lines", g.config.Producers*g.config.LinesPerProducer,
		"duration", time.Since(start))
	return nil
}

type producer struct {
	id    uuid.UUID
	log   *logger.Logger
	faker faker.Faker
}

func (g *Generator) produce(ctx context.Context, p *producer) error {
	var timer *time.Timer
	if g.config.Interval > 0 {
		timer = time.NewTimer(g.config.Interval)
		defer timer.Stop()
	}

	for seq := 0; seq < g.config.LinesPerProducer; seq++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		p.emit(seq)
		if g.metrics != nil {
			g.metrics.IncLinesGenerated()
		}

		if timer != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-timer.C:
				timer.Reset(g.config.Interval)
			}
		}
	}
	return nil
}

// emit writes one request line at a weighted random level.
func (p *producer) emit(seq int) {
	f := p.faker
	level := randomLevel(f)
	p.log.Logf(0, level, "producer=%s seq=%d request_id=%s user=%q email=%s city=%q status=%d latency_ms=%d msg=%q",
		p.id.String()[:8],
		seq,
		f.UUID().V4(),
		f.Person().Name(),
		f.Internet().Email(),
		f.Address().City(),
		statusFor(level),
		f.IntBetween(1, 500),
		f.Lorem().Sentence(6),
	)
}

func randomLevel(f faker.Faker) logger.Level {
	levels := []logger.Level{logger.LevelInfo, logger.LevelDebug, logger.LevelWarn, logger.LevelError}
	weights := []int{80, 10, 7, 3}

	n := f.IntBetween(1, 100)
	cumulative := 0
	for i, weight := range weights {
		cumulative += weight
		if n <= cumulative {
			return levels[i]
		}
	}
	return levels[0]
}

func statusFor(level logger.Level) int {
	switch level {
	case logger.LevelError:
		return 500
	case logger.LevelWarn:
		return 429
	default:
		return 200
	}
}
