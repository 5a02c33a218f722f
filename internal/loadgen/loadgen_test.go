package loadgen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/jittakal/asynclog/internal/engine"
	"github.com/jittakal/asynclog/pkg/logger"
)

// recorder implements buffer.Appender for testing
type recorder struct {
	mu    sync.Mutex
	lines []string
}

func (r *recorder) Append(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, line)
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.lines...)
}

// mockMetricsCollector implements MetricsCollector for testing
type mockMetricsCollector struct {
	lines atomic.Int64
}

func (m *mockMetricsCollector) IncLinesGenerated() {
	m.lines.Add(1)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestGenerator_Run(t *testing.T) {
	rec := &recorder{}
	metrics := &mockMetricsCollector{}
	g := New(logger.New(rec, logger.LevelTrace), Config{Producers: 3, LinesPerProducer: 50}, discardLogger(), metrics)

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	lines := rec.all()
	if len(lines) != 150 {
		t.Fatalf("len(lines) = %d, want 150", len(lines))
	}
	if got := metrics.lines.Load(); got != 150 {
		t.Errorf("lines generated = %d, want 150", got)
	}

	perProducer := map[string]int{}
	for _, line := range lines {
		if !strings.HasSuffix(line, "\n") {
			t.Errorf("line not newline terminated: %q", line)
		}
		if !strings.Contains(line, "request_id=") || !strings.Contains(line, "|loadgen.go:") {
			t.Errorf("unexpected line format: %q", line)
		}
		for i := 0; i < 3; i++ {
			name := "[producer-" + string(rune('0'+i)) + "]"
			if strings.Contains(line, name) {
				perProducer[name]++
			}
		}
	}
	for name, n := range perProducer {
		if n != 50 {
			t.Errorf("%s wrote %d lines, want 50", name, n)
		}
	}
	if len(perProducer) != 3 {
		t.Errorf("saw %d producers, want 3", len(perProducer))
	}
}

func TestGenerator_RunRespectsLevel(t *testing.T) {
	rec := &recorder{}
	metrics := &mockMetricsCollector{}
	g := New(logger.New(rec, logger.LevelError), Config{Producers: 2, LinesPerProducer: 200}, discardLogger(), metrics)

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, line := range rec.all() {
		if !strings.Contains(line, "[ERROR]") {
			t.Errorf("line above ERROR leaked: %q", line)
		}
	}
	if got := metrics.lines.Load(); got != 400 {
		t.Errorf("lines generated = %d, want 400", got)
	}
}

func TestGenerator_RunNoProducers(t *testing.T) {
	rec := &recorder{}
	g := New(logger.New(rec, logger.LevelInfo), Config{}, discardLogger(), nil)

	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.all()) != 0 {
		t.Errorf("expected no lines")
	}
}

func TestGenerator_RunCancelled(t *testing.T) {
	rec := &recorder{}
	g := New(logger.New(rec, logger.LevelTrace), Config{
		Producers:        2,
		LinesPerProducer: 1000000,
		Interval:         5 * time.Millisecond,
	}, discardLogger(), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := g.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want DeadlineExceeded", err)
	}
	if n := len(rec.all()); n == 0 || n >= 2000000 {
		t.Errorf("len(lines) = %d, want a partial run", n)
	}
}

func TestRandomLevel(t *testing.T) {
	f := faker.New()
	seen := map[logger.Level]int{}
	for i := 0; i < 2000; i++ {
		seen[randomLevel(f)]++
	}

	for level := range seen {
		switch level {
		case logger.LevelInfo, logger.LevelDebug, logger.LevelWarn, logger.LevelError:
		default:
			t.Errorf("unexpected level %v", level)
		}
	}
	if seen[logger.LevelInfo] <= seen[logger.LevelError] {
		t.Errorf("info (%d) should dominate error (%d)", seen[logger.LevelInfo], seen[logger.LevelError])
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		level logger.Level
		want  int
	}{
		{logger.LevelError, 500},
		{logger.LevelWarn, 429},
		{logger.LevelInfo, 200},
		{logger.LevelDebug, 200},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			if got := statusFor(tt.level); got != tt.want {
				t.Errorf("statusFor(%v) = %d, want %d", tt.level, got, tt.want)
			}
		})
	}
}

func TestGenerator_RunThroughEngine(t *testing.T) {
	dir := t.TempDir()
	e, err := engine.New(filepath.Join(dir, "load"), 1<<30, time.Hour,
		engine.WithBufferSize(4096),
		engine.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("engine.New() error = %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	g := New(logger.New(e, logger.LevelTrace), Config{Producers: 4, LinesPerProducer: 500}, discardLogger(), nil)
	if err := g.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if err := e.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	paths, err := filepath.Glob(filepath.Join(dir, "load-*.log"))
	if err != nil || len(paths) != 1 {
		t.Fatalf("segments = %v (err %v), want 1", paths, err)
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(data), "request_id="); got != 2000 {
		t.Errorf("lines on disk = %d, want 2000", got)
	}
}
