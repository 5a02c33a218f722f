// Package logger is a level-gated front end for the asynchronous log engine.
//
// It formats call-site metadata into a single line and hands the line to an
// Appender; everything after that is the engine's business.
package logger

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jittakal/asynclog/pkg/buffer"
)

// TimeLayout is the timestamp format at the start of every line.
const TimeLayout = "2006/01/02-15:04:05.000000"

// DefaultName is used in the name column when a Logger is not named.
const DefaultName = "main"

// Logger filters by level and formats lines as
//
//	2026/10/19-12:00:00.000000 [INFO] [main] |server.go:42| message
//
// Loggers derived with Named share the level of their parent.
type Logger struct {
	out   buffer.Appender
	level *atomic.Uint32
	name  string
	now   func() time.Time
}

// New creates a logger writing to out at the given level.
func New(out buffer.Appender, level Level) *Logger {
	l := &Logger{
		out:   out,
		level: new(atomic.Uint32),
		name:  DefaultName,
		now:   time.Now,
	}
	l.level.Store(uint32(level))
	return l
}

// Named returns a logger with a different name column.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	return &c
}

// SetLevel changes the level for this logger and all loggers sharing it.
func (l *Logger) SetLevel(level Level) {
	l.level.Store(uint32(level))
}

// Level returns the current level.
func (l *Logger) Level() Level {
	return Level(l.level.Load())
}

// Enabled reports whether messages at level are written.
func (l *Logger) Enabled(level Level) bool {
	return uint32(level) <= l.level.Load()
}

// Log appends an already formatted line if level is enabled.
func (l *Logger) Log(level Level, line string) {
	if l.Enabled(level) {
		l.out.Append(line)
	}
}

// Logf formats a line with call-site metadata. calldepth counts frames
// above Logf's caller, so 0 reports the direct caller.
func (l *Logger) Logf(calldepth int, level Level, format string, args ...any) {
	if !l.Enabled(level) {
		return
	}
	l.out.Append(l.format(calldepth+2, level, fmt.Sprintf(format, args...)))
}

func (l *Logger) format(skip int, level Level, msg string) string {
	file, line := "???", 0
	if _, f, ln, ok := runtime.Caller(skip); ok {
		file, line = filepath.Base(f), ln
	}

	b := make([]byte, 0, len(TimeLayout)+len(msg)+64)
	b = l.now().AppendFormat(b, TimeLayout)
	b = append(b, " ["...)
	b = append(b, level.String()...)
	b = append(b, "] ["...)
	b = append(b, l.name...)
	b = append(b, "] |"...)
	b = append(b, file...)
	b = append(b, ':')
	b = strconv.AppendInt(b, int64(line), 10)
	b = append(b, "| "...)
	b = append(b, msg...)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		b = append(b, '\n')
	}
	return string(b)
}

// Errorf logs at LevelError.
func (l *Logger) Errorf(format string, args ...any) {
	l.Logf(1, LevelError, format, args...)
}

// Warnf logs at LevelWarn.
func (l *Logger) Warnf(format string, args ...any) {
	l.Logf(1, LevelWarn, format, args...)
}

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, args ...any) {
	l.Logf(1, LevelInfo, format, args...)
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, args ...any) {
	l.Logf(1, LevelDebug, format, args...)
}

// Tracef logs at LevelTrace.
func (l *Logger) Tracef(format string, args ...any) {
	l.Logf(1, LevelTrace, format, args...)
}
