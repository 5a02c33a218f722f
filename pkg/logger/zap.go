package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLevel maps a Level to the closest zap level. Trace has no zap
// equivalent and maps to debug.
func ZapLevel(level Level) zapcore.Level {
	switch level {
	case LevelError:
		return zapcore.ErrorLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelInfo:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// NewZapLogger builds a zap logger whose output goes through ws, typically
// an *engine.Engine, using the same timestamp layout as Logger.
func NewZapLogger(ws zapcore.WriteSyncer, level Level, opts ...zap.Option) *zap.Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.TimeEncoderOfLayout(TimeLayout)
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncodeCaller = zapcore.ShortCallerEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg), ws, ZapLevel(level))
	return zap.New(core, append([]zap.Option{zap.AddCaller()}, opts...)...)
}
