package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Fields represents structured logging fields
type Fields map[string]any

// Logger is the logging interface used throughout the application
type Logger interface {
	Debug(msg string, fields ...Fields)
	Info(msg string, fields ...Fields)
	Warn(msg string, fields ...Fields)
	Error(err error, msg string, fields ...Fields)
	WithFields(fields Fields) Logger
}

// zapLogger adapts a zap.Logger to the Logger interface
type zapLogger struct {
	logger *zap.Logger
}

// NewDefaultLogger creates a production JSON logger writing to stderr
func NewDefaultLogger() Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a logger at the given level (debug, info, warn, error)
func NewLoggerWithLevel(level string) Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(parseLevel(level))
	cfg.DisableStacktrace = true

	logger, err := cfg.Build()
	if err != nil {
		// zap only fails on invalid output paths; the defaults never do
		logger = zap.NewNop()
	}

	return &zapLogger{logger: logger}
}

// NewNopLogger returns a logger that discards everything, for tests
func NewNopLogger() Logger {
	return &zapLogger{logger: zap.NewNop()}
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *zapLogger) Debug(msg string, fields ...Fields) {
	l.logger.Debug(msg, flatten(fields)...)
}

func (l *zapLogger) Info(msg string, fields ...Fields) {
	l.logger.Info(msg, flatten(fields)...)
}

func (l *zapLogger) Warn(msg string, fields ...Fields) {
	l.logger.Warn(msg, flatten(fields)...)
}

func (l *zapLogger) Error(err error, msg string, fields ...Fields) {
	zapFields := flatten(fields)
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}
	l.logger.Error(msg, zapFields...)
}

func (l *zapLogger) WithFields(fields Fields) Logger {
	return &zapLogger{logger: l.logger.With(flatten([]Fields{fields})...)}
}

// flatten converts Fields maps into zap fields
func flatten(fields []Fields) []zap.Field {
	var zapFields []zap.Field
	for _, fm := range fields {
		for k, v := range fm {
			zapFields = append(zapFields, zap.Any(k, v))
		}
	}
	return zapFields
}
