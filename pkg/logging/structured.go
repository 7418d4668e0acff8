package logging

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps a zap logger with the indicator's domain helpers.
type Logger struct {
	zap *zap.Logger
}

// Config holds logging configuration
type Config struct {
	Level     string `mapstructure:"level"`
	Format    string `mapstructure:"format"` // "json" or "console"
	Output    string `mapstructure:"output"` // "stdout" or "stderr"
	AddCaller bool   `mapstructure:"add_caller"`
	AddStack  bool   `mapstructure:"add_stack"`
}

// DefaultConfig returns JSON logging at info level on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "json", Output: "stderr"}
}

// NewLogger creates a new structured logger
func NewLogger(config Config) (*Logger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseZapLevel(config.Level)
	zapConfig.Encoding = config.Format
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = !config.AddStack

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{zap: zapLogger}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{zap: zap.NewNop()}
}

// FromZap wraps an existing zap logger.
func FromZap(z *zap.Logger) *Logger {
	return &Logger{zap: z}
}

// parseZapLevel parses zap level from string
func parseZapLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}

// With adds fields to logger context
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zap: l.zap.With(fields...)}
}

func (l *Logger) Debug(msg string, fields ...zap.Field) { l.zap.Debug(msg, fields...) }
func (l *Logger) Info(msg string, fields ...zap.Field)  { l.zap.Info(msg, fields...) }
func (l *Logger) Warn(msg string, fields ...zap.Field)  { l.zap.Warn(msg, fields...) }
func (l *Logger) Error(msg string, fields ...zap.Field) { l.zap.Error(msg, fields...) }

// LogIndexBuilt logs a completed static size index build
func (l *Logger) LogIndexBuilt(branches, methods int, duration time.Duration) {
	l.zap.Info("static size index built",
		zap.Int("branches", branches),
		zap.Int("methods", methods),
		zap.Float64("duration_ms", float64(duration.Nanoseconds())/1e6),
	)
}

// LogValuation logs one computed indicator value
func (l *Logger) LogValuation(indicator, executionID string, value float64, excluded int) {
	l.zap.Debug("indicator valuated",
		zap.String("indicator", indicator),
		zap.String("execution_id", executionID),
		zap.Float64("value", value),
		zap.Int("excluded", excluded),
	)
}

// LogCacheOperation logs a cache lookup
func (l *Logger) LogCacheOperation(indicator, level string, hit bool) {
	fields := []zap.Field{
		zap.String("indicator", indicator),
		zap.String("level", level),
	}
	if hit {
		l.zap.Debug("Cache hit", fields...)
	} else {
		l.zap.Debug("Cache miss", fields...)
	}
}

// Sync syncs the logger
func (l *Logger) Sync() error {
	return l.zap.Sync()
}

// GetZap returns the zap logger
func (l *Logger) GetZap() *zap.Logger {
	return l.zap
}
