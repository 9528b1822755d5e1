package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log = zap.NewNop()
)

// Initialize builds the process-wide logger. Level is one of debug, info,
// warn, error; format is "json" (default) or "console".
func Initialize(level, format string) error {
	var logLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = zap.DebugLevel
	case "warn", "warning":
		logLevel = zap.WarnLevel
	case "error":
		logLevel = zap.ErrorLevel
	default:
		logLevel = zap.InfoLevel
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(logLevel)
	config.Encoding = "json"
	if strings.ToLower(format) == "console" {
		config.Encoding = "console"
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.LevelKey = "log_level"
	config.EncoderConfig.MessageKey = "message"
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.StacktraceKey = ""
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.OutputPaths = []string{"stdout"}

	built, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return err
	}

	mu.Lock()
	log = built
	mu.Unlock()
	return nil
}

// Get returns the current logger
func Get() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return log
}

// Replace swaps the process-wide logger and returns a func restoring the previous one
func Replace(l *zap.Logger) func() {
	mu.Lock()
	prev := log
	log = l
	mu.Unlock()
	return func() {
		mu.Lock()
		log = prev
		mu.Unlock()
	}
}

// Sync flushes buffered entries
func Sync() {
	_ = Get().Sync()
}

func Debug(msg string, fields ...zap.Field) {
	Get().Debug(msg, fields...)
}

func Info(msg string, fields ...zap.Field) {
	Get().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Get().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Get().Error(msg, fields...)
}
