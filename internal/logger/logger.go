package logger

import (
	"os"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var log atomic.Pointer[zap.Logger]

// Init initializes zap logger depending on the environment.
func Init(env string) {
	log.Store(build(env))
}

func build(env string) *zap.Logger {
	var cfg zap.Config

	switch strings.ToLower(env) {
	case "production", "prod":
		cfg = zap.NewProductionConfig()
		cfg.Encoding = "json"
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.MessageKey = "message"
		cfg.EncoderConfig.LevelKey = "level"
		cfg.EncoderConfig.CallerKey = "caller"
		cfg.EncoderConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.OutputPaths = []string{"stdout"}
	case "test":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	l, err := cfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		panic(err)
	}
	return l
}

// L returns the global logger, building one from APP_ENV on first use.
// Concurrent first callers all get the same instance.
func L() *zap.Logger {
	if l := log.Load(); l != nil {
		return l
	}
	log.CompareAndSwap(nil, build(os.Getenv("APP_ENV")))
	return log.Load()
}

// Replace swaps the global logger and returns a func restoring the previous one.
func Replace(l *zap.Logger) func() {
	prev := log.Swap(l)
	return func() { log.Store(prev) }
}

// Sync flushes logs.
func Sync() {
	if l := log.Load(); l != nil {
		_ = l.Sync()
	}
}
