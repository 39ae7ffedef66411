// Package log provides the shared leveled logger for pullsmith.
// It is a thin wrapper around zap's sugared logger so callers can log
// with alternating key/value pairs without carrying a logger around.
package log

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv is the environment variable that controls the log level.
const LevelEnv = "PULLSMITH_LOG_LEVEL"

var (
	level zap.AtomicLevel
	sugar *zap.SugaredLogger
)

func init() {
	level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if env := os.Getenv(LevelEnv); env != "" {
		SetLevel(env)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		level,
	)
	sugar = zap.New(core).Sugar()
}

// SetLevel changes the global log level. Unrecognized values are ignored.
func SetLevel(name string) {
	switch strings.ToLower(name) {
	case "debug":
		level.SetLevel(zapcore.DebugLevel)
	case "info":
		level.SetLevel(zapcore.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zapcore.WarnLevel)
	case "error":
		level.SetLevel(zapcore.ErrorLevel)
	}
}

// Debug logs a debug message with alternating key/value pairs.
func Debug(msg string, kv ...any) {
	sugar.Debugw(msg, kv...)
}

// Info logs an info message with alternating key/value pairs.
func Info(msg string, kv ...any) {
	sugar.Infow(msg, kv...)
}

// Warn logs a warning message with alternating key/value pairs.
func Warn(msg string, kv ...any) {
	sugar.Warnw(msg, kv...)
}

// Error logs an error message with alternating key/value pairs.
func Error(msg string, kv ...any) {
	sugar.Errorw(msg, kv...)
}
