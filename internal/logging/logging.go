// Package logging builds the zap loggers used by the CLI and the HTTP server.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a logger for the given level ("debug", "info", "warn", "error")
// and format ("json" for production output, anything else for console output).
func New(levelStr, format string) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	switch strings.ToLower(levelStr) {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	return cfg.Build()
}

// Nop returns a logger that discards everything.
func Nop() *zap.Logger {
	return zap.NewNop()
}
