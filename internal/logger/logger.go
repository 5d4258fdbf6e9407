// Package logger wraps zap so the binaries share one way of building a logger.
package logger

import (
	"strings"

	"go.uber.org/zap"
)

// Logger holds the configured zap logger. Log is a no-op logger until Init succeeds.
type Logger struct {
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production (JSON) logger at the given level name
// ("debug", "info", "warn", "error"; case-insensitive).
func (l *Logger) Init(level string) error {
	return l.init(level, zap.NewProductionConfig())
}

// InitConsole builds a human-readable logger writing to stderr. The client uses
// it so log lines don't mix into the shell's stdout.
func (l *Logger) InitConsole(level string) error {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	return l.init(level, cfg)
}

func (l *Logger) init(level string, cfg zap.Config) error {
	lvl, err := zap.ParseAtomicLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	cfg.Level = lvl
	zl, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = zl
	return nil
}
