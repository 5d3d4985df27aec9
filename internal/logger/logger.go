// Package logger provides leveled, structured logging for the inventory
// tools. Output is quiet by default (warnings and errors); --debug enables
// info and --verbose enables everything.
package logger

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the logging surface used across the module. Keyvals are
// alternating key/value pairs.
type Logger interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// Options controls where and how much is logged
type Options struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
	NoTerminal bool
}

type zeroLogger struct {
	zl zerolog.Logger
}

var (
	mu     sync.RWMutex
	global = newZeroLogger(os.Stderr, zerolog.WarnLevel)
)

func newZeroLogger(w io.Writer, level zerolog.Level) *zeroLogger {
	zerolog.TimeFieldFormat = time.RFC3339

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	return &zeroLogger{
		zl: zerolog.New(out).Level(level).With().Timestamp().Logger(),
	}
}

// Configure replaces the global logger. When cfg.File is set, output is also
// written there as JSON with size-based rotation.
func Configure(cfg Options) {
	level := ParseLevel(cfg.Level)

	var writers []io.Writer
	if !cfg.NoTerminal {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   cfg.Compress,
		})
	}
	if len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	l := &zeroLogger{
		zl: zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger(),
	}

	mu.Lock()
	global = l
	mu.Unlock()
}

// SetOutput sends plain JSON output to w at the given level. Tests use it to
// capture log lines.
func SetOutput(w io.Writer, level string) {
	l := &zeroLogger{
		zl: zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger(),
	}

	mu.Lock()
	global = l
	mu.Unlock()
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug", "verbose":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "error":
		return zerolog.ErrorLevel
	case "silent", "disabled":
		return zerolog.Disabled
	default:
		return zerolog.WarnLevel
	}
}

// LevelFromFlags turns the --debug/--verbose flags into a level name
func LevelFromFlags(debug, verbose bool) string {
	switch {
	case verbose:
		return "debug"
	case debug:
		return "info"
	default:
		return "warn"
	}
}

// Get returns the global logger
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

func (l *zeroLogger) Debug(msg string, keyvals ...interface{}) {
	l.zl.Debug().Fields(keyvals).Msg(msg)
}

func (l *zeroLogger) Info(msg string, keyvals ...interface{}) {
	l.zl.Info().Fields(keyvals).Msg(msg)
}

func (l *zeroLogger) Warn(msg string, keyvals ...interface{}) {
	l.zl.Warn().Fields(keyvals).Msg(msg)
}

func (l *zeroLogger) Error(msg string, keyvals ...interface{}) {
	l.zl.Error().Fields(keyvals).Msg(msg)
}

func (l *zeroLogger) WithField(key string, value interface{}) Logger {
	return &zeroLogger{zl: l.zl.With().Interface(key, value).Logger()}
}

func (l *zeroLogger) WithFields(fields map[string]interface{}) Logger {
	return &zeroLogger{zl: l.zl.With().Fields(fields).Logger()}
}

// Package-level helpers

func Debug(msg string, keyvals ...interface{}) { Get().Debug(msg, keyvals...) }

func Info(msg string, keyvals ...interface{}) { Get().Info(msg, keyvals...) }

func Warn(msg string, keyvals ...interface{}) { Get().Warn(msg, keyvals...) }

func Error(msg string, keyvals ...interface{}) { Get().Error(msg, keyvals...) }

// WithField returns the global logger with one extra field
func WithField(key string, value interface{}) Logger {
	return Get().WithField(key, value)
}

// WithFields returns the global logger with extra fields
func WithFields(fields map[string]interface{}) Logger {
	return Get().WithFields(fields)
}
