// Package logging wraps log/slog with a rotating file sink for the CLI's
// debug output, mirroring the teacher's daemonLogger (slog handler injected
// for testability) but writing to a lumberjack-rotated file instead of a
// daemon's stdout.
package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the handle every subsystem receives; it is never a package-level
// singleton (spec §9 "Singletons and reset hooks") — the root command
// constructs one and threads it down.
type Logger struct {
	logger *slog.Logger
}

// New builds a Logger writing to the rotated file at dir/debug.log when dir
// is non-empty. Without verbose only warning-level and higher records are
// written; with verbose the level drops to debug and records are also
// mirrored to stderr. Debug records never reach the file without verbose.
func New(dir string, verbose bool) *Logger {
	var writers []io.Writer
	if dir != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(dir, "debug.log"),
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		})
	}
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
		writers = append(writers, os.Stderr)
	}
	var w io.Writer = io.Discard
	if len(writers) == 1 {
		w = writers[0]
	} else if len(writers) > 1 {
		w = io.MultiWriter(writers...)
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return &Logger{logger: slog.New(handler)}
}

// Discard returns a Logger that drops everything; used by tests and by
// commands invoked with no writable home directory.
func Discard() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }

// With returns a Logger with the given key/value pairs attached to every
// subsequent record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{logger: l.logger.With(args...)}
}
