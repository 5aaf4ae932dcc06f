// Package logger wraps logrus with context-aware, key/value logging helpers.
package logger

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
)

// Logger wraps a logrus logger with structured key/value helpers.
type Logger struct {
	*logrus.Logger
}

var (
	standardLogger *Logger
	once           sync.Once
)

// StdLogger returns the singleton logger instance with JSON output.
func StdLogger() *Logger {
	once.Do(func() {
		standardLogger = New("info", "json", os.Stderr)
	})
	return standardLogger
}

// New creates a logger with the given level ("debug", "info", "warn", "error")
// and format ("json" or "text"). Unknown levels fall back to info.
func New(level, format string, out io.Writer) *Logger {
	l := logrus.New()
	l.SetOutput(out)

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	l.SetLevel(lv)

	switch format {
	case "text":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		l.SetFormatter(&logrus.JSONFormatter{})
	}

	return &Logger{Logger: l}
}

// fields converts alternating key/value pairs to logrus fields.
// A trailing key without a value is ignored.
func fields(kv ...any) logrus.Fields {
	f := logrus.Fields{}
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

// Debug logs a message at debug level with key/value pairs.
func (l *Logger) Debug(ctx context.Context, msg string, kv ...any) {
	l.Logger.WithContext(ctx).WithFields(fields(kv...)).Debug(msg)
}

// Info logs a message at info level with key/value pairs.
func (l *Logger) Info(ctx context.Context, msg string, kv ...any) {
	l.Logger.WithContext(ctx).WithFields(fields(kv...)).Info(msg)
}

// Warn logs a message at warn level with key/value pairs.
func (l *Logger) Warn(ctx context.Context, msg string, kv ...any) {
	l.Logger.WithContext(ctx).WithFields(fields(kv...)).Warn(msg)
}

// Error logs a message at error level with key/value pairs.
func (l *Logger) Error(ctx context.Context, msg string, kv ...any) {
	l.Logger.WithContext(ctx).WithFields(fields(kv...)).Error(msg)
}
