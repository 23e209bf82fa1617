// Package logx is a thin zerolog wrapper for the structured progress
// logging the optimizer emits from anneal.SA, layoutdesigner, and
// routingdesigner — the Go analogue of the original's bare print statements.
package logx

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Level names accepted by New, matching config.Config's log_level string.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// Logger wraps a configured zerolog.Logger.
type Logger struct {
	z zerolog.Logger
}

// Options configures a Logger's level and output stream.
type Options struct {
	// Level is one of LevelDebug/LevelInfo/LevelWarn/LevelError. Any other
	// value (including "") resolves to LevelInfo.
	Level string
	// Output defaults to os.Stdout when nil.
	Output io.Writer
}

// New builds a Logger from Options. A silent run should route output to
// io.Discard rather than use New at all; logx has no implicit silent mode.
func New(o Options) *Logger {
	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	z := zerolog.New(out).With().Timestamp().Logger()

	switch o.Level {
	case LevelDebug:
		z = z.Level(zerolog.DebugLevel)
	case LevelWarn:
		z = z.Level(zerolog.WarnLevel)
	case LevelError:
		z = z.Level(zerolog.ErrorLevel)
	default:
		z = z.Level(zerolog.InfoLevel)
	}

	return &Logger{z: z}
}

// Discard returns a Logger that drops everything, for silent SA runs.
func Discard() *Logger {
	return &Logger{z: zerolog.New(io.Discard).Level(zerolog.Disabled)}
}

// Debug logs a debug-level event with key/value fields (odd-length field
// lists are flagged, not panicked on).
func (l *Logger) Debug(msg string, fields ...interface{}) { l.log(l.z.Debug(), msg, fields) }

// Info logs an info-level event.
func (l *Logger) Info(msg string, fields ...interface{}) { l.log(l.z.Info(), msg, fields) }

// Warn logs a warn-level event.
func (l *Logger) Warn(msg string, fields ...interface{}) { l.log(l.z.Warn(), msg, fields) }

// Error logs an error-level event.
func (l *Logger) Error(msg string, fields ...interface{}) { l.log(l.z.Error(), msg, fields) }

func (l *Logger) log(event *zerolog.Event, msg string, fields []interface{}) {
	if len(fields)%2 != 0 {
		event.Str("logx_error", "odd number of fields")
		event.Msg(msg)
		return
	}
	for i := 0; i < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			continue
		}
		event.Interface(key, fields[i+1])
	}
	event.Msg(msg)
}
