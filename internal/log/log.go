package log

import (
	"log/slog"
	"os"
	"strings"
)

// Option - logger construction option.
type Option func(*options)

type options struct {
	level     slog.Level
	addSource bool
	json      bool
}

// WithLevel sets the minimum log level from its string name ("debug", "info", "warn", "error").
// Unknown names fall back to "info".
func WithLevel(level string) Option {
	return func(o *options) {
		switch strings.ToLower(level) {
		case "debug", "all", "verbose":
			o.level = slog.LevelDebug
		case "info":
			o.level = slog.LevelInfo
		case "warn", "warning":
			o.level = slog.LevelWarn
		case "error", "fatal":
			o.level = slog.LevelError
		default:
			o.level = slog.LevelInfo
		}
	}
}

// WithSource adds the source file and line to every record.
func WithSource() Option {
	return func(o *options) {
		o.addSource = true
	}
}

// WithJSON switches the output format to JSON (text by default).
func WithJSON() Option {
	return func(o *options) {
		o.json = true
	}
}

// New - create a new slog.Logger writing to stderr.
func New(opts ...Option) *slog.Logger {
	o := &options{
		level: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(o)
	}

	handlerOptions := &slog.HandlerOptions{
		Level:     o.level,
		AddSource: o.addSource,
	}

	var handler slog.Handler
	if o.json {
		handler = slog.NewJSONHandler(os.Stderr, handlerOptions)
	} else {
		handler = slog.NewTextHandler(os.Stderr, handlerOptions)
	}

	return slog.New(handler)
}
