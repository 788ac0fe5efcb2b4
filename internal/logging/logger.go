package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	Level       string
	Format      string // json or text
	ServiceName string
	Environment string
	Version     string
	Output      io.Writer
	AddSource   bool
}

// Logger wraps slog.Logger with the service attributes already attached
type Logger struct {
	*slog.Logger
}

func New(cfg Config) *Logger {
	level := slog.LevelInfo
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t, ok := a.Value.Any().(time.Time); ok {
					a.Value = slog.StringValue(t.UTC().Format(time.RFC3339Nano))
				}
			}
			return a
		},
	}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}

	return &Logger{
		Logger: slog.New(handler).With(
			"service", cfg.ServiceName,
			"environment", cfg.Environment,
			"version", cfg.Version,
		),
	}
}

// Nop discards everything; used by tests and optional collaborators
func Nop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With("request_id", requestID)}
}

func (l *Logger) WithUser(userID int, username string) *Logger {
	return &Logger{Logger: l.Logger.With("user_id", userID, "username", username)}
}

func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{Logger: l.Logger.With("component", component)}
}

// WithError logs the error under a stable key
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With("error", err.Error())}
}

type ctxKey struct{}

// WithContext stores the logger in ctx
func WithContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request logger, or fallback when none was stored
func FromContext(ctx context.Context, fallback *Logger) *Logger {
	if l, ok := ctx.Value(ctxKey{}).(*Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return Nop()
}
