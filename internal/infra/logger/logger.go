// Package logger provides structured logging using zerolog.
package logger

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Config represents logger configuration.
type Config struct {
	Output string // "stdout", "stderr", or file path
	Level  string // "debug", "info", "warn", "error"
}

type ctxKey struct{}

// Init initializes the global zerolog logger with the given configuration.
// Console output is colored; file output is JSON.
func Init(cfg Config) error {
	level := parseLevel(cfg.Level)
	output := strings.ToLower(cfg.Output)

	var writer io.Writer
	console := true
	switch output {
	case "stdout", "":
		writer = os.Stdout
	case "stderr":
		writer = os.Stderr
	default:
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		writer = f
		console = false
	}

	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.CallerMarshalFunc = shortCaller

	l := New(writer, console, level == zerolog.DebugLevel)
	zerolog.DefaultContextLogger = &l
	zlog.Logger = l

	return nil
}

// New builds a logger writing to w. Caller information is only attached
// when withCaller is set.
func New(w io.Writer, console bool, withCaller bool) zerolog.Logger {
	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: time.TimeOnly,
			FormatCaller: func(i interface{}) string {
				if s, ok := i.(string); ok && s != "" {
					return "(" + s + ")"
				}
				return ""
			},
		}
	}
	ctx := zerolog.New(w).With().Timestamp()
	if withCaller {
		ctx = ctx.Caller()
	}
	return ctx.Logger()
}

// WithRequestID returns a context carrying a logger annotated with the
// given request ID.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	l := FromContext(ctx).With().Str("request_id", requestID).Logger()
	ctx = context.WithValue(ctx, ctxKey{}, requestID)
	return l.WithContext(ctx)
}

// RequestID returns the request ID stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxKey{}).(string); ok {
		return v
	}
	return ""
}

// FromContext returns the logger attached to ctx, falling back to the
// global logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return &zlog.Logger
	}
	l := zerolog.Ctx(ctx)
	if l == zerolog.DefaultContextLogger || l.GetLevel() == zerolog.Disabled {
		return &zlog.Logger
	}
	return l
}

// shortCaller trims the caller path to "<dir>/<file>:<line>".
func shortCaller(pc uintptr, file string, line int) string {
	parts := strings.Split(file, string(filepath.Separator))
	if len(parts) > 1 {
		return filepath.Join(parts[len(parts)-2:]...) + ":" + strconv.Itoa(line)
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}

// parseLevel parses the log level string.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info", "":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
