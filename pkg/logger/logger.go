package logger

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	JSONLoggingFormat = "json"

	LogLevelDebug    = "debug"
	LogLevelInfo     = "info"
	LogLevelWarn     = "warn"
	LogLevelWarning  = "warning"
	LogLevelError    = "error"
	LogLevelFatal    = "fatal"
	LogLevelPanic    = "panic"
	LogLevelDisabled = "disabled"

	ContextKeyCorrelationID contextKey = "correlationID"
	ContextKeyTranslationID contextKey = "translationID"
	ContextKeyTranslator    contextKey = "translator"
)

type Logger struct {
	zerolog.Logger
}

// New logs to stderr so that translation output on stdout stays clean.
func New(level, format string) Logger {
	return NewWithWriter(level, format, os.Stderr)
}

func NewWithWriter(level, format string, w io.Writer) Logger {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339})

	if format == JSONLoggingFormat {
		logger = zerolog.New(w)
	}

	logger = logger.Level(ParseLevel(level)).With().Timestamp().Logger()

	return Logger{
		Logger: logger,
	}
}

// ParseLevel maps a configured level name to zerolog, info when unknown.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelInfo:
		return zerolog.InfoLevel
	case LogLevelWarn, LogLevelWarning:
		return zerolog.WarnLevel
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelFatal:
		return zerolog.FatalLevel
	case LogLevelPanic:
		return zerolog.PanicLevel
	case LogLevelDisabled:
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

func ContextWithTranslationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextKeyTranslationID, id)
}

func TranslationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyTranslationID).(string)

	return id
}

func ContextWithTranslator(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyTranslator, name)
}

func (l Logger) WithContext(ctx context.Context) zerolog.Logger {
	logger := l.Logger

	if correlationID, ok := ctx.Value(ContextKeyCorrelationID).(string); ok && correlationID != "" {
		logger = logger.With().Str("correlation_id", correlationID).Logger()
	}

	if translator, ok := ctx.Value(ContextKeyTranslator).(string); ok && translator != "" {
		logger = logger.With().Str("translator", translator).Logger()
	}

	if id := TranslationIDFromContext(ctx); id != "" {
		logger = logger.With().Str("translation_id", id).Logger()
	}

	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		logger = logger.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return logger
}
