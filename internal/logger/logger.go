package logger

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "barbershop-booking"

// New builds the process logger and installs it as the zerolog global.
// Development gets a console writer, everything else JSON.
func New(env string) zerolog.Logger {
	return newWithOutput(env, os.Stdout)
}

func newWithOutput(env string, out io.Writer) zerolog.Logger {
	var l zerolog.Logger

	if env == "development" {
		l = zerolog.New(zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}).With().
			Timestamp().
			Logger()
	} else {
		l = zerolog.New(out).
			With().
			Timestamp().
			Str("service", serviceName).
			Logger()
	}

	log.Logger = l
	return l
}

// FromContext returns the global logger enriched with the active span ids.
func FromContext(ctx context.Context) *zerolog.Logger {
	l := log.With().Logger()

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		l = l.With().
			Str("trace_id", span.SpanContext().TraceID().String()).
			Str("span_id", span.SpanContext().SpanID().String()).
			Logger()
	}

	return &l
}
