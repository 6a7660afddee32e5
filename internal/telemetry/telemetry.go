// Package telemetry sets up tracing and error reporting. Both are optional:
// with no OTLP endpoint and no Sentry DSN every call here is a no-op.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/osa911/portfolio-contact/internal/logging"
)

const sentryFlushTimeout = 2 * time.Second

// Config holds telemetry settings
type Config struct {
	ServiceName  string
	Environment  string
	Version      string
	OTLPEndpoint string
	SentryDSN    string

	// beforeSend lets tests observe Sentry events
	beforeSend func(*sentry.Event, *sentry.EventHint) *sentry.Event
}

// Telemetry owns the tracer provider and the Sentry client
type Telemetry struct {
	tracerProvider *sdktrace.TracerProvider
	sentryEnabled  bool
	logger         *logging.Logger
}

// Init configures tracing and error reporting from cfg.
func Init(ctx context.Context, cfg Config, logger *logging.Logger) (*Telemetry, error) {
	t := &Telemetry{logger: logger}

	if cfg.OTLPEndpoint != "" {
		tp, err := newTracerProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		t.tracerProvider = tp
		otel.SetTracerProvider(tp)
		otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		))
		logger.Info("Tracing enabled, exporting to %s", cfg.OTLPEndpoint)
	}

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
			Release:     cfg.Version,
			BeforeSend:  cfg.beforeSend,
		}); err != nil {
			return nil, fmt.Errorf("failed to initialize Sentry: %w", err)
		}
		t.sentryEnabled = true
		logger.Info("Sentry error reporting enabled")
	}

	return t, nil
}

func newTracerProvider(ctx context.Context, cfg Config) (*sdktrace.TracerProvider, error) {
	exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(cfg.OTLPEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.Version),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	), nil
}

// TracingEnabled reports whether spans are exported
func (t *Telemetry) TracingEnabled() bool {
	return t.tracerProvider != nil
}

// ReportError sends err to Sentry with tags. It matches mail.ErrorReporter.
func (t *Telemetry) ReportError(err error, tags map[string]string) {
	if !t.sentryEnabled || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		sentry.CaptureException(err)
	})
}

// Shutdown flushes pending spans and events
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	if t.tracerProvider != nil {
		if err := t.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.sentryEnabled && !sentry.Flush(sentryFlushTimeout) {
		t.logger.Warn("Sentry flush timed out, some events may be lost")
	}
	return errors.Join(errs...)
}
