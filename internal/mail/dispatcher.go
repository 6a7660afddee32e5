package mail

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/osa911/portfolio-contact/internal/logging"
)

const DefaultTimeout = 15 * time.Second

// ErrorReporter receives dispatch failures with their full cause.
type ErrorReporter func(err error, tags map[string]string)

// Dispatcher verifies the transport and sends one email per call. It never
// retries: a failure is returned to the caller straight away.
type Dispatcher struct {
	transport Transport
	logger    *logging.Logger
	timeout   time.Duration
	report    ErrorReporter
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithTimeout bounds verify and send together
func WithTimeout(d time.Duration) DispatcherOption {
	return func(dp *Dispatcher) {
		if d > 0 {
			dp.timeout = d
		}
	}
}

// WithErrorReporter forwards failures to an error tracker
func WithErrorReporter(fn ErrorReporter) DispatcherOption {
	return func(dp *Dispatcher) {
		dp.report = fn
	}
}

// NewDispatcher creates a dispatcher for transport
func NewDispatcher(transport Transport, logger *logging.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		transport: transport,
		logger:    logger,
		timeout:   DefaultTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Transport returns the underlying transport
func (d *Dispatcher) Transport() Transport {
	return d.transport
}

// Dispatch verifies the transport, then sends email. Errors wrap
// ErrTransportUnavailable or ErrDispatchFailed together with the cause.
func (d *Dispatcher) Dispatch(ctx context.Context, email *Email) (string, error) {
	if email.To == "" {
		return "", errors.Join(ErrTransportUnavailable, ErrNoRecipient)
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	ctx, span := otel.Tracer("github.com/osa911/portfolio-contact/internal/mail").Start(ctx, "mail.dispatch")
	defer span.End()
	span.SetAttributes(attribute.String("mail.transport", d.transport.Name()))

	if err := d.transport.Verify(ctx); err != nil {
		err = errors.Join(ErrTransportUnavailable, err)
		d.fail(span, "verify", err)
		return "", err
	}

	id, err := d.transport.Send(ctx, email)
	if err != nil {
		err = errors.Join(ErrDispatchFailed, err)
		d.fail(span, "send", err)
		return "", err
	}

	span.SetAttributes(attribute.String("mail.message_id", id))
	d.logger.Info("Email sent via %s (message id %s)", d.transport.Name(), id)
	return id, nil
}

// Verify checks the transport on its own, used by the CLI
func (d *Dispatcher) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	if err := d.transport.Verify(ctx); err != nil {
		return errors.Join(ErrTransportUnavailable, err)
	}
	return nil
}

func (d *Dispatcher) fail(span trace.Span, stage string, err error) {
	d.logger.Error("Mail %s via %s failed: %v", stage, d.transport.Name(), err)
	span.RecordError(err)
	span.SetStatus(codes.Error, fmt.Sprintf("%s failed", stage))
	if d.report != nil {
		d.report(err, map[string]string{
			"mail.transport": d.transport.Name(),
			"mail.stage":     stage,
		})
	}
}
