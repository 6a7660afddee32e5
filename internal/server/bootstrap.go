package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/osa911/portfolio-contact/internal/api/validation"
	"github.com/osa911/portfolio-contact/internal/config"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/mail"
	"github.com/osa911/portfolio-contact/internal/mail/resend"
	"github.com/osa911/portfolio-contact/internal/mail/smtp"
	"github.com/osa911/portfolio-contact/internal/ratelimit"
	"github.com/osa911/portfolio-contact/internal/service"
	"github.com/osa911/portfolio-contact/internal/telemetry"
	"github.com/osa911/portfolio-contact/internal/version"
)

// App wires every component of the contact API from configuration. The
// standalone server and the serverless handler both build one.
type App struct {
	Config         *config.Config
	Logger         *logging.Logger
	Telemetry      *telemetry.Telemetry
	Dispatcher     *mail.Dispatcher
	ContactService *service.ContactService
	Server         *Server

	closers []func(context.Context) error
}

// NewApp builds the application. Call Close to release the limiter store and
// flush telemetry.
func NewApp(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", logging.ErrInvalidConfig, err)
	}

	app := &App{Config: cfg, Logger: logger}

	tel, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Environment,
		Version:      version.Version,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		SentryDSN:    cfg.Telemetry.SentryDSN,
	}, logger)
	if err != nil {
		return nil, err
	}
	app.Telemetry = tel
	app.closers = append(app.closers, tel.Shutdown)

	limiter, err := app.newLimiter(ctx)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	transport, from, err := NewTransport(cfg, logger)
	if err != nil {
		_ = app.Close(ctx)
		return nil, err
	}

	app.Dispatcher = mail.NewDispatcher(transport, logger,
		mail.WithTimeout(cfg.Mail.Timeout),
		mail.WithErrorReporter(tel.ReportError),
	)
	composer := mail.NewComposer(mail.ComposerConfig{
		To:   cfg.Contact.Recipient,
		From: from,
	})

	app.ContactService = service.NewContactService(limiter, validation.NewValidator(), composer, app.Dispatcher, logger)
	app.Server = NewServer(cfg, logger, app.ContactService)

	logger.Info("Contact API ready (env=%s, transport=%s, rate limit store=%s, %d per %s)",
		cfg.Environment, transport.Name(), cfg.RateLimit.Store, cfg.RateLimit.Max, cfg.RateLimit.Window)
	return app, nil
}

func (a *App) newLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	cfg := a.Config.RateLimit
	policy := ratelimit.Policy{Limit: cfg.Max, Window: cfg.Window}

	switch cfg.Store {
	case config.StoreRedis:
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return nil, logging.WrapError(fmt.Errorf("%w: %w", logging.ErrConnection, err), "rate limit store")
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		store, err := ratelimit.NewRedisStore(client, policy)
		if err != nil {
			return nil, err
		}
		return store, nil

	default:
		store, err := ratelimit.NewMemoryStore(policy,
			ratelimit.WithMaxEntries(cfg.MaxEntries),
			ratelimit.WithSweepCallback(func(removed int) {
				a.Logger.Debug("Rate limiter swept %d expired clients", removed)
			}),
		)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		return store, nil
	}
}

// NewTransport builds the configured mail transport and the From header the
// composer should use.
func NewTransport(cfg *config.Config, logger *logging.Logger) (mail.Transport, string, error) {
	switch cfg.Mail.Transport {
	case config.TransportSMTP:
		from := ""
		if cfg.SMTP.From != "" {
			from = mail.Recipient(cfg.SMTP.FromName, cfg.SMTP.From)
		}
		return smtp.New(smtp.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			FromName: cfg.SMTP.FromName,
			TLS:      cfg.SMTP.TLS,
		}), from, nil

	case config.TransportResend:
		sender, err := resend.New(resend.Config{
			APIKey:      cfg.Resend.APIKey,
			SenderEmail: cfg.Resend.SenderEmail,
			SenderName:  cfg.Resend.SenderName,
		})
		if err != nil {
			return nil, "", err
		}
		from := ""
		if cfg.Resend.SenderEmail != "" {
			from = mail.Recipient(cfg.Resend.SenderName, cfg.Resend.SenderEmail)
		}
		return sender, from, nil

	case config.TransportConsole:
		return mail.NewConsoleTransport(logger), "", nil

	default:
		return nil, "", fmt.Errorf("%w: unknown mail transport %q", logging.ErrInvalidConfig, cfg.Mail.Transport)
	}
}

// Close releases resources in reverse order of creation
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
