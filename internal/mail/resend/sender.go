package resend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/resend/resend-go/v3"

	"github.com/osa911/portfolio-contact/internal/mail"
)

// Sender implements mail.Transport using the Resend API.
type Sender struct {
	client *resend.Client
	config Config
}

// Option configures a Sender
type Option func(*Sender) error

// WithBaseURL points the client at another API endpoint
func WithBaseURL(raw string) Option {
	return func(s *Sender) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("resend: invalid base url: %w", err)
		}
		s.client.BaseURL = u
		return nil
	}
}

// New creates a new Resend sender.
func New(cfg Config, opts ...Option) (*Sender, error) {
	s := &Sender{
		client: resend.NewClient(cfg.APIKey),
		config: cfg,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Sender) Name() string { return "resend" }

// Verify only checks that the API key and sender are configured. Resend has
// no cheap authenticated no-op call; a bad key surfaces on Send.
func (s *Sender) Verify(context.Context) error {
	if s.config.APIKey == "" || s.config.SenderEmail == "" {
		return fmt.Errorf("%w: resend api key and sender email are required", mail.ErrMissingCredentials)
	}
	return nil
}

// Send implements mail.Transport.
func (s *Sender) Send(ctx context.Context, email *mail.Email) (string, error) {
	from := email.From
	if from == "" {
		from = mail.Recipient(s.config.SenderName, s.config.SenderEmail)
	}

	req := &resend.SendEmailRequest{
		From:    from,
		To:      []string{email.To},
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
		ReplyTo: email.ReplyTo,
	}

	resp, err := s.client.Emails.SendWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("resend: failed to send email: %w", err)
	}

	return resp.Id, nil
}

var _ mail.Transport = (*Sender)(nil)
