package smtp

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	gosmtp "github.com/emersion/go-smtp"
	"github.com/google/uuid"

	"github.com/osa911/portfolio-contact/internal/mail"
)

// Sender implements mail.Transport over an authenticated SMTP session.
type Sender struct {
	config    Config
	tlsConfig *tls.Config
	dial      func(ctx context.Context, network, addr string) (net.Conn, error)
	now       func() time.Time
}

// Option configures a Sender
type Option func(*Sender)

// WithTLSConfig overrides the TLS client configuration
func WithTLSConfig(cfg *tls.Config) Option {
	return func(s *Sender) {
		s.tlsConfig = cfg
	}
}

// New creates an SMTP sender
func New(cfg Config, opts ...Option) *Sender {
	if cfg.TLS == "" {
		cfg.TLS = TLSStartTLS
	}
	if cfg.LocalName == "" {
		cfg.LocalName = "localhost"
	}

	dialer := &net.Dialer{KeepAlive: -1}
	s := &Sender{
		config:    cfg,
		tlsConfig: &tls.Config{ServerName: cfg.Host, MinVersion: tls.VersionTLS12},
		dial:      dialer.DialContext,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Sender) Name() string { return "smtp" }

// Verify opens a session, authenticates and quits.
func (s *Sender) Verify(ctx context.Context) error {
	if err := s.checkConfig(); err != nil {
		return err
	}

	c, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	return c.Quit()
}

// Send delivers email in a fresh session and returns its Message-ID.
func (s *Sender) Send(ctx context.Context, email *mail.Email) (string, error) {
	if err := s.checkConfig(); err != nil {
		return "", err
	}

	from := email.From
	if from == "" {
		from = s.config.From
	}
	fromAddr, err := parseAddress(from)
	if err != nil {
		return "", fmt.Errorf("smtp: invalid sender: %w", err)
	}
	if fromAddr.Name == "" {
		fromAddr.Name = s.config.FromName
	}

	toAddr, err := parseAddress(email.To)
	if err != nil {
		return "", fmt.Errorf("smtp: invalid recipient: %w", err)
	}

	messageID := uuid.NewString() + "@" + domainOf(fromAddr.Address)
	msg, err := buildMessage(email, fromAddr, toAddr, messageID, s.now())
	if err != nil {
		return "", fmt.Errorf("smtp: build message: %w", err)
	}

	c, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer c.Close()

	if err := c.Mail(fromAddr.Address, nil); err != nil {
		return "", fmt.Errorf("smtp: MAIL FROM: %w", err)
	}
	if err := c.Rcpt(toAddr.Address, nil); err != nil {
		return "", fmt.Errorf("smtp: RCPT TO: %w", err)
	}

	w, err := c.Data()
	if err != nil {
		return "", fmt.Errorf("smtp: DATA: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("smtp: write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("smtp: message rejected: %w", err)
	}

	// the message is accepted at this point; a failed QUIT is not a send failure
	_ = c.Quit()

	return messageID, nil
}

func (s *Sender) checkConfig() error {
	var missing []string
	if s.config.Host == "" {
		missing = append(missing, "host")
	}
	if s.config.Username == "" {
		missing = append(missing, "username")
	}
	if s.config.Password == "" {
		missing = append(missing, "password")
	}
	if s.config.From == "" {
		missing = append(missing, "from")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: smtp %s", mail.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// connect dials, greets, upgrades to TLS when configured and authenticates.
// The context deadline applies to the whole session.
func (s *Sender) connect(ctx context.Context) (*gosmtp.Client, error) {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	conn, err := s.dial(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("smtp: dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	if s.config.TLS == TLSImplicit {
		conn = tls.Client(conn, s.tlsConfig)
	}

	c := gosmtp.NewClient(conn)
	if err := c.Hello(s.config.LocalName); err != nil {
		c.Close()
		return nil, fmt.Errorf("smtp: EHLO: %w", err)
	}

	if s.config.TLS == TLSStartTLS {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			c.Close()
			return nil, errors.New("smtp: server does not support STARTTLS")
		}
		if err := c.StartTLS(s.tlsConfig); err != nil {
			c.Close()
			return nil, fmt.Errorf("smtp: STARTTLS: %w", err)
		}
	}

	if ok, _ := c.Extension("AUTH"); !ok {
		c.Close()
		return nil, errors.New("smtp: server does not support AUTH")
	}
	if err := c.Auth(sasl.NewPlainClient("", s.config.Username, s.config.Password)); err != nil {
		c.Close()
		return nil, fmt.Errorf("smtp: AUTH: %w", err)
	}

	return c, nil
}

func parseAddress(s string) (*netmail.Address, error) {
	return netmail.ParseAddress(s)
}

func domainOf(address string) string {
	if at := strings.LastIndexByte(address, '@'); at >= 0 && at < len(address)-1 {
		return address[at+1:]
	}
	return "localhost"
}

// buildMessage renders a multipart/alternative message with text and HTML parts.
func buildMessage(email *mail.Email, from, to *netmail.Address, messageID string, date time.Time) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeMessage(&buf, email, from, to, messageID, date); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
