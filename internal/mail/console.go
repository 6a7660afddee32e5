package mail

import (
	"context"

	"github.com/google/uuid"

	"github.com/osa911/portfolio-contact/internal/logging"
)

// ConsoleTransport writes emails to the log instead of sending them. Meant
// for local development without mail credentials.
type ConsoleTransport struct {
	logger *logging.Logger
}

func NewConsoleTransport(logger *logging.Logger) *ConsoleTransport {
	return &ConsoleTransport{logger: logger}
}

func (t *ConsoleTransport) Name() string { return "console" }

func (t *ConsoleTransport) Verify(context.Context) error { return nil }

func (t *ConsoleTransport) Send(_ context.Context, email *Email) (string, error) {
	id := uuid.NewString()
	t.logger.Info("[console mail] id=%s to=%s reply-to=%s subject=%q\n%s", id, email.To, email.ReplyTo, email.Subject, email.Text)
	return id, nil
}

var _ Transport = (*ConsoleTransport)(nil)
