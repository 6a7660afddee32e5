package mail

import (
	"context"
	"fmt"
)

// Email is a fully composed message ready for a transport
type Email struct {
	To      string
	From    string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers composed emails to an external provider.
type Transport interface {
	// Name identifies the transport in logs.
	Name() string
	// Verify checks that credentials are present and the provider answers.
	Verify(ctx context.Context) error
	// Send delivers the email and returns the provider's message id.
	Send(ctx context.Context, email *Email) (string, error)
}

// Recipient formats a name and email into RFC 5322 address format.
// Returns "Name <email>" if name is provided, otherwise just email.
func Recipient(name, email string) string {
	if name == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", name, email)
}
