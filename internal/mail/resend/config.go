package resend

// Config holds Resend email provider configuration.
type Config struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}
