package smtp

// TLS modes
const (
	TLSStartTLS = "starttls"
	TLSImplicit = "tls"
	TLSNone     = "none"
)

// Config holds the SMTP account used to relay contact emails
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	TLS      string
	// LocalName is sent in EHLO
	LocalName string
}
