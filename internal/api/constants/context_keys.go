package constants

// Context keys for values shared between middleware and handlers
const (
	ContextKeyRequestID = "RequestID"
	ContextKeyContact   = "contact"
)

// Request limits
const (
	// MaxContactBodyBytes caps the JSON body of a contact submission
	MaxContactBodyBytes int64 = 16 << 10
)
