package mail

import "errors"

var (
	// ErrTransportUnavailable means the transport could not be verified:
	// missing credentials, unreachable server or rejected login.
	ErrTransportUnavailable = errors.New("mail transport unavailable")

	// ErrDispatchFailed means the transport was verified but sending failed.
	ErrDispatchFailed = errors.New("failed to send email")

	// ErrMissingCredentials is returned by Verify when configuration is incomplete.
	ErrMissingCredentials = errors.New("mail credentials not configured")

	// ErrNoRecipient indicates no recipient was specified.
	ErrNoRecipient = errors.New("email must have a recipient")
)
