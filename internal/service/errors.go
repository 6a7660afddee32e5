package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/osa911/portfolio-contact/internal/ratelimit"
)

// Sentinel errors for service layer
var (
	ErrRateLimited = errors.New("rate limit exceeded")
)

// RateLimitError carries the limiter decision of a rejected submission
type RateLimitError struct {
	Decision ratelimit.Decision
	Now      time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", ErrRateLimited, e.RetryAfter().Round(time.Second))
}

func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// RetryAfter is the wait until the client's window resets
func (e *RateLimitError) RetryAfter() time.Duration {
	return e.Decision.RetryAfter(e.Now)
}
