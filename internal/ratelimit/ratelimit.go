// Package ratelimit implements the per-client fixed-window submission limit.
//
// A window opens on a client's first admitted submission and lasts Policy.Window.
// Inside it at most Policy.Limit submissions are admitted; rejected attempts do
// not touch the counter. The first submission after the window's reset time
// opens a new window with a count of one. Windows are fixed, so a client can
// get up to twice the limit through by straddling a reset.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Default policy: 5 submissions per 15 minutes
const (
	DefaultLimit  = 5
	DefaultWindow = 15 * time.Minute
)

var ErrInvalidPolicy = errors.New("ratelimit: limit and window must be positive")

// Policy is the fixed-window rule
type Policy struct {
	Limit  int
	Window time.Duration
}

// DefaultPolicy returns the 5 per 15 minutes policy
func DefaultPolicy() Policy {
	return Policy{Limit: DefaultLimit, Window: DefaultWindow}
}

func (p Policy) validate() error {
	if p.Limit <= 0 || p.Window <= 0 {
		return ErrInvalidPolicy
	}
	return nil
}

// Entry is the state kept per client identifier
type Entry struct {
	Count         int
	WindowResetAt time.Time
}

// Decision is the outcome of one admission check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// RetryAfter is how long a rejected client should wait
func (d Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || !d.ResetAt.After(now) {
		return 0
	}
	return d.ResetAt.Sub(now)
}

// Limiter admits or rejects submissions per client
type Limiter interface {
	Admit(ctx context.Context, clientID string, now time.Time) (Decision, error)
}

// apply runs one admission step. exists is false when the client has no entry.
// The returned entry is only meaningful when changed is true.
func (p Policy) apply(e Entry, exists bool, now time.Time) (next Entry, d Decision, changed bool) {
	switch {
	case !exists, now.After(e.WindowResetAt):
		next = Entry{Count: 1, WindowResetAt: now.Add(p.Window)}
		changed = true
	case e.Count >= p.Limit:
		return e, Decision{Allowed: false, Limit: p.Limit, Remaining: 0, ResetAt: e.WindowResetAt}, false
	default:
		next = Entry{Count: e.Count + 1, WindowResetAt: e.WindowResetAt}
		changed = true
	}

	return next, Decision{
		Allowed:   true,
		Limit:     p.Limit,
		Remaining: p.Limit - next.Count,
		ResetAt:   next.WindowResetAt,
	}, changed
}
