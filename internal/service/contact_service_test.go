package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio-contact/internal/api/validation"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/mail"
	"github.com/osa911/portfolio-contact/internal/ratelimit"
)

type stubTransport struct {
	verifyErr error
	sendErr   error
	sent      []*mail.Email
}

func (s *stubTransport) Name() string { return "stub" }

func (s *stubTransport) Verify(context.Context) error { return s.verifyErr }

func (s *stubTransport) Send(_ context.Context, email *mail.Email) (string, error) {
	if s.sendErr != nil {
		return "", s.sendErr
	}
	s.sent = append(s.sent, email)
	return "stub-id", nil
}

type failingLimiter struct{}

func (failingLimiter) Admit(context.Context, string, time.Time) (ratelimit.Decision, error) {
	return ratelimit.Decision{}, errors.New("redis: connection refused")
}

var start = time.Date(2026, time.March, 4, 10, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *ContactService
	transport *stubTransport
	clock     time.Time
}

func newFixture(t *testing.T, limiter ratelimit.Limiter) *fixture {
	t.Helper()

	f := &fixture{transport: &stubTransport{}, clock: start}
	if limiter == nil {
		store, err := ratelimit.NewMemoryStore(ratelimit.DefaultPolicy(), ratelimit.WithCleanupInterval(0))
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		limiter = store
	}

	logger := logging.NewNopLogger()
	composer := mail.NewComposer(mail.ComposerConfig{To: "owner@example.com", From: "noreply@example.com"})
	f.svc = NewContactService(
		limiter,
		validation.NewValidator(),
		composer,
		mail.NewDispatcher(f.transport, logger),
		logger,
	).WithClock(func() time.Time { return f.clock })
	return f
}

func validSubmission() contact.ContactRequest {
	return contact.ContactRequest{Name: "Jo", Email: "jo@example.com", Message: "Hello there, this is a test."}
}

func TestSubmit_Delivered(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "stub-id", res.MessageID)
	assert.Equal(t, 4, res.Decision.Remaining)

	require.Len(t, f.transport.sent, 1)
	sent := f.transport.sent[0]
	assert.Equal(t, "owner@example.com", sent.To)
	assert.Equal(t, "jo@example.com", sent.ReplyTo)
	assert.Equal(t, "New contact form message from Jo", sent.Subject)
}

func TestSubmit_ValidationCollectsEveryField(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.Submit(context.Background(), "1.2.3.4", contact.ContactRequest{
		Name: "J", Email: "jo@example.com", Message: "Hi",
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.True(t, verrs.Has("name", validation.CodeFieldTooShort))
	assert.True(t, verrs.Has("message", validation.CodeFieldTooShort))
	assert.Empty(t, f.transport.sent)
}

func TestSubmit_RateLimited(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 5; i++ {
		f.clock = start.Add(time.Duration(i*2) * time.Minute)
		_, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
		require.NoError(t, err, "submission %d", i+1)
	}

	f.clock = start.Add(10 * time.Minute)
	_, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	require.ErrorIs(t, err, ErrRateLimited)

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 5*time.Minute, rl.RetryAfter())
	assert.Len(t, f.transport.sent, 5)

	// another client is unaffected
	_, err = f.svc.Submit(context.Background(), "5.6.7.8", validSubmission())
	assert.NoError(t, err)
}

func TestSubmit_InvalidSubmissionsCount(t *testing.T) {
	f := newFixture(t, nil)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Submit(context.Background(), "1.2.3.4", contact.ContactRequest{})
		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
	}

	_, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	assert.ErrorIs(t, err, ErrRateLimited)
}

func TestSubmit_TransportUnavailable(t *testing.T) {
	f := newFixture(t, nil)
	f.transport.verifyErr = errors.New("535 5.7.8 bad credentials")

	_, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	assert.ErrorIs(t, err, mail.ErrTransportUnavailable)
	assert.Contains(t, err.Error(), "bad credentials")
	assert.Empty(t, f.transport.sent)
}

func TestSubmit_DispatchFailed(t *testing.T) {
	f := newFixture(t, nil)
	f.transport.sendErr = errors.New("connection reset")

	_, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	assert.ErrorIs(t, err, mail.ErrDispatchFailed)
}

func TestSubmit_LimiterFailureAdmits(t *testing.T) {
	f := newFixture(t, failingLimiter{})

	res, err := f.svc.Submit(context.Background(), "1.2.3.4", validSubmission())
	require.NoError(t, err)
	assert.Equal(t, "stub-id", res.MessageID)
}
