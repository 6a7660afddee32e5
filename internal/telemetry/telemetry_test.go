package telemetry

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa911/portfolio-contact/internal/logging"
)

func TestInitDisabled(t *testing.T) {
	tel, err := Init(context.Background(), Config{ServiceName: "test"}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.False(t, tel.TracingEnabled())

	// nothing configured, nothing to do
	tel.ReportError(errors.New("ignored"), nil)
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestInitRejectsBadDSN(t *testing.T) {
	_, err := Init(context.Background(), Config{SentryDSN: "not a dsn"}, logging.NewNopLogger())
	assert.Error(t, err)
}

func TestReportErrorSendsTags(t *testing.T) {
	var (
		mu     sync.Mutex
		events []*sentry.Event
	)
	cfg := Config{
		Environment: "test",
		SentryDSN:   "https://public@sentry.example.com/1",
		beforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			mu.Lock()
			events = append(events, event)
			mu.Unlock()
			return nil // drop, never leave the process
		},
	}

	tel, err := Init(context.Background(), cfg, logging.NewNopLogger())
	require.NoError(t, err)

	tel.ReportError(errors.New("smtp: AUTH: 535"), map[string]string{"mail.stage": "verify"})
	require.NoError(t, tel.Shutdown(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, "verify", events[0].Tags["mail.stage"])
	assert.Equal(t, "test", events[0].Environment)
}

func TestInitTracing(t *testing.T) {
	tel, err := Init(context.Background(), Config{
		ServiceName:  "test",
		OTLPEndpoint: "http://127.0.0.1:4317",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	assert.True(t, tel.TracingEnabled())
	assert.NoError(t, tel.Shutdown(context.Background()))
}
