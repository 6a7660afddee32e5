package service

import (
	"context"
	"errors"
	"time"

	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio-contact/internal/api/validation"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/mail"
	"github.com/osa911/portfolio-contact/internal/ratelimit"
)

// SubmitResult describes an accepted submission
type SubmitResult struct {
	MessageID string
	Decision  ratelimit.Decision
}

// ContactService runs a contact form submission through rate limiting,
// validation, composition and dispatch.
type ContactService struct {
	limiter    ratelimit.Limiter
	validator  *validation.Validator
	composer   *mail.Composer
	dispatcher *mail.Dispatcher
	logger     *logging.Logger
	now        func() time.Time
}

// NewContactService creates a new contact service
func NewContactService(
	limiter ratelimit.Limiter,
	validator *validation.Validator,
	composer *mail.Composer,
	dispatcher *mail.Dispatcher,
	logger *logging.Logger,
) *ContactService {
	return &ContactService{
		limiter:    limiter,
		validator:  validator,
		composer:   composer,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for rate limiting
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

// Submit handles one submission from clientID.
//
// Every call counts against the client's window, including ones that later
// fail validation. Errors are *RateLimitError, validation.Errors, or wrap
// mail.ErrTransportUnavailable / mail.ErrDispatchFailed.
func (s *ContactService) Submit(ctx context.Context, clientID string, req contact.ContactRequest) (*SubmitResult, error) {
	now := s.now()

	decision, err := s.limiter.Admit(ctx, clientID, now)
	if err != nil {
		// a broken limiter store must not take the contact form down with it
		s.logger.Warn("Rate limiter unavailable for %s, admitting: %v", clientID, err)
		decision = ratelimit.Decision{Allowed: true}
	}
	if !decision.Allowed {
		s.logger.Warn("Contact submission from %s rate limited until %s", clientID, decision.ResetAt.Format(time.RFC3339))
		return nil, &RateLimitError{Decision: decision, Now: now}
	}

	normalized, err := s.validator.ValidateContact(req)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			s.logger.Info("Contact submission from %s rejected: %v", clientID, verrs)
		}
		return nil, err
	}

	email, err := s.composer.Compose(mail.Submission{
		Name:    normalized.Name,
		Email:   normalized.Email,
		Message: normalized.Message,
	})
	if err != nil {
		s.logger.Error("Failed to compose contact email: %v", err)
		return nil, errors.Join(mail.ErrDispatchFailed, err)
	}

	id, err := s.dispatcher.Dispatch(ctx, email)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Contact submission from %s delivered (message id %s)", clientID, id)
	return &SubmitResult{MessageID: id, Decision: decision}, nil
}
