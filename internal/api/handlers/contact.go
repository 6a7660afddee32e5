package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
	"github.com/osa911/portfolio-contact/internal/api/validation"
	"github.com/osa911/portfolio-contact/internal/mail"
	"github.com/osa911/portfolio-contact/internal/ratelimit"
	"github.com/osa911/portfolio-contact/internal/service"
	"github.com/osa911/portfolio-contact/internal/utils"
)

const (
	msgSent          = "Message sent successfully. I'll get back to you soon!"
	msgInvalid       = "Please correct the highlighted fields"
	msgRateLimited   = "Too many messages. Please try again later."
	msgSendFailed    = "Failed to send message. Please try again later."
	msgInternalError = "Something went wrong. Please try again later."
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	// Get contact data from context (set by BindContactRequest)
	contactData, exists := c.Get(constants.ContextKeyContact)
	if !exists {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Contact data not found in context")
		return
	}
	contactPtr, ok := contactData.(*contact.ContactRequest)
	if !ok {
		utils.HandleAPIError(c, nil, http.StatusInternalServerError, common.ErrCodeInternalServer, "Invalid contact data format")
		return
	}

	result, err := h.contactService.Submit(c.Request.Context(), utils.GetRealIP(c), *contactPtr)
	if err != nil {
		h.handleSubmitError(c, err)
		return
	}

	setRateLimitHeaders(c, result.Decision)
	utils.HandleSuccess(c, contact.ContactResponse{
		Success:   true,
		Message:   msgSent,
		MessageID: result.MessageID,
	})
}

func (h *ContactHandler) handleSubmitError(c *gin.Context, err error) {
	var (
		rateLimited *service.RateLimitError
		invalid     validation.Errors
	)

	switch {
	case errors.As(err, &rateLimited):
		setRateLimitHeaders(c, rateLimited.Decision)
		c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(rateLimited.RetryAfter())))
		resp := common.NewErrorResponse(common.ErrCodeRateLimited, msgRateLimited, "")
		resp.Error = string(common.ErrCodeRateLimited)
		c.AbortWithStatusJSON(http.StatusTooManyRequests, resp)

	case errors.As(err, &invalid):
		utils.HandleValidationError(c, msgInvalid, invalid.Details())

	case errors.Is(err, mail.ErrTransportUnavailable):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeTransportUnavailable, msgSendFailed)

	case errors.Is(err, mail.ErrDispatchFailed):
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeDispatchFailed, msgSendFailed)

	default:
		utils.HandleAPIError(c, err, http.StatusInternalServerError, common.ErrCodeInternalServer, msgInternalError)
	}
}

func setRateLimitHeaders(c *gin.Context, d ratelimit.Decision) {
	// zero limit means the limiter was bypassed
	if d.Limit == 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	c.Header("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
}

// retryAfterSeconds rounds up so clients never retry a moment too early
func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		return 1
	}
	return secs
}
