package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/api/dto/v1/contact"
)

// BindContactRequest decodes the JSON body into a ContactRequest and stores
// it in the context. Field rules are checked later by the contact service so
// that every submission counts against the client's rate limit first.
func BindContactRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req contact.ContactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
					common.NewErrorResponse(common.ErrCodeInvalidBody, "Request body is too large", ""))
				return
			}
			c.AbortWithStatusJSON(http.StatusBadRequest,
				common.NewErrorResponse(common.ErrCodeInvalidBody, "Request body must be a JSON object with name, email and message", ""))
			return
		}

		c.Set(constants.ContextKeyContact, &req)
		c.Next()
	}
}
