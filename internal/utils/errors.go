package utils

import (
	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/logging"
)

// HandleAPIError is a utility function for consistent error handling across the API
// It ensures sensitive error details are only exposed in non-production environments
func HandleAPIError(c *gin.Context, err error, status int, code common.ErrorCode, message string) {
	logger := logging.GetGlobalLogger()
	logger.LogHTTPError(
		c.Request.Method,
		c.Request.URL.Path,
		GetRealIP(c),
		status,
		message,
		err,
	)

	// In production, don't expose error details
	detail := ""
	if err != nil && gin.Mode() != gin.ReleaseMode {
		detail = err.Error()
	}

	c.AbortWithStatusJSON(status, common.NewErrorResponse(code, message, detail))
}
