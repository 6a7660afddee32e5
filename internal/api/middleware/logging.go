package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/utils"
)

// RequestLogger is a middleware that logs request information
// It only logs when request logging is enabled on the logger (LOG_REQUESTS)
func RequestLogger(logger *logging.Logger) gin.HandlerFunc {
	// If logging is disabled, return a no-op middleware
	if !logger.LogsRequests() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.LogHTTPRequest(
			method,
			path,
			utils.GetRealIP(c),
			c.GetString(constants.ContextKeyRequestID),
			c.Writer.Status(),
			time.Since(start).String(),
		)
	}
}
