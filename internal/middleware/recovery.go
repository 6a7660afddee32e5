package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/logging"
)

// Recovery turns a panic into a 500 JSON response. The panic is logged with
// its stack and sent to Sentry when it is configured.
func Recovery(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("[PANIC] %s %s | %s | %v\n%s",
					c.Request.Method,
					c.Request.URL.Path,
					c.GetString(constants.ContextKeyRequestID),
					rec,
					debug.Stack(),
				)

				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetTag("request_id", c.GetString(constants.ContextKeyRequestID))
				hub.Scope().SetRequest(c.Request)
				hub.Recover(rec)

				resp := common.NewErrorResponse(common.ErrCodeInternalServer, "Internal server error", "")
				if gin.Mode() != gin.ReleaseMode {
					resp.Error = fmt.Sprint(rec)
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
			}
		}()

		c.Next()
	}
}
