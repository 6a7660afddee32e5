package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
)

// NotFound answers unknown routes
func NotFound(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusNotFound, common.NewErrorResponse(common.ErrCodeNotFound, "Route not found", ""))
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, common.NewErrorResponse(common.ErrCodeMethodNotAllowed, "Method not allowed", ""))
}
