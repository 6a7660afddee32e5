package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
)

// HandleSuccess sends a success response with data
func HandleSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// HandleValidationError sends a 400 listing every offending field
func HandleValidationError(c *gin.Context, message string, errs []common.ValidationError) {
	c.AbortWithStatusJSON(http.StatusBadRequest, common.NewValidationResponse(message, errs))
}
