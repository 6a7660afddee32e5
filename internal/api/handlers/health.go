package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// Check is a liveness probe; it does not touch the mail transport
func (h *HealthHandler) Check(c *gin.Context) {
	c.JSON(http.StatusOK, common.HealthResponse{Status: "OK"})
}
