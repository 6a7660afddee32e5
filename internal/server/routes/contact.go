package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/constants"
	"github.com/osa911/portfolio-contact/internal/api/handlers"
	"github.com/osa911/portfolio-contact/internal/api/middleware"
)

// SetupContactRoutes configures contact form routes. The form posts to
// /api/send-email; /api/v1/contact/submit is the versioned alias.
func SetupContactRoutes(router *gin.Engine, contact *handlers.ContactHandler) {
	chain := []gin.HandlerFunc{
		middleware.LimitRequestBody(constants.MaxContactBodyBytes),
		middleware.BindContactRequest(),
		contact.Submit,
	}

	router.POST("/api/send-email", chain...)
	router.POST("/api/v1/contact/submit", chain...)
}
