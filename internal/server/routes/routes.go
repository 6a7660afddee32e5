package routes

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/osa911/portfolio-contact/internal/api/handlers"
	"github.com/osa911/portfolio-contact/internal/api/middleware"
	"github.com/osa911/portfolio-contact/internal/logging"
	basemiddleware "github.com/osa911/portfolio-contact/internal/middleware"
)

// GlobalOptions configures middleware that applies to all routes
type GlobalOptions struct {
	ServiceName    string
	AllowedOrigins []string
	GlobalRPS      float64
	GlobalBurst    int
}

// Setup configures all routes plus the JSON 404 and 405 fallbacks
func Setup(router *gin.Engine, h *Handlers) {
	SetupHealthRoutes(router, h.Health)
	SetupContactRoutes(router, h.Contact)

	router.HandleMethodNotAllowed = true
	router.NoMethod(handlers.MethodNotAllowed)
	router.NoRoute(handlers.NotFound)
}

// SetupGlobalMiddleware configures middleware that applies to all routes
func SetupGlobalMiddleware(router *gin.Engine, logger *logging.Logger, opts GlobalOptions) {
	router.Use(basemiddleware.RequestID())
	router.Use(basemiddleware.Recovery(logger))
	router.Use(otelgin.Middleware(opts.ServiceName))
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(middleware.RateLimitMiddleware(middleware.RateLimitConfig{
		RPS:   opts.GlobalRPS,
		Burst: opts.GlobalBurst,
	}))
}
