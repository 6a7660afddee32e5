package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/osa911/portfolio-contact/internal/api/handlers"
	"github.com/osa911/portfolio-contact/internal/config"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/server/routes"
	"github.com/osa911/portfolio-contact/internal/service"
	"github.com/osa911/portfolio-contact/internal/utils"
)

// Server represents the HTTP server
type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	logger     *logging.Logger
}

// ConfigureGinMode selects gin's mode from the environment. Release mode
// also hides raw error details from API responses.
func ConfigureGinMode(cfg *config.Config) {
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Disable Gin's default logger entirely because we're using our custom logger
	gin.DisableConsoleColor()
	gin.DefaultWriter = io.Discard
}

// NewServer creates a new server instance with every route registered
func NewServer(cfg *config.Config, logger *logging.Logger, contactService *service.ContactService) *Server {
	// Create a new engine without default middleware
	router := gin.New()
	if err := utils.ConfigureClientIP(router, cfg.TrustedProxies); err != nil {
		// Validate rejects bad entries, so this only happens with a hand-built config
		logger.Warn("Ignoring forwarded client IPs: %v", err)
		_ = utils.ConfigureClientIP(router, nil)
	}

	routes.SetupGlobalMiddleware(router, logger, routes.GlobalOptions{
		ServiceName:    cfg.Telemetry.ServiceName,
		AllowedOrigins: cfg.AllowedOrigins,
		GlobalRPS:      cfg.GlobalRPS,
		GlobalBurst:    cfg.GlobalBurst,
	})
	routes.Setup(router, &routes.Handlers{
		Health:  handlers.NewHealthHandler(),
		Contact: handlers.NewContactHandler(contactService),
	})

	return &Server{
		router: router,
		httpServer: &http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// leaves room for the mail timeout
			WriteTimeout: cfg.Mail.Timeout + 15*time.Second,
			IdleTimeout:  120 * time.Second,
		},
		logger: logger,
	}
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Contact API listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}
