// Package handler exposes the contact API as a serverless function. The
// platform calls Handler for every request; the router is built once per
// instance and reused while the instance stays warm.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/osa911/portfolio-contact/internal/api/dto/common"
	"github.com/osa911/portfolio-contact/internal/config"
	"github.com/osa911/portfolio-contact/internal/logging"
	"github.com/osa911/portfolio-contact/internal/server"
)

var (
	once    sync.Once
	router  http.Handler
	initErr error
)

func build() (http.Handler, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, err
	}

	if err := logging.InitLogger(&logging.Config{Level: cfg.Log.Level, Requests: cfg.Log.Requests}); err != nil {
		return nil, err
	}
	logger := logging.GetGlobalLogger()

	server.ConfigureGinMode(cfg)

	// the instance is frozen between invocations, so nothing here is closed
	app, err := server.NewApp(context.Background(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return app.Server.Handler(), nil
}

// Handler serves /api/send-email and the other contact API routes
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		router, initErr = build()
		if initErr != nil {
			logging.GetGlobalLogger().Error("Contact API failed to initialize: %v", initErr)
		}
	})

	if initErr != nil {
		writeInitError(w)
		return
	}
	router.ServeHTTP(w, r)
}

func writeInitError(w http.ResponseWriter) {
	resp := common.NewErrorResponse(common.ErrCodeInternalServer, "Service is misconfigured", "")
	body, _ := json.Marshal(resp)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write(body)
}
