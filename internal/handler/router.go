// Package handler provides the HTTP API for ProjectHub.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/prn-tf/projecthub/internal/auth"
	"github.com/prn-tf/projecthub/internal/metrics"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// routeRegistrar is implemented by every resource handler.
type routeRegistrar interface {
	RegisterRoutes(r chi.Router)
}

// healthTimeout bounds the database ping behind /health.
const healthTimeout = 2 * time.Second

// Router assembles the middleware stack and resource routes.
type Router struct {
	handlers    []routeRegistrar
	codec       *auth.SessionCodec
	health      HealthChecker
	metrics     *metrics.Metrics
	metricsPath string
	uploadsDir  string
	uploadsURL  string
	logger      zerolog.Logger
}

// RouterConfig contains configuration for the router.
type RouterConfig struct {
	Auth      *AuthHandler
	Projects  *ProjectHandler
	Contact   *ContactHandler
	Settings  *SettingHandler
	Users     *UserHandler
	Uploads   *UploadHandler
	Dashboard *DashboardHandler

	Codec  *auth.SessionCodec
	Health HealthChecker

	// Metrics is optional; when nil no collectors or /metrics route are added.
	Metrics     *metrics.Metrics
	MetricsPath string

	// UploadsDir, when set, is served read-only under UploadsURL so the
	// filesystem storage backend's image URLs resolve.
	UploadsDir string
	UploadsURL string

	Logger zerolog.Logger
}

// NewRouter creates a new Router.
func NewRouter(config RouterConfig) *Router {
	rt := &Router{
		codec:       config.Codec,
		health:      config.Health,
		metrics:     config.Metrics,
		metricsPath: config.MetricsPath,
		uploadsDir:  config.UploadsDir,
		uploadsURL:  strings.TrimSuffix(config.UploadsURL, "/"),
		logger:      config.Logger.With().Str("component", "router").Logger(),
	}
	if rt.metricsPath == "" {
		rt.metricsPath = "/metrics"
	}

	rt.handlers = []routeRegistrar{
		config.Auth, config.Projects, config.Contact, config.Settings,
		config.Users, config.Uploads, config.Dashboard,
	}
	return rt
}

// Handler returns the main HTTP handler.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestLogging(rt.logger)...)
	r.Use(middleware.Recoverer)
	if rt.metrics != nil {
		r.Use(instrument(rt.metrics))
	}
	r.Use(rt.codec.Middleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
	})

	r.Get("/health", rt.handleHealth)
	if rt.metrics != nil {
		r.Handle(rt.metricsPath, rt.metrics.Handler())
	}
	if rt.uploadsDir != "" && rt.uploadsURL != "" {
		files := http.StripPrefix(rt.uploadsURL, http.FileServer(http.Dir(rt.uploadsDir)))
		r.Handle(rt.uploadsURL+"/*", files)
	}

	for _, h := range rt.handlers {
		h.RegisterRoutes(r)
	}

	return r
}

// handleHealth pings the database.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if rt.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := rt.health.Ping(ctx); err != nil {
			rt.logger.Warn().Err(err).Msg("health check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
