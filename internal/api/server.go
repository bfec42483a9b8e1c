// Package api is ebphd's HTTP control surface: status/health, Prometheus
// metrics, profile introspection and admin actions, live task listing, a
// settings PUT endpoint mirroring the original admin tool's wire contract,
// and an SSE feed of the event bus (SPEC_FULL.md MODULE: api).
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ebph-project/ebphd/internal/eventbus"
	"github.com/ebph-project/ebphd/internal/health"
	"github.com/ebph-project/ebphd/internal/persist"
	"github.com/ebph-project/ebphd/internal/registry"
	"github.com/ebph-project/ebphd/internal/settings"
)

// Version is the daemon's reported build version (overridable at link
// time, the way cmd/ebphd's build process substitutes it).
var Version = "0.1.0"

// Server is ebphd's HTTP control surface.
type Server struct {
	reg     *registry.Registry
	store   *persist.Store
	stg     *settings.Store
	bus     *eventbus.Bus
	checker *health.Checker

	metricsEnabled bool
}

// NewServer creates a control-surface server over the daemon's live
// components.
func NewServer(reg *registry.Registry, store *persist.Store, stg *settings.Store, bus *eventbus.Bus, checker *health.Checker) *Server {
	return &Server{reg: reg, store: store, stg: stg, bus: bus, checker: checker}
}

// EnableMetrics turns on the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with every route mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/version", s.handleVersion)

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/profiles", func(r chi.Router) {
		r.Get("/", s.handleProfileList)
		r.Delete("/{key}", s.handleProfileForget)
		r.Post("/{key}/normalize", s.handleProfileNormalize)
		r.Post("/{key}/sensitize", s.handleProfileSensitize)
		r.Post("/{key}/tolerize", s.handleProfileTolerize)
	})

	r.Put("/settings/{name}/{value}", s.handleSettingsSet)

	r.Get("/tasks", s.handleTasks)
	r.Get("/events", s.handleEvents)

	return r
}
