package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/status/{device}", s.handleStatus)
		r.Get("/last-data/{device}", s.handleLastData)
		r.Get("/history/{device}", s.handleHistory)
	})

	return r
}

// handleHealth returns the server health status and dependency
// connectivity. The endpoint itself always answers 200; degraded
// dependencies are reported in the body.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	health := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if s.store != nil {
		if err := s.store.HealthCheck(r.Context()); err != nil {
			health["status"] = "degraded"
			health["store"] = "unavailable"
		} else {
			health["store"] = "ok"
		}
	}
	if s.broker != nil {
		if err := s.broker.HealthCheck(r.Context()); err != nil {
			health["status"] = "degraded"
			health["broker"] = "unavailable"
		} else {
			health["broker"] = "ok"
		}
	}
	if s.devices != nil {
		health["devices_tracked"] = s.devices.Devices()
	}

	writeJSON(w, http.StatusOK, health)
}
