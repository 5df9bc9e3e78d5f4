// Package api mounts the engine's operation surface over HTTP. It is a
// thin collaborator contract, not where business logic lives — every
// handler does input decoding plus one call into internal/service,
// internal/analytics, or internal/feasibility and then serializes the
// result.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/obscura-observatory/scheduler-analytics/internal/domain"
	"github.com/obscura-observatory/scheduler-analytics/internal/service"
)

// Server is the scheduler-analytics HTTP API server.
type Server struct {
	orch           *service.Orchestrator
	metricsEnabled bool
}

// NewServer creates a new API server over orch.
func NewServer(orch *service.Orchestrator) *Server {
	return &Server{orch: orch}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with every operation mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Minute))
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)

	r.Route("/schedules", func(r chi.Router) {
		r.Post("/", s.handleStoreSchedule)
		r.Get("/", s.handleListSchedules)
		r.Post("/compare", s.handleCompare)
		r.Post("/feasibility", s.handleCheckFeasibility)

		r.Route("/{scheduleID}", func(r chi.Router) {
			r.Get("/", s.handleGetSchedule)
			r.Delete("/", s.handleDeleteSchedule)
			r.Post("/repopulate", s.handleRepopulateAnalytics)
			r.Get("/sky-map", s.handleSkyMap)
			r.Get("/distributions", s.handleDistributions)
			r.Get("/timeline", s.handleTimeline)
			r.Get("/insights", s.handleInsights)
			r.Get("/trends", s.handleTrends)
			r.Get("/visibility-map", s.handleVisibilityMap)
			r.Get("/visibility-histogram", s.handleVisibilityHistogram)
			r.Get("/validation", s.handleValidationReport)
		})
	})

	r.Route("/jobs/{jobID}", func(r chi.Router) {
		r.Get("/", s.handleGetJob)
		r.Get("/log", s.handleJobLogStream)
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response: every error carries a stable
// kind and a human message.
func writeError(w http.ResponseWriter, err error) {
	kind := domain.AsKind(err)
	writeJSON(w, statusForKind(kind), map[string]any{
		"error": map[string]any{
			"kind":    kind,
			"message": err.Error(),
		},
	})
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindTransport:
		return http.StatusBadGateway
	case domain.KindTimeout:
		return http.StatusGatewayTimeout
	case domain.KindFeasibilityUnknown:
		return http.StatusOK // not an error — a valid UNKNOWN outcome
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds permissive CORS headers for local/dev consumption of
// the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
