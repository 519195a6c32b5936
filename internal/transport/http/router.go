// Package httptransport assembles the public router.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pickup-gateway/internal/mission/handler"
	"pickup-gateway/internal/transport/http/shared"
)

// HealthCheck reports the health of one dependency.
type HealthCheck func(ctx context.Context) error

// NewRouter wires all public endpoints.
func NewRouter(logger *slog.Logger, missions *handler.Handler, checks map[string]HealthCheck) http.Handler {
	r := chi.NewRouter()

	missions.Register(r)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
		defer cancel()
		status := map[string]string{}
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				status[name] = "unhealthy"
				healthy = false
				continue
			}
			status[name] = "ok"
		}
		if !healthy {
			shared.WriteJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		shared.WriteJSON(w, http.StatusOK, status)
	})

	return r
}
