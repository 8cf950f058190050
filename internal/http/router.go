// Package httpapi assembles the admin API: shared middleware, the
// token-protected /admin surface, health and metrics.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"refurb/pkg/platform/httputil"
	"refurb/pkg/platform/middleware/accesslog"
	"refurb/pkg/platform/middleware/admin"
	request "refurb/pkg/platform/middleware/request"
	"refurb/pkg/platform/middleware/requesttime"
)

const adminTimeout = 30 * time.Second

// Registrar mounts a module's endpoints.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Config struct {
	AdminToken     string
	MetricsEnabled bool
	// HealthChecks are run by /healthz, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// NewRouter wires every module under /admin behind the admin token.
func NewRouter(cfg Config, logger *slog.Logger, modules ...Registrar) http.Handler {
	r := chi.NewRouter()
	r.Use(request.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(accesslog.Middleware(logger))
	r.Use(requesttime.Middleware)

	r.Get("/healthz", healthHandler(cfg.HealthChecks))
	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	r.Route("/admin", func(ar chi.Router) {
		ar.Use(admin.RequireAdminToken(cfg.AdminToken, logger))
		ar.Use(chimw.Timeout(adminTimeout))
		for _, m := range modules {
			m.Register(ar)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok"}
		status := http.StatusOK
		if len(checks) > 0 {
			resp.Checks = make(map[string]string, len(checks))
		}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}
