// Package httptransport assembles the HTTP surface: middleware chain, route
// groups, and operational endpoints. Business logic stays in the feature
// packages; this layer only decides who reaches what.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"licensio/internal/audit"
	"licensio/internal/catalog"
	"licensio/internal/credential"
	"licensio/internal/identity"
	"licensio/internal/stats"
	"licensio/internal/stream"
	"licensio/internal/validation"
	"licensio/pkg/platform/httputil"
	mwauth "licensio/pkg/platform/middleware/auth"
	"licensio/pkg/platform/middleware/metadata"
	"licensio/pkg/platform/middleware/request"
)

// Handlers collects the feature handlers the router mounts.
type Handlers struct {
	Identity   *identity.Handler
	Catalog    *catalog.Handler
	Credential *credential.Handler
	Validation *validation.Handler
	Audit      *audit.Handler
	Stats      *stats.Handler
	Stream     *stream.Handler
}

// HealthCheck reports whether a backing dependency is reachable.
type HealthCheck func(ctx context.Context) error

// NewRouter builds the full route tree.
//
// Three access tiers exist: public (register, login, validate, and the
// WebSocket channel, which authenticates inside its handler), authenticated
// (profile and customer resources), and admin.
func NewRouter(h Handlers, validator mwauth.TokenValidator, checks map[string]HealthCheck, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Recoverer)
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(metadata.ClientMetadata)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/healthz", handleHealth(checks, logger))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Identity.RegisterPublic(r)
	h.Validation.RegisterPublic(r)
	h.Stream.RegisterPublic(r)

	r.Group(func(r chi.Router) {
		r.Use(mwauth.RequireAuth(validator, logger))

		h.Identity.RegisterAuthenticated(r)
		h.Catalog.RegisterAuthenticated(r)
		h.Credential.RegisterAuthenticated(r)

		r.Group(func(r chi.Router) {
			r.Use(mwauth.RequireAdmin(logger))

			h.Catalog.RegisterAdmin(r)
			h.Credential.RegisterAdmin(r)
			h.Audit.RegisterAdmin(r)
			h.Stats.RegisterAdmin(r)
		})
	})

	return r
}

func handleHealth(checks map[string]HealthCheck, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := http.StatusOK
		result := make(map[string]string, len(checks)+1)
		result["status"] = "ok"
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", "dependency", name, "error", err)
				result[name] = "unavailable"
				result["status"] = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
