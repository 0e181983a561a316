// Package httptransport assembles the HTTP surface. State-changing endpoints
// require an ed25519 request signature, read-only endpoints require an
// operator token, and the ledger-facing execute endpoint is unauthenticated
// because it is called service-to-service inside the cluster.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mintgate/internal/platform/config"
	"mintgate/internal/platform/middleware"
	"mintgate/pkg/platform/httputil"
)

// Handlers collects the per-module handlers mounted on the router.
type Handlers struct {
	Instruments CommandQueryHandler
	Minters     CommandQueryHandler
	Blacklist   CommandQueryHandler
	Hooks       HookHandler
}

// CommandQueryHandler registers command and query routes on a router.
type CommandQueryHandler interface {
	RegisterCommands(r chi.Router)
	RegisterQueries(r chi.Router)
}

// HookHandler additionally registers the transfer validation endpoint.
type HookHandler interface {
	CommandQueryHandler
	RegisterExecute(r chi.Router)
}

// HealthCheck reports readiness of one backing dependency.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewRouter builds the chi router with middleware, authentication groups, and
// operational endpoints.
func NewRouter(cfg config.AuthConfig, logger *slog.Logger, h Handlers, checks ...HealthCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)

	// The /v1 subtree is mounted once; each authentication zone is a group
	// inside it over disjoint routes.
	r.Route("/v1", func(r chi.Router) {
		// Signed commands. Every state change is attributed to the
		// verified signing identity.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSignature(cfg.SignatureMaxSkew, logger))
			h.Instruments.RegisterCommands(r)
			h.Minters.RegisterCommands(r)
			h.Blacklist.RegisterCommands(r)
			h.Hooks.RegisterCommands(r)
		})

		// Operator reads.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireOperator(cfg.OperatorJWTKey, logger))
			h.Instruments.RegisterQueries(r)
			h.Minters.RegisterQueries(r)
			h.Blacklist.RegisterQueries(r)
			h.Hooks.RegisterQueries(r)
		})

		// Ledger-facing transfer validation.
		h.Hooks.RegisterExecute(r)
	})

	r.Get("/healthz", handleHealthz)
	r.Get("/readyz", handleReadyz(logger, checks))
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReadyz probes every backing dependency with a short deadline so a
// stuck database cannot hang the kubelet probe.
func handleReadyz(logger *slog.Logger, checks []HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for _, check := range checks {
			if err := check.Check(ctx); err != nil {
				logger.Warn("readiness check failed", "dependency", check.Name, "error", err)
				results[check.Name] = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			results[check.Name] = "ok"
		}
		httputil.WriteJSON(w, status, results)
	}
}
