package http

import (
	"context"
	"net/http"
	"time"

	"github.com/atinyakov/GolfClubAuctions/internal/metrics"
	"github.com/atinyakov/GolfClubAuctions/internal/middleware"
	"github.com/atinyakov/GolfClubAuctions/internal/render"
	"github.com/atinyakov/GolfClubAuctions/internal/tracer"
	"go.uber.org/zap"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Handlers groups everything the router mounts.
type Handlers struct {
	Pages    *PageHandler
	Auth     *AuthHandler
	API      *APIHandler
	Resolver middleware.Resolver
	Metrics  *metrics.Metrics
	Health   map[string]HealthCheck
}

// NewRouter builds the marketplace router.
//
// Routes:
//
//	GET  /                        → Pages.Index (view=home|browse|create)
//	POST /auth/signup|signin|signout
//	POST /listings                → Pages.CreateListing
//	POST /listings/{id}/delete    → Pages.DeleteListing
//	POST /listings/{id}/contact   → Pages.ContactSeller
//	GET  /api/listings            → API.List
//	POST /api/listings            → API.Create (signed in)
//	GET  /api/listings/mine       → API.Mine (signed in)
//	PATCH, DELETE /api/listings/{id} (signed in)
//	GET  /assets/*, /healthz, /metrics
func NewRouter(h Handlers, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.Recoverer)
	r.Use(tracer.Middleware)
	if h.Metrics != nil {
		r.Use(h.Metrics.Middleware)
	}
	// Resolve the session before logging so log lines carry the user.
	r.Use(middleware.SessionAuth(h.Resolver, logger))
	r.Use(middleware.WithRequestLogging(logger))

	r.Get("/", h.Pages.Index)
	r.Handle("/assets/*", render.Assets())
	r.Get("/healthz", healthz(h.Health, logger))
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", h.Auth.SignUp)
		r.Post("/signin", h.Auth.SignIn)
		r.Post("/signout", h.Auth.SignOut)
	})

	r.Route("/listings", func(r chi.Router) {
		r.Post("/", h.Pages.CreateListing)
		r.Post("/{id}/delete", h.Pages.DeleteListing)
		r.Post("/{id}/contact", h.Pages.ContactSeller)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.AllowContentType("application/json"))
		r.Get("/listings", h.API.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSession)
			r.Post("/listings", h.API.Create)
			r.Get("/listings/mine", h.API.Mine)
			r.Patch("/listings/{id}", h.API.Update)
			r.Delete("/listings/{id}", h.API.Delete)
		})
	})

	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthz(checks map[string]HealthCheck, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		resp := healthResponse{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
				resp.Checks[name] = err.Error()
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		writeJSON(w, status, resp)
	}
}
