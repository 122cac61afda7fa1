// Package router arma las rutas HTTP del portal sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dirctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/directory"
	healthctrl "github.com/dropDatabas3/dirportal/internal/http/controllers/health"
	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	mw "github.com/dropDatabas3/dirportal/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
	"github.com/dropDatabas3/dirportal/internal/rate"
)

// Deps contiene todas las dependencias del router.
type Deps struct {
	Directory *dirctrl.Controllers
	Health    *healthctrl.HealthController
	Issuer    *jwtx.Issuer

	// LoginLimiter opcional; nil no limita
	LoginLimiter rate.Limiter

	// Metrics handler para MetricsPath; nil no expone métricas
	Metrics     http.Handler
	MetricsPath string
}

// New construye el handler raíz.
func New(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.WithRecover(), mw.WithRequestID(), mw.WithMetrics())
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	// Infra: sin logging (muy frecuentes)
	if deps.Health != nil {
		r.Get("/healthz", deps.Health.Healthz)
		r.Get("/readyz", deps.Health.Readyz)
	}
	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, deps.Metrics)
	}

	if deps.Directory != nil {
		r.Route("/v1/directory", func(r chi.Router) {
			r.Use(mw.WithLogging())
			registerDirectoryRoutes(r, deps)
		})
	}
	return r
}

func registerDirectoryRoutes(r chi.Router, deps Deps) {
	c := deps.Directory

	// Públicas. Ambas verifican una contraseña y comparten el límite ip|username.
	r.Group(func(r chi.Router) {
		r.Use(mw.WithLoginRateLimit(deps.LoginLimiter))
		r.Post("/auth/login", c.Auth.Login)
		r.Post("/auth/password", c.Auth.UpdatePassword)
	})

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireSession(deps.Issuer))

		r.Get("/domains", c.Domains.List)
		r.Get("/domains/primary", c.Domains.Primary)

		// Self-service: el propio usuario o un administrador
		r.With(mw.RequireSelfOrAdmin("id")).Get("/users/{id}/claims", c.Users.Claims)
		r.With(mw.RequireSelfOrAdmin("id")).Patch("/users/{id}/claims", c.Users.UpdateClaims)

		// Gestión de usuarios: solo administradores
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireAdmin())
			r.Post("/users", c.Users.Add)
			r.Get("/users", c.Users.List)
			r.Post("/users/exists", c.Users.Exists)
			r.Get("/users/search", c.Users.Search)
		})
	})
}
