package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// RequireAdmin deja pasar solo sesiones de administrador.
// Debe ir después de RequireSession.
func RequireAdmin() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r.Context())
			if s == nil || !s.Admin {
				logger.From(r.Context()).Debug("admin session required")
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSelfOrAdmin deja pasar al dueño del recurso (sujeto de la sesión
// igual al parámetro de ruta param) o a un administrador.
func RequireSelfOrAdmin(param string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := GetSession(r.Context())
			if s == nil {
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			if !s.Admin && s.Subject != chi.URLParam(r, param) {
				logger.From(r.Context()).Debug("session does not own resource",
					logger.String("target", chi.URLParam(r, param)))
				httperrors.WriteError(w, httperrors.ErrForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
