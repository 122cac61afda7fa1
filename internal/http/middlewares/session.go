package middlewares

import (
	"net/http"
	"strings"

	httperrors "github.com/dropDatabas3/dirportal/internal/http/errors"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// RequireSession exige "Authorization: Bearer <token>" emitido por el login
// del portal y deja los claims en el contexto.
func RequireSession(issuer *jwtx.Issuer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := strings.TrimSpace(r.Header.Get("Authorization"))
			if h == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}
			raw, ok := strings.CutPrefix(h, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				httperrors.WriteError(w, httperrors.ErrTokenMissing)
				return
			}

			claims, err := issuer.Parse(strings.TrimSpace(raw))
			if err != nil {
				logger.From(r.Context()).Debug("session rejected", logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrTokenInvalid)
				return
			}

			ctx := WithSession(r.Context(), claims)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.UserID(claims.Subject)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
