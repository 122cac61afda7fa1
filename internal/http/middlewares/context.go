package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
)

type ctxKey string

const (
	// ctxSessionKey guarda los claims de la sesión validada
	ctxSessionKey ctxKey = "session"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// WithSession inyecta la sesión en el contexto
func WithSession(ctx context.Context, s *jwtx.SessionClaims) context.Context {
	return context.WithValue(ctx, ctxSessionKey, s)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// GetSession obtiene la sesión del contexto.
// Retorna nil si la ruta no pasó por RequireSession.
func GetSession(ctx context.Context) *jwtx.SessionClaims {
	if s, ok := ctx.Value(ctxSessionKey).(*jwtx.SessionClaims); ok {
		return s
	}
	return nil
}

// GetRequestID obtiene el request ID del contexto.
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}
