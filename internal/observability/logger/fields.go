package logger

import (
	"time"

	"go.uber.org/zap"

	"github.com/dropDatabas3/dirportal/internal/util"
)

// =================================================================================
// CAMPOS ESTÁNDAR - HTTP
// =================================================================================

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

// =================================================================================
// CAMPOS ESTÁNDAR - DIRECTORIO
// =================================================================================

// Domain crea un campo para el dominio del identity store.
func Domain(v string) zap.Field {
	return zap.String("domain", v)
}

// UserID crea un campo para el unique user id del store.
func UserID(v string) zap.Field {
	return zap.String("user_id", v)
}

// Username crea un campo para el username, enmascarado.
func Username(v string) zap.Field {
	return zap.String("username", util.MaskUsername(v))
}

// ClaimURI crea un campo para el URI de un claim.
func ClaimURI(v string) zap.Field {
	return zap.String("claim_uri", v)
}

// Driver crea un campo para el driver del identity store.
func Driver(v string) zap.Field {
	return zap.String("driver", v)
}

// Page crea los campos de paginación.
func Page(offset, length int) zap.Field {
	return zap.Dict("page", zap.Int("offset", offset), zap.Int("length", length))
}

// =================================================================================
// CAMPOS ESTÁNDAR - SISTEMA
// =================================================================================

// Component crea un campo para el componente/módulo.
func Component(v string) zap.Field {
	return zap.String("component", v)
}

// Op crea un campo para la operación actual.
func Op(v string) zap.Field {
	return zap.String("op", v)
}

// Layer crea un campo para la capa (handler, service, store).
func Layer(v string) zap.Field {
	return zap.String("layer", v)
}

// Err crea un campo para un error.
func Err(err error) zap.Field {
	return zap.Error(err)
}

func Count(v int) zap.Field { return zap.Int("count", v) }

func String(key, v string) zap.Field { return zap.String(key, v) }

func Int(key string, v int) zap.Field { return zap.Int(key, v) }

func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
