package errors

import (
	"net/http"

	"github.com/dropDatabas3/dirportal/internal/directory"
)

// FromDirectory traduce un error del directorio. El mensaje público es el
// del directorio; la causa nunca viaja al cliente.
func FromDirectory(err error) *AppError {
	if err == nil {
		return nil
	}
	var (
		status int
		code   string
	)
	switch directory.KindOf(err) {
	case directory.KindClientUsage:
		status, code = http.StatusBadRequest, "CLIENT_ERROR"
	case directory.KindNotFound:
		status, code = http.StatusNotFound, "NOT_FOUND"
	case directory.KindConflict:
		status, code = http.StatusConflict, "CONFLICT"
	default:
		status, code = http.StatusInternalServerError, "DIRECTORY_ERROR"
	}
	return &AppError{Code: code, Message: err.Error(), HTTPStatus: status, Err: err}
}

// FromAuthentication traduce cualquier error de autenticación a 401 con el
// mismo mensaje, sin distinguir credenciales de fallas del store.
func FromAuthentication(err error) *AppError {
	return ErrInvalidCredentials.WithCause(err)
}
