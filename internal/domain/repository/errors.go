package repository

import "errors"

var (
	// ErrAuthenticationFailure indica credenciales rechazadas por el store.
	// Es un evento rutinario, no una falla de infraestructura.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrUserNotFound indica que el usuario referenciado no existe.
	ErrUserNotFound = errors.New("user not found")

	// ErrGroupNotFound indica que el grupo referenciado no existe.
	ErrGroupNotFound = errors.New("group not found")

	// ErrDomainNotFound indica que el dominio no existe en el store.
	ErrDomainNotFound = errors.New("domain not found")

	// ErrConflict indica un usuario duplicado para el mismo claim de username.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indica que los datos enviados al store son inválidos.
	ErrInvalidInput = errors.New("invalid input")
)

// IsAuthenticationFailure verifica si el error es ErrAuthenticationFailure.
func IsAuthenticationFailure(err error) bool {
	return errors.Is(err, ErrAuthenticationFailure)
}

// IsNotFound verifica si el error indica un usuario o grupo inexistente.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrGroupNotFound)
}
