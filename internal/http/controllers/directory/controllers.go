// Package directory contiene los controllers HTTP del directorio.
package directory

import (
	dir "github.com/dropDatabas3/dirportal/internal/directory"
	jwtx "github.com/dropDatabas3/dirportal/internal/jwt"
)

// Controllers agrupa todos los controllers del directorio.
type Controllers struct {
	Auth    *AuthController
	Users   *UsersController
	Domains *DomainsController
}

// NewControllers crea el agregador de controllers del directorio.
// Los miembros de adminGroup reciben sesiones de administrador.
func NewControllers(service dir.Service, issuer *jwtx.Issuer, adminGroup string) *Controllers {
	return &Controllers{
		Auth:    NewAuthController(service, issuer, adminGroup),
		Users:   NewUsersController(service),
		Domains: NewDomainsController(service),
	}
}
