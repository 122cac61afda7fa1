// Package directory contiene DTOs de la API del directorio.
package directory

import dir "github.com/dropDatabas3/dirportal/internal/directory"

// LoginRequest representa la solicitud de login por password.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Domain   string `json:"domain,omitempty"`
}

// LoginResponse representa la respuesta exitosa de login.
type LoginResponse struct {
	User        dir.User `json:"user"`
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"` // "Bearer"
	ExpiresIn   int64    `json:"expires_in"` // segundos
}

type UpdatePasswordRequest struct {
	Username    string `json:"username"`
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
	Domain      string `json:"domain,omitempty"`
}
