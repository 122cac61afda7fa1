// Package jwt emite y valida los tokens de sesión del portal.
package jwt

import (
	"errors"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	ErrWeakSecret    = errors.New("session secret must be at least 32 bytes")
	ErrInvalidToken  = errors.New("invalid_jwt")
	ErrInvalidIssuer = errors.New("invalid_issuer")
)

// SessionClaims son los claims del token de sesión: el sujeto es el
// unique user id y el dominio viaja aparte. Admin habilita la gestión de
// otros usuarios.
type SessionClaims struct {
	Username string `json:"usr"`
	Domain   string `json:"dom"`
	Admin    bool   `json:"adm,omitempty"`
	jwtv5.RegisteredClaims
}

// Issuer firma tokens de sesión con HMAC-SHA256.
type Issuer struct {
	Iss string        // "iss"
	TTL time.Duration // TTL de la sesión (ej: 15m)

	secret []byte
	now    func() time.Time
}

func NewIssuer(iss string, secret []byte, ttl time.Duration) (*Issuer, error) {
	if len(secret) < 32 {
		return nil, ErrWeakSecret
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &Issuer{Iss: iss, TTL: ttl, secret: secret, now: time.Now}, nil
}

// Issue emite un token de sesión para el usuario autenticado.
func (i *Issuer) Issue(userID, username, domain string, admin bool) (string, time.Time, error) {
	now := i.now().UTC()
	exp := now.Add(i.TTL)

	claims := SessionClaims{
		Username: username,
		Domain:   domain,
		Admin:    admin,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    i.Iss,
			Subject:   userID,
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(exp),
		},
	}
	tk := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims)
	tk.Header["typ"] = "JWT"

	signed, err := tk.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}
