package repository

// Credential es un desafío de credencial enviado al store.
// Type identifica el tipo ("password", ...); Secret viaja sin hashear
// y el store decide cómo verificarlo o persistirlo.
type Credential struct {
	Type   string
	Secret []byte
}

// CredentialPassword es el tipo de credencial por contraseña.
const CredentialPassword = "password"

// PasswordCredential arma un desafío de contraseña.
func PasswordCredential(password string) Credential {
	return Credential{Type: CredentialPassword, Secret: []byte(password)}
}
