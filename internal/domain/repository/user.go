package repository

// User es un usuario tal como lo devuelve el store.
// Los claims y grupos no viajan con el usuario: se piden aparte.
type User struct {
	UniqueUserID string
	DomainName   string
	State        UserState
}

// Group es un grupo del store. Sus claims se piden aparte.
type Group struct {
	UniqueGroupID string
	DomainName    string
}

// UserBean contiene los datos para crear un usuario.
type UserBean struct {
	Claims      []Claim
	Credentials []Credential
}

// AuthenticationContext es el resultado de Authenticate.
// User es nil cuando el store no autenticó pero tampoco devolvió error.
type AuthenticationContext struct {
	Authenticated bool
	User          *User
}
