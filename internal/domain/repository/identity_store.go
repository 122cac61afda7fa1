package repository

import "context"

// IdentityStore es el contrato del store de identidades externo.
//
// Convenciones de errores:
//   - ErrAuthenticationFailure: credenciales rechazadas
//   - ErrUserNotFound / ErrGroupNotFound: entidad inexistente
//   - cualquier otro error es una falla del store
type IdentityStore interface {
	// Authenticate verifica credenciales para el usuario identificado por claim.
	// domain vacío deja la elección del dominio al store.
	Authenticate(ctx context.Context, claim Claim, credentials []Credential, domain string) (*AuthenticationContext, error)

	// UpdateUserCredentials reemplaza las credenciales del usuario.
	UpdateUserCredentials(ctx context.Context, uniqueUserID string, credentials []Credential) error

	// AddUser crea un usuario en el dominio primario.
	AddUser(ctx context.Context, bean UserBean) (*User, error)

	// AddUserInDomain crea un usuario en el dominio dado.
	AddUserInDomain(ctx context.Context, bean UserBean, domain string) (*User, error)

	// IsUserExist indica si existe un usuario con esos claims en el dominio.
	IsUserExist(ctx context.Context, claims []Claim, domain string) (bool, error)

	// ListDomainsWithUser devuelve los dominios con un usuario que matchea los claims.
	ListDomainsWithUser(ctx context.Context, claims []Claim) ([]string, error)

	// UpdateUserClaims actualiza los claims del usuario.
	// La semántica de reemplazo o merge es del store.
	UpdateUserClaims(ctx context.Context, uniqueUserID string, claims []Claim) error

	// GetClaimsOfUser devuelve los claims pedidos del usuario.
	GetClaimsOfUser(ctx context.Context, uniqueUserID string, metaClaims []MetaClaim) ([]Claim, error)

	GetDomainNames(ctx context.Context) ([]string, error)
	GetPrimaryDomainName(ctx context.Context) (string, error)

	// ListUsersByClaim pagina usuarios cuyo claim coincide exactamente.
	ListUsersByClaim(ctx context.Context, claim Claim, offset, length int, domain string) ([]User, error)

	// ListUsersByMetaClaim pagina usuarios cuyo claim matchea el filtro.
	// El filtro admite el comodín '*'.
	ListUsersByMetaClaim(ctx context.Context, metaClaim MetaClaim, filter string, offset, length int, domain string) ([]User, error)

	// ListUsers pagina usuarios del dominio sin filtro.
	ListUsers(ctx context.Context, offset, length int, domain string) ([]User, error)

	// GetGroupsOfUser devuelve los grupos del usuario en el orden del store.
	GetGroupsOfUser(ctx context.Context, uniqueUserID string) ([]Group, error)

	// GetClaimsOfGroup devuelve los claims pedidos del grupo.
	GetClaimsOfGroup(ctx context.Context, uniqueGroupID string, metaClaims []MetaClaim) ([]Claim, error)

	// Close libera recursos del adapter.
	Close() error
}
