package directory

import (
	"context"
	"errors"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"go.uber.org/zap"
)

// Service es la capa de directorio que consume el portal.
type Service interface {
	Authenticate(ctx context.Context, username, password, domain string) (*User, error)
	UpdatePassword(ctx context.Context, username, oldPassword, newPassword, domain string) error

	AddUser(ctx context.Context, claims, credentials map[string]string) (*User, error)
	AddUserInDomain(ctx context.Context, claims, credentials map[string]string, domain string) (*User, error)
	IsUserExist(ctx context.Context, claims map[string]string, domain string) (bool, error)
	ListDomainsWithUser(ctx context.Context, claims map[string]string) ([]string, error)

	UpdateUserProfile(ctx context.Context, uniqueUserID string, claims map[string]string) error
	GetClaimsOfUser(ctx context.Context, uniqueUserID string, claimURIs []string) ([]repository.Claim, error)
	GetGroupNamesOfUser(ctx context.Context, uniqueUserID string) ([]string, error)

	GetDomainNames(ctx context.Context) ([]string, error)
	GetPrimaryDomainName(ctx context.Context) (string, error)

	ListUsers(ctx context.Context, claimURI, claimValue string, offset, length int, domain string) ([]User, error)
	GetFilteredList(ctx context.Context, offset, length int, claimURI, claimValue, domain string) ([]ListEntry, error)
	GetUserList(ctx context.Context, offset, length int, domain string) ([]ListEntry, error)
}

// StoreProvider entrega el identity store activo.
// *store.Binding lo implementa.
type StoreProvider interface {
	Current() (repository.IdentityStore, error)
}

// ClaimsConfig fija los URIs de claims que usa el directorio.
type ClaimsConfig struct {
	DialectURI        string
	UsernameClaimURI  string
	GroupNameClaimURI string
}

// Claims por defecto del dialecto raíz.
const (
	DefaultDialectURI        = "http://wso2.org/claims"
	DefaultUsernameClaimURI  = DefaultDialectURI + "/username"
	DefaultGroupNameClaimURI = DefaultDialectURI + "/groupname"
)

// Deps contiene las dependencias del directorio.
type Deps struct {
	Stores StoreProvider
	Claims ClaimsConfig
}

type service struct {
	stores StoreProvider
	claims ClaimsConfig
	locks  *keyedMutex
}

// NewService crea el directorio. Los ClaimsConfig vacíos toman los defaults.
func NewService(deps Deps) Service {
	c := deps.Claims
	if c.DialectURI == "" {
		c.DialectURI = DefaultDialectURI
	}
	if c.UsernameClaimURI == "" {
		c.UsernameClaimURI = DefaultUsernameClaimURI
	}
	if c.GroupNameClaimURI == "" {
		c.GroupNameClaimURI = DefaultGroupNameClaimURI
	}
	logger.L().Info("directory service ready",
		logger.Component("directory"),
		logger.ClaimURI(c.UsernameClaimURI),
	)
	return &service{stores: deps.Stores, claims: c, locks: newKeyedMutex()}
}

// opLogger arma el logger scoped de una operación.
func opLogger(ctx context.Context, op string) *zap.Logger {
	return logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("directory"),
		logger.Op(op),
	)
}

// store devuelve el identity store activo. Sin store, loguea y devuelve
// un error de infraestructura.
func (s *service) store(log *zap.Logger) (repository.IdentityStore, error) {
	if s.stores == nil {
		log.Error("identity store provider missing")
		return nil, infrastructure(MsgStoreUnavailable)
	}
	is, err := s.stores.Current()
	if err != nil {
		log.Error("identity store unavailable", logger.Err(err))
		return nil, infrastructure(MsgStoreUnavailable)
	}
	return is, nil
}

// storeFailure traduce un error del store: loguea el detalle y devuelve
// el mensaje opaco. ErrUserNotFound se reporta como KindNotFound y
// ErrConflict como KindConflict.
func storeFailure(log *zap.Logger, err error, msg string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		log.Debug(msg, logger.Err(err))
		return notFound(MsgUserNotFound)
	case errors.Is(err, repository.ErrConflict):
		log.Info(msg, logger.Err(err))
		return conflict(MsgUserAlreadyExists)
	}
	log.Error(msg, logger.Err(err))
	return infrastructure(msg)
}
