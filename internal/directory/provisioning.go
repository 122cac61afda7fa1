package directory

import (
	"context"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// AddUser crea un usuario en el dominio que elija el store.
// La proyección devuelta no trae username: no se lee de los claims de entrada.
func (s *service) AddUser(ctx context.Context, claims, credentials map[string]string) (*User, error) {
	log := opLogger(ctx, "AddUser")

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	u, err := is.AddUser(ctx, s.userBean(claims, credentials))
	if err != nil {
		return nil, storeFailure(log, err, MsgAddUserFailed)
	}
	log.Info("user added", logger.UserID(u.UniqueUserID), logger.Domain(u.DomainName))
	return &User{UserID: u.UniqueUserID, DomainName: u.DomainName}, nil
}

// AddUserInDomain crea un usuario en el dominio indicado.
func (s *service) AddUserInDomain(ctx context.Context, claims, credentials map[string]string, domain string) (*User, error) {
	log := opLogger(ctx, "AddUserInDomain").With(logger.Domain(domain))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	u, err := is.AddUserInDomain(ctx, s.userBean(claims, credentials), domain)
	if err != nil {
		return nil, storeFailure(log, err, MsgAddUserFailed)
	}
	log.Info("user added", logger.UserID(u.UniqueUserID))
	return &User{UserID: u.UniqueUserID, DomainName: u.DomainName}, nil
}

func (s *service) userBean(claims, credentials map[string]string) repository.UserBean {
	return repository.UserBean{
		Claims:      s.buildClaims(claims, false),
		Credentials: buildCredentials(credentials),
	}
}

// IsUserExist indica si hay un usuario con esos claims en el dominio.
func (s *service) IsUserExist(ctx context.Context, claims map[string]string, domain string) (bool, error) {
	log := opLogger(ctx, "IsUserExist").With(logger.Domain(domain))

	is, err := s.store(log)
	if err != nil {
		return false, err
	}
	exists, err := is.IsUserExist(ctx, s.buildClaims(claims, false), domain)
	if err != nil {
		log.Error(MsgUserExistFailed, logger.Err(err))
		return false, infrastructure(MsgUserExistFailed)
	}
	return exists, nil
}

// ListDomainsWithUser devuelve los dominios donde existe un usuario con esos claims.
func (s *service) ListDomainsWithUser(ctx context.Context, claims map[string]string) ([]string, error) {
	log := opLogger(ctx, "ListDomainsWithUser")

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	domains, err := is.ListDomainsWithUser(ctx, s.buildClaims(claims, false))
	if err != nil {
		log.Error(MsgUserExistFailed, logger.Err(err))
		return nil, infrastructure(MsgUserExistFailed)
	}
	if domains == nil {
		domains = []string{}
	}
	return domains, nil
}
