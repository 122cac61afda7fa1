package directory

import (
	"context"
	"strings"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
)

// PageBounds acota la página antes de llegar al store:
// offset negativo → 0; length fuera de (0, MaxRecordLength] → MaxRecordLength.
func PageBounds(offset, length int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if length <= 0 || length > MaxRecordLength {
		length = MaxRecordLength
	}
	return offset, length
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// resolveDomain devuelve domain o, si está vacío, el dominio primario.
func (s *service) resolveDomain(ctx context.Context, domain string) (string, error) {
	if !blank(domain) {
		return domain, nil
	}
	return s.GetPrimaryDomainName(ctx)
}

// ListUsers busca usuarios cuyo claim coincide con (claimURI, claimValue).
// Devuelve proyecciones de identidad sin username.
func (s *service) ListUsers(ctx context.Context, claimURI, claimValue string, offset, length int, domain string) ([]User, error) {
	offset, length = PageBounds(offset, length)
	domain, err := s.resolveDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	log := opLogger(ctx, "ListUsers").With(logger.ClaimURI(claimURI), logger.Domain(domain), logger.Page(offset, length))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	claim := repository.Claim{DialectURI: s.claims.DialectURI, ClaimURI: claimURI, Value: claimValue}
	found, err := is.ListUsersByClaim(ctx, claim, offset, length, domain)
	if err != nil {
		log.Error(MsgListUsersFailed, logger.Err(err))
		return nil, infrastructure(MsgListUsersFailed)
	}

	users := make([]User, 0, len(found))
	for _, u := range found {
		users = append(users, User{UserID: u.UniqueUserID, DomainName: u.DomainName})
	}
	return users, nil
}

// GetFilteredList lista usuarios filtrando por claim. Si claimURI o
// claimValue están vacíos, equivale a GetUserList.
func (s *service) GetFilteredList(ctx context.Context, offset, length int, claimURI, claimValue, domain string) ([]ListEntry, error) {
	offset, length = PageBounds(offset, length)
	domain, err := s.resolveDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if blank(claimURI) || blank(claimValue) {
		return s.GetUserList(ctx, offset, length, domain)
	}
	log := opLogger(ctx, "GetFilteredList").With(logger.ClaimURI(claimURI), logger.Domain(domain), logger.Page(offset, length))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	users, err := is.ListUsersByMetaClaim(ctx, s.metaClaim(claimURI), claimValue, offset, length, domain)
	if err != nil {
		log.Error(MsgRetrieveUsersFailed, logger.Err(err))
		return nil, infrastructure(MsgRetrieveUsersFailed)
	}
	return s.project(ctx, is, users)
}

// GetUserList lista una página de usuarios del dominio sin filtro.
func (s *service) GetUserList(ctx context.Context, offset, length int, domain string) ([]ListEntry, error) {
	offset, length = PageBounds(offset, length)
	domain, err := s.resolveDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	log := opLogger(ctx, "GetUserList").With(logger.Domain(domain), logger.Page(offset, length))

	is, err := s.store(log)
	if err != nil {
		return nil, err
	}
	users, err := is.ListUsers(ctx, offset, length, domain)
	if err != nil {
		log.Error(MsgRetrieveUsersFailed, logger.Err(err))
		return nil, infrastructure(MsgRetrieveUsersFailed)
	}
	return s.project(ctx, is, users)
}
