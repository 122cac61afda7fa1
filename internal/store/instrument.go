package store

import (
	"context"
	"time"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/metrics"
)

// Instrument envuelve un identity store registrando métricas por operación.
func Instrument(next repository.IdentityStore, driver string) repository.IdentityStore {
	return &instrumented{next: next, driver: driver}
}

type instrumented struct {
	next   repository.IdentityStore
	driver string
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return "ok"
	case repository.IsAuthenticationFailure(err):
		return "auth_failure"
	case repository.IsNotFound(err):
		return "not_found"
	default:
		return "error"
	}
}

// observe se usa con defer; err se lee al terminar la llamada.
func (i *instrumented) observe(op string, start time.Time, err *error) {
	metrics.ObserveStoreCall(i.driver, op, resultOf(*err), start)
}

func (i *instrumented) Authenticate(ctx context.Context, claim repository.Claim, credentials []repository.Credential, domain string) (_ *repository.AuthenticationContext, err error) {
	defer i.observe("Authenticate", time.Now(), &err)
	return i.next.Authenticate(ctx, claim, credentials, domain)
}

func (i *instrumented) UpdateUserCredentials(ctx context.Context, uniqueUserID string, credentials []repository.Credential) (err error) {
	defer i.observe("UpdateUserCredentials", time.Now(), &err)
	return i.next.UpdateUserCredentials(ctx, uniqueUserID, credentials)
}

func (i *instrumented) AddUser(ctx context.Context, bean repository.UserBean) (_ *repository.User, err error) {
	defer i.observe("AddUser", time.Now(), &err)
	return i.next.AddUser(ctx, bean)
}

func (i *instrumented) AddUserInDomain(ctx context.Context, bean repository.UserBean, domain string) (_ *repository.User, err error) {
	defer i.observe("AddUserInDomain", time.Now(), &err)
	return i.next.AddUserInDomain(ctx, bean, domain)
}

func (i *instrumented) IsUserExist(ctx context.Context, claims []repository.Claim, domain string) (_ bool, err error) {
	defer i.observe("IsUserExist", time.Now(), &err)
	return i.next.IsUserExist(ctx, claims, domain)
}

func (i *instrumented) ListDomainsWithUser(ctx context.Context, claims []repository.Claim) (_ []string, err error) {
	defer i.observe("ListDomainsWithUser", time.Now(), &err)
	return i.next.ListDomainsWithUser(ctx, claims)
}

func (i *instrumented) UpdateUserClaims(ctx context.Context, uniqueUserID string, claims []repository.Claim) (err error) {
	defer i.observe("UpdateUserClaims", time.Now(), &err)
	return i.next.UpdateUserClaims(ctx, uniqueUserID, claims)
}

func (i *instrumented) GetClaimsOfUser(ctx context.Context, uniqueUserID string, metaClaims []repository.MetaClaim) (_ []repository.Claim, err error) {
	defer i.observe("GetClaimsOfUser", time.Now(), &err)
	return i.next.GetClaimsOfUser(ctx, uniqueUserID, metaClaims)
}

func (i *instrumented) GetDomainNames(ctx context.Context) (_ []string, err error) {
	defer i.observe("GetDomainNames", time.Now(), &err)
	return i.next.GetDomainNames(ctx)
}

func (i *instrumented) GetPrimaryDomainName(ctx context.Context) (_ string, err error) {
	defer i.observe("GetPrimaryDomainName", time.Now(), &err)
	return i.next.GetPrimaryDomainName(ctx)
}

func (i *instrumented) ListUsersByClaim(ctx context.Context, claim repository.Claim, offset, length int, domain string) (_ []repository.User, err error) {
	defer i.observe("ListUsersByClaim", time.Now(), &err)
	return i.next.ListUsersByClaim(ctx, claim, offset, length, domain)
}

func (i *instrumented) ListUsersByMetaClaim(ctx context.Context, metaClaim repository.MetaClaim, filter string, offset, length int, domain string) (_ []repository.User, err error) {
	defer i.observe("ListUsersByMetaClaim", time.Now(), &err)
	return i.next.ListUsersByMetaClaim(ctx, metaClaim, filter, offset, length, domain)
}

func (i *instrumented) ListUsers(ctx context.Context, offset, length int, domain string) (_ []repository.User, err error) {
	defer i.observe("ListUsers", time.Now(), &err)
	return i.next.ListUsers(ctx, offset, length, domain)
}

func (i *instrumented) GetGroupsOfUser(ctx context.Context, uniqueUserID string) (_ []repository.Group, err error) {
	defer i.observe("GetGroupsOfUser", time.Now(), &err)
	return i.next.GetGroupsOfUser(ctx, uniqueUserID)
}

func (i *instrumented) GetClaimsOfGroup(ctx context.Context, uniqueGroupID string, metaClaims []repository.MetaClaim) (_ []repository.Claim, err error) {
	defer i.observe("GetClaimsOfGroup", time.Now(), &err)
	return i.next.GetClaimsOfGroup(ctx, uniqueGroupID, metaClaims)
}

func (i *instrumented) Close() error { return i.next.Close() }
