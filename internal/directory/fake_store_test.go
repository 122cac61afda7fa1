package directory

import (
	"context"
	"errors"
	"sync"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
)

// fakeStore es un identity store programable que registra las llamadas.
type fakeStore struct {
	mu    sync.Mutex
	calls []string

	primary    string
	primaryErr error
	domains    []string

	authCtx *repository.AuthenticationContext
	authErr error

	updateCredsErr error
	lastCreds      []repository.Credential

	addUserResult *repository.User
	addUserErr    error
	lastBean      repository.UserBean
	lastDomain    string

	exists        bool
	domainsWith   []string
	lastClaims    []repository.Claim
	updateErr     error
	userClaims    map[string][]repository.Claim
	userClaimsErr error

	users          []repository.User
	listErr        error
	lastOffset     int
	lastLength     int
	lastMeta       repository.MetaClaim
	lastFilter     string
	lastListClaim  repository.Claim
	userGroups     map[string][]repository.Group
	groupsErr      map[string]error
	groupClaims    map[string][]repository.Claim
	groupClaimsErr error
}

var errStoreDown = errors.New("dial tcp 10.0.0.7:5432: connection refused")

func newFakeStore() *fakeStore {
	return &fakeStore{
		primary:     "PRIMARY",
		domains:     []string{"PRIMARY", "SECONDARY"},
		userClaims:  map[string][]repository.Claim{},
		userGroups:  map[string][]repository.Group{},
		groupsErr:   map[string]error{},
		groupClaims: map[string][]repository.Claim{},
	}
}

func (f *fakeStore) record(op string) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()
}

func (f *fakeStore) called(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeStore) Authenticate(_ context.Context, claim repository.Claim, creds []repository.Credential, domain string) (*repository.AuthenticationContext, error) {
	f.record("Authenticate")
	f.lastClaims = []repository.Claim{claim}
	f.lastCreds = creds
	f.lastDomain = domain
	return f.authCtx, f.authErr
}

func (f *fakeStore) UpdateUserCredentials(_ context.Context, _ string, creds []repository.Credential) error {
	f.record("UpdateUserCredentials")
	f.lastCreds = creds
	return f.updateCredsErr
}

func (f *fakeStore) AddUser(_ context.Context, bean repository.UserBean) (*repository.User, error) {
	f.record("AddUser")
	f.lastBean = bean
	return f.addUserResult, f.addUserErr
}

func (f *fakeStore) AddUserInDomain(_ context.Context, bean repository.UserBean, domain string) (*repository.User, error) {
	f.record("AddUserInDomain")
	f.lastBean = bean
	f.lastDomain = domain
	return f.addUserResult, f.addUserErr
}

func (f *fakeStore) IsUserExist(_ context.Context, claims []repository.Claim, domain string) (bool, error) {
	f.record("IsUserExist")
	f.lastClaims = claims
	f.lastDomain = domain
	return f.exists, f.listErr
}

func (f *fakeStore) ListDomainsWithUser(_ context.Context, claims []repository.Claim) ([]string, error) {
	f.record("ListDomainsWithUser")
	f.lastClaims = claims
	return f.domainsWith, f.listErr
}

func (f *fakeStore) UpdateUserClaims(_ context.Context, _ string, claims []repository.Claim) error {
	f.record("UpdateUserClaims")
	f.lastClaims = claims
	return f.updateErr
}

func (f *fakeStore) GetClaimsOfUser(_ context.Context, id string, _ []repository.MetaClaim) ([]repository.Claim, error) {
	f.record("GetClaimsOfUser")
	if f.userClaimsErr != nil {
		return nil, f.userClaimsErr
	}
	return f.userClaims[id], nil
}

func (f *fakeStore) GetDomainNames(context.Context) ([]string, error) {
	f.record("GetDomainNames")
	return f.domains, f.primaryErr
}

func (f *fakeStore) GetPrimaryDomainName(context.Context) (string, error) {
	f.record("GetPrimaryDomainName")
	return f.primary, f.primaryErr
}

func (f *fakeStore) ListUsersByClaim(_ context.Context, claim repository.Claim, offset, length int, domain string) ([]repository.User, error) {
	f.record("ListUsersByClaim")
	f.lastListClaim = claim
	f.lastOffset, f.lastLength, f.lastDomain = offset, length, domain
	return f.users, f.listErr
}

func (f *fakeStore) ListUsersByMetaClaim(_ context.Context, meta repository.MetaClaim, filter string, offset, length int, domain string) ([]repository.User, error) {
	f.record("ListUsersByMetaClaim")
	f.lastMeta, f.lastFilter = meta, filter
	f.lastOffset, f.lastLength, f.lastDomain = offset, length, domain
	return f.users, f.listErr
}

func (f *fakeStore) ListUsers(_ context.Context, offset, length int, domain string) ([]repository.User, error) {
	f.record("ListUsers")
	f.lastOffset, f.lastLength, f.lastDomain = offset, length, domain
	return f.users, f.listErr
}

func (f *fakeStore) GetGroupsOfUser(_ context.Context, id string) ([]repository.Group, error) {
	f.record("GetGroupsOfUser")
	return f.userGroups[id], f.groupsErr[id]
}

func (f *fakeStore) GetClaimsOfGroup(_ context.Context, id string, _ []repository.MetaClaim) ([]repository.Claim, error) {
	f.record("GetClaimsOfGroup")
	return f.groupClaims[id], f.groupClaimsErr
}

func (f *fakeStore) Close() error { return nil }

// staticProvider entrega siempre el mismo store (o ninguno).
type staticProvider struct{ s repository.IdentityStore }

func (p staticProvider) Current() (repository.IdentityStore, error) {
	if p.s == nil {
		return nil, errors.New("identity store not configured")
	}
	return p.s, nil
}
