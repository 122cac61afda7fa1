// Package memory implementa un identity store en memoria.
//
// Sirve para desarrollo, demos y tests: se puede sembrar desde un YAML
// (ver seed.go) y no persiste nada entre reinicios.
package memory

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/security/password"
	"github.com/dropDatabas3/dirportal/internal/store"
	"github.com/google/uuid"
)

func init() {
	store.RegisterAdapter(&memoryAdapter{})
}

type memoryAdapter struct{}

func (a *memoryAdapter) Name() string { return "memory" }

func (a *memoryAdapter) Open(ctx context.Context, cfg store.AdapterConfig) (repository.IdentityStore, error) {
	s := New(Options{PrimaryDomain: cfg.PrimaryDomain, UsernameClaimURI: cfg.UsernameClaimURI})
	if cfg.SeedFile != "" {
		if err := s.LoadSeedFile(cfg.SeedFile); err != nil {
			return nil, fmt.Errorf("memory: seed: %w", err)
		}
	}
	return s, nil
}

// Options configura el store en memoria.
type Options struct {
	PrimaryDomain    string
	UsernameClaimURI string
	// HashParams para contraseñas nuevas. Zero value = password.Default.
	HashParams password.Params
}

type userRec struct {
	id     string
	domain string
	state  repository.UserState
	claims []repository.Claim
	hash   string
	groups []string
}

type groupRec struct {
	id     string
	domain string
	claims []repository.Claim
}

// Store es el identity store en memoria. Seguro para uso concurrente.
type Store struct {
	mu          sync.RWMutex
	primary     string
	domains     []string
	users       []*userRec
	byID        map[string]*userRec
	groups      map[string]*groupRec
	usernameURI string
	params      password.Params
}

var _ repository.IdentityStore = (*Store)(nil)

// New crea un store vacío con el dominio primario ya registrado.
func New(opts Options) *Store {
	if opts.PrimaryDomain == "" {
		opts.PrimaryDomain = "PRIMARY"
	}
	if opts.UsernameClaimURI == "" {
		opts.UsernameClaimURI = "http://wso2.org/claims/username"
	}
	if opts.HashParams == (password.Params{}) {
		opts.HashParams = password.Default
	}
	return &Store{
		primary:     opts.PrimaryDomain,
		domains:     []string{opts.PrimaryDomain},
		byID:        make(map[string]*userRec),
		groups:      make(map[string]*groupRec),
		usernameURI: opts.UsernameClaimURI,
		params:      opts.HashParams,
	}
}

// AddDomain registra un dominio secundario. Idempotente.
func (s *Store) AddDomain(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasDomain(name) {
		s.domains = append(s.domains, name)
	}
}

// AddGroup registra un grupo con su nombre visible bajo nameClaimURI.
func (s *Store) AddGroup(id, domain string, claims []repository.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if domain == "" {
		domain = s.primary
	}
	if !s.hasDomain(domain) {
		return fmt.Errorf("group %s: %w", id, repository.ErrDomainNotFound)
	}
	s.groups[id] = &groupRec{id: id, domain: domain, claims: append([]repository.Claim(nil), claims...)}
	return nil
}

// AssignGroup agrega el usuario al grupo, al final de su lista.
func (s *Store) AssignGroup(userID, groupID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	if _, ok := s.groups[groupID]; !ok {
		return repository.ErrGroupNotFound
	}
	u.groups = append(u.groups, groupID)
	return nil
}

// SetState cambia el estado crudo del usuario.
func (s *Store) SetState(userID string, state repository.UserState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.state = state
	return nil
}

func (s *Store) hasDomain(name string) bool {
	for _, d := range s.domains {
		if d == name {
			return true
		}
	}
	return false
}

func (s *Store) domainOrPrimary(domain string) (string, error) {
	if domain == "" {
		return s.primary, nil
	}
	if !s.hasDomain(domain) {
		return "", fmt.Errorf("%s: %w", domain, repository.ErrDomainNotFound)
	}
	return domain, nil
}

func toUser(u *userRec) repository.User {
	return repository.User{UniqueUserID: u.id, DomainName: u.domain, State: u.state}
}

func hasClaim(claims []repository.Claim, uri, value string) bool {
	for _, c := range claims {
		if c.ClaimURI == uri && c.Value == value {
			return true
		}
	}
	return false
}

func matchesAll(u *userRec, want []repository.Claim) bool {
	if len(want) == 0 {
		return false
	}
	for _, c := range want {
		if !hasClaim(u.claims, c.ClaimURI, c.Value) {
			return false
		}
	}
	return true
}

func passwordOf(creds []repository.Credential) (string, bool) {
	for _, c := range creds {
		if c.Type == repository.CredentialPassword {
			return string(c.Secret), true
		}
	}
	return "", false
}

// ─── Autenticación y credenciales ───

func (s *Store) Authenticate(ctx context.Context, claim repository.Claim, credentials []repository.Credential, domain string) (*repository.AuthenticationContext, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.domainOrPrimary(domain)
	if err != nil {
		return nil, repository.ErrAuthenticationFailure
	}
	plain, ok := passwordOf(credentials)
	if !ok {
		return nil, fmt.Errorf("no password credential: %w", repository.ErrAuthenticationFailure)
	}
	for _, u := range s.users {
		if u.domain != d || !hasClaim(u.claims, claim.ClaimURI, claim.Value) {
			continue
		}
		if u.hash == "" || !password.Verify(plain, u.hash) {
			return nil, repository.ErrAuthenticationFailure
		}
		if u.state.IsInGroup(repository.GroupDisabled) || u.state.IsInGroup(repository.GroupLocked) {
			return nil, fmt.Errorf("user %s: %w", u.state, repository.ErrAuthenticationFailure)
		}
		user := toUser(u)
		return &repository.AuthenticationContext{Authenticated: true, User: &user}, nil
	}
	return nil, repository.ErrAuthenticationFailure
}

func (s *Store) UpdateUserCredentials(ctx context.Context, uniqueUserID string, credentials []repository.Credential) error {
	plain, ok := passwordOf(credentials)
	if !ok {
		return fmt.Errorf("no password credential: %w", repository.ErrInvalidInput)
	}
	hash, err := password.Hash(s.params, plain)
	if err != nil {
		return fmt.Errorf("%v: %w", err, repository.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[uniqueUserID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.hash = hash
	return nil
}

// ─── Alta y existencia ───

func (s *Store) AddUser(ctx context.Context, bean repository.UserBean) (*repository.User, error) {
	return s.AddUserInDomain(ctx, bean, "")
}

func (s *Store) AddUserInDomain(ctx context.Context, bean repository.UserBean, domain string) (*repository.User, error) {
	var hash string
	if plain, ok := passwordOf(bean.Credentials); ok {
		h, err := password.Hash(s.params, plain)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, repository.ErrInvalidInput)
		}
		hash = h
	}
	return s.insert(uuid.NewString(), domain, repository.StateUnlockedUnverified, bean.Claims, hash)
}

func (s *Store) insert(id, domain string, state repository.UserState, claims []repository.Claim, hash string) (*repository.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.domainOrPrimary(domain)
	if err != nil {
		return nil, err
	}
	if username, ok := repository.FirstValue(claims, s.usernameURI); ok {
		for _, u := range s.users {
			if u.domain == d && hasClaim(u.claims, s.usernameURI, username) {
				return nil, fmt.Errorf("username %q in %s: %w", username, d, repository.ErrConflict)
			}
		}
	}
	if _, dup := s.byID[id]; dup {
		return nil, fmt.Errorf("user id %s: %w", id, repository.ErrConflict)
	}

	u := &userRec{
		id:     id,
		domain: d,
		state:  state,
		claims: append([]repository.Claim(nil), claims...),
		hash:   hash,
	}
	s.users = append(s.users, u)
	s.byID[id] = u
	out := toUser(u)
	return &out, nil
}

func (s *Store) IsUserExist(ctx context.Context, claims []repository.Claim, domain string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.domainOrPrimary(domain)
	if err != nil {
		return false, err
	}
	for _, u := range s.users {
		if u.domain == d && matchesAll(u, claims) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListDomainsWithUser(ctx context.Context, claims []repository.Claim) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []string{}
	for _, d := range s.domains {
		for _, u := range s.users {
			if u.domain == d && matchesAll(u, claims) {
				out = append(out, d)
				break
			}
		}
	}
	return out, nil
}

// ─── Claims ───

// UpdateUserClaims reemplaza los valores de los URIs recibidos y conserva el resto.
func (s *Store) UpdateUserClaims(ctx context.Context, uniqueUserID string, claims []repository.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byID[uniqueUserID]
	if !ok {
		return repository.ErrUserNotFound
	}
	replaced := make(map[string]bool, len(claims))
	for _, c := range claims {
		replaced[c.ClaimURI] = true
	}
	kept := u.claims[:0:0]
	for _, c := range u.claims {
		if !replaced[c.ClaimURI] {
			kept = append(kept, c)
		}
	}
	u.claims = append(kept, claims...)
	return nil
}

func selectClaims(claims []repository.Claim, metas []repository.MetaClaim) []repository.Claim {
	want := make(map[string]bool, len(metas))
	for _, m := range metas {
		want[m.ClaimURI] = true
	}
	out := []repository.Claim{}
	for _, c := range claims {
		if want[c.ClaimURI] {
			out = append(out, c)
		}
	}
	return out
}

func (s *Store) GetClaimsOfUser(ctx context.Context, uniqueUserID string, metaClaims []repository.MetaClaim) ([]repository.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[uniqueUserID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return selectClaims(u.claims, metaClaims), nil
}

// ─── Dominios ───

func (s *Store) GetDomainNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.domains...), nil
}

func (s *Store) GetPrimaryDomainName(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.primary, nil
}

// ─── Listados ───

func (s *Store) page(domain string, offset, length int, keep func(*userRec) bool) ([]repository.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, err := s.domainOrPrimary(domain)
	if err != nil {
		return nil, err
	}
	out := []repository.User{}
	skipped := 0
	for _, u := range s.users {
		if u.domain != d || !keep(u) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if length > 0 && len(out) >= length {
			break
		}
		out = append(out, toUser(u))
	}
	return out, nil
}

func (s *Store) ListUsersByClaim(ctx context.Context, claim repository.Claim, offset, length int, domain string) ([]repository.User, error) {
	return s.page(domain, offset, length, func(u *userRec) bool {
		return hasClaim(u.claims, claim.ClaimURI, claim.Value)
	})
}

func (s *Store) ListUsersByMetaClaim(ctx context.Context, metaClaim repository.MetaClaim, filter string, offset, length int, domain string) ([]repository.User, error) {
	re, err := wildcard(filter)
	if err != nil {
		return nil, fmt.Errorf("filter %q: %w", filter, repository.ErrInvalidInput)
	}
	return s.page(domain, offset, length, func(u *userRec) bool {
		for _, c := range u.claims {
			if c.ClaimURI == metaClaim.ClaimURI && re.MatchString(c.Value) {
				return true
			}
		}
		return false
	})
}

func (s *Store) ListUsers(ctx context.Context, offset, length int, domain string) ([]repository.User, error) {
	return s.page(domain, offset, length, func(*userRec) bool { return true })
}

// wildcard compila un filtro donde '*' matchea cualquier secuencia.
func wildcard(filter string) (*regexp.Regexp, error) {
	parts := strings.Split(filter, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.Compile("^" + strings.Join(parts, ".*") + "$")
}

// ─── Grupos ───

func (s *Store) GetGroupsOfUser(ctx context.Context, uniqueUserID string) ([]repository.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.byID[uniqueUserID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	out := make([]repository.Group, 0, len(u.groups))
	for _, gid := range u.groups {
		g, ok := s.groups[gid]
		if !ok {
			return nil, fmt.Errorf("group %s of user %s: %w", gid, u.id, repository.ErrGroupNotFound)
		}
		out = append(out, repository.Group{UniqueGroupID: g.id, DomainName: g.domain})
	}
	return out, nil
}

func (s *Store) GetClaimsOfGroup(ctx context.Context, uniqueGroupID string, metaClaims []repository.MetaClaim) ([]repository.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.groups[uniqueGroupID]
	if !ok {
		return nil, repository.ErrGroupNotFound
	}
	return selectClaims(g.claims, metaClaims), nil
}

func (s *Store) Close() error { return nil }
