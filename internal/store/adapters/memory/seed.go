package memory

import (
	"fmt"
	"os"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/security/password"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Seed describe el contenido inicial del store.
//
//	dialect: http://wso2.org/claims
//	domains: [SECONDARY]
//	groups:
//	  - id: g-admins
//	    claims: {http://wso2.org/claims/groupname: admins}
//	users:
//	  - username: bob
//	    password: s3cret
//	    state: UNLOCKED__VERIFIED
//	    claims: {http://wso2.org/claims/email: bob@example.com}
//	    groups: [g-admins]
type Seed struct {
	Dialect string      `yaml:"dialect"`
	Domains []string    `yaml:"domains"`
	Groups  []SeedGroup `yaml:"groups"`
	Users   []SeedUser  `yaml:"users"`
}

type SeedGroup struct {
	ID     string            `yaml:"id"`
	Domain string            `yaml:"domain"`
	Claims map[string]string `yaml:"claims"`
}

type SeedUser struct {
	ID           string            `yaml:"id"`
	Domain       string            `yaml:"domain"`
	Username     string            `yaml:"username"`
	Password     string            `yaml:"password"`
	PasswordHash string            `yaml:"password_hash"`
	State        string            `yaml:"state"`
	Claims       map[string]string `yaml:"claims"`
	Groups       []string          `yaml:"groups"`
}

// LoadSeedFile lee un YAML y lo aplica con ApplySeed.
func (s *Store) LoadSeedFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return s.ApplySeed(seed)
}

// ApplySeed agrega dominios, grupos y usuarios en ese orden.
func (s *Store) ApplySeed(seed Seed) error {
	for _, d := range seed.Domains {
		s.AddDomain(d)
	}
	for _, g := range seed.Groups {
		if err := s.AddGroup(g.ID, g.Domain, claimList(seed.Dialect, g.Claims)); err != nil {
			return err
		}
	}
	for i, u := range seed.Users {
		if err := s.seedUser(seed.Dialect, u); err != nil {
			return fmt.Errorf("user #%d (%s): %w", i, u.Username, err)
		}
	}
	return nil
}

func (s *Store) seedUser(dialect string, su SeedUser) error {
	hash := su.PasswordHash
	if hash == "" && su.Password != "" {
		h, err := password.Hash(s.params, su.Password)
		if err != nil {
			return err
		}
		hash = h
	}
	state := repository.UserState(su.State)
	if su.State == "" {
		state = repository.StateUnlockedVerified
	}
	if !state.Valid() {
		return fmt.Errorf("unknown state %q: %w", su.State, repository.ErrInvalidInput)
	}
	id := su.ID
	if id == "" {
		id = uuid.NewString()
	}

	claims := claimList(dialect, su.Claims)
	if su.Username != "" {
		claims = append([]repository.Claim{{DialectURI: dialect, ClaimURI: s.usernameURI, Value: su.Username}}, claims...)
	}
	if _, err := s.insert(id, su.Domain, state, claims, hash); err != nil {
		return err
	}
	for _, g := range su.Groups {
		if err := s.AssignGroup(id, g); err != nil {
			return fmt.Errorf("group %s: %w", g, err)
		}
	}
	return nil
}

func claimList(dialect string, m map[string]string) []repository.Claim {
	out := make([]repository.Claim, 0, len(m))
	for _, uri := range sortedKeys(m) {
		out = append(out, repository.Claim{DialectURI: dialect, ClaimURI: uri, Value: m[uri]})
	}
	return out
}
