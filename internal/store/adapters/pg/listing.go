package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
)

// ─── Dominios ───

func (s *Store) GetDomainNames(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT name FROM directory_domain ORDER BY is_primary DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("pg: domain names: %w", err)
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *Store) GetPrimaryDomainName(ctx context.Context) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `SELECT name FROM directory_domain WHERE is_primary`).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("primary: %w", repository.ErrDomainNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("pg: primary domain: %w", err)
	}
	return name, nil
}

// ─── Listados ───

const userColumns = `u.id::text, u.domain, u.state`

func (s *Store) ListUsersByClaim(ctx context.Context, claim repository.Claim, offset, length int, domain string) ([]repository.User, error) {
	d, err := s.checkDomain(ctx, s.pool, domain)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM directory_user u
		WHERE u.domain = $1 AND EXISTS (
			SELECT 1 FROM directory_user_claim c WHERE c.user_id = u.id AND c.uri = $2 AND c.value = $3)
		ORDER BY u.seq OFFSET $4 LIMIT $5`,
		d, claim.ClaimURI, claim.Value, offset, length)
	if err != nil {
		return nil, fmt.Errorf("pg: list users by claim: %w", err)
	}
	return scanUsers(rows)
}

func (s *Store) ListUsersByMetaClaim(ctx context.Context, metaClaim repository.MetaClaim, filter string, offset, length int, domain string) ([]repository.User, error) {
	d, err := s.checkDomain(ctx, s.pool, domain)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM directory_user u
		WHERE u.domain = $1 AND EXISTS (
			SELECT 1 FROM directory_user_claim c
			WHERE c.user_id = u.id AND c.uri = $2 AND c.value LIKE $3 ESCAPE '\')
		ORDER BY u.seq OFFSET $4 LIMIT $5`,
		d, metaClaim.ClaimURI, likePattern(filter), offset, length)
	if err != nil {
		return nil, fmt.Errorf("pg: list users by filter: %w", err)
	}
	return scanUsers(rows)
}

func (s *Store) ListUsers(ctx context.Context, offset, length int, domain string) ([]repository.User, error) {
	d, err := s.checkDomain(ctx, s.pool, domain)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM directory_user u
		WHERE u.domain = $1
		ORDER BY u.seq OFFSET $2 LIMIT $3`, d, offset, length)
	if err != nil {
		return nil, fmt.Errorf("pg: list users: %w", err)
	}
	return scanUsers(rows)
}

// likePattern traduce el comodín '*' a LIKE escapando % y _.
func likePattern(filter string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`, `*`, `%`)
	return r.Replace(filter)
}

// ─── Grupos ───

func (s *Store) GetGroupsOfUser(ctx context.Context, uniqueUserID string) ([]repository.Group, error) {
	if err := s.userExists(ctx, s.pool, uniqueUserID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT g.id, g.domain FROM directory_group_member m
		JOIN directory_group g ON g.id = m.group_id
		WHERE m.user_id::text = $1
		ORDER BY m.seq`, uniqueUserID)
	if err != nil {
		return nil, fmt.Errorf("pg: groups of user: %w", err)
	}
	defer rows.Close()
	out := []repository.Group{}
	for rows.Next() {
		var g repository.Group
		if err := rows.Scan(&g.UniqueGroupID, &g.DomainName); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *Store) GetClaimsOfGroup(ctx context.Context, uniqueGroupID string, metaClaims []repository.MetaClaim) ([]repository.Claim, error) {
	var one int
	err := s.pool.QueryRow(ctx, `SELECT 1 FROM directory_group WHERE id = $1`, uniqueGroupID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg: group lookup: %w", err)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT dialect, uri, value FROM directory_group_claim
		WHERE group_id = $1 AND uri = ANY($2)
		ORDER BY ord`, uniqueGroupID, uris(metaClaims))
	if err != nil {
		return nil, fmt.Errorf("pg: claims of group: %w", err)
	}
	return scanClaims(rows)
}
