package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/security/password"
)

// ─── Autenticación y credenciales ───

func (s *Store) Authenticate(ctx context.Context, claim repository.Claim, credentials []repository.Credential, domain string) (*repository.AuthenticationContext, error) {
	plain, ok := passwordOf(credentials)
	if !ok {
		return nil, fmt.Errorf("no password credential: %w", repository.ErrAuthenticationFailure)
	}

	q := `
		SELECT u.id::text, u.domain, u.state, COALESCE(u.password_hash, '')
		FROM directory_user u
		JOIN directory_user_claim c ON c.user_id = u.id
		WHERE c.uri = $1 AND c.value = $2 AND u.domain = ` + resolveDomainSQL(3) + `
		ORDER BY u.seq
		LIMIT 1`
	var (
		u     repository.User
		state string
		hash  string
	)
	err := s.pool.QueryRow(ctx, q, claim.ClaimURI, claim.Value, domain).Scan(&u.UniqueUserID, &u.DomainName, &state, &hash)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrAuthenticationFailure
	}
	if err != nil {
		return nil, fmt.Errorf("pg: authenticate: %w", err)
	}
	u.State = repository.UserState(state)

	if hash == "" || !password.Verify(plain, hash) {
		return nil, repository.ErrAuthenticationFailure
	}
	if u.State.IsInGroup(repository.GroupDisabled) || u.State.IsInGroup(repository.GroupLocked) {
		return nil, fmt.Errorf("user %s: %w", u.State, repository.ErrAuthenticationFailure)
	}
	return &repository.AuthenticationContext{Authenticated: true, User: &u}, nil
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
	tag, err := s.pool.Exec(ctx,
		`UPDATE directory_user SET password_hash = $2, updated_at = NOW() WHERE id::text = $1`,
		uniqueUserID, hash)
	if err != nil {
		return fmt.Errorf("pg: update credentials: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

// ─── Alta y existencia ───

func (s *Store) AddUser(ctx context.Context, bean repository.UserBean) (*repository.User, error) {
	return s.AddUserInDomain(ctx, bean, "")
}

func (s *Store) AddUserInDomain(ctx context.Context, bean repository.UserBean, domain string) (*repository.User, error) {
	var hash *string
	if plain, ok := passwordOf(bean.Credentials); ok {
		h, err := password.Hash(s.params, plain)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, repository.ErrInvalidInput)
		}
		hash = &h
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	d, err := s.checkDomain(ctx, tx, domain)
	if err != nil {
		return nil, err
	}

	if username, ok := repository.FirstValue(bean.Claims, s.usernameURI); ok {
		var taken bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM directory_user u
				JOIN directory_user_claim c ON c.user_id = u.id
				WHERE u.domain = $1 AND c.uri = $2 AND c.value = $3)`,
			d, s.usernameURI, username).Scan(&taken)
		if err != nil {
			return nil, fmt.Errorf("pg: username check: %w", err)
		}
		if taken {
			return nil, fmt.Errorf("username %q in %s: %w", username, d, repository.ErrConflict)
		}
	}

	u := repository.User{UniqueUserID: uuid.NewString(), DomainName: d, State: repository.StateUnlockedUnverified}
	_, err = tx.Exec(ctx,
		`INSERT INTO directory_user (id, domain, state, password_hash) VALUES ($1, $2, $3, $4)`,
		u.UniqueUserID, u.DomainName, string(u.State), hash)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("pg: insert user: %w", repository.ErrConflict)
		}
		return nil, fmt.Errorf("pg: insert user: %w", err)
	}
	if err := insertClaims(ctx, tx, "directory_user_claim", "user_id", u.UniqueUserID, 0, bean.Claims); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("pg: commit: %w", err)
	}
	return &u, nil
}

// insertClaims inserta claims con orden a partir de start.
func insertClaims(ctx context.Context, tx pgx.Tx, table, fk, id string, start int, claims []repository.Claim) error {
	if len(claims) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	sql := fmt.Sprintf(`INSERT INTO %s (%s, ord, dialect, uri, value) VALUES ($1, $2, $3, $4, $5)`, table, fk)
	for i, c := range claims {
		batch.Queue(sql, id, start+i, c.DialectURI, c.ClaimURI, c.Value)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("pg: insert claims: %w", err)
	}
	return nil
}

// claimsPredicate arma un AND de EXISTS, uno por claim, a partir del argumento first.
func claimsPredicate(claims []repository.Claim, first int) (string, []any) {
	parts := make([]string, 0, len(claims))
	args := make([]any, 0, 2*len(claims))
	for i, c := range claims {
		n := first + 2*i
		parts = append(parts, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM directory_user_claim c WHERE c.user_id = u.id AND c.uri = $%d AND c.value = $%d)`, n, n+1))
		args = append(args, c.ClaimURI, c.Value)
	}
	return strings.Join(parts, " AND "), args
}

func (s *Store) IsUserExist(ctx context.Context, claims []repository.Claim, domain string) (bool, error) {
	if len(claims) == 0 {
		return false, nil
	}
	d, err := s.checkDomain(ctx, s.pool, domain)
	if err != nil {
		return false, err
	}
	pred, args := claimsPredicate(claims, 2)
	var exists bool
	q := `SELECT EXISTS (SELECT 1 FROM directory_user u WHERE u.domain = $1 AND ` + pred + `)`
	if err := s.pool.QueryRow(ctx, q, append([]any{d}, args...)...).Scan(&exists); err != nil {
		return false, fmt.Errorf("pg: user exists: %w", err)
	}
	return exists, nil
}

func (s *Store) ListDomainsWithUser(ctx context.Context, claims []repository.Claim) ([]string, error) {
	out := []string{}
	if len(claims) == 0 {
		return out, nil
	}
	pred, args := claimsPredicate(claims, 1)
	q := `
		SELECT d.name FROM directory_domain d
		WHERE EXISTS (SELECT 1 FROM directory_user u WHERE u.domain = d.name AND ` + pred + `)
		ORDER BY d.is_primary DESC, d.name`
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("pg: domains with user: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// ─── Claims ───

// UpdateUserClaims reemplaza los valores de los URIs recibidos y conserva el resto.
func (s *Store) UpdateUserClaims(ctx context.Context, uniqueUserID string, claims []repository.Claim) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pg: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if err := s.userExists(ctx, tx, uniqueUserID); err != nil {
		return err
	}
	uriList := make([]string, 0, len(claims))
	for _, c := range claims {
		uriList = append(uriList, c.ClaimURI)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM directory_user_claim WHERE user_id::text = $1 AND uri = ANY($2)`,
		uniqueUserID, uriList); err != nil {
		return fmt.Errorf("pg: delete claims: %w", err)
	}
	var next int
	if err := tx.QueryRow(ctx,
		`SELECT COALESCE(MAX(ord) + 1, 0) FROM directory_user_claim WHERE user_id::text = $1`,
		uniqueUserID).Scan(&next); err != nil {
		return fmt.Errorf("pg: next claim ord: %w", err)
	}
	if err := insertClaims(ctx, tx, "directory_user_claim", "user_id", uniqueUserID, next, claims); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `UPDATE directory_user SET updated_at = NOW() WHERE id::text = $1`, uniqueUserID); err != nil {
		return fmt.Errorf("pg: touch user: %w", err)
	}
	return tx.Commit(ctx)
}

func (s *Store) GetClaimsOfUser(ctx context.Context, uniqueUserID string, metaClaims []repository.MetaClaim) ([]repository.Claim, error) {
	if err := s.userExists(ctx, s.pool, uniqueUserID); err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, `
		SELECT dialect, uri, value FROM directory_user_claim
		WHERE user_id::text = $1 AND uri = ANY($2)
		ORDER BY ord`, uniqueUserID, uris(metaClaims))
	if err != nil {
		return nil, fmt.Errorf("pg: claims of user: %w", err)
	}
	return scanClaims(rows)
}
