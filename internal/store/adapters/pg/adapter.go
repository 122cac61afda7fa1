// Package pg implementa el identity store sobre PostgreSQL.
// Usa pgxpool directamente; el esquema vive en migrations/postgres.
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/dirportal/internal/domain/repository"
	"github.com/dropDatabas3/dirportal/internal/observability/logger"
	"github.com/dropDatabas3/dirportal/internal/security/password"
	"github.com/dropDatabas3/dirportal/internal/store"
	migrations "github.com/dropDatabas3/dirportal/migrations/postgres"
)

func init() {
	store.RegisterAdapter(&postgresAdapter{})
}

// postgresAdapter implementa store.Adapter para PostgreSQL.
type postgresAdapter struct{}

func (a *postgresAdapter) Name() string { return "postgres" }

func (a *postgresAdapter) Open(ctx context.Context, cfg store.AdapterConfig) (repository.IdentityStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pg: parse DSN: %w", err)
	}

	poolCfg.MaxConns = 10
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	poolCfg.MinConns = 2
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("pg: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg: ping failed: %w", err)
	}

	if cfg.Migrate {
		res, err := NewMigrator(migrations.FS, migrations.Dir).Run(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("pg: migrate: %w", err)
		}
		logger.From(ctx).Info("identity store migrations applied",
			logger.Driver("postgres"), logger.Count(len(res.Applied)), logger.Duration(res.Duration))
	}

	s := New(pool, Options{UsernameClaimURI: cfg.UsernameClaimURI})
	if cfg.PrimaryDomain != "" {
		if err := s.EnsurePrimaryDomain(ctx, cfg.PrimaryDomain); err != nil {
			pool.Close()
			return nil, err
		}
	}
	return s, nil
}

// Options configura el store Postgres.
type Options struct {
	UsernameClaimURI string
	HashParams       password.Params
}

// Store es el identity store Postgres.
type Store struct {
	pool        *pgxpool.Pool
	usernameURI string
	params      password.Params
}

var _ repository.IdentityStore = (*Store)(nil)

// New crea el store sobre un pool ya abierto.
func New(pool *pgxpool.Pool, opts Options) *Store {
	if opts.UsernameClaimURI == "" {
		opts.UsernameClaimURI = "http://wso2.org/claims/username"
	}
	if opts.HashParams == (password.Params{}) {
		opts.HashParams = password.Default
	}
	return &Store{pool: pool, usernameURI: opts.UsernameClaimURI, params: opts.HashParams}
}

// Pool expone el pool para health checks.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsurePrimaryDomain crea el dominio primario si todavía no hay uno.
func (s *Store) EnsurePrimaryDomain(ctx context.Context, name string) error {
	const q = `
		INSERT INTO directory_domain (name, is_primary)
		SELECT $1, TRUE
		WHERE NOT EXISTS (SELECT 1 FROM directory_domain WHERE is_primary)
		ON CONFLICT (name) DO NOTHING`
	if _, err := s.pool.Exec(ctx, q, name); err != nil {
		return fmt.Errorf("pg: ensure primary domain: %w", err)
	}
	return nil
}

// AddDomain registra un dominio secundario. Idempotente.
func (s *Store) AddDomain(ctx context.Context, name string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO directory_domain (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	return err
}

// ─── helpers ───

// resolveDomainSQL resuelve $n vacío al dominio primario.
func resolveDomainSQL(arg int) string {
	return fmt.Sprintf(`COALESCE(NULLIF($%d, ''), (SELECT name FROM directory_domain WHERE is_primary))`, arg)
}

func (s *Store) checkDomain(ctx context.Context, q querier, domain string) (string, error) {
	var name string
	err := q.QueryRow(ctx, `SELECT name FROM directory_domain WHERE name = `+resolveDomainSQL(1), domain).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("%q: %w", domain, repository.ErrDomainNotFound)
	}
	if err != nil {
		return "", err
	}
	return name, nil
}

func (s *Store) userExists(ctx context.Context, q querier, id string) error {
	var one int
	err := q.QueryRow(ctx, `SELECT 1 FROM directory_user WHERE id::text = $1`, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrUserNotFound
	}
	return err
}

// querier abstrae pool y tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func uris(metas []repository.MetaClaim) []string {
	out := make([]string, 0, len(metas))
	for _, m := range metas {
		out = append(out, m.ClaimURI)
	}
	return out
}

func scanClaims(rows pgx.Rows) ([]repository.Claim, error) {
	defer rows.Close()
	out := []repository.Claim{}
	for rows.Next() {
		var c repository.Claim
		if err := rows.Scan(&c.DialectURI, &c.ClaimURI, &c.Value); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanUsers(rows pgx.Rows) ([]repository.User, error) {
	defer rows.Close()
	out := []repository.User{}
	for rows.Next() {
		var u repository.User
		var state string
		if err := rows.Scan(&u.UniqueUserID, &u.DomainName, &state); err != nil {
			return nil, err
		}
		u.State = repository.UserState(state)
		out = append(out, u)
	}
	return out, rows.Err()
}

func passwordOf(creds []repository.Credential) (string, bool) {
	for _, c := range creds {
		if c.Type == repository.CredentialPassword {
			return string(c.Secret), true
		}
	}
	return "", false
}
