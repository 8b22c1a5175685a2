package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/siren-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool used by the Postgres cache. It is
// satisfied by pgxmock pools in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Postgres implements Cache on a pgx connection pool.
type Postgres struct {
	*settings
	pool Pool
}

// NewPostgres connects to connString, pings and creates the cache table.
func NewPostgres(ctx context.Context, connString string, opts ...Option) (*Postgres, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 1
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	p := newPostgres(pool, opts...)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func newPostgres(pool Pool, opts ...Option) *Postgres {
	return &Postgres{settings: newSettings(opts), pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS company_cache (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	cached_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_cache_expires_at ON company_cache(expires_at);
`

// Migrate creates the cache table if it does not exist.
func (p *Postgres) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Get(ctx context.Context, siret string) (*model.CompanyRecord, error) {
	var value []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM company_cache WHERE key = $1 AND expires_at > $2`,
		p.key(siret), p.now().UTC(),
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "postgres: get cached company %s", siret)
	}

	var rec model.CompanyRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal cached company")
	}
	return &rec, nil
}

func (p *Postgres) Set(ctx context.Context, siret string, record *model.CompanyRecord, ttl time.Duration) error {
	if record == nil {
		return ErrInvalidRecord
	}
	data, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal company")
	}
	now, expiresAt := p.expiry(ttl)

	_, err = p.pool.Exec(ctx,
		`INSERT INTO company_cache (key, value, cached_at, expires_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (key) DO UPDATE SET value = $2, cached_at = $3, expires_at = $4`,
		p.key(siret), data, now, expiresAt,
	)
	return eris.Wrapf(err, "postgres: set cached company %s", siret)
}

func (p *Postgres) Delete(ctx context.Context, siret string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM company_cache WHERE key = $1`, p.key(siret))
	return eris.Wrapf(err, "postgres: delete cached company %s", siret)
}

func (p *Postgres) FlushAll(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM company_cache WHERE key LIKE $1 ESCAPE '\'`, p.likePattern(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: flush cache")
	}
	return int(tag.RowsAffected()), nil
}

func (p *Postgres) Count(ctx context.Context) (int, error) {
	var n int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM company_cache WHERE key LIKE $1 ESCAPE '\' AND expires_at > $2`,
		p.likePattern(), p.now().UTC(),
	).Scan(&n)
	return n, eris.Wrap(err, "postgres: count cache")
}

func (p *Postgres) PurgeExpired(ctx context.Context) (int, error) {
	tag, err := p.pool.Exec(ctx,
		`DELETE FROM company_cache WHERE expires_at <= $1`, p.now().UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "postgres: purge expired")
	}
	return int(tag.RowsAffected()), nil
}
