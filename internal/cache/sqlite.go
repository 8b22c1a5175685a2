package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/siren-cli/internal/model"
)

// SQLite implements Cache using modernc.org/sqlite.
type SQLite struct {
	*settings
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn, configures WAL mode and creates
// the cache table.
func NewSQLite(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	s := &SQLite{settings: newSettings(opts), db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Expiry times are unix milliseconds so comparisons do not depend on
// SQLite's datetime text format.
const sqliteMigration = `
CREATE TABLE IF NOT EXISTS company_cache (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	cached_at  INTEGER NOT NULL,
	expires_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_company_cache_expires_at ON company_cache(expires_at);
`

// Migrate creates the cache table if it does not exist.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Get(ctx context.Context, siret string) (*model.CompanyRecord, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM company_cache WHERE key = ? AND expires_at > ?`,
		s.key(siret), s.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get cached company %s", siret)
	}

	var rec model.CompanyRecord
	if err := json.Unmarshal([]byte(value), &rec); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal cached company")
	}
	return &rec, nil
}

func (s *SQLite) Set(ctx context.Context, siret string, record *model.CompanyRecord, ttl time.Duration) error {
	if record == nil {
		return ErrInvalidRecord
	}
	data, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal company")
	}
	now, expiresAt := s.expiry(ttl)

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO company_cache (key, value, cached_at, expires_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value, cached_at = excluded.cached_at, expires_at = excluded.expires_at`,
		s.key(siret), string(data), now.UnixMilli(), expiresAt.UnixMilli(),
	)
	return eris.Wrapf(err, "sqlite: set cached company %s", siret)
}

func (s *SQLite) Delete(ctx context.Context, siret string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM company_cache WHERE key = ?`, s.key(siret))
	return eris.Wrapf(err, "sqlite: delete cached company %s", siret)
}

func (s *SQLite) FlushAll(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM company_cache WHERE key LIKE ? ESCAPE '\'`, s.likePattern(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: flush cache")
	}
	return rowsAffected(res)
}

func (s *SQLite) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM company_cache WHERE key LIKE ? ESCAPE '\' AND expires_at > ?`,
		s.likePattern(), s.now().UnixMilli(),
	).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count cache")
}

func (s *SQLite) PurgeExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM company_cache WHERE expires_at <= ?`, s.now().UnixMilli(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: purge expired")
	}
	return rowsAffected(res)
}

func rowsAffected(res sql.Result) (int, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, eris.Wrap(err, "rows affected")
	}
	return int(n), nil
}
