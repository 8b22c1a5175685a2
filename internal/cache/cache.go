// Package cache stores merged company records keyed by SIRET, with a TTL.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siren-cli/internal/model"
)

const (
	// DefaultPrefix namespaces every key this package writes.
	DefaultPrefix = "siren_data_"
	// DefaultTTL is how long a record stays fresh when no TTL is given.
	DefaultTTL = 24 * time.Hour
)

// ErrInvalidRecord is returned by Set for a nil record.
var ErrInvalidRecord = eris.New("cache: record is nil")

// Cache is a TTL store of company records. Implementations are safe for
// concurrent use.
type Cache interface {
	// Get returns the record cached for siret, or (nil, nil) on a miss or an
	// expired entry.
	Get(ctx context.Context, siret string) (*model.CompanyRecord, error)
	// Set stores record under siret. A ttl <= 0 uses the backend's default
	// TTL. Expiry is fixed at write time.
	Set(ctx context.Context, siret string, record *model.CompanyRecord, ttl time.Duration) error
	// Delete removes a single entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, siret string) error
	// FlushAll removes every entry under the prefix and returns how many.
	FlushAll(ctx context.Context) (int, error)
	// Count returns the number of unexpired entries under the prefix.
	Count(ctx context.Context) (int, error)
	// PurgeExpired removes expired entries and returns how many.
	PurgeExpired(ctx context.Context) (int, error)
	Close() error
}

// Option configures a cache backend.
type Option func(*settings)

// WithPrefix sets the key prefix.
func WithPrefix(p string) Option {
	return func(s *settings) {
		if p != "" {
			s.prefix = p
		}
	}
}

// WithDefaultTTL sets the TTL applied when Set is given none.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides time.Now (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// settings is shared by every backend.
type settings struct {
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

func newSettings(opts []Option) *settings {
	s := &settings{prefix: DefaultPrefix, ttl: DefaultTTL, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *settings) key(siret string) string {
	return s.prefix + siret
}

// expiry resolves the TTL for a write happening now.
func (s *settings) expiry(ttl time.Duration) (now, expiresAt time.Time) {
	if ttl <= 0 {
		ttl = s.ttl
	}
	now = s.now().UTC()
	return now, now.Add(ttl)
}

// likePattern returns a LIKE pattern matching keys that start with the
// prefix literally, escaping LIKE wildcards with a backslash.
func (s *settings) likePattern() string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s.prefix) + "%"
}
