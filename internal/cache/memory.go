package cache

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/siren-cli/internal/model"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is an in-process Cache. Records are stored serialized so callers
// can never mutate a cached value.
type Memory struct {
	*settings
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

// NewMemory creates an empty in-memory cache.
func NewMemory(opts ...Option) *Memory {
	return &Memory{
		settings: newSettings(opts),
		entries:  make(map[string]memoryEntry),
	}
}

func (m *Memory) Get(_ context.Context, siret string) (*model.CompanyRecord, error) {
	m.mu.RLock()
	e, ok := m.entries[m.key(siret)]
	m.mu.RUnlock()
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, nil
	}

	var rec model.CompanyRecord
	if err := json.Unmarshal(e.value, &rec); err != nil {
		return nil, eris.Wrap(err, "memory cache: unmarshal record")
	}
	return &rec, nil
}

func (m *Memory) Set(_ context.Context, siret string, record *model.CompanyRecord, ttl time.Duration) error {
	if record == nil {
		return ErrInvalidRecord
	}
	data, err := json.Marshal(record)
	if err != nil {
		return eris.Wrap(err, "memory cache: marshal record")
	}
	_, expiresAt := m.expiry(ttl)

	m.mu.Lock()
	m.entries[m.key(siret)] = memoryEntry{value: data, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func (m *Memory) Delete(_ context.Context, siret string) error {
	m.mu.Lock()
	delete(m.entries, m.key(siret))
	m.mu.Unlock()
	return nil
}

func (m *Memory) FlushAll(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for k := range m.entries {
		if strings.HasPrefix(k, m.prefix) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Count(_ context.Context) (int, error) {
	now := m.now()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var n int
	for k, e := range m.entries {
		if strings.HasPrefix(k, m.prefix) && now.Before(e.expiresAt) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) PurgeExpired(_ context.Context) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	var n int
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n, nil
}

func (m *Memory) Close() error {
	return nil
}
