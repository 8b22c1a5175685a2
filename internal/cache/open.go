package cache

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/config"
)

// Open builds the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.CacheConfig, logger *zap.Logger) (Cache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []Option{WithPrefix(cfg.Prefix), WithDefaultTTL(cfg.TTL())}

	switch cfg.Driver {
	case "", "memory":
		logger.Debug("cache: using memory backend")
		return NewMemory(opts...), nil
	case "sqlite":
		logger.Debug("cache: using sqlite backend", zap.String("path", cfg.SQLitePath))
		return NewSQLite(ctx, cfg.SQLitePath, opts...)
	case "postgres":
		logger.Debug("cache: using postgres backend")
		return NewPostgres(ctx, cfg.DatabaseURL, opts...)
	default:
		return nil, eris.Errorf("cache: unknown driver %q", cfg.Driver)
	}
}
