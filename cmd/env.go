package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/cache"
	"github.com/sells-group/siren-cli/internal/config"
	"github.com/sells-group/siren-cli/internal/lookup"
	"github.com/sells-group/siren-cli/internal/notice"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

// appEnv holds the initialized dependencies shared by the subcommands.
type appEnv struct {
	Cache     cache.Cache
	Client    sirene.Client
	Service   *lookup.Service
	Generator *notice.Generator
}

// Close releases the cache backend.
func (e *appEnv) Close() {
	if e.Cache != nil {
		if err := e.Cache.Close(); err != nil {
			logger.Warn("close cache", zap.Error(err))
		}
	}
}

// newRegistryClient builds the registry client from the API settings.
func newRegistryClient(api config.APIConfig, l *zap.Logger) sirene.Client {
	opts := []sirene.Option{
		sirene.WithTimeout(api.Timeout()),
		sirene.WithRetry(api.MaxAttempts, api.BackoffBase()),
		sirene.WithLogger(l),
		sirene.WithRateLimit(api.RateLimitRPS),
	}
	if api.BaseURL != "" {
		opts = append(opts, sirene.WithBaseURL(api.BaseURL))
	}
	return sirene.NewClient(api.Key, opts...)
}

// initEnv opens the cache and wires the lookup service.
func initEnv(ctx context.Context, c *config.Config, l *zap.Logger) (*appEnv, error) {
	if c.API.Key == "" {
		l.Warn("SIREN_API_KEY not set, registry lookups will fail until configured")
	}

	store, err := cache.Open(ctx, c.Cache, l)
	if err != nil {
		return nil, eris.Wrap(err, "open cache")
	}

	client := newRegistryClient(c.API, l)
	return &appEnv{
		Cache:     store,
		Client:    client,
		Service:   lookup.NewService(client, store, l, lookup.WithTTL(c.Cache.TTL())),
		Generator: notice.NewGenerator(l),
	}, nil
}
