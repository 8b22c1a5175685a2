// Package lookup resolves a raw SIRET into a merged, classified company
// record, going through the cache before the registry.
package lookup

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/siren-cli/internal/cache"
	"github.com/sells-group/siren-cli/internal/legalform"
	"github.com/sells-group/siren-cli/internal/model"
	"github.com/sells-group/siren-cli/internal/siret"
	"github.com/sells-group/siren-cli/pkg/sirene"
)

// Service orchestrates validation, caching and registry lookups.
type Service struct {
	client sirene.Client
	cache  cache.Cache
	logger *zap.Logger
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTTL sets the TTL for records written by the service. Zero defers to
// the cache's default.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = ttl
	}
}

// WithClock overrides time.Now for FetchedAt stamps (for testing).
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService creates a lookup Service.
func NewService(client sirene.Client, c cache.Cache, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{client: client, cache: c, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetCompanyData returns the merged record for raw, which may contain
// spaces or other separators. Registry errors are returned unchanged; the
// cache is best-effort in both directions.
func (s *Service) GetCompanyData(ctx context.Context, raw string) (*model.CompanyRecord, error) {
	v := siret.ValidateComplete(raw)
	if !v.Valid {
		s.logger.Warn("lookup: invalid siret", zap.String("input", raw))
		return nil, sirene.InvalidInput(v.Message)
	}
	log := s.logger.With(zap.String("siret", v.Cleaned))

	cached, err := s.cache.Get(ctx, v.Cleaned)
	if err != nil {
		log.Warn("lookup: cache read failed, fetching from registry", zap.Error(err))
	} else if cached != nil {
		if cached.EntityType.Valid() {
			log.Info("lookup: cache hit")
			return cached, nil
		}
		log.Warn("lookup: cached record has unknown entity type, refetching",
			zap.String("type", string(cached.EntityType)))
	}

	siren := siret.ExtractEntityID(v.Cleaned)
	if siren == "" {
		return nil, sirene.InvalidInput("")
	}

	etab, err := s.client.FetchEstablishment(ctx, v.Cleaned)
	if err != nil {
		log.Warn("lookup: fetch establishment failed", zap.Error(err))
		return nil, err
	}
	unite, err := s.client.FetchLegalEntity(ctx, siren)
	if err != nil {
		log.Warn("lookup: fetch legal entity failed", zap.String("siren", siren), zap.Error(err))
		return nil, err
	}

	if etab == nil {
		etab = &model.EstablishmentRecord{}
	}
	if unite == nil {
		unite = &model.LegalEntityRecord{}
	}

	rec := s.merge(v.Cleaned, siren, etab, unite)
	if !rec.Active {
		log.Warn("lookup: company is not active", zap.String("etat_administratif", unite.EtatAdministratif))
	}

	if err := s.cache.Set(ctx, v.Cleaned, rec, s.ttl); err != nil {
		log.Warn("lookup: cache write failed", zap.Error(err))
	}

	log.Info("lookup: company data retrieved",
		zap.String("denomination", rec.Denomination),
		zap.String("type", string(rec.EntityType)),
	)
	return rec, nil
}

func (s *Service) merge(siretNum, siren string, etab *model.EstablishmentRecord, unite *model.LegalEntityRecord) *model.CompanyRecord {
	ref := unite.EtablissementSiege
	if ref == nil {
		ref = etab
	}

	denomination := unite.Denomination
	if denomination == "" {
		prenom := unite.Prenom1
		if prenom == "" {
			prenom = unite.PrenomUsuel
		}
		denomination = strings.TrimSpace(prenom + " " + unite.Nom)
	}

	return &model.CompanyRecord{
		SIRET:              siretNum,
		SIREN:              siren,
		Denomination:       denomination,
		Etablissement:      etab,
		UniteLegale:        unite,
		EtablissementSiege: ref,
		EntityType:         legalform.ClassifyEntityType(unite),
		Active:             unite.IsActive(),
		FetchedAt:          s.now().UTC(),
	}
}

// TestConnection probes the registry with sample, or the default sample
// SIRET when empty. It never touches the cache.
func (s *Service) TestConnection(ctx context.Context, sample string) *sirene.ConnectionResult {
	res := s.client.TestConnection(ctx, sample)
	if res.Success {
		s.logger.Info("lookup: registry connection ok")
	} else {
		s.logger.Warn("lookup: registry connection failed", zap.String("message", res.Message))
	}
	return res
}

// ClearCache removes every cached record and returns how many were removed.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	n, err := s.cache.FlushAll(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("lookup: cache cleared", zap.Int("count", n))
	return n, nil
}

// CacheSize returns the number of live cached records.
func (s *Service) CacheSize(ctx context.Context) (int, error) {
	return s.cache.Count(ctx)
}

// Invalidate validates raw and drops its cached record, if any.
func (s *Service) Invalidate(ctx context.Context, raw string) error {
	v := siret.ValidateComplete(raw)
	if !v.Valid {
		return sirene.InvalidInput(v.Message)
	}
	if err := s.cache.Delete(ctx, v.Cleaned); err != nil {
		return err
	}
	s.logger.Info("lookup: cache entry invalidated", zap.String("siret", v.Cleaned))
	return nil
}
