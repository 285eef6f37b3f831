package rates

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/usecase"
)

// CachedProvider decorates a RateProvider with a cache keyed by base
// currency. Cache failures are logged and fall through to the inner
// provider; a stale or unavailable cache never fails a settlement.
type CachedProvider struct {
	inner  usecase.RateProvider
	cache  usecase.Cache
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCachedProvider creates a caching decorator around inner.
func NewCachedProvider(inner usecase.RateProvider, cache usecase.Cache, ttl time.Duration, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: logger,
	}
}

type snapshotDoc struct {
	BaseCurrency string                     `json:"base_currency"`
	Rates        map[string]decimal.Decimal `json:"rates"`
	AsOf         time.Time                  `json:"as_of"`
}

func cacheKey(baseCurrency string) string {
	return "rates:" + baseCurrency
}

// Snapshot returns the cached snapshot for baseCurrency, falling back to the
// inner provider and caching its result.
func (p *CachedProvider) Snapshot(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	if cached, err := p.cache.Get(ctx, cacheKey(baseCurrency)); err == nil {
		var doc snapshotDoc
		if err := json.Unmarshal(cached, &doc); err == nil {
			return &domain.RateSnapshot{
				BaseCurrency: doc.BaseCurrency,
				Rates:        doc.Rates,
				AsOf:         doc.AsOf,
			}, nil
		}
		p.logger.Warn().Str("base_currency", baseCurrency).Msg("discarding undecodable cached rate snapshot")
	}

	snapshot, err := p.inner.Snapshot(ctx, baseCurrency)
	if err != nil {
		return nil, err
	}

	doc := snapshotDoc{
		BaseCurrency: snapshot.BaseCurrency,
		Rates:        snapshot.Rates,
		AsOf:         snapshot.AsOf,
	}
	payload, err := json.Marshal(doc)
	if err == nil {
		if err := p.cache.Set(ctx, cacheKey(baseCurrency), payload, p.ttl); err != nil {
			p.logger.Warn().Err(err).Str("base_currency", baseCurrency).Msg("failed to cache rate snapshot")
		}
	}

	return snapshot, nil
}
