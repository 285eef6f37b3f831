package rates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/mkor/tripsettle/internal/domain"
)

type fakeCache struct {
	data    map[string][]byte
	getErr  error
	setErr  error
	setKeys []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.data[key]
	if !ok {
		return nil, errors.New("cache miss")
	}
	return value, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.data[key] = value
	c.setKeys = append(c.setKeys, key)
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

type countingProvider struct {
	calls int
	snap  *domain.RateSnapshot
	err   error
}

func (p *countingProvider) Snapshot(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return p.snap, nil
}

func usdSnapshot() *domain.RateSnapshot {
	return &domain.RateSnapshot{
		BaseCurrency: "USD",
		Rates: map[string]decimal.Decimal{
			"EUR": decimal.RequireFromString("1.08"),
		},
		AsOf: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCachedProviderCachesSnapshot(t *testing.T) {
	cache := newFakeCache()
	inner := &countingProvider{snap: usdSnapshot()}
	provider := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())
	ctx := context.Background()

	first, err := provider.Snapshot(ctx, "USD")
	require.NoError(t, err)

	second, err := provider.Snapshot(ctx, "USD")
	require.NoError(t, err)

	require.Equal(t, 1, inner.calls, "second read should come from the cache")
	require.True(t, first.Rates["EUR"].Equal(second.Rates["EUR"]))
	require.Equal(t, []string{"rates:USD"}, cache.setKeys)
}

func TestCachedProviderFallsThroughOnCacheFailure(t *testing.T) {
	cache := newFakeCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	inner := &countingProvider{snap: usdSnapshot()}
	provider := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())

	snap, err := provider.Snapshot(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, "USD", snap.BaseCurrency)
	require.Equal(t, 1, inner.calls)
}

func TestCachedProviderDiscardsCorruptEntry(t *testing.T) {
	cache := newFakeCache()
	cache.data["rates:USD"] = []byte("{not json")
	inner := &countingProvider{snap: usdSnapshot()}
	provider := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())

	snap, err := provider.Snapshot(context.Background(), "USD")
	require.NoError(t, err)
	require.Equal(t, 1, inner.calls)
	require.Equal(t, "USD", snap.BaseCurrency)
}

func TestCachedProviderPropagatesProviderError(t *testing.T) {
	cache := newFakeCache()
	inner := &countingProvider{err: domain.ErrMissingExchangeRate}
	provider := NewCachedProvider(inner, cache, time.Minute, zerolog.Nop())

	_, err := provider.Snapshot(context.Background(), "EUR")
	require.ErrorIs(t, err, domain.ErrMissingExchangeRate)
	require.Empty(t, cache.setKeys)
}
