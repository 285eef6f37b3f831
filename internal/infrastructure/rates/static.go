// Package rates supplies exchange-rate snapshots for settlement computation.
package rates

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// StaticProvider serves rates from a fixed table configured at startup. The
// table maps currency codes to their rate into a pivot currency; snapshots
// for any base currency are derived as cross rates through the pivot.
type StaticProvider struct {
	pivot string
	table map[string]decimal.Decimal
}

// ParseTable parses a CODE=RATE,CODE=RATE table as found in configuration.
func ParseTable(raw string) (map[string]decimal.Decimal, error) {
	table := make(map[string]decimal.Decimal)
	if strings.TrimSpace(raw) == "" {
		return table, nil
	}

	for _, pair := range strings.Split(raw, ",") {
		code, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok {
			return nil, fmt.Errorf("%w: malformed rate entry %q", domain.ErrInvalidCurrency, pair)
		}

		code = strings.ToUpper(strings.TrimSpace(code))
		if err := domain.ValidateCurrency(code); err != nil {
			return nil, err
		}

		rate, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("%w: bad rate for %s: %v", domain.ErrInvalidCurrency, code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("%w: rate for %s must be positive", domain.ErrInvalidCurrency, code)
		}

		table[code] = rate
	}

	return table, nil
}

// NewStaticProvider creates a provider for the given pivot currency and
// rate table. The pivot converts into itself at identity.
func NewStaticProvider(pivot string, table map[string]decimal.Decimal) (*StaticProvider, error) {
	pivot = strings.ToUpper(pivot)
	if err := domain.ValidateCurrency(pivot); err != nil {
		return nil, err
	}

	rates := make(map[string]decimal.Decimal, len(table)+1)
	for code, rate := range table {
		rates[code] = rate
	}
	rates[pivot] = decimal.NewFromInt(1)

	return &StaticProvider{pivot: pivot, table: rates}, nil
}

// Snapshot derives rates into baseCurrency from the pivot table. Currencies
// absent from the table are absent from the snapshot; the caller decides
// whether that is fatal.
func (p *StaticProvider) Snapshot(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error) {
	baseToPivot, ok := p.table[baseCurrency]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingExchangeRate, baseCurrency)
	}

	rates := make(map[string]decimal.Decimal, len(p.table))
	for code, toPivot := range p.table {
		if code == baseCurrency {
			continue
		}
		rates[code] = toPivot.Div(baseToPivot)
	}

	return &domain.RateSnapshot{
		BaseCurrency: baseCurrency,
		Rates:        rates,
		AsOf:         time.Now().UTC(),
	}, nil
}
