package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot maps currency codes to their rate into the base currency, as
// of a point in time. The base currency itself converts at identity and need
// not carry an entry. Any other currency absent from Rates fails the
// computation; the engine never assumes parity.
type RateSnapshot struct {
	BaseCurrency string
	Rates        map[string]decimal.Decimal
	AsOf         time.Time
}

// RateToBase returns the conversion rate for a currency.
func (s *RateSnapshot) RateToBase(currency string) (decimal.Decimal, bool) {
	if currency == s.BaseCurrency {
		return decimal.NewFromInt(1), true
	}

	rate, ok := s.Rates[currency]
	return rate, ok
}
