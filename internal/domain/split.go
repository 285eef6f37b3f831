package domain

import (
	"github.com/shopspring/decimal"
)

// SplitEvenly divides an amount across participants in minor-unit-exact
// shares. When the amount does not divide cleanly, the leftover minor units
// go to the earliest participants in the given order, one each, so the
// shares always sum exactly to the amount and the same inputs always produce
// the same split.
func SplitEvenly(amount decimal.Decimal, currency string, participantIDs []string) ([]Share, error) {
	if len(participantIDs) == 0 {
		return nil, ErrNoShares
	}

	if err := ValidateAmount(amount, currency); err != nil {
		return nil, err
	}

	exp, err := CurrencyExponent(currency)
	if err != nil {
		return nil, err
	}

	n := int64(len(participantIDs))
	totalUnits := amount.Shift(exp).IntPart()
	baseUnits := totalUnits / n
	remainder := totalUnits % n

	shares := make([]Share, 0, len(participantIDs))
	for i, id := range participantIDs {
		units := baseUnits
		if int64(i) < remainder {
			units++
		}

		shares = append(shares, Share{
			ParticipantID: id,
			Amount:        decimal.New(units, -exp),
		})
	}

	return shares, nil
}
