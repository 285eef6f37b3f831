package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// NormalizeBalances converts per-currency balances into one net balance per
// participant in the base currency. Conversion accumulates unrounded per
// participant and rounds once at the end, keeping cumulative rounding error
// to at most half a minor unit per participant. The rounded balances may
// then miss zero-sum by a small residual; the residual is folded into the
// participant with the largest absolute balance (ties by id ascending) so
// the zero-sum invariant holds exactly for the simplifier. A residual larger
// than one minor unit per participant means the inputs were inconsistent and
// fails with domain.ErrImbalancedLedger.
//
// A currency with no rate in the snapshot fails with
// domain.ErrMissingExchangeRate naming the currency. The base currency
// itself converts at identity.
func NormalizeBalances(balances map[domain.BalanceKey]decimal.Decimal, rates *domain.RateSnapshot) ([]domain.NetBalance, error) {
	exp, err := domain.CurrencyExponent(rates.BaseCurrency)
	if err != nil {
		return nil, err
	}

	raw := make(map[string]decimal.Decimal)
	for key, amount := range balances {
		rate, ok := rates.RateToBase(key.Currency)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrMissingExchangeRate, key.Currency)
		}

		raw[key.ParticipantID] = raw[key.ParticipantID].Add(amount.Mul(rate))
	}

	ids := make([]string, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	net := make([]domain.NetBalance, 0, len(ids))
	residual := decimal.Zero

	for _, id := range ids {
		rounded := raw[id].Round(exp)
		residual = residual.Add(rounded)
		net = append(net, domain.NetBalance{ParticipantID: id, Amount: rounded})
	}

	if residual.IsZero() || len(net) == 0 {
		return net, nil
	}

	tolerance := decimal.New(1, -exp).Mul(decimal.NewFromInt(int64(len(net))))
	if residual.Abs().GreaterThan(tolerance) {
		return nil, fmt.Errorf("%w: rounding residual %s exceeds tolerance %s", domain.ErrImbalancedLedger, residual.String(), tolerance.String())
	}

	// Fold the residual into the largest absolute balance; ids are already
	// sorted, so the first maximum wins and output stays deterministic.
	largest := 0
	for i := 1; i < len(net); i++ {
		if net[i].Amount.Abs().GreaterThan(net[largest].Amount.Abs()) {
			largest = i
		}
	}

	net[largest].Amount = net[largest].Amount.Sub(residual)

	return net, nil
}
