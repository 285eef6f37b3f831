// Package engine implements the settlement pipeline: it reduces a trip's
// expense ledger into net balances, converts them into the trip's base
// currency, and derives the minimal set of transfers that makes everyone
// even. The engine is a pure function over its inputs: it performs no I/O,
// holds no state across invocations, and either returns a complete snapshot
// or an error, never a partial result.
package engine

import (
	"fmt"
	"time"

	"github.com/mkor/tripsettle/internal/domain"
)

// Input bundles everything one settlement computation reads: the trip
// metadata (base currency and recognized participants), a consistent ledger
// view, and an exchange-rate snapshot covering every currency the ledger
// uses.
type Input struct {
	Trip       *domain.Trip
	Ledger     *domain.ExpenseLedgerView
	Rates      *domain.RateSnapshot
	ComputedAt time.Time
}

// Compute runs the full pipeline and assembles an immutable settlement
// snapshot tagged with the ledger version it was computed from. Identical
// inputs always produce identical snapshots: every output slice is in a
// canonical order and all tie-breaks are by participant id.
func Compute(in Input) (*domain.SettlementSnapshot, error) {
	balances, err := AggregateBalances(in.Ledger.Records, in.Trip.ParticipantSet())
	if err != nil {
		return nil, err
	}

	net, err := NormalizeBalances(balances, in.Rates)
	if err != nil {
		return nil, err
	}

	transfers, err := SimplifyDebts(net)
	if err != nil {
		return nil, err
	}

	if err := verifySettled(net, transfers); err != nil {
		return nil, err
	}

	return &domain.SettlementSnapshot{
		TripID:              in.Trip.ID,
		SourceLedgerVersion: in.Ledger.Version,
		BaseCurrency:        in.Trip.BaseCurrency,
		NetBalances:         net,
		PairwiseDebts:       ProjectPairwise(in.Ledger.Records),
		Transfers:           transfers,
		ComputedAt:          in.ComputedAt.UTC(),
	}, nil
}

// verifySettled replays the transfers against the net balances and checks
// that every balance lands on exactly zero. A failure here is a defect in
// the pipeline, not in the inputs; failing loudly beats emitting a
// plausible-looking but wrong settlement.
func verifySettled(net []domain.NetBalance, transfers []domain.Transfer) error {
	remaining := make(map[string]domain.NetBalance, len(net))
	for _, nb := range net {
		remaining[nb.ParticipantID] = nb
	}

	for _, tr := range transfers {
		from := remaining[tr.FromParticipantID]
		from.Amount = from.Amount.Add(tr.Amount)
		remaining[tr.FromParticipantID] = from

		to := remaining[tr.ToParticipantID]
		to.Amount = to.Amount.Sub(tr.Amount)
		remaining[tr.ToParticipantID] = to
	}

	for id, nb := range remaining {
		if !nb.Amount.IsZero() {
			return fmt.Errorf("%w: %s left with %s after applying transfers", domain.ErrImbalancedLedger, id, nb.Amount.String())
		}
	}

	return nil
}
