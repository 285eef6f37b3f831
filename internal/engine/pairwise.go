package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

type pairKey struct {
	debtorID   string
	creditorID string
	currency   string
}

// ProjectPairwise derives the raw who-owes-whom-directly view from the
// ledger, per currency, before any cross-currency netting or simplification.
// Opposite-direction debts between the same pair in the same currency
// collapse into a single net directional entry; pairs that net to zero are
// omitted. The output is sorted by (debtor, creditor, currency) and is used
// for audit/display only, never for settlement instructions.
//
// Records are assumed already validated by AggregateBalances; deleted
// records are skipped.
func ProjectPairwise(records []domain.ExpenseRecord) []domain.PairwiseDebt {
	owed := make(map[pairKey]decimal.Decimal)

	for _, rec := range records {
		if rec.Deleted {
			continue
		}

		for _, share := range rec.Shares {
			if share.ParticipantID == rec.PayerID || share.Amount.IsZero() {
				continue
			}

			key := pairKey{debtorID: share.ParticipantID, creditorID: rec.PayerID, currency: rec.Currency}
			owed[key] = owed[key].Add(share.Amount)
		}
	}

	debts := make([]domain.PairwiseDebt, 0, len(owed))
	for key, amount := range owed {
		// Emit only the canonical direction for each pair; the reverse
		// direction is folded in as a reduction.
		reverse := pairKey{debtorID: key.creditorID, creditorID: key.debtorID, currency: key.currency}
		counter := owed[reverse]

		// Only the larger direction survives; the smaller (and an exact
		// mutual stand-off) nets away.
		net := amount.Sub(counter)
		if !net.IsPositive() {
			continue
		}

		debts = append(debts, domain.PairwiseDebt{
			DebtorID:   key.debtorID,
			CreditorID: key.creditorID,
			Currency:   key.currency,
			Amount:     net,
		})
	}

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].DebtorID != debts[j].DebtorID {
			return debts[i].DebtorID < debts[j].DebtorID
		}
		if debts[i].CreditorID != debts[j].CreditorID {
			return debts[i].CreditorID < debts[j].CreditorID
		}
		return debts[i].Currency < debts[j].Currency
	})

	return debts
}
