package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// SimplifyDebts turns zero-sum net balances into settling transfers by
// greedy largest-magnitude matching: repeatedly pair the biggest debtor with
// the biggest creditor and settle min(debt, credit) between them. Ties in
// magnitude break by participant id ascending, so identical inputs always
// yield identical transfer lists. Each round zeroes at least one side, which
// bounds the output at n-1 transfers for n participants.
//
// True minimum-transfer settlement is NP-hard; greedy is a deliberate
// near-optimal approximation.
//
// Balances not summing to exactly zero (including a single non-zero balance)
// fail with domain.ErrImbalancedLedger.
func SimplifyDebts(net []domain.NetBalance) ([]domain.Transfer, error) {
	sum := decimal.Zero
	for _, nb := range net {
		sum = sum.Add(nb.Amount)
	}

	if !sum.IsZero() {
		return nil, fmt.Errorf("%w: balances sum to %s", domain.ErrImbalancedLedger, sum.String())
	}

	var debtors, creditors []domain.NetBalance
	for _, nb := range net {
		switch {
		case nb.Amount.IsNegative():
			debtors = append(debtors, nb)
		case nb.Amount.IsPositive():
			creditors = append(creditors, nb)
		}
	}

	transfers := []domain.Transfer{}

	for len(debtors) > 0 && len(creditors) > 0 {
		d := maxDebtor(debtors)
		c := maxCreditor(creditors)

		amount := debtors[d].Amount.Neg()
		if creditors[c].Amount.LessThan(amount) {
			amount = creditors[c].Amount
		}

		transfers = append(transfers, domain.Transfer{
			FromParticipantID: debtors[d].ParticipantID,
			ToParticipantID:   creditors[c].ParticipantID,
			Amount:            amount,
		})

		debtors[d].Amount = debtors[d].Amount.Add(amount)
		creditors[c].Amount = creditors[c].Amount.Sub(amount)

		if debtors[d].Amount.IsZero() {
			debtors = append(debtors[:d], debtors[d+1:]...)
		}

		if creditors[c].Amount.IsZero() {
			creditors = append(creditors[:c], creditors[c+1:]...)
		}
	}

	// Zero-sum input guarantees both sides drain together.
	if len(debtors) > 0 || len(creditors) > 0 {
		return nil, domain.ErrImbalancedLedger
	}

	return transfers, nil
}

// maxDebtor returns the index of the debtor with the largest outstanding
// debt, ties broken by participant id ascending.
func maxDebtor(debtors []domain.NetBalance) int {
	best := 0
	for i := 1; i < len(debtors); i++ {
		cmp := debtors[i].Amount.Cmp(debtors[best].Amount)
		if cmp < 0 || (cmp == 0 && debtors[i].ParticipantID < debtors[best].ParticipantID) {
			best = i
		}
	}

	return best
}

// maxCreditor returns the index of the creditor with the largest outstanding
// credit, ties broken by participant id ascending.
func maxCreditor(creditors []domain.NetBalance) int {
	best := 0
	for i := 1; i < len(creditors); i++ {
		cmp := creditors[i].Amount.Cmp(creditors[best].Amount)
		if cmp > 0 || (cmp == 0 && creditors[i].ParticipantID < creditors[best].ParticipantID) {
			best = i
		}
	}

	return best
}
