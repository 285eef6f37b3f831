package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// AggregateBalances reduces the ledger into per-(participant, currency)
// signed balances: positive means the participant is owed, negative that they
// owe. Each record credits the payer with the full amount and debits every
// share; the payer's own share nets against their credit. Records are
// processed independently, so the result does not depend on ordering.
//
// Records failing their own invariants abort the whole aggregation with
// domain.ErrMalformedExpense; records referencing ids outside the
// participant set abort with domain.ErrUnknownParticipant. Dropping a bad
// record silently would corrupt the zero-sum invariant.
func AggregateBalances(records []domain.ExpenseRecord, participants map[string]struct{}) (map[domain.BalanceKey]decimal.Decimal, error) {
	balances := make(map[domain.BalanceKey]decimal.Decimal)

	for _, rec := range records {
		if rec.Deleted {
			continue
		}

		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("expense %s: %w", rec.ID, err)
		}

		if _, ok := participants[rec.PayerID]; !ok {
			return nil, fmt.Errorf("expense %s: %w: payer %s", rec.ID, domain.ErrUnknownParticipant, rec.PayerID)
		}

		payerKey := domain.BalanceKey{ParticipantID: rec.PayerID, Currency: rec.Currency}
		balances[payerKey] = balances[payerKey].Add(rec.Amount)

		for _, share := range rec.Shares {
			if _, ok := participants[share.ParticipantID]; !ok {
				return nil, fmt.Errorf("expense %s: %w: %s", rec.ID, domain.ErrUnknownParticipant, share.ParticipantID)
			}

			key := domain.BalanceKey{ParticipantID: share.ParticipantID, Currency: rec.Currency}
			balances[key] = balances[key].Sub(share.Amount)
		}
	}

	return balances, nil
}
