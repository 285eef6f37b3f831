package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ExpenseRecord is one logged expense: a payer who fronted the full amount and
// an ordered list of shares saying how much of it each participant owes.
// Shares must sum exactly to Amount; no rounding happens at this level.
type ExpenseRecord struct {
	ID          string
	TripID      string
	PayerID     string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Shares      []Share
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Deleted     bool
}

// Share is one participant's owed portion of an expense.
type Share struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// Validate validates the expense against its own invariants: positive
// minor-unit-exact amount, non-negative minor-unit-exact shares, and shares
// summing exactly to the amount.
func (e *ExpenseRecord) Validate() error {
	if err := ValidateCurrency(e.Currency); err != nil {
		return err
	}

	if err := ValidateAmount(e.Amount, e.Currency); err != nil {
		return err
	}

	if len(e.Shares) == 0 {
		return ErrNoShares
	}

	sum := decimal.Zero
	seen := make(map[string]struct{}, len(e.Shares))

	for _, s := range e.Shares {
		if err := ValidateParticipantID(s.ParticipantID); err != nil {
			return err
		}

		if _, dup := seen[s.ParticipantID]; dup {
			return fmt.Errorf("%w: participant %s appears twice in split", ErrMalformedExpense, s.ParticipantID)
		}
		seen[s.ParticipantID] = struct{}{}

		if s.Amount.IsNegative() {
			return fmt.Errorf("%w: negative share for participant %s", ErrMalformedExpense, s.ParticipantID)
		}

		if !IsMinorUnitExact(s.Amount, e.Currency) {
			return fmt.Errorf("%w: share %s is not minor-unit exact in %s", ErrMalformedExpense, s.Amount.String(), e.Currency)
		}

		sum = sum.Add(s.Amount)
	}

	if !sum.Equal(e.Amount) {
		return fmt.Errorf("%w: shares sum to %s, amount is %s", ErrMalformedExpense, sum.String(), e.Amount.String())
	}

	return nil
}

// ExpenseLedgerView is a consistent snapshot of a trip's non-deleted expense
// records together with the ledger version that produced it.
type ExpenseLedgerView struct {
	TripID  string
	Version int64
	Records []ExpenseRecord
}
