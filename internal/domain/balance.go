package domain

import "github.com/shopspring/decimal"

// BalanceKey identifies a per-currency balance line for one participant.
type BalanceKey struct {
	ParticipantID string
	Currency      string
}

// NetBalance is a participant's single signed amount in the trip's base
// currency. Positive means the participant is owed money, negative that they
// owe. All net balances of a trip sum to exactly zero.
type NetBalance struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// Transfer is one settling payment: FromParticipantID pays ToParticipantID
// the amount, in base-currency units.
type Transfer struct {
	FromParticipantID string
	ToParticipantID   string
	Amount            decimal.Decimal
}

// PairwiseDebt is a direct, unsimplified debt taken straight from the raw
// expense records: per currency, what the debtor directly owes the creditor
// before any cross-currency netting or simplification. Display/audit only.
type PairwiseDebt struct {
	DebtorID   string
	CreditorID string
	Currency   string
	Amount     decimal.Decimal
}
