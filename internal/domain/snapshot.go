package domain

import "time"

// SettlementSnapshot is the immutable output bundle of one settlement
// computation: net balances, raw pairwise debts, and the minimal transfers
// that settle everyone, tagged with the ledger version the computation read.
// Snapshots are never mutated; a newer ledger version produces a fresh one
// and superseded snapshots are kept as history.
type SettlementSnapshot struct {
	ID                  string
	TripID              string
	SourceLedgerVersion int64
	BaseCurrency        string
	NetBalances         []NetBalance
	PairwiseDebts       []PairwiseDebt
	Transfers           []Transfer
	ComputedAt          time.Time
}
