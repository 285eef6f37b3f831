package domain

import "errors"

var (
	// Engine errors
	ErrMalformedExpense    = errors.New("expense shares do not sum to amount")
	ErrMissingExchangeRate = errors.New("missing exchange rate")
	ErrUnknownParticipant  = errors.New("participant not in trip")
	ErrImbalancedLedger    = errors.New("net balances do not sum to zero")

	// Trip errors
	ErrTripNotFound       = errors.New("trip not found")
	ErrNoParticipants     = errors.New("trip has no participants")
	ErrDuplicateMember    = errors.New("duplicate participant id")

	// Expense errors
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrNoShares        = errors.New("expense has no shares")

	// Snapshot errors
	ErrSnapshotNotFound = errors.New("settlement snapshot not found")
	ErrStaleSnapshot    = errors.New("snapshot derived from stale ledger version")
)
