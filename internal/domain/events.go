package domain

import "time"

// Event types
const (
	EventTypeExpenseCreated       = "expense.created"
	EventTypeExpenseUpdated       = "expense.updated"
	EventTypeExpenseDeleted       = "expense.deleted"
	EventTypeTripCreated          = "trip.created"
	EventTypeSettlementRecomputed = "settlement.recomputed"
)

// Aggregate types
const (
	AggregateTypeTrip       = "trip"
	AggregateTypeExpense    = "expense"
	AggregateTypeSettlement = "settlement"
)

// OutboxEvent represents an event to be published
type OutboxEvent struct {
	ID            string
	AggregateID   string
	AggregateType string
	EventType     string
	Payload       map[string]any
	CreatedAt     time.Time
	PublishedAt   *time.Time
	Published     bool
}

// ExpenseChangedEvent payload for expense create/update/delete events.
type ExpenseChangedEvent struct {
	ExpenseID     string `json:"expense_id"`
	TripID        string `json:"trip_id"`
	PayerID       string `json:"payer_id"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	LedgerVersion int64  `json:"ledger_version"`
}

// SettlementRecomputedEvent payload
type SettlementRecomputedEvent struct {
	SnapshotID          string `json:"snapshot_id"`
	TripID              string `json:"trip_id"`
	SourceLedgerVersion int64  `json:"source_ledger_version"`
	TransferCount       int    `json:"transfer_count"`
}
