package usecase

import (
	"context"
	"time"

	"github.com/mkor/tripsettle/internal/domain"
)

// TripRepository defines data access for trips and their participant sets.
type TripRepository interface {
	Create(ctx context.Context, tx Transaction, trip *domain.Trip) error
	GetByID(ctx context.Context, id string) (*domain.Trip, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Trip, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Trip, error)
	// BumpLedgerVersion increments the trip's ledger version and returns the
	// new value. Must run inside the same transaction as the expense
	// mutation it accounts for.
	BumpLedgerVersion(ctx context.Context, tx Transaction, id string, updatedAt time.Time) (int64, error)
}

// ExpenseRepository defines data access for expense records.
type ExpenseRepository interface {
	Create(ctx context.Context, tx Transaction, expense *domain.ExpenseRecord) error
	Update(ctx context.Context, tx Transaction, expense *domain.ExpenseRecord) error
	MarkDeleted(ctx context.Context, tx Transaction, id string, deletedAt time.Time) error
	GetByID(ctx context.Context, id string) (*domain.ExpenseRecord, error)
	ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*domain.ExpenseRecord, error)
	// LedgerView returns all non-deleted records of a trip together with the
	// trip's current ledger version, read consistently.
	LedgerView(ctx context.Context, tripID string) (*domain.ExpenseLedgerView, error)
}

// SnapshotRepository defines data access for settlement snapshots.
type SnapshotRepository interface {
	// Save persists a snapshot. Returns domain.ErrStaleSnapshot when a
	// snapshot for the same trip with an equal or newer source ledger
	// version already exists; superseded snapshots are kept as history.
	Save(ctx context.Context, snapshot *domain.SettlementSnapshot) error
	Latest(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error)
	History(ctx context.Context, tripID string, limit, offset int) ([]*domain.SettlementSnapshot, error)
}

// RateProvider supplies exchange-rate snapshots into a base currency.
type RateProvider interface {
	Snapshot(ctx context.Context, baseCurrency string) (*domain.RateSnapshot, error)
}

// OutboxRepository defines data access for outbox events.
type OutboxRepository interface {
	Create(ctx context.Context, tx Transaction, event *domain.OutboxEvent) error
	GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id string, publishedAt time.Time) error
	DeletePublished(ctx context.Context, before time.Time) error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
