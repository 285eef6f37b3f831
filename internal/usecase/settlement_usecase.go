package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/engine"
)

// SettlementUseCase orchestrates settlement recomputation: it assembles the
// engine's inputs from the collaborators, runs the pure computation, and
// hands the resulting snapshot to the snapshot store. The store's
// version-checked write guarantees that a snapshot computed from a stale
// ledger view never replaces one computed from a newer view, so concurrent
// recomputations of the same trip need no coordination here.
type SettlementUseCase struct {
	tripRepo     TripRepository
	expenseRepo  ExpenseRepository
	snapshotRepo SnapshotRepository
	rates        RateProvider
	idGen        IDGenerator
	logger       zerolog.Logger
	now          func() time.Time
}

// NewSettlementUseCase creates a new SettlementUseCase.
func NewSettlementUseCase(
	tripRepo TripRepository,
	expenseRepo ExpenseRepository,
	snapshotRepo SnapshotRepository,
	rates RateProvider,
	idGen IDGenerator,
	logger zerolog.Logger,
) *SettlementUseCase {
	return &SettlementUseCase{
		tripRepo:     tripRepo,
		expenseRepo:  expenseRepo,
		snapshotRepo: snapshotRepo,
		rates:        rates,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// Recompute derives a fresh settlement snapshot from the trip's current
// ledger state and persists it. If another recomputation already persisted a
// snapshot from an equal or newer ledger version, the newer stored snapshot
// is returned instead of the one computed here.
//
// Engine errors are terminal: no snapshot is persisted and the previously
// stored one stays the trip's current settlement until the inputs are fixed.
func (uc *SettlementUseCase) Recompute(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error) {
	trip, err := uc.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	view, err := uc.expenseRepo.LedgerView(ctx, tripID)
	if err != nil {
		return nil, err
	}

	rates, err := uc.rates.Snapshot(ctx, trip.BaseCurrency)
	if err != nil {
		return nil, err
	}

	snapshot, err := engine.Compute(engine.Input{
		Trip:       trip,
		Ledger:     view,
		Rates:      rates,
		ComputedAt: uc.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	snapshot.ID = uc.idGen.Generate()

	if err := uc.snapshotRepo.Save(ctx, snapshot); err != nil {
		if errors.Is(err, domain.ErrStaleSnapshot) {
			uc.logger.Debug().
				Str("trip_id", tripID).
				Int64("ledger_version", snapshot.SourceLedgerVersion).
				Msg("discarding snapshot from stale ledger version")

			return uc.snapshotRepo.Latest(ctx, tripID)
		}

		return nil, err
	}

	uc.logger.Info().
		Str("trip_id", tripID).
		Str("snapshot_id", snapshot.ID).
		Int64("ledger_version", snapshot.SourceLedgerVersion).
		Int("transfers", len(snapshot.Transfers)).
		Msg("settlement recomputed")

	return snapshot, nil
}

// Latest returns the trip's current settlement snapshot.
func (uc *SettlementUseCase) Latest(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error) {
	if _, err := uc.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}

	return uc.snapshotRepo.Latest(ctx, tripID)
}

// PairwiseDebts returns the raw who-owes-whom view from the trip's current
// snapshot. This is the unsimplified audit view, not settlement instructions.
func (uc *SettlementUseCase) PairwiseDebts(ctx context.Context, tripID string) ([]domain.PairwiseDebt, error) {
	snapshot, err := uc.Latest(ctx, tripID)
	if err != nil {
		return nil, err
	}

	return snapshot.PairwiseDebts, nil
}

// HistoryInput represents input for listing snapshot history.
type HistoryInput struct {
	TripID string
	Limit  int
	Offset int
}

// History lists stored snapshots for a trip, newest first.
func (uc *SettlementUseCase) History(ctx context.Context, input HistoryInput) ([]*domain.SettlementSnapshot, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxSnapshotHistory {
		input.Limit = MaxSnapshotHistory
	}

	if input.Offset < 0 {
		input.Offset = 0
	}

	return uc.snapshotRepo.History(ctx, input.TripID, input.Limit, input.Offset)
}
