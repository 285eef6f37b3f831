package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// ExpenseUseCase handles expense mutations. Every mutation bumps the trip's
// ledger version in the same transaction, writes an outbox event, and then
// triggers a settlement recomputation. A failed recomputation does not roll
// back the expense write; the previous snapshot simply stays current until
// the inputs are fixed.
type ExpenseUseCase struct {
	txManager   TransactionManager
	tripRepo    TripRepository
	expenseRepo ExpenseRepository
	outboxRepo  OutboxRepository
	settlement  *SettlementUseCase
	idGen       IDGenerator
	logger      zerolog.Logger
}

// NewExpenseUseCase creates a new ExpenseUseCase.
func NewExpenseUseCase(
	txManager TransactionManager,
	tripRepo TripRepository,
	expenseRepo ExpenseRepository,
	outboxRepo OutboxRepository,
	settlement *SettlementUseCase,
	idGen IDGenerator,
	logger zerolog.Logger,
) *ExpenseUseCase {
	return &ExpenseUseCase{
		txManager:   txManager,
		tripRepo:    tripRepo,
		expenseRepo: expenseRepo,
		outboxRepo:  outboxRepo,
		settlement:  settlement,
		idGen:       idGen,
		logger:      logger,
	}
}

// ShareInput is one participant's owed portion in a split.
type ShareInput struct {
	ParticipantID string
	Amount        decimal.Decimal
}

// CreateExpenseInput represents input for logging an expense. When Shares is
// empty the amount is split evenly across all trip participants.
type CreateExpenseInput struct {
	TripID      string
	PayerID     string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Shares      []ShareInput
}

// CreateExpense logs a new expense against a trip.
func (uc *ExpenseUseCase) CreateExpense(ctx context.Context, input CreateExpenseInput) (*domain.ExpenseRecord, error) {
	trip, err := uc.tripRepo.GetByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	expense := &domain.ExpenseRecord{
		ID:          uc.idGen.Generate(),
		TripID:      trip.ID,
		PayerID:     input.PayerID,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    input.Currency,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	expense.Shares, err = uc.resolveShares(trip, input.Amount, input.Currency, input.Shares)
	if err != nil {
		return nil, err
	}

	if err := uc.validateAgainstTrip(trip, expense); err != nil {
		return nil, err
	}

	version, err := uc.writeMutation(ctx, trip.ID, expense, domain.EventTypeExpenseCreated, func(ctx context.Context, tx Transaction) error {
		return uc.expenseRepo.Create(ctx, tx, expense)
	})
	if err != nil {
		return nil, err
	}

	uc.triggerRecompute(ctx, trip.ID, version)

	return expense, nil
}

// UpdateExpenseInput represents input for editing an expense. Zero-value
// fields keep their current values; Shares replaces the whole split when
// non-empty.
type UpdateExpenseInput struct {
	ExpenseID   string
	Description *string
	PayerID     *string
	Amount      *decimal.Decimal
	Currency    *string
	Shares      []ShareInput
}

// UpdateExpense edits an existing expense.
func (uc *ExpenseUseCase) UpdateExpense(ctx context.Context, input UpdateExpenseInput) (*domain.ExpenseRecord, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, input.ExpenseID)
	if err != nil {
		return nil, err
	}

	if expense.Deleted {
		return nil, domain.ErrExpenseNotFound
	}

	trip, err := uc.tripRepo.GetByID(ctx, expense.TripID)
	if err != nil {
		return nil, err
	}

	if input.Description != nil {
		expense.Description = *input.Description
	}

	if input.PayerID != nil {
		expense.PayerID = *input.PayerID
	}

	if input.Amount != nil {
		expense.Amount = *input.Amount
	}

	if input.Currency != nil {
		expense.Currency = *input.Currency
	}

	if len(input.Shares) > 0 {
		expense.Shares = make([]domain.Share, 0, len(input.Shares))
		for _, s := range input.Shares {
			expense.Shares = append(expense.Shares, domain.Share{ParticipantID: s.ParticipantID, Amount: s.Amount})
		}
	} else if input.Amount != nil || input.Currency != nil {
		// Amount or currency changed without an explicit split: re-split
		// evenly across the previous share holders.
		ids := make([]string, 0, len(expense.Shares))
		for _, s := range expense.Shares {
			ids = append(ids, s.ParticipantID)
		}

		expense.Shares, err = domain.SplitEvenly(expense.Amount, expense.Currency, ids)
		if err != nil {
			return nil, err
		}
	}

	expense.UpdatedAt = time.Now().UTC()

	if err := uc.validateAgainstTrip(trip, expense); err != nil {
		return nil, err
	}

	version, err := uc.writeMutation(ctx, trip.ID, expense, domain.EventTypeExpenseUpdated, func(ctx context.Context, tx Transaction) error {
		return uc.expenseRepo.Update(ctx, tx, expense)
	})
	if err != nil {
		return nil, err
	}

	uc.triggerRecompute(ctx, trip.ID, version)

	return expense, nil
}

// DeleteExpense soft-deletes an expense so the ledger keeps its history.
func (uc *ExpenseUseCase) DeleteExpense(ctx context.Context, expenseID string) error {
	expense, err := uc.expenseRepo.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}

	if expense.Deleted {
		return domain.ErrExpenseNotFound
	}

	now := time.Now().UTC()

	version, err := uc.writeMutation(ctx, expense.TripID, expense, domain.EventTypeExpenseDeleted, func(ctx context.Context, tx Transaction) error {
		return uc.expenseRepo.MarkDeleted(ctx, tx, expenseID, now)
	})
	if err != nil {
		return err
	}

	uc.triggerRecompute(ctx, expense.TripID, version)

	return nil
}

// GetExpense retrieves a single expense by ID.
func (uc *ExpenseUseCase) GetExpense(ctx context.Context, id string) (*domain.ExpenseRecord, error) {
	expense, err := uc.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if expense.Deleted {
		return nil, domain.ErrExpenseNotFound
	}

	return expense, nil
}

// ListExpensesInput represents input for listing a trip's expenses.
type ListExpensesInput struct {
	TripID string
	Limit  int
	Offset int
}

// ListExpenses lists a trip's non-deleted expenses.
func (uc *ExpenseUseCase) ListExpenses(ctx context.Context, input ListExpensesInput) ([]*domain.ExpenseRecord, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.expenseRepo.ListByTrip(ctx, input.TripID, input.Limit, input.Offset)
}

func (uc *ExpenseUseCase) resolveShares(trip *domain.Trip, amount decimal.Decimal, currency string, inputs []ShareInput) ([]domain.Share, error) {
	if len(inputs) == 0 {
		ids := make([]string, 0, len(trip.Participants))
		for _, p := range trip.Participants {
			ids = append(ids, p.ID)
		}

		return domain.SplitEvenly(amount, currency, ids)
	}

	shares := make([]domain.Share, 0, len(inputs))
	for _, s := range inputs {
		shares = append(shares, domain.Share{ParticipantID: s.ParticipantID, Amount: s.Amount})
	}

	return shares, nil
}

// validateAgainstTrip checks the expense's own invariants and that every
// referenced participant belongs to the trip.
func (uc *ExpenseUseCase) validateAgainstTrip(trip *domain.Trip, expense *domain.ExpenseRecord) error {
	if err := expense.Validate(); err != nil {
		return err
	}

	if !trip.HasParticipant(expense.PayerID) {
		return fmt.Errorf("%w: payer %s", domain.ErrUnknownParticipant, expense.PayerID)
	}

	for _, share := range expense.Shares {
		if !trip.HasParticipant(share.ParticipantID) {
			return fmt.Errorf("%w: %s", domain.ErrUnknownParticipant, share.ParticipantID)
		}
	}

	return nil
}

// writeMutation runs one expense mutation transactionally: lock the trip,
// bump its ledger version, apply the mutation, and record an outbox event.
func (uc *ExpenseUseCase) writeMutation(
	ctx context.Context,
	tripID string,
	expense *domain.ExpenseRecord,
	eventType string,
	mutate func(ctx context.Context, tx Transaction) error,
) (int64, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	if _, err := uc.tripRepo.GetByIDForUpdate(ctx, tx, tripID); err != nil {
		return 0, err
	}

	now := time.Now().UTC()

	version, err := uc.tripRepo.BumpLedgerVersion(ctx, tx, tripID, now)
	if err != nil {
		return 0, err
	}

	if err := mutate(ctx, tx); err != nil {
		return 0, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   expense.ID,
		AggregateType: domain.AggregateTypeExpense,
		EventType:     eventType,
		Payload: map[string]any{
			"expense_id":     expense.ID,
			"trip_id":        tripID,
			"payer_id":       expense.PayerID,
			"amount":         expense.Amount.String(),
			"currency":       expense.Currency,
			"ledger_version": version,
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return version, nil
}

// triggerRecompute runs a settlement recomputation after a committed ledger
// change. The expense write already succeeded; a failing recomputation is
// logged and the previous snapshot stays current.
func (uc *ExpenseUseCase) triggerRecompute(ctx context.Context, tripID string, version int64) {
	if uc.settlement == nil {
		return
	}

	if _, err := uc.settlement.Recompute(ctx, tripID); err != nil {
		uc.logger.Error().
			Err(err).
			Str("trip_id", tripID).
			Int64("ledger_version", version).
			Msg("settlement recomputation failed after ledger change")
	}
}
