package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.uber.org/mock/gomock"

	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/usecase"
	"github.com/mkor/tripsettle/internal/usecase/mocks"
)

type expenseMocks struct {
	txManager   *mocks.MockTransactionManager
	tx          *mocks.MockTransaction
	tripRepo    *mocks.MockTripRepository
	expenseRepo *mocks.MockExpenseRepository
	outboxRepo  *mocks.MockOutboxRepository
	idGen       *mocks.MockIDGenerator
}

func newExpenseMocks(ctrl *gomock.Controller) expenseMocks {
	return expenseMocks{
		txManager:   mocks.NewMockTransactionManager(ctrl),
		tx:          mocks.NewMockTransaction(ctrl),
		tripRepo:    mocks.NewMockTripRepository(ctrl),
		expenseRepo: mocks.NewMockExpenseRepository(ctrl),
		outboxRepo:  mocks.NewMockOutboxRepository(ctrl),
		idGen:       mocks.NewMockIDGenerator(ctrl),
	}
}

func (m expenseMocks) useCase() *usecase.ExpenseUseCase {
	return usecase.NewExpenseUseCase(m.txManager, m.tripRepo, m.expenseRepo, m.outboxRepo, nil, m.idGen, zerolog.Nop())
}

func (m expenseMocks) expectTxFlow() {
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Commit(gomock.Any()).Return(nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil).AnyTimes()
}

func TestExpenseUseCase_CreateExpense_EvenSplit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)
	trip := twoPersonTrip()

	m.tripRepo.EXPECT().GetByID(gomock.Any(), "trip-1").Return(trip, nil)
	m.idGen.EXPECT().Generate().Return("exp-1")
	m.expectTxFlow()
	m.tripRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "trip-1").Return(trip, nil)
	m.tripRepo.EXPECT().BumpLedgerVersion(gomock.Any(), m.tx, "trip-1", gomock.Any()).Return(int64(4), nil)

	var created *domain.ExpenseRecord
	m.expenseRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, e *domain.ExpenseRecord) error {
			created = e
			return nil
		})

	m.idGen.EXPECT().Generate().Return("evt-1")
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			if e.EventType != domain.EventTypeExpenseCreated {
				t.Errorf("expected %s event, got %s", domain.EventTypeExpenseCreated, e.EventType)
			}
			return nil
		})

	expense, err := m.useCase().CreateExpense(context.Background(), usecase.CreateExpenseInput{
		TripID:      "trip-1",
		PayerID:     "alice",
		Description: "dinner",
		Amount:      decimal.RequireFromString("101.01"),
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if created == nil || created.ID != "exp-1" {
		t.Fatalf("expense not persisted as expected: %+v", created)
	}

	// 101.01 split two ways: 50.51 to the first participant, 50.50 to the second.
	if len(expense.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(expense.Shares))
	}

	if !expense.Shares[0].Amount.Equal(decimal.RequireFromString("50.51")) {
		t.Errorf("expected first share 50.51, got %s", expense.Shares[0].Amount)
	}

	if !expense.Shares[1].Amount.Equal(decimal.RequireFromString("50.50")) {
		t.Errorf("expected second share 50.50, got %s", expense.Shares[1].Amount)
	}
}

func TestExpenseUseCase_CreateExpense_UnknownPayer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)

	m.tripRepo.EXPECT().GetByID(gomock.Any(), "trip-1").Return(twoPersonTrip(), nil)
	m.idGen.EXPECT().Generate().Return("exp-1")

	_, err := m.useCase().CreateExpense(context.Background(), usecase.CreateExpenseInput{
		TripID:   "trip-1",
		PayerID:  "mallory",
		Amount:   decimal.RequireFromString("20.00"),
		Currency: "USD",
	})
	if !errors.Is(err, domain.ErrUnknownParticipant) {
		t.Fatalf("expected ErrUnknownParticipant, got %v", err)
	}
}

func TestExpenseUseCase_CreateExpense_SharesMustSumToAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)

	m.tripRepo.EXPECT().GetByID(gomock.Any(), "trip-1").Return(twoPersonTrip(), nil)
	m.idGen.EXPECT().Generate().Return("exp-1")

	_, err := m.useCase().CreateExpense(context.Background(), usecase.CreateExpenseInput{
		TripID:   "trip-1",
		PayerID:  "alice",
		Amount:   decimal.RequireFromString("100.00"),
		Currency: "USD",
		Shares: []usecase.ShareInput{
			{ParticipantID: "alice", Amount: decimal.RequireFromString("50.00")},
			{ParticipantID: "bob", Amount: decimal.RequireFromString("49.00")},
		},
	})
	if !errors.Is(err, domain.ErrMalformedExpense) {
		t.Fatalf("expected ErrMalformedExpense, got %v", err)
	}
}

func TestExpenseUseCase_UpdateExpense_ResplitsOnAmountChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)
	trip := twoPersonTrip()

	existing := &domain.ExpenseRecord{
		ID:       "exp-1",
		TripID:   "trip-1",
		PayerID:  "alice",
		Amount:   decimal.RequireFromString("100.00"),
		Currency: "USD",
		Shares: []domain.Share{
			{ParticipantID: "alice", Amount: decimal.RequireFromString("50.00")},
			{ParticipantID: "bob", Amount: decimal.RequireFromString("50.00")},
		},
	}

	m.expenseRepo.EXPECT().GetByID(gomock.Any(), "exp-1").Return(existing, nil)
	m.tripRepo.EXPECT().GetByID(gomock.Any(), "trip-1").Return(trip, nil)
	m.expectTxFlow()
	m.tripRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "trip-1").Return(trip, nil)
	m.tripRepo.EXPECT().BumpLedgerVersion(gomock.Any(), m.tx, "trip-1", gomock.Any()).Return(int64(5), nil)
	m.expenseRepo.EXPECT().Update(gomock.Any(), m.tx, gomock.Any()).Return(nil)
	m.idGen.EXPECT().Generate().Return("evt-2")
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(nil)

	amount := decimal.RequireFromString("60.00")

	expense, err := m.useCase().UpdateExpense(context.Background(), usecase.UpdateExpenseInput{
		ExpenseID: "exp-1",
		Amount:    &amount,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, s := range expense.Shares {
		if !s.Amount.Equal(decimal.RequireFromString("30.00")) {
			t.Errorf("expected re-split share 30.00 for %s, got %s", s.ParticipantID, s.Amount)
		}
	}
}

func TestExpenseUseCase_DeleteExpense(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)

	existing := &domain.ExpenseRecord{ID: "exp-1", TripID: "trip-1", PayerID: "alice"}

	m.expenseRepo.EXPECT().GetByID(gomock.Any(), "exp-1").Return(existing, nil)
	m.expectTxFlow()
	m.tripRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "trip-1").Return(twoPersonTrip(), nil)
	m.tripRepo.EXPECT().BumpLedgerVersion(gomock.Any(), m.tx, "trip-1", gomock.Any()).Return(int64(6), nil)
	m.expenseRepo.EXPECT().MarkDeleted(gomock.Any(), m.tx, "exp-1", gomock.Any()).Return(nil)
	m.idGen.EXPECT().Generate().Return("evt-3")
	m.outboxRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ usecase.Transaction, e *domain.OutboxEvent) error {
			if e.EventType != domain.EventTypeExpenseDeleted {
				t.Errorf("expected %s event, got %s", domain.EventTypeExpenseDeleted, e.EventType)
			}
			return nil
		})

	if err := m.useCase().DeleteExpense(context.Background(), "exp-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExpenseUseCase_DeleteExpense_AlreadyDeleted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)

	m.expenseRepo.EXPECT().GetByID(gomock.Any(), "exp-1").Return(&domain.ExpenseRecord{ID: "exp-1", Deleted: true}, nil)

	if err := m.useCase().DeleteExpense(context.Background(), "exp-1"); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}
}

func TestExpenseUseCase_CreateExpense_RollbackOnWriteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newExpenseMocks(ctrl)
	trip := twoPersonTrip()

	m.tripRepo.EXPECT().GetByID(gomock.Any(), "trip-1").Return(trip, nil)
	m.idGen.EXPECT().Generate().Return("exp-1")
	m.txManager.EXPECT().Begin(gomock.Any()).Return(m.tx, nil)
	m.tx.EXPECT().Rollback(gomock.Any()).Return(nil)
	m.tripRepo.EXPECT().GetByIDForUpdate(gomock.Any(), m.tx, "trip-1").Return(trip, nil)
	m.tripRepo.EXPECT().BumpLedgerVersion(gomock.Any(), m.tx, "trip-1", gomock.Any()).Return(int64(4), nil)
	m.expenseRepo.EXPECT().Create(gomock.Any(), m.tx, gomock.Any()).Return(errors.New("db down"))

	_, err := m.useCase().CreateExpense(context.Background(), usecase.CreateExpenseInput{
		TripID:   "trip-1",
		PayerID:  "alice",
		Amount:   decimal.RequireFromString("10.00"),
		Currency: "USD",
	})
	if err == nil || err.Error() != "db down" {
		t.Fatalf("expected db down error, got %v", err)
	}
}
