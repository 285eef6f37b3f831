package integration

import (
	"context"
	"errors"
	"testing"

	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/usecase"
	"github.com/mkor/tripsettle/tests/testutil"
)

func TestExpenseMutationsBumpLedgerVersion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)
	ctx := context.Background()

	trip := stack.DB.CreateTestTrip(ctx, "Weekend", "USD", "alice", "bob")

	expense, err := stack.ExpenseUC.CreateExpense(ctx, usecase.CreateExpenseInput{
		TripID:      trip.ID,
		PayerID:     "alice",
		Description: "hotel",
		Amount:      testutil.MustDecimal(t, "101.01"),
		Currency:    "USD",
	})
	if err != nil {
		t.Fatalf("create expense failed: %v", err)
	}

	if got := stack.DB.LedgerVersion(ctx, trip.ID); got != 1 {
		t.Fatalf("expected ledger version 1 after create, got %d", got)
	}

	// Even split puts the leftover cent on the earliest participant.
	if len(expense.Shares) != 2 {
		t.Fatalf("expected 2 shares, got %d", len(expense.Shares))
	}
	if !expense.Shares[0].Amount.Equal(testutil.MustDecimal(t, "50.51")) ||
		!expense.Shares[1].Amount.Equal(testutil.MustDecimal(t, "50.50")) {
		t.Fatalf("unexpected split: %s / %s", expense.Shares[0].Amount, expense.Shares[1].Amount)
	}

	newAmount := testutil.MustDecimal(t, "60.00")
	updated, err := stack.ExpenseUC.UpdateExpense(ctx, usecase.UpdateExpenseInput{
		ExpenseID: expense.ID,
		Amount:    &newAmount,
	})
	if err != nil {
		t.Fatalf("update expense failed: %v", err)
	}

	if got := stack.DB.LedgerVersion(ctx, trip.ID); got != 2 {
		t.Fatalf("expected ledger version 2 after update, got %d", got)
	}

	if !updated.Shares[0].Amount.Equal(testutil.MustDecimal(t, "30.00")) {
		t.Fatalf("expected re-split shares, got %s", updated.Shares[0].Amount)
	}

	if err := stack.ExpenseUC.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("delete expense failed: %v", err)
	}

	if got := stack.DB.LedgerVersion(ctx, trip.ID); got != 3 {
		t.Fatalf("expected ledger version 3 after delete, got %d", got)
	}

	// Deleted expenses drop out of reads.
	if _, err := stack.ExpenseUC.GetExpense(ctx, expense.ID); !errors.Is(err, domain.ErrExpenseNotFound) {
		t.Fatalf("expected ErrExpenseNotFound, got %v", err)
	}

	view, err := stack.DB.Pool.Query(ctx, "SELECT id FROM expenses WHERE trip_id = $1 AND NOT deleted", trip.ID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer view.Close()
	if view.Next() {
		t.Fatalf("expected no live expenses after delete")
	}
}

func TestExpenseMutationsWriteOutboxEvents(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)
	ctx := context.Background()

	trip := stack.DB.CreateTestTrip(ctx, "Weekend", "USD", "alice", "bob")

	expense, err := stack.ExpenseUC.CreateExpense(ctx, usecase.CreateExpenseInput{
		TripID:   trip.ID,
		PayerID:  "alice",
		Amount:   testutil.MustDecimal(t, "40.00"),
		Currency: "USD",
	})
	if err != nil {
		t.Fatalf("create expense failed: %v", err)
	}

	if err := stack.ExpenseUC.DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("delete expense failed: %v", err)
	}

	rows, err := stack.DB.Pool.Query(ctx, `
		SELECT event_type FROM outbox_events
		WHERE aggregate_id = $1
		ORDER BY created_at
	`, expense.ID)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	defer rows.Close()

	var types []string
	for rows.Next() {
		var eventType string
		if err := rows.Scan(&eventType); err != nil {
			t.Fatalf("scan failed: %v", err)
		}
		types = append(types, eventType)
	}

	if len(types) != 2 || types[0] != domain.EventTypeExpenseCreated || types[1] != domain.EventTypeExpenseDeleted {
		t.Fatalf("unexpected event types: %v", types)
	}
}

func TestExpenseRejectsUnknownPayer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)
	ctx := context.Background()

	trip := stack.DB.CreateTestTrip(ctx, "Weekend", "USD", "alice", "bob")

	_, err := stack.ExpenseUC.CreateExpense(ctx, usecase.CreateExpenseInput{
		TripID:   trip.ID,
		PayerID:  "mallory",
		Amount:   testutil.MustDecimal(t, "40.00"),
		Currency: "USD",
	})
	if !errors.Is(err, domain.ErrUnknownParticipant) {
		t.Fatalf("expected ErrUnknownParticipant, got %v", err)
	}

	if got := stack.DB.LedgerVersion(ctx, trip.ID); got != 0 {
		t.Fatalf("expected ledger version unchanged, got %d", got)
	}
}
