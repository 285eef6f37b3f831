package integration

import (
	"context"
	"testing"
	"time"

	"github.com/mkor/tripsettle/internal/adapter/repository/postgres"
	"github.com/mkor/tripsettle/internal/usecase"
	"github.com/mkor/tripsettle/tests/testutil"
)

func TestOutboxPublishLifecycle(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	stack := newTestStack(t)
	ctx := context.Background()

	trip := stack.DB.CreateTestTrip(ctx, "Alps", "USD", "alice", "bob")

	if _, err := stack.ExpenseUC.CreateExpense(ctx, usecase.CreateExpenseInput{
		TripID:   trip.ID,
		PayerID:  "alice",
		Amount:   testutil.MustDecimal(t, "10.00"),
		Currency: "USD",
	}); err != nil {
		t.Fatalf("create expense failed: %v", err)
	}

	outboxRepo := postgres.NewOutboxRepository(stack.DB.Pool)

	events, err := outboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("get unpublished failed: %v", err)
	}

	if len(events) != 1 {
		t.Fatalf("expected 1 unpublished event, got %d", len(events))
	}

	event := events[0]
	if event.Payload["trip_id"] != trip.ID {
		t.Fatalf("unexpected payload: %+v", event.Payload)
	}

	if err := outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); err != nil {
		t.Fatalf("mark published failed: %v", err)
	}

	events, err = outboxRepo.GetUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("get unpublished failed: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no unpublished events, got %d", len(events))
	}

	// Published events age out.
	if err := outboxRepo.DeletePublished(ctx, time.Now().UTC().Add(time.Minute)); err != nil {
		t.Fatalf("delete published failed: %v", err)
	}

	if got := stack.DB.CountRows(ctx, "outbox_events"); got != 0 {
		t.Fatalf("expected outbox drained, got %d rows", got)
	}
}
