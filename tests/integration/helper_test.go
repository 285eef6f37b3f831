package integration

import (
	"context"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redislib "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	adaptershttp "github.com/mkor/tripsettle/internal/adapter/http"
	"github.com/mkor/tripsettle/internal/adapter/http/handler"
	"github.com/mkor/tripsettle/internal/adapter/repository/postgres"
	redisrepo "github.com/mkor/tripsettle/internal/adapter/repository/redis"
	"github.com/mkor/tripsettle/internal/infrastructure/rates"
	"github.com/mkor/tripsettle/internal/usecase"
	"github.com/mkor/tripsettle/tests/testutil"
)

// testStack wires the full application against a test database and an
// in-process redis.
type testStack struct {
	DB           *testutil.TestDB
	TripUC       *usecase.TripUseCase
	ExpenseUC    *usecase.ExpenseUseCase
	SettlementUC *usecase.SettlementUseCase
	Server       *httptest.Server
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	return newTestStackWithOutbox(t, nil)
}

// newTestStackWithOutbox swaps the outbox repository, letting tests that do
// not assert on events run with a no-op outbox.
func newTestStackWithOutbox(t *testing.T, outboxRepo usecase.OutboxRepository) *testStack {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	t.Cleanup(testDB.Cleanup)
	testDB.TruncateAll(context.Background())

	mr := miniredis.RunT(t)
	redisClient := redislib.NewClient(&redislib.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	pool := testDB.Pool
	txManager := postgres.NewTxManager(pool)
	tripRepo := postgres.NewTripRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	snapshotRepo := postgres.NewSnapshotRepository(pool)
	if outboxRepo == nil {
		outboxRepo = postgres.NewOutboxRepository(pool)
	}
	idGen := postgres.NewULIDGenerator()

	rateProvider, err := rates.NewStaticProvider("USD", map[string]decimal.Decimal{
		"EUR": decimal.RequireFromString("1.25"),
		"GBP": decimal.RequireFromString("2.5"),
	})
	if err != nil {
		t.Fatalf("failed to build rate provider: %v", err)
	}

	settlementUC := usecase.NewSettlementUseCase(tripRepo, expenseRepo, snapshotRepo, rateProvider, idGen, zerolog.Nop())
	tripUC := usecase.NewTripUseCase(txManager, tripRepo, outboxRepo, idGen)
	expenseUC := usecase.NewExpenseUseCase(txManager, tripRepo, expenseRepo, outboxRepo, settlementUC, idGen, zerolog.Nop())

	router := adaptershttp.NewRouter(adaptershttp.RouterConfig{
		TripHandler:       handler.NewTripHandler(tripUC),
		ExpenseHandler:    handler.NewExpenseHandler(expenseUC),
		SettlementHandler: handler.NewSettlementHandler(settlementUC, nil),
		IdempotencyStore:  redisrepo.NewIdempotencyStore(redisClient),
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return &testStack{
		DB:           testDB,
		TripUC:       tripUC,
		ExpenseUC:    expenseUC,
		SettlementUC: settlementUC,
		Server:       server,
	}
}
