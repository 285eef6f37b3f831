package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/usecase"
)

// ExpenseRepository implements usecase.ExpenseRepository.
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

// Create inserts an expense and its shares within a transaction.
func (r *ExpenseRepository) Create(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO expenses (id, trip_id, payer_id, description, amount, currency, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := pgxTx.Exec(ctx, query,
		expense.ID,
		expense.TripID,
		expense.PayerID,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.Deleted,
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		return err
	}

	return r.insertShares(ctx, pgxTx, expense)
}

// Update rewrites an expense and replaces its share split.
func (r *ExpenseRepository) Update(ctx context.Context, tx usecase.Transaction, expense *domain.ExpenseRecord) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE expenses
		SET payer_id = $2, description = $3, amount = $4, currency = $5, updated_at = $6
		WHERE id = $1 AND NOT deleted
	`

	tag, err := pgxTx.Exec(ctx, query,
		expense.ID,
		expense.PayerID,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	if _, err := pgxTx.Exec(ctx, `DELETE FROM expense_shares WHERE expense_id = $1`, expense.ID); err != nil {
		return err
	}

	return r.insertShares(ctx, pgxTx, expense)
}

// MarkDeleted soft-deletes an expense, keeping it for history.
func (r *ExpenseRepository) MarkDeleted(ctx context.Context, tx usecase.Transaction, id string, deletedAt time.Time) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		UPDATE expenses
		SET deleted = TRUE, updated_at = $2
		WHERE id = $1 AND NOT deleted
	`, id, deletedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}

	return nil
}

// GetByID retrieves an expense with its shares.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*domain.ExpenseRecord, error) {
	query := `
		SELECT id, trip_id, payer_id, description, amount, currency, deleted, created_at, updated_at
		FROM expenses
		WHERE id = $1
	`

	var expense domain.ExpenseRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&expense.ID,
		&expense.TripID,
		&expense.PayerID,
		&expense.Description,
		&expense.Amount,
		&expense.Currency,
		&expense.Deleted,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}

	expense.Shares, err = loadShares(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	return &expense, nil
}

// ListByTrip lists a trip's non-deleted expenses, newest first.
func (r *ExpenseRepository) ListByTrip(ctx context.Context, tripID string, limit, offset int) ([]*domain.ExpenseRecord, error) {
	query := `
		SELECT id, trip_id, payer_id, description, amount, currency, deleted, created_at, updated_at
		FROM expenses
		WHERE trip_id = $1 AND NOT deleted
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.pool.Query(ctx, query, tripID, limit, offset)
	if err != nil {
		return nil, err
	}

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}

	for _, expense := range expenses {
		expense.Shares, err = loadShares(ctx, r.pool, expense.ID)
		if err != nil {
			return nil, err
		}
	}

	return expenses, nil
}

// LedgerView returns all non-deleted records of a trip together with the
// trip's current ledger version. Both are read in one repeatable-read
// transaction so the version always matches the record set.
func (r *ExpenseRepository) LedgerView(ctx context.Context, tripID string) (*domain.ExpenseLedgerView, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	view := &domain.ExpenseLedgerView{TripID: tripID}

	err = tx.QueryRow(ctx, `SELECT ledger_version FROM trips WHERE id = $1`, tripID).Scan(&view.Version)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT id, trip_id, payer_id, description, amount, currency, deleted, created_at, updated_at
		FROM expenses
		WHERE trip_id = $1 AND NOT deleted
		ORDER BY created_at, id
	`, tripID)
	if err != nil {
		return nil, err
	}

	expenses, err := scanExpenses(rows)
	if err != nil {
		return nil, err
	}

	view.Records = make([]domain.ExpenseRecord, 0, len(expenses))
	for _, expense := range expenses {
		expense.Shares, err = loadShares(ctx, tx, expense.ID)
		if err != nil {
			return nil, err
		}
		view.Records = append(view.Records, *expense)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return view, nil
}

func (r *ExpenseRepository) insertShares(ctx context.Context, tx pgx.Tx, expense *domain.ExpenseRecord) error {
	for _, s := range expense.Shares {
		_, err := tx.Exec(ctx, `
			INSERT INTO expense_shares (expense_id, participant_id, amount)
			VALUES ($1, $2, $3)
		`, expense.ID, s.ParticipantID, s.Amount)
		if err != nil {
			return err
		}
	}

	return nil
}

func scanExpenses(rows pgx.Rows) ([]*domain.ExpenseRecord, error) {
	defer rows.Close()

	var expenses []*domain.ExpenseRecord
	for rows.Next() {
		var expense domain.ExpenseRecord
		err := rows.Scan(
			&expense.ID,
			&expense.TripID,
			&expense.PayerID,
			&expense.Description,
			&expense.Amount,
			&expense.Currency,
			&expense.Deleted,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, &expense)
	}

	return expenses, rows.Err()
}

func loadShares(ctx context.Context, q querier, expenseID string) ([]domain.Share, error) {
	rows, err := q.Query(ctx, `
		SELECT participant_id, amount
		FROM expense_shares
		WHERE expense_id = $1
		ORDER BY participant_id
	`, expenseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domain.Share
	for rows.Next() {
		var s domain.Share
		if err := rows.Scan(&s.ParticipantID, &s.Amount); err != nil {
			return nil, err
		}
		shares = append(shares, s)
	}

	return shares, rows.Err()
}
