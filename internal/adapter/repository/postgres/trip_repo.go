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

// TripRepository implements usecase.TripRepository.
type TripRepository struct {
	pool *pgxpool.Pool
}

// NewTripRepository creates a new TripRepository.
func NewTripRepository(pool *pgxpool.Pool) *TripRepository {
	return &TripRepository{pool: pool}
}

// Create inserts a trip and its participant set within a transaction.
func (r *TripRepository) Create(ctx context.Context, tx usecase.Transaction, trip *domain.Trip) error {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		INSERT INTO trips (id, name, base_currency, ledger_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := pgxTx.Exec(ctx, query,
		trip.ID,
		trip.Name,
		trip.BaseCurrency,
		trip.LedgerVersion,
		trip.CreatedAt,
		trip.UpdatedAt,
	)
	if err != nil {
		return err
	}

	for _, p := range trip.Participants {
		_, err := pgxTx.Exec(ctx, `
			INSERT INTO trip_participants (trip_id, participant_id, name, joined_at)
			VALUES ($1, $2, $3, $4)
		`, trip.ID, p.ID, p.Name, p.JoinedAt)
		if err != nil {
			return err
		}
	}

	return nil
}

// GetByID retrieves a trip with its participants.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `
		SELECT id, name, base_currency, ledger_version, created_at, updated_at
		FROM trips
		WHERE id = $1
	`

	var trip domain.Trip
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.Name,
		&trip.BaseCurrency,
		&trip.LedgerVersion,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}

	trip.Participants, err = r.loadParticipants(ctx, r.pool, id)
	if err != nil {
		return nil, err
	}

	return &trip, nil
}

// GetByIDForUpdate retrieves a trip with its row locked for the duration of
// the transaction.
func (r *TripRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Trip, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		SELECT id, name, base_currency, ledger_version, created_at, updated_at
		FROM trips
		WHERE id = $1
		FOR UPDATE
	`

	var trip domain.Trip
	err := pgxTx.QueryRow(ctx, query, id).Scan(
		&trip.ID,
		&trip.Name,
		&trip.BaseCurrency,
		&trip.LedgerVersion,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}
	if err != nil {
		return nil, err
	}

	trip.Participants, err = r.loadParticipants(ctx, pgxTx, id)
	if err != nil {
		return nil, err
	}

	return &trip, nil
}

// List retrieves trips with pagination.
func (r *TripRepository) List(ctx context.Context, limit, offset int) ([]*domain.Trip, error) {
	query := `
		SELECT id, name, base_currency, ledger_version, created_at, updated_at
		FROM trips
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		var trip domain.Trip
		err := rows.Scan(
			&trip.ID,
			&trip.Name,
			&trip.BaseCurrency,
			&trip.LedgerVersion,
			&trip.CreatedAt,
			&trip.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		trips = append(trips, &trip)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, trip := range trips {
		trip.Participants, err = r.loadParticipants(ctx, r.pool, trip.ID)
		if err != nil {
			return nil, err
		}
	}

	return trips, nil
}

// BumpLedgerVersion increments the trip's ledger version and returns the new
// value. Requires the trip row to already be locked via GetByIDForUpdate.
func (r *TripRepository) BumpLedgerVersion(ctx context.Context, tx usecase.Transaction, id string, updatedAt time.Time) (int64, error) {
	pgxTx := tx.(*Tx).PgxTx()

	query := `
		UPDATE trips
		SET ledger_version = ledger_version + 1, updated_at = $2
		WHERE id = $1
		RETURNING ledger_version
	`

	var version int64
	err := pgxTx.QueryRow(ctx, query, id, updatedAt).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrTripNotFound
	}

	return version, err
}

// querier covers both pool and transaction query surfaces.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *TripRepository) loadParticipants(ctx context.Context, q querier, tripID string) ([]domain.Participant, error) {
	rows, err := q.Query(ctx, `
		SELECT participant_id, name, joined_at
		FROM trip_participants
		WHERE trip_id = $1
		ORDER BY participant_id
	`, tripID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
