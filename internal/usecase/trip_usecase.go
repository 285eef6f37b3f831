package usecase

import (
	"context"
	"time"

	"github.com/mkor/tripsettle/internal/domain"
)

// TripUseCase handles trip lifecycle.
type TripUseCase struct {
	txManager  TransactionManager
	tripRepo   TripRepository
	outboxRepo OutboxRepository
	idGen      IDGenerator
}

// NewTripUseCase creates a new TripUseCase.
func NewTripUseCase(
	txManager TransactionManager,
	tripRepo TripRepository,
	outboxRepo OutboxRepository,
	idGen IDGenerator,
) *TripUseCase {
	return &TripUseCase{
		txManager:  txManager,
		tripRepo:   tripRepo,
		outboxRepo: outboxRepo,
		idGen:      idGen,
	}
}

// CreateTripInput represents input for creating a trip.
type CreateTripInput struct {
	Name         string
	BaseCurrency string
	Participants []ParticipantInput
}

// ParticipantInput represents one trip member.
type ParticipantInput struct {
	ID   string
	Name string
}

// CreateTrip creates a new trip with its participant set.
func (uc *TripUseCase) CreateTrip(ctx context.Context, input CreateTripInput) (*domain.Trip, error) {
	now := time.Now().UTC()

	trip := &domain.Trip{
		ID:            uc.idGen.Generate(),
		Name:          input.Name,
		BaseCurrency:  input.BaseCurrency,
		LedgerVersion: 0,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	for _, p := range input.Participants {
		trip.Participants = append(trip.Participants, domain.Participant{
			ID:       p.ID,
			Name:     p.Name,
			JoinedAt: now,
		})
	}

	if err := trip.Validate(); err != nil {
		return nil, err
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := uc.tripRepo.Create(ctx, tx, trip); err != nil {
		return nil, err
	}

	event := &domain.OutboxEvent{
		ID:            uc.idGen.Generate(),
		AggregateID:   trip.ID,
		AggregateType: domain.AggregateTypeTrip,
		EventType:     domain.EventTypeTripCreated,
		Payload: map[string]any{
			"trip_id":       trip.ID,
			"name":          trip.Name,
			"base_currency": trip.BaseCurrency,
			"participants":  len(trip.Participants),
		},
		CreatedAt: now,
	}

	if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return trip, nil
}

// GetTrip retrieves a trip by ID.
func (uc *TripUseCase) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	return uc.tripRepo.GetByID(ctx, id)
}

// ListTripsInput represents input for listing trips.
type ListTripsInput struct {
	Limit  int
	Offset int
}

// ListTrips lists trips.
func (uc *TripUseCase) ListTrips(ctx context.Context, input ListTripsInput) ([]*domain.Trip, error) {
	if input.Limit <= 0 {
		input.Limit = DefaultPageSize
	}

	if input.Limit > MaxPageSize {
		input.Limit = MaxPageSize
	}

	return uc.tripRepo.List(ctx, input.Limit, input.Offset)
}
