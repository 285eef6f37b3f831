package dto

import (
	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/usecase"
)

// CreateTripRequest represents a request to create a trip.
type CreateTripRequest struct {
	Name         string            `json:"name"`
	BaseCurrency string            `json:"base_currency"`
	Participants []ParticipantItem `json:"participants"`
}

// ParticipantItem represents a single trip member in a request.
type ParticipantItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateTripRequest) ToUseCaseInput() usecase.CreateTripInput {
	participants := make([]usecase.ParticipantInput, len(r.Participants))
	for i, p := range r.Participants {
		participants[i] = usecase.ParticipantInput{ID: p.ID, Name: p.Name}
	}
	return usecase.CreateTripInput{
		Name:         r.Name,
		BaseCurrency: r.BaseCurrency,
		Participants: participants,
	}
}

// ShareItem represents one participant's owed portion in a request.
type ShareItem struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// CreateExpenseRequest represents a request to log an expense. An empty
// shares list means an even split across all trip participants.
type CreateExpenseRequest struct {
	PayerID     string          `json:"payer_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Shares      []ShareItem     `json:"shares,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateExpenseRequest) ToUseCaseInput(tripID string) usecase.CreateExpenseInput {
	return usecase.CreateExpenseInput{
		TripID:      tripID,
		PayerID:     r.PayerID,
		Description: r.Description,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Shares:      sharesToUseCase(r.Shares),
	}
}

// UpdateExpenseRequest represents a request to edit an expense. Omitted
// fields keep their current values.
type UpdateExpenseRequest struct {
	Description *string          `json:"description,omitempty"`
	PayerID     *string          `json:"payer_id,omitempty"`
	Amount      *decimal.Decimal `json:"amount,omitempty"`
	Currency    *string          `json:"currency,omitempty"`
	Shares      []ShareItem      `json:"shares,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *UpdateExpenseRequest) ToUseCaseInput(expenseID string) usecase.UpdateExpenseInput {
	return usecase.UpdateExpenseInput{
		ExpenseID:   expenseID,
		Description: r.Description,
		PayerID:     r.PayerID,
		Amount:      r.Amount,
		Currency:    r.Currency,
		Shares:      sharesToUseCase(r.Shares),
	}
}

func sharesToUseCase(items []ShareItem) []usecase.ShareInput {
	if len(items) == 0 {
		return nil
	}
	shares := make([]usecase.ShareInput, len(items))
	for i, s := range items {
		shares[i] = usecase.ShareInput{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	return shares
}
