package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mkor/tripsettle/internal/domain"
)

// TripResponse represents a trip in API responses.
type TripResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	BaseCurrency  string                `json:"base_currency"`
	LedgerVersion int64                 `json:"ledger_version"`
	Participants  []ParticipantResponse `json:"participants"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// ParticipantResponse represents a trip member in API responses.
type ParticipantResponse struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	JoinedAt time.Time `json:"joined_at"`
}

// TripFromDomain converts a domain trip to a response.
func TripFromDomain(t *domain.Trip) *TripResponse {
	participants := make([]ParticipantResponse, len(t.Participants))
	for i, p := range t.Participants {
		participants[i] = ParticipantResponse{ID: p.ID, Name: p.Name, JoinedAt: p.JoinedAt}
	}
	return &TripResponse{
		ID:            t.ID,
		Name:          t.Name,
		BaseCurrency:  t.BaseCurrency,
		LedgerVersion: t.LedgerVersion,
		Participants:  participants,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// TripsFromDomain converts domain trips to responses.
func TripsFromDomain(trips []*domain.Trip) []*TripResponse {
	result := make([]*TripResponse, len(trips))
	for i, t := range trips {
		result[i] = TripFromDomain(t)
	}
	return result
}

// ListTripsResponse wraps a page of trips.
type ListTripsResponse struct {
	Trips []*TripResponse `json:"trips"`
	Total int64           `json:"total"`
}

// ExpenseResponse represents an expense in API responses.
type ExpenseResponse struct {
	ID          string          `json:"id"`
	TripID      string          `json:"trip_id"`
	PayerID     string          `json:"payer_id"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Shares      []ShareResponse `json:"shares"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ShareResponse represents one participant's owed portion in responses.
type ShareResponse struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// ExpenseFromDomain converts a domain expense to a response.
func ExpenseFromDomain(e *domain.ExpenseRecord) *ExpenseResponse {
	shares := make([]ShareResponse, len(e.Shares))
	for i, s := range e.Shares {
		shares[i] = ShareResponse{ParticipantID: s.ParticipantID, Amount: s.Amount}
	}
	return &ExpenseResponse{
		ID:          e.ID,
		TripID:      e.TripID,
		PayerID:     e.PayerID,
		Description: e.Description,
		Amount:      e.Amount,
		Currency:    e.Currency,
		Shares:      shares,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// ExpensesFromDomain converts domain expenses to responses.
func ExpensesFromDomain(expenses []*domain.ExpenseRecord) []*ExpenseResponse {
	result := make([]*ExpenseResponse, len(expenses))
	for i, e := range expenses {
		result[i] = ExpenseFromDomain(e)
	}
	return result
}

// ListExpensesResponse wraps a page of expenses.
type ListExpensesResponse struct {
	Expenses []*ExpenseResponse `json:"expenses"`
	Total    int64              `json:"total"`
}

// NetBalanceResponse represents one participant's net position.
type NetBalanceResponse struct {
	ParticipantID string          `json:"participant_id"`
	Amount        decimal.Decimal `json:"amount"`
}

// TransferResponse represents one settlement payment instruction.
type TransferResponse struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// PairwiseDebtResponse represents one direct debt between two participants.
type PairwiseDebtResponse struct {
	DebtorID   string          `json:"debtor_id"`
	CreditorID string          `json:"creditor_id"`
	Currency   string          `json:"currency"`
	Amount     decimal.Decimal `json:"amount"`
}

// SettlementResponse represents a settlement snapshot in API responses.
type SettlementResponse struct {
	ID                  string                 `json:"id"`
	TripID              string                 `json:"trip_id"`
	SourceLedgerVersion int64                  `json:"source_ledger_version"`
	BaseCurrency        string                 `json:"base_currency"`
	NetBalances         []NetBalanceResponse   `json:"net_balances"`
	PairwiseDebts       []PairwiseDebtResponse `json:"pairwise_debts"`
	Transfers           []TransferResponse     `json:"transfers"`
	ComputedAt          time.Time              `json:"computed_at"`
}

// SettlementFromDomain converts a domain snapshot to a response.
func SettlementFromDomain(s *domain.SettlementSnapshot) *SettlementResponse {
	net := make([]NetBalanceResponse, len(s.NetBalances))
	for i, b := range s.NetBalances {
		net[i] = NetBalanceResponse{ParticipantID: b.ParticipantID, Amount: b.Amount}
	}
	transfers := make([]TransferResponse, len(s.Transfers))
	for i, t := range s.Transfers {
		transfers[i] = TransferResponse{From: t.FromParticipantID, To: t.ToParticipantID, Amount: t.Amount}
	}
	return &SettlementResponse{
		ID:                  s.ID,
		TripID:              s.TripID,
		SourceLedgerVersion: s.SourceLedgerVersion,
		BaseCurrency:        s.BaseCurrency,
		NetBalances:         net,
		PairwiseDebts:       PairwiseDebtsFromDomain(s.PairwiseDebts),
		Transfers:           transfers,
		ComputedAt:          s.ComputedAt,
	}
}

// SettlementsFromDomain converts domain snapshots to responses.
func SettlementsFromDomain(snapshots []*domain.SettlementSnapshot) []*SettlementResponse {
	result := make([]*SettlementResponse, len(snapshots))
	for i, s := range snapshots {
		result[i] = SettlementFromDomain(s)
	}
	return result
}

// PairwiseDebtsFromDomain converts domain pairwise debts to responses.
func PairwiseDebtsFromDomain(debts []domain.PairwiseDebt) []PairwiseDebtResponse {
	result := make([]PairwiseDebtResponse, len(debts))
	for i, d := range debts {
		result[i] = PairwiseDebtResponse{
			DebtorID:   d.DebtorID,
			CreditorID: d.CreditorID,
			Currency:   d.Currency,
			Amount:     d.Amount,
		}
	}
	return result
}

// ListSnapshotsResponse wraps a page of settlement snapshots.
type ListSnapshotsResponse struct {
	Snapshots []*SettlementResponse `json:"snapshots"`
	Total     int64                 `json:"total"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
