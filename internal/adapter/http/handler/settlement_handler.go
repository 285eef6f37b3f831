package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkor/tripsettle/internal/adapter/http/dto"
	"github.com/mkor/tripsettle/internal/domain"
	"github.com/mkor/tripsettle/internal/infrastructure/metrics"
	"github.com/mkor/tripsettle/internal/usecase"
)

// SettlementService defines the behavior needed by SettlementHandler.
type SettlementService interface {
	Recompute(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error)
	Latest(ctx context.Context, tripID string) (*domain.SettlementSnapshot, error)
	PairwiseDebts(ctx context.Context, tripID string) ([]domain.PairwiseDebt, error)
	History(ctx context.Context, input usecase.HistoryInput) ([]*domain.SettlementSnapshot, error)
}

// SettlementHandler handles settlement-related HTTP requests.
type SettlementHandler struct {
	settlementUC SettlementService
	metrics      *metrics.Metrics
}

// NewSettlementHandler creates a new SettlementHandler.
func NewSettlementHandler(settlementUC SettlementService, m *metrics.Metrics) *SettlementHandler {
	return &SettlementHandler{settlementUC: settlementUC, metrics: m}
}

// Latest returns the trip's current settlement snapshot.
func (h *SettlementHandler) Latest(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	snapshot, err := h.settlementUC.Latest(r.Context(), tripID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get settlement", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(snapshot))
}

// Recompute forces a settlement recomputation from the current ledger state.
func (h *SettlementHandler) Recompute(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	start := time.Now()

	snapshot, err := h.settlementUC.Recompute(r.Context(), tripID)
	if err != nil {
		if h.metrics != nil {
			h.metrics.SettlementErrors.WithLabelValues(errorLabel(err)).Inc()
		}
		writeError(w, mapDomainError(err), "failed to recompute settlement", err.Error())
		return
	}

	if h.metrics != nil {
		h.metrics.SettlementsComputed.Inc()
		h.metrics.SettlementDuration.Observe(time.Since(start).Seconds())
		h.metrics.SettlementTransfers.Observe(float64(len(snapshot.Transfers)))
	}

	writeJSON(w, http.StatusOK, dto.SettlementFromDomain(snapshot))
}

// Pairwise returns the raw who-owes-whom view from the current snapshot.
func (h *SettlementHandler) Pairwise(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	debts, err := h.settlementUC.PairwiseDebts(r.Context(), tripID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get pairwise debts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PairwiseDebtsFromDomain(debts))
}

// History lists stored snapshots for a trip, newest first.
func (h *SettlementHandler) History(w http.ResponseWriter, r *http.Request) {
	tripID := chi.URLParam(r, "id")
	if tripID == "" {
		writeError(w, http.StatusBadRequest, "missing trip ID", "")
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	snapshots, err := h.settlementUC.History(r.Context(), usecase.HistoryInput{
		TripID: tripID,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list snapshot history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ListSnapshotsResponse{
		Snapshots: dto.SettlementsFromDomain(snapshots),
		Total:     int64(len(snapshots)),
	})
}

// errorLabel buckets settlement errors into low-cardinality metric labels.
func errorLabel(err error) string {
	switch mapDomainError(err) {
	case http.StatusNotFound:
		return "not_found"
	case http.StatusUnprocessableEntity, http.StatusBadRequest:
		return "invalid_input"
	default:
		return "internal"
	}
}
