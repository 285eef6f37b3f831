package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mkor/tripsettle/internal/adapter/http/dto"
	"github.com/mkor/tripsettle/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrTripNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExpenseNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSnapshotNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnknownParticipant):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMalformedExpense):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrMissingExchangeRate):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrInvalidTripName),
		errors.Is(err, domain.ErrInvalidCurrency),
		errors.Is(err, domain.ErrInvalidParticipantID),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountNotMinorExact),
		errors.Is(err, domain.ErrNoParticipants),
		errors.Is(err, domain.ErrDuplicateMember),
		errors.Is(err, domain.ErrNoShares):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}
