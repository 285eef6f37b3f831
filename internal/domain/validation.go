package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidTripName      = errors.New("invalid trip name")
	ErrInvalidCurrency      = errors.New("invalid currency code")
	ErrInvalidParticipantID = errors.New("invalid participant id")
	ErrAmountTooLarge       = errors.New("amount exceeds maximum allowed")
	ErrAmountNotMinorExact  = errors.New("amount is not a whole number of minor units")
)

// Validation constants
const (
	MaxTripNameLength  = 255
	MinTripNameLength  = 1
	MaxParticipantIDs  = 64
	MaxExpenseAmount   = "1000000000" // 1 billion, any currency
	MaxParticipantIDLen = 64
)

// ValidateTripName validates a trip name.
func ValidateTripName(name string) error {
	name = strings.TrimSpace(name)

	if len(name) < MinTripNameLength {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidTripName)
	}

	if len(name) > MaxTripNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidTripName, MaxTripNameLength)
	}

	return nil
}

// ValidateParticipantID validates a participant identifier.
func ValidateParticipantID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidParticipantID)
	}

	if len(id) > MaxParticipantIDLen {
		return fmt.Errorf("%w: id exceeds %d characters", ErrInvalidParticipantID, MaxParticipantIDLen)
	}

	return nil
}

// ValidateAmount validates an expense amount in its currency.
func ValidateAmount(amount decimal.Decimal, currency string) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	maxAmount, _ := decimal.NewFromString(MaxExpenseAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxExpenseAmount)
	}

	if !IsMinorUnitExact(amount, currency) {
		return fmt.Errorf("%w: %s %s", ErrAmountNotMinorExact, amount.String(), currency)
	}

	return nil
}

// ValidatePagination validates and limits pagination parameters.
func ValidatePagination(limit, offset int) (int, int) {
	const MaxPageSize = 1000
	const DefaultPageSize = 50

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}
