package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Minor-unit exponents per ISO 4217. Currencies not listed here are rejected.
var currencyExponents = map[string]int32{
	"USD": 2, "EUR": 2, "GBP": 2, "JPY": 0,
	"CNY": 2, "AUD": 2, "CAD": 2, "CHF": 2,
	"SEK": 2, "NZD": 2, "KRW": 0, "SGD": 2,
	"NOK": 2, "MXN": 2, "INR": 2, "BRL": 2,
	"ZAR": 2, "TRY": 2, "HKD": 2, "PLN": 2,
	"CZK": 2, "DKK": 2, "THB": 2, "VND": 0,
}

// ValidateCurrency checks that a currency code is a supported ISO 4217 code.
func ValidateCurrency(currency string) error {
	if _, ok := currencyExponents[strings.ToUpper(strings.TrimSpace(currency))]; !ok {
		return fmt.Errorf("%w: %s is not a supported ISO 4217 currency code", ErrInvalidCurrency, currency)
	}

	return nil
}

// CurrencyExponent returns the number of minor-unit decimal places for a
// currency (2 for USD, 0 for JPY).
func CurrencyExponent(currency string) (int32, error) {
	exp, ok := currencyExponents[strings.ToUpper(strings.TrimSpace(currency))]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrInvalidCurrency, currency)
	}

	return exp, nil
}

// MinorUnit returns the smallest representable amount in a currency
// (0.01 for USD, 1 for JPY).
func MinorUnit(currency string) (decimal.Decimal, error) {
	exp, err := CurrencyExponent(currency)
	if err != nil {
		return decimal.Zero, err
	}

	return decimal.New(1, -exp), nil
}

// IsMinorUnitExact reports whether an amount is an exact multiple of the
// currency's minor unit. Share and expense amounts must be exact so that
// aggregation never rounds.
func IsMinorUnitExact(amount decimal.Decimal, currency string) bool {
	exp, err := CurrencyExponent(currency)
	if err != nil {
		return false
	}

	return amount.Shift(exp).IsInteger()
}
