package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const maxMinorUnits = math.MaxInt64

// Currencies whose minor unit is not 1/100 of the major unit.
var currencyExponents = map[string]int32{
	"BIF": 0,
	"CLP": 0,
	"JPY": 0,
	"KRW": 0,
	"RWF": 0,
	"UGX": 0,
	"XAF": 0,
	"XOF": 0,
	"BHD": 3,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
}

func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return fmt.Errorf("%w: currency must be a 3-letter ISO code", ErrInvalidArgument)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return fmt.Errorf("%w: currency must be upper-case ISO code, got %q", ErrInvalidArgument, code)
		}
	}
	return nil
}

// CurrencyExponent returns the number of minor-unit digits for the currency.
func CurrencyExponent(currency string) int32 {
	if exp, ok := currencyExponents[currency]; ok {
		return exp
	}
	return 2
}

// ToMinorUnits converts a major-unit decimal ("100.50") into integer minor
// units. Amounts with more precision than the currency allows are rejected.
func ToMinorUnits(major decimal.Decimal, currency string) (int64, error) {
	if err := ValidateCurrency(currency); err != nil {
		return 0, err
	}
	if major.IsNegative() {
		return 0, fmt.Errorf("%w: amount must be non-negative", ErrInvalidArgument)
	}
	minor := major.Shift(CurrencyExponent(currency))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places for %s",
			ErrInvalidArgument, major.String(), CurrencyExponent(currency), currency)
	}
	if minor.GreaterThan(decimal.NewFromInt(maxMinorUnits)) {
		return 0, fmt.Errorf("%w: amount too large", ErrInvalidArgument)
	}
	return minor.IntPart(), nil
}

// FormatMinorUnits renders minor units as a fixed-point major-unit string.
func FormatMinorUnits(minor int64, currency string) string {
	exp := CurrencyExponent(currency)
	return decimal.New(minor, -exp).StringFixed(exp)
}
