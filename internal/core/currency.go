package core

import (
	"fmt"
	"math"
)

// NormalizeAmount converts an amount entered in cur into the base currency.
//
// The rate is entered manually by the user and expresses how many foreign
// units one base unit buys ("1 EUR = rate PKR"). Base-currency amounts pass
// through untouched, so normalization is idempotent once cur == BaseCurrency.
// Conversion rounds half-up to the cent exactly once, at entry time; the
// stored amount is never re-derived from the currency tag later.
func NormalizeAmount(raw Money, cur Currency, rate float64) (Money, error) {
	if err := raw.Validate(); err != nil {
		return Money{}, err
	}
	if cur.IsBase() {
		return raw, nil
	}
	if rate <= 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return Money{}, fmt.Errorf("%w: %q needs a positive rate, got %v", ErrInvalidRate, cur, rate)
	}
	// Half-up at cent resolution; raw and result are both in cents so the
	// rate applies directly.
	cents := int64(math.Floor(float64(raw.Cents)/rate + 0.5))
	if cents <= 0 {
		// Amounts too small to represent in the base currency are invalid
		// rather than silently zero.
		return Money{}, fmt.Errorf("%w: %s %s at rate %v rounds to zero", ErrInvalidAmount, raw, cur, rate)
	}
	return Money{Cents: cents}, nil
}
