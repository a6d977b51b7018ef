// Package core holds the domain types and their validation rules.
//
// This file contains the money helpers: decimal JSON encoding, amount bounds
// and comparing split shares against a total.
package core

import "github.com/shopspring/decimal"

// ShareTolerance is the maximum accepted difference between the sum of the
// participant shares of a bill and its total.
var ShareTolerance = decimal.RequireFromString("0.01")

// Stored amounts fit NUMERIC(14,2): below MaxAmount in magnitude with at most
// AmountScale decimal places.
const AmountScale = 2

var MaxAmount = decimal.New(1, 12)

// Exponents past these limits are rejected before any arithmetic, which
// would otherwise expand the coefficient to the full digit count.
const (
	maxAmountExponent = 12
	minAmountExponent = -18
)

func init() {
	// Amounts go over the wire as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Sum adds up amounts.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// SharesMatch reports whether shares add up to total within ShareTolerance.
func SharesMatch(total decimal.Decimal, shares []decimal.Decimal) bool {
	return Sum(shares...).Sub(total).Abs().LessThanOrEqual(ShareTolerance)
}

// ValidateAmount checks that d is storable as a money amount. The sign is
// left to the caller.
func ValidateAmount(field string, d decimal.Decimal) error {
	if d.Sign() == 0 {
		return nil
	}
	tooLarge := Validationf("%s must be less than %s", field, MaxAmount.String())
	tooPrecise := Validationf("%s must have at most %d decimal places", field, AmountScale)
	switch exp := d.Exponent(); {
	case exp >= maxAmountExponent:
		return tooLarge
	case exp < minAmountExponent:
		return tooPrecise
	}
	if d.Abs().GreaterThanOrEqual(MaxAmount) {
		return tooLarge
	}
	if !d.Equal(d.Round(AmountScale)) {
		return tooPrecise
	}
	return nil
}
