// Package types provides shared numeric types for money and stock.
//
// Money is stored with two fraction digits, quantities with three:
// weighed goods are sold in fractional units, so stock arithmetic must
// use decimal, never integer or float semantics.
package types

import (
	"github.com/shopspring/decimal"

	"almacen/internal/core/apperror"
)

// MoneyScale is the number of fraction digits for monetary values.
const MoneyScale = 2

// QuantityScale is the number of fraction digits for stock quantities.
const QuantityScale = 3

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Quantity represents a stock quantity. Fractional values are valid
// (weighed goods).
type Quantity = decimal.Decimal

// Zero returns a zero decimal value.
func Zero() decimal.Decimal {
	return decimal.Zero
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseMoney parses a client-supplied amount string into Money,
// rounded to MoneyScale.
func ParseMoney(field, s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewValidation(field + " must be a valid decimal number").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return RoundMoney(d), nil
}

// ParseQuantity parses a client-supplied quantity string, rounded to
// QuantityScale.
func ParseQuantity(field, s string) (Quantity, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, apperror.NewValidation(field + " must be a valid decimal number").
			WithDetail("field", field).
			WithDetail("value", s)
	}
	return RoundQuantity(d), nil
}

// RoundMoney rounds to two fraction digits (half up).
func RoundMoney(d decimal.Decimal) Money {
	return d.Round(MoneyScale)
}

// RoundQuantity rounds to three fraction digits (half up).
func RoundQuantity(d decimal.Decimal) Quantity {
	return d.Round(QuantityScale)
}
