// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts from strings
// and converting between cents and dollar representations.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NormalizeAmount strips the decoration a spreadsheet puts around a number:
// surrounding spaces, a leading currency symbol and thousands separators.
//
// Examples:
//
//	NormalizeAmount("$1,234.50") -> "1234.50"
//	NormalizeAmount(" -$12 ")    -> "-12"
func NormalizeAmount(s string) string {
	s = strings.TrimSpace(s)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimSpace(s[1:])
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if neg {
		return "-" + s
	}
	return s
}

// ParseAmount parses a spreadsheet amount into a decimal.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = NormalizeAmount(s)
	if s == "" || s == "-" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseSignedDecimalToCents converts an amount string to cents with half-up
// rounding on the third decimal place. Negative values (refunds) are allowed.
func ParseSignedDecimalToCents(s string) (int64, error) {
	d, err := ParseAmount(s)
	if err != nil {
		return 0, err
	}
	cents := d.Shift(2).Round(0)
	if !cents.Equal(decimal.NewFromInt(cents.IntPart())) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// ParseDecimalToCents converts a decimal string to cents with proper rounding.
//
// It accepts a leading "$" and thousands separators and performs half-up
// rounding on the third decimal place. Returns an error for invalid formats,
// negative values, or zero amounts.
//
// Examples:
//
//	ParseDecimalToCents("12.34")    -> 1234, nil
//	ParseDecimalToCents("$1,200")   -> 120000, nil
//	ParseDecimalToCents("12.345")   -> 1235, nil (rounds up)
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := ParseSignedDecimalToCents(s)
	if err != nil {
		return 0, err
	}
	if cents <= 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// Decimal returns the amount as a decimal in dollars.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Dollars returns the dollar value as a float64 for display purposes.
// Use cents for calculations to avoid floating-point precision issues.
func (m Money) Dollars() float64 {
	return m.Decimal().InexactFloat64()
}

// String renders the amount with two decimals, e.g. "12.50".
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MoneyFromDecimal converts a dollar decimal to cents, rounding half away from zero.
func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{Cents: d.Shift(2).Round(0).IntPart()}
}
