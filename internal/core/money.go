// Package core provides the ledger domain types.
//
// This file contains the amount type and its parsing and formatting helpers.
// Amounts are kept in integer cents so sums never drift.
package core

import (
	"math"
	"regexp"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single fixed currency used for display.
const Currency = gomoney.BRL

var maxCents = decimal.NewFromInt(math.MaxInt64)

// plainAmount accepts digits with at most one decimal separator. Exponent
// notation is refused before any arithmetic happens.
var plainAmount = regexp.MustCompile(`^[+-]?(\d+([.,]\d*)?|[.,]\d+)$`)

// maxAmountLen bounds the text handed to the decimal parser.
const maxAmountLen = 32

type Money struct {
	Cents int64
}

// Cents is a shorthand constructor.
func Cents(c int64) Money { return Money{Cents: c} }

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money { return Money{Cents: m.Cents + o.Cents} }
func (m Money) Sub(o Money) Money { return Money{Cents: m.Cents - o.Cents} }

// String renders the amount as a plain decimal with two fractional digits,
// e.g. "150.00". This is the wire form used by the record codec.
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// Display renders the amount as currency text, e.g. "R$1.234,56".
func (m Money) Display() string {
	return gomoney.New(m.Cents, Currency).Display()
}

// ParseAmount converts a decimal string to Money.
//
// The value is rounded half away from zero to two places and must be
// positive after rounding. A decimal comma is accepted when no dot is present.
//
// Examples:
//
//	ParseAmount("150")    -> 15000
//	ParseAmount("12,34")  -> 1234
//	ParseAmount("1.005")  -> 101
//	ParseAmount("0.004")  -> error
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if len(s) > maxAmountLen || !plainAmount.MatchString(s) {
		return Money{}, ErrInvalidAmount
	}
	if !strings.Contains(s, ".") {
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Round(2).Shift(2)
	if !cents.IsPositive() || cents.GreaterThan(maxCents) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: cents.IntPart()}, nil
}
