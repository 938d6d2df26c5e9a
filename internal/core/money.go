package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a monetary amount held as integer cents. Arithmetic stays on
// cents; decimal conversion happens only at the parse/format boundary.
type Money struct {
	Cents int64
}

// ParseMoney converts a decimal string such as "42.50" to cents with
// half-up rounding on the third decimal place. Both dot and comma decimal
// separators are accepted. Only strictly positive amounts are valid.
func ParseMoney(s string) (Money, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() {
		return Money{}, ErrInvalidAmount
	}
	if !cents.BigInt().IsInt64() {
		return Money{}, ErrAmountTooLarge
	}
	return Money{Cents: cents.IntPart()}, nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Add returns the sum of two amounts.
func (m Money) Add(other Money) Money {
	return Money{Cents: m.Cents + other.Cents}
}

// String formats the amount with exactly two decimal places.
func (m Money) String() string {
	return decimal.New(m.Cents, -2).StringFixed(2)
}

// MarshalJSON encodes the amount as a plain two-decimal number, matching
// the persisted layout where amount is numeric.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(decimal.New(m.Cents, -2).StringFixed(2)), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return ErrAmountTooLarge
	}
	m.Cents = cents.IntPart()
	return nil
}
