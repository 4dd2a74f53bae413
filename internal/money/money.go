// Package money provides the monetary value type used for every price and
// total in the sales domain.
package money

import (
	"bytes"
	"database/sql/driver"
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits a Money value carries.
const Places = 2

// ErrNonFinite is returned when a NaN or infinite float is converted to Money.
var ErrNonFinite = errors.New("money amount must be a finite number")

// Money is an immutable decimal amount, always rounded to two fractional
// digits with banker's rounding (round half to even).
// The zero value is 0.00.
type Money struct {
	amount decimal.Decimal
}

// Zero is 0.00.
var Zero = Money{}

// Of rounds d to two places and wraps it.
func Of(d decimal.Decimal) Money {
	return Money{amount: d.RoundBank(Places)}
}

// FromFloat converts a float, rejecting NaN and infinities.
func FromFloat(f float64) (Money, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Money{}, ErrNonFinite
	}
	return Of(decimal.NewFromFloat(f)), nil
}

// FromInt returns a whole amount.
func FromInt(n int64) Money {
	return Money{amount: decimal.NewFromInt(n)}
}

// Parse reads a decimal string such as "10.00".
func Parse(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Of(d), nil
}

// MustParse is Parse for constants; it panics on malformed input.
func MustParse(s string) Money {
	m, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Money) Add(o Money) Money {
	return Of(m.amount.Add(o.amount))
}

func (m Money) Sub(o Money) Money {
	return Of(m.amount.Sub(o.amount))
}

// Mul scales m by factor and rounds the product.
func (m Money) Mul(factor decimal.Decimal) Money {
	return Of(m.amount.Mul(factor))
}

func (m Money) MulInt(n int) Money {
	return Of(m.amount.Mul(decimal.NewFromInt(int64(n))))
}

// Cmp returns -1, 0 or +1 when m is less than, equal to or greater than o.
func (m Money) Cmp(o Money) int {
	return m.amount.Cmp(o.amount)
}

func (m Money) Equal(o Money) bool {
	return m.amount.Equal(o.amount)
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// Decimal exposes the rounded amount.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

// Float64 is for presentation and rule checks only, never for arithmetic.
func (m Money) Float64() float64 {
	return m.amount.InexactFloat64()
}

func (m Money) String() string {
	return m.amount.StringFixed(Places)
}

// Sum adds all amounts.
func Sum(values ...Money) Money {
	total := Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = Zero
		return nil
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("invalid money amount: %w", err)
	}
	*m = Of(d)
	return nil
}

// Value implements driver.Valuer.
func (m Money) Value() (driver.Value, error) {
	return m.String(), nil
}

// Scan implements sql.Scanner.
func (m *Money) Scan(src interface{}) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan money: %w", err)
	}
	*m = Of(d)
	return nil
}
