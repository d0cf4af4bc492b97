package castor

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an exact monetary value in a single currency. The amount is kept
// as an arbitrary precision decimal in major units, so chained portage and
// redistribution arithmetic never accumulates float drift.
type Money struct {
	value      decimal.Decimal // major units
	cur        string
	fractional bool // persist with all digits instead of rounding to the minor unit
}

// M builds a Money from any numeric value.
func M[T number](value T, currency string) Money {
	return Money{value: newDecimal(value), cur: currency}
}

// Currency returns the ISO code, possibly "".
func (m Money) Currency() string { return m.cur }

// currency resolves the ISO code against the go-money registry. The Money
// constructor is the only accessor that never returns nil.
func (m Money) currency() money.Currency {
	return *money.New(0, m.cur).Currency()
}

// fraction returns the number of minor unit digits for the money's currency.
func (m Money) fraction() int32 {
	return int32(m.currency().Fraction)
}

// Arithmetic. Operands may disagree on currency only when one side is "",
// which is how zero values seeded with M(0, "") stay usable.

func (m Money) Add(n Money) Money { return Money{value: m.value.Add(n.value), cur: mergeCurrency(m, n)} }
func (m Money) Sub(n Money) Money { return Money{value: m.value.Sub(n.value), cur: mergeCurrency(m, n)} }
func (m Money) Neg() Money        { return Money{value: m.value.Neg(), cur: m.cur} }

// Mul scales a per-square-metre price by a surface.
func (m Money) Mul(s Surface) Money { return Money{value: m.value.Mul(s.value), cur: m.cur} }

func mergeCurrency(m, n Money) string {
	switch {
	case m.cur == "":
		return n.cur
	case n.cur == "", n.cur == m.cur:
		return m.cur
	}
	panic("currency mismatch " + m.cur + " != " + n.cur)
}

// Predicates and comparisons delegate to the decimal, ignoring currency.

func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) && m.cur == n.cur }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }

// String renders the amount with the currency's own formatter, e.g.
// "€1,234.56" for EUR.
func (m Money) String() string {
	cur := m.currency()
	minor := m.value.Shift(int32(cur.Fraction))
	return cur.Formatter().Format(minor.IntPart())
}

// exact returns a copy that will be persisted with all its digits.
func (m Money) exact() Money {
	m.fractional = true
	return m
}

func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	// Rounded to the currency minor unit on disk, except per-surface unit
	// prices that stay fractional.
	amount := m.value
	if !m.fractional {
		amount = amount.Round(m.fraction())
	}
	w.Append("amount", amount)
	return w.MarshalJSON()
}
