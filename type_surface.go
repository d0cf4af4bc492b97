package castor

import "github.com/shopspring/decimal"

// number constrains the numeric constructors M, S and R.
type number interface {
	float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal
}

// newDecimal converts any accepted numeric value to its exact decimal form.
func newDecimal[T number](value T) decimal.Decimal {
	switch v := any(value).(type) {
	case decimal.Decimal:
		return v
	case float32:
		return decimal.NewFromFloat32(v)
	case float64:
		return decimal.NewFromFloat(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int32:
		return decimal.NewFromInt32(v)
	case int64:
		return decimal.NewFromInt(v)
	case uint:
		return decimal.NewFromUint64(uint64(v))
	case uint32:
		return decimal.NewFromUint64(uint64(v))
	case uint64:
		return decimal.NewFromUint64(v)
	}
	panic("unsupported type")
}

// Surface is an area in square meters, used to price unit-priced lots by the
// surface a participant chooses to buy.
type Surface struct {
	value decimal.Decimal
}

// S builds a Surface from any numeric value.
func S[T number](value T) Surface {
	return Surface{value: newDecimal(value)}
}

func (s Surface) Equal(o Surface) bool       { return s.value.Equal(o.value) }
func (s Surface) LessThan(o Surface) bool    { return s.value.LessThan(o.value) }
func (s Surface) GreaterThan(o Surface) bool { return s.value.GreaterThan(o.value) }
func (s Surface) Add(o Surface) Surface      { return Surface{value: s.value.Add(o.value)} }
func (s Surface) Sub(o Surface) Surface      { return Surface{value: s.value.Sub(o.value)} }
func (s Surface) IsNegative() bool           { return s.value.IsNegative() }
func (s Surface) IsPositive() bool           { return s.value.IsPositive() }
func (s Surface) IsZero() bool               { return s.value.IsZero() }
func (s Surface) String() string             { return s.value.String() }

// Surfaces persist as bare numbers.
func (s Surface) MarshalJSON() ([]byte, error)  { return s.value.MarshalJSON() }
func (s *Surface) UnmarshalJSON(b []byte) error { return s.value.UnmarshalJSON(b) }
