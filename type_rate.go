package castor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is an exact fractional rate, such as the indexation per period of a
// portage formula (2% a year) or the reserve ratio of a co-ownership sale
// (30% of the proceeds). The value is kept as a decimal fraction: R(0.02)
// is two percent.
type Rate struct {
	value decimal.Decimal
}

func R[T number](value T) Rate {
	return Rate{value: newDecimal(value)}
}

// ParseRate parses a rate from a string. With a '%' suffix the number is in
// percent points ("2%" is 0.02), without it is the plain fraction ("0.02").
func ParseRate(str string) (Rate, error) {
	str = strings.TrimSpace(str)
	percent := strings.HasSuffix(str, "%")
	str = strings.TrimSuffix(str, "%")
	value, err := decimal.NewFromString(str)
	if err != nil {
		return Rate{}, fmt.Errorf("invalid rate %q: %w", str, err)
	}
	if percent {
		value = value.Shift(-2)
	}
	return Rate{value: value}, nil
}

func (r Rate) Equal(o Rate) bool       { return r.value.Equal(o.value) }
func (r Rate) LessThan(o Rate) bool    { return r.value.LessThan(o.value) }
func (r Rate) GreaterThan(o Rate) bool { return r.value.GreaterThan(o.value) }
func (r Rate) IsZero() bool            { return r.value.IsZero() }
func (r Rate) IsNegative() bool        { return r.value.IsNegative() }
func (r Rate) IsPositive() bool        { return r.value.IsPositive() }

// String formats the rate in percent points, e.g. "2%".
func (r Rate) String() string {
	return r.value.Shift(2).String() + "%"
}

// Factor returns the exact compound growth factor (1+r)^periods.
// periods is non-negative.
func (r Rate) Factor(periods int) decimal.Decimal {
	growth := decimal.New(1, 0).Add(r.value)
	factor := decimal.New(1, 0)
	for i := 0; i < periods; i++ {
		factor = factor.Mul(growth)
	}
	return factor
}

// MarshalJSON persists the rate in its percent form, e.g. "2%".
func (r Rate) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r *Rate) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	parsed, err := ParseRate(str)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
