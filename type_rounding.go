package castor

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Rounding defines the policy used to bring an indexed price back to the
// currency's minor unit.
type Rounding int

const (
	// HalfEven rounds to the nearest minor unit, ties going to the even
	// digit, so repeated recomputations accumulate no systematic bias.
	HalfEven Rounding = iota
	// Down truncates toward zero.
	Down
	// Up rounds away from zero.
	Up
)

func (r Rounding) String() string {
	switch r {
	case HalfEven:
		return "half-even"
	case Down:
		return "down"
	case Up:
		return "up"
	default:
		return "unknown"
	}
}

// ParseRounding parses a string into a Rounding policy.
func ParseRounding(s string) (Rounding, error) {
	switch s {
	case "half-even", "bank", "":
		return HalfEven, nil
	case "down":
		return Down, nil
	case "up":
		return Up, nil
	default:
		return 0, fmt.Errorf("unknown rounding policy: %q", s)
	}
}

// apply rounds value to the given number of decimal places under the policy.
func (r Rounding) apply(value decimal.Decimal, places int32) decimal.Decimal {
	switch r {
	case Down:
		return value.RoundDown(places)
	case Up:
		return value.RoundUp(places)
	default:
		return value.RoundBank(places)
	}
}
