package castor

import (
	"fmt"
	"strings"
)

// Period is the calendar unit a portage formula compounds on. The indexed
// price of a lot grows by the formula rate once per period boundary crossed
// between the deed and the buyer's entry.
type Period int

const (
	Yearly Period = iota
	Quarterly
	Monthly
)

func (p Period) String() string {
	switch p {
	case Yearly:
		return "yearly"
	case Quarterly:
		return "quarterly"
	case Monthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// Index returns the ordinal of the calendar period containing d. Two dates
// share an index exactly when they fall inside the same calendar month,
// quarter, or year.
func (p Period) Index(d Date) int {
	switch p {
	case Yearly:
		return d.Year()
	case Quarterly:
		return d.Year()*4 + (int(d.Month())-1)/3
	case Monthly:
		return d.Year()*12 + int(d.Month()) - 1
	default:
		panic("unknown period")
	}
}

// Between counts the whole calendar periods elapsed from 'from' to 'to',
// that is the number of period boundaries crossed. A partial period counts
// for nothing: from 2026-02-01 to 2028-01-01 two yearly boundaries are
// crossed, so Between returns 2. The result is negative when 'to' precedes
// 'from'.
func (p Period) Between(from, to Date) int {
	return p.Index(to) - p.Index(from)
}

func ParsePeriod(s string) (Period, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yearly", "year":
		return Yearly, nil
	case "quarterly", "quarter":
		return Quarterly, nil
	case "monthly", "month":
		return Monthly, nil
	default:
		return Yearly, fmt.Errorf("unknown period %q, want yearly, quarterly or monthly", s)
	}
}
