package castor

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// isoDate reads "2026-2-1" as well as "2026-02-01".
const isoDate = "2006-1-2"

// Date is a calendar day. Portage prices, contributions and sales are all
// dated to the day, time of day never matters.
type Date struct {
	y int
	m time.Month
	d int
}

// NewDate returns the normalized date for the given year, month and day.
// Out of range values wrap the usual way, NewDate(2026, 13, 1) is
// 2027-01-01.
func NewDate(year int, month time.Month, day int) Date {
	var d Date
	d.y, d.m, d.d = time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Date()
	return d
}

// Today returns the current date.
func Today() Date { return NewDate(time.Now().Date()) }

func (d Date) Year() int         { return d.y }
func (d Date) Month() time.Month { return d.m }
func (d Date) Day() int          { return d.d }

// IsZero reports whether d is the zero date.
func (d Date) IsZero() bool { return d == Date{} }

// time returns the canonical time.Time of the day, midnight UTC, so that
// two equal dates always compare equal.
func (d Date) time() time.Time { return time.Date(d.y, d.m, d.d, 0, 0, 0, 0, time.UTC) }

// Before reports whether d is strictly before x.
func (d Date) Before(x Date) bool { return d.time().Before(x.time()) }

// After reports whether d is strictly after x.
func (d Date) After(x Date) bool { return d.time().After(x.time()) }

// Add returns the date n days after d, or before for a negative n.
func (d Date) Add(n int) Date { return NewDate(d.y, d.m, d.d+n) }

// String formats the date in ISO-8601.
func (d Date) String() string { return d.time().Format("2006-01-02") }

// relativeRE matches a signed offset like "-1d", "+3m", "+2q", "-10y".
// "0d" stands for today.
var relativeRE = regexp.MustCompile(`^([+-]\d+|0)([dmqy])$`)

// ParseDate reads a date from the command line. It accepts ISO dates with
// or without leading zeros, full RFC 3339 timestamps as found in browser
// exports, and offsets relative to today like "-1d" or "+2y".
func ParseDate(str string) (Date, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return Date{}, fmt.Errorf("empty date")
	}

	if m := relativeRE.FindStringSubmatch(str); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return Date{}, fmt.Errorf("invalid offset in %q: %w", str, err)
		}
		today := Today()
		switch m[2] {
		case "d":
			return today.Add(n), nil
		case "m":
			return NewDate(today.y, today.m+time.Month(n), today.d), nil
		case "q":
			return NewDate(today.y, today.m+time.Month(3*n), today.d), nil
		case "y":
			return NewDate(today.y+n, today.m, today.d), nil
		}
	}

	if on, err := time.Parse(isoDate, str); err == nil {
		return NewDate(on.Date()), nil
	}
	if on, err := time.Parse(time.RFC3339, str); err == nil {
		return NewDate(on.Date()), nil
	}
	return Date{}, fmt.Errorf("invalid date %q, want %q or an offset like -1d", str, "2006-01-02")
}

// MarshalJSON writes the date as an ISO-8601 string, the zero date as "".
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return json.Marshal("")
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON reads an ISO-8601 string, accepting "" as the zero date so
// that a record with a missing date decodes and fails validation with a
// message naming the date, not the syntax.
func (d *Date) UnmarshalJSON(bytes []byte) error {
	var str string
	if err := json.Unmarshal(bytes, &str); err != nil {
		return err
	}
	if str == "" {
		*d = Date{}
		return nil
	}
	on, err := time.Parse(isoDate, str)
	if err != nil {
		return fmt.Errorf("invalid date %q in data file, want format %q: %w", str, "2006-01-02", err)
	}
	*d = NewDate(on.Date())
	return nil
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = (*Date)(nil)
