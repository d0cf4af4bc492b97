package castor

// Range is an inclusive range of dates, used to window timeline views and
// index series fetches.
type Range struct{ From, To Date }

// NewRange creates a date range, swapping the bounds when 'from' is after
// 'to'.
func NewRange(from, to Date) Range {
	if from.After(to) {
		from, to = to, from
	}
	return Range{From: from, To: to}
}

// Contains reports whether the date falls within the range, boundaries
// included.
func (r Range) Contains(date Date) bool { return !date.Before(r.From) && !date.After(r.To) }
