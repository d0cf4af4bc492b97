package castor

import "fmt"

// InvalidDateOrderingError reports a pricing request where the participant's
// entry date precedes the formula's reference date, which would require a
// negative portage duration.
type InvalidDateOrderingError struct {
	Participant string
	Entry       Date
	Reference   Date
}

func (e *InvalidDateOrderingError) Error() string {
	return fmt.Sprintf("entry date %s of %q precedes the formula reference date %s", e.Entry, e.Participant, e.Reference)
}

// InvalidSurfaceError reports a unit-priced lot purchase with a missing or
// non-positive chosen surface.
type InvalidSurfaceError struct {
	Lot     string
	Surface Surface
}

func (e *InvalidSurfaceError) Error() string {
	if e.Surface.IsZero() {
		return fmt.Sprintf("lot %q is priced per surface but no surface was chosen", e.Lot)
	}
	return fmt.Sprintf("lot %q is priced per surface but the chosen surface %s is not positive", e.Lot, e.Surface)
}

// NotApplicableError reports a proceeds breakdown requested for a sale that
// has none: only co-ownership sales are split between reserve and
// redistribution, a founder keeps the full price.
type NotApplicableError struct {
	TransactionID string
	Seller        string
}

func (e *NotApplicableError) Error() string {
	return fmt.Sprintf("transaction %q has no proceeds breakdown: the lot is sold by %q, not by the co-ownership", e.TransactionID, e.Seller)
}

// InsufficientCapitalDataError reports a redistribution attempted over
// participants whose capital contributions sum to nothing, leaving no basis
// for proportional shares.
type InsufficientCapitalDataError struct {
	Date Date
}

func (e *InsufficientCapitalDataError) Error() string {
	return fmt.Sprintf("no capital contributed before %s, cannot compute proportional shares", e.Date)
}
