package renderer

import (
	"github.com/castorhq/castor"
)

// ShareRow is one participant's line in the redistribution table.
type ShareRow struct {
	Name   string
	Amount castor.Money
}

// BreakdownReport is the view model of one lot purchase: the portage
// pricing detail, and the proceeds split when the co-ownership is the
// seller.
type BreakdownReport struct {
	Buyer     string
	Lot       string
	Seller    string
	Date      castor.Date
	Reference castor.Date
	Period    castor.Period
	Rate      castor.Rate
	Elapsed   int
	Surface   castor.Surface
	Base      castor.Money
	Price     castor.Money
	CoOwned   bool

	Ratio         castor.Rate
	Reserve       castor.Money
	Redistributed castor.Money
	Shares        []ShareRow
}

// BySurface reports whether the purchase is priced per square meter.
func (r *BreakdownReport) BySurface() bool { return !r.Surface.IsZero() }

// NewBreakdownReport builds the report for a priced transaction. The
// breakdown is nil for private sales, the report then only carries the
// pricing part.
func NewBreakdownReport(tx *castor.PricedTransaction, b *castor.ProceedsBreakdown) *BreakdownReport {
	f := tx.Formula()
	r := &BreakdownReport{
		Buyer:     tx.Buyer(),
		Lot:       tx.Lot(),
		Seller:    tx.Seller(),
		Date:      tx.When(),
		Reference: f.Reference,
		Period:    f.Period,
		Rate:      f.Rate,
		Elapsed:   tx.Elapsed(),
		Surface:   tx.Surface(),
		Base:      tx.Base(),
		Price:     tx.Price(),
		CoOwned:   tx.CoOwned(),
	}
	if b != nil {
		r.Ratio = b.Ratio()
		r.Reserve = b.Reserve()
		r.Redistributed = b.Redistributed()
		for share := range b.Shares() {
			r.Shares = append(r.Shares, ShareRow{Name: share.Name, Amount: share.Amount})
		}
	}
	return r
}
