package castor

import "fmt"

// PricedTransaction is the result of pricing one lot purchase at the
// buyer's entry date: the indexed price, the elapsed periods used, and a
// snapshot of the formula at computation time. It is immutable: any input
// change produces a new instance, prior results are replaced and never
// patched, so timeline history stays consistent.
type PricedTransaction struct {
	id      string
	buyer   string
	lot     string
	seller  string
	date    Date
	surface Surface
	elapsed int
	formula PortageFormula
	base    Money
	price   Money
}

// PurchaseID returns the deterministic identifier of a lot purchase. It is
// stable across recomputations so consumers can track a transaction from
// one commit to the next.
func PurchaseID(buyer, lot string) string {
	return fmt.Sprintf("purchase:%s:%s", buyer, lot)
}

// ID returns the purchase identifier of the transaction.
func (t *PricedTransaction) ID() string { return t.id }

// Buyer returns the name of the participant buying the lot.
func (t *PricedTransaction) Buyer() string { return t.buyer }

// Lot returns the id of the lot sold.
func (t *PricedTransaction) Lot() string { return t.lot }

// Seller returns the lot's seller, a founder's name or CoOwnership.
func (t *PricedTransaction) Seller() string { return t.seller }

// When returns the sale date, the buyer's entry date.
func (t *PricedTransaction) When() Date { return t.date }

// Elapsed returns the whole indexation periods charged on the sale.
func (t *PricedTransaction) Elapsed() int { return t.elapsed }

// Surface returns the area bought on a per-surface priced lot, zero otherwise.
func (t *PricedTransaction) Surface() Surface { return t.surface }

// Formula returns the portage formula as of computation time.
func (t *PricedTransaction) Formula() PortageFormula { return t.formula }

// Base returns the price before indexation. For a per-surface lot this is
// the unit price times the chosen surface.
func (t *PricedTransaction) Base() Money { return t.base }

// Price returns the indexed price the buyer pays.
func (t *PricedTransaction) Price() Money { return t.price }

// CoOwned reports whether the lot is sold by the co-ownership entity.
func (t *PricedTransaction) CoOwned() bool { return t.seller == CoOwnership }

func (t *PricedTransaction) Equal(o *PricedTransaction) bool {
	return t.id == o.id &&
		t.date == o.date &&
		t.seller == o.seller &&
		t.surface.Equal(o.surface) &&
		t.elapsed == o.elapsed &&
		t.formula.Equal(o.formula) &&
		t.base.Equal(o.base) &&
		t.price.Equal(o.price)
}

// MarshalJSON implements the json.Marshaler interface for PricedTransaction.
func (t *PricedTransaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.id)
	w.Append("date", t.date)
	w.Append("buyer", t.buyer)
	w.Append("lot", t.lot)
	w.Append("seller", t.seller)
	if !t.surface.IsZero() {
		w.Append("surface", t.surface)
	}
	w.Append("elapsed", t.elapsed)
	w.PrefixFrom("base", t.base)
	w.EmbedFrom(t.price)
	w.Append("rate", t.formula.Rate)
	w.Append("period", t.formula.Period.String())
	w.Append("reference", t.formula.Reference)
	w.Append("rounding", t.formula.Rounding.String())
	return w.MarshalJSON()
}

// Price computes the indexed purchase price of a lot bought by a
// participant entering the project, applying the portage formula between
// its reference date and the buyer's entry date.
//
// The indexed price is base times (1+rate)^elapsed, where elapsed counts
// the whole calendar periods between the two dates and a partial period
// counts for nothing. The result is brought back to the currency's minor
// unit by the formula's rounding policy. For a lot priced per square meter
// the base is the unit price times the surface the buyer chose.
//
// Price is a pure function: it returns a new PricedTransaction on every
// call and callers replace, never merge, prior results.
func Price(lot Lot, buyer Participant, f PortageFormula) (*PricedTransaction, error) {
	if buyer.Entry.Before(f.Reference) {
		return nil, &InvalidDateOrderingError{Participant: buyer.Name, Entry: buyer.Entry, Reference: f.Reference}
	}
	elapsed := f.Elapsed(buyer.Entry)

	base := lot.Price
	if lot.BySurface() {
		if !buyer.Surface.IsPositive() {
			return nil, &InvalidSurfaceError{Lot: lot.ID, Surface: buyer.Surface}
		}
		base = lot.UnitPrice.Mul(buyer.Surface)
	}

	value := base.value.Mul(f.Rate.Factor(elapsed))
	price := Money{value: f.Rounding.apply(value, base.fraction()), cur: base.cur}

	return &PricedTransaction{
		id:      PurchaseID(buyer.Name, lot.ID),
		buyer:   buyer.Name,
		lot:     lot.ID,
		seller:  lot.Seller,
		date:    buyer.Entry,
		surface: buyer.Surface,
		elapsed: elapsed,
		formula: f,
		base:    base,
		price:   price,
	}, nil
}
