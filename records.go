package castor

import (
	"encoding/json"
	"fmt"
)

// CommandType is a typed string for identifying registry records.
type CommandType string

// Command types used for identifying registry records.
const (
	CmdFormula CommandType = "formula"
	CmdRatio   CommandType = "ratio"
	CmdLot     CommandType = "lot"
	CmdJoin    CommandType = "join"
)

// CoOwnership is the seller reference of lots sold by the co-ownership
// entity itself instead of an individual founder.
const CoOwnership = "copro"

// Participant represents a member of the co-purchase: the date they enter,
// the capital they contribute, and optionally the lot they buy on entry.
type Participant struct {
	Name    string  // Name identifies the participant across the registry.
	Entry   Date    // Entry is the date the participant joins the project.
	Capital Money   // Capital is the contribution brought on entry.
	Founder bool    // Founder marks members present since the deed date.
	Lot     string  // Lot is the id of the lot bought on entry, empty when none.
	Surface Surface // Surface is the chosen area for per-surface priced lots.
}

// NewParticipant creates a participant joining on day with a capital
// contribution. Founder flag and purchase details are set on the returned
// value.
func NewParticipant(name string, day Date, capital Money) Participant {
	return Participant{Name: name, Entry: day, Capital: capital}
}

// Buys reports whether the participant purchases a lot on entry.
func (p Participant) Buys() bool { return p.Lot != "" }

// MarshalJSON implements the json.Marshaler interface for Participant.
func (p Participant) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdJoin)
	w.Append("name", p.Name)
	w.Append("date", p.Entry)
	if p.Founder {
		w.Append("founder", p.Founder)
	}
	w.EmbedFrom(p.Capital)
	w.Optional("lot", p.Lot)
	if !p.Surface.IsZero() {
		w.Append("surface", p.Surface)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Participant.
// It handles the custom structure where amount and currency are separate fields.
func (p *Participant) UnmarshalJSON(data []byte) error {
	// Use a temporary type that has all possible fields.
	var temp struct {
		amountCmd
		Name    string  `json:"name"`
		Date    Date    `json:"date"`
		Founder bool    `json:"founder"`
		Lot     string  `json:"lot"`
		Surface Surface `json:"surface"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	p.Name = temp.Name
	p.Entry = temp.Date
	p.Capital = temp.Money()
	p.Founder = temp.Founder
	p.Lot = temp.Lot
	p.Surface = temp.Surface
	return nil
}

func (p Participant) Equal(o Participant) bool {
	return p.Name == o.Name &&
		p.Entry == o.Entry &&
		p.Capital.Equal(o.Capital) &&
		p.Founder == o.Founder &&
		p.Lot == o.Lot &&
		p.Surface.Equal(o.Surface)
}

// Validate checks the participant's fields. It ensures the name and entry
// date are present and the capital is not negative. A missing capital
// currency is auto-populated from the registry formula.
func (p Participant) Validate(r *Registry) (Participant, error) {
	if p.Name == "" {
		return p, fmt.Errorf("participant name is missing")
	}
	if p.Entry.IsZero() {
		return p, fmt.Errorf("participant %q has no entry date", p.Name)
	}
	if p.Capital.IsNegative() {
		return p, fmt.Errorf("participant %q capital must not be negative, got %s", p.Name, p.Capital)
	}
	// first the quick fix
	if p.Capital.Currency() == "" {
		p.Capital = M(p.Capital.value, r.Formula().Currency)
	} else if p.Capital.Currency() != r.Formula().Currency {
		return p, fmt.Errorf("participant %q capital currency %s does not match the registry currency %s", p.Name, p.Capital.Currency(), r.Formula().Currency)
	}
	if p.Lot == "" && !p.Surface.IsZero() {
		return p, fmt.Errorf("participant %q has a chosen surface but no lot", p.Name)
	}
	return p, nil
}

// Lot represents a unit of the property sold to a joining participant,
// either by a founder or by the co-ownership itself. A lot carries a base
// price, or for co-ownership lots, a price per square meter applied to the
// surface the buyer chooses.
type Lot struct {
	ID        string // ID identifies the lot across the registry.
	Seller    string // Seller is a founder's name, or CoOwnership.
	Price     Money  // Price is the base price, zero for per-surface lots.
	UnitPrice Money  // UnitPrice is the price per square meter, zero otherwise.
}

// NewLot creates a lot with a base price, sold by seller.
func NewLot(id, seller string, price Money) Lot {
	return Lot{ID: id, Seller: seller, Price: price}
}

// NewSurfaceLot creates a co-ownership lot priced per square meter of whatever
// surface the buyer chooses.
func NewSurfaceLot(id string, unitPrice Money) Lot {
	return Lot{ID: id, Seller: CoOwnership, UnitPrice: unitPrice.exact()}
}

// CoOwned reports whether the lot is sold by the co-ownership entity.
func (l Lot) CoOwned() bool { return l.Seller == CoOwnership }

// BySurface reports whether the lot is priced per square meter.
func (l Lot) BySurface() bool { return !l.UnitPrice.IsZero() }

// MarshalJSON implements the json.Marshaler interface for Lot.
func (l Lot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdLot)
	w.Append("id", l.ID)
	w.Append("seller", l.Seller)
	if l.BySurface() {
		w.PrefixFrom("unit", l.UnitPrice)
	} else {
		w.EmbedFrom(l.Price)
	}
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for Lot.
func (l *Lot) UnmarshalJSON(data []byte) error {
	// Use a temporary type that has all possible fields.
	var temp struct {
		amountCmd
		unitCmd
		ID     string `json:"id"`
		Seller string `json:"seller"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	l.ID = temp.ID
	l.Seller = temp.Seller
	l.Price = temp.Money()
	l.UnitPrice = temp.UnitMoney()
	return nil
}

func (l Lot) Equal(o Lot) bool {
	return l.ID == o.ID &&
		l.Seller == o.Seller &&
		l.Price.Equal(o.Price) &&
		l.UnitPrice.Equal(o.UnitPrice)
}

// Validate checks the lot's fields. It ensures the id and seller are
// present, that exactly one of base price and unit price is set, and that
// per-surface pricing is only used on co-ownership lots. Missing currencies
// are auto-populated from the registry formula.
func (l Lot) Validate(r *Registry) (Lot, error) {
	if l.ID == "" {
		return l, fmt.Errorf("lot id is missing")
	}
	if l.Seller == "" {
		return l, fmt.Errorf("lot %q has no seller", l.ID)
	}
	if l.BySurface() {
		if !l.Price.IsZero() {
			return l, fmt.Errorf("lot %q has both a base price and a unit price", l.ID)
		}
		if !l.CoOwned() {
			return l, fmt.Errorf("lot %q is priced per surface but sold by %q, only co-ownership lots can be", l.ID, l.Seller)
		}
		if l.UnitPrice.IsNegative() {
			return l, fmt.Errorf("lot %q unit price must be positive, got %s", l.ID, l.UnitPrice)
		}
	} else {
		if l.Price.IsNegative() || l.Price.IsZero() {
			return l, fmt.Errorf("lot %q price must be positive, got %s", l.ID, l.Price)
		}
	}
	// first the quick fix
	cur := r.Formula().Currency
	if l.Price.Currency() == "" && !l.Price.IsZero() {
		l.Price = M(l.Price.value, cur)
	}
	if l.UnitPrice.Currency() == "" && !l.UnitPrice.IsZero() {
		l.UnitPrice = M(l.UnitPrice.value, cur).exact()
	}
	if c := l.Price.Currency(); c != "" && c != cur {
		return l, fmt.Errorf("lot %q price currency %s does not match the registry currency %s", l.ID, c, cur)
	}
	if c := l.UnitPrice.Currency(); c != "" && c != cur {
		return l, fmt.Errorf("lot %q unit price currency %s does not match the registry currency %s", l.ID, c, cur)
	}
	return l, nil
}

// PortageFormula configures how a lot's price is indexed between the
// project's reference date and a participant's entry date.
type PortageFormula struct {
	Rate      Rate     // Rate is the indexation rate per period.
	Period    Period   // Period is the indexation period, yearly by default.
	Reference Date     // Reference is the start of indexation, typically the deed date.
	Rounding  Rounding // Rounding brings indexed prices back to the minor unit.
	Currency  string   // Currency of every amount in the registry.
}

// NewPortageFormula creates a yearly indexation formula starting at the
// reference date, with prices in EUR rounded half to even.
func NewPortageFormula(rate Rate, reference Date) PortageFormula {
	return PortageFormula{Rate: rate, Period: Yearly, Reference: reference, Currency: "EUR"}
}

// Elapsed returns the whole indexation periods between the formula reference
// date and day.
func (f PortageFormula) Elapsed(day Date) int {
	return f.Period.Between(f.Reference, day)
}

// MarshalJSON implements the json.Marshaler interface for PortageFormula.
func (f PortageFormula) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("command", CmdFormula)
	w.Append("rate", f.Rate)
	w.Append("period", f.Period.String())
	w.Append("reference", f.Reference)
	w.Append("rounding", f.Rounding.String())
	w.Append("currency", f.Currency)
	return w.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface for PortageFormula.
func (f *PortageFormula) UnmarshalJSON(data []byte) error {
	var temp struct {
		Rate      Rate   `json:"rate"`
		Period    string `json:"period"`
		Reference Date   `json:"reference"`
		Rounding  string `json:"rounding"`
		Currency  string `json:"currency"`
	}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}

	period := Yearly
	if temp.Period != "" {
		p, err := ParsePeriod(temp.Period)
		if err != nil {
			return err
		}
		period = p
	}
	rounding, err := ParseRounding(temp.Rounding)
	if err != nil {
		return err
	}

	f.Rate = temp.Rate
	f.Period = period
	f.Reference = temp.Reference
	f.Rounding = rounding
	f.Currency = temp.Currency
	return nil
}

func (f PortageFormula) Equal(o PortageFormula) bool {
	return f.Rate.Equal(o.Rate) &&
		f.Period == o.Period &&
		f.Reference == o.Reference &&
		f.Rounding == o.Rounding &&
		f.Currency == o.Currency
}

// Validate checks the formula's fields. It ensures the reference date is
// present and the rate keeps prices positive. A missing currency defaults
// to EUR.
func (f PortageFormula) Validate() (PortageFormula, error) {
	if f.Reference.IsZero() {
		return f, fmt.Errorf("formula has no reference date")
	}
	if !f.Rate.GreaterThan(R(-1)) {
		return f, fmt.Errorf("formula rate must be greater than -100%%, got %s", f.Rate)
	}
	// first the quick fix
	if f.Currency == "" {
		f.Currency = "EUR"
	}
	return f, nil
}
