package castor

import (
	"iter"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
)

// CapitalStake is one participant's capital position as of a date, the
// basis for proportional redistribution.
type CapitalStake struct {
	Name    string
	Entry   Date
	Capital Money
}

// Stakes returns the capital stakes of the participants entered strictly
// before day, in entry order.
func (r *Registry) Stakes(day Date) []CapitalStake {
	var stakes []CapitalStake
	for _, p := range r.Participants(EnteredBefore(day)) {
		stakes = append(stakes, CapitalStake{Name: p.Name, Entry: p.Entry, Capital: p.Capital})
	}
	return stakes
}

// Share is one participant's part of a redistribution.
type Share struct {
	Name   string
	Amount Money
}

// MarshalJSON implements the json.Marshaler interface for Share.
func (s Share) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", s.Name)
	w.EmbedFrom(s.Amount)
	return w.MarshalJSON()
}

// ProceedsBreakdown splits the proceeds of one co-ownership sale between
// the reserve fund and the participants present before the sale. The split
// is exact: reserve plus redistributed equals the total, and the shares sum
// to the redistributed amount with no residual.
type ProceedsBreakdown struct {
	txID          string
	date          Date
	ratio         Rate
	total         Money
	reserve       Money
	redistributed Money
	shares        []Share
}

// TransactionID returns the purchase identifier the breakdown belongs to.
func (b *ProceedsBreakdown) TransactionID() string { return b.txID }

// When returns the sale date.
func (b *ProceedsBreakdown) When() Date { return b.date }

// Ratio returns the reserve ratio applied to the sale.
func (b *ProceedsBreakdown) Ratio() Rate { return b.ratio }

// Total returns the full proceeds of the sale.
func (b *ProceedsBreakdown) Total() Money { return b.total }

// Reserve returns the amount retained by the co-ownership.
func (b *ProceedsBreakdown) Reserve() Money { return b.reserve }

// Redistributed returns the amount handed back to existing participants.
func (b *ProceedsBreakdown) Redistributed() Money { return b.redistributed }

// Shares returns an iterator over the redistribution shares in participant
// entry order.
func (b *ProceedsBreakdown) Shares() iter.Seq[Share] {
	return slices.Values(b.shares)
}

func (b *ProceedsBreakdown) Equal(o *ProceedsBreakdown) bool {
	if b.txID != o.txID || b.date != o.date || !b.ratio.Equal(o.ratio) ||
		!b.total.Equal(o.total) || !b.reserve.Equal(o.reserve) ||
		!b.redistributed.Equal(o.redistributed) || len(b.shares) != len(o.shares) {
		return false
	}
	for i := range b.shares {
		if b.shares[i].Name != o.shares[i].Name || !b.shares[i].Amount.Equal(o.shares[i].Amount) {
			return false
		}
	}
	return true
}

// MarshalJSON implements the json.Marshaler interface for ProceedsBreakdown.
func (b *ProceedsBreakdown) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", b.txID)
	w.Append("date", b.date)
	w.Append("ratio", b.ratio)
	w.PrefixFrom("total", b.total)
	w.PrefixFrom("reserve", b.reserve)
	w.PrefixFrom("redistributed", b.redistributed)
	if len(b.shares) > 0 {
		w.Append("shares", b.shares)
	}
	return w.MarshalJSON()
}

// Distribute splits the proceeds of a co-ownership sale: the reserve takes
// total times ratio rounded down to the minor unit, the redistributed part
// is the exact complement, and each stake gets the redistributed amount
// proportionally to its capital.
//
// Proportional shares are floored to the minor unit, then the remaining
// units are handed out one by one to the stakes with the largest fractional
// remainder, ties going to the earliest entry date and then to the name, so
// the split is deterministic and sums back exactly.
//
// Only co-ownership sales have a breakdown: a founder keeps the full price
// of its lot and Distribute returns a NotApplicableError. When no stake
// exists before the sale the whole proceeds accrue to the reserve, which is
// a documented fallback, not an error. Stakes with no capital at all leave
// no basis for proportions and return an InsufficientCapitalDataError.
func Distribute(tx *PricedTransaction, ratio Rate, stakes []CapitalStake) (*ProceedsBreakdown, error) {
	if !tx.CoOwned() {
		return nil, &NotApplicableError{TransactionID: tx.ID(), Seller: tx.Seller()}
	}

	total := tx.Price()
	b := &ProceedsBreakdown{
		txID:  tx.ID(),
		date:  tx.When(),
		ratio: ratio,
		total: total,
	}

	if len(stakes) == 0 {
		// First ever sale: no one entered before it, the whole proceeds
		// accrue to the reserve.
		b.reserve = total
		b.redistributed = M(0, total.Currency())
		return b, nil
	}

	totalCapital := M(0, "")
	for _, s := range stakes {
		totalCapital = totalCapital.Add(s.Capital)
	}
	if !totalCapital.IsPositive() {
		return nil, &InsufficientCapitalDataError{Date: tx.When()}
	}

	frac := total.fraction()
	b.reserve = Money{value: total.value.Mul(ratio.value).RoundFloor(frac), cur: total.cur}
	b.redistributed = total.Sub(b.reserve)

	// All shares are computed in integer minor units so floors and
	// remainders stay exact. QuoRem against the total capital gives the
	// floored share and a remainder numerator comparable across stakes.
	redisUnits := b.redistributed.value.Shift(frac)
	units := make([]decimal.Decimal, len(stakes))
	remainders := make([]decimal.Decimal, len(stakes))
	assigned := decimal.Zero
	for i, s := range stakes {
		q, r := redisUnits.Mul(s.Capital.value).QuoRem(totalCapital.value, 0)
		units[i] = q
		remainders[i] = r
		assigned = assigned.Add(q)
	}

	order := make([]int, len(stakes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		ri, rj := remainders[order[i]], remainders[order[j]]
		if !ri.Equal(rj) {
			return ri.GreaterThan(rj)
		}
		si, sj := stakes[order[i]], stakes[order[j]]
		if si.Entry != sj.Entry {
			return si.Entry.Before(sj.Entry)
		}
		return si.Name < sj.Name
	})
	leftover := redisUnits.Sub(assigned).IntPart()
	for i := int64(0); i < leftover; i++ {
		units[order[i]] = units[order[i]].Add(decimal.New(1, 0))
	}

	b.shares = make([]Share, len(stakes))
	for i, s := range stakes {
		b.shares[i] = Share{Name: s.Name, Amount: Money{value: units[i].Shift(-frac), cur: total.cur}}
	}
	return b, nil
}
