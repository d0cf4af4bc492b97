package castor

import (
	"fmt"
	"sort"
)

// EntryKind distinguishes the ledger entries derived from a registry.
type EntryKind string

const (
	// Contribution is a participant bringing capital on entry.
	Contribution EntryKind = "contribution"
	// Purchase is a participant buying a lot at its indexed price.
	Purchase EntryKind = "purchase"
)

// Entry is one dated ledger line derived from the committed inputs: a
// participant's capital contribution, or a lot purchase carrying its priced
// transaction and, for co-ownership sales, its proceeds breakdown.
// It is the lowest-level, immutable fact from which all snapshots are
// derived.
type Entry struct {
	kind      EntryKind
	id        string
	date      Date
	name      string
	founder   bool
	amount    Money
	tx        *PricedTransaction
	breakdown *ProceedsBreakdown
}

// Kind returns the entry kind.
func (e Entry) Kind() EntryKind { return e.kind }

// ID returns the deterministic identifier of the entry.
func (e Entry) ID() string { return e.id }

// When returns the date of the entry.
func (e Entry) When() Date { return e.date }

// Participant returns the name of the contributing or buying participant.
func (e Entry) Participant() string { return e.name }

// Founder reports whether the participant is a founding member.
func (e Entry) Founder() bool { return e.founder }

// Amount returns the capital contributed, zero for purchases.
func (e Entry) Amount() Money { return e.amount }

// Transaction returns the priced transaction of a purchase, nil otherwise.
func (e Entry) Transaction() *PricedTransaction { return e.tx }

// Breakdown returns the proceeds breakdown of a co-ownership purchase, nil
// otherwise.
func (e Entry) Breakdown() *ProceedsBreakdown { return e.breakdown }

func (e Entry) Equal(o Entry) bool {
	if e.kind != o.kind || e.id != o.id || e.date != o.date ||
		e.name != o.name || e.founder != o.founder || !e.amount.Equal(o.amount) {
		return false
	}
	if (e.tx == nil) != (o.tx == nil) {
		return false
	}
	if e.tx != nil && !e.tx.Equal(o.tx) {
		return false
	}
	if (e.breakdown == nil) != (o.breakdown == nil) {
		return false
	}
	if e.breakdown != nil && !e.breakdown.Equal(o.breakdown) {
		return false
	}
	return true
}

// Journal holds a chronologically sorted list of ledger entries derived
// from a registry and its computed transactions.
type Journal struct {
	cur     string // the registry currency.
	entries []Entry
}

// Entries returns the journal entries in chronological order.
func (j *Journal) Entries() []Entry { return j.entries }

// NewJournal converts a registry and its computed artifacts into the flat
// list of dated entries the timeline folds over. Every participant yields a
// contribution entry on its entry date, and a purchase entry right after it
// when it buys a lot. Entries are sorted by date, participants entering the
// same day keeping their registry order.
//
// Every purchase must have its priced transaction in prices, and every
// co-ownership purchase its breakdown in breakdowns.
func NewJournal(reg *Registry, prices map[string]*PricedTransaction, breakdowns map[string]*ProceedsBreakdown) (*Journal, error) {
	journal := &Journal{
		cur:     reg.Formula().Currency,
		entries: make([]Entry, 0, 2*len(reg.participants)),
	}

	for _, p := range reg.Participants() {
		journal.entries = append(journal.entries, Entry{
			kind:    Contribution,
			id:      fmt.Sprintf("contribution:%s", p.Name),
			date:    p.Entry,
			name:    p.Name,
			founder: p.Founder,
			amount:  p.Capital,
		})

		if !p.Buys() {
			continue
		}
		id := PurchaseID(p.Name, p.Lot)
		tx, ok := prices[id]
		if !ok {
			return nil, fmt.Errorf("no price computed for %s", id)
		}
		breakdown := breakdowns[id]
		if tx.CoOwned() && breakdown == nil {
			return nil, fmt.Errorf("no proceeds breakdown computed for %s", id)
		}
		journal.entries = append(journal.entries, Entry{
			kind:      Purchase,
			id:        id,
			date:      p.Entry,
			name:      p.Name,
			founder:   p.Founder,
			tx:        tx,
			breakdown: breakdown,
		})
	}

	// Participants are already in entry order, the sort keeps same-day
	// entries in their derivation order.
	sort.SliceStable(journal.entries, func(i, j int) bool {
		return journal.entries[i].date.Before(journal.entries[j].date)
	})
	return journal, nil
}
