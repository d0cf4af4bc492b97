package castor

import (
	"iter"
	"slices"
)

// ParticipantPosition is one cap-table row of a snapshot: the cumulative
// amounts a participant has put into and received from the project as of
// the snapshot date.
type ParticipantPosition struct {
	Name     string
	Founder  bool
	Invested Money // capital contributed plus lot prices paid
	Received Money // sale proceeds and redistribution shares collected
}

// Net returns the participant's net cash into the project, negative when
// they received more than they put in.
func (p ParticipantPosition) Net() Money { return p.Invested.Sub(p.Received) }

// MarshalJSON implements the json.Marshaler interface for ParticipantPosition.
func (p ParticipantPosition) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", p.Name)
	if p.Founder {
		w.Append("founder", p.Founder)
	}
	w.PrefixFrom("invested", p.Invested)
	w.PrefixFrom("received", p.Received)
	w.PrefixFrom("net", p.Net())
	return w.MarshalJSON()
}

// TimelineSnapshot is a fully materialized view of the project immediately
// after one ledger entry: the cumulative co-ownership reserve and the cap
// table of every participant entered so far.
//
// The snapshot sequence is append-only and totally ordered by entry date,
// same-day entries keeping their derivation order. A snapshot is never
// patched in place: when an upstream entry changes, it and every later
// snapshot are rebuilt.
type TimelineSnapshot struct {
	seq     int
	entry   Entry
	reserve Money
	rows    []ParticipantPosition
}

// Seq returns the 1-based position of the snapshot in the timeline.
func (s *TimelineSnapshot) Seq() int { return s.seq }

// Entry returns the ledger entry the snapshot materializes.
func (s *TimelineSnapshot) Entry() Entry { return s.entry }

// When returns the date of the snapshot.
func (s *TimelineSnapshot) When() Date { return s.entry.date }

// Reserve returns the cumulative co-ownership reserve after the entry.
func (s *TimelineSnapshot) Reserve() Money { return s.reserve }

// Rows returns an iterator over the cap-table rows, in first-entry order.
func (s *TimelineSnapshot) Rows() iter.Seq[ParticipantPosition] {
	return slices.Values(s.rows)
}

// Row returns the position of the named participant, or nil when the
// participant has not entered yet.
func (s *TimelineSnapshot) Row(name string) *ParticipantPosition {
	for _, r := range s.rows {
		if r.Name == name {
			return &r
		}
	}
	return nil
}

// MarshalJSON implements the json.Marshaler interface for TimelineSnapshot.
func (s *TimelineSnapshot) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("seq", s.seq)
	w.Append("date", s.entry.date)
	w.Append("entry", s.entry.id)
	w.Append("kind", s.entry.kind)
	w.PrefixFrom("reserve", s.reserve)
	w.Append("rows", s.rows)
	return w.MarshalJSON()
}

// Fold replays the journal chronologically and materializes one snapshot
// after each entry. Folding an unchanged journal twice yields byte
// identical snapshots.
func Fold(j *Journal) []TimelineSnapshot {
	return Refold(nil, j)
}

// Refold rebuilds the timeline, reusing from prev the longest prefix of
// snapshots whose entries are unchanged: a changed entry invalidates its
// own snapshot and every later one, while earlier snapshots are carried
// over as is. The cumulative totals of snapshot i always equal the sum of
// all entry deltas dated up to it.
func Refold(prev []TimelineSnapshot, j *Journal) []TimelineSnapshot {
	reuse := 0
	for reuse < len(prev) && reuse < len(j.entries) && prev[reuse].entry.Equal(j.entries[reuse]) {
		reuse++
	}

	snaps := make([]TimelineSnapshot, 0, len(j.entries))
	snaps = append(snaps, prev[:reuse]...)

	// Cumulative state as of the last reused snapshot.
	reserve := M(0, j.cur)
	var rows []ParticipantPosition
	if reuse > 0 {
		reserve = prev[reuse-1].reserve
		rows = slices.Clone(prev[reuse-1].rows)
	}
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[r.Name] = i
	}
	add := func(name string, founder bool, invested, received Money) {
		i, ok := index[name]
		if !ok {
			rows = append(rows, ParticipantPosition{Name: name, Founder: founder, Invested: M(0, j.cur), Received: M(0, j.cur)})
			i = len(rows) - 1
			index[name] = i
		}
		rows[i].Invested = rows[i].Invested.Add(invested)
		rows[i].Received = rows[i].Received.Add(received)
	}

	for i := reuse; i < len(j.entries); i++ {
		e := j.entries[i]
		switch e.kind {
		case Contribution:
			add(e.name, e.founder, e.amount, Money{})
		case Purchase:
			tx := e.tx
			add(tx.Buyer(), e.founder, tx.Price(), Money{})
			if tx.CoOwned() {
				reserve = reserve.Add(e.breakdown.Reserve())
				for share := range e.breakdown.Shares() {
					add(share.Name, false, Money{}, share.Amount)
				}
			} else {
				add(tx.Seller(), true, Money{}, tx.Price())
			}
		}
		snaps = append(snaps, TimelineSnapshot{
			seq:     i + 1,
			entry:   e,
			reserve: reserve,
			rows:    slices.Clone(rows),
		})
	}
	return snaps
}
