package castor

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"sort"

	"github.com/rs/zerolog/log"
)

// Registry holds a scenario's committed inputs: the portage formula, the
// reserve ratio the co-ownership retains on its own sales, the lots for
// sale, and the participants.
//
// In a Registry participants are always in chronological entry order.
type Registry struct {
	formula      PortageFormula
	ratio        Rate
	participants []Participant
	lots         map[string]Lot // index lots by id
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		participants: make([]Participant, 0),
		lots:         make(map[string]Lot),
	}
}

// Formula returns the portage formula of the registry.
func (r *Registry) Formula() PortageFormula { return r.formula }

// SetFormula replaces the portage formula of the registry.
func (r *Registry) SetFormula(f PortageFormula) { r.formula = f }

// Ratio returns the reserve ratio applied to co-ownership sales.
func (r *Registry) Ratio() Rate { return r.ratio }

// SetRatio replaces the reserve ratio applied to co-ownership sales.
func (r *Registry) SetRatio(ratio Rate) { r.ratio = ratio }

// Lot returns the lot declared with this id, or nil if unknown.
func (r *Registry) Lot(id string) *Lot {
	lot, ok := r.lots[id]
	if !ok {
		return nil
	}
	return &lot
}

// SetLot adds a lot to the registry, replacing any lot with the same id.
func (r *Registry) SetLot(lot Lot) {
	if old, exists := r.lots[lot.ID]; exists && !old.Equal(lot) {
		log.Info().Str("lot", lot.ID).Msg("replacing lot")
	}
	r.lots[lot.ID] = lot
}

// Lots returns an iterator over the lots sorted by id.
func (r *Registry) Lots() iter.Seq[Lot] {
	return func(yield func(Lot) bool) {
		for _, id := range slices.Sorted(maps.Keys(r.lots)) {
			if !yield(r.lots[id]) {
				return
			}
		}
	}
}

// Participant returns the participant with this name, or nil if unknown.
func (r *Registry) Participant(name string) *Participant {
	for _, p := range r.participants {
		if p.Name == name {
			return &p
		}
	}
	return nil
}

// SetParticipant adds a participant to the registry, replacing any
// participant with the same name, and maintains the chronological entry
// order.
func (r *Registry) SetParticipant(p Participant) {
	for i, old := range r.participants {
		if old.Name == p.Name {
			if !old.Equal(p) {
				log.Info().Str("participant", p.Name).Msg("replacing participant")
				r.participants[i] = p
				r.stableSort()
			}
			return
		}
	}
	r.participants = append(r.participants, p)
	r.stableSort()
}

// RemoveParticipant deletes the participant with this name. It reports
// whether a participant was removed.
func (r *Registry) RemoveParticipant(name string) bool {
	for i, p := range r.participants {
		if p.Name == name {
			r.participants = slices.Delete(r.participants, i, i+1)
			return true
		}
	}
	return false
}

// Participants returns an iterator that yields each participant in entry
// order. Without filters every participant is yielded, otherwise only the
// ones accepted by at least one filter.
func (r *Registry) Participants(filters ...func(Participant) bool) iter.Seq2[int, Participant] {
	return func(yield func(int, Participant) bool) {
		for i, p := range r.participants {
			accept := len(filters) == 0
			for _, filter := range filters {
				if filter(p) {
					accept = true
					break
				}
			}
			if !accept {
				continue
			}
			if !yield(i, p) {
				return
			}
		}
	}
}

// EnteredBefore returns a participant filter accepting participants whose
// entry date is strictly before day.
func EnteredBefore(day Date) func(Participant) bool {
	return func(p Participant) bool { return p.Entry.Before(day) }
}

// Buying is a participant filter accepting participants who buy a lot.
func Buying(p Participant) bool { return p.Buys() }

// stableSort sorts the registry by entry date. The sort is stable, meaning
// participants entering on the same day maintain their original relative
// order.
func (r *Registry) stableSort() {
	sort.SliceStable(r.participants, func(i, j int) bool {
		return r.participants[i].Entry.Before(r.participants[j].Entry)
	})
}

// OldestEntryDate returns the entry date of the first participant, or the
// zero date when the registry has none.
func (r *Registry) OldestEntryDate() Date {
	if len(r.participants) == 0 {
		return Date{}
	}
	return r.participants[0].Entry
}

// NewestEntryDate returns the entry date of the last participant, or the
// zero date when the registry has none.
func (r *Registry) NewestEntryDate() Date {
	if len(r.participants) == 0 {
		return Date{}
	}
	return r.participants[len(r.participants)-1].Entry
}

// Clone returns an independent copy of the registry. Records are immutable
// values, only the containers are duplicated.
func (r *Registry) Clone() *Registry {
	return &Registry{
		formula:      r.formula,
		ratio:        r.ratio,
		participants: slices.Clone(r.participants),
		lots:         maps.Clone(r.lots),
	}
}

// Validate checks the registry as a whole and applies quick fixes in place:
// the formula and ratio first, then every record on its own, then the
// references between records. A lot must be sold by the co-ownership or by
// a declared founder, a purchased lot must be declared, and a lot cannot be
// sold twice.
func (r *Registry) Validate() error {
	f, err := r.formula.Validate()
	if err != nil {
		return err
	}
	r.formula = f

	if r.ratio.IsNegative() || r.ratio.GreaterThan(R(1)) {
		return fmt.Errorf("reserve ratio must be within [0%%, 100%%], got %s", r.ratio)
	}

	founders := make(map[string]bool)
	for i, p := range r.participants {
		p, err := p.Validate(r)
		if err != nil {
			return err
		}
		r.participants[i] = p
		if _, exists := founders[p.Name]; exists {
			return fmt.Errorf("participant %q is declared twice", p.Name)
		}
		founders[p.Name] = p.Founder
	}

	for id, lot := range r.lots {
		lot, err := lot.Validate(r)
		if err != nil {
			return err
		}
		r.lots[id] = lot

		if lot.CoOwned() {
			continue
		}
		isFounder, exists := founders[lot.Seller]
		if !exists {
			return fmt.Errorf("lot %q is sold by unknown participant %q", lot.ID, lot.Seller)
		}
		if !isFounder {
			return fmt.Errorf("lot %q is sold by %q who is not a founder", lot.ID, lot.Seller)
		}
	}

	buyers := make(map[string]string) // lot id to buyer name
	for _, p := range r.participants {
		if !p.Buys() {
			continue
		}
		if r.Lot(p.Lot) == nil {
			return fmt.Errorf("participant %q buys undeclared lot %q", p.Name, p.Lot)
		}
		if buyer, sold := buyers[p.Lot]; sold {
			return fmt.Errorf("lot %q is bought by both %q and %q", p.Lot, buyer, p.Name)
		}
		if r.Lot(p.Lot).Seller == p.Name {
			return fmt.Errorf("participant %q cannot buy lot %q from themselves", p.Name, p.Lot)
		}
		buyers[p.Lot] = p.Name
	}
	return nil
}
