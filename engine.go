package castor

import (
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// generation is one fully computed state of the engine: the committed
// registry and every value derived from it. A generation is immutable once
// published.
type generation struct {
	rev        uuid.UUID
	registry   *Registry
	graph      *graph
	journal    *Journal
	prices     map[string]*PricedTransaction
	breakdowns map[string]*ProceedsBreakdown
	snaps      []TimelineSnapshot
}

// Engine holds the current committed input set and every value derived
// from it, and recomputes exactly the values affected by each commit.
//
// The engine is safe for one writer and any number of concurrent readers:
// a commit computes a complete new generation and swaps it in atomically,
// so readers always observe either the fully previous or the fully new
// state, never a partial mix.
type Engine struct {
	mu  sync.RWMutex
	cur *generation
}

// NewEngine creates an engine with no committed inputs: no participants,
// no lots, an empty timeline.
func NewEngine() *Engine {
	reg := NewRegistry()
	return &Engine{cur: &generation{
		rev:        uuid.New(),
		registry:   reg,
		graph:      newGraph(reg),
		journal:    &Journal{},
		prices:     make(map[string]*PricedTransaction),
		breakdowns: make(map[string]*ProceedsBreakdown),
	}}
}

// changedInputs compares two committed registries and returns the input
// nodes whose records differ. Any roster change also seeds the breakdowns
// of sales dated after the earliest entry date it touches, since their
// stake sets read the participants present before the sale.
func changedInputs(old, next *Registry, g *graph) []nodeID {
	var seeds []nodeID
	if !old.formula.Equal(next.formula) {
		seeds = append(seeds, formulaNode)
	}
	if !old.ratio.Equal(next.ratio) {
		seeds = append(seeds, ratioNode)
	}

	for id, lot := range old.lots {
		if after, exists := next.lots[id]; !exists || !lot.Equal(after) {
			seeds = append(seeds, lotNode(id))
		}
	}
	for id := range next.lots {
		if _, exists := old.lots[id]; !exists {
			seeds = append(seeds, lotNode(id))
		}
	}

	before := make(map[string]Participant, len(old.participants))
	for _, p := range old.participants {
		before[p.Name] = p
	}
	after := make(map[string]Participant, len(next.participants))
	for _, p := range next.participants {
		after[p.Name] = p
	}
	for name, p := range before {
		n, exists := after[name]
		if exists && p.Equal(n) {
			continue
		}
		seeds = append(seeds, participantNode(name))
		if !exists {
			// The participant's node is gone from the new graph and
			// propagates nothing, but its ledger entries are gone too.
			seeds = append(seeds, timelineNode)
		}
		horizon := p.Entry
		if exists && n.Entry.Before(horizon) {
			horizon = n.Entry
		}
		seeds = append(seeds, g.breakdownsAfter(horizon)...)
	}
	for name, p := range after {
		if _, exists := before[name]; !exists {
			seeds = append(seeds, participantNode(name))
			seeds = append(seeds, g.breakdownsAfter(p.Entry)...)
		}
	}
	return seeds
}

// CommitInputs replaces the committed input set with reg, triggers one
// recomputation pass and returns the new timeline. The engine keeps a
// private validated clone: later mutations of reg stay invisible until the
// next commit.
//
// The pass marks every value transitively affected by a changed record
// dirty, recomputes the dirty values exactly once in dependency order, and
// carries every clean value over from the previous generation unchanged.
// On error the commit is rejected as a whole: the engine keeps the
// previous generation and readers keep observing it.
func (e *Engine) CommitInputs(reg *Registry) ([]TimelineSnapshot, error) {
	next := reg.Clone()
	if err := next.Validate(); err != nil {
		return nil, err
	}

	refs := make(map[string]Participant)
	for _, p := range next.Participants() {
		if p.Buys() {
			refs[PurchaseID(p.Name, p.Lot)] = p
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	prev := e.cur

	g := newGraph(next)
	dirty := g.dirty(changedInputs(prev.registry, next, g)...)

	gen := &generation{
		rev:        uuid.New(),
		registry:   next,
		graph:      g,
		prices:     make(map[string]*PricedTransaction, len(refs)),
		breakdowns: make(map[string]*ProceedsBreakdown),
	}

	for _, n := range g.order() {
		switch n.kind() {
		case "price":
			id := n.ref()
			if !dirty[n] {
				gen.prices[id] = prev.prices[id]
				continue
			}
			buyer := refs[id]
			tx, err := Price(*next.Lot(buyer.Lot), buyer, next.Formula())
			if err != nil {
				return nil, fmt.Errorf("cannot price %s: %w", id, err)
			}
			gen.prices[id] = tx
		case "breakdown":
			id := n.ref()
			if !dirty[n] {
				gen.breakdowns[id] = prev.breakdowns[id]
				continue
			}
			// The price of the sale is already computed, order guarantees it.
			tx := gen.prices[id]
			bd, err := Distribute(tx, next.Ratio(), next.Stakes(tx.When()))
			if err != nil {
				return nil, fmt.Errorf("cannot distribute %s: %w", id, err)
			}
			gen.breakdowns[id] = bd
		case "timeline":
			if !dirty[n] {
				gen.journal, gen.snaps = prev.journal, prev.snaps
				continue
			}
			journal, err := NewJournal(next, gen.prices, gen.breakdowns)
			if err != nil {
				return nil, err
			}
			gen.journal = journal
			gen.snaps = Refold(prev.snaps, journal)
		}
	}

	log.Debug().
		Str("rev", gen.rev.String()).
		Int("dirty", len(dirty)).
		Int("snapshots", len(gen.snaps)).
		Msg("committed inputs")
	e.cur = gen
	return slices.Clone(gen.snaps), nil
}

// Revision returns the identifier of the current generation. It changes on
// every successful commit and never on a rejected one.
func (e *Engine) Revision() uuid.UUID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.rev
}

// Registry returns a copy of the committed inputs, typically to mutate and
// commit back.
func (e *Engine) Registry() *Registry {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cur.registry.Clone()
}

// Snapshots returns the current timeline, one snapshot per ledger entry in
// chronological order.
func (e *Engine) Snapshots() []TimelineSnapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.cur.snaps)
}

// Priced returns the priced transaction with this purchase identifier.
func (e *Engine) Priced(txID string) (*PricedTransaction, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	tx, ok := e.cur.prices[txID]
	if !ok {
		return nil, fmt.Errorf("unknown transaction %q", txID)
	}
	return tx, nil
}

// Breakdown returns the proceeds breakdown of a co-ownership sale. A
// founder sale has none: asking for it returns a NotApplicableError, never
// a zero breakdown, so "no breakdown" stays an explicit state consumers
// must handle.
func (e *Engine) Breakdown(txID string) (*ProceedsBreakdown, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if bd, ok := e.cur.breakdowns[txID]; ok {
		return bd, nil
	}
	tx, ok := e.cur.prices[txID]
	if !ok {
		return nil, fmt.Errorf("unknown transaction %q", txID)
	}
	return nil, &NotApplicableError{TransactionID: txID, Seller: tx.Seller()}
}
