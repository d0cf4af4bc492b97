package castor

import (
	"slices"
	"sort"
	"strings"
)

// nodeID identifies one node of the recalculation graph.
type nodeID string

// kind returns the node family, the part before the first colon.
func (n nodeID) kind() string {
	if i := strings.Index(string(n), ":"); i >= 0 {
		return string(n)[:i]
	}
	return string(n)
}

// ref returns the node reference, the part after the first colon. For price
// and breakdown nodes this is the purchase identifier.
func (n nodeID) ref() string {
	if i := strings.Index(string(n), ":"); i >= 0 {
		return string(n)[i+1:]
	}
	return ""
}

const (
	formulaNode  nodeID = "input:formula"
	ratioNode    nodeID = "input:ratio"
	timelineNode nodeID = "timeline"
)

func lotNode(id string) nodeID           { return nodeID("lot:" + id) }
func participantNode(name string) nodeID { return nodeID("participant:" + name) }
func priceNode(purchase string) nodeID   { return nodeID("price:" + purchase) }
func breakdownNode(purchase string) nodeID {
	return nodeID("breakdown:" + purchase)
}

// graph is the dependency graph of one committed registry. Nodes are the
// registry inputs and the values computed from them, and edges relate each
// computed value to the inputs it reads: a price reads its buyer, its lot
// and the formula, a breakdown reads its price, the reserve ratio and every
// stake entered before the sale, and the timeline reads everything.
type graph struct {
	deps       map[nodeID][]nodeID // node to the nodes it depends on
	dependents map[nodeID][]nodeID // reverse edges
	sales      map[nodeID]Date     // breakdown node to its sale date
}

func newGraph(reg *Registry) *graph {
	g := &graph{
		deps:       make(map[nodeID][]nodeID),
		dependents: make(map[nodeID][]nodeID),
		sales:      make(map[nodeID]Date),
	}
	g.add(formulaNode)
	g.add(ratioNode)
	for lot := range reg.Lots() {
		g.add(lotNode(lot.ID))
	}
	for _, p := range reg.Participants() {
		g.add(participantNode(p.Name))
	}
	for _, p := range reg.Participants() {
		if !p.Buys() {
			continue
		}
		id := PurchaseID(p.Name, p.Lot)
		g.add(priceNode(id), participantNode(p.Name), lotNode(p.Lot), formulaNode)

		lot := reg.Lot(p.Lot)
		if lot == nil || !lot.CoOwned() {
			continue
		}
		deps := []nodeID{priceNode(id), ratioNode}
		for _, stake := range reg.Participants(EnteredBefore(p.Entry)) {
			deps = append(deps, participantNode(stake.Name))
		}
		g.add(breakdownNode(id), deps...)
		g.sales[breakdownNode(id)] = p.Entry
	}

	all := make([]nodeID, 0, len(g.deps))
	for n := range g.deps {
		all = append(all, n)
	}
	g.add(timelineNode, all...)
	return g
}

// add declares a node and the dependencies it reads. Dependencies are
// declared as nodes too.
func (g *graph) add(n nodeID, deps ...nodeID) {
	if _, ok := g.deps[n]; !ok {
		g.deps[n] = nil
	}
	g.deps[n] = append(g.deps[n], deps...)
	for _, d := range deps {
		if _, ok := g.deps[d]; !ok {
			g.deps[d] = nil
		}
		g.dependents[d] = append(g.dependents[d], n)
	}
}

// breakdownsAfter returns the breakdown nodes of sales dated strictly after
// day. Their stake sets read the participants entered before the sale, so
// any roster change dated up to day can affect them.
func (g *graph) breakdownsAfter(day Date) []nodeID {
	var nodes []nodeID
	for n, on := range g.sales {
		if on.After(day) {
			nodes = append(nodes, n)
		}
	}
	return nodes
}

// dirty returns the transitive closure of the seeds through dependent
// edges: every node whose value may be affected by a change of one of the
// seeds. Seeds that are not part of the graph anymore (e.g. a removed
// participant) are kept in the result but propagate nothing.
func (g *graph) dirty(seeds ...nodeID) map[nodeID]bool {
	marked := make(map[nodeID]bool)
	queue := slices.Clone(seeds)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if marked[n] {
			continue
		}
		marked[n] = true
		queue = append(queue, g.dependents[n]...)
	}
	return marked
}

// order returns every node in dependency order: a node always comes after
// all the nodes it depends on, so one pass over the order recomputes each
// dirty value exactly once and never reads a stale sibling. Ties are broken
// lexically, making the order deterministic.
func (g *graph) order() []nodeID {
	indegree := make(map[nodeID]int, len(g.deps))
	var ready []nodeID
	for n, deps := range g.deps {
		indegree[n] = len(deps)
		if len(deps) == 0 {
			ready = append(ready, n)
		}
	}
	slices.Sort(ready)

	order := make([]nodeID, 0, len(g.deps))
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		for _, dep := range g.dependents[n] {
			indegree[dep]--
			if indegree[dep] == 0 {
				i := sort.Search(len(ready), func(i int) bool { return ready[i] >= dep })
				ready = slices.Insert(ready, i, dep)
			}
		}
	}
	return order
}
