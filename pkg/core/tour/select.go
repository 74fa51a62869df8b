package tour

import (
	"fmt"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// Commit describes an edge chosen by [SelectAndCommit].
type Commit struct {
	// Edge is the committed edge with its reduced cost, which is always zero.
	Edge route.Edge

	// Regret is the regret the edge was chosen with. It is meaningless when
	// Forced is true.
	Regret int64

	// Forced is true when no zero cell had a defined regret and the edge was
	// taken because its origin or destination had no alternative left.
	Forced bool

	// Removed is the number of edges eliminated from the working matrix,
	// the committed edge included.
	Removed int
}

// SelectAndCommit picks the zero-cost cell of m with the highest regret and
// commits it.
//
// Ties are broken by the lowest origin id, then the lowest destination id.
// When no zero cell has a defined regret, the first zero cell in the same
// order is taken as a forced commit. If m has no zero cell at all the pass
// fails with [route.ErrInconsistentRoute].
//
// The returned matrix is a copy of m without the committed edge, the rest of
// its origin's row, the rest of its destination's column, and the reverse
// edge. When chains is non-nil, the edge is linked into it and the edge that
// would close its chain into a cycle is removed instead of the plain reverse;
// neither is removed once the chain spans every city. m is not modified.
func SelectAndCommit(m *route.Matrix, regrets Regrets, chains *Chains) (Commit, *route.Matrix, error) {
	var (
		best     route.Edge
		bestCost int64
		found    bool
		fallback route.Edge
		forced   bool
	)
	for _, e := range m.Edges() {
		if e.Cost != 0 {
			continue
		}
		r, ok := regrets.Get(e.Key())
		if !ok {
			if !forced {
				fallback, forced = e, true
			}
			continue
		}
		if !found || r > bestCost {
			best, bestCost, found = e, r, true
		}
	}

	c := Commit{Edge: best, Regret: bestCost}
	switch {
	case found:
	case forced:
		c = Commit{Edge: fallback, Forced: true}
	default:
		return Commit{}, nil, fmt.Errorf("%w: no zero-cost cell left among %d edges", route.ErrInconsistentRoute, m.Len())
	}

	next := m.Clone()
	from, to := c.Edge.From.ID, c.Edge.To.ID
	for _, e := range m.Outgoing(from) {
		if next.Remove(e.Key()) {
			c.Removed++
		}
	}
	for _, e := range m.Incoming(to) {
		if next.Remove(e.Key()) {
			c.Removed++
		}
	}

	closing, ok := c.Edge.Key().Reverse(), true
	if chains != nil {
		closing, ok = chains.Link(c.Edge.Key())
	}
	if ok && next.Remove(closing) {
		c.Removed++
	}
	return c, next, nil
}

// Chains tracks committed edges as disjoint paths of cities.
//
// Every committed edge extends, starts or joins paths. An edge from the end
// of a path back to its own start would close a cycle; unless the path
// already covers every city that cycle is a subtour and must not be chosen.
type Chains struct {
	next   map[int]int
	prev   map[int]int
	cities int
}

// NewChains creates an empty tracker for a route over the given number of
// cities.
func NewChains(cities int) *Chains {
	return &Chains{
		next:   make(map[int]int),
		prev:   make(map[int]int),
		cities: cities,
	}
}

// Link records the edge k and returns the key of the edge that would close
// the path containing k into a cycle. The boolean is false once the path
// spans every city, where closing it completes the tour.
func (c *Chains) Link(k route.Key) (route.Key, bool) {
	c.next[k.From] = k.To
	c.prev[k.To] = k.From

	length := 2
	head := k.From
	for p, ok := c.prev[head]; ok && length <= c.cities; p, ok = c.prev[head] {
		head = p
		length++
	}
	tail := k.To
	for n, ok := c.next[tail]; ok && length <= c.cities; n, ok = c.next[tail] {
		tail = n
		length++
	}
	if length >= c.cities {
		return route.Key{}, false
	}
	return route.Key{From: tail, To: head}, true
}

// Next returns the city committed to follow id.
func (c *Chains) Next(id int) (int, bool) {
	n, ok := c.next[id]
	return n, ok
}
