package tour

import (
	"fmt"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// Minima maps a city id to the minimal edge of its row (for [MinimizeRows])
// or column (for [MinimizeColumns]).
type Minima map[int]route.Edge

// Total returns the sum of all recorded minimum costs.
func (m Minima) Total() int64 {
	var sum int64
	for _, e := range m {
		sum += e.Cost
	}
	return sum
}

// Regrets maps the key of a zero-cost cell to its regret. Cells without a
// defined regret are absent.
type Regrets map[route.Key]int64

// Get returns the regret of the cell k and whether it is defined.
func (r Regrets) Get(k route.Key) (int64, bool) {
	v, ok := r[k]
	return v, ok
}

// MinimizeRows finds the minimal outgoing edge of every origin city in m.
// Ties are broken by the lowest destination id.
func MinimizeRows(m *route.Matrix) Minima {
	minima := make(Minima)
	for _, id := range m.Origins() {
		if e, ok := minEdge(m.Outgoing(id), -1, false); ok {
			minima[id] = e
		}
	}
	return minima
}

// MinimizeColumns finds the minimal incoming edge of every destination city
// in m. Ties are broken by the lowest origin id.
func MinimizeColumns(m *route.Matrix) Minima {
	minima := make(Minima)
	for _, id := range m.Destinations() {
		if e, ok := minEdge(m.Incoming(id), -1, true); ok {
			minima[id] = e
		}
	}
	return minima
}

// ApplyRowReduction returns a copy of m in which every row minimum has been
// subtracted from all outgoing edges of its origin. Afterwards each origin
// with a recorded minimum has at least one zero-cost edge.
//
// The minima must come from m itself; a minimum larger than a cost in its row
// fails with [route.ErrInconsistentRoute].
func ApplyRowReduction(m *route.Matrix, rows Minima) (*route.Matrix, error) {
	next := m.Clone()
	for id, min := range rows {
		for _, e := range m.Outgoing(id) {
			if err := next.Set(e.From, e.To, e.Cost-min.Cost); err != nil {
				return nil, fmt.Errorf("%w: row reduction of %s: %v", route.ErrInconsistentRoute, e.From, err)
			}
		}
	}
	return next, nil
}

// ApplyColumnReduction is the column counterpart of [ApplyRowReduction].
func ApplyColumnReduction(m *route.Matrix, cols Minima) (*route.Matrix, error) {
	next := m.Clone()
	for id, min := range cols {
		for _, e := range m.Incoming(id) {
			if err := next.Set(e.From, e.To, e.Cost-min.Cost); err != nil {
				return nil, fmt.Errorf("%w: column reduction of %s: %v", route.ErrInconsistentRoute, e.To, err)
			}
		}
	}
	return next, nil
}

// ComputeRegret scores every zero-cost cell of m.
//
// The regret of a zero cell a->b is the cheapest other edge leaving a plus the
// cheapest other edge entering b: the least extra cost paid for not taking
// a->b. When a has no other outgoing edge, or b no other incoming edge, the
// regret is undefined and the cell is absent from the result.
func ComputeRegret(m *route.Matrix) Regrets {
	regrets := make(Regrets)
	for _, e := range m.Edges() {
		if e.Cost != 0 {
			continue
		}
		out, ok := minEdge(m.Outgoing(e.From.ID), e.To.ID, false)
		if !ok {
			continue
		}
		in, ok := minEdge(m.Incoming(e.To.ID), e.From.ID, true)
		if !ok {
			continue
		}
		regrets[e.Key()] = out.Cost + in.Cost
	}
	return regrets
}

// Pass is the outcome of one full reduction pass over a working matrix.
type Pass struct {
	// Matrix is the reduced working matrix.
	Matrix *route.Matrix
	// Rows and Columns are the minima subtracted in this pass.
	Rows    Minima
	Columns Minima
	// Regrets scores the zero cells of Matrix.
	Regrets Regrets
}

// Constant returns the total amount subtracted in this pass.
func (p Pass) Constant() int64 { return p.Rows.Total() + p.Columns.Total() }

// Reduce runs one pass: row reduction, then column reduction, then regret
// scoring. m is not modified.
func Reduce(m *route.Matrix) (Pass, error) {
	rows := MinimizeRows(m)
	reduced, err := ApplyRowReduction(m, rows)
	if err != nil {
		return Pass{}, err
	}
	cols := MinimizeColumns(reduced)
	reduced, err = ApplyColumnReduction(reduced, cols)
	if err != nil {
		return Pass{}, err
	}
	return Pass{
		Matrix:  reduced,
		Rows:    rows,
		Columns: cols,
		Regrets: ComputeRegret(reduced),
	}, nil
}

// minEdge returns the cheapest edge of a row or column, skipping the edge
// whose other endpoint is exclude. Edges must be sorted by their other
// endpoint, which makes the first minimum the one with the lowest id.
func minEdge(edges []route.Edge, exclude int, byOrigin bool) (route.Edge, bool) {
	var (
		best  route.Edge
		found bool
	)
	for _, e := range edges {
		other := e.To.ID
		if byOrigin {
			other = e.From.ID
		}
		if other == exclude {
			continue
		}
		if !found || e.Cost < best.Cost {
			best, found = e, true
		}
	}
	return best, found
}
