package tour

import "github.com/matzehuels/citytour/pkg/core/route"

// LowerBound returns the reduction constant of the first pass over m: the sum
// of all row minima plus the column minima of the row-reduced matrix. No tour
// over m is cheaper.
func LowerBound(m *route.Matrix) (int64, error) {
	p, err := Reduce(m)
	if err != nil {
		return 0, err
	}
	return p.Constant(), nil
}

// UpperBound returns the cost of the cycle that visits the cities of m in
// ascending id order and returns to the first. The boolean is false when m is
// missing an edge of that cycle.
func UpperBound(m *route.Matrix) (int64, bool) {
	cities := m.Cities()
	if len(cities) < 2 {
		return 0, false
	}
	var total int64
	for i, from := range cities {
		to := cities[(i+1)%len(cities)]
		c, ok := m.Cost(route.Key{From: from.ID, To: to.ID})
		if !ok {
			return 0, false
		}
		total += c
	}
	return total, true
}
