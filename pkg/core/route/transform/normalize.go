package transform

import (
	"fmt"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// Result contains metrics about the transformations applied by [Normalize].
type Result struct {
	// Mode is the mode the matrix was normalized for.
	Mode route.Mode

	// CostsOverwritten is the number of directed costs replaced by
	// symmetrization because they disagreed with the canonical direction.
	CostsOverwritten int

	// EdgesAdded is the number of reverse edges created by symmetrization
	// because only one direction was present.
	EdgesAdded int

	// DiagonalRemoved is the number of self-pairs removed.
	DiagonalRemoved int
}

// Normalize returns a normalized copy of m: symmetrized when mode is
// [route.Symmetric], with the diagonal stripped in every mode.
//
// It fails with [route.ErrInvalidRoute] when m is nil or has no edges. The
// input matrix is never modified.
func Normalize(m *route.Matrix, mode route.Mode) (*route.Matrix, Result, error) {
	res := Result{Mode: mode}
	if m.IsEmpty() {
		return nil, res, fmt.Errorf("%w: the source edge set must not be nil or empty", route.ErrInvalidRoute)
	}

	work := m.Clone()
	if mode == route.Symmetric {
		res.CostsOverwritten, res.EdgesAdded = Symmetrize(work)
	}
	res.DiagonalRemoved = StripDiagonal(work)
	return work, res, nil
}

// Symmetrize forces cost(a,b) == cost(b,a) for every pair of distinct cities
// in m, in place.
//
// Pairs are visited in ascending (origin id, destination id) order, so for
// every pair {a, b} with a.ID < b.ID the edge a->b is canonical. When only
// b->a exists it becomes canonical and a->b is created with its cost.
//
// It returns the number of costs overwritten and the number of edges added.
func Symmetrize(m *route.Matrix) (overwritten, added int) {
	processed := make(map[route.Key]struct{})
	for _, k := range m.Keys() {
		if k.IsDiagonal() {
			continue
		}
		if _, ok := processed[k]; ok {
			continue
		}
		rev := k.Reverse()
		processed[k] = struct{}{}
		processed[rev] = struct{}{}

		e, _ := m.Edge(k)
		old, exists := m.Cost(rev)
		switch {
		case !exists:
			added++
		case old != e.Cost:
			overwritten++
		default:
			continue
		}
		// Set cannot fail here: both cities come from an existing edge and
		// the cost was accepted once already.
		_ = m.Set(e.To, e.From, e.Cost)
	}
	return overwritten, added
}

// StripDiagonal removes every self-pair from m in place and returns how many
// were removed. Calling it again on the result removes nothing.
func StripDiagonal(m *route.Matrix) int {
	removed := 0
	for _, c := range m.Cities() {
		if m.Remove(route.Key{From: c.ID, To: c.ID}) {
			removed++
		}
	}
	return removed
}
