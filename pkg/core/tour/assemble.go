package tour

import (
	"fmt"

	"github.com/matzehuels/citytour/pkg/core/route"
)

// Assemble stitches committed edges into a city sequence that begins at start.
//
// From the current city it follows the committed edge leaving it, until no
// such edge exists, the edge leads back to a visited city, or cityCount
// cities have been visited. The start city is not repeated at the end.
//
// A sequence shorter than cityCount, or one whose last city has no committed
// edge back to start, fails with [route.ErrIncompleteRoute]. An open path
// through every city is not a tour.
func Assemble(commits []route.Edge, start route.City, cityCount int) ([]route.City, error) {
	next := make(map[int]route.City, len(commits))
	for _, e := range commits {
		if _, dup := next[e.From.ID]; dup {
			return nil, fmt.Errorf("%w: %s has more than one committed successor", route.ErrInconsistentRoute, e.From)
		}
		next[e.From.ID] = e.To
	}

	seq := make([]route.City, 0, cityCount)
	seq = append(seq, start)
	visited := map[int]bool{start.ID: true}
	for cur := start; len(seq) < cityCount; {
		to, ok := next[cur.ID]
		if !ok || visited[to.ID] {
			break
		}
		seq = append(seq, to)
		visited[to.ID] = true
		cur = to
	}

	if len(seq) < cityCount {
		return nil, fmt.Errorf("%w: visited %d of %d cities from %s", route.ErrIncompleteRoute, len(seq), cityCount, start)
	}
	last := seq[len(seq)-1]
	if back, ok := next[last.ID]; !ok || !back.Equal(start) {
		return nil, fmt.Errorf("%w: no committed edge from %s back to %s", route.ErrIncompleteRoute, last, start)
	}
	return seq, nil
}
