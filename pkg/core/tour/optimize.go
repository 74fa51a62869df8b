package tour

import (
	"fmt"
	"slices"

	"github.com/matzehuels/citytour/pkg/core/route"
	"github.com/matzehuels/citytour/pkg/core/route/transform"
)

// State is a phase of a single optimization run.
type State int

const (
	StateNormalizing State = iota
	StateReducing
	StateSelecting
	StateAssembling
	StateDone
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateNormalizing:
		return "normalizing"
	case StateReducing:
		return "reducing"
	case StateSelecting:
		return "selecting"
	case StateAssembling:
		return "assembling"
	case StateDone:
		return "done"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// PassEvent describes one completed reduce-and-select pass.
type PassEvent struct {
	// Pass is the 1-based pass number.
	Pass int
	// Reduced is the working matrix after row and column reduction, before
	// the commit removed anything from it.
	Reduced *route.Matrix
	// Constant is the amount subtracted by the reduction.
	Constant int64
	// Commit is the edge chosen in this pass.
	Commit Commit
	// Remaining is the number of edges left in the working matrix.
	Remaining int
}

// Observer receives progress events from an [Optimizer]. Implementations
// must not modify the matrices they are handed.
type Observer interface {
	OnStateChange(from, to State)
	OnPass(ev PassEvent)
}

// NoopObserver ignores all events.
type NoopObserver struct{}

func (NoopObserver) OnStateChange(State, State) {}
func (NoopObserver) OnPass(PassEvent)           {}

// Result is the outcome of a successful optimization.
type Result struct {
	Start route.City `json:"start"`
	Mode  route.Mode `json:"mode"`

	// Cities is the visiting order. It starts at Start and contains every
	// city of the route exactly once.
	Cities []route.City `json:"cities"`

	// Edges are the committed edges in visiting order with their normalized
	// costs. The last edge returns to Start.
	Edges []route.Edge `json:"edges"`

	// TotalCost sums the costs of all committed edges before any reduction
	// pass, taken from the normalized matrix. In symmetric mode these are the
	// canonical pair costs, so an edge may be counted at the cost of its
	// reverse in the caller's matrix.
	TotalCost int64 `json:"total_cost"`

	// LowerBound is the reduction constant of the first pass.
	LowerBound int64 `json:"lower_bound"`

	// UpperBound is the cost of the ascending-id cycle. It is only set when
	// HasUpperBound is true.
	UpperBound    int64 `json:"upper_bound,omitempty"`
	HasUpperBound bool  `json:"has_upper_bound"`

	// Passes is the number of reduce-and-select passes run.
	Passes int `json:"passes"`

	// Normalization reports what the normalizer changed.
	Normalization transform.Result `json:"normalization"`
}

// IsClosed reports whether the tour returns to its start city.
func (r *Result) IsClosed() bool {
	if len(r.Edges) == 0 {
		return false
	}
	last := r.Edges[len(r.Edges)-1]
	return len(r.Edges) == len(r.Cities) && last.To.Equal(r.Start)
}

// Optimizer runs the reduction heuristic. The zero value is ready to use.
//
// An Optimizer holds no per-run state and is safe for concurrent use as long
// as its Observer is.
type Optimizer struct {
	Observer Observer
}

// Optimize computes a tour over m starting at start with a default
// [Optimizer].
func Optimize(m *route.Matrix, start route.City, mode route.Mode) (*Result, error) {
	return (&Optimizer{}).Optimize(m, start, mode)
}

// Optimize computes a tour over m starting at start.
//
// The matrix is normalized for mode, then reduced and committed one edge per
// pass until no edge is left, and finally assembled into a city sequence. m
// is not modified.
//
// Errors wrap [route.ErrInvalidRoute] for an empty matrix or a start city
// outside the route, [route.ErrInconsistentRoute] when a pass cannot commit,
// and [route.ErrIncompleteRoute] when the committed edges do not reach every
// city from start.
func (o *Optimizer) Optimize(m *route.Matrix, start route.City, mode route.Mode) (*Result, error) {
	obs := o.Observer
	if obs == nil {
		obs = NoopObserver{}
	}
	state := StateNormalizing
	enter := func(s State) {
		obs.OnStateChange(state, s)
		state = s
	}

	base, norm, err := transform.Normalize(m, mode)
	if err != nil {
		return nil, err
	}
	if base.IsEmpty() {
		return nil, fmt.Errorf("%w: no edges left after removing self-pairs", route.ErrInvalidRoute)
	}
	all := base.Cities()
	i := slices.IndexFunc(all, func(c route.City) bool { return c.Equal(start) })
	if start.IsZero() || i < 0 {
		return nil, fmt.Errorf("%w: start city %s is not part of the route", route.ErrInvalidRoute, start)
	}
	start = all[i]
	n := len(all)

	lower, err := LowerBound(base)
	if err != nil {
		return nil, err
	}
	upper, hasUpper := UpperBound(base)

	chains := NewChains(n)
	work := base
	var commits []route.Edge
	pass := 0
	for !work.IsEmpty() {
		pass++
		if pass > n {
			return nil, fmt.Errorf("%w: %d edges left after %d passes", route.ErrInconsistentRoute, work.Len(), n)
		}

		enter(StateReducing)
		p, err := Reduce(work)
		if err != nil {
			return nil, err
		}

		enter(StateSelecting)
		c, next, err := SelectAndCommit(p.Matrix, p.Regrets, chains)
		if err != nil {
			return nil, err
		}
		edge := c.Edge
		edge.Cost, _ = base.Cost(edge.Key())
		commits = append(commits, edge)
		work = next

		obs.OnPass(PassEvent{
			Pass:      pass,
			Reduced:   p.Matrix,
			Constant:  p.Constant(),
			Commit:    c,
			Remaining: work.Len(),
		})
	}

	enter(StateAssembling)
	seq, err := Assemble(commits, start, n)
	if err != nil {
		return nil, err
	}
	enter(StateDone)

	res := &Result{
		Start:         start,
		Mode:          mode,
		Cities:        seq,
		Edges:         orderEdges(commits, seq),
		LowerBound:    lower,
		UpperBound:    upper,
		HasUpperBound: hasUpper,
		Passes:        pass,
		Normalization: norm,
	}
	for _, e := range commits {
		res.TotalCost += e.Cost
	}
	return res, nil
}

// orderEdges returns the committed edges that connect consecutive cities,
// followed by the edge back to the first city if it was committed.
func orderEdges(commits []route.Edge, cities []route.City) []route.Edge {
	byFrom := make(map[int]route.Edge, len(commits))
	for _, e := range commits {
		byFrom[e.From.ID] = e
	}
	edges := make([]route.Edge, 0, len(cities))
	for i, c := range cities {
		e, ok := byFrom[c.ID]
		if !ok {
			break
		}
		if i+1 < len(cities) && !e.To.Equal(cities[i+1]) {
			break
		}
		if i+1 == len(cities) && !e.To.Equal(cities[0]) {
			break
		}
		edges = append(edges, e)
	}
	return edges
}
