package tour

import (
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/citytour/pkg/core/route"
)

type cell struct {
	from, to string
	cost     int64
}

// newMatrix registers the names in order, so the first name gets id 1.
func newMatrix(t *testing.T, names string, cells ...cell) (*route.Matrix, *route.Registry) {
	t.Helper()
	reg := route.NewRegistry()
	for _, n := range strings.Fields(names) {
		reg.CreateOrGet(n)
	}
	m := route.NewMatrix()
	for _, c := range cells {
		if err := m.Add(reg.CreateOrGet(c.from), reg.CreateOrGet(c.to), c.cost); err != nil {
			t.Fatalf("Add(%s, %s, %d) error: %v", c.from, c.to, c.cost, err)
		}
	}
	return m, reg
}

// exampleMatrix is the four-city asymmetric matrix whose symmetrized form has
// A-B 1, A-C 2, A-D 3, B-C 5, B-D 6, C-D 9.
func exampleMatrix(t *testing.T) (*route.Matrix, *route.Registry) {
	return newMatrix(t, "A B C D",
		cell{"A", "B", 1}, cell{"A", "C", 2}, cell{"A", "D", 3},
		cell{"B", "A", 4}, cell{"B", "C", 5}, cell{"B", "D", 6},
		cell{"C", "A", 7}, cell{"C", "B", 8}, cell{"C", "D", 9},
		cell{"D", "A", 10}, cell{"D", "B", 11}, cell{"D", "C", 12},
	)
}

// asymMatrix is a four-city asymmetric matrix with a known result.
func asymMatrix(t *testing.T) (*route.Matrix, *route.Registry) {
	return newMatrix(t, "A B C D",
		cell{"A", "B", 10}, cell{"A", "C", 15}, cell{"A", "D", 20},
		cell{"B", "A", 5}, cell{"B", "C", 9}, cell{"B", "D", 10},
		cell{"C", "A", 6}, cell{"C", "B", 13}, cell{"C", "D", 12},
		cell{"D", "A", 8}, cell{"D", "B", 8}, cell{"D", "C", 9},
	)
}

func names(cities []route.City) string {
	parts := make([]string, len(cities))
	for i, c := range cities {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func key(reg *route.Registry, from, to string) route.Key {
	f, _ := reg.Lookup(from)
	t, _ := reg.Lookup(to)
	return route.Key{From: f.ID, To: t.ID}
}

func TestMinimizeRows_TieBreaksOnLowestDestination(t *testing.T) {
	m, reg := newMatrix(t, "A B C",
		cell{"A", "C", 2}, cell{"A", "B", 2},
		cell{"B", "A", 5}, cell{"B", "C", 1},
	)
	rows := MinimizeRows(m)

	a, _ := reg.Lookup("A")
	b, _ := reg.Lookup("B")
	if got := rows[a.ID].To.Name; got != "B" {
		t.Errorf("row A minimum goes to %s, want B", got)
	}
	if got := rows[b.ID].Cost; got != 1 {
		t.Errorf("row B minimum = %d, want 1", got)
	}
	if got := rows.Total(); got != 3 {
		t.Errorf("Total() = %d, want 3", got)
	}
}

func TestMinimizeColumns_TieBreaksOnLowestOrigin(t *testing.T) {
	m, reg := newMatrix(t, "A B C",
		cell{"C", "A", 4}, cell{"B", "A", 4},
		cell{"A", "C", 7},
	)
	cols := MinimizeColumns(m)

	a, _ := reg.Lookup("A")
	if got := cols[a.ID].From.Name; got != "B" {
		t.Errorf("column A minimum comes from %s, want B", got)
	}
	if len(cols) != 2 {
		t.Errorf("len(cols) = %d, want 2", len(cols))
	}
}

func TestApplyRowReduction(t *testing.T) {
	m, _ := asymMatrix(t)
	before := m.String()

	reduced, err := ApplyRowReduction(m, MinimizeRows(m))
	if err != nil {
		t.Fatalf("ApplyRowReduction() error: %v", err)
	}
	if m.String() != before {
		t.Error("ApplyRowReduction() modified its input")
	}
	for _, id := range reduced.Origins() {
		row := reduced.Outgoing(id)
		zero := slices.ContainsFunc(row, func(e route.Edge) bool { return e.Cost == 0 })
		if !zero {
			t.Errorf("row %d has no zero after reduction: %v", id, row)
		}
	}
	if reduced.Len() != m.Len() {
		t.Errorf("Len() = %d, want %d", reduced.Len(), m.Len())
	}
}

func TestApplyColumnReduction(t *testing.T) {
	m, _ := asymMatrix(t)
	rows, err := ApplyRowReduction(m, MinimizeRows(m))
	if err != nil {
		t.Fatal(err)
	}
	reduced, err := ApplyColumnReduction(rows, MinimizeColumns(rows))
	if err != nil {
		t.Fatalf("ApplyColumnReduction() error: %v", err)
	}
	for _, id := range reduced.Destinations() {
		col := reduced.Incoming(id)
		zero := slices.ContainsFunc(col, func(e route.Edge) bool { return e.Cost == 0 })
		if !zero {
			t.Errorf("column %d has no zero after reduction: %v", id, col)
		}
	}
	for _, e := range reduced.Edges() {
		if e.Cost < 0 {
			t.Errorf("negative cost after reduction: %v", e)
		}
	}
}

func TestApplyRowReduction_ForeignMinimaFail(t *testing.T) {
	m, reg := newMatrix(t, "A B", cell{"A", "B", 1})
	a, _ := reg.Lookup("A")
	b, _ := reg.Lookup("B")
	bogus := Minima{a.ID: {From: a, To: b, Cost: 5}}

	_, err := ApplyRowReduction(m, bogus)
	if !errors.Is(err, route.ErrInconsistentRoute) {
		t.Errorf("ApplyRowReduction() error = %v, want ErrInconsistentRoute", err)
	}
}

func TestReduce_SymmetricExample(t *testing.T) {
	m, reg := exampleMatrix(t)
	sym := m.Clone()
	symmetrizeForTest(sym)

	p, err := Reduce(sym)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	if got := p.Rows.Total(); got != 7 {
		t.Errorf("row minima total = %d, want 7", got)
	}
	if got := p.Columns.Total(); got != 3 {
		t.Errorf("column minima total = %d, want 3", got)
	}
	if got := p.Constant(); got != 10 {
		t.Errorf("Constant() = %d, want 10", got)
	}

	want := []route.Key{
		key(reg, "A", "B"), key(reg, "A", "C"), key(reg, "A", "D"),
		key(reg, "B", "A"), key(reg, "C", "A"), key(reg, "D", "A"),
	}
	if len(p.Regrets) != len(want) {
		t.Fatalf("len(Regrets) = %d, want %d", len(p.Regrets), len(want))
	}
	for _, k := range want {
		if r, ok := p.Regrets.Get(k); !ok || r != 3 {
			t.Errorf("regret %v = %d, %v; want 3, true", k, r, ok)
		}
	}
}

func TestComputeRegret_UndefinedWithoutAlternative(t *testing.T) {
	m, reg := newMatrix(t, "A B C",
		cell{"A", "B", 0}, cell{"A", "C", 0},
		cell{"B", "A", 0}, cell{"B", "C", 0},
	)
	regrets := ComputeRegret(m)

	if _, ok := regrets.Get(key(reg, "A", "B")); ok {
		t.Error("A->B has a regret, but nothing else enters B")
	}
	if _, ok := regrets.Get(key(reg, "B", "A")); ok {
		t.Error("B->A has a regret, but nothing else enters A")
	}
	if r, ok := regrets.Get(key(reg, "A", "C")); !ok || r != 0 {
		t.Errorf("A->C regret = %d, %v; want 0, true", r, ok)
	}
}

func TestComputeRegret_OnlyZeroCells(t *testing.T) {
	m, reg := newMatrix(t, "A B C",
		cell{"A", "B", 0}, cell{"A", "C", 4},
		cell{"C", "B", 2},
	)
	regrets := ComputeRegret(m)

	if r, ok := regrets.Get(key(reg, "A", "B")); !ok || r != 6 {
		t.Errorf("A->B regret = %d, %v; want 6, true", r, ok)
	}
	if len(regrets) != 1 {
		t.Errorf("len(Regrets) = %d, want 1", len(regrets))
	}
}

func TestSelectAndCommit_MaxRegretWithTieBreak(t *testing.T) {
	m, reg := exampleMatrix(t)
	symmetrizeForTest(m)
	p, err := Reduce(m)
	if err != nil {
		t.Fatal(err)
	}

	c, next, err := SelectAndCommit(p.Matrix, p.Regrets, nil)
	if err != nil {
		t.Fatalf("SelectAndCommit() error: %v", err)
	}
	if c.Edge.Key() != key(reg, "A", "B") {
		t.Errorf("committed %v, want A -> B", c.Edge)
	}
	if c.Regret != 3 || c.Forced {
		t.Errorf("Regret = %d, Forced = %v; want 3, false", c.Regret, c.Forced)
	}
	// Row A (3), the rest of column B (2) and B->A.
	if c.Removed != 6 {
		t.Errorf("Removed = %d, want 6", c.Removed)
	}
	if next.Len() != 6 {
		t.Errorf("next.Len() = %d, want 6", next.Len())
	}
	if p.Matrix.Len() != 12 {
		t.Error("SelectAndCommit() modified its input")
	}
	for _, k := range []route.Key{key(reg, "A", "C"), key(reg, "C", "B"), key(reg, "B", "A")} {
		if next.Has(k) {
			t.Errorf("%v still present after commit", k)
		}
	}
}

func TestSelectAndCommit_Forced(t *testing.T) {
	m, reg := newMatrix(t, "A B C", cell{"C", "A", 0}, cell{"B", "C", 0})
	c, next, err := SelectAndCommit(m, ComputeRegret(m), nil)
	if err != nil {
		t.Fatalf("SelectAndCommit() error: %v", err)
	}
	if !c.Forced {
		t.Error("Forced = false, want true")
	}
	if c.Edge.Key() != key(reg, "B", "C") {
		t.Errorf("committed %v, want B -> C (lowest origin)", c.Edge)
	}
	if next.Len() != 1 {
		t.Errorf("next.Len() = %d, want 1", next.Len())
	}
}

func TestSelectAndCommit_NoZeroCell(t *testing.T) {
	m, _ := newMatrix(t, "A B", cell{"A", "B", 3})
	_, _, err := SelectAndCommit(m, ComputeRegret(m), nil)
	if !errors.Is(err, route.ErrInconsistentRoute) {
		t.Errorf("SelectAndCommit() error = %v, want ErrInconsistentRoute", err)
	}
}

func TestSelectAndCommit_RemovesChainClosingEdge(t *testing.T) {
	m, reg := newMatrix(t, "A B C D",
		cell{"B", "C", 0}, cell{"B", "D", 1},
		cell{"C", "A", 0}, cell{"C", "D", 0},
		cell{"D", "A", 0}, cell{"D", "C", 0},
	)
	chains := NewChains(4)
	chains.Link(key(reg, "A", "B"))

	c, next, err := SelectAndCommit(m, Regrets{key(reg, "B", "C"): 1}, chains)
	if err != nil {
		t.Fatalf("SelectAndCommit() error: %v", err)
	}
	if c.Edge.Key() != key(reg, "B", "C") {
		t.Fatalf("committed %v, want B -> C", c.Edge)
	}
	if next.Has(key(reg, "C", "A")) {
		t.Error("C -> A would close A -> B -> C and must be removed")
	}
	if !next.Has(key(reg, "C", "D")) || !next.Has(key(reg, "D", "A")) {
		t.Errorf("remaining edges = %s, want C->D and D->A kept", next)
	}
}

func TestChains_Link(t *testing.T) {
	c := NewChains(4)

	closing, ok := c.Link(route.Key{From: 1, To: 2})
	if !ok || closing != (route.Key{From: 2, To: 1}) {
		t.Errorf("Link(1,2) = %v, %v; want {2 1}, true", closing, ok)
	}
	closing, ok = c.Link(route.Key{From: 3, To: 4})
	if !ok || closing != (route.Key{From: 4, To: 3}) {
		t.Errorf("Link(3,4) = %v, %v; want {4 3}, true", closing, ok)
	}
	closing, ok = c.Link(route.Key{From: 2, To: 3})
	if ok {
		t.Errorf("Link(2,3) = %v, true; want no closing edge for a full chain", closing)
	}
	closing, ok = c.Link(route.Key{From: 4, To: 1})
	if ok {
		t.Errorf("Link(4,1) = %v, true; want false after the cycle closes", closing)
	}
	if next, ok := c.Next(2); !ok || next != 3 {
		t.Errorf("Next(2) = %d, %v; want 3, true", next, ok)
	}
}

func TestAssemble(t *testing.T) {
	_, reg := newMatrix(t, "A B C D")
	city := func(n string) route.City { c, _ := reg.Lookup(n); return c }
	edge := func(f, to string) route.Edge { return route.Edge{From: city(f), To: city(to)} }

	tests := []struct {
		name    string
		commits []route.Edge
		start   string
		want    string
		wantErr error
	}{
		{
			name:    "closed tour from A",
			commits: []route.Edge{edge("C", "D"), edge("A", "B"), edge("D", "A"), edge("B", "C")},
			start:   "A",
			want:    "A B C D",
		},
		{
			name:    "closed tour from C",
			commits: []route.Edge{edge("C", "D"), edge("A", "B"), edge("D", "A"), edge("B", "C")},
			start:   "C",
			want:    "C D A B",
		},
		{
			name:    "open path from its head",
			commits: []route.Edge{edge("B", "D"), edge("A", "B"), edge("D", "C")},
			start:   "A",
			wantErr: route.ErrIncompleteRoute,
		},
		{
			name:    "path through every city not returning to start",
			commits: []route.Edge{edge("C", "A"), edge("A", "B"), edge("B", "D"), edge("D", "A")},
			start:   "C",
			wantErr: route.ErrIncompleteRoute,
		},
		{
			name:    "open path from the middle",
			commits: []route.Edge{edge("B", "D"), edge("A", "B"), edge("D", "C")},
			start:   "B",
			wantErr: route.ErrIncompleteRoute,
		},
		{
			name:    "subtour",
			commits: []route.Edge{edge("A", "B"), edge("B", "A"), edge("C", "D"), edge("D", "C")},
			start:   "A",
			wantErr: route.ErrIncompleteRoute,
		},
		{
			name:    "two successors",
			commits: []route.Edge{edge("A", "B"), edge("A", "C")},
			start:   "A",
			wantErr: route.ErrInconsistentRoute,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Assemble(tt.commits, city(tt.start), 4)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Assemble() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Assemble() error: %v", err)
			}
			if names(got) != tt.want {
				t.Errorf("Assemble() = %s, want %s", names(got), tt.want)
			}
		})
	}
}

func TestBounds(t *testing.T) {
	m, reg := asymMatrix(t)

	lower, err := LowerBound(m)
	if err != nil {
		t.Fatalf("LowerBound() error: %v", err)
	}
	if lower != 35 {
		t.Errorf("LowerBound() = %d, want 35", lower)
	}
	upper, ok := UpperBound(m)
	if !ok || upper != 39 {
		t.Errorf("UpperBound() = %d, %v; want 39, true", upper, ok)
	}

	m.Remove(key(reg, "C", "D"))
	if _, ok := UpperBound(m); ok {
		t.Error("UpperBound() ok = true with C -> D missing")
	}
}

// symmetrizeForTest mirrors every edge whose origin has the lower id.
func symmetrizeForTest(m *route.Matrix) {
	for _, e := range m.Edges() {
		if e.From.ID < e.To.ID {
			_ = m.Set(e.To, e.From, e.Cost)
		}
	}
}

func TestOptimize_SymmetricExample(t *testing.T) {
	m, reg := exampleMatrix(t)
	before := m.String()
	start, _ := reg.Lookup("A")

	res, err := Optimize(m, start, route.Symmetric)
	if err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}
	if got := names(res.Cities); got != "A B C D" {
		t.Errorf("Cities = %s, want A B C D", got)
	}
	if res.TotalCost != 18 {
		t.Errorf("TotalCost = %d, want 18", res.TotalCost)
	}
	if res.LowerBound != 10 {
		t.Errorf("LowerBound = %d, want 10", res.LowerBound)
	}
	if !res.HasUpperBound || res.UpperBound != 18 {
		t.Errorf("UpperBound = %d, %v; want 18, true", res.UpperBound, res.HasUpperBound)
	}
	if res.Passes != 4 {
		t.Errorf("Passes = %d, want 4", res.Passes)
	}
	if !res.IsClosed() {
		t.Errorf("IsClosed() = false, edges %v", res.Edges)
	}
	if res.Normalization.CostsOverwritten != 6 {
		t.Errorf("CostsOverwritten = %d, want 6", res.Normalization.CostsOverwritten)
	}
	if m.String() != before {
		t.Error("Optimize() modified its input")
	}
}

func TestOptimize_Asymmetric(t *testing.T) {
	m, reg := asymMatrix(t)
	tests := []struct {
		start string
		want  string
	}{
		{"A", "A B D C"},
		{"C", "C A B D"},
	}
	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			start, _ := reg.Lookup(tt.start)
			res, err := Optimize(m, start, route.Asymmetric)
			if err != nil {
				t.Fatalf("Optimize() error: %v", err)
			}
			if got := names(res.Cities); got != tt.want {
				t.Errorf("Cities = %s, want %s", got, tt.want)
			}
			if res.TotalCost != 35 {
				t.Errorf("TotalCost = %d, want 35", res.TotalCost)
			}
			if len(res.Edges) != 4 || !res.Edges[0].From.Equal(start) {
				t.Errorf("Edges = %v, want 4 edges from %s", res.Edges, tt.start)
			}
		})
	}
}

func TestOptimize_TwoCities(t *testing.T) {
	m, reg := newMatrix(t, "A B", cell{"A", "B", 4}, cell{"B", "A", 7})
	for _, name := range []string{"A", "B"} {
		start, _ := reg.Lookup(name)
		res, err := Optimize(m, start, route.Asymmetric)
		if err != nil {
			t.Fatalf("Optimize(%s) error: %v", name, err)
		}
		if len(res.Cities) != 2 || res.TotalCost != 11 {
			t.Errorf("Optimize(%s) = %s cost %d, want 2 cities cost 11", name, names(res.Cities), res.TotalCost)
		}
	}
}

func TestOptimize_Errors(t *testing.T) {
	incomplete, incReg := newMatrix(t, "A B C",
		cell{"A", "B", 1}, cell{"A", "C", 2},
		cell{"B", "A", 3}, cell{"B", "C", 4},
	)
	full, _ := asymMatrix(t)

	tests := []struct {
		name  string
		m     *route.Matrix
		start route.City
		want  error
	}{
		{"nil matrix", nil, route.City{ID: 1}, route.ErrInvalidRoute},
		{"empty matrix", route.NewMatrix(), route.City{ID: 1}, route.ErrInvalidRoute},
		{"unknown start", full, route.City{ID: 99, Name: "Z"}, route.ErrInvalidRoute},
		{"zero start", full, route.City{}, route.ErrInvalidRoute},
		{"unreachable city", incomplete, func() route.City { c, _ := incReg.Lookup("A"); return c }(), route.ErrIncompleteRoute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Optimize(tt.m, tt.start, route.Asymmetric)
			if !errors.Is(err, tt.want) {
				t.Errorf("Optimize() error = %v, want %v", err, tt.want)
			}
		})
	}
}

// sinkMatrix is the A-D example without any edge leaving D.
func sinkMatrix(t *testing.T) (*route.Matrix, *route.Registry) {
	return newMatrix(t, "A B C D",
		cell{"A", "B", 1}, cell{"A", "C", 2}, cell{"A", "D", 3},
		cell{"B", "A", 4}, cell{"B", "C", 5}, cell{"B", "D", 6},
		cell{"C", "A", 7}, cell{"C", "B", 8}, cell{"C", "D", 9},
	)
}

func TestOptimize_SinkCity(t *testing.T) {
	m, reg := sinkMatrix(t)
	for _, name := range []string{"A", "B", "C", "D"} {
		t.Run(name, func(t *testing.T) {
			start, _ := reg.Lookup(name)
			res, err := Optimize(m, start, route.Asymmetric)
			if !errors.Is(err, route.ErrIncompleteRoute) {
				t.Errorf("Optimize() = %v, %v; want ErrIncompleteRoute", res, err)
			}
		})
	}
}

func TestOptimize_RandomSinkMatrices(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 5))
	for trial := 0; trial < 300; trial++ {
		n := 3 + rng.IntN(5)
		m := route.NewMatrix()
		for i := 1; i < n; i++ {
			for j := 1; j <= n; j++ {
				if i != j {
					_ = m.Add(route.City{ID: i}, route.City{ID: j}, int64(rng.IntN(21)))
				}
			}
		}

		for s := 1; s <= n; s++ {
			res, err := Optimize(m, route.City{ID: s}, route.Asymmetric)
			if err == nil {
				t.Fatalf("trial %d (n=%d, start %d): tour %v accepted although city %d has no outgoing edge", trial, n, s, res.Cities, n)
			}
			if !errors.Is(err, route.ErrIncompleteRoute) && !errors.Is(err, route.ErrInconsistentRoute) {
				t.Fatalf("trial %d (n=%d, start %d): unexpected error %v", trial, n, s, err)
			}
		}
	}
}

func TestOptimize_TotalCostUsesNormalizedCosts(t *testing.T) {
	m, reg := exampleMatrix(t)
	start, _ := reg.Lookup("A")
	res, err := Optimize(m, start, route.Symmetric)
	if err != nil {
		t.Fatal(err)
	}

	var sum int64
	for _, e := range res.Edges {
		sum += e.Cost
	}
	if sum != res.TotalCost {
		t.Errorf("edge costs sum to %d, TotalCost = %d", sum, res.TotalCost)
	}
	last := res.Edges[len(res.Edges)-1]
	if last.From.Name != "D" || last.To.Name != "A" || last.Cost != 3 {
		t.Errorf("closing edge = %v, want D->A at the canonical A-D cost 3", last)
	}
	if input, _ := m.Cost(key(reg, "D", "A")); input != 10 {
		t.Errorf("input D->A = %d, want 10 untouched", input)
	}
}

type recorder struct {
	states []State
	passes []PassEvent
}

func (r *recorder) OnStateChange(_, to State) { r.states = append(r.states, to) }
func (r *recorder) OnPass(ev PassEvent)       { r.passes = append(r.passes, ev) }

func TestOptimizer_Observer(t *testing.T) {
	m, reg := exampleMatrix(t)
	start, _ := reg.Lookup("A")
	rec := &recorder{}

	if _, err := (&Optimizer{Observer: rec}).Optimize(m, start, route.Symmetric); err != nil {
		t.Fatalf("Optimize() error: %v", err)
	}

	var states []string
	for _, s := range rec.states {
		states = append(states, s.String())
	}
	want := "reducing selecting reducing selecting reducing selecting reducing selecting assembling done"
	if got := strings.Join(states, " "); got != want {
		t.Errorf("states = %s\nwant     %s", got, want)
	}

	commits := make([]string, len(rec.passes))
	for i, p := range rec.passes {
		commits[i] = p.Commit.Edge.From.Name + p.Commit.Edge.To.Name
		if p.Pass != i+1 {
			t.Errorf("pass %d reported as %d", i+1, p.Pass)
		}
	}
	if got := strings.Join(commits, " "); got != "AB BC CD DA" {
		t.Errorf("commits = %s, want AB BC CD DA", got)
	}
	if !rec.passes[2].Commit.Forced || !rec.passes[3].Commit.Forced {
		t.Error("the last two commits should be forced")
	}
	if last := rec.passes[len(rec.passes)-1]; last.Remaining != 0 {
		t.Errorf("Remaining after last pass = %d, want 0", last.Remaining)
	}
}

func TestOptimize_RandomCompleteMatrices(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 200; trial++ {
		n := 2 + rng.IntN(6)
		mode := route.Mode(rng.IntN(2))
		m := route.NewMatrix()
		for i := 1; i <= n; i++ {
			for j := 1; j <= n; j++ {
				if i != j {
					_ = m.Add(route.City{ID: i}, route.City{ID: j}, int64(rng.IntN(21)))
				}
			}
		}

		for s := 1; s <= n; s++ {
			res, err := Optimize(m, route.City{ID: s}, mode)
			if err != nil {
				t.Fatalf("trial %d (n=%d, %s, start %d): %v\n%s", trial, n, mode, s, err, m)
			}
			if len(res.Cities) != n || res.Cities[0].ID != s {
				t.Fatalf("trial %d: tour %v does not start at %d or misses cities", trial, res.Cities, s)
			}
			seen := make(map[int]bool)
			for _, c := range res.Cities {
				if seen[c.ID] {
					t.Fatalf("trial %d: city %d visited twice in %v", trial, c.ID, res.Cities)
				}
				seen[c.ID] = true
			}
			if res.Passes > n {
				t.Errorf("trial %d: %d passes for %d cities", trial, res.Passes, n)
			}
			if res.TotalCost < res.LowerBound {
				t.Errorf("trial %d: TotalCost %d below LowerBound %d", trial, res.TotalCost, res.LowerBound)
			}
		}
	}
}

func TestState_String(t *testing.T) {
	if got := StateSelecting.String(); got != "selecting" {
		t.Errorf("String() = %q, want selecting", got)
	}
	if got := State(42).String(); got != "state(42)" {
		t.Errorf("String() = %q, want state(42)", got)
	}
}
