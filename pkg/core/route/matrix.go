package route

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var (
	// ErrInvalidRoute is returned when the edge set handed to the normalizer
	// or the optimizer is nil or empty, or when the start city is not part of
	// the route.
	ErrInvalidRoute = errors.New("invalid route")

	// ErrInconsistentRoute is returned when the optimizer's internal
	// invariants break: a reduction pass leaves no eligible zero-cost cell, a
	// reduction would drive a cost negative, or the loop exceeds its
	// iteration bound.
	ErrInconsistentRoute = errors.New("inconsistent route")

	// ErrIncompleteRoute is returned when the assembled tour visits fewer
	// cities than the route contains. A short tour is never returned as a
	// result.
	ErrIncompleteRoute = errors.New("incomplete route")

	// ErrInvalidCity is returned by [Matrix.Add] and [Matrix.Set] for the zero
	// City, which no [Registry] ever hands out.
	ErrInvalidCity = errors.New("city must have a non-zero id")

	// ErrNegativeCost is returned by [Matrix.Add] and [Matrix.Set] when the
	// cost is below zero.
	ErrNegativeCost = errors.New("cost must not be negative")

	// ErrDuplicateEdge is returned by [Matrix.Add] when an edge with the same
	// ordered city pair already exists.
	ErrDuplicateEdge = errors.New("duplicate edge")
)

// Mode selects how the cost matrix is interpreted before optimization.
type Mode int

const (
	// Asymmetric keeps the directed costs as given.
	Asymmetric Mode = iota
	// Symmetric forces cost(a,b) == cost(b,a) for every city pair.
	Symmetric
)

// String returns the lowercase mode name used in flags and config files.
func (m Mode) String() string {
	switch m {
	case Asymmetric:
		return "asymmetric"
	case Symmetric:
		return "symmetric"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode parses a mode name as produced by [Mode.String].
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asymmetric", "asym", "distance":
		return Asymmetric, nil
	case "symmetric", "sym", "distance_symmetrical":
		return Symmetric, nil
	}
	return Asymmetric, fmt.Errorf("unknown mode %q (must be 'asymmetric' or 'symmetric')", s)
}

// MarshalText implements [encoding.TextMarshaler].
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements [encoding.TextUnmarshaler] using [ParseMode].
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Key identifies a directed edge by the ids of its endpoints.
type Key struct {
	From int
	To   int
}

// Reverse returns the key of the opposite direction.
func (k Key) Reverse() Key { return Key{From: k.To, To: k.From} }

// IsDiagonal reports whether the key is a self-pair.
func (k Key) IsDiagonal() bool { return k.From == k.To }

// CompareKeys orders keys by origin id, then destination id.
func CompareKeys(a, b Key) int {
	if c := cmp.Compare(a.From, b.From); c != 0 {
		return c
	}
	return cmp.Compare(a.To, b.To)
}

// Edge is a directed, costed relation between two cities.
type Edge struct {
	From City  `json:"from"`
	To   City  `json:"to"`
	Cost int64 `json:"cost"`
}

// Key returns the uniqueness key of the edge.
func (e Edge) Key() Key { return Key{From: e.From.ID, To: e.To.ID} }

// IsDiagonal reports whether the edge starts and ends in the same city.
func (e Edge) IsDiagonal() bool { return e.From.ID == e.To.ID }

// String formats the edge as "From -> To (cost)".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s (%d)", e.From, e.To, e.Cost)
}

// Matrix is a sparse directed cost matrix.
//
// The zero value is not usable; create matrices with [NewMatrix].
type Matrix struct {
	cities map[int]City
	out    map[int]map[int]int64 // origin -> destination -> cost
	in     map[int]map[int]struct{}
	size   int
}

// NewMatrix creates an empty matrix.
func NewMatrix() *Matrix {
	return &Matrix{
		cities: make(map[int]City),
		out:    make(map[int]map[int]int64),
		in:     make(map[int]map[int]struct{}),
	}
}

// Add inserts a new edge. It fails if either city is the zero City, if cost
// is negative, or if the ordered pair is already present.
func (m *Matrix) Add(from, to City, cost int64) error {
	if err := checkEdge(from, to, cost); err != nil {
		return err
	}
	if m.Has(Key{From: from.ID, To: to.ID}) {
		return fmt.Errorf("%w: %s -> %s", ErrDuplicateEdge, from, to)
	}
	m.put(from, to, cost)
	return nil
}

// Set inserts or overwrites the edge from -> to.
func (m *Matrix) Set(from, to City, cost int64) error {
	if err := checkEdge(from, to, cost); err != nil {
		return err
	}
	m.put(from, to, cost)
	return nil
}

func checkEdge(from, to City, cost int64) error {
	if from.IsZero() || to.IsZero() {
		return ErrInvalidCity
	}
	if cost < 0 {
		return fmt.Errorf("%w: %s -> %s = %d", ErrNegativeCost, from, to, cost)
	}
	return nil
}

func (m *Matrix) put(from, to City, cost int64) {
	if _, ok := m.cities[from.ID]; !ok || from.Name != "" {
		m.cities[from.ID] = from
	}
	if _, ok := m.cities[to.ID]; !ok || to.Name != "" {
		m.cities[to.ID] = to
	}
	row := m.out[from.ID]
	if row == nil {
		row = make(map[int]int64)
		m.out[from.ID] = row
	}
	if _, exists := row[to.ID]; !exists {
		m.size++
	}
	row[to.ID] = cost

	col := m.in[to.ID]
	if col == nil {
		col = make(map[int]struct{})
		m.in[to.ID] = col
	}
	col[from.ID] = struct{}{}
}

// Remove deletes the edge with key k and reports whether it was present.
func (m *Matrix) Remove(k Key) bool {
	row, ok := m.out[k.From]
	if !ok {
		return false
	}
	if _, ok := row[k.To]; !ok {
		return false
	}
	delete(row, k.To)
	if len(row) == 0 {
		delete(m.out, k.From)
	}
	col := m.in[k.To]
	delete(col, k.From)
	if len(col) == 0 {
		delete(m.in, k.To)
	}
	m.size--
	return true
}

// Has reports whether the edge with key k is present.
func (m *Matrix) Has(k Key) bool {
	_, ok := m.out[k.From][k.To]
	return ok
}

// Cost returns the cost of the edge with key k.
func (m *Matrix) Cost(k Key) (int64, bool) {
	c, ok := m.out[k.From][k.To]
	return c, ok
}

// Edge returns the edge with key k.
func (m *Matrix) Edge(k Key) (Edge, bool) {
	c, ok := m.Cost(k)
	if !ok {
		return Edge{}, false
	}
	return Edge{From: m.cities[k.From], To: m.cities[k.To], Cost: c}, true
}

// Len returns the number of edges.
func (m *Matrix) Len() int {
	if m == nil {
		return 0
	}
	return m.size
}

// IsEmpty reports whether the matrix is nil or has no edges.
func (m *Matrix) IsEmpty() bool { return m.Len() == 0 }

// City returns the city with the given id if the matrix has ever held an
// edge touching it.
func (m *Matrix) City(id int) (City, bool) {
	c, ok := m.cities[id]
	return c, ok
}

// Cities returns the distinct cities that appear on at least one edge,
// sorted by id.
func (m *Matrix) Cities() []City {
	ids := make(map[int]struct{}, len(m.out)+len(m.in))
	for id := range m.out {
		ids[id] = struct{}{}
	}
	for id := range m.in {
		ids[id] = struct{}{}
	}
	cities := make([]City, 0, len(ids))
	for _, id := range slices.Sorted(maps.Keys(ids)) {
		cities = append(cities, m.cities[id])
	}
	return cities
}

// CityCount returns len(m.Cities()) without allocating the slice.
func (m *Matrix) CityCount() int {
	n := len(m.out)
	for id := range m.in {
		if _, ok := m.out[id]; !ok {
			n++
		}
	}
	return n
}

// Origins returns the ids of cities with at least one outgoing edge, ascending.
func (m *Matrix) Origins() []int { return slices.Sorted(maps.Keys(m.out)) }

// Destinations returns the ids of cities with at least one incoming edge,
// ascending.
func (m *Matrix) Destinations() []int { return slices.Sorted(maps.Keys(m.in)) }

// Outgoing returns the edges leaving city id, sorted by destination id.
func (m *Matrix) Outgoing(id int) []Edge {
	row := m.out[id]
	edges := make([]Edge, 0, len(row))
	for _, to := range slices.Sorted(maps.Keys(row)) {
		edges = append(edges, Edge{From: m.cities[id], To: m.cities[to], Cost: row[to]})
	}
	return edges
}

// Incoming returns the edges entering city id, sorted by origin id.
func (m *Matrix) Incoming(id int) []Edge {
	col := m.in[id]
	edges := make([]Edge, 0, len(col))
	for _, from := range slices.Sorted(maps.Keys(col)) {
		edges = append(edges, Edge{From: m.cities[from], To: m.cities[id], Cost: m.out[from][id]})
	}
	return edges
}

// Edges returns all edges ordered by origin id, then destination id.
func (m *Matrix) Edges() []Edge {
	edges := make([]Edge, 0, m.size)
	for _, from := range m.Origins() {
		edges = append(edges, m.Outgoing(from)...)
	}
	return edges
}

// Keys returns the keys of all edges in [CompareKeys] order.
func (m *Matrix) Keys() []Key {
	keys := make([]Key, 0, m.size)
	for _, from := range m.Origins() {
		for _, to := range slices.Sorted(maps.Keys(m.out[from])) {
			keys = append(keys, Key{From: from, To: to})
		}
	}
	return keys
}

// Clone returns an independent deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	c := &Matrix{
		cities: maps.Clone(m.cities),
		out:    make(map[int]map[int]int64, len(m.out)),
		in:     make(map[int]map[int]struct{}, len(m.in)),
		size:   m.size,
	}
	for from, row := range m.out {
		c.out[from] = maps.Clone(row)
	}
	for to, col := range m.in {
		c.in[to] = maps.Clone(col)
	}
	return c
}

// String dumps the matrix as "(from, to) = cost" cells in key order. It is
// meant for debug logging.
func (m *Matrix) String() string {
	var b strings.Builder
	for i, e := range m.Edges() {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "(%s, %s) = %d", e.From, e.To, e.Cost)
	}
	return b.String()
}
