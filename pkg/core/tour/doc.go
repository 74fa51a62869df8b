// Package tour computes an approximate minimum-cost tour over a cost matrix.
//
// # Overview
//
// The optimizer implements the reduced-cost penalty heuristic. Each pass
// works on a fresh copy of the remaining matrix:
//
//  1. Row reduction: subtract the cheapest outgoing cost from every row.
//  2. Column reduction: subtract the cheapest incoming cost from every column.
//  3. Regret: score every zero cell a->b with the cheapest alternative leaving
//     a plus the cheapest alternative entering b.
//  4. Commit: take the zero cell with the highest regret and remove its row,
//     its column and the edge that would close a subtour.
//
// Passes repeat until the matrix is empty; the committed edges are then
// stitched into a city sequence starting at the requested city.
//
// This is not branch-and-bound. Exactly one edge is committed per pass and no
// decision is ever revisited, so a run takes at most n passes for n cities
// and the resulting tour is not guaranteed to be optimal.
//
// # Determinism
//
// Every choice has a fixed tie-break: row minima prefer the lowest
// destination id, column minima the lowest origin id, and equal regrets the
// lowest origin id, then the lowest destination id. The same matrix and start
// city always produce the same tour.
//
// # Forced Commits
//
// A zero cell whose origin has no other outgoing edge, or whose destination
// has no other incoming edge, has no regret. Such cells are skipped while any
// scored zero cell exists. When none does (typically in the last passes),
// the first unscored zero cell is committed instead and the commit is marked
// [Commit.Forced].
//
// # Usage
//
//	res, err := tour.Optimize(m, start, route.Symmetric)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Cities, res.TotalCost)
//
// Use an [Optimizer] with an [Observer] to follow the individual passes.
package tour
