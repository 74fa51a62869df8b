// Package transform prepares a raw cost matrix for tour optimization.
//
// # Overview
//
// Cost matrices read from spreadsheets are rarely in the shape the optimizer
// expects. Rows often contain a zero (or arbitrary) self-cost on the
// diagonal, and distance tables that are meant to be symmetric frequently
// disagree between the upper and lower triangle. This package fixes both.
//
// The [Normalize] function applies the complete pipeline on a copy of its
// input and leaves the caller's matrix untouched.
//
// # Symmetrization
//
// [Symmetrize] forces cost(a,b) == cost(b,a) for every city pair. The
// direction whose origin has the lower city id is canonical; the opposite
// direction takes its cost, and is created when it was missing:
//
//	Before: A->B = 1, B->A = 4
//	After:  A->B = 1, B->A = 1
//
// Symmetrization only runs in [route.Symmetric] mode.
//
// # Diagonal Stripping
//
// [StripDiagonal] removes every self-pair. It is idempotent.
package transform
