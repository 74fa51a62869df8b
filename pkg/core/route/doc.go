// Package route provides the data model for tour optimization: cities, directed
// costed edges, and the sparse cost matrix that connects them.
//
// # Overview
//
// A [Matrix] is a sparse directed cost matrix. Every entry is an [Edge] from
// one [City] to another, keyed by the ordered pair of city ids ([Key]). A
// matrix holds at most one edge per ordered pair and never a negative cost.
// Self-pairs may be present in raw input; they are removed by
// [github.com/matzehuels/citytour/pkg/core/route/transform.StripDiagonal]
// before optimization.
//
// # City Identity
//
// Cities are identified by an integer id handed out by a [Registry]. A
// registry assigns ids once per distinct name, starting at 1, and returns the
// same [City] for every later lookup of that name. Registries are scoped to a
// single loading session and passed explicitly to the readers in
// [github.com/matzehuels/citytour/pkg/io]:
//
//	reg := route.NewRegistry()
//	a := reg.CreateOrGet("Amsterdam")
//	b := reg.CreateOrGet("Berlin")
//
//	m := route.NewMatrix()
//	m.Add(a, b, 660)
//	m.Add(b, a, 655)
//
// # Values, not aliases
//
// Every operation that produces a modified matrix for the optimizer works on
// a [Matrix.Clone]. Callers can reuse the matrix they built for several
// optimizations and get the same result each time.
//
// # Errors
//
// [ErrInvalidRoute], [ErrInconsistentRoute] and [ErrIncompleteRoute] form the
// error taxonomy shared by the normalizer and the optimizer. They are always
// wrapped with context; test for them with errors.Is.
//
// # Concurrency
//
// Matrix is not safe for concurrent mutation. Concurrent readers are fine, and
// clones are fully independent. Registry is not safe for concurrent use.
package route
