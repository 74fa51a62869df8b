// Package pkg provides the core libraries for citytour route optimization.
//
// # Overview
//
// Citytour reads a directed cost matrix between named cities and computes a
// short tour that starts at a chosen city and visits every other city once.
// The tour is built by repeated row and column reduction: every pass scores
// the zero-cost cells by their regret and commits the one whose omission
// would cost most.
//
// # Architecture
//
// The typical data flow:
//
//	CSV / Excel / JSON matrix
//	         ↓
//	    [io] package (parse into a route.Matrix)
//	         ↓
//	    [core/route/transform] (symmetrize, strip the diagonal)
//	         ↓
//	    [core/tour] (reduce, select, assemble)
//	         ↓
//	    [render/nodelink] (Graphviz DOT, SVG, PNG)
//
// # Quick Start
//
//	reg := route.NewRegistry()
//	m, _ := io.ImportCSV("routes.csv", reg, io.CSVOptions{Delimiter: ';'})
//
//	paris, _ := reg.Lookup("Paris")
//	res, err := tour.Optimize(m, paris, route.Symmetric)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.TotalCost)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [core/route] - Cities, the city registry and the sparse cost matrix.
//
// [core/route/transform] - Matrix normalization before optimization.
//
// [core/tour] - The reduction heuristic: row and column reduction, regret
// scoring, edge commitment with subtour prevention, tour assembly and the
// lower and upper bounds reported with every result.
//
// ## Input and Output
//
// [io] - Matrix import from delimited text, Excel workbooks and JSON edge
// lists; tour export as JSON and Excel.
//
// [render/nodelink] - Tour diagrams through Graphviz.
//
// ## Infrastructure
//
// [pipeline] - The load → optimize → render pipeline shared by the CLI and
// the API, with caching and coded errors.
//
// [cache] - File, Redis and MongoDB caches for tours and diagrams.
//
// [server] - The HTTP API.
//
// [observability] - Hooks for metrics, with a Prometheus implementation.
//
// [errors] - Error codes and input validation.
//
// # Testing
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/core/tour/...          # Specific package
//	go test -run Example ./pkg/...       # Examples only
//
// [core/route]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/core/route
// [core/route/transform]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/core/route/transform
// [core/tour]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/core/tour
// [io]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/io
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/citytour/pkg/errors
package pkg
