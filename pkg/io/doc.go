// Package io reads cost matrices from files and writes matrices and tours back
// out.
//
// # Matrix Grids
//
// Delimited text and spreadsheets share one layout: the first row lists the
// destination cities after a corner cell, and every following row starts with
// an origin city followed by the cost to each destination:
//
//	;Paris;Lyon;Nice
//	Paris;;465;930
//	Lyon;470;;470
//	Nice;935;475;
//
// Blank cells mean "no edge". Costs are non-negative integers. The corner
// cell is ignored.
//
// Use [ReadCSV] for delimited text (the default delimiter is ';') and
// [ReadXLSX] for Excel workbooks.
//
// # JSON Edge Lists
//
// Sparse matrices are easier to write as JSON:
//
//	{
//	  "cities": ["Paris", "Lyon"],
//	  "edges": [
//	    {"from": "Paris", "to": "Lyon", "cost": 465},
//	    {"from": "Lyon", "to": "Paris", "cost": 470}
//	  ]
//	}
//
// The optional "cities" array fixes the order in which ids are assigned.
// [WriteJSON] produces the same format, so matrices round-trip.
//
// # City Identity
//
// Every reader takes a [route.Registry]. Pass a fresh registry per loading
// session; names seen for the first time get the next id, and the registry
// is later used to resolve the start city by name.
//
// # Results
//
// [WriteResultJSON] and [WriteResultXLSX] export a computed [tour.Result].
// [Import] picks a reader from the file extension.
//
// [tour.Result]: github.com/matzehuels/citytour/pkg/core/tour.Result
package io
