// Package pkg provides the core libraries for Stammbaum family tree
// visualization.
//
// # Overview
//
// Stammbaum turns genealogical records into generation-ranked graph diagrams:
// members become node cards, parent-child and spousal relations become edges,
// and regions become colored overlay boxes. The pkg directory is organized
// into four main areas:
//
//  1. [family] - Domain records and storage (members, relations, regions)
//  2. [relgraph], [layout], [render] - The assembly pipeline stages
//  3. [assembler] - Orchestration (filter → layout → overlay → render)
//  4. [graph] - Serialization types for assembled snapshots
//
// # Architecture
//
// The typical data flow through Stammbaum:
//
//	family.Store (memory or MongoDB)
//	         ↓
//	    [relgraph] package (filtered relation graph)
//	         ↓
//	    [layout] package (ranked coordinates)
//	         ↓
//	    [render] package (SVG, DOT, PNG)
//
// # Quick Start
//
// Load a tree and render it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/stammbaum/pkg/assembler"
//	    "github.com/matzehuels/stammbaum/pkg/family"
//	)
//
//	// 1. Load the tree snapshot
//	st := family.NewMemoryStore()
//	tree, _ := st.Tree(context.Background(), treeID)
//
//	// 2. Assemble and render
//	runner := assembler.NewRunner(nil, nil, nil)
//	result, _ := runner.Execute(context.Background(), tree, assembler.Options{
//	    Formats: []string{assembler.FormatSVG},
//	})
//
//	svg := result.Artifacts["svg"]
//
// # Main Packages
//
//   - [family]: member, relation, and region records with Store backends
//     (in-memory and MongoDB), plus the exchange import/export format
//   - [region]: region membership engine enforcing linked-family grouping
//   - [relgraph]: relation graph construction and visibility filtering
//   - [layout]: rank assignment and coordinate computation
//   - [assembler]: the pipeline runner with snapshot and artifact caching
//   - [render]: SVG and Graphviz DOT sinks plus format converters
//   - [graph]: the snapshot wire format shared by files, API, and cache
//   - [cache]: file, Redis, and null cache backends
//   - [errors]: coded errors shared across the module
//   - [observability]: pipeline and HTTP instrumentation hooks
//
// [family]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/family
// [region]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/region
// [relgraph]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/relgraph
// [layout]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/layout
// [assembler]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/assembler
// [render]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/render
// [graph]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/graph
// [cache]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stammbaum/pkg/observability
package pkg
