// Package graph provides serialization types for assembled family graphs.
//
// This package defines the canonical wire format for Stammbaum's renderable
// graph data, used for JSON files, API responses, and caching.
//
// # Architecture
//
// The package sits at the serialization boundary between internal
// representations and external formats:
//
//   - [Snapshot]: Serialization type (this package)
//   - pkg/relgraph.Graph: Internal relation graph
//   - pkg/layout.Result: Internal layout output (positions, ranks, rows)
//
// The assembler converts the internal representations into a Snapshot; the
// render sinks (SVG, DOT) consume snapshots and never touch the internals.
//
// # Core Types
//
//   - [Snapshot]: Positioned nodes, edges, and region overlays for one pass
//   - [Node]: A placed member card (top-left anchored coordinates)
//   - [Edge]: A typed relation edge (parent_child or spouse)
//   - [Overlay]: A region bounding box with name, color, and lock state
//
// # Serialization
//
// Snapshots use plain JSON:
//
//	{
//	  "tree_id": "...",
//	  "nodes": [{"id": "m1", "x": 40, "y": 40, ...}],
//	  "edges": [{"from": "m1", "to": "m2", "kind": "parent_child"}],
//	  "overlays": [{"region_id": "r1", "x": 20, ...}]
//	}
//
// Common operations:
//
//	s, _ := graph.ReadSnapshotFile("tree.json")    // File → Snapshot
//	graph.WriteSnapshotFile(s, "output.json")      // Snapshot → File
//	data, _ := graph.MarshalSnapshot(s)            // Snapshot → []byte
//	parsed, _ := graph.UnmarshalSnapshot(data)     // []byte → Snapshot
//
// # Ports
//
// Every node receives edges at its top border and emits them at its bottom
// border ([PortTop], [PortBottom]); the assembler sets both on each node so
// renderers route hierarchy edges top-to-bottom without deciding anything.
//
// # Concurrency
//
// All functions are safe for concurrent reads but not concurrent writes.
package graph
