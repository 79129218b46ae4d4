// Package hierarchical implements the rank-constrained layout strategy for
// genealogical graphs.
//
// The strategy maps the two relation kinds onto different constraints.
// Parent-child edges are hard: a child sits at least two ranks below each
// parent, leaving a free rank between generations. Spouse edges are soft: a
// heavily weighted preference for sharing a rank that yields only when a
// parent-child path between the partners makes equal ranks infeasible.
//
// A pass has three phases:
//
//  1. Rank assignment: longest-path layering over the parent-child edges,
//     followed by spouse alignment sweeps that pull split pairs onto a
//     shared rank where feasible.
//  2. Row ordering: weighted barycenter sweeps minimize edge crossings
//     between adjacent rows, then spouses sharing a row are grouped
//     adjacent.
//  3. Coordinates: rows become horizontal bands separated by the configured
//     rank separation; box centers are computed and converted to top-left
//     anchors.
//
// The strategy is deterministic: the graph accessors iterate in id order
// and every tie break is ordered, so identical input produces identical
// output.
package hierarchical
