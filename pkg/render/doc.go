// Package render turns assembled family snapshots into deliverable artifacts.
//
// # Overview
//
// The package itself only carries the generic format converters; the actual
// drawing lives in two subpackages:
//
//   - [svg]: native SVG rendering of a positioned snapshot (member cards,
//     marriage lines, region overlays)
//   - [dot]: Graphviz DOT projection of the same snapshot, rendered through
//     goccy/go-graphviz
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg). Both renderers funnel through them:
//
//	doc := svg.Render(snapshot)
//	pdf, err := render.ToPDF(doc)
//	png, err := render.ToPNG(doc, 2.0)  // 2x scale
//
// # Choosing a Renderer
//
// The SVG renderer is the canonical view: it honors the exact coordinates the
// layout engine computed, including region overlay rectangles. The DOT
// renderer discards coordinates and lets Graphviz re-lay the tree; it is
// useful for quick structural inspection and for piping into other Graphviz
// tooling.
//
// [svg]: github.com/matzehuels/stammbaum/pkg/render/svg
// [dot]: github.com/matzehuels/stammbaum/pkg/render/dot
package render
