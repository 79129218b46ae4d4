// Package svg renders assembled family snapshots as standalone SVG
// documents: region overlays below, relation edges above them, member cards
// on top.
package svg

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/stammbaum/pkg/graph"
)

const fontFamily = `'Segoe UI', 'Helvetica Neue', Arial, sans-serif`

const cardInteractionCSS = `
    .member rect { transition: stroke-width 0.15s ease; }
    .member:hover rect { stroke-width: 3; }
    .region-label { font-weight: 600; }`

// Stroke colors per gender, with a neutral fallback.
const (
	strokeMale    = "#3182ce"
	strokeFemale  = "#d53f8c"
	strokeNeutral = "#4a5568"

	fillDefault  = "#ffffff"
	fillDeceased = "#f3f4f6"

	dimmedOpacity = 0.35
)

type Option func(*renderer)

type renderer struct {
	title        string
	hideOverlays bool
	hideEdges    bool
}

// WithTitle draws a caption above the tree.
func WithTitle(title string) Option { return func(r *renderer) { r.title = title } }

// WithoutOverlays suppresses region overlay rectangles.
func WithoutOverlays() Option { return func(r *renderer) { r.hideOverlays = true } }

// WithoutEdges suppresses relation edges.
func WithoutEdges() Option { return func(r *renderer) { r.hideEdges = true } }

const titleMargin = 36.0

// Render produces a standalone SVG document for the snapshot. Output is
// deterministic: nodes, edges, and overlays are drawn in sorted order.
func Render(s graph.Snapshot, opts ...Option) []byte {
	var r renderer
	for _, opt := range opts {
		opt(&r)
	}

	nodes := slices.Clone(s.Nodes)
	slices.SortFunc(nodes, func(a, b graph.Node) int { return cmp.Compare(a.ID, b.ID) })

	edges := slices.Clone(s.Edges)
	slices.SortFunc(edges, func(a, b graph.Edge) int {
		if c := cmp.Compare(a.From, b.From); c != 0 {
			return c
		}
		if c := cmp.Compare(a.To, b.To); c != 0 {
			return c
		}
		return cmp.Compare(a.Kind, b.Kind)
	})

	overlays := slices.Clone(s.Overlays)
	slices.SortFunc(overlays, func(a, b graph.Overlay) int { return cmp.Compare(a.RegionID, b.RegionID) })

	byID := make(map[string]graph.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	width, height := s.Width, s.Height
	offsetY := 0.0
	if r.title != "" {
		height += titleMargin
		offsetY = titleMargin
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&buf, "  <style>%s\n  </style>\n", cardInteractionCSS)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="24" text-anchor="middle" font-family="%s" font-size="18" font-weight="600" fill="#1a202c">%s</text>`+"\n",
			width/2, fontFamily, escape(r.title))
	}

	fmt.Fprintf(&buf, `  <g transform="translate(0, %.1f)">`+"\n", offsetY)

	if !r.hideOverlays {
		for _, o := range overlays {
			renderOverlay(&buf, o)
		}
	}
	if !r.hideEdges {
		for _, e := range edges {
			renderEdge(&buf, e, byID)
		}
	}
	for _, n := range nodes {
		renderNode(&buf, n)
	}

	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderOverlay(buf *bytes.Buffer, o graph.Overlay) {
	dash := ""
	if o.Locked {
		dash = ` stroke-dasharray="8 4"`
	}
	fmt.Fprintf(buf, `    <g class="region" id="region-%s">`+"\n", escape(o.RegionID))
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" fill="%s" fill-opacity="0.35" stroke="%s" stroke-opacity="0.8"%s/>`+"\n",
		o.X, o.Y, o.Width, o.Height, escape(o.Color), escape(o.Color), dash)
	fmt.Fprintf(buf, `      <text class="region-label" x="%.1f" y="%.1f" font-family="%s" font-size="13" fill="#2d3748">%s</text>`+"\n",
		o.X+10, o.Y+18, fontFamily, escape(o.Name))
	buf.WriteString("    </g>\n")
}

func renderEdge(buf *bytes.Buffer, e graph.Edge, byID map[string]graph.Node) {
	from, okF := byID[e.From]
	to, okT := byID[e.To]
	if !okF || !okT {
		return
	}
	if e.IsSpouse() {
		renderSpouseEdge(buf, from, to)
		return
	}

	// Hierarchy edges leave the parent's bottom port and enter the child's
	// top port.
	x1, y1 := from.X+from.Width/2, from.Y+from.Height
	x2, y2 := to.X+to.Width/2, to.Y
	bend := (y2 - y1) / 2
	fmt.Fprintf(buf, `    <path d="M %.1f %.1f C %.1f %.1f, %.1f %.1f, %.1f %.1f" fill="none" stroke="#718096" stroke-width="1.5"/>`+"\n",
		x1, y1, x1, y1+bend, x2, y2-bend, x2, y2)
}

// renderSpouseEdge draws the marriage double line between partners. Partners
// on the same row connect border to border; a split pair falls back to a
// dashed center line.
func renderSpouseEdge(buf *bytes.Buffer, a, b graph.Node) {
	if a.Rank == b.Rank {
		left, right := a, b
		if right.X < left.X {
			left, right = right, left
		}
		x1 := left.X + left.Width
		x2 := right.X
		y := left.Y + left.Height/2
		if x2 < x1 {
			x1, x2 = x2, x1
		}
		for _, dy := range []float64{-2, 2} {
			fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#a0aec0" stroke-width="1.5"/>`+"\n",
				x1, y+dy, x2, y+dy)
		}
		return
	}
	fmt.Fprintf(buf, `    <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#a0aec0" stroke-width="1.5" stroke-dasharray="4 3"/>`+"\n",
		a.X+a.Width/2, a.Y+a.Height/2, b.X+b.Width/2, b.Y+b.Height/2)
}

func renderNode(buf *bytes.Buffer, n graph.Node) {
	stroke := strokeNeutral
	switch n.Gender {
	case "male":
		stroke = strokeMale
	case "female":
		stroke = strokeFemale
	}
	fill := fillDefault
	if n.Deceased {
		fill = fillDeceased
	}

	attrs := ""
	if n.Dimmed {
		attrs = fmt.Sprintf(` opacity="%.2f"`, dimmedOpacity)
	}
	dash := ""
	if n.Fuzzy {
		dash = ` stroke-dasharray="6 3"`
	}

	fmt.Fprintf(buf, `    <g class="member" id="member-%s"%s>`+"\n", escape(n.ID), attrs)
	fmt.Fprintf(buf, `      <rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="8" fill="%s" stroke="%s" stroke-width="2"%s/>`+"\n",
		n.X, n.Y, n.Width, n.Height, fill, stroke, dash)

	cx := n.X + n.Width/2
	labelY := n.Y + n.Height/2
	if n.Sublabel != "" {
		labelY = n.Y + n.Height/2 - 6
	}
	fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="13" fill="#1a202c">%s</text>`+"\n",
		cx, labelY, fontFamily, escape(n.DisplayLabel()))
	if n.Sublabel != "" {
		fmt.Fprintf(buf, `      <text x="%.1f" y="%.1f" text-anchor="middle" dominant-baseline="middle" font-family="%s" font-size="10" fill="#718096">%s</text>`+"\n",
			cx, labelY+16, fontFamily, escape(n.Sublabel))
	}
	buf.WriteString("    </g>\n")
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
