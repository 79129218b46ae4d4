package assembler

import (
	"github.com/matzehuels/stammbaum/pkg/graph"
	"github.com/matzehuels/stammbaum/pkg/render"
	"github.com/matzehuels/stammbaum/pkg/render/dot"
	"github.com/matzehuels/stammbaum/pkg/render/svg"
)

// RenderSnapshot renders a snapshot in all requested formats. The SVG
// document is produced once and shared by the svg, png, and pdf outputs;
// dot is an independent Graphviz projection.
func RenderSnapshot(s graph.Snapshot, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	var svgDoc []byte
	renderedSVG := func() []byte {
		if svgDoc == nil {
			svgDoc = svg.Render(s, svgOptions(opts)...)
		}
		return svgDoc
	}

	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			data, err := graph.MarshalSnapshot(s)
			if err != nil {
				return nil, err
			}
			artifacts[format] = data

		case FormatSVG:
			artifacts[format] = renderedSVG()

		case FormatDOT:
			artifacts[format] = []byte(dot.Generate(s, dot.Options{Detailed: opts.Detailed}))

		case FormatPNG:
			png, err := render.ToPNG(renderedSVG(), opts.Scale)
			if err != nil {
				return nil, err
			}
			artifacts[format] = png

		case FormatPDF:
			pdf, err := render.ToPDF(renderedSVG())
			if err != nil {
				return nil, err
			}
			artifacts[format] = pdf
		}
	}
	return artifacts, nil
}

func svgOptions(opts Options) []svg.Option {
	var out []svg.Option
	if opts.Title != "" {
		out = append(out, svg.WithTitle(opts.Title))
	}
	if opts.HideOverlays {
		out = append(out, svg.WithoutOverlays())
	}
	if opts.HideEdges {
		out = append(out, svg.WithoutEdges())
	}
	return out
}
