package hierarchical

import (
	"slices"

	"github.com/matzehuels/stammbaum/pkg/layout"
)

// assignCoordinates turns ranks and row orders into top-left anchored
// positions.
//
// Rows are placed top to bottom, one rank per RankSep step; members are
// placed left to right with NodeSep gaps, each row centered within the
// widest row. The placement computes box centers first and then converts to
// top-left anchors by subtracting half the box size, since rendering anchors
// nodes by their top-left corner.
func assignCoordinates(ranks map[string]int, orders map[int][]string, cfg layout.Config) (map[string]layout.Position, float64, float64) {
	rows := make([]int, 0, len(orders))
	for r := range orders {
		rows = append(rows, r)
	}
	slices.Sort(rows)

	widest := 0.0
	for _, r := range rows {
		if w := rowWidth(len(orders[r]), cfg); w > widest {
			widest = w
		}
	}

	positions := make(map[string]layout.Position, len(ranks))
	for _, r := range rows {
		ids := orders[r]
		offset := cfg.Margin + (widest-rowWidth(len(ids), cfg))/2
		centerY := cfg.Margin + cfg.NodeHeight/2 + float64(r)*cfg.RankSep

		for i, id := range ids {
			centerX := offset + cfg.NodeWidth/2 + float64(i)*(cfg.NodeWidth+cfg.NodeSep)
			positions[id] = layout.Position{
				X: centerX - cfg.NodeWidth/2,
				Y: centerY - cfg.NodeHeight/2,
			}
		}
	}

	width := widest + 2*cfg.Margin
	height := 2 * cfg.Margin
	if len(rows) > 0 {
		lastRank := rows[len(rows)-1]
		height = 2*cfg.Margin + cfg.NodeHeight + float64(lastRank)*cfg.RankSep
	}
	return positions, width, height
}

func rowWidth(n int, cfg layout.Config) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n)*cfg.NodeWidth + float64(n-1)*cfg.NodeSep
}
