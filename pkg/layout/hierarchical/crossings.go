package hierarchical

import (
	"slices"

	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// posMap maps each id to its index in the given order.
func posMap(order []string) map[string]int {
	m := make(map[string]int, len(order))
	for i, id := range order {
		m[id] = i
	}
	return m
}

// countCrossings sums the edge crossings between each pair of consecutive
// occupied ranks.
func countCrossings(g *relgraph.Graph, orders map[int][]string) int {
	rows := make([]int, 0, len(orders))
	for r := range orders {
		rows = append(rows, r)
	}
	slices.Sort(rows)

	total := 0
	for i := 0; i+1 < len(rows); i++ {
		total += countLayerCrossings(g, orders[rows[i]], orders[rows[i+1]])
	}
	return total
}

// countLayerCrossings counts edge crossings between two adjacent rows using
// a Fenwick tree for O(E log V) inversion counting. Two edges (u1,v1) and
// (u2,v2) cross iff pos(u1) < pos(u2) and pos(v1) > pos(v2), so crossings
// equal inversions in the target positions once edges are sorted by source
// position.
func countLayerCrossings(g *relgraph.Graph, upper, lower []string) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}

	lowerPos := posMap(lower)

	type edge struct{ upper, lower int }
	edges := make([]edge, 0, len(upper)*2)
	for i, id := range upper {
		for _, child := range g.ChildrenOf(id) {
			if pos, ok := lowerPos[child]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
		for _, partner := range g.SpousesOf(id) {
			if pos, ok := lowerPos[partner]; ok {
				edges = append(edges, edge{i, pos})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b edge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, total := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += total - lessOrEqual

		total++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
