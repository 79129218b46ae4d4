package hierarchical

import (
	"slices"
	"strings"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// Rank separation constraints. Parent-child edges force children at least
// two ranks below their parents, leaving a free rank between generations.
// Spouse edges prefer a separation of zero; their weight dominates the
// default edge weight, so alignment yields only to parent-child constraints.
const (
	parentChildMinSep = 2
	spouseWeight      = 10
	defaultEdgeWeight = 1
)

// maxAlignSweeps bounds the spouse alignment fixpoint iteration.
const maxAlignSweeps = 8

// spousePair is an undirected spouse constraint in canonical order.
type spousePair struct {
	a, b string
}

// assignRanks computes generation rows for every member.
//
// Phase one runs a longest-path layering (topological traversal) over the
// parent_child edges with a minimum separation of parentChildMinSep, so
// sources sit at rank 0 and every child at least two ranks below each
// parent. Isolated members stay at rank 0. A parent-child cycle can never
// satisfy the separation constraints; it is rejected.
//
// Phase two aligns spouses onto a shared rank wherever the hard parent-child
// constraints allow: the shallower partner is pulled down when none of its
// children would end up closer than the minimum separation, otherwise the
// deeper partner is pulled up when its parents allow it, otherwise the
// shallower partner drops anyway and its descendants cascade down to keep
// the separation. A pair stays split only when a parent-child path connects
// the two partners, which makes equal ranks infeasible. Sweeps repeat until
// a fixpoint or the sweep bound.
//
// Ranks are normalized to start at 0. Rank numbering keeps the free
// separation slots; it is not compacted.
func assignRanks(g *relgraph.Graph) (map[string]int, error) {
	ids := g.MemberIDs()
	ranks := make(map[string]int, len(ids))
	inDegree := make(map[string]int, len(ids))

	for _, id := range ids {
		ranks[id] = 0
		inDegree[id] = len(g.ParentsOf(id))
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	processed := 0
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		processed++

		for _, child := range g.ChildrenOf(curr) {
			if r := ranks[curr] + parentChildMinSep; r > ranks[child] {
				ranks[child] = r
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if processed < len(ids) {
		return nil, errors.New(errors.ErrCodeValidation, "parent-child relations contain a cycle")
	}

	alignSpouses(g, ranks)
	normalizeRanks(ranks)
	return ranks, nil
}

// spousePairs collects the spouse constraints in deterministic order.
func spousePairs(g *relgraph.Graph) []spousePair {
	var pairs []spousePair
	for _, r := range g.Relations() {
		if r.Kind != family.RelationSpouse {
			continue
		}
		a, b := r.From, r.To
		if b < a {
			a, b = b, a
		}
		pairs = append(pairs, spousePair{a, b})
	}
	slices.SortFunc(pairs, func(x, y spousePair) int {
		if c := strings.Compare(x.a, y.a); c != 0 {
			return c
		}
		return strings.Compare(x.b, y.b)
	})
	return pairs
}

// alignSpouses runs the soft same-rank constraint to a bounded fixpoint.
func alignSpouses(g *relgraph.Graph, ranks map[string]int) {
	pairs := spousePairs(g)
	if len(pairs) == 0 {
		return
	}

	for sweep := 0; sweep < maxAlignSweeps; sweep++ {
		changed := false
		for _, p := range pairs {
			ra, rb := ranks[p.a], ranks[p.b]
			if ra == rb {
				continue
			}
			lo, hi := p.a, p.b
			if rb < ra {
				lo, hi = p.b, p.a
			}
			target := ranks[hi]

			// Pulling the shallower partner down never violates its parent
			// constraints; only its children can object.
			if canLower(g, ranks, lo, target) {
				ranks[lo] = target
				changed = true
				continue
			}
			// Pulling the deeper partner up never violates its child
			// constraints; only its parents can object.
			if canRaise(g, ranks, hi, ranks[lo]) {
				ranks[hi] = ranks[lo]
				changed = true
				continue
			}
			// Both direct moves are blocked, but the shallower partner can
			// still drop if its descendants make room below. Only a
			// parent-child path between the partners makes the split
			// unavoidable: lowering an ancestor towards its own descendant
			// would chase a target that keeps moving away.
			if descends(g, lo, hi) {
				continue
			}
			ranks[lo] = target
			pushDescendants(g, ranks, lo)
			changed = true
		}
		if !changed {
			return
		}
	}
}

// canLower reports whether moving id down to target keeps every child at
// least the minimum separation below it.
func canLower(g *relgraph.Graph, ranks map[string]int, id string, target int) bool {
	for _, child := range g.ChildrenOf(id) {
		if ranks[child] < target+parentChildMinSep {
			return false
		}
	}
	return true
}

// canRaise reports whether moving id up to target keeps it at least the
// minimum separation below every parent.
func canRaise(g *relgraph.Graph, ranks map[string]int, id string, target int) bool {
	for _, parent := range g.ParentsOf(id) {
		if target < ranks[parent]+parentChildMinSep {
			return false
		}
	}
	return true
}

// descends reports whether a directed parent-child path leads from id down
// to target.
func descends(g *relgraph.Graph, id, target string) bool {
	seen := map[string]bool{id: true}
	queue := []string{id}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range g.ChildrenOf(curr) {
			if child == target {
				return true
			}
			if !seen[child] {
				seen[child] = true
				queue = append(queue, child)
			}
		}
	}
	return false
}

// pushDescendants restores the minimum separation below id after it moved
// down, cascading the shift through the parent-child edges.
func pushDescendants(g *relgraph.Graph, ranks map[string]int, id string) {
	queue := []string{id}
	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, child := range g.ChildrenOf(curr) {
			if r := ranks[curr] + parentChildMinSep; r > ranks[child] {
				ranks[child] = r
				queue = append(queue, child)
			}
		}
	}
}

// normalizeRanks shifts all ranks so the minimum is zero.
func normalizeRanks(ranks map[string]int) {
	if len(ranks) == 0 {
		return
	}
	lowest := 0
	first := true
	for _, r := range ranks {
		if first || r < lowest {
			lowest = r
			first = false
		}
	}
	if lowest == 0 {
		return
	}
	for id := range ranks {
		ranks[id] -= lowest
	}
}
