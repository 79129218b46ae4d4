package hierarchical

import (
	"maps"
	"slices"

	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// orderSweeps is the number of barycenter passes (one pass is a top-down
// then bottom-up sweep).
const orderSweeps = 4

// orderRows computes the left-to-right member sequence per rank.
//
// Rows start in id order, then weighted barycenter sweeps pull members
// toward the mean position of their neighbors in the adjacent row. Spouse
// edges enter the barycenter at spouseWeight, parent-child edges at
// defaultEdgeWeight, so a split spouse pair attracts far more strongly than
// a hierarchy edge. After the sweeps, spouses sharing a row are grouped
// adjacent. The swept ordering is kept only when it does not increase the
// crossing count of the initial ordering.
func orderRows(g *relgraph.Graph, ranks map[string]int) map[int][]string {
	orders := initialOrders(g, ranks)
	if len(orders) <= 1 && len(orders) != 0 {
		// Single row: barycenters have no adjacent row to work against.
		clusterSpouses(g, orders)
		return orders
	}

	rows := make([]int, 0, len(orders))
	for r := range orders {
		rows = append(rows, r)
	}
	slices.Sort(rows)

	best := cloneOrders(orders)
	bestCrossings := countCrossings(g, best)

	for sweep := 0; sweep < orderSweeps; sweep++ {
		// Top-down: order each row against the row above.
		for i := 1; i < len(rows); i++ {
			sortByBarycenter(g, orders, rows[i], rows[i-1])
		}
		// Bottom-up: order each row against the row below.
		for i := len(rows) - 2; i >= 0; i-- {
			sortByBarycenter(g, orders, rows[i], rows[i+1])
		}

		if c := countCrossings(g, orders); c < bestCrossings {
			best = cloneOrders(orders)
			bestCrossings = c
		}
	}

	clusterSpouses(g, best)
	return best
}

// initialOrders buckets members by rank in id order.
func initialOrders(g *relgraph.Graph, ranks map[string]int) map[int][]string {
	orders := make(map[int][]string)
	for _, id := range g.MemberIDs() {
		r := ranks[id]
		orders[r] = append(orders[r], id)
	}
	return orders
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}

// sortByBarycenter reorders the members of row by the weighted mean position
// of their neighbors in adjRow. Members without neighbors keep their current
// position. The sort is stable, so ties preserve the existing (ultimately
// id-based) order.
func sortByBarycenter(g *relgraph.Graph, orders map[int][]string, row, adjRow int) {
	adjPos := posMap(orders[adjRow])
	ids := orders[row]

	bary := make(map[string]float64, len(ids))
	for i, id := range ids {
		sum, weight := 0.0, 0.0
		for _, p := range g.ParentsOf(id) {
			if pos, ok := adjPos[p]; ok {
				sum += float64(pos) * defaultEdgeWeight
				weight += defaultEdgeWeight
			}
		}
		for _, c := range g.ChildrenOf(id) {
			if pos, ok := adjPos[c]; ok {
				sum += float64(pos) * defaultEdgeWeight
				weight += defaultEdgeWeight
			}
		}
		for _, s := range g.SpousesOf(id) {
			if pos, ok := adjPos[s]; ok {
				sum += float64(pos) * spouseWeight
				weight += spouseWeight
			}
		}
		if weight == 0 {
			bary[id] = float64(i)
		} else {
			bary[id] = sum / weight
		}
	}

	slices.SortStableFunc(ids, func(a, b string) int {
		switch {
		case bary[a] < bary[b]:
			return -1
		case bary[a] > bary[b]:
			return 1
		default:
			return 0
		}
	})
}

// clusterSpouses pulls spouses sharing a row next to each other. Members
// connected through same-row spouse edges form a cluster; clusters are
// placed at the mean of their members' positions, members keep their
// relative order inside the cluster.
func clusterSpouses(g *relgraph.Graph, orders map[int][]string) {
	for _, row := range slices.Sorted(maps.Keys(orders)) {
		ids := orders[row]
		if len(ids) < 3 {
			continue
		}
		pos := posMap(ids)

		// Union same-row spouse pairs into clusters.
		parent := make(map[string]string, len(ids))
		var find func(string) string
		find = func(x string) string {
			if parent[x] == x {
				return x
			}
			parent[x] = find(parent[x])
			return parent[x]
		}
		for _, id := range ids {
			parent[id] = id
		}
		for _, id := range ids {
			for _, s := range g.SpousesOf(id) {
				if _, ok := pos[s]; ok {
					ra, rb := find(id), find(s)
					if ra != rb {
						if rb < ra {
							ra, rb = rb, ra
						}
						parent[rb] = ra
					}
				}
			}
		}

		clusters := make(map[string][]string)
		for _, id := range ids {
			root := find(id)
			clusters[root] = append(clusters[root], id)
		}
		if len(clusters) == len(ids) {
			continue
		}

		type group struct {
			members []string
			mean    float64
		}
		groupList := make([]group, 0, len(clusters))
		for _, members := range clusters {
			slices.SortFunc(members, func(a, b string) int { return pos[a] - pos[b] })
			sum := 0.0
			for _, m := range members {
				sum += float64(pos[m])
			}
			groupList = append(groupList, group{members, sum / float64(len(members))})
		}
		slices.SortStableFunc(groupList, func(a, b group) int {
			switch {
			case a.mean < b.mean:
				return -1
			case a.mean > b.mean:
				return 1
			default:
				// Deterministic tie break on the leftmost member.
				return pos[a.members[0]] - pos[b.members[0]]
			}
		})

		ordered := make([]string, 0, len(ids))
		for _, grp := range groupList {
			ordered = append(ordered, grp.members...)
		}
		orders[row] = ordered
	}
}
