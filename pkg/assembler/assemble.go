package assembler

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/graph"
	"github.com/matzehuels/stammbaum/pkg/region"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// Assemble runs the pure filter → layout → overlay pipeline over one tree
// and produces a complete snapshot. It performs a full recompute on every
// call and never returns partial positions: a layout that omits any placed
// member aborts with a LAYOUT_INTERNAL error.
func Assemble(tree *family.Tree, opts Options) (graph.Snapshot, error) {
	g, err := FilterTree(tree, opts)
	if err != nil {
		return graph.Snapshot{}, err
	}
	return AssembleGraph(tree, g, opts)
}

// FilterTree derives the displayable subgraph of a tree per the filter
// settings. Filtering is all-or-nothing per member: a hidden member takes
// all of its relations with it.
func FilterTree(tree *family.Tree, opts Options) (*relgraph.Graph, error) {
	if tree == nil || tree.Family == nil {
		return nil, errors.New(errors.ErrCodeValidation, "assemble requires a tree")
	}
	if err := opts.ValidateForAssemble(); err != nil {
		return nil, err
	}
	g, err := relgraph.Filter(tree.Members, tree.Relations, opts.Settings())
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeValidation, err, "filter relation graph")
	}
	return g, nil
}

// AssembleGraph lays out an already-filtered graph and attaches region
// overlays. The tree supplies labels and region records; the graph decides
// which members are placed.
func AssembleGraph(tree *family.Tree, g *relgraph.Graph, opts Options) (graph.Snapshot, error) {
	if tree == nil || tree.Family == nil {
		return graph.Snapshot{}, errors.New(errors.ErrCodeValidation, "assemble requires a tree")
	}
	if err := opts.ValidateForAssemble(); err != nil {
		return graph.Snapshot{}, err
	}
	settings := opts.Settings()

	res, err := opts.StrategyImpl.Layout(g, opts.LayoutConfig())
	if err != nil {
		return graph.Snapshot{}, err
	}

	regionsByMember := memberRegions(tree.Regions)

	nodes := make([]graph.Node, 0, g.MemberCount())
	for _, m := range g.Members() {
		pos, ok := res.Positions[m.ID]
		if !ok {
			// Strategies guarantee completeness; a hole here is a solver bug,
			// not bad input.
			return graph.Snapshot{}, errors.New(errors.ErrCodeLayoutInternal,
				"layout returned no position for member %s", m.ID)
		}
		nodes = append(nodes, graph.Node{
			ID:        m.ID,
			Label:     m.DisplayName(),
			Sublabel:  lifespan(m),
			X:         pos.X,
			Y:         pos.Y,
			Width:     opts.NodeWidth,
			Height:    opts.NodeHeight,
			Rank:      res.Ranks[m.ID],
			InPort:    graph.PortTop,
			OutPort:   graph.PortBottom,
			Gender:    m.Gender,
			Deceased:  m.Deceased,
			Fuzzy:     m.Fuzzy,
			Linked:    m.Linked,
			Dimmed:    settings.Dimmed(m),
			PhotoURL:  m.PhotoURL,
			RegionIDs: regionsByMember[m.ID],
		})
	}

	edges := make([]graph.Edge, 0, g.RelationCount())
	for _, r := range g.Relations() {
		edges = append(edges, graph.Edge{ID: r.ID, From: r.From, To: r.To, Kind: r.Kind})
	}

	overlays := buildOverlays(tree, nodes, res.Width, res.Height, opts.OverlayMargin)

	generatedAt := time.Now().UTC()
	if !opts.Now.IsZero() {
		generatedAt = opts.Now.UTC()
	}

	rows := make(map[int][]string, len(res.Orders))
	for rank, order := range res.Orders {
		rows[rank] = slices.Clone(order)
	}

	return graph.Snapshot{
		TreeID:      tree.Family.ID,
		Strategy:    opts.Strategy,
		GeneratedAt: generatedAt,
		Width:       res.Width,
		Height:      res.Height,
		Nodes:       nodes,
		Edges:       edges,
		Overlays:    overlays,
		Rows:        rows,
	}, nil
}

// buildOverlays computes one bounding box per region with at least one
// placed member: the min/max extent of its member boxes expanded by the
// overlay margin, clamped to the drawing frame. Purely geometric.
func buildOverlays(tree *family.Tree, nodes []graph.Node, width, height, margin float64) []graph.Overlay {
	if len(tree.Regions) == 0 {
		return nil
	}

	byID := make(map[string]*graph.Node, len(nodes))
	for i := range nodes {
		byID[nodes[i].ID] = &nodes[i]
	}
	src := region.NewIndex(tree.Members)

	records := slices.Clone(tree.Regions)
	slices.SortFunc(records, func(a, b *family.Region) int {
		return strings.Compare(a.ID, b.ID)
	})

	overlays := make([]graph.Overlay, 0, len(records))
	for _, rec := range records {
		var (
			minX, minY float64
			maxX, maxY float64
			placed     int
		)
		for _, id := range rec.MemberIDs {
			n, ok := byID[id]
			if !ok {
				continue
			}
			if placed == 0 {
				minX, minY = n.X, n.Y
				maxX, maxY = n.X+n.Width, n.Y+n.Height
			} else {
				minX = min(minX, n.X)
				minY = min(minY, n.Y)
				maxX = max(maxX, n.X+n.Width)
				maxY = max(maxY, n.Y+n.Height)
			}
			placed++
		}
		if placed == 0 {
			// Every member filtered out; the region has no visible extent.
			continue
		}

		x := max(minX-margin, 0)
		y := max(minY-margin, 0)
		x2 := min(maxX+margin, width)
		y2 := min(maxY+margin, height)

		locked, _ := region.Classify(src, rec.MemberIDs)
		overlays = append(overlays, graph.Overlay{
			RegionID: rec.ID,
			Name:     rec.Name,
			Color:    rec.Color,
			X:        x,
			Y:        y,
			Width:    x2 - x,
			Height:   y2 - y,
			Locked:   locked,
			Members:  placed,
		})
	}
	return overlays
}

// memberRegions inverts region records to a member → sorted region ids map.
func memberRegions(records []*family.Region) map[string][]string {
	if len(records) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, rec := range records {
		for _, id := range rec.MemberIDs {
			out[id] = append(out[id], rec.ID)
		}
	}
	for id := range out {
		slices.Sort(out[id])
	}
	return out
}

// lifespan formats the life-dates line in the usual genealogical notation,
// * for birth and † for death.
func lifespan(m *family.Member) string {
	switch {
	case m.BirthDate != "" && m.DeathDate != "":
		return "* " + m.BirthDate + " † " + m.DeathDate
	case m.BirthDate != "":
		return "* " + m.BirthDate
	case m.DeathDate != "":
		return "† " + m.DeathDate
	}
	return ""
}

// TreeHash computes the content hash of a tree's assembly-relevant records.
// The store returns records sorted by id, so equal content yields equal
// hashes across processes.
func TreeHash(tree *family.Tree) string {
	payload := struct {
		Members   []*family.Member   `json:"members"`
		Relations []*family.Relation `json:"relations"`
		Regions   []*family.Region   `json:"regions"`
	}{tree.Members, tree.Relations, tree.Regions}
	data, _ := json.Marshal(payload)
	return cache.Hash(data)
}
