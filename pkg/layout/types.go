// Package layout defines the layout capability: the Strategy interface that
// turns a relation graph into positioned nodes, plus the shared Config and
// Result types. The hierarchical subpackage provides the rank-constrained
// strategy used for genealogical trees; alternative strategies plug in
// behind the same interface.
package layout

import (
	"slices"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// Default layout parameters.
const (
	DefaultNodeWidth  = 120.0
	DefaultNodeHeight = 60.0
	DefaultRankSep    = 150.0
	DefaultNodeSep    = 50.0
	DefaultMargin     = 40.0
)

// Position is a top-left anchored 2D coordinate.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Config holds the geometric parameters of a layout pass. Every node carries
// the same fixed logical box size.
type Config struct {
	NodeWidth  float64 `json:"node_width"`
	NodeHeight float64 `json:"node_height"`

	// RankSep is the vertical distance between consecutive generation rows.
	RankSep float64 `json:"rank_sep"`

	// NodeSep is the horizontal distance between adjacent nodes in a row.
	NodeSep float64 `json:"node_sep"`

	// Margin pads the drawing on all sides.
	Margin float64 `json:"margin"`
}

// DefaultConfig returns the default layout parameters.
func DefaultConfig() Config {
	return Config{
		NodeWidth:  DefaultNodeWidth,
		NodeHeight: DefaultNodeHeight,
		RankSep:    DefaultRankSep,
		NodeSep:    DefaultNodeSep,
		Margin:     DefaultMargin,
	}
}

// ValidateAndSetDefaults fills zero fields with defaults and rejects
// negative values.
func (c *Config) ValidateAndSetDefaults() error {
	if c.NodeWidth < 0 || c.NodeHeight < 0 || c.RankSep < 0 || c.NodeSep < 0 || c.Margin < 0 {
		return errors.New(errors.ErrCodeValidation, "layout dimensions cannot be negative")
	}
	if c.NodeWidth == 0 {
		c.NodeWidth = DefaultNodeWidth
	}
	if c.NodeHeight == 0 {
		c.NodeHeight = DefaultNodeHeight
	}
	if c.RankSep == 0 {
		c.RankSep = DefaultRankSep
	}
	if c.NodeSep == 0 {
		c.NodeSep = DefaultNodeSep
	}
	if c.Margin == 0 {
		c.Margin = DefaultMargin
	}
	return nil
}

// Result is the output of one layout pass. Positions are top-left anchored;
// Ranks holds the generation row per member; Orders holds the left-to-right
// member sequence per occupied rank. Width and Height bound the drawing
// including margins.
type Result struct {
	Positions map[string]Position `json:"positions"`
	Ranks     map[string]int      `json:"ranks"`
	Orders    map[int][]string    `json:"orders"`
	Width     float64             `json:"width"`
	Height    float64             `json:"height"`
}

// RankRows returns the occupied ranks in ascending order.
func (r *Result) RankRows() []int {
	rows := make([]int, 0, len(r.Orders))
	for row := range r.Orders {
		rows = append(rows, row)
	}
	slices.Sort(rows)
	return rows
}

// Strategy computes node positions for a filtered relation graph. Edges are
// not modified by layout; callers carry them through unchanged.
//
// Implementations must be deterministic: identical graph and config input
// yields identical output. They must also be complete: every member of the
// input graph receives a position, and an incomplete result is reported as a
// LAYOUT_INTERNAL error rather than silently dropped.
type Strategy interface {
	Name() string
	Layout(g *relgraph.Graph, cfg Config) (*Result, error)
}
