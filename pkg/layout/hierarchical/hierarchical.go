package hierarchical

import (
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/layout"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// Name identifies this strategy in configuration and options.
const Name = "hierarchical"

// Strategy places members so generations increase monotonically downward
// and spouses share a generation row wherever the hierarchy allows.
type Strategy struct{}

// New creates the hierarchical layout strategy.
func New() *Strategy {
	return &Strategy{}
}

// Name returns the strategy identifier.
func (s *Strategy) Name() string { return Name }

// Layout computes positions for every member of g.
//
// The pass runs rank assignment (parent-child separation, spouse
// alignment), crossing-minimizing row ordering, and coordinate assignment.
// Every input member ends up with a position; a missing position is
// reported as a LAYOUT_INTERNAL error, never dropped.
func (s *Strategy) Layout(g *relgraph.Graph, cfg layout.Config) (*layout.Result, error) {
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	ranks, err := assignRanks(g)
	if err != nil {
		return nil, err
	}

	orders := orderRows(g, ranks)
	positions, width, height := assignCoordinates(ranks, orders, cfg)

	for _, id := range g.MemberIDs() {
		if _, ok := positions[id]; !ok {
			return nil, errors.New(errors.ErrCodeLayoutInternal, "no position computed for member %s", id)
		}
	}

	return &layout.Result{
		Positions: positions,
		Ranks:     ranks,
		Orders:    orders,
		Width:     width,
		Height:    height,
	}, nil
}
