package assembler

import (
	"slices"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/layout"
	"github.com/matzehuels/stammbaum/pkg/layout/hierarchical"
)

// strategies maps strategy names to constructors. Alternative layout
// strategies register here; the hierarchical strategy is the only built-in.
var strategies = map[string]func() layout.Strategy{
	hierarchical.Name: func() layout.Strategy { return hierarchical.New() },
}

// NewStrategy resolves a strategy name to a fresh strategy instance.
func NewStrategy(name string) (layout.Strategy, error) {
	ctor, ok := strategies[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeValidation,
			"unknown layout strategy: %q (available: %v)", name, StrategyNames())
	}
	return ctor(), nil
}

// StrategyNames returns the registered strategy names, sorted.
func StrategyNames() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
