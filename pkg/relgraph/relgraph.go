// Package relgraph provides the relation graph consumed by layout: members
// as nodes, typed relations (parent_child, spouse) as edges, and the
// settings-driven filtering that derives the subgraph eligible for layout.
//
// A Graph is an immutable-per-computation view. It is built once from a
// record snapshot, validated structurally, and then only read. Accessors
// return members and relations sorted by id, which downstream layout relies
// on for reproducible output.
package relgraph

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/stammbaum/pkg/family"
)

// Sentinel errors for graph construction.
var (
	// ErrInvalidMemberID indicates a member with an empty id.
	ErrInvalidMemberID = errors.New("invalid member ID")

	// ErrDuplicateMemberID indicates two members sharing an id.
	ErrDuplicateMemberID = errors.New("duplicate member ID")

	// ErrUnknownEndpoint indicates a relation endpoint with no member.
	ErrUnknownEndpoint = errors.New("unknown relation endpoint")

	// ErrSelfLoop indicates a relation connecting a member to itself.
	ErrSelfLoop = errors.New("relation endpoints must differ")

	// ErrDuplicateRelation indicates the same typed pair appearing twice.
	ErrDuplicateRelation = errors.New("duplicate relation")
)

// Graph is a validated member/relation graph.
type Graph struct {
	members   map[string]*family.Member
	relations []*family.Relation

	spouses  map[string][]string
	parents  map[string][]string
	children map[string][]string
}

// New builds a Graph from members and relations, validating structure:
// unique non-empty member ids, relation endpoints that exist, no self-loops,
// no duplicate typed pairs.
func New(members []*family.Member, relations []*family.Relation) (*Graph, error) {
	g := &Graph{
		members:  make(map[string]*family.Member, len(members)),
		spouses:  make(map[string][]string),
		parents:  make(map[string][]string),
		children: make(map[string][]string),
	}

	for _, m := range members {
		if m.ID == "" {
			return nil, fmt.Errorf("%w: member %q", ErrInvalidMemberID, m.Name)
		}
		if _, ok := g.members[m.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateMemberID, m.ID)
		}
		g.members[m.ID] = m
	}

	seen := make(map[string]bool, len(relations))
	for _, r := range relations {
		if r.From == r.To {
			return nil, fmt.Errorf("%w: %s", ErrSelfLoop, r.From)
		}
		if _, ok := g.members[r.From]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, r.From)
		}
		if _, ok := g.members[r.To]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEndpoint, r.To)
		}
		if seen[r.Key()] {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateRelation, r.Key())
		}
		seen[r.Key()] = true

		g.relations = append(g.relations, r)
		switch r.Kind {
		case family.RelationSpouse:
			g.spouses[r.From] = append(g.spouses[r.From], r.To)
			g.spouses[r.To] = append(g.spouses[r.To], r.From)
		case family.RelationParentChild:
			g.children[r.From] = append(g.children[r.From], r.To)
			g.parents[r.To] = append(g.parents[r.To], r.From)
		}
	}

	slices.SortFunc(g.relations, func(a, b *family.Relation) int {
		return strings.Compare(a.ID, b.ID)
	})
	for _, adj := range []map[string][]string{g.spouses, g.parents, g.children} {
		for id := range adj {
			slices.Sort(adj[id])
		}
	}

	return g, nil
}

// Members returns all members sorted by id.
func (g *Graph) Members() []*family.Member {
	out := make([]*family.Member, 0, len(g.members))
	for _, m := range g.members {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *family.Member) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Relations returns all relations sorted by id.
func (g *Graph) Relations() []*family.Relation {
	return slices.Clone(g.relations)
}

// Member returns the member with the given id, or nil.
func (g *Graph) Member(id string) *family.Member {
	return g.members[id]
}

// Has reports whether a member with the given id exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.members[id]
	return ok
}

// MemberCount returns the number of members.
func (g *Graph) MemberCount() int { return len(g.members) }

// RelationCount returns the number of relations.
func (g *Graph) RelationCount() int { return len(g.relations) }

// SpousesOf returns the sorted ids of a member's spouses.
func (g *Graph) SpousesOf(id string) []string { return slices.Clone(g.spouses[id]) }

// ParentsOf returns the sorted ids of a member's parents.
func (g *Graph) ParentsOf(id string) []string { return slices.Clone(g.parents[id]) }

// ChildrenOf returns the sorted ids of a member's children.
func (g *Graph) ChildrenOf(id string) []string { return slices.Clone(g.children[id]) }

// MemberIDs returns all member ids sorted.
func (g *Graph) MemberIDs() []string {
	ids := make([]string, 0, len(g.members))
	for id := range g.members {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
