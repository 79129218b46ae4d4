package relgraph

import (
	"time"

	"github.com/matzehuels/stammbaum/pkg/family"
)

// Focus relation facets. A non-empty FocusRelations set keeps only relations
// matching one of the named facets; Self is accepted for settings-shape
// compatibility and matches no relation.
const (
	FocusSelf     = "self"
	FocusFather   = "father"
	FocusMother   = "mother"
	FocusSpouse   = "spouse"
	FocusSon      = "son"
	FocusDaughter = "daughter"
)

// Settings is the display-filter specification supplied by the caller.
// The zero value of DefaultSettings applies no filter; unknown focus facets
// are ignored.
type Settings struct {
	ShowLiving   bool `json:"show_living"`
	ShowDeceased bool `json:"show_deceased"`
	DimDeceased  bool `json:"dim_deceased"`
	ShowUnborn   bool `json:"show_unborn"`
	DimUnborn    bool `json:"dim_unborn"`

	// FocusRelations whitelists relation facets. Empty means keep all.
	FocusRelations []string `json:"focus_relations,omitempty"`

	// Now anchors the unborn predicate. Zero means time.Now.
	Now time.Time `json:"-"`
}

// DefaultSettings returns settings that filter nothing and dim nothing.
func DefaultSettings() Settings {
	return Settings{
		ShowLiving:   true,
		ShowDeceased: true,
		ShowUnborn:   true,
	}
}

func (s Settings) now() time.Time {
	if s.Now.IsZero() {
		return time.Now()
	}
	return s.Now
}

// Visible reports whether a member survives the member filter.
func (s Settings) Visible(m *family.Member) bool {
	if m.Deceased {
		return s.ShowDeceased
	}
	if m.Unborn(s.now()) {
		return s.ShowUnborn
	}
	return s.ShowLiving
}

// Dimmed reports whether a visible member renders dimmed.
func (s Settings) Dimmed(m *family.Member) bool {
	if m.Deceased {
		return s.DimDeceased
	}
	if m.Unborn(s.now()) {
		return s.DimUnborn
	}
	return false
}

// keepsRelation reports whether a relation survives the focus whitelist.
// childOf resolves the child endpoint for gender facets.
func (s Settings) keepsRelation(r *family.Relation, child *family.Member) bool {
	if len(s.FocusRelations) == 0 {
		return true
	}
	for _, facet := range s.FocusRelations {
		switch facet {
		case FocusSpouse:
			if r.Kind == family.RelationSpouse {
				return true
			}
		case FocusFather:
			if r.Kind == family.RelationParentChild && r.ParentRole == family.RoleFather {
				return true
			}
		case FocusMother:
			if r.Kind == family.RelationParentChild && r.ParentRole == family.RoleMother {
				return true
			}
		case FocusSon:
			if r.Kind == family.RelationParentChild && child != nil && child.Gender == "male" {
				return true
			}
		case FocusDaughter:
			if r.Kind == family.RelationParentChild && child != nil && child.Gender == "female" {
				return true
			}
		}
		// FocusSelf and unknown facets match nothing.
	}
	return false
}

// Filter derives the subgraph eligible for layout: members surviving the
// visibility predicate, and relations where both endpoints survive and the
// focus whitelist (if any) keeps the relation. Filtering is all-or-nothing
// per member and pure: the same inputs always produce the same subgraph.
func Filter(members []*family.Member, relations []*family.Relation, s Settings) (*Graph, error) {
	kept := make([]*family.Member, 0, len(members))
	alive := make(map[string]*family.Member, len(members))
	for _, m := range members {
		if s.Visible(m) {
			kept = append(kept, m)
			alive[m.ID] = m
		}
	}

	keptRel := make([]*family.Relation, 0, len(relations))
	for _, r := range relations {
		if alive[r.From] == nil || alive[r.To] == nil {
			continue
		}
		if !s.keepsRelation(r, alive[r.To]) {
			continue
		}
		keptRel = append(keptRel, r)
	}

	return New(kept, keptRel)
}
