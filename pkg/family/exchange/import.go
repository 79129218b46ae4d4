package exchange

import (
	"context"
	"time"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

// =============================================================================
// Import Options and Result
// =============================================================================

// Options controls how a document is imported.
type Options struct {
	// TargetFamily imports into an existing family instead of creating a
	// new one.
	TargetFamily string

	// FamilyName overrides the document's family name for a newly created
	// family.
	FamilyName string

	// AsLinked marks every imported member as a linked group carrying the
	// source family id, so region membership treats them as one unit.
	AsLinked bool
}

// Bundle holds the records produced by one import: the destination family,
// the members with their fresh ids, and the remapped relations.
type Bundle struct {
	// Family is the destination. For imports into an existing family this
	// is resolved by Import; Convert leaves it nil.
	Family *family.Family

	Members   []*family.Member
	Relations []*family.Relation

	// IDMap maps document member ids to the assigned record ids.
	IDMap map[string]string

	// Skipped counts relation endpoints that referenced unknown member ids.
	// Such relations are dropped rather than failing the import.
	Skipped int
}

// TreeID returns the id of the destination tree.
func (b *Bundle) TreeID() string {
	if b.Family != nil {
		return b.Family.ID
	}
	if len(b.Members) > 0 {
		return b.Members[0].TreeID
	}
	return ""
}

// =============================================================================
// Conversion
// =============================================================================

// Convert translates a document into store records without persisting
// anything. Every member receives a fresh id; relations are remapped through
// the id map, and relations referencing ids the document never declared are
// skipped.
func Convert(doc *Document, opts Options) (*Bundle, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeValidation, "import requires a document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	b := &Bundle{IDMap: make(map[string]string, len(doc.Members))}

	treeID := opts.TargetFamily
	if treeID == "" {
		name := opts.FamilyName
		if name == "" {
			name = doc.Family.Name
		}
		b.Family = &family.Family{
			ID:        family.NewID(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		treeID = b.Family.ID
	}

	// Linked members share the source family id as their group key.
	groupID := doc.Family.ID
	if opts.AsLinked && groupID == "" {
		groupID = family.NewID()
	}

	now := time.Now().UTC()
	for _, dm := range doc.Members {
		m := &family.Member{
			ID:         family.NewID(),
			TreeID:     treeID,
			Name:       dm.Name,
			Surname:    dm.Surname,
			Gender:     dm.Gender,
			BirthDate:  dm.Birth,
			DeathDate:  dm.Death,
			Deceased:   dm.Deceased,
			Fuzzy:      dm.Fuzzy,
			Remark:     dm.Remark,
			BirthPlace: dm.BirthPlace,
			PhotoURL:   dm.PhotoURL,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if opts.AsLinked {
			m.Linked = true
			m.FamilyID = groupID
		}
		if err := m.Validate(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeImport, err, "import member %q", dm.ID)
		}
		b.IDMap[dm.ID] = m.ID
		b.Members = append(b.Members, m)
	}

	seen := make(map[string]bool)
	addRelation := func(r *family.Relation) {
		if seen[r.Key()] {
			return
		}
		seen[r.Key()] = true
		b.Relations = append(b.Relations, r)
	}

	for _, pair := range doc.Spouses {
		a, okA := b.IDMap[pair[0]]
		c, okC := b.IDMap[pair[1]]
		if !okA || !okC {
			b.Skipped++
			continue
		}
		addRelation(family.NewSpouseRelation(treeID, a, c, ""))
	}

	for _, g := range doc.Parents {
		for _, child := range g.Children {
			childID, okChild := b.IDMap[child]
			if g.Father != "" {
				if fatherID, ok := b.IDMap[g.Father]; ok && okChild {
					addRelation(family.NewParentChildRelation(treeID, fatherID, childID, family.RoleFather))
				} else {
					b.Skipped++
				}
			}
			if g.Mother != "" {
				if motherID, ok := b.IDMap[g.Mother]; ok && okChild {
					addRelation(family.NewParentChildRelation(treeID, motherID, childID, family.RoleMother))
				} else {
					b.Skipped++
				}
			}
		}
	}

	return b, nil
}

// =============================================================================
// Persisting Import
// =============================================================================

// Import converts a document and writes the resulting records to the store.
// With Options.TargetFamily set, the records join that family; otherwise a
// new family is created.
func Import(ctx context.Context, st family.Store, doc *Document, opts Options) (*Bundle, error) {
	b, err := Convert(doc, opts)
	if err != nil {
		return nil, err
	}

	if opts.TargetFamily != "" {
		f, err := st.Family(ctx, opts.TargetFamily)
		if err != nil {
			return nil, err
		}
		b.Family = f
	} else if err := st.CreateFamily(ctx, b.Family); err != nil {
		return nil, err
	}

	for _, m := range b.Members {
		if err := st.PutMember(ctx, m); err != nil {
			return nil, err
		}
	}
	for _, r := range b.Relations {
		if err := st.PutRelation(ctx, r); err != nil {
			return nil, err
		}
	}
	return b, nil
}
