package exchange

import (
	"slices"
	"strings"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

// Export converts a tree to its exchange document. The output is
// deterministic for equal input: members sort by id, spouse pairs by their
// endpoints, and parent groups by couple.
func Export(tree *family.Tree) (*Document, error) {
	if tree == nil || tree.Family == nil {
		return nil, errors.New(errors.ErrCodeValidation, "export requires a tree")
	}

	doc := &Document{
		Family: DocumentFamily{ID: tree.Family.ID, Name: tree.Family.Name},
	}

	members := slices.Clone(tree.Members)
	slices.SortFunc(members, func(a, b *family.Member) int {
		return strings.Compare(a.ID, b.ID)
	})
	doc.Members = make([]DocumentMember, 0, len(members))
	for _, m := range members {
		doc.Members = append(doc.Members, DocumentMember{
			ID:         m.ID,
			Name:       m.Name,
			Surname:    m.Surname,
			Gender:     m.Gender,
			Birth:      m.BirthDate,
			Death:      m.DeathDate,
			Deceased:   m.Deceased,
			Fuzzy:      m.Fuzzy,
			Remark:     m.Remark,
			BirthPlace: m.BirthPlace,
			PhotoURL:   m.PhotoURL,
		})
	}

	// couples maps child id to its father/mother slots.
	type couple struct{ father, mother string }
	parents := make(map[string]couple)

	relations := slices.Clone(tree.Relations)
	slices.SortFunc(relations, func(a, b *family.Relation) int {
		return strings.Compare(a.ID, b.ID)
	})
	for _, r := range relations {
		switch r.Kind {
		case family.RelationSpouse:
			doc.Spouses = append(doc.Spouses, [2]string{r.From, r.To})
		case family.RelationParentChild:
			c := parents[r.To]
			if r.ParentRole == family.RoleMother {
				c.mother = r.From
			} else {
				c.father = r.From
			}
			parents[r.To] = c
		}
	}
	slices.SortFunc(doc.Spouses, func(a, b [2]string) int {
		if c := strings.Compare(a[0], b[0]); c != 0 {
			return c
		}
		return strings.Compare(a[1], b[1])
	})

	groups := make(map[couple][]string)
	for child, c := range parents {
		groups[c] = append(groups[c], child)
	}
	for c, children := range groups {
		slices.Sort(children)
		doc.Parents = append(doc.Parents, ParentGroup{
			Father:   c.father,
			Mother:   c.mother,
			Children: children,
		})
	}
	slices.SortFunc(doc.Parents, func(a, b ParentGroup) int {
		if c := strings.Compare(a.Father, b.Father); c != 0 {
			return c
		}
		return strings.Compare(a.Mother, b.Mother)
	})

	return doc, nil
}
