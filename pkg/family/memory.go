package family

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

// MemoryStore is an in-memory Store for development and tests.
//
// All records are deep-copied on the way in and out, so callers can mutate
// what they hold without corrupting the store. Safe for concurrent use.
type MemoryStore struct {
	mu        sync.RWMutex
	families  map[string]*Family
	members   map[string]*Member
	relations map[string]*Relation
	regions   map[string]*Region
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		families:  make(map[string]*Family),
		members:   make(map[string]*Member),
		relations: make(map[string]*Relation),
		regions:   make(map[string]*Region),
	}
}

// CreateFamily stores a new family record.
func (s *MemoryStore) CreateFamily(_ context.Context, f *Family) error {
	if strings.TrimSpace(f.Name) == "" {
		return errors.New(errors.ErrCodeValidation, "family name cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[f.ID]; ok {
		return errors.New(errors.ErrCodeValidation, "family %s already exists", f.ID)
	}
	cp := *f
	s.families[f.ID] = &cp
	return nil
}

// Family returns the family with the given id.
func (s *MemoryStore) Family(_ context.Context, id string) (*Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.families[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "family %s not found", id)
	}
	cp := *f
	return &cp, nil
}

// Families returns all families sorted by id.
func (s *MemoryStore) Families(_ context.Context) ([]*Family, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Family, 0, len(s.families))
	for _, f := range s.families {
		cp := *f
		out = append(out, &cp)
	}
	slices.SortFunc(out, func(a, b *Family) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// DeleteFamily removes a family and everything belonging to it.
func (s *MemoryStore) DeleteFamily(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "family %s not found", id)
	}
	delete(s.families, id)
	for mid, m := range s.members {
		if m.TreeID == id {
			delete(s.members, mid)
		}
	}
	for rid, r := range s.relations {
		if r.TreeID == id {
			delete(s.relations, rid)
		}
	}
	for gid, g := range s.regions {
		if g.TreeID == id {
			delete(s.regions, gid)
		}
	}
	return nil
}

// PutMember inserts or updates a member record.
func (s *MemoryStore) PutMember(_ context.Context, m *Member) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[m.TreeID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "family %s not found", m.TreeID)
	}
	cp := *m
	s.members[m.ID] = &cp
	return nil
}

// Member returns the member with the given id.
func (s *MemoryStore) Member(_ context.Context, id string) (*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.members[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "member %s not found", id)
	}
	cp := *m
	return &cp, nil
}

// Members returns the members held by a tree, sorted by sort order then id.
func (s *MemoryStore) Members(_ context.Context, treeID string) ([]*Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Member
	for _, m := range s.members {
		if m.TreeID == treeID {
			cp := *m
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Member) int {
		if a.SortOrder != b.SortOrder {
			return a.SortOrder - b.SortOrder
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

// DeleteMember removes a member, its relations, and its region memberships.
func (s *MemoryStore) DeleteMember(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "member %s not found", id)
	}
	delete(s.members, id)
	for rid, r := range s.relations {
		if r.From == id || r.To == id {
			delete(s.relations, rid)
		}
	}
	for _, g := range s.regions {
		if i := slices.Index(g.MemberIDs, id); i >= 0 {
			g.MemberIDs = slices.Delete(g.MemberIDs, i, i+1)
		}
	}
	return nil
}

// PutRelation inserts a relation after checking endpoints and duplicates.
func (s *MemoryStore) PutRelation(_ context.Context, r *Relation) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.members[r.From]; !ok {
		return errors.New(errors.ErrCodeNotFound, "member %s not found", r.From)
	}
	if _, ok := s.members[r.To]; !ok {
		return errors.New(errors.ErrCodeNotFound, "member %s not found", r.To)
	}
	for _, existing := range s.relations {
		if existing.ID != r.ID && existing.TreeID == r.TreeID && existing.Key() == r.Key() {
			return errors.New(errors.ErrCodeValidation, "relation %s→%s (%s) already exists", r.From, r.To, r.Kind)
		}
	}
	cp := *r
	s.relations[r.ID] = &cp
	return nil
}

// Relation returns the relation with the given id.
func (s *MemoryStore) Relation(_ context.Context, id string) (*Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.relations[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "relation %s not found", id)
	}
	cp := *r
	return &cp, nil
}

// Relations returns a tree's relations sorted by id.
func (s *MemoryStore) Relations(_ context.Context, treeID string) ([]*Relation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Relation
	for _, r := range s.relations {
		if r.TreeID == treeID {
			cp := *r
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Relation) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// DeleteRelation removes a relation.
func (s *MemoryStore) DeleteRelation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.relations[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "relation %s not found", id)
	}
	delete(s.relations, id)
	return nil
}

// PutRegion inserts or updates a region record.
func (s *MemoryStore) PutRegion(_ context.Context, rg *Region) error {
	if err := errors.ValidateRegionName(rg.Name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.families[rg.TreeID]; !ok {
		return errors.New(errors.ErrCodeNotFound, "family %s not found", rg.TreeID)
	}
	cp := *rg
	cp.MemberIDs = slices.Clone(rg.MemberIDs)
	s.regions[rg.ID] = &cp
	return nil
}

// Region returns the region with the given id.
func (s *MemoryStore) Region(_ context.Context, id string) (*Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.regions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	cp := *g
	cp.MemberIDs = slices.Clone(g.MemberIDs)
	return &cp, nil
}

// Regions returns a family's regions sorted by id.
func (s *MemoryStore) Regions(_ context.Context, treeID string) ([]*Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Region
	for _, g := range s.regions {
		if g.TreeID == treeID {
			cp := *g
			cp.MemberIDs = slices.Clone(g.MemberIDs)
			out = append(out, &cp)
		}
	}
	slices.SortFunc(out, func(a, b *Region) int { return strings.Compare(a.ID, b.ID) })
	return out, nil
}

// DeleteRegion removes a region. Unknown ids are a no-op.
func (s *MemoryStore) DeleteRegion(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.regions, id)
	return nil
}

// Tree loads the full snapshot for one family.
func (s *MemoryStore) Tree(ctx context.Context, familyID string) (*Tree, error) {
	f, err := s.Family(ctx, familyID)
	if err != nil {
		return nil, err
	}
	members, err := s.Members(ctx, familyID)
	if err != nil {
		return nil, err
	}
	relations, err := s.Relations(ctx, familyID)
	if err != nil {
		return nil, err
	}
	regions, err := s.Regions(ctx, familyID)
	if err != nil {
		return nil, err
	}
	t := &Tree{Family: f, Members: members, Relations: relations, Regions: regions}
	t.Sort()
	return t, nil
}

// Close is a no-op for the memory store.
func (s *MemoryStore) Close(context.Context) error { return nil }
