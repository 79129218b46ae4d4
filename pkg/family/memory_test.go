package family

import (
	"context"
	"testing"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

func seedFamily(t *testing.T, s *MemoryStore) *Family {
	t.Helper()
	f := &Family{ID: NewID(), Name: "Test Family"}
	if err := s.CreateFamily(context.Background(), f); err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	return f
}

func seedMember(t *testing.T, s *MemoryStore, treeID, name string) *Member {
	t.Helper()
	m := &Member{ID: NewID(), TreeID: treeID, FamilyID: treeID, Name: name, Gender: "male"}
	if err := s.PutMember(context.Background(), m); err != nil {
		t.Fatalf("PutMember(%s): %v", name, err)
	}
	return m
}

func TestMemoryStoreFamilies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	f := seedFamily(t, s)

	got, err := s.Family(ctx, f.ID)
	if err != nil {
		t.Fatalf("Family: %v", err)
	}
	if got.Name != "Test Family" {
		t.Errorf("Name = %q, want %q", got.Name, "Test Family")
	}

	if _, err := s.Family(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Family(missing) error = %v, want NOT_FOUND", err)
	}

	if err := s.CreateFamily(ctx, &Family{ID: f.ID, Name: "Dup"}); err == nil {
		t.Error("CreateFamily with duplicate id should fail")
	}

	if err := s.CreateFamily(ctx, &Family{ID: NewID(), Name: "  "}); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("CreateFamily with blank name error = %v, want VALIDATION", err)
	}
}

func TestMemoryStoreMemberLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f := seedFamily(t, s)

	m1 := seedMember(t, s, f.ID, "Anna")
	m2 := seedMember(t, s, f.ID, "Bernd")

	// Relations referencing both members
	rel := NewSpouseRelation(f.ID, m1.ID, m2.ID, "")
	if err := s.PutRelation(ctx, rel); err != nil {
		t.Fatalf("PutRelation: %v", err)
	}

	// Region containing m1
	rg := &Region{ID: NewID(), TreeID: f.ID, Name: "North", Color: DefaultRegionColor, MemberIDs: []string{m1.ID, m2.ID}}
	if err := s.PutRegion(ctx, rg); err != nil {
		t.Fatalf("PutRegion: %v", err)
	}

	// Deleting m1 cascades into relations and region membership.
	if err := s.DeleteMember(ctx, m1.ID); err != nil {
		t.Fatalf("DeleteMember: %v", err)
	}

	if _, err := s.Member(ctx, m1.ID); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Member after delete error = %v, want NOT_FOUND", err)
	}

	rels, err := s.Relations(ctx, f.ID)
	if err != nil {
		t.Fatalf("Relations: %v", err)
	}
	if len(rels) != 0 {
		t.Errorf("relations after member delete = %d, want 0", len(rels))
	}

	got, err := s.Region(ctx, rg.ID)
	if err != nil {
		t.Fatalf("Region: %v", err)
	}
	if len(got.MemberIDs) != 1 || got.MemberIDs[0] != m2.ID {
		t.Errorf("region members after delete = %v, want [%s]", got.MemberIDs, m2.ID)
	}
}

func TestMemoryStoreRelationConstraints(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f := seedFamily(t, s)
	m1 := seedMember(t, s, f.ID, "Anna")
	m2 := seedMember(t, s, f.ID, "Bernd")

	if err := s.PutRelation(ctx, NewParentChildRelation(f.ID, m1.ID, "ghost", RoleMother)); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("relation to unknown member error = %v, want NOT_FOUND", err)
	}

	first := NewSpouseRelation(f.ID, m1.ID, m2.ID, "")
	if err := s.PutRelation(ctx, first); err != nil {
		t.Fatalf("PutRelation: %v", err)
	}

	// The same pair in either order is a duplicate.
	dup := NewSpouseRelation(f.ID, m2.ID, m1.ID, "")
	if err := s.PutRelation(ctx, dup); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("duplicate spouse error = %v, want VALIDATION", err)
	}

	// Father and mother edges for the same pair are distinct records.
	if err := s.PutRelation(ctx, NewParentChildRelation(f.ID, m1.ID, m2.ID, RoleFather)); err != nil {
		t.Fatalf("father relation: %v", err)
	}
	if err := s.PutRelation(ctx, NewParentChildRelation(f.ID, m1.ID, m2.ID, RoleMother)); err != nil {
		t.Fatalf("mother relation: %v", err)
	}
	if err := s.PutRelation(ctx, NewParentChildRelation(f.ID, m1.ID, m2.ID, RoleFather)); err == nil {
		t.Error("duplicate father relation should fail")
	}
}

func TestMemoryStoreDeleteRegionIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f := seedFamily(t, s)

	rg := &Region{ID: NewID(), TreeID: f.ID, Name: "South", Color: DefaultRegionColor}
	if err := s.PutRegion(ctx, rg); err != nil {
		t.Fatalf("PutRegion: %v", err)
	}

	if err := s.DeleteRegion(ctx, rg.ID); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}
	// Deleting again, and deleting something that never existed, both succeed.
	if err := s.DeleteRegion(ctx, rg.ID); err != nil {
		t.Errorf("second DeleteRegion = %v, want nil", err)
	}
	if err := s.DeleteRegion(ctx, "never-existed"); err != nil {
		t.Errorf("DeleteRegion(never-existed) = %v, want nil", err)
	}
}

func TestMemoryStoreTreeSnapshot(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	f := seedFamily(t, s)

	// Insert out of id order to check snapshot sorting.
	mb := &Member{ID: "b-member", TreeID: f.ID, FamilyID: f.ID, Name: "Bernd", Gender: "male"}
	ma := &Member{ID: "a-member", TreeID: f.ID, FamilyID: f.ID, Name: "Anna", Gender: "female"}
	for _, m := range []*Member{mb, ma} {
		if err := s.PutMember(ctx, m); err != nil {
			t.Fatalf("PutMember: %v", err)
		}
	}

	tree, err := s.Tree(ctx, f.ID)
	if err != nil {
		t.Fatalf("Tree: %v", err)
	}
	if len(tree.Members) != 2 {
		t.Fatalf("len(Members) = %d, want 2", len(tree.Members))
	}
	if tree.Members[0].ID != "a-member" || tree.Members[1].ID != "b-member" {
		t.Errorf("members not sorted by id: %s, %s", tree.Members[0].ID, tree.Members[1].ID)
	}

	// Snapshot isolation: mutating the snapshot must not affect the store.
	tree.Members[0].Name = "Mutated"
	fresh, err := s.Member(ctx, "a-member")
	if err != nil {
		t.Fatalf("Member: %v", err)
	}
	if fresh.Name != "Anna" {
		t.Errorf("store record mutated through snapshot: %q", fresh.Name)
	}

	if _, err := s.Tree(ctx, "missing"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Tree(missing) error = %v, want NOT_FOUND", err)
	}
}
