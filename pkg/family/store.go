package family

import (
	"context"
)

// Store is the interface for family persistence backends.
//
// Implementations: the in-memory store in this package (development and
// tests) and the MongoDB store in the mongostore package. All methods take a
// context so backends with real I/O can honor cancellation; the memory store
// ignores it.
//
// Lookups for absent records fail with a NOT_FOUND error, checked via
// errors.Is(err, errors.ErrCodeNotFound). DeleteRegion is the exception:
// deleting an unknown region is a no-op, so delete-confirmation flows need
// no existence pre-check.
type Store interface {
	// Families
	CreateFamily(ctx context.Context, f *Family) error
	Family(ctx context.Context, id string) (*Family, error)
	Families(ctx context.Context) ([]*Family, error)
	DeleteFamily(ctx context.Context, id string) error

	// Members
	PutMember(ctx context.Context, m *Member) error
	Member(ctx context.Context, id string) (*Member, error)
	Members(ctx context.Context, treeID string) ([]*Member, error)
	DeleteMember(ctx context.Context, id string) error

	// Relations
	PutRelation(ctx context.Context, r *Relation) error
	Relation(ctx context.Context, id string) (*Relation, error)
	Relations(ctx context.Context, treeID string) ([]*Relation, error)
	DeleteRelation(ctx context.Context, id string) error

	// Regions. PutRegion upserts: the region engine confirms a mutation
	// first, then the caller mirrors the result here.
	PutRegion(ctx context.Context, rg *Region) error
	Region(ctx context.Context, id string) (*Region, error)
	Regions(ctx context.Context, treeID string) ([]*Region, error)
	DeleteRegion(ctx context.Context, id string) error

	// Tree loads the full snapshot for one family, sorted by id.
	Tree(ctx context.Context, familyID string) (*Tree, error)

	// Close releases backend resources.
	Close(ctx context.Context) error
}
