// Package family defines the genealogical records (families, members,
// relations, regions) and the Store interface for persisting them.
//
// Records are plain serializable structs with JSON and BSON tags, shared by
// the HTTP API, the exchange format, and the store backends. The layout and
// region engines consume read-only snapshots ([Tree]) of these records; they
// never reach back into a Store.
package family

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

// Relation kinds.
const (
	RelationParentChild = "parent_child"
	RelationSpouse      = "spouse"
)

// Parent roles for parent_child relations.
const (
	RoleFather = "father"
	RoleMother = "mother"
)

// DefaultRegionColor is the fill color applied when a region is created
// without an explicit color.
const DefaultRegionColor = "#EBF8FF"

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// =============================================================================
// Records
// =============================================================================

// Family is a family tree: the container that members, relations, and
// regions belong to.
type Family struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Member is a person record.
//
// TreeID names the family tree that holds (displays) the member. FamilyID
// names the originating tree the record was imported or linked from; for
// native members it equals TreeID. Linked is true when the canonical record
// lives in another family — such members form a linked group with every
// other linked member sharing their FamilyID, and group members are added to
// or removed from regions as one atomic unit.
type Member struct {
	ID         string `json:"id" bson:"id"`
	TreeID     string `json:"tree_id" bson:"tree_id"`
	FamilyID   string `json:"family_id,omitempty" bson:"family_id,omitempty"`
	Linked     bool   `json:"is_linked,omitempty" bson:"is_linked,omitempty"`
	Name       string `json:"name" bson:"name"`
	Surname    string `json:"surname,omitempty" bson:"surname,omitempty"`
	Gender     string `json:"gender" bson:"gender"`
	BirthDate  string `json:"birth_date,omitempty" bson:"birth_date,omitempty"`
	DeathDate  string `json:"death_date,omitempty" bson:"death_date,omitempty"`
	Deceased   bool   `json:"is_deceased,omitempty" bson:"is_deceased,omitempty"`
	Fuzzy      bool   `json:"is_fuzzy,omitempty" bson:"is_fuzzy,omitempty"`
	Remark     string `json:"remark,omitempty" bson:"remark,omitempty"`
	BirthPlace string `json:"birth_place,omitempty" bson:"birth_place,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	SortOrder  int    `json:"sort_order,omitempty" bson:"sort_order,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayName returns "Name Surname", or just Name when no surname is set.
func (m *Member) DisplayName() string {
	if m.Surname == "" {
		return m.Name
	}
	return m.Name + " " + m.Surname
}

// Unborn reports whether the member's birth date lies after now.
// Dates are the lenient YYYY[-MM[-DD]] record form; unparseable or absent
// dates report false.
func (m *Member) Unborn(now time.Time) bool {
	birth, ok := parseRecordDate(m.BirthDate)
	if !ok {
		return false
	}
	return birth.After(now)
}

// Validate checks the member's fields.
func (m *Member) Validate() error {
	if err := errors.ValidateMemberName(m.Name); err != nil {
		return err
	}
	if err := errors.ValidateGender(m.Gender); err != nil {
		return err
	}
	if err := errors.ValidateDate(m.BirthDate); err != nil {
		return err
	}
	if err := errors.ValidateDate(m.DeathDate); err != nil {
		return err
	}
	if m.Linked && m.FamilyID == "" {
		return errors.New(errors.ErrCodeValidation, "linked member %s has no family_id", m.ID)
	}
	return nil
}

// Relation is a typed edge between two members.
//
// parent_child relations are directed From (parent) → To (child) and carry
// ParentRole. spouse relations are undirected; they are stored canonically
// with From < To so a pair cannot appear twice (see NewSpouseRelation).
type Relation struct {
	ID           string    `json:"id" bson:"id"`
	TreeID       string    `json:"tree_id" bson:"tree_id"`
	From         string    `json:"from" bson:"from"`
	To           string    `json:"to" bson:"to"`
	Kind         string    `json:"kind" bson:"kind"`
	ParentRole   string    `json:"parent_role,omitempty" bson:"parent_role,omitempty"`
	MarriageDate string    `json:"marriage_date,omitempty" bson:"marriage_date,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// NewSpouseRelation builds a spouse relation with canonical endpoint order.
func NewSpouseRelation(treeID, a, b, marriageDate string) *Relation {
	if b < a {
		a, b = b, a
	}
	return &Relation{
		ID:           NewID(),
		TreeID:       treeID,
		From:         a,
		To:           b,
		Kind:         RelationSpouse,
		MarriageDate: marriageDate,
		CreatedAt:    time.Now().UTC(),
	}
}

// NewParentChildRelation builds a directed parent → child relation.
func NewParentChildRelation(treeID, parentID, childID, role string) *Relation {
	return &Relation{
		ID:         NewID(),
		TreeID:     treeID,
		From:       parentID,
		To:         childID,
		Kind:       RelationParentChild,
		ParentRole: role,
		CreatedAt:  time.Now().UTC(),
	}
}

// Validate checks the relation's structural constraints.
func (r *Relation) Validate() error {
	if r.From == "" || r.To == "" {
		return errors.New(errors.ErrCodeValidation, "relation endpoints cannot be empty")
	}
	if r.From == r.To {
		return errors.New(errors.ErrCodeValidation, "relation cannot connect %s to itself", r.From)
	}
	switch r.Kind {
	case RelationParentChild:
		if r.ParentRole != RoleFather && r.ParentRole != RoleMother {
			return errors.New(errors.ErrCodeValidation, "invalid parent role: %q", r.ParentRole)
		}
	case RelationSpouse:
		if r.To < r.From {
			return errors.New(errors.ErrCodeValidation, "spouse relation %s→%s not in canonical order", r.From, r.To)
		}
		if err := errors.ValidateDate(r.MarriageDate); err != nil {
			return err
		}
	default:
		return errors.New(errors.ErrCodeValidation, "invalid relation kind: %q", r.Kind)
	}
	return nil
}

// Key returns the uniqueness key for duplicate detection within a tree.
func (r *Relation) Key() string {
	if r.Kind == RelationParentChild {
		return fmt.Sprintf("%s|%s|%s|%s", r.Kind, r.From, r.To, r.ParentRole)
	}
	return fmt.Sprintf("%s|%s|%s", r.Kind, r.From, r.To)
}

// Region is the persisted record of a member grouping. Invariant
// enforcement on membership mutations lives in the region package; the
// record here is the storage and wire shape.
type Region struct {
	ID          string    `json:"id" bson:"id"`
	TreeID      string    `json:"tree_id" bson:"tree_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	Color       string    `json:"color" bson:"color"`
	MemberIDs   []string  `json:"member_ids" bson:"member_ids"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" bson:"updated_at"`
}

// =============================================================================
// Tree snapshot
// =============================================================================

// Tree is a read-only snapshot of one family's records, handed to the
// assembler per pass. Slices are sorted by id so downstream consumers see a
// stable, deterministic order.
type Tree struct {
	Family    *Family     `json:"family" bson:"family"`
	Members   []*Member   `json:"members" bson:"members"`
	Relations []*Relation `json:"relations" bson:"relations"`
	Regions   []*Region   `json:"regions" bson:"regions"`
}

// Member returns the member with the given id, or nil.
func (t *Tree) Member(id string) *Member {
	for _, m := range t.Members {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// RegionsOf returns the ids of the regions containing the given member,
// sorted.
func (t *Tree) RegionsOf(memberID string) []string {
	var ids []string
	for _, rg := range t.Regions {
		if slices.Contains(rg.MemberIDs, memberID) {
			ids = append(ids, rg.ID)
		}
	}
	slices.Sort(ids)
	return ids
}

// Sort orders all record slices by id in place.
func (t *Tree) Sort() {
	slices.SortFunc(t.Members, func(a, b *Member) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(t.Relations, func(a, b *Relation) int {
		return strings.Compare(a.ID, b.ID)
	})
	slices.SortFunc(t.Regions, func(a, b *Region) int {
		return strings.Compare(a.ID, b.ID)
	})
}

// parseRecordDate parses the lenient YYYY[-MM[-DD]] record form. Missing
// month and day default to January 1st.
func parseRecordDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	parts := strings.SplitN(s, "-", 3)
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return time.Time{}, false
	}
	month, day := 1, 1
	if len(parts) > 1 {
		if month, err = strconv.Atoi(parts[1]); err != nil || month < 1 || month > 12 {
			return time.Time{}, false
		}
	}
	if len(parts) > 2 {
		if day, err = strconv.Atoi(parts[2]); err != nil || day < 1 || day > 31 {
			return time.Time{}, false
		}
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), true
}
