// Package region owns named member groupings and enforces the linked-family
// invariant on every membership mutation.
//
// A region is Open or LinkedFamilyLocked. The mode is never stored: it is
// re-derived from the current membership before every mutation, so a region
// flips between modes as members come and go. A locked region admits only
// members of its resident linked family; toggling a linked member always
// moves the whole linked group in one atomic step.
//
// The model holds regions for a single family tree in memory. Persistence is
// the caller's job: mirror Snapshot output to durable storage after an
// operation succeeds. Model is not safe for concurrent use; callers serialize
// mutations.
package region

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

// =============================================================================
// Member source
// =============================================================================

// Source supplies the read-only member snapshot regions are evaluated
// against. LinkedMembers returns every member of the given origin family
// with Linked set, sorted by id.
type Source interface {
	Member(id string) (*family.Member, bool)
	LinkedMembers(familyID string) []*family.Member
}

// Index is an in-memory Source built from a member slice.
type Index struct {
	members map[string]*family.Member
	linked  map[string][]*family.Member
}

// NewIndex builds an Index over the given members.
func NewIndex(members []*family.Member) *Index {
	ix := &Index{
		members: make(map[string]*family.Member, len(members)),
		linked:  make(map[string][]*family.Member),
	}
	for _, m := range members {
		ix.members[m.ID] = m
		if m.Linked && m.FamilyID != "" {
			ix.linked[m.FamilyID] = append(ix.linked[m.FamilyID], m)
		}
	}
	for _, group := range ix.linked {
		slices.SortFunc(group, func(a, b *family.Member) int {
			return strings.Compare(a.ID, b.ID)
		})
	}
	return ix
}

// Member returns the member with the given id.
func (ix *Index) Member(id string) (*family.Member, bool) {
	m, ok := ix.members[id]
	return m, ok
}

// LinkedMembers returns the linked members of the given origin family,
// sorted by id.
func (ix *Index) LinkedMembers(familyID string) []*family.Member {
	return ix.linked[familyID]
}

// Classify derives the admission mode of a membership set: locked iff the
// set is non-empty and every member resolves to a linked member of one
// shared origin family, in which case residentFamily names that family.
// Members that no longer resolve count as unlinked. The mode is never
// stored; call this against current data wherever it is needed.
func Classify(src Source, memberIDs []string) (locked bool, residentFamily string) {
	if len(memberIDs) == 0 {
		return false, ""
	}
	for _, id := range memberIDs {
		member, ok := src.Member(id)
		if !ok || !member.Linked || member.FamilyID == "" {
			return false, ""
		}
		if residentFamily == "" {
			residentFamily = member.FamilyID
		} else if member.FamilyID != residentFamily {
			return false, ""
		}
	}
	return true, residentFamily
}

// ExpandMembership resolves the atomic toggle unit for a member: the member
// alone when unlinked, otherwise every linked member sharing its origin
// family. The result is sorted by id.
func ExpandMembership(src Source, memberID string) ([]string, error) {
	m, ok := src.Member(memberID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "member %s not found", memberID)
	}
	if !m.Linked || m.FamilyID == "" {
		return []string{m.ID}, nil
	}
	group := src.LinkedMembers(m.FamilyID)
	ids := make([]string, 0, len(group))
	for _, lm := range group {
		ids = append(ids, lm.ID)
	}
	slices.Sort(ids)
	return ids, nil
}

// =============================================================================
// Model
// =============================================================================

// Mode is a region's derived membership-admission mode.
type Mode string

const (
	// ModeOpen admits any member; toggles propagate only within the toggled
	// member's own linked group.
	ModeOpen Mode = "open"

	// ModeLinkedFamilyLocked admits only members of the resident linked
	// family.
	ModeLinkedFamilyLocked Mode = "linked_family_locked"
)

type regionState struct {
	id          string
	name        string
	description string
	color       string
	members     map[string]struct{}
	createdAt   time.Time
	updatedAt   time.Time
}

// Model holds the regions of one family tree and applies all membership
// mutations.
type Model struct {
	treeID string
	source Source
	notify Notifier

	regions map[string]*regionState
}

// New returns an empty model for the given tree, resolving members through
// src.
func New(treeID string, src Source) *Model {
	return &Model{
		treeID:  treeID,
		source:  src,
		notify:  NopNotifier{},
		regions: make(map[string]*regionState),
	}
}

// SetNotifier registers the linked-group event receiver. A nil notifier
// restores the no-op default.
func (m *Model) SetNotifier(n Notifier) {
	if n == nil {
		m.notify = NopNotifier{}
		return
	}
	m.notify = n
}

// Load replaces the model state with the given persisted records. Records
// belonging to other trees are skipped.
func (m *Model) Load(records []*family.Region) {
	m.regions = make(map[string]*regionState, len(records))
	for _, rec := range records {
		if rec.TreeID != m.treeID {
			continue
		}
		st := &regionState{
			id:          rec.ID,
			name:        rec.Name,
			description: rec.Description,
			color:       rec.Color,
			members:     make(map[string]struct{}, len(rec.MemberIDs)),
			createdAt:   rec.CreatedAt,
			updatedAt:   rec.UpdatedAt,
		}
		for _, id := range rec.MemberIDs {
			st.members[id] = struct{}{}
		}
		m.regions[rec.ID] = st
	}
}

// Create adds a region with the given initial membership and returns its id.
// The initial membership is taken as provided; callers assembling a linked
// selection resolve groups through ExpandMembership first.
func (m *Model) Create(name, description, color string, memberIDs []string) (string, error) {
	if err := errors.ValidateRegionName(name); err != nil {
		return "", err
	}
	if err := errors.ValidateColor(color); err != nil {
		return "", err
	}
	if color == "" {
		color = family.DefaultRegionColor
	}

	now := time.Now().UTC()
	st := &regionState{
		id:          family.NewID(),
		name:        name,
		description: description,
		color:       color,
		members:     make(map[string]struct{}, len(memberIDs)),
		createdAt:   now,
		updatedAt:   now,
	}
	for _, id := range memberIDs {
		st.members[id] = struct{}{}
	}
	m.regions[st.id] = st
	return st.id, nil
}

// Update renames or recolors a region.
func (m *Model) Update(id, name, description, color string) error {
	st, ok := m.regions[id]
	if !ok {
		return errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	if err := errors.ValidateRegionName(name); err != nil {
		return err
	}
	if err := errors.ValidateColor(color); err != nil {
		return err
	}
	if color == "" {
		color = family.DefaultRegionColor
	}

	st.name = name
	st.description = description
	st.color = color
	st.updatedAt = time.Now().UTC()
	return nil
}

// Delete removes a region. Deleting an unknown id is a no-op.
func (m *Model) Delete(id string) {
	delete(m.regions, id)
}

// Toggle flips a member in or out of a region and returns the resulting
// membership, sorted.
//
// Linked members toggle as a group: selecting one adds every member of its
// linked family, deselecting one removes them all, in a single step. When
// the region is currently LinkedFamilyLocked, members outside the resident
// family are rejected with an INVARIANT_VIOLATION and the membership stays
// unchanged. Group toggles with more than one member emit an Event on the
// registered notifier after the mutation is applied.
func (m *Model) Toggle(regionID, memberID string) ([]string, error) {
	st, ok := m.regions[regionID]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "region %s not found", regionID)
	}
	member, ok := m.source.Member(memberID)
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "member %s not found", memberID)
	}

	group, err := ExpandMembership(m.source, memberID)
	if err != nil {
		return nil, err
	}

	_, selected := st.members[memberID]
	if !selected {
		// Will-select: the admission mode is re-derived now, not read from
		// any stored flag.
		if locked, residentFamily := m.classify(st); locked && !residentOf(member, residentFamily) {
			return nil, errors.New(errors.ErrCodeInvariant,
				"region %s admits only members of linked family %s", regionID, residentFamily)
		}
		for _, id := range group {
			st.members[id] = struct{}{}
		}
	} else {
		for _, id := range group {
			delete(st.members, id)
		}
	}
	st.updatedAt = time.Now().UTC()

	if len(group) > 1 {
		m.notify.OnLinkedGroupToggled(Event{
			RegionID:  regionID,
			FamilyID:  member.FamilyID,
			MemberIDs: group,
			Added:     !selected,
		})
	}
	return st.memberList(), nil
}

// IsLinkedFamilyRegion reports the derived classification: non-empty
// membership, every member linked, all sharing one origin family. It is
// recomputed from current membership on every call.
func (m *Model) IsLinkedFamilyRegion(id string) (bool, error) {
	st, ok := m.regions[id]
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	locked, _ := m.classify(st)
	return locked, nil
}

// Mode returns the region's derived membership-admission mode.
func (m *Model) Mode(id string) (Mode, error) {
	locked, err := m.IsLinkedFamilyRegion(id)
	if err != nil {
		return "", err
	}
	if locked {
		return ModeLinkedFamilyLocked, nil
	}
	return ModeOpen, nil
}

// CanAcceptForeignMember reports whether the member may currently be toggled
// into the region. It is false exactly when the region is LinkedFamilyLocked
// and the member is not part of the resident linked family. Bulk assignment
// paths consult this per member before mutating.
func (m *Model) CanAcceptForeignMember(regionID, memberID string) (bool, error) {
	st, ok := m.regions[regionID]
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "region %s not found", regionID)
	}
	member, ok := m.source.Member(memberID)
	if !ok {
		return false, errors.New(errors.ErrCodeNotFound, "member %s not found", memberID)
	}
	locked, residentFamily := m.classify(st)
	if !locked {
		return true, nil
	}
	return residentOf(member, residentFamily), nil
}

// Membership returns a region's member ids, sorted.
func (m *Model) Membership(id string) ([]string, error) {
	st, ok := m.regions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	return st.memberList(), nil
}

// Region returns one region as a persistable record.
func (m *Model) Region(id string) (*family.Region, error) {
	st, ok := m.regions[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "region %s not found", id)
	}
	return m.record(st), nil
}

// Regions returns all regions as persistable records, sorted by id.
func (m *Model) Regions() []*family.Region {
	out := make([]*family.Region, 0, len(m.regions))
	for _, id := range slices.Sorted(maps.Keys(m.regions)) {
		out = append(out, m.record(m.regions[id]))
	}
	return out
}

// Snapshot is an alias for Regions, named for the persistence mirroring
// flow.
func (m *Model) Snapshot() []*family.Region {
	return m.Regions()
}

// Len returns the number of regions.
func (m *Model) Len() int {
	return len(m.regions)
}

// =============================================================================
// Internals
// =============================================================================

func (m *Model) classify(st *regionState) (locked bool, residentFamily string) {
	return Classify(m.source, slices.Collect(maps.Keys(st.members)))
}

func residentOf(m *family.Member, familyID string) bool {
	return m.Linked && m.FamilyID == familyID
}

func (st *regionState) memberList() []string {
	return slices.Sorted(maps.Keys(st.members))
}

func (m *Model) record(st *regionState) *family.Region {
	return &family.Region{
		ID:          st.id,
		TreeID:      m.treeID,
		Name:        st.name,
		Description: st.description,
		Color:       st.color,
		MemberIDs:   st.memberList(),
		CreatedAt:   st.createdAt,
		UpdatedAt:   st.updatedAt,
	}
}
