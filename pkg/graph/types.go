package graph

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/stammbaum/pkg/family"
)

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// Edge kinds, mirroring the relation kinds of the family store.
const (
	EdgeKindParentChild = family.RelationParentChild
	EdgeKindSpouse      = family.RelationSpouse
)

// Node connection ports. Every node receives edges at its top border and
// emits them at its bottom border, so hierarchy edges route top-to-bottom.
const (
	PortTop    = "top"
	PortBottom = "bottom"
)

// =============================================================================
// Snapshot - Renderable Graph Serialization
// =============================================================================

// Snapshot is the canonical serialization format for one assembled family
// graph: positioned member nodes, relation edges, and region overlays.
// Used for API responses, caching, and as the input of every render sink.
//
// A snapshot is immutable once assembled; a new one is produced on every
// member, relation, filter, or region change.
type Snapshot struct {
	TreeID      string    `json:"tree_id" bson:"tree_id"`
	Strategy    string    `json:"strategy" bson:"strategy"`
	GeneratedAt time.Time `json:"generated_at" bson:"generated_at"`

	// Frame dimensions including margins.
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	Nodes    []Node    `json:"nodes" bson:"nodes"`
	Edges    []Edge    `json:"edges" bson:"edges"`
	Overlays []Overlay `json:"overlays,omitempty" bson:"overlays,omitempty"`

	// Rows holds the left-to-right node sequence per generation row.
	Rows map[int][]string `json:"rows,omitempty" bson:"rows,omitempty"`
}

// Node returns the node with the given id, or nil.
func (s *Snapshot) Node(id string) *Node {
	for i := range s.Nodes {
		if s.Nodes[i].ID == id {
			return &s.Nodes[i]
		}
	}
	return nil
}

// Overlay returns the overlay for the given region id, or nil.
func (s *Snapshot) Overlay(regionID string) *Overlay {
	for i := range s.Overlays {
		if s.Overlays[i].RegionID == regionID {
			return &s.Overlays[i]
		}
	}
	return nil
}

// =============================================================================
// Node - Positioned Member Card
// =============================================================================

// Node is one member placed on the drawing plane. Coordinates are top-left
// anchored.
type Node struct {
	ID       string `json:"id" bson:"id"`
	Label    string `json:"label,omitempty" bson:"label,omitempty"`       // Display name (defaults to ID)
	Sublabel string `json:"sublabel,omitempty" bson:"sublabel,omitempty"` // Life dates line

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
	Rank   int     `json:"rank" bson:"rank"`

	// Connection ports, fixed per rendering convention.
	InPort  string `json:"in_port" bson:"in_port"`
	OutPort string `json:"out_port" bson:"out_port"`

	Gender   string `json:"gender,omitempty" bson:"gender,omitempty"`
	Deceased bool   `json:"deceased,omitempty" bson:"deceased,omitempty"`
	Fuzzy    bool   `json:"fuzzy,omitempty" bson:"fuzzy,omitempty"`
	Linked   bool   `json:"linked,omitempty" bson:"linked,omitempty"`

	// Dimmed marks members shown at reduced emphasis per display settings.
	Dimmed bool `json:"dimmed,omitempty" bson:"dimmed,omitempty"`

	PhotoURL  string   `json:"photo_url,omitempty" bson:"photo_url,omitempty"`
	RegionIDs []string `json:"region_ids,omitempty" bson:"region_ids,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// =============================================================================
// Edge - Typed Relation Edge
// =============================================================================

// Edge is one relation between two placed nodes. Parent-child edges point
// parent to child; spouse edges carry the canonical endpoint order of the
// store.
type Edge struct {
	ID   string `json:"id,omitempty" bson:"id,omitempty"`
	From string `json:"from" bson:"from"`
	To   string `json:"to" bson:"to"`
	Kind string `json:"kind" bson:"kind"`
}

// IsSpouse returns true for spouse edges.
func (e *Edge) IsSpouse() bool { return e.Kind == EdgeKindSpouse }

// =============================================================================
// Overlay - Region Bounding Box
// =============================================================================

// Overlay is a region's bounding box: the min/max extent of its member
// nodes, expanded by the assembler's overlay margin. Regions whose members
// are all filtered out produce no overlay.
type Overlay struct {
	RegionID string `json:"region_id" bson:"region_id"`
	Name     string `json:"name" bson:"name"`
	Color    string `json:"color" bson:"color"`

	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`

	// Locked carries the derived linked-family classification at assembly
	// time, so renderers can mark restricted regions.
	Locked bool `json:"locked,omitempty" bson:"locked,omitempty"`

	// Members is the count of placed member nodes inside the overlay.
	Members int `json:"members" bson:"members"`
}

// =============================================================================
// Serialization
// =============================================================================

// UnmarshalSnapshot deserializes JSON bytes to a Snapshot.
func UnmarshalSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return s, nil
}

// MarshalSnapshot serializes a Snapshot to pretty-printed JSON bytes.
func MarshalSnapshot(s Snapshot) ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
