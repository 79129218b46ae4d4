// Package cache provides pluggable caching for assembled snapshots, rendered
// artifacts, and fetched family bundles.
//
// Three backends cover the deployment spectrum: [FileCache] for the CLI,
// [RedisCache] for the server, and [NullCache] to disable caching entirely.
// All of them speak the same [Cache] interface; key construction is
// centralized in [Keyer] implementations so every entry point derives
// identical keys for identical work.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the storage interface shared by all backends.
//
// Get returns (data, true, nil) on a hit and (nil, false, nil) on a miss;
// errors are reserved for backend failures. A ttl of zero on Set stores the
// entry without expiration.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Cache lifetimes per entry class.
const (
	// TTLSnapshot bounds assembled snapshot entries. Snapshots are keyed by
	// tree content hash, so stale entries only linger after a tree mutation
	// until the next assembly anyway.
	TTLSnapshot = 12 * time.Hour

	// TTLArtifact bounds rendered artifact entries (SVG, PNG, PDF, DOT).
	TTLArtifact = 24 * time.Hour

	// TTLHTTP bounds fetched remote family bundles.
	TTLHTTP = 30 * time.Minute
)

// SnapshotKeyOpts captures every input besides tree content that shapes an
// assembled snapshot.
type SnapshotKeyOpts struct {
	Strategy string

	HideLiving   bool
	HideDeceased bool
	HideUnborn   bool
	DimDeceased  bool
	DimUnborn    bool
	Focus        []string

	// Anchor pins the date the unborn predicate was evaluated against.
	// Empty when the options treat unborn and living members alike, so
	// time never splits those keys.
	Anchor string

	NodeWidth     float64
	NodeHeight    float64
	RankSep       float64
	NodeSep       float64
	Margin        float64
	OverlayMargin float64
}

// ArtifactKeyOpts captures the render options that shape one output format.
type ArtifactKeyOpts struct {
	Format       string
	Title        string
	HideOverlays bool
	HideEdges    bool
	Detailed     bool
	Scale        float64
}

// Keyer derives cache keys. Implementations must be deterministic: equal
// inputs yield equal keys across processes.
type Keyer interface {
	// HTTPKey keys a fetched remote resource inside a namespace.
	HTTPKey(namespace, key string) string

	// SnapshotKey keys an assembled snapshot by tree content hash and
	// assembly options.
	SnapshotKey(treeHash string, opts SnapshotKeyOpts) string

	// ArtifactKey keys one rendered artifact by snapshot hash and render
	// options.
	ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes option structs into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return hashKey(fmt.Sprintf("http:%s", namespace), key)
}

// SnapshotKey generates a key for assembled snapshot caching.
func (k *DefaultKeyer) SnapshotKey(treeHash string, opts SnapshotKeyOpts) string {
	return hashKey("snapshot", treeHash, opts)
}

// ArtifactKey generates a key for rendered artifact caching.
func (k *DefaultKeyer) ArtifactKey(snapshotHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", snapshotHash, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
