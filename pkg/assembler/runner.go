package assembler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/graph"
	"github.com/matzehuels/stammbaum/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// Besides cache and logger the Runner retains the last valid snapshot per
// tree, so a failed re-assembly never takes down the current view. The
// retained map is protected by a mutex; multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	mu       sync.RWMutex
	retained map[string]graph.Snapshot
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		retained: make(map[string]graph.Snapshot),
	}
}

// Execute runs the complete filter → layout → overlay → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, tree *family.Tree, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1+2: Filter and layout
	assembleStart := time.Now()
	snapshot, snapHit, err := r.AssembleWithCacheInfo(ctx, tree, opts)
	if err != nil {
		return nil, err
	}
	result.Snapshot = snapshot
	result.TreeHash = TreeHash(tree)
	result.Stats.AssembleTime = time.Since(assembleStart)
	result.Stats.MemberCount = len(snapshot.Nodes)
	result.Stats.EdgeCount = len(snapshot.Edges)
	result.Stats.OverlayCount = len(snapshot.Overlays)
	result.CacheInfo.SnapshotHit = snapHit

	opts.Logger.Info("assembled graph",
		"tree", snapshot.TreeID,
		"members", len(snapshot.Nodes),
		"edges", len(snapshot.Edges),
		"overlays", len(snapshot.Overlays),
		"duration", result.Stats.AssembleTime)

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, snapshot, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// AssembleWithCacheInfo assembles a snapshot with caching and returns cache
// hit info. On success the snapshot also becomes the tree's retained
// snapshot; on layout failure the previously retained one stays in place.
func (r *Runner) AssembleWithCacheInfo(ctx context.Context, tree *family.Tree, opts Options) (graph.Snapshot, bool, error) {
	if tree == nil || tree.Family == nil {
		return graph.Snapshot{}, false, errors.New(errors.ErrCodeValidation, "assemble requires a tree")
	}
	if err := opts.ValidateForAssemble(); err != nil {
		return graph.Snapshot{}, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.SnapshotKey(TreeHash(tree), opts.SnapshotKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			if s, err := graph.UnmarshalSnapshot(data); err == nil {
				observability.Cache().OnCacheHit(ctx, "snapshot")
				r.retain(s)
				return s, true, nil
			}
			// Corrupt entry, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, "snapshot")
	}

	snapshot, err := r.assembleFresh(ctx, tree, opts)
	if err != nil {
		return graph.Snapshot{}, false, err
	}
	r.retain(snapshot)

	if data, err := graph.MarshalSnapshot(snapshot); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLSnapshot)
		observability.Cache().OnCacheSet(ctx, "snapshot", len(data))
	}

	return snapshot, false, nil
}

// Assemble is a convenience wrapper that discards the cache hit info.
func (r *Runner) Assemble(ctx context.Context, tree *family.Tree, opts Options) (graph.Snapshot, error) {
	s, _, err := r.AssembleWithCacheInfo(ctx, tree, opts)
	return s, err
}

// assembleFresh runs the filter and layout stages with observability events.
func (r *Runner) assembleFresh(ctx context.Context, tree *family.Tree, opts Options) (graph.Snapshot, error) {
	hooks := observability.Assembly()

	hooks.OnFilterStart(ctx, tree.Family.ID, len(tree.Members))
	g, err := FilterTree(tree, opts)
	if err != nil {
		hooks.OnFilterComplete(ctx, tree.Family.ID, 0, 0, err)
		return graph.Snapshot{}, err
	}
	hooks.OnFilterComplete(ctx, tree.Family.ID, g.MemberCount(), g.RelationCount(), nil)

	layoutStart := time.Now()
	hooks.OnLayoutStart(ctx, opts.Strategy, g.MemberCount())
	snapshot, err := AssembleGraph(tree, g, opts)
	hooks.OnLayoutComplete(ctx, opts.Strategy, time.Since(layoutStart), err)
	if err != nil {
		return graph.Snapshot{}, err
	}
	return snapshot, nil
}

// RenderWithCacheInfo renders artifacts with caching and returns cache hit
// info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, snapshot graph.Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	snapData, err := graph.MarshalSnapshot(snapshot)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeRender, err, "serialize snapshot for cache key")
	}
	snapHash := cache.Hash(snapData)

	// Try to get all formats from cache
	allCached := true
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		cacheKey := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			artifacts[format] = data
		} else {
			allCached = false
			break
		}
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return artifacts, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Assembly()
	renderStart := time.Now()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderSnapshot(snapshot, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(renderStart), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(snapHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, snapshot graph.Snapshot, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, snapshot, opts)
	return artifacts, err
}

// Retained returns the last valid snapshot assembled for a tree, if any.
// It survives later failed assemblies, so views can keep showing the last
// good state while the error is being fixed.
func (r *Runner) Retained(treeID string) (graph.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.retained[treeID]
	return s, ok
}

func (r *Runner) retain(s graph.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retained[s.TreeID] = s
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
