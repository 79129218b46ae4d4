// Package assembler provides the core graph-assembly pipeline for Stammbaum.
//
// This package implements the complete filter → layout → overlay pipeline
// that can be used by CLI, API, and worker components. By centralizing this
// logic, we ensure consistent behavior across all entry points and avoid
// code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Filter: Derive the displayable subgraph from the tree per settings
//  2. Layout: Compute positions through the configured strategy
//  3. Overlay: Attach region bounding boxes and produce the Snapshot
//
// Rendering to output formats is a fourth, optional stage.
//
// Assembly is a full recompute on every call: no incremental patching, no
// partial output. When layout fails, the Runner keeps serving the previous
// valid snapshot of the tree and surfaces the error.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := assembler.NewRunner(cache, nil, logger)
//	opts := assembler.Options{
//	    HideDeceased: true,
//	    Formats:      []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, tree, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run the pure stage without caching:
//
//	snapshot, err := assembler.Assemble(tree, opts)
package assembler

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/graph"
	"github.com/matzehuels/stammbaum/pkg/layout"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI, API, and Worker
// =============================================================================

const (
	// DefaultOverlayMargin is the padding added around a region's member
	// bounding box on every side.
	DefaultOverlayMargin = 30.0

	// DefaultScale is the raster scale factor for PNG output.
	DefaultScale = 2.0
)

// DefaultStrategy is the default layout strategy.
const DefaultStrategy = "hierarchical"

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatSVG  = "svg"
	FormatDOT  = "dot"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatSVG:  true,
	FormatDOT:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the assembly pipeline.
// This struct supports JSON serialization for API requests. The zero value
// is the default view: nothing hidden, nothing dimmed, hierarchical layout.
type Options struct {
	// Filter options. Hide flags subtract from the default full view, so an
	// absent key in a serialized request means "no filter applied".
	HideLiving   bool     `json:"hide_living,omitempty"`
	HideDeceased bool     `json:"hide_deceased,omitempty"`
	HideUnborn   bool     `json:"hide_unborn,omitempty"`
	DimDeceased  bool     `json:"dim_deceased,omitempty"`
	DimUnborn    bool     `json:"dim_unborn,omitempty"`
	Focus        []string `json:"focus,omitempty"`

	// Layout options
	Strategy      string  `json:"strategy,omitempty"`
	NodeWidth     float64 `json:"node_width,omitempty"`
	NodeHeight    float64 `json:"node_height,omitempty"`
	RankSep       float64 `json:"rank_sep,omitempty"`
	NodeSep       float64 `json:"node_sep,omitempty"`
	Margin        float64 `json:"margin,omitempty"`
	OverlayMargin float64 `json:"overlay_margin,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Title        string   `json:"title,omitempty"`
	HideOverlays bool     `json:"hide_overlays,omitempty"`
	HideEdges    bool     `json:"hide_edges,omitempty"`
	Detailed     bool     `json:"detailed,omitempty"`
	Scale        float64  `json:"scale,omitempty"`

	// Refresh bypasses the cache for this run.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// Now anchors the unborn predicate for reproducible runs. Zero means
	// time.Now.
	Now time.Time `json:"-"`

	// StrategyImpl overrides the registry lookup with a concrete strategy.
	StrategyImpl layout.Strategy `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Snapshot is the assembled graph.
	Snapshot graph.Snapshot

	// TreeHash is the content hash of the tree input.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	MemberCount  int
	EdgeCount    int
	OverlayCount int
	AssembleTime time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	SnapshotHit bool // Whether the assembled snapshot came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeValidation,
			"invalid format: %q (must be one of: json, svg, dot, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has the
// same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForAssemble(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForAssemble checks filter and layout fields and applies their
// defaults.
func (o *Options) ValidateForAssemble() error {
	if o.Strategy == "" {
		o.Strategy = DefaultStrategy
	}
	if o.StrategyImpl == nil {
		s, err := NewStrategy(o.Strategy)
		if err != nil {
			return err
		}
		o.StrategyImpl = s
	}
	if o.OverlayMargin < 0 {
		return errors.New(errors.ErrCodeValidation, "overlay margin cannot be negative")
	}
	if o.OverlayMargin == 0 {
		o.OverlayMargin = DefaultOverlayMargin
	}

	cfg := o.LayoutConfig()
	if err := cfg.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.NodeWidth = cfg.NodeWidth
	o.NodeHeight = cfg.NodeHeight
	o.RankSep = cfg.RankSep
	o.NodeSep = cfg.NodeSep
	o.Margin = cfg.Margin

	o.setLogger()
	return nil
}

// ValidateForRender checks render fields and applies their defaults.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return errors.New(errors.ErrCodeValidation, "scale cannot be negative")
	}
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
}

// Settings converts the hide/dim flags to the filter settings of the
// relation graph. The zero Options value maps to the unfiltered default
// view.
func (o *Options) Settings() relgraph.Settings {
	return relgraph.Settings{
		ShowLiving:     !o.HideLiving,
		ShowDeceased:   !o.HideDeceased,
		ShowUnborn:     !o.HideUnborn,
		DimDeceased:    o.DimDeceased,
		DimUnborn:      o.DimUnborn,
		FocusRelations: o.Focus,
		Now:            o.Now,
	}
}

// LayoutConfig returns the geometric layout parameters.
func (o *Options) LayoutConfig() layout.Config {
	return layout.Config{
		NodeWidth:  o.NodeWidth,
		NodeHeight: o.NodeHeight,
		RankSep:    o.RankSep,
		NodeSep:    o.NodeSep,
		Margin:     o.Margin,
	}
}

// SnapshotKeyOpts returns cache key options for the assembled snapshot.
//
// The unborn predicate compares birth dates against a date anchor, so when
// unborn members are treated differently from living ones the anchor date
// joins the key. Otherwise a member whose birth date passes mid-TTL would
// keep being served from a stale snapshot.
func (o *Options) SnapshotKeyOpts() cache.SnapshotKeyOpts {
	anchor := ""
	if o.HideUnborn != o.HideLiving || o.DimUnborn {
		now := o.Now
		if now.IsZero() {
			now = time.Now()
		}
		anchor = now.UTC().Format(time.DateOnly)
	}
	return cache.SnapshotKeyOpts{
		Strategy:      o.Strategy,
		HideLiving:    o.HideLiving,
		HideDeceased:  o.HideDeceased,
		HideUnborn:    o.HideUnborn,
		DimDeceased:   o.DimDeceased,
		DimUnborn:     o.DimUnborn,
		Focus:         o.Focus,
		Anchor:        anchor,
		NodeWidth:     o.NodeWidth,
		NodeHeight:    o.NodeHeight,
		RankSep:       o.RankSep,
		NodeSep:       o.NodeSep,
		Margin:        o.Margin,
		OverlayMargin: o.OverlayMargin,
	}
}

// ArtifactKeyOpts returns cache key options for one rendered format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:       format,
		Title:        o.Title,
		HideOverlays: o.HideOverlays,
		HideEdges:    o.HideEdges,
		Detailed:     o.Detailed,
		Scale:        o.Scale,
	}
}
