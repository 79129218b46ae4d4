package assembler

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stammbaum/pkg/cache"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/layout"
	"github.com/matzehuels/stammbaum/pkg/relgraph"
)

func quietOpts() Options {
	return Options{Logger: log.New(io.Discard)}
}

func TestRunnerExecute(t *testing.T) {
	runner := NewRunner(nil, nil, log.New(io.Discard))
	defer runner.Close()

	opts := quietOpts()
	opts.Formats = []string{"json", "svg", "dot"}

	result, err := runner.Execute(context.Background(), testTree(), opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	if len(result.Snapshot.Nodes) != 4 {
		t.Errorf("snapshot nodes = %d, want 4", len(result.Snapshot.Nodes))
	}
	if result.TreeHash == "" {
		t.Error("TreeHash should be set")
	}
	if result.Stats.MemberCount != 4 || result.Stats.EdgeCount != 5 || result.Stats.OverlayCount != 1 {
		t.Errorf("stats = %+v", result.Stats)
	}
	if result.CacheInfo.SnapshotHit || result.CacheInfo.RenderHit {
		t.Errorf("null cache should never hit: %+v", result.CacheInfo)
	}

	if len(result.Artifacts) != 3 {
		t.Fatalf("artifacts = %d, want 3", len(result.Artifacts))
	}
	if !strings.Contains(string(result.Artifacts["svg"]), "<svg") {
		t.Error("svg artifact missing root element")
	}
	if !strings.Contains(string(result.Artifacts["dot"]), "digraph family") {
		t.Error("dot artifact missing digraph")
	}
	if !strings.Contains(string(result.Artifacts["json"]), `"tree_id": "t1"`) {
		t.Error("json artifact missing tree id")
	}
}

func TestRunnerExecuteValidation(t *testing.T) {
	runner := NewRunner(nil, nil, log.New(io.Discard))
	opts := quietOpts()
	opts.OverlayMargin = -5

	if _, err := runner.Execute(context.Background(), testTree(), opts); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("Execute() error = %v, want VALIDATION", err)
	}
}

func TestRunnerSnapshotCacheHit(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(fc, nil, log.New(io.Discard))
	defer runner.Close()

	opts := quietOpts()
	opts.Formats = []string{"json", "svg"}
	ctx := context.Background()

	first, err := runner.Execute(ctx, testTree(), opts)
	if err != nil {
		t.Fatalf("first Execute() error: %v", err)
	}
	if first.CacheInfo.SnapshotHit || first.CacheInfo.RenderHit {
		t.Errorf("first run should miss: %+v", first.CacheInfo)
	}

	second, err := runner.Execute(ctx, testTree(), opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.SnapshotHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run should hit: %+v", second.CacheInfo)
	}
	if second.Snapshot.Width != first.Snapshot.Width || len(second.Snapshot.Nodes) != 4 {
		t.Error("cached snapshot differs from fresh one")
	}

	// A different filter selection must produce a different key.
	hidden := quietOpts()
	hidden.Formats = []string{"json"}
	hidden.HideDeceased = true
	third, err := runner.Execute(ctx, testTree(), hidden)
	if err != nil {
		t.Fatalf("third Execute() error: %v", err)
	}
	if third.CacheInfo.SnapshotHit {
		t.Error("changed filter options should miss the snapshot cache")
	}

	refresh := quietOpts()
	refresh.Formats = []string{"json", "svg"}
	refresh.Refresh = true
	fourth, err := runner.Execute(ctx, testTree(), refresh)
	if err != nil {
		t.Fatalf("refresh Execute() error: %v", err)
	}
	if fourth.CacheInfo.SnapshotHit {
		t.Error("refresh should bypass the snapshot cache")
	}
}

func TestRunnerContentChangeMissesCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	runner := NewRunner(fc, nil, log.New(io.Discard))
	defer runner.Close()
	ctx := context.Background()

	if _, err := runner.Execute(ctx, testTree(), quietOpts()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	changed := testTree()
	changed.Members[0].Name = "Renamed"
	result, err := runner.Execute(ctx, changed, quietOpts())
	if err != nil {
		t.Fatalf("Execute() after change error: %v", err)
	}
	if result.CacheInfo.SnapshotHit {
		t.Error("content change should invalidate the snapshot key")
	}
}

// failingStrategy rejects every layout request.
type failingStrategy struct{}

func (failingStrategy) Name() string { return "failing" }

func (failingStrategy) Layout(g *relgraph.Graph, cfg layout.Config) (*layout.Result, error) {
	return nil, errors.New(errors.ErrCodeLayoutInternal, "solver gave up")
}

func TestRunnerRetainsLastValidSnapshot(t *testing.T) {
	runner := NewRunner(nil, nil, log.New(io.Discard))
	defer runner.Close()
	ctx := context.Background()

	if _, ok := runner.Retained("t1"); ok {
		t.Error("nothing retained before the first run")
	}

	if _, err := runner.Execute(ctx, testTree(), quietOpts()); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	broken := quietOpts()
	broken.StrategyImpl = failingStrategy{}
	if _, err := runner.Execute(ctx, testTree(), broken); !errors.Is(err, errors.ErrCodeLayoutInternal) {
		t.Fatalf("failing strategy error = %v, want LAYOUT_INTERNAL", err)
	}

	retained, ok := runner.Retained("t1")
	if !ok {
		t.Fatal("previous snapshot should survive a failed run")
	}
	if len(retained.Nodes) != 4 || retained.TreeID != "t1" {
		t.Errorf("retained snapshot = %+v", retained)
	}

	if _, ok := runner.Retained("other"); ok {
		t.Error("unknown tree should have no retained snapshot")
	}
}

func TestRunnerAssembleAndRender(t *testing.T) {
	runner := NewRunner(nil, nil, log.New(io.Discard))
	defer runner.Close()
	ctx := context.Background()

	opts := quietOpts()
	opts.Formats = []string{"dot"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("validate error: %v", err)
	}

	snapshot, err := runner.Assemble(ctx, testTree(), opts)
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}

	artifacts, err := runner.Render(ctx, snapshot, opts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if len(artifacts) != 1 || len(artifacts["dot"]) == 0 {
		t.Errorf("artifacts = %v", artifacts)
	}
}
