package assembler

import (
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/layout"
)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"json", false},
		{"svg", false},
		{"dot", false},
		{"png", false},
		{"pdf", false},
		{"gif", true},
		{"JSON", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("ValidateFormat(%q) code = %v, want VALIDATION", tt.format, err)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"json", "svg", "pdf"}); err != nil {
		t.Errorf("valid formats should pass: %v", err)
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("empty formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "bmp"}); err == nil {
		t.Error("invalid format should fail")
	}
}

func TestOptionsValidateAndSetDefaults(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options should pass: %v", err)
	}

	if opts.Strategy != DefaultStrategy {
		t.Errorf("Strategy = %q, want %q", opts.Strategy, DefaultStrategy)
	}
	if opts.StrategyImpl == nil || opts.StrategyImpl.Name() != DefaultStrategy {
		t.Errorf("StrategyImpl = %v", opts.StrategyImpl)
	}
	if opts.OverlayMargin != DefaultOverlayMargin {
		t.Errorf("OverlayMargin = %g, want %g", opts.OverlayMargin, DefaultOverlayMargin)
	}
	if opts.NodeWidth != layout.DefaultNodeWidth || opts.Margin != layout.DefaultMargin {
		t.Errorf("layout defaults not applied: %+v", opts)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatJSON {
		t.Errorf("Formats = %v, want [json]", opts.Formats)
	}
	if opts.Scale != DefaultScale {
		t.Errorf("Scale = %g, want %g", opts.Scale, DefaultScale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default")
	}
}

func TestOptionsValidateIdempotent(t *testing.T) {
	opts := Options{
		HideDeceased:  true,
		NodeWidth:     200,
		OverlayMargin: 12,
		Formats:       []string{"svg", "dot"},
		Scale:         3,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validation failed: %v", err)
	}

	if opts.NodeWidth != first.NodeWidth || opts.OverlayMargin != first.OverlayMargin {
		t.Error("repeated validation changed layout fields")
	}
	if len(opts.Formats) != 2 || opts.Scale != 3 {
		t.Error("repeated validation changed render fields")
	}
}

func TestOptionsValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		msg  string
	}{
		{"negative overlay margin", Options{OverlayMargin: -1}, "overlay margin"},
		{"negative scale", Options{Scale: -2}, "scale"},
		{"unknown strategy", Options{Strategy: "circular"}, "hierarchical"},
		{"bad format", Options{Formats: []string{"bmp"}}, "invalid format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, errors.ErrCodeValidation) {
				t.Errorf("code = %v, want VALIDATION", err)
			}
			if !strings.Contains(err.Error(), tt.msg) {
				t.Errorf("error %q does not mention %q", err, tt.msg)
			}
		})
	}
}

func TestOptionsSettings(t *testing.T) {
	var zero Options
	all := zero.Settings()
	if !all.ShowLiving || !all.ShowDeceased || !all.ShowUnborn {
		t.Errorf("zero options should show everyone: %+v", all)
	}
	if all.DimDeceased || all.DimUnborn {
		t.Errorf("zero options should dim nobody: %+v", all)
	}

	opts := Options{
		HideLiving:  true,
		DimDeceased: true,
		Focus:       []string{"r1"},
	}
	filtered := opts.Settings()
	if filtered.ShowLiving {
		t.Error("HideLiving should clear ShowLiving")
	}
	if !filtered.ShowDeceased || !filtered.DimDeceased {
		t.Errorf("settings = %+v", filtered)
	}
	if len(filtered.FocusRelations) != 1 || filtered.FocusRelations[0] != "r1" {
		t.Errorf("FocusRelations = %v", filtered.FocusRelations)
	}
}

func TestOptionsKeyOpts(t *testing.T) {
	opts := Options{HideDeceased: true, OverlayMargin: 15, Title: "Beck", Scale: 2}

	snap := opts.SnapshotKeyOpts()
	if !snap.HideDeceased || snap.OverlayMargin != 15 {
		t.Errorf("snapshot key opts = %+v", snap)
	}
	if snap.Strategy != "" {
		t.Errorf("unvalidated strategy should pass through empty, got %q", snap.Strategy)
	}

	art := opts.ArtifactKeyOpts("svg")
	if art.Format != "svg" || art.Title != "Beck" || art.Scale != 2 {
		t.Errorf("artifact key opts = %+v", art)
	}
}

func TestSnapshotKeyAnchorsUnbornDate(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	// Options indifferent to unborn members never fold a date in, so the
	// key stays stable across days.
	plain := Options{HideDeceased: true}
	plain.Now = day1
	k1 := plain.SnapshotKeyOpts()
	plain.Now = day2
	k2 := plain.SnapshotKeyOpts()
	if k1.Anchor != "" || k2.Anchor != "" {
		t.Errorf("anchors = %q, %q, want empty", k1.Anchor, k2.Anchor)
	}

	// Hiding unborn members makes the snapshot date-dependent: a birth
	// date passing overnight must miss the old cache entry.
	hide := Options{HideUnborn: true, Now: day1}
	a1 := hide.SnapshotKeyOpts()
	hide.Now = day2
	a2 := hide.SnapshotKeyOpts()
	if a1.Anchor == "" || a1.Anchor == a2.Anchor {
		t.Errorf("anchors = %q, %q, want distinct non-empty", a1.Anchor, a2.Anchor)
	}

	dim := Options{DimUnborn: true, Now: day1}
	if dim.SnapshotKeyOpts().Anchor == "" {
		t.Error("DimUnborn should anchor the key")
	}

	// A zero Now resolves to the wall clock instead of hashing the zero
	// time.
	live := Options{HideUnborn: true}
	if got := live.SnapshotKeyOpts().Anchor; got == "" || got[:2] != "20" {
		t.Errorf("anchor = %q, want current date", got)
	}
}

func TestNewStrategy(t *testing.T) {
	s, err := NewStrategy("hierarchical")
	if err != nil {
		t.Fatalf("NewStrategy(hierarchical) error: %v", err)
	}
	if s.Name() != "hierarchical" {
		t.Errorf("Name() = %q", s.Name())
	}

	if _, err := NewStrategy("radial"); !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("unknown strategy error = %v, want VALIDATION", err)
	}
}

func TestStrategyNames(t *testing.T) {
	names := StrategyNames()
	if len(names) == 0 {
		t.Fatal("no strategies registered")
	}
	found := false
	for _, n := range names {
		if n == "hierarchical" {
			found = true
		}
	}
	if !found {
		t.Errorf("StrategyNames() = %v, missing hierarchical", names)
	}
}
