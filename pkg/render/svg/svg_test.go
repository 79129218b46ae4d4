package svg

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/stammbaum/pkg/graph"
)

func sampleSnapshot() graph.Snapshot {
	return graph.Snapshot{
		TreeID:   "tree-1",
		Strategy: "hierarchical",
		Width:    420,
		Height:   300,
		Nodes: []graph.Node{
			{ID: "m1", Label: "Anna Beck", Sublabel: "* 1950", X: 40, Y: 40, Width: 180, Height: 90, Rank: 0, Gender: "female"},
			{ID: "m2", Label: "Bernd Beck", X: 240, Y: 40, Width: 180, Height: 90, Rank: 0, Gender: "male", Deceased: true},
			{ID: "m3", Label: "Clara Beck", X: 140, Y: 180, Width: 180, Height: 90, Rank: 2, Dimmed: true, Fuzzy: true},
		},
		Edges: []graph.Edge{
			{ID: "e1", From: "m1", To: "m3", Kind: graph.EdgeKindParentChild},
			{ID: "e2", From: "m1", To: "m2", Kind: graph.EdgeKindSpouse},
		},
		Overlays: []graph.Overlay{
			{RegionID: "r1", Name: "Beck & Co", Color: "#f6ad55", X: 20, Y: 20, Width: 380, Height: 260, Members: 2},
		},
	}
}

func TestRender_Basic(t *testing.T) {
	out := string(Render(sampleSnapshot()))

	if !strings.Contains(out, `<svg xmlns="http://www.w3.org/2000/svg"`) {
		t.Error("Render() output missing svg root element")
	}
	if !strings.Contains(out, `viewBox="0 0 420.0 300.0"`) {
		t.Errorf("Render() output missing viewBox: %s", out[:120])
	}
	for _, id := range []string{`id="member-m1"`, `id="member-m2"`, `id="member-m3"`} {
		if !strings.Contains(out, id) {
			t.Errorf("Render() output missing %s", id)
		}
	}
	if !strings.Contains(out, "Anna Beck") {
		t.Error("Render() output missing member label")
	}
	if !strings.Contains(out, "* 1950") {
		t.Error("Render() output missing sublabel")
	}
}

func TestRender_OverlayBelowNodes(t *testing.T) {
	out := string(Render(sampleSnapshot()))

	overlayAt := strings.Index(out, `id="region-r1"`)
	nodeAt := strings.Index(out, `id="member-m1"`)
	if overlayAt < 0 || nodeAt < 0 {
		t.Fatalf("Render() output missing overlay or node: overlay=%d node=%d", overlayAt, nodeAt)
	}
	if overlayAt > nodeAt {
		t.Error("Render() overlay must be drawn before member cards")
	}
	if !strings.Contains(out, "Beck &amp; Co") {
		t.Error("Render() overlay label not escaped")
	}
}

func TestRender_NodeStyling(t *testing.T) {
	out := string(Render(sampleSnapshot()))

	if !strings.Contains(out, strokeFemale) {
		t.Error("Render() missing female stroke color")
	}
	if !strings.Contains(out, strokeMale) {
		t.Error("Render() missing male stroke color")
	}
	if !strings.Contains(out, fillDeceased) {
		t.Error("Render() deceased member missing grey fill")
	}
	if !strings.Contains(out, `opacity="0.35"`) {
		t.Error("Render() dimmed member missing opacity")
	}
	if !strings.Contains(out, `stroke-dasharray="6 3"`) {
		t.Error("Render() fuzzy member missing dashed border")
	}
}

func TestRender_Edges(t *testing.T) {
	out := string(Render(sampleSnapshot()))

	if !strings.Contains(out, "<path d=\"M ") {
		t.Error("Render() missing parent-child path")
	}
	// Marriage renders as a double line.
	if strings.Count(out, `<line `) < 2 {
		t.Error("Render() spouse edge should draw two parallel lines")
	}
}

func TestRender_SplitSpousePair(t *testing.T) {
	s := graph.Snapshot{
		Width: 400, Height: 400,
		Nodes: []graph.Node{
			{ID: "a", X: 0, Y: 0, Width: 100, Height: 60, Rank: 0},
			{ID: "b", X: 200, Y: 150, Width: 100, Height: 60, Rank: 2},
		},
		Edges: []graph.Edge{{From: "a", To: "b", Kind: graph.EdgeKindSpouse}},
	}
	out := string(Render(s))
	if !strings.Contains(out, `stroke-dasharray="4 3"`) {
		t.Error("Render() split spouse pair should fall back to a dashed line")
	}
}

func TestRender_Options(t *testing.T) {
	s := sampleSnapshot()

	plain := string(Render(s, WithoutOverlays(), WithoutEdges()))
	if strings.Contains(plain, `class="region"`) {
		t.Error("WithoutOverlays() still rendered overlays")
	}
	if strings.Contains(plain, "<path ") || strings.Contains(plain, "<line ") {
		t.Error("WithoutEdges() still rendered edges")
	}

	titled := string(Render(s, WithTitle("Familie Beck")))
	if !strings.Contains(titled, "Familie Beck") {
		t.Error("WithTitle() caption missing")
	}
	if !strings.Contains(titled, `viewBox="0 0 420.0 336.0"`) {
		t.Error("WithTitle() should extend the canvas for the caption")
	}
}

func TestRender_Deterministic(t *testing.T) {
	s := sampleSnapshot()
	first := Render(s)
	for i := 0; i < 5; i++ {
		if !bytes.Equal(first, Render(s)) {
			t.Fatal("Render() output not deterministic")
		}
	}
}

func TestRender_SkipsDanglingEdges(t *testing.T) {
	s := graph.Snapshot{
		Width: 100, Height: 100,
		Nodes: []graph.Node{{ID: "a", X: 0, Y: 0, Width: 50, Height: 30}},
		Edges: []graph.Edge{{From: "a", To: "ghost", Kind: graph.EdgeKindParentChild}},
	}
	out := string(Render(s))
	if strings.Contains(out, "<path ") {
		t.Error("Render() drew an edge with a missing endpoint")
	}
}

func TestEscape(t *testing.T) {
	got := escape(`M&M <"quoted">`)
	want := `M&amp;M &lt;&quot;quoted&quot;&gt;`
	if got != want {
		t.Errorf("escape() = %q, want %q", got, want)
	}
}
