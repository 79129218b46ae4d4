package cli

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/matzehuels/stammbaum/pkg/assembler"
	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{assembler.FormatSVG}},
		{"svg", []string{"svg"}},
		{"svg,dot,json", []string{"svg", "dot", "json"}},
	}

	for _, tt := range tests {
		got := parseFormats(tt.input)
		if len(got) != len(tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, got[i], tt.want[i])
			}
		}
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Huber", "huber"},
		{"Han Dynasty", "han-dynasty"},
		{"von_und-zu Aue", "von-und-zu-aue"},
		{"Müller", "mller"},
		{"", "family"},
		{"!!!", "family"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.name); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestResolveFamilyByID(t *testing.T) {
	ctx := context.Background()
	st := family.NewMemoryStore()
	f := &family.Family{ID: family.NewID(), Name: "Huber", CreatedAt: time.Now().UTC()}
	if err := st.CreateFamily(ctx, f); err != nil {
		t.Fatal(err)
	}

	got, err := resolveFamily(ctx, st, f.ID)
	if err != nil {
		t.Fatalf("resolveFamily(id) error: %v", err)
	}
	if got.ID != f.ID {
		t.Errorf("resolved id = %q, want %q", got.ID, f.ID)
	}
}

func TestResolveFamilyByName(t *testing.T) {
	ctx := context.Background()
	st := family.NewMemoryStore()
	f := &family.Family{ID: family.NewID(), Name: "Huber", CreatedAt: time.Now().UTC()}
	if err := st.CreateFamily(ctx, f); err != nil {
		t.Fatal(err)
	}

	// Name lookup is case-insensitive.
	got, err := resolveFamily(ctx, st, "hUbEr")
	if err != nil {
		t.Fatalf("resolveFamily(name) error: %v", err)
	}
	if got.ID != f.ID {
		t.Errorf("resolved id = %q, want %q", got.ID, f.ID)
	}
}

func TestResolveFamilyAmbiguousName(t *testing.T) {
	ctx := context.Background()
	st := family.NewMemoryStore()
	for i := 0; i < 2; i++ {
		f := &family.Family{ID: family.NewID(), Name: "Huber", CreatedAt: time.Now().UTC()}
		if err := st.CreateFamily(ctx, f); err != nil {
			t.Fatal(err)
		}
	}

	_, err := resolveFamily(ctx, st, "Huber")
	if err == nil {
		t.Fatal("expected error for ambiguous name")
	}
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("error code = %v, want validation", err)
	}
}

func TestResolveFamilyNotFound(t *testing.T) {
	ctx := context.Background()
	st := family.NewMemoryStore()

	_, err := resolveFamily(ctx, st, "nobody")
	if err == nil {
		t.Fatal("expected error for unknown family")
	}
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error code = %v, want not_found", err)
	}
}

func TestRootCommandStructure(t *testing.T) {
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	if root.Use != "stammbaum" {
		t.Errorf("root.Use = %q, want %q", root.Use, "stammbaum")
	}

	want := []string{"serve", "graph", "import", "regions", "version", "completion"}
	for _, name := range want {
		found := false
		for _, cmd := range root.Commands() {
			if cmd.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}
