package exchange

import (
	"testing"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

func TestPresets(t *testing.T) {
	keys := Presets()
	want := []string{"han_dynasty", "ming_dynasty", "tang_dynasty"}
	if len(keys) != len(want) {
		t.Fatalf("Presets() = %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("Presets()[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestPresetDocuments(t *testing.T) {
	for _, key := range Presets() {
		t.Run(key, func(t *testing.T) {
			doc, err := Preset(key)
			if err != nil {
				t.Fatalf("Preset(%q) error: %v", key, err)
			}
			if doc.Family.Name == "" || len(doc.Members) == 0 {
				t.Fatalf("preset %q is empty: %+v", key, doc.Family)
			}

			// Every preset must import cleanly with no dangling references.
			b, err := Convert(doc, Options{})
			if err != nil {
				t.Fatalf("Convert(%q) error: %v", key, err)
			}
			if b.Skipped != 0 {
				t.Errorf("preset %q has %d dangling relation references", key, b.Skipped)
			}
			if len(b.Relations) == 0 {
				t.Errorf("preset %q has no relations", key)
			}
		})
	}
}

func TestPresetUnknownKey(t *testing.T) {
	if _, err := Preset("qing_dynasty"); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("Preset(unknown) error = %v, want NOT_FOUND", err)
	}
}
