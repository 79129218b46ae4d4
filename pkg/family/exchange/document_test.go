package exchange

import (
	"testing"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

func TestParse(t *testing.T) {
	doc, err := Parse([]byte(`{
		"family": {"name": "Beck"},
		"members": [{"id": "a", "name": "Anna", "gender": "female"}],
		"spouses": [],
		"parents": []
	}`))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if doc.Family.Name != "Beck" || len(doc.Members) != 1 {
		t.Errorf("doc = %+v", doc)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", `{family`},
		{"no family name", `{"members": []}`},
		{"duplicate ids", `{"family": {"name": "X"}, "members": [{"id": "a", "name": "A", "gender": "male"}, {"id": "a", "name": "B", "gender": "female"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.data)); !errors.Is(err, errors.ErrCodeImport) {
				t.Errorf("Parse() error = %v, want IMPORT", err)
			}
		})
	}
}
