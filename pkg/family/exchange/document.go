package exchange

import (
	"encoding/json"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

// =============================================================================
// Exchange Document
// =============================================================================

// Document is the JSON exchange format for one family tree. The same shape
// serves file import, the bundled presets, and server-to-server transfer,
// so a family exported from one instance can be imported into another.
//
// Member ids inside a document are only meaningful within the document;
// importing assigns fresh ids and remaps every reference.
type Document struct {
	Family  DocumentFamily   `json:"family"`
	Members []DocumentMember `json:"members"`
	Spouses [][2]string      `json:"spouses,omitempty"`
	Parents []ParentGroup    `json:"parents,omitempty"`
}

// DocumentFamily identifies the source family of a document.
type DocumentFamily struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// DocumentMember is one person record in document form. Birth and Death
// carry the lenient YYYY[-MM[-DD]] record dates.
type DocumentMember struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Surname    string `json:"surname,omitempty"`
	Gender     string `json:"gender"`
	Birth      string `json:"birth,omitempty"`
	Death      string `json:"death,omitempty"`
	Deceased   bool   `json:"is_deceased,omitempty"`
	Fuzzy      bool   `json:"is_fuzzy,omitempty"`
	Remark     string `json:"remark,omitempty"`
	BirthPlace string `json:"birth_place,omitempty"`
	PhotoURL   string `json:"photo_url,omitempty"`
}

// ParentGroup lists the children of one parent couple. Either parent may be
// absent for single-parent descents.
type ParentGroup struct {
	Father   string   `json:"father,omitempty"`
	Mother   string   `json:"mother,omitempty"`
	Children []string `json:"children"`
}

// =============================================================================
// Parsing and Validation
// =============================================================================

// Parse decodes and validates an exchange document.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeImport, err, "parse exchange document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate checks the structural integrity of the document: a family name,
// and unique non-empty member ids. Dangling relation references are not an
// error here; the importer skips them.
func (d *Document) Validate() error {
	if d.Family.Name == "" {
		return errors.New(errors.ErrCodeImport, "exchange document has no family name")
	}
	seen := make(map[string]bool, len(d.Members))
	for i, m := range d.Members {
		if m.ID == "" {
			return errors.New(errors.ErrCodeImport, "member %d has no id", i)
		}
		if seen[m.ID] {
			return errors.New(errors.ErrCodeImport, "duplicate member id %q", m.ID)
		}
		seen[m.ID] = true
	}
	return nil
}

// Marshal serializes the document to pretty-printed JSON.
func (d *Document) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "marshal exchange document")
	}
	return data, nil
}
