package exchange

import (
	"embed"
	"slices"

	"github.com/matzehuels/stammbaum/pkg/errors"
)

//go:embed presets/*.json
var presetFS embed.FS

// presetFiles maps preset keys to their embedded documents.
var presetFiles = map[string]string{
	"han_dynasty":  "presets/han_dynasty.json",
	"tang_dynasty": "presets/tang_dynasty.json",
	"ming_dynasty": "presets/ming_dynasty.json",
}

// Presets returns the available preset keys, sorted.
func Presets() []string {
	keys := make([]string, 0, len(presetFiles))
	for k := range presetFiles {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Preset loads the bundled document for the given key.
func Preset(key string) (*Document, error) {
	path, ok := presetFiles[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "unknown preset %q (available: %v)", key, Presets())
	}
	data, err := presetFS.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "read preset %q", key)
	}
	return Parse(data)
}
