// Package manifest implements the section-scoped merge modifier for the
// package manifest. It only ever touches the named top-level section
// (dependencies, devDependencies, scripts, env), merging entries into it
// rather than replacing the file.
package manifest

import (
	"encoding/json"
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/modifiers/jsonmerge"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// ModifierName is the name handlers use to request this modifier
const ModifierName = "manifest-merge"

// Sections the modifier accepts
var allowedSections = map[string]bool{
	"dependencies":    true,
	"devDependencies": true,
	"scripts":         true,
	"env":             true,
}

// Modifier merges entries into one section of a JSON manifest.
type Modifier struct {
	modifiers.Base
}

// New creates the manifest-merge modifier
func New() *Modifier {
	return &Modifier{Base: modifiers.NewBase(ModifierName, ".json")}
}

// ValidateParams requires a known section and a non-empty entries object
func (m *Modifier) ValidateParams(params map[string]interface{}) error {
	section, _ := params["section"].(string)
	if !allowedSections[section] {
		return errors.Newf(errors.ErrInvalidInput,
			"manifest-merge requires 'section' to be one of dependencies, devDependencies, scripts, env; got '%s'", section)
	}

	entries, ok := params["entries"].(map[string]interface{})
	if !ok || len(entries) == 0 {
		return errors.New(errors.ErrInvalidInput, "manifest-merge requires a non-empty 'entries' object")
	}
	return nil
}

// Execute implements modifiers.Modifier
func (m *Modifier) Execute(path string, params map[string]interface{}, ctx types.ExecutionContext, fs *vfs.VFS) error {
	section := params["section"].(string)
	entries := params["entries"].(map[string]interface{})

	content, err := m.ReadFile(path, fs)
	if err != nil {
		return err
	}

	doc := map[string]interface{}{}
	if strings.TrimSpace(content) != "" {
		if err := json.Unmarshal([]byte(content), &doc); err != nil {
			return errors.Wrapf(err, errors.ErrMergeParse, "manifest is not a JSON object: %s", path)
		}
	}

	if keep, _ := params["keepExisting"].(bool); keep {
		entries = withoutExisting(doc, section, entries)
	}

	jsonmerge.Merge(doc, map[string]interface{}{section: entries})

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrMergeParse, "failed to serialize manifest: %s", path)
	}
	return m.WriteFile(path, string(out)+"\n", fs)
}

// withoutExisting drops entries whose key is already present in the
// section, so already-pinned values are never overwritten.
func withoutExisting(doc map[string]interface{}, section string, entries map[string]interface{}) map[string]interface{} {
	current, _ := doc[section].(map[string]interface{})
	if len(current) == 0 {
		return entries
	}

	filtered := make(map[string]interface{}, len(entries))
	for key, value := range entries {
		if _, present := current[key]; !present {
			filtered[key] = value
		}
	}
	return filtered
}

var _ modifiers.Modifier = (*Modifier)(nil)
