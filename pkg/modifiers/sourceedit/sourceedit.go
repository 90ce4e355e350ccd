// Package sourceedit implements the structural source-edit modifier. It
// parses a generated configuration source file (export default / CommonJS
// export shapes), inserts import statements, deep-merges properties into
// the exported object, and re-serializes, leaving everything around the
// exported object untouched.
package sourceedit

import (
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/objlit"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// ModifierName is the name handlers use to request this modifier
const ModifierName = "source-edit"

// Modifier edits the exported object of a source-code configuration file.
type Modifier struct {
	modifiers.Base
}

// New creates the source-edit modifier
func New() *Modifier {
	return &Modifier{Base: modifiers.NewBase(ModifierName, ".js", ".ts", ".jsx", ".tsx", ".mjs", ".cjs")}
}

// ValidateParams requires at least one edit: 'imports' (array of import
// statements) or 'merge' (object merged into the exported object). 'content'
// is accepted as an alternative patch source holding generated source text.
func (m *Modifier) ValidateParams(params map[string]interface{}) error {
	if _, ok := params["merge"].(map[string]interface{}); ok {
		return nil
	}
	if s, ok := params["content"].(string); ok && strings.TrimSpace(s) != "" {
		return nil
	}
	if imports := toStringSlice(params["imports"]); len(imports) > 0 {
		return nil
	}
	return errors.New(errors.ErrInvalidInput,
		"source-edit requires at least one of 'imports', 'merge', or 'content'")
}

// Execute implements modifiers.Modifier
func (m *Modifier) Execute(path string, params map[string]interface{}, ctx types.ExecutionContext, fs *vfs.VFS) error {
	src, err := m.ReadFile(path, fs)
	if err != nil {
		return err
	}
	if strings.TrimSpace(src) == "" {
		src = "export default {}\n"
	}

	prefix, objSrc, suffix, err := objlit.Extract(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrMergeParse, "cannot edit %s structurally", path)
	}
	obj, err := objlit.Parse(objSrc)
	if err != nil {
		return errors.Wrapf(err, errors.ErrMergeParse, "cannot edit %s structurally", path)
	}

	if patch, ok := params["merge"].(map[string]interface{}); ok {
		obj.Merge(patch)
	}
	if content, ok := params["content"].(string); ok && strings.TrimSpace(content) != "" {
		patchObj, err := objlit.Coerce(content)
		if err != nil {
			return err
		}
		obj.MergeObject(patchObj)
	}

	prefix = insertImports(prefix, toStringSlice(params["imports"]))

	return m.WriteFile(path, prefix+objlit.Format(obj)+suffix, fs)
}

// insertImports appends missing import statements after the existing import
// block, deduplicating against lines already present.
func insertImports(prefix string, imports []string) string {
	if len(imports) == 0 {
		return prefix
	}

	lines := strings.Split(prefix, "\n")

	// index just past the last existing import line
	insertAt := 0
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), "import ") {
			insertAt = i + 1
		}
	}

	var missing []string
	for _, imp := range imports {
		imp = strings.TrimSpace(imp)
		if imp == "" || containsLine(lines, imp) {
			continue
		}
		missing = append(missing, imp)
	}
	if len(missing) == 0 {
		return prefix
	}

	out := make([]string, 0, len(lines)+len(missing))
	out = append(out, lines[:insertAt]...)
	out = append(out, missing...)
	out = append(out, lines[insertAt:]...)
	return strings.Join(out, "\n")
}

func containsLine(lines []string, target string) bool {
	for _, line := range lines {
		if strings.TrimSpace(line) == target {
			return true
		}
	}
	return false
}

func toStringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

var _ modifiers.Modifier = (*Modifier)(nil)
