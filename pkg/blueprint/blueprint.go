// Package blueprint loads and validates blueprint definitions: named,
// ordered action lists stored as YAML files.
package blueprint

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/types"
)

// Blueprint is one module's ordered action list, the unit of staging
// atomicity.
type Blueprint struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Actions     []types.Action `yaml:"actions"`
}

// Parse decodes and validates a single blueprint document.
func Parse(data []byte) (*Blueprint, error) {
	var bp Blueprint
	if err := yaml.Unmarshal(data, &bp); err != nil {
		return nil, errors.Wrap(err, errors.ErrBlueprintLoad, "failed to parse blueprint YAML")
	}
	if err := Validate(&bp); err != nil {
		return nil, err
	}
	return &bp, nil
}

// Load reads one blueprint file from disk.
func Load(path string) (*Blueprint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBlueprintLoad, "failed to read blueprint: %s", path)
	}

	bp, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBlueprintLoad, "invalid blueprint: %s", path)
	}
	if bp.Name == "" {
		bp.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return bp, nil
}

// LoadDir reads every .yaml/.yml blueprint in a directory, sorted by file
// name so execution order is stable.
func LoadDir(dir string) ([]*Blueprint, error) {
	log := logging.GetLogger("blueprint")

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrBlueprintLoad, "failed to read blueprints directory: %s", dir)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	blueprints := make([]*Blueprint, 0, len(names))
	for _, name := range names {
		bp, err := Load(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		log.Debug().Str("blueprint", bp.Name).Int("actions", len(bp.Actions)).Msg("Loaded blueprint")
		blueprints = append(blueprints, bp)
	}
	return blueprints, nil
}

// Validate checks structural legality: every action carries a known kind
// and the kind-specific required fields. Business-level legality of the
// module combination is the caller's concern.
func Validate(bp *Blueprint) error {
	for i, action := range bp.Actions {
		if err := validateAction(action); err != nil {
			return errors.Wrapf(err, errors.ErrBlueprintInvalid,
				"action %d of blueprint '%s'", i, bp.Name)
		}
	}
	return nil
}

func validateAction(a types.Action) error {
	if a.Type == "" {
		return errors.New(errors.ErrBlueprintInvalid, "action is missing a type")
	}

	known := false
	for _, kind := range types.KnownActionTypes {
		if a.Type == kind {
			known = true
			break
		}
	}
	if !known {
		return errors.Newf(errors.ErrBlueprintInvalid, "unknown action type '%s'", a.Type)
	}

	if a.Type == types.ActionCreateFile && a.Content != "" && a.Template != "" {
		return errors.New(errors.ErrBlueprintInvalid, "'content' and 'template' are mutually exclusive")
	}
	if a.Template != "" && a.Module == "" {
		return errors.New(errors.ErrBlueprintInvalid, "'template' requires 'module'")
	}
	return nil
}
