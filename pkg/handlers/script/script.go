// Package script implements the ADD_SCRIPT handler, which merges one named
// command into the scripts section of the manifest.
package script

import (
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/modifiers/manifest"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler records manifest scripts.
type Handler struct {
	modifiers    *modifiers.Registry
	manifestPath string
}

// New creates the ADD_SCRIPT handler writing to the given manifest path.
func New(mods *modifiers.Registry, manifestPath string) *Handler {
	return &Handler{modifiers: mods, manifestPath: manifestPath}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionAddScript)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	if action.Name == "" || action.Command == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "ADD_SCRIPT requires 'name' and 'command'"))
	}

	if err := handlers.EnsureManifest(fs, h.manifestPath); err != nil {
		return types.Failure(err)
	}

	name := template.Substitute(action.Name, ctx)
	params := map[string]interface{}{
		"section": "scripts",
		"entries": map[string]interface{}{
			name: template.Substitute(action.Command, ctx),
		},
	}
	if err := h.modifiers.Apply(manifest.ModifierName, h.manifestPath, params, ctx, fs); err != nil {
		return types.Failure(err)
	}

	return types.Successf("added script '"+name+"'", h.manifestPath)
}

var _ handlers.Handler = (*Handler)(nil)
