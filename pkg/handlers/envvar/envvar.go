// Package envvar implements the ADD_ENV_VAR handler, which merges one
// key/value pair into the env section of the manifest.
package envvar

import (
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/modifiers/manifest"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler records environment entries in the manifest.
type Handler struct {
	modifiers    *modifiers.Registry
	manifestPath string
}

// New creates the ADD_ENV_VAR handler writing to the given manifest path.
func New(mods *modifiers.Registry, manifestPath string) *Handler {
	return &Handler{modifiers: mods, manifestPath: manifestPath}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionAddEnvVar)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	if action.Key == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "ADD_ENV_VAR requires a 'key'"))
	}

	if err := handlers.EnsureManifest(fs, h.manifestPath); err != nil {
		return types.Failure(err)
	}

	key := template.Substitute(action.Key, ctx)
	params := map[string]interface{}{
		"section": "env",
		"entries": map[string]interface{}{
			key: template.Substitute(action.Value, ctx),
		},
	}
	if err := h.modifiers.Apply(manifest.ModifierName, h.manifestPath, params, ctx, fs); err != nil {
		return types.Failure(err)
	}

	return types.Successf("added env var '"+key+"'", h.manifestPath)
}

var _ handlers.Handler = (*Handler)(nil)
