// Package dependency implements the ADD_DEPENDENCY handler. It never edits
// the manifest text itself: it ensures the manifest exists and delegates to
// the manifest-merge modifier scoped to the dependencies section.
package dependency

import (
	"fmt"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/modifiers/manifest"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler records package dependencies in the manifest.
type Handler struct {
	modifiers    *modifiers.Registry
	manifestPath string
}

// New creates the ADD_DEPENDENCY handler writing to the given manifest path.
func New(mods *modifiers.Registry, manifestPath string) *Handler {
	return &Handler{modifiers: mods, manifestPath: manifestPath}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionAddDependency)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	if len(action.Packages) == 0 {
		return types.Failure(errors.New(errors.ErrActionInvalid, "ADD_DEPENDENCY requires a non-empty 'packages' list"))
	}

	if err := handlers.EnsureManifest(fs, h.manifestPath); err != nil {
		return types.Failure(err)
	}

	entries := make(map[string]interface{}, len(action.Packages))
	for _, pkg := range action.Packages {
		entries[template.Substitute(pkg, ctx)] = "latest"
	}

	section := "dependencies"
	if action.IsDev {
		section = "devDependencies"
	}

	params := map[string]interface{}{
		"section": section,
		"entries": entries,
		// already-pinned versions are never downgraded to "latest"
		"keepExisting": true,
	}
	if err := h.modifiers.Apply(manifest.ModifierName, h.manifestPath, params, ctx, fs); err != nil {
		return types.Failure(err)
	}

	return types.Successf(fmt.Sprintf("added %d package(s) to %s", len(entries), section), h.manifestPath)
}

var _ handlers.Handler = (*Handler)(nil)
