// Package enhancefile implements the ENHANCE_FILE handler: it resolves the
// target file (falling back to an alternate source-file extension or creating
// an empty file) and applies a named modifier to it.
package enhancefile

import (
	"path/filepath"
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// alternate maps a source-file extension to the sibling extension tried when
// the exact target path is missing.
var alternate = map[string]string{
	".js":  ".ts",
	".ts":  ".js",
	".jsx": ".tsx",
	".tsx": ".jsx",
	".mjs": ".mts",
	".mts": ".mjs",
	".cjs": ".cts",
	".cts": ".cjs",
}

// Handler applies modifiers to files through the staging filesystem.
type Handler struct {
	modifiers *modifiers.Registry
}

// New creates the ENHANCE_FILE handler backed by the given modifier registry.
func New(mods *modifiers.Registry) *Handler {
	return &Handler{modifiers: mods}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionEnhanceFile)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	log := logging.GetLogger("handlers.enhancefile")

	if action.Path == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "ENHANCE_FILE requires a 'path'"))
	}
	if action.Modifier == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "ENHANCE_FILE requires a 'modifier'"))
	}

	path := template.Substitute(action.Path, ctx)

	target, err := h.resolveTarget(path, action.Fallback, fs)
	if err != nil {
		return types.Failure(err)
	}
	if target != path {
		log.Debug().Str("requested", path).Str("resolved", target).Msg("resolved enhance target")
	}

	if err := h.modifiers.Apply(action.Modifier, target, action.Params, ctx, fs); err != nil {
		return types.Failure(err)
	}

	return types.Successf("enhanced "+target, target)
}

// resolveTarget finds the file the modifier should run against: the exact
// path, the same basename with the alternate extension, or a freshly created
// empty file when the fallback allows it.
func (h *Handler) resolveTarget(path, fallback string, fs *vfs.VFS) (string, error) {
	if fs.FileExists(path) {
		return path, nil
	}

	if alt := alternatePath(path); alt != "" && fs.FileExists(alt) {
		return alt, nil
	}

	if fallback == "" || fallback == "create" {
		if err := fs.CreateFile(path, ""); err != nil {
			return "", err
		}
		return path, nil
	}

	return "", errors.Newf(errors.ErrFileNotFound, "enhance target not found: %s", path)
}

func alternatePath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	alt, ok := alternate[ext]
	if !ok {
		return ""
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + alt
}

var _ handlers.Handler = (*Handler)(nil)
