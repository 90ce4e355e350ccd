// Package createfile implements the CREATE_FILE handler: it resolves content
// from an inline string or a named template, substitutes placeholders, and
// writes through the staging filesystem, applying the action's conflict
// strategy when the target already exists.
package createfile

import (
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/objlit"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler creates files in the staging filesystem. Merging is never done
// here: the "merge" conflict strategy synthesizes an ENHANCE_FILE action
// and delegates it to the enhance handler.
type Handler struct {
	loader  types.TemplateLoader
	enhance handlers.Handler
}

// New creates the CREATE_FILE handler. enhance receives the synthesized
// delegation actions; loader may be nil when no action uses templates.
func New(loader types.TemplateLoader, enhance handlers.Handler) *Handler {
	return &Handler{loader: loader, enhance: enhance}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionCreateFile)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	log := logging.GetLogger("handlers.createfile")

	if action.Path == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "CREATE_FILE requires a 'path'"))
	}

	path := template.Substitute(action.Path, ctx)

	content, err := h.resolveContent(action, ctx)
	if err != nil {
		return types.Failure(err)
	}

	if !fs.FileExists(path) {
		if err := fs.CreateFile(path, content); err != nil {
			return types.Failure(err)
		}
		return types.Successf("created "+path, path)
	}

	strategy := action.Strategy()
	log.Debug().Str("path", path).Str("strategy", string(strategy)).Msg("target exists, applying conflict strategy")

	switch strategy {
	case types.ConflictSkip:
		return types.ActionResult{Success: true, Skipped: true, Message: "skipped existing " + path}

	case types.ConflictReplace:
		if err := fs.ReplaceFile(path, content); err != nil {
			return types.Failure(err)
		}
		return types.Successf("replaced "+path, path)

	case types.ConflictMerge:
		return h.delegateMerge(action, path, content, ctx, projectRoot, fs)

	default:
		return types.Failure(errors.Newf(errors.ErrActionConflict, "file already exists: %s", path))
	}
}

// delegateMerge hands the conflict to the enhance handler via a synthesized
// ENHANCE_FILE action built from the action's merge instructions.
func (h *Handler) delegateMerge(action types.Action, path, content string, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	mi := action.MergeInstructions
	if mi == nil || mi.Modifier == "" {
		return types.Failure(errors.Newf(errors.ErrActionInvalid,
			"merge strategy for '%s' requires mergeInstructions with a modifier", path))
	}
	if h.enhance == nil {
		return types.Failure(errors.New(errors.ErrInternal, "no enhance handler wired for merge delegation"))
	}

	params := make(map[string]interface{}, len(mi.Params)+1)
	for k, v := range mi.Params {
		params[k] = v
	}
	if !hasPatchParam(params) {
		// The rendered content is the merge source. Coerce it into a
		// structured object when possible; raw source text otherwise.
		if obj, err := objlit.Coerce(content); err == nil {
			params["merge"] = obj.ToMap()
		} else {
			params["content"] = content
		}
	}

	delegated := types.Action{
		Type:     types.ActionEnhanceFile,
		Path:     path,
		Modifier: mi.Modifier,
		Params:   params,
	}

	res := h.enhance.Handle(delegated, ctx, projectRoot, fs)
	if !res.Success {
		if res.Error == nil {
			return types.Failure(errors.Newf(errors.ErrActionExecute,
				"merge of '%s' via modifier '%s' failed", path, mi.Modifier))
		}
		return types.Failure(errors.Wrapf(res.Error, errors.ErrActionExecute,
			"merge of '%s' via modifier '%s' failed", path, mi.Modifier))
	}
	return types.Successf("merged "+path, path)
}

func (h *Handler) resolveContent(action types.Action, ctx types.ExecutionContext) (string, error) {
	if action.Content != "" && action.Template != "" {
		return "", errors.New(errors.ErrActionInvalid, "CREATE_FILE accepts 'content' or 'template', not both")
	}

	raw := action.Content
	if action.Template != "" {
		if h.loader == nil {
			return "", errors.New(errors.ErrTemplateLoad, "no template loader configured")
		}
		loaded, err := h.loader.LoadTemplate(action.Module, action.Template)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrTemplateLoad,
				"failed to load template '%s' from module '%s'", action.Template, action.Module)
		}
		raw = loaded
	}

	return template.Substitute(raw, ctx), nil
}

func hasPatchParam(params map[string]interface{}) bool {
	for _, key := range []string{"merge", "content", "entries"} {
		if _, ok := params[key]; ok {
			return true
		}
	}
	return false
}

var _ handlers.Handler = (*Handler)(nil)
