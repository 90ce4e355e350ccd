// Package fileops implements the small file-mutation handlers that need no
// collaborators: APPEND_FILE, PREPEND_FILE, and DELETE_FILE.
package fileops

import (
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// AppendHandler appends content to a file, creating it if absent.
type AppendHandler struct{}

// NewAppend creates the APPEND_FILE handler.
func NewAppend() *AppendHandler { return &AppendHandler{} }

// Name implements handlers.Handler
func (h *AppendHandler) Name() string { return string(types.ActionAppendFile) }

// Handle implements handlers.Handler
func (h *AppendHandler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	path, content, err := pathAndContent(action, ctx)
	if err != nil {
		return types.Failure(err)
	}
	if err := fs.AppendToFile(path, content); err != nil {
		return types.Failure(err)
	}
	return types.Successf("appended to "+path, path)
}

// PrependHandler prepends content to a file, creating it if absent.
type PrependHandler struct{}

// NewPrepend creates the PREPEND_FILE handler.
func NewPrepend() *PrependHandler { return &PrependHandler{} }

// Name implements handlers.Handler
func (h *PrependHandler) Name() string { return string(types.ActionPrependFile) }

// Handle implements handlers.Handler
func (h *PrependHandler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	path, content, err := pathAndContent(action, ctx)
	if err != nil {
		return types.Failure(err)
	}
	if err := fs.PrependToFile(path, content); err != nil {
		return types.Failure(err)
	}
	return types.Successf("prepended to "+path, path)
}

// DeleteHandler stages the removal of a file.
type DeleteHandler struct{}

// NewDelete creates the DELETE_FILE handler.
func NewDelete() *DeleteHandler { return &DeleteHandler{} }

// Name implements handlers.Handler
func (h *DeleteHandler) Name() string { return string(types.ActionDeleteFile) }

// Handle implements handlers.Handler
func (h *DeleteHandler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	if action.Path == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "DELETE_FILE requires a 'path'"))
	}
	path := template.Substitute(action.Path, ctx)
	fs.DeleteFile(path)
	return types.Successf("deleted "+path, path)
}

func pathAndContent(action types.Action, ctx types.ExecutionContext) (string, string, error) {
	if action.Path == "" {
		return "", "", errors.Newf(errors.ErrActionInvalid, "%s requires a 'path'", action.Type)
	}
	return template.Substitute(action.Path, ctx), template.Substitute(action.Content, ctx), nil
}

var (
	_ handlers.Handler = (*AppendHandler)(nil)
	_ handlers.Handler = (*PrependHandler)(nil)
	_ handlers.Handler = (*DeleteHandler)(nil)
)
