// Package handlers defines the action handler contract and the per-execution
// registry that dispatches actions by their type tag. Dispatch is a pure
// lookup: an unknown kind is a structured failure, never a panic, and no
// handler lets a panic escape its boundary.
package handlers

import (
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/registry"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler executes one kind of action. Handlers mutate files only through
// the passed VFS instance and report every outcome, including internal
// failures, as an ActionResult.
type Handler interface {
	// Name returns the action kind this handler serves
	Name() string

	// Handle executes the action against the staging filesystem
	Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult
}

// Registry maps action kinds to handlers for one execution unit. It is
// explicitly constructed and passed down; there is no package-level
// default, so two runs can never share handler state.
type Registry struct {
	handlers registry.Registry[Handler]
}

// NewRegistry creates an empty handler registry.
func NewRegistry() *Registry {
	return &Registry{handlers: registry.New[Handler]()}
}

// Register adds a handler under its own kind name.
func (r *Registry) Register(h Handler) error {
	return r.handlers.Register(h.Name(), h)
}

// Get returns the handler for the given action kind.
func (r *Registry) Get(kind types.ActionType) (Handler, error) {
	h, err := r.handlers.Get(string(kind))
	if err != nil {
		return nil, errors.Newf(errors.ErrHandlerUnknown, "no handler registered for action type '%s'", kind)
	}
	return h, nil
}

// Has reports whether a handler is registered for the kind.
func (r *Registry) Has(kind types.ActionType) bool {
	return r.handlers.Has(string(kind))
}

// List returns the registered action kinds in sorted order.
func (r *Registry) List() []string {
	return r.handlers.List()
}

// Dispatch looks up the action's handler and runs it. A panic inside a
// handler is converted into a failed result so one bad action cannot tear
// down the whole blueprint run.
func (r *Registry) Dispatch(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) (result types.ActionResult) {
	log := logging.GetLogger("handlers")

	h, err := r.Get(action.Type)
	if err != nil {
		return types.Failure(err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().
				Str("action", string(action.Type)).
				Interface("panic", rec).
				Msg("handler panicked")
			result = types.Failure(errors.Newf(errors.ErrInternal,
				"handler for '%s' panicked: %v", action.Type, rec))
		}
	}()

	log.Debug().Str("action", string(action.Type)).Str("path", action.Path).Msg("dispatching action")
	return h.Handle(action, ctx, projectRoot, fs)
}
