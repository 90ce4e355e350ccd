// Package executor runs blueprints: it expands fan-out actions, preloads the
// staging filesystem, evaluates conditions, dispatches each action to its
// handler, and aggregates the results. Flushing staged state to disk is
// deliberately not its job; see Commit.
package executor

import (
	"github.com/rs/zerolog"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// FailurePolicy decides what happens to the rest of a blueprint after one
// action fails.
type FailurePolicy string

const (
	// ContinueOnError runs every remaining action and reports all failures
	// at the end. The blueprint still fails as a whole.
	ContinueOnError FailurePolicy = "continue"

	// AbortOnFirstError stops dispatching at the first failed action.
	AbortOnFirstError FailurePolicy = "abort"
)

// Flusher materializes staged VFS state. The production implementation runs
// a synthfs pipeline; tests use spies.
type Flusher interface {
	Flush(v *vfs.VFS) error
}

// Options configures an Executor.
type Options struct {
	// Handlers dispatches actions by kind. Required.
	Handlers *handlers.Registry

	// Resolver expands symbolic path keys. Optional; actions carrying a
	// pathKey fail when it is nil.
	Resolver types.PathResolver

	// Policy defaults to ContinueOnError.
	Policy FailurePolicy

	// ManifestPath is always preloaded. Defaults to package.json.
	ManifestPath string
}

// Executor runs action lists against a staging filesystem. One executor may
// run many blueprints, but each run owns its VFS exclusively.
type Executor struct {
	handlers     *handlers.Registry
	resolver     types.PathResolver
	policy       FailurePolicy
	manifestPath string
	logger       zerolog.Logger
}

// New creates an executor.
func New(opts Options) *Executor {
	if opts.Policy == "" {
		opts.Policy = ContinueOnError
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = "package.json"
	}
	return &Executor{
		handlers:     opts.Handlers,
		resolver:     opts.Resolver,
		policy:       opts.Policy,
		manifestPath: opts.ManifestPath,
		logger:       logging.GetLogger("executor"),
	}
}

// Execute runs one blueprint's actions in order against the given VFS. The
// returned result carries every action outcome; Success is true iff no
// action failed. Nothing is written to disk here.
func (e *Executor) Execute(blueprint string, actions []types.Action, ctx types.ExecutionContext, projectRoot string, v *vfs.VFS) *types.ExecutionResult {
	result := &types.ExecutionResult{Blueprint: blueprint, Success: true}

	e.logger.Info().
		Str("blueprint", blueprint).
		Int("actions", len(actions)).
		Msg("Executing blueprint")

	expanded := e.expand(actions, ctx, result)

	if err := v.InitializeWithFiles(e.preloadPaths(expanded, ctx)); err != nil {
		result.Record(types.Failure(errors.Wrap(err, errors.ErrFileAccess, "failed to preload working set")))
		return result
	}

	for _, action := range expanded {
		actionCtx := template.MergeContext(ctx, action.Context)

		if !template.EvaluateCondition(action.Condition, actionCtx) {
			e.logger.Debug().
				Str("action", string(action.Type)).
				Str("condition", action.Condition).
				Msg("Condition falsy, skipping action")
			result.Record(types.ActionResult{Success: true, Skipped: true, Message: "condition not met"})
			continue
		}

		res := e.handlers.Dispatch(action, actionCtx, projectRoot, v)
		result.Record(res)

		if !res.Success {
			e.logger.Warn().
				Str("blueprint", blueprint).
				Str("action", string(action.Type)).
				Err(res.Error).
				Msg("Action failed")
			if e.policy == AbortOnFirstError {
				break
			}
		}
	}

	e.logger.Info().
		Str("blueprint", blueprint).
		Bool("success", result.Success).
		Int("errors", len(result.Errors)).
		Msg("Blueprint finished")
	return result
}

// expand flattens forEach and path-key fan-outs into a concrete, ordered
// action list. Expansion failures are recorded on the result and the
// offending action is dropped.
func (e *Executor) expand(actions []types.Action, ctx types.ExecutionContext, result *types.ExecutionResult) []types.Action {
	var out []types.Action

	for _, action := range actions {
		if action.ForEach != "" {
			clones, err := e.expandForEach(action, ctx)
			if err != nil {
				result.Record(types.Failure(err))
				continue
			}
			for _, clone := range clones {
				out = append(out, e.expandPathKey(clone, result)...)
			}
			continue
		}

		out = append(out, e.expandPathKey(action, result)...)
	}

	return out
}

// expandForEach clones the action once per element of the resolved array,
// substituting {{item}} in every string field. The element is also exposed
// as "item" in the clone's context so handlers and conditions can reach it.
func (e *Executor) expandForEach(action types.Action, ctx types.ExecutionContext) ([]types.Action, error) {
	value, ok := template.MergeContext(ctx, action.Context).Lookup(action.ForEach)
	if !ok {
		e.logger.Warn().Str("forEach", action.ForEach).Msg("forEach path not found in context, skipping action")
		return nil, nil
	}

	items, ok := value.([]interface{})
	if !ok {
		return nil, errors.Newf(errors.ErrActionInvalid,
			"forEach path '%s' must resolve to an array", action.ForEach)
	}

	clones := make([]types.Action, 0, len(items))
	for _, item := range items {
		clone := action
		clone.ForEach = ""

		itemCtx := types.ExecutionContext{"item": item}
		substituteStringFields(&clone, itemCtx)

		override := make(map[string]interface{}, len(action.Context)+1)
		for k, v := range action.Context {
			override[k] = v
		}
		override["item"] = item
		clone.Context = override

		clones = append(clones, clone)
	}
	return clones, nil
}

// expandPathKey resolves a symbolic path key into one clone per concrete
// path. Actions without a pathKey pass through unchanged.
func (e *Executor) expandPathKey(action types.Action, result *types.ExecutionResult) []types.Action {
	if action.PathKey == "" {
		return []types.Action{action}
	}
	if e.resolver == nil {
		result.Record(types.Failure(errors.Newf(errors.ErrActionInvalid,
			"action uses pathKey '%s' but no path resolver is configured", action.PathKey)))
		return nil
	}

	paths, err := e.resolver.Resolve(action.PathKey)
	if err != nil {
		result.Record(types.Failure(errors.Wrapf(err, errors.ErrActionInvalid,
			"failed to resolve pathKey '%s'", action.PathKey)))
		return nil
	}

	clones := make([]types.Action, 0, len(paths))
	for _, p := range paths {
		clone := action
		clone.PathKey = ""
		clone.Path = p
		clones = append(clones, clone)
	}
	return clones
}

// preloadPaths computes the working set the VFS should load before any
// action runs. The package manifest is always part of it; missing files are
// skipped by the preload itself.
func (e *Executor) preloadPaths(actions []types.Action, ctx types.ExecutionContext) []string {
	seen := map[string]bool{}
	paths := []string{e.manifestPath}
	seen[e.manifestPath] = true

	for _, action := range actions {
		switch action.Type {
		case types.ActionCreateFile, types.ActionEnhanceFile, types.ActionAppendFile, types.ActionPrependFile:
		default:
			continue
		}
		if action.Path == "" {
			continue
		}
		p := template.Substitute(action.Path, template.MergeContext(ctx, action.Context))
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	return paths
}

// substituteStringFields applies placeholder substitution to every string
// field of the action in place. Condition is left alone: it is evaluated as
// a context path later, against a context that already carries the item.
func substituteStringFields(a *types.Action, ctx types.ExecutionContext) {
	sub := func(s string) string { return template.Substitute(s, ctx) }

	a.Path = sub(a.Path)
	a.PathKey = sub(a.PathKey)
	a.Content = sub(a.Content)
	a.Template = sub(a.Template)
	a.Module = sub(a.Module)
	a.Modifier = sub(a.Modifier)
	a.Fallback = sub(a.Fallback)
	a.Name = sub(a.Name)
	a.Command = sub(a.Command)
	a.WorkingDir = sub(a.WorkingDir)
	a.Key = sub(a.Key)
	a.Value = sub(a.Value)

	if len(a.Args) > 0 {
		args := make([]string, len(a.Args))
		for i, arg := range a.Args {
			args[i] = sub(arg)
		}
		a.Args = args
	}
	if len(a.Packages) > 0 {
		pkgs := make([]string, len(a.Packages))
		for i, pkg := range a.Packages {
			pkgs[i] = sub(pkg)
		}
		a.Packages = pkgs
	}

	a.Params = substituteValues(a.Params, ctx)
	if a.MergeInstructions != nil {
		mi := *a.MergeInstructions
		mi.Params = substituteValues(mi.Params, ctx)
		a.MergeInstructions = &mi
	}
}

// substituteValues rewrites every string leaf of a params tree, so merge
// and modifier parameters can carry placeholders too. The input maps are
// never mutated; clones share the unchanged subtrees.
func substituteValues(m map[string]interface{}, ctx types.ExecutionContext) map[string]interface{} {
	if len(m) == 0 {
		return m
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = substituteValue(v, ctx)
	}
	return out
}

func substituteValue(v interface{}, ctx types.ExecutionContext) interface{} {
	switch val := v.(type) {
	case string:
		return template.Substitute(val, ctx)
	case map[string]interface{}:
		return substituteValues(val, ctx)
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = substituteValue(item, ctx)
		}
		return out
	default:
		return v
	}
}

// Commit flushes staged VFS state after a successful run. A failed result
// refuses to flush, preserving atomicity at blueprint granularity.
func Commit(result *types.ExecutionResult, v *vfs.VFS, flusher Flusher) error {
	if result == nil || !result.Success {
		return errors.New(errors.ErrFlushFailed, "blueprint failed, staged state discarded")
	}
	return flusher.Flush(v)
}
