// Package runcommand implements the RUN_COMMAND handler. Process spawning
// lives in the command-runner collaborator; this handler only shapes the
// invocation and interprets the outcome.
package runcommand

import (
	"context"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler runs external commands in the project root.
type Handler struct {
	runner types.CommandRunner
}

// New creates the RUN_COMMAND handler backed by the given runner.
func New(runner types.CommandRunner) *Handler {
	return &Handler{runner: runner}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionRunCommand)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	log := logging.GetLogger("handlers.runcommand")

	if action.Command == "" {
		return types.Failure(errors.New(errors.ErrActionInvalid, "RUN_COMMAND requires a 'command'"))
	}
	if h.runner == nil {
		return types.Failure(errors.New(errors.ErrInternal, "no command runner configured"))
	}

	args := make([]string, len(action.Args))
	for i, a := range action.Args {
		args[i] = template.Substitute(a, ctx)
	}

	dir := projectRoot
	if action.WorkingDir != "" {
		dir = template.Substitute(action.WorkingDir, ctx)
	}

	spec := types.CommandSpec{
		Command: template.Substitute(action.Command, ctx),
		Args:    args,
		Dir:     dir,
	}

	log.Info().Str("command", spec.Command).Strs("args", spec.Args).Str("dir", dir).Msg("running command")

	res, err := h.runner.Run(context.Background(), spec)
	if err != nil {
		return types.Failure(errors.Wrapf(err, errors.ErrCommandRun, "command '%s' failed", spec.Command))
	}
	if res.ExitCode != 0 {
		return types.Failure(errors.Newf(errors.ErrCommandRun,
			"command '%s' exited with code %d: %s", spec.Command, res.ExitCode, res.Stderr))
	}

	return types.Successf("ran " + spec.Command)
}

var _ handlers.Handler = (*Handler)(nil)
