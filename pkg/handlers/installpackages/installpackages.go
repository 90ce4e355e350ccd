// Package installpackages implements the INSTALL_PACKAGES handler, which
// shells out to the configured package manager.
package installpackages

import (
	"context"
	"fmt"
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Handler installs packages via the external package manager.
type Handler struct {
	runner  types.CommandRunner
	manager string
}

// New creates the INSTALL_PACKAGES handler. manager defaults to npm.
func New(runner types.CommandRunner, manager string) *Handler {
	if manager == "" {
		manager = "npm"
	}
	return &Handler{runner: runner, manager: manager}
}

// Name implements handlers.Handler
func (h *Handler) Name() string {
	return string(types.ActionInstallPackages)
}

// Handle implements handlers.Handler
func (h *Handler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	log := logging.GetLogger("handlers.installpackages")

	if h.runner == nil {
		return types.Failure(errors.New(errors.ErrInternal, "no command runner configured"))
	}

	// An empty package list means "install what the manifest declares".
	args := []string{"install"}
	if action.IsDev && len(action.Packages) > 0 {
		args = append(args, "--save-dev")
	}
	for _, pkg := range action.Packages {
		args = append(args, template.Substitute(pkg, ctx))
	}

	spec := types.CommandSpec{
		Command: h.manager,
		Args:    args,
		Dir:     projectRoot,
	}

	log.Info().Str("manager", h.manager).Strs("args", args).Msg("installing packages")

	res, err := h.runner.Run(context.Background(), spec)
	if err != nil {
		return types.Failure(errors.Wrapf(err, errors.ErrCommandRun,
			"%s %s failed", h.manager, strings.Join(args, " ")))
	}
	if res.ExitCode != 0 {
		return types.Failure(errors.Newf(errors.ErrCommandRun,
			"%s exited with code %d: %s", h.manager, res.ExitCode, res.Stderr))
	}

	return types.Successf(fmt.Sprintf("installed %d package(s)", len(action.Packages)))
}

var _ handlers.Handler = (*Handler)(nil)
