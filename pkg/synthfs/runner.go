package synthfs

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/types"
)

// DefaultCommandTimeout bounds commands whose spec carries no timeout.
const DefaultCommandTimeout = 5 * time.Minute

// Runner executes external commands with output capture and a
// graceful-then-forceful kill escalation on timeout.
type Runner struct {
	logger         zerolog.Logger
	dryRun         bool
	defaultTimeout time.Duration
}

// NewRunner creates a command runner. In dry-run mode commands are logged
// and reported as succeeding without being spawned. A non-positive timeout
// selects DefaultCommandTimeout.
func NewRunner(dryRun bool, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Runner{
		logger:         logging.GetLogger("synthfs.runner"),
		dryRun:         dryRun,
		defaultTimeout: timeout,
	}
}

// Run implements types.CommandRunner.
func (r *Runner) Run(ctx context.Context, spec types.CommandSpec) (types.CommandResult, error) {
	if spec.Command == "" {
		return types.CommandResult{}, errors.New(errors.ErrInvalidInput, "run requires a command")
	}

	r.logger.Info().
		Str("command", spec.Command).
		Strs("args", spec.Args).
		Str("workingDir", spec.Dir).
		Msg("Executing command")

	if r.dryRun {
		r.logger.Info().Msg("Dry run mode - command would be executed")
		return types.CommandResult{}, nil
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = r.defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)

	if spec.Dir != "" {
		if _, err := os.Stat(spec.Dir); os.IsNotExist(err) {
			return types.CommandResult{}, errors.Newf(errors.ErrFileAccess,
				"working directory does not exist: %s", spec.Dir)
		}
		cmd.Dir = spec.Dir
	}

	cmd.Env = os.Environ()
	for key, value := range spec.Env {
		cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", key, value))
	}

	// Interrupt first on timeout; the kill comes after WaitDelay.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = 10 * time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := types.CommandResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if stdout.Len() > 0 {
		r.logger.Debug().Str("output", stdout.String()).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		r.logger.Debug().Str("output", stderr.String()).Msg("Command stderr")
	}

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return result, errors.Newf(errors.ErrCommandTimeout,
				"command timed out after %s: %s", timeout, spec.Command)
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
			r.logger.Warn().
				Int("exitCode", result.ExitCode).
				Str("command", spec.Command).
				Msg("Command exited with non-zero status")
			return result, nil
		}
		return result, errors.Wrapf(err, errors.ErrCommandRun,
			"failed to execute command: %s", spec.Command)
	}

	r.logger.Debug().Str("command", spec.Command).Msg("Command completed")
	return result, nil
}

var _ types.CommandRunner = (*Runner)(nil)
