package runcommand

import (
	"context"
	"testing"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/filesystem"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	specs  []types.CommandSpec
	result types.CommandResult
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, spec types.CommandSpec) (types.CommandResult, error) {
	f.specs = append(f.specs, spec)
	return f.result, f.err
}

func testVFS() *vfs.VFS {
	return vfs.New(filesystem.NewMemoryFS(), vfs.Options{ProjectRoot: "/proj"})
}

func TestRunCommand(t *testing.T) {
	runner := &fakeRunner{}
	h := New(runner)

	res := h.Handle(types.Action{
		Type:    types.ActionRunCommand,
		Command: "git",
		Args:    []string{"init"},
	}, nil, "/proj", testVFS())

	require.True(t, res.Success, "run failed: %v", res.Error)
	require.Len(t, runner.specs, 1)
	assert.Equal(t, "git", runner.specs[0].Command)
	assert.Equal(t, []string{"init"}, runner.specs[0].Args)
	assert.Equal(t, "/proj", runner.specs[0].Dir)
}

func TestRunCommandWorkingDirOverride(t *testing.T) {
	runner := &fakeRunner{}
	h := New(runner)

	res := h.Handle(types.Action{
		Type:       types.ActionRunCommand,
		Command:    "npm",
		Args:       []string{"run", "build"},
		WorkingDir: "apps/web",
	}, nil, "/proj", testVFS())

	require.True(t, res.Success)
	assert.Equal(t, "apps/web", runner.specs[0].Dir)
}

func TestRunCommandSubstitutesPlaceholders(t *testing.T) {
	runner := &fakeRunner{}
	h := New(runner)
	ctx := types.ExecutionContext{"project": map[string]interface{}{"name": "acme"}}

	res := h.Handle(types.Action{
		Type:    types.ActionRunCommand,
		Command: "echo",
		Args:    []string{"{{project.name}}"},
	}, ctx, "/proj", testVFS())

	require.True(t, res.Success)
	assert.Equal(t, []string{"acme"}, runner.specs[0].Args)
}

func TestRunCommandNonZeroExit(t *testing.T) {
	runner := &fakeRunner{result: types.CommandResult{ExitCode: 2, Stderr: "fatal: not a repo"}}
	h := New(runner)

	res := h.Handle(types.Action{Type: types.ActionRunCommand, Command: "git"}, nil, "/proj", testVFS())

	assert.False(t, res.Success)
	assert.True(t, errors.IsErrorCode(res.Error, errors.ErrCommandRun))
	assert.Contains(t, res.Error.Error(), "fatal: not a repo")
}

func TestRunCommandRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New(errors.ErrCommandTimeout, "command timed out")}
	h := New(runner)

	res := h.Handle(types.Action{Type: types.ActionRunCommand, Command: "sleep"}, nil, "/proj", testVFS())

	assert.False(t, res.Success)
	assert.Contains(t, res.Error.Error(), "timed out")
}

func TestRunCommandValidation(t *testing.T) {
	h := New(&fakeRunner{})
	res := h.Handle(types.Action{Type: types.ActionRunCommand}, nil, "/proj", testVFS())
	assert.False(t, res.Success)
	assert.True(t, errors.IsErrorCode(res.Error, errors.ErrActionInvalid))
}
