package types

import (
	"context"
	"io/fs"
	"time"
)

// FS is the narrow filesystem interface the staging layer reads through and
// flushes onto. Implementations exist for the OS filesystem and for
// afero-backed memory filesystems in tests.
type FS interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error
	MkdirAll(path string, perm fs.FileMode) error
	Remove(name string) error
}

// TemplateLoader resolves a named template inside a module to its raw text.
// Placeholder substitution happens after loading, in the engine.
type TemplateLoader interface {
	LoadTemplate(module, relPath string) (string, error)
}

// PathResolver turns a symbolic path key into one or more concrete paths.
// More than one path triggers fan-out: the executor clones the action once
// per resolved path.
type PathResolver interface {
	Resolve(key string) ([]string, error)
}

// CommandSpec describes one external process invocation.
type CommandSpec struct {
	Command string
	Args    []string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// CommandResult carries the observable outcome of a finished process.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// CommandRunner is the process-execution collaborator used by RUN_COMMAND
// and INSTALL_PACKAGES. Implementations own their timeout and kill
// escalation policy; the engine only consumes the result.
type CommandRunner interface {
	Run(ctx context.Context, spec CommandSpec) (CommandResult, error)
}
