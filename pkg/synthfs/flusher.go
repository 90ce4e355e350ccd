// Package synthfs bridges the engine to real side effects: flushing staged
// filesystem state through a synthfs pipeline and running external commands.
package synthfs

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	"github.com/arthur-debert/synthfs/pkg/synthfs/core"
	"github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/arthur-debert/synthfs/pkg/synthfs/operations"
	"github.com/rs/zerolog"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// FlushExecutor writes staged VFS state to disk through a synthfs pipeline.
type FlushExecutor struct {
	logger     zerolog.Logger
	dryRun     bool
	filesystem synthfs.FileSystem
}

// NewFlushExecutor creates a synthfs-based flusher. In dry-run mode the
// staged operations are logged but nothing touches the disk.
func NewFlushExecutor(dryRun bool) *FlushExecutor {
	return &FlushExecutor{
		logger:     logging.GetLogger("synthfs"),
		dryRun:     dryRun,
		filesystem: filesystem.NewOSFileSystem("/"), // Use root filesystem
	}
}

// Flush materializes every staged entry: parent directories are created,
// tombstoned files are removed, everything else is written. A failure in the
// pipeline aborts the flush; files already written stay written.
func (e *FlushExecutor) Flush(v *vfs.VFS) error {
	entries := v.Entries()
	if len(entries) == 0 {
		e.logger.Info().Msg("Nothing staged, skipping flush")
		return nil
	}

	if e.dryRun {
		for _, entry := range entries {
			target := v.ResolveAbsolute(entry.Path)
			if entry.Exists {
				e.logger.Info().Str("target", target).Int("size", len(entry.Content)).Msg("Would write file")
			} else {
				e.logger.Info().Str("target", target).Msg("Would delete file")
			}
		}
		return nil
	}

	synthOps, err := e.buildOperations(v, entries)
	if err != nil {
		return err
	}
	if len(synthOps) == 0 {
		e.logger.Info().Msg("No operations to execute")
		return nil
	}

	pipeline := synthfs.NewMemPipeline()
	for _, op := range synthOps {
		if err := pipeline.Add(op); err != nil {
			return errors.Wrap(err, errors.ErrFlushFailed, "failed to add operation to pipeline")
		}
	}

	executor := synthfs.NewExecutor()
	e.logger.Info().Int("operationCount", len(synthOps)).Msg("Flushing staged files")

	result := executor.Run(context.Background(), pipeline, e.filesystem)
	if result.GetError() != nil {
		e.logger.Error().Err(result.GetError()).Msg("Flush pipeline failed")
		return errors.Wrap(result.GetError(), errors.ErrFlushFailed, "failed to flush staged files")
	}

	e.logger.Info().Msg("All staged files flushed")
	return nil
}

func (e *FlushExecutor) buildOperations(v *vfs.VFS, entries []*vfs.Entry) ([]synthfs.Operation, error) {
	var ops []synthfs.Operation

	// Parent directories first, shallowest to deepest, each at most once.
	for _, dir := range missingParents(v, entries) {
		op, err := e.createDirOperation(dir)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	for _, entry := range entries {
		target := v.ResolveAbsolute(entry.Path)

		if !entry.Exists {
			if _, err := os.Lstat(target); os.IsNotExist(err) {
				continue
			}
			ops = append(ops, e.deleteOperation(target))
			continue
		}

		// synthfs validation rejects creating over an existing file, so
		// clear the target the same way force mode does.
		if _, err := os.Lstat(target); err == nil {
			if err := os.Remove(target); err != nil {
				return nil, errors.Wrapf(err, errors.ErrFlushFailed,
					"failed to replace existing file: %s", target)
			}
		}

		op, err := e.createFileOperation(target, entry.Content)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}

	return ops, nil
}

func (e *FlushExecutor) createFileOperation(target, content string) (synthfs.Operation, error) {
	relPath, err := filepath.Rel("/", target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", target)
	}

	e.logger.Debug().Str("target", target).Int("contentLen", len(content)).Msg("Creating write file operation")

	opID := core.OperationID(fmt.Sprintf("write-file-%s", target))
	createOp := operations.NewCreateFileOperation(opID, relPath)
	createOp.SetItem(&fileItem{
		path:    relPath,
		content: []byte(content),
		mode:    0644,
	})

	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

func (e *FlushExecutor) createDirOperation(target string) (synthfs.Operation, error) {
	relPath, err := filepath.Rel("/", target)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "failed to convert path: %s", target)
	}

	e.logger.Debug().Str("target", target).Msg("Creating directory operation")

	opID := core.OperationID(fmt.Sprintf("create-dir-%s", target))
	createOp := operations.NewCreateDirectoryOperation(opID, relPath)
	createOp.SetItem(&directoryItem{
		path: relPath,
		mode: 0755,
	})

	return synthfs.NewOperationsPackageAdapter(createOp), nil
}

func (e *FlushExecutor) deleteOperation(target string) synthfs.Operation {
	relPath, _ := filepath.Rel("/", target)

	e.logger.Debug().Str("target", target).Msg("Creating delete operation")

	opID := core.OperationID(fmt.Sprintf("delete-%s", target))
	deleteOp := operations.NewDeleteOperation(opID, relPath)
	return synthfs.NewOperationsPackageAdapter(deleteOp)
}

// missingParents returns the directories that must exist before the staged
// files can be written, shallowest first.
func missingParents(v *vfs.VFS, entries []*vfs.Entry) []string {
	seen := map[string]bool{}
	var dirs []string

	for _, entry := range entries {
		if !entry.Exists {
			continue
		}
		dir := filepath.Dir(v.ResolveAbsolute(entry.Path))
		for dir != "/" && dir != "." && !seen[dir] {
			seen[dir] = true
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				break
			}
			dirs = append(dirs, dir)
			dir = filepath.Dir(dir)
		}
	}

	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) < len(dirs[j]) })
	return dirs
}

// fileItem implements the interface needed for file operations
type fileItem struct {
	path    string
	content []byte
	mode    fs.FileMode
}

func (f *fileItem) Path() string       { return f.path }
func (f *fileItem) Type() string       { return "file" }
func (f *fileItem) Content() []byte    { return f.content }
func (f *fileItem) Mode() fs.FileMode  { return f.mode }
func (f *fileItem) IsDir() bool        { return false }
func (f *fileItem) ModTime() time.Time { return time.Now() }
func (f *fileItem) Size() int64        { return int64(len(f.content)) }

// directoryItem implements the interface needed for directory operations
type directoryItem struct {
	path string
	mode fs.FileMode
}

func (d *directoryItem) Path() string       { return d.path }
func (d *directoryItem) Type() string       { return "directory" }
func (d *directoryItem) Mode() fs.FileMode  { return d.mode }
func (d *directoryItem) IsDir() bool        { return true }
func (d *directoryItem) ModTime() time.Time { return time.Now() }
func (d *directoryItem) Size() int64        { return 0 }
