package vfs

import (
	"encoding/json"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/types"
)

// DefaultMaxPreloadBytes caps the size of files loaded eagerly during
// preload. Larger files are skipped and loaded lazily if actually read.
const DefaultMaxPreloadBytes = 1 << 20

// Entry is one staged file in the overlay.
type Entry struct {
	// Path is the normalized overlay key
	Path string

	// Content is the staged text content
	Content string

	// Exists is false for tombstones: files deleted during the run
	Exists bool

	// LastModified records the last overlay mutation
	LastModified time.Time
}

// Options configure a VFS instance for one execution unit.
type Options struct {
	// ProjectRoot is the absolute on-disk location of the target project
	ProjectRoot string

	// ContextRoot addresses the current package inside the project
	// (e.g. "apps/web" in a monorepo). Empty means the project root itself.
	ContextRoot string

	// PackageRoots are the top-level segments treated as monorepo-absolute
	// prefixes (e.g. "packages", "apps")
	PackageRoots []string

	// MaxPreloadBytes overrides DefaultMaxPreloadBytes when positive
	MaxPreloadBytes int64
}

// VFS is the staging filesystem. It is exclusively owned by one execution
// unit and must not be shared between concurrently running executors.
type VFS struct {
	fs           types.FS
	logger       zerolog.Logger
	projectRoot  string
	contextRoot  string
	packageRoots []string
	maxPreload   int64
	entries      map[string]*Entry
}

// New creates an empty VFS over the given disk filesystem
func New(fs types.FS, opts Options) *VFS {
	maxPreload := opts.MaxPreloadBytes
	if maxPreload <= 0 {
		maxPreload = DefaultMaxPreloadBytes
	}
	return &VFS{
		fs:           fs,
		logger:       logging.GetLogger("vfs"),
		projectRoot:  opts.ProjectRoot,
		contextRoot:  path.Clean(filepath.ToSlash(opts.ContextRoot)),
		packageRoots: opts.PackageRoots,
		maxPreload:   maxPreload,
		entries:      make(map[string]*Entry),
	}
}

// InitializeWithFiles eagerly loads a known working set from disk into the
// overlay. Missing files are skipped silently (they may be created later in
// the same run); files above the preload cap are skipped and read lazily.
func (v *VFS) InitializeWithFiles(paths []string) error {
	for _, p := range paths {
		n := v.NormalizePath(p)
		if _, loaded := v.entries[n]; loaded {
			continue
		}

		abs := v.ResolveAbsolute(p)
		info, err := v.fs.Stat(abs)
		if err != nil {
			continue
		}
		if info.IsDir() {
			continue
		}
		if info.Size() > v.maxPreload {
			v.logger.Debug().
				Str("path", n).
				Int64("size", info.Size()).
				Msg("Skipping oversized file during preload")
			continue
		}

		data, err := v.fs.ReadFile(abs)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "failed to preload file: %s", n)
		}

		v.entries[n] = &Entry{
			Path:         n,
			Content:      string(data),
			Exists:       true,
			LastModified: info.ModTime(),
		}
		v.logger.Trace().Str("path", n).Msg("Preloaded file")
	}
	return nil
}

// ReadFile returns the overlay content for a path, lazily loading it from
// disk on first access.
func (v *VFS) ReadFile(p string) (string, error) {
	n := v.NormalizePath(p)

	if entry, ok := v.entries[n]; ok {
		if !entry.Exists {
			return "", errors.Newf(errors.ErrFileNotFound, "file not found: %s", n)
		}
		return entry.Content, nil
	}

	abs := v.ResolveAbsolute(p)
	data, err := v.fs.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrFileNotFound, "file not found: %s", n)
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read file: %s", n)
	}

	entry := &Entry{
		Path:         n,
		Content:      string(data),
		Exists:       true,
		LastModified: time.Now(),
	}
	v.entries[n] = entry
	return entry.Content, nil
}

// WriteFile stores content at a path, overwriting any staged content.
// Writing over an existing JSON entry shallow-merges the parsed objects,
// with the new content winning on key collision.
func (v *VFS) WriteFile(p, content string) error {
	n := v.NormalizePath(p)

	if entry, ok := v.entries[n]; ok && entry.Exists && isJSONPath(n) {
		if merged, ok := shallowMergeJSON(entry.Content, content); ok {
			content = merged
		}
	}

	v.entries[n] = &Entry{
		Path:         n,
		Content:      content,
		Exists:       true,
		LastModified: time.Now(),
	}
	v.logger.Trace().Str("path", n).Int("size", len(content)).Msg("Staged write")
	return nil
}

// ReplaceFile stores content at a path unconditionally, bypassing the JSON
// shallow-merge that WriteFile applies to staged manifests.
func (v *VFS) ReplaceFile(p, content string) error {
	n := v.NormalizePath(p)
	v.entries[n] = &Entry{
		Path:         n,
		Content:      content,
		Exists:       true,
		LastModified: time.Now(),
	}
	v.logger.Trace().Str("path", n).Int("size", len(content)).Msg("Staged replace")
	return nil
}

// CreateFile stores content at a path that must not already exist in the
// overlay.
func (v *VFS) CreateFile(p, content string) error {
	n := v.NormalizePath(p)

	if entry, ok := v.entries[n]; ok && entry.Exists {
		return errors.Newf(errors.ErrFileExists, "file already exists: %s", n)
	}

	v.entries[n] = &Entry{
		Path:         n,
		Content:      content,
		Exists:       true,
		LastModified: time.Now(),
	}
	return nil
}

// AppendToFile appends content, creating the file if it does not exist.
func (v *VFS) AppendToFile(p, content string) error {
	return v.concat(p, content, false)
}

// PrependToFile prepends content, creating the file if it does not exist.
func (v *VFS) PrependToFile(p, content string) error {
	return v.concat(p, content, true)
}

func (v *VFS) concat(p, content string, prepend bool) error {
	existing, err := v.ReadFile(p)
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrFileNotFound) {
			existing = ""
		} else {
			return err
		}
	}

	next := existing + content
	if prepend {
		next = content + existing
	}

	n := v.NormalizePath(p)
	v.entries[n] = &Entry{
		Path:         n,
		Content:      next,
		Exists:       true,
		LastModified: time.Now(),
	}
	return nil
}

// DeleteFile stages the removal of a file. The tombstone hides the file
// from reads and is applied to disk at flush time.
func (v *VFS) DeleteFile(p string) {
	n := v.NormalizePath(p)
	v.entries[n] = &Entry{
		Path:         n,
		Exists:       false,
		LastModified: time.Now(),
	}
}

// FileExists checks the overlay first, then the disk.
func (v *VFS) FileExists(p string) bool {
	n := v.NormalizePath(p)
	if entry, ok := v.entries[n]; ok {
		return entry.Exists
	}

	info, err := v.fs.Stat(v.ResolveAbsolute(p))
	return err == nil && !info.IsDir()
}

// Entries returns the staged entries sorted by path.
func (v *VFS) Entries() []*Entry {
	out := make([]*Entry, 0, len(v.entries))
	for _, entry := range v.entries {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Len returns the number of staged entries.
func (v *VFS) Len() int {
	return len(v.entries)
}

// FlushToDisk commits every overlay entry to its resolved absolute
// location, creating parent directories as needed. The first failing file
// aborts the flush; files already written stay written (no rollback).
func (v *VFS) FlushToDisk() error {
	for _, entry := range v.Entries() {
		abs := v.ResolveAbsolute(entry.Path)

		if !entry.Exists {
			if err := v.fs.Remove(abs); err != nil && !os.IsNotExist(err) {
				return errors.Wrapf(err, errors.ErrFlushFailed, "failed to delete file: %s", entry.Path)
			}
			continue
		}

		if err := v.fs.MkdirAll(filepath.Dir(abs), 0755); err != nil {
			return errors.Wrapf(err, errors.ErrFlushFailed, "failed to create parent directory for: %s", entry.Path)
		}
		if err := v.fs.WriteFile(abs, []byte(entry.Content), 0644); err != nil {
			return errors.Wrapf(err, errors.ErrFlushFailed, "failed to write file: %s", entry.Path)
		}
		v.logger.Debug().Str("path", entry.Path).Str("target", abs).Msg("Flushed file")
	}
	return nil
}

func isJSONPath(p string) bool {
	return path.Ext(p) == ".json"
}

// shallowMergeJSON merges two JSON object documents one level deep, with
// next winning on key collision. Returns ok=false when either side is not
// a JSON object, in which case the caller overwrites instead.
func shallowMergeJSON(prev, next string) (string, bool) {
	var prevObj, nextObj map[string]interface{}
	if err := json.Unmarshal([]byte(prev), &prevObj); err != nil {
		return "", false
	}
	if err := json.Unmarshal([]byte(next), &nextObj); err != nil {
		return "", false
	}

	for k, val := range nextObj {
		prevObj[k] = val
	}

	out, err := json.MarshalIndent(prevObj, "", "  ")
	if err != nil {
		return "", false
	}
	return string(out), true
}
