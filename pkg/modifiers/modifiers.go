// Package modifiers defines the content-merge strategy contract and the
// registry handlers resolve strategies from. A modifier is stateless: it
// transforms the content of one file given parameters, and it touches files
// only through the staging filesystem it is handed.
package modifiers

import (
	"path"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/registry"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// Modifier is a named content-merge strategy.
type Modifier interface {
	// Name returns the unique name handlers refer to this modifier by
	Name() string

	// SupportsFileType reports whether the modifier can operate on the file
	SupportsFileType(path string) bool

	// ValidateParams checks the params before Execute runs
	ValidateParams(params map[string]interface{}) error

	// Execute transforms the file's content in place through the VFS
	Execute(path string, params map[string]interface{}, ctx types.ExecutionContext, fs *vfs.VFS) error
}

// Registry holds the modifiers available to one execution unit.
type Registry struct {
	reg registry.Registry[Modifier]
}

// NewRegistry creates an empty modifier registry
func NewRegistry() *Registry {
	return &Registry{reg: registry.New[Modifier]()}
}

// Register adds a modifier under its own name
func (r *Registry) Register(m Modifier) error {
	return r.reg.Register(m.Name(), m)
}

// Get retrieves a modifier by name
func (r *Registry) Get(name string) (Modifier, error) {
	m, err := r.reg.Get(name)
	if err != nil {
		return nil, errors.Newf(errors.ErrModifierNotFound, "modifier '%s' is not registered", name)
	}
	return m, nil
}

// Has checks if a modifier is registered
func (r *Registry) Has(name string) bool {
	return r.reg.Has(name)
}

// List returns the registered modifier names in sorted order
func (r *Registry) List() []string {
	return r.reg.List()
}

// Clear removes all modifiers
func (r *Registry) Clear() {
	r.reg.Clear()
}

// Apply validates and runs a named modifier against one file. This is the
// single entry point handlers go through, so the supports/validate pair is
// always checked before Execute.
func (r *Registry) Apply(name, filePath string, params map[string]interface{}, ctx types.ExecutionContext, fs *vfs.VFS) error {
	m, err := r.Get(name)
	if err != nil {
		return err
	}

	if !m.SupportsFileType(filePath) {
		return errors.Newf(errors.ErrModifierInvalid,
			"modifier '%s' does not support file type of '%s'", name, filePath)
	}
	if err := m.ValidateParams(params); err != nil {
		return errors.Wrapf(err, errors.ErrModifierInvalid,
			"invalid params for modifier '%s'", name)
	}

	if err := m.Execute(filePath, params, ctx, fs); err != nil {
		return errors.Wrapf(err, errors.ErrModifierExecute,
			"modifier '%s' failed on '%s'", name, filePath)
	}
	return nil
}

// Base carries the shared pieces of a modifier implementation: its name,
// the file extensions it accepts, and read/write helpers that round-trip
// through the VFS only.
type Base struct {
	name       string
	extensions []string
}

// NewBase creates a Base for a modifier accepting the given extensions.
// An empty extension list accepts every file type.
func NewBase(name string, extensions ...string) Base {
	return Base{name: name, extensions: extensions}
}

// Name returns the modifier name
func (b Base) Name() string {
	return b.name
}

// SupportsFileType matches the target's extension against the accepted set
func (b Base) SupportsFileType(p string) bool {
	if len(b.extensions) == 0 {
		return true
	}
	ext := path.Ext(p)
	for _, e := range b.extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile reads the working copy of a file through the VFS
func (b Base) ReadFile(p string, fs *vfs.VFS) (string, error) {
	return fs.ReadFile(p)
}

// WriteFile writes the transformed content back through the VFS
func (b Base) WriteFile(p, content string, fs *vfs.VFS) error {
	return fs.WriteFile(p, content)
}
