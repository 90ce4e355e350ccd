// Package registry assembles the default modifier set. A fresh registry is
// built per execution unit; nothing here is global state.
package registry

import (
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/modifiers/jsonmerge"
	"github.com/schematic-dev/schematic/pkg/modifiers/manifest"
	"github.com/schematic-dev/schematic/pkg/modifiers/sourceedit"
)

// New returns a registry with every built-in modifier registered.
func New() *modifiers.Registry {
	reg := modifiers.NewRegistry()

	// Registration of built-ins cannot collide; ignoring the error keeps
	// the constructor chainable.
	_ = reg.Register(jsonmerge.New())
	_ = reg.Register(manifest.New())
	_ = reg.Register(sourceedit.New())

	return reg
}
