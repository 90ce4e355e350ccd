// Package registry builds the default handler set for one execution unit.
package registry

import (
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/handlers/createfile"
	"github.com/schematic-dev/schematic/pkg/handlers/dependency"
	"github.com/schematic-dev/schematic/pkg/handlers/enhancefile"
	"github.com/schematic-dev/schematic/pkg/handlers/envvar"
	"github.com/schematic-dev/schematic/pkg/handlers/fileops"
	"github.com/schematic-dev/schematic/pkg/handlers/installpackages"
	"github.com/schematic-dev/schematic/pkg/handlers/runcommand"
	"github.com/schematic-dev/schematic/pkg/handlers/script"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	modregistry "github.com/schematic-dev/schematic/pkg/modifiers/registry"
	"github.com/schematic-dev/schematic/pkg/types"
)

// DefaultManifestPath is the manifest the dependency handlers edit when the
// options leave it unset.
const DefaultManifestPath = "package.json"

// Options carries the collaborators the handlers depend on.
type Options struct {
	// TemplateLoader resolves named templates for CREATE_FILE. May be nil
	// when no blueprint uses templates.
	TemplateLoader types.TemplateLoader

	// Runner executes external processes for RUN_COMMAND and
	// INSTALL_PACKAGES. May be nil in dry runs; those handlers then fail.
	Runner types.CommandRunner

	// Modifiers is the modifier set ENHANCE_FILE dispatches into. Nil means
	// the default set.
	Modifiers *modifiers.Registry

	// ManifestPath overrides the package manifest location.
	ManifestPath string

	// PackageManager overrides the binary INSTALL_PACKAGES shells out to.
	PackageManager string
}

// New builds a handler registry with every known action kind registered.
func New(opts Options) *handlers.Registry {
	if opts.Modifiers == nil {
		opts.Modifiers = modregistry.New()
	}
	if opts.ManifestPath == "" {
		opts.ManifestPath = DefaultManifestPath
	}

	enhance := enhancefile.New(opts.Modifiers)

	reg := handlers.NewRegistry()
	for _, h := range []handlers.Handler{
		createfile.New(opts.TemplateLoader, enhance),
		enhance,
		dependency.New(opts.Modifiers, opts.ManifestPath),
		script.New(opts.Modifiers, opts.ManifestPath),
		envvar.New(opts.Modifiers, opts.ManifestPath),
		runcommand.New(opts.Runner),
		installpackages.New(opts.Runner, opts.PackageManager),
		fileops.NewAppend(),
		fileops.NewPrepend(),
		fileops.NewDelete(),
	} {
		// the set is fixed at compile time; duplicate names cannot occur
		_ = reg.Register(h)
	}
	return reg
}
