// Package core wires the engine together for the CLI: configuration,
// blueprint loading, per-blueprint staging, execution, and the
// flush-on-success commit.
package core

import (
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/schematic-dev/schematic/pkg/blueprint"
	"github.com/schematic-dev/schematic/pkg/config"
	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/executor"
	"github.com/schematic-dev/schematic/pkg/filesystem"
	"github.com/schematic-dev/schematic/pkg/handlers/registry"
	"github.com/schematic-dev/schematic/pkg/logging"
	"github.com/schematic-dev/schematic/pkg/paths"
	"github.com/schematic-dev/schematic/pkg/synthfs"
	"github.com/schematic-dev/schematic/pkg/template"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// ApplyOptions configures one apply run.
type ApplyOptions struct {
	// ProjectRoot overrides root discovery. Empty means environment, git
	// root, or the current directory.
	ProjectRoot string

	// BlueprintPaths lists explicit blueprint files. Empty means every
	// blueprint in the project's blueprints directory.
	BlueprintPaths []string

	// ContextPath names a YAML file with the execution context. Empty
	// means an empty context.
	ContextPath string

	// DryRun stages and reports but never touches the disk or spawns
	// processes.
	DryRun bool

	// ConfigOverrides are dotted config keys that take precedence over the
	// project config and the environment.
	ConfigOverrides map[string]interface{}
}

// ApplyResult aggregates the per-blueprint outcomes of one run.
type ApplyResult struct {
	Results []*types.ExecutionResult
	Success bool
	Files   []string
}

// Apply runs the configured blueprints against the project. Each blueprint
// stages into its own VFS and flushes only when every one of its actions
// succeeded.
func Apply(opts ApplyOptions) (*ApplyResult, error) {
	log := logging.GetLogger("core")

	p, err := paths.New(opts.ProjectRoot)
	if err != nil {
		return nil, err
	}
	if p.UsedFallback() {
		log.Warn().Str("root", p.ProjectRoot()).Msg("No project root configured, using current directory")
	}

	cfg, err := config.Load(p.ProjectRoot(), opts.ConfigOverrides)
	if err != nil {
		return nil, err
	}

	ctx, err := loadContext(opts.ContextPath)
	if err != nil {
		return nil, err
	}

	blueprints, err := loadBlueprints(opts.BlueprintPaths, p)
	if err != nil {
		return nil, err
	}
	if len(blueprints) == 0 {
		return nil, errors.New(errors.ErrBlueprintLoad, "no blueprints to apply")
	}

	runner := synthfs.NewRunner(opts.DryRun, cfg.Engine.CommandTimeout)
	loader := template.NewDirLoader(p.TemplatesDir(), filesystem.NewOS())

	ctx, err = applyModuleDefaults(ctx, blueprints, loader)
	if err != nil {
		return nil, err
	}

	exec := executor.New(executor.Options{
		Handlers: registry.New(registry.Options{
			TemplateLoader: loader,
			Runner:         runner,
			ManifestPath:   cfg.Engine.Manifest,
			PackageManager: cfg.Engine.PackageManager,
		}),
		Resolver:     paths.NewResolver(cfg.Project.Apps),
		Policy:       executor.FailurePolicy(cfg.Engine.FailurePolicy),
		ManifestPath: cfg.Engine.Manifest,
	})

	flusher := synthfs.NewFlushExecutor(opts.DryRun)

	result := &ApplyResult{Success: true}
	for _, bp := range blueprints {
		v := vfs.New(filesystem.NewOS(), vfs.Options{
			ProjectRoot:     p.ProjectRoot(),
			ContextRoot:     cfg.Project.ContextRoot,
			PackageRoots:    cfg.Project.PackageRoots,
			MaxPreloadBytes: cfg.Engine.PreloadCapBytes,
		})

		res := exec.Execute(bp.Name, bp.Actions, ctx, p.ProjectRoot(), v)
		result.Results = append(result.Results, res)

		if !res.Success {
			result.Success = false
			log.Error().
				Str("blueprint", bp.Name).
				Strs("errors", res.Errors).
				Msg("Blueprint failed, staged files discarded")
			continue
		}

		if err := executor.Commit(res, v, flusher); err != nil {
			result.Success = false
			res.Success = false
			res.Errors = append(res.Errors, err.Error())
			log.Error().Err(err).Str("blueprint", bp.Name).Msg("Flush failed")
			continue
		}

		result.Files = append(result.Files, res.Files...)
	}

	return result, nil
}

// applyModuleDefaults seeds the context with the default values of every
// template module the blueprints reference. Keys already present in the
// context always win over module defaults.
func applyModuleDefaults(ctx types.ExecutionContext, blueprints []*blueprint.Blueprint, loader *template.DirLoader) (types.ExecutionContext, error) {
	seen := make(map[string]bool)
	var modules []string
	for _, bp := range blueprints {
		for _, action := range bp.Actions {
			if action.Module != "" && !seen[action.Module] {
				seen[action.Module] = true
				modules = append(modules, action.Module)
			}
		}
	}
	sort.Strings(modules)

	for _, module := range modules {
		cfg, err := loader.LoadModuleConfig(module)
		if err != nil {
			return nil, err
		}
		if len(cfg.Defaults) == 0 {
			continue
		}
		ctx = mergeDefaults(cfg.Defaults, ctx)
	}
	return ctx, nil
}

// mergeDefaults layers ctx over defaults. Maps merge recursively; any
// other value from ctx replaces the default wholesale.
func mergeDefaults(defaults, ctx map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(defaults)+len(ctx))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range ctx {
		if dm, ok := merged[k].(map[string]interface{}); ok {
			if cm, ok := v.(map[string]interface{}); ok {
				merged[k] = mergeDefaults(dm, cm)
				continue
			}
		}
		merged[k] = v
	}
	return merged
}

func loadBlueprints(explicit []string, p paths.Paths) ([]*blueprint.Blueprint, error) {
	if len(explicit) == 0 {
		return blueprint.LoadDir(p.BlueprintsDir())
	}

	blueprints := make([]*blueprint.Blueprint, 0, len(explicit))
	for _, path := range explicit {
		bp, err := blueprint.Load(path)
		if err != nil {
			return nil, err
		}
		blueprints = append(blueprints, bp)
	}
	return blueprints, nil
}

func loadContext(path string) (types.ExecutionContext, error) {
	if path == "" {
		return types.ExecutionContext{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "failed to read context file: %s", path)
	}

	var ctx map[string]interface{}
	if err := yaml.Unmarshal(data, &ctx); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse context file: %s", path)
	}
	return types.ExecutionContext(ctx), nil
}
