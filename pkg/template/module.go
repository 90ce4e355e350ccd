package template

import (
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/schematic-dev/schematic/pkg/errors"
)

// ModuleConfigName is the optional descriptor file at the root of a
// template module directory.
const ModuleConfigName = "module.toml"

// ModuleConfig carries a template module's metadata and its default
// context values. Defaults seed the execution context at the lowest
// precedence: a key already present in the context always wins.
type ModuleConfig struct {
	Description string                 `toml:"description"`
	Defaults    map[string]interface{} `toml:"defaults"`
}

// LoadModuleConfig reads <root>/<module>/module.toml. A missing file is
// not an error; the zero config is returned.
func (l *DirLoader) LoadModuleConfig(module string) (ModuleConfig, error) {
	path := filepath.Join(l.root, module, ModuleConfigName)
	if _, err := l.fs.Stat(path); err != nil {
		return ModuleConfig{}, nil
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		return ModuleConfig{}, errors.Wrapf(err, errors.ErrConfigLoad,
			"failed to read module config for '%s'", module)
	}

	var cfg ModuleConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return ModuleConfig{}, errors.Wrapf(err, errors.ErrConfigParse,
			"failed to parse module config for '%s'", module)
	}
	return cfg, nil
}
