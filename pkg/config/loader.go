package config

import (
	_ "embed"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	schemerr "github.com/schematic-dev/schematic/pkg/errors"
)

// ConfigFileName is the per-project configuration file looked up at the
// project root.
const ConfigFileName = ".schematic.toml"

// EnvPrefix is the prefix for environment overrides. A double underscore
// separates sections, so SCHEMATIC_ENGINE__FAILURE_POLICY maps to
// engine.failure_policy.
const EnvPrefix = "SCHEMATIC_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// Load builds the effective configuration for a project root. Optional
// override maps (dotted keys, e.g. "engine.package_manager") take
// precedence over everything else.
func Load(projectRoot string, overrides ...map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, schemerr.Wrap(err, schemerr.ErrConfigParse, "failed to load default configuration")
	}

	// 2. Project config, if present
	path := filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, schemerr.Wrapf(err, schemerr.ErrConfigParse, "failed to load config from %s", path)
		}
	}

	// 3. Environment overrides
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
	if err != nil {
		return nil, schemerr.Wrap(err, schemerr.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Programmatic overrides
	for _, override := range overrides {
		if len(override) == 0 {
			continue
		}
		if err := k.Load(confmap.Provider(override, "."), nil); err != nil {
			return nil, schemerr.Wrap(err, schemerr.ErrConfigLoad, "failed to apply config overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, schemerr.Wrap(err, schemerr.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	switch cfg.Engine.FailurePolicy {
	case "continue", "abort":
	default:
		return schemerr.Newf(schemerr.ErrConfigParse,
			"engine.failure_policy must be 'continue' or 'abort', got '%s'", cfg.Engine.FailurePolicy)
	}
	if cfg.Engine.PreloadCapBytes <= 0 {
		return schemerr.New(schemerr.ErrConfigParse, "engine.preload_cap_bytes must be positive")
	}
	if cfg.Engine.Manifest == "" {
		return schemerr.New(schemerr.ErrConfigParse, "engine.manifest must not be empty")
	}
	return nil
}
