// Package config loads schematic's layered configuration: embedded
// defaults, the project's .schematic.toml, and SCHEMATIC_* environment
// variables, in increasing precedence.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	Engine  EngineConfig  `koanf:"engine"`
	Project ProjectConfig `koanf:"project"`
}

// EngineConfig tunes the action engine.
type EngineConfig struct {
	// FailurePolicy is "continue" or "abort" (see executor.FailurePolicy).
	FailurePolicy string `koanf:"failure_policy"`

	// PreloadCapBytes is the maximum size of a file eligible for preload
	// into the staging overlay.
	PreloadCapBytes int64 `koanf:"preload_cap_bytes"`

	// Manifest is the package manifest path, relative to the context root.
	Manifest string `koanf:"manifest"`

	// PackageManager is the binary INSTALL_PACKAGES shells out to.
	PackageManager string `koanf:"package_manager"`

	// CommandTimeout bounds external commands.
	CommandTimeout time.Duration `koanf:"command_timeout"`
}

// ProjectConfig describes the project layout.
type ProjectConfig struct {
	// ContextRoot is the directory action paths are resolved against,
	// relative to the project root.
	ContextRoot string `koanf:"context_root"`

	// PackageRoots are the top-level segments treated as monorepo-absolute
	// path prefixes.
	PackageRoots []string `koanf:"package_roots"`

	// Apps are the workspace application directories path-key fan-out
	// expands over.
	Apps []string `koanf:"apps"`
}
