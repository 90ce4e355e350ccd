// Package paths provides centralized path handling for schematic.
// It implements XDG Base Directory specification compliance and resolves
// the project root the engine operates on.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/schematic-dev/schematic/pkg/errors"
)

// Environment variable names
const (
	// EnvProjectRoot is the primary environment variable for the project location
	EnvProjectRoot = "SCHEMATIC_PROJECT_ROOT"

	// EnvDataDir overrides the XDG data directory for schematic
	EnvDataDir = "SCHEMATIC_DATA_DIR"

	// EnvConfigDir overrides the XDG config directory for schematic
	EnvConfigDir = "SCHEMATIC_CONFIG_DIR"

	// EnvCacheDir overrides the XDG cache directory for schematic
	EnvCacheDir = "SCHEMATIC_CACHE_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

const (
	// AppDirName is the directory name for schematic-specific files
	AppDirName = "schematic"

	// ConfigFileName is the name of the per-project configuration file
	ConfigFileName = ".schematic.toml"

	// TemplatesDir is the subdirectory modules keep their templates in
	TemplatesDir = "templates"

	// BlueprintsDir is the subdirectory blueprints are loaded from
	BlueprintsDir = "blueprints"

	// LogFileName is the name of the log file
	LogFileName = "schematic.log"
)

// Paths provides centralized path management for schematic.
type Paths interface {
	ProjectRoot() string
	UsedFallback() bool
	ConfigFilePath() string
	BlueprintsDir() string
	TemplatesDir() string
	DataDir() string
	ConfigDir() string
	CacheDir() string
	StateDir() string
	LogFilePath() string
}

type paths struct {
	projectRoot string
	xdgData     string
	xdgConfig   string
	xdgCache    string
	xdgState    string

	// usedFallback indicates the cwd was used (for warning display)
	usedFallback bool
}

// New creates a Paths instance rooted at projectRoot. An empty root is
// resolved from the environment, the enclosing git repository, or the
// current directory, in that order.
func New(projectRoot string) (Paths, error) {
	p := &paths{}

	if projectRoot == "" {
		root, usedFallback, err := findProjectRoot()
		if err != nil {
			return nil, err
		}
		p.projectRoot = root
		p.usedFallback = usedFallback
	} else {
		p.projectRoot = expandHome(projectRoot)
	}

	absRoot, err := filepath.Abs(p.projectRoot)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root")
	}
	p.projectRoot = absRoot

	p.setupXDGDirs()
	return p, nil
}

// setupXDGDirs initializes XDG directories, respecting environment overrides
func (p *paths) setupXDGDirs() {
	if dataDir := os.Getenv(EnvDataDir); dataDir != "" {
		p.xdgData = expandHome(dataDir)
	} else {
		p.xdgData = filepath.Join(xdg.DataHome, AppDirName)
	}

	if configDir := os.Getenv(EnvConfigDir); configDir != "" {
		p.xdgConfig = expandHome(configDir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	if cacheDir := os.Getenv(EnvCacheDir); cacheDir != "" {
		p.xdgCache = expandHome(cacheDir)
	} else {
		p.xdgCache = filepath.Join(xdg.CacheHome, AppDirName)
	}

	// XDG doesn't provide StateHome, so check manually
	if stateDir := os.Getenv("XDG_STATE_HOME"); stateDir != "" {
		p.xdgState = filepath.Join(stateDir, AppDirName)
	} else {
		homeDir, _ := os.UserHomeDir()
		p.xdgState = filepath.Join(homeDir, ".local", "state", AppDirName)
	}
}

func (p *paths) ProjectRoot() string { return p.projectRoot }
func (p *paths) UsedFallback() bool  { return p.usedFallback }

func (p *paths) ConfigFilePath() string {
	return filepath.Join(p.projectRoot, ConfigFileName)
}

func (p *paths) BlueprintsDir() string {
	return filepath.Join(p.projectRoot, BlueprintsDir)
}

func (p *paths) TemplatesDir() string {
	return filepath.Join(p.projectRoot, TemplatesDir)
}

func (p *paths) DataDir() string   { return p.xdgData }
func (p *paths) ConfigDir() string { return p.xdgConfig }
func (p *paths) CacheDir() string  { return p.xdgCache }
func (p *paths) StateDir() string  { return p.xdgState }

func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// findProjectRoot determines the project root using the following priority:
// 1. SCHEMATIC_PROJECT_ROOT environment variable
// 2. Git repository root ('git rev-parse --show-toplevel')
// 3. Current working directory (fallback)
func findProjectRoot() (string, bool, error) {
	if root := os.Getenv(EnvProjectRoot); root != "" {
		return expandHome(root), false, nil
	}

	if gitRoot, err := findGitRoot(); err == nil && gitRoot != "" {
		return gitRoot, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}
	return cwd, true, nil
}

func findGitRoot() (string, error) {
	cmd := exec.Command("git", "rev-parse", "--show-toplevel")
	output, err := cmd.Output()
	if err != nil {
		// not in a git repo, or git not installed
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

func expandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if path == "~" {
		return homeDir
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
