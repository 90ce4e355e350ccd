package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "continue", cfg.Engine.FailurePolicy)
	assert.Equal(t, int64(1048576), cfg.Engine.PreloadCapBytes)
	assert.Equal(t, "package.json", cfg.Engine.Manifest)
	assert.Equal(t, "npm", cfg.Engine.PackageManager)
	assert.Equal(t, 5*time.Minute, cfg.Engine.CommandTimeout)
	assert.Equal(t, []string{"apps", "packages", "libs"}, cfg.Project.PackageRoots)
	assert.Empty(t, cfg.Project.Apps)
}

func TestLoadProjectFileOverrides(t *testing.T) {
	root := t.TempDir()
	content := `
[engine]
failure_policy = "abort"
package_manager = "pnpm"

[project]
context_root = "apps/web"
apps = ["apps/web", "apps/admin"]
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	cfg, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, "abort", cfg.Engine.FailurePolicy)
	assert.Equal(t, "pnpm", cfg.Engine.PackageManager)
	assert.Equal(t, "apps/web", cfg.Project.ContextRoot)
	assert.Equal(t, []string{"apps/web", "apps/admin"}, cfg.Project.Apps)
	// untouched keys keep their defaults
	assert.Equal(t, "package.json", cfg.Engine.Manifest)
}

func TestLoadEnvironmentWinsOverFile(t *testing.T) {
	root := t.TempDir()
	content := "[engine]\npackage_manager = \"pnpm\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	t.Setenv("SCHEMATIC_ENGINE__PACKAGE_MANAGER", "bun")

	cfg, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "bun", cfg.Engine.PackageManager)
}

func TestLoadOverridesWinOverEnvironment(t *testing.T) {
	t.Setenv("SCHEMATIC_ENGINE__PACKAGE_MANAGER", "bun")

	cfg, err := Load(t.TempDir(), map[string]interface{}{
		"engine.package_manager": "yarn",
	})
	require.NoError(t, err)
	assert.Equal(t, "yarn", cfg.Engine.PackageManager)
}

func TestLoadEnvironmentDuration(t *testing.T) {
	t.Setenv("SCHEMATIC_ENGINE__COMMAND_TIMEOUT", "30s")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Engine.CommandTimeout)
}

func TestLoadRejectsBadPolicy(t *testing.T) {
	root := t.TempDir()
	content := "[engine]\nfailure_policy = \"yolo\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte(content), 0644))

	_, err := Load(root)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ConfigFileName), []byte("not [valid toml"), 0644))

	_, err := Load(root)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestGenerateConfigContent(t *testing.T) {
	content := GenerateConfigContent()

	// every assignment is commented out
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.Contains(trimmed, "=") && !strings.HasPrefix(trimmed, "#") {
			t.Fatalf("uncommented assignment in generated config: %q", line)
		}
	}
	assert.Contains(t, content, "[engine]")
	assert.Contains(t, content, "# failure_policy")
}
