package envvar

import (
	"testing"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/filesystem"
	modregistry "github.com/schematic-dev/schematic/pkg/modifiers/registry"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVFS() *vfs.VFS {
	return vfs.New(filesystem.NewMemoryFS(), vfs.Options{ProjectRoot: "/proj"})
}

func TestAddEnvVar(t *testing.T) {
	fs := testVFS()
	h := New(modregistry.New(), "package.json")

	res := h.Handle(types.Action{
		Type:  types.ActionAddEnvVar,
		Key:   "API_URL",
		Value: "https://api.example.com",
	}, nil, "/proj", fs)

	require.True(t, res.Success, "add env var failed: %v", res.Error)

	content, _ := fs.ReadFile("package.json")
	assert.JSONEq(t, `{"env":{"API_URL":"https://api.example.com"}}`, content)
}

func TestAddEnvVarSubstitutesValue(t *testing.T) {
	fs := testVFS()
	ctx := types.ExecutionContext{"project": map[string]interface{}{"name": "acme"}}

	h := New(modregistry.New(), "package.json")
	res := h.Handle(types.Action{
		Type:  types.ActionAddEnvVar,
		Key:   "APP_NAME",
		Value: "{{project.name}}",
	}, ctx, "/proj", fs)

	require.True(t, res.Success)
	content, _ := fs.ReadFile("package.json")
	assert.JSONEq(t, `{"env":{"APP_NAME":"acme"}}`, content)
}

func TestAddEnvVarRequiresKey(t *testing.T) {
	h := New(modregistry.New(), "package.json")
	res := h.Handle(types.Action{Type: types.ActionAddEnvVar, Value: "x"}, nil, "/proj", testVFS())
	assert.False(t, res.Success)
	assert.True(t, errors.IsErrorCode(res.Error, errors.ErrActionInvalid))
}
