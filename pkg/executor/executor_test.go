package executor

import (
	"testing"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/filesystem"
	"github.com/schematic-dev/schematic/pkg/handlers"
	"github.com/schematic-dev/schematic/pkg/handlers/registry"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVFS() *vfs.VFS {
	return vfs.New(filesystem.NewMemoryFS(), vfs.Options{ProjectRoot: "/proj"})
}

func defaultExecutor() *Executor {
	return New(Options{Handlers: registry.New(registry.Options{})})
}

// recordingHandler captures the actions it receives, in order.
type recordingHandler struct {
	kind    types.ActionType
	actions []types.Action
	fail    bool
}

func (r *recordingHandler) Name() string { return string(r.kind) }

func (r *recordingHandler) Handle(action types.Action, ctx types.ExecutionContext, projectRoot string, fs *vfs.VFS) types.ActionResult {
	r.actions = append(r.actions, action)
	if r.fail {
		return types.Failure(errors.New(errors.ErrActionExecute, "boom"))
	}
	return types.Successf("ok", action.Path)
}

func recordingRegistry(t *testing.T, hs ...*recordingHandler) *handlers.Registry {
	t.Helper()
	reg := handlers.NewRegistry()
	for _, h := range hs {
		require.NoError(t, reg.Register(h))
	}
	return reg
}

func TestExecuteRunsActionsInOrder(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	actions := []types.Action{
		{Type: types.ActionCreateFile, Path: "a.txt"},
		{Type: types.ActionCreateFile, Path: "b.txt"},
		{Type: types.ActionCreateFile, Path: "c.txt"},
	}

	result := e.Execute("demo", actions, nil, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 3)
	assert.Equal(t, "a.txt", rec.actions[0].Path)
	assert.Equal(t, "b.txt", rec.actions[1].Path)
	assert.Equal(t, "c.txt", rec.actions[2].Path)
	assert.Equal(t, []string{"a.txt", "b.txt", "c.txt"}, result.Files)
}

func TestForEachFanOut(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{
		"module": map[string]interface{}{
			"pages": []interface{}{"home", "about", "contact"},
		},
	}

	actions := []types.Action{{
		Type:    types.ActionCreateFile,
		ForEach: "module.pages",
		Path:    "src/pages/{{item}}.tsx",
		Content: "// {{item}} page\n",
	}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 3)
	assert.Equal(t, "src/pages/home.tsx", rec.actions[0].Path)
	assert.Equal(t, "src/pages/about.tsx", rec.actions[1].Path)
	assert.Equal(t, "src/pages/contact.tsx", rec.actions[2].Path)
	assert.Equal(t, "// home page\n", rec.actions[0].Content)
}

func TestForEachObjectItems(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{
		"routes": []interface{}{
			map[string]interface{}{"name": "home", "path": "/"},
			map[string]interface{}{"name": "admin", "path": "/admin"},
		},
	}

	actions := []types.Action{{
		Type:    types.ActionCreateFile,
		ForEach: "routes",
		Path:    "src/{{item.name}}.ts",
		Content: "export const path = '{{item.path}}'\n",
	}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 2)
	assert.Equal(t, "src/home.ts", rec.actions[0].Path)
	assert.Equal(t, "export const path = '/'\n", rec.actions[0].Content)
	assert.Equal(t, "src/admin.ts", rec.actions[1].Path)
}

func TestForEachSubstitutesParams(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionEnhanceFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{
		"routes": []interface{}{
			map[string]interface{}{"name": "home", "path": "/"},
			map[string]interface{}{"name": "admin", "path": "/admin"},
		},
	}

	actions := []types.Action{{
		Type:     types.ActionEnhanceFile,
		ForEach:  "routes",
		Path:     "src/router.ts",
		Modifier: "json-merge",
		Params: map[string]interface{}{
			"merge": map[string]interface{}{
				"routes": []interface{}{
					map[string]interface{}{"name": "{{item.name}}", "path": "{{item.path}}"},
				},
			},
		},
	}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 2)

	first := rec.actions[0].Params["merge"].(map[string]interface{})["routes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "home", first["name"])
	assert.Equal(t, "/", first["path"])

	second := rec.actions[1].Params["merge"].(map[string]interface{})["routes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "admin", second["name"])

	// The source action's params must not be rewritten by the fan-out.
	original := actions[0].Params["merge"].(map[string]interface{})["routes"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "{{item.name}}", original["name"])
}

func TestForEachSubstitutesMergeInstructions(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{
		"envs": []interface{}{"dev", "prod"},
	}

	actions := []types.Action{{
		Type:    types.ActionCreateFile,
		ForEach: "envs",
		Path:    "config.{{item}}.json",
		Content: "{}",
		MergeInstructions: &types.MergeInstructions{
			Modifier: "json-merge",
			Params: map[string]interface{}{
				"merge": map[string]interface{}{"env": "{{item}}"},
			},
		},
	}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 2)

	mi := rec.actions[0].MergeInstructions
	require.NotNil(t, mi)
	assert.Equal(t, "dev", mi.Params["merge"].(map[string]interface{})["env"])
	assert.Equal(t, "prod",
		rec.actions[1].MergeInstructions.Params["merge"].(map[string]interface{})["env"])
}

func TestForEachMissingPathSkips(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	actions := []types.Action{{
		Type:    types.ActionCreateFile,
		ForEach: "nope.nothing",
		Path:    "x-{{item}}.txt",
	}}

	result := e.Execute("demo", actions, nil, "/proj", testVFS())

	assert.True(t, result.Success)
	assert.Empty(t, rec.actions)
}

func TestForEachNonArrayFails(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{"value": "scalar"}
	actions := []types.Action{{Type: types.ActionCreateFile, ForEach: "value", Path: "x.txt"}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	assert.False(t, result.Success)
	assert.Empty(t, rec.actions)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "must resolve to an array")
}

type fakeResolver struct {
	paths map[string][]string
}

func (f *fakeResolver) Resolve(key string) ([]string, error) {
	if paths, ok := f.paths[key]; ok {
		return paths, nil
	}
	return nil, errors.Newf(errors.ErrNotFound, "unknown path key: %s", key)
}

func TestPathKeyFanOut(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	resolver := &fakeResolver{paths: map[string][]string{
		"@apps/tsconfig": {"apps/web/tsconfig.json", "apps/admin/tsconfig.json"},
	}}
	e := New(Options{Handlers: recordingRegistry(t, rec), Resolver: resolver})

	actions := []types.Action{{
		Type:    types.ActionCreateFile,
		PathKey: "@apps/tsconfig",
		Content: "{}",
	}}

	result := e.Execute("demo", actions, nil, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 2)
	assert.Equal(t, "apps/web/tsconfig.json", rec.actions[0].Path)
	assert.Equal(t, "apps/admin/tsconfig.json", rec.actions[1].Path)
	assert.Empty(t, rec.actions[0].PathKey)
}

func TestPathKeyWithoutResolverFails(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	result := e.Execute("demo", []types.Action{
		{Type: types.ActionCreateFile, PathKey: "@apps/x"},
	}, nil, "/proj", testVFS())

	assert.False(t, result.Success)
	assert.Empty(t, rec.actions)
}

func TestConditionSkipsAction(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{
		"features": map[string]interface{}{"auth": false, "api": true},
	}

	actions := []types.Action{
		{Type: types.ActionCreateFile, Path: "auth.ts", Condition: "features.auth"},
		{Type: types.ActionCreateFile, Path: "api.ts", Condition: "{{features.api}}"},
		{Type: types.ActionCreateFile, Path: "no-auth.ts", Condition: "!features.auth"},
	}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	require.Len(t, rec.actions, 2)
	assert.Equal(t, "api.ts", rec.actions[0].Path)
	assert.Equal(t, "no-auth.ts", rec.actions[1].Path)

	// the skipped action still shows up in the per-action results
	require.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Skipped)
}

func TestPerActionContextOverride(t *testing.T) {
	rec := &recordingHandler{kind: types.ActionCreateFile}
	e := New(Options{Handlers: recordingRegistry(t, rec)})

	ctx := types.ExecutionContext{"flag": false}
	actions := []types.Action{{
		Type:      types.ActionCreateFile,
		Path:      "x.txt",
		Condition: "flag",
		Context:   map[string]interface{}{"flag": true},
	}}

	result := e.Execute("demo", actions, ctx, "/proj", testVFS())

	require.True(t, result.Success)
	assert.Len(t, rec.actions, 1)
}

func TestContinueOnErrorPolicy(t *testing.T) {
	good := &recordingHandler{kind: types.ActionCreateFile}
	bad := &recordingHandler{kind: types.ActionRunCommand, fail: true}
	e := New(Options{Handlers: recordingRegistry(t, good, bad)})

	actions := []types.Action{
		{Type: types.ActionRunCommand, Command: "x"},
		{Type: types.ActionCreateFile, Path: "after.txt"},
	}

	result := e.Execute("demo", actions, nil, "/proj", testVFS())

	assert.False(t, result.Success)
	assert.Len(t, good.actions, 1, "later actions still run under the default policy")
	assert.Len(t, result.Errors, 1)
}

func TestAbortOnFirstErrorPolicy(t *testing.T) {
	good := &recordingHandler{kind: types.ActionCreateFile}
	bad := &recordingHandler{kind: types.ActionRunCommand, fail: true}
	e := New(Options{
		Handlers: recordingRegistry(t, good, bad),
		Policy:   AbortOnFirstError,
	})

	actions := []types.Action{
		{Type: types.ActionRunCommand, Command: "x"},
		{Type: types.ActionCreateFile, Path: "after.txt"},
	}

	result := e.Execute("demo", actions, nil, "/proj", testVFS())

	assert.False(t, result.Success)
	assert.Empty(t, good.actions)
}

func TestUnknownActionKindFails(t *testing.T) {
	e := defaultExecutor()

	result := e.Execute("demo", []types.Action{{Type: "DANCE"}}, nil, "/proj", testVFS())

	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "DANCE")
}

type flushSpy struct {
	calls int
	err   error
}

func (f *flushSpy) Flush(v *vfs.VFS) error {
	f.calls++
	return f.err
}

func TestCommitFlushesOnSuccess(t *testing.T) {
	spy := &flushSpy{}
	v := testVFS()

	result := &types.ExecutionResult{Blueprint: "demo", Success: true}
	require.NoError(t, Commit(result, v, spy))
	assert.Equal(t, 1, spy.calls)
}

func TestCommitRefusesToFlushFailedBlueprint(t *testing.T) {
	spy := &flushSpy{}
	v := testVFS()

	result := &types.ExecutionResult{Blueprint: "demo", Success: true}
	result.Record(types.Failure(errors.New(errors.ErrActionExecute, "boom")))

	err := Commit(result, v, spy)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFlushFailed))
	assert.Equal(t, 0, spy.calls, "a failed blueprint must never flush")
}

func TestEndToEndScaffoldScenario(t *testing.T) {
	v := testVFS()
	e := defaultExecutor()

	actions := []types.Action{
		{Type: types.ActionCreateFile, Path: "package.json", Content: "{}"},
		{Type: types.ActionAddDependency, Packages: []string{"left-pad"}},
		{Type: types.ActionAddScript, Name: "build", Command: "tsc"},
	}

	result := e.Execute("bootstrap", actions, nil, "/proj", v)
	require.True(t, result.Success, "errors: %v", result.Errors)

	spy := &flushSpy{}
	require.NoError(t, Commit(result, v, spy))
	assert.Equal(t, 1, spy.calls)

	content, err := v.ReadFile("package.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"dependencies":{"left-pad":"latest"},"scripts":{"build":"tsc"}}`, content)
}
