package template

import (
	"testing"

	"github.com/schematic-dev/schematic/pkg/filesystem"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() types.ExecutionContext {
	return types.ExecutionContext{
		"project": map[string]interface{}{
			"name": "acme-shop",
			"port": float64(3000),
		},
		"features": map[string]interface{}{
			"auth":      true,
			"analytics": false,
			"locales":   []interface{}{"en", "de"},
		},
	}
}

func TestSubstitute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple path",
			input:    "name: {{project.name}}",
			expected: "name: acme-shop",
		},
		{
			name:     "numeric value renders without fraction",
			input:    "PORT={{project.port}}",
			expected: "PORT=3000",
		},
		{
			name:     "boolean value",
			input:    "auth={{features.auth}}",
			expected: "auth=true",
		},
		{
			name:     "unresolved placeholder stays verbatim",
			input:    "value: {{missing.path}}",
			expected: "value: {{missing.path}}",
		},
		{
			name:     "multiple placeholders",
			input:    "{{project.name}}:{{project.port}}",
			expected: "acme-shop:3000",
		},
		{
			name:     "whitespace inside braces",
			input:    "{{ project.name }}",
			expected: "acme-shop",
		},
		{
			name:     "no placeholders",
			input:    "plain text",
			expected: "plain text",
		},
	}

	ctx := testContext()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Substitute(tt.input, ctx))
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	tests := []struct {
		name     string
		expr     string
		expected bool
	}{
		{name: "absent condition runs", expr: "", expected: true},
		{name: "true flag", expr: "features.auth", expected: true},
		{name: "false flag", expr: "features.analytics", expected: false},
		{name: "braced expression", expr: "{{features.auth}}", expected: true},
		{name: "negation", expr: "!features.analytics", expected: true},
		{name: "negated true", expr: "!features.auth", expected: false},
		{name: "missing path is falsy", expr: "features.payments", expected: false},
		{name: "negated missing path", expr: "!features.payments", expected: true},
		{name: "non-empty array is truthy", expr: "features.locales", expected: true},
		{name: "non-empty string is truthy", expr: "project.name", expected: true},
	}

	ctx := testContext()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EvaluateCondition(tt.expr, ctx))
		})
	}
}

func TestTruthy(t *testing.T) {
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(""))
	assert.False(t, Truthy("false"))
	assert.False(t, Truthy("0"))
	assert.False(t, Truthy(float64(0)))
	assert.False(t, Truthy([]interface{}{}))
	assert.False(t, Truthy(map[string]interface{}{}))
	assert.True(t, Truthy("yes"))
	assert.True(t, Truthy(float64(1)))
	assert.True(t, Truthy([]interface{}{"x"}))
}

func TestMergeContext(t *testing.T) {
	global := types.ExecutionContext{
		"name":  "global",
		"tags":  []interface{}{"a", "b"},
		"other": "kept",
	}

	t.Run("override wins and arrays replace", func(t *testing.T) {
		merged := MergeContext(global, map[string]interface{}{
			"name": "local",
			"tags": []interface{}{"c"},
		})

		assert.Equal(t, "local", merged["name"])
		assert.Equal(t, []interface{}{"c"}, merged["tags"])
		assert.Equal(t, "kept", merged["other"])
	})

	t.Run("empty override returns global unchanged", func(t *testing.T) {
		merged := MergeContext(global, nil)
		assert.Equal(t, global, merged)
	})

	t.Run("global is not mutated", func(t *testing.T) {
		_ = MergeContext(global, map[string]interface{}{"name": "local"})
		assert.Equal(t, "global", global["name"])
	})
}

func TestDirLoader(t *testing.T) {
	memFs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(memFs,
		"/modules/react-base/templates/src/App.tsx", []byte("export default {{project.name}}"), 0644))
	fs := filesystem.NewAferoFS(memFs)

	loader := NewDirLoader("/modules", fs)

	t.Run("loads existing template", func(t *testing.T) {
		content, err := loader.LoadTemplate("react-base", "src/App.tsx")
		require.NoError(t, err)
		assert.Equal(t, "export default {{project.name}}", content)
	})

	t.Run("missing template fails", func(t *testing.T) {
		_, err := loader.LoadTemplate("react-base", "missing.tsx")
		assert.Error(t, err)
	})

	t.Run("empty module fails", func(t *testing.T) {
		_, err := loader.LoadTemplate("", "src/App.tsx")
		assert.Error(t, err)
	})
}
