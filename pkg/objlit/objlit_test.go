package objlit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("scalars and nesting", func(t *testing.T) {
		obj, err := Parse(`{
			name: 'vite-app',
			port: 3000,
			strict: true,
			server: { host: 'localhost', open: false },
		}`)
		require.NoError(t, err)

		name, _ := obj.Get("name")
		assert.Equal(t, "vite-app", name)
		port, _ := obj.Get("port")
		assert.Equal(t, float64(3000), port)
		strict, _ := obj.Get("strict")
		assert.Equal(t, true, strict)

		server, ok := obj.Get("server")
		require.True(t, ok)
		host, _ := server.(*Object).Get("host")
		assert.Equal(t, "localhost", host)
	})

	t.Run("key order preserved", func(t *testing.T) {
		obj, err := Parse(`{zeta: 1, alpha: 2, mike: 3}`)
		require.NoError(t, err)
		assert.Equal(t, []string{"zeta", "alpha", "mike"}, obj.Keys())
	})

	t.Run("arrays and call expressions", func(t *testing.T) {
		obj, err := Parse(`{plugins: [react(), tsconfigPaths({root: '.'})], tags: ['a', 'b']}`)
		require.NoError(t, err)

		plugins, _ := obj.Get("plugins")
		require.Len(t, plugins, 2)
		assert.Equal(t, Ident("react()"), plugins.([]interface{})[0])
		assert.Equal(t, Ident("tsconfigPaths({root: '.'})"), plugins.([]interface{})[1])

		tags, _ := obj.Get("tags")
		assert.Equal(t, []interface{}{"a", "b"}, tags)
	})

	t.Run("comments are skipped", func(t *testing.T) {
		obj, err := Parse(`{
			// dev server port
			port: 8080, /* inline */ host: 'x',
		}`)
		require.NoError(t, err)
		port, _ := obj.Get("port")
		assert.Equal(t, float64(8080), port)
	})

	t.Run("quoted keys", func(t *testing.T) {
		obj, err := Parse(`{'@scope/pkg': 'latest', "another": 1}`)
		require.NoError(t, err)
		assert.True(t, obj.Has("@scope/pkg"))
		assert.True(t, obj.Has("another"))
	})

	t.Run("rejects trailing garbage", func(t *testing.T) {
		_, err := Parse(`{a: 1} extra`)
		assert.Error(t, err)
	})

	t.Run("rejects unbalanced braces", func(t *testing.T) {
		_, err := Parse(`{a: {b: 1}`)
		assert.Error(t, err)
	})
}

func TestExtract(t *testing.T) {
	t.Run("export default", func(t *testing.T) {
		src := "import x from 'x'\n\nexport default {\n  a: 1,\n}\n"
		prefix, objSrc, suffix, err := Extract(src)
		require.NoError(t, err)
		assert.Contains(t, prefix, "import x")
		assert.Equal(t, "{\n  a: 1,\n}", objSrc)
		assert.Equal(t, "\n", suffix)
	})

	t.Run("module.exports", func(t *testing.T) {
		_, objSrc, _, err := Extract("module.exports = { a: 1 }")
		require.NoError(t, err)
		assert.Equal(t, "{ a: 1 }", objSrc)
	})

	t.Run("bare object", func(t *testing.T) {
		_, objSrc, _, err := Extract("  { a: 1 }  ")
		require.NoError(t, err)
		assert.Equal(t, "{ a: 1 }", objSrc)
	})

	t.Run("rejects arbitrary code before bare object", func(t *testing.T) {
		_, _, _, err := Extract("doSomething(); { a: 1 }")
		assert.Error(t, err)
	})
}

func TestCoerce(t *testing.T) {
	t.Run("export default shape", func(t *testing.T) {
		obj, err := Coerce("export default { a: 1 }")
		require.NoError(t, err)
		a, _ := obj.Get("a")
		assert.Equal(t, float64(1), a)
	})

	t.Run("json fallback", func(t *testing.T) {
		obj, err := Coerce(`{"a": 1, "b": {"c": true}}`)
		require.NoError(t, err)
		b, ok := obj.Get("b")
		require.True(t, ok)
		c, _ := b.(*Object).Get("c")
		assert.Equal(t, true, c)
	})

	t.Run("unparseable content fails", func(t *testing.T) {
		_, err := Coerce("#!/bin/sh\necho hello")
		assert.Error(t, err)
	})
}

func TestMerge(t *testing.T) {
	t.Run("deep merge with scalar override", func(t *testing.T) {
		obj, err := Parse(`{server: {port: 3000, host: 'localhost'}, name: 'app'}`)
		require.NoError(t, err)

		obj.Merge(map[string]interface{}{
			"server": map[string]interface{}{"port": float64(8080)},
			"base":   "/",
		})

		server, _ := obj.Get("server")
		port, _ := server.(*Object).Get("port")
		assert.Equal(t, float64(8080), port)
		host, _ := server.(*Object).Get("host")
		assert.Equal(t, "localhost", host, "untouched sibling key survives")
		base, _ := obj.Get("base")
		assert.Equal(t, "/", base)
	})

	t.Run("arrays concatenate", func(t *testing.T) {
		obj, err := Parse(`{plugins: [react()]}`)
		require.NoError(t, err)

		obj.Merge(map[string]interface{}{
			"plugins": []interface{}{Ident("svelte()")},
		})

		plugins, _ := obj.Get("plugins")
		assert.Equal(t, []interface{}{Ident("react()"), Ident("svelte()")}, plugins)
	})

	t.Run("idempotent on scalar and object keys", func(t *testing.T) {
		obj := NewObject()
		patch := map[string]interface{}{
			"a": "x",
			"b": map[string]interface{}{"c": float64(1)},
		}
		obj.Merge(patch)
		once := Format(obj)
		obj.Merge(patch)
		assert.Equal(t, once, Format(obj))
	})
}

func TestFormatRoundTrip(t *testing.T) {
	src := `{
  name: 'my-app',
  port: 3000,
  flags: [true, 'fast'],
  server: {
    open: false
  },
  plugin: react({jsx: true})
}`

	obj, err := Parse(src)
	require.NoError(t, err)
	out := Format(obj)

	reparsed, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, obj.Keys(), reparsed.Keys())
	assert.Equal(t, out, Format(reparsed), "format is a fixpoint")

	assert.Contains(t, out, "name: 'my-app'")
	assert.Contains(t, out, "plugin: react({jsx: true})")
}

func TestFormatQuotedKeys(t *testing.T) {
	obj := NewObject()
	obj.Set("valid_key", float64(1))
	obj.Set("@scope/pkg", "latest")

	out := Format(obj)
	assert.Contains(t, out, "valid_key: 1")
	assert.Contains(t, out, "'@scope/pkg': 'latest'")
}
