package types

import "strings"

// ExecutionContext is the read-only nested data actions are evaluated
// against: project metadata, the current module, feature flags. The engine
// only ever reads it; ownership stays with the caller.
type ExecutionContext map[string]interface{}

// Lookup traverses a dot-separated path into the context. The second return
// is false when any segment is absent or a non-map value is traversed into.
func (c ExecutionContext) Lookup(path string) (interface{}, bool) {
	if path == "" {
		return nil, false
	}

	var current interface{} = map[string]interface{}(c)
	for _, segment := range strings.Split(path, ".") {
		m, ok := asMap(current)
		if !ok {
			return nil, false
		}
		value, exists := m[segment]
		if !exists {
			return nil, false
		}
		current = value
	}
	return current, true
}

func asMap(v interface{}) (map[string]interface{}, bool) {
	switch m := v.(type) {
	case map[string]interface{}:
		return m, true
	case ExecutionContext:
		return m, true
	default:
		return nil, false
	}
}
