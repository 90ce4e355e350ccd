package objlit

import "sort"

// Ident is a bare identifier value (a reference to an imported symbol,
// e.g. `plugins: [react()]` holds the Ident "react()"). Idents survive a
// parse/format round trip unquoted.
type Ident string

// Object is an order-preserving string-keyed object.
type Object struct {
	keys   []string
	values map[string]interface{}
}

// NewObject creates an empty Object
func NewObject() *Object {
	return &Object{values: make(map[string]interface{})}
}

// Get returns the value for key, with ok=false when absent
func (o *Object) Get(key string) (interface{}, bool) {
	v, ok := o.values[key]
	return v, ok
}

// Set stores a value, appending the key on first insertion
func (o *Object) Set(key string, value interface{}) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = value
}

// Has reports whether key is present
func (o *Object) Has(key string) bool {
	_, ok := o.values[key]
	return ok
}

// Keys returns the keys in insertion order
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of keys
func (o *Object) Len() int {
	return len(o.keys)
}

// Merge deep-merges src into o. Object values merge recursively, array
// values concatenate, and scalar values from src win.
func (o *Object) Merge(src map[string]interface{}) {
	for _, key := range sortedKeys(src) {
		o.mergeValue(key, src[key])
	}
}

// MergeObject deep-merges another Object into o, preserving src ordering.
func (o *Object) MergeObject(src *Object) {
	for _, key := range src.keys {
		o.mergeValue(key, src.values[key])
	}
}

func (o *Object) mergeValue(key string, incoming interface{}) {
	existing, has := o.values[key]
	if !has {
		o.Set(key, normalizeValue(incoming))
		return
	}

	switch ev := existing.(type) {
	case *Object:
		switch iv := incoming.(type) {
		case *Object:
			ev.MergeObject(iv)
			return
		case map[string]interface{}:
			ev.Merge(iv)
			return
		}
	case []interface{}:
		if iv, ok := normalizeValue(incoming).([]interface{}); ok {
			o.values[key] = append(ev, iv...)
			return
		}
	}

	o.Set(key, normalizeValue(incoming))
}

// normalizeValue converts plain maps into *Object so the tree stays
// order-preserving below the first merged level.
func normalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		obj := NewObject()
		for _, k := range sortedKeys(val) {
			obj.Set(k, normalizeValue(val[k]))
		}
		return obj
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = normalizeValue(item)
		}
		return out
	default:
		return v
	}
}

// ToMap converts the object tree back to plain maps, for callers that
// serialize with encoding/json.
func (o *Object) ToMap() map[string]interface{} {
	out := make(map[string]interface{}, len(o.keys))
	for _, k := range o.keys {
		out[k] = demoteValue(o.values[k])
	}
	return out
}

func demoteValue(v interface{}) interface{} {
	switch val := v.(type) {
	case *Object:
		return val.ToMap()
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = demoteValue(item)
		}
		return out
	case Ident:
		return string(val)
	default:
		return v
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
