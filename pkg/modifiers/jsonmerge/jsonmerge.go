// Package jsonmerge implements the deep-merge modifier for JSON documents.
// Nested objects merge recursively, arrays concatenate, and on scalar
// collision the incoming value wins.
package jsonmerge

import (
	"encoding/json"
	"strings"

	"github.com/schematic-dev/schematic/pkg/errors"
	"github.com/schematic-dev/schematic/pkg/modifiers"
	"github.com/schematic-dev/schematic/pkg/types"
	"github.com/schematic-dev/schematic/pkg/vfs"
)

// ModifierName is the name handlers use to request this modifier
const ModifierName = "json-merge"

// Modifier deep-merges a JSON patch into a JSON file.
type Modifier struct {
	modifiers.Base
}

// New creates the json-merge modifier
func New() *Modifier {
	return &Modifier{Base: modifiers.NewBase(ModifierName, ".json")}
}

// ValidateParams requires a patch under "merge" (object) or "content"
// (JSON text).
func (m *Modifier) ValidateParams(params map[string]interface{}) error {
	if _, ok := params["merge"].(map[string]interface{}); ok {
		return nil
	}
	if s, ok := params["content"].(string); ok && strings.TrimSpace(s) != "" {
		return nil
	}
	return errors.New(errors.ErrInvalidInput, "json-merge requires 'merge' object or 'content' JSON text param")
}

// Execute implements modifiers.Modifier
func (m *Modifier) Execute(path string, params map[string]interface{}, ctx types.ExecutionContext, fs *vfs.VFS) error {
	existing, err := m.ReadFile(path, fs)
	if err != nil {
		return err
	}

	target, err := parseObject(existing, path)
	if err != nil {
		return err
	}

	patch, err := resolvePatch(params)
	if err != nil {
		return err
	}

	merged := Merge(target, patch)
	out, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return errors.Wrapf(err, errors.ErrMergeParse, "failed to serialize merged JSON for %s", path)
	}

	return m.WriteFile(path, string(out)+"\n", fs)
}

func parseObject(content, path string) (map[string]interface{}, error) {
	if strings.TrimSpace(content) == "" {
		return map[string]interface{}{}, nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(content), &obj); err != nil {
		return nil, errors.Wrapf(err, errors.ErrMergeParse, "target is not a JSON object: %s", path)
	}
	return obj, nil
}

func resolvePatch(params map[string]interface{}) (map[string]interface{}, error) {
	if patch, ok := params["merge"].(map[string]interface{}); ok {
		return patch, nil
	}
	content, _ := params["content"].(string)
	var patch map[string]interface{}
	if err := json.Unmarshal([]byte(content), &patch); err != nil {
		return nil, errors.Wrap(err, errors.ErrMergeParse, "patch content is not a JSON object")
	}
	return patch, nil
}

// Merge deep-merges src into dst and returns dst. Object values merge
// recursively, arrays concatenate, scalars from src win.
func Merge(dst, src map[string]interface{}) map[string]interface{} {
	for key, incoming := range src {
		existing, has := dst[key]
		if !has {
			dst[key] = incoming
			continue
		}

		existingMap, eok := existing.(map[string]interface{})
		incomingMap, iok := incoming.(map[string]interface{})
		if eok && iok {
			dst[key] = Merge(existingMap, incomingMap)
			continue
		}

		existingArr, eok := existing.([]interface{})
		incomingArr, iok := incoming.([]interface{})
		if eok && iok {
			dst[key] = append(existingArr, incomingArr...)
			continue
		}

		dst[key] = incoming
	}
	return dst
}

var _ modifiers.Modifier = (*Modifier)(nil)
