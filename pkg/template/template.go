// Package template implements the placeholder language actions are written
// in: {{dot.path}} lookups into the execution context, truthiness-based
// condition evaluation, and the shallow context-override merge.
package template

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/schematic-dev/schematic/pkg/types"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.-]*)\s*\}\}`)

// Substitute replaces every {{dot.path}} placeholder in s with the value
// found at that path in ctx. Placeholders whose path is absent are left
// verbatim, so a later substitution pass (or a reader) still sees them.
func Substitute(s string, ctx types.ExecutionContext) string {
	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRe.FindStringSubmatch(match)[1]
		value, ok := ctx.Lookup(path)
		if !ok {
			return match
		}
		return Stringify(value)
	})
}

// Stringify renders a context value the way it appears inside generated
// content. Maps and slices are rendered with fmt, which only matters for
// misaddressed placeholders; scalar values cover the intended use.
func Stringify(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		// YAML and JSON decode integers into float64; render them without
		// a spurious fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// EvaluateCondition resolves a condition expression against ctx and reports
// its truthiness. An empty expression is always true. The expression is a
// dot path, optionally wrapped in {{...}} and optionally negated with a
// leading '!'.
func EvaluateCondition(expr string, ctx types.ExecutionContext) bool {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return true
	}

	negate := false
	if strings.HasPrefix(expr, "!") {
		negate = true
		expr = strings.TrimSpace(expr[1:])
	}

	expr = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(expr, "{{"), "}}"))

	value, ok := ctx.Lookup(expr)
	result := ok && Truthy(value)
	if negate {
		return !result
	}
	return result
}

// Truthy reports whether a context value counts as true in a condition.
// nil, false, empty strings, "false", "0", zero numbers, and empty
// slices/maps are falsy; everything else is truthy.
func Truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != "" && v != "false" && v != "0"
	case int:
		return v != 0
	case int64:
		return v != 0
	case float64:
		return v != 0
	case []interface{}:
		return len(v) > 0
	case []string:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	default:
		return true
	}
}

// MergeContext layers a per-action override over the global context. The
// merge is shallow: override keys win, and array values replace the global
// value outright rather than concatenating.
func MergeContext(global types.ExecutionContext, override map[string]interface{}) types.ExecutionContext {
	if len(override) == 0 {
		return global
	}

	merged := make(types.ExecutionContext, len(global)+len(override))
	for k, v := range global {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}
