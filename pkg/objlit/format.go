package objlit

import (
	"fmt"
	"strings"
)

// Format serializes an Object back to an object literal with two-space
// indentation. Keys that are valid identifiers are left unquoted; strings
// use single quotes, matching the style of generated source files.
func Format(obj *Object) string {
	var sb strings.Builder
	formatObject(&sb, obj, 0)
	return sb.String()
}

func formatObject(sb *strings.Builder, obj *Object, level int) {
	if obj.Len() == 0 {
		sb.WriteString("{}")
		return
	}

	indent := strings.Repeat("  ", level+1)
	sb.WriteString("{\n")
	keys := obj.Keys()
	for i, key := range keys {
		value, _ := obj.Get(key)
		sb.WriteString(indent)
		sb.WriteString(formatKey(key))
		sb.WriteString(": ")
		formatValue(sb, value, level+1)
		if i < len(keys)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("  ", level))
	sb.WriteString("}")
}

func formatValue(sb *strings.Builder, value interface{}, level int) {
	switch v := value.(type) {
	case nil:
		sb.WriteString("null")
	case *Object:
		formatObject(sb, v, level)
	case []interface{}:
		sb.WriteString("[")
		for i, item := range v {
			if i > 0 {
				sb.WriteString(", ")
			}
			formatValue(sb, item, level)
		}
		sb.WriteString("]")
	case Ident:
		sb.WriteString(string(v))
	case string:
		sb.WriteString("'")
		sb.WriteString(escapeString(v))
		sb.WriteString("'")
	case bool:
		sb.WriteString(fmt.Sprintf("%t", v))
	case float64:
		if v == float64(int64(v)) {
			sb.WriteString(fmt.Sprintf("%d", int64(v)))
		} else {
			sb.WriteString(fmt.Sprintf("%v", v))
		}
	default:
		sb.WriteString(fmt.Sprintf("%v", v))
	}
}

func formatKey(key string) string {
	if key == "" {
		return "''"
	}
	for i := 0; i < len(key); i++ {
		if !isIdentChar(key[i]) {
			return "'" + escapeString(key) + "'"
		}
	}
	if key[0] >= '0' && key[0] <= '9' {
		return "'" + escapeString(key) + "'"
	}
	return key
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return s
}
