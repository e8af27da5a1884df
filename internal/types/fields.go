package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldValues maps a questionnaire field name to a string, array or nested object
type FieldValues map[string]any

// String returns the trimmed scalar value of a field, or "" when absent or non-scalar
func (f FieldValues) String(key string) string {
	if f == nil {
		return ""
	}
	return scalarString(f[key])
}

// Has reports whether the field holds a non-blank value
func (f FieldValues) Has(key string) bool {
	if f.String(key) != "" {
		return true
	}
	return len(f.List(key)) > 0
}

// List returns the non-blank entries of a list field.
// Nested objects are flattened to "key: value" prose; a scalar becomes a one-item list
// and a multi-line string is split on newlines.
func (f FieldValues) List(key string) []string {
	if f == nil {
		return nil
	}
	var out []string
	switch v := f[key].(type) {
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				if s := flattenObject(obj); s != "" {
					out = append(out, s)
				}
				continue
			}
			if s := scalarString(item); s != "" {
				out = append(out, s)
			}
		}
	case []string:
		for _, item := range v {
			if s := strings.TrimSpace(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		if s := flattenObject(v); s != "" {
			out = append(out, s)
		}
	default:
		for _, line := range strings.Split(scalarString(v), "\n") {
			if s := strings.TrimSpace(line); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Object returns a nested object field, or nil
func (f FieldValues) Object(key string) map[string]any {
	if f == nil {
		return nil
	}
	obj, _ := f[key].(map[string]any)
	return obj
}

// Int returns an integer field, falling back to def when absent or unparseable
func (f FieldValues) Int(key string, def int) int {
	s := f.String(key)
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if fl, err := strconv.ParseFloat(s, 64); err == nil {
		return int(fl)
	}
	return def
}

// First returns the first non-blank value among keys
func (f FieldValues) First(keys ...string) string {
	for _, k := range keys {
		if s := f.String(k); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		return ""
	}
}

// flattenObject renders an object as "key: value; key: value" with sorted keys and blanks dropped
func flattenObject(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		s := scalarString(obj[k])
		if s == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", strings.ReplaceAll(k, "_", " "), s))
	}
	return strings.Join(parts, "; ")
}
