package normalize

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// leadKeys name the field that introduces a record when rendered
var leadKeys = []string{"name", "task", "title", "week", "day"}

// RenderStructured renders a parsed JSON response as plain-text numbered sections.
// Keys listed in order come first; any others follow alphabetically.
func RenderStructured(obj map[string]any, order []string) string {
	seen := make(map[string]bool, len(obj))
	keys := make([]string, 0, len(obj))
	for _, k := range order {
		if _, ok := obj[k]; ok && !seen[k] {
			keys = append(keys, k)
			seen[k] = true
		}
	}
	var rest []string
	for k := range obj {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	keys = append(keys, rest...)

	var sb strings.Builder
	for i, k := range keys {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, heading(k)))
		renderValue(&sb, obj[k], "")
	}
	return strings.TrimSpace(sb.String())
}

func heading(key string) string {
	return strings.ToUpper(strings.ReplaceAll(key, "_", " "))
}

func label(key string) string {
	s := strings.ReplaceAll(key, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func renderValue(sb *strings.Builder, v any, indent string) {
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if rec, ok := item.(map[string]any); ok {
				renderRecord(sb, rec, indent)
				continue
			}
			if s := scalar(item); s != "" {
				sb.WriteString(indent + "- " + s + "\n")
			}
		}
	case map[string]any:
		renderRecord(sb, val, indent)
	default:
		if s := scalar(val); s != "" {
			sb.WriteString(indent + s + "\n")
		}
	}
}

// renderRecord writes a record as a bullet introduced by its lead field, with the rest indented
func renderRecord(sb *strings.Builder, rec map[string]any, indent string) {
	lead := ""
	for _, k := range leadKeys {
		if s := scalar(rec[k]); s != "" {
			lead = k
			if k == "week" {
				s = "Week " + s
			}
			sb.WriteString(indent + "- " + s + "\n")
			break
		}
	}
	if lead == "" {
		sb.WriteString(indent + "-\n")
	}

	keys := make([]string, 0, len(rec))
	for k := range rec {
		if k != lead {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	inner := indent + "  "
	for _, k := range keys {
		switch rec[k].(type) {
		case []any, map[string]any:
			sb.WriteString(inner + strings.ToUpper(label(k)) + "\n")
			renderValue(sb, rec[k], inner+"  ")
		default:
			if s := scalar(rec[k]); s != "" {
				sb.WriteString(fmt.Sprintf("%s%s: %s\n", inner, label(k), s))
			}
		}
	}
}

func scalar(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		if val {
			return "yes"
		}
		return "no"
	default:
		return ""
	}
}
