// Package binding fills ${path} placeholders in label text from JSON data.
package binding

import (
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// ${path|fallback} 在路径不存在时使用 fallback；没有 fallback 时保留原占位符。
func Interpolate(text string, data any) string {
	return interpolate(text, data, func(s string) string { return s })
}

// InterpolateHTML is Interpolate for markup-bearing text: substituted values
// are escaped so they cannot open or close tags.
func InterpolateHTML(text string, data any) string {
	return interpolate(text, data, html.EscapeString)
}

// Decode reads JSON data suitable for Interpolate.
func Decode(r io.Reader) (any, error) {
	var data any
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("解析数据失败: %w", err)
	}
	return data, nil
}

func interpolate(text string, data any, escape func(string) string) string {
	return exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		expr := match[2 : len(match)-1]
		path, fallback, hasFallback := strings.Cut(expr, "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		if data != nil {
			if val, ok := resolvePath(data, path); ok && val != nil {
				return escape(format(val))
			}
		}
		if hasFallback {
			return escape(strings.TrimSpace(fallback))
		}
		return match
	})
}

// step is one hop of a path: a map key or, when key is empty, a list index.
type step struct {
	key   string
	index int
}

// compilePath splits "items[0].name" into steps. Malformed indexes fail the
// whole path.
func compilePath(path string) ([]step, bool) {
	var steps []step
	for _, segment := range strings.Split(path, ".") {
		name, rest, _ := strings.Cut(segment, "[")
		if name != "" {
			steps = append(steps, step{key: name})
		}
		if rest == "" {
			continue
		}
		for _, part := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				return nil, false
			}
			steps = append(steps, step{index: idx})
		}
	}
	return steps, len(steps) > 0
}

func resolvePath(data any, path string) (any, bool) {
	steps, ok := compilePath(path)
	if !ok {
		return nil, false
	}
	current := data
	for _, st := range steps {
		if st.key != "" {
			current, ok = descendMap(current, st.key)
		} else {
			current, ok = descendArray(current, st.index)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// format renders a data value as label text. JSON numbers are float64, so
// whole numbers are printed without exponent or fraction.
func format(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	}
	return nil, false
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < len(c) {
			return c[idx], true
		}
	case []string:
		if idx < len(c) {
			return c[idx], true
		}
	}
	return nil, false
}
