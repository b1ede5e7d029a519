// Package fonts ships the built-in Go font faces. A font source written as
// "embed:<name>" resolves here.
package fonts

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomedium"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// Prefix marks a font source that resolves to a built-in face.
const Prefix = "embed:"

var builtin = map[string][]byte{
	"Go-Regular":    goregular.TTF,
	"Go-Bold":       gobold.TTF,
	"Go-Italic":     goitalic.TTF,
	"Go-BoldItalic": gobolditalic.TTF,
	"Go-Medium":     gomedium.TTF,
	"Go-Mono":       gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "embed:Go-Bold" 或直接 "Go-Bold"。
func Load(name string) ([]byte, error) {
	name = strings.TrimPrefix(name, Prefix)
	name = strings.TrimSuffix(name, ".ttf")
	data, ok := builtin[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", name)
	}
	return data, nil
}

// ForStyle returns the built-in face matching the bold/italic flags.
func ForStyle(bold, italic bool) []byte {
	switch {
	case bold && italic:
		return gobolditalic.TTF
	case bold:
		return gobold.TTF
	case italic:
		return goitalic.TTF
	default:
		return goregular.TTF
	}
}

// IsMono reports whether family names the monospace built-in family.
func IsMono(family string) bool {
	f := strings.ToLower(strings.TrimSpace(family))
	return f == "go mono" || f == "go-mono" || f == "monospace"
}

// Names lists the built-in faces.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
