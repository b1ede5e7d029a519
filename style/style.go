// Package style describes the text style a label is measured under.
//
// A Style is a plain comparable value: two styles with the same fields
// select the same measurement context and the same cache partition.
package style

import (
	"fmt"
	"strconv"
	"strings"
)

// Defaults used when a style leaves a field empty.
const (
	DefaultFamily = "Go"
	DefaultSize   = 10 // px
)

// Style is the StyleKey of a measurement context.
type Style struct {
	FontSize   Length         `json:"fontSize"`
	FontFamily string         `json:"fontFamily"`
	FontWeight string         `json:"fontWeight"` // normal/bold/100-900
	FontStyle  string         `json:"fontStyle"`  // normal/italic/oblique
	LineHeight LineHeightSpec `json:"lineHeight"`
}

// Normalize fills in defaults and lower-cases keyword fields so that
// equivalent styles compare equal.
func (s Style) Normalize() Style {
	if s.FontSize.Value <= 0 {
		s.FontSize = Px(DefaultSize)
	}
	if s.FontSize.Unit == UnitNone {
		s.FontSize.Unit = UnitPX
	}
	s.FontFamily = strings.TrimSpace(s.FontFamily)
	if s.FontFamily == "" {
		s.FontFamily = DefaultFamily
	}
	s.FontWeight = strings.ToLower(strings.TrimSpace(s.FontWeight))
	if s.FontWeight == "" {
		s.FontWeight = "normal"
	}
	s.FontStyle = strings.ToLower(strings.TrimSpace(s.FontStyle))
	if s.FontStyle == "" {
		s.FontStyle = "normal"
	}
	return s
}

// Key returns a stable string form covering every field, e.g.
// "12px|Go|bold|italic|1.4".
func (s Style) Key() string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", s.FontSize, s.FontFamily, s.FontWeight, s.FontStyle, s.LineHeight)
}

// IsBold reports whether the weight selects a bold face.
func (s Style) IsBold() bool {
	switch s.FontWeight {
	case "bold", "bolder":
		return true
	}
	n, err := strconv.Atoi(s.FontWeight)
	return err == nil && n >= 600
}

// IsItalic reports whether the style selects a slanted face.
func (s Style) IsItalic() bool {
	return s.FontStyle == "italic" || s.FontStyle == "oblique"
}
