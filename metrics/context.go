package metrics

import (
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/style"
)

// EllipsesString is appended to truncated text.
const EllipsesString = "..."

// NodeMeasurer renders markup-bearing text in one pass and reports the
// geometry of every character cell.
type NodeMeasurer interface {
	MeasureNodes(text string) ([]markup.Cell, error)
}

// Context is the measurement context of one style: the measurement
// surface, the style's line height, the precomputed widths of "." and of the
// ellipsis, and the style's cache.
type Context struct {
	Style         style.Style
	Measurer      Measurer
	Nodes         NodeMeasurer // nil when the backend cannot render markup
	LineHeight    float64
	DotWidth      float64
	EllipsesWidth float64
	Cache         *Cache
}

// NewContext measures the punctuation widths once and creates the cache.
// nodes may be nil.
func NewContext(s style.Style, m Measurer, nodes NodeMeasurer, lineHeight float64, cacheLimit int) *Context {
	return &Context{
		Style:         s,
		Measurer:      m,
		Nodes:         nodes,
		LineHeight:    lineHeight,
		DotWidth:      m.MeasureText(".").Width,
		EllipsesWidth: m.MeasureText(EllipsesString).Width,
		Cache:         NewCache(m, cacheLimit),
	}
}
