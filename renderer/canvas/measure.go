package canvasrenderer

import (
	"github.com/tdewolff/canvas"

	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/style"
)

// Containers builds and keeps one measurement context per style for a
// single manager.
type Containers struct {
	r        *Renderer
	contexts map[style.Style]*metrics.Context
	disposed bool
}

// Get returns the context of s, creating it on first use. It reports false
// when no face can be built for s.
func (c *Containers) Get(s style.Style, cacheLimit int) (*metrics.Context, bool) {
	if c.disposed {
		return nil, false
	}
	s = s.Normalize()
	if ctx, ok := c.contexts[s]; ok {
		return ctx, true
	}
	faces, err := c.r.faces(s)
	if err != nil {
		logger.WarningLogger.Printf("样式 %s 无法创建字体面: %v", s.Key(), err)
		return nil, false
	}
	m := newFaceMeasurer(s, faces)
	ctx := metrics.NewContext(s, m, m, m.lineHeight, cacheLimit)
	c.contexts[s] = ctx
	return ctx, true
}

// Dispose drops every context. Later Get calls fail.
func (c *Containers) Dispose() {
	c.contexts = map[style.Style]*metrics.Context{}
	c.disposed = true
}

// faceMeasurer measures text with canvas faces. Canvas reports mm; results
// are px.
type faceMeasurer struct {
	faces      [4]*canvas.FontFace
	base       int
	lineHeight float64 // px
}

func newFaceMeasurer(s style.Style, faces [4]*canvas.FontFace) *faceMeasurer {
	base := faceIndex(s.IsBold(), s.IsItalic())
	natural := faces[base].Metrics().LineHeight * style.MmToPx
	return &faceMeasurer{
		faces:      faces,
		base:       base,
		lineHeight: s.LineHeight.Resolve(s.FontSize, natural),
	}
}

func (m *faceMeasurer) MeasureText(text string) metrics.Size {
	return metrics.Size{
		Width:  m.faces[m.base].TextWidth(text) * style.MmToPx,
		Height: m.lineHeight,
	}
}

// MeasureNodes lays markup out cell by cell, picking the bold/italic face
// each cell's enclosing tags ask for.
func (m *faceMeasurer) MeasureNodes(text string) ([]markup.Cell, error) {
	cells, err := markup.Parse(text)
	if err != nil {
		return nil, err
	}
	markup.Layout(cells, func(c markup.Cell) (float64, float64) {
		face := m.faces[m.faceFor(c)]
		return face.TextWidth(c.Text) * style.MmToPx, m.lineHeight
	}, m.lineHeight)
	return cells, nil
}

func (m *faceMeasurer) faceFor(c markup.Cell) int {
	return m.base | faceIndex(c.Bold(), c.Italic())
}
