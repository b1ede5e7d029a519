// Package opentyperenderer measures labels with golang.org/x/image/font and
// the sfnt parser, without any drawing surface. Faces are created at 72 DPI
// so that one point equals one px.
package opentyperenderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/smartlabel/fonts"
	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

var _ smartlabel.ContainerManager = (*Containers)(nil)

var variantSuffix = [4]string{"", " Bold", " Italic", " Bold Italic"}

// Options configures the backend.
type Options struct {
	BaseDir string
	// Fonts maps a family (or "<family> Bold" style variant) name to font data.
	Fonts map[string][]byte
}

// Backend parses fonts once and shares them between Containers.
type Backend struct {
	baseDir string
	blobs   map[string][]byte

	mu    sync.Mutex
	fonts map[string]*opentype.Font // by family + variant suffix
}

// NewBackend returns a backend.
func NewBackend(opts Options) *Backend {
	b := &Backend{baseDir: opts.BaseDir, blobs: map[string][]byte{}, fonts: map[string]*opentype.Font{}}
	for name, data := range opts.Fonts {
		if name != "" && len(data) > 0 {
			b.blobs[name] = data
		}
	}
	return b
}

// Containers returns a fresh container manager backed by b.
func (b *Backend) Containers() *Containers {
	return &Containers{b: b, contexts: map[style.Style]*metrics.Context{}}
}

// font returns the parsed variant i (bit 1 bold, bit 2 italic) of family.
func (b *Backend) font(family string, i int) (*opentype.Font, error) {
	key := family + variantSuffix[i]
	b.mu.Lock()
	defer b.mu.Unlock()
	if f, ok := b.fonts[key]; ok {
		return f, nil
	}
	data, err := b.fontBytes(family, i)
	if err != nil {
		return nil, err
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("解析字体 %s 失败: %w", key, err)
	}
	b.fonts[key] = f
	return f, nil
}

func (b *Backend) fontBytes(family string, i int) ([]byte, error) {
	if data, ok := b.blobs[family+variantSuffix[i]]; ok {
		return data, nil
	}
	if data, ok := b.blobs[family]; ok {
		return data, nil
	}
	switch {
	case strings.HasPrefix(family, fonts.Prefix):
		return fonts.Load(family)
	case isFontPath(family):
		path := family
		if !filepath.IsAbs(path) {
			if b.baseDir == "" {
				return nil, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s", family)
			}
			path = filepath.Join(b.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("读取字体 %s 失败: %w", family, err)
		}
		return data, nil
	case fonts.IsMono(family):
		return fonts.Load("Go-Mono")
	case strings.EqualFold(family, style.DefaultFamily):
		return fonts.ForStyle(i&1 != 0, i&2 != 0), nil
	}
	return nil, fmt.Errorf("未知字体 %s", family)
}

// Containers keeps one measurement context per style for a single manager.
type Containers struct {
	b        *Backend
	contexts map[style.Style]*metrics.Context
	disposed bool
}

// Get returns the context of s, creating it on first use. Unknown families
// fall back to the built-in Go faces; Get reports false only when no face can
// be built at all.
func (c *Containers) Get(s style.Style, cacheLimit int) (*metrics.Context, bool) {
	if c.disposed {
		return nil, false
	}
	s = s.Normalize()
	if ctx, ok := c.contexts[s]; ok {
		return ctx, true
	}
	m, err := newFaceMeasurer(c.b, s, s.FontFamily)
	if err != nil {
		logger.WarningLogger.Printf("字体 %s 不可用，使用内置 Go 字体: %v", s.FontFamily, err)
		m, err = newFaceMeasurer(c.b, s, style.DefaultFamily)
	}
	if err != nil {
		logger.WarningLogger.Printf("样式 %s 无法创建字体面: %v", s.Key(), err)
		return nil, false
	}
	ctx := metrics.NewContext(s, m, m, m.lineHeight, cacheLimit)
	c.contexts[s] = ctx
	return ctx, true
}

// Dispose drops every context. Later Get calls fail.
func (c *Containers) Dispose() {
	c.contexts = map[style.Style]*metrics.Context{}
	c.disposed = true
}

type faceMeasurer struct {
	faces      [4]font.Face
	base       int
	lineHeight float64
}

func newFaceMeasurer(b *Backend, s style.Style, family string) (*faceMeasurer, error) {
	m := &faceMeasurer{base: variant(s.IsBold(), s.IsItalic())}
	opt := opentype.FaceOptions{Size: s.FontSize.ToPX(), DPI: 72, Hinting: font.HintingNone}
	for i := range m.faces {
		f, err := b.font(family, i)
		if err != nil {
			return nil, err
		}
		face, err := opentype.NewFace(f, &opt)
		if err != nil {
			return nil, fmt.Errorf("创建字体面 %s 失败: %w", family, err)
		}
		m.faces[i] = face
	}
	fm := m.faces[m.base].Metrics()
	natural := fixedToFloat(max(fm.Ascent+fm.Descent, fm.Height))
	m.lineHeight = s.LineHeight.Resolve(s.FontSize, natural)
	return m, nil
}

func (m *faceMeasurer) MeasureText(text string) metrics.Size {
	return metrics.Size{
		Width:  fixedToFloat(font.MeasureString(m.faces[m.base], text)),
		Height: m.lineHeight,
	}
}

// MeasureNodes lays markup out cell by cell with the bold/italic face each
// cell asks for.
func (m *faceMeasurer) MeasureNodes(text string) ([]markup.Cell, error) {
	cells, err := markup.Parse(text)
	if err != nil {
		return nil, err
	}
	markup.Layout(cells, func(c markup.Cell) (float64, float64) {
		face := m.faces[m.base|variant(c.Bold(), c.Italic())]
		return fixedToFloat(font.MeasureString(face, c.Text)), m.lineHeight
	}, m.lineHeight)
	return cells, nil
}

func isFontPath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc":
		return true
	}
	return false
}

func variant(bold, italic bool) int {
	i := 0
	if bold {
		i |= 1
	}
	if italic {
		i |= 2
	}
	return i
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
