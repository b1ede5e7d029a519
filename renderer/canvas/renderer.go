// Package canvasrenderer measures and previews labels with
// github.com/tdewolff/canvas.
//
// The renderer loads font families once and hands out per-manager
// Containers that build one measurement context per style. Canvas works in
// mm and pt; everything handed to the fitting engine is converted to px.
package canvasrenderer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/smartlabel/fonts"
	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/renderer"
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

var (
	_ renderer.Renderer           = (*Renderer)(nil)
	_ smartlabel.ContainerManager = (*Containers)(nil)
)

// variant suffixes looked up in Options.Fonts, e.g. "Brand Bold".
var variantSuffix = [4]string{"", " Bold", " Italic", " Bold Italic"}

// Renderer owns the font families shared by every Containers it creates.
type Renderer struct {
	baseDir string
	title   string

	// injected resources
	fontBlobs map[string][]byte // by family or variant name

	fontMu         sync.Mutex
	fontFamilies   map[string]*canvas.FontFamily
	fallbackFamily *canvas.FontFamily
}

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	// Fonts maps a family name to its regular face. Variants are looked up as
	// "<family> Bold", "<family> Italic" and "<family> Bold Italic" and fall
	// back to the regular face.
	Fonts map[string]Resource
	Title string // PDF 预览标题
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		title:        opts.Title,
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.title == "" {
		r.title = "smartlabel preview"
	}
	// ingest fonts
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				logger.WarningLogger.Printf("读取字体 %s 失败: %v", res.Path, err)
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Containers returns a fresh container manager backed by the renderer's fonts.
func (r *Renderer) Containers() *Containers {
	return &Containers{r: r, contexts: map[style.Style]*metrics.Context{}}
}

// faces returns the four faces (regular, bold, italic, bold italic) of s.
func (r *Renderer) faces(s style.Style) ([4]*canvas.FontFace, error) {
	var faces [4]*canvas.FontFace
	family, err := r.ensureFontFamily(s.FontFamily)
	if err != nil {
		return faces, err
	}
	sizePt := s.FontSize.ToPT()
	for i := range faces {
		faces[i] = family.Face(sizePt, canvas.Black, faceStyle(i), canvas.FontNormal)
	}
	return faces, nil
}

func (r *Renderer) ensureFontFamily(name string) (*canvas.FontFamily, error) {
	r.fontMu.Lock()
	defer r.fontMu.Unlock()

	if family, ok := r.fontFamilies[name]; ok {
		return family, nil
	}

	family := canvas.NewFontFamily(name)
	if err := r.loadFontsIntoFamily(family, name); err != nil {
		fallback, fbErr := r.fallback()
		if fbErr != nil {
			return nil, fmt.Errorf("加载字体 %s 失败: %w", name, err)
		}
		logger.WarningLogger.Printf("字体 %s 不可用，使用内置 Go 字体: %v", name, err)
		r.fontFamilies[name] = fallback
		return fallback, nil
	}
	r.fontFamilies[name] = family
	return family, nil
}

func (r *Renderer) loadFontsIntoFamily(family *canvas.FontFamily, name string) error {
	variants, err := r.loadFontBytes(name)
	if err != nil {
		return err
	}
	for i, data := range variants {
		if err := family.LoadFont(data, 0, faceStyle(i)); err != nil {
			return fmt.Errorf("解析字体 %s%s 失败: %w", name, variantSuffix[i], err)
		}
	}
	return nil
}

// loadFontBytes resolves a family name to the bytes of its four variants:
// injected resources first, then "embed:" built-ins, then font file paths,
// then the built-in Go families.
func (r *Renderer) loadFontBytes(name string) ([4][]byte, error) {
	var variants [4][]byte
	if regular, ok := r.fontBlobs[name]; ok {
		for i := range variants {
			variants[i] = regular
			if blob, ok := r.fontBlobs[name+variantSuffix[i]]; ok {
				variants[i] = blob
			}
		}
		return variants, nil
	}
	if strings.HasPrefix(name, fonts.Prefix) {
		data, err := fonts.Load(name)
		if err != nil {
			return variants, err
		}
		return same(data), nil
	}
	if isFontPath(name) {
		// Path based
		path := name
		if r.baseDir == "" && !filepath.IsAbs(path) {
			return variants, fmt.Errorf("未指定资源目录时不允许直接使用字体路径：%s（请改用 embed: 或注入字体）", name)
		}
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.baseDir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return variants, fmt.Errorf("读取字体 %s 失败: %w", name, err)
		}
		return same(data), nil
	}
	if fonts.IsMono(name) {
		data, _ := fonts.Load("Go-Mono")
		return same(data), nil
	}
	if strings.EqualFold(name, style.DefaultFamily) {
		for i := range variants {
			variants[i] = fonts.ForStyle(i&1 != 0, i&2 != 0)
		}
		return variants, nil
	}
	return variants, fmt.Errorf("未知字体 %s", name)
}

func (r *Renderer) fallback() (*canvas.FontFamily, error) {
	if r.fallbackFamily != nil {
		return r.fallbackFamily, nil
	}
	family := canvas.NewFontFamily("smartlabel-fallback")
	for i := 0; i < 4; i++ {
		if err := family.LoadFont(fonts.ForStyle(i&1 != 0, i&2 != 0), 0, faceStyle(i)); err != nil {
			return nil, err
		}
	}
	r.fallbackFamily = family
	return family, nil
}

func same(data []byte) [4][]byte { return [4][]byte{data, data, data, data} }

func isFontPath(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf", ".ttc", ".woff", ".woff2":
		return true
	}
	return false
}

// faceIndex maps bold/italic flags onto the variant arrays.
func faceIndex(bold, italic bool) int {
	i := 0
	if bold {
		i |= 1
	}
	if italic {
		i |= 2
	}
	return i
}

func faceStyle(i int) canvas.FontStyle {
	result := canvas.FontRegular
	if i&1 != 0 {
		result = canvas.FontBold
	}
	if i&2 != 0 {
		result |= canvas.FontItalic
	}
	return result
}
