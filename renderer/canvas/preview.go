package canvasrenderer

import (
	"bytes"
	"fmt"
	"image/color"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/renderer"
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

// Preview page geometry in mm.
const (
	pageWidth   = 210.0
	pageHeight  = 297.0
	pageMargin  = 10.0
	labelGap    = 6.0
	captionSize = 7.0 // pt
	boxStroke   = 0.2
	// maxBoxHeight caps boxes whose max height is effectively unbounded.
	maxBoxHeight = 120.0
)

type placed struct {
	label  renderer.Label
	y      float64
	boxW   float64
	boxH   float64
	height float64 // caption + box
}

// Render draws every label's box and fitted lines into a PDF, one label under
// the other, starting a new page when the current one is full.
func (r *Renderer) Render(labels []renderer.Label) ([]byte, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("缺少可渲染的标签")
	}
	caption, err := r.captionFace()
	if err != nil {
		return nil, err
	}
	pages, width := r.paginate(labels, caption)

	var buf bytes.Buffer
	writer := pdf.New(&buf, width, pageHeight, nil)
	writer.SetInfo(r.title, "", "", "", "smartlabel")
	for i, page := range pages {
		if i > 0 {
			writer.NewPage(width, pageHeight)
		}
		c := canvas.New(width, pageHeight)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标保持左上角为原点

		for _, p := range page {
			if err := r.drawLabel(ctx, p, caption); err != nil {
				return nil, err
			}
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) captionFace() (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(style.DefaultFamily)
	if err != nil {
		return nil, err
	}
	return family.Face(captionSize, canvas.Hex("#666666"), canvas.FontRegular, canvas.FontNormal), nil
}

// paginate stacks labels top to bottom and returns them grouped per page
// together with the page width.
func (r *Renderer) paginate(labels []renderer.Label, caption *canvas.FontFace) ([][]placed, float64) {
	captionH := caption.Metrics().LineHeight
	width := pageWidth
	var (
		pages [][]placed
		page  []placed
		y     = pageMargin
	)
	for _, l := range labels {
		p := placed{label: l}
		if res := l.Result; res != nil {
			p.boxW = res.MaxWidth * style.PxToMm
			p.boxH = res.MaxHeight * style.PxToMm
			if math.IsInf(res.MaxHeight, 0) || p.boxH > maxBoxHeight {
				p.boxH = math.Max(res.Height*style.PxToMm, captionH)
			}
			if math.IsInf(res.MaxWidth, 0) {
				p.boxW = res.Width * style.PxToMm
			}
		}
		p.height = captionH + p.boxH
		width = math.Max(width, p.boxW+2*pageMargin)
		if len(page) > 0 && y+p.height > pageHeight-pageMargin {
			pages = append(pages, page)
			page, y = nil, pageMargin
		}
		p.y = y
		page = append(page, p)
		y += p.height + labelGap
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages, width
}

func (r *Renderer) drawLabel(ctx *canvas.Context, p placed, caption *canvas.FontFace) error {
	res := p.label.Result
	title := p.label.Name
	if res != nil && res.IsTruncated {
		title += " (truncated)"
	}
	if res != nil && res.Err != nil {
		title += " (" + res.Err.Error() + ")"
	}
	ctx.DrawText(pageMargin, p.y+caption.Metrics().Ascent, canvas.NewTextLine(caption, title, canvas.Left))
	if res == nil {
		return nil
	}

	top := p.y + caption.Metrics().LineHeight
	stroke := canvas.Hex("#999999")
	if res.IsTruncated {
		stroke = canvas.Hex("#cc0000")
	}
	ctx.SetFillColor(color.RGBA{0, 0, 0, 0})
	ctx.SetStrokeColor(stroke)
	ctx.SetStrokeWidth(boxStroke)
	ctx.DrawPath(pageMargin, top, canvas.Rectangle(p.boxW, p.boxH))

	faces, err := r.faces(p.label.Style.Normalize())
	if err != nil {
		return err
	}
	m := newFaceMeasurer(p.label.Style.Normalize(), faces)
	face := faces[m.base]
	lineHeight := m.lineHeight * style.PxToMm

	// 基线位置：行顶部加上字体上升部（Ascent，mm）
	cursorY := top
	for _, line := range smartlabel.TextToLines(res) {
		text := markup.Strip(line)
		ctx.DrawText(pageMargin, cursorY+face.Metrics().Ascent, canvas.NewTextLine(face, text, canvas.Left))
		cursorY += lineHeight
	}
	return nil
}
