// Package fitting decides how a text fits a box: unchanged, wrapped over
// several lines, truncated with an ellipsis, or not at all.
//
// The engine works on a slice of character cells. Plain text cells carry
// letter widths from the metrics cache; markup cells carry the geometry the
// backend rendered for them. Either way the walk is the same: accumulate
// widths left to right, remember where the ellipsis budget was crossed, and
// once the absolute width is exceeded either truncate (no-wrap) or insert a
// line break at the last space, else the last hyphen, else right before the
// current character.
package fitting

import (
	"math"

	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
)

// singleLineSlack inflates a max height equal to the line height, so that
// sub-pixel overshoot does not push a single line out of its own box.
const singleLineSlack = 1.2

// Request is one layout request.
type Request struct {
	Text        string
	MaxWidth    float64
	MaxHeight   float64
	NoWrap      bool
	UseEllipses bool
}

// Result is the layout decision for one request.
type Result struct {
	Text          string  `json:"text"`
	OriText       string  `json:"oriText"`
	MaxWidth      float64 `json:"maxWidth"`
	MaxHeight     float64 `json:"maxHeight"`
	Width         float64 `json:"width"`
	Height        float64 `json:"height"`
	OriTextWidth  float64 `json:"oriTextWidth"`
	OriTextHeight float64 `json:"oriTextHeight"`
	IsTruncated   bool    `json:"isTruncated"`
	Tooltext      string  `json:"tooltext,omitempty"`
	Err           error   `json:"-"`
}

// ellipsis variants from widest to none.
type ellipsis struct {
	text  string
	width float64
}

// Fit lays text out inside the request bounds using ctx for measurement.
func Fit(ctx *metrics.Context, req Request) *Result {
	return newFitter(ctx, req).run()
}

type fitter struct {
	ctx *metrics.Context
	req Request

	maxW, maxH float64
	budget     float64
	ell        ellipsis
	meter      meter

	out        []markup.Cell
	trim       []markup.Cell // out 在本行首次超出省略号预算之前的快照
	width      float64       // 当前行宽度
	height     float64       // 累计高度
	maxLineW   float64
	lastBroken int
	breaks     []int
}

func newFitter(ctx *metrics.Context, req Request) *fitter {
	return &fitter{ctx: ctx, req: req, lastBroken: -1}
}

func (f *fitter) run() *Result {
	text := Normalize(f.req.Text)
	res := &Result{
		Text:      text,
		OriText:   f.req.Text,
		MaxWidth:  f.req.MaxWidth,
		MaxHeight: f.req.MaxHeight,
	}

	f.maxW = f.req.MaxWidth
	f.maxH = f.req.MaxHeight
	if math.IsNaN(f.maxW) || math.IsNaN(f.maxH) {
		return f.nothing(res)
	}
	if f.maxH == f.ctx.LineHeight {
		f.maxH *= singleLineSlack
	}

	m, err := measureText(f.ctx, text)
	if err != nil {
		res.Err = err
		return res
	}
	f.meter = m.meter
	res.Text = m.meter.serialize(m.cells)
	res.OriTextWidth = m.size.Width
	res.OriTextHeight = m.size.Height

	if m.size.Height <= f.maxH && m.size.Width <= f.maxW {
		res.Width = m.size.Width
		res.Height = m.size.Height
		return res
	}
	if f.ctx.LineHeight > f.maxH {
		return f.nothing(res)
	}

	first, ok := firstVisible(m.cells)
	minW := 0.0
	if ok {
		minW = f.meter.charWidth(first)
	}
	if minW > f.maxW {
		return f.nothing(res)
	}
	f.pickEllipsis(minW)
	return f.walk(res, m.cells)
}

// pickEllipsis reserves room for the widest ellipsis that still lets the
// first character fit: "...", then "..", then ".", then none.
func (f *fitter) pickEllipsis(minW float64) {
	f.ell = ellipsis{}
	if f.req.UseEllipses {
		variants := []ellipsis{
			{metrics.EllipsesString, f.ctx.EllipsesWidth},
			{"..", 2 * f.ctx.DotWidth},
			{".", f.ctx.DotWidth},
		}
		for _, e := range variants {
			if minW <= f.maxW-e.width {
				f.ell = e
				break
			}
		}
	}
	f.budget = f.maxW - f.ell.width
}

func (f *fitter) walk(res *Result, cells []markup.Cell) *Result {
	f.height = f.ctx.LineHeight
	for _, c := range cells {
		if c.Break {
			if ok, keep := f.settle(); !ok {
				return f.truncate(res, keep)
			}
			if !f.lineBreak(c, f.width) {
				return f.truncate(res, f.height-f.ctx.LineHeight)
			}
			continue
		}
		cw := c.Box.Width
		f.width += cw
		if f.width > f.budget && f.trim == nil {
			f.trim = snapshot(f.out)
		}
		if f.width > f.maxW {
			if f.req.NoWrap {
				return f.truncate(res, f.height)
			}
			if c.IsSpace() {
				// 溢出的正是空格：空格本身变为换行
				if ok, keep := f.settle(); !ok {
					return f.truncate(res, keep)
				}
				if !f.lineBreak(breakCell(c), f.width) {
					return f.truncate(res, f.height-f.ctx.LineHeight)
				}
				continue
			}
			fits, keep := f.wrap(cw)
			if !fits {
				return f.truncate(res, keep)
			}
		}
		f.out = append(f.out, c)
	}
	if ok, keep := f.settle(); !ok {
		return f.truncate(res, keep)
	}

	if f.width > f.maxLineW {
		f.maxLineW = f.width
	}
	res.Text = f.meter.serialize(trimTrailing(f.out))
	res.Width = f.maxLineW
	res.Height = f.height
	return res
}

// settle replaces the running width of the current line with its measured
// width and, in wrap mode, breaks the line again while that exceeds maxW.
// Corrected letter widths only approximate a kerned line, so a line that
// fits by the sum can still overflow once measured as a whole.
func (f *fitter) settle() (bool, float64) {
	if f.req.NoWrap {
		return true, f.height
	}
	f.width = f.meter.span(f.out[f.lastBroken+1:])
	return f.wrap(0)
}

// lineBreak appends break cell c, closing a line of width lineW. It fails
// when the new line would not fit maxH.
func (f *fitter) lineBreak(c markup.Cell, lineW float64) bool {
	f.height += f.ctx.LineHeight
	if f.height > f.maxH {
		return false
	}
	if lineW > f.maxLineW {
		f.maxLineW = lineW
	}
	f.out = append(f.out, c)
	f.markBroken(len(f.out) - 1)
	f.width = 0
	f.trim = nil
	return true
}

// wrap inserts breaks until the current line, including the character of
// width cw about to be appended, fits maxW. On failure it returns the height
// the truncated result keeps.
func (f *fitter) wrap(cw float64) (bool, float64) {
	for f.width > f.maxW {
		lineW, ok := f.insertBreak()
		if !ok {
			// 当前行为空且字符本身放不下：去掉空行后截断
			f.trim = trimTrailing(f.out)
			return false, f.height - f.ctx.LineHeight
		}
		f.height += f.ctx.LineHeight
		if f.height > f.maxH {
			return false, f.height - f.ctx.LineHeight
		}
		if lineW > f.maxLineW {
			f.maxLineW = lineW
		}
		f.width = f.meter.span(f.out[f.lastBroken+1:]) + cw
		f.trim = nil
		if f.width > f.budget {
			f.trim = snapshot(f.out)
		}
	}
	return true, f.height
}

// insertBreak puts a break into the current line and returns the width of
// the line it closes. Candidates at or before lastBroken are never reused,
// and a candidate is taken only if the line it closes measures within maxW.
func (f *fitter) insertBreak() (float64, bool) {
	start := f.lastBroken + 1
	n := len(f.out)

	for i := n - 1; i > start; i-- {
		if !f.out[i].IsSpace() {
			continue
		}
		if w := f.meter.span(f.out[start:i]); w <= f.maxW {
			f.out[i] = breakCell(f.out[i])
			f.markBroken(i)
			return w, true
		}
	}

	for i := n - 1; i >= start; i-- {
		if !f.out[i].IsHyphen() {
			continue
		}
		at := i + 1 // 换行放在连字符之后（-<br/>）
		if i == n-1 {
			if i == start {
				continue
			}
			at = i // 连字符是最后一个字符：换行放在连字符之前（<br/>-）
		}
		if w := f.meter.span(f.out[start:at]); w <= f.maxW {
			f.out = insertCell(f.out, at, breakCell(f.out[i]))
			f.markBroken(at)
			return w, true
		}
	}

	// 没有可用的空格或连字符：在能放下的最长前缀之后强制换行
	for at := n; at > start; at-- {
		if w := f.meter.span(f.out[start:at]); w <= f.maxW {
			f.out = insertCell(f.out, at, breakCell(f.out[at-1]))
			f.markBroken(at)
			return w, true
		}
	}
	return 0, false
}

func (f *fitter) markBroken(i int) {
	f.lastBroken = i
	f.breaks = append(f.breaks, i)
}

// truncate finalizes with the text collected before the ellipsis budget was
// crossed plus the ellipsis.
func (f *fitter) truncate(res *Result, height float64) *Result {
	kept := f.trim
	if kept == nil {
		kept = f.out
	}
	kept = trimTrailing(snapshot(kept))

	// 保证最后一行加上省略号后不超过最大宽度
	lastW := f.meter.span(lastLine(kept))
	for lastW+f.ell.width > f.maxW && len(lastLine(kept)) > 0 {
		kept = trimTrailing(kept[:len(kept)-1])
		lastW = f.meter.span(lastLine(kept))
	}
	if len(kept) == 0 && f.ell.text == "" {
		return f.nothing(res)
	}
	if f.ell.text != "" {
		tags := []markup.Tag(nil)
		if n := len(kept); n > 0 {
			tags = kept[n-1].Tags
		}
		kept = append(kept, markup.Cell{
			Text: f.ell.text,
			Tags: tags,
			Box:  markup.Box{Width: f.ell.width, Height: f.ctx.LineHeight},
		})
	}

	res.Text = f.meter.serialize(kept)
	res.IsTruncated = true
	res.Tooltext = f.req.Text
	res.Height = height
	if height < f.ctx.LineHeight {
		res.Height = f.ctx.LineHeight
	}
	if f.req.NoWrap {
		w := lastW + f.ell.width
		if f.maxLineW > w {
			w = f.maxLineW
		}
		if w > f.maxW {
			w = f.maxW
		}
		res.Width = w
	} else {
		res.Width = f.maxW
	}
	return res
}

// nothing is the degenerate result: not even one character fits.
func (f *fitter) nothing(res *Result) *Result {
	res.Text = ""
	res.Width, res.Height = 0, 0
	res.OriTextWidth, res.OriTextHeight = 0, 0
	res.IsTruncated = f.req.Text != ""
	if res.IsTruncated {
		res.Tooltext = f.req.Text
	}
	return res
}

func firstVisible(cells []markup.Cell) (markup.Cell, bool) {
	for _, c := range cells {
		if !c.Break {
			return c, true
		}
	}
	return markup.Cell{}, false
}

func breakCell(near markup.Cell) markup.Cell {
	return markup.Cell{Break: true, Tags: near.Tags}
}

func insertCell(cells []markup.Cell, i int, c markup.Cell) []markup.Cell {
	cells = append(cells, markup.Cell{})
	copy(cells[i+1:], cells[i:])
	cells[i] = c
	return cells
}

func snapshot(cells []markup.Cell) []markup.Cell {
	return append(make([]markup.Cell, 0, len(cells)), cells...)
}

func trimTrailing(cells []markup.Cell) []markup.Cell {
	for n := len(cells); n > 0 && (cells[n-1].Break || cells[n-1].IsSpace()); n = len(cells) {
		cells = cells[:n-1]
	}
	return cells
}

func lastLine(cells []markup.Cell) []markup.Cell {
	for i := len(cells) - 1; i >= 0; i-- {
		if cells[i].Break {
			return cells[i+1:]
		}
	}
	return cells
}
