package fitting

import (
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
)

// OriSize is the unconstrained footprint of a text.
type OriSize struct {
	Width  float64   `json:"width"`
	Height float64   `json:"height"`
	Text   string    `json:"text"`             // 清理后的文本（空白折叠、<br> 统一）
	Widths []float64 `json:"widths,omitempty"` // 每个可见字符的宽度，仅 detailed 时返回
}

// meter abstracts how widths are obtained: from the metrics cache for plain
// text, from rendered cell geometry for markup.
type meter interface {
	charWidth(c markup.Cell) float64
	span(cells []markup.Cell) float64
	serialize(cells []markup.Cell) string
}

type plainMeter struct{ cache *metrics.Cache }

func (m plainMeter) charWidth(c markup.Cell) float64 {
	r, _ := utf8.DecodeRuneInString(c.Text)
	return m.cache.CharWidth(r)
}

func (m plainMeter) span(cells []markup.Cell) float64 {
	if len(cells) == 0 {
		return 0
	}
	return m.cache.Measure(markup.Join(cells)).Width
}

func (plainMeter) serialize(cells []markup.Cell) string { return markup.Join(cells) }

type nodeMeter struct{}

func (nodeMeter) charWidth(c markup.Cell) float64 { return c.Box.Width }

func (nodeMeter) span(cells []markup.Cell) float64 {
	w := 0.0
	for _, c := range cells {
		w += c.Box.Width
	}
	return w
}

func (nodeMeter) serialize(cells []markup.Cell) string { return markup.Serialize(cells) }

// measured is a text turned into measured cells plus its unconstrained size.
type measured struct {
	cells []markup.Cell
	size  metrics.Size
	meter meter
}

// Normalize applies the input normalization every layout starts with.
func Normalize(text string) string { return norm.NFC.String(text) }

// Measure returns the unconstrained size of text. With detailed set the
// per-character widths are included.
func Measure(ctx *metrics.Context, text string, detailed bool) (OriSize, error) {
	m, err := measureText(ctx, Normalize(text))
	if err != nil {
		return OriSize{}, err
	}
	ori := OriSize{Width: m.size.Width, Height: m.size.Height, Text: m.meter.serialize(m.cells)}
	if detailed {
		ori.Widths = make([]float64, 0, len(m.cells))
		for _, c := range m.cells {
			if !c.Break {
				ori.Widths = append(ori.Widths, c.Box.Width)
			}
		}
	}
	return ori, nil
}

func measureText(ctx *metrics.Context, text string) (measured, error) {
	if markup.HasTags(text) && !markup.OnlyBreaks(text) {
		if ctx.Nodes != nil {
			return measureNodes(ctx, text)
		}
		// 后端无法渲染标记时退化为纯文本，仅保留换行
		text = markup.Flatten(text)
	}
	return measurePlain(ctx, text), nil
}

// measurePlain measures every line letter by letter through the cache and
// stores the corrected letter widths in the cell boxes.
func measurePlain(ctx *metrics.Context, text string) measured {
	cells := markup.FromPlain(text)
	var (
		size  metrics.Size
		lines = 1
		start = 0
	)
	flush := func(end int) {
		line := markup.Join(cells[start:end])
		s, widths := ctx.Cache.Detailed(line)
		for i := start; i < end; i++ {
			cells[i].Box.Width = widths[i-start]
			cells[i].Box.Height = s.Height
		}
		if s.Width > size.Width {
			size.Width = s.Width
		}
		if s.Height > size.Height {
			size.Height = s.Height
		}
	}
	for i, c := range cells {
		if c.Break {
			flush(i)
			lines++
			start = i + 1
		}
	}
	flush(len(cells))
	if lines > 1 {
		size.Height = float64(lines) * ctx.LineHeight
	}
	return measured{cells: cells, size: size, meter: plainMeter{cache: ctx.Cache}}
}

// measureNodes renders markup once and reads the cell geometry back.
func measureNodes(ctx *metrics.Context, text string) (measured, error) {
	cells, err := ctx.Nodes.MeasureNodes(text)
	if err != nil {
		return measured{}, fmt.Errorf("测量标记文本失败: %w", err)
	}
	var size metrics.Size
	lines := 1
	for _, c := range cells {
		if c.Break {
			lines++
			continue
		}
		if right := c.Box.Left + c.Box.Width; right > size.Width {
			size.Width = right
		}
		if c.Box.Height > size.Height {
			size.Height = c.Box.Height
		}
	}
	if lines > 1 {
		size.Height = float64(lines) * ctx.LineHeight
	}
	return measured{cells: cells, size: size, meter: nodeMeter{}}, nil
}
