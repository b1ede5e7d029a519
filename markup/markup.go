// Package markup turns label text that carries inline HTML into a flat
// sequence of character cells and back.
//
// Cells are what the fitting engine mutates when it wraps or truncates
// markup-bearing text: every visible character is one cell, every line break
// is one cell with Break set, and each cell remembers the elements that
// enclose it so that Serialize can rebuild balanced markup afterwards.
package markup

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// BreakMarker is written wherever a line ends.
const BreakMarker = "<br/>"

var (
	tagPattern   = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	breakPattern = regexp.MustCompile(`(?i)^<br\s*/?>$`)
	splitPattern = regexp.MustCompile(`(?i)<br\s*/?>`)

	escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Tag is an element enclosing a cell.
type Tag struct {
	Name string `json:"name"`
	Raw  string `json:"raw"` // 原始起始标签，例如 <span style="color:red">
}

// Box is the rendered geometry of a cell in px.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Cell is one visible character (or a line break) of a label.
type Cell struct {
	Text  string `json:"text"`
	Tags  []Tag  `json:"tags,omitempty"`
	Break bool   `json:"break,omitempty"`
	Box   Box    `json:"box"`
}

// IsSpace reports whether the cell is a collapsed whitespace run.
func (c Cell) IsSpace() bool { return !c.Break && c.Text == " " }

// IsHyphen reports whether the cell is a hyphen.
func (c Cell) IsHyphen() bool { return !c.Break && c.Text == "-" }

// Bold reports whether a bold element encloses the cell.
func (c Cell) Bold() bool { return c.within("b", "strong") }

// Italic reports whether an italic element encloses the cell.
func (c Cell) Italic() bool { return c.within("i", "em") }

func (c Cell) within(names ...string) bool {
	for _, t := range c.Tags {
		for _, n := range names {
			if t.Name == n {
				return true
			}
		}
	}
	return false
}

// HasTags reports whether s contains anything that looks like an HTML tag.
func HasTags(s string) bool { return tagPattern.MatchString(s) }

// OnlyBreaks reports whether every tag in s is a <br>. Text without tags
// also qualifies.
func OnlyBreaks(s string) bool {
	for _, tag := range tagPattern.FindAllString(s, -1) {
		if !breakPattern.MatchString(tag) {
			return false
		}
	}
	return true
}

// SplitBreaks splits s on <br>, <br/> and <br /> markers.
func SplitBreaks(s string) []string { return splitPattern.Split(s, -1) }

// FromPlain builds cells from text whose only markup is <br>. Whitespace
// runs collapse to one space, each line is trimmed and trailing breaks are
// dropped.
func FromPlain(s string) []Cell {
	var cells []Cell
	for i, line := range SplitBreaks(s) {
		if i > 0 {
			cells = append(cells, Cell{Break: true})
		}
		for j, word := range strings.Fields(line) {
			if j > 0 {
				cells = append(cells, Cell{Text: " "})
			}
			for _, r := range word {
				cells = append(cells, Cell{Text: string(r)})
			}
		}
	}
	return trimEnd(cells)
}

// Parse tokenizes markup into cells. Whitespace collapses the way HTML
// renders it and every <br> becomes a break cell. Unknown elements are kept
// as enclosing tags; void elements other than <br> are dropped.
func Parse(s string) ([]Cell, error) {
	z := html.NewTokenizer(strings.NewReader(s))
	var (
		cells []Cell
		stack []Tag
	)
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return trimEnd(cells), nil
			}
			return nil, fmt.Errorf("解析标记文本失败: %w", z.Err())
		case html.TextToken:
			for _, r := range string(z.Text()) {
				if unicode.IsSpace(r) {
					if n := len(cells); n == 0 || cells[n-1].IsSpace() || cells[n-1].Break {
						continue
					}
					cells = append(cells, Cell{Text: " ", Tags: stack})
					continue
				}
				cells = append(cells, Cell{Text: string(r), Tags: stack})
			}
		case html.StartTagToken, html.SelfClosingTagToken:
			raw := string(z.Raw())
			name, _ := z.TagName()
			tag := string(name)
			if tag == "br" {
				cells = trimSpaceCells(cells)
				cells = append(cells, Cell{Break: true, Tags: stack})
				continue
			}
			if tt == html.SelfClosingTagToken || isVoid(tag) {
				continue
			}
			// 限制容量，保证之前单元格引用的 stack 不会被覆盖
			stack = append(stack[:len(stack):len(stack)], Tag{Name: tag, Raw: raw})
		case html.EndTagToken:
			name, _ := z.TagName()
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].Name == string(name) {
					stack = stack[:i]
					break
				}
			}
		}
	}
}

// Serialize rebuilds markup from cells, opening and closing tags so that the
// output stays balanced. Character text is escaped.
func Serialize(cells []Cell) string {
	var (
		b    strings.Builder
		open []Tag
	)
	for _, c := range cells {
		n := commonPrefix(open, c.Tags)
		for i := len(open) - 1; i >= n; i-- {
			b.WriteString("</" + open[i].Name + ">")
		}
		for _, t := range c.Tags[n:] {
			b.WriteString(t.Raw)
		}
		open = c.Tags
		if c.Break {
			b.WriteString(BreakMarker)
			continue
		}
		b.WriteString(escaper.Replace(c.Text))
	}
	for i := len(open) - 1; i >= 0; i-- {
		b.WriteString("</" + open[i].Name + ">")
	}
	return b.String()
}

// Join concatenates plain cells, writing BreakMarker for breaks.
func Join(cells []Cell) string {
	var b strings.Builder
	for _, c := range cells {
		if c.Break {
			b.WriteString(BreakMarker)
			continue
		}
		b.WriteString(c.Text)
	}
	return b.String()
}

// Strip removes every tag from s and unescapes entities.
func Strip(s string) string {
	s = splitPattern.ReplaceAllString(s, "\n")
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// Flatten removes every tag except line breaks, which are rewritten as
// BreakMarker, and unescapes entities. The result is suitable for FromPlain.
func Flatten(s string) string {
	s = tagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		if breakPattern.MatchString(tag) {
			return BreakMarker
		}
		return ""
	})
	return html.UnescapeString(s)
}

func trimSpaceCells(cells []Cell) []Cell {
	for len(cells) > 0 && cells[len(cells)-1].IsSpace() {
		cells = cells[:len(cells)-1]
	}
	return cells
}

// trimEnd drops trailing spaces and breaks.
func trimEnd(cells []Cell) []Cell {
	for n := len(cells); n > 0 && (cells[n-1].Break || cells[n-1].IsSpace()); n = len(cells) {
		cells = cells[:n-1]
	}
	return cells
}

func commonPrefix(a, b []Tag) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

func isVoid(name string) bool {
	switch name {
	case "area", "base", "col", "embed", "hr", "img", "input", "link", "meta", "source", "track", "wbr":
		return true
	}
	return false
}
