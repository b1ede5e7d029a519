package dsl

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ByLCY/smartlabel/style"
)

// Request is one label resolved against its style chain. Sizes are px; an
// unset bound is +Inf.
type Request struct {
	Name        string      `json:"name"`
	StyleName   string      `json:"style,omitempty"`
	Style       style.Style `json:"-"`
	Text        string      `json:"text"`
	MaxWidth    float64     `json:"maxWidth"`
	MaxHeight   float64     `json:"maxHeight"`
	NoWrap      bool        `json:"noWrap"`
	UseEllipses bool        `json:"useEllipses"`
}

var knownKeys = map[string]bool{
	"font":        true,
	"font-size":   true,
	"font-family": true,
	"font-weight": true,
	"font-style":  true,
	"line-height": true,
	"width":       true,
	"height":      true,
	"nowrap":      true,
	"ellipsis":    true,
	"text":        true,
}

type styleDecl struct {
	name    string
	extends string
	props   map[string]string
}

// Requests resolves every label of the document, in declaration order.
func (d *Document) Requests() ([]Request, error) {
	if d == nil {
		return nil, fmt.Errorf("文档为空")
	}
	styles := map[string]styleDecl{}
	for _, sec := range d.Sections {
		if sec.Style == nil {
			continue
		}
		if _, dup := styles[sec.Style.Name]; dup {
			return nil, fmt.Errorf("%s: style %s 重复定义", sec.Style.Pos, sec.Style.Name)
		}
		props, _, err := blockProps(sec.Style.Block)
		if err != nil {
			return nil, fmt.Errorf("style %s: %w", sec.Style.Name, err)
		}
		if _, ok := props["text"]; ok {
			return nil, fmt.Errorf("%s: style %s 不能设置 text", sec.Style.Pos, sec.Style.Name)
		}
		styles[sec.Style.Name] = styleDecl{name: sec.Style.Name, extends: sec.Style.Extends, props: props}
	}
	resolved, err := resolveStyles(styles)
	if err != nil {
		return nil, err
	}

	var out []Request
	for _, sec := range d.Sections {
		lbl := sec.Label
		if lbl == nil {
			continue
		}
		props := map[string]string{}
		if lbl.Style != "" {
			parent, ok := resolved[lbl.Style]
			if !ok {
				return nil, fmt.Errorf("%s: label %s 引用的 style %s 未定义", lbl.Pos, lbl.Name, lbl.Style)
			}
			for k, v := range parent.props {
				props[k] = v
			}
		}
		own, texts, err := blockProps(lbl.Block)
		if err != nil {
			return nil, fmt.Errorf("label %s: %w", lbl.Name, err)
		}
		for k, v := range own {
			props[k] = v
		}
		if len(texts) > 0 {
			props["text"] = strings.Join(texts, "")
		}
		req, err := buildRequest(lbl.Name, lbl.Style, props)
		if err != nil {
			return nil, fmt.Errorf("%s: label %s: %w", lbl.Pos, lbl.Name, err)
		}
		out = append(out, req)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("文档中缺少 label 段落")
	}
	return out, nil
}

// blockProps collects assignments and bare text literals of a block.
func blockProps(b *Block) (map[string]string, []string, error) {
	props := map[string]string{}
	var texts []string
	if b == nil {
		return props, nil, nil
	}
	for _, stmt := range b.Statements {
		if stmt.Text != nil {
			texts = append(texts, string(*stmt.Text))
			continue
		}
		a := stmt.Assignment
		if a == nil {
			continue
		}
		key := strings.ToLower(a.Key)
		if !knownKeys[key] {
			return nil, nil, fmt.Errorf("%s: 未知属性 %s", a.Pos, a.Key)
		}
		props[key] = a.Value.Raw()
	}
	return props, texts, nil
}

func resolveStyles(styles map[string]styleDecl) (map[string]styleDecl, error) {
	resolved := map[string]styleDecl{}
	visiting := map[string]bool{}

	var dfs func(name string) (styleDecl, error)
	dfs = func(name string) (styleDecl, error) {
		if s, ok := resolved[name]; ok {
			return s, nil
		}
		s, ok := styles[name]
		if !ok {
			return styleDecl{}, fmt.Errorf("style %s 未定义", name)
		}
		if visiting[name] {
			return styleDecl{}, fmt.Errorf("style 继承存在循环：%s", name)
		}
		visiting[name] = true

		props := map[string]string{}
		if s.extends != "" {
			parent, err := dfs(s.extends)
			if err != nil {
				return styleDecl{}, err
			}
			for k, v := range parent.props {
				props[k] = v
			}
		}
		for k, v := range s.props {
			props[k] = v
		}
		s.props = props
		resolved[name] = s
		delete(visiting, name)
		return s, nil
	}

	for name := range styles {
		if _, err := dfs(name); err != nil {
			return nil, err
		}
	}
	return resolved, nil
}

func buildRequest(name, styleName string, props map[string]string) (Request, error) {
	req := Request{Name: name, StyleName: styleName, Text: props["text"]}

	var s style.Style
	if font, ok := props["font"]; ok {
		parsed, err := style.Parse(font)
		if err != nil {
			return Request{}, err
		}
		s = parsed
	}
	if v, ok := props["font-size"]; ok {
		s.FontSize = style.ParseLength(v)
		if s.FontSize.Value <= 0 {
			return Request{}, fmt.Errorf("字号必须为正数: %q", v)
		}
	}
	if v, ok := props["font-family"]; ok {
		s.FontFamily = v
	}
	if v, ok := props["font-weight"]; ok {
		s.FontWeight = v
	}
	if v, ok := props["font-style"]; ok {
		s.FontStyle = v
	}
	if v, ok := props["line-height"]; ok {
		lh, ok := style.ParseLineHeight(v)
		if !ok {
			return Request{}, fmt.Errorf("无效的行高 %q", v)
		}
		s.LineHeight = lh
	}
	req.Style = s.Normalize()

	var err error
	if req.MaxWidth, err = parseBound(props["width"]); err != nil {
		return Request{}, fmt.Errorf("width: %w", err)
	}
	if req.MaxHeight, err = parseBound(props["height"]); err != nil {
		return Request{}, fmt.Errorf("height: %w", err)
	}
	if req.NoWrap, err = parseBool(props["nowrap"], false); err != nil {
		return Request{}, fmt.Errorf("nowrap: %w", err)
	}
	if req.UseEllipses, err = parseBool(props["ellipsis"], true); err != nil {
		return Request{}, fmt.Errorf("ellipsis: %w", err)
	}
	return req, nil
}

// parseBound reads a px bound. Empty, "none" and "auto" mean unbounded.
func parseBound(v string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "none", "auto":
		return math.Inf(1), nil
	}
	l := style.ParseLength(v)
	if l.Value < 0 || (l.Value == 0 && strings.Trim(v, "0.pxtmcin ") != "") {
		return 0, fmt.Errorf("无效的尺寸 %q", v)
	}
	return l.ToPX(), nil
}

func parseBool(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	return strconv.ParseBool(v)
}
