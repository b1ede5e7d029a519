// Package layout fits every label of a batch document through smartlabel
// managers, one manager per style.
package layout

import (
	"fmt"

	"github.com/ByLCY/smartlabel/binding"
	"github.com/ByLCY/smartlabel/dsl"
	"github.com/ByLCY/smartlabel/logger"
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/smartlabel"
)

// Build 根据 DSL AST 与绑定数据计算每个标签的拟合结果。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Containers == nil {
		return nil, fmt.Errorf("layout: 缺少测量后端 Containers")
	}
	reqs, err := doc.Requests()
	if err != nil {
		return nil, err
	}

	reg := smartlabel.NewRegistry()
	defer reg.Close()

	res := &Result{Document: doc.Name, Version: doc.Version}
	for _, req := range reqs {
		key := req.Style.Normalize().Key()
		m, ok := reg.Get(key)
		if !ok {
			m = smartlabel.New(key, opts.Containers(), req.UseEllipses, smartlabel.Options{MaxCacheLimit: opts.CacheLimit})
			reg.Put(m)
			m.SetStyle(req.Style)
		}
		m.UseEllipsesOnOverflow(req.UseEllipses)

		text := bind(req.Text, data)
		fitted := m.GetSmartText(text, req.MaxWidth, req.MaxHeight, req.NoWrap)
		if fitted == nil {
			return nil, fmt.Errorf("label %s: 样式 %s 的管理器不可用", req.Name, key)
		}
		if fitted.Err != nil {
			logger.WarningLogger.Printf("label %s: %v", req.Name, fitted.Err)
		}
		res.Labels = append(res.Labels, Label{
			Name:        req.Name,
			StyleName:   req.StyleName,
			StyleKey:    key,
			Style:       req.Style,
			Text:        text,
			NoWrap:      req.NoWrap,
			UseEllipses: req.UseEllipses,
			Result:      fitted,
			Lines:       smartlabel.TextToLines(fitted),
		})
	}

	if opts.Debug.CacheStats {
		res.Cache = map[string]metrics.Stats{}
		for _, l := range res.Labels {
			m, _ := reg.Get(l.StyleKey)
			if ctx := m.Context(); ctx != nil {
				res.Cache[l.StyleKey] = ctx.Cache.Stats()
			}
		}
	}
	logger.ProgressLogger.Printf("文档 %s 共拟合 %d 个标签", doc.Name, len(res.Labels))
	return res, nil
}

// bind fills placeholders. Bound values never add elements: in markup they
// are escaped, and a plain template whose values carry tags is promoted to
// markup so that those tags show as literal text.
func bind(text string, data any) string {
	if isMarkup(text) {
		return binding.InterpolateHTML(text, data)
	}
	out := binding.Interpolate(text, data)
	if !isMarkup(out) {
		return out
	}
	return "<span>" + binding.InterpolateHTML(text, data) + "</span>"
}

func isMarkup(text string) bool {
	return markup.HasTags(text) && !markup.OnlyBreaks(text)
}
