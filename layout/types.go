package layout

// 该文件定义批量拟合结果，供预览渲染与调试 JSON 共用。

import (
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/renderer"
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

// Result 保存一个文档中所有标签的拟合结果。
type Result struct {
	Document string                   `json:"document"`
	Version  string                   `json:"version"`
	Labels   []Label                  `json:"labels"`
	Cache    map[string]metrics.Stats `json:"cache,omitempty"` // 按样式 Key 统计
}

// Label 记录单个标签的请求与拟合结果。
type Label struct {
	Name        string             `json:"name"`
	StyleName   string             `json:"style,omitempty"`
	StyleKey    string             `json:"styleKey"`
	Style       style.Style        `json:"-"`
	Text        string             `json:"text"` // 绑定数据之后的文本
	NoWrap      bool               `json:"noWrap"`
	UseEllipses bool               `json:"useEllipses"`
	Result      *smartlabel.Result `json:"result"`
	Lines       []string           `json:"lines"`
}

// Preview returns the labels in the form the preview renderer draws.
func (r *Result) Preview() []renderer.Label {
	out := make([]renderer.Label, 0, len(r.Labels))
	for _, l := range r.Labels {
		out = append(out, renderer.Label{Name: l.Name, Style: l.Style, Result: l.Result})
	}
	return out
}
