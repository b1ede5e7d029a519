package layout

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/ByLCY/smartlabel/dsl"
	"github.com/ByLCY/smartlabel/markup"
	"github.com/ByLCY/smartlabel/metrics"
	"github.com/ByLCY/smartlabel/smartlabel"
	"github.com/ByLCY/smartlabel/style"
)

// stubMeasurer 是一个最小实现：每个字符 10px（"." 为 5px），行高 12px。
type stubMeasurer struct{}

func (stubMeasurer) MeasureText(s string) metrics.Size {
	w := 0.0
	for _, r := range s {
		if r == '.' {
			w += 5
		} else {
			w += 10
		}
	}
	return metrics.Size{Width: w, Height: 12}
}

func (m stubMeasurer) MeasureNodes(text string) ([]markup.Cell, error) {
	cells, err := markup.Parse(text)
	if err != nil {
		return nil, err
	}
	markup.Layout(cells, func(c markup.Cell) (float64, float64) {
		return m.MeasureText(c.Text).Width, 12
	}, 12)
	return cells, nil
}

type stubContainers struct {
	created  *int
	disposed *int
}

func (s stubContainers) Get(st style.Style, limit int) (*metrics.Context, bool) {
	lh := st.LineHeight.Resolve(st.FontSize, 12)
	return metrics.NewContext(st, stubMeasurer{}, stubMeasurer{}, lh, limit), true
}

func (s stubContainers) Dispose() { *s.disposed++ }

func buildWithStub(t *testing.T, dslText string, data any, opts BuildOptions) (*Result, int, int) {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	created, disposed := 0, 0
	opts.Containers = func() smartlabel.ContainerManager {
		created++
		return stubContainers{created: &created, disposed: &disposed}
	}
	res, err := Build(doc, data, opts)
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	return res, created, disposed
}

const batchDSL = `
doc Batch v1 {
  style body { font: "12px Go" }
  style small extends body { font-size: 8px }

  label greet body { width: 70; height: 24; "Hello ${name|World}" }
  label cut body { width: 70; height: 12; nowrap: true; "Hello World" }
  label rich body { width: 200; "<b>${html}</b>" }
  label tiny small { "x" }
}
`

func TestBuildFitsEveryLabel(t *testing.T) {
	data := map[string]any{"html": "<i>&</i>"}
	res, created, disposed := buildWithStub(t, batchDSL, data, BuildOptions{Debug: DebugOptions{CacheStats: true}})

	if res.Document != "Batch" || len(res.Labels) != 4 {
		t.Fatalf("unexpected result: %+v", res)
	}
	// body 与 small 两个样式各一个管理器，构建结束后全部释放
	if created != 2 || disposed != 2 {
		t.Fatalf("expected 2 managers created and disposed, got %d/%d", created, disposed)
	}

	greet := res.Labels[0]
	if greet.Text != "Hello World" || !reflect.DeepEqual(greet.Lines, []string{"Hello", "World"}) {
		t.Fatalf("greet: %+v", greet)
	}
	cut := res.Labels[1]
	if cut.Result.Text != "Hello..." || !cut.Result.IsTruncated {
		t.Fatalf("cut: %+v", cut.Result)
	}
	rich := res.Labels[2]
	if rich.Text != "<b>&lt;i&gt;&amp;&lt;/i&gt;</b>" {
		t.Fatalf("bound markup should be escaped: %q", rich.Text)
	}
	if rich.Result.IsTruncated || rich.Result.Width != 80 {
		t.Fatalf("rich: %+v", rich.Result)
	}
	if res.Labels[3].StyleKey != "8px|Go|normal|normal|normal" {
		t.Fatalf("tiny style key: %s", res.Labels[3].StyleKey)
	}
	if len(res.Cache) != 2 {
		t.Fatalf("expected cache stats for 2 styles, got %v", res.Cache)
	}
	if got := res.Preview(); len(got) != 4 || got[1].Result != cut.Result {
		t.Fatalf("preview labels out of sync")
	}
}

func TestBuildRequiresContainers(t *testing.T) {
	doc, err := dsl.ParseString(batchDSL)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Build(doc, nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error without containers")
	}
	if _, err := Build(nil, nil, BuildOptions{}); err == nil {
		t.Fatalf("expected error for nil document")
	}
}

func TestEncodeJSONHandlesUnboundedHeight(t *testing.T) {
	res, _, _ := buildWithStub(t, batchDSL, nil, BuildOptions{})
	var buf bytes.Buffer
	if err := EncodeJSON(&buf, res); err != nil {
		t.Fatalf("encode: %v", err)
	}
	var back struct {
		Labels []struct {
			Name   string         `json:"name"`
			Result map[string]any `json:"result"`
		} `json:"labels"`
	}
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.Labels[2].Result["maxHeight"] != nil {
		t.Fatalf("unbounded height should encode as null: %v", back.Labels[2].Result)
	}
	if !strings.Contains(buf.String(), `"text": "<b>`) {
		t.Fatalf("markup should not be HTML-escaped in JSON output")
	}
}

// 仅行高不同的两个样式必须使用各自的管理器与行高。
func TestBuildSeparatesLineHeights(t *testing.T) {
	const src = `
doc Heights v1 {
  style a { font: "12px Go" }
  style b { font: "12px/3 Go" }
  label one a { width: 10; "A B" }
  label two b { width: 10; "A B" }
}
`
	res, created, _ := buildWithStub(t, src, nil, BuildOptions{})
	if created != 2 {
		t.Fatalf("expected 2 managers, got %d", created)
	}
	one, two := res.Labels[0], res.Labels[1]
	if one.StyleKey == two.StyleKey {
		t.Fatalf("styles share key %q", one.StyleKey)
	}
	if one.Result.Height != 24 || two.Result.Height != 72 {
		t.Fatalf("heights: one=%g two=%g, want 24 and 72", one.Result.Height, two.Result.Height)
	}
}

// 纯文本模板中的绑定值带有标签时按字面显示，不会变成加粗等元素。
func TestBuildKeepsBoundTagsLiteral(t *testing.T) {
	const src = `
doc Literal v1 {
  style body { font: "12px Go" }
  label tag body { width: 200; "Tag ${v}" }
  label addr body { width: 200; "${street}<br>${city}" }
}
`
	data := map[string]any{"v": "<b>x</b>", "street": "Main St", "city": "Oslo"}
	res, _, _ := buildWithStub(t, src, data, BuildOptions{})
	tag := res.Labels[0]
	if want := "<span>Tag &lt;b&gt;x&lt;/b&gt;</span>"; tag.Text != want {
		t.Fatalf("bound text: %q want %q", tag.Text, want)
	}
	if !reflect.DeepEqual(tag.Lines, []string{"<span>Tag &lt;b&gt;x&lt;/b&gt;</span>"}) || tag.Result.Width != 120 {
		t.Fatalf("tag result: %+v", tag.Result)
	}
	addr := res.Labels[1]
	if addr.Text != "Main St<br>Oslo" || !reflect.DeepEqual(addr.Lines, []string{"Main St", "Oslo"}) {
		t.Fatalf("addr: %q %v", addr.Text, addr.Lines)
	}
}
