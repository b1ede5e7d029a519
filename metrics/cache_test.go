package metrics

import (
	"math"
	"reflect"
	"testing"
	"unicode/utf8"

	"github.com/ByLCY/smartlabel/style"
)

// countingMeasurer 是确定性的测量桩：每个字符 10px（"." 为 5px），
// 多字符文本每对相邻字符收紧 kern 像素，用于模拟字距偏差。
type countingMeasurer struct {
	kern  float64
	calls int
}

func (m *countingMeasurer) MeasureText(s string) Size {
	m.calls++
	w := 0.0
	for _, r := range s {
		if r == '.' {
			w += 5
		} else {
			w += 10
		}
	}
	if n := utf8.RuneCountInString(s); n > 1 {
		w -= m.kern * float64(n-1)
	}
	return Size{Width: w, Height: 12}
}

func TestMeasureHitsCache(t *testing.T) {
	m := &countingMeasurer{}
	c := NewCache(m, 10)
	first := c.Measure("hello")
	second := c.Measure("hello")
	if first != second {
		t.Fatalf("cached size differs: %+v vs %+v", first, second)
	}
	if m.calls != 1 {
		t.Fatalf("expected 1 measurer call, got %d", m.calls)
	}
	if st := c.Stats(); st.Hits != 1 || st.Misses != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

// 超过上限时按插入顺序淘汰最旧的键，map 与键列表保持一致。
func TestEvictsOldestFirst(t *testing.T) {
	m := &countingMeasurer{}
	c := NewCache(m, 3)
	for _, s := range []string{"a", "b", "c", "d", "e"} {
		c.Measure(s)
		if c.Len() > c.Limit() {
			t.Fatalf("cache grew past limit: %d > %d", c.Len(), c.Limit())
		}
		if len(c.Keys()) != c.Len() {
			t.Fatalf("key list and map out of sync: %d keys, %d entries", len(c.Keys()), c.Len())
		}
	}
	if got, want := c.Keys(), []string{"c", "d", "e"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("keys: got %v want %v", got, want)
	}
	if st := c.Stats(); st.Evictions != 2 {
		t.Fatalf("expected 2 evictions, got %d", st.Evictions)
	}
	calls := m.calls
	c.Measure("a")
	if m.calls != calls+1 {
		t.Fatalf("evicted key should be measured again")
	}
	c.Measure("e")
	if m.calls != calls+1 {
		t.Fatalf("resident key should not be measured again")
	}
}

func TestDefaultLimit(t *testing.T) {
	if got := NewCache(&countingMeasurer{}, 0).Limit(); got != DefaultMaxCacheLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultMaxCacheLimit, got)
	}
	if got := NewCache(&countingMeasurer{}, -5).Limit(); got != DefaultMaxCacheLimit {
		t.Fatalf("expected default limit %d, got %d", DefaultMaxCacheLimit, got)
	}
}

func TestCharWidthIsUnbounded(t *testing.T) {
	m := &countingMeasurer{}
	c := NewCache(m, 1)
	for _, r := range "abcdef" {
		c.CharWidth(r)
	}
	calls := m.calls
	for _, r := range "abcdef" {
		if w := c.CharWidth(r); w != 10 {
			t.Fatalf("CharWidth(%q)=%g want 10", r, w)
		}
	}
	if m.calls != calls {
		t.Fatalf("basic cache should not evict: %d extra calls", m.calls-calls)
	}
}

func TestCorrectionCompensatesKerning(t *testing.T) {
	m := &countingMeasurer{kern: 1}
	c := NewCache(m, 50)
	// width("aaaa") = 40 - 3 = 37, correction = (37 - 4*10) / 5
	if got := c.Correction('a', 4); math.Abs(got-(-0.6)) > 1e-9 {
		t.Fatalf("correction: got %g want -0.6", got)
	}
	if got := c.Correction('a', 1); got != 0 {
		t.Fatalf("single letter correction should be 0, got %g", got)
	}

	size, widths := c.Detailed("aaaa")
	if len(widths) != 4 {
		t.Fatalf("expected 4 widths, got %d", len(widths))
	}
	for i, w := range widths {
		if math.Abs(w-9.4) > 1e-9 {
			t.Fatalf("width[%d]=%g want 9.4", i, w)
		}
	}
	if math.Abs(size.Width-37.6) > 1e-9 || size.Height != 12 {
		t.Fatalf("detailed size: got %+v", size)
	}

	calls := m.calls
	c.Detailed("aaaa")
	if m.calls != calls {
		t.Fatalf("warm detailed measurement should not call the measurer")
	}
}

func TestNewContextPrecomputesPunctuation(t *testing.T) {
	m := &countingMeasurer{}
	ctx := NewContext(style.MustParse("12px Go"), m, nil, 14, 0)
	if ctx.DotWidth != 5 || ctx.EllipsesWidth != 15 {
		t.Fatalf("punctuation widths: dot=%g ellipses=%g", ctx.DotWidth, ctx.EllipsesWidth)
	}
	if ctx.LineHeight != 14 || ctx.Cache.Limit() != DefaultMaxCacheLimit {
		t.Fatalf("unexpected context: %+v", ctx)
	}
}
