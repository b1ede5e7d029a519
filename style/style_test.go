package style

import (
	"math"
	"testing"
)

func TestParseShorthand(t *testing.T) {
	cases := []struct {
		in     string
		size   float64
		unit   Unit
		family string
		weight string
		style  string
		lh     LineHeightSpec
	}{
		{in: "12px Go", size: 12, unit: UnitPX, family: "Go", weight: "normal", style: "normal"},
		{in: `italic bold 9pt "Go Mono", monospace`, size: 9, unit: UnitPT, family: "Go Mono", weight: "bold", style: "italic"},
		{in: "600 14px/1.4 Source Sans Pro", size: 14, unit: UnitPX, family: "Source Sans Pro", weight: "600", style: "normal",
			lh: LineHeightSpec{Kind: LineHeightFactor, Factor: 1.4}},
		{in: "oblique 3mm/5mm", size: 3, unit: UnitMM, family: DefaultFamily, weight: "normal", style: "oblique",
			lh: LineHeightSpec{Kind: LineHeightAbsolute, Len: Length{Value: 5, Unit: UnitMM}}},
	}
	for _, tc := range cases {
		s, err := Parse(tc.in)
		if err != nil {
			t.Fatalf("Parse(%q) error: %v", tc.in, err)
		}
		if s.FontSize.Value != tc.size || s.FontSize.Unit != tc.unit {
			t.Fatalf("Parse(%q) size: got=%v want=%g%s", tc.in, s.FontSize, tc.size, tc.unit)
		}
		if s.FontFamily != tc.family {
			t.Fatalf("Parse(%q) family: got=%q want=%q", tc.in, s.FontFamily, tc.family)
		}
		if s.FontWeight != tc.weight || s.FontStyle != tc.style {
			t.Fatalf("Parse(%q) weight/style: got=%q/%q want=%q/%q", tc.in, s.FontWeight, s.FontStyle, tc.weight, tc.style)
		}
		if s.LineHeight != tc.lh {
			t.Fatalf("Parse(%q) line-height: got=%+v want=%+v", tc.in, s.LineHeight, tc.lh)
		}
	}
}

func TestParseRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "Go", "wobbly 12px Go", "12px/abc Go"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) should fail", in)
		}
	}
}

// 相同字段的样式必须结构相等，才能作为缓存分区的键。
func TestStyleEqualityAfterNormalize(t *testing.T) {
	a := Style{FontSize: Px(12), FontFamily: " Go ", FontWeight: "BOLD"}.Normalize()
	b := MustParse("bold 12px Go")
	if a != b {
		t.Fatalf("expected equal styles: %+v vs %+v", a, b)
	}
	if a.Key() != "12px|Go|bold|normal|normal" {
		t.Fatalf("unexpected key %q", a.Key())
	}
	if !a.IsBold() || a.IsItalic() {
		t.Fatalf("bold/italic detection mismatch for %+v", a)
	}
}

func TestLengthConversions(t *testing.T) {
	const eps = 1e-9
	if got := Px(16).ToPT(); math.Abs(got-12) > eps {
		t.Fatalf("16px -> pt: got %g want 12", got)
	}
	if got := Pt(72).ToPX(); math.Abs(got-96) > eps {
		t.Fatalf("72pt -> px: got %g want 96", got)
	}
	if got := (Length{Value: 1, Unit: UnitIN}).ToMM(); math.Abs(got-25.4) > 1e-4 {
		t.Fatalf("1in -> mm: got %g want 25.4", got)
	}
	if got := ParseLength("2.5cm"); got.Value != 2.5 || got.Unit != UnitCM {
		t.Fatalf("ParseLength(2.5cm) = %+v", got)
	}
}

func TestLineHeightResolve(t *testing.T) {
	size := Px(10)
	if got := (LineHeightSpec{}).Resolve(size, 13); got != 13 {
		t.Fatalf("natural line height: got %g want 13", got)
	}
	if got := (LineHeightSpec{Kind: LineHeightFactor, Factor: 1.5}).Resolve(size, 13); got != 15 {
		t.Fatalf("factor line height: got %g want 15", got)
	}
	if got := (LineHeightSpec{Kind: LineHeightAbsolute, Len: Px(20)}).Resolve(size, 13); math.Abs(got-20) > 1e-9 {
		t.Fatalf("absolute line height: got %g want 20", got)
	}
}

// 仅行高不同的样式必须得到不同的键，否则会共用同一个测量上下文。
func TestKeyIncludesLineHeight(t *testing.T) {
	cases := map[string]string{
		"12px Go":      "12px|Go|normal|normal|normal",
		"12px/3 Go":    "12px|Go|normal|normal|3",
		"12px/1.5 Go":  "12px|Go|normal|normal|1.5",
		"12px/18px Go": "12px|Go|normal|normal|18px",
	}
	for in, want := range cases {
		if got := MustParse(in).Key(); got != want {
			t.Fatalf("Key(%q)=%q want %q", in, got, want)
		}
	}
}
