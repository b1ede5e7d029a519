package style

import (
	"strconv"
	"strings"
)

// Unit 记录长度值在样式中书写时的原始单位。
type Unit int

const (
	UnitNone Unit = iota // 无单位数值（例如行高倍数）
	UnitPX               // CSS 像素（1/96 英寸）
	UnitPT               // 点
	UnitMM               // 毫米
	UnitCM               // 厘米
	UnitIN               // 英寸
)

// Conversion constants. Measurement results are reported in px.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToPt = 0.75
	PtToPx = 1.0 / PxToPt
	MmToPx = MmToPt * PtToPx
	PxToMm = 1.0 / MmToPx
)

// String returns the suffix used when the unit is written in a style string.
func (u Unit) String() string {
	switch u {
	case UnitPX:
		return "px"
	case UnitPT:
		return "pt"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Px builds a pixel length.
func Px(v float64) Length { return Length{Value: v, Unit: UnitPX} }

// Pt builds a point length.
func Pt(v float64) Length { return Length{Value: v, Unit: UnitPT} }

func (l Length) IsZero() bool { return l.Value == 0 }

// String renders the length the way it would be written in a font shorthand.
func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

// ToPT converts the length to points. Unit-less values are taken as px,
// matching how browsers read a bare font size.
func (l Length) ToPT() float64 {
	switch l.Unit {
	case UnitPT:
		return l.Value
	case UnitMM:
		return l.Value * MmToPt
	case UnitCM:
		return l.Value * 10 * MmToPt
	case UnitIN:
		return l.Value * 72
	default:
		return l.Value * PxToPt
	}
}

// ToPX converts the length to CSS pixels.
func (l Length) ToPX() float64 {
	if l.Unit == UnitPX || l.Unit == UnitNone {
		return l.Value
	}
	return l.ToPT() * PtToPx
}

// ToMM converts the length to millimeters.
func (l Length) ToMM() float64 { return l.ToPT() * PtToMm }

// ParseLength parses strings such as "12px", "9pt" or "3.5mm".
// 无法识别的输入返回零值。
func ParseLength(value string) Length {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"pt", UnitPT}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

// LineHeightKind distinguishes factor-based and absolute line heights.
type LineHeightKind int

const (
	LineHeightNatural LineHeightKind = iota // 使用字体自身的行高
	LineHeightFactor
	LineHeightAbsolute
)

// LineHeightSpec preserves the author's intent: the font's own line height,
// a factor of the font size (1.4) or an absolute length (18px).
type LineHeightSpec struct {
	Kind   LineHeightKind `json:"kind"`
	Factor float64        `json:"factor,omitempty"`
	Len    Length         `json:"len,omitempty"`
}

// Resolve returns the line height in px. natural is the font's own line
// height in px and is used for LineHeightNatural.
func (s LineHeightSpec) Resolve(fontSize Length, natural float64) float64 {
	switch s.Kind {
	case LineHeightFactor:
		return fontSize.ToPX() * s.Factor
	case LineHeightAbsolute:
		return s.Len.ToPX()
	default:
		return natural
	}
}

// String returns "normal", the factor, or the absolute length.
func (s LineHeightSpec) String() string {
	switch s.Kind {
	case LineHeightFactor:
		return strconv.FormatFloat(s.Factor, 'f', -1, 64)
	case LineHeightAbsolute:
		return s.Len.String()
	default:
		return "normal"
	}
}

// ParseLineHeight accepts "1.4", "1.4x" or an absolute length.
func ParseLineHeight(value string) (LineHeightSpec, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" || v == "normal" {
		return LineHeightSpec{}, v == "normal"
	}
	if f, err := strconv.ParseFloat(strings.TrimSuffix(v, "x"), 64); err == nil {
		if f <= 0 {
			return LineHeightSpec{}, false
		}
		return LineHeightSpec{Kind: LineHeightFactor, Factor: f}, true
	}
	l := ParseLength(v)
	if l.Value <= 0 {
		return LineHeightSpec{}, false
	}
	return LineHeightSpec{Kind: LineHeightAbsolute, Len: l}, true
}
