package style

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	fontLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Length", Pattern: `\d+(?:\.\d+)?(?:px|pt|mm|cm|in)`},
		{Name: "Number", Pattern: `\d+(?:\.\d+)?x?`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[/,]`},
	})

	shorthandParser = participle.MustBuild[shorthand](
		participle.Lexer(fontLexer),
		participle.Elide("Whitespace"),
	)
)

// shorthand 对应 CSS font 简写：[style] [weight] size[/line-height] family[, family]*
type shorthand struct {
	Modifiers  []string      `parser:"@(Ident | Number)*"`
	Size       string        `parser:"@Length"`
	LineHeight *string       `parser:"( '/' @(Length | Number) )?"`
	Families   []*familyName `parser:"( @@ ( ',' @@ )* )?"`
}

type familyName struct {
	Quoted *quotedString `parser:"  @String"`
	Words  []string      `parser:"| @Ident+"`
}

func (f *familyName) String() string {
	if f.Quoted != nil {
		return string(*f.Quoted)
	}
	return strings.Join(f.Words, " ")
}

// quotedString unquotes Go-style strings on capture.
type quotedString string

// Capture implements participle.Capture.
func (s *quotedString) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = quotedString(val)
	return nil
}

// Parse reads a CSS-like font shorthand such as
//
//	italic bold 12px/1.4 "Go Mono", monospace
//
// Only the first family is kept; fallback families are accepted and ignored.
func Parse(value string) (Style, error) {
	sh, err := shorthandParser.ParseString("", value)
	if err != nil {
		return Style{}, fmt.Errorf("解析字体简写 %q 失败: %w", value, err)
	}

	var s Style
	for _, mod := range sh.Modifiers {
		m := strings.ToLower(mod)
		switch {
		case m == "normal" || m == "small-caps":
		case m == "italic" || m == "oblique":
			s.FontStyle = m
		case m == "bold" || m == "bolder" || m == "lighter":
			s.FontWeight = m
		case isNumericWeight(m):
			s.FontWeight = m
		default:
			return Style{}, fmt.Errorf("未知的字体修饰 %q", mod)
		}
	}

	s.FontSize = ParseLength(sh.Size)
	if s.FontSize.Value <= 0 {
		return Style{}, fmt.Errorf("字号必须为正数: %q", sh.Size)
	}
	if sh.LineHeight != nil {
		lh, ok := ParseLineHeight(*sh.LineHeight)
		if !ok {
			return Style{}, fmt.Errorf("无效的行高 %q", *sh.LineHeight)
		}
		s.LineHeight = lh
	}
	if len(sh.Families) > 0 {
		s.FontFamily = sh.Families[0].String()
	}
	return s.Normalize(), nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level defaults.
func MustParse(value string) Style {
	s, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return s
}

func isNumericWeight(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n >= 100 && n <= 900 && n%100 == 0
}
