package dsl_test

import (
	"math"
	"strings"
	"testing"

	"github.com/ByLCY/smartlabel/dsl"
	"github.com/ByLCY/smartlabel/style"
)

const sampleDSL = `
doc Shipping v1 {
  // shared defaults
  style base {
    font: "12px Go"
    ellipsis: true
  }

  # headings
  style title extends base {
    font-weight: bold
    line-height: 1.5
  }

  label greeting title {
    width: 120px
    height: 36
    "Hello, ${user.name|friend}!"
  }

  /* single line block with a raw string */
` + "  label sku { font: \"10px \\\"Go Mono\\\"\"; width: 30mm; nowrap: yes; text: `A-100\nB-200` }\n}\n"

func TestParseDocument(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if doc.Name != "Shipping" {
		t.Fatalf("expected document name Shipping, got %s", doc.Name)
	}
	if doc.Version != "v1" {
		t.Fatalf("expected version v1, got %s", doc.Version)
	}
	if len(doc.Sections) != 4 {
		t.Fatalf("expected 4 sections, got %d", len(doc.Sections))
	}

	kinds := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		kinds = append(kinds, s.Kind())
	}
	if got := strings.Join(kinds, ","); got != "style,style,label,label" {
		t.Fatalf("unexpected section kinds: %s", got)
	}

	title := doc.Sections[1].Style
	if title.Name != "title" || title.Extends != "base" {
		t.Fatalf("unexpected style header: %+v", title)
	}
	weight := title.Block.Statements[0].Assignment
	if weight == nil || weight.Key != "font-weight" || weight.Value.Raw() != "bold" {
		t.Fatalf("expected font-weight assignment, got %+v", title.Block.Statements[0])
	}

	greeting := doc.Sections[2].Label
	if greeting.Name != "greeting" || greeting.Style != "title" {
		t.Fatalf("unexpected label header: %+v", greeting)
	}
	if len(greeting.Block.Statements) != 3 || greeting.Block.Statements[2].Text == nil {
		t.Fatalf("label block missing literal content")
	}
	if got := string(*greeting.Block.Statements[2].Text); !strings.Contains(got, "${user.name|friend}") {
		t.Fatalf("expected interpolation in text literal, got %s", got)
	}

	sku := doc.Sections[3].Label
	if sku.Style != "" || len(sku.Block.Statements) != 4 {
		t.Fatalf("unexpected single line label: %+v", sku)
	}
}

func TestRequestsResolveStyles(t *testing.T) {
	doc, err := dsl.ParseString(sampleDSL)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	reqs, err := doc.Requests()
	if err != nil {
		t.Fatalf("requests failed: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(reqs))
	}

	g := reqs[0]
	want := style.Style{
		FontSize:   style.Px(12),
		FontFamily: "Go",
		FontWeight: "bold",
		FontStyle:  "normal",
		LineHeight: style.LineHeightSpec{Kind: style.LineHeightFactor, Factor: 1.5},
	}
	if g.Style != want {
		t.Fatalf("greeting style: got %+v want %+v", g.Style, want)
	}
	if g.MaxWidth != 120 || g.MaxHeight != 36 || g.NoWrap || !g.UseEllipses {
		t.Fatalf("unexpected greeting bounds: %+v", g)
	}
	if g.Text != "Hello, ${user.name|friend}!" {
		t.Fatalf("unexpected greeting text: %q", g.Text)
	}

	s := reqs[1]
	if s.Style.FontFamily != "Go Mono" || s.Style.FontSize != style.Px(10) {
		t.Fatalf("unexpected sku style: %+v", s.Style)
	}
	if math.Abs(s.MaxWidth-30*style.MmToPx) > 1e-9 || !math.IsInf(s.MaxHeight, 1) {
		t.Fatalf("unexpected sku bounds: %g x %g", s.MaxWidth, s.MaxHeight)
	}
	if !s.NoWrap || !s.UseEllipses || s.Text != "A-100\nB-200" {
		t.Fatalf("unexpected sku request: %+v", s)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	for _, src := range []string{
		`doc x v1 { label a { width 10 } }`,
		`doc x v1 { style { } }`,
		`label a { }`,
	} {
		if _, err := dsl.ParseString(src); err == nil {
			t.Fatalf("expected parse error for %q", src)
		}
	}
}
