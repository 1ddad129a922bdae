package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"

	"rotword/css"
)

func TestParser_ElementSelector(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`span { display: block; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	if rules[0].Selector.Element != "span" {
		t.Errorf("expected element 'span', got '%s'", rules[0].Selector.Element)
	}
	val, ok := rules[0].GetProperty("display")
	if !ok {
		t.Fatal("expected display property")
	}
	if val.Keyword != "block" {
		t.Errorf("expected keyword 'block', got '%s'", val.Keyword)
	}
}

func TestParser_ClassSelector(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.word-item { font-weight: 600; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	rule := rules[0]
	if rule.Selector.Element != "" {
		t.Errorf("expected no element, got '%s'", rule.Selector.Element)
	}
	if rule.Selector.Class() != "word-item" {
		t.Errorf("expected class 'word-item', got '%s'", rule.Selector.Class())
	}
	val, _ := rule.GetProperty("font-weight")
	if val.Value != 600 {
		t.Errorf("expected numeric 600, got %v", val.Value)
	}
}

func TestParser_GroupedSelectors(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`h2, h3, h4 { font-size: 120%; }`))

	rules := sheet.Rules()
	if len(rules) != 3 {
		t.Fatalf("expected 3 rules for grouped selector, got %d", len(rules))
	}
	expected := []string{"h2", "h3", "h4"}
	for i, rule := range rules {
		if rule.Selector.Element != expected[i] {
			t.Errorf("rule %d: expected element '%s', got '%s'", i, expected[i], rule.Selector.Element)
		}
		val, _ := rule.GetProperty("font-size")
		if val.Unit != "%" || val.Value != 120 {
			t.Errorf("rule %d: expected 120%%, got %v%s", i, val.Value, val.Unit)
		}
	}
}

func TestParser_UnsupportedSelectorWarns(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`a:hover { color: red; } p { color: blue; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 supported rule, got %d", len(rules))
	}
	if rules[0].Selector.Element != "p" {
		t.Errorf("expected 'p' rule to survive, got '%s'", rules[0].Selector.Raw)
	}
	if len(sheet.Warnings) == 0 {
		t.Error("expected warning for pseudo-class selector")
	}
}

func TestParser_Dimensions(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`.rotating-words-wrapper { height: 1.25em; line-height: 1.2; }`))

	rules := sheet.Rules()
	if len(rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(rules))
	}
	height, _ := rules[0].GetProperty("height")
	if height.Value != 1.25 || height.Unit != "em" {
		t.Errorf("height = %v%s, want 1.25em", height.Value, height.Unit)
	}
	lh, _ := rules[0].GetProperty("line-height")
	if lh.Value != 1.2 || lh.Unit != "" {
		t.Errorf("line-height = %v%s, want 1.2", lh.Value, lh.Unit)
	}
	if !lh.IsNumeric() {
		t.Error("line-height should be numeric")
	}
}

func TestParser_Keyframes(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	input := []byte(`@keyframes wordSlide-2 {
  0.00%, 40.00% { transform: translateY(0em); }
  50.00%, 90.00% { transform: translateY(-1.2em); }
  100% { transform: translateY(-2.4em); }
}
.word-stack { display: block; }`)

	sheet := p.Parse(input, "inline")

	kf := sheet.Keyframes("wordSlide-2")
	if kf == nil {
		t.Fatal("expected keyframes 'wordSlide-2'")
	}
	if len(kf.Frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(kf.Frames))
	}
	if got := strings.Join(kf.Frames[0].Selectors, ","); got != "0.00%,40.00%" {
		t.Errorf("frame 0 selectors = %q", got)
	}
	if got := strings.Join(kf.Frames[2].Selectors, ","); got != "100%" {
		t.Errorf("frame 2 selectors = %q", got)
	}
	tr, ok := kf.Frames[1].Properties["transform"]
	if !ok {
		t.Fatal("expected transform in frame 1")
	}
	if got := strings.ReplaceAll(tr.Raw, " ", ""); got != "translateY(-1.2em)" {
		t.Errorf("frame 1 transform = %q", tr.Raw)
	}

	if len(sheet.RulesBySelector(".word-stack")) != 1 {
		t.Error("expected rule after keyframes block")
	}
}

func TestParser_MediaBlockPreserved(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`@media screen { .word-item { font-weight: 400; } }`))

	if len(sheet.Items) != 1 || sheet.Items[0].MediaBlock == nil {
		t.Fatalf("expected single media block, got %+v", sheet.Items)
	}
	mb := sheet.Items[0].MediaBlock
	if mb.Query != "screen" {
		t.Errorf("query = %q, want 'screen'", mb.Query)
	}
	if len(mb.Rules) != 1 || mb.Rules[0].Selector.Class() != "word-item" {
		t.Errorf("unexpected media rules: %+v", mb.Rules)
	}
}

func TestParser_ImportAndFontFace(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`@import url("fonts.css");
@font-face { font-family: "Inter"; src: url(inter.woff2); font-weight: 800; }`))

	if imports := sheet.Imports(); len(imports) != 1 || imports[0] != "fonts.css" {
		t.Errorf("imports = %v", imports)
	}
	faces := sheet.FontFaces()
	if len(faces) != 1 {
		t.Fatalf("expected 1 font face, got %d", len(faces))
	}
	if faces[0].Family != "Inter" || faces[0].Weight != "800" {
		t.Errorf("unexpected font face: %+v", faces[0])
	}
}

func TestParser_Comments(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	sheet := p.Parse([]byte(`/* header */ .a { color: red; } /* trailer */`))

	if len(sheet.Rules()) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(sheet.Rules()))
	}
}
