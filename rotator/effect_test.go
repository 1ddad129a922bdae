package rotator_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"rotword/css"
	"rotword/page"
	"rotword/rotator"
)

const hostPage = `<!DOCTYPE html>
<html><head><title>t</title></head>
<body>
<h1>Build <span id="rot">placeholder</span> software</h1>
<p class="tag">one</p>
<p class="tag">two</p>
</body></html>`

func newPage(t *testing.T) *page.Document {
	t.Helper()
	doc, err := page.ParseString(hostPage, page.FormatHTML, zap.NewNop())
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return doc
}

func newObserved() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return zap.New(core), logs
}

func TestEffect_FastSafeSimple(t *testing.T) {
	doc := newPage(t)

	e := rotator.New(doc, "#rot", []string{"Fast", "Safe", "Simple"}, rotator.WithDuration(9))
	if !e.Active() || e.Err() != nil {
		t.Fatalf("effect not active: %v", e.Err())
	}
	if e.AnimationName() != "wordSlide-3" {
		t.Errorf("AnimationName() = %q", e.AnimationName())
	}

	style := e.Stack().SelectAttrValue("style", "")
	for _, want := range []string{
		"animation-name: wordSlide-3;",
		"animation-duration: 9s;",
		"animation-timing-function: " + rotator.Easing + ";",
		"animation-iteration-count: infinite;",
	} {
		if !strings.Contains(style, want) {
			t.Errorf("stack style %q missing %q", style, want)
		}
	}

	kf, ok := doc.Styles().Lookup(rotator.DefaultKeyframesID)
	if !ok {
		t.Fatal("keyframes resource not installed")
	}
	for _, want := range []string{
		"@keyframes wordSlide-3",
		"0.00%, 26.67%",
		"33.33%, 60.00%",
		"66.67%, 93.33%",
		"translateY(-1.2em)",
		"translateY(-2.4em)",
		"100% {",
		"translateY(-3.6em)",
	} {
		if !strings.Contains(kf, want) {
			t.Errorf("keyframes missing %q:\n%s", want, kf)
		}
	}

	items := e.Stack().ChildElements()
	if len(items) != 6 {
		t.Fatalf("expected 6 items, got %d", len(items))
	}
	if items[3].Text() != "Fast" {
		t.Errorf("item 3 = %q, want Fast", items[3].Text())
	}

	out := doc.String()
	if strings.Contains(out, "placeholder") {
		t.Error("container content was not replaced")
	}
	if n := strings.Count(out, `class="word-item"`); n != 6 {
		t.Errorf("rendered %d word items, want 6", n)
	}
	if !strings.Contains(out, `<style id="rotating-words-base">`) {
		t.Error("base style not rendered")
	}
}

func TestEffect_SharedBaseStyle(t *testing.T) {
	doc := newPage(t)

	first := rotator.New(doc, "#rot", []string{"a", "b", "c"})
	second := rotator.New(doc, "p.tag", []string{"x", "y"})
	if !first.Active() || !second.Active() {
		t.Fatal("effects should be active")
	}

	reg := doc.Styles()
	if n := reg.Count(rotator.DefaultBaseID); n != 1 {
		t.Errorf("base style installed %d times", n)
	}
	if n := reg.Count(rotator.DefaultKeyframesID); n != 1 {
		t.Errorf("keyframes installed %d times", n)
	}

	// last synthesis wins
	kf, _ := reg.Lookup(rotator.DefaultKeyframesID)
	if !strings.Contains(kf, "wordSlide-2") || strings.Contains(kf, "wordSlide-3") {
		t.Errorf("unexpected keyframes content:\n%s", kf)
	}
	if first.Stack() == second.Stack() || first.ID() == second.ID() {
		t.Error("effects must have separate markup")
	}
}

func TestEffect_SynthesizeReplaces(t *testing.T) {
	doc := newPage(t)
	reg := doc.Styles()
	a := rotator.New(doc, "#rot", []string{"a", "b", "c"}, rotator.WithDuration(6))

	reg.Upsert(a.KeyframesID(), "/* stale */")
	if err := a.Synthesize(); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	content, _ := reg.Lookup(a.KeyframesID())
	if strings.Contains(content, "stale") || !strings.Contains(content, "@keyframes wordSlide-3") {
		t.Errorf("keyframes not replaced:\n%s", content)
	}

	// shared resource now holds two word schedule, synthesizing again brings
	// three word one back
	b := rotator.New(doc, "p.tag", []string{"x", "y"})
	content, _ = reg.Lookup(b.KeyframesID())
	if !strings.Contains(content, "@keyframes wordSlide-2") {
		t.Fatalf("unexpected keyframes:\n%s", content)
	}
	if err := a.Synthesize(); err != nil {
		t.Fatalf("Synthesize() error = %v", err)
	}
	content, _ = reg.Lookup(a.KeyframesID())
	if !strings.Contains(content, "@keyframes wordSlide-3") || strings.Contains(content, "wordSlide-2") {
		t.Errorf("keyframes are not from the last call:\n%s", content)
	}

	if n := reg.Count(a.KeyframesID()); n != 1 {
		t.Errorf("keyframes installed %d times, want 1", n)
	}
	if n := strings.Count(doc.String(), "@keyframes"); n != 1 {
		t.Errorf("document holds %d keyframes blocks", n)
	}
}

func TestEffect_SameStyleIDs(t *testing.T) {
	tests := []struct {
		name      string
		options   []rotator.Option
		words     []string
		keyframes string
	}{
		{
			name:      "explicit",
			options:   []rotator.Option{rotator.WithStyleIDs("x", "x")},
			words:     []string{"a", "b"},
			keyframes: rotator.DefaultKeyframesID,
		},
		{
			name:      "normalized",
			options:   []rotator.Option{rotator.WithStyleIDs("Style X", "style-x")},
			words:     []string{"a", "b"},
			keyframes: rotator.DefaultKeyframesID,
		},
		{
			name: "per count",
			options: []rotator.Option{
				rotator.WithStyleIDs("kf-2", "kf"),
				rotator.WithKeyframesScope(rotator.ScopePerCount),
			},
			words:     []string{"a", "b"},
			keyframes: rotator.DefaultKeyframesID + "-2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := newPage(t)
			e := rotator.New(doc, "#rot", tt.words, tt.options...)

			if e.BaseID() != rotator.DefaultBaseID || e.KeyframesID() != tt.keyframes {
				t.Errorf("ids = %q, %q", e.BaseID(), e.KeyframesID())
			}
			reg := doc.Styles()
			base, ok := reg.Lookup(e.BaseID())
			if !ok || !strings.Contains(base, ".rotating-words-wrapper") {
				t.Errorf("base style lost:\n%s", base)
			}
			if reg.Count(e.KeyframesID()) != 1 {
				t.Error("keyframes not installed")
			}
			e.Refresh()
			if base, _ := reg.Lookup(e.BaseID()); !strings.Contains(base, ".rotating-words-wrapper") {
				t.Error("base style lost after refresh")
			}
		})
	}
}

func TestEffect_MissingContainer(t *testing.T) {
	doc := newPage(t)
	log, logs := newObserved()
	before := doc.String()

	e := rotator.New(doc, "#nope", []string{"a", "b"}, rotator.WithLogger(log))

	if e.Active() {
		t.Error("effect must be inert")
	}
	if !errors.Is(e.Err(), rotator.ErrNoContainer) {
		t.Errorf("Err() = %v, want ErrNoContainer", e.Err())
	}
	if e.Stack() != nil || e.AnimationName() != "" {
		t.Error("inert effect must not have markup")
	}
	if got := doc.String(); got != before {
		t.Errorf("document changed:\n%s", got)
	}
	if ids := doc.Styles().IDs(); len(ids) != 0 {
		t.Errorf("styles installed: %v", ids)
	}
	if logs.FilterLevelExact(zapcore.ErrorLevel).Len() != 1 {
		t.Errorf("expected single error log, got %v", logs.All())
	}

	if err := e.Synthesize(); !errors.Is(err, rotator.ErrNoContainer) {
		t.Errorf("Synthesize() on inert effect = %v", err)
	}
	e.Refresh()
	if got := doc.String(); got != before {
		t.Error("Refresh of inert effect changed document")
	}
}

func TestEffect_BadSelector(t *testing.T) {
	doc := newPage(t)

	e := rotator.New(doc, "div[", []string{"a"})
	if e.Active() || e.Err() == nil {
		t.Fatal("effect with bad selector must be inert")
	}
	if !errors.Is(e.Err(), css.ErrBadSelector) {
		t.Errorf("Err() = %v, want ErrBadSelector", e.Err())
	}
}

func TestEffect_NoWords(t *testing.T) {
	doc := newPage(t)
	log, logs := newObserved()

	e := rotator.New(doc, "#rot", nil, rotator.WithLogger(log))
	if !e.Active() {
		t.Fatal("effect should be active")
	}
	if len(e.Stack().ChildElements()) != 0 {
		t.Error("stack should be empty")
	}
	if e.AnimationName() != "" || e.Schedule() != nil {
		t.Error("keyframes must not be synthesized")
	}

	reg := doc.Styles()
	if reg.Count(rotator.DefaultBaseID) != 1 {
		t.Error("base style should be installed")
	}
	if reg.Count(rotator.DefaultKeyframesID) != 0 {
		t.Error("keyframes should not be installed")
	}
	if logs.FilterLevelExact(zapcore.WarnLevel).Len() == 0 {
		t.Error("expected warning about empty word list")
	}
	if !errors.Is(e.Synthesize(), rotator.ErrNoWords) {
		t.Error("Synthesize() should report ErrNoWords")
	}
}

func TestEffect_InvalidDuration(t *testing.T) {
	for _, d := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		doc := newPage(t)
		e := rotator.New(doc, "#rot", []string{"a", "b"}, rotator.WithDuration(d))
		if e.Duration() != rotator.DefaultDuration {
			t.Errorf("duration %v: got %v, want default", d, e.Duration())
		}
		if !strings.Contains(e.Stack().SelectAttrValue("style", ""), "animation-duration: 12s;") {
			t.Errorf("duration %v: stack style %q", d, e.Stack().SelectAttrValue("style", ""))
		}
	}
}

func TestEffect_PerCountScope(t *testing.T) {
	doc := newPage(t)

	a := rotator.New(doc, "#rot", []string{"a", "b", "c"}, rotator.WithKeyframesScope(rotator.ScopePerCount))
	b := rotator.New(doc, "p.tag", []string{"x", "y"}, rotator.WithKeyframesScope(rotator.ScopePerCount))

	if a.KeyframesID() == b.KeyframesID() {
		t.Fatalf("keyframes ids must differ: %s", a.KeyframesID())
	}
	reg := doc.Styles()
	for _, e := range []*rotator.Effect{a, b} {
		content, ok := reg.Lookup(e.KeyframesID())
		if !ok || !strings.Contains(content, e.AnimationName()) {
			t.Errorf("keyframes %s missing or wrong:\n%s", e.KeyframesID(), content)
		}
	}
}

func TestEffect_Options(t *testing.T) {
	doc := newPage(t)

	extra := css.NewParser(zap.NewNop()).Parse([]byte(`.word-item { font-family: serif; }`))
	e := rotator.New(doc, "#rot", []string{"a", "b"},
		rotator.WithPalette("red", "blue"),
		rotator.WithStyleIDs("My Base", ""),
		rotator.WithExtraStyle(extra),
	)

	if e.BaseID() != "my-base" {
		t.Errorf("BaseID() = %q", e.BaseID())
	}
	if e.KeyframesID() != rotator.DefaultKeyframesID {
		t.Errorf("KeyframesID() = %q", e.KeyframesID())
	}
	base, ok := doc.Styles().Lookup("my-base")
	if !ok || !strings.Contains(base, "font-family: serif;") {
		t.Errorf("extra rules not merged:\n%s", base)
	}
	colors := []string{"red", "blue", "red", "blue"}
	for i, item := range e.Stack().ChildElements() {
		if got := item.SelectAttrValue("style", ""); got != "color: "+colors[i]+";" {
			t.Errorf("item %d style = %q", i, got)
		}
	}
}

func TestEffect_Refresh(t *testing.T) {
	doc := newPage(t)
	e := rotator.New(doc, "#rot", []string{"a", "b"})
	old := e.Stack()

	e.Refresh()

	if e.Stack() == old {
		t.Error("markup was not rebuilt")
	}
	if n := strings.Count(doc.String(), rotator.WrapperClass); n < 1 {
		t.Error("wrapper missing after refresh")
	}
	if n := strings.Count(doc.String(), `class="`+rotator.WrapperClass+`"`); n != 1 {
		t.Errorf("expected single wrapper, got %d", n)
	}
	if doc.Styles().Count(rotator.DefaultBaseID) != 1 {
		t.Error("base style duplicated")
	}
}

func TestEffect_WordsNormalized(t *testing.T) {
	doc := newPage(t)
	e := rotator.New(doc, "#rot", []string{"Cafe\u0301", "b"})

	if got := e.Words()[0]; got != "Caf\u00e9" {
		t.Errorf("word not normalized: %q", got)
	}
	if got := e.DisplayList(); len(got) != 4 || got[2] != got[0] {
		t.Errorf("DisplayList() = %v", got)
	}
}

func TestParseKeyframesScope(t *testing.T) {
	for name, want := range map[string]rotator.KeyframesScope{
		"":          rotator.ScopeShared,
		"shared":    rotator.ScopeShared,
		"Per-Count": rotator.ScopePerCount,
	} {
		got, err := rotator.ParseKeyframesScope(name)
		if err != nil || got != want {
			t.Errorf("ParseKeyframesScope(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := rotator.ParseKeyframesScope("global"); err == nil {
		t.Error("expected error for unknown scope")
	}
}
