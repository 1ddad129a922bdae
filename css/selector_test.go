package css_test

import (
	"errors"
	"slices"
	"testing"

	"rotword/css"
)

func TestParseSelector_Simple(t *testing.T) {
	tests := []struct {
		in      string
		element string
		id      string
		classes []string
	}{
		{"#word-rotator", "", "word-rotator", nil},
		{".word-stack", "", "", []string{"word-stack"}},
		{"span", "span", "", nil},
		{"DIV", "div", "", nil},
		{"*", "*", "", nil},
		{"span#hero.title.big", "span", "hero", []string{"title", "big"}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sels, err := css.ParseSelector(tt.in)
			if err != nil {
				t.Fatalf("ParseSelector() error = %v", err)
			}
			if len(sels) != 1 {
				t.Fatalf("expected 1 selector, got %d", len(sels))
			}
			s := sels[0]
			if s.Element != tt.element || s.ID != tt.id || !slices.Equal(s.Classes, tt.classes) {
				t.Errorf("got element=%q id=%q classes=%v", s.Element, s.ID, s.Classes)
			}
			if s.Raw != tt.in {
				t.Errorf("Raw = %q, want %q", s.Raw, tt.in)
			}
			if s.IsDescendant() {
				t.Error("simple selector must not have ancestor")
			}
		})
	}
}

func TestParseSelector_Combinators(t *testing.T) {
	sels, err := css.ParseSelector("main  .hero > span.slot")
	if err != nil {
		t.Fatalf("ParseSelector() error = %v", err)
	}
	if len(sels) != 1 {
		t.Fatalf("expected 1 selector, got %d", len(sels))
	}

	s := sels[0]
	if s.Element != "span" || s.Class() != "slot" {
		t.Fatalf("rightmost compound = %+v", s)
	}
	if s.Combinator != css.CombinatorChild || s.Ancestor == nil {
		t.Fatalf("expected child combinator, got %v", s.Combinator)
	}
	hero := s.Ancestor
	if hero.Class() != "hero" || hero.Combinator != css.CombinatorDescendant || hero.Ancestor == nil {
		t.Fatalf("unexpected middle compound %+v", hero)
	}
	if hero.Ancestor.Element != "main" || hero.Ancestor.Ancestor != nil {
		t.Fatalf("unexpected leftmost compound %+v", hero.Ancestor)
	}
}

func TestParseSelector_Groups(t *testing.T) {
	sels, err := css.ParseSelector("#a, .b ,span")
	if err != nil {
		t.Fatalf("ParseSelector() error = %v", err)
	}
	if len(sels) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(sels))
	}
	raws := []string{sels[0].Raw, sels[1].Raw, sels[2].Raw}
	if !slices.Equal(raws, []string{"#a", ".b", "span"}) {
		t.Errorf("raws = %v", raws)
	}
}

func TestParseSelector_PseudoElement(t *testing.T) {
	sels, err := css.ParseSelector("p::before")
	if err != nil {
		t.Fatalf("ParseSelector() error = %v", err)
	}
	if sels[0].Pseudo != css.PseudoBefore || sels[0].Element != "p" {
		t.Errorf("got %+v", sels[0])
	}
}

func TestParseSelector_Errors(t *testing.T) {
	for _, in := range []string{
		"",
		"   ",
		"a[href]",
		"a:hover",
		"a + b",
		"a ~ b",
		"> a",
		"a >",
		"a,,b",
		"span.",
		"#a#b",
	} {
		t.Run(in, func(t *testing.T) {
			if _, err := css.ParseSelector(in); !errors.Is(err, css.ErrBadSelector) {
				t.Errorf("ParseSelector(%q) error = %v, want ErrBadSelector", in, err)
			}
		})
	}
}
