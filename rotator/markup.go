package rotator

import (
	"github.com/beevik/etree"

	"rotword/css"
)

const (
	WrapperClass = "rotating-words-wrapper"
	StackClass   = "word-stack"
	ItemClass    = "word-item"

	// IDAttr carries effect id on the wrapper element.
	IDAttr = "data-rotator-id"
)

// DefaultPalette is cycled by word index.
var DefaultPalette = []string{"#fde047", "#fb7185", "#4ade80", "#6366f1"}

// DisplayList returns words followed by the same words again, so the
// animation can jump from the end of cycle back to the start unnoticed.
func DisplayList(words []string) []string {
	out := make([]string, 0, 2*len(words))
	out = append(out, words...)
	return append(out, words...)
}

// ColorFor returns color of display list item i for n words. Colors follow
// index in the original list, not in the doubled one.
func ColorFor(palette []string, i, n int) string {
	if n <= 0 || len(palette) == 0 {
		return ""
	}
	return palette[(i%n)%len(palette)]
}

// buildMarkup replaces container content with wrapper > stack > items and
// returns stack element.
func buildMarkup(container *etree.Element, words, palette []string, id string) *etree.Element {
	for len(container.Child) > 0 {
		container.RemoveChildAt(0)
	}

	wrapper := container.CreateElement("span")
	wrapper.CreateAttr("class", WrapperClass)
	wrapper.CreateAttr(IDAttr, id)

	stack := wrapper.CreateElement("span")
	stack.CreateAttr("class", StackClass)

	for i, word := range DisplayList(words) {
		item := stack.CreateElement("span")
		item.CreateAttr("class", ItemClass)
		item.CreateAttr("style", css.InlineStyle(css.Decl("color", ColorFor(palette, i, len(words)))))
		item.SetText(word)
	}
	return stack
}
