package rotator

import (
	"github.com/beevik/etree"

	"rotword/misc"
)

// String returns readable tree of effect state, markup and schedule. It
// exists for debug reports only.
func (e *Effect) String() string {
	if e == nil {
		return "<nil Effect>"
	}

	tw := misc.NewTreeWriter()
	tw.Line(0, "Effect %s", e.id)
	tw.Value(1, "selector", e.selector)
	tw.Line(1, "words: %d, duration: %gs, scope: %s", len(e.words), e.opts.Duration, e.opts.Scope)
	for i, w := range e.words {
		tw.Line(2, "[%d] %q color %s", i, w, ColorFor(e.opts.Palette, i, len(e.words)))
	}
	tw.Line(1, "styles: base %q, keyframes %q", e.opts.BaseID, e.KeyframesID())

	if !e.Active() {
		tw.Line(1, "inert: %v", e.err)
		return tw.String()
	}

	if e.schedule != nil {
		s := e.schedule
		tw.Line(1, "schedule %s: step %.4f, hold %.4f, transition %.4f", e.animation, s.Step, s.Hold, s.Transition)
		for i, w := range s.Windows {
			tw.Line(2, "window[%d] %.2f%%-%.2f%% at %s", i, w.Start, w.End, formatEm(w.Offset))
		}
		tw.Line(2, "final at %s", formatEm(s.Final))
	}

	tw.Line(1, "markup")
	dumpElement(tw, 2, e.container)
	return tw.String()
}

func dumpElement(tw *misc.TreeWriter, depth int, el *etree.Element) {
	tw.Line(depth, "<%s>", el.FullTag())
	for _, a := range el.Attr {
		tw.Value(depth+1, "@"+a.FullKey(), a.Value)
	}
	if text := el.Text(); text != "" {
		tw.Value(depth+1, "text", text)
	}
	for _, child := range el.ChildElements() {
		dumpElement(tw, depth+1, child)
	}
}
