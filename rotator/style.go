package rotator

import (
	"rotword/css"
)

// Easing is applied uniformly to every transition.
const Easing = "cubic-bezier(0.76, 0, 0.24, 1)"

var baseRules = []struct {
	selector string
	props    []string
}{
	{"." + WrapperClass, []string{
		"display", "inline-block",
		"position", "relative",
		"vertical-align", "bottom",
		"overflow", "hidden",
		"line-height", "1.2",
		"height", "1.25em", // clipping height, one line
		"font-weight", "800",
	}},
	{"." + StackClass, []string{
		"display", "block",
		"animation-timing-function", Easing,
		"animation-iteration-count", "infinite",
	}},
	{"." + ItemClass, []string{
		"display", "block",
		"line-height", "1.2em",
		"font-weight", "800",
	}},
}

// BaseStylesheet returns layout rules shared by all effects of a document
// with extra rules superimposed.
func BaseStylesheet(extra *css.Stylesheet) *css.Stylesheet {
	sheet := &css.Stylesheet{}
	for _, r := range baseRules {
		if err := sheet.AddRule(r.selector, css.Props(r.props...)); err != nil {
			// this should never happen
			panic(err)
		}
	}
	sheet.Merge(extra)
	return sheet
}
