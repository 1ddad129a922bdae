package css

import (
	"fmt"
	"io"
	"maps"
	"sort"
	"strings"
	"unicode"
)

// cssEscapeDoubleQuoted escapes a string for use inside CSS double quotes.
func cssEscapeDoubleQuoted(s string) string {
	if !strings.ContainsAny(s, `"\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Value represents a CSS property value.
type Value struct {
	Raw     string  // Original CSS value string (e.g., "1.2em", "bold", "#ff0000")
	Value   float64 // Numeric value if applicable
	Unit    string  // Unit if applicable: "em", "px", "%", "s", etc.
	Keyword string  // Keyword if applicable: "block", "infinite", etc.
}

// Raw makes value which is written out exactly as given.
func Raw(s string) Value {
	return Value{Raw: s}
}

// IsNumeric returns true if the value has a numeric component.
func (v Value) IsNumeric() bool {
	if v.Unit != "" {
		return true
	}
	if v.Value != 0 && v.Keyword == "" {
		return true
	}
	if v.Raw != "" && v.Keyword == "" {
		firstChar := rune(v.Raw[0])
		if unicode.IsDigit(firstChar) || firstChar == '.' || firstChar == '-' || firstChar == '+' {
			return true
		}
	}
	return false
}

// IsKeyword returns true if the value is a keyword (no numeric component).
func (v Value) IsKeyword() bool {
	return v.Keyword != "" && v.Unit == ""
}

// Props builds property map from name/value pairs. Dangling name is ignored.
func Props(pairs ...string) map[string]Value {
	props := make(map[string]Value, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		props[pairs[i]] = Raw(pairs[i+1])
	}
	return props
}

// Declaration is a single property in an ordered declaration list (inline styles).
type Declaration struct {
	Name  string
	Value Value
}

// Decl is a shortcut for Declaration with raw value.
func Decl(name, raw string) Declaration {
	return Declaration{Name: name, Value: Raw(raw)}
}

// InlineStyle formats declarations for use in a style attribute, keeping order.
func InlineStyle(decls ...Declaration) string {
	parts := make([]string, 0, len(decls))
	for _, d := range decls {
		if d.Name == "" || d.Value.Raw == "" {
			continue
		}
		parts = append(parts, d.Name+": "+d.Value.Raw+";")
	}
	return strings.Join(parts, " ")
}

// PseudoElement represents which pseudo-element a rule applies to.
type PseudoElement int

const (
	PseudoNone   PseudoElement = iota // No pseudo-element
	PseudoBefore                      // ::before
	PseudoAfter                       // ::after
)

// String returns the CSS representation of the pseudo-element.
func (p PseudoElement) String() string {
	switch p {
	case PseudoBefore:
		return "::before"
	case PseudoAfter:
		return "::after"
	default:
		return ""
	}
}

// Combinator links compound selector to its Ancestor.
type Combinator int

const (
	CombinatorNone       Combinator = iota
	CombinatorDescendant            // "a b"
	CombinatorChild                 // "a > b"
)

// Selector represents a parsed compound selector with optional ancestor chain.
type Selector struct {
	Raw        string        // Original selector string
	Element    string        // Element name (e.g., "span"), "*" or empty
	ID         string        // id without hash
	Classes    []string      // class names without dots
	Pseudo     PseudoElement // Pseudo-element if present
	Ancestor   *Selector     // compound this one is nested in
	Combinator Combinator    // relation to Ancestor
}

// Class returns the first class of the selector, if any.
func (s Selector) Class() string {
	if len(s.Classes) == 0 {
		return ""
	}
	return s.Classes[0]
}

// IsSimple returns true if this compound selects anything at all.
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.ID != "" || len(s.Classes) > 0
}

// IsDescendant returns true if this selector has an ancestor part.
func (s Selector) IsDescendant() bool {
	return s.Ancestor != nil
}

// Rule represents a single CSS rule (selector + properties).
type Rule struct {
	Selector   Selector
	Properties map[string]Value
	SourceLine int
}

// GetProperty returns the value for a property, or empty Value if not found.
func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// FontFace represents an @font-face declaration.
type FontFace struct {
	Family string
	Src    string
	Style  string
	Weight string
}

// MediaBlock represents a @media block with its query and nested rules.
type MediaBlock struct {
	Query string
	Rules []Rule
}

// Keyframe is a single step of @keyframes block. Selectors are percentages
// ("0.00%", "100%") or "from"/"to" keywords.
type Keyframe struct {
	Selectors  []string
	Properties map[string]Value
}

// Keyframes represents named @keyframes block.
type Keyframes struct {
	Name   string
	Frames []Keyframe
}

// StylesheetItem is a single top-level item in a stylesheet.
// Exactly one of the fields is non-nil.
type StylesheetItem struct {
	Rule       *Rule
	MediaBlock *MediaBlock
	FontFace   *FontFace
	Keyframes  *Keyframes
	Import     *string
}

// Stylesheet represents CSS stylesheet either parsed or built in code.
type Stylesheet struct {
	Items    []StylesheetItem // All top-level items in source order
	Warnings []string         // Warnings for unsupported features
}

// AddRule appends a plain rule for selector, which must be a single group.
func (s *Stylesheet) AddRule(selector string, props map[string]Value) error {
	sels, err := ParseSelector(selector)
	if err != nil {
		return err
	}
	if len(sels) != 1 {
		return fmt.Errorf("%w: grouped selector %q", ErrBadSelector, selector)
	}
	s.Items = append(s.Items, StylesheetItem{Rule: &Rule{Selector: sels[0], Properties: props}})
	return nil
}

// AddKeyframes appends @keyframes block.
func (s *Stylesheet) AddKeyframes(kf *Keyframes) {
	s.Items = append(s.Items, StylesheetItem{Keyframes: kf})
}

// Rules returns all top-level rules in source order.
func (s *Stylesheet) Rules() []Rule {
	var rules []Rule
	for _, item := range s.Items {
		if item.Rule != nil {
			rules = append(rules, *item.Rule)
		}
	}
	return rules
}

// Imports returns all @import URLs from the stylesheet in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.Import != nil {
			urls = append(urls, *item.Import)
		}
	}
	return urls
}

// FontFaces returns all @font-face declarations with non-empty family.
func (s *Stylesheet) FontFaces() []FontFace {
	var faces []FontFace
	for _, item := range s.Items {
		if item.FontFace != nil && item.FontFace.Family != "" {
			faces = append(faces, *item.FontFace)
		}
	}
	return faces
}

// Keyframes returns the last @keyframes block with the given name or nil.
func (s *Stylesheet) Keyframes(name string) *Keyframes {
	var found *Keyframes
	for _, item := range s.Items {
		if item.Keyframes != nil && item.Keyframes.Name == name {
			found = item.Keyframes
		}
	}
	return found
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector.Raw == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// Merge superimposes other on top of s. Properties of plain rules with the
// same selector are overwritten in place, everything else is appended.
func (s *Stylesheet) Merge(other *Stylesheet) {
	if other == nil {
		return
	}
	for _, item := range other.Items {
		if item.Rule != nil {
			if dst := s.lastRule(item.Rule.Selector.Raw); dst != nil {
				if dst.Properties == nil {
					dst.Properties = make(map[string]Value, len(item.Rule.Properties))
				}
				for name, val := range item.Rule.Properties {
					dst.Properties[name] = val
				}
				continue
			}
			// detach so later merges never write into other
			r := *item.Rule
			r.Properties = maps.Clone(item.Rule.Properties)
			item.Rule = &r
		}
		s.Items = append(s.Items, item)
	}
	s.Warnings = append(s.Warnings, other.Warnings...)
}

func (s *Stylesheet) lastRule(selector string) *Rule {
	for i := len(s.Items) - 1; i >= 0; i-- {
		if r := s.Items[i].Rule; r != nil && r.Selector.Raw == selector {
			return r
		}
	}
	return nil
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// @import items go first since browsers ignore them after any other rule.
// Property order within a rule is sorted alphabetically for deterministic output.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	items := make([]StylesheetItem, 0, len(s.Items))
	for _, item := range s.Items {
		if item.Import != nil {
			items = append(items, item)
		}
	}
	for _, item := range s.Items {
		if item.Import == nil {
			items = append(items, item)
		}
	}

	var total int64
	for i, item := range items {
		var n int
		var err error

		switch {
		case item.Import != nil:
			n, err = fmt.Fprintf(w, "@import url(\"%s\");\n", cssEscapeDoubleQuoted(*item.Import))
		case item.FontFace != nil:
			n, err = writeFontFace(w, item.FontFace)
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, item.MediaBlock)
		case item.Keyframes != nil:
			n, err = writeKeyframes(w, item.Keyframes)
		case item.Rule != nil:
			n, err = writeBlock(w, "", item.Rule.Selector.Raw, item.Rule.Properties)
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		if i < len(items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// String returns the CSS text of a standalone @keyframes block.
func (kf *Keyframes) String() string {
	var sb strings.Builder
	writeKeyframes(&sb, kf) //nolint:errcheck
	return sb.String()
}

// writeBlock writes "head { props }" with given indent.
func writeBlock(w io.Writer, indent, head string, props map[string]Value) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, head)
	total += n
	if err != nil {
		return total, err
	}
	n, err = writeProperties(w, indent+"  ", props)
	total += n
	if err != nil {
		return total, err
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

// writeProperties writes property declarations sorted alphabetically.
func writeProperties(w io.Writer, indent string, props map[string]Value) (int, error) {
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	var total int
	for _, name := range names {
		n, err := fmt.Fprintf(w, "%s%s: %s;\n", indent, name, props[name].Raw)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func writeFontFace(w io.Writer, ff *FontFace) (int, error) {
	var total int
	n, err := fmt.Fprint(w, "@font-face {\n")
	total += n
	if err != nil {
		return total, err
	}

	lines := []struct{ format, value string }{
		{"  font-family: \"%s\";\n", cssEscapeDoubleQuoted(ff.Family)},
		{"  src: %s;\n", ff.Src},
		{"  font-style: %s;\n", ff.Style},
		{"  font-weight: %s;\n", ff.Weight},
	}
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		n, err = fmt.Fprintf(w, l.format, l.value)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", mb.Query)
	total += n
	if err != nil {
		return total, err
	}
	for i, rule := range mb.Rules {
		n, err = writeBlock(w, "  ", rule.Selector.Raw, rule.Properties)
		total += n
		if err != nil {
			return total, err
		}
		if i < len(mb.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}

func writeKeyframes(w io.Writer, kf *Keyframes) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@keyframes %s {\n", kf.Name)
	total += n
	if err != nil {
		return total, err
	}
	for i, frame := range kf.Frames {
		n, err = writeBlock(w, "  ", strings.Join(frame.Selectors, ", "), frame.Properties)
		total += n
		if err != nil {
			return total, err
		}
		if i < len(kf.Frames)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}
	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
