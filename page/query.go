package page

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/beevik/etree"

	"rotword/css"
)

// ErrNoMatch is returned when selector does not resolve to any element.
var ErrNoMatch = errors.New("selector did not match any element")

// Query returns all elements matching selector in document order.
func (d *Document) Query(selector string) ([]*etree.Element, error) {
	sels, err := css.ParseSelector(selector)
	if err != nil {
		return nil, err
	}

	var found []*etree.Element
	walk(&d.doc.Element, func(el *etree.Element) bool {
		if slices.ContainsFunc(sels, func(s css.Selector) bool { return matches(el, &s) }) {
			found = append(found, el)
		}
		return true
	})
	return found, nil
}

// QueryFirst returns the first element matching selector.
func (d *Document) QueryFirst(selector string) (*etree.Element, error) {
	found, err := d.Query(selector)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, selector)
	}
	return found[0], nil
}

func matches(el *etree.Element, s *css.Selector) bool {
	if !matchCompound(el, s) {
		return false
	}
	if s.Ancestor == nil {
		return true
	}
	if s.Combinator == css.CombinatorChild {
		p := parentElement(el)
		return p != nil && matches(p, s.Ancestor)
	}
	for p := parentElement(el); p != nil; p = parentElement(p) {
		if matches(p, s.Ancestor) {
			return true
		}
	}
	return false
}

func matchCompound(el *etree.Element, s *css.Selector) bool {
	if s.Pseudo != css.PseudoNone {
		// pseudo-elements are never part of the tree
		return false
	}
	if s.Element != "" && s.Element != "*" && !strings.EqualFold(el.Tag, s.Element) {
		return false
	}
	if s.ID != "" && el.SelectAttrValue("id", "") != s.ID {
		return false
	}
	if len(s.Classes) > 0 {
		have := strings.Fields(el.SelectAttrValue("class", ""))
		for _, c := range s.Classes {
			if !slices.Contains(have, c) {
				return false
			}
		}
	}
	return true
}

// parentElement returns parent skipping document node.
func parentElement(el *etree.Element) *etree.Element {
	p := el.Parent()
	if p == nil || p.Tag == "" {
		return nil
	}
	return p
}
