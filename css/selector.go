package css

import (
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// ErrBadSelector is returned for selectors outside of supported subset.
var ErrBadSelector = errors.New("unsupported or malformed selector")

// ParseSelector parses selector list (comma separated groups). Supported
// subset: type, universal, #id, .class, compounds of those, descendant and
// child combinators, ::before/::after pseudo-elements.
func ParseSelector(raw string) ([]Selector, error) {
	var (
		groups  []Selector
		chain   *Selector // compounds finished so far in current group
		cur     *Selector // compound being collected
		curRaw  strings.Builder
		group   strings.Builder
		pending = CombinatorNone
		dot     bool
		colons  int
	)

	bad := func(format string, args ...any) ([]Selector, error) {
		return nil, fmt.Errorf("%w: %s in %q", ErrBadSelector, fmt.Sprintf(format, args...), raw)
	}
	start := func() {
		if cur == nil {
			cur = &Selector{}
			curRaw.Reset()
		}
	}
	finish := func() {
		if cur == nil {
			return
		}
		cur.Raw = curRaw.String()
		if chain != nil {
			cur.Ancestor = chain
			cur.Combinator = pending
		}
		chain, cur, pending = cur, nil, CombinatorNone
	}
	closeGroup := func() error {
		if dot || colons > 0 {
			return errors.New("dangling delimiter")
		}
		finish()
		if chain == nil {
			return errors.New("empty selector")
		}
		if pending == CombinatorChild {
			return errors.New("dangling combinator")
		}
		sel := *chain
		sel.Raw = strings.TrimSpace(group.String())
		groups = append(groups, sel)
		chain, pending = nil, CombinatorNone
		group.Reset()
		return nil
	}

	l := css.NewLexer(parse.NewInputString(raw))
	for {
		tt, data := l.Next()
		if tt == css.ErrorToken {
			if err := l.Err(); err != nil && !errors.Is(err, io.EOF) {
				return bad("%v", err)
			}
			break
		}
		if tt == css.CommentToken {
			continue
		}
		text := string(data)
		if tt != css.CommaToken {
			group.WriteString(text)
		}

		switch tt {
		case css.WhitespaceToken:
			if dot || colons > 0 {
				return bad("dangling delimiter")
			}
			finish()
			if chain != nil && pending == CombinatorNone {
				pending = CombinatorDescendant
			}
			continue

		case css.CommaToken:
			if err := closeGroup(); err != nil {
				return bad("%v", err)
			}
			continue

		case css.IdentToken:
			start()
			switch {
			case dot:
				cur.Classes = append(cur.Classes, text)
				dot = false
			case colons > 0:
				switch strings.ToLower(text) {
				case "before":
					cur.Pseudo = PseudoBefore
				case "after":
					cur.Pseudo = PseudoAfter
				default:
					return bad("pseudo-class %q", text)
				}
				colons = 0
			case cur.IsSimple() || cur.Pseudo != PseudoNone:
				return bad("unexpected type selector %q", text)
			default:
				cur.Element = strings.ToLower(text)
			}

		case css.HashToken:
			start()
			if dot || colons > 0 || cur.ID != "" {
				return bad("unexpected id %q", text)
			}
			cur.ID = strings.TrimPrefix(text, "#")

		case css.ColonToken:
			start()
			if dot || colons > 1 {
				return bad("unexpected ':'")
			}
			colons++

		case css.DelimToken:
			switch text {
			case ".":
				start()
				if dot || colons > 0 {
					return bad("unexpected '.'")
				}
				dot = true
			case "*":
				start()
				if cur.IsSimple() {
					return bad("unexpected '*'")
				}
				cur.Element = "*"
			case ">":
				finish()
				if chain == nil || pending == CombinatorChild {
					return bad("unexpected '>'")
				}
				pending = CombinatorChild
				continue
			default:
				return bad("combinator or delimiter %q", text)
			}

		case css.LeftBracketToken:
			return bad("attribute selector")

		default:
			return bad("unexpected token %q", text)
		}
		curRaw.WriteString(text)
	}

	if err := closeGroup(); err != nil {
		return bad("%v", err)
	}
	return groups, nil
}
