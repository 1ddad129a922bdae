package page

import (
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fromHTML converts parsed HTML5 tree into etree document.
func fromHTML(n *html.Node) *etree.Document {
	doc := etree.NewDocument()
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendHTMLNode(&doc.Element, c)
	}
	return doc
}

func appendHTMLNode(parent *etree.Element, n *html.Node) {
	switch n.Type {
	case html.DoctypeNode:
		parent.CreateDirective("DOCTYPE " + n.Data)
	case html.ElementNode:
		el := parent.CreateElement(n.Data)
		// keys like ":class" or "@click" are kept whole, CreateAttr would
		// split them on the colon
		for _, a := range n.Attr {
			el.Attr = append(el.Attr, etree.Attr{Space: a.Namespace, Key: a.Key, Value: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			appendHTMLNode(el, c)
		}
	case html.TextNode, html.RawNode:
		parent.CreateText(n.Data)
	case html.CommentNode:
		parent.CreateComment(n.Data)
	}
}

// toHTML converts etree document back into HTML5 node tree for rendering.
func toHTML(doc *etree.Document) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	appendETreeChildren(root, &doc.Element)
	return root
}

func appendETreeChildren(parent *html.Node, el *etree.Element) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.Element:
			tag := t.FullTag()
			n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
			for _, a := range t.Attr {
				n.Attr = append(n.Attr, html.Attribute{Namespace: a.Space, Key: a.Key, Val: a.Value})
			}
			appendETreeChildren(n, t)
			parent.AppendChild(n)
		case *etree.CharData:
			parent.AppendChild(&html.Node{Type: html.TextNode, Data: t.Data})
		case *etree.Comment:
			parent.AppendChild(&html.Node{Type: html.CommentNode, Data: t.Data})
		case *etree.Directive:
			if name, ok := cutPrefixFold(t.Data, "DOCTYPE"); ok {
				parent.AppendChild(&html.Node{Type: html.DoctypeNode, Data: strings.TrimSpace(name)})
			}
		}
	}
}

func cutPrefixFold(s, prefix string) (string, bool) {
	if len(s) < len(prefix) || !strings.EqualFold(s[:len(prefix)], prefix) {
		return s, false
	}
	return s[len(prefix):], true
}
