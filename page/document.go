// Package page keeps host document the widgets are injected into.
package page

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html"

	"rotword/styles"
)

// Format of the host document.
type Format int

const (
	FormatHTML Format = iota
	FormatXHTML
)

func (f Format) String() string {
	switch f {
	case FormatXHTML:
		return "xhtml"
	default:
		return "html"
	}
}

// FormatNames lists names accepted by ParseFormat.
func FormatNames() []string {
	return []string{FormatHTML.String(), FormatXHTML.String()}
}

// ParseFormat converts name to Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "html", "htm", "html5":
		return FormatHTML, nil
	case "xhtml", "xht", "xml":
		return FormatXHTML, nil
	}
	return FormatHTML, fmt.Errorf("unknown document format %q", name)
}

// FormatFromPath guesses format by file extension, HTML is the default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xhtml", ".xht", ".xml":
		return FormatXHTML
	default:
		return FormatHTML
	}
}

// Document is an in-memory element tree of the host page. Document is not
// safe for concurrent mutation, only its style registry is.
type Document struct {
	doc    *etree.Document
	format Format
	log    *zap.Logger

	once   sync.Once
	styles *styles.Registry
}

// New creates empty document skeleton (html, head and body).
func New(format Format, log *zap.Logger) *Document {
	if log == nil {
		log = zap.NewNop()
	}

	doc := etree.NewDocument()
	if format == FormatXHTML {
		doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	}
	doc.CreateDirective("DOCTYPE html")
	root := doc.CreateElement("html")
	if format == FormatXHTML {
		root.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	}
	root.CreateElement("head")
	root.CreateElement("body")

	return &Document{doc: doc, format: format, log: log.Named("page")}
}

// Load reads document of the given format from r.
func Load(r io.Reader, format Format, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var doc *etree.Document
	switch format {
	case FormatXHTML:
		doc = etree.NewDocument()
		doc.ReadSettings.Entity = xml.HTMLEntity
		if _, err := doc.ReadFrom(r); err != nil {
			return nil, fmt.Errorf("unable to parse xhtml: %w", err)
		}
		if doc.Root() == nil {
			return nil, errors.New("xhtml document has no root element")
		}
	default:
		node, err := html.Parse(r)
		if err != nil {
			return nil, fmt.Errorf("unable to parse html: %w", err)
		}
		doc = fromHTML(node)
	}

	d := &Document{doc: doc, format: format, log: log.Named("page")}
	d.log.Debug("Document loaded", zap.Stringer("format", format), zap.Int("elements", d.countElements()))
	return d, nil
}

// LoadFile reads document from file, format is derived from extension.
func LoadFile(path string, log *zap.Logger) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f, FormatFromPath(path), log)
}

// ParseString is a convenience wrapper around Load.
func ParseString(s string, format Format, log *zap.Logger) (*Document, error) {
	return Load(strings.NewReader(s), format, log)
}

// Format returns document format.
func (d *Document) Format() Format {
	return d.format
}

// Root returns top level element, nil for empty document.
func (d *Document) Root() *etree.Element {
	return d.doc.Root()
}

// Head returns head element creating it when necessary.
func (d *Document) Head() *etree.Element {
	return d.section("head", 0)
}

// Body returns body element creating it when necessary.
func (d *Document) Body() *etree.Element {
	return d.section("body", -1)
}

func (d *Document) section(tag string, at int) *etree.Element {
	root := d.Root()
	if root == nil {
		root = d.doc.CreateElement("html")
		if d.format == FormatXHTML {
			root.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
		}
	}
	for _, el := range root.ChildElements() {
		if strings.EqualFold(el.Tag, tag) {
			return el
		}
	}

	el := etree.NewElement(tag)
	if at < 0 || at > len(root.Child) {
		root.AddChild(el)
	} else {
		root.InsertChildAt(at, el)
	}
	d.log.Debug("Created missing element", zap.String("tag", tag))
	return el
}

// ElementByID returns the first element with given id in document order.
func (d *Document) ElementByID(id string) *etree.Element {
	var found *etree.Element
	walk(&d.doc.Element, func(el *etree.Element) bool {
		if el.SelectAttrValue("id", "") == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// ElementsByID returns all elements carrying given id.
func (d *Document) ElementsByID(id string) []*etree.Element {
	var found []*etree.Element
	walk(&d.doc.Element, func(el *etree.Element) bool {
		if el.SelectAttrValue("id", "") == id {
			found = append(found, el)
		}
		return true
	})
	return found
}

// Styles returns document scoped style registry. It is the only access point
// to the registry, so all widgets on a page share it.
func (d *Document) Styles() *styles.Registry {
	d.once.Do(func() {
		d.styles = styles.NewRegistry(d, d.log)
	})
	return d.styles
}

// WriteTo serializes document in its format, implementing io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	if d.format == FormatXHTML {
		return d.doc.WriteTo(w)
	}
	cw := &countingWriter{w: w}
	err := html.Render(cw, toHTML(d.doc))
	return cw.n, err
}

// Indent reformats XHTML document with given number of spaces, HTML
// documents are left alone since whitespace there may be significant.
func (d *Document) Indent(spaces int) {
	if d.format != FormatXHTML || spaces <= 0 {
		return
	}
	d.doc.Indent(spaces)
}

// String returns serialized document.
func (d *Document) String() string {
	var buf bytes.Buffer
	d.WriteTo(&buf) //nolint:errcheck
	return buf.String()
}

func (d *Document) countElements() int {
	count := 0
	walk(&d.doc.Element, func(*etree.Element) bool {
		count++
		return true
	})
	return count
}

// walk visits descendants of el (not el itself) in document order until fn
// returns false. Returns false when walk was interrupted.
func walk(el *etree.Element, fn func(*etree.Element) bool) bool {
	for _, child := range el.ChildElements() {
		if !fn(child) || !walk(child, fn) {
			return false
		}
	}
	return true
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
