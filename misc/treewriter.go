package misc

import (
	"fmt"
	"strconv"
	"strings"
)

// TreeWriter accumulates indented text for debug dumps.
type TreeWriter struct {
	b      strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.b.String()
}

func (tw *TreeWriter) pad(depth int) {
	for range depth {
		tw.b.WriteString(tw.indent)
	}
}

// Line writes formatted line at depth.
func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.pad(depth)
	fmt.Fprintf(&tw.b, format, args...)
	tw.b.WriteByte('\n')
}

// Value writes "label: value" with value quoted, empty values are left as is.
func (tw *TreeWriter) Value(depth int, label, value string) {
	tw.pad(depth)
	tw.b.WriteString(label)
	tw.b.WriteString(": ")
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.b.WriteString(value)
	tw.b.WriteByte('\n')
}
