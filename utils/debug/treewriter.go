// Package debug renders compiled structures as indented text for logs and
// diagnostics.
package debug

import (
	"fmt"
	"strconv"
	"strings"
)

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Entry writes single "property: value" line.
func (tw TreeWriter) Entry(depth int, property, value string) {
	tw.indent(depth)
	tw.w.WriteString(property)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeValue(value))
	tw.w.WriteByte('\n')
}

// encodeValue quotes values which would be ambiguous in a dump.
func encodeValue(raw string) string {
	if raw == "" || strings.ContainsAny(raw, "\"\n\t\\") {
		return strconv.Quote(raw)
	}
	return raw
}
