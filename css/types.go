package css

import (
	"fmt"
	"io"
	"strings"
)

// Declaration is a single property declaration.
type Declaration struct {
	Property  string // lower-cased property name, custom properties keep their case
	Value     string // raw value text with whitespace collapsed
	Important bool
}

// IsCustom returns true for custom property declarations (--name).
func (d Declaration) IsCustom() bool {
	return strings.HasPrefix(d.Property, "--")
}

// Pseudo-classes the host framework can express through component state.
const (
	PseudoActive   = "active"
	PseudoFocus    = "focus"
	PseudoDisabled = "disabled"
)

// Selector represents a parsed selector. Only single class selectors with
// optional pseudo-classes and the :root selector are supported.
type Selector struct {
	Raw    string   // Original selector string
	Class  string   // Unescaped class name, empty for :root
	Root   bool     // :root
	Pseudo []string // Pseudo-classes in source order (active, focus, disabled)
	Dir    string   // Direction from :dir(rtl) or :dir(ltr)
}

// Qualifiers returns number of pseudo-classes and direction guards.
func (s Selector) Qualifiers() int {
	n := len(s.Pseudo)
	if s.Dir != "" {
		n++
	}
	return n
}

// MediaFeature is one condition of a media query. Media types which name a
// platform are stored with Name "platform".
type MediaFeature struct {
	Name  string // min-width, max-width, orientation, prefers-color-scheme, theme, direction, platform
	Value string // raw feature value
}

// MediaQuery represents a parsed @media query condition. All features must
// hold (AND logic). Unsupported is set when any part of the condition could
// not be understood, such queries never match.
type MediaQuery struct {
	Raw         string
	Features    []MediaFeature
	Unsupported bool
}

// Rule is a single ruleset.
type Rule struct {
	Selector     Selector
	Declarations []Declaration
}

// MediaBlock represents a @media block with its query and nested items.
type MediaBlock struct {
	Query MediaQuery
	Items []Item
}

// Item is a single item of a stylesheet or of a media block.
// Exactly one of Rule or MediaBlock is non-nil.
type Item struct {
	Rule       *Rule
	MediaBlock *MediaBlock
}

// Stylesheet represents a parsed stylesheet.
type Stylesheet struct {
	Items    []Item   // All top-level items in source order
	Warnings []string // Warnings for unsupported features
}

// Walk calls fn for every rule in source order together with the chain of
// enclosing media queries, outermost first.
func (s *Stylesheet) Walk(fn func(rule *Rule, media []MediaQuery)) {
	walkItems(s.Items, nil, fn)
}

func walkItems(items []Item, media []MediaQuery, fn func(*Rule, []MediaQuery)) {
	for _, item := range items {
		switch {
		case item.Rule != nil:
			fn(item.Rule, media)
		case item.MediaBlock != nil:
			walkItems(item.MediaBlock.Items, append(media[:len(media):len(media)], item.MediaBlock.Query), fn)
		}
	}
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		if i > 0 {
			n, err := fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
		n, err := writeItem(w, item, 0)
		total += int64(n)
		if err != nil {
			return total, err
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

func writeItem(w io.Writer, item Item, depth int) (int, error) {
	indent := strings.Repeat("  ", depth)
	var total int

	if item.MediaBlock != nil {
		n, err := fmt.Fprintf(w, "%s@media %s {\n", indent, item.MediaBlock.Query.Raw)
		total += n
		if err != nil {
			return total, err
		}
		for _, nested := range item.MediaBlock.Items {
			n, err = writeItem(w, nested, depth+1)
			total += n
			if err != nil {
				return total, err
			}
		}
		n, err = fmt.Fprintf(w, "%s}\n", indent)
		total += n
		return total, err
	}

	rule := item.Rule
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.Selector.Raw)
	total += n
	if err != nil {
		return total, err
	}
	for _, d := range rule.Declarations {
		important := ""
		if d.Important {
			important = " !important"
		}
		n, err = fmt.Fprintf(w, "%s  %s: %s%s;\n", indent, d.Property, d.Value, important)
		total += n
		if err != nil {
			return total, err
		}
	}
	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}
