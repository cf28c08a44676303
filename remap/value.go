// Package remap maps CSS properties and compiled values onto flat style
// schema of the host framework.
package remap

import (
	"regexp"
	"strings"

	"stylewind/expr"
)

// Value is compiled value of a CSS property, either Scalar or Object.
type Value interface {
	isValue()
}

// Scalar is single compiled value.
type Scalar struct {
	Expr expr.Expr
}

// Field is one named component of a shorthand.
type Field struct {
	Key   string
	Value expr.Expr
}

// Object is shorthand expanded by compiler into named components, e.g.
// top/right/bottom/left. Field order is preserved.
type Object []Field

func (Scalar) isValue() {}
func (Object) isValue() {}

// Keys returns field names in order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, f := range o {
		keys[i] = f.Key
	}
	return keys
}

// Get returns field value or nil.
func (o Object) Get(key string) expr.Expr {
	for _, f := range o {
		if f.Key == key {
			return f.Value
		}
	}
	return nil
}

// First returns value of the first field or nil for empty object.
func (o Object) First() expr.Expr {
	if len(o) == 0 {
		return nil
	}
	return o[0].Value
}

// only reports whether all keys of o belong to allowed.
func (o Object) only(allowed ...string) bool {
	if len(o) == 0 {
		return false
	}
	for _, f := range o {
		found := false
		for _, a := range allowed {
			if f.Key == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (o Object) record() expr.Record {
	r := expr.Record{Keys: make([]string, len(o)), Values: make([]expr.Expr, len(o))}
	for i, f := range o {
		r.Keys[i], r.Values[i] = f.Key, f.Value
	}
	return r
}

// Pair is final host property with its value.
type Pair struct {
	Property string
	Value    expr.Expr
}

var kebab = regexp.MustCompile(`-([a-z])`)

// ToCamelCase converts kebab-case to camelCase.
func ToCamelCase(s string) string {
	return kebab.ReplaceAllStringFunc(s, func(m string) string {
		return strings.ToUpper(m[1:])
	})
}

// splitScalar splits space separated scalar into parts. Literal strings are
// split at once, concatenations by their parts.
func splitScalar(e expr.Expr) []expr.Expr {
	switch e := e.(type) {
	case expr.Concat:
		if e.Sep == " " {
			return e.Parts
		}
	case expr.Lit:
		if s, ok := e.Value.(string); ok && strings.Contains(s, " ") {
			var parts []expr.Expr
			for _, f := range strings.Fields(s) {
				parts = append(parts, expr.Str(f))
			}
			return parts
		}
	}
	return []expr.Expr{e}
}
