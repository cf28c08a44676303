package compiler

import (
	"strings"

	"stylewind/css"
	"stylewind/expr"
	"stylewind/remap"
)

type shape int

const (
	shapeScalar shape = iota
	shapeBox          // top right bottom left
	shapeStartEnd     // logical pair
	shapeGap          // row column
	shapeCorners      // border radius
	shapeFlex
	shapeXY
	shapeList // components stay separate
)

var shapes = map[string]shape{
	"padding":             shapeBox,
	"margin":              shapeBox,
	"inset":               shapeBox,
	"border-width":        shapeBox,
	"border-color":        shapeBox,
	"border-style":        shapeBox,
	"padding-inline":      shapeStartEnd,
	"padding-block":       shapeStartEnd,
	"margin-inline":       shapeStartEnd,
	"margin-block":        shapeStartEnd,
	"border-inline-width": shapeStartEnd,
	"border-block-width":  shapeStartEnd,
	"gap":                 shapeGap,
	"border-radius":       shapeCorners,
	"flex":                shapeFlex,
	"transform-origin":    shapeXY,
	"translate":           shapeList,
	"scale":               shapeList,
}

var flexKeywords = map[string][3]expr.Expr{
	"none":    {expr.Num(0), expr.Num(0), expr.Str("auto")},
	"auto":    {expr.Num(1), expr.Num(1), expr.Str("auto")},
	"initial": {expr.Num(0), expr.Num(1), expr.Str("auto")},
}

// shapeValue compiles declaration value expanding shorthands into objects
// understood by the remapping layer.
func (c *Compiler) shapeValue(property string, nodes []css.Node) remap.Value {
	kind := shapes[strings.ToLower(property)]
	if kind == shapeScalar || hasComma(nodes) {
		return remap.Scalar{Expr: c.ProcessValue(nodes)}
	}

	parts := make([]expr.Expr, 0, len(nodes))
	for _, n := range nodes {
		parts = append(parts, c.processNode(n))
	}

	switch kind {
	case shapeBox:
		if len(parts) < 2 || len(parts) > 4 {
			break
		}
		t, r, b, l := boxSides(parts)
		return remap.Object{{Key: "top", Value: t}, {Key: "right", Value: r}, {Key: "bottom", Value: b}, {Key: "left", Value: l}}

	case shapeStartEnd:
		if len(parts) != 2 {
			break
		}
		return remap.Object{{Key: "start", Value: parts[0]}, {Key: "end", Value: parts[1]}}

	case shapeGap:
		if len(parts) != 2 {
			break
		}
		return remap.Object{{Key: "row", Value: parts[0]}, {Key: "column", Value: parts[1]}}

	case shapeCorners:
		if len(parts) < 2 || len(parts) > 4 || hasDelim(nodes, "/") {
			break
		}
		tl, tr, br, bl := corners(parts)
		return remap.Object{
			{Key: "topLeft", Value: tl},
			{Key: "topRight", Value: tr},
			{Key: "bottomRight", Value: br},
			{Key: "bottomLeft", Value: bl},
		}

	case shapeFlex:
		return c.flexValue(nodes, parts)

	case shapeXY:
		if len(parts) != 2 {
			break
		}
		return remap.Object{{Key: "x", Value: parts[0]}, {Key: "y", Value: parts[1]}}

	case shapeList:
		if len(parts) > 1 {
			return remap.Scalar{Expr: expr.Concat{Parts: parts, Sep: " "}}
		}
	}
	return remap.Scalar{Expr: join(parts, " ")}
}

// boxSides expands 2 to 4 values the way CSS box shorthands do.
func boxSides(p []expr.Expr) (t, r, b, l expr.Expr) {
	switch len(p) {
	case 2:
		return p[0], p[1], p[0], p[1]
	case 3:
		return p[0], p[1], p[2], p[1]
	}
	return p[0], p[1], p[2], p[3]
}

func corners(p []expr.Expr) (tl, tr, br, bl expr.Expr) {
	switch len(p) {
	case 2:
		return p[0], p[1], p[0], p[1]
	case 3:
		return p[0], p[1], p[2], p[1]
	}
	return p[0], p[1], p[2], p[3]
}

func (c *Compiler) flexValue(nodes []css.Node, parts []expr.Expr) remap.Value {
	switch len(parts) {
	case 1:
		if nodes[0].Kind == css.NodeIdent {
			if kw, ok := flexKeywords[strings.ToLower(nodes[0].Text)]; ok {
				return remap.Object{{Key: "flexGrow", Value: kw[0]}, {Key: "flexShrink", Value: kw[1]}, {Key: "flexBasis", Value: kw[2]}}
			}
		}
		return remap.Scalar{Expr: parts[0]}
	case 2:
		if nodes[1].Kind == css.NodeNumber {
			return remap.Object{{Key: "flexGrow", Value: parts[0]}, {Key: "flexShrink", Value: parts[1]}}
		}
		return remap.Object{{Key: "flexGrow", Value: parts[0]}, {Key: "flexBasis", Value: parts[1]}}
	case 3:
		return remap.Object{{Key: "flexGrow", Value: parts[0]}, {Key: "flexShrink", Value: parts[1]}, {Key: "flexBasis", Value: parts[2]}}
	}
	return remap.Scalar{Expr: join(parts, " ")}
}

func hasComma(nodes []css.Node) bool {
	for _, n := range nodes {
		if n.Kind == css.NodeComma {
			return true
		}
	}
	return false
}

func hasDelim(nodes []css.Node, d string) bool {
	for _, n := range nodes {
		if n.IsDelim(d) {
			return true
		}
	}
	return false
}
