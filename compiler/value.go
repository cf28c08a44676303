package compiler

import (
	"strings"

	"golang.org/x/image/colornames"

	"stylewind/colors"
	"stylewind/css"
	"stylewind/expr"
	"stylewind/remap"
)

var viewportRefs = map[string]expr.Ref{
	"vw":   expr.RefScreenWidth,
	"vh":   expr.RefScreenHeight,
	"vmin": expr.RefScreenMin,
	"vmax": expr.RefScreenMax,
}

// ProcessValue compiles property value. Space separated components are
// joined with spaces and comma separated groups with commas, constant parts
// are folded into single literal.
func (c *Compiler) ProcessValue(nodes []css.Node) expr.Expr {
	groups := css.SplitCommas(nodes)
	if len(groups) == 0 {
		return expr.Empty()
	}
	parts := make([]expr.Expr, 0, len(groups))
	for _, g := range groups {
		items := make([]expr.Expr, 0, len(g))
		for _, n := range g {
			items = append(items, c.processNode(n))
		}
		parts = append(parts, join(items, " "))
	}
	return join(parts, ", ")
}

func join(parts []expr.Expr, sep string) expr.Expr {
	switch len(parts) {
	case 0:
		return expr.Empty()
	case 1:
		return parts[0]
	}
	concat := expr.Concat{Parts: parts, Sep: sep}
	if expr.IsConst(concat) {
		return expr.Str(concat.String())
	}
	return concat
}

// processNode compiles single value component.
func (c *Compiler) processNode(n css.Node) expr.Expr {
	switch n.Kind {
	case css.NodeNumber:
		return expr.Num(n.Num)

	case css.NodeDimension:
		return c.processDimension(n)

	case css.NodeIdent:
		if _, ok := colornames.Map[strings.ToLower(n.Text)]; ok || strings.EqualFold(n.Text, "transparent") {
			return expr.Str(colors.Normalize(n.Text))
		}
		return expr.Str(n.Text)

	case css.NodeFunction:
		if n.Text == "" {
			return c.ProcessValue(n.Args)
		}
		return c.ProcessFunction(n)

	case css.NodePercentage, css.NodeHash, css.NodeString, css.NodeDelim:
		return expr.Str(n.Text)
	}
	return expr.Str(n.String())
}

func (c *Compiler) processDimension(n css.Node) expr.Expr {
	switch n.Unit {
	case "px":
		return expr.Num(n.Num)
	case "rem":
		return expr.Num(n.Num * c.rem)
	case "em":
		em := expr.Var{Name: remap.EmVar, Fallback: expr.Num(c.rem)}
		if n.Num == 1 {
			return em
		}
		return expr.Mul(expr.Num(n.Num), em)
	}
	if ref, ok := viewportRefs[n.Unit]; ok {
		return expr.Mul(expr.Num(n.Num/100), ref)
	}
	// angles, times and anything else stay unit strings
	return expr.Str(n.String())
}
