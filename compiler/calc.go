package compiler

import (
	"stylewind/css"
)

// CalcKind is the kind of calc() tree node.
type CalcKind int

const (
	CalcSum CalcKind = iota
	CalcProduct
	CalcValue
	CalcFunction
	CalcNumber
	CalcUnsupported
)

// CalcNode is calc() expression tree. Sum and product nodes keep operands in
// Terms with operators between them in Ops, leaves keep their value node.
type CalcNode struct {
	Kind  CalcKind
	Terms []CalcNode
	Ops   []byte
	Value css.Node
}

// ParseCalc builds calc tree from calc() arguments.
func ParseCalc(nodes []css.Node) CalcNode {
	p := calcParser{nodes: nodes}
	n := p.sum()
	if p.pos < len(p.nodes) {
		return CalcNode{Kind: CalcUnsupported, Value: p.nodes[p.pos]}
	}
	return n
}

type calcParser struct {
	nodes []css.Node
	pos   int
}

func (p *calcParser) op(ops string) (byte, bool) {
	if p.pos >= len(p.nodes) {
		return 0, false
	}
	n := p.nodes[p.pos]
	if n.Kind != css.NodeDelim || len(n.Text) != 1 {
		return 0, false
	}
	for i := 0; i < len(ops); i++ {
		if n.Text[0] == ops[i] {
			p.pos++
			return ops[i], true
		}
	}
	return 0, false
}

func (p *calcParser) sum() CalcNode {
	first := p.product()
	node := CalcNode{Kind: CalcSum, Terms: []CalcNode{first}}
	for {
		op, ok := p.op("+-")
		if !ok {
			break
		}
		node.Terms = append(node.Terms, p.product())
		node.Ops = append(node.Ops, op)
	}
	if len(node.Terms) == 1 {
		return first
	}
	return node
}

func (p *calcParser) product() CalcNode {
	first := p.operand()
	node := CalcNode{Kind: CalcProduct, Terms: []CalcNode{first}}
	for {
		op, ok := p.op("*/")
		if !ok {
			break
		}
		node.Terms = append(node.Terms, p.operand())
		node.Ops = append(node.Ops, op)
	}
	if len(node.Terms) == 1 {
		return first
	}
	return node
}

func (p *calcParser) operand() CalcNode {
	if p.pos >= len(p.nodes) {
		return CalcNode{Kind: CalcUnsupported}
	}
	n := p.nodes[p.pos]
	p.pos++

	switch n.Kind {
	case css.NodeNumber:
		return CalcNode{Kind: CalcNumber, Value: n}
	case css.NodeDimension, css.NodePercentage, css.NodeIdent:
		return CalcNode{Kind: CalcValue, Value: n}
	case css.NodeFunction:
		if n.Text == "" {
			// parenthesized sub-expression
			return ParseCalc(n.Args)
		}
		return CalcNode{Kind: CalcFunction, Value: n}
	}
	return CalcNode{Kind: CalcUnsupported, Value: n}
}
