package css

import (
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// NodeKind is the kind of value node.
type NodeKind int

const (
	NodeNumber NodeKind = iota
	NodeDimension
	NodePercentage
	NodeIdent
	NodeHash
	NodeString
	NodeFunction
	NodeComma
	NodeDelim // operators and slashes
)

// Node is one component of a property value.
type Node struct {
	Kind NodeKind
	Text string  // ident, function name, hash with leading #, unquoted string or delimiter
	Num  float64 // numeric value of number, dimension and percentage
	Unit string  // lower-cased unit of dimension, "%" for percentage
	Args []Node  // function arguments, whitespace dropped, commas kept
}

// IsDelim reports whether n is delimiter d.
func (n Node) IsDelim(d string) bool {
	return n.Kind == NodeDelim && n.Text == d
}

// String renders node back to CSS text.
func (n Node) String() string {
	switch n.Kind {
	case NodeNumber:
		return FormatNumber(n.Num)
	case NodeDimension, NodePercentage:
		return FormatNumber(n.Num) + n.Unit
	case NodeString:
		return strconv.Quote(n.Text)
	case NodeFunction:
		return n.Text + "(" + JoinNodes(n.Args) + ")"
	}
	return n.Text
}

// JoinNodes renders list of nodes separating them with spaces, commas are
// attached to the preceding node.
func JoinNodes(nodes []Node) string {
	var sb strings.Builder
	for i, n := range nodes {
		if i > 0 && n.Kind != NodeComma {
			sb.WriteByte(' ')
		}
		sb.WriteString(n.String())
	}
	return sb.String()
}

// SplitCommas splits nodes into comma separated groups.
func SplitCommas(nodes []Node) [][]Node {
	groups := [][]Node{{}}
	for _, n := range nodes {
		if n.Kind == NodeComma {
			groups = append(groups, []Node{})
			continue
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], n)
	}
	if len(groups) == 1 && len(groups[0]) == 0 {
		return nil
	}
	return groups
}

// FormatNumber renders number in the shortest form.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseValue tokenizes raw property value into nodes.
func ParseValue(raw string) []Node {
	lexer := css.NewLexer(parse.NewInputString(raw))
	nodes, _ := parseNodes(lexer)
	return nodes
}

// parseNodes reads nodes until the end of input or until closing parenthesis
// which is consumed. Second result is false when input ended.
func parseNodes(lexer *css.Lexer) ([]Node, bool) {
	var nodes []Node
	for {
		tt, data := lexer.Next()
		text := string(data)

		switch tt {
		case css.ErrorToken:
			return nodes, false
		case css.RightParenthesisToken:
			return nodes, true
		case css.WhitespaceToken, css.CommentToken:
		case css.NumberToken:
			nodes = append(nodes, Node{Kind: NodeNumber, Text: text, Num: parseNumber(text)})
		case css.PercentageToken:
			num := strings.TrimSuffix(text, "%")
			nodes = append(nodes, Node{Kind: NodePercentage, Text: text, Num: parseNumber(num), Unit: "%"})
		case css.DimensionToken:
			num, unit := splitDimension(text)
			nodes = append(nodes, Node{Kind: NodeDimension, Text: text, Num: parseNumber(num), Unit: strings.ToLower(unit)})
		case css.IdentToken, css.CustomPropertyNameToken:
			nodes = append(nodes, Node{Kind: NodeIdent, Text: text})
		case css.HashToken:
			nodes = append(nodes, Node{Kind: NodeHash, Text: text})
		case css.StringToken:
			nodes = append(nodes, Node{Kind: NodeString, Text: unquote(text)})
		case css.CommaToken:
			nodes = append(nodes, Node{Kind: NodeComma, Text: ","})
		case css.FunctionToken:
			args, _ := parseNodes(lexer)
			nodes = append(nodes, Node{Kind: NodeFunction, Text: strings.TrimSuffix(text, "("), Args: args})
		case css.LeftParenthesisToken:
			// plain grouping, only meaningful inside calc
			args, _ := parseNodes(lexer)
			nodes = append(nodes, Node{Kind: NodeFunction, Text: "", Args: args})
		case css.URLToken:
			nodes = append(nodes, Node{Kind: NodeString, Text: text})
		default:
			nodes = append(nodes, Node{Kind: NodeDelim, Text: text})
		}
	}
}

func parseNumber(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// splitDimension splits dimension token into number and unit.
func splitDimension(s string) (string, string) {
	end := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('0' <= c && c <= '9') || c == '.' || ((c == '-' || c == '+') && i == 0) {
			end = i + 1
			continue
		}
		break
	}
	return s[:end], s[end:]
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
