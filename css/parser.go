package css

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses style sources into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]Item, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	sheet.Items = p.parseItems(parser, sheet)
	return sheet
}

// parseItems parses rules and at-rules until the end of input or the end of
// enclosing at-rule block.
func (p *Parser) parseItems(parser *css.Parser, sheet *Stylesheet) []Item {
	var items []Item

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if p.recover(parser, sheet) {
				continue
			}
			return items

		case css.EndAtRuleGrammar:
			return items

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			switch atRule {
			case "@media":
				mq := p.parseMediaQuery(parser.Values())
				nested := p.parseItems(parser, sheet)
				p.log.Debug("Parsed @media block", zap.String("query", mq.Raw), zap.Int("items", len(nested)))
				items = append(items, Item{MediaBlock: &MediaBlock{Query: mq, Items: nested}})
			case "@layer":
				// layers only group rules, order inside is kept
				items = append(items, p.parseItems(parser, sheet)...)
			default:
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
			}

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			selectors := p.parseSelectors(data, parser.Values())
			decls := p.parseDeclarations(parser, sheet)

			for _, selStr := range selectors {
				sel, ok := p.parseSelector(selStr, sheet)
				if !ok {
					continue
				}
				rule := Rule{
					Selector:     sel,
					Declarations: append([]Declaration(nil), decls...),
				}
				items = append(items, Item{Rule: &rule})
			}
		}
	}
}

// recover records parse error and reports whether parsing may go on. The
// lexer stops at the end of input or on read errors, malformed constructs
// are skipped by parser itself.
func (p *Parser) recover(parser *css.Parser, sheet *Stylesheet) bool {
	err := parser.Err()
	if err == nil || errors.Is(err, io.EOF) {
		return false
	}
	sheet.Warnings = append(sheet.Warnings, "parse error: "+err.Error())
	p.log.Debug("CSS parse error", zap.Error(err))
	return parser.HasParseError()
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarations parses property declarations until EndRulesetGrammar.
// Nested blocks are skipped.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []Declaration {
	var decls []Declaration

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if p.recover(parser, sheet) {
				continue
			}
			return decls

		case css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar:
			values, important := splitImportant(parser.Values())
			raw := joinTokens(values)
			if raw == "" {
				sheet.Warnings = append(sheet.Warnings, "empty declaration: "+string(data))
				continue
			}
			decls = append(decls, Declaration{
				Property:  strings.ToLower(string(data)),
				Value:     raw,
				Important: important,
			})

		case css.CustomPropertyGrammar:
			var sb strings.Builder
			for _, v := range parser.Values() {
				sb.Write(v.Data)
			}
			raw := strings.TrimSpace(sb.String())
			raw, important := strings.CutSuffix(raw, "!important")
			raw = strings.TrimSpace(raw)
			decls = append(decls, Declaration{
				Property:  string(data),
				Value:     raw,
				Important: important,
			})

		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			sheet.Warnings = append(sheet.Warnings, "unsupported nested block: "+string(data))
			p.skipAtRuleBlock(parser)
		}
	}
}

// splitImportant strips trailing "!important" from declaration tokens.
func splitImportant(tokens []css.Token) ([]css.Token, bool) {
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end < 2 || tokens[end-1].TokenType != css.IdentToken || !strings.EqualFold(string(tokens[end-1].Data), "important") {
		return tokens, false
	}
	bang := end - 2
	for bang > 0 && tokens[bang].TokenType == css.WhitespaceToken {
		bang--
	}
	if tokens[bang].TokenType != css.DelimToken || string(tokens[bang].Data) != "!" {
		return tokens, false
	}
	return tokens[:bang], true
}

// joinTokens builds raw value string collapsing whitespace.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken || t.TokenType == css.CommentToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

// parseSelector parses a single selector string. Returns false for selectors
// which cannot be expressed as a class guard.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) (Selector, bool) {
	sel := Selector{Raw: selStr}

	if selStr == ":root" {
		sel.Root = true
		return sel, true
	}

	if !strings.HasPrefix(selStr, ".") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping non class selector", zap.String("selector", selStr))
		return sel, false
	}

	class, rest := unescapeIdent(selStr[1:])
	if class == "" || strings.ContainsAny(rest, " \t\n+~>[.") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping complex selector", zap.String("selector", selStr))
		return sel, false
	}
	sel.Class = class

	for rest != "" {
		if !strings.HasPrefix(rest, ":") || strings.HasPrefix(rest, "::") {
			sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
			p.log.Debug("Skipping selector with pseudo-element", zap.String("selector", selStr))
			return sel, false
		}
		rest = rest[1:]
		name := rest
		if i := strings.IndexByte(rest, ':'); i >= 0 {
			name, rest = rest[:i], rest[i:]
		} else {
			rest = ""
		}

		switch name = strings.ToLower(name); name {
		case PseudoActive, PseudoFocus, PseudoDisabled:
			sel.Pseudo = append(sel.Pseudo, name)
		case "dir(rtl)":
			sel.Dir = "rtl"
		case "dir(ltr)":
			sel.Dir = "ltr"
		default:
			sheet.Warnings = append(sheet.Warnings, "unsupported pseudo-class: "+selStr)
			p.log.Debug("Skipping pseudo-class selector", zap.String("selector", selStr))
			return sel, false
		}
	}
	return sel, true
}

// unescapeIdent reads identifier from the start of s resolving CSS escapes
// and returns it along with the unread rest.
func unescapeIdent(s string) (string, string) {
	var sb strings.Builder
	i := 0
	for i < len(s) {
		c := s[i]
		switch {
		case c == '\\' && i+1 < len(s):
			i++
			hex := 0
			for hex < 6 && i+hex < len(s) && isHex(s[i+hex]) {
				hex++
			}
			if hex == 0 {
				sb.WriteByte(s[i])
				i++
				continue
			}
			code, _ := strconv.ParseUint(s[i:i+hex], 16, 32)
			sb.WriteRune(rune(code))
			i += hex
			if i < len(s) && s[i] == ' ' {
				i++
			}
		case c == ':' || c == ' ' || c == '.' || c == '[' || c == '>' || c == '+' || c == '~' || c == '\t' || c == '\n':
			return sb.String(), s[i:]
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String(), ""
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// parseMediaQuery parses media query tokens. Handles queries like
// "(min-width: 640px) and (orientation: landscape)" and platform media types
// "ios", "android", "web" and "native". Negation, query lists, other media
// types and features which cannot be parsed mark query as unsupported.
func (p *Parser) parseMediaQuery(tokens []css.Token) MediaQuery {
	mq := MediaQuery{Raw: joinTokens(tokens)}
	unsupported := func(reason, part string) {
		mq.Unsupported = true
		p.log.Debug("Unsupported media query", zap.String("query", mq.Raw), zap.String(reason, part))
	}

	for i := 0; i < len(tokens); i++ {
		t := tokens[i]
		switch t.TokenType {
		case css.WhitespaceToken, css.CommentToken:
		case css.IdentToken:
			switch ident := strings.ToLower(string(t.Data)); ident {
			case "and", "only", "all", "screen":
			case "ios", "android", "web", "native":
				mq.Features = append(mq.Features, MediaFeature{Name: "platform", Value: ident})
			default:
				unsupported("type", ident)
			}

		case css.LeftParenthesisToken:
			var inner []css.Token
			depth := 1
			for i++; i < len(tokens); i++ {
				switch tokens[i].TokenType {
				case css.LeftParenthesisToken, css.FunctionToken:
					depth++
				case css.RightParenthesisToken:
					depth--
				}
				if depth == 0 {
					break
				}
				inner = append(inner, tokens[i])
			}
			features, ok := parseMediaFeature(joinTokens(inner))
			if !ok {
				unsupported("feature", joinTokens(inner))
				continue
			}
			mq.Features = append(mq.Features, features...)

		default:
			unsupported("token", string(t.Data))
		}
	}
	return mq
}

var (
	nameFeature  = regexp.MustCompile(`^[a-z-]+$`)
	rangeFeature = regexp.MustCompile(`^(?:(\S+?)\s*(<=|<|>=|>)\s*)?width\s*(?:(<=|<|>=|>)\s*(\S+))?$`)
)

// parseMediaFeature handles "name: value" features and width ranges in
// either order ("width >= 40rem", "40rem <= width", "40rem <= width < 64rem"),
// which are turned into min-width and max-width.
func parseMediaFeature(text string) ([]MediaFeature, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if name, value, ok := strings.Cut(text, ":"); ok {
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !nameFeature.MatchString(name) || value == "" {
			return nil, false
		}
		return []MediaFeature{{Name: name, Value: value}}, true
	}
	m := rangeFeature.FindStringSubmatch(text)
	if m == nil || (m[2] == "" && m[3] == "") {
		return nil, false
	}

	var features []MediaFeature
	if m[2] != "" {
		// value on the left reads the other way round
		name := "min-width"
		if m[2][0] == '>' {
			name = "max-width"
		}
		features = append(features, MediaFeature{Name: name, Value: m[1]})
	}
	if m[3] != "" {
		name := "max-width"
		if m[3][0] == '>' {
			name = "min-width"
		}
		if len(features) == 1 && features[0].Name == name {
			return nil, false
		}
		features = append(features, MediaFeature{Name: name, Value: m[4]})
	}
	return features, true
}
