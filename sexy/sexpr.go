package sexy

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrIncomplete is returned (wrapped) when the input ends inside an
// unfinished list or array. Interactive readers use it to ask for more input.
var ErrIncomplete = errors.New("unexpected end of input")

// NodeType represents the type of a Node
type NodeType int

const (
	NodeSymbol NodeType = iota
	NodeString
	NodeInteger
	NodeEllipsis
	NodeList
	NodeArray
)

func (t NodeType) String() string {
	switch t {
	case NodeSymbol:
		return "symbol"
	case NodeString:
		return "string"
	case NodeInteger:
		return "integer"
	case NodeEllipsis:
		return "ellipsis"
	case NodeList:
		return "list"
	case NodeArray:
		return "array"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Node represents any Sexy datum.
type Node struct {
	Type NodeType

	// NodeSymbol, NodeString, NodeInteger
	Text string

	// NodeList, NodeArray
	Items []*Node

	// Line is the 1-based source line the datum starts on.
	Line int
}

func (n *Node) String() string {
	switch n.Type {
	case NodeSymbol, NodeInteger:
		return n.Text
	case NodeString:
		return Quote(n.Text)
	case NodeEllipsis:
		return "..."
	case NodeList, NodeArray:
		parts := make([]string, len(n.Items))
		for i, item := range n.Items {
			parts[i] = item.String()
		}
		if n.Type == NodeArray {
			return "[" + strings.Join(parts, " ") + "]"
		}
		return "(" + strings.Join(parts, " ") + ")"
	default:
		return fmt.Sprintf("UNKNOWN_NODE_TYPE_%d", n.Type)
	}
}

// Quote renders s as a Sexy string literal.
func Quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case 0:
			b.WriteString(`\0`)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Helper constructors for common node types
func NewSymbol(name string) *Node {
	return &Node{Type: NodeSymbol, Text: name}
}

func NewString(value string) *Node {
	return &Node{Type: NodeString, Text: value}
}

func NewInteger(text string) *Node {
	return &Node{Type: NodeInteger, Text: text}
}

func NewEllipsis() *Node {
	return &Node{Type: NodeEllipsis}
}

func NewList(items ...*Node) *Node {
	return &Node{Type: NodeList, Items: items}
}

func NewArray(items ...*Node) *Node {
	return &Node{Type: NodeArray, Items: items}
}

// IsAtom checks if the node is an atomic value
func (n *Node) IsAtom() bool {
	return n.Type == NodeSymbol || n.Type == NodeString || n.Type == NodeInteger || n.Type == NodeEllipsis
}

// IsSymbol reports whether n is the symbol name.
func (n *Node) IsSymbol(name string) bool {
	return n != nil && n.Type == NodeSymbol && n.Text == name
}

// Head returns the leading symbol of a list, or "" if n is not a list
// starting with a symbol.
func (n *Node) Head() string {
	if n == nil || n.Type != NodeList || len(n.Items) == 0 || n.Items[0].Type != NodeSymbol {
		return ""
	}
	return n.Items[0].Text
}

// Args returns the items of a list after its head.
func (n *Node) Args() []*Node {
	if n == nil || n.Type != NodeList || len(n.Items) == 0 {
		return nil
	}
	return n.Items[1:]
}

type parser struct {
	lexer        *lexer
	currentToken token
	peekToken    token
}

// Parse parses the entire input and returns the top-level datum
func Parse(input string) (*Node, error) {
	p := &parser{lexer: newLexer(input)}
	p.nextToken()
	p.nextToken()

	result, err := p.ParseDatum()
	if p.lexer.err != nil {
		// Lexer errors take priority because they might cause confusing parser errors.
		return nil, p.lexer.err
	}
	if err != nil {
		return nil, err
	}

	if p.currentToken.Type != tokenEOF {
		return nil, errors.Errorf("line %d: expected EOF but got %s", p.currentToken.Line, p.currentToken.Type)
	}

	return result, nil
}

// IsIncomplete reports whether err means the input stopped in the middle
// of a datum.
func IsIncomplete(err error) bool {
	return errors.Cause(err) == ErrIncomplete
}

func (p *parser) nextToken() {
	p.currentToken = p.peekToken
	p.peekToken = p.lexer.nextToken()
}

func (p *parser) ParseDatum() (*Node, error) {
	line := p.currentToken.Line
	var n *Node
	switch p.currentToken.Type {
	case tokenSymbol:
		n = NewSymbol(p.currentToken.Value)
		p.nextToken()
	case tokenString:
		n = NewString(p.currentToken.Value)
		p.nextToken()
	case tokenInteger:
		// Callers validate the digits.
		n = NewInteger(p.currentToken.Value)
		p.nextToken()
	case tokenEllipsis:
		n = NewEllipsis()
		p.nextToken()
	case tokenLParen:
		items, err := p.parseSequence(tokenRParen)
		if err != nil {
			return nil, err
		}
		n = NewList(items...)
	case tokenLBracket:
		items, err := p.parseSequence(tokenRBracket)
		if err != nil {
			return nil, err
		}
		n = NewArray(items...)
	case tokenEOF:
		return nil, errors.Wrapf(ErrIncomplete, "line %d", line)
	default:
		return nil, errors.Errorf("line %d: unexpected token: %s", line, p.currentToken.Type)
	}
	n.Line = line
	return n, nil
}

func (p *parser) parseSequence(closer tokenType) ([]*Node, error) {
	var items []*Node
	p.nextToken() // consume opener

	for p.currentToken.Type != closer {
		if p.currentToken.Type == tokenEOF {
			if p.lexer.err != nil {
				return nil, p.lexer.err
			}
			return nil, errors.Wrapf(ErrIncomplete, "line %d: expected %s", p.currentToken.Line, closer)
		}
		item, err := p.ParseDatum()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	p.nextToken() // consume closer

	return items, nil
}

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenSymbol
	tokenString
	tokenInteger
	tokenEllipsis
	tokenLParen
	tokenRParen
	tokenLBracket
	tokenRBracket
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "EOF"
	case tokenSymbol:
		return "symbol"
	case tokenString:
		return "string"
	case tokenInteger:
		return "integer"
	case tokenEllipsis:
		return "ellipsis"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenLBracket:
		return "'['"
	case tokenRBracket:
		return "']'"
	default:
		return fmt.Sprintf("unknown token %d", int(t))
	}
}

type token struct {
	Type  tokenType
	Value string
	Line  int
}

type lexer struct {
	input    string
	position int
	current  rune
	line     int
	err      error
}

func newLexer(input string) *lexer {
	l := &lexer{input: input, line: 1}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.current == '\n' {
		l.line++
	}
	if l.position >= len(l.input) {
		l.current = 0
	} else {
		l.current = rune(l.input[l.position])
	}
	l.position++
}

func (l *lexer) peekChar() rune {
	if l.position >= len(l.input) {
		return 0
	}
	return rune(l.input[l.position])
}

func (l *lexer) skipWhitespace() {
	for unicode.IsSpace(l.current) {
		l.readChar()
	}
}

func (l *lexer) skipComment() {
	for l.current != '\n' && l.current != '\r' && l.current != 0 {
		l.readChar()
	}
}

func (l *lexer) readSymbol() string {
	start := l.position - 1
	for isSymbolChar(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) readString() (string, error) {
	var result strings.Builder
	l.readChar() // skip opening quote

	for l.current != '"' && l.current != 0 {
		if l.current == '\\' {
			l.readChar()
			switch l.current {
			case '"', '\\', '\'':
				result.WriteRune(l.current)
			case 'n':
				result.WriteByte('\n')
			case 't':
				result.WriteByte('\t')
			case '0':
				result.WriteByte(0)
			default:
				return "", errors.Errorf("line %d: invalid escape sequence: \\%c", l.line, l.current)
			}
		} else {
			result.WriteRune(l.current)
		}
		l.readChar()
	}

	if l.current != '"' {
		return "", errors.Wrapf(ErrIncomplete, "line %d: unterminated string", l.line)
	}
	l.readChar() // skip closing quote

	return result.String(), nil
}

func (l *lexer) readInteger() string {
	start := l.position - 1
	if l.current == '+' || l.current == '-' {
		l.readChar()
	}
	for unicode.IsDigit(l.current) {
		l.readChar()
	}
	return l.input[start : l.position-1]
}

func (l *lexer) fail(err error) token {
	if l.err == nil {
		l.err = err
	}
	return token{Type: tokenEOF, Line: l.line}
}

func (l *lexer) nextToken() token {
	for {
		l.skipWhitespace()

		line := l.line

		switch l.current {
		case 0:
			return token{Type: tokenEOF, Line: line}
		case ';':
			l.skipComment()
			continue
		case '(':
			l.readChar()
			return token{Type: tokenLParen, Value: "(", Line: line}
		case ')':
			l.readChar()
			return token{Type: tokenRParen, Value: ")", Line: line}
		case '[':
			l.readChar()
			return token{Type: tokenLBracket, Value: "[", Line: line}
		case ']':
			l.readChar()
			return token{Type: tokenRBracket, Value: "]", Line: line}
		case '"':
			str, err := l.readString()
			if err != nil {
				return l.fail(err)
			}
			return token{Type: tokenString, Value: str, Line: line}
		case '.':
			if l.peekChar() == '.' {
				l.readChar()
				if l.peekChar() == '.' {
					l.readChar()
					l.readChar()
					return token{Type: tokenEllipsis, Value: "...", Line: line}
				}
			}
			return l.fail(errors.Errorf("line %d: unexpected character '.'", line))
		default:
			if unicode.IsLetter(l.current) {
				return token{Type: tokenSymbol, Value: l.readSymbol(), Line: line}
			} else if unicode.IsDigit(l.current) || l.current == '+' || l.current == '-' {
				if (l.current == '+' || l.current == '-') && !unicode.IsDigit(l.peekChar()) {
					// Single + or - is a symbol
					return token{Type: tokenSymbol, Value: l.readSymbol(), Line: line}
				}
				return token{Type: tokenInteger, Value: l.readInteger(), Line: line}
			}
			return l.fail(errors.Errorf("line %d: unexpected character '%c'", line, l.current))
		}
	}
}

func isSymbolChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '+'
}
