// Package lexer tokenizes Iptscrae source text into the stream the
// script and room-file parsers consume (spec.md §4.E).
package lexer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/palace-core/palace/iptscrae/token"
)

// Error is a lexical error with source position.
type Error struct {
	Msg string
	Pos token.Pos
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

func unterminatedString(pos token.Pos) error {
	return &Error{Msg: "unterminated string", Pos: pos}
}

func invalidCharacter(ch rune, pos token.Pos) error {
	return &Error{Msg: fmt.Sprintf("invalid character %q", ch), Pos: pos}
}

func invalidNumber(text string, pos token.Pos) error {
	return &Error{Msg: fmt.Sprintf("invalid number %q", text), Pos: pos}
}

// Lexer scans Iptscrae source one rune at a time.
type Lexer struct {
	src        []rune
	pos        int
	line       int
	column     int
	roomScript bool
}

// New returns a Lexer over source. roomScript enables the room-file
// keyword superset (spec.md §4.D); pass false for event-handler
// scripts.
func New(source string, roomScript bool) *Lexer {
	return &Lexer{src: []rune(source), pos: 0, line: 1, column: 1, roomScript: roomScript}
}

// Tokenize scans the whole source and returns every token including
// the trailing EOF.
func Tokenize(source string, roomScript bool) ([]token.Token, error) {
	l := New(source, roomScript)
	var out []token.Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

// Next scans and returns the next token.
func (l *Lexer) Next() (token.Token, error) {
	l.skipSpaces()
	pos := l.currentPos()

	if l.eof() {
		return token.Token{Kind: token.EOF, Pos: pos}, nil
	}

	ch := l.current()

	if ch == '#' {
		return l.lexComment(), nil
	}
	if ch == '\n' || ch == '\r' {
		l.advance()
		if ch == '\r' && !l.eof() && l.current() == '\n' {
			l.advance()
		}
		l.line++
		l.column = 1
		return token.Token{Kind: token.Newline, Pos: pos}, nil
	}
	if ch == '"' {
		return l.lexString(pos)
	}
	if isDigit(ch) || (ch == '-' && l.peek() != 0 && isDigit(l.peek())) {
		return l.lexNumber(pos)
	}
	if isAlpha(ch) || ch == '_' {
		return l.lexIdentifier(pos), nil
	}

	switch ch {
	case '+':
		l.advance()
		return token.Token{Kind: token.Plus, Pos: pos}, nil
	case '-':
		l.advance()
		return token.Token{Kind: token.Minus, Pos: pos}, nil
	case '*':
		l.advance()
		return token.Token{Kind: token.Star, Pos: pos}, nil
	case '/':
		l.advance()
		return token.Token{Kind: token.Slash, Pos: pos}, nil
	case '%':
		l.advance()
		return token.Token{Kind: token.Percent, Pos: pos}, nil
	case '&':
		l.advance()
		return token.Token{Kind: token.Ampersand, Pos: pos}, nil
	case '=':
		l.advance()
		return token.Token{Kind: token.Equals, Pos: pos}, nil
	case '!':
		l.advance()
		if !l.eof() && l.current() == '=' {
			l.advance()
			return token.Token{Kind: token.NotEquals, Pos: pos}, nil
		}
		return token.Token{}, invalidCharacter('!', pos)
	case '<':
		l.advance()
		if !l.eof() && l.current() == '=' {
			l.advance()
			return token.Token{Kind: token.LessEq, Pos: pos}, nil
		}
		return token.Token{Kind: token.Less, Pos: pos}, nil
	case '>':
		l.advance()
		if !l.eof() && l.current() == '=' {
			l.advance()
			return token.Token{Kind: token.GreaterEq, Pos: pos}, nil
		}
		return token.Token{Kind: token.Greater, Pos: pos}, nil
	case '{':
		l.advance()
		return token.Token{Kind: token.LeftBrace, Pos: pos}, nil
	case '}':
		l.advance()
		return token.Token{Kind: token.RightBrace, Pos: pos}, nil
	case '(':
		l.advance()
		return token.Token{Kind: token.LeftParen, Pos: pos}, nil
	case ')':
		l.advance()
		return token.Token{Kind: token.RightParen, Pos: pos}, nil
	case ',':
		l.advance()
		return token.Token{Kind: token.Comma, Pos: pos}, nil
	default:
		return token.Token{}, invalidCharacter(ch, pos)
	}
}

func (l *Lexer) lexComment() token.Token {
	pos := l.currentPos()
	l.advance() // '#'
	var b strings.Builder
	for !l.eof() && l.current() != '\n' && l.current() != '\r' {
		b.WriteRune(l.current())
		l.advance()
	}
	return token.Token{Kind: token.Comment, Text: b.String(), Pos: pos}
}

func (l *Lexer) lexString(pos token.Pos) (token.Token, error) {
	l.advance() // opening quote
	var b strings.Builder
	for !l.eof() && l.current() != '"' {
		ch := l.current()
		if ch == '\\' {
			l.advance()
			if l.eof() {
				return token.Token{}, unterminatedString(pos)
			}
			switch l.current() {
			case 'n':
				b.WriteRune('\n')
			case 'r':
				b.WriteRune('\r')
			case 't':
				b.WriteRune('\t')
			case '\\':
				b.WriteRune('\\')
			case '"':
				b.WriteRune('"')
			default:
				b.WriteRune(l.current())
			}
			l.advance()
			continue
		}
		b.WriteRune(ch)
		l.advance()
	}
	if l.eof() {
		return token.Token{}, unterminatedString(pos)
	}
	l.advance() // closing quote
	return token.Token{Kind: token.String, Text: b.String(), Pos: pos}, nil
}

func (l *Lexer) lexNumber(pos token.Pos) (token.Token, error) {
	var b strings.Builder
	if l.current() == '-' {
		b.WriteRune('-')
		l.advance()
	}
	for !l.eof() && isDigit(l.current()) {
		b.WriteRune(l.current())
		l.advance()
	}
	n, err := strconv.ParseInt(b.String(), 10, 32)
	if err != nil {
		return token.Token{}, invalidNumber(b.String(), pos)
	}
	return token.Token{Kind: token.Integer, IntVal: int32(n), Pos: pos}, nil
}

func (l *Lexer) lexIdentifier(pos token.Pos) token.Token {
	var b strings.Builder
	for !l.eof() {
		ch := l.current()
		if isAlphaNumeric(ch) || ch == '_' {
			b.WriteRune(ch)
			l.advance()
			continue
		}
		break
	}
	ident := b.String()
	kind, _ := token.Lookup(ident, l.roomScript)
	if kind == token.Ident {
		return token.Token{Kind: token.Ident, Text: ident, Pos: pos}
	}
	return token.Token{Kind: kind, Text: ident, Pos: pos}
}

func (l *Lexer) skipSpaces() {
	for !l.eof() {
		ch := l.current()
		if ch == ' ' || ch == '\t' {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) current() rune {
	if l.eof() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek() rune {
	if l.pos+1 < len(l.src) {
		return l.src[l.pos+1]
	}
	return 0
}

func (l *Lexer) advance() {
	if !l.eof() {
		l.pos++
		l.column++
	}
}

func (l *Lexer) eof() bool { return l.pos >= len(l.src) }

func (l *Lexer) currentPos() token.Pos { return token.Pos{Line: l.line, Column: l.column} }

func isDigit(ch rune) bool { return ch >= '0' && ch <= '9' }

func isAlpha(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isAlphaNumeric(ch rune) bool { return isAlpha(ch) || isDigit(ch) }
