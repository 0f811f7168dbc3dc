// Package parser builds an ast.Script from a token stream — the
// event-handler script grammar (spec.md §4.F). Iptscrae has no
// top-level statements; a script is just a sequence of ON handlers.
package parser

import (
	"fmt"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/lexer"
	"github.com/palace-core/palace/iptscrae/token"
)

// Error is a parse error with enough detail to report a source
// location. It mirrors the three ways parsing can fail: an
// unexpected token, running out of tokens mid-construct, or an ON
// handler naming an event that doesn't exist.
type Error struct {
	Msg string
	Pos token.Pos
	Eof bool
}

func (e *Error) Error() string {
	if e.Eof {
		return fmt.Sprintf("unexpected end of file, expected %s", e.Msg)
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Msg, e.Pos.Line, e.Pos.Column)
}

func unexpectedToken(expected, found string, pos token.Pos) error {
	return &Error{Msg: fmt.Sprintf("expected %s but found %s", expected, found), Pos: pos}
}

func unexpectedEOF(expected string) error {
	return &Error{Msg: expected, Eof: true}
}

func invalidEventName(name string, pos token.Pos) error {
	return &Error{Msg: fmt.Sprintf("invalid event name %q", name), Pos: pos}
}

// Parser consumes a flat token stream produced by the lexer.
type Parser struct {
	tokens []token.Token
	pos    int
}

// New returns a Parser over tokens (including its trailing EOF).
func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse parses source as an event-handler script. It's a convenience
// wrapper around lexing + New(...).Parse() for callers that don't need
// the intermediate token stream.
func Parse(source string) (ast.Script, error) {
	toks, err := lexer.Tokenize(source, false)
	if err != nil {
		return ast.Script{}, err
	}
	return New(toks).Parse()
}

// Parse consumes the whole token stream and returns the handlers it
// declares, in source order.
func (p *Parser) Parse() (ast.Script, error) {
	var handlers []ast.EventHandler

	p.skipNewlines()
	for !p.isAtEnd() {
		if p.skipIgnorable() {
			continue
		}
		if !p.check(token.On) {
			tok := p.current()
			return ast.Script{}, unexpectedToken("ON or end of file", tokenDescription(tok), tok.Pos)
		}
		h, err := p.parseEventHandler()
		if err != nil {
			return ast.Script{}, err
		}
		handlers = append(handlers, h)
		p.skipNewlines()
	}

	return ast.Script{Handlers: handlers}, nil
}

// parseEventHandler parses "ON eventname { block }".
func (p *Parser) parseEventHandler() (ast.EventHandler, error) {
	pos := p.current().Pos
	if err := p.consume(token.On, "ON"); err != nil {
		return ast.EventHandler{}, err
	}

	cur := p.current()
	if cur.Kind != token.Ident {
		return ast.EventHandler{}, unexpectedToken("event name", tokenDescription(cur), cur.Pos)
	}
	name := cur.Text
	p.advance()

	event, ok := ast.EventTypeFromName(name)
	if !ok {
		return ast.EventHandler{}, invalidEventName(name, pos)
	}

	p.skipNewlines()

	body, err := p.parseBlock()
	if err != nil {
		return ast.EventHandler{}, err
	}

	return ast.EventHandler{Event: event, Body: body, Pos: pos}, nil
}

// parseBlock parses "{ statements }".
func (p *Parser) parseBlock() (ast.Block, error) {
	if err := p.consume(token.LeftBrace, "{"); err != nil {
		return ast.Block{}, err
	}
	p.skipNewlines()

	var statements []ast.Statement
	for !p.check(token.RightBrace) && !p.isAtEnd() {
		p.skipIgnorable()
		if p.check(token.RightBrace) {
			break
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return ast.Block{}, err
		}
		statements = append(statements, stmt)
		p.skipNewlines()
	}

	if err := p.consume(token.RightBrace, "}"); err != nil {
		return ast.Block{}, err
	}
	return ast.Block{Statements: statements}, nil
}

// parseStatement parses IF, WHILE, BREAK, or an expression/assignment.
func (p *Parser) parseStatement() (ast.Statement, error) {
	pos := p.current().Pos

	if p.check(token.If) {
		return p.parseIfStatement()
	}
	if p.check(token.While) {
		return p.parseWhileStatement()
	}
	if p.check(token.Break) {
		p.advance()
		return ast.Statement{Kind: ast.StmtBreak, Pos: pos}, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return ast.Statement{}, err
	}

	// "value name =" assigns the stack's top value to name. The
	// parser only recognizes this shape when the expression before
	// "=" is a bare variable reference; any other expression falls
	// back to a plain expression statement and the "=" is still
	// consumed. A full implementation would let any expression stand
	// in for the assignment target by tracking the pending name on
	// the stack at runtime instead of at parse time.
	if p.check(token.Equals) {
		p.advance()
		if expr.Kind == ast.ExprVariable {
			return ast.Statement{Kind: ast.StmtAssign, Pos: pos, Name: expr.Name}, nil
		}
		return ast.Statement{Kind: ast.StmtExpr, Pos: pos, Expr: expr}, nil
	}

	return ast.Statement{Kind: ast.StmtExpr, Pos: pos, Expr: expr}, nil
}

// parseIfStatement parses "IF { then } [ELSE { else }]". The
// condition block is always empty: Iptscrae is stack-conditioned, so
// the VM reads the value a preceding statement already pushed rather
// than evaluating an expression here (spec.md §4.F, §9).
func (p *Parser) parseIfStatement() (ast.Statement, error) {
	pos := p.current().Pos
	if err := p.consume(token.If, "IF"); err != nil {
		return ast.Statement{}, err
	}
	p.skipNewlines()

	thenBlock, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}
	p.skipNewlines()

	var elseBlock *ast.Block
	if p.check(token.Else) {
		p.advance()
		p.skipNewlines()
		b, err := p.parseBlock()
		if err != nil {
			return ast.Statement{}, err
		}
		elseBlock = &b
	}

	return ast.Statement{
		Kind:      ast.StmtIf,
		Pos:       pos,
		Condition: ast.Block{},
		Then:      thenBlock,
		Else:      elseBlock,
	}, nil
}

// parseWhileStatement parses "WHILE { body }", with the same
// empty-condition convention as parseIfStatement.
func (p *Parser) parseWhileStatement() (ast.Statement, error) {
	pos := p.current().Pos
	if err := p.consume(token.While, "WHILE"); err != nil {
		return ast.Statement{}, err
	}
	p.skipNewlines()

	body, err := p.parseBlock()
	if err != nil {
		return ast.Statement{}, err
	}

	return ast.Statement{
		Kind:      ast.StmtWhile,
		Pos:       pos,
		Condition: ast.Block{},
		Body:      body,
	}, nil
}

// parseExpression parses one primary expression. Iptscrae's postfix,
// stack-based grammar has no infix operator chains to fold, so this is
// just parsePrimary (BinOp.Precedence exists for completeness but is
// never consulted here).
func (p *Parser) parseExpression() (ast.Expr, error) {
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	pos := p.current().Pos
	cur := p.current()

	switch cur.Kind {
	case token.Integer:
		p.advance()
		return ast.Expr{Kind: ast.ExprLiteral, Pos: pos, Value: ast.Int32(cur.IntVal)}, nil

	case token.String:
		p.advance()
		return ast.Expr{Kind: ast.ExprLiteral, Pos: pos, Value: ast.Str(cur.Text)}, nil

	case token.Ident:
		p.advance()
		if isCallName(cur.Text) {
			return ast.Expr{Kind: ast.ExprCall, Pos: pos, Name: cur.Text}, nil
		}
		return ast.Expr{Kind: ast.ExprVariable, Pos: pos, Name: cur.Text}, nil

	case token.Plus:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Add}, nil
	case token.Minus:
		p.advance()
		// Could be binary subtract or unary negate; Iptscrae's
		// postfix grammar always treats it as binary subtract. No
		// builtin performs unary negation; `0 x -` yields -x.
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Sub}, nil
	case token.Star:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Mul}, nil
	case token.Slash:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Div}, nil
	case token.Percent:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Mod}, nil
	case token.Ampersand:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Concat}, nil
	case token.NotEquals:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.NotEq}, nil
	case token.Less:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Less}, nil
	case token.Greater:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.Greater}, nil
	case token.LessEq:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.LessEq}, nil
	case token.GreaterEq:
		p.advance()
		return ast.Expr{Kind: ast.ExprBinOp, Pos: pos, BinOp: ast.GreaterEq}, nil

	case token.LeftBrace:
		block, err := p.parseBlock()
		if err != nil {
			return ast.Expr{}, err
		}
		return ast.Expr{Kind: ast.ExprBlock, Pos: pos, Block: block}, nil

	default:
		return ast.Expr{}, unexpectedToken("expression", tokenDescription(cur), pos)
	}
}

// isCallName reports whether name should parse as a function call
// rather than a variable reference: every character is uppercase, an
// underscore, or a digit (spec.md §4.F). Builtins are conventionally
// all-caps (SAY, MOVE, GETPROPS), so this lets plain lowercase/mixed
// identifiers read as user variables without a separate declaration.
func isCallName(name string) bool {
	for _, c := range name {
		if !((c >= 'A' && c <= 'Z') || c == '_' || (c >= '0' && c <= '9')) {
			return false
		}
	}
	return name != ""
}

func (p *Parser) check(k token.Kind) bool {
	if p.isAtEnd() {
		return false
	}
	return p.current().Kind == k
}

func (p *Parser) consume(k token.Kind, expected string) error {
	if p.check(k) {
		p.advance()
		return nil
	}
	if p.isAtEnd() {
		return unexpectedEOF(expected)
	}
	cur := p.current()
	return unexpectedToken(expected, tokenDescription(cur), cur.Pos)
}

func (p *Parser) current() token.Token { return p.tokens[p.pos] }

func (p *Parser) advance() {
	if !p.isAtEnd() {
		p.pos++
	}
}

func (p *Parser) isAtEnd() bool {
	return p.pos >= len(p.tokens) || p.tokens[p.pos].Kind == token.EOF
}

func (p *Parser) skipNewlines() {
	for !p.isAtEnd() && p.current().Kind == token.Newline {
		p.advance()
	}
}

func (p *Parser) skipIgnorable() bool {
	skipped := false
	for !p.isAtEnd() {
		switch p.current().Kind {
		case token.Newline, token.Comment:
			p.advance()
			skipped = true
		default:
			return skipped
		}
	}
	return skipped
}

func tokenDescription(t token.Token) string {
	switch t.Kind {
	case token.Integer:
		return fmt.Sprintf("integer %d", t.IntVal)
	case token.String:
		return fmt.Sprintf("string %q", t.Text)
	case token.Ident:
		return fmt.Sprintf("identifier '%s'", t.Text)
	case token.EOF:
		return "end of file"
	case token.Newline:
		return "newline"
	case token.Comment:
		return "comment"
	default:
		if name, ok := keywordOrSymbolName(t.Kind); ok {
			return name
		}
		return "token"
	}
}

func keywordOrSymbolName(k token.Kind) (string, bool) {
	names := map[token.Kind]string{
		token.On: "ON", token.If: "IF", token.Else: "ELSE", token.While: "WHILE",
		token.Do: "DO", token.Break: "BREAK",
		token.Room: "ROOM", token.EndRoom: "ENDROOM", token.Door: "DOOR", token.EndDoor: "ENDDOOR",
		token.Spot: "SPOT", token.EndSpot: "ENDSPOT", token.Script: "SCRIPT", token.EndScript: "ENDSCRIPT",
		token.ID: "ID", token.Name: "NAME", token.Pict: "PICT", token.Artist: "ARTIST",
		token.Dest: "DEST", token.Outline: "OUTLINE", token.Picts: "PICTS", token.EndPicts: "ENDPICTS",
		token.Picture: "PICTURE", token.EndPicture: "ENDPICTURE", token.TransColor: "TRANSCOLOR",
		token.Private: "PRIVATE", token.NoPainting: "NOPAINTING", token.NoCyborgs: "NOCYBORGS",
		token.Hidden: "HIDDEN", token.NoGuests: "NOGUESTS",
		token.Plus: "+", token.Minus: "-", token.Star: "*", token.Slash: "/", token.Percent: "%",
		token.Ampersand: "&", token.Equals: "=", token.NotEquals: "!=", token.Less: "<",
		token.Greater: ">", token.LessEq: "<=", token.GreaterEq: ">=",
		token.LeftBrace: "{", token.RightBrace: "}", token.LeftParen: "(", token.RightParen: ")",
		token.Comma: ",",
	}
	n, ok := names[k]
	return n, ok
}
