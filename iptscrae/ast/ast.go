package ast

import "github.com/palace-core/palace/iptscrae/token"

// Script is an ordered sequence of event handlers (spec.md §3.5).
type Script struct {
	Handlers []EventHandler
}

// EventHandler is one `ON event { body }` block.
type EventHandler struct {
	Event EventType
	Body  Block
	Pos   token.Pos
}

// Block is an ordered list of statements.
type Block struct {
	Statements []Statement
}

// StatementKind discriminates Statement's active fields.
type StatementKind int

const (
	StmtExpr StatementKind = iota
	StmtAssign
	StmtIf
	StmtWhile
	StmtBreak
)

// Statement is one of Expr, Assign{name}, If{then,else?}, While{body},
// or Break (spec.md §3.5).
type Statement struct {
	Kind StatementKind
	Pos  token.Pos

	// StmtExpr
	Expr Expr

	// StmtAssign
	Name string

	// StmtIf / StmtWhile: condition is always an empty block — the
	// language is stack-conditioned, the VM reads the condition value
	// that the preceding statement already pushed (spec.md §4.F, §9).
	Condition Block
	Then      Block
	Else      *Block // nil if no ELSE clause
	Body      Block  // StmtWhile only
}

// ExprKind discriminates Expr's active fields.
type ExprKind int

const (
	ExprLiteral ExprKind = iota
	ExprVariable
	ExprCall
	ExprBinOp
	ExprUnaryOp
	ExprBlock
)

// Expr is one of Literal{value}, Variable{name}, Call{name},
// BinOp{op}, UnaryOp{op}, or Block (spec.md §3.5).
type Expr struct {
	Kind ExprKind
	Pos  token.Pos

	Value Value // ExprLiteral

	Name string // ExprVariable, ExprCall

	BinOp   BinOp   // ExprBinOp
	UnaryOp UnaryOp // ExprUnaryOp

	Block Block // ExprBlock
}

// BinOp is a binary operator (spec.md §3.5).
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
	Eq
	NotEq
	Less
	Greater
	LessEq
	GreaterEq
	And
	Or
	Xor
	Concat
)

// Precedence returns a binding-strength ranking for op. It is parsed
// and recorded but never consulted — Iptscrae has no infix surface
// syntax that needs it (spec.md §3.5, §9).
func (op BinOp) Precedence() int {
	switch op {
	case Or, Xor:
		return 1
	case And:
		return 2
	case Eq, NotEq:
		return 3
	case Less, Greater, LessEq, GreaterEq:
		return 4
	case Add, Sub, Concat:
		return 5
	case Mul, Div, Mod:
		return 6
	default:
		return 0
	}
}

// UnaryOp is a unary operator.
type UnaryOp int

const (
	Neg UnaryOp = iota
	Not
)
