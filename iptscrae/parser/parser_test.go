package parser

import (
	"testing"

	"github.com/palace-core/palace/iptscrae/ast"
)

func TestParseSimpleHandler(t *testing.T) {
	script, err := Parse(`
		ON ENTER {
			"Hello" SAY
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Handlers) != 1 {
		t.Fatalf("got %d handlers, want 1", len(script.Handlers))
	}
	if script.Handlers[0].Event != ast.Enter {
		t.Fatalf("event = %v, want Enter", script.Handlers[0].Event)
	}
}

func TestParseMultipleHandlers(t *testing.T) {
	script, err := Parse(`
		ON ENTER {
			"Entering" SAY
		}
		ON LEAVE {
			"Leaving" SAY
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	if len(script.Handlers) != 2 {
		t.Fatalf("got %d handlers, want 2", len(script.Handlers))
	}
	if script.Handlers[0].Event != ast.Enter || script.Handlers[1].Event != ast.Leave {
		t.Fatalf("events = %v, %v, want Enter, Leave", script.Handlers[0].Event, script.Handlers[1].Event)
	}
}

func TestParseLiterals(t *testing.T) {
	script, err := Parse(`
		ON SELECT {
			42
			"test"
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Kind != ast.StmtExpr || stmts[0].Expr.Kind != ast.ExprLiteral || stmts[0].Expr.Value.Int != 42 {
		t.Fatalf("statement 0 = %#v, want integer literal 42", stmts[0])
	}
	if stmts[1].Kind != ast.StmtExpr || stmts[1].Expr.Kind != ast.ExprLiteral || stmts[1].Expr.Value.Str != "test" {
		t.Fatalf("statement 1 = %#v, want string literal \"test\"", stmts[1])
	}
}

func TestParseFunctionCalls(t *testing.T) {
	script, err := Parse(`
		ON ENTER {
			WHONAME SAY
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[0].Expr.Kind != ast.ExprCall || stmts[0].Expr.Name != "WHONAME" {
		t.Fatalf("statement 0 = %#v, want Call(WHONAME)", stmts[0])
	}
	if stmts[1].Expr.Kind != ast.ExprCall || stmts[1].Expr.Name != "SAY" {
		t.Fatalf("statement 1 = %#v, want Call(SAY)", stmts[1])
	}
}

func TestParseIfStatement(t *testing.T) {
	script, err := Parse(`
		ON SELECT {
			count 10 < IF {
				"Less than 10" SAY
			}
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	// count, 10, <, IF
	if len(stmts) < 4 {
		t.Fatalf("got %d statements, want at least 4", len(stmts))
	}
	if stmts[3].Kind != ast.StmtIf {
		t.Fatalf("statement 3 = %#v, want StmtIf", stmts[3])
	}
	if len(stmts[3].Condition.Statements) != 0 {
		t.Fatalf("IF condition block should be empty, got %v", stmts[3].Condition)
	}
}

func TestParseWhileStatement(t *testing.T) {
	script, err := Parse(`
		ON STARTUP {
			{ count 10 < } WHILE {
				count 1 + count =
			}
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	// block expr, WHILE
	if len(stmts) < 2 {
		t.Fatalf("got %d statements, want at least 2", len(stmts))
	}
	if stmts[0].Expr.Kind != ast.ExprBlock {
		t.Fatalf("statement 0 = %#v, want block expression", stmts[0])
	}
	last := stmts[len(stmts)-1]
	if last.Kind != ast.StmtWhile {
		t.Fatalf("last statement = %#v, want StmtWhile", last)
	}

	body := last.Body.Statements
	if len(body) == 0 {
		t.Fatal("WHILE body is empty")
	}
	assign := body[len(body)-1]
	if assign.Kind != ast.StmtAssign || assign.Name != "count" {
		t.Fatalf("last body statement = %#v, want Assign(count)", assign)
	}
}

func TestParseInvalidEvent(t *testing.T) {
	_, err := Parse(`
		ON INVALIDEVENT {
			"test" SAY
		}
	`)
	if err == nil {
		t.Fatal("expected error")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error = %#v, want *Error", err)
	}
	if perr.Eof {
		t.Fatalf("error = %#v, want non-EOF invalid-event error", perr)
	}
}

func TestParseUnterminatedBlock(t *testing.T) {
	_, err := Parse(`
		ON ENTER {
			"test" SAY
	`)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestParseAssignFallsBackToExprWhenTargetIsNotAVariable(t *testing.T) {
	script, err := Parse(`
		ON SELECT {
			5 =
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	if stmts[0].Kind != ast.StmtExpr || stmts[0].Expr.Kind != ast.ExprLiteral {
		t.Fatalf("statement 0 = %#v, want expr statement wrapping the literal", stmts[0])
	}
}

func TestParseMinusIsAlwaysBinarySubtract(t *testing.T) {
	script, err := Parse(`
		ON SELECT {
			5 -
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	stmts := script.Handlers[0].Body.Statements
	if len(stmts) != 2 {
		t.Fatalf("got %d statements, want 2", len(stmts))
	}
	if stmts[1].Expr.Kind != ast.ExprBinOp || stmts[1].Expr.BinOp != ast.Sub {
		t.Fatalf("statement 1 = %#v, want BinOp(Sub)", stmts[1])
	}
}
