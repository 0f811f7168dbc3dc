package vm

import (
	"testing"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
	"github.com/palace-core/palace/iptscrae/parser"
	"github.com/palace-core/palace/wire"
)

// capturingActions records every call a test handler makes, so tests
// can assert on side effects instead of the message output alone.
type capturingActions struct {
	context.NoopActions
	said  []string
	props []wire.AssetSpec
	face  int16
}

func (c *capturingActions) Say(msg string)                { c.said = append(c.said, msg) }
func (c *capturingActions) SetProps(p []wire.AssetSpec)    { c.props = p }
func (c *capturingActions) SetFace(f int16)                { c.face = f }

func newTestContext(actions *capturingActions) *context.Context {
	ctx := context.New(context.Server, actions)
	ctx.UserID = 7
	ctx.UserName = "Tester"
	ctx.RoomID = 100
	ctx.RoomName = "Lobby"
	return ctx
}

func TestPushPop(t *testing.T) {
	v := New()
	v.Push(ast.Int32(42))
	v.Push(ast.Str("test"))

	got, err := v.Pop("test")
	if err != nil || got.String() != "test" {
		t.Fatalf("pop = %v, %v", got, err)
	}
	got, err = v.Pop("test")
	if err != nil || got.ToInt() != 42 {
		t.Fatalf("pop = %v, %v", got, err)
	}
}

func TestStackUnderflow(t *testing.T) {
	v := New()
	_, err := v.Pop("test")
	vmErr, ok := err.(*Error)
	if !ok || vmErr.Kind != StackUnderflow {
		t.Fatalf("err = %v, want StackUnderflow", err)
	}
}

func TestArithmetic(t *testing.T) {
	v := New()
	v.Push(ast.Int32(5))
	v.Push(ast.Int32(3))
	if err := v.execBinOp(ast.Add); err != nil {
		t.Fatal(err)
	}
	if got, _ := v.Pop("t"); got.ToInt() != 8 {
		t.Fatalf("5+3 = %d, want 8", got.ToInt())
	}
}

func TestDivisionByZero(t *testing.T) {
	v := New()
	v.Push(ast.Int32(10))
	v.Push(ast.Int32(0))
	err := v.execBinOp(ast.Div)
	vmErr, ok := err.(*Error)
	if !ok || vmErr.Kind != DivisionByZero {
		t.Fatalf("err = %v, want DivisionByZero", err)
	}
}

func TestExecuteHandlerSay(t *testing.T) {
	script, err := parser.Parse(`ON SELECT { "Hello" SAY }`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := newTestContext(actions)

	v := New()
	if err := v.ExecuteHandler(script, ast.Select, ctx); err != nil {
		t.Fatal(err)
	}
	if len(actions.said) != 1 || actions.said[0] != "Hello" {
		t.Fatalf("said = %v, want [Hello]", actions.said)
	}
}

func TestExecuteHandlerIf(t *testing.T) {
	script, err := parser.Parse(`ON SELECT { 1 IF { "yes" SAY } }`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := newTestContext(actions)

	v := New()
	if err := v.ExecuteHandler(script, ast.Select, ctx); err != nil {
		t.Fatal(err)
	}
	if len(actions.said) != 1 || actions.said[0] != "yes" {
		t.Fatalf("said = %v, want [yes]", actions.said)
	}
}

func TestExecuteHandlerWhileCountdown(t *testing.T) {
	script, err := parser.Parse(`
		ON SELECT {
			3 count =
			count WHILE {
				count ITOA SAY
				count 1 - count =
				count
			}
		}
	`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := newTestContext(actions)

	v := New()
	if err := v.ExecuteHandler(script, ast.Select, ctx); err != nil {
		t.Fatal(err)
	}
	want := []string{"3", "2", "1"}
	if len(actions.said) != len(want) {
		t.Fatalf("said = %v, want %v", actions.said, want)
	}
	for i, w := range want {
		if actions.said[i] != w {
			t.Fatalf("said[%d] = %q, want %q", i, actions.said[i], w)
		}
	}
}

func TestCyborgSecurityDeniesGotoroom(t *testing.T) {
	script, err := parser.Parse(`ON SELECT { 5 GOTOROOM }`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := context.New(context.Cyborg, actions)

	v := New()
	err = v.ExecuteHandler(script, ast.Select, ctx)
	vmErr, ok := err.(*Error)
	if !ok || vmErr.Kind != TypeError {
		t.Fatalf("err = %v, want TypeError (not allowed)", err)
	}
}

func TestInstructionLimitExceeded(t *testing.T) {
	script, err := parser.Parse(`ON SELECT { 1 WHILE { 1 } }`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := newTestContext(actions)

	v := WithLimits(Limits{MaxInstructions: 50})
	err = v.ExecuteHandler(script, ast.Select, ctx)
	vmErr, ok := err.(*Error)
	if !ok || vmErr.Kind != InstructionLimitExceeded {
		t.Fatalf("err = %v, want InstructionLimitExceeded", err)
	}
}

func TestSetFaceBuiltin(t *testing.T) {
	script, err := parser.Parse(`ON SELECT { 9 SETFACE }`)
	if err != nil {
		t.Fatal(err)
	}
	actions := &capturingActions{}
	ctx := newTestContext(actions)

	v := New()
	if err := v.ExecuteHandler(script, ast.Select, ctx); err != nil {
		t.Fatal(err)
	}
	if actions.face != 9 {
		t.Fatalf("face = %d, want 9", actions.face)
	}
}
