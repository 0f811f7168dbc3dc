// Package vm is the stack-based interpreter that executes a parsed
// Iptscrae script's event handlers against a context.Context (spec.md
// §4.I). It maintains a value stack and a variable table; builtins in
// iptscrae/builtins act on it through the builtins.Machine interface.
package vm

import (
	"time"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/builtins"
	"github.com/palace-core/palace/iptscrae/context"
)

// Re-export builtins.Error's kind constants so callers of this
// package don't need a second import to inspect a failure's kind.
type (
	Error     = builtins.Error
	ErrorKind = builtins.ErrorKind
)

const (
	StackUnderflow           = builtins.StackUnderflow
	UndefinedVariable        = builtins.UndefinedVariable
	UndefinedFunction        = builtins.UndefinedFunction
	TypeError                = builtins.TypeError
	DivisionByZero           = builtins.DivisionByZero
	BreakOutsideLoop         = builtins.BreakOutsideLoop
	Timeout                  = builtins.Timeout
	InstructionLimitExceeded = builtins.InstructionLimitExceeded
)

// Limits bounds a script's execution, per spec.md §4.I: Server scripts
// run unbounded, Cyborg scripts are sandboxed.
type Limits struct {
	MaxInstructions int           // 0 means unlimited
	MaxDuration     time.Duration // 0 means unlimited
}

// ServerLimits imposes no bound — used for room-owner-authored scripts.
func ServerLimits() Limits { return Limits{} }

// CyborgLimits sandbox user-authored scripts to 100k instructions / 5s.
func CyborgLimits() Limits {
	return Limits{MaxInstructions: 100_000, MaxDuration: 5 * time.Second}
}

// controlFlow signals whether a block finished normally or hit BREAK.
type controlFlow int

const (
	flowContinue controlFlow = iota
	flowBreak
)

// Vm is a single-threaded Iptscrae interpreter instance. It is not
// safe for concurrent use; callers dispatching many handlers
// concurrently should use one Vm per goroutine.
type Vm struct {
	stack     []ast.Value
	variables map[string]ast.Value

	limits           Limits
	instructionCount int
	startTime        time.Time
}

// New returns a Vm with no execution limits.
func New() *Vm { return WithLimits(Limits{}) }

// WithLimits returns a Vm sandboxed to the given limits.
func WithLimits(limits Limits) *Vm {
	return &Vm{
		variables: make(map[string]ast.Value),
		limits:    limits,
	}
}

// ExecuteHandler runs every handler in script matching eventType
// against ctx, in declaration order.
func (v *Vm) ExecuteHandler(script ast.Script, eventType ast.EventType, ctx *context.Context) error {
	v.startTime = time.Now()
	v.instructionCount = 0

	for _, handler := range script.Handlers {
		if handler.Event != eventType {
			continue
		}
		if _, err := v.execBlock(handler.Body, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (v *Vm) execBlock(block ast.Block, ctx *context.Context) (controlFlow, error) {
	for _, stmt := range block.Statements {
		flow, err := v.execStatement(stmt, ctx)
		if err != nil {
			return flowContinue, err
		}
		if flow == flowBreak {
			return flowBreak, nil
		}
	}
	return flowContinue, nil
}

func (v *Vm) execStatement(stmt ast.Statement, ctx *context.Context) (controlFlow, error) {
	if err := v.checkLimits(); err != nil {
		return flowContinue, err
	}

	switch stmt.Kind {
	case ast.StmtExpr:
		if err := v.execExpr(stmt.Expr, ctx); err != nil {
			return flowContinue, err
		}
		return flowContinue, nil

	case ast.StmtAssign:
		value, err := v.Pop("assignment")
		if err != nil {
			return flowContinue, err
		}
		v.variables[stmt.Name] = value
		return flowContinue, nil

	case ast.StmtIf:
		// The condition was already evaluated and pushed by the
		// preceding statement — Iptscrae IF is stack-conditioned
		// (spec.md §4.F, §9).
		condition, err := v.Pop("IF condition")
		if err != nil {
			return flowContinue, err
		}
		if condition.ToBool() {
			return v.execBlock(stmt.Then, ctx)
		}
		if stmt.Else != nil {
			return v.execBlock(*stmt.Else, ctx)
		}
		return flowContinue, nil

	case ast.StmtWhile:
		for {
			condition, err := v.Pop("WHILE condition")
			if err != nil {
				return flowContinue, err
			}
			if !condition.ToBool() {
				break
			}
			flow, err := v.execBlock(stmt.Body, ctx)
			if err != nil {
				return flowContinue, err
			}
			if flow == flowBreak {
				break
			}
		}
		return flowContinue, nil

	case ast.StmtBreak:
		return flowBreak, nil

	default:
		return flowContinue, nil
	}
}

func (v *Vm) execExpr(expr ast.Expr, ctx *context.Context) error {
	if err := v.checkLimits(); err != nil {
		return err
	}

	switch expr.Kind {
	case ast.ExprLiteral:
		v.Push(expr.Value)
		return nil

	case ast.ExprVariable:
		value, ok := v.variables[expr.Name]
		if !ok {
			return &Error{Kind: UndefinedVariable, Message: "undefined variable: " + expr.Name}
		}
		v.Push(value)
		return nil

	case ast.ExprCall:
		return builtins.Call(expr.Name, v, ctx)

	case ast.ExprBinOp:
		return v.execBinOp(expr.BinOp)

	case ast.ExprUnaryOp:
		return v.execUnaryOp(expr.UnaryOp)

	case ast.ExprBlock:
		_, err := v.execBlock(expr.Block, ctx)
		return err

	default:
		return nil
	}
}

func (v *Vm) execBinOp(op ast.BinOp) error {
	right, err := v.Pop("binary operation right operand")
	if err != nil {
		return err
	}
	left, err := v.Pop("binary operation left operand")
	if err != nil {
		return err
	}

	boolInt := func(b bool) ast.Value {
		if b {
			return ast.Int32(1)
		}
		return ast.Int32(0)
	}

	var result ast.Value
	switch op {
	case ast.Add:
		result = ast.Int32(left.ToInt() + right.ToInt())
	case ast.Sub:
		result = ast.Int32(left.ToInt() - right.ToInt())
	case ast.Mul:
		result = ast.Int32(left.ToInt() * right.ToInt())
	case ast.Div:
		if right.ToInt() == 0 {
			return &Error{Kind: DivisionByZero, Message: "division by zero"}
		}
		result = ast.Int32(left.ToInt() / right.ToInt())
	case ast.Mod:
		if right.ToInt() == 0 {
			return &Error{Kind: DivisionByZero, Message: "division by zero"}
		}
		result = ast.Int32(left.ToInt() % right.ToInt())
	case ast.Concat:
		result = ast.Str(left.String() + right.String())
	case ast.Eq:
		result = boolInt(left.ToInt() == right.ToInt())
	case ast.NotEq:
		result = boolInt(left.ToInt() != right.ToInt())
	case ast.Less:
		result = boolInt(left.ToInt() < right.ToInt())
	case ast.Greater:
		result = boolInt(left.ToInt() > right.ToInt())
	case ast.LessEq:
		result = boolInt(left.ToInt() <= right.ToInt())
	case ast.GreaterEq:
		result = boolInt(left.ToInt() >= right.ToInt())
	case ast.And:
		result = boolInt(left.ToBool() && right.ToBool())
	case ast.Or:
		result = boolInt(left.ToBool() || right.ToBool())
	case ast.Xor:
		result = boolInt(left.ToBool() != right.ToBool())
	default:
		result = ast.Int32(0)
	}

	v.Push(result)
	return nil
}

func (v *Vm) execUnaryOp(op ast.UnaryOp) error {
	operand, err := v.Pop("unary operation")
	if err != nil {
		return err
	}
	switch op {
	case ast.Neg:
		v.Push(ast.Int32(-operand.ToInt()))
	case ast.Not:
		if operand.ToBool() {
			v.Push(ast.Int32(0))
		} else {
			v.Push(ast.Int32(1))
		}
	}
	return nil
}

func (v *Vm) checkLimits() error {
	v.instructionCount++
	if v.limits.MaxInstructions > 0 && v.instructionCount >= v.limits.MaxInstructions {
		return &Error{Kind: InstructionLimitExceeded, Message: "instruction limit exceeded"}
	}
	if v.limits.MaxDuration > 0 && time.Since(v.startTime) >= v.limits.MaxDuration {
		return &Error{Kind: Timeout, Message: "script execution timeout"}
	}
	return nil
}

// Push implements builtins.Machine.
func (v *Vm) Push(val ast.Value) { v.stack = append(v.stack, val) }

// Pop implements builtins.Machine.
func (v *Vm) Pop(op string) (ast.Value, error) {
	if len(v.stack) == 0 {
		return ast.Value{}, &Error{Kind: StackUnderflow, Message: "stack underflow during operation: " + op}
	}
	val := v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
	return val, nil
}

// Peek implements builtins.Machine.
func (v *Vm) Peek(op string) (ast.Value, error) {
	if len(v.stack) == 0 {
		return ast.Value{}, &Error{Kind: StackUnderflow, Message: "stack underflow during operation: " + op}
	}
	return v.stack[len(v.stack)-1], nil
}

// PeekAt implements builtins.Machine: fromTop 0 is the top of stack.
func (v *Vm) PeekAt(fromTop int) (ast.Value, error) {
	idx := len(v.stack) - 1 - fromTop
	if idx < 0 || fromTop < 0 {
		return ast.Value{}, &Error{Kind: StackUnderflow, Message: "stack underflow"}
	}
	return v.stack[idx], nil
}

// StackLen implements builtins.Machine.
func (v *Vm) StackLen() int { return len(v.stack) }

// Variable implements builtins.Machine.
func (v *Vm) Variable(name string) (ast.Value, bool) {
	val, ok := v.variables[name]
	return val, ok
}

// SetVariable implements builtins.Machine.
func (v *Vm) SetVariable(name string, val ast.Value) { v.variables[name] = val }

// InstructionCount implements builtins.Machine.
func (v *Vm) InstructionCount() int { return v.instructionCount }

// Stack returns a copy of the current stack, for tests/debugging.
func (v *Vm) Stack() []ast.Value {
	out := make([]ast.Value, len(v.stack))
	copy(out, v.stack)
	return out
}
