// Package builtins implements the native functions an Iptscrae script
// can CALL: stack manipulation, string/math/array helpers, and the
// Palace-specific operations that reach back into a room/session
// through context.Actions (spec.md §4.I/§4.J).
package builtins

import (
	"strings"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

// Machine is the slice of VM state a builtin needs: the value stack
// and variable bindings. iptscrae/vm.Vm implements this directly so
// builtins operate on the running VM without importing it back
// (avoiding an import cycle, since vm imports builtins for dispatch).
type Machine interface {
	Push(v ast.Value)
	Pop(op string) (ast.Value, error)
	Peek(op string) (ast.Value, error)
	PeekAt(fromTop int) (ast.Value, error)
	StackLen() int
	Variable(name string) (ast.Value, bool)
	SetVariable(name string, v ast.Value)
	InstructionCount() int
}

// Func is the signature every builtin implements.
type Func func(m Machine, ctx *context.Context) error

var registry map[string]Func

func init() {
	registry = make(map[string]Func)
	registerStack(registry)
	registerString(registry)
	registerMath(registry)
	registerLogic(registry)
	registerArray(registry)
	registerPalace(registry)
}

// Call dispatches name (case-insensitively) to its builtin. Unlike the
// grounding source's chain of per-family lookup functions that falls
// through on UndefinedFunction, Go builtins are registered in a single
// map at init — simpler and just as correct since names don't collide
// across families (spec.md §4.I/§4.J). ctx must be non-nil: unlike the
// grounding source's Option<&mut ScriptContext> (which falls back to a
// test-only output buffer when absent), a Go VM always runs a handler
// against a concrete Context — callers that just want to observe
// output wire a capturing context.Actions instead.
func Call(name string, m Machine, ctx *context.Context) error {
	upper := strings.ToUpper(name)
	fn, ok := registry[upper]
	if !ok {
		return errUndefinedFunction(upper)
	}
	if !ctx.IsFunctionAllowed(upper) {
		return errNotAllowed(upper)
	}
	return fn(m, ctx)
}
