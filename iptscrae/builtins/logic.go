package builtins

import (
	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

// registerLogic wires the Logic family (spec.md §4.J): AND, OR, XOR,
// NOT over the truthiness coercion rules. These are distinct from the
// BinOp/UnaryOp And/Or/Xor/Not the VM evaluates directly for operator
// tokens — scripts may also reach them as ordinary CALL-style builtins.
func registerLogic(r map[string]Func) {
	boolInt := func(b bool) ast.Value {
		if b {
			return ast.Int32(1)
		}
		return ast.Int32(0)
	}
	r["AND"] = func(m Machine, _ *context.Context) error {
		right, err := m.Pop("AND")
		if err != nil {
			return err
		}
		left, err := m.Pop("AND")
		if err != nil {
			return err
		}
		m.Push(boolInt(left.ToBool() && right.ToBool()))
		return nil
	}
	r["OR"] = func(m Machine, _ *context.Context) error {
		right, err := m.Pop("OR")
		if err != nil {
			return err
		}
		left, err := m.Pop("OR")
		if err != nil {
			return err
		}
		m.Push(boolInt(left.ToBool() || right.ToBool()))
		return nil
	}
	r["XOR"] = func(m Machine, _ *context.Context) error {
		right, err := m.Pop("XOR")
		if err != nil {
			return err
		}
		left, err := m.Pop("XOR")
		if err != nil {
			return err
		}
		m.Push(boolInt(left.ToBool() != right.ToBool()))
		return nil
	}
	r["NOT"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("NOT")
		if err != nil {
			return err
		}
		m.Push(boolInt(!v.ToBool()))
		return nil
	}
}
