package builtins

import (
	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

func registerStack(r map[string]Func) {
	r["DUP"] = func(m Machine, _ *context.Context) error {
		v, err := m.Peek("DUP")
		if err != nil {
			return err
		}
		m.Push(v)
		return nil
	}
	r["DROP"] = func(m Machine, _ *context.Context) error {
		_, err := m.Pop("DROP")
		return err
	}
	r["POP"] = r["DROP"]
	r["SWAP"] = func(m Machine, _ *context.Context) error {
		a, err := m.Pop("SWAP first")
		if err != nil {
			return err
		}
		b, err := m.Pop("SWAP second")
		if err != nil {
			return err
		}
		m.Push(a)
		m.Push(b)
		return nil
	}
	r["OVER"] = func(m Machine, _ *context.Context) error {
		v, err := m.PeekAt(1)
		if err != nil {
			return errStackUnderflow("OVER")
		}
		m.Push(v)
		return nil
	}
	r["ROT"] = func(m Machine, _ *context.Context) error {
		if m.StackLen() < 3 {
			return errStackUnderflow("ROT")
		}
		c, err := m.Pop("ROT")
		if err != nil {
			return err
		}
		b, err := m.Pop("ROT")
		if err != nil {
			return err
		}
		a, err := m.Pop("ROT")
		if err != nil {
			return err
		}
		m.Push(b)
		m.Push(c)
		m.Push(a)
		return nil
	}
	r["PICK"] = func(m Machine, _ *context.Context) error {
		n, err := m.Pop("PICK")
		if err != nil {
			return err
		}
		if n.ToInt() < 0 {
			return errTypeError("PICK index must be non-negative")
		}
		v, err := m.PeekAt(int(n.ToInt()))
		if err != nil {
			return errStackUnderflow("PICK")
		}
		m.Push(v)
		return nil
	}
	r["STACKDEPTH"] = func(m Machine, _ *context.Context) error {
		m.Push(ast.Int32(int32(m.StackLen())))
		return nil
	}
	r["TOPTYPE"] = func(m Machine, _ *context.Context) error {
		v, err := m.Peek("TOPTYPE")
		if err != nil {
			return err
		}
		m.Push(ast.Int32(v.TypeName()))
		return nil
	}
	r["VARTYPE"] = func(m Machine, _ *context.Context) error {
		name, err := m.Pop("VARTYPE")
		if err != nil {
			return err
		}
		if v, ok := m.Variable(name.String()); ok {
			m.Push(ast.Int32(v.TypeName()))
		} else {
			m.Push(ast.Int32(0))
		}
		return nil
	}
}
