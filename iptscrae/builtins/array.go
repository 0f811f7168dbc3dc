package builtins

import (
	"fmt"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

func registerArray(r map[string]Func) {
	r["ARRAY"] = func(m Machine, _ *context.Context) error {
		size, err := m.Pop("ARRAY")
		if err != nil {
			return err
		}
		if size.ToInt() < 0 {
			return errTypeError("ARRAY size must be non-negative")
		}
		elems := make([]ast.Value, size.ToInt())
		for i := range elems {
			elems[i] = ast.Int32(0)
		}
		m.Push(ast.ArrayOf(elems))
		return nil
	}
	r["GET"] = func(m Machine, _ *context.Context) error {
		index, err := m.Pop("GET index")
		if err != nil {
			return err
		}
		arr, err := m.Pop("GET array")
		if err != nil {
			return err
		}
		if arr.Kind != ast.KindArray {
			return errTypeError("GET requires an array")
		}
		i := index.ToInt()
		if i < 0 || int(i) >= len(arr.Array) {
			return errTypeError(fmt.Sprintf("array index %d out of bounds", i))
		}
		m.Push(arr.Array[i])
		return nil
	}
	r["PUT"] = func(m Machine, _ *context.Context) error {
		value, err := m.Pop("PUT value")
		if err != nil {
			return err
		}
		index, err := m.Pop("PUT index")
		if err != nil {
			return err
		}
		arr, err := m.Pop("PUT array")
		if err != nil {
			return err
		}
		if arr.Kind != ast.KindArray {
			return errTypeError("PUT requires an array")
		}
		i := index.ToInt()
		if i < 0 || int(i) >= len(arr.Array) {
			return errTypeError(fmt.Sprintf("array index %d out of bounds", i))
		}
		updated := make([]ast.Value, len(arr.Array))
		copy(updated, arr.Array)
		updated[i] = value
		m.Push(ast.ArrayOf(updated))
		return nil
	}
	r["LENGTH"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("LENGTH")
		if err != nil {
			return err
		}
		var length int32
		switch v.Kind {
		case ast.KindArray:
			length = int32(len(v.Array))
		case ast.KindString:
			length = int32(len(v.Str))
		}
		m.Push(ast.Int32(length))
		return nil
	}
}
