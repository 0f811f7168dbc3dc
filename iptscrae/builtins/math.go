package builtins

import (
	"math"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

func registerMath(r map[string]Func) {
	r["RANDOM"] = func(m Machine, _ *context.Context) error {
		max, err := m.Pop("RANDOM")
		if err != nil {
			return err
		}
		n := max.ToInt()
		if n <= 0 {
			m.Push(ast.Int32(0))
			return nil
		}
		// Deterministic LCG seeded by instruction count, matching the
		// grounding source's own pseudo-random formula exactly.
		v := (int32(m.InstructionCount())*1103515245 + 12345) % n
		if v < 0 {
			v = -v
		}
		m.Push(ast.Int32(v))
		return nil
	}
	r["SQUAREROOT"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("SQUAREROOT")
		if err != nil {
			return err
		}
		result := int32(0)
		if v.ToInt() >= 0 {
			result = int32(math.Sqrt(float64(v.ToInt())))
		}
		m.Push(ast.Int32(result))
		return nil
	}
	r["SINE"] = trig(math.Sin)
	r["COSINE"] = trig(math.Cos)
	r["TANGENT"] = trig(math.Tan)
}

// trig builds a SINE/COSINE/TANGENT builtin: degrees in, result scaled
// by 1000 and truncated to an integer, matching the grounding source.
func trig(f func(float64) float64) Func {
	return func(m Machine, _ *context.Context) error {
		v, err := m.Pop("trig")
		if err != nil {
			return err
		}
		radians := float64(v.ToInt()) * math.Pi / 180
		m.Push(ast.Int32(int32(f(radians) * 1000)))
		return nil
	}
}
