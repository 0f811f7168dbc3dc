package builtins

import (
	"strconv"
	"strings"

	"github.com/palace-core/palace/iptscrae/ast"
	"github.com/palace-core/palace/iptscrae/context"
)

func registerString(r map[string]Func) {
	r["ITOA"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("ITOA")
		if err != nil {
			return err
		}
		m.Push(ast.Str(strconv.FormatInt(int64(v.ToInt()), 10)))
		return nil
	}
	r["ATOI"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("ATOI")
		if err != nil {
			return err
		}
		m.Push(ast.Int32(v.ToInt()))
		return nil
	}
	r["STRLEN"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("STRLEN")
		if err != nil {
			return err
		}
		m.Push(ast.Int32(int32(len(v.String()))))
		return nil
	}
	r["UPPERCASE"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("UPPERCASE")
		if err != nil {
			return err
		}
		m.Push(ast.Str(strings.ToUpper(v.String())))
		return nil
	}
	r["LOWERCASE"] = func(m Machine, _ *context.Context) error {
		v, err := m.Pop("LOWERCASE")
		if err != nil {
			return err
		}
		m.Push(ast.Str(strings.ToLower(v.String())))
		return nil
	}
	r["SUBSTR"] = func(m Machine, _ *context.Context) error {
		needle, err := m.Pop("SUBSTR needle")
		if err != nil {
			return err
		}
		haystack, err := m.Pop("SUBSTR haystack")
		if err != nil {
			return err
		}
		found := int32(0)
		if strings.Contains(haystack.String(), needle.String()) {
			found = 1
		}
		m.Push(ast.Int32(found))
		return nil
	}
	r["SUBSTRING"] = func(m Machine, _ *context.Context) error {
		length, err := m.Pop("SUBSTRING length")
		if err != nil {
			return err
		}
		start, err := m.Pop("SUBSTRING start")
		if err != nil {
			return err
		}
		s, err := m.Pop("SUBSTRING string")
		if err != nil {
			return err
		}
		if start.ToInt() < 0 || length.ToInt() < 0 {
			m.Push(ast.Str(""))
			return nil
		}
		runes := []rune(s.String())
		from := int(start.ToInt())
		if from > len(runes) {
			from = len(runes)
		}
		to := from + int(length.ToInt())
		if to > len(runes) {
			to = len(runes)
		}
		m.Push(ast.Str(string(runes[from:to])))
		return nil
	}
	r["STRINDEX"] = func(m Machine, _ *context.Context) error {
		needle, err := m.Pop("STRINDEX needle")
		if err != nil {
			return err
		}
		haystack, err := m.Pop("STRINDEX haystack")
		if err != nil {
			return err
		}
		idx := strings.Index(haystack.String(), needle.String())
		m.Push(ast.Int32(int32(idx)))
		return nil
	}
}
