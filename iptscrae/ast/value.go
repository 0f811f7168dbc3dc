// Package ast defines the Iptscrae abstract syntax tree and its
// runtime Value type (spec.md §3.5, §4.D).
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Value is the tagged variant every stack slot and variable binding
// holds: an integer, a string, or an array of Values (spec.md §3.5).
// Only one field is meaningful at a time, selected by Kind.
type Value struct {
	Kind  ValueKind
	Int   int32
	Str   string
	Array []Value
}

// ValueKind discriminates Value's active field.
type ValueKind int

const (
	KindInt ValueKind = iota
	KindString
	KindArray
)

// Int32 wraps an integer as a Value.
func Int32(n int32) Value { return Value{Kind: KindInt, Int: n} }

// Str builds a string Value.
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// ArrayOf builds an array Value.
func ArrayOf(elems []Value) Value { return Value{Kind: KindArray, Array: elems} }

// ToInt converts v to an integer: integers pass through, strings parse
// as decimal (0 on failure), arrays are always 0 (spec.md §3.5).
func (v Value) ToInt() int32 {
	switch v.Kind {
	case KindInt:
		return v.Int
	case KindString:
		n, err := strconv.ParseInt(strings.TrimSpace(v.Str), 10, 32)
		if err != nil {
			return 0
		}
		return int32(n)
	default:
		return 0
	}
}

// ToBool converts v per the truthiness rule: nonzero integer,
// nonempty string, or nonempty array (spec.md §3.5).
func (v Value) ToBool() bool {
	switch v.Kind {
	case KindInt:
		return v.Int != 0
	case KindString:
		return v.Str != ""
	default:
		return len(v.Array) != 0
	}
}

// String renders v for display/concatenation purposes.
func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(int64(v.Int), 10)
	case KindString:
		return v.Str
	default:
		parts := make([]string, len(v.Array))
		for i, e := range v.Array {
			parts[i] = e.String()
		}
		return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
	}
}

// TypeName matches the builtin TOPTYPE/VARTYPE ids (spec.md §4.J):
// 1=int, 2=string, 3=array.
func (v Value) TypeName() int32 {
	switch v.Kind {
	case KindInt:
		return 1
	case KindString:
		return 2
	default:
		return 3
	}
}
