// Package schema holds the scalar Value type and the per-column,
// per-table schema metadata the engine evaluates expressions and
// enforces constraints against.
package schema

import (
	"strconv"

	"github.com/rijuyuezhu/helidb/errs"
)

// Kind discriminates a non-null Value's scalar type.
type Kind int

const (
	KindInt Kind = iota
	KindVarchar
)

// Value is a nullable scalar: either null, an Int(i32), or a
// Varchar(string). The zero Value is Int(0), not null; use Null() for
// null.
type Value struct {
	null    bool
	kind    Kind
	intVal  int32
	strVal  string
}

// Null returns the null Value.
func Null() Value { return Value{null: true} }

// Int wraps a signed 32-bit integer.
func Int(n int32) Value { return Value{kind: KindInt, intVal: n} }

// Varchar wraps a string.
func Varchar(s string) Value { return Value{kind: KindVarchar, strVal: s} }

// FromBool encodes a boolean as Int(1) / Int(0), the convention used
// by every boolean-valued expression in the evaluator.
func FromBool(b bool) Value {
	if b {
		return Int(1)
	}
	return Int(0)
}

func (v Value) IsNull() bool  { return v.null }
func (v Value) Kind() Kind    { return v.kind }
func (v Value) IntValue() int32 {
	return v.intVal
}
func (v Value) StrValue() string { return v.strVal }

// Key returns an opaque, collision-free string for use as a map key
// in the per-column uniqueness sets. Panics if called on a null
// value — callers must never place null in a uniqueness set.
func (v Value) Key() string {
	if v.null {
		panic("schema: Key of null Value")
	}
	if v.kind == KindInt {
		return "i" + strconv.FormatInt(int64(v.intVal), 10)
	}
	return "s" + v.strVal
}

// Equal is structural equality: null == null, and non-null scalars
// compare by kind and value.
func (v Value) Equal(o Value) bool {
	if v.null != o.null {
		return false
	}
	if v.null {
		return true
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindInt:
		return v.intVal == o.intVal
	default:
		return v.strVal == o.strVal
	}
}

// Compare orders two non-null, same-typed values: Int totally, Varchar
// lexicographically. The second return value is false when comparison
// is undefined (null operand, or mismatched/unsupported types) — the
// caller (ORDER BY) must treat that as a hard error, never a silent
// tie.
func (v Value) Compare(o Value) (int, bool) {
	if v.null || o.null || v.kind != o.kind {
		return 0, false
	}
	switch v.kind {
	case KindInt:
		switch {
		case v.intVal < o.intVal:
			return -1, true
		case v.intVal > o.intVal:
			return 1, true
		default:
			return 0, true
		}
	default:
		switch {
		case v.strVal < o.strVal:
			return -1, true
		case v.strVal > o.strVal:
			return 1, true
		default:
			return 0, true
		}
	}
}

// ToBool coerces a Value to boolean truthiness per spec.md §3: Int(n)
// is n != 0; Varchar is matched against a fixed truthy/falsy word
// list and is an error otherwise; null has no boolean value (the
// second return is false, meaning "unknown").
func (v Value) ToBool() (bool, bool, error) {
	if v.null {
		return false, false, nil
	}
	switch v.kind {
	case KindInt:
		return v.intVal != 0, true, nil
	default:
		switch v.strVal {
		case "true", "t", "yes", "y", "on", "1":
			return true, true, nil
		case "false", "f", "no", "n", "off", "0":
			return false, true, nil
		default:
			return false, false, errs.Otherf("cannot convert %q to bool", v.strVal)
		}
	}
}

// String renders a Value the way the table renderer does: null as the
// empty string, Int as decimal digits, Varchar verbatim.
func (v Value) String() string {
	if v.null {
		return ""
	}
	if v.kind == KindInt {
		return strconv.FormatInt(int64(v.intVal), 10)
	}
	return v.strVal
}

// ParseNumberLiteral parses a SQL numeric literal into a 32-bit
// integer, erroring on overflow or a non-integer literal, per
// spec.md §4.1's Literal rule for Number(s).
func ParseNumberLiteral(s string) (Value, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return Value{}, errs.Otherf("invalid integer literal %q", s)
	}
	return Int(int32(n)), nil
}
