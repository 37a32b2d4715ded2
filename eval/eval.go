// Package eval implements the pure expression evaluator spec.md §4.1
// describes: eval(schema, row, expr) -> Value | error. It never
// mutates its inputs and never touches a Table directly, so both
// table managers share one implementation.
package eval

import (
	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// Eval evaluates expr against row under sch, implementing every shape
// in spec.md §4.1.
func Eval(sch *schema.Schema, row table.Row, expr ast.Expr) (schema.Value, error) {
	switch e := expr.(type) {
	case *ast.Ident:
		return evalIdent(sch, row, e)
	case *ast.NumberLit:
		return schema.ParseNumberLiteral(e.Text)
	case *ast.StringLit:
		return schema.Varchar(e.Value), nil
	case *ast.NullLit:
		return schema.Null(), nil
	case *ast.BoolLit:
		return schema.FromBool(e.Value), nil
	case *ast.Nested:
		return Eval(sch, row, e.Inner)
	case *ast.NullTest:
		v, err := Eval(sch, row, e.Operand)
		if err != nil {
			return schema.Value{}, err
		}
		result := v.IsNull()
		if e.Negate {
			result = !result
		}
		return schema.FromBool(result), nil
	case *ast.BoolTest:
		return evalBoolTest(sch, row, e)
	case *ast.BinaryExpr:
		return evalBinary(sch, row, e)
	default:
		return schema.Value{}, errs.Unsupportedf("unsupported expression")
	}
}

func evalIdent(sch *schema.Schema, row table.Row, id *ast.Ident) (schema.Value, error) {
	if id.Quoted {
		return schema.Varchar(id.Name), nil
	}
	if idx, ok := sch.Index(id.Name); ok {
		return row[idx], nil
	}
	// Unquoted, unresolved identifier: treated as a string literal of
	// its own text (spec.md §4.1's "fallback matches SQL
	// string-in-context behavior for unquoted non-column tokens").
	return schema.Varchar(id.Name), nil
}

// boolTable implements the truth table from spec.md §4.1 for the four
// IS [NOT] TRUE/FALSE predicates, where b/ok come from Value.ToBool
// (ok==false means the operand was null, i.e. "unknown").
func boolTable(op ast.BoolTestOp, b, ok bool) bool {
	if !ok {
		switch op {
		case ast.IsNotTrue, ast.IsNotFalse:
			return true
		default:
			return false
		}
	}
	switch op {
	case ast.IsTrue:
		return b
	case ast.IsFalse:
		return !b
	case ast.IsNotTrue:
		return !b
	default: // IsNotFalse
		return b
	}
}

func evalBoolTest(sch *schema.Schema, row table.Row, e *ast.BoolTest) (schema.Value, error) {
	v, err := Eval(sch, row, e.Operand)
	if err != nil {
		return schema.Value{}, err
	}
	b, ok, err := v.ToBool()
	if err != nil {
		return schema.Value{}, err
	}
	return schema.FromBool(boolTable(e.Op, b, ok)), nil
}

func evalBinary(sch *schema.Schema, row table.Row, e *ast.BinaryExpr) (schema.Value, error) {
	left, err := Eval(sch, row, e.Left)
	if err != nil {
		return schema.Value{}, err
	}
	right, err := Eval(sch, row, e.Right)
	if err != nil {
		return schema.Value{}, err
	}

	switch {
	case left.IsNull() || right.IsNull():
		return schema.Value{}, errs.Otherf("unsupported operation on null operand")

	case left.Kind() == schema.KindInt && right.Kind() == schema.KindInt:
		return evalIntBinary(left.IntValue(), right.IntValue(), e.Op)

	case left.Kind() == schema.KindVarchar && right.Kind() == schema.KindVarchar:
		if e.Op == ast.OpEq {
			return schema.FromBool(left.StrValue() == right.StrValue()), nil
		}
		return schema.Value{}, errs.Otherf("unsupported operator on varchar operands")

	default:
		return schema.Value{}, errs.Otherf("type mismatch in binary expression")
	}
}

// evalIntBinary applies the Int,Int row of spec.md §4.1's operator
// matrix. Overflow wraps via Go's native int32 two's-complement
// arithmetic — deterministic, and the choice spec.md §9 leaves open
// ("pick wrapping or checked and keep consistent").
func evalIntBinary(l, r int32, op ast.BinaryOp) (schema.Value, error) {
	switch op {
	case ast.OpAdd:
		return schema.Int(l + r), nil
	case ast.OpSub:
		return schema.Int(l - r), nil
	case ast.OpMul:
		return schema.Int(l * r), nil
	case ast.OpDiv:
		if r == 0 {
			return schema.Value{}, errs.Otherf("division by zero")
		}
		return schema.Int(l / r), nil
	case ast.OpMod:
		if r == 0 {
			return schema.Value{}, errs.Otherf("modulo by zero")
		}
		return schema.Int(l % r), nil
	case ast.OpGt:
		return schema.FromBool(l > r), nil
	case ast.OpLt:
		return schema.FromBool(l < r), nil
	case ast.OpGtEq:
		return schema.FromBool(l >= r), nil
	case ast.OpLtEq:
		return schema.FromBool(l <= r), nil
	case ast.OpEq:
		return schema.FromBool(l == r), nil
	case ast.OpNotEq:
		return schema.FromBool(l != r), nil
	case ast.OpAnd:
		return schema.FromBool(l != 0 && r != 0), nil
	case ast.OpOr:
		return schema.FromBool(l != 0 || r != 0), nil
	default:
		return schema.Value{}, errs.Otherf("unsupported binary operator")
	}
}

// ToPredicate is the "predicate-to-bool" rule from spec.md §4.1 used
// by WHERE: evaluate, then bool-coerce; a null or unknown result
// selects the row out (treated as false), not as an error.
func ToPredicate(sch *schema.Schema, row table.Row, expr ast.Expr) (bool, error) {
	if expr == nil {
		return true, nil
	}
	v, err := Eval(sch, row, expr)
	if err != nil {
		return false, err
	}
	b, ok, err := v.ToBool()
	if err != nil {
		return false, err
	}
	return ok && b, nil
}
