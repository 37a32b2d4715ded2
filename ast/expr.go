package ast

// Expr is the sum type of every expression shape spec.md §4.1
// enumerates.
type Expr interface {
	exprNode()
}

// Ident is a bare or quoted identifier. Quoted identifiers are always
// string literals (spec.md §4.1); unquoted ones resolve against the
// row's schema, falling back to a Varchar literal of their own text
// when no such column exists.
type Ident struct {
	Name   string
	Quoted bool
}

func (*Ident) exprNode() {}

// NumberLit is an unparsed numeric literal; the evaluator parses it
// into Int(i32), erroring on overflow or non-integer text.
type NumberLit struct {
	Text string
}

func (*NumberLit) exprNode() {}

// StringLit is a single- or double-quoted string literal → Varchar.
type StringLit struct {
	Value string
}

func (*StringLit) exprNode() {}

// NullLit is the NULL literal.
type NullLit struct{}

func (*NullLit) exprNode() {}

// BoolLit is the literal TRUE/FALSE → Int(1)/Int(0).
type BoolLit struct {
	Value bool
}

func (*BoolLit) exprNode() {}

// Wildcard is the unqualified `*` in a SELECT list. The parser does
// not build this node: it marks `*` with SelectItem.Wildcard instead.
type Wildcard struct{}

func (*Wildcard) exprNode() {}

// Nested is a parenthesized sub-expression, kept as its own node so
// the parser doesn't need to special-case operator precedence around
// it.
type Nested struct {
	Inner Expr
}

func (*Nested) exprNode() {}

// NullTest is IS NULL / IS NOT NULL.
type NullTest struct {
	Operand Expr
	Negate  bool
}

func (*NullTest) exprNode() {}

// BoolTestOp enumerates the four IS [NOT] TRUE/FALSE predicates.
type BoolTestOp int

const (
	IsTrue BoolTestOp = iota
	IsFalse
	IsNotTrue
	IsNotFalse
)

// BoolTest is IS TRUE / IS FALSE / IS NOT TRUE / IS NOT FALSE.
type BoolTest struct {
	Operand Expr
	Op      BoolTestOp
}

func (*BoolTest) exprNode() {}

// BinaryOp enumerates every supported binary operator from spec.md
// §4.1's operator matrix.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpGt
	OpLt
	OpGtEq
	OpLtEq
	OpEq
	OpNotEq
	OpAnd
	OpOr
)

// BinaryExpr is `left op right`; both sides are plain Expr so nesting
// (and Nested wrapping) composes normally.
type BinaryExpr struct {
	Left  Expr
	Op    BinaryOp
	Right Expr
}

func (*BinaryExpr) exprNode() {}
