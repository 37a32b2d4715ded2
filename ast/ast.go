// Package ast defines the statement and expression shapes the core
// engine consumes, matching spec.md §6's AST contract. The lexer and
// parser packages are the only producers of these nodes; the engine
// itself never inspects SQL text.
package ast

// Statement is the sum type of every top-level statement the engine
// can dispatch on.
type Statement interface {
	statementNode()
}

// ColumnOptionKind enumerates the column-level options a CREATE TABLE
// column definition may carry.
type ColumnOptionKind int

const (
	OptionNotNull ColumnOptionKind = iota
	OptionUnique
	OptionPrimaryKey
	// OptionOther marks any option shape the parser recognized
	// syntactically but the engine does not implement (spec.md
	// §4.4: "any other column option is an error").
	OptionOther
)

type ColumnOption struct {
	Kind ColumnOptionKind
	// Raw carries a human-readable token for OptionOther so the
	// resulting error names what was rejected.
	Raw string
}

// DataType is the parsed SQL type of a column definition: INT with an
// optional display width, or VARCHAR with a character length (nil
// means unlimited).
type DataType struct {
	Name         string // "INT" or "VARCHAR"; anything else is unsupported
	DisplayWidth *uint64
	Length       *uint64
}

type ColumnDef struct {
	Name    string
	Type    DataType
	Options []ColumnOption
}

// CreateTable is `CREATE TABLE name (columns...)`.
type CreateTable struct {
	Name    string
	Columns []ColumnDef
}

func (*CreateTable) statementNode() {}

// ObjectKind is the kind of object named by a DROP statement. Only
// Table is implemented; the parser reports any other kind as a
// syntax error.
type ObjectKind int

const (
	ObjectTable ObjectKind = iota
)

// Drop is `DROP TABLE name, ...`.
type Drop struct {
	ObjectKind ObjectKind
	Names      []string
}

func (*Drop) statementNode() {}

// Insert is `INSERT INTO table (columns...) source`.
type Insert struct {
	Table   string
	Columns []string // nil/empty means "no explicit column list"
	Source  *Query
}

func (*Insert) statementNode() {}

// Assignment is one `column = expr` pair in an UPDATE's SET list.
type Assignment struct {
	Column string
	Value  Expr
}

// Update is `UPDATE table SET assignments... [WHERE selection]`.
type Update struct {
	Table       string
	Assignments []Assignment
	Selection   Expr // nil means no WHERE clause
}

func (*Update) statementNode() {}

// Delete is `DELETE [FROM] table [WHERE selection]`.
type Delete struct {
	Table     string
	Selection Expr
}

func (*Delete) statementNode() {}

// OrderByKey is one ORDER BY expression with its direction.
type OrderByKey struct {
	Expr Expr
	Asc  bool
}

// SelectItem is one projected item: either `*` or a single expression
// with the literal source text it was parsed from (used as the
// column name when there's no explicit alias — aliasing itself is
// unsupported, per spec.md §4.4).
type SelectItem struct {
	Wildcard bool
	Expr     Expr
	Text     string
}

// Select is the body of a Query: projection list, optional single
// FROM table, optional WHERE.
type Select struct {
	Items     []SelectItem
	From      string // "" means no FROM clause (the dummy source)
	HasFrom   bool
	Selection Expr
}

// Query wraps a Select body with an optional ORDER BY. Statement.Source
// for INSERT is always a Query whose Body is either *Select (for
// SELECT-shaped queries) or *ValuesList (for a VALUES clause).
type Query struct {
	Body    QueryBody
	OrderBy []OrderByKey // nil means no ORDER BY
}

// QueryBody is the sum type `Select | Values` spec.md §6 refers to as
// "Select|…".
type QueryBody interface {
	queryBodyNode()
}

func (*Select) queryBodyNode() {}

// ValuesList is a literal `VALUES (expr, ...), (expr, ...), ...` body,
// the only INSERT source this engine executes (spec.md §4.4: "the
// source must be a VALUES clause").
type ValuesList struct {
	Rows [][]Expr
}

func (*ValuesList) queryBodyNode() {}
