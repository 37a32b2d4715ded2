package schema

import "github.com/rijuyuezhu/helidb/errs"

// DataKind is the declared SQL type of a column. Only INT and VARCHAR
// are supported (spec.md §4.4): the parser accepts any type name, and
// the executor rejects the others with an UnsupportedOperation error
// before a ColumnInfo is built, so they are never reached here.
type DataKind int

const (
	IntType DataKind = iota
	VarcharType
)

// UnlimitedLength is the sentinel for VARCHAR with no declared
// character limit ("unlimited" in spec.md §3).
const UnlimitedLength = ^uint64(0)

// ColumnType carries the type-specific metadata for a column: the
// INT display width (cosmetic only, never enforced on insert) or the
// VARCHAR max length (also not enforced — the engine never rejects an
// over-length string; max_length is metadata that the codec persists
// and nothing else reads).
type ColumnType struct {
	Kind         DataKind
	DisplayWidth *uint64 // INT only
	MaxLength    uint64  // VARCHAR only
}

// ColumnInfo describes one column of a table.
type ColumnInfo struct {
	Name     string
	Nullable bool
	Unique   bool
	Type     ColumnType
}

// Schema is the ordered column list plus a name→index lookup,
// attached to every Table and to the dummy zero-column source used
// for FROM-less SELECT and for literal-only INSERT rows.
type Schema struct {
	Columns []ColumnInfo
	rmap    map[string]int
}

// NewSchema builds a Schema and its name→index map, erroring if two
// columns share a name (spec.md §3: "Column names within a table must
// be unique").
func NewSchema(columns []ColumnInfo) (*Schema, error) {
	rmap := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := rmap[c.Name]; dup {
			return nil, errs.Otherf("duplicate column name '%s'", c.Name)
		}
		rmap[c.Name] = i
	}
	return &Schema{Columns: columns, rmap: rmap}, nil
}

// NewProjectedSchema builds a Schema for a SELECT's output columns,
// where duplicate names are legal (`SELECT a, a FROM t`) unlike in
// CREATE TABLE. Lookup by name resolves to the last matching column,
// which is never relied on for rendering (output is always positional)
// and only matters for an ORDER BY key naming one of the projected
// columns.
func NewProjectedSchema(columns []ColumnInfo) *Schema {
	rmap := make(map[string]int, len(columns))
	for i, c := range columns {
		rmap[c.Name] = i
	}
	return &Schema{Columns: columns, rmap: rmap}
}

// Index looks up a column by name.
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.rmap[name]
	return i, ok
}

// Len is the column count.
func (s *Schema) Len() int { return len(s.Columns) }

// Dummy returns the 0-column schema used for the synthetic 1-row
// FROM-less SELECT source and for literal-only VALUES rows (spec.md
// §4.1, §4.4, §9: "Dummy 1-row table").
func Dummy() *Schema {
	return &Schema{Columns: nil, rmap: map[string]int{}}
}
