// Package tablemgr implements the row-operation contract spec.md §4.2
// and §4.3 describe twice: once straightforwardly (sequential.go) and
// once data-parallel over a single table while preserving identical
// constraint semantics (parallel.go). Both share the validation and
// uniqueness-set bookkeeping in common.go so the two managers can
// never silently drift apart.
package tablemgr

import (
	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// Manager is the table manager contract: the same row operations
// implemented once sequentially and once data-parallel. Statement
// executors depend only on this interface, never on which
// implementation backs it.
type Manager interface {
	// InsertRows evaluates and validates each raw row, then commits
	// it. columnNames is nil/empty for a bare `VALUES (...)` with no
	// explicit column list.
	InsertRows(t *table.Table, rawRows [][]ast.Expr, columnNames []string) error

	// DeleteRows tombstones every live row matching cond (nil cond
	// selects every row).
	DeleteRows(t *table.Table, cond ast.Expr) error

	// UpdateRows applies assignments to every live row matching cond,
	// each assignment evaluated against that row's pre-update
	// snapshot.
	UpdateRows(t *table.Table, assignments []ast.Assignment, cond ast.Expr) error

	// Project evaluates calcFuncs against every live source row
	// satisfying cond and returns a fresh, unconstrained result table
	// with the given output schema, in source row_id order.
	Project(src *table.Table, outSchema *schema.Schema, calcFuncs []ast.Expr, cond ast.Expr) (*table.Table, error)

	// OrderBy sorts t's live rows by keys (stable, tie-broken on
	// source row_id) and renumbers ids densely from 0.
	OrderBy(t *table.Table, keys []ast.OrderByKey) error
}
