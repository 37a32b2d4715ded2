package tablemgr

import (
	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/eval"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// buildRow evaluates one raw VALUES row against the literal-only dummy
// source (spec.md §4.2: "no column references permitted") and places
// each value at its target column, filling unlisted columns with null.
func buildRow(t *table.Table, rawRow []ast.Expr, columnNames []string) (table.Row, error) {
	dummy := schema.Dummy()

	if len(columnNames) == 0 {
		if len(rawRow) != t.Schema.Len() {
			return nil, errs.Otherf("column count doesn't match value count")
		}
		row := make(table.Row, len(rawRow))
		for i, e := range rawRow {
			v, err := eval.Eval(dummy, table.Row{}, e)
			if err != nil {
				return nil, err
			}
			row[i] = v
		}
		return row, nil
	}

	if len(columnNames) != len(rawRow) {
		return nil, errs.Otherf("column count doesn't match value count")
	}
	seen := make(map[string]struct{}, len(columnNames))
	for _, name := range columnNames {
		if _, dup := seen[name]; dup {
			return nil, errs.Otherf("column '%s' specified twice", name)
		}
		seen[name] = struct{}{}
	}

	row := make(table.Row, t.Schema.Len())
	for i := range row {
		row[i] = schema.Null()
	}
	for i, name := range columnNames {
		idx, ok := t.Schema.Index(name)
		if !ok {
			return nil, errs.Otherf("unknown column '%s'", name)
		}
		v, err := eval.Eval(dummy, table.Row{}, rawRow[i])
		if err != nil {
			return nil, err
		}
		row[idx] = v
	}
	return row, nil
}

// validateNullable enforces spec.md §3's NOT NULL invariant for every
// cell of a freshly-built row. Purely local to the row: no shared
// state, safe to call without any lock.
func validateNullable(t *table.Table, row table.Row) error {
	for i, v := range row {
		col := t.Schema.Columns[i]
		if !col.Nullable && v.IsNull() {
			return errs.MissingDefault(col.Name)
		}
	}
	return nil
}

// claimUnique atomically registers every non-null Unique cell of a
// freshly-validated row into the table's uniqueness sets, or rolls
// back and fails if any cell collides. Each column is locked
// one-at-a-time (never two at once, so the two managers can never
// deadlock against each other or themselves) and the sequential
// manager pays the same, uncontended, cost.
func claimUnique(t *table.Table, row table.Row) error {
	claimed := make([]int, 0, len(row))
	for i, v := range row {
		col := t.Schema.Columns[i]
		if !col.Unique || v.IsNull() {
			continue
		}
		lock := t.ColumnLock(i)
		lock.Lock()
		if t.UniqueSetContains(i, v) {
			lock.Unlock()
			for _, j := range claimed {
				jl := t.ColumnLock(j)
				jl.Lock()
				t.UniqueSetRemove(j, row[j])
				jl.Unlock()
			}
			return errs.DuplicateEntry(v.String())
		}
		t.UniqueSetInsert(i, v)
		lock.Unlock()
		claimed = append(claimed, i)
	}
	return nil
}

// releaseUnique removes every non-null Unique cell of a row being
// deleted from the table's uniqueness sets.
func releaseUnique(t *table.Table, row table.Row) {
	for i, v := range row {
		col := t.Schema.Columns[i]
		if !col.Unique || v.IsNull() {
			continue
		}
		lock := t.ColumnLock(i)
		lock.Lock()
		t.UniqueSetRemove(i, v)
		lock.Unlock()
	}
}

// applyAssignment evaluates one UPDATE assignment against the row's
// pre-update snapshot, validates it, and applies it in place,
// checking and swapping the column's uniqueness-set entry under that
// one column's lock only. A no-op assignment (new value equal to old)
// skips the duplicate check and leaves the set's contents unchanged,
// so it is always legal (spec.md §4.2/§4.3).
func applyAssignment(t *table.Table, row table.Row, snapshot table.Row, a ast.Assignment) error {
	idx, ok := t.Schema.Index(a.Column)
	if !ok {
		return errs.Otherf("unknown column '%s'", a.Column)
	}
	v, err := eval.Eval(t.Schema, snapshot, a.Value)
	if err != nil {
		return err
	}
	col := t.Schema.Columns[idx]
	old := row[idx]

	if !col.Nullable && v.IsNull() {
		return errs.MissingDefault(col.Name)
	}

	if col.Unique {
		lock := t.ColumnLock(idx)
		lock.Lock()
		if !v.IsNull() && !v.Equal(old) && t.UniqueSetContains(idx, v) {
			lock.Unlock()
			return errs.DuplicateEntry(v.String())
		}
		if !old.IsNull() {
			t.UniqueSetRemove(idx, old)
		}
		if !v.IsNull() {
			t.UniqueSetInsert(idx, v)
		}
		lock.Unlock()
	}

	row[idx] = v
	return nil
}
