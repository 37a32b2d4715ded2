package tablemgr

import (
	"sort"

	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/eval"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// Sequential is the straightforward, single-goroutine table manager
// from spec.md §4.2. It is the reference implementation: Parallel must
// produce identical final tables for identical input.
type Sequential struct{}

func (Sequential) InsertRows(t *table.Table, rawRows [][]ast.Expr, columnNames []string) error {
	for _, rawRow := range rawRows {
		row, err := buildRow(t, rawRow, columnNames)
		if err != nil {
			return err
		}
		if err := validateNullable(t, row); err != nil {
			return err
		}
		if err := claimUnique(t, row); err != nil {
			return err
		}
		id := t.ReserveIDs(1)
		t.CommitAt(id, row)
		t.AddRowNum(1)
	}
	return nil
}

func (Sequential) DeleteRows(t *table.Table, cond ast.Expr) error {
	for _, id := range t.LiveIDs() {
		row, _ := t.Get(id)
		selected, err := eval.ToPredicate(t.Schema, row, cond)
		if err != nil {
			return err
		}
		if !selected {
			continue
		}
		releaseUnique(t, row)
		t.Tombstone(id)
		t.AddRowNum(-1)
	}
	return nil
}

func (Sequential) UpdateRows(t *table.Table, assignments []ast.Assignment, cond ast.Expr) error {
	for _, id := range t.LiveIDs() {
		row, _ := t.Get(id)
		selected, err := eval.ToPredicate(t.Schema, row, cond)
		if err != nil {
			return err
		}
		if !selected {
			continue
		}
		snapshot := row.Clone()
		for _, a := range assignments {
			if err := applyAssignment(t, row, snapshot, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func (Sequential) Project(src *table.Table, outSchema *schema.Schema, calcFuncs []ast.Expr, cond ast.Expr) (*table.Table, error) {
	out := table.New(outSchema)
	var rows []table.Row
	for _, id := range src.LiveIDs() {
		row, _ := src.Get(id)
		selected, err := eval.ToPredicate(src.Schema, row, cond)
		if err != nil {
			return nil, err
		}
		if !selected {
			continue
		}
		outRow := make(table.Row, len(calcFuncs))
		for i, e := range calcFuncs {
			v, err := eval.Eval(src.Schema, row, e)
			if err != nil {
				return nil, err
			}
			outRow[i] = v
		}
		rows = append(rows, outRow)
	}
	id := out.ReserveIDs(len(rows))
	for i, r := range rows {
		out.CommitAt(id+i, r)
	}
	out.SetRowNum(len(rows))
	return out, nil
}

func (Sequential) OrderBy(t *table.Table, keys []ast.OrderByKey) error {
	ids := t.LiveIDs()
	rows := make([]table.Row, len(ids))
	for i, id := range ids {
		rows[i], _ = t.Get(id)
	}

	keyVals, err := computeOrderKeys(t.Schema, rows, keys)
	if err != nil {
		return err
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return lessByKeys(keyVals, keys, order[a], order[b])
	})

	sorted := make([]table.Row, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	t.Renumber(sorted)
	return nil
}

// computeOrderKeys evaluates every ORDER BY key for every row and
// checks comparability against the immediately preceding computed
// value for that key (spec.md §4.2: a null or type-mismatched key
// value fails the whole statement before any sorting happens).
func computeOrderKeys(sch *schema.Schema, rows []table.Row, keys []ast.OrderByKey) ([][]schema.Value, error) {
	out := make([][]schema.Value, len(keys))
	for k, key := range keys {
		out[k] = make([]schema.Value, len(rows))
		var prev schema.Value
		havePrev := false
		for i, row := range rows {
			v, err := eval.Eval(sch, row, key.Expr)
			if err != nil {
				return nil, err
			}
			if havePrev {
				if _, ok := prev.Compare(v); !ok {
					return nil, errs.Otherf("values in ORDER BY key are not comparable")
				}
			}
			out[k][i] = v
			prev = v
			havePrev = true
		}
	}
	return out, nil
}

func lessByKeys(keyVals [][]schema.Value, keys []ast.OrderByKey, a, b int) bool {
	for k, key := range keys {
		cmp, _ := keyVals[k][a].Compare(keyVals[k][b])
		if !key.Asc {
			cmp = -cmp
		}
		if cmp != 0 {
			return cmp < 0
		}
	}
	return false
}
