package tablemgr

import (
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/eval"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// Parallel is the data-parallel table manager from spec.md §4.3 and
// §5: rows/ids are partitioned across workers with disjoint slice
// indices (never aliased pointers), and the only shared mutable state
// — a column's uniqueness set — is guarded by that column's own
// mutex, taken one at a time per worker so no deadlock is possible.
// row_num and row_idx_acc are only ever touched in a single-threaded
// prolog or epilog, never inside a worker's hot loop.
type Parallel struct{}

// workerCount bounds fan-out to the host's parallelism, mirroring the
// teacher's use of errgroup.SetLimit for bounded concurrency.
func workerCount(n int) int {
	w := runtime.GOMAXPROCS(0)
	if n < w {
		w = n
	}
	if w < 1 {
		w = 1
	}
	return w
}

func (Parallel) InsertRows(t *table.Table, rawRows [][]ast.Expr, columnNames []string) error {
	n := len(rawRows)
	if n == 0 {
		return nil
	}
	start := t.ReserveIDs(n) // single-threaded prolog

	var committed int64
	var failed atomic.Bool // set by the first failing row; later rows are skipped
	var eg errgroup.Group
	eg.SetLimit(workerCount(n))
	for k := 0; k < n; k++ {
		k := k
		eg.Go(func() error {
			if failed.Load() {
				return nil
			}
			row, err := buildRow(t, rawRows[k], columnNames)
			if err != nil {
				failed.Store(true)
				return err
			}
			if err := validateNullable(t, row); err != nil {
				failed.Store(true)
				return err
			}
			if err := claimUnique(t, row); err != nil {
				failed.Store(true)
				return err
			}
			t.CommitAt(start+k, row) // disjoint index per worker, no aliasing
			atomic.AddInt64(&committed, 1)
			return nil
		})
	}
	err := eg.Wait()
	t.AddRowNum(int(committed)) // single-threaded epilog
	return err
}

func (Parallel) DeleteRows(t *table.Table, cond ast.Expr) error {
	ids := t.LiveIDs()
	var removed int64
	var eg errgroup.Group
	eg.SetLimit(workerCount(len(ids)))
	for _, id := range ids {
		id := id
		eg.Go(func() error {
			row, _ := t.Get(id)
			selected, err := eval.ToPredicate(t.Schema, row, cond)
			if err != nil {
				return err
			}
			if !selected {
				return nil
			}
			releaseUnique(t, row)
			t.Tombstone(id) // disjoint index, no shared mutation besides the sets above
			atomic.AddInt64(&removed, 1)
			return nil
		})
	}
	err := eg.Wait()
	t.AddRowNum(-int(removed))
	return err
}

func (Parallel) UpdateRows(t *table.Table, assignments []ast.Assignment, cond ast.Expr) error {
	ids := t.LiveIDs()
	var eg errgroup.Group
	eg.SetLimit(workerCount(len(ids)))
	for _, id := range ids {
		id := id
		eg.Go(func() error {
			row, _ := t.Get(id)
			selected, err := eval.ToPredicate(t.Schema, row, cond)
			if err != nil {
				return err
			}
			if !selected {
				return nil
			}
			snapshot := row.Clone()
			for _, a := range assignments {
				if err := applyAssignment(t, row, snapshot, a); err != nil {
					return err
				}
			}
			return nil
		})
	}
	return eg.Wait()
}

func (Parallel) Project(src *table.Table, outSchema *schema.Schema, calcFuncs []ast.Expr, cond ast.Expr) (*table.Table, error) {
	ids := src.LiveIDs()
	results := make([]table.Row, len(ids)) // index i <-> ids[i], disjoint write per worker

	var eg errgroup.Group
	eg.SetLimit(workerCount(len(ids)))
	for i, id := range ids {
		i, id := i, id
		eg.Go(func() error {
			row, _ := src.Get(id)
			selected, err := eval.ToPredicate(src.Schema, row, cond)
			if err != nil {
				return err
			}
			if !selected {
				return nil
			}
			outRow := make(table.Row, len(calcFuncs))
			for j, e := range calcFuncs {
				v, err := eval.Eval(src.Schema, row, e)
				if err != nil {
					return err
				}
				outRow[j] = v
			}
			results[i] = outRow
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var rows []table.Row
	for _, r := range results {
		if r != nil {
			rows = append(rows, r)
		}
	}

	out := table.New(outSchema)
	id := out.ReserveIDs(len(rows))
	for i, r := range rows {
		out.CommitAt(id+i, r)
	}
	out.SetRowNum(len(rows))
	return out, nil
}

func (Parallel) OrderBy(t *table.Table, keys []ast.OrderByKey) error {
	ids := t.LiveIDs()
	rows := make([]table.Row, len(ids))
	for i, id := range ids {
		rows[i], _ = t.Get(id)
	}

	// Key evaluation is embarrassingly parallel across keys; the
	// comparability pre-check stays a linear scan over each key's
	// already-computed values (cheap, and it must see every adjacent
	// pair in source order to match spec.md's rule exactly).
	keyVals := make([][]schema.Value, len(keys))
	var eg errgroup.Group
	eg.SetLimit(workerCount(len(keys)))
	for k, key := range keys {
		k, key := k, key
		eg.Go(func() error {
			vals := make([]schema.Value, len(rows))
			for i, row := range rows {
				v, err := eval.Eval(t.Schema, row, key.Expr)
				if err != nil {
					return err
				}
				vals[i] = v
			}
			keyVals[k] = vals
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	for _, vals := range keyVals {
		if err := checkComparable(vals); err != nil {
			return err
		}
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	parallelStableSort(order, func(a, b int) bool {
		return lessByKeys(keyVals, keys, a, b)
	})

	sorted := make([]table.Row, len(rows))
	for i, idx := range order {
		sorted[i] = rows[idx]
	}
	t.Renumber(sorted)
	return nil
}

func checkComparable(vals []schema.Value) error {
	var prev schema.Value
	havePrev := false
	for _, v := range vals {
		if havePrev {
			if _, ok := prev.Compare(v); !ok {
				return errs.Otherf("values in ORDER BY key are not comparable")
			}
		}
		prev = v
		havePrev = true
	}
	return nil
}

// parallelStableSort sorts order's elements by less, dividing the
// input into per-core chunks sorted concurrently and then merged
// sequentially with a stable k-way merge (spec.md §4.3: "the sort
// itself uses a parallel stable sort").
func parallelStableSort(order []int, less func(a, b int) bool) {
	n := len(order)
	chunks := workerCount(n)
	if chunks <= 1 || n < 2*chunks {
		sort.SliceStable(order, func(i, j int) bool { return less(order[i], order[j]) })
		return
	}

	bounds := make([][2]int, chunks)
	size := (n + chunks - 1) / chunks
	for c := 0; c < chunks; c++ {
		lo := c * size
		hi := lo + size
		if hi > n {
			hi = n
		}
		if lo > n {
			lo = n
		}
		bounds[c] = [2]int{lo, hi}
	}

	var eg errgroup.Group
	for _, b := range bounds {
		b := b
		eg.Go(func() error {
			slice := order[b[0]:b[1]]
			sort.SliceStable(slice, func(i, j int) bool { return less(slice[i], slice[j]) })
			return nil
		})
	}
	_ = eg.Wait() // less never errors

	merged := make([]int, 0, n)
	heads := make([]int, len(bounds)) // heads[c] = next unread offset within chunk c, relative to bounds[c][0]
	for {
		best := -1
		for c, b := range bounds {
			pos := b[0] + heads[c]
			if pos >= b[1] {
				continue
			}
			if best == -1 || less(order[pos], order[bounds[best][0]+heads[best]]) {
				best = c
			}
		}
		if best == -1 {
			break
		}
		pos := bounds[best][0] + heads[best]
		merged = append(merged, order[pos])
		heads[best]++
	}
	copy(order, merged)
}
