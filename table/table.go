// Package table implements the row storage described in spec.md §3:
// tombstoned row slots addressed by a never-reused row id, plus the
// per-column uniqueness sets that are the authoritative index for
// UNIQUE columns. Both table managers (tablemgr) operate directly on
// the fields this package exposes.
package table

import (
	"sync"

	"github.com/rijuyuezhu/helidb/schema"
)

// Row is one tuple, one Value per column.
type Row []schema.Value

func (r Row) Clone() Row {
	out := make(Row, len(r))
	copy(out, r)
	return out
}

type slot struct {
	live bool
	row  Row
}

// Table is an ordered collection of rows plus schema. See spec.md §3
// for the five invariants every exported mutator here must preserve.
type Table struct {
	Schema *schema.Schema

	mu        sync.Mutex // not taken by any method; slots length, rowNum and nextID change only in single-threaded prolog/epilog code
	slots     []slot     // index i holds row id i; never shrinks, never reorders
	rowNum    int
	nextID    uint64
	uniqueSet []map[string]struct{} // one per column; only for Unique columns, else unused
	colLock   []sync.Mutex          // one per column; guards uniqueSet[i] for the parallel manager
}

// New creates an empty table for the given schema.
func New(sch *schema.Schema) *Table {
	t := &Table{
		Schema:    sch,
		uniqueSet: make([]map[string]struct{}, sch.Len()),
		colLock:   make([]sync.Mutex, sch.Len()),
	}
	for i, c := range sch.Columns {
		if c.Unique {
			t.uniqueSet[i] = make(map[string]struct{})
		}
	}
	return t
}

// Dummy returns the synthetic 0-column, 1-row source used to evaluate
// expressions with no FROM clause (spec.md §9).
func Dummy() *Table {
	t := New(schema.Dummy())
	t.slots = []slot{{live: true, row: Row{}}}
	t.rowNum = 1
	t.nextID = 1
	return t
}

// RowNum is the live row count.
func (t *Table) RowNum() int { return t.rowNum }

// NextID is the current row_idx_acc value (for codec round-trips and
// tests; never needed by ordinary statement execution).
func (t *Table) NextID() uint64 { return t.nextID }

// Capacity is the number of row-id slots allocated so far (live or
// tombstoned) — the exclusive upper bound on valid row ids.
func (t *Table) Capacity() int { return len(t.slots) }

// Get returns the row at id, and whether that slot is live.
func (t *Table) Get(id int) (Row, bool) {
	if id < 0 || id >= len(t.slots) {
		return nil, false
	}
	s := &t.slots[id]
	return s.row, s.live
}

// Set overwrites the row stored at a live slot in place. Callers are
// responsible for keeping uniqueSet in sync; Set itself only writes
// the tuple.
func (t *Table) Set(id int, row Row) {
	t.slots[id].row = row
}

// Tombstone marks a slot dead without removing it from the backing
// slice, so any other worker's reference to a different id stays
// valid (spec.md's tombstone/"Live row" glossary entries).
func (t *Table) Tombstone(id int) {
	t.slots[id].live = false
	t.slots[id].row = nil
}

// LiveIDs returns every live row id in ascending (row_id) order.
func (t *Table) LiveIDs() []int {
	out := make([]int, 0, t.rowNum)
	for i := range t.slots {
		if t.slots[i].live {
			out = append(out, i)
		}
	}
	return out
}

// ReserveIDs allocates n consecutive fresh row ids up front, appending
// tombstoned placeholder slots for them, and returns the first id.
// This is the single-threaded prolog step the parallel insert path
// uses so each worker can commit to a pre-assigned slot without
// touching shared counters in its hot loop (spec.md §4.3, §5).
func (t *Table) ReserveIDs(n int) int {
	start := len(t.slots)
	t.slots = append(t.slots, make([]slot, n)...)
	t.nextID = uint64(len(t.slots))
	return start
}

// CommitAt writes a freshly-validated row into a reserved (currently
// tombstoned) slot and marks it live. Used by both managers' insert
// path once a row has passed all constraint checks.
func (t *Table) CommitAt(id int, row Row) {
	t.slots[id] = slot{live: true, row: row}
}

// SetRowNum overwrites the row_num counter. Only ever called from a
// single-threaded prolog/epilog section (spec.md §5), never per-row.
func (t *Table) SetRowNum(n int) { t.rowNum = n }

// AddRowNum adjusts row_num by delta from a single-threaded
// prolog/epilog section.
func (t *Table) AddRowNum(delta int) { t.rowNum += delta }

// UniqueSetContains reports whether value.Key() is already present in
// column i's uniqueness set. Value must be non-null.
func (t *Table) UniqueSetContains(col int, v schema.Value) bool {
	set := t.uniqueSet[col]
	if set == nil {
		return false
	}
	_, ok := set[v.Key()]
	return ok
}

// UniqueSetInsert adds a non-null value to column i's uniqueness set.
func (t *Table) UniqueSetInsert(col int, v schema.Value) {
	if t.uniqueSet[col] == nil {
		return
	}
	t.uniqueSet[col][v.Key()] = struct{}{}
}

// UniqueSetRemove removes a non-null value from column i's uniqueness
// set, if present.
func (t *Table) UniqueSetRemove(col int, v schema.Value) {
	if t.uniqueSet[col] == nil {
		return
	}
	delete(t.uniqueSet[col], v.Key())
}

// ColumnLock returns the dedicated mutex guarding column i's
// uniqueness set, for the parallel manager's check-and-insert /
// check-and-swap critical sections (spec.md §4.3, §5). The sequential
// manager never calls this — it is already single-threaded.
func (t *Table) ColumnLock(col int) *sync.Mutex { return &t.colLock[col] }

// Renumber replaces the table's slots with rows, given dense ids
// 0..len(rows)-1 in the order given, and resets row_num and
// row_idx_acc to len(rows). Used after
// ORDER BY (spec.md §4.2: "After sort, renumber row ids densely from
// 0; row_idx_acc = row_num").
func (t *Table) Renumber(rows []Row) {
	newSlots := make([]slot, len(rows))
	for i, r := range rows {
		newSlots[i] = slot{live: true, row: r}
	}
	t.slots = newSlots
	t.rowNum = len(rows)
	t.nextID = uint64(len(rows))
}
