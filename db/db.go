// Package db holds the top-level table catalog (spec.md §3's
// Database: "Map from table name to Table. Table names must be
// unique.").
package db

import (
	"sort"

	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

// Database is the in-memory catalog: case-sensitive table name to
// Table, one per process, single-owner (spec.md §5: "not safe to call
// from multiple threads against the same database").
type Database struct {
	tables map[string]*table.Table
}

// New returns an empty catalog.
func New() *Database {
	return &Database{tables: make(map[string]*table.Table)}
}

// CreateTable adds a new, empty table under name, erroring if one
// already exists.
func (d *Database) CreateTable(name string, sch *schema.Schema) error {
	if _, exists := d.tables[name]; exists {
		return errs.Otherf("table '%s' already exists", name)
	}
	d.tables[name] = table.New(sch)
	return nil
}

// DropTable removes a table by name, erroring if it doesn't exist.
func (d *Database) DropTable(name string) error {
	if _, exists := d.tables[name]; !exists {
		return errs.Otherf("table '%s' doesn't exist", name)
	}
	delete(d.tables, name)
	return nil
}

// Get looks up a table by name.
func (d *Database) Get(name string) (*table.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// Put installs t under name unconditionally, overwriting any existing
// entry. Used only by the codec while rebuilding a catalog from disk.
func (d *Database) Put(name string, t *table.Table) {
	d.tables[name] = t
}

// Names returns every table name in sorted order, so callers that walk
// the whole catalog (codec encode, future introspection commands) get
// a deterministic iteration order despite Go's randomized map order.
func (d *Database) Names() []string {
	names := make([]string, 0, len(d.tables))
	for name := range d.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len is the number of tables in the catalog.
func (d *Database) Len() int { return len(d.tables) }
