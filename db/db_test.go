package db

import (
	"testing"

	"github.com/rijuyuezhu/helidb/schema"
)

func emptySchema(t *testing.T) *schema.Schema {
	t.Helper()
	sch, err := schema.NewSchema(nil)
	if err != nil {
		t.Fatal(err)
	}
	return sch
}

func TestCreateTableRejectsDuplicateName(t *testing.T) {
	d := New()
	if err := d.CreateTable("t", emptySchema(t)); err != nil {
		t.Fatal(err)
	}
	if err := d.CreateTable("t", emptySchema(t)); err == nil {
		t.Fatal("creating a table that already exists should error")
	}
}

func TestDropTableMissingIsError(t *testing.T) {
	d := New()
	if err := d.DropTable("nope"); err == nil {
		t.Fatal("dropping a nonexistent table should error")
	}
}

func TestDropTableRemovesIt(t *testing.T) {
	d := New()
	if err := d.CreateTable("t", emptySchema(t)); err != nil {
		t.Fatal(err)
	}
	if err := d.DropTable("t"); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Get("t"); ok {
		t.Fatal("dropped table should no longer be gettable")
	}
}

func TestNamesIsSorted(t *testing.T) {
	d := New()
	for _, n := range []string{"zeta", "alpha", "mid"} {
		if err := d.CreateTable(n, emptySchema(t)); err != nil {
			t.Fatal(err)
		}
	}
	names := d.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, n := range want {
		if names[i] != n {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestTableNamesAreCaseSensitive(t *testing.T) {
	d := New()
	if err := d.CreateTable("T", emptySchema(t)); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Get("t"); ok {
		t.Fatal("table lookup must be case-sensitive")
	}
}
