package schema

import "testing"

func TestNewSchemaRejectsDuplicateColumnNames(t *testing.T) {
	_, err := NewSchema([]ColumnInfo{
		{Name: "a"},
		{Name: "a"},
	})
	if err == nil {
		t.Fatal("expected duplicate column name error")
	}
}

func TestSchemaIndex(t *testing.T) {
	sch, err := NewSchema([]ColumnInfo{{Name: "id"}, {Name: "v"}})
	if err != nil {
		t.Fatal(err)
	}
	if i, ok := sch.Index("v"); !ok || i != 1 {
		t.Fatalf("Index(v) = %d, %v", i, ok)
	}
	if _, ok := sch.Index("missing"); ok {
		t.Fatal("expected missing column to not resolve")
	}
}

func TestNewProjectedSchemaAllowsDuplicateNames(t *testing.T) {
	sch := NewProjectedSchema([]ColumnInfo{{Name: "a"}, {Name: "a"}})
	if sch.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", sch.Len())
	}
}

func TestDummySchemaIsEmpty(t *testing.T) {
	d := Dummy()
	if d.Len() != 0 {
		t.Fatalf("Dummy schema should have 0 columns, got %d", d.Len())
	}
}

func TestUnlimitedLength(t *testing.T) {
	if UnlimitedLength != ^uint64(0) {
		t.Fatal("UnlimitedLength must be the maximum uint64")
	}
}
