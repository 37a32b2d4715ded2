package codec

import (
	"bytes"
	"testing"

	"github.com/rijuyuezhu/helidb/db"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

func buildCatalog(t *testing.T) *db.Database {
	t.Helper()
	d := db.New()

	sch, err := schema.NewSchema([]schema.ColumnInfo{
		{Name: "id", Nullable: false, Unique: true, Type: schema.ColumnType{Kind: schema.IntType}},
		{Name: "name", Nullable: true, Type: schema.ColumnType{Kind: schema.VarcharType, MaxLength: schema.UnlimitedLength}},
	})
	if err != nil {
		t.Fatal(err)
	}
	tb := table.New(sch)
	id := tb.ReserveIDs(3)
	tb.CommitAt(id, table.Row{schema.Int(1), schema.Varchar("a")})
	tb.CommitAt(id+2, table.Row{schema.Int(2), schema.Null()})
	tb.AddRowNum(2)
	tb.UniqueSetInsert(0, schema.Int(1))
	tb.UniqueSetInsert(0, schema.Int(2))
	d.Put("t", tb)

	emptySch, err := schema.NewSchema(nil)
	if err != nil {
		t.Fatal(err)
	}
	d.Put("empty", table.New(emptySch))

	return d
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	d := buildCatalog(t)
	data, err := Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}

	if got.Len() != d.Len() {
		t.Fatalf("table count: got %d, want %d", got.Len(), d.Len())
	}
	tb, ok := got.Get("t")
	if !ok {
		t.Fatal("decoded catalog missing table 't'")
	}
	if tb.RowNum() != 2 || tb.Capacity() != 3 {
		t.Fatalf("decoded table shape: RowNum=%d Capacity=%d, want 2,3", tb.RowNum(), tb.Capacity())
	}
	row0, live0 := tb.Get(0)
	if !live0 || row0[0].IntValue() != 1 || row0[1].StrValue() != "a" {
		t.Fatalf("row 0 = %v, live=%v", row0, live0)
	}
	if _, live1 := tb.Get(1); live1 {
		t.Fatal("tombstoned slot 1 decoded as live")
	}
	row2, live2 := tb.Get(2)
	if !live2 || row2[0].IntValue() != 2 || !row2[1].IsNull() {
		t.Fatalf("row 2 = %v, live=%v", row2, live2)
	}

	// The uniqueness set is derived, not stored, but must be rebuilt
	// identically from the live rows (spec.md §6, §9).
	if !tb.UniqueSetContains(0, schema.Int(1)) || !tb.UniqueSetContains(0, schema.Int(2)) {
		t.Fatal("uniqueness set was not rebuilt on decode")
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	d := buildCatalog(t)
	a, err := Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("Encode must be byte-identical across calls on an unchanged catalog")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	if _, err := Decode([]byte{0, 1, 2, 3}); err == nil {
		t.Fatal("expected decode failure on bad magic")
	}
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	d := buildCatalog(t)
	data, err := Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Decode(data[:len(data)-3]); err == nil {
		t.Fatal("expected decode failure on truncated input")
	}
}

func TestDecodeEmptyCatalog(t *testing.T) {
	d := db.New()
	data, err := Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != 0 {
		t.Fatalf("expected empty catalog, got %d tables", got.Len())
	}
}
