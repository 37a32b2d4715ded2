package table

import (
	"strings"
	"testing"

	"github.com/rijuyuezhu/helidb/schema"
)

func TestRenderHeaderRowsAndWidths(t *testing.T) {
	tb := New(mustSchema(t,
		schema.ColumnInfo{Name: "id"},
		schema.ColumnInfo{Name: "v"},
	))
	id := tb.ReserveIDs(2)
	tb.CommitAt(id, Row{schema.Int(1), schema.Int(10)})
	tb.CommitAt(id+1, Row{schema.Int(2), schema.Int(20)})
	tb.AddRowNum(2)

	out := tb.Render()
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, and 2 data lines, got %d: %q", len(lines), out)
	}
	if !strings.Contains(lines[0], "id") || !strings.Contains(lines[0], "v") {
		t.Fatalf("header line = %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "| ---") {
		t.Fatalf("separator line = %q", lines[1])
	}
}

func TestRenderMinimumColumnWidthIsThree(t *testing.T) {
	tb := New(mustSchema(t, schema.ColumnInfo{Name: "a"}))
	out := tb.Render()
	lines := strings.Split(out, "\n")
	// "| a   |" — width 3 pads a single-letter name to 3 columns.
	if lines[0] != "| a   |" {
		t.Fatalf("header = %q, want \"| a   |\"", lines[0])
	}
	if lines[1] != "| --- |" {
		t.Fatalf("separator = %q, want \"| --- |\"", lines[1])
	}
}

func TestRenderNullAsEmptyString(t *testing.T) {
	tb := New(mustSchema(t, schema.ColumnInfo{Name: "v", Nullable: true}))
	id := tb.ReserveIDs(1)
	tb.CommitAt(id, Row{schema.Null()})
	tb.AddRowNum(1)

	out := tb.Render()
	lines := strings.Split(out, "\n")
	if lines[2] != "|     |" {
		t.Fatalf("null cell line = %q, want \"|     |\"", lines[2])
	}
}

func TestRenderTombstonedRowsOmitted(t *testing.T) {
	tb := New(mustSchema(t, schema.ColumnInfo{Name: "id"}))
	id := tb.ReserveIDs(2)
	tb.CommitAt(id, Row{schema.Int(1)})
	tb.CommitAt(id+1, Row{schema.Int(2)})
	tb.AddRowNum(2)
	tb.Tombstone(id)
	tb.AddRowNum(-1)

	out := tb.Render()
	if strings.Count(out, "\n") != 2 {
		t.Fatalf("expected header+separator+1 row, got %q", out)
	}
	if !strings.Contains(out, "2") || strings.Contains(strings.Split(out, "\n")[2], "1") {
		t.Fatalf("tombstoned row 1 should not render, got %q", out)
	}
}
