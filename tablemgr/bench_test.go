package tablemgr

import (
	"strconv"
	"testing"

	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
)

func buildBenchTable(b *testing.B, n int) *table.Table {
	b.Helper()
	sch, err := schema.NewSchema([]schema.ColumnInfo{
		{Name: "id", Unique: true},
		{Name: "v"},
	})
	if err != nil {
		b.Fatal(err)
	}
	tb := table.New(sch)
	rows := make([][]ast.Expr, n)
	for i := range rows {
		rows[i] = []ast.Expr{
			&ast.NumberLit{Text: strconv.Itoa(i)},
			&ast.NumberLit{Text: strconv.Itoa(i)},
		}
	}
	if err := (Sequential{}).InsertRows(tb, rows, nil); err != nil {
		b.Fatal(err)
	}
	return tb
}

func benchUpdateAll(b *testing.B, mgr Manager, n int) {
	assigns := []ast.Assignment{{
		Column: "v",
		Value:  &ast.BinaryExpr{Left: &ast.Ident{Name: "v"}, Op: ast.OpAdd, Right: &ast.NumberLit{Text: "1"}},
	}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		b.StopTimer()
		tb := buildBenchTable(b, n)
		b.StartTimer()
		if err := mgr.UpdateRows(tb, assigns, nil); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkSequentialUpdateRows(b *testing.B) {
	for _, n := range []int{100, 10_000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			benchUpdateAll(b, Sequential{}, n)
		})
	}
}

func BenchmarkParallelUpdateRows(b *testing.B) {
	for _, n := range []int{100, 10_000} {
		b.Run(strconv.Itoa(n), func(b *testing.B) {
			benchUpdateAll(b, Parallel{}, n)
		})
	}
}
