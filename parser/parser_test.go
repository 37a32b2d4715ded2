package parser

import (
	"testing"

	"github.com/rijuyuezhu/helidb/ast"
)

func TestParseBatchEmptyIsLegal(t *testing.T) {
	stmts, err := ParseBatch(";")
	if err != nil || len(stmts) != 0 {
		t.Fatalf("ParseBatch(\";\") = %v, %v", stmts, err)
	}
	stmts, err = ParseBatch("   ")
	if err != nil || len(stmts) != 0 {
		t.Fatalf("ParseBatch(whitespace) = %v, %v", stmts, err)
	}
}

func TestParseCreateTable(t *testing.T) {
	stmts, err := ParseBatch("CREATE TABLE t (id INT PRIMARY KEY, v INT NOT NULL, name VARCHAR(20) UNIQUE);")
	if err != nil {
		t.Fatal(err)
	}
	ct, ok := stmts[0].(*ast.CreateTable)
	if !ok {
		t.Fatalf("got %T", stmts[0])
	}
	if ct.Name != "t" || len(ct.Columns) != 3 {
		t.Fatalf("got %+v", ct)
	}
	if ct.Columns[0].Options[0].Kind != ast.OptionPrimaryKey {
		t.Fatalf("column 0 options = %+v", ct.Columns[0].Options)
	}
	if ct.Columns[1].Options[0].Kind != ast.OptionNotNull {
		t.Fatalf("column 1 options = %+v", ct.Columns[1].Options)
	}
	if ct.Columns[2].Type.Name != "VARCHAR" || *ct.Columns[2].Type.Length != 20 {
		t.Fatalf("column 2 type = %+v", ct.Columns[2].Type)
	}
}

func TestParseInsertValues(t *testing.T) {
	stmts, err := ParseBatch("INSERT INTO t VALUES (1, 'a'), (2, 'b');")
	if err != nil {
		t.Fatal(err)
	}
	ins, ok := stmts[0].(*ast.Insert)
	if !ok {
		t.Fatalf("got %T", stmts[0])
	}
	vl, ok := ins.Source.Body.(*ast.ValuesList)
	if !ok || len(vl.Rows) != 2 {
		t.Fatalf("got %+v", ins.Source.Body)
	}
}

func TestParseInsertWithColumnList(t *testing.T) {
	stmts, err := ParseBatch("INSERT INTO t (a, b) VALUES (1, 2);")
	if err != nil {
		t.Fatal(err)
	}
	ins := stmts[0].(*ast.Insert)
	if len(ins.Columns) != 2 || ins.Columns[0] != "a" || ins.Columns[1] != "b" {
		t.Fatalf("got %v", ins.Columns)
	}
}

func TestParseUpdateWithWhere(t *testing.T) {
	stmts, err := ParseBatch("UPDATE t SET v = v + 1 WHERE id = 1;")
	if err != nil {
		t.Fatal(err)
	}
	upd := stmts[0].(*ast.Update)
	if len(upd.Assignments) != 1 || upd.Assignments[0].Column != "v" {
		t.Fatalf("got %+v", upd.Assignments)
	}
	if upd.Selection == nil {
		t.Fatal("expected a WHERE selection")
	}
}

func TestParseDeleteWithAndWithoutFrom(t *testing.T) {
	stmts, err := ParseBatch("DELETE FROM t WHERE id = 1; DELETE t;")
	if err != nil {
		t.Fatal(err)
	}
	if len(stmts) != 2 {
		t.Fatalf("got %d statements", len(stmts))
	}
	d0 := stmts[0].(*ast.Delete)
	if d0.Table != "t" || d0.Selection == nil {
		t.Fatalf("got %+v", d0)
	}
	d1 := stmts[1].(*ast.Delete)
	if d1.Table != "t" || d1.Selection != nil {
		t.Fatalf("got %+v", d1)
	}
}

func TestParseSelectWildcardAndOrderBy(t *testing.T) {
	stmts, err := ParseBatch("SELECT * FROM t ORDER BY v DESC, id;")
	if err != nil {
		t.Fatal(err)
	}
	query, ok := Query(stmts[0])
	if !ok {
		t.Fatalf("got %T", stmts[0])
	}
	sel := query.Body.(*ast.Select)
	if !sel.Items[0].Wildcard || sel.From != "t" {
		t.Fatalf("got %+v", sel)
	}
	if len(query.OrderBy) != 2 || query.OrderBy[0].Asc || !query.OrderBy[1].Asc {
		t.Fatalf("got %+v", query.OrderBy)
	}
}

func TestParseSelectNoFromLiteralProjection(t *testing.T) {
	stmts, err := ParseBatch("SELECT 1+1;")
	if err != nil {
		t.Fatal(err)
	}
	query, _ := Query(stmts[0])
	sel := query.Body.(*ast.Select)
	if sel.HasFrom {
		t.Fatal("SELECT with no FROM must report HasFrom = false")
	}
	if sel.Items[0].Text != "1+1" {
		t.Fatalf("projection source text = %q, want \"1+1\"", sel.Items[0].Text)
	}
}

func TestParseSelectProjectionTextFromSourceSpan(t *testing.T) {
	stmts, err := ParseBatch("SELECT v + 1 FROM t;")
	if err != nil {
		t.Fatal(err)
	}
	query, _ := Query(stmts[0])
	sel := query.Body.(*ast.Select)
	if sel.Items[0].Text != "v + 1" {
		t.Fatalf("projection source text = %q, want \"v + 1\"", sel.Items[0].Text)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	stmts, err := ParseBatch("SELECT 1 + 2 * 3 = 7 AND 1 = 1;")
	if err != nil {
		t.Fatal(err)
	}
	query, _ := Query(stmts[0])
	sel := query.Body.(*ast.Select)
	top, ok := sel.Items[0].Expr.(*ast.BinaryExpr)
	if !ok || top.Op != ast.OpAnd {
		t.Fatalf("top-level op should be AND (lowest precedence), got %+v", sel.Items[0].Expr)
	}
	left, ok := top.Left.(*ast.BinaryExpr)
	if !ok || left.Op != ast.OpEq {
		t.Fatalf("left of AND should be =, got %+v", top.Left)
	}
	sum, ok := left.Left.(*ast.BinaryExpr)
	if !ok || sum.Op != ast.OpAdd {
		t.Fatalf("= left side should be the sum 1+2*3, got %+v", left.Left)
	}
	if _, ok := sum.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("2*3 should bind tighter than +, got %+v", sum.Right)
	}
}

func TestParseIsNullAndIsTruePredicates(t *testing.T) {
	stmts, err := ParseBatch("SELECT 1 FROM t WHERE v IS NOT NULL AND v IS TRUE;")
	if err != nil {
		t.Fatal(err)
	}
	query, _ := Query(stmts[0])
	sel := query.Body.(*ast.Select)
	and := sel.Selection.(*ast.BinaryExpr)
	if _, ok := and.Left.(*ast.NullTest); !ok {
		t.Fatalf("left should be a NullTest, got %+v", and.Left)
	}
	bt, ok := and.Right.(*ast.BoolTest)
	if !ok || bt.Op != ast.IsTrue {
		t.Fatalf("right should be IS TRUE, got %+v", and.Right)
	}
}

func TestParseUnsupportedStatementIsSyntaxError(t *testing.T) {
	if _, err := ParseBatch("MERGE INTO t;"); err == nil {
		t.Fatal("unrecognized statement keyword should be a syntax error")
	}
}

func TestParseNegativeNumberLiteral(t *testing.T) {
	stmts, err := ParseBatch("INSERT INTO t VALUES (-5);")
	if err != nil {
		t.Fatal(err)
	}
	ins := stmts[0].(*ast.Insert)
	row := ins.Source.Body.(*ast.ValuesList).Rows[0]
	lit, ok := row[0].(*ast.NumberLit)
	if !ok || lit.Text != "-5" {
		t.Fatalf("got %+v", row[0])
	}
}

func TestParseDropTableMultipleNames(t *testing.T) {
	stmts, err := ParseBatch("DROP TABLE a, b;")
	if err != nil {
		t.Fatal(err)
	}
	dr := stmts[0].(*ast.Drop)
	if len(dr.Names) != 2 || dr.Names[0] != "a" || dr.Names[1] != "b" {
		t.Fatalf("got %+v", dr.Names)
	}
}
