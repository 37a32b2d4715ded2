// Package executor dispatches each parsed ast.Statement to the table
// manager operation that implements it (spec.md §4.4), accumulating
// textual SELECT output into a single buffer per batch.
package executor

import (
	"strings"

	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/db"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/parser"
	"github.com/rijuyuezhu/helidb/schema"
	"github.com/rijuyuezhu/helidb/table"
	"github.com/rijuyuezhu/helidb/tablemgr"
)

// Executor runs statements against a Database using one Manager
// implementation for every row operation in the batch.
type Executor struct {
	DB      *db.Database
	Manager tablemgr.Manager

	output     strings.Builder
	wroteTable bool
}

// New returns an Executor bound to db, using mgr for all row work.
func New(database *db.Database, mgr tablemgr.Manager) *Executor {
	return &Executor{DB: database, Manager: mgr}
}

// Output returns everything appended to the result buffer so far.
func (e *Executor) Output() string { return e.output.String() }

// Exec dispatches one statement, per the switch shape spec.md §6
// assumes the core's statement sum type supports.
func (e *Executor) Exec(stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.CreateTable:
		return e.execCreateTable(s)
	case *ast.Drop:
		return e.execDrop(s)
	case *ast.Insert:
		return e.execInsert(s)
	case *ast.Update:
		return e.execUpdate(s)
	case *ast.Delete:
		return e.execDelete(s)
	default:
		if query, ok := parser.Query(stmt); ok {
			return e.execQuery(query)
		}
		return errs.Unsupportedf("unsupported statement")
	}
}

func (e *Executor) execCreateTable(s *ast.CreateTable) error {
	cols := make([]schema.ColumnInfo, len(s.Columns))
	for i, cd := range s.Columns {
		col, err := columnInfoFromDef(cd)
		if err != nil {
			return err
		}
		cols[i] = col
	}
	sch, err := schema.NewSchema(cols)
	if err != nil {
		return err
	}
	return e.DB.CreateTable(s.Name, sch)
}

func columnInfoFromDef(cd ast.ColumnDef) (schema.ColumnInfo, error) {
	ct, err := columnTypeFromAST(cd.Type)
	if err != nil {
		return schema.ColumnInfo{}, err
	}
	col := schema.ColumnInfo{Name: cd.Name, Nullable: true, Type: ct}
	for _, opt := range cd.Options {
		switch opt.Kind {
		case ast.OptionNotNull:
			col.Nullable = false
		case ast.OptionUnique:
			col.Unique = true
		case ast.OptionPrimaryKey:
			col.Unique = true
			col.Nullable = false
		default:
			return schema.ColumnInfo{}, errs.Unsupportedf("unsupported column option %q", opt.Raw)
		}
	}
	return col, nil
}

func columnTypeFromAST(dt ast.DataType) (schema.ColumnType, error) {
	switch dt.Name {
	case "INT":
		return schema.ColumnType{Kind: schema.IntType, DisplayWidth: dt.DisplayWidth}, nil
	case "VARCHAR":
		maxLen := schema.UnlimitedLength
		if dt.Length != nil {
			maxLen = *dt.Length
		}
		return schema.ColumnType{Kind: schema.VarcharType, MaxLength: maxLen}, nil
	default:
		return schema.ColumnType{}, errs.Unsupportedf("unsupported column type %q", dt.Name)
	}
}

func (e *Executor) execDrop(s *ast.Drop) error {
	if s.ObjectKind != ast.ObjectTable {
		return errs.Unsupportedf("unsupported DROP object kind")
	}
	for _, name := range s.Names {
		if err := e.DB.DropTable(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) execInsert(s *ast.Insert) error {
	t, ok := e.DB.Get(s.Table)
	if !ok {
		return errs.Otherf("table '%s' doesn't exist", s.Table)
	}
	values, ok := s.Source.Body.(*ast.ValuesList)
	if !ok {
		return errs.Unsupportedf("INSERT source must be a VALUES clause")
	}
	return e.Manager.InsertRows(t, values.Rows, s.Columns)
}

func (e *Executor) execUpdate(s *ast.Update) error {
	t, ok := e.DB.Get(s.Table)
	if !ok {
		return errs.Otherf("table '%s' doesn't exist", s.Table)
	}
	return e.Manager.UpdateRows(t, s.Assignments, s.Selection)
}

func (e *Executor) execDelete(s *ast.Delete) error {
	t, ok := e.DB.Get(s.Table)
	if !ok {
		return errs.Otherf("table '%s' doesn't exist", s.Table)
	}
	return e.Manager.DeleteRows(t, s.Selection)
}

func (e *Executor) execQuery(q *ast.Query) error {
	sel, ok := q.Body.(*ast.Select)
	if !ok {
		return errs.Unsupportedf("unsupported query body")
	}

	var src *table.Table
	if sel.HasFrom {
		t, ok := e.DB.Get(sel.From)
		if !ok {
			return errs.Otherf("table '%s' doesn't exist", sel.From)
		}
		src = t
	} else {
		src = table.Dummy()
	}

	outCols, calcFuncs := projectionPlan(src.Schema, sel.Items)
	outSchema := schema.NewProjectedSchema(outCols)

	result, err := e.Manager.Project(src, outSchema, calcFuncs, sel.Selection)
	if err != nil {
		return err
	}

	if len(q.OrderBy) > 0 {
		if err := e.Manager.OrderBy(result, q.OrderBy); err != nil {
			return err
		}
	}

	if result.RowNum() > 0 {
		if e.wroteTable {
			e.output.WriteString("\n\n")
		}
		e.output.WriteString(result.Render())
		e.wroteTable = true
	}
	return nil
}

// projectionPlan expands `*` and names unaliased expression columns
// from their original source text (spec.md §4.4, §9).
func projectionPlan(srcSchema *schema.Schema, items []ast.SelectItem) ([]schema.ColumnInfo, []ast.Expr) {
	var cols []schema.ColumnInfo
	var exprs []ast.Expr
	for _, item := range items {
		if item.Wildcard {
			for _, c := range srcSchema.Columns {
				cols = append(cols, schema.ColumnInfo{Name: c.Name, Nullable: true, Type: c.Type})
				exprs = append(exprs, &ast.Ident{Name: c.Name})
			}
			continue
		}
		cols = append(cols, schema.ColumnInfo{
			Name:     item.Text,
			Nullable: true,
			Type:     schema.ColumnType{Kind: schema.VarcharType, MaxLength: schema.UnlimitedLength},
		})
		exprs = append(exprs, item.Expr)
	}
	return cols, exprs
}
