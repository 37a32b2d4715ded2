// Package parser implements a recursive-descent parser over the token
// stream lexer produces, building the ast nodes the core engine
// consumes (spec.md §6's AST contract). It covers exactly the
// statement and expression grammar spec.md enumerates: no joins, no
// subqueries, no set operations, no GROUP BY.
package parser

import (
	"fmt"
	"strings"

	"github.com/rijuyuezhu/helidb/ast"
	"github.com/rijuyuezhu/helidb/errs"
	"github.com/rijuyuezhu/helidb/lexer"
	"github.com/rijuyuezhu/helidb/token"
)

// Parser consumes a token stream and produces ast.Statement values.
type Parser struct {
	src string
	l   *lexer.Lexer

	cur  token.Token
	peek token.Token

	// prevEnd is the source offset just past the most recently parsed
	// expression, used to recover a SELECT item's literal source text.
	prevEnd int
}

// New creates a Parser over a full SQL batch's source text.
func New(src string) *Parser {
	p := &Parser{src: src, l: lexer.New(src)}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) curIs(t token.Type) bool  { return p.cur.Type == t }
func (p *Parser) peekIs(t token.Type) bool { return p.peek.Type == t }

func (p *Parser) expect(t token.Type) (token.Token, error) {
	if p.cur.Type != t {
		return token.Token{}, syntaxErr(p.cur, t)
	}
	tok := p.cur
	p.next()
	return tok, nil
}

func syntaxErr(got token.Token, want ...token.Type) *errs.Error {
	names := make([]string, len(want))
	for i, t := range want {
		names[i] = t.String()
	}
	return errs.Syntaxf("unexpected token %q (%s), expected %s", got.Literal, got.Type, strings.Join(names, " or "))
}

// ParseBatch parses every statement in the source and returns them in
// order. Semicolons between and after statements are skipped; none is
// required. An empty batch (no statements, just whitespace/semicolons)
// is legal.
func ParseBatch(src string) ([]ast.Statement, error) {
	p := New(src)
	var stmts []ast.Statement
	for !p.curIs(token.EOF) {
		if p.curIs(token.SEMICOLON) {
			p.next()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
		for p.curIs(token.SEMICOLON) {
			p.next()
		}
	}
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	switch p.cur.Type {
	case token.CREATE:
		return p.parseCreateTable()
	case token.DROP:
		return p.parseDrop()
	case token.INSERT:
		return p.parseInsert()
	case token.UPDATE:
		return p.parseUpdate()
	case token.DELETE:
		return p.parseDelete()
	case token.SELECT:
		return p.parseSelectStatement()
	default:
		return nil, syntaxErr(p.cur, token.CREATE, token.DROP, token.INSERT, token.UPDATE, token.DELETE, token.SELECT)
	}
}

func (p *Parser) parseName() (string, error) {
	if !p.curIs(token.IDENT) {
		return "", syntaxErr(p.cur, token.IDENT)
	}
	name := p.cur.Literal
	p.next()
	return name, nil
}

func (p *Parser) parseCreateTable() (ast.Statement, error) {
	p.next() // CREATE
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}

	var cols []ast.ColumnDef
	for {
		col, err := p.parseColumnDef()
		if err != nil {
			return nil, err
		}
		cols = append(cols, col)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return &ast.CreateTable{Name: name, Columns: cols}, nil
}

func (p *Parser) parseColumnDef() (ast.ColumnDef, error) {
	name, err := p.parseName()
	if err != nil {
		return ast.ColumnDef{}, err
	}
	dt, err := p.parseDataType()
	if err != nil {
		return ast.ColumnDef{}, err
	}

	var opts []ast.ColumnOption
	for !p.curIs(token.COMMA) && !p.curIs(token.RPAREN) && !p.curIs(token.EOF) {
		opt, err := p.parseColumnOption()
		if err != nil {
			return ast.ColumnDef{}, err
		}
		opts = append(opts, opt)
	}
	return ast.ColumnDef{Name: name, Type: dt, Options: opts}, nil
}

func (p *Parser) parseDataType() (ast.DataType, error) {
	var dt ast.DataType
	switch p.cur.Type {
	case token.INT_:
		dt.Name = "INT"
		p.next()
		if p.curIs(token.LPAREN) {
			p.next()
			n, err := p.parseUintLiteral()
			if err != nil {
				return dt, err
			}
			dt.DisplayWidth = &n
			if _, err := p.expect(token.RPAREN); err != nil {
				return dt, err
			}
		}
	case token.VARCHAR_:
		dt.Name = "VARCHAR"
		p.next()
		if p.curIs(token.LPAREN) {
			p.next()
			n, err := p.parseUintLiteral()
			if err != nil {
				return dt, err
			}
			dt.Length = &n
			if _, err := p.expect(token.RPAREN); err != nil {
				return dt, err
			}
		}
	default:
		// Unrecognized type name: still consume it so the column
		// definition ends cleanly; CREATE TABLE's executor rejects
		// anything but INT/VARCHAR (spec.md §4.4).
		dt.Name = p.cur.Literal
		p.next()
	}
	return dt, nil
}

func (p *Parser) parseUintLiteral() (uint64, error) {
	if !p.curIs(token.NUMBER) {
		return 0, syntaxErr(p.cur, token.NUMBER)
	}
	var n uint64
	if _, err := fmt.Sscanf(p.cur.Literal, "%d", &n); err != nil {
		return 0, errs.Syntaxf("invalid integer literal %q", p.cur.Literal)
	}
	p.next()
	return n, nil
}

func (p *Parser) parseColumnOption() (ast.ColumnOption, error) {
	switch p.cur.Type {
	case token.NOT:
		p.next()
		if _, err := p.expect(token.NULL_); err != nil {
			return ast.ColumnOption{}, err
		}
		return ast.ColumnOption{Kind: ast.OptionNotNull, Raw: "NOT NULL"}, nil
	case token.UNIQUE:
		p.next()
		return ast.ColumnOption{Kind: ast.OptionUnique, Raw: "UNIQUE"}, nil
	case token.PRIMARY:
		p.next()
		if _, err := p.expect(token.KEY); err != nil {
			return ast.ColumnOption{}, err
		}
		return ast.ColumnOption{Kind: ast.OptionPrimaryKey, Raw: "PRIMARY KEY"}, nil
	default:
		// Any other option shape the parser doesn't implement:
		// consume one token as its raw text and let the executor
		// reject it (spec.md §4.4: "any other column option is an
		// error").
		raw := p.cur.Literal
		p.next()
		return ast.ColumnOption{Kind: ast.OptionOther, Raw: raw}, nil
	}
}

func (p *Parser) parseDrop() (ast.Statement, error) {
	p.next() // DROP
	if _, err := p.expect(token.TABLE); err != nil {
		return nil, err
	}
	var names []string
	for {
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	return &ast.Drop{ObjectKind: ast.ObjectTable, Names: names}, nil
}

func (p *Parser) parseInsert() (ast.Statement, error) {
	p.next() // INSERT
	if _, err := p.expect(token.INTO); err != nil {
		return nil, err
	}
	tableName, err := p.parseName()
	if err != nil {
		return nil, err
	}

	var columns []string
	if p.curIs(token.LPAREN) {
		p.next()
		for {
			name, err := p.parseName()
			if err != nil {
				return nil, err
			}
			columns = append(columns, name)
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
	}

	if _, err := p.expect(token.VALUES); err != nil {
		return nil, err
	}
	var rows [][]ast.Expr
	for {
		if _, err := p.expect(token.LPAREN); err != nil {
			return nil, err
		}
		var row []ast.Expr
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			row = append(row, e)
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		rows = append(rows, row)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}

	return &ast.Insert{
		Table:   tableName,
		Columns: columns,
		Source:  &ast.Query{Body: &ast.ValuesList{Rows: rows}},
	}, nil
}

func (p *Parser) parseUpdate() (ast.Statement, error) {
	p.next() // UPDATE
	tableName, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.SET); err != nil {
		return nil, err
	}
	var assigns []ast.Assignment
	for {
		col, err := p.parseName()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.EQ); err != nil {
			return nil, err
		}
		val, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		assigns = append(assigns, ast.Assignment{Column: col, Value: val})
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}
	var sel ast.Expr
	if p.curIs(token.WHERE) {
		p.next()
		sel, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Update{Table: tableName, Assignments: assigns, Selection: sel}, nil
}

func (p *Parser) parseDelete() (ast.Statement, error) {
	p.next() // DELETE
	if p.curIs(token.FROM) {
		p.next()
	}
	tableName, err := p.parseName()
	if err != nil {
		return nil, err
	}
	var sel ast.Expr
	if p.curIs(token.WHERE) {
		p.next()
		sel, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
	return &ast.Delete{Table: tableName, Selection: sel}, nil
}

func (p *Parser) parseSelectStatement() (ast.Statement, error) {
	sel, err := p.parseSelect()
	if err != nil {
		return nil, err
	}

	query := &ast.Query{Body: sel}
	if p.curIs(token.ORDER) {
		p.next()
		if _, err := p.expect(token.BY); err != nil {
			return nil, err
		}
		for {
			e, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			asc := true
			if p.curIs(token.ASC) {
				p.next()
			} else if p.curIs(token.DESC) {
				asc = false
				p.next()
			}
			query.OrderBy = append(query.OrderBy, ast.OrderByKey{Expr: e, Asc: asc})
			if p.curIs(token.COMMA) {
				p.next()
				continue
			}
			break
		}
	}
	return &selectStatement{query: query}, nil
}

// selectStatement wraps a *ast.Query as a top-level ast.Statement —
// SELECT is the only statement whose body is a Query.
type selectStatement struct {
	query *ast.Query
}

func (*selectStatement) statementNode() {}

// Query unwraps a parsed SELECT statement's query body. The executor
// package calls this rather than depend on an unexported type.
func Query(stmt ast.Statement) (*ast.Query, bool) {
	s, ok := stmt.(*selectStatement)
	if !ok {
		return nil, false
	}
	return s.query, true
}

func (p *Parser) parseSelect() (*ast.Select, error) {
	p.next() // SELECT
	var items []ast.SelectItem
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		if p.curIs(token.COMMA) {
			p.next()
			continue
		}
		break
	}

	sel := &ast.Select{Items: items}
	if p.curIs(token.FROM) {
		p.next()
		name, err := p.parseName()
		if err != nil {
			return nil, err
		}
		sel.From = name
		sel.HasFrom = true
	}
	if p.curIs(token.WHERE) {
		p.next()
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		sel.Selection = e
	}
	return sel, nil
}

func (p *Parser) parseSelectItem() (ast.SelectItem, error) {
	// A bare `*` can only be the wildcard here: multiplication needs a
	// left operand, which no select item starts with.
	if p.curIs(token.ASTERISK) {
		p.next()
		return ast.SelectItem{Wildcard: true}, nil
	}
	start := p.cur.Start
	e, err := p.parseExpr()
	if err != nil {
		return ast.SelectItem{}, err
	}
	text := strings.TrimSpace(p.src[start:p.prevEnd])
	return ast.SelectItem{Expr: e, Text: text}, nil
}

// --- expression parsing (precedence climbing, lowest to highest) ---

func (p *Parser) parseExpr() (ast.Expr, error) {
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.prevEnd = p.cur.Start
	return e, nil
}

func (p *Parser) parseOr() (ast.Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.OR) {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: ast.OpOr, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expr, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.AND) {
		p.next()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: ast.OpAnd, Right: right}
	}
	return left, nil
}

var comparisonOps = map[token.Type]ast.BinaryOp{
	token.EQ:  ast.OpEq,
	token.NEQ: ast.OpNotEq,
	token.LT:  ast.OpLt,
	token.GT:  ast.OpGt,
	token.LTE: ast.OpLtEq,
	token.GTE: ast.OpGtEq,
}

func (p *Parser) parseComparison() (ast.Expr, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.cur.Type]
		if !ok {
			return left, nil
		}
		p.next()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expr, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.PLUS) || p.curIs(token.MINUS) {
		op := ast.OpAdd
		if p.curIs(token.MINUS) {
			op = ast.OpSub
		}
		p.next()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expr, error) {
	left, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.ASTERISK) || p.curIs(token.SLASH) || p.curIs(token.PERCENT) {
		var op ast.BinaryOp
		switch p.cur.Type {
		case token.ASTERISK:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		default:
			op = ast.OpMod
		}
		p.next()
		right, err := p.parsePostfix()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpr{Left: left, Op: op, Right: right}
	}
	return left, nil
}

func (p *Parser) parsePostfix() (ast.Expr, error) {
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for p.curIs(token.IS) {
		p.next()
		negate := false
		if p.curIs(token.NOT) {
			negate = true
			p.next()
		}
		switch p.cur.Type {
		case token.NULL_:
			p.next()
			e = &ast.NullTest{Operand: e, Negate: negate}
		case token.TRUE_:
			p.next()
			e = &ast.BoolTest{Operand: e, Op: boolTestOp(negate, true)}
		case token.FALSE_:
			p.next()
			e = &ast.BoolTest{Operand: e, Op: boolTestOp(negate, false)}
		default:
			return nil, syntaxErr(p.cur, token.NULL_, token.TRUE_, token.FALSE_)
		}
	}
	return e, nil
}

func boolTestOp(negate, wantTrue bool) ast.BoolTestOp {
	switch {
	case wantTrue && !negate:
		return ast.IsTrue
	case wantTrue && negate:
		return ast.IsNotTrue
	case !wantTrue && !negate:
		return ast.IsFalse
	default:
		return ast.IsNotFalse
	}
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	switch p.cur.Type {
	case token.NUMBER:
		e := &ast.NumberLit{Text: p.cur.Literal}
		p.next()
		return e, nil
	case token.STRING:
		e := &ast.StringLit{Value: p.cur.Literal}
		p.next()
		return e, nil
	case token.NULL_:
		p.next()
		return &ast.NullLit{}, nil
	case token.TRUE_:
		p.next()
		return &ast.BoolLit{Value: true}, nil
	case token.FALSE_:
		p.next()
		return &ast.BoolLit{Value: false}, nil
	case token.IDENT:
		e := &ast.Ident{Name: p.cur.Literal, Quoted: p.cur.Quoted}
		p.next()
		return e, nil
	case token.LPAREN:
		p.next()
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return &ast.Nested{Inner: inner}, nil
	case token.MINUS:
		// Unary minus on a numeric literal: fold into the literal's
		// text so ParseNumberLiteral handles the sign uniformly.
		p.next()
		if p.curIs(token.NUMBER) {
			e := &ast.NumberLit{Text: "-" + p.cur.Literal}
			p.next()
			return e, nil
		}
		operand, err := p.parsePrimary()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Left: &ast.NumberLit{Text: "0"}, Op: ast.OpSub, Right: operand}, nil
	default:
		return nil, syntaxErr(p.cur, token.NUMBER, token.STRING, token.NULL_, token.TRUE_, token.FALSE_, token.IDENT, token.LPAREN)
	}
}
