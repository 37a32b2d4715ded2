package lexer

import (
	"testing"

	"github.com/rijuyuezhu/helidb/token"
)

func scanAll(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == token.EOF {
			return toks
		}
	}
}

func TestLexerKeywordsCaseInsensitive(t *testing.T) {
	toks := scanAll("select From")
	if toks[0].Type != token.SELECT || toks[0].Literal != "SELECT" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Type != token.FROM {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestLexerIdentPreservesCase(t *testing.T) {
	toks := scanAll("MyTable")
	if toks[0].Type != token.IDENT || toks[0].Literal != "MyTable" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexerBacktickQuotedIdent(t *testing.T) {
	toks := scanAll("`order`")
	if toks[0].Type != token.IDENT || !toks[0].Quoted || toks[0].Literal != "order" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexerStringLiteralsWithEscapedQuote(t *testing.T) {
	toks := scanAll(`'it''s'`)
	if toks[0].Type != token.STRING || toks[0].Literal != "it's" {
		t.Fatalf("got %+v", toks[0])
	}
	toks = scanAll(`"double"`)
	if toks[0].Type != token.STRING || toks[0].Literal != "double" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexerOperators(t *testing.T) {
	toks := scanAll("<= >= <> != < > =")
	want := []token.Type{token.LTE, token.GTE, token.NEQ, token.NEQ, token.LT, token.GT, token.EQ, token.EOF}
	for i, w := range want {
		if toks[i].Type != w {
			t.Fatalf("token %d: got %v, want %v", i, toks[i].Type, w)
		}
	}
}

func TestLexerComments(t *testing.T) {
	toks := scanAll("1 -- line comment\n2 /* block */ 3")
	var nums []string
	for _, tok := range toks {
		if tok.Type == token.NUMBER {
			nums = append(nums, tok.Literal)
		}
	}
	if len(nums) != 3 || nums[0] != "1" || nums[1] != "2" || nums[2] != "3" {
		t.Fatalf("got %v", nums)
	}
}

func TestLexerTokenPositions(t *testing.T) {
	toks := scanAll("ab cd")
	if toks[0].Start != 0 || toks[0].End != 2 {
		t.Fatalf("first token span = [%d,%d), want [0,2)", toks[0].Start, toks[0].End)
	}
	if toks[1].Start != 3 || toks[1].End != 5 {
		t.Fatalf("second token span = [%d,%d), want [3,5)", toks[1].Start, toks[1].End)
	}
}
