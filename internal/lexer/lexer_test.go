package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/funvibe/zephyr/internal/token"
)

type tok struct {
	Type    token.TokenType
	Lexeme  string
	Newline bool
}

func scanAll(input string) []tok {
	var out []tok
	for _, t := range New(input).Tokenize() {
		out = append(out, tok{t.Type, t.Lexeme, t.NewlineBefore})
	}
	return out
}

func TestNextToken(t *testing.T) {
	input := "let x = 5..=10 // 2 # comment\nready? @outer .{ } /* c */ a != b"
	want := []tok{
		{token.LET, "let", false},
		{token.IDENT, "x", false},
		{token.ASSIGN, "=", false},
		{token.NUMBER, "5", false},
		{token.RANGE_INCLUSIVE, "..=", false},
		{token.NUMBER, "10", false},
		{token.INT_DIV, "//", false},
		{token.NUMBER, "2", false},
		{token.IDENT, "ready?", true},
		{token.LABEL, "@outer", false},
		{token.DOT, ".", false},
		{token.LBRACE, "{", false},
		{token.RBRACE, "}", false},
		{token.IDENT, "a", false},
		{token.NOT_EQ, "!=", false},
		{token.IDENT, "b", false},
		{token.EOF, "", false},
	}
	if diff := cmp.Diff(want, scanAll(input)); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestNumbers(t *testing.T) {
	testCases := []struct {
		input string
		want  float64
	}{
		{"42", 42},
		{"1_000", 1000},
		{"3.25", 3.25},
		{"1.5e3", 1500},
		{"2E-2", 0.02},
	}
	for _, tc := range testCases {
		tk := New(tc.input).NextToken()
		if tk.Type != token.NUMBER {
			t.Fatalf("%s: got %s", tc.input, tk.Type)
		}
		if tk.Literal.(float64) != tc.want {
			t.Errorf("%s: got %v, want %v", tc.input, tk.Literal, tc.want)
		}
	}
}

func TestRangeAfterNumber(t *testing.T) {
	got := scanAll("1..3")
	want := []tok{
		{token.NUMBER, "1", false},
		{token.RANGE, "..", false},
		{token.NUMBER, "3", false},
		{token.EOF, "", false},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestStrings(t *testing.T) {
	testCases := []struct {
		input string
		want  string
	}{
		{`"plain"`, "plain"},
		{`'single'`, "single"},
		{`"a\nb\t\"q\""`, "a\nb\t\"q\""},
		{`"é"`, "é"},
	}
	for _, tc := range testCases {
		tk := New(tc.input).NextToken()
		if tk.Type != token.STRING {
			t.Fatalf("%s: got %s (%v)", tc.input, tk.Type, tk.Literal)
		}
		if tk.Literal.(string) != tc.want {
			t.Errorf("%s: got %q, want %q", tc.input, tk.Literal, tc.want)
		}
	}
}

func TestIllegal(t *testing.T) {
	for _, input := range []string{`"open`, `"bad \q"`, "@", "&", "1e+"} {
		tk := New(input).NextToken()
		if tk.Type != token.ILLEGAL {
			t.Errorf("%q: expected ILLEGAL, got %s", input, tk.Type)
		}
	}
}

func TestPositions(t *testing.T) {
	l := NewWithFile("a\n  bc", "f.zr")
	first := l.NextToken()
	second := l.NextToken()
	if first.Line != 1 || first.Column != 1 {
		t.Errorf("first at %d:%d", first.Line, first.Column)
	}
	if second.Line != 2 || second.Column != 3 || second.File != "f.zr" {
		t.Errorf("second at %s", second.Location())
	}
}
