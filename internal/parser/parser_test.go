package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/lexer"
	"github.com/funvibe/zephyr/internal/parser"
	"github.com/funvibe/zephyr/internal/pipeline"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		var msgs []string
		for _, err := range ctx.Errors {
			msgs = append(msgs, err.Error())
		}
		t.Fatalf("parsing failed with errors:\n%s\ninput: %s", strings.Join(msgs, "\n"), input)
	}
	return ctx.AstRoot
}

func TestParser(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"precedence", "let x = 1 + 2 * 3", "let x = (1 + (2 * 3))"},
		{"power_right_assoc", "2 ** 3 ** 2", "(2 ** (3 ** 2))"},
		{"int_div", "7 // 2 % 3", "((7 // 2) % 3)"},
		{"logical", "a || b && c", "(a || (b && c))"},
		{"prefix_minus", "-a * b", "((-a) * b)"},
		{"prefix_not", "not a == b", "((not a) == b)"},
		{"prefix_length", "$arr + 1", "(($arr) + 1)"},
		{"postfix", "i++", "(i++)"},
		{"prefix_increment", "++i", "(++i)"},
		{"assign_chain", "a = b = 3", "a = b = 3"},
		{"compound_assign", "x += 1", "x += 1"},
		{"assign_ternary", "a = c ? 1 : 2", "a = (c ? 1 : 2)"},
		{"ternary_nested", "a ? b : c ? d : e", "(a ? b : (c ? d : e))"},
		{"member_call_index", "a.b.c(1, 2)[0]", "a.b.c(1, 2)[0]"},
		{"keyword_property", "a.is", "a.is"},
		{"range", "1..5", "1..5"},
		{"range_step", "5..=1:-1", "5..=1:(-1)"},
		{"open_range", "..5", "0..5"},
		{"range_binds_looser_than_sum", "1 + 2..10", "(1 + 2)..10"},
		{"array", "[1, 2, 3,]", "[1, 2, 3]"},
		{"object", `.{ a: 1, "b c": 2 }`, ".{ a: 1, b c: 2 }"},
		{"object_shorthand", ".{ x }", ".{ x: x }"},
		{"is", "x is Color.Red", "(x is Color.Red)"},
		{"in", "x in arr", "(x in arr)"},
		{"typeof", "typeof x", "typeof x"},
		{"function", "func pure add(a, b) { a + b }", "func pure add(a, b) { (a + b) }"},
		{"function_anonymous", "let f = func () { 1 }", "let f = func () { 1 }"},
		{"bare_return", "func f() { return }", "func f() { return }"},
		{"if_else_if", "if a { 1 } else if b { 2 } else { 3 }", "if a { 1 } else if b { 2 } else { 3 }"},
		{"if_else_newline", "if a { 1 }\nelse { 2 }", "if a { 1 } else { 2 }"},
		{"while_label", "while x @outer { break @outer }", "while x @outer { break @outer }"},
		{"for_index_value", "for i, v in arr { continue }", "for i, v in arr { continue }"},
		{"try", "try { throw 1 } catch e { e } finally { 2 }", "try { throw 1 } catch e { e } finally { 2 }"},
		{"match", `match x { 1 => "one", > 5 => "big", is Color.Red => 0, else => 2 }`,
			`match x { == 1 => "one", > 5 => "big", is Color.Red => 0, else => 2 }`},
		{"match_newlines", "match x {\n  1 => 2\n  else => 3\n}", "match x { == 1 => 2, else => 3 }"},
		{"import_star", `import "./m.zr" as m`, `import "./m.zr" as m`},
		{"import_names", `from "m" import a, b as c`, `from "m" import a, b as c`},
		{"export_declaration", "export let x = 1", "export let x = 1"},
		{"export_alias", "export f as g", "export f as g"},
		{"enum", "enum Color { Red, Green }", "enum Color { Red, Green }"},
		{"destructure", "let [a, b] = pair", "let [a, b] = pair"},
		{"const", "const x = 1", "const x = 1"},
		{"assert", `assert x > 1, "too small"`, "assert (x > 1)"},
		{"debug", "debug x", "debug x"},
		{"semicolons", "let a = 1; let b = 2", "let a = 1; let b = 2"},
		{"newline_splits_call", "a\n(b)", "a; b"},
		{"newline_splits_minus", "a\n-b", "a; (-b)"},
		{"newline_keeps_member", "a\n.b", "a.b"},
		{"statement_after_block", "while x { x = 0 } x", "while x { x = 0 }; x"},
		{"comments", "# line\n1 /* block */ + 2", "(1 + 2)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			program := parse(t, tc.input)
			if got := program.String(); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestWhereClauses(t *testing.T) {
	program := parse(t, "func f(a, n: above?(0)) where a > 0, a < 10 { a }")
	fn, ok := program.Statements[0].(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("expected *ast.FunctionLiteral, got %T", program.Statements[0])
	}
	if fn.Name == nil || fn.Name.Value != "f" {
		t.Fatalf("unexpected name %v", fn.Name)
	}
	if len(fn.Where) != 3 {
		t.Fatalf("expected 3 where clauses, got %d", len(fn.Where))
	}
	wantSources := []string{"n: above?(0)", "a > 0", "a < 10"}
	for i, want := range wantSources {
		if fn.Where[i].Source != want {
			t.Errorf("clause %d: source %q, want %q", i, fn.Where[i].Source, want)
		}
	}
	if got := fn.Where[0].Test.String(); got != "above?(n, 0)" {
		t.Errorf("predicate sugar: got %q", got)
	}
}

func TestPredicateParameter(t *testing.T) {
	program := parse(t, "func (n: positive?) { n }")
	fn := program.Statements[0].(*ast.FunctionLiteral)
	if len(fn.Parameters) != 1 || fn.Parameters[0].Value != "n" {
		t.Fatalf("unexpected parameters %v", fn.Parameters)
	}
	if got := fn.Where[0].Test.String(); got != "positive?(n)" {
		t.Errorf("got %q", got)
	}
}

func TestLocations(t *testing.T) {
	ctx := &pipeline.PipelineContext{SourceCode: "let x = 1\n  x + 2", FilePath: "main.zr"}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if len(ctx.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", ctx.Errors)
	}
	loc := ctx.AstRoot.Statements[1].Location()
	if loc.File != "main.zr" || loc.Line != 2 || loc.Column != 5 {
		t.Errorf("got location %s", loc)
	}
}
