package evaluator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestEvaluator(t *testing.T) (*Evaluator, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	e := New(Options{Out: out})
	t.Cleanup(func() { _ = e.Close() })
	return e, out
}

// run evaluates src and renders the result the way the REPL prints it.
func run(t *testing.T, src string) string {
	t.Helper()
	e, _ := newTestEvaluator(t)
	v, err := e.RunSource(src, "")
	require.NoError(t, err, "source: %s", src)
	s, err := Display(e.Heap(), v, false, false)
	require.NoError(t, err)
	return s
}

func runErr(t *testing.T, src string) *Error {
	t.Helper()
	e, _ := newTestEvaluator(t)
	_, err := e.RunSource(src, "")
	require.Error(t, err, "source: %s", src)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	return rerr
}

func TestPrograms(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"index_write_at_len", "let a = [1,2,3]; a[3] = 4; a", "[1, 2, 3, 4]"},
		{"while", "let x = 1; while x < 4 { x = x + 1; } x", "4"},
		{"early_return", "func f() { return 1; 2 }\nf()", "1"},
		{"catch_native_error", "try { error_call() } catch e { e.kind }", "InvalidOperation"},
		{"catch_thrown_value", `try { throw "boom" } catch e { e }`, "boom"},
		{"finally_runs", "let log = []\ntry { error_call() } catch e { log = log + 1 } finally { log = log + 2 }\nlog", "[1, 2]"},
		{"short_circuit", "let n = 0\nfunc bump() { n = n + 1; true }\nfalse && bump()\ntrue || bump()\nn", "0"},
		{"or_first_truthy", `0 || "x"`, "x"},
		{"or_falls_back_to_left", "null || 0", "null"},
		{"and_yields_right", "1 && 2", "2"},
		{"labelled_break", "let out = 0\nfor i, v in [1, 2, 3] @outer { for j in [1, 2] { if v == 2 { break @outer }; out = out + 1 } }\nout", "2"},
		{"for_collects_values", "for i, v in [10, 20, 30] { if i == 1 { continue }; v * 2 }", "[20, 60]"},
		{"for_index_only", "for i in [7, 8] { i }", "[0, 1]"},
		{"for_else_on_empty", `for i in [] { 1 } else { "empty" }`, "empty"},
		{"for_else_skipped", `for i in [1] { "body" } else { "empty" }`, `["body"]`},
		{"while_else", "while false { 1 } else { 2 }", "2"},
		{"range_default_step", "iter(5..1)", "[5, 4, 3, 2]"},
		{"range_inclusive", "iter(5..=1)", "[5, 4, 3, 2, 1]"},
		{"range_step", "iter(1..10:3)", "[1, 4, 7]"},
		{"range_negative_step", "iter(5..1:-1)", "[5, 4, 3, 2]"},
		{"range_step_keeps_last_short_of_end", "iter(0..10:3)", "[0, 3, 6, 9]"},
		{"range_step_overshoots_end", "iter(1..10:4)", "[1, 5, 9]"},
		{"range_step_inclusive", "iter(0..=9:3)", "[0, 3, 6, 9]"},
		{"array_slice", "[1, 2, 3, 4][1..3]", "[2, 3]"},
		{"string_index", `"hello"[1]`, "e"},
		{"enum_is", "enum Color { Red, Green }\nlet c = Color.Red\n[c is Color.Red, c is Color.Green, c is Color]", "[true, false, true]"},
		{"where_passes", "func f(x) where x > 0 { x }\nf(5)", "5"},
		{"where_runs_before_body", "let hit = 0\nfunc f(x) where x > 0 { hit = 1; x }\ntry { f(-1) } catch e { hit }", "0"},
		{"parameter_predicate", "func pos?(x) { x > 0 }\nfunc f(n: pos?) { n }\nf(3)", "3"},
		{"pure_calls_pure", "func pure double(x) { x * 2 }\nfunc pure quad(x) { double(double(x)) }\nquad(3)", "12"},
		{"predicate_name", "func pos?(x) { x > 0 }\npos?(3)", "true"},
		{"missing_args_are_null", "func f(a, b) { b }\nf(1)", "null"},
		{"rest_args", "func f(a, __args__) { __args__ }\nf(1, 2, 3)", "[2, 3]"},
		{"closure", "func counter() { let n = 0; func () { n = n + 1 } }\nlet c = counter()\nc()\nc()", "2"},
		{"object_members", "let o = .{ a: 1 }\no.b = 2\n[o.a, o.b, o.missing]", "[1, 2, null]"},
		{"object_display", `.{ a: 1, b: "x" }`, `.{a: 1, b: "x"}`},
		{"destructure", "let [a, b, c] = [1, 2]\n[a, b, c]", "[1, 2, null]"},
		{"match", `match 7 { 1 => "one", > 5 => "big", else => "other" }`, "big"},
		{"ternary_compound", `let x = 2; x += 3; x > 4 ? "yes" : "no"`, "yes"},
		{"membership", `[2 in [1, 2], "a" in .{ a: 1 }, "ell" in "hello", 3 in 1..3]`, "[true, true, true, false]"},
		{"typeof", "typeof [1]", "array"},
		{"length_prefix", "let a = [1, 2, 3]\n$a", "3"},
		{"abs_prefix", "+(-4)", "4"},
		{"postfix", "let i = 1\ni++\ni", "2"},
		{"int_division", "7 // 2", "3"},
		{"power", "2 ** 10", "1024"},
		{"string_concat", `"n=" + 5`, "n=5"},
		{"array_equality_is_by_address", "let a = [1]; let b = [1]; [a == a, a == b]", "[true, false]"},
		{"tags", "let x = 5\nadd_tag(x, \"unit\", \"cm\")\nx.__tags.unit", "cm"},
		{"delete_tag", "let x = 5\nadd_tag(x, \"a\", \"1\")\ndelete_tag(x, \"a\")\nx.__tags", ".{}"},
		{"tag_on_null_stays_local", "let a = null\nadd_tag(a, \"k\", \"v\")\nlet b = null\n[a.__tags.k, b.__tags]", `["v", .{}]`},
		{"tag_on_true_stays_local", "let a = true\nset_tag(a, \"k\", \"v\")\nlet b = true\n[a.__tags.k, b.__tags, a == b]", `["v", .{}, true]`},
		{"tag_on_false_literal", "add_tag(false, \"k\", \"v\")\nlet b = false\nb.__tags", ".{}"},
		{"set_proto_ref", "let p = .{ greet: func (self) { \"hi \" + self.name } }\nlet o = .{ name: \"bob\" }\nset_proto_ref(o, p)\no.greet()", "hi bob"},
		{"extend_builtin_proto", "let sp = get_proto_obj(\"string\")\nsp.shout = func (s) { s.upper() + \"!\" }\n\"hi\".shout()", "HI!"},
		{"string_methods", `"a,b".split(",").join("-")`, "a-b"},
		{"array_map", "[1, 2, 3].map(func (x) { x * 10 })", "[10, 20, 30]"},
		{"array_filter", "[1, 2, 3, 4].filter(func (x) { x % 2 == 0 })", "[2, 4]"},
		{"array_pop", "let a = [1, 2]\na.pop()\na", "[1]"},
		{"push", "let a = []\npush(a, 1, 2)\na", "[1, 2]"},
		{"keys", "keys(.{ b: 1, a: 2 })", `["b", "a"]`},
		{"num_and_str", `num("2.5") + num(str(1))`, "3.5"},
		{"json_round_trip", `json_parse(json_stringify(.{ a: [1, "x", true, null] })).a[1]`, "x"},
		{"yaml_keeps_order", "keys(yaml_parse(\"b: 1\\na: [x, y]\"))", `["b", "a"]`},
		{"yaml_values", "yaml_parse(\"b: 1\\na: [x, y]\").a[1]", "y"},
		{"sqlite", "let db = db_open(\":memory:\")\ndb_exec(db, \"create table t (id integer, name text)\")\ndb_exec(db, \"insert into t values (?, ?)\", 1, \"ann\")\nlet rows = db_query(db, \"select * from t\")\ndb_close(db)\n[rows[0].id, rows[0].name]", `[1, "ann"]`},
		{"native_object", "__zephyr_native.len([1, 2])", "2"},
		{"emit_calls_listeners", "let seen = []\nlet em = event_emitter(\"ping\")\non(em, \"ping\", func (x) { seen = seen + x })\nemit(em, \"ping\", 1)\nem.emit(\"ping\", 2)\nseen", "[1, 2]"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, run(t, tc.src))
		})
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want ErrorKind
	}{
		{"write_past_len", "let a = [1]; a[2] = 3", OutOfBounds},
		{"read_at_len", "let a = [1]; a[1]", OutOfBounds},
		{"non_number_index", "[1][true]", InvalidKey},
		{"range_step_wrong_sign", "5..1:1", RangeError},
		{"range_zero_step", "1..5:0", RangeError},
		{"range_nan_end", "0..(0/0)", RangeError},
		{"range_infinite_end", "iter(0..(1/0))", RangeError},
		{"range_nan_step", "0..5:(0/0)", RangeError},
		{"where_fails", "func f(x) where x > 0 { x }\nf(-1)", InvalidOperation},
		{"pure_calls_impure", "func g() { 1 }\nfunc pure p() { g() }\np()", TypeError},
		{"pure_sees_no_locals", "func outer() { let secret = 1\nfunc pure inner() { secret }\ninner() }\nouter()", UnknownReference},
		{"const_assignment", "const c = 1; c = 2", ConstantAssignment},
		{"redeclaration", "let x = 1; let x = 2", AlreadyDefined},
		{"unknown_name", "missing", UnknownReference},
		{"break_outside_loop", "break", Internal},
		{"return_outside_function", "return 1", Internal},
		{"predicate_must_return_boolean", "func p?() { 1 }\np?()", TypeError},
		{"ordering_non_numbers", `1 < "a"`, TypeError},
		{"undeclared_event", "let e = event_emitter(\"a\")\non(e, \"b\", func () { 1 })", UndefinedEventMessage},
		{"assert", "assert 1 > 2", AssertionFailed},
		{"iterate_number", "for i in 5 { i }", CannotIterate},
		{"tags_read_only", "let o = .{}\no.__tags = 1", InvalidOperation},
		{"serialize_function", "json_stringify(func () { 1 })", CannotCoerce},
		{"serialize_cycle", "let a = []\npush(a, a)\njson_stringify(a)", TypeError},
		{"thrown", "throw 1", Thrown},
		{"call_non_function", "let x = 1\nx()", InvalidOperation},
		{"bad_args", "add_tag(1)", TypeError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := runErr(t, tc.src)
			require.Equal(t, tc.want, err.Kind, err.Error())
		})
	}
}

func TestConstLeftUnchanged(t *testing.T) {
	e, _ := newTestEvaluator(t)
	s := e.NewModuleScope("")
	_, err := e.EvalIn("const c = 1", s)
	require.NoError(t, err)
	_, err = e.EvalIn("c = 2", s)
	require.Error(t, err)

	v, err := s.Lookup("c")
	require.NoError(t, err)
	require.Equal(t, 1.0, v.(*Number).Value)
}

func TestErrorLocation(t *testing.T) {
	err := runErr(t, "let a = 1\n\na()")
	require.Equal(t, 3, err.Location.Line)
}

func TestCatchBindsErrorObject(t *testing.T) {
	got := run(t, "try { missing } catch e { [e.kind, e.line, typeof e.message] }")
	require.Equal(t, `["UnknownReference", 1, "string"]`, got)
}

func TestPrint(t *testing.T) {
	e, out := newTestEvaluator(t)
	_, err := e.RunSource(`print("a", 1, [1, "b"], .{ k: null })`, "")
	require.NoError(t, err)
	require.Equal(t, "a 1 [1, \"b\"] .{k: null}\n", out.String())
}

func TestDebugShowsTags(t *testing.T) {
	e, out := newTestEvaluator(t)
	_, err := e.RunSource("let x = 1\nadd_tag(x, \"k\", \"v\")\ndebug x", "main.zr")
	require.NoError(t, err)
	require.Contains(t, out.String(), "main.zr:3")
	require.Contains(t, out.String(), `# {"k": "v"}`)
}

func TestMaxDepth(t *testing.T) {
	e := New(Options{Out: &bytes.Buffer{}, MaxDepth: 200})
	defer e.Close()
	_, err := e.RunSource("func f(n) { f(n + 1) }\nf(0)", "")
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, Internal, rerr.Kind)
	require.Contains(t, rerr.Message, "recursion")
}

func TestEvaluatorsAreIndependent(t *testing.T) {
	a, _ := newTestEvaluator(t)
	b, _ := newTestEvaluator(t)
	_, err := a.RunSource("let sp = get_proto_obj(\"number\")\nsp.twice = func (n) { n * 2 }", "")
	require.NoError(t, err)

	v, err := a.RunSource("let n = 4\nn.twice()", "")
	require.NoError(t, err)
	require.Equal(t, 8.0, v.(*Number).Value)

	v, err = b.RunSource("let n = 4\nn.twice", "")
	require.NoError(t, err)
	require.IsType(t, &Null{}, v)
}
