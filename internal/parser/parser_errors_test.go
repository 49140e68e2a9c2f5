package parser_test

import (
	"strings"
	"testing"

	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/lexer"
	"github.com/funvibe/zephyr/internal/parser"
	"github.com/funvibe/zephyr/internal/pipeline"
)

// parseWithErrors runs the lexer+parser and returns all diagnostic errors.
func parseWithErrors(input string) []*diagnostics.DiagnosticError {
	ctx := &pipeline.PipelineContext{SourceCode: input}
	ctx = (&lexer.LexerProcessor{}).Process(ctx)
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	return ctx.Errors
}

// expectError asserts an error with the given code was reported.
func expectError(t *testing.T, input string, code diagnostics.ErrorCode) *diagnostics.DiagnosticError {
	t.Helper()
	errs := parseWithErrors(input)
	if len(errs) == 0 {
		t.Fatalf("expected error %s, but got none\ninput: %s", code, input)
	}
	for _, e := range errs {
		if e.Code == code {
			return e
		}
	}
	var msgs []string
	for _, e := range errs {
		msgs = append(msgs, e.Error())
	}
	t.Fatalf("expected error %s, got:\n%s\ninput: %s", code, strings.Join(msgs, "\n"), input)
	return nil
}

func TestParserErrors(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		code    diagnostics.ErrorCode
		message string
	}{
		{"missing_name", "let = 1", diagnostics.ErrUnexpectedToken, "expected identifier"},
		{"dangling_operator", "1 +", diagnostics.ErrUnexpectedToken, "unexpected end of input"},
		{"two_expressions", "a b", diagnostics.ErrUnexpectedToken, "expected end of statement"},
		{"bad_assignment_target", "1 = 2", diagnostics.ErrUnexpectedToken, "invalid assignment target"},
		{"const_without_value", "const x", diagnostics.ErrUnexpectedToken, "expected '='"},
		{"try_without_handler", "try { 1 }", diagnostics.ErrUnexpectedToken, "expected catch or finally"},
		{"unterminated_string", `"abc`, diagnostics.ErrUnexpectedToken, "not terminated"},
		{"bad_exponent", "1e+", diagnostics.ErrInvalidNumber, "invalid number"},
		{"match_arms_run_together", "match x { 1 => 2 3 => 4 }", diagnostics.ErrUnexpectedToken, "between match arms"},
		{"duplicate_parameter", "func f(a, a) { a }", diagnostics.ErrUnexpectedToken, "duplicate parameter a"},
		{"unclosed_block", "if a { 1", diagnostics.ErrUnexpectedToken, "expected '}'"},
		{"export_destructure", "export let [a] = b", diagnostics.ErrUnexpectedToken, "single name"},
		{"too_deep", strings.Repeat("(", parser.MaxRecursionDepth+10) + "1", diagnostics.ErrTooComplex, "too complex"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := expectError(t, tc.input, tc.code)
			if !strings.Contains(err.Message, tc.message) {
				t.Errorf("message %q does not contain %q", err.Message, tc.message)
			}
		})
	}
}

func TestErrorLocation(t *testing.T) {
	err := expectError(t, "let x = 1\nlet = 2", diagnostics.ErrUnexpectedToken)
	if err.Token.Line != 2 || err.Token.Column != 5 {
		t.Errorf("got %d:%d, want 2:5", err.Token.Line, err.Token.Column)
	}
}
