package modules

import (
	"os"

	"github.com/pkg/errors"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/lexer"
	"github.com/funvibe/zephyr/internal/parser"
	"github.com/funvibe/zephyr/internal/pipeline"
)

// ParseSource lexes and parses source. The first diagnostic is returned
// as the error.
func ParseSource(source, path string) (*ast.Program, error) {
	ctx := &pipeline.PipelineContext{SourceCode: source, FilePath: path}
	ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
	if len(ctx.Errors) > 0 {
		return nil, ctx.Errors[0]
	}
	return ctx.AstRoot, nil
}

// ParseFile reads and parses the file at path.
func ParseFile(path string) (*ast.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrCannotResolve, "cannot read %s: %v", path, err)
	}
	return ParseSource(string(data), path)
}

// AsDiagnostic extracts a lexer or parser diagnostic from err.
func AsDiagnostic(err error) (*diagnostics.DiagnosticError, bool) {
	var diag *diagnostics.DiagnosticError
	if errors.As(err, &diag) {
		return diag, true
	}
	return nil, false
}
