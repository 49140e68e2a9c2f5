package lexer

import (
	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/pipeline"
	"github.com/funvibe/zephyr/internal/token"
)

type LexerProcessor struct{}

func (lp *LexerProcessor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	l := NewWithFile(ctx.SourceCode, ctx.FilePath)
	ctx.Tokens = l.Tokenize()
	for _, tok := range ctx.Tokens {
		if tok.Type != token.ILLEGAL {
			continue
		}
		code := diagnostics.ErrUnexpectedToken
		if len(tok.Lexeme) > 0 && isDigit(rune(tok.Lexeme[0])) {
			code = diagnostics.ErrInvalidNumber
		}
		msg, _ := tok.Literal.(string)
		if msg == "" || msg == tok.Lexeme {
			msg = "unexpected character " + tok.Lexeme
		}
		ctx.Errors = append(ctx.Errors, diagnostics.NewError(code, tok, "%s", msg))
	}
	return ctx
}
