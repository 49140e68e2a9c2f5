package parser

import (
	"strings"

	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/pipeline"
	"github.com/funvibe/zephyr/internal/token"
)

// MaxRecursionDepth bounds nested expressions so hostile input cannot
// overflow the Go stack.
const MaxRecursionDepth = 2000

const (
	_ int = iota
	LOWEST
	ASSIGN      // = += -=
	TERNARY     // ? :
	OR          // ||
	AND         // &&
	EQUALS      // == != is in
	LESSGREATER // < > <= >=
	RANGE       // .. ..=
	SUM         // + -
	PRODUCT     // * / // %
	POWER       // **
	PREFIX      // -x not x $x
	POSTFIX     // x++ x--
	CALL        // f(x) a[i] a.b
)

var precedences = map[token.TokenType]int{
	token.ASSIGN:          ASSIGN,
	token.PLUS_ASSIGN:     ASSIGN,
	token.MINUS_ASSIGN:    ASSIGN,
	token.ASTERISK_ASSIGN: ASSIGN,
	token.SLASH_ASSIGN:    ASSIGN,
	token.QUESTION:        TERNARY,
	token.OR:              OR,
	token.AND:             AND,
	token.EQ:              EQUALS,
	token.NOT_EQ:          EQUALS,
	token.IS:              EQUALS,
	token.IN:              EQUALS,
	token.LT:              LESSGREATER,
	token.GT:              LESSGREATER,
	token.LTE:             LESSGREATER,
	token.GTE:             LESSGREATER,
	token.RANGE:           RANGE,
	token.RANGE_INCLUSIVE: RANGE,
	token.PLUS:            SUM,
	token.MINUS:           SUM,
	token.ASTERISK:        PRODUCT,
	token.SLASH:           PRODUCT,
	token.INT_DIV:         PRODUCT,
	token.PERCENT:         PRODUCT,
	token.POWER:           POWER,
	token.INCREMENT:       POSTFIX,
	token.DECREMENT:       POSTFIX,
	token.LPAREN:          CALL,
	token.LBRACKET:        CALL,
	token.DOT:             CALL,
}

type (
	prefixParseFn func() ast.Node
	infixParseFn  func(ast.Node) ast.Node
)

type Parser struct {
	ctx    *pipeline.PipelineContext
	tokens []token.Token
	pos    int

	curToken  token.Token
	peekToken token.Token

	prefixParseFns map[token.TokenType]prefixParseFn
	infixParseFns  map[token.TokenType]infixParseFn

	depth int
}

func New(tokens []token.Token, ctx *pipeline.PipelineContext) *Parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != token.EOF {
		tokens = append(tokens, token.Token{Type: token.EOF})
	}
	p := &Parser{ctx: ctx, tokens: tokens, pos: -2}

	p.prefixParseFns = map[token.TokenType]prefixParseFn{
		token.IDENT:           p.parseIdentifier,
		token.NUMBER:          p.parseNumberLiteral,
		token.STRING:          p.parseStringLiteral,
		token.LBRACKET:        p.parseArrayLiteral,
		token.DOT:             p.parseObjectLiteral,
		token.LPAREN:          p.parseGroupedExpression,
		token.LBRACE:          p.parseBlockExpression,
		token.FUNC:            p.parseFunctionLiteral,
		token.IF:              p.parseIfExpression,
		token.WHILE:           p.parseWhileExpression,
		token.FOR:             p.parseForExpression,
		token.TRY:             p.parseTryExpression,
		token.MATCH:           p.parseMatchExpression,
		token.TYPEOF:          p.parseTypeofExpression,
		token.MINUS:           p.parsePrefixExpression,
		token.PLUS:            p.parsePrefixExpression,
		token.BANG:            p.parsePrefixExpression,
		token.NOT:             p.parsePrefixExpression,
		token.DOLLAR:          p.parsePrefixExpression,
		token.INCREMENT:       p.parsePrefixExpression,
		token.DECREMENT:       p.parsePrefixExpression,
		token.RANGE:           p.parseOpenRange,
		token.RANGE_INCLUSIVE: p.parseOpenRange,
	}

	p.infixParseFns = map[token.TokenType]infixParseFn{
		token.PLUS:            p.parseInfixExpression,
		token.MINUS:           p.parseInfixExpression,
		token.ASTERISK:        p.parseInfixExpression,
		token.SLASH:           p.parseInfixExpression,
		token.INT_DIV:         p.parseInfixExpression,
		token.PERCENT:         p.parseInfixExpression,
		token.POWER:           p.parseInfixExpression,
		token.EQ:              p.parseInfixExpression,
		token.NOT_EQ:          p.parseInfixExpression,
		token.LT:              p.parseInfixExpression,
		token.GT:              p.parseInfixExpression,
		token.LTE:             p.parseInfixExpression,
		token.GTE:             p.parseInfixExpression,
		token.AND:             p.parseLogicalExpression,
		token.OR:              p.parseLogicalExpression,
		token.IS:              p.parseIsExpression,
		token.IN:              p.parseInExpression,
		token.RANGE:           p.parseRangeExpression,
		token.RANGE_INCLUSIVE: p.parseRangeExpression,
		token.QUESTION:        p.parseTernaryExpression,
		token.ASSIGN:          p.parseAssignExpression,
		token.PLUS_ASSIGN:     p.parseAssignExpression,
		token.MINUS_ASSIGN:    p.parseAssignExpression,
		token.ASTERISK_ASSIGN: p.parseAssignExpression,
		token.SLASH_ASSIGN:    p.parseAssignExpression,
		token.INCREMENT:       p.parsePostfixExpression,
		token.DECREMENT:       p.parsePostfixExpression,
		token.LPAREN:          p.parseCallExpression,
		token.LBRACKET:        p.parseIndexExpression,
		token.DOT:             p.parseMemberExpression,
	}

	// Read two tokens, so curToken and peekToken are both set
	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.pos++
	p.curToken = p.tokenAt(p.pos)
	p.peekToken = p.tokenAt(p.pos + 1)
}

func (p *Parser) tokenAt(i int) token.Token {
	if i < 0 {
		return token.Token{}
	}
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[i]
}

func (p *Parser) curTokenIs(t token.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t token.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t token.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.peekError(t)
	return false
}

func (p *Parser) peekError(t token.TokenType) {
	p.errorAt(p.peekToken, "expected %s, got %s", describe(t), describeToken(p.peekToken))
}

func (p *Parser) errorAt(tok token.Token, format string, args ...interface{}) {
	p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrUnexpectedToken, tok, format, args...))
}

func (p *Parser) noPrefixParseFnError(tok token.Token) {
	p.errorAt(tok, "unexpected %s", describeToken(tok))
}

// peekPrecedence reports the binding power of the next token. Calls, index
// access and postfix operators do not continue across a line break, so
// `a` followed by `(b)` on the next line stays two expressions.
func (p *Parser) peekPrecedence() int {
	if p.peekToken.NewlineBefore {
		switch p.peekToken.Type {
		case token.LPAREN, token.LBRACKET, token.INCREMENT, token.DECREMENT, token.MINUS, token.PLUS:
			return LOWEST
		}
	}
	if p.peekTokenIs(token.DOT) && p.tokenAt(p.pos+2).Type == token.LBRACE {
		return LOWEST
	}
	if prec, ok := precedences[p.peekToken.Type]; ok {
		return prec
	}
	return LOWEST
}

func (p *Parser) curPrecedence() int {
	if prec, ok := precedences[p.curToken.Type]; ok {
		return prec
	}
	return LOWEST
}

// ParseProgram parses statements until EOF.
func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{File: p.ctx.FilePath}
	for !p.curTokenIs(token.EOF) {
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt != nil {
			program.Statements = append(program.Statements, stmt)
		}
		if len(p.ctx.Errors) > 0 {
			return program
		}
		p.nextToken()
	}
	return program
}

// sourceBetween renders tokens [from, to] back into text, keeping the
// original spacing when tokens were adjacent on the same line.
func (p *Parser) sourceBetween(from, to int) string {
	var sb strings.Builder
	for i := from; i <= to && i < len(p.tokens); i++ {
		tok := p.tokens[i]
		if i > from {
			prev := p.tokens[i-1]
			if tok.Line != prev.Line || tok.Column != prev.Column+len(prev.Lexeme) {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(tok.Lexeme)
	}
	return sb.String()
}

func describe(t token.TokenType) string {
	switch t {
	case token.IDENT:
		return "identifier"
	case token.STRING:
		return "string"
	case token.NUMBER:
		return "number"
	case token.EOF:
		return "end of input"
	}
	return "'" + strings.ToLower(string(t)) + "'"
}

func describeToken(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return "'" + tok.Lexeme + "'"
}
