package parser

import (
	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/token"
)

// parseFunctionLiteral parses
//
//	func [pure] [name][(params)] [where cond, ...] { body }
//
// A parameter may carry a predicate, `n: positive?` or `n: above?(0)`,
// which becomes the where clause `positive?(n)` or `above?(n, 0)`.
func (p *Parser) parseFunctionLiteral() ast.Node {
	fn := &ast.FunctionLiteral{Token: p.curToken}

	if p.peekTokenIs(token.PURE) {
		p.nextToken()
		fn.Pure = true
	}
	if p.peekTokenIs(token.IDENT) {
		p.nextToken()
		fn.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		if !p.parseFunctionParameters(fn) {
			return nil
		}
	}
	if p.peekTokenIs(token.WHERE) {
		p.nextToken()
		for {
			p.nextToken()
			start := p.pos
			tok := p.curToken
			test := p.parseExpression(LOWEST)
			if test == nil {
				return nil
			}
			fn.Where = append(fn.Where, &ast.WhereClause{Token: tok, Test: test, Source: p.sourceBetween(start, p.pos)})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	fn.Body = p.parseBlock()
	if fn.Body == nil {
		return nil
	}
	return fn
}

func (p *Parser) parseFunctionParameters(fn *ast.FunctionLiteral) bool {
	seen := map[string]bool{}
	for !p.peekTokenIs(token.RPAREN) {
		if !p.expectPeek(token.IDENT) {
			return false
		}
		param := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if param.Value != "_" && seen[param.Value] {
			p.errorAt(p.curToken, "duplicate parameter %s", param.Value)
			return false
		}
		seen[param.Value] = true
		fn.Parameters = append(fn.Parameters, param)

		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			clause := p.parseParameterPredicate(param)
			if clause == nil {
				return false
			}
			fn.Where = append(fn.Where, clause)
		}
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return p.expectPeek(token.RPAREN)
}

func (p *Parser) parseParameterPredicate(param *ast.Identifier) *ast.WhereClause {
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	start := p.pos
	predicate := &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	call := &ast.CallExpression{Token: p.curToken, Function: predicate, Arguments: []ast.Node{param}}
	if p.peekTokenIs(token.LPAREN) {
		p.nextToken()
		extra, ok := p.parseExpressionList(token.RPAREN)
		if !ok {
			return nil
		}
		call.Arguments = append(call.Arguments, extra...)
	}
	return &ast.WhereClause{Token: predicate.Token, Test: call, Source: param.Value + ": " + p.sourceBetween(start, p.pos)}
}

func (p *Parser) parseCallExpression(function ast.Node) ast.Node {
	call := &ast.CallExpression{Token: p.curToken, Function: function}
	args, ok := p.parseExpressionList(token.RPAREN)
	if !ok {
		return nil
	}
	call.Arguments = args
	return call
}
