package parser

import (
	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/token"
)

func (p *Parser) parseIfExpression() ast.Node {
	expression := &ast.IfExpression{Token: p.curToken}
	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Consequence = p.parseBlock()
	if expression.Consequence == nil {
		return nil
	}

	if !p.peekTokenIs(token.ELSE) {
		return expression
	}
	p.nextToken()
	if p.peekTokenIs(token.IF) {
		p.nextToken()
		alt := p.parseIfExpression()
		if alt == nil {
			return nil
		}
		expression.Alternative = alt
		return expression
	}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	alt := p.parseBlock()
	if alt == nil {
		return nil
	}
	expression.Alternative = alt
	return expression
}

func (p *Parser) parseWhileExpression() ast.Node {
	expression := &ast.WhileExpression{Token: p.curToken}
	p.nextToken()
	expression.Condition = p.parseExpression(LOWEST)
	if expression.Condition == nil {
		return nil
	}
	expression.Label = p.parseOptionalLabel()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlock()
	if expression.Body == nil {
		return nil
	}
	var ok bool
	if expression.Else, ok = p.parseLoopElse(); !ok {
		return nil
	}
	return expression
}

func (p *Parser) parseForExpression() ast.Node {
	expression := &ast.ForExpression{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	expression.Index = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		expression.Value = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}
	if !p.expectPeek(token.IN) {
		return nil
	}
	p.nextToken()
	expression.Iterable = p.parseExpression(LOWEST)
	if expression.Iterable == nil {
		return nil
	}
	expression.Label = p.parseOptionalLabel()
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlock()
	if expression.Body == nil {
		return nil
	}
	var ok bool
	if expression.Else, ok = p.parseLoopElse(); !ok {
		return nil
	}
	return expression
}

// parseLoopElse parses the optional else block of a loop.
func (p *Parser) parseLoopElse() (*ast.Block, bool) {
	if !p.peekTokenIs(token.ELSE) {
		return nil, true
	}
	p.nextToken()
	if !p.expectPeek(token.LBRACE) {
		return nil, false
	}
	block := p.parseBlock()
	return block, block != nil
}

func (p *Parser) parseTryExpression() ast.Node {
	expression := &ast.TryExpression{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	expression.Body = p.parseBlock()
	if expression.Body == nil {
		return nil
	}

	if p.peekTokenIs(token.CATCH) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		expression.CatchName = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		expression.Catch = p.parseBlock()
		if expression.Catch == nil {
			return nil
		}
	}
	if p.peekTokenIs(token.FINALLY) {
		p.nextToken()
		if !p.expectPeek(token.LBRACE) {
			return nil
		}
		expression.Finally = p.parseBlock()
		if expression.Finally == nil {
			return nil
		}
	}
	if expression.Catch == nil && expression.Finally == nil {
		p.errorAt(p.peekToken, "expected catch or finally after try block")
		return nil
	}
	return expression
}

var matchOperators = map[token.TokenType]bool{
	token.EQ:     true,
	token.NOT_EQ: true,
	token.LT:     true,
	token.GT:     true,
	token.LTE:    true,
	token.GTE:    true,
}

// parseMatchExpression parses
//
//	match subject {
//		[op] value => body,
//		is Enum.Variant => body,
//		else => body
//	}
func (p *Parser) parseMatchExpression() ast.Node {
	expression := &ast.MatchExpression{Token: p.curToken}
	p.nextToken()
	expression.Subject = p.parseExpression(LOWEST)
	if expression.Subject == nil || !p.expectPeek(token.LBRACE) {
		return nil
	}

	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		arm := &ast.MatchCase{Token: p.curToken, Operator: "=="}
		switch {
		case p.curTokenIs(token.ELSE):
			arm.Operator = "else"
		case p.curTokenIs(token.IS):
			arm.Operator = "is"
			p.nextToken()
		case matchOperators[p.curToken.Type]:
			arm.Operator = p.curToken.Lexeme
			p.nextToken()
		}
		if arm.Operator != "else" {
			arm.Value = p.parseExpression(LOWEST)
			if arm.Value == nil {
				return nil
			}
		}
		if !p.expectPeek(token.FAT_ARROW) {
			return nil
		}
		p.nextToken()
		arm.Body = p.parseExpression(LOWEST)
		if arm.Body == nil {
			return nil
		}
		expression.Cases = append(expression.Cases, arm)

		if p.peekTokenIs(token.COMMA) || p.peekTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		if !p.peekTokenIs(token.RBRACE) && !p.peekToken.NewlineBefore {
			p.errorAt(p.peekToken, "expected ',' or new line between match arms, got %s", describeToken(p.peekToken))
			return nil
		}
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return expression
}
