package parser

import (
	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/diagnostics"
	"github.com/funvibe/zephyr/internal/token"
)

func (p *Parser) parseExpression(precedence int) ast.Node {
	p.depth++
	defer func() { p.depth-- }()

	if p.depth > MaxRecursionDepth {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(
			diagnostics.ErrTooComplex,
			p.curToken,
			"expression too complex: recursion depth limit exceeded",
		))
		return nil
	}

	prefix := p.prefixParseFns[p.curToken.Type]
	if prefix == nil {
		p.noPrefixParseFnError(p.curToken)
		return nil
	}
	leftExp := prefix()

	for leftExp != nil && precedence < p.peekPrecedence() {
		infix := p.infixParseFns[p.peekToken.Type]
		if infix == nil {
			return leftExp
		}
		p.nextToken()
		leftExp = infix(leftExp)
	}
	return leftExp
}

func (p *Parser) parseIdentifier() ast.Node {
	return &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
}

func (p *Parser) parseNumberLiteral() ast.Node {
	value, ok := p.curToken.Literal.(float64)
	if !p.curTokenIs(token.NUMBER) || !ok {
		p.ctx.Errors = append(p.ctx.Errors, diagnostics.NewError(diagnostics.ErrInvalidNumber, p.curToken, "invalid number %s", p.curToken.Lexeme))
		return nil
	}
	return &ast.NumberLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseStringLiteral() ast.Node {
	value, _ := p.curToken.Literal.(string)
	return &ast.StringLiteral{Token: p.curToken, Value: value}
}

func (p *Parser) parseArrayLiteral() ast.Node {
	arr := &ast.ArrayLiteral{Token: p.curToken}
	items, ok := p.parseExpressionList(token.RBRACKET)
	if !ok {
		return nil
	}
	arr.Items = items
	return arr
}

// parseExpressionList parses comma-separated expressions up to end.
// A trailing comma is allowed.
func (p *Parser) parseExpressionList(end token.TokenType) ([]ast.Node, bool) {
	var list []ast.Node
	if p.peekTokenIs(end) {
		p.nextToken()
		return list, true
	}
	for {
		p.nextToken()
		item := p.parseExpression(LOWEST)
		if item == nil {
			return nil, false
		}
		list = append(list, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
		if p.peekTokenIs(end) {
			break
		}
	}
	if !p.expectPeek(end) {
		return nil, false
	}
	return list, true
}

// parseObjectLiteral parses .{ key: value, "quoted key": value }.
func (p *Parser) parseObjectLiteral() ast.Node {
	obj := &ast.ObjectLiteral{Token: p.curToken}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) {
		p.nextToken()
		var key string
		switch p.curToken.Type {
		case token.IDENT:
			key = p.curToken.Lexeme
		case token.STRING:
			key = p.curToken.Literal.(string)
		case token.NUMBER:
			key = p.curToken.Lexeme
		default:
			p.errorAt(p.curToken, "expected object key, got %s", describeToken(p.curToken))
			return nil
		}
		keyTok := p.curToken
		var value ast.Node
		if p.peekTokenIs(token.COLON) {
			p.nextToken()
			p.nextToken()
			value = p.parseExpression(LOWEST)
			if value == nil {
				return nil
			}
		} else if keyTok.Type == token.IDENT {
			// .{ x } is shorthand for .{ x: x }
			value = &ast.Identifier{Token: keyTok, Value: key}
		} else {
			p.peekError(token.COLON)
			return nil
		}
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, value)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	if !p.expectPeek(token.RBRACE) {
		return nil
	}
	return obj
}

func (p *Parser) parseGroupedExpression() ast.Node {
	p.nextToken()
	exp := p.parseExpression(LOWEST)
	if exp == nil || !p.expectPeek(token.RPAREN) {
		return nil
	}
	return exp
}

func (p *Parser) parseBlockExpression() ast.Node {
	block := p.parseBlock()
	if block == nil {
		return nil
	}
	return block
}

func (p *Parser) parsePrefixExpression() ast.Node {
	expression := &ast.PrefixExpression{Token: p.curToken, Operator: p.curToken.Lexeme}
	p.nextToken()
	expression.Right = p.parseExpression(PREFIX)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parsePostfixExpression(left ast.Node) ast.Node {
	return &ast.PostfixExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
}

func (p *Parser) parseTypeofExpression() ast.Node {
	expression := &ast.TypeofExpression{Token: p.curToken}
	p.nextToken()
	expression.Value = p.parseExpression(PREFIX)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInfixExpression(left ast.Node) ast.Node {
	expression := &ast.InfixExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
	precedence := p.curPrecedence()
	if p.curTokenIs(token.POWER) {
		// right associative
		precedence--
	}
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseLogicalExpression(left ast.Node) ast.Node {
	expression := &ast.LogicalExpression{Token: p.curToken, Operator: p.curToken.Lexeme, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseIsExpression(left ast.Node) ast.Node {
	expression := &ast.IsExpression{Token: p.curToken, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseInExpression(left ast.Node) ast.Node {
	expression := &ast.InExpression{Token: p.curToken, Left: left}
	precedence := p.curPrecedence()
	p.nextToken()
	expression.Right = p.parseExpression(precedence)
	if expression.Right == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseTernaryExpression(condition ast.Node) ast.Node {
	expression := &ast.TernaryExpression{Token: p.curToken, Condition: condition}
	p.nextToken()
	expression.Consequence = p.parseExpression(TERNARY)
	if expression.Consequence == nil || !p.expectPeek(token.COLON) {
		return nil
	}
	p.nextToken()
	// right associative: a ? b : c ? d : e
	expression.Alternative = p.parseExpression(TERNARY - 1)
	if expression.Alternative == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseAssignExpression(target ast.Node) ast.Node {
	switch target.(type) {
	case *ast.Identifier, *ast.MemberExpression:
	default:
		p.errorAt(p.curToken, "invalid assignment target %s", target.String())
		return nil
	}
	expression := &ast.AssignExpression{Token: p.curToken, Target: target, Operator: p.curToken.Lexeme}
	p.nextToken()
	// right associative: a = b = c
	expression.Value = p.parseExpression(ASSIGN - 1)
	if expression.Value == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseRangeExpression(start ast.Node) ast.Node {
	expression := &ast.RangeExpression{Token: p.curToken, Start: start, Inclusive: p.curTokenIs(token.RANGE_INCLUSIVE)}
	p.nextToken()
	expression.End = p.parseExpression(RANGE)
	if expression.End == nil {
		return nil
	}
	return p.parseRangeStep(expression)
}

// parseOpenRange handles ..end, which starts at zero.
func (p *Parser) parseOpenRange() ast.Node {
	tok := p.curToken
	zero := &ast.NumberLiteral{Token: token.Token{Type: token.NUMBER, Lexeme: "0", Literal: 0.0, Line: tok.Line, Column: tok.Column, File: tok.File}}
	return p.parseRangeExpression(zero)
}

func (p *Parser) parseRangeStep(expression *ast.RangeExpression) ast.Node {
	if !p.peekTokenIs(token.COLON) {
		return expression
	}
	p.nextToken()
	p.nextToken()
	expression.Step = p.parseExpression(RANGE)
	if expression.Step == nil {
		return nil
	}
	return expression
}

func (p *Parser) parseIndexExpression(left ast.Node) ast.Node {
	expression := &ast.MemberExpression{Token: p.curToken, Object: left, Computed: true}
	p.nextToken()
	expression.Property = p.parseExpression(LOWEST)
	if expression.Property == nil || !p.expectPeek(token.RBRACKET) {
		return nil
	}
	return expression
}

func (p *Parser) parseMemberExpression(left ast.Node) ast.Node {
	expression := &ast.MemberExpression{Token: p.curToken, Object: left}
	p.nextToken()
	// Keywords are valid property names: a.is, a.in
	if p.curTokenIs(token.IDENT) || token.LookupIdent(p.curToken.Lexeme) != token.IDENT {
		expression.Property = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
		return expression
	}
	p.errorAt(p.curToken, "expected property name, got %s", describeToken(p.curToken))
	return nil
}
