package parser

import (
	"github.com/funvibe/zephyr/internal/ast"
	"github.com/funvibe/zephyr/internal/token"
)

func (p *Parser) parseStatement() ast.Node {
	var stmt ast.Node
	switch p.curToken.Type {
	case token.LET, token.CONST:
		stmt = p.parseDeclaration()
	case token.RETURN:
		stmt = p.parseReturnStatement()
	case token.BREAK:
		stmt = &ast.BreakStatement{Token: p.curToken, Label: p.parseOptionalLabel()}
	case token.CONTINUE:
		stmt = &ast.ContinueStatement{Token: p.curToken, Label: p.parseOptionalLabel()}
	case token.THROW:
		tok := p.curToken
		p.nextToken()
		stmt = &ast.ThrowStatement{Token: tok, Value: p.parseExpression(LOWEST)}
	case token.IMPORT, token.FROM:
		stmt = p.parseImportStatement()
	case token.EXPORT:
		stmt = p.parseExportStatement()
	case token.ENUM:
		stmt = p.parseEnumDeclaration()
	case token.ASSERT:
		stmt = p.parseAssertStatement()
	case token.DEBUG:
		tok := p.curToken
		p.nextToken()
		stmt = &ast.DebugStatement{Token: tok, Value: p.parseExpression(LOWEST)}
	default:
		stmt = p.parseExpression(LOWEST)
	}
	if stmt == nil || len(p.ctx.Errors) > 0 {
		return nil
	}
	if !p.atStatementEnd() {
		p.errorAt(p.peekToken, "expected end of statement, got %s", describeToken(p.peekToken))
		return nil
	}
	return stmt
}

// atStatementEnd reports whether the next token may start a new statement.
// A statement that ends in a closing brace may be followed directly by
// the next one.
func (p *Parser) atStatementEnd() bool {
	switch p.peekToken.Type {
	case token.SEMICOLON, token.RBRACE, token.EOF:
		return true
	}
	return p.peekToken.NewlineBefore || p.curTokenIs(token.RBRACE)
}

func (p *Parser) parseOptionalLabel() string {
	if p.peekTokenIs(token.LABEL) && !p.peekToken.NewlineBefore {
		p.nextToken()
		return p.curToken.Lexeme[1:]
	}
	return ""
}

func (p *Parser) parseDeclaration() ast.Node {
	decl := &ast.Declaration{Token: p.curToken, Const: p.curTokenIs(token.CONST)}

	if p.peekTokenIs(token.LBRACKET) {
		p.nextToken()
		for !p.peekTokenIs(token.RBRACKET) {
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			decl.Pattern = append(decl.Pattern, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
			if !p.peekTokenIs(token.COMMA) {
				break
			}
			p.nextToken()
		}
		if !p.expectPeek(token.RBRACKET) {
			return nil
		}
	} else {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		decl.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	}

	if !p.peekTokenIs(token.ASSIGN) {
		if decl.Const {
			p.peekError(token.ASSIGN)
			return nil
		}
		return decl
	}
	p.nextToken()
	p.nextToken()
	decl.Value = p.parseExpression(LOWEST)
	if decl.Value == nil {
		return nil
	}
	return decl
}

func (p *Parser) parseReturnStatement() ast.Node {
	stmt := &ast.ReturnStatement{Token: p.curToken}
	if p.atStatementEnd() {
		return stmt
	}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	return stmt
}

// parseImportStatement handles both
//
//	import "path" as name
//	from "path" import a, b as c
func (p *Parser) parseImportStatement() ast.Node {
	stmt := &ast.ImportStatement{Token: p.curToken}

	if p.curTokenIs(token.IMPORT) {
		if !p.expectPeek(token.STRING) {
			return nil
		}
		stmt.Path = p.curToken.Literal.(string)
		if !p.expectPeek(token.AS) || !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.StarAlias = p.curToken.Lexeme
		return stmt
	}

	if !p.expectPeek(token.STRING) {
		return nil
	}
	stmt.Path = p.curToken.Literal.(string)
	if !p.expectPeek(token.IMPORT) {
		return nil
	}
	for {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		item := ast.ImportItem{Name: p.curToken.Lexeme, Alias: p.curToken.Lexeme}
		if p.peekTokenIs(token.AS) {
			p.nextToken()
			if !p.expectPeek(token.IDENT) {
				return nil
			}
			item.Alias = p.curToken.Lexeme
		}
		stmt.Items = append(stmt.Items, item)
		if !p.peekTokenIs(token.COMMA) {
			break
		}
		p.nextToken()
	}
	return stmt
}

func (p *Parser) parseExportStatement() ast.Node {
	stmt := &ast.ExportStatement{Token: p.curToken}
	p.nextToken()

	switch p.curToken.Type {
	case token.LET, token.CONST:
		decl, ok := p.parseDeclaration().(*ast.Declaration)
		if !ok || decl == nil {
			return nil
		}
		if decl.Name == nil {
			p.errorAt(decl.Token, "can only export declarations with a single name")
			return nil
		}
		stmt.Declaration = decl
	case token.IDENT:
		stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	default:
		p.errorAt(p.curToken, "cannot export %s", describeToken(p.curToken))
		return nil
	}

	if p.peekTokenIs(token.AS) {
		p.nextToken()
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Alias = p.curToken.Lexeme
	}
	return stmt
}

func (p *Parser) parseEnumDeclaration() ast.Node {
	stmt := &ast.EnumDeclaration{Token: p.curToken}
	if !p.expectPeek(token.IDENT) {
		return nil
	}
	stmt.Name = &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme}
	if !p.expectPeek(token.LBRACE) {
		return nil
	}
	for !p.peekTokenIs(token.RBRACE) {
		if !p.expectPeek(token.IDENT) {
			return nil
		}
		stmt.Variants = append(stmt.Variants, &ast.Identifier{Token: p.curToken, Value: p.curToken.Lexeme})
		if p.peekTokenIs(token.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken()
	return stmt
}

func (p *Parser) parseAssertStatement() ast.Node {
	stmt := &ast.AssertStatement{Token: p.curToken}
	p.nextToken()
	stmt.Value = p.parseExpression(LOWEST)
	if stmt.Value == nil {
		return nil
	}
	if p.peekTokenIs(token.COMMA) {
		p.nextToken()
		p.nextToken()
		stmt.Message = p.parseExpression(LOWEST)
	}
	return stmt
}

// parseBlock parses { statements } with curToken on '{'. curToken ends on '}'.
func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{Token: p.curToken}
	p.nextToken()

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			p.errorAt(p.curToken, "expected '}', got end of input")
			return nil
		}
		if p.curTokenIs(token.SEMICOLON) {
			p.nextToken()
			continue
		}
		stmt := p.parseStatement()
		if stmt == nil {
			return nil
		}
		block.Statements = append(block.Statements, stmt)
		p.nextToken()
	}
	return block
}
