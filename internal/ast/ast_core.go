package ast

import (
	"strconv"
	"strings"

	"github.com/funvibe/zephyr/internal/token"
)

// TokenProvider is an interface for any AST node that can provide its primary token.
// This is useful for error reporting.
type TokenProvider interface {
	GetToken() token.Token
}

// Node is the base interface for all AST nodes. Every construct in the
// language is an expression, so there is no separate statement kind.
type Node interface {
	TokenProvider
	TokenLiteral() string
	Location() token.Location
	String() string
}

func location(t token.Token) token.Location { return t.Location() }

// Program is the root node of every AST our parser produces.
type Program struct {
	File       string
	Statements []Node
}

func (p *Program) GetToken() token.Token {
	if p == nil || len(p.Statements) == 0 {
		return token.Token{File: p.fileName()}
	}
	return p.Statements[0].GetToken()
}
func (p *Program) fileName() string {
	if p == nil {
		return ""
	}
	return p.File
}
func (p *Program) TokenLiteral() string     { return p.GetToken().Lexeme }
func (p *Program) Location() token.Location { return location(p.GetToken()) }
func (p *Program) String() string           { return joinNodes(p.Statements, "; ") }

// Block is a brace-delimited sequence evaluated in its own scope.
type Block struct {
	Token      token.Token // The '{' token
	Statements []Node
}

func (b *Block) GetToken() token.Token {
	if b == nil {
		return token.Token{}
	}
	return b.Token
}
func (b *Block) TokenLiteral() string     { return b.Token.Lexeme }
func (b *Block) Location() token.Location { return location(b.Token) }
func (b *Block) String() string           { return "{ " + joinNodes(b.Statements, "; ") + " }" }

type NumberLiteral struct {
	Token token.Token
	Value float64
}

func (n *NumberLiteral) GetToken() token.Token    { return n.Token }
func (n *NumberLiteral) TokenLiteral() string     { return n.Token.Lexeme }
func (n *NumberLiteral) Location() token.Location { return location(n.Token) }
func (n *NumberLiteral) String() string {
	return strconv.FormatFloat(n.Value, 'f', -1, 64)
}

type StringLiteral struct {
	Token token.Token
	Value string
}

func (s *StringLiteral) GetToken() token.Token    { return s.Token }
func (s *StringLiteral) TokenLiteral() string     { return s.Token.Lexeme }
func (s *StringLiteral) Location() token.Location { return location(s.Token) }
func (s *StringLiteral) String() string           { return strconv.Quote(s.Value) }

type Identifier struct {
	Token token.Token
	Value string
}

func (i *Identifier) GetToken() token.Token {
	if i == nil {
		return token.Token{}
	}
	return i.Token
}
func (i *Identifier) TokenLiteral() string     { return i.Token.Lexeme }
func (i *Identifier) Location() token.Location { return location(i.Token) }
func (i *Identifier) String() string           { return i.Value }

type ArrayLiteral struct {
	Token token.Token // The '[' token
	Items []Node
}

func (a *ArrayLiteral) GetToken() token.Token    { return a.Token }
func (a *ArrayLiteral) TokenLiteral() string     { return a.Token.Lexeme }
func (a *ArrayLiteral) Location() token.Location { return location(a.Token) }
func (a *ArrayLiteral) String() string           { return "[" + joinNodes(a.Items, ", ") + "]" }

// ObjectLiteral is written .{ key: value, ... }. Keys keep source order.
type ObjectLiteral struct {
	Token  token.Token
	Keys   []string
	Values []Node
}

func (o *ObjectLiteral) GetToken() token.Token    { return o.Token }
func (o *ObjectLiteral) TokenLiteral() string     { return o.Token.Lexeme }
func (o *ObjectLiteral) Location() token.Location { return location(o.Token) }
func (o *ObjectLiteral) String() string {
	parts := make([]string, len(o.Keys))
	for i, k := range o.Keys {
		parts[i] = k + ": " + o.Values[i].String()
	}
	return ".{ " + strings.Join(parts, ", ") + " }"
}

// Declaration binds one name, or destructures an array into several.
// let x = 1, const y = 2, let [a, b] = pair
type Declaration struct {
	Token   token.Token // 'let' or 'const'
	Const   bool
	Name    *Identifier
	Pattern []*Identifier
	Value   Node // nil means Null
}

func (d *Declaration) GetToken() token.Token    { return d.Token }
func (d *Declaration) TokenLiteral() string     { return d.Token.Lexeme }
func (d *Declaration) Location() token.Location { return location(d.Token) }
func (d *Declaration) String() string {
	var sb strings.Builder
	sb.WriteString(d.Token.Lexeme + " ")
	if d.Name != nil {
		sb.WriteString(d.Name.Value)
	} else {
		names := make([]string, len(d.Pattern))
		for i, p := range d.Pattern {
			names[i] = p.Value
		}
		sb.WriteString("[" + strings.Join(names, ", ") + "]")
	}
	if d.Value != nil {
		sb.WriteString(" = " + d.Value.String())
	}
	return sb.String()
}

func joinNodes(nodes []Node, sep string) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.String()
	}
	return strings.Join(parts, sep)
}
