package ast

import (
	"strings"

	"github.com/funvibe/zephyr/internal/token"
)

type IfExpression struct {
	Token       token.Token
	Condition   Node
	Consequence *Block
	Alternative Node // *Block, *IfExpression or nil
}

func (ie *IfExpression) GetToken() token.Token    { return ie.Token }
func (ie *IfExpression) TokenLiteral() string     { return ie.Token.Lexeme }
func (ie *IfExpression) Location() token.Location { return location(ie.Token) }
func (ie *IfExpression) String() string {
	s := "if " + ie.Condition.String() + " " + ie.Consequence.String()
	if ie.Alternative != nil {
		s += " else " + ie.Alternative.String()
	}
	return s
}

// WhileExpression is while cond [@label] { body } [else { ... }].
type WhileExpression struct {
	Token     token.Token
	Label     string
	Condition Node
	Body      *Block
	Else      *Block
}

func (we *WhileExpression) GetToken() token.Token    { return we.Token }
func (we *WhileExpression) TokenLiteral() string     { return we.Token.Lexeme }
func (we *WhileExpression) Location() token.Location { return location(we.Token) }
func (we *WhileExpression) String() string {
	return "while " + we.Condition.String() + labelSuffix(we.Label) + " " + we.Body.String()
}

// ForExpression is for index[, value] in iterable [@label] { body } [else { ... }].
type ForExpression struct {
	Token    token.Token
	Label    string
	Index    *Identifier
	Value    *Identifier
	Iterable Node
	Body     *Block
	Else     *Block
}

func (fe *ForExpression) GetToken() token.Token    { return fe.Token }
func (fe *ForExpression) TokenLiteral() string     { return fe.Token.Lexeme }
func (fe *ForExpression) Location() token.Location { return location(fe.Token) }
func (fe *ForExpression) String() string {
	vars := fe.Index.Value
	if fe.Value != nil {
		vars += ", " + fe.Value.Value
	}
	return "for " + vars + " in " + fe.Iterable.String() + labelSuffix(fe.Label) + " " + fe.Body.String()
}

type BreakStatement struct {
	Token token.Token
	Label string
}

func (bs *BreakStatement) GetToken() token.Token    { return bs.Token }
func (bs *BreakStatement) TokenLiteral() string     { return bs.Token.Lexeme }
func (bs *BreakStatement) Location() token.Location { return location(bs.Token) }
func (bs *BreakStatement) String() string           { return "break" + labelSuffix(bs.Label) }

type ContinueStatement struct {
	Token token.Token
	Label string
}

func (cs *ContinueStatement) GetToken() token.Token    { return cs.Token }
func (cs *ContinueStatement) TokenLiteral() string     { return cs.Token.Lexeme }
func (cs *ContinueStatement) Location() token.Location { return location(cs.Token) }
func (cs *ContinueStatement) String() string           { return "continue" + labelSuffix(cs.Label) }

type ReturnStatement struct {
	Token token.Token
	Value Node // nil returns Null
}

func (rs *ReturnStatement) GetToken() token.Token    { return rs.Token }
func (rs *ReturnStatement) TokenLiteral() string     { return rs.Token.Lexeme }
func (rs *ReturnStatement) Location() token.Location { return location(rs.Token) }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "return"
	}
	return "return " + rs.Value.String()
}

// TryExpression is try { } [catch name { }] [finally { }].
type TryExpression struct {
	Token     token.Token
	Body      *Block
	CatchName *Identifier
	Catch     *Block
	Finally   *Block
}

func (te *TryExpression) GetToken() token.Token    { return te.Token }
func (te *TryExpression) TokenLiteral() string     { return te.Token.Lexeme }
func (te *TryExpression) Location() token.Location { return location(te.Token) }
func (te *TryExpression) String() string {
	s := "try " + te.Body.String()
	if te.Catch != nil {
		s += " catch " + te.CatchName.String() + " " + te.Catch.String()
	}
	if te.Finally != nil {
		s += " finally " + te.Finally.String()
	}
	return s
}

type ThrowStatement struct {
	Token token.Token
	Value Node
}

func (ts *ThrowStatement) GetToken() token.Token    { return ts.Token }
func (ts *ThrowStatement) TokenLiteral() string     { return ts.Token.Lexeme }
func (ts *ThrowStatement) Location() token.Location { return location(ts.Token) }
func (ts *ThrowStatement) String() string           { return "throw " + ts.Value.String() }

// MatchCase is one arm of a match. Operator is a comparison operator,
// "is" for enum tests or "else" for the fallback arm.
type MatchCase struct {
	Token    token.Token
	Operator string
	Value    Node
	Body     Node
}

type MatchExpression struct {
	Token   token.Token
	Subject Node
	Cases   []*MatchCase
}

func (me *MatchExpression) GetToken() token.Token    { return me.Token }
func (me *MatchExpression) TokenLiteral() string     { return me.Token.Lexeme }
func (me *MatchExpression) Location() token.Location { return location(me.Token) }
func (me *MatchExpression) String() string {
	arms := make([]string, len(me.Cases))
	for i, c := range me.Cases {
		if c.Operator == "else" {
			arms[i] = "else => " + c.Body.String()
			continue
		}
		arms[i] = c.Operator + " " + c.Value.String() + " => " + c.Body.String()
	}
	return "match " + me.Subject.String() + " { " + strings.Join(arms, ", ") + " }"
}

// AssertStatement fails with AssertionFailed when Value is not truthy.
type AssertStatement struct {
	Token   token.Token
	Value   Node
	Message Node
}

func (as *AssertStatement) GetToken() token.Token    { return as.Token }
func (as *AssertStatement) TokenLiteral() string     { return as.Token.Lexeme }
func (as *AssertStatement) Location() token.Location { return location(as.Token) }
func (as *AssertStatement) String() string           { return "assert " + as.Value.String() }

// DebugStatement prints the display form of a value and yields it.
type DebugStatement struct {
	Token token.Token
	Value Node
}

func (ds *DebugStatement) GetToken() token.Token    { return ds.Token }
func (ds *DebugStatement) TokenLiteral() string     { return ds.Token.Lexeme }
func (ds *DebugStatement) Location() token.Location { return location(ds.Token) }
func (ds *DebugStatement) String() string           { return "debug " + ds.Value.String() }

func labelSuffix(label string) string {
	if label == "" {
		return ""
	}
	return " @" + label
}
