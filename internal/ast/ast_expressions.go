package ast

import (
	"strings"

	"github.com/funvibe/zephyr/internal/token"
)

// InfixExpression covers arithmetic and comparison operators.
type InfixExpression struct {
	Token    token.Token // The operator token
	Left     Node
	Operator string
	Right    Node
}

func (ie *InfixExpression) GetToken() token.Token    { return ie.Token }
func (ie *InfixExpression) TokenLiteral() string     { return ie.Token.Lexeme }
func (ie *InfixExpression) Location() token.Location { return location(ie.Token) }
func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Operator + " " + ie.Right.String() + ")"
}

// LogicalExpression is && or ||.
type LogicalExpression struct {
	Token    token.Token
	Left     Node
	Operator string
	Right    Node
}

func (le *LogicalExpression) GetToken() token.Token    { return le.Token }
func (le *LogicalExpression) TokenLiteral() string     { return le.Token.Lexeme }
func (le *LogicalExpression) Location() token.Location { return location(le.Token) }
func (le *LogicalExpression) String() string {
	return "(" + le.Left.String() + " " + le.Operator + " " + le.Right.String() + ")"
}

// PrefixExpression is a unary operator before its operand: not ! - + $ ++ --
type PrefixExpression struct {
	Token    token.Token
	Operator string
	Right    Node
}

func (pe *PrefixExpression) GetToken() token.Token    { return pe.Token }
func (pe *PrefixExpression) TokenLiteral() string     { return pe.Token.Lexeme }
func (pe *PrefixExpression) Location() token.Location { return location(pe.Token) }
func (pe *PrefixExpression) String() string {
	op := pe.Operator
	if op == "not" {
		op = "not "
	}
	return "(" + op + pe.Right.String() + ")"
}

// PostfixExpression is x++ or x--.
type PostfixExpression struct {
	Token    token.Token
	Operator string
	Left     Node
}

func (pe *PostfixExpression) GetToken() token.Token    { return pe.Token }
func (pe *PostfixExpression) TokenLiteral() string     { return pe.Token.Lexeme }
func (pe *PostfixExpression) Location() token.Location { return location(pe.Token) }
func (pe *PostfixExpression) String() string           { return "(" + pe.Left.String() + pe.Operator + ")" }

// AssignExpression is target = value, or a compound form such as +=.
type AssignExpression struct {
	Token    token.Token
	Target   Node // *Identifier or *MemberExpression
	Operator string
	Value    Node
}

func (ae *AssignExpression) GetToken() token.Token    { return ae.Token }
func (ae *AssignExpression) TokenLiteral() string     { return ae.Token.Lexeme }
func (ae *AssignExpression) Location() token.Location { return location(ae.Token) }
func (ae *AssignExpression) String() string {
	return ae.Target.String() + " " + ae.Operator + " " + ae.Value.String()
}

// MemberExpression is a.b (Computed false) or a[b] (Computed true).
type MemberExpression struct {
	Token    token.Token
	Object   Node
	Property Node
	Computed bool
}

func (me *MemberExpression) GetToken() token.Token    { return me.Token }
func (me *MemberExpression) TokenLiteral() string     { return me.Token.Lexeme }
func (me *MemberExpression) Location() token.Location { return location(me.Token) }
func (me *MemberExpression) String() string {
	if me.Computed {
		return me.Object.String() + "[" + me.Property.String() + "]"
	}
	return me.Object.String() + "." + me.Property.String()
}

type CallExpression struct {
	Token     token.Token // The '(' token
	Function  Node
	Arguments []Node
}

func (ce *CallExpression) GetToken() token.Token    { return ce.Token }
func (ce *CallExpression) TokenLiteral() string     { return ce.Token.Lexeme }
func (ce *CallExpression) Location() token.Location { return location(ce.Token) }
func (ce *CallExpression) String() string {
	return ce.Function.String() + "(" + joinNodes(ce.Arguments, ", ") + ")"
}

// WhereClause is a guard evaluated in the callee scope before the body.
type WhereClause struct {
	Token  token.Token
	Test   Node
	Source string
}

func (wc *WhereClause) GetToken() token.Token    { return wc.Token }
func (wc *WhereClause) TokenLiteral() string     { return wc.Token.Lexeme }
func (wc *WhereClause) Location() token.Location { return location(wc.Token) }
func (wc *WhereClause) String() string {
	if wc.Source != "" {
		return wc.Source
	}
	return wc.Test.String()
}

// FunctionLiteral is func [pure] [name][(params)] [where ...] { body }.
type FunctionLiteral struct {
	Token      token.Token // The 'func' token
	Name       *Identifier
	Parameters []*Identifier
	Where      []*WhereClause
	Pure       bool
	Body       *Block
}

func (fl *FunctionLiteral) GetToken() token.Token    { return fl.Token }
func (fl *FunctionLiteral) TokenLiteral() string     { return fl.Token.Lexeme }
func (fl *FunctionLiteral) Location() token.Location { return location(fl.Token) }
func (fl *FunctionLiteral) String() string {
	var sb strings.Builder
	sb.WriteString("func ")
	if fl.Pure {
		sb.WriteString("pure ")
	}
	if fl.Name != nil {
		sb.WriteString(fl.Name.Value)
	}
	params := make([]string, len(fl.Parameters))
	for i, p := range fl.Parameters {
		params[i] = p.Value
	}
	sb.WriteString("(" + strings.Join(params, ", ") + ") ")
	sb.WriteString(fl.Body.String())
	return sb.String()
}

// RangeExpression is start..end, start..=end, optionally followed by :step.
type RangeExpression struct {
	Token     token.Token
	Start     Node
	End       Node
	Step      Node
	Inclusive bool
}

func (re *RangeExpression) GetToken() token.Token    { return re.Token }
func (re *RangeExpression) TokenLiteral() string     { return re.Token.Lexeme }
func (re *RangeExpression) Location() token.Location { return location(re.Token) }
func (re *RangeExpression) String() string {
	op := ".."
	if re.Inclusive {
		op = "..="
	}
	s := re.Start.String() + op + re.End.String()
	if re.Step != nil {
		s += ":" + re.Step.String()
	}
	return s
}

// TernaryExpression is cond ? a : b.
type TernaryExpression struct {
	Token       token.Token
	Condition   Node
	Consequence Node
	Alternative Node
}

func (te *TernaryExpression) GetToken() token.Token    { return te.Token }
func (te *TernaryExpression) TokenLiteral() string     { return te.Token.Lexeme }
func (te *TernaryExpression) Location() token.Location { return location(te.Token) }
func (te *TernaryExpression) String() string {
	return "(" + te.Condition.String() + " ? " + te.Consequence.String() + " : " + te.Alternative.String() + ")"
}

// IsExpression tests an enum variant against an enum member: x is Color.Red
type IsExpression struct {
	Token token.Token
	Left  Node
	Right Node
}

func (ie *IsExpression) GetToken() token.Token    { return ie.Token }
func (ie *IsExpression) TokenLiteral() string     { return ie.Token.Lexeme }
func (ie *IsExpression) Location() token.Location { return location(ie.Token) }
func (ie *IsExpression) String() string           { return "(" + ie.Left.String() + " is " + ie.Right.String() + ")" }

// InExpression tests membership: key in object, item in array, sub in string.
type InExpression struct {
	Token token.Token
	Left  Node
	Right Node
}

func (ie *InExpression) GetToken() token.Token    { return ie.Token }
func (ie *InExpression) TokenLiteral() string     { return ie.Token.Lexeme }
func (ie *InExpression) Location() token.Location { return location(ie.Token) }
func (ie *InExpression) String() string           { return "(" + ie.Left.String() + " in " + ie.Right.String() + ")" }

type TypeofExpression struct {
	Token token.Token
	Value Node
}

func (te *TypeofExpression) GetToken() token.Token    { return te.Token }
func (te *TypeofExpression) TokenLiteral() string     { return te.Token.Lexeme }
func (te *TypeofExpression) Location() token.Location { return location(te.Token) }
func (te *TypeofExpression) String() string           { return "typeof " + te.Value.String() }
