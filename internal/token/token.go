package token

import "fmt"

type TokenType string

type Token struct {
	Type    TokenType
	Lexeme  string
	Literal interface{}
	Line    int
	Column  int
	File    string

	// NewlineBefore is set when a line break separates this token from the previous one.
	NewlineBefore bool
}

// Location pins a node or error to a place in the source.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) IsZero() bool {
	return l.Line == 0 && l.Column == 0
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

func (t Token) Location() Location {
	return Location{File: t.File, Line: t.Line, Column: t.Column}
}

const (
	ILLEGAL = "ILLEGAL"
	EOF     = "EOF"

	IDENT  = "IDENT"
	LABEL  = "LABEL" // @outer
	NUMBER = "NUMBER"
	STRING = "STRING"

	ASSIGN          = "="
	PLUS_ASSIGN     = "+="
	MINUS_ASSIGN    = "-="
	ASTERISK_ASSIGN = "*="
	SLASH_ASSIGN    = "/="

	PLUS      = "+"
	MINUS     = "-"
	ASTERISK  = "*"
	POWER     = "**"
	SLASH     = "/"
	INT_DIV   = "//"
	PERCENT   = "%"
	INCREMENT = "++"
	DECREMENT = "--"
	DOLLAR    = "$"
	BANG      = "!"

	EQ     = "=="
	NOT_EQ = "!="
	LT     = "<"
	GT     = ">"
	LTE    = "<="
	GTE    = ">="

	AND = "&&"
	OR  = "||"

	RANGE           = ".."
	RANGE_INCLUSIVE = "..="
	FAT_ARROW       = "=>"

	COMMA     = ","
	DOT       = "."
	COLON     = ":"
	SEMICOLON = ";"
	QUESTION  = "?"

	LPAREN   = "("
	RPAREN   = ")"
	LBRACE   = "{"
	RBRACE   = "}"
	LBRACKET = "["
	RBRACKET = "]"

	// Keywords
	LET      = "LET"
	CONST    = "CONST"
	FUNC     = "FUNC"
	PURE     = "PURE"
	WHERE    = "WHERE"
	RETURN   = "RETURN"
	IF       = "IF"
	ELSE     = "ELSE"
	WHILE    = "WHILE"
	FOR      = "FOR"
	IN       = "IN"
	BREAK    = "BREAK"
	CONTINUE = "CONTINUE"
	TRY      = "TRY"
	CATCH    = "CATCH"
	FINALLY  = "FINALLY"
	THROW    = "THROW"
	IMPORT   = "IMPORT"
	EXPORT   = "EXPORT"
	FROM     = "FROM"
	AS       = "AS"
	MATCH    = "MATCH"
	ENUM     = "ENUM"
	IS       = "IS"
	NOT      = "NOT"
	TYPEOF   = "TYPEOF"
	ASSERT   = "ASSERT"
	DEBUG    = "DEBUG"
)

var keywords = map[string]TokenType{
	"let":      LET,
	"const":    CONST,
	"func":     FUNC,
	"pure":     PURE,
	"where":    WHERE,
	"return":   RETURN,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"for":      FOR,
	"in":       IN,
	"break":    BREAK,
	"continue": CONTINUE,
	"try":      TRY,
	"catch":    CATCH,
	"finally":  FINALLY,
	"throw":    THROW,
	"import":   IMPORT,
	"export":   EXPORT,
	"from":     FROM,
	"as":       AS,
	"match":    MATCH,
	"enum":     ENUM,
	"is":       IS,
	"not":      NOT,
	"typeof":   TYPEOF,
	"assert":   ASSERT,
	"debug":    DEBUG,
}

// LookupIdent returns the keyword type for ident, or IDENT.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}
