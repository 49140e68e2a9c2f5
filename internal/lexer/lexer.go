package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/funvibe/zephyr/internal/token"
)

type Lexer struct {
	input        string
	file         string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           rune // current char under examination
	line         int
	column       int
	sawNewline   bool
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

// NewWithFile creates a lexer whose tokens carry file in their locations.
func NewWithFile(input, file string) *Lexer {
	l := New(input)
	l.file = file
	return l
}

func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.column = 0
	}

	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = len(l.input)
		l.readPosition = len(l.input)
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.readPosition:])
	l.ch = r
	l.position = l.readPosition
	l.readPosition += w
	l.column++
}

// Tokenize reads every token up to and including EOF.
func (l *Lexer) Tokenize() []token.Token {
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			return tokens
		}
	}
}

func (l *Lexer) NextToken() token.Token {
	l.skipWhitespace()
	tok := l.scan()
	tok.File = l.file
	tok.NewlineBefore = l.sawNewline
	l.sawNewline = false
	return tok
}

func (l *Lexer) scan() token.Token {
	var tok token.Token

	switch l.ch {
	case '=':
		if l.peekChar() == '=' {
			tok = l.twoChar(token.EQ)
		} else if l.peekChar() == '>' {
			tok = l.twoChar(token.FAT_ARROW)
		} else {
			tok = newToken(token.ASSIGN, l.ch, l.line, l.column)
		}
	case '+':
		if l.peekChar() == '+' {
			tok = l.twoChar(token.INCREMENT)
		} else if l.peekChar() == '=' {
			tok = l.twoChar(token.PLUS_ASSIGN)
		} else {
			tok = newToken(token.PLUS, l.ch, l.line, l.column)
		}
	case '-':
		if l.peekChar() == '-' {
			tok = l.twoChar(token.DECREMENT)
		} else if l.peekChar() == '=' {
			tok = l.twoChar(token.MINUS_ASSIGN)
		} else {
			tok = newToken(token.MINUS, l.ch, l.line, l.column)
		}
	case '*':
		if l.peekChar() == '*' {
			tok = l.twoChar(token.POWER)
		} else if l.peekChar() == '=' {
			tok = l.twoChar(token.ASTERISK_ASSIGN)
		} else {
			tok = newToken(token.ASTERISK, l.ch, l.line, l.column)
		}
	case '/':
		if l.peekChar() == '/' {
			tok = l.twoChar(token.INT_DIV)
		} else if l.peekChar() == '=' {
			tok = l.twoChar(token.SLASH_ASSIGN)
		} else {
			tok = newToken(token.SLASH, l.ch, l.line, l.column)
		}
	case '%':
		tok = newToken(token.PERCENT, l.ch, l.line, l.column)
	case '!':
		if l.peekChar() == '=' {
			tok = l.twoChar(token.NOT_EQ)
		} else {
			tok = newToken(token.BANG, l.ch, l.line, l.column)
		}
	case '<':
		if l.peekChar() == '=' {
			tok = l.twoChar(token.LTE)
		} else {
			tok = newToken(token.LT, l.ch, l.line, l.column)
		}
	case '>':
		if l.peekChar() == '=' {
			tok = l.twoChar(token.GTE)
		} else {
			tok = newToken(token.GT, l.ch, l.line, l.column)
		}
	case '&':
		if l.peekChar() == '&' {
			tok = l.twoChar(token.AND)
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	case '|':
		if l.peekChar() == '|' {
			tok = l.twoChar(token.OR)
		} else {
			tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
		}
	case '.':
		if l.peekChar() == '.' {
			line, col := l.line, l.column
			l.readChar()
			if l.peekChar() == '=' {
				l.readChar()
				tok = token.Token{Type: token.RANGE_INCLUSIVE, Lexeme: "..=", Literal: "..=", Line: line, Column: col}
			} else {
				tok = token.Token{Type: token.RANGE, Lexeme: "..", Literal: "..", Line: line, Column: col}
			}
		} else {
			tok = newToken(token.DOT, l.ch, l.line, l.column)
		}
	case '$':
		tok = newToken(token.DOLLAR, l.ch, l.line, l.column)
	case '?':
		tok = newToken(token.QUESTION, l.ch, l.line, l.column)
	case ',':
		tok = newToken(token.COMMA, l.ch, l.line, l.column)
	case ':':
		tok = newToken(token.COLON, l.ch, l.line, l.column)
	case ';':
		tok = newToken(token.SEMICOLON, l.ch, l.line, l.column)
	case '(':
		tok = newToken(token.LPAREN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(token.RPAREN, l.ch, l.line, l.column)
	case '{':
		tok = newToken(token.LBRACE, l.ch, l.line, l.column)
	case '}':
		tok = newToken(token.RBRACE, l.ch, l.line, l.column)
	case '[':
		tok = newToken(token.LBRACKET, l.ch, l.line, l.column)
	case ']':
		tok = newToken(token.RBRACKET, l.ch, l.line, l.column)
	case '@':
		line, col := l.line, l.column
		l.readChar()
		if !isLetter(l.ch) {
			return token.Token{Type: token.ILLEGAL, Lexeme: "@", Literal: "label name expected after @", Line: line, Column: col}
		}
		name := l.readIdentifier()
		return token.Token{Type: token.LABEL, Lexeme: "@" + name, Literal: name, Line: line, Column: col}
	case '"', '\'':
		line, col := l.line, l.column
		content, err := l.readString(l.ch)
		if err != nil {
			return token.Token{Type: token.ILLEGAL, Lexeme: content, Literal: err.Error(), Line: line, Column: col}
		}
		tok = token.Token{Type: token.STRING, Lexeme: strconv.Quote(content), Literal: content, Line: line, Column: col}
	case 0:
		return token.Token{Type: token.EOF, Lexeme: "", Line: l.line, Column: l.column}
	default:
		if isLetter(l.ch) {
			line, col := l.line, l.column
			lexeme := l.readIdentifier()
			// Predicate names end in '?' when it is written without a gap.
			if l.ch == '?' && !isLetter(l.peekChar()) {
				lexeme += "?"
				l.readChar()
			}
			typ := token.LookupIdent(lexeme)
			return token.Token{Type: typ, Lexeme: lexeme, Literal: lexeme, Line: line, Column: col}
		} else if isDigit(l.ch) {
			return l.readNumber()
		}
		tok = newToken(token.ILLEGAL, l.ch, l.line, l.column)
	}

	l.readChar()
	return tok
}

func (l *Lexer) twoChar(t token.TokenType) token.Token {
	line, col := l.line, l.column
	first := l.ch
	l.readChar()
	literal := string(first) + string(l.ch)
	return token.Token{Type: t, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

// readString consumes a quoted string, resolving escape sequences.
// The closing quote is left as the current char.
func (l *Lexer) readString(quote rune) (string, error) {
	var sb strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return sb.String(), fmt.Errorf("string was not terminated")
		case quote:
			return sb.String(), nil
		case '\\':
			l.readChar()
			switch l.ch {
			case 'n':
				sb.WriteRune('\n')
			case 't':
				sb.WriteRune('\t')
			case 'r':
				sb.WriteRune('\r')
			case '0':
				sb.WriteRune(0)
			case '\\', '"', '\'':
				sb.WriteRune(l.ch)
			case 'u':
				r, ok := l.readHexEscape(4)
				if !ok {
					return sb.String(), fmt.Errorf("invalid unicode escape")
				}
				sb.WriteRune(r)
			case 0:
				return sb.String(), fmt.Errorf("unfinished escape sequence")
			default:
				return sb.String(), fmt.Errorf("unknown escape sequence \\%c", l.ch)
			}
		default:
			sb.WriteRune(l.ch)
		}
	}
}

func (l *Lexer) readHexEscape(n int) (rune, bool) {
	var value rune
	for i := 0; i < n; i++ {
		l.readChar()
		d, ok := hexValue(l.ch)
		if !ok {
			return 0, false
		}
		value = value*16 + d
	}
	return value, true
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() token.Token {
	line, col := l.line, l.column
	position := l.position

	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}

	// A '.' followed by a digit is a fraction; "1..3" stays a range.
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}

	if l.ch == 'e' || l.ch == 'E' {
		next := l.peekChar()
		if isDigit(next) || next == '-' || next == '+' {
			l.readChar()
			if l.ch == '-' || l.ch == '+' {
				l.readChar()
			}
			for isDigit(l.ch) {
				l.readChar()
			}
		}
	}

	lexeme := l.input[position:l.position]
	val, err := strconv.ParseFloat(strings.ReplaceAll(lexeme, "_", ""), 64)
	if err != nil {
		return token.Token{Type: token.ILLEGAL, Lexeme: lexeme, Literal: "invalid number " + lexeme, Line: line, Column: col}
	}
	return token.Token{Type: token.NUMBER, Lexeme: lexeme, Literal: val, Line: line, Column: col}
}

func hexValue(ch rune) (rune, bool) {
	switch {
	case '0' <= ch && ch <= '9':
		return ch - '0', true
	case 'a' <= ch && ch <= 'f':
		return ch - 'a' + 10, true
	case 'A' <= ch && ch <= 'F':
		return ch - 'A' + 10, true
	}
	return 0, false
}

func isLetter(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_' || (ch >= 0x80 && unicode.IsLetter(ch))
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return r
}

func newToken(tokenType token.TokenType, ch rune, line, col int) token.Token {
	literal := string(ch)
	return token.Token{Type: tokenType, Lexeme: literal, Literal: literal, Line: line, Column: col}
}

func (l *Lexer) skipWhitespace() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' || l.ch == '\n' {
			if l.ch == '\n' {
				l.sawNewline = true
			}
			l.readChar()
		}
		// Line comments use '#'; '//' is integer division.
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}
		if l.ch == '/' && l.peekChar() == '*' {
			l.readChar()
			l.readChar()
			for l.ch != 0 {
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				if l.ch == '\n' {
					l.sawNewline = true
				}
				l.readChar()
			}
			continue
		}
		break
	}
}
