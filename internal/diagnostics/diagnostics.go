package diagnostics

import (
	"fmt"

	"github.com/funvibe/zephyr/internal/token"
)

type ErrorCode string

const (
	ErrUnexpectedToken ErrorCode = "UnexpectedToken"
	ErrInvalidNumber   ErrorCode = "InvalidNumber"
	ErrTooComplex      ErrorCode = "TooComplex"
)

// DiagnosticError is a lexing or parsing failure tied to a token.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	Message string
}

func NewError(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, Message: fmt.Sprintf(format, args...)}
}

func (e *DiagnosticError) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Code, e.Token.Location(), e.Message)
}
