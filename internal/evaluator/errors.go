package evaluator

import (
	"fmt"

	"github.com/funvibe/zephyr/internal/token"
)

type ErrorKind string

const (
	UnexpectedToken       ErrorKind = "UnexpectedToken"
	InvalidNumber         ErrorKind = "InvalidNumber"
	UnknownReference      ErrorKind = "UnknownReference"
	AlreadyDefined        ErrorKind = "AlreadyDefined"
	Unresolved            ErrorKind = "Unresolved"
	NotExported           ErrorKind = "NotExported"
	CannotResolve         ErrorKind = "CannotResolve"
	TypeError             ErrorKind = "TypeError"
	InvalidOperation      ErrorKind = "InvalidOperation"
	CannotCoerce          ErrorKind = "CannotCoerce"
	InvalidKey            ErrorKind = "InvalidKey"
	InvalidProperty       ErrorKind = "InvalidProperty"
	CannotIterate         ErrorKind = "CannotIterate"
	OutOfBounds           ErrorKind = "OutOfBounds"
	ConstantAssignment    ErrorKind = "ConstantAssignment"
	RangeError            ErrorKind = "RangeError"
	ChannelError          ErrorKind = "ChannelError"
	UndefinedEventMessage ErrorKind = "UndefinedEventMessage"
	AssertionFailed       ErrorKind = "AssertionFailed"
	Thrown                ErrorKind = "Thrown"
	Internal              ErrorKind = "Internal"
)

// Error is a runtime failure. Thrown carries the value of a throw
// statement.
type Error struct {
	Kind     ErrorKind
	Message  string
	Location token.Location
	Thrown   Value
}

func newError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Location.IsZero() {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Location, e.Message)
}

// at fills in the location if the error does not have one yet.
func (e *Error) at(loc token.Location) *Error {
	if e.Location.IsZero() {
		e.Location = loc
	}
	return e
}

// asError converts any error into an *Error. Foreign errors become
// Internal.
func asError(err error) *Error {
	if err == nil {
		return nil
	}
	if e, ok := err.(*Error); ok {
		return e
	}
	return &Error{Kind: Internal, Message: err.Error()}
}

type SignalKind int

const (
	SignalBreak SignalKind = iota
	SignalContinue
	SignalReturn
)

func (k SignalKind) String() string {
	switch k {
	case SignalBreak:
		return "break"
	case SignalContinue:
		return "continue"
	case SignalReturn:
		return "return"
	}
	return "signal"
}

// Signal is a break, continue or return travelling up to the loop or call
// that handles it.
type Signal struct {
	Kind     SignalKind
	Label    string
	Value    Value
	Location token.Location
}

// matches reports whether a loop labelled label handles the signal.
func (s *Signal) matches(label string) bool {
	return s.Label == "" || s.Label == label
}

// Outcome is the result of evaluating a node: a value, a control signal or
// an error. At most one of Signal and Err is set.
type Outcome struct {
	Value  Value
	Signal *Signal
	Err    *Error
}

func outcome(v Value) Outcome     { return Outcome{Value: v} }
func fail(err *Error) Outcome     { return Outcome{Err: err} }
func interrupt(s *Signal) Outcome { return Outcome{Signal: s} }

func failf(kind ErrorKind, format string, args ...interface{}) Outcome {
	return fail(newError(kind, format, args...))
}

// Interrupted reports whether evaluation must stop and propagate.
func (o Outcome) Interrupted() bool { return o.Signal != nil || o.Err != nil }

// escaped turns a signal that left its construct into an error.
func escaped(s *Signal) *Error {
	var msg string
	switch s.Kind {
	case SignalBreak:
		msg = "break outside of a loop"
	case SignalContinue:
		msg = "continue outside of a loop"
	default:
		msg = "return outside of a function"
	}
	if s.Label != "" {
		msg += fmt.Sprintf(" (no loop labelled @%s)", s.Label)
	}
	return &Error{Kind: Internal, Message: msg, Location: s.Location}
}
