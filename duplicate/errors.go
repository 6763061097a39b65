package duplicate

import (
	"github.com/gnolang/dupl/tokens"
)

// Error is a failed expansion. Every failure of the package is reported as
// an *Error, possibly wrapped.
type Error struct {
	Msg  string     // primary message
	Pos  tokens.Pos // offending token, when known
	Hint string     // optional help text, may span several lines
}

func newError(msg string) *Error {
	return &Error{Msg: msg}
}

// WithPos sets the position of the error and returns it.
func (e *Error) WithPos(p tokens.Pos) *Error {
	e.Pos = p
	return e
}

// WithHint sets the hint of the error and returns it.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return e.Pos.String() + ": " + e.Msg
	}
	return e.Msg
}

// asError returns err as an *Error, converting lexical errors.
func asError(err error) *Error {
	switch e := err.(type) {
	case *Error:
		return e
	case *tokens.Error:
		return newError(e.Msg).WithPos(e.Pos)
	}
	return newError(err.Error())
}
