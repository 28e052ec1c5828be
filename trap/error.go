package trap

import (
	"errors"
)

// ErrTrap matches every *Error with errors.Is.
var ErrTrap = errors.New("wasm trap")

// Error is the host-level error raised for a trap.
type Error struct {
	Reason   Reason
	Template MessageTemplate
}

// NewError builds the error for a message template received from a builtin.
// Unknown templates still produce an error; Reason is then Unreachable.
func NewError(id MessageTemplate) *Error {
	r, ok := ReasonFor(id)
	if !ok {
		r = Unreachable
	}
	return &Error{Reason: r, Template: id}
}

func (e *Error) Error() string {
	return "wasm trap: " + e.Template.Text()
}

func (e *Error) Is(target error) bool {
	if target == ErrTrap {
		return true
	}
	if t, ok := target.(*Error); ok {
		return t.Template == e.Template
	}
	return false
}

// Is reports whether err is a trap with the given reason.
func Is(err error, r Reason) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Reason == r
}
