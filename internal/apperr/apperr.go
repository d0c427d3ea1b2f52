// Package apperr provides a formattable application error type.
package apperr

import "fmt"

// Error is an application error whose message may contain printf verbs.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Fmt returns a copy of the error with its message verbs filled in.
func (e *Error) Fmt(args ...any) *Error {
	return &Error{Message: fmt.Sprintf(e.Message, args...)}
}

// Wrap annotates err with the receiver's message.
func (e *Error) Wrap(err error) error {
	return fmt.Errorf("%s: %w", e.Message, err)
}
