package kerror

import "fmt"

// Error is the error type used for invariant violations inside the control
// loop. It exists mainly so recovered panics can be told apart from foreign
// ones.
type Error struct {
	Message string
}

// New creates an Error from a format string.
func New(format string, args ...interface{}) *Error {
	return &Error{Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	return e.Message
}
