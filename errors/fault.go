package errors

import (
	"errors"
	"fmt"
)

// ManagedFault is an exception raised inside the managed runtime that no
// adapter reinterpreted. Payload is the managed throwable error as returned
// by the runtime; it is reachable through Unwrap.
type ManagedFault struct {
	Payload  error
	TypeName string
	Message  string
}

// Fault wraps a managed exception
func Fault(typeName, message string, payload error) *ManagedFault {
	return &ManagedFault{Payload: payload, TypeName: typeName, Message: message}
}

func (f *ManagedFault) Error() string {
	if f.Message == "" {
		return "managed exception " + f.TypeName
	}
	return fmt.Sprintf("managed exception %s: %s", f.TypeName, f.Message)
}

func (f *ManagedFault) Unwrap() error {
	return f.Payload
}

// StopIterationError signals the normal end of an iterator.
// It is deliberately not an *Error.
type StopIterationError struct{}

func (*StopIterationError) Error() string { return "stop iteration" }

// ErrStopIteration is the end-of-sequence result of GetIteratorNextElement
var ErrStopIteration error = &StopIterationError{}

// IsStopIteration reports whether err marks the end of iteration
func IsStopIteration(err error) bool {
	var s *StopIterationError
	return errors.As(err, &s)
}

// InvariantError is the panic value for impossible internal states
type InvariantError struct {
	Detail string
}

func (e *InvariantError) Error() string {
	return "internal invariant violated: " + e.Detail
}

// Fatal aborts the current call with an *InvariantError.
// It is reserved for states ruled out by earlier validation.
func Fatal(format string, args ...any) {
	panic(&InvariantError{Detail: fmt.Sprintf(format, args...)})
}
