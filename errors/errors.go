package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Phase indicates which layer of the protocol produced the error
type Phase string

const (
	PhaseCoerce   Phase = "coerce"   // protocol primitive coercion
	PhaseConvert  Phase = "convert"  // protocol value to managed value
	PhaseAdapter  Phase = "adapter"  // array / hash / iterator / buffer views
	PhaseInvoke   Phase = "invoke"   // overload resolution and invocation
	PhaseDispatch Phase = "dispatch" // message routing
	PhaseMember   Phase = "member"   // member read / write
	PhaseRegister Phase = "register" // type and handler registration
	PhaseConfig   Phase = "config"   // options and config files
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupported         Kind = "unsupported"
	KindTypeMismatch        Kind = "type_mismatch"
	KindInvalidIndex        Kind = "invalid_index"
	KindInvalidBufferOffset Kind = "invalid_buffer_offset"
	KindUnknownKey          Kind = "unknown_key"
	KindUnknownIdentifier   Kind = "unknown_identifier"
	KindArity               Kind = "arity"
	KindNoApplicable        Kind = "no_applicable_overload"
	KindInvalidInput        Kind = "invalid_input"
	KindNotFound            Kind = "not_found"
	KindRegistration        Kind = "registration"
	KindClosed              Kind = "closed"
)

// Error is the structured protocol error
type Error struct {
	Value       any
	Cause       error
	Phase       Phase
	Kind        Kind
	ManagedType string
	WitType     string
	Detail      string
	Path        []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	typed := e.ManagedType != "" || e.WitType != ""
	if typed {
		b.WriteString(": ")
		switch {
		case e.ManagedType != "" && e.WitType != "":
			b.WriteString(e.ManagedType)
			b.WriteString(" as ")
			b.WriteString(e.WitType)
		case e.ManagedType != "":
			b.WriteString(e.ManagedType)
		default:
			b.WriteString("as ")
			b.WriteString(e.WitType)
		}
	}

	if e.Detail != "" {
		if typed {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches errors of any phase.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether err carries an *Error of the given kind anywhere in its chain
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the access path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// ManagedType sets the managed type name
func (b *Builder) ManagedType(t string) *Builder {
	b.err.ManagedType = t
	return b
}

// WitType sets the protocol type name
func (b *Builder) WitType(t string) *Builder {
	b.err.WitType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Unsupported creates an unsupported operation error
func Unsupported(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Detail: what,
	}
}

// TypeMismatch creates a coercion failure for value v that does not fit witType
func TypeMismatch(phase Phase, v any, witType string) *Error {
	return &Error{
		Phase:   phase,
		Kind:    KindTypeMismatch,
		WitType: witType,
		Value:   v,
		Detail:  fmt.Sprintf("value %v (%T) does not fit", v, v),
	}
}

// InvalidIndex creates an out-of-range element access error
func InvalidIndex(phase Phase, index int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidIndex,
		Detail: fmt.Sprintf("index %d out of range", index),
		Value:  index,
	}
}

// InvalidBufferOffset creates an out-of-range buffer access error
func InvalidBufferOffset(phase Phase, offset, length int64) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidBufferOffset,
		Detail: fmt.Sprintf("offset %d length %d out of range", offset, length),
		Value:  offset,
	}
}

// UnknownKey creates a missing or unconvertible hash key error
func UnknownKey(phase Phase, key any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownKey,
		Detail: fmt.Sprintf("unknown key %v", key),
		Value:  key,
	}
}

// UnknownIdentifier creates a missing member error
func UnknownIdentifier(phase Phase, typeName, member string) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindUnknownIdentifier,
		ManagedType: typeName,
		Path:        []string{member},
		Detail:      fmt.Sprintf("unknown member %q", member),
	}
}

// Arity creates an error for a member with no method of the requested arity
func Arity(phase Phase, typeName, member string, argc int) *Error {
	return &Error{
		Phase:       phase,
		Kind:        KindArity,
		ManagedType: typeName,
		Path:        []string{member},
		Detail:      fmt.Sprintf("no method accepts %d argument(s)", argc),
		Value:       argc,
	}
}

// NoApplicableOverload creates an overload resolution failure
func NoApplicableOverload(phase Phase, typeName, member string, matched int) *Error {
	detail := "no overload matches the argument types"
	if matched > 1 {
		detail = fmt.Sprintf("%d overloads match the argument types", matched)
	}
	return &Error{
		Phase:       phase,
		Kind:        KindNoApplicable,
		ManagedType: typeName,
		Path:        []string{member},
		Detail:      detail,
		Value:       matched,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Registration creates a registration error
func Registration(what string, cause error) *Error {
	return &Error{
		Phase:  PhaseRegister,
		Kind:   KindRegistration,
		Detail: fmt.Sprintf("register %s", what),
		Cause:  cause,
	}
}

// Closed creates an error for use of a detached runtime instance
func Closed(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindClosed,
		Detail: fmt.Sprintf("%s is closed", what),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
