// Package errors provides structured error types for the interop protocol.
//
// Errors are categorized by Phase (which layer produced them) and Kind (the
// protocol error category callers branch on). The Error type includes the
// access path, the managed type name, the protocol type name and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseAdapter, errors.KindInvalidIndex).
//		ManagedType("java.util.ArrayList").
//		Detail("index %d out of range", 5).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseCoerce, v, "s8")
//	err := errors.InvalidIndex(errors.PhaseAdapter, 5)
//
// Exceptions raised by the managed runtime surface as *ManagedFault. The end
// of an iteration is ErrStopIteration, which is never an *Error.
package errors
