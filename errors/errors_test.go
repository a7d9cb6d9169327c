package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:       PhaseMember,
				Kind:        KindUnknownIdentifier,
				Path:        []string{"point", "x"},
				ManagedType: "demo.Point",
				WitType:     "s32",
				Detail:      "no such field",
			},
			contains: []string{"[member]", "unknown_identifier", "point.x", "demo.Point", "s32", "no such field"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseAdapter,
				Kind:  KindInvalidIndex,
			},
			contains: []string{"[adapter]", "invalid_index"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseConfig,
				Kind:   KindInvalidInput,
				Detail: "bad file",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[config]", "invalid_input", "bad file", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseInvoke,
		Kind:  KindInvalidInput,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseCoerce,
		Kind:  KindTypeMismatch,
		Path:  []string{"foo"},
	}

	if !err.Is(&Error{Phase: PhaseCoerce, Kind: KindTypeMismatch}) {
		t.Error("Is should match same phase and kind")
	}
	if err.Is(&Error{Phase: PhaseConvert, Kind: KindTypeMismatch}) {
		t.Error("Is should not match different phase")
	}
	if err.Is(&Error{Phase: PhaseCoerce, Kind: KindUnsupported}) {
		t.Error("Is should not match different kind")
	}
	if !err.Is(&Error{Kind: KindTypeMismatch}) {
		t.Error("Is should match any phase when target phase is empty")
	}

	wrapped := fmt.Errorf("outer: %w", err)
	if !errors.Is(wrapped, &Error{Kind: KindTypeMismatch}) {
		t.Error("errors.Is should match through wrapping")
	}
	if !IsKind(wrapped, KindTypeMismatch) {
		t.Error("IsKind should match through wrapping")
	}
	if KindOf(wrapped) != KindTypeMismatch {
		t.Errorf("KindOf = %q", KindOf(wrapped))
	}
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf of a plain error should be empty")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseMember, KindUnknownIdentifier).
		Path("point", "z").
		ManagedType("demo.Point").
		WitType("s32").
		Value(42).
		Cause(cause).
		Detail("expected %s, got %s", "x", "z").
		Build()

	if err.Phase != PhaseMember {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseMember)
	}
	if err.Kind != KindUnknownIdentifier {
		t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownIdentifier)
	}
	if len(err.Path) != 2 || err.Path[0] != "point" || err.Path[1] != "z" {
		t.Errorf("Path = %v, want [point z]", err.Path)
	}
	if err.ManagedType != "demo.Point" {
		t.Errorf("ManagedType = %v", err.ManagedType)
	}
	if err.WitType != "s32" {
		t.Errorf("WitType = %v, want 's32'", err.WitType)
	}
	if err.Value != 42 {
		t.Errorf("Value = %v, want 42", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected x, got z" {
		t.Errorf("Detail = %v", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		kind Kind
		text string
	}{
		{"Unsupported", Unsupported(PhaseDispatch, "writeMember"), KindUnsupported, "writeMember"},
		{"TypeMismatch", TypeMismatch(PhaseCoerce, int32(300), "s8"), KindTypeMismatch, "300"},
		{"InvalidIndex", InvalidIndex(PhaseAdapter, 5), KindInvalidIndex, "index 5"},
		{"InvalidBufferOffset", InvalidBufferOffset(PhaseAdapter, -1, 4), KindInvalidBufferOffset, "offset -1"},
		{"UnknownKey", UnknownKey(PhaseAdapter, "k"), KindUnknownKey, "unknown key k"},
		{"UnknownIdentifier", UnknownIdentifier(PhaseMember, "demo.Point", "z"), KindUnknownIdentifier, `"z"`},
		{"Arity", Arity(PhaseInvoke, "demo.Calc", "add", 3), KindArity, "3 argument"},
		{"NoApplicableOverload", NoApplicableOverload(PhaseInvoke, "demo.Calc", "f", 2), KindNoApplicable, "2 overloads"},
		{"NoApplicableOverloadNone", NoApplicableOverload(PhaseInvoke, "demo.Calc", "f", 0), KindNoApplicable, "no overload"},
		{"NotFound", NotFound(PhaseConfig, "file", "x.toml"), KindNotFound, "x.toml"},
		{"InvalidInput", InvalidInput(PhaseConfig, "negative limit"), KindInvalidInput, "negative limit"},
		{"Registration", Registration("handler", errors.New("dup")), KindRegistration, "dup"},
		{"Closed", Closed(PhaseDispatch, "instance"), KindClosed, "instance is closed"},
		{"Wrap", Wrap(PhaseInvoke, KindInvalidInput, errors.New("inner"), "outer"), KindInvalidInput, "inner"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", tt.err.Kind, tt.kind)
			}
			if !strings.Contains(tt.err.Error(), tt.text) {
				t.Errorf("%q does not contain %q", tt.err.Error(), tt.text)
			}
		})
	}
}

func TestManagedFault(t *testing.T) {
	payload := errors.New("payload")
	f := Fault("java.lang.IllegalStateException", "boom", payload)

	if !strings.Contains(f.Error(), "IllegalStateException: boom") {
		t.Errorf("Error() = %q", f.Error())
	}
	if !errors.Is(f, payload) {
		t.Error("fault should unwrap to payload")
	}
	if IsKind(f, KindUnsupported) {
		t.Error("a fault is not a protocol error kind")
	}

	bare := Fault("java.lang.Error", "", nil)
	if bare.Error() != "managed exception java.lang.Error" {
		t.Errorf("Error() = %q", bare.Error())
	}
}

func TestStopIteration(t *testing.T) {
	if !IsStopIteration(ErrStopIteration) {
		t.Error("sentinel should be stop iteration")
	}
	if !IsStopIteration(fmt.Errorf("wrapped: %w", ErrStopIteration)) {
		t.Error("wrapped sentinel should be stop iteration")
	}
	if IsStopIteration(InvalidIndex(PhaseAdapter, 1)) {
		t.Error("protocol errors are not stop iteration")
	}
	var e *Error
	if errors.As(ErrStopIteration, &e) {
		t.Error("stop iteration must not be an *Error")
	}
}

func TestFatal(t *testing.T) {
	defer func() {
		r := recover()
		ie, ok := r.(*InvariantError)
		if !ok {
			t.Fatalf("recovered %T, want *InvariantError", r)
		}
		if !strings.Contains(ie.Error(), "arity 2 != 3") {
			t.Errorf("Error() = %q", ie.Error())
		}
	}()
	Fatal("arity %d != %d", 2, 3)
}
