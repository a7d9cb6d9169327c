package interop

import (
	"fmt"
	"math/big"

	"github.com/wippyai/hostinterop/dispatch"
)

func (l *Library) IsNull(v any) bool    { return l.query(v, dispatch.IsNull) }
func (l *Library) IsBoolean(v any) bool { return l.query(v, dispatch.IsBoolean) }
func (l *Library) IsString(v any) bool  { return l.query(v, dispatch.IsString) }
func (l *Library) IsNumber(v any) bool  { return l.query(v, dispatch.IsNumber) }

// AsBoolean fails with KindTypeMismatch for boxed non-booleans and with
// KindUnsupported for objects that are not boxed values.
func (l *Library) AsBoolean(v any) (bool, error) {
	return typed[bool](l, v, dispatch.AsBoolean)
}

func (l *Library) AsString(v any) (string, error) {
	return typed[string](l, v, dispatch.AsString)
}

// AsTruffleString is AsString under its original message name
func (l *Library) AsTruffleString(v any) (string, error) {
	return typed[string](l, v, dispatch.AsTruffleString)
}

func (l *Library) FitsInByte(v any) bool       { return l.query(v, dispatch.FitsInByte) }
func (l *Library) FitsInShort(v any) bool      { return l.query(v, dispatch.FitsInShort) }
func (l *Library) FitsInInt(v any) bool        { return l.query(v, dispatch.FitsInInt) }
func (l *Library) FitsInLong(v any) bool       { return l.query(v, dispatch.FitsInLong) }
func (l *Library) FitsInFloat(v any) bool      { return l.query(v, dispatch.FitsInFloat) }
func (l *Library) FitsInDouble(v any) bool     { return l.query(v, dispatch.FitsInDouble) }
func (l *Library) FitsInBigInteger(v any) bool { return l.query(v, dispatch.FitsInBigInteger) }

func (l *Library) AsByte(v any) (int8, error)     { return typed[int8](l, v, dispatch.AsByte) }
func (l *Library) AsShort(v any) (int16, error)   { return typed[int16](l, v, dispatch.AsShort) }
func (l *Library) AsInt(v any) (int32, error)     { return typed[int32](l, v, dispatch.AsInt) }
func (l *Library) AsLong(v any) (int64, error)    { return typed[int64](l, v, dispatch.AsLong) }
func (l *Library) AsFloat(v any) (float32, error) { return typed[float32](l, v, dispatch.AsFloat) }
func (l *Library) AsDouble(v any) (float64, error) {
	return typed[float64](l, v, dispatch.AsDouble)
}

func (l *Library) AsBigInteger(v any) (*big.Int, error) {
	return typed[*big.Int](l, v, dispatch.AsBigInteger)
}

// IsIdentical reports whether a and b are the same value
func (l *Library) IsIdentical(a, b any) bool {
	return l.query(a, dispatch.IsIdentical, b)
}

// IsIdenticalOrUndefined answers TriUndefined when a cannot decide
func (l *Library) IsIdenticalOrUndefined(a, b any) dispatch.TriState {
	v, err := l.Send(a, dispatch.IsIdenticalOrUndefined, b)
	if err != nil {
		return dispatch.TriUndefined
	}
	t, _ := v.(dispatch.TriState)
	return t
}

// IdentityHashCode is stable for the lifetime of the receiver's context
func (l *Library) IdentityHashCode(v any) (int32, error) {
	return typed[int32](l, v, dispatch.IdentityHashCode)
}

// ToDisplayString renders v for humans. It never fails: a receiver that
// cannot be rendered shows its Go value.
func (l *Library) ToDisplayString(v any) string {
	s, err := typed[string](l, v, dispatch.ToDisplayString, l.opts.DisplaySideEffects)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

func (l *Library) HasLanguage(v any) bool { return l.query(v, dispatch.HasLanguage) }

func (l *Library) GetLanguage(v any) (string, error) {
	return typed[string](l, v, dispatch.GetLanguage)
}

func (l *Library) IsPointer(v any) bool { return l.query(v, dispatch.IsPointer) }

func (l *Library) AsPointer(v any) (int64, error) {
	return typed[int64](l, v, dispatch.AsPointer)
}

// ToNative returns nil for values without a native representation
func (l *Library) ToNative(v any) (any, error) {
	return l.Send(v, dispatch.ToNative)
}

// Scopes are not modeled; these answer the protocol defaults.

func (l *Library) IsScope(v any) bool        { return l.query(v, dispatch.IsScope) }
func (l *Library) HasScopeParent(v any) bool { return l.query(v, dispatch.HasScopeParent) }

func (l *Library) GetScopeParent(v any) (any, error) {
	return l.Send(v, dispatch.GetScopeParent)
}

func (l *Library) HasSourceLocation(v any) bool { return l.query(v, dispatch.HasSourceLocation) }

func (l *Library) GetSourceLocation(v any) (any, error) {
	return l.Send(v, dispatch.GetSourceLocation)
}
