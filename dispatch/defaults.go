package dispatch

import (
	"fmt"
	"time"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// TriState is the answer of IsIdenticalOrUndefined
type TriState int8

const (
	TriUndefined TriState = iota
	TriFalse
	TriTrue
)

func (t TriState) String() string {
	switch t {
	case TriFalse:
		return "false"
	case TriTrue:
		return "true"
	}
	return "undefined"
}

// TriOf converts a definite answer
func TriOf(b bool) TriState {
	if b {
		return TriTrue
	}
	return TriFalse
}

// Fallback is the behavior of a message the receiver does not implement
type Fallback uint8

const (
	// FallbackUnsupported fails with KindUnsupported
	FallbackUnsupported Fallback = iota
	// FallbackFalse answers false
	FallbackFalse
	// FallbackUndefined answers TriUndefined
	FallbackUndefined
	// FallbackDerived computes the answer from other messages
	FallbackDerived
)

func (f Fallback) String() string {
	switch f {
	case FallbackFalse:
		return "false"
	case FallbackUndefined:
		return "undefined"
	case FallbackDerived:
		return "derived"
	}
	return "unsupported"
}

type derivedFunc func(r *Router, obj managed.Object, args []any) (any, error)

var derived [MessageCount]derivedFunc

func init() {
	derived = [MessageCount]derivedFunc{
		AsTruffleString:        asTruffleString,
		ReadHashValueOrDefault: readHashValueOrDefault,
		IsHashEntryWritable:    isHashEntryWritable,
		IsHashEntryExisting:    isHashEntryExisting,
		GetHashKeysIterator:    hashProjection(0),
		GetHashValuesIterator:  hashProjection(1),
		IsBufferWritable:       isBufferWritable,
		AsInstant:              asInstant,
		HasIterator:            hasIterator,
		GetIterator:            getIterator,
		ToDisplayString:        toDisplayString,
		ToNative:               toNative,
		IsIdentical:            isIdentical,
	}
}

// FallbackOf returns the default behavior of msg
func FallbackOf(msg Message) Fallback {
	switch {
	case msg >= MessageCount:
		return FallbackUnsupported
	case derived[msg] != nil:
		return FallbackDerived
	case msg == IsIdenticalOrUndefined:
		return FallbackUndefined
	case msg.IsQuery():
		return FallbackFalse
	}
	return FallbackUnsupported
}

func (r *Router) fallback(obj managed.Object, msg Message, args []any) (any, error) {
	switch FallbackOf(msg) {
	case FallbackDerived:
		return derived[msg](r, obj, args)
	case FallbackFalse:
		return false, nil
	case FallbackUndefined:
		return TriUndefined, nil
	}
	return nil, errors.New(errors.PhaseDispatch, errors.KindUnsupported).
		ManagedType(obj.Type().Name()).
		Path(msg.String()).
		Detail("message not supported").
		Build()
}

// Query routes a boolean query and folds every failure into false
func (r *Router) Query(obj managed.Object, msg Message, args ...any) bool {
	v, err := r.Route(obj, msg, args...)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

func unsupported(obj managed.Object, msg Message, detail string) error {
	return errors.New(errors.PhaseDispatch, errors.KindUnsupported).
		ManagedType(obj.Type().Name()).
		Path(msg.String()).
		Detail("%s", detail).
		Build()
}

// arg returns argument i; Route has already checked the arity of msg
func arg(args []any, i int, msg Message) any {
	if i >= len(args) {
		errors.Fatal("%s called with %d arguments", msg, len(args))
	}
	return args[i]
}

func asTruffleString(r *Router, obj managed.Object, _ []any) (any, error) {
	return r.Route(obj, AsString)
}

func readHashValueOrDefault(r *Router, obj managed.Object, args []any) (any, error) {
	v, err := r.Route(obj, ReadHashValue, arg(args, 0, ReadHashValueOrDefault))
	if errors.IsKind(err, errors.KindUnknownKey) {
		return arg(args, 1, ReadHashValueOrDefault), nil
	}
	return v, err
}

func isHashEntryWritable(r *Router, obj managed.Object, args []any) (any, error) {
	key := arg(args, 0, IsHashEntryWritable)
	return r.Query(obj, IsHashEntryModifiable, key) || r.Query(obj, IsHashEntryInsertable, key), nil
}

func isHashEntryExisting(r *Router, obj managed.Object, args []any) (any, error) {
	key := arg(args, 0, IsHashEntryExisting)
	return r.Query(obj, IsHashEntryReadable, key) ||
		r.Query(obj, IsHashEntryModifiable, key) ||
		r.Query(obj, IsHashEntryRemovable, key), nil
}

// hashProjection derives the key or value iterator from the entries
// iterator: each entry is an array of two elements, key then value.
func hashProjection(index int64) derivedFunc {
	return func(r *Router, obj managed.Object, _ []any) (any, error) {
		it, err := r.Route(obj, GetHashEntriesIterator)
		if err != nil {
			return nil, err
		}
		src, err := r.Sequence(it)
		if err != nil {
			return nil, err
		}
		return adapter.NewProjection(src, func(entry any) (any, error) {
			e, ok := entry.(managed.Object)
			if !ok {
				return nil, errors.InvalidInput(errors.PhaseDispatch,
					fmt.Sprintf("hash entry is %T, not an object", entry))
			}
			return r.Route(e, ReadArrayElement, index)
		}), nil
	}
}

func isBufferWritable(r *Router, obj managed.Object, _ []any) (any, error) {
	if !r.Query(obj, HasBufferElements) {
		return nil, unsupported(obj, IsBufferWritable, "receiver has no buffer elements")
	}
	return false, nil
}

func asInstant(r *Router, obj managed.Object, _ []any) (any, error) {
	if !r.Query(obj, IsDate) || !r.Query(obj, IsTime) || !r.Query(obj, IsTimeZone) {
		return nil, unsupported(obj, AsInstant, "receiver is not a date, time and zone")
	}
	dv, err := r.Route(obj, AsDate)
	if err != nil {
		return nil, err
	}
	tv, err := r.Route(obj, AsTime)
	if err != nil {
		return nil, err
	}
	zv, err := r.Route(obj, AsTimeZone)
	if err != nil {
		return nil, err
	}
	d, okD := dv.(convert.LocalDate)
	t, okT := tv.(convert.LocalTime)
	z, okZ := zv.(*time.Location)
	if !okD || !okT || !okZ {
		return nil, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
			ManagedType(obj.Type().Name()).
			Path(AsInstant.String()).
			Detail("date, time or zone has an unexpected representation").
			Build()
	}
	return convert.Combine(d, t, z.String())
}

func hasIterator(r *Router, obj managed.Object, _ []any) (any, error) {
	return r.Query(obj, HasArrayElements), nil
}

func getIterator(r *Router, obj managed.Object, _ []any) (any, error) {
	if !r.Query(obj, HasIterator) {
		return nil, unsupported(obj, GetIterator, "receiver is not iterable")
	}
	return &arraySequence{r: r, obj: obj}, nil
}

func toDisplayString(r *Router, obj managed.Object, _ []any) (any, error) {
	name := obj.Type().Name()
	h, err := r.Route(obj, IdentityHashCode)
	if err != nil {
		return name, nil
	}
	n, _ := h.(int32)
	return fmt.Sprintf("%s@%x", name, uint32(n)), nil
}

func toNative(*Router, managed.Object, []any) (any, error) {
	return nil, nil
}

func isIdentical(r *Router, obj managed.Object, args []any) (any, error) {
	other := arg(args, 0, IsIdentical)
	res := r.identity(obj, other)
	if res == TriUndefined {
		if o, ok := other.(managed.Object); ok && o != nil {
			res = r.identity(o, obj)
		}
	}
	return res == TriTrue, nil
}

func (r *Router) identity(a managed.Object, b any) TriState {
	v, err := r.Route(a, IsIdenticalOrUndefined, b)
	if err != nil {
		return TriUndefined
	}
	t, ok := v.(TriState)
	if !ok {
		return TriUndefined
	}
	return t
}

// Sequence returns a host-side view of a protocol iterator: either a
// Sequence produced by a derived default or an object answering the
// iterator messages.
func (r *Router) Sequence(it any) (adapter.Sequence, error) {
	switch x := it.(type) {
	case adapter.Sequence:
		return x, nil
	case managed.Object:
		if !r.Query(x, IsIterator) {
			return nil, unsupported(x, GetIteratorNextElement, "receiver is not an iterator")
		}
		return &routedSequence{r: r, obj: x}, nil
	}
	return nil, errors.InvalidInput(errors.PhaseDispatch, fmt.Sprintf("%T is not an iterator", it))
}

// routedSequence walks an iterator object through the router
type routedSequence struct {
	r   *Router
	obj managed.Object
}

func (s *routedSequence) HasNext() (bool, error) {
	v, err := s.r.Route(s.obj, HasIteratorNextElement)
	if err != nil {
		return false, err
	}
	b, _ := v.(bool)
	return b, nil
}

func (s *routedSequence) Next() (any, error) {
	return s.r.Route(s.obj, GetIteratorNextElement)
}

// arraySequence iterates an array-like receiver by index. The size is read
// on every step so the walk follows a collection that grows or shrinks.
type arraySequence struct {
	r   *Router
	obj managed.Object
	pos int64
}

func (s *arraySequence) size() (int64, error) {
	v, err := s.r.Route(s.obj, GetArraySize)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, errors.InvalidInput(errors.PhaseDispatch, fmt.Sprintf("array size is %T", v))
	}
	return n, nil
}

func (s *arraySequence) HasNext() (bool, error) {
	n, err := s.size()
	if err != nil {
		return false, err
	}
	return s.pos < n, nil
}

func (s *arraySequence) Next() (any, error) {
	v, err := s.r.Route(s.obj, ReadArrayElement, s.pos)
	if errors.IsKind(err, errors.KindInvalidIndex) {
		return nil, errors.ErrStopIteration
	}
	if err != nil {
		return nil, err
	}
	s.pos++
	return v, nil
}
