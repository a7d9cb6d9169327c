package interop

import (
	"fmt"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Options configures a Library
type Options struct {
	// DisplaySideEffects lets ToDisplayString call the receiver's toString.
	DisplaySideEffects bool
}

// Library is the protocol surface. It accepts any protocol value as the
// receiver: managed objects are routed through the dispatch router, while
// primitives, bound methods and host-side iterators are answered directly.
type Library struct {
	router *dispatch.Router
	opts   Options
}

// NewLibrary creates a library over r
func NewLibrary(r *dispatch.Router, opts Options) *Library {
	return &Library{router: r, opts: opts}
}

// Router returns the router managed receivers are sent through
func (l *Library) Router() *dispatch.Router { return l.router }

// Send sends msg to recv
func (l *Library) Send(recv any, msg dispatch.Message, args ...any) (any, error) {
	if msg >= dispatch.MessageCount {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "message outside the catalogue")
	}
	if err := dispatch.CheckArgs(msg, args); err != nil {
		return nil, err
	}
	switch r := recv.(type) {
	case nil:
		return sendNil(msg, args)
	case managed.Object:
		return l.router.Route(r, msg, args...)
	case *BoundMethod:
		return sendBound(r, msg, args)
	case adapter.Sequence:
		return sendSequence(r, msg, args)
	}
	if _, ok := coerce.Classify(recv); ok {
		return sendPrimitive(recv, msg, args)
	}
	return hostDefault(recv, msg, args)
}

func (l *Library) query(recv any, msg dispatch.Message, args ...any) bool {
	v, err := l.Send(recv, msg, args...)
	if err != nil {
		return false
	}
	b, _ := v.(bool)
	return b
}

// typed sends msg and asserts the result type
func typed[T any](l *Library, recv any, msg dispatch.Message, args ...any) (T, error) {
	var zero T
	v, err := l.Send(recv, msg, args...)
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
			Path(msg.String()).
			Value(v).
			Detail("result is %T, want %T", v, zero).
			Build()
	}
	return t, nil
}

func unsupportedHost(recv any, msg dispatch.Message) error {
	return errors.New(errors.PhaseDispatch, errors.KindUnsupported).
		Path(msg.String()).
		Detail("%T does not support the message", recv).
		Build()
}

// hostDefault answers a message a host value does not implement
func hostDefault(recv any, msg dispatch.Message, args []any) (any, error) {
	switch msg {
	case dispatch.ToDisplayString:
		return fmt.Sprint(recv), nil
	case dispatch.IsIdentical:
		return identicalHost(recv, argAt(args, 0, msg)), nil
	case dispatch.ToNative:
		return nil, nil
	}
	switch dispatch.FallbackOf(msg) {
	case dispatch.FallbackFalse:
		return false, nil
	case dispatch.FallbackUndefined:
		return dispatch.TriUndefined, nil
	case dispatch.FallbackDerived:
		if msg.IsQuery() {
			return false, nil
		}
	}
	return nil, unsupportedHost(recv, msg)
}

func identicalHost(a, b any) (same bool) {
	defer func() {
		if recover() != nil {
			same = false
		}
	}()
	return a == b
}

func sendNil(msg dispatch.Message, args []any) (any, error) {
	switch msg {
	case dispatch.IsNull:
		return true, nil
	case dispatch.ToDisplayString:
		return "null", nil
	case dispatch.IsIdenticalOrUndefined:
		return dispatch.TriOf(argAt(args, 0, msg) == nil), nil
	}
	return hostDefault(nil, msg, args)
}

func sendPrimitive(recv any, msg dispatch.Message, args []any) (any, error) {
	if op, ok := primitiveOps[msg]; ok {
		return op(recv)
	}
	if msg == dispatch.AsTruffleString {
		return coerce.AsString(recv)
	}
	return hostDefault(recv, msg, args)
}

func sendBound(b *BoundMethod, msg dispatch.Message, args []any) (any, error) {
	switch msg {
	case dispatch.IsExecutable, dispatch.HasExecutableName, dispatch.HasDeclaringMetaObject, dispatch.HasLanguage:
		return true, nil
	case dispatch.Execute:
		return b.Execute(args)
	case dispatch.GetExecutableName:
		return b.name, nil
	case dispatch.GetDeclaringMetaObject:
		return b.typ.Runtime().Mirror(b.typ), nil
	case dispatch.GetLanguage:
		return b.typ.Runtime().Language(), nil
	case dispatch.ToDisplayString:
		return b.String(), nil
	case dispatch.IsIdenticalOrUndefined:
		return dispatch.TriOf(argAt(args, 0, msg) == any(b)), nil
	}
	return hostDefault(b, msg, args)
}

func sendSequence(s adapter.Sequence, msg dispatch.Message, args []any) (any, error) {
	switch msg {
	case dispatch.IsIterator:
		return true, nil
	case dispatch.HasIteratorNextElement:
		return s.HasNext()
	case dispatch.GetIteratorNextElement:
		return s.Next()
	case dispatch.IsIdenticalOrUndefined:
		return dispatch.TriOf(identicalHost(s, argAt(args, 0, msg))), nil
	}
	return hostDefault(s, msg, args)
}
