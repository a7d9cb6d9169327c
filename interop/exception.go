package interop

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
)

// ExceptionRuntimeError is the exception type every managed throwable reports
const ExceptionRuntimeError = "RUNTIME_ERROR"

// exceptionMessage returns the message of a throwable; ok is false when
// getMessage() answers null.
func exceptionMessage(recv managed.Object) (msg string, ok bool, err error) {
	rt := runtimeOf(recv)
	v, err := sendKnown(rt, recv, managed.MethodThrowableGetMessage)
	if err != nil {
		return "", false, err
	}
	o, isObj := v.(managed.Object)
	if !isObj || rt.IsNull(o) {
		return "", false, nil
	}
	msg, ok = rt.HostString(o)
	return msg, ok, nil
}

// exceptionCause returns the cause when it is itself a throwable
func exceptionCause(recv managed.Object) (managed.Object, bool) {
	rt := runtimeOf(recv)
	v, err := sendKnown(rt, recv, managed.MethodThrowableGetCause)
	if err != nil {
		return nil, false
	}
	o, ok := v.(managed.Object)
	if !ok || rt.IsNull(o) || !rt.IsInstanceOf(o, rt.Known(managed.TypeThrowable)) {
		return nil, false
	}
	return o, true
}

func installThrowable(t *dispatch.Table) {
	t.Handle(dispatch.IsException, always(true))
	t.Handle(dispatch.GetExceptionType, always(ExceptionRuntimeError))

	t.Handle(dispatch.ThrowException, func(recv managed.Object, _ []any) (any, error) {
		msg, _, err := exceptionMessage(recv)
		if err != nil {
			return nil, err
		}
		return nil, convert.Fault(&managed.Throwable{Exception: recv, Message: msg})
	})

	t.Handle(dispatch.HasExceptionMessage, func(recv managed.Object, _ []any) (any, error) {
		_, ok, err := exceptionMessage(recv)
		return err == nil && ok, nil
	})
	t.Handle(dispatch.GetExceptionMessage, func(recv managed.Object, _ []any) (any, error) {
		msg, ok, err := exceptionMessage(recv)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, unsupported(recv, dispatch.GetExceptionMessage, "exception has no message")
		}
		return msg, nil
	})

	t.Handle(dispatch.HasExceptionCause, func(recv managed.Object, _ []any) (any, error) {
		_, ok := exceptionCause(recv)
		return ok, nil
	})
	t.Handle(dispatch.GetExceptionCause, func(recv managed.Object, _ []any) (any, error) {
		c, ok := exceptionCause(recv)
		if !ok {
			return nil, unsupported(recv, dispatch.GetExceptionCause, "exception has no cause")
		}
		return c, nil
	})

	t.Handle(dispatch.HasExceptionStackTrace, always(true))
	t.Handle(dispatch.GetExceptionStackTrace, func(recv managed.Object, _ []any) (any, error) {
		return sendObject(runtimeOf(recv), recv, managed.MethodThrowableGetStackTrace)
	})
}
