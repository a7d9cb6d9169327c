package interop

import (
	"fmt"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

func runtimeOf(obj managed.Object) managed.Runtime {
	return obj.Type().Runtime()
}

// argAt returns argument i. Send and Route reject argument lists shorter
// than the message's Arity, so i is always in range here.
func argAt(args []any, i int, msg dispatch.Message) any {
	if i >= len(args) {
		errors.Fatal("%s called with %d arguments", msg, len(args))
	}
	return args[i]
}

func indexArg(args []any, i int, msg dispatch.Message) (int64, error) {
	n, err := coerce.AsLong(argAt(args, i, msg))
	if err != nil {
		return 0, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
			Path(msg.String()).
			WitType(coerce.KindLong.WitName()).
			Value(args[i]).
			Cause(err).
			Build()
	}
	return n, nil
}

func nameArg(args []any, i int, msg dispatch.Message) (string, error) {
	v := argAt(args, i, msg)
	if o, ok := v.(managed.Object); ok {
		if s, ok := o.Type().Runtime().HostString(o); ok {
			return s, nil
		}
	}
	s, err := coerce.AsString(v)
	if err != nil {
		return "", errors.New(errors.PhaseMember, errors.KindTypeMismatch).
			Path(msg.String()).
			WitType(coerce.KindString.WitName()).
			Value(v).
			Build()
	}
	return s, nil
}

func orderArg(args []any, i int, msg dispatch.Message) (adapter.Order, error) {
	switch o := argAt(args, i, msg).(type) {
	case adapter.Order:
		return o, nil
	case string:
		switch o {
		case "LITTLE_ENDIAN", "little":
			return adapter.LittleEndian, nil
		case "BIG_ENDIAN", "big":
			return adapter.BigEndian, nil
		}
	}
	return 0, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
		Path(msg.String()).
		Value(args[i]).
		Detail("byte order expected").
		Build()
}

func boolArg(args []any, i int) bool {
	if i >= len(args) {
		return false
	}
	b, _ := args[i].(bool)
	return b
}

// sendNamed calls the public no-argument instance method name on recv
func sendNamed(rt managed.Runtime, recv managed.Object, name string) (managed.Value, error) {
	ms := rt.LookupMethods(recv.Type(), name, 0, false)
	if len(ms) == 0 {
		return nil, errors.New(errors.PhaseDispatch, errors.KindUnsupported).
			ManagedType(recv.Type().Name()).
			Detail("%s not implemented", name).
			Build()
	}
	v, err := rt.Invoke(ms[0], recv, nil)
	if err != nil {
		return nil, convert.Fault(err)
	}
	return v, nil
}

// sendKnown calls a well-known method through the vtable
func sendKnown(rt managed.Runtime, recv managed.Object, wk managed.WellKnownMethod) (managed.Value, error) {
	m := rt.Resolve(recv.Type(), wk)
	if m == nil {
		return nil, errors.New(errors.PhaseDispatch, errors.KindUnsupported).
			ManagedType(recv.Type().Name()).
			Detail("%s not implemented", wk).
			Build()
	}
	v, err := rt.Invoke(m, recv, nil)
	if err != nil {
		return nil, convert.Fault(err)
	}
	return v, nil
}

func sendObject(rt managed.Runtime, recv managed.Object, wk managed.WellKnownMethod) (managed.Object, error) {
	v, err := sendKnown(rt, recv, wk)
	if err != nil {
		return nil, err
	}
	o, ok := v.(managed.Object)
	if !ok || rt.IsNull(o) {
		return nil, errors.New(errors.PhaseDispatch, errors.KindUnsupported).
			ManagedType(recv.Type().Name()).
			Detail("%s returned no object", wk).
			Build()
	}
	return o, nil
}

func sendInt(rt managed.Runtime, recv managed.Object, name string) (int, error) {
	v, err := sendNamed(rt, recv, name)
	if err != nil {
		return 0, err
	}
	n, err := coerce.AsLong(v)
	if err != nil {
		return 0, mismatch(recv, fmt.Sprintf("%s returned %T", name, v))
	}
	return int(n), nil
}

func mismatch(recv managed.Object, detail string) error {
	return errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
		ManagedType(recv.Type().Name()).
		Detail("%s", detail).
		Build()
}

func unsupported(recv managed.Object, msg dispatch.Message, detail string) error {
	return errors.New(errors.PhaseDispatch, errors.KindUnsupported).
		ManagedType(recv.Type().Name()).
		Path(msg.String()).
		Detail("%s", detail).
		Build()
}

// always answers a constant
func always(v any) dispatch.Handler {
	return func(managed.Object, []any) (any, error) { return v, nil }
}
