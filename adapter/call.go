package adapter

import (
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// send invokes a well-known method on recv through the vtable
func send(rt managed.Runtime, phase errors.Phase, recv managed.Object, wk managed.WellKnownMethod, args ...managed.Value) (managed.Value, error) {
	m := rt.Resolve(recv.Type(), wk)
	if m == nil {
		return nil, errors.New(phase, errors.KindUnsupported).
			ManagedType(recv.Type().Name()).
			Detail("%s not implemented", wk).
			Build()
	}
	return rt.Invoke(m, recv, args)
}

// sendInt invokes a method returning a managed int
func sendInt(rt managed.Runtime, phase errors.Phase, recv managed.Object, wk managed.WellKnownMethod) (int64, error) {
	v, err := send(rt, phase, recv, wk)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int32)
	if !ok {
		return 0, errors.New(phase, errors.KindTypeMismatch).
			ManagedType(recv.Type().Name()).
			Detail("%s returned %T", wk, v).
			Build()
	}
	return int64(n), nil
}

// sendBool invokes a method returning a managed boolean
func sendBool(rt managed.Runtime, phase errors.Phase, recv managed.Object, wk managed.WellKnownMethod, args ...managed.Value) (bool, error) {
	v, err := send(rt, phase, recv, wk, args...)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.New(phase, errors.KindTypeMismatch).
			ManagedType(recv.Type().Name()).
			Detail("%s returned %T", wk, v).
			Build()
	}
	return b, nil
}
