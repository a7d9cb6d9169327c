package convert

import (
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Fault passes a managed exception through as *errors.ManagedFault.
// Errors that are not managed exceptions are returned unchanged.
func Fault(err error) error {
	if err == nil {
		return nil
	}
	th, ok := managed.AsThrowable(err)
	if !ok {
		return err
	}
	name := "<exception>"
	if th.Exception != nil && th.Exception.Type() != nil {
		name = th.Exception.Type().Name()
	}
	return errors.Fault(name, th.Message, th)
}

// Raised reports whether err is a managed exception of well-known type k
func Raised(rt managed.Runtime, err error, k managed.WellKnown) bool {
	return managed.IsThrowableOf(rt, err, k)
}
