package adapter

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Array is the array view of a managed array
type Array struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewArray creates the view; obj must have an array type
func NewArray(rt managed.Runtime, obj managed.Object) *Array {
	return &Array{rt: rt, obj: obj}
}

func (a *Array) Size() int64 {
	return int64(a.rt.ArrayLength(a.obj))
}

func (a *Array) inBounds(i int64) bool {
	return i >= 0 && i < a.Size()
}

func (a *Array) IsReadable(i int64) bool   { return a.inBounds(i) }
func (a *Array) IsModifiable(i int64) bool { return a.inBounds(i) }

// Read returns element i: a Go primitive for primitive arrays, a managed
// object otherwise.
func (a *Array) Read(i int64) (any, error) {
	if !a.inBounds(i) {
		return nil, errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	return convert.ToProtocol(a.rt, a.rt.ArrayGet(a.obj, int(i))), nil
}

// Write stores v at i after converting it to the component type
func (a *Array) Write(i int64, v any) error {
	if !a.inBounds(i) {
		return errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	elem, err := convert.ToManaged(a.rt, v, a.obj.Type().Component())
	if err != nil {
		return err
	}
	a.rt.ArraySet(a.obj, int(i), elem)
	return nil
}

// Remove is not supported on fixed-length arrays
func (a *Array) Remove(i int64) error {
	return errors.Unsupported(errors.PhaseAdapter, "remove from a managed array")
}
