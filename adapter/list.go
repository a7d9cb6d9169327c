package adapter

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// List is the array view of a managed java.util.List.
// The size is re-read from the list on every call.
type List struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewList creates the view
func NewList(rt managed.Runtime, obj managed.Object) *List {
	return &List{rt: rt, obj: obj}
}

// Size calls size() on the managed list
func (l *List) Size() (int64, error) {
	n, err := sendInt(l.rt, errors.PhaseAdapter, l.obj, managed.MethodListSize)
	if err != nil {
		return 0, convert.Fault(err)
	}
	return n, nil
}

func (l *List) inBounds(i int64) bool {
	n, err := l.Size()
	return err == nil && i >= 0 && i < n
}

func (l *List) IsReadable(i int64) bool   { return l.inBounds(i) }
func (l *List) IsModifiable(i int64) bool { return l.inBounds(i) }
func (l *List) IsRemovable(i int64) bool  { return l.inBounds(i) }

// IsInsertable holds only for the append position
func (l *List) IsInsertable(i int64) bool {
	n, err := l.Size()
	return err == nil && i == n
}

// Read calls get(i)
func (l *List) Read(i int64) (any, error) {
	if i < 0 || i > maxInt32 {
		return nil, errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	v, err := send(l.rt, errors.PhaseAdapter, l.obj, managed.MethodListGet, int32(i))
	if err != nil {
		return nil, l.translate(err, i)
	}
	return convert.ToProtocol(l.rt, v), nil
}

// Write replaces element i, or appends when i equals the current size
func (l *List) Write(i int64, v any) error {
	if i < 0 || i > maxInt32 {
		return errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	elem, err := convert.ToManaged(l.rt, v, l.rt.Known(managed.TypeObject))
	if err != nil {
		return err
	}
	n, err := l.Size()
	if err != nil {
		return err
	}
	if i == n {
		_, err = send(l.rt, errors.PhaseAdapter, l.obj, managed.MethodListAdd, elem)
	} else {
		_, err = send(l.rt, errors.PhaseAdapter, l.obj, managed.MethodListSet, int32(i), elem)
	}
	return l.translate(err, i)
}

// Remove calls remove(i)
func (l *List) Remove(i int64) error {
	if i < 0 || i > maxInt32 {
		return errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	_, err := send(l.rt, errors.PhaseAdapter, l.obj, managed.MethodListRemove, int32(i))
	return l.translate(err, i)
}

func (l *List) translate(err error, i int64) error {
	switch {
	case err == nil:
		return nil
	case convert.Raised(l.rt, err, managed.TypeIndexOutOfBounds):
		return errors.New(errors.PhaseAdapter, errors.KindInvalidIndex).
			Value(i).Cause(err).Detail("index %d out of range", i).Build()
	case convert.Raised(l.rt, err, managed.TypeUnsupportedOperation):
		return errors.New(errors.PhaseAdapter, errors.KindUnsupported).
			ManagedType(l.obj.Type().Name()).Cause(err).Detail("list refused the operation").Build()
	}
	return convert.Fault(err)
}
