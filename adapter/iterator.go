package adapter

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Iterator is the iterator view of a managed java.util.Iterator
type Iterator struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewIterator creates the view
func NewIterator(rt managed.Runtime, obj managed.Object) *Iterator {
	return &Iterator{rt: rt, obj: obj}
}

// HasNext calls hasNext()
func (it *Iterator) HasNext() (bool, error) {
	ok, err := sendBool(it.rt, errors.PhaseAdapter, it.obj, managed.MethodIteratorHasNext)
	if err != nil {
		return false, convert.Fault(err)
	}
	return ok, nil
}

// Next calls next(). An exhausted iterator yields errors.ErrStopIteration.
func (it *Iterator) Next() (any, error) {
	v, err := send(it.rt, errors.PhaseAdapter, it.obj, managed.MethodIteratorNext)
	if err != nil {
		if convert.Raised(it.rt, err, managed.TypeNoSuchElement) {
			return nil, errors.ErrStopIteration
		}
		return nil, convert.Fault(err)
	}
	return convert.ToProtocol(it.rt, v), nil
}

// Iterable is the view of a managed java.lang.Iterable
type Iterable struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewIterable creates the view
func NewIterable(rt managed.Runtime, obj managed.Object) *Iterable {
	return &Iterable{rt: rt, obj: obj}
}

// Iterator calls iterator()
func (it *Iterable) Iterator() (managed.Object, error) {
	v, err := send(it.rt, errors.PhaseAdapter, it.obj, managed.MethodIterableIterator)
	if err != nil {
		return nil, convert.Fault(err)
	}
	o, ok := v.(managed.Object)
	if !ok || it.rt.IsNull(o) {
		return nil, errors.Unsupported(errors.PhaseAdapter, "iterator() returned null")
	}
	return o, nil
}

// Sequence is a protocol iterator implemented on the host side
type Sequence interface {
	HasNext() (bool, error)
	Next() (any, error)
}

// Projection maps each element of a source sequence, as the key and value
// iterators of a hash do over its entries iterator.
type Projection struct {
	src  Sequence
	pick func(any) (any, error)
}

// NewProjection creates a projected sequence
func NewProjection(src Sequence, pick func(any) (any, error)) *Projection {
	return &Projection{src: src, pick: pick}
}

func (p *Projection) HasNext() (bool, error) { return p.src.HasNext() }

func (p *Projection) Next() (any, error) {
	v, err := p.src.Next()
	if err != nil {
		return nil, err
	}
	return p.pick(v)
}
