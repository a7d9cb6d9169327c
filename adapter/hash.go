package adapter

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Map is the hash view of a managed java.util.Map.
//
// Readability and insertability come from containsKey alone. Modifiability
// and removability are reported equal to readability: the managed map's real
// mutability is only known once a mutation is attempted, so a write after a
// positive IsModifiable may still fail with KindUnsupported.
type Map struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewMap creates the view
func NewMap(rt managed.Runtime, obj managed.Object) *Map {
	return &Map{rt: rt, obj: obj}
}

// Size calls size()
func (m *Map) Size() (int64, error) {
	n, err := sendInt(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapSize)
	if err != nil {
		return 0, convert.Fault(err)
	}
	return n, nil
}

func (m *Map) key(k any) (managed.Value, error) {
	v, err := convert.ToManaged(m.rt, k, m.rt.Known(managed.TypeObject))
	if err != nil {
		return nil, errors.New(errors.PhaseAdapter, errors.KindUnknownKey).Value(k).Cause(err).Build()
	}
	return v, nil
}

// Contains calls containsKey
func (m *Map) Contains(k any) (bool, error) {
	key, err := m.key(k)
	if err != nil {
		return false, err
	}
	ok, err := sendBool(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapContainsKey, key)
	if err != nil {
		return false, m.translate(err, k)
	}
	return ok, nil
}

func (m *Map) IsReadable(k any) bool {
	ok, err := m.Contains(k)
	return err == nil && ok
}

func (m *Map) IsModifiable(k any) bool { return m.IsReadable(k) }
func (m *Map) IsRemovable(k any) bool  { return m.IsReadable(k) }

func (m *Map) IsInsertable(k any) bool {
	ok, err := m.Contains(k)
	return err == nil && !ok
}

// Read returns the value for k or fails with KindUnknownKey
func (m *Map) Read(k any) (any, error) {
	ok, err := m.Contains(k)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.UnknownKey(errors.PhaseAdapter, k)
	}
	key, _ := m.key(k)
	v, err := send(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapGet, key)
	if err != nil {
		return nil, m.translate(err, k)
	}
	return convert.ToProtocol(m.rt, v), nil
}

// Write calls put(k, v)
func (m *Map) Write(k, v any) error {
	key, err := m.key(k)
	if err != nil {
		return err
	}
	val, err := convert.ToManaged(m.rt, v, m.rt.Known(managed.TypeObject))
	if err != nil {
		return err
	}
	_, err = send(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapPut, key, val)
	return m.translate(err, k)
}

// Remove calls remove(k); a missing key fails with KindUnknownKey
func (m *Map) Remove(k any) error {
	ok, err := m.Contains(k)
	if err != nil {
		return err
	}
	if !ok {
		return errors.UnknownKey(errors.PhaseAdapter, k)
	}
	key, _ := m.key(k)
	_, err = send(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapRemove, key)
	return m.translate(err, k)
}

// EntriesIterator returns the managed iterator of entrySet()
func (m *Map) EntriesIterator() (managed.Object, error) {
	set, err := send(m.rt, errors.PhaseAdapter, m.obj, managed.MethodMapEntrySet)
	if err != nil {
		return nil, convert.Fault(err)
	}
	setObj, ok := set.(managed.Object)
	if !ok || m.rt.IsNull(setObj) {
		return nil, errors.Unsupported(errors.PhaseAdapter, "entrySet returned null")
	}
	return NewIterable(m.rt, setObj).Iterator()
}

func (m *Map) translate(err error, k any) error {
	switch {
	case err == nil:
		return nil
	case convert.Raised(m.rt, err, managed.TypeUnsupportedOperation):
		return errors.New(errors.PhaseAdapter, errors.KindUnsupported).
			ManagedType(m.obj.Type().Name()).Cause(err).Detail("map refused the operation").Build()
	case convert.Raised(m.rt, err, managed.TypeClassCast),
		convert.Raised(m.rt, err, managed.TypeIllegalArgument),
		convert.Raised(m.rt, err, managed.TypeNullPointer):
		return errors.New(errors.PhaseAdapter, errors.KindUnknownKey).Value(k).Cause(err).Build()
	}
	return convert.Fault(err)
}

// MapEntry views a managed Map.Entry as a two element array:
// index 0 is the key, index 1 the value. Only the value is writable.
type MapEntry struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewMapEntry creates the view
func NewMapEntry(rt managed.Runtime, obj managed.Object) *MapEntry {
	return &MapEntry{rt: rt, obj: obj}
}

func (e *MapEntry) Size() int64 { return 2 }

func (e *MapEntry) IsReadable(i int64) bool   { return i == 0 || i == 1 }
func (e *MapEntry) IsModifiable(i int64) bool { return i == 1 }

func (e *MapEntry) Read(i int64) (any, error) {
	var wk managed.WellKnownMethod
	switch i {
	case 0:
		wk = managed.MethodEntryGetKey
	case 1:
		wk = managed.MethodEntryGetValue
	default:
		return nil, errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	v, err := send(e.rt, errors.PhaseAdapter, e.obj, wk)
	if err != nil {
		return nil, convert.Fault(err)
	}
	return convert.ToProtocol(e.rt, v), nil
}

func (e *MapEntry) Write(i int64, v any) error {
	switch i {
	case 0:
		return errors.Unsupported(errors.PhaseAdapter, "map entry keys are immutable")
	case 1:
	default:
		return errors.InvalidIndex(errors.PhaseAdapter, i)
	}
	val, err := convert.ToManaged(e.rt, v, e.rt.Known(managed.TypeObject))
	if err != nil {
		return err
	}
	_, err = send(e.rt, errors.PhaseAdapter, e.obj, managed.MethodEntrySetValue, val)
	if convert.Raised(e.rt, err, managed.TypeUnsupportedOperation) {
		return errors.New(errors.PhaseAdapter, errors.KindUnsupported).Cause(err).Detail("entry is read-only").Build()
	}
	return convert.Fault(err)
}
