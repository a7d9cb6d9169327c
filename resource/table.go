package resource

import (
	"sync"

	"github.com/wippyai/hostinterop/managed"
)

// Table maps handles to managed objects for one runtime instance.
// Objects are indexed by identity, so Intern returns the same handle for
// the same object until that handle is removed. Object implementations
// must be comparable.
type Table struct {
	backend   *LocalBackend
	index     map[indexKey]Handle
	indexMu   sync.Mutex
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

type indexKey struct {
	kind Kind
	obj  managed.Object
}

// NewTable creates a table with a LocalBackend.
func NewTable() *Table {
	return &Table{
		backend: NewLocalBackend(),
		index:   make(map[indexKey]Handle),
	}
}

func (t *Table) isClosed() bool {
	t.closeMu.RLock()
	defer t.closeMu.RUnlock()
	return t.closed
}

// Insert issues a new handle for obj, even if obj already has one.
func (t *Table) Insert(kind Kind, obj managed.Object) Handle {
	if t.isClosed() {
		return 0
	}
	handle, err := t.backend.Create(kind, obj)
	if err != nil {
		return 0
	}
	t.notify(Event{Type: EventCreated, Handle: handle, Kind: kind, Object: obj})
	return handle
}

// Intern returns the handle of kind held by obj, issuing one on first use.
func (t *Table) Intern(kind Kind, obj managed.Object) Handle {
	if t.isClosed() {
		return 0
	}
	key := indexKey{kind: kind, obj: obj}

	t.indexMu.Lock()
	if h, ok := t.index[key]; ok {
		t.indexMu.Unlock()
		return h
	}
	handle, err := t.backend.Create(kind, obj)
	if err != nil {
		t.indexMu.Unlock()
		return 0
	}
	t.index[key] = handle
	t.indexMu.Unlock()

	t.notify(Event{Type: EventCreated, Handle: handle, Kind: kind, Object: obj})
	return handle
}

// Lookup returns the interned handle of obj without issuing one
func (t *Table) Lookup(kind Kind, obj managed.Object) (Handle, bool) {
	t.indexMu.Lock()
	defer t.indexMu.Unlock()
	h, ok := t.index[indexKey{kind: kind, obj: obj}]
	return h, ok
}

// Get retrieves the object behind handle.
func (t *Table) Get(handle Handle) (managed.Object, bool) {
	return t.backend.Get(handle)
}

// GetTyped retrieves the object only if the handle has the expected kind.
func (t *Table) GetTyped(handle Handle, kind Kind) (managed.Object, bool) {
	actual, ok := t.backend.Kind(handle)
	if !ok || actual != kind {
		return nil, false
	}
	return t.backend.Get(handle)
}

// Remove drops a handle and returns its object.
func (t *Table) Remove(handle Handle) (managed.Object, bool) {
	kind, _ := t.backend.Kind(handle)
	obj, ok := t.backend.Drop(handle)
	if !ok {
		return nil, false
	}

	t.indexMu.Lock()
	key := indexKey{kind: kind, obj: obj}
	if h, ok := t.index[key]; ok && h == handle {
		delete(t.index, key)
	}
	t.indexMu.Unlock()

	if d, ok := obj.(Dropper); ok {
		d.Drop()
	}

	t.notify(Event{Type: EventDropped, Handle: handle, Kind: kind, Object: obj})
	return obj, true
}

// Subscribe adds an observer for lifecycle events.
func (t *Table) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of live handles.
func (t *Table) Len() int {
	return t.backend.Len()
}

// Each iterates over live handles.
func (t *Table) Each(fn func(Handle, Kind, managed.Object) bool) {
	t.backend.Each(fn)
}

// Clear drops every handle.
func (t *Table) Clear() {
	var handles []Handle
	t.backend.Each(func(h Handle, _ Kind, _ managed.Object) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		t.Remove(h)
	}
}

// Close releases all handles and stops issuing new ones.
func (t *Table) Close() error {
	t.closeMu.Lock()
	t.closed = true
	t.closeMu.Unlock()

	t.indexMu.Lock()
	t.index = make(map[indexKey]Handle)
	t.indexMu.Unlock()

	return t.backend.Close()
}

func (t *Table) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, o := range t.observers {
		o.OnHandleEvent(e)
	}
}
