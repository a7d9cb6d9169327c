package resource

import (
	"sync"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// ErrClosed is returned by a closed backend
var ErrClosed = errors.Closed(errors.PhaseDispatch, "handle table")

// LocalBackend is an in-memory handle backend with slot reuse.
type LocalBackend struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

var _ Backend = (*LocalBackend)(nil)

type entry struct {
	obj   managed.Object
	kind  Kind
	valid bool
}

// NewLocalBackend creates a new in-memory backend.
func NewLocalBackend() *LocalBackend {
	return &LocalBackend{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// Create stores obj and returns a handle.
func (b *LocalBackend) Create(kind Kind, obj managed.Object) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return 0, ErrClosed
	}

	e := entry{obj: obj, kind: kind, valid: true}

	if len(b.freeList) > 0 {
		handle := b.freeList[len(b.freeList)-1]
		b.freeList = b.freeList[:len(b.freeList)-1]
		b.entries[handle-1] = e
		return handle, nil
	}

	b.entries = append(b.entries, e)
	return Handle(len(b.entries)), nil
}

// lookup returns the live entry for handle; the caller holds mu
func (b *LocalBackend) lookup(handle Handle) (*entry, bool) {
	if handle == 0 {
		return nil, false
	}
	idx := int(handle - 1)
	if idx >= len(b.entries) || !b.entries[idx].valid {
		return nil, false
	}
	return &b.entries[idx], true
}

// Get retrieves the object behind handle.
func (b *LocalBackend) Get(handle Handle) (managed.Object, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, false
	}
	return e.obj, true
}

// Kind returns the kind a handle was issued for.
func (b *LocalBackend) Kind(handle Handle) (Kind, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.lookup(handle)
	if !ok {
		return 0, false
	}
	return e.kind, true
}

// Drop releases a handle; the slot is reused by later handles.
func (b *LocalBackend) Drop(handle Handle) (managed.Object, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	e, ok := b.lookup(handle)
	if !ok {
		return nil, false
	}
	obj := e.obj
	*e = entry{}
	b.freeList = append(b.freeList, handle)
	return obj, true
}

// Close releases all handles.
func (b *LocalBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	for i := range b.entries {
		if b.entries[i].valid {
			if d, ok := b.entries[i].obj.(Dropper); ok {
				d.Drop()
			}
		}
	}

	b.entries = nil
	b.freeList = nil
	return nil
}

// Len returns the number of live handles.
func (b *LocalBackend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.entries) - len(b.freeList)
}

// Each iterates over live handles in handle order.
func (b *LocalBackend) Each(fn func(Handle, Kind, managed.Object) bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for i, e := range b.entries {
		if e.valid {
			if !fn(Handle(i+1), e.kind, e.obj) {
				break
			}
		}
	}
}
