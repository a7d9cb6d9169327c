package resource

import "github.com/wippyai/hostinterop/managed"

// Handle is an instance-local reference to a managed object.
// Handle 0 is reserved and always invalid.
type Handle uint32

// Kind tags what a handle was issued for
type Kind uint32

const (
	// KindIdentity handles double as identity hash codes
	KindIdentity Kind = iota + 1
	// KindPinned handles keep an object reachable for a host caller
	KindPinned
)

func (k Kind) String() string {
	switch k {
	case KindIdentity:
		return "identity"
	case KindPinned:
		return "pinned"
	}
	return "unknown"
}

// EventType identifies a handle lifecycle event
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
)

// Event represents a handle lifecycle event.
type Event struct {
	Object managed.Object
	Handle Handle
	Kind   Kind
	Type   EventType
}

// Observer receives notifications about handle lifecycle events.
type Observer interface {
	OnHandleEvent(Event)
}

// ObserverFunc adapts a function to Observer
type ObserverFunc func(Event)

func (f ObserverFunc) OnHandleEvent(e Event) { f(e) }

// Backend provides the underlying storage for handles.
type Backend interface {
	// Create stores obj and returns a fresh handle.
	Create(kind Kind, obj managed.Object) (Handle, error)

	// Get retrieves the object behind a handle.
	Get(handle Handle) (managed.Object, bool)

	// Kind reports what the handle was issued for.
	Kind(handle Handle) (Kind, bool)

	// Drop releases a handle and returns the object it referenced.
	Drop(handle Handle) (managed.Object, bool)

	Len() int

	// Close releases every handle.
	Close() error
}

// Dropper is optionally implemented by objects that need cleanup when
// their last handle is dropped.
type Dropper interface {
	Drop()
}
