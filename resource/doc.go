// Package resource provides the per-instance handle table.
//
// A handle is a small non-zero integer standing for a managed object inside
// one runtime instance. Handles never cross instances: two instances may
// issue the same number for unrelated objects.
//
// Two kinds of handles exist:
//
//	KindIdentity - interned per object; the handle is the object's identity
//	               hash code for the protocol
//	KindPinned   - issued on request; keeps an object addressable by number,
//	               as the CLI does for its demo objects
//
// Usage:
//
//	table := resource.NewTable()
//
//	// Same object, same handle
//	h := table.Intern(resource.KindIdentity, obj)
//	h == table.Intern(resource.KindIdentity, obj) // true
//
//	// Kind-checked retrieval
//	obj, ok := table.GetTyped(h, resource.KindIdentity) // ok
//	obj, ok = table.GetTyped(h, resource.KindPinned)    // !ok
//
// Observers receive EventCreated and EventDropped notifications.
//
// Handles are not garbage collected. The table holds its objects until the
// handle is removed or the table is closed; closing an instance closes its
// table.
package resource
