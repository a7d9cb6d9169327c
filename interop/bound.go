package interop

import (
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// BoundMethod is the value of reading an invocable member: the member name
// bound to its receiver. Executing it invokes the member with overload
// resolution at call time.
type BoundMethod struct {
	recv   managed.Object
	typ    managed.Type
	name   string
	static bool
	in     *dispatch.Instance
}

// Name returns the member name
func (b *BoundMethod) Name() string { return b.name }

// Receiver returns the bound receiver; nil for static members
func (b *BoundMethod) Receiver() managed.Object { return b.recv }

// Declaring returns the type the member was read from
func (b *BoundMethod) Declaring() managed.Type { return b.typ }

// IsStatic reports whether the member is static
func (b *BoundMethod) IsStatic() bool { return b.static }

// Execute invokes the member. It fails with KindClosed once the instance
// the member was read through is detached.
func (b *BoundMethod) Execute(args []any) (any, error) {
	if b.in.Closed() {
		return nil, errors.Closed(errors.PhaseInvoke, "instance "+b.in.ID())
	}
	if b.static {
		return b.in.Invoker().InvokeStatic(b.typ, b.name, args)
	}
	return b.in.Invoker().Invoke(b.recv, b.name, args)
}

func (b *BoundMethod) String() string {
	return b.typ.Name() + "." + b.name
}
