// Package managed declares the contracts the interop layer consumes from a
// managed runtime: objects, types, fields, methods and the runtime itself.
//
// The interop layer never owns managed objects. It borrows them for the
// duration of a single protocol message.
package managed

import "fmt"

// DispatchID identifies which protocol handler set applies to a type.
// IDs are dense, small and identical across runtime instances.
type DispatchID uint16

// Value is a managed value: a Go primitive for primitive slots
// (bool, int8, int16, int32, int64, float32, float64, uint16 for char)
// or an Object for reference slots.
type Value = any

// Object is an opaque handle to a value on the managed heap.
type Object interface {
	Type() Type
}

// TypeKind distinguishes reference, array and primitive types
type TypeKind uint8

const (
	KindObject TypeKind = iota
	KindArray
	KindPrimitive
)

// Primitive names the primitive slot kinds
type Primitive uint8

const (
	PrimNone Primitive = iota
	PrimBoolean
	PrimByte
	PrimChar
	PrimShort
	PrimInt
	PrimLong
	PrimFloat
	PrimDouble
	PrimVoid
)

var primitiveNames = [...]string{
	PrimNone:    "none",
	PrimBoolean: "boolean",
	PrimByte:    "byte",
	PrimChar:    "char",
	PrimShort:   "short",
	PrimInt:     "int",
	PrimLong:    "long",
	PrimFloat:   "float",
	PrimDouble:  "double",
	PrimVoid:    "void",
}

func (p Primitive) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return fmt.Sprintf("primitive(%d)", p)
}

// Type is an immutable runtime type descriptor.
type Type interface {
	Name() string
	SimpleName() string
	Kind() TypeKind
	Primitive() Primitive
	// Component is the element type of an array type, nil otherwise.
	Component() Type
	Super() Type
	Interfaces() []Type
	IsInterface() bool
	IsAbstract() bool
	IsSubtypeOf(other Type) bool
	DispatchID() DispatchID
	Runtime() Runtime
}

// Field is a resolved field slot
type Field interface {
	Name() string
	Type() Type
	Declaring() Type
	IsFinal() bool
	IsStatic() bool
	IsPublic() bool
	// Get reads the field. recv is ignored for static fields.
	Get(recv Object) Value
	Set(recv Object, v Value)
}

// Method is a resolved method slot. Constructors are named "<init>".
type Method interface {
	Name() string
	Declaring() Type
	Params() []Type
	Return() Type
	IsVarArgs() bool
	IsStatic() bool
	IsPublic() bool
	IsConstructor() bool
	// VTableIndex is the selector slot the method occupies, or -1.
	VTableIndex() int
}

// Runtime is the managed runtime collaborator. One Runtime is one isolated
// instance: types of different runtimes are never identical.
type Runtime interface {
	ID() string
	// Language names the managed language for the protocol.
	Language() string

	TypeOf(o Object) Type
	Null() Object
	IsNull(o Object) bool
	Known(k WellKnown) Type
	PrimitiveType(p Primitive) Type

	LookupField(t Type, name string, static bool) Field
	Fields(t Type, static bool) []Field
	// LookupMethods returns the public methods named name that accept
	// arity arguments, either exactly or through a varargs tail.
	LookupMethods(t Type, name string, arity int, static bool) []Method
	Methods(t Type, static bool) []Method
	// Resolve finds the implementation of a well-known method for t by
	// vtable slot. It returns nil if t does not implement it.
	Resolve(t Type, m WellKnownMethod) Method
	Invoke(m Method, recv Object, args []Value) (Value, error)

	// Throw creates a managed exception of a well-known type as a Go error.
	Throw(k WellKnown, message string) error
	IsInstanceOf(o Object, t Type) bool

	NewString(s string) Object
	HostString(o Object) (string, bool)
	// Box wraps a Go primitive, string or *big.Int into its managed object.
	Box(v Value) (Object, error)

	NewArray(component Type, length int) Object
	ArrayLength(o Object) int
	ArrayGet(o Object, index int) Value
	ArraySet(o Object, index int, v Value)

	// Mirror returns the meta-object (class object) describing t.
	Mirror(t Type) Object
	// Mirrored returns the type described by a meta-object.
	Mirrored(o Object) (Type, bool)
}
