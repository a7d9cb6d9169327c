package vm

import (
	"strings"

	"github.com/wippyai/hostinterop/managed"
)

// VTable maps selector ids to method implementations.
// Lookups walk the parent chain when a slot is empty locally.
type VTable struct {
	parent  *VTable
	methods []*Method
}

// Lookup finds the implementation for a selector id
func (vt *VTable) Lookup(selector int) *Method {
	for v := vt; v != nil; v = v.parent {
		if selector >= 0 && selector < len(v.methods) {
			if m := v.methods[selector]; m != nil {
				return m
			}
		}
	}
	return nil
}

func (vt *VTable) add(selector int, m *Method) {
	if selector >= len(vt.methods) {
		grown := make([]*Method, selector+1)
		copy(grown, vt.methods)
		vt.methods = grown
	}
	vt.methods[selector] = m
}

// Class is a managed type. Classes are immutable once defined.
type Class struct {
	m          *Machine
	name       string
	kind       managed.TypeKind
	prim       managed.Primitive
	component  *Class
	super      *Class
	interfaces []*Class
	iface      bool
	abstract   bool
	final      bool

	fields  []*Field
	statics []*Field
	methods []*Method
	ctors   []*Method
	vtable  VTable
	slots   int

	dispatch managed.DispatchID
	mirror   *Object
	array    *Class
}

var _ managed.Type = (*Class)(nil)

func (c *Class) Name() string { return c.name }

func (c *Class) SimpleName() string {
	name := c.name
	if i := strings.LastIndexAny(name, ".$"); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func (c *Class) Kind() managed.TypeKind       { return c.kind }
func (c *Class) Primitive() managed.Primitive { return c.prim }
func (c *Class) IsInterface() bool            { return c.iface }
func (c *Class) IsAbstract() bool             { return c.abstract || c.iface }
func (c *Class) DispatchID() managed.DispatchID {
	return c.dispatch
}
func (c *Class) Runtime() managed.Runtime { return c.m }

func (c *Class) Component() managed.Type {
	if c.component == nil {
		return nil
	}
	return c.component
}

func (c *Class) Super() managed.Type {
	if c.super == nil {
		return nil
	}
	return c.super
}

func (c *Class) Interfaces() []managed.Type {
	out := make([]managed.Type, len(c.interfaces))
	for i, it := range c.interfaces {
		out[i] = it
	}
	return out
}

// IsSubtypeOf implements assignability: reflexive, through superclasses and
// interfaces, and covariant for reference arrays.
func (c *Class) IsSubtypeOf(other managed.Type) bool {
	o, ok := other.(*Class)
	if !ok || o == nil {
		return false
	}
	if c == o {
		return true
	}
	if c.kind == managed.KindPrimitive || o.kind == managed.KindPrimitive {
		return false
	}
	if c.kind == managed.KindArray {
		if o.kind == managed.KindArray {
			if c.component.kind == managed.KindPrimitive {
				return false
			}
			return c.component.IsSubtypeOf(o.component)
		}
		return o == c.m.objectClass
	}
	if o == c.m.objectClass {
		return true
	}
	for k := c; k != nil; k = k.super {
		if k == o {
			return true
		}
		for _, it := range k.interfaces {
			if it.IsSubtypeOf(o) {
				return true
			}
		}
	}
	return false
}

func (c *Class) String() string { return c.name }

// ArrayClass returns the array class with c as component
func (c *Class) ArrayClass() *Class {
	return c.m.arrayOf(c)
}

// Field is a field slot
type Field struct {
	name   string
	typ    *Class
	decl   *Class
	final  bool
	static bool
	public bool
	slot   int
	value  managed.Value
}

var _ managed.Field = (*Field)(nil)

func (f *Field) Name() string            { return f.name }
func (f *Field) Type() managed.Type      { return f.typ }
func (f *Field) Declaring() managed.Type { return f.decl }
func (f *Field) IsFinal() bool           { return f.final }
func (f *Field) IsStatic() bool          { return f.static }
func (f *Field) IsPublic() bool          { return f.public }

func (f *Field) Get(recv managed.Object) managed.Value {
	if f.static {
		return f.value
	}
	return recv.(*Object).fields[f.slot]
}

func (f *Field) Set(recv managed.Object, v managed.Value) {
	if f.static {
		f.value = v
		return
	}
	recv.(*Object).fields[f.slot] = v
}

// Native is the Go body of a managed method. self is nil for static methods
// and the freshly allocated object for constructors.
type Native func(m *Machine, self *Object, args []managed.Value) (managed.Value, error)

// Method is a method slot
type Method struct {
	name     string
	decl     *Class
	params   []*Class
	ret      *Class
	varargs  bool
	static   bool
	public   bool
	ctor     bool
	abstract bool
	selector int
	fn       Native
}

var _ managed.Method = (*Method)(nil)

func (m *Method) Name() string            { return m.name }
func (m *Method) Declaring() managed.Type { return m.decl }
func (m *Method) IsVarArgs() bool         { return m.varargs }
func (m *Method) IsStatic() bool          { return m.static }
func (m *Method) IsPublic() bool          { return m.public }
func (m *Method) IsConstructor() bool     { return m.ctor }
func (m *Method) VTableIndex() int        { return m.selector }

func (m *Method) Params() []managed.Type {
	out := make([]managed.Type, len(m.params))
	for i, p := range m.params {
		out[i] = p
	}
	return out
}

func (m *Method) Return() managed.Type {
	if m.ret == nil {
		return nil
	}
	return m.ret
}

// accepts reports whether the method can take argc arguments
func (m *Method) accepts(argc int) bool {
	n := len(m.params)
	if argc == n {
		return true
	}
	return m.varargs && argc >= n-1
}

func (m *Method) signature() string {
	var b strings.Builder
	b.WriteString(m.name)
	b.WriteByte('(')
	for i, p := range m.params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.name)
	}
	b.WriteByte(')')
	return b.String()
}

func (m *Method) String() string {
	return m.decl.name + "." + m.signature()
}
