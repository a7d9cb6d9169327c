package vm

import (
	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// ClassSpec describes a class to define
type ClassSpec struct {
	Name string
	// Super defaults to java.lang.Object.
	Super      *Class
	Interfaces []*Class
	Interface  bool
	Abstract   bool
	Final      bool
	Fields     []FieldSpec
	Methods    []MethodSpec
}

// FieldSpec describes a field. Static fields start at Value or the zero value.
type FieldSpec struct {
	Name    string
	Type    *Class
	Final   bool
	Static  bool
	Private bool
	Value   managed.Value
}

// MethodSpec describes a method. A method named "<init>" is a constructor.
// A nil Fn declares an abstract method.
type MethodSpec struct {
	Name    string
	Params  []*Class
	Return  *Class
	VarArgs bool
	Static  bool
	Private bool
	Fn      Native
}

// DefineClass defines a new class in the machine
func (m *Machine) DefineClass(spec ClassSpec) (*Class, error) {
	if spec.Name == "" {
		return nil, errors.Registration("class", errors.InvalidInput(errors.PhaseRegister, "empty class name"))
	}
	if _, exists := m.Class(spec.Name); exists {
		return nil, errors.Registration("class "+spec.Name,
			errors.InvalidInput(errors.PhaseRegister, "class already defined"))
	}
	if spec.Super != nil && spec.Super.final {
		return nil, errors.Registration("class "+spec.Name,
			errors.InvalidInput(errors.PhaseRegister, "cannot extend final class "+spec.Super.name))
	}
	for _, ms := range spec.Methods {
		if ms.VarArgs && (len(ms.Params) == 0 || ms.Params[len(ms.Params)-1].kind != managed.KindArray) {
			return nil, errors.Registration("method "+spec.Name+"."+ms.Name,
				errors.InvalidInput(errors.PhaseRegister, "varargs method must end with an array parameter"))
		}
	}

	c := m.build(spec)
	if m.classify != nil {
		c.dispatch = m.classify(c)
	}

	m.mu.Lock()
	if _, exists := m.classes[c.name]; exists {
		m.mu.Unlock()
		return nil, errors.Registration("class "+spec.Name,
			errors.InvalidInput(errors.PhaseRegister, "class already defined"))
	}
	m.classes[c.name] = c
	m.mu.Unlock()

	Logger().Debug("class defined",
		zap.String("machine", m.id),
		zap.String("class", c.name),
		zap.Uint16("dispatch", uint16(c.dispatch)))
	return c, nil
}

// MustDefine is DefineClass for static class tables; it panics on error
func (m *Machine) MustDefine(spec ClassSpec) *Class {
	c, err := m.DefineClass(spec)
	if err != nil {
		panic(err)
	}
	return c
}

// build lays out a class without registering it
func (m *Machine) build(spec ClassSpec) *Class {
	c := &Class{
		m:          m,
		name:       spec.Name,
		kind:       managed.KindObject,
		super:      spec.Super,
		interfaces: spec.Interfaces,
		iface:      spec.Interface,
		abstract:   spec.Abstract,
		final:      spec.Final,
	}
	if c.super == nil && !c.iface && m.objectClass != nil {
		c.super = m.objectClass
	}
	if c.super != nil {
		c.slots = c.super.slots
		c.vtable.parent = &c.super.vtable
	}

	for _, fs := range spec.Fields {
		f := &Field{
			name:   fs.Name,
			typ:    fs.Type,
			decl:   c,
			final:  fs.Final,
			static: fs.Static,
			public: !fs.Private,
		}
		if fs.Static {
			f.value = fs.Value
			if f.value == nil {
				f.value = m.zero(fs.Type)
			}
			c.statics = append(c.statics, f)
			continue
		}
		f.slot = c.slots
		c.slots++
		c.fields = append(c.fields, f)
	}

	for _, ms := range spec.Methods {
		meth := &Method{
			name:     ms.Name,
			decl:     c,
			params:   ms.Params,
			ret:      ms.Return,
			varargs:  ms.VarArgs,
			static:   ms.Static,
			public:   !ms.Private,
			ctor:     ms.Name == "<init>",
			abstract: ms.Fn == nil,
			selector: -1,
			fn:       ms.Fn,
		}
		if meth.ctor {
			c.ctors = append(c.ctors, meth)
			continue
		}
		c.methods = append(c.methods, meth)
		if !meth.static {
			meth.selector = m.intern(meth.name, len(meth.params))
			if !meth.abstract {
				c.vtable.add(meth.selector, meth)
			}
		}
	}
	return c
}

// register adds a bootstrap class without classification
func (m *Machine) register(spec ClassSpec) *Class {
	c := m.build(spec)
	m.classes[c.name] = c
	return c
}
