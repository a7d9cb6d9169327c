package vm

import (
	"fmt"
	"math/big"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Classifier assigns a dispatch id to a freshly defined type
type Classifier func(managed.Type) managed.DispatchID

// Options configures a Machine
type Options struct {
	// ID names the machine; a random UUID is used when empty.
	ID string
	// Language is reported to the protocol. Defaults to "java".
	Language string
	// Classify assigns dispatch ids. Without it every type gets id 0.
	Classify Classifier
}

// Object is a managed heap object
type Object struct {
	class  *Class
	fields []managed.Value
	native any
	hash   atomic.Int32
}

var _ managed.Object = (*Object)(nil)

func (o *Object) Type() managed.Type { return o.class }

// Class returns the concrete class of o
func (o *Object) Class() *Class { return o.class }

// Native returns the Go state backing o, if any
func (o *Object) Native() any { return o.native }

func (o *Object) String() string {
	return fmt.Sprintf("%s@%x", o.class.name, uint32(o.class.m.identityHash(o)))
}

// Machine is one isolated managed runtime instance
type Machine struct {
	id       string
	language string
	classify Classifier

	mu        sync.RWMutex
	classes   map[string]*Class
	selectors map[managed.Selector]int

	known       [managed.WellKnownCount]*Class
	prims       map[managed.Primitive]*Class
	objectClass *Class
	classClass  *Class
	nullClass   *Class
	null        *Object

	bigEndian    *Object
	littleEndian *Object

	nextHash atomic.Int32
	booted   bool
}

var _ managed.Runtime = (*Machine)(nil)

// New creates a machine with the standard library classes defined
func New(opts Options) *Machine {
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	lang := opts.Language
	if lang == "" {
		lang = "java"
	}
	m := &Machine{
		id:        id,
		language:  lang,
		classify:  opts.Classify,
		classes:   make(map[string]*Class),
		selectors: make(map[managed.Selector]int),
		prims:     make(map[managed.Primitive]*Class),
	}
	m.bootstrap()
	if m.classify != nil {
		all := []*Class{m.nullClass}
		for _, c := range m.classes {
			all = append(all, c)
		}
		for _, c := range m.prims {
			all = append(all, c)
		}
		for _, c := range all {
			for k := c; k != nil; k = k.array {
				k.dispatch = m.classify(k)
			}
		}
	}
	m.booted = true
	Logger().Debug("machine created",
		zap.String("id", m.id),
		zap.Int("classes", len(m.classes)))
	return m
}

func (m *Machine) ID() string       { return m.id }
func (m *Machine) Language() string { return m.language }

func (m *Machine) TypeOf(o managed.Object) managed.Type {
	if o == nil {
		return m.nullClass
	}
	return o.Type()
}

func (m *Machine) Null() managed.Object { return m.null }

func (m *Machine) IsNull(o managed.Object) bool {
	if o == nil {
		return true
	}
	obj, ok := o.(*Object)
	return ok && (obj == nil || obj == m.null)
}

func (m *Machine) Known(k managed.WellKnown) managed.Type {
	if int(k) >= len(m.known) || m.known[k] == nil {
		return nil
	}
	return m.known[k]
}

// KnownClass returns the class of a well-known type
func (m *Machine) KnownClass(k managed.WellKnown) *Class {
	return m.known[k]
}

func (m *Machine) PrimitiveType(p managed.Primitive) managed.Type {
	if c, ok := m.prims[p]; ok {
		return c
	}
	return nil
}

// Prim returns the class of a primitive kind
func (m *Machine) Prim(p managed.Primitive) *Class {
	return m.prims[p]
}

// Class looks up a class by qualified name
func (m *Machine) Class(name string) (*Class, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.classes[name]
	return c, ok
}

// ObjectClass returns java.lang.Object
func (m *Machine) ObjectClass() *Class { return m.objectClass }

func (m *Machine) asClass(t managed.Type) *Class {
	c, ok := t.(*Class)
	if !ok || c == nil || c.m != m {
		return nil
	}
	return c
}

func (m *Machine) LookupField(t managed.Type, name string, static bool) managed.Field {
	for c := m.asClass(t); c != nil; c = c.super {
		list := c.fields
		if static {
			list = c.statics
		}
		for _, f := range list {
			if f.name == name {
				return f
			}
		}
	}
	return nil
}

// Fields lists public fields, superclass fields first
func (m *Machine) Fields(t managed.Type, static bool) []managed.Field {
	var chain []*Class
	for c := m.asClass(t); c != nil; c = c.super {
		chain = append(chain, c)
	}
	var out []managed.Field
	for i := len(chain) - 1; i >= 0; i-- {
		list := chain[i].fields
		if static {
			list = chain[i].statics
		}
		for _, f := range list {
			if f.public {
				out = append(out, f)
			}
		}
	}
	return out
}

func (m *Machine) LookupMethods(t managed.Type, name string, arity int, static bool) []managed.Method {
	c := m.asClass(t)
	if c == nil {
		return nil
	}
	if name == "<init>" {
		var out []managed.Method
		for _, ctor := range c.ctors {
			if ctor.public && ctor.accepts(arity) {
				out = append(out, ctor)
			}
		}
		return out
	}
	var out []managed.Method
	for _, meth := range m.visibleMethods(c, static) {
		if meth.name == name && meth.accepts(arity) {
			out = append(out, meth)
		}
	}
	return out
}

func (m *Machine) Methods(t managed.Type, static bool) []managed.Method {
	c := m.asClass(t)
	if c == nil {
		return nil
	}
	list := m.visibleMethods(c, static)
	out := make([]managed.Method, len(list))
	for i, meth := range list {
		out[i] = meth
	}
	return out
}

// visibleMethods returns public methods of c and its superclasses, hiding
// overridden signatures.
func (m *Machine) visibleMethods(c *Class, static bool) []*Method {
	seen := make(map[string]bool)
	var out []*Method
	for k := c; k != nil; k = k.super {
		for _, meth := range k.methods {
			if meth.static != static || !meth.public || meth.abstract {
				continue
			}
			sig := meth.signature()
			if seen[sig] {
				continue
			}
			seen[sig] = true
			out = append(out, meth)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

func (m *Machine) Resolve(t managed.Type, wk managed.WellKnownMethod) managed.Method {
	c := m.asClass(t)
	if c == nil {
		return nil
	}
	m.mu.RLock()
	sel, ok := m.selectors[wk.Selector()]
	m.mu.RUnlock()
	if !ok {
		return nil
	}
	meth := c.vtable.Lookup(sel)
	if meth == nil || meth.abstract {
		return nil
	}
	return meth
}

func (m *Machine) Invoke(mm managed.Method, recv managed.Object, args []managed.Value) (managed.Value, error) {
	meth, ok := mm.(*Method)
	if !ok || meth.decl.m != m {
		return nil, m.Throwf(managed.TypeIllegalArgument, "method %v does not belong to machine %s", mm, m.id)
	}
	if len(args) != len(meth.params) {
		return nil, m.Throwf(managed.TypeIllegalArgument, "%s expects %d arguments, got %d", meth, len(meth.params), len(args))
	}
	switch {
	case meth.ctor:
		obj := m.allocate(meth.decl)
		if _, err := meth.fn(m, obj, args); err != nil {
			return nil, err
		}
		return obj, nil
	case meth.static:
		return meth.fn(m, nil, args)
	}

	self, ok := recv.(*Object)
	if !ok || m.IsNull(recv) {
		return nil, m.Throwf(managed.TypeNullPointer, "cannot invoke %s on null", meth.name)
	}
	if !self.class.IsSubtypeOf(meth.decl) {
		return nil, m.Throwf(managed.TypeIllegalArgument, "%s is not an instance of %s", self.class.name, meth.decl.name)
	}
	impl := m.findVirtual(self.class, meth)
	if impl == nil || impl.fn == nil {
		return nil, m.Throwf(managed.TypeUnsupportedOperation, "abstract method %s", meth)
	}
	return impl.fn(m, self, args)
}

// findVirtual picks the implementation of meth for receivers of class c
func (m *Machine) findVirtual(c *Class, meth *Method) *Method {
	if meth.selector >= 0 {
		if found := c.vtable.Lookup(meth.selector); found != nil && found.signature() == meth.signature() {
			return found
		}
	}
	sig := meth.signature()
	for k := c; k != nil; k = k.super {
		for _, cand := range k.methods {
			if !cand.static && cand.signature() == sig && !cand.abstract {
				return cand
			}
		}
	}
	return meth
}

func (m *Machine) IsInstanceOf(o managed.Object, t managed.Type) bool {
	if m.IsNull(o) || t == nil {
		return false
	}
	return o.Type().IsSubtypeOf(t)
}

func (m *Machine) NewString(s string) managed.Object {
	return m.Str(s)
}

// Str creates a managed string
func (m *Machine) Str(s string) *Object {
	return &Object{class: m.known[managed.TypeString], native: s}
}

func (m *Machine) HostString(o managed.Object) (string, bool) {
	obj, ok := o.(*Object)
	if !ok || obj == nil {
		return "", false
	}
	s, ok := obj.native.(string)
	return s, ok && obj.class == m.known[managed.TypeString]
}

func (m *Machine) Box(v managed.Value) (managed.Object, error) {
	switch x := v.(type) {
	case bool:
		return m.boxed(managed.TypeBoolean, x), nil
	case int8:
		return m.boxed(managed.TypeByte, x), nil
	case int16:
		return m.boxed(managed.TypeShort, x), nil
	case int32:
		return m.boxed(managed.TypeInteger, x), nil
	case int64:
		return m.boxed(managed.TypeLong, x), nil
	case float32:
		return m.boxed(managed.TypeFloat, x), nil
	case float64:
		return m.boxed(managed.TypeDouble, x), nil
	case uint16:
		return m.boxed(managed.TypeCharacter, x), nil
	case string:
		return m.Str(x), nil
	case *big.Int:
		return m.NewBigInteger(x), nil
	case *Object:
		return x, nil
	}
	return nil, errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		Value(v).
		Detail("cannot box %T", v).
		Build()
}

// MustBox boxes a Go primitive; it panics on unsupported values
func (m *Machine) MustBox(v managed.Value) *Object {
	o, err := m.Box(v)
	if err != nil {
		panic(err)
	}
	return o.(*Object)
}

func (m *Machine) boxed(k managed.WellKnown, v managed.Value) *Object {
	o := m.allocate(m.known[k])
	o.fields[0] = v
	return o
}

// NewBigInteger creates a managed BigInteger holding a copy of n
func (m *Machine) NewBigInteger(n *big.Int) *Object {
	return &Object{class: m.known[managed.TypeBigInteger], native: new(big.Int).Set(n)}
}

func (m *Machine) NewArray(component managed.Type, length int) managed.Object {
	c := m.asClass(component)
	if c == nil {
		return m.null
	}
	return m.Array(c, length)
}

// Array allocates an array of component c filled with zero values
func (m *Machine) Array(c *Class, length int) *Object {
	elems := make([]managed.Value, length)
	zero := m.zero(c)
	for i := range elems {
		elems[i] = zero
	}
	return &Object{class: m.arrayOf(c), native: elems}
}

// ArrayOf creates an array of component c holding values
func (m *Machine) ArrayOf(c *Class, values ...managed.Value) *Object {
	elems := make([]managed.Value, len(values))
	copy(elems, values)
	return &Object{class: m.arrayOf(c), native: elems}
}

func (m *Machine) elements(o managed.Object) []managed.Value {
	obj, ok := o.(*Object)
	if !ok || obj == nil {
		return nil
	}
	elems, _ := obj.native.([]managed.Value)
	return elems
}

func (m *Machine) ArrayLength(o managed.Object) int {
	return len(m.elements(o))
}

func (m *Machine) ArrayGet(o managed.Object, index int) managed.Value {
	return m.elements(o)[index]
}

func (m *Machine) ArraySet(o managed.Object, index int, v managed.Value) {
	m.elements(o)[index] = v
}

func (m *Machine) Mirror(t managed.Type) managed.Object {
	c := m.asClass(t)
	if c == nil {
		return m.null
	}
	return m.mirrorOf(c)
}

func (m *Machine) mirrorOf(c *Class) *Object {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.mirror == nil {
		c.mirror = &Object{class: m.classClass, native: c}
	}
	return c.mirror
}

func (m *Machine) Mirrored(o managed.Object) (managed.Type, bool) {
	obj, ok := o.(*Object)
	if !ok || obj == nil || obj.class != m.classClass {
		return nil, false
	}
	c, ok := obj.native.(*Class)
	return c, ok
}

// Throw creates a managed exception of a well-known type
func (m *Machine) Throw(k managed.WellKnown, message string) error {
	return m.ThrowClass(m.known[k], message)
}

// Throwf creates a managed exception with a formatted message
func (m *Machine) Throwf(k managed.WellKnown, format string, args ...any) error {
	return m.Throw(k, fmt.Sprintf(format, args...))
}

// ThrowClass creates an exception of class c
func (m *Machine) ThrowClass(c *Class, message string) error {
	exc := m.NewThrowable(c, message, nil)
	return &managed.Throwable{Exception: exc, Message: message}
}

// Raise converts an exception object into the Go error natives return
func (m *Machine) Raise(exc *Object) error {
	msg := ""
	if st, ok := exc.native.(*throwState); ok {
		msg = st.message
	}
	return &managed.Throwable{Exception: exc, Message: msg}
}

func (m *Machine) identityHash(o *Object) int32 {
	if h := o.hash.Load(); h != 0 {
		return h
	}
	// Knuth multiplicative spread of a sequence number
	h := m.nextHash.Add(1) * -1640531535
	if h == 0 {
		h = 1
	}
	if o.hash.CompareAndSwap(0, h) {
		return h
	}
	return o.hash.Load()
}

func (m *Machine) allocate(c *Class) *Object {
	o := &Object{class: c, fields: make([]managed.Value, c.slots)}
	for k := c; k != nil; k = k.super {
		for _, f := range k.fields {
			o.fields[f.slot] = m.zero(f.typ)
		}
	}
	return o
}

func (m *Machine) zero(c *Class) managed.Value {
	if c == nil || c.kind != managed.KindPrimitive {
		return m.null
	}
	switch c.prim {
	case managed.PrimBoolean:
		return false
	case managed.PrimByte:
		return int8(0)
	case managed.PrimChar:
		return uint16(0)
	case managed.PrimShort:
		return int16(0)
	case managed.PrimInt:
		return int32(0)
	case managed.PrimLong:
		return int64(0)
	case managed.PrimFloat:
		return float32(0)
	case managed.PrimDouble:
		return float64(0)
	}
	return nil
}

func (m *Machine) intern(name string, arity int) int {
	sel := managed.Selector{Name: name, Arity: arity}
	m.mu.Lock()
	defer m.mu.Unlock()
	if id, ok := m.selectors[sel]; ok {
		return id
	}
	id := len(m.selectors)
	m.selectors[sel] = id
	return id
}

func (m *Machine) arrayOf(c *Class) *Class {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.array != nil {
		return c.array
	}
	arr := &Class{
		m:         m,
		name:      c.name + "[]",
		kind:      managed.KindArray,
		component: c,
		super:     m.objectClass,
		final:     true,
	}
	arr.vtable.parent = &m.objectClass.vtable
	if m.classify != nil && m.booted {
		arr.dispatch = m.classify(arr)
	}
	c.array = arr
	return arr
}
