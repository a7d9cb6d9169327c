package vm

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/wippyai/hostinterop/managed"
)

// throwState backs every Throwable
type throwState struct {
	message    string
	hasMessage bool
	cause      *Object
	trace      []string
}

func (m *Machine) bootstrap() {
	for _, p := range []managed.Primitive{
		managed.PrimBoolean, managed.PrimByte, managed.PrimChar, managed.PrimShort,
		managed.PrimInt, managed.PrimLong, managed.PrimFloat, managed.PrimDouble, managed.PrimVoid,
	} {
		m.prims[p] = &Class{m: m, name: p.String(), kind: managed.KindPrimitive, prim: p, final: true}
	}

	m.objectClass = m.register(ClassSpec{Name: "java.lang.Object"})
	m.known[managed.TypeObject] = m.objectClass
	m.nullClass = &Class{m: m, name: "null", kind: managed.KindObject, final: true}
	m.null = &Object{class: m.nullClass}

	m.classClass = m.register(ClassSpec{Name: "java.lang.Class", Final: true})
	m.known[managed.TypeClass] = m.classClass
	m.known[managed.TypeString] = m.register(ClassSpec{Name: "java.lang.String", Final: true})

	m.bootstrapObject()
	m.bootstrapString()
	m.bootstrapClass()
	m.bootstrapBoxes()
	m.bootstrapThrowables()
	m.bootstrapCollections()
	m.bootstrapBuffers()
	m.bootstrapTime()
}

func (m *Machine) addMethods(c *Class, specs ...MethodSpec) {
	extra := m.build(ClassSpec{Name: c.name, Super: c.super, Methods: specs})
	for _, meth := range extra.methods {
		meth.decl = c
		c.methods = append(c.methods, meth)
		if meth.selector >= 0 && !meth.abstract {
			c.vtable.add(meth.selector, meth)
		}
	}
	for _, ctor := range extra.ctors {
		ctor.decl = c
		c.ctors = append(c.ctors, ctor)
	}
}

func (m *Machine) bootstrapObject() {
	obj := m.objectClass
	str := m.known[managed.TypeString]
	m.addMethods(obj,
		MethodSpec{Name: "<init>", Fn: func(*Machine, *Object, []managed.Value) (managed.Value, error) {
			return nil, nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(fmt.Sprintf("%s@%x", self.class.name, uint32(m.identityHash(self)))), nil
		}},
		MethodSpec{Name: "hashCode", Return: m.prims[managed.PrimInt], Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.identityHash(self), nil
		}},
		MethodSpec{Name: "equals", Params: []*Class{obj}, Return: m.prims[managed.PrimBoolean], Fn: func(_ *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			return args[0] == managed.Value(self), nil
		}},
		MethodSpec{Name: "getClass", Return: m.classClass, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.mirrorOf(self.class), nil
		}},
	)
}

// javaStringHash is the UTF-16 polynomial hash
func javaStringHash(s string) int32 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = 31*h + int32(u)
	}
	return h
}

func (m *Machine) bootstrapString() {
	str := m.known[managed.TypeString]
	i32 := m.prims[managed.PrimInt]
	m.addMethods(str,
		MethodSpec{Name: "<init>", Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			self.native = ""
			return nil, nil
		}},
		MethodSpec{Name: "length", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(len(utf16.Encode([]rune(self.native.(string))))), nil
		}},
		MethodSpec{Name: "isEmpty", Return: m.prims[managed.PrimBoolean], Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return self.native.(string) == "", nil
		}},
		MethodSpec{Name: "charAt", Params: []*Class{i32}, Return: m.prims[managed.PrimChar], Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			units := utf16.Encode([]rune(self.native.(string)))
			i := args[0].(int32)
			if i < 0 || int(i) >= len(units) {
				return nil, m.Throwf(managed.TypeIndexOutOfBounds, "Index %d out of bounds for length %d", i, len(units))
			}
			return units[i], nil
		}},
		MethodSpec{Name: "concat", Params: []*Class{str}, Return: str, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			other, ok := m.HostString(args[0].(managed.Object))
			if !ok {
				return nil, m.Throw(managed.TypeNullPointer, "concat(null)")
			}
			return m.Str(self.native.(string) + other), nil
		}},
		MethodSpec{Name: "toUpperCase", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(strings.ToUpper(self.native.(string))), nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return self, nil
		}},
		MethodSpec{Name: "hashCode", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return javaStringHash(self.native.(string)), nil
		}},
		MethodSpec{Name: "equals", Params: []*Class{m.objectClass}, Return: m.prims[managed.PrimBoolean], Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			other, ok := m.HostString(args[0].(managed.Object))
			return ok && other == self.native.(string), nil
		}},
		MethodSpec{Name: "valueOf", Static: true, Params: []*Class{m.objectClass}, Return: str, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			s, err := m.ToString(args[0].(managed.Object))
			if err != nil {
				return nil, err
			}
			return m.Str(s), nil
		}},
		MethodSpec{Name: "format", Static: true, VarArgs: true, Params: []*Class{str, m.arrayOf(m.objectClass)}, Return: str, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			format, ok := m.HostString(args[0].(managed.Object))
			if !ok {
				return nil, m.Throw(managed.TypeNullPointer, "format(null)")
			}
			var values []any
			for _, v := range m.elements(args[1].(managed.Object)) {
				values = append(values, m.hostValue(v))
			}
			return m.Str(fmt.Sprintf(format, values...)), nil
		}},
	)
}

// hostValue renders a managed value as a Go value for formatting
func (m *Machine) hostValue(v managed.Value) any {
	obj, ok := v.(*Object)
	if !ok {
		return v
	}
	if m.IsNull(obj) {
		return nil
	}
	if s, ok := m.HostString(obj); ok {
		return s
	}
	if n, ok := obj.native.(*big.Int); ok {
		return n
	}
	if len(obj.fields) == 1 && obj.class.super != nil && (obj.class.super == m.known[managed.TypeNumber] || obj.class == m.known[managed.TypeBoolean] || obj.class == m.known[managed.TypeCharacter]) {
		return obj.fields[0]
	}
	s, err := m.ToString(obj)
	if err != nil {
		return obj.String()
	}
	return s
}

// ToString calls the managed toString of o; null renders as "null"
func (m *Machine) ToString(o managed.Object) (string, error) {
	if m.IsNull(o) {
		return "null", nil
	}
	meth := m.Resolve(o.Type(), managed.MethodToString)
	if meth == nil {
		return "", m.Throw(managed.TypeUnsupportedOperation, "toString")
	}
	res, err := m.Invoke(meth, o, nil)
	if err != nil {
		return "", err
	}
	s, _ := m.HostString(res.(managed.Object))
	return s, nil
}

func (m *Machine) bootstrapClass() {
	cls := m.classClass
	str := m.known[managed.TypeString]
	target := func(self *Object) *Class { return self.native.(*Class) }
	m.addMethods(cls,
		MethodSpec{Name: "getName", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(target(self).name), nil
		}},
		MethodSpec{Name: "getSimpleName", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(target(self).SimpleName()), nil
		}},
		MethodSpec{Name: "isInstance", Params: []*Class{m.objectClass}, Return: m.prims[managed.PrimBoolean], Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			return m.IsInstanceOf(args[0].(managed.Object), target(self)), nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			c := target(self)
			switch {
			case c.kind == managed.KindPrimitive:
				return m.Str(c.name), nil
			case c.iface:
				return m.Str("interface " + c.name), nil
			}
			return m.Str("class " + c.name), nil
		}},
	)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e7:
		return strconv.FormatFloat(f, 'f', 1, bits)
	}
	return strconv.FormatFloat(f, 'g', -1, bits)
}

func boxString(v managed.Value) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int8, int16, int32, int64:
		return fmt.Sprintf("%d", x)
	case float32:
		return formatFloat(float64(x), 32)
	case float64:
		return formatFloat(x, 64)
	case uint16:
		return string(utf16.Decode([]uint16{x}))
	}
	return fmt.Sprint(v)
}

func boxHash(v managed.Value) int32 {
	switch x := v.(type) {
	case bool:
		if x {
			return 1231
		}
		return 1237
	case int8:
		return int32(x)
	case int16:
		return int32(x)
	case int32:
		return x
	case int64:
		return int32(x ^ int64(uint64(x)>>32))
	case float32:
		return int32(math.Float32bits(x))
	case float64:
		b := math.Float64bits(x)
		return int32(b ^ b>>32)
	case uint16:
		return int32(x)
	}
	return 0
}

func toInt64(v managed.Value) int64 {
	switch x := v.(type) {
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case int64:
		return x
	case float32:
		return saturate(float64(x))
	case float64:
		return saturate(x)
	}
	return 0
}

// saturate converts like a managed d2l: NaN is 0, out of range clamps
func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 9223372036854775807.0:
		return math.MaxInt64
	case f <= -9223372036854775808.0:
		return math.MinInt64
	}
	return int64(f)
}

func toFloat64(v managed.Value) float64 {
	switch x := v.(type) {
	case float32:
		return float64(x)
	case float64:
		return x
	}
	return float64(toInt64(v))
}

func (m *Machine) bootstrapBoxes() {
	boolean := m.prims[managed.PrimBoolean]
	i32 := m.prims[managed.PrimInt]
	i64 := m.prims[managed.PrimLong]
	f64 := m.prims[managed.PrimDouble]
	str := m.known[managed.TypeString]

	common := func(c *Class) []MethodSpec {
		return []MethodSpec{
			{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
				return m.Str(boxString(self.fields[0])), nil
			}},
			{Name: "hashCode", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
				return boxHash(self.fields[0]), nil
			}},
			{Name: "equals", Params: []*Class{m.objectClass}, Return: boolean, Fn: func(_ *Machine, self *Object, args []managed.Value) (managed.Value, error) {
				other, ok := args[0].(*Object)
				return ok && other.class == self.class && other.fields[0] == self.fields[0], nil
			}},
		}
	}

	boolClass := m.register(ClassSpec{Name: "java.lang.Boolean", Final: true,
		Fields: []FieldSpec{{Name: "value", Type: boolean, Final: true, Private: true}}})
	m.known[managed.TypeBoolean] = boolClass
	m.addMethods(boolClass, common(boolClass)...)
	m.addMethods(boolClass,
		MethodSpec{Name: "booleanValue", Return: boolean, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return self.fields[0], nil
		}},
		MethodSpec{Name: "valueOf", Static: true, Params: []*Class{boolean}, Return: boolClass, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			return m.boxed(managed.TypeBoolean, args[0]), nil
		}},
	)

	charClass := m.register(ClassSpec{Name: "java.lang.Character", Final: true,
		Fields: []FieldSpec{{Name: "value", Type: m.prims[managed.PrimChar], Final: true, Private: true}}})
	m.known[managed.TypeCharacter] = charClass
	m.addMethods(charClass, common(charClass)...)
	m.addMethods(charClass,
		MethodSpec{Name: "charValue", Return: m.prims[managed.PrimChar], Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return self.fields[0], nil
		}},
	)

	number := m.register(ClassSpec{Name: "java.lang.Number", Abstract: true,
		Methods: []MethodSpec{
			{Name: "intValue", Return: i32},
			{Name: "longValue", Return: i64},
			{Name: "doubleValue", Return: f64},
		}})
	m.known[managed.TypeNumber] = number

	numerics := []struct {
		wk   managed.WellKnown
		prim managed.Primitive
	}{
		{managed.TypeByte, managed.PrimByte},
		{managed.TypeShort, managed.PrimShort},
		{managed.TypeInteger, managed.PrimInt},
		{managed.TypeLong, managed.PrimLong},
		{managed.TypeFloat, managed.PrimFloat},
		{managed.TypeDouble, managed.PrimDouble},
	}
	for _, n := range numerics {
		wk := n.wk
		prim := m.prims[n.prim]
		c := m.register(ClassSpec{Name: wk.Name(), Super: number, Final: true,
			Fields: []FieldSpec{{Name: "value", Type: prim, Final: true, Private: true}}})
		m.known[wk] = c
		m.addMethods(c, common(c)...)
		m.addMethods(c,
			MethodSpec{Name: "intValue", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
				return int32(toInt64(self.fields[0])), nil
			}},
			MethodSpec{Name: "longValue", Return: i64, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
				return toInt64(self.fields[0]), nil
			}},
			MethodSpec{Name: "doubleValue", Return: f64, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
				return toFloat64(self.fields[0]), nil
			}},
			MethodSpec{Name: "valueOf", Static: true, Params: []*Class{prim}, Return: c, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
				return m.boxed(wk, args[0]), nil
			}},
		)
	}

	m.bootstrapBigInteger(number)
}

func (m *Machine) bootstrapBigInteger(number *Class) {
	str := m.known[managed.TypeString]
	i32 := m.prims[managed.PrimInt]
	i64 := m.prims[managed.PrimLong]
	bi := m.register(ClassSpec{Name: "java.math.BigInteger", Super: number})
	m.known[managed.TypeBigInteger] = bi
	val := func(self *Object) *big.Int { return self.native.(*big.Int) }
	m.addMethods(bi,
		MethodSpec{Name: "<init>", Params: []*Class{str}, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			s, ok := m.HostString(args[0].(managed.Object))
			if !ok {
				return nil, m.Throw(managed.TypeNullPointer, "BigInteger(null)")
			}
			n, ok := new(big.Int).SetString(s, 10)
			if !ok {
				return nil, m.Throwf(managed.TypeIllegalArgument, "invalid BigInteger %q", s)
			}
			self.native = n
			return nil, nil
		}},
		MethodSpec{Name: "toByteArray", Return: m.arrayOf(m.prims[managed.PrimByte]), Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			raw := twosComplement(val(self))
			out := make([]managed.Value, len(raw))
			for i, b := range raw {
				out[i] = int8(b)
			}
			return &Object{class: m.arrayOf(m.prims[managed.PrimByte]), native: out}, nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(val(self).String()), nil
		}},
		MethodSpec{Name: "intValue", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(val(self).Int64()), nil
		}},
		MethodSpec{Name: "longValue", Return: i64, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return val(self).Int64(), nil
		}},
		MethodSpec{Name: "doubleValue", Return: m.prims[managed.PrimDouble], Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			f, _ := new(big.Float).SetInt(val(self)).Float64()
			return f, nil
		}},
		MethodSpec{Name: "add", Params: []*Class{bi}, Return: bi, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			other, ok := args[0].(*Object)
			if !ok || m.IsNull(other) {
				return nil, m.Throw(managed.TypeNullPointer, "add(null)")
			}
			return m.NewBigInteger(new(big.Int).Add(val(self), val(other))), nil
		}},
		MethodSpec{Name: "hashCode", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return javaStringHash(val(self).String()), nil
		}},
		MethodSpec{Name: "equals", Params: []*Class{m.objectClass}, Return: m.prims[managed.PrimBoolean], Fn: func(_ *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			other, ok := args[0].(*Object)
			if !ok || other.class != self.class {
				return false, nil
			}
			return val(self).Cmp(val(other)) == 0, nil
		}},
		MethodSpec{Name: "valueOf", Static: true, Params: []*Class{i64}, Return: bi, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			return m.NewBigInteger(big.NewInt(args[0].(int64))), nil
		}},
	)
}

// twosComplement encodes n as minimal big-endian two's complement
func twosComplement(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	size := new(big.Int).Not(n).BitLen()/8 + 1
	b := new(big.Int).Add(n, new(big.Int).Lsh(big.NewInt(1), uint(size*8))).Bytes()
	for len(b) < size {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func (m *Machine) bootstrapThrowables() {
	str := m.known[managed.TypeString]
	throwable := m.register(ClassSpec{Name: "java.lang.Throwable"})
	m.known[managed.TypeThrowable] = throwable
	m.addThrowableCtors(throwable)

	state := func(self *Object) *throwState {
		st, _ := self.native.(*throwState)
		if st == nil {
			st = &throwState{}
			self.native = st
		}
		return st
	}
	m.addMethods(throwable,
		MethodSpec{Name: "getMessage", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			if !st.hasMessage {
				return m.null, nil
			}
			return m.Str(st.message), nil
		}},
		MethodSpec{Name: "getCause", Return: throwable, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			if st := state(self); st.cause != nil {
				return st.cause, nil
			}
			return m.null, nil
		}},
		MethodSpec{Name: "getStackTrace", Return: m.arrayOf(str), Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			frames := make([]managed.Value, len(st.trace))
			for i, f := range st.trace {
				frames[i] = m.Str(f)
			}
			return m.ArrayOf(str, frames...), nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			if !st.hasMessage {
				return m.Str(self.class.name), nil
			}
			return m.Str(self.class.name + ": " + st.message), nil
		}},
	)

	m.defineException("java.lang.Error", throwable)
	exception := m.defineException("java.lang.Exception", throwable)
	runtimeExc := m.defineException("java.lang.RuntimeException", exception)
	m.defineException("java.lang.IllegalStateException", runtimeExc)
	m.defineException("java.lang.ArithmeticException", runtimeExc)

	for _, k := range []managed.WellKnown{
		managed.TypeIndexOutOfBounds, managed.TypeUnsupportedOperation, managed.TypeNoSuchElement,
		managed.TypeClassCast, managed.TypeIllegalArgument, managed.TypeNullPointer,
	} {
		m.known[k] = m.defineException(k.Name(), runtimeExc)
	}
	m.known[managed.TypeReadOnlyBuffer] = m.defineException(managed.TypeReadOnlyBuffer.Name(), m.known[managed.TypeUnsupportedOperation])
}

func (m *Machine) defineException(name string, super *Class) *Class {
	return m.register(ClassSpec{Name: name, Super: super, Methods: m.throwableCtors()})
}

func (m *Machine) addThrowableCtors(c *Class) {
	m.addMethods(c, m.throwableCtors()...)
}

func (m *Machine) throwableCtors() []MethodSpec {
	str := m.known[managed.TypeString]
	init := func(self *Object, msg managed.Value, cause managed.Value) {
		st := &throwState{}
		if s, ok := m.HostString(msg.(managed.Object)); ok {
			st.message, st.hasMessage = s, true
		}
		if co, ok := cause.(*Object); ok && !m.IsNull(co) {
			st.cause = co
		}
		self.native = st
	}
	return []MethodSpec{
		{Name: "<init>", Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			init(self, m.null, m.null)
			return nil, nil
		}},
		{Name: "<init>", Params: []*Class{str}, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			init(self, args[0], m.null)
			return nil, nil
		}},
		{Name: "<init>", Params: []*Class{str, m.throwableClass()}, Fn: func(_ *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			init(self, args[0], args[1])
			return nil, nil
		}},
	}
}

func (m *Machine) throwableClass() *Class {
	return m.known[managed.TypeThrowable]
}

// DefineException defines an exception class with the standard constructors
func (m *Machine) DefineException(name string, super *Class) (*Class, error) {
	if super == nil {
		super = m.std("java.lang.RuntimeException")
	}
	if !super.IsSubtypeOf(m.throwableClass()) {
		return nil, m.Throwf(managed.TypeIllegalArgument, "%s is not a Throwable", super.name)
	}
	return m.DefineClass(ClassSpec{Name: name, Super: super, Methods: m.throwableCtors()})
}

// NewThrowable creates an exception object without raising it
func (m *Machine) NewThrowable(c *Class, message string, cause *Object, frames ...string) *Object {
	obj := m.allocate(c)
	obj.native = &throwState{
		message:    message,
		hasMessage: message != "",
		cause:      cause,
		trace:      frames,
	}
	return obj
}
