// Package convert moves values between the protocol and a managed runtime.
//
// Protocol values are Go primitives, strings, *big.Int and managed objects.
// Managed slots are typed: primitive slots take Go primitives of the exact
// width, reference slots take objects. Conversion toward a slot goes through
// the coerce rules so a protocol argument is accepted exactly when it fits.
package convert

import (
	"math/big"

	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// boxedKinds maps boxed managed types to the protocol kind they carry
var boxedKinds = map[managed.WellKnown]coerce.Kind{
	managed.TypeBoolean:    coerce.KindBoolean,
	managed.TypeByte:       coerce.KindByte,
	managed.TypeShort:      coerce.KindShort,
	managed.TypeInteger:    coerce.KindInt,
	managed.TypeLong:       coerce.KindLong,
	managed.TypeFloat:      coerce.KindFloat,
	managed.TypeDouble:     coerce.KindDouble,
	managed.TypeString:     coerce.KindString,
	managed.TypeBigInteger: coerce.KindBigInteger,
}

var boxOrder = []managed.WellKnown{
	managed.TypeBoolean, managed.TypeByte, managed.TypeShort, managed.TypeInteger,
	managed.TypeLong, managed.TypeFloat, managed.TypeDouble, managed.TypeCharacter,
	managed.TypeString, managed.TypeBigInteger,
}

// PrimitiveKind maps a primitive slot kind to its protocol kind.
// Char has no protocol kind of its own.
func PrimitiveKind(p managed.Primitive) (coerce.Kind, bool) {
	switch p {
	case managed.PrimBoolean:
		return coerce.KindBoolean, true
	case managed.PrimByte:
		return coerce.KindByte, true
	case managed.PrimShort:
		return coerce.KindShort, true
	case managed.PrimInt:
		return coerce.KindInt, true
	case managed.PrimLong:
		return coerce.KindLong, true
	case managed.PrimFloat:
		return coerce.KindFloat, true
	case managed.PrimDouble:
		return coerce.KindDouble, true
	}
	return 0, false
}

// BoxedKind reports which well-known boxed type t is, if any
func BoxedKind(rt managed.Runtime, t managed.Type) (managed.WellKnown, bool) {
	for _, k := range boxOrder {
		if t == rt.Known(k) {
			return k, true
		}
	}
	return 0, false
}

// Unbox returns the primitive view of a boxed managed object: the value
// field of boxed numbers, booleans and chars, or the host string.
// BigInteger is not covered; use BigInteger.
func Unbox(rt managed.Runtime, o managed.Object) (any, bool) {
	if o == nil || rt.IsNull(o) {
		return nil, false
	}
	k, ok := BoxedKind(rt, o.Type())
	if !ok {
		return nil, false
	}
	switch k {
	case managed.TypeString:
		return rt.HostString(o)
	case managed.TypeBigInteger:
		return nil, false
	}
	f := rt.LookupField(o.Type(), "value", false)
	if f == nil {
		return nil, false
	}
	return f.Get(o), true
}

// BigInteger reads a managed BigInteger through its two's-complement
// byte-array representation.
func BigInteger(rt managed.Runtime, o managed.Object) (*big.Int, error) {
	m := rt.Resolve(o.Type(), managed.MethodBigIntegerToByteArray)
	if m == nil {
		return nil, errors.Unsupported(errors.PhaseConvert, "toByteArray not available on "+o.Type().Name())
	}
	res, err := rt.Invoke(m, o, nil)
	if err != nil {
		return nil, err
	}
	arr, ok := res.(managed.Object)
	if !ok || rt.IsNull(arr) {
		return nil, errors.InvalidInput(errors.PhaseConvert, "toByteArray returned no array")
	}
	n := rt.ArrayLength(arr)
	buf := make([]byte, n)
	for i := range buf {
		b, _ := rt.ArrayGet(arr, i).(int8)
		buf[i] = byte(b)
	}
	return FromTwosComplement(buf), nil
}

// FromTwosComplement decodes a big-endian two's-complement integer
func FromTwosComplement(b []byte) *big.Int {
	n := new(big.Int).SetBytes(b)
	if len(b) > 0 && b[0]&0x80 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8)))
	}
	return n
}

// ToTwosComplement encodes n as a minimal big-endian two's-complement integer
func ToTwosComplement(n *big.Int) []byte {
	if n.Sign() >= 0 {
		b := n.Bytes()
		if len(b) == 0 || b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	size := (new(big.Int).Not(n).BitLen())/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(size*8))
	b := new(big.Int).Add(n, mod).Bytes()
	for len(b) < size {
		b = append([]byte{0xff}, b...)
	}
	return b
}

// Primitive returns the primitive protocol view of v: Go primitives as is,
// boxed objects unboxed and BigInteger objects decoded.
func Primitive(rt managed.Runtime, v any) (any, bool, error) {
	switch x := v.(type) {
	case managed.Object:
		if rt.IsNull(x) {
			return nil, false, nil
		}
		if x.Type() == rt.Known(managed.TypeBigInteger) {
			n, err := BigInteger(rt, x)
			if err != nil {
				return nil, false, err
			}
			return n, true, nil
		}
		p, ok := Unbox(rt, x)
		return p, ok, nil
	case nil:
		return nil, false, nil
	default:
		if _, ok := coerce.Classify(v); ok {
			return v, true, nil
		}
		return nil, false, nil
	}
}

// ToProtocol converts a managed result to a protocol value.
// A void result becomes the runtime's null.
func ToProtocol(rt managed.Runtime, v managed.Value) any {
	if v == nil {
		return rt.Null()
	}
	return v
}

// ToManaged converts a protocol value into a value storable in a slot of
// type target. It fails with TypeMismatch when v does not fit.
func ToManaged(rt managed.Runtime, v any, target managed.Type) (managed.Value, error) {
	if target.Kind() == managed.KindPrimitive {
		return toPrimitive(rt, v, target)
	}
	return toReference(rt, v, target)
}

func toPrimitive(rt managed.Runtime, v any, target managed.Type) (managed.Value, error) {
	p, ok, err := Primitive(rt, v)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, slotMismatch(v, target)
	}
	if target.Primitive() == managed.PrimChar {
		return coerce.AsChar(p)
	}
	k, ok := PrimitiveKind(target.Primitive())
	if !ok {
		return nil, slotMismatch(v, target)
	}
	return coerce.To(p, k)
}

func toReference(rt managed.Runtime, v any, target managed.Type) (managed.Value, error) {
	switch x := v.(type) {
	case nil:
		return rt.Null(), nil
	case managed.Object:
		if rt.IsNull(x) || x.Type().IsSubtypeOf(target) {
			return x, nil
		}
		return nil, slotMismatch(v, target)
	}

	if k, ok := BoxedKind(rt, target); ok {
		var (
			p   any
			err error
		)
		if k == managed.TypeCharacter {
			p, err = coerce.AsChar(v)
		} else {
			p, err = coerce.To(v, boxedKinds[k])
		}
		if err != nil {
			return nil, err
		}
		return rt.Box(p)
	}

	natural := NaturalType(rt, v)
	if natural == nil || !natural.IsSubtypeOf(target) {
		return nil, slotMismatch(v, target)
	}
	return rt.Box(v)
}

// NaturalType returns the boxed managed type a protocol primitive boxes to
func NaturalType(rt managed.Runtime, v any) managed.Type {
	switch v.(type) {
	case bool:
		return rt.Known(managed.TypeBoolean)
	case int8:
		return rt.Known(managed.TypeByte)
	case int16:
		return rt.Known(managed.TypeShort)
	case int32:
		return rt.Known(managed.TypeInteger)
	case int64:
		return rt.Known(managed.TypeLong)
	case float32:
		return rt.Known(managed.TypeFloat)
	case float64:
		return rt.Known(managed.TypeDouble)
	case uint16:
		return rt.Known(managed.TypeCharacter)
	case string:
		return rt.Known(managed.TypeString)
	case *big.Int:
		return rt.Known(managed.TypeBigInteger)
	}
	return nil
}

func slotMismatch(v any, target managed.Type) *errors.Error {
	b := errors.New(errors.PhaseConvert, errors.KindTypeMismatch).
		WitType(target.Name()).
		Value(v)
	if o, ok := v.(managed.Object); ok {
		b.ManagedType(o.Type().Name())
	} else {
		b.Detail("%T not assignable", v)
	}
	return b.Build()
}
