package coerce

import (
	"fmt"
	"math/big"

	"go.bytecodealliance.org/wit"
)

// Kind is a protocol primitive kind
type Kind uint8

const (
	KindByte Kind = iota
	KindShort
	KindInt
	KindLong
	KindFloat
	KindDouble
	KindBigInteger
	KindBoolean
	KindString
)

// Kinds lists every protocol primitive kind in promotion order
var Kinds = []Kind{KindByte, KindShort, KindInt, KindLong, KindFloat, KindDouble, KindBigInteger, KindBoolean, KindString}

func (k Kind) String() string {
	switch k {
	case KindByte:
		return "byte"
	case KindShort:
		return "short"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	case KindFloat:
		return "float"
	case KindDouble:
		return "double"
	case KindBigInteger:
		return "bigint"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", k)
	}
}

// WitType maps the kind onto the WIT primitive carrying it.
// BigInteger has no WIT primitive and maps to nil.
func (k Kind) WitType() wit.Type {
	switch k {
	case KindByte:
		return wit.S8{}
	case KindShort:
		return wit.S16{}
	case KindInt:
		return wit.S32{}
	case KindLong:
		return wit.S64{}
	case KindFloat:
		return wit.F32{}
	case KindDouble:
		return wit.F64{}
	case KindBoolean:
		return wit.Bool{}
	case KindString:
		return wit.String{}
	default:
		return nil
	}
}

// WitName returns the WIT spelling of the kind, "bigint" for BigInteger
func (k Kind) WitName() string {
	if t := k.WitType(); t != nil {
		return WitTypeName(t)
	}
	return k.String()
}

// WitTypeName renders a WIT primitive type
func WitTypeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.S8:
		return "s8"
	case wit.U8:
		return "u8"
	case wit.S16:
		return "s16"
	case wit.U16:
		return "u16"
	case wit.S32:
		return "s32"
	case wit.U32:
		return "u32"
	case wit.S64:
		return "s64"
	case wit.U64:
		return "u64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case nil:
		return "none"
	default:
		return fmt.Sprintf("%T", t)
	}
}

// Classify returns the natural protocol kind of a primitive value
func Classify(v any) (Kind, bool) {
	switch v.(type) {
	case int8:
		return KindByte, true
	case int16:
		return KindShort, true
	case int32:
		return KindInt, true
	case int64:
		return KindLong, true
	case float32:
		return KindFloat, true
	case float64:
		return KindDouble, true
	case *big.Int:
		return KindBigInteger, true
	case bool:
		return KindBoolean, true
	case string, uint16:
		return KindString, true
	default:
		return 0, false
	}
}

// IsNumber reports whether v is a protocol number
func IsNumber(v any) bool {
	switch v.(type) {
	case int8, int16, int32, int64, float32, float64, *big.Int:
		return true
	}
	return false
}

// Fits reports whether v fits kind k
func Fits(v any, k Kind) bool {
	switch k {
	case KindByte:
		return FitsInByte(v)
	case KindShort:
		return FitsInShort(v)
	case KindInt:
		return FitsInInt(v)
	case KindLong:
		return FitsInLong(v)
	case KindFloat:
		return FitsInFloat(v)
	case KindDouble:
		return FitsInDouble(v)
	case KindBigInteger:
		return FitsInBigInteger(v)
	case KindBoolean:
		return FitsInBoolean(v)
	case KindString:
		return FitsInString(v)
	}
	return false
}

// To converts v to the Go representation of kind k
func To(v any, k Kind) (any, error) {
	switch k {
	case KindByte:
		return AsByte(v)
	case KindShort:
		return AsShort(v)
	case KindInt:
		return AsInt(v)
	case KindLong:
		return AsLong(v)
	case KindFloat:
		return AsFloat(v)
	case KindDouble:
		return AsDouble(v)
	case KindBigInteger:
		return AsBigInteger(v)
	case KindBoolean:
		return AsBoolean(v)
	case KindString:
		return AsString(v)
	}
	return nil, mismatch(v, k)
}
