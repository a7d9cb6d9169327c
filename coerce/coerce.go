// Package coerce decides whether a primitive value can be viewed as each
// protocol primitive kind and performs the conversion.
//
// Every FitsInX is a pure predicate and every AsX the matching pure
// transform: FitsInX(v) implies AsX(v) succeeds and the result widened back
// reproduces v numerically. The documented exceptions are non-finite
// floating values going to a wider floating kind (NaN is not equal to
// itself) and negative zero, which only floating kinds represent.
//
// Values are the Go renderings of protocol primitives: int8 (byte),
// int16 (short), int32 (int), int64 (long), float32 (float),
// float64 (double), *big.Int (bigint), bool and string. A uint16 is a
// managed char and is only viewable as a string.
package coerce

import (
	"math"
	"math/big"
	"unicode/utf16"

	"github.com/wippyai/hostinterop/errors"
)

const twoTo63 = 9223372036854775808.0

func mismatch(v any, k Kind) *errors.Error {
	return errors.TypeMismatch(errors.PhaseCoerce, v, k.WitName())
}

func negZero(f float64) bool {
	return f == 0 && math.Signbit(f)
}

// floatFitsSmall covers ranges where no conversion sentinel applies
func floatFitsSmall(f float64, lo, hi int64) bool {
	return !negZero(f) && f >= float64(lo) && f <= float64(hi) && f == math.Trunc(f)
}

// floatFitsInt32 rejects the value aliasing the int overflow sentinel.
// Only float input carries the sentinel; doubles use floatFitsSmall.
func floatFitsInt32(f float64) bool {
	if negZero(f) || f < math.MinInt32 || f > math.MaxInt32 || f != math.Trunc(f) {
		return false
	}
	return int32(f) != math.MaxInt32
}

// floatFitsInt64 rejects the value aliasing the long overflow sentinel
func floatFitsInt64(f float64) bool {
	if negZero(f) || f < -twoTo63 || f >= twoTo63 || f != math.Trunc(f) {
		return false
	}
	return int64(f) != math.MaxInt64
}

func bigFitsInt64(x *big.Int, lo, hi int64) bool {
	if !x.IsInt64() {
		return false
	}
	n := x.Int64()
	return n >= lo && n <= hi
}

// FitsInByte reports whether v is exactly representable as a byte
func FitsInByte(v any) bool {
	switch x := v.(type) {
	case int8:
		return true
	case int16:
		return int16(int8(x)) == x
	case int32:
		return int32(int8(x)) == x
	case int64:
		return int64(int8(x)) == x
	case float32:
		return floatFitsSmall(float64(x), math.MinInt8, math.MaxInt8)
	case float64:
		return floatFitsSmall(x, math.MinInt8, math.MaxInt8)
	case *big.Int:
		return bigFitsInt64(x, math.MinInt8, math.MaxInt8)
	}
	return false
}

// FitsInShort reports whether v is exactly representable as a short
func FitsInShort(v any) bool {
	switch x := v.(type) {
	case int8, int16:
		return true
	case int32:
		return int32(int16(x)) == x
	case int64:
		return int64(int16(x)) == x
	case float32:
		return floatFitsSmall(float64(x), math.MinInt16, math.MaxInt16)
	case float64:
		return floatFitsSmall(x, math.MinInt16, math.MaxInt16)
	case *big.Int:
		return bigFitsInt64(x, math.MinInt16, math.MaxInt16)
	}
	return false
}

// FitsInInt reports whether v is exactly representable as an int
func FitsInInt(v any) bool {
	switch x := v.(type) {
	case int8, int16, int32:
		return true
	case int64:
		return int64(int32(x)) == x
	case float32:
		return floatFitsInt32(float64(x))
	case float64:
		return floatFitsSmall(x, math.MinInt32, math.MaxInt32)
	case *big.Int:
		return bigFitsInt64(x, math.MinInt32, math.MaxInt32)
	}
	return false
}

// FitsInLong reports whether v is exactly representable as a long
func FitsInLong(v any) bool {
	switch x := v.(type) {
	case int8, int16, int32, int64:
		return true
	case float32:
		return floatFitsInt64(float64(x))
	case float64:
		return floatFitsInt64(x)
	case *big.Int:
		return x.IsInt64()
	}
	return false
}

// FitsInFloat reports whether v survives a float round trip.
// Non-finite doubles always fit.
func FitsInFloat(v any) bool {
	switch x := v.(type) {
	case int8, int16, float32:
		return true
	case int32:
		return x != math.MaxInt32 && float64(float32(x)) == float64(x)
	case int64:
		if x == math.MaxInt64 {
			return false
		}
		f := float64(float32(x))
		return f >= -twoTo63 && f < twoTo63 && int64(f) == x
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return true
		}
		return float64(float32(x)) == x
	case *big.Int:
		_, acc := new(big.Float).SetInt(x).Float32()
		return acc == big.Exact
	}
	return false
}

// FitsInDouble reports whether v survives a double round trip
func FitsInDouble(v any) bool {
	switch x := v.(type) {
	case int8, int16, int32, float32, float64:
		return true
	case int64:
		if x == math.MaxInt64 {
			return false
		}
		f := float64(x)
		return f >= -twoTo63 && f < twoTo63 && int64(f) == x
	case *big.Int:
		_, acc := new(big.Float).SetInt(x).Float64()
		return acc == big.Exact
	}
	return false
}

// FitsInBigInteger holds for every integer kind and for finite integral
// floating values other than negative zero.
func FitsInBigInteger(v any) bool {
	switch x := v.(type) {
	case int8, int16, int32, int64, *big.Int:
		return true
	case float32:
		return floatIntegral(float64(x))
	case float64:
		return floatIntegral(x)
	}
	return false
}

func floatIntegral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && !negZero(f) && f == math.Trunc(f)
}

// FitsInBoolean holds only for booleans
func FitsInBoolean(v any) bool {
	_, ok := v.(bool)
	return ok
}

// FitsInString holds for strings and single managed chars
func FitsInString(v any) bool {
	switch v.(type) {
	case string, uint16:
		return true
	}
	return false
}

// AsByte converts v to a byte
func AsByte(v any) (int8, error) {
	if !FitsInByte(v) {
		return 0, mismatch(v, KindByte)
	}
	switch x := v.(type) {
	case int8:
		return x, nil
	case int16:
		return int8(x), nil
	case int32:
		return int8(x), nil
	case int64:
		return int8(x), nil
	case float32:
		return int8(x), nil
	case float64:
		return int8(x), nil
	case *big.Int:
		return int8(x.Int64()), nil
	}
	return 0, mismatch(v, KindByte)
}

// AsShort converts v to a short
func AsShort(v any) (int16, error) {
	if !FitsInShort(v) {
		return 0, mismatch(v, KindShort)
	}
	switch x := v.(type) {
	case int8:
		return int16(x), nil
	case int16:
		return x, nil
	case int32:
		return int16(x), nil
	case int64:
		return int16(x), nil
	case float32:
		return int16(x), nil
	case float64:
		return int16(x), nil
	case *big.Int:
		return int16(x.Int64()), nil
	}
	return 0, mismatch(v, KindShort)
}

// AsInt converts v to an int
func AsInt(v any) (int32, error) {
	if !FitsInInt(v) {
		return 0, mismatch(v, KindInt)
	}
	switch x := v.(type) {
	case int8:
		return int32(x), nil
	case int16:
		return int32(x), nil
	case int32:
		return x, nil
	case int64:
		return int32(x), nil
	case float32:
		return int32(x), nil
	case float64:
		return int32(x), nil
	case *big.Int:
		return int32(x.Int64()), nil
	}
	return 0, mismatch(v, KindInt)
}

// AsLong converts v to a long
func AsLong(v any) (int64, error) {
	if !FitsInLong(v) {
		return 0, mismatch(v, KindLong)
	}
	switch x := v.(type) {
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case float32:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case *big.Int:
		return x.Int64(), nil
	}
	return 0, mismatch(v, KindLong)
}

// AsFloat converts v to a float
func AsFloat(v any) (float32, error) {
	if !FitsInFloat(v) {
		return 0, mismatch(v, KindFloat)
	}
	switch x := v.(type) {
	case int8:
		return float32(x), nil
	case int16:
		return float32(x), nil
	case int32:
		return float32(x), nil
	case int64:
		return float32(x), nil
	case float32:
		return x, nil
	case float64:
		return float32(x), nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float32()
		return f, nil
	}
	return 0, mismatch(v, KindFloat)
}

// AsDouble converts v to a double
func AsDouble(v any) (float64, error) {
	if !FitsInDouble(v) {
		return 0, mismatch(v, KindDouble)
	}
	switch x := v.(type) {
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case *big.Int:
		f, _ := new(big.Float).SetInt(x).Float64()
		return f, nil
	}
	return 0, mismatch(v, KindDouble)
}

// AsBigInteger converts v to a fresh *big.Int
func AsBigInteger(v any) (*big.Int, error) {
	if !FitsInBigInteger(v) {
		return nil, mismatch(v, KindBigInteger)
	}
	switch x := v.(type) {
	case int8:
		return big.NewInt(int64(x)), nil
	case int16:
		return big.NewInt(int64(x)), nil
	case int32:
		return big.NewInt(int64(x)), nil
	case int64:
		return big.NewInt(x), nil
	case float32:
		n, _ := big.NewFloat(float64(x)).Int(nil)
		return n, nil
	case float64:
		n, _ := big.NewFloat(x).Int(nil)
		return n, nil
	case *big.Int:
		return new(big.Int).Set(x), nil
	}
	return nil, mismatch(v, KindBigInteger)
}

// AsBoolean extracts a boolean
func AsBoolean(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, mismatch(v, KindBoolean)
	}
	return b, nil
}

// AsString extracts a string; a char becomes a one-character string
func AsString(v any) (string, error) {
	switch x := v.(type) {
	case string:
		return x, nil
	case uint16:
		return string(utf16.Decode([]uint16{x})), nil
	}
	return "", mismatch(v, KindString)
}

// AsChar extracts a managed char from a char or a one-character string
func AsChar(v any) (uint16, error) {
	switch x := v.(type) {
	case uint16:
		return x, nil
	case string:
		units := utf16.Encode([]rune(x))
		if len(units) == 1 {
			return units[0], nil
		}
	}
	return 0, errors.New(errors.PhaseCoerce, errors.KindTypeMismatch).
		WitType("char").
		Value(v).
		Detail("expected a string of length 1").
		Build()
}
