package main

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf16"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/interop"
	"github.com/wippyai/hostinterop/managed"
)

// argList collects repeated -arg flags
type argList []string

func (a *argList) String() string { return strings.Join(*a, " ") }

func (a *argList) Set(s string) error {
	*a = append(*a, s)
	return nil
}

var witTypes = map[string]wit.Type{
	"bool":   wit.Bool{},
	"s8":     wit.S8{},
	"s16":    wit.S16{},
	"s32":    wit.S32{},
	"s64":    wit.S64{},
	"f32":    wit.F32{},
	"f64":    wit.F64{},
	"char":   wit.Char{},
	"string": wit.String{},
}

// parseArg reads an argument written as type:value, where type is a WIT
// primitive name or "bigint", or as a bare value whose type is inferred.
func parseArg(s string) (any, error) {
	if name, value, ok := strings.Cut(s, ":"); ok {
		if name == "bigint" {
			n, ok := new(big.Int).SetString(value, 10)
			if !ok {
				return nil, fmt.Errorf("bad bigint %q", value)
			}
			return n, nil
		}
		if t, known := witTypes[name]; known {
			return convertArg(value, t)
		}
	}
	return inferArg(s), nil
}

func inferArg(s string) any {
	switch s {
	case "null":
		return nil
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n >= math.MinInt32 && n <= math.MaxInt32 {
			return int32(n)
		}
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

func convertArg(value string, t wit.Type) (any, error) {
	bad := func(err error) error {
		return fmt.Errorf("%q is not a %s: %w", value, coerce.WitTypeName(t), err)
	}
	switch t.(type) {
	case wit.String:
		return value, nil
	case wit.Bool:
		v, err := strconv.ParseBool(value)
		if err != nil {
			return nil, bad(err)
		}
		return v, nil
	case wit.S8:
		v, err := strconv.ParseInt(value, 10, 8)
		if err != nil {
			return nil, bad(err)
		}
		return int8(v), nil
	case wit.S16:
		v, err := strconv.ParseInt(value, 10, 16)
		if err != nil {
			return nil, bad(err)
		}
		return int16(v), nil
	case wit.S32:
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, bad(err)
		}
		return int32(v), nil
	case wit.S64:
		v, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, bad(err)
		}
		return v, nil
	case wit.F32:
		v, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return nil, bad(err)
		}
		return float32(v), nil
	case wit.F64:
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, bad(err)
		}
		return v, nil
	case wit.Char:
		units := utf16.Encode([]rune(value))
		if len(units) != 1 {
			return nil, fmt.Errorf("%q is not a single char", value)
		}
		return units[0], nil
	}
	return value, nil
}

func parseArgs(in []string) ([]any, error) {
	out := make([]any, 0, len(in))
	for _, s := range in {
		v, err := parseArg(s)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// typeName renders the protocol type of a result: WIT names for
// primitives, the managed type name for objects.
func typeName(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case uint16:
		return coerce.WitTypeName(wit.Char{})
	case managed.Object:
		return x.Type().Name()
	case *interop.BoundMethod:
		return "method"
	case []string:
		return "list<string>"
	}
	if k, ok := coerce.Classify(v); ok {
		return k.WitName()
	}
	return fmt.Sprintf("%T", v)
}

// formatValue renders a result for the terminal
func formatValue(lib *interop.Library, v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case string:
		return strconv.Quote(x)
	case uint16:
		return strconv.QuoteRune(rune(x))
	case []string:
		return "[" + strings.Join(x, ", ") + "]"
	}
	return lib.ToDisplayString(v)
}
