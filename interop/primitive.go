package interop

import (
	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
)

// primitiveOp answers a message about a primitive protocol value
type primitiveOp func(p any) (any, error)

func pred(fn func(any) bool) primitiveOp {
	return func(p any) (any, error) { return fn(p), nil }
}

func conv[T any](fn func(any) (T, error)) primitiveOp {
	return func(p any) (any, error) {
		v, err := fn(p)
		if err != nil {
			return nil, err
		}
		return v, nil
	}
}

var primitiveOps = map[dispatch.Message]primitiveOp{
	dispatch.IsBoolean:        pred(coerce.FitsInBoolean),
	dispatch.AsBoolean:        conv(coerce.AsBoolean),
	dispatch.IsString:         pred(coerce.FitsInString),
	dispatch.AsString:         conv(coerce.AsString),
	dispatch.IsNumber:         pred(coerce.IsNumber),
	dispatch.FitsInByte:       pred(coerce.FitsInByte),
	dispatch.FitsInShort:      pred(coerce.FitsInShort),
	dispatch.FitsInInt:        pred(coerce.FitsInInt),
	dispatch.FitsInLong:       pred(coerce.FitsInLong),
	dispatch.FitsInFloat:      pred(coerce.FitsInFloat),
	dispatch.FitsInDouble:     pred(coerce.FitsInDouble),
	dispatch.FitsInBigInteger: pred(coerce.FitsInBigInteger),
	dispatch.AsByte:           conv(coerce.AsByte),
	dispatch.AsShort:          conv(coerce.AsShort),
	dispatch.AsInt:            conv(coerce.AsInt),
	dispatch.AsLong:           conv(coerce.AsLong),
	dispatch.AsFloat:          conv(coerce.AsFloat),
	dispatch.AsDouble:         conv(coerce.AsDouble),
	dispatch.AsBigInteger:     conv(coerce.AsBigInteger),
}

// boxed adapts a primitive op to boxed managed receivers. A boxed object
// without a primitive view answers as the value nil does.
func boxed(op primitiveOp) dispatch.Handler {
	return func(recv managed.Object, _ []any) (any, error) {
		p, _, err := convert.Primitive(runtimeOf(recv), recv)
		if err != nil {
			return nil, err
		}
		return op(p)
	}
}

func installPrimitive(t *dispatch.Table) {
	for msg, op := range primitiveOps {
		t.Handle(msg, boxed(op))
	}
}
