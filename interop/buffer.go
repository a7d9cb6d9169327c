package interop

import (
	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/coerce"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

func bufferOf(recv managed.Object) *adapter.Buffer {
	return adapter.NewBuffer(runtimeOf(recv), recv)
}

// ordered wires a read and a write message taking (order, offset[, value])
func ordered[T any](t *dispatch.Table, read, write dispatch.Message,
	get func(*adapter.Buffer, adapter.Order, int64) (T, error),
	put func(*adapter.Buffer, adapter.Order, int64, T) error,
	as func(any) (T, error),
) {
	t.Handle(read, func(recv managed.Object, args []any) (any, error) {
		o, err := orderArg(args, 0, read)
		if err != nil {
			return nil, err
		}
		off, err := indexArg(args, 1, read)
		if err != nil {
			return nil, err
		}
		return get(bufferOf(recv), o, off)
	})
	t.Handle(write, func(recv managed.Object, args []any) (any, error) {
		o, err := orderArg(args, 0, write)
		if err != nil {
			return nil, err
		}
		off, err := indexArg(args, 1, write)
		if err != nil {
			return nil, err
		}
		x, err := as(argAt(args, 2, write))
		if err != nil {
			return nil, err
		}
		return nil, put(bufferOf(recv), o, off, x)
	})
}

func installBuffer(t *dispatch.Table) {
	t.Handle(dispatch.HasBufferElements, always(true))
	t.Handle(dispatch.IsBufferWritable, func(recv managed.Object, _ []any) (any, error) {
		return bufferOf(recv).IsWritable()
	})
	t.Handle(dispatch.GetBufferSize, func(recv managed.Object, _ []any) (any, error) {
		return bufferOf(recv).Size()
	})
	t.Handle(dispatch.ReadBufferByte, func(recv managed.Object, args []any) (any, error) {
		off, err := indexArg(args, 0, dispatch.ReadBufferByte)
		if err != nil {
			return nil, err
		}
		return bufferOf(recv).ReadByteAt(off)
	})
	t.Handle(dispatch.WriteBufferByte, func(recv managed.Object, args []any) (any, error) {
		off, err := indexArg(args, 0, dispatch.WriteBufferByte)
		if err != nil {
			return nil, err
		}
		x, err := coerce.AsByte(argAt(args, 1, dispatch.WriteBufferByte))
		if err != nil {
			return nil, err
		}
		return nil, bufferOf(recv).WriteByteAt(off, x)
	})
	t.Handle(dispatch.ReadBuffer, readBulk)

	ordered(t, dispatch.ReadBufferShort, dispatch.WriteBufferShort,
		(*adapter.Buffer).ReadShort, (*adapter.Buffer).WriteShort, coerce.AsShort)
	ordered(t, dispatch.ReadBufferInt, dispatch.WriteBufferInt,
		(*adapter.Buffer).ReadInt, (*adapter.Buffer).WriteInt, coerce.AsInt)
	ordered(t, dispatch.ReadBufferLong, dispatch.WriteBufferLong,
		(*adapter.Buffer).ReadLong, (*adapter.Buffer).WriteLong, coerce.AsLong)
	ordered(t, dispatch.ReadBufferFloat, dispatch.WriteBufferFloat,
		(*adapter.Buffer).ReadFloat, (*adapter.Buffer).WriteFloat, coerce.AsFloat)
	ordered(t, dispatch.ReadBufferDouble, dispatch.WriteBufferDouble,
		(*adapter.Buffer).ReadDouble, (*adapter.Buffer).WriteDouble, coerce.AsDouble)
}

// readBulk takes (offset, dst []byte, dstOffset, length)
func readBulk(recv managed.Object, args []any) (any, error) {
	off, err := indexArg(args, 0, dispatch.ReadBuffer)
	if err != nil {
		return nil, err
	}
	dst, ok := argAt(args, 1, dispatch.ReadBuffer).([]byte)
	if !ok {
		return nil, errors.New(errors.PhaseDispatch, errors.KindTypeMismatch).
			Path(dispatch.ReadBuffer.String()).
			Detail("destination is %T, not []byte", args[1]).
			Build()
	}
	dstOff, err := indexArg(args, 2, dispatch.ReadBuffer)
	if err != nil {
		return nil, err
	}
	n, err := indexArg(args, 3, dispatch.ReadBuffer)
	if err != nil {
		return nil, err
	}
	if dstOff < 0 || n < 0 || dstOff+n > int64(len(dst)) {
		return nil, errors.InvalidBufferOffset(errors.PhaseDispatch, dstOff, n)
	}
	return nil, bufferOf(recv).ReadBuffer(off, dst, int(dstOff), int(n))
}
