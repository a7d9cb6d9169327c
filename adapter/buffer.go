package adapter

import (
	"math"

	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

const maxInt32 = math.MaxInt32

// Order is a byte order requested by a buffer access
type Order uint8

const (
	LittleEndian Order = iota
	BigEndian
)

func (o Order) String() string {
	if o == BigEndian {
		return "BIG_ENDIAN"
	}
	return "LITTLE_ENDIAN"
}

// Buffer is the buffer view of a managed java.nio.ByteBuffer. Offsets are
// absolute. Multi-byte accesses in an order other than the buffer's own
// flip the buffer's order flag for the duration of the access.
type Buffer struct {
	rt  managed.Runtime
	obj managed.Object
}

// NewBuffer creates the view
func NewBuffer(rt managed.Runtime, obj managed.Object) *Buffer {
	return &Buffer{rt: rt, obj: obj}
}

// Size calls limit()
func (b *Buffer) Size() (int64, error) {
	n, err := sendInt(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferLimit)
	if err != nil {
		return 0, convert.Fault(err)
	}
	return n, nil
}

// IsWritable reports the negation of isReadOnly()
func (b *Buffer) IsWritable() (bool, error) {
	ro, err := sendBool(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferIsReadOnly)
	if err != nil {
		return false, convert.Fault(err)
	}
	return !ro, nil
}

func checkOffset(offset, length int64) error {
	if offset < 0 || length < 0 || offset > maxInt32 || offset+length > maxInt32 {
		return errors.InvalidBufferOffset(errors.PhaseAdapter, offset, length)
	}
	return nil
}

func (b *Buffer) translate(err error, offset, length int64) error {
	switch {
	case err == nil:
		return nil
	case convert.Raised(b.rt, err, managed.TypeIndexOutOfBounds):
		return errors.New(errors.PhaseAdapter, errors.KindInvalidBufferOffset).
			Value(offset).Cause(err).Detail("offset %d length %d out of range", offset, length).Build()
	case convert.Raised(b.rt, err, managed.TypeReadOnlyBuffer),
		convert.Raised(b.rt, err, managed.TypeUnsupportedOperation):
		return errors.New(errors.PhaseAdapter, errors.KindUnsupported).
			ManagedType(b.obj.Type().Name()).Cause(err).Detail("buffer is read-only").Build()
	}
	return convert.Fault(err)
}

// orderObject returns the managed ByteOrder constant for o
func (b *Buffer) orderObject(o Order) (managed.Object, error) {
	f := b.rt.LookupField(b.rt.Known(managed.TypeByteOrder), o.String(), true)
	if f == nil {
		return nil, errors.NotFound(errors.PhaseAdapter, "ByteOrder constant", o.String())
	}
	obj, ok := f.Get(nil).(managed.Object)
	if !ok {
		return nil, errors.NotFound(errors.PhaseAdapter, "ByteOrder constant", o.String())
	}
	return obj, nil
}

// withOrder runs fn with the buffer's order set to o, restoring the
// original order afterwards whether or not fn fails.
func (b *Buffer) withOrder(o Order, fn func() (managed.Value, error)) (managed.Value, error) {
	want, err := b.orderObject(o)
	if err != nil {
		return nil, err
	}
	cur, err := send(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferOrder)
	if err != nil {
		return nil, convert.Fault(err)
	}
	if cur == managed.Value(want) {
		return fn()
	}
	if _, err := send(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferSetOrder, want); err != nil {
		return nil, convert.Fault(err)
	}
	v, fnErr := fn()
	if _, err := send(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferSetOrder, cur); err != nil && fnErr == nil {
		return nil, convert.Fault(err)
	}
	return v, fnErr
}

func (b *Buffer) get(o Order, wk managed.WellKnownMethod, offset, width int64) (managed.Value, error) {
	if err := checkOffset(offset, width); err != nil {
		return nil, err
	}
	v, err := b.withOrder(o, func() (managed.Value, error) {
		return send(b.rt, errors.PhaseAdapter, b.obj, wk, int32(offset))
	})
	if err != nil {
		return nil, b.translate(err, offset, width)
	}
	return v, nil
}

func (b *Buffer) put(o Order, wk managed.WellKnownMethod, offset, width int64, v managed.Value) error {
	if err := checkOffset(offset, width); err != nil {
		return err
	}
	_, err := b.withOrder(o, func() (managed.Value, error) {
		return send(b.rt, errors.PhaseAdapter, b.obj, wk, int32(offset), v)
	})
	return b.translate(err, offset, width)
}

// ReadByteAt reads the signed byte at offset
func (b *Buffer) ReadByteAt(offset int64) (int8, error) {
	if err := checkOffset(offset, 1); err != nil {
		return 0, err
	}
	v, err := send(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferGet, int32(offset))
	if err != nil {
		return 0, b.translate(err, offset, 1)
	}
	return v.(int8), nil
}

// WriteByteAt stores x at offset
func (b *Buffer) WriteByteAt(offset int64, x int8) error {
	if err := checkOffset(offset, 1); err != nil {
		return err
	}
	_, err := send(b.rt, errors.PhaseAdapter, b.obj, managed.MethodBufferPut, int32(offset), x)
	return b.translate(err, offset, 1)
}

func (b *Buffer) ReadShort(o Order, offset int64) (int16, error) {
	v, err := b.get(o, managed.MethodBufferGetShort, offset, 2)
	if err != nil {
		return 0, err
	}
	return v.(int16), nil
}

func (b *Buffer) WriteShort(o Order, offset int64, x int16) error {
	return b.put(o, managed.MethodBufferPutShort, offset, 2, x)
}

func (b *Buffer) ReadInt(o Order, offset int64) (int32, error) {
	v, err := b.get(o, managed.MethodBufferGetInt, offset, 4)
	if err != nil {
		return 0, err
	}
	return v.(int32), nil
}

func (b *Buffer) WriteInt(o Order, offset int64, x int32) error {
	return b.put(o, managed.MethodBufferPutInt, offset, 4, x)
}

func (b *Buffer) ReadLong(o Order, offset int64) (int64, error) {
	v, err := b.get(o, managed.MethodBufferGetLong, offset, 8)
	if err != nil {
		return 0, err
	}
	return v.(int64), nil
}

func (b *Buffer) WriteLong(o Order, offset int64, x int64) error {
	return b.put(o, managed.MethodBufferPutLong, offset, 8, x)
}

func (b *Buffer) ReadFloat(o Order, offset int64) (float32, error) {
	v, err := b.get(o, managed.MethodBufferGetFloat, offset, 4)
	if err != nil {
		return 0, err
	}
	return v.(float32), nil
}

func (b *Buffer) WriteFloat(o Order, offset int64, x float32) error {
	return b.put(o, managed.MethodBufferPutFloat, offset, 4, x)
}

func (b *Buffer) ReadDouble(o Order, offset int64) (float64, error) {
	v, err := b.get(o, managed.MethodBufferGetDouble, offset, 8)
	if err != nil {
		return 0, err
	}
	return v.(float64), nil
}

func (b *Buffer) WriteDouble(o Order, offset int64, x float64) error {
	return b.put(o, managed.MethodBufferPutDouble, offset, 8, x)
}

// ReadBuffer copies length bytes starting at offset into dst[dstOffset:].
// It uses the buffer's bulk get when the type has one and otherwise reads
// byte by byte into scratch space; dst is only written once every byte has
// been read.
func (b *Buffer) ReadBuffer(offset int64, dst []byte, dstOffset, length int) error {
	if err := checkOffset(offset, int64(length)); err != nil {
		return err
	}
	if dstOffset < 0 || dstOffset+length > len(dst) {
		return errors.InvalidBufferOffset(errors.PhaseAdapter, int64(dstOffset), int64(length))
	}
	if bulk := b.rt.Resolve(b.obj.Type(), managed.MethodBufferBulkGet); bulk != nil {
		arr := b.rt.NewArray(b.rt.PrimitiveType(managed.PrimByte), length)
		if _, err := b.rt.Invoke(bulk, b.obj, []managed.Value{int32(offset), arr, int32(0), int32(length)}); err != nil {
			return b.translate(err, offset, int64(length))
		}
		for i := 0; i < length; i++ {
			dst[dstOffset+i] = byte(b.rt.ArrayGet(arr, i).(int8))
		}
		return nil
	}

	scratch := make([]byte, length)
	for i := range scratch {
		x, err := b.ReadByteAt(offset + int64(i))
		if err != nil {
			return err
		}
		scratch[i] = byte(x)
	}
	copy(dst[dstOffset:], scratch)
	return nil
}
