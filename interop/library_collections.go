package interop

import (
	"time"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
)

func (l *Library) HasArrayElements(v any) bool { return l.query(v, dispatch.HasArrayElements) }

func (l *Library) GetArraySize(v any) (int64, error) {
	return typed[int64](l, v, dispatch.GetArraySize)
}

func (l *Library) IsArrayElementReadable(v any, i int64) bool {
	return l.query(v, dispatch.IsArrayElementReadable, i)
}

func (l *Library) IsArrayElementModifiable(v any, i int64) bool {
	return l.query(v, dispatch.IsArrayElementModifiable, i)
}

func (l *Library) IsArrayElementInsertable(v any, i int64) bool {
	return l.query(v, dispatch.IsArrayElementInsertable, i)
}

func (l *Library) IsArrayElementRemovable(v any, i int64) bool {
	return l.query(v, dispatch.IsArrayElementRemovable, i)
}

func (l *Library) ReadArrayElement(v any, i int64) (any, error) {
	return l.Send(v, dispatch.ReadArrayElement, i)
}

// WriteArrayElement writes at i; for lists i == size appends
func (l *Library) WriteArrayElement(v any, i int64, value any) error {
	_, err := l.Send(v, dispatch.WriteArrayElement, i, value)
	return err
}

func (l *Library) RemoveArrayElement(v any, i int64) error {
	_, err := l.Send(v, dispatch.RemoveArrayElement, i)
	return err
}

func (l *Library) HasHashEntries(v any) bool { return l.query(v, dispatch.HasHashEntries) }

func (l *Library) GetHashSize(v any) (int64, error) {
	return typed[int64](l, v, dispatch.GetHashSize)
}

func (l *Library) IsHashEntryReadable(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryReadable, key)
}

func (l *Library) IsHashEntryModifiable(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryModifiable, key)
}

func (l *Library) IsHashEntryInsertable(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryInsertable, key)
}

func (l *Library) IsHashEntryRemovable(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryRemovable, key)
}

func (l *Library) IsHashEntryWritable(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryWritable, key)
}

func (l *Library) IsHashEntryExisting(v, key any) bool {
	return l.query(v, dispatch.IsHashEntryExisting, key)
}

// ReadHashValue fails with KindUnknownKey when key is absent
func (l *Library) ReadHashValue(v, key any) (any, error) {
	return l.Send(v, dispatch.ReadHashValue, key)
}

func (l *Library) ReadHashValueOrDefault(v, key, def any) (any, error) {
	return l.Send(v, dispatch.ReadHashValueOrDefault, key, def)
}

func (l *Library) WriteHashEntry(v, key, value any) error {
	_, err := l.Send(v, dispatch.WriteHashEntry, key, value)
	return err
}

func (l *Library) RemoveHashEntry(v, key any) error {
	_, err := l.Send(v, dispatch.RemoveHashEntry, key)
	return err
}

// GetHashEntriesIterator returns an iterator over entries; each entry is
// an array of two elements, key then value.
func (l *Library) GetHashEntriesIterator(v any) (any, error) {
	return l.Send(v, dispatch.GetHashEntriesIterator)
}

func (l *Library) GetHashKeysIterator(v any) (any, error) {
	return l.Send(v, dispatch.GetHashKeysIterator)
}

func (l *Library) GetHashValuesIterator(v any) (any, error) {
	return l.Send(v, dispatch.GetHashValuesIterator)
}

func (l *Library) HasIterator(v any) bool { return l.query(v, dispatch.HasIterator) }

func (l *Library) GetIterator(v any) (any, error) {
	return l.Send(v, dispatch.GetIterator)
}

func (l *Library) IsIterator(v any) bool { return l.query(v, dispatch.IsIterator) }

func (l *Library) HasIteratorNextElement(v any) (bool, error) {
	return typed[bool](l, v, dispatch.HasIteratorNextElement)
}

// GetIteratorNextElement fails with errors.ErrStopIteration at the end
func (l *Library) GetIteratorNextElement(v any) (any, error) {
	return l.Send(v, dispatch.GetIteratorNextElement)
}

// Elements drains an iterator into a slice
func (l *Library) Elements(it any) ([]any, error) {
	var out []any
	for {
		ok, err := l.HasIteratorNextElement(it)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		e, err := l.GetIteratorNextElement(it)
		if err != nil {
			return out, err
		}
		out = append(out, e)
	}
}

func (l *Library) HasBufferElements(v any) bool { return l.query(v, dispatch.HasBufferElements) }

func (l *Library) IsBufferWritable(v any) (bool, error) {
	return typed[bool](l, v, dispatch.IsBufferWritable)
}

func (l *Library) GetBufferSize(v any) (int64, error) {
	return typed[int64](l, v, dispatch.GetBufferSize)
}

func (l *Library) ReadBufferByte(v any, offset int64) (int8, error) {
	return typed[int8](l, v, dispatch.ReadBufferByte, offset)
}

func (l *Library) WriteBufferByte(v any, offset int64, x int8) error {
	_, err := l.Send(v, dispatch.WriteBufferByte, offset, x)
	return err
}

// ReadBuffer copies length bytes at offset into dst[dstOffset:]
func (l *Library) ReadBuffer(v any, offset int64, dst []byte, dstOffset, length int) error {
	_, err := l.Send(v, dispatch.ReadBuffer, offset, dst, int64(dstOffset), int64(length))
	return err
}

func (l *Library) ReadBufferShort(v any, o adapter.Order, offset int64) (int16, error) {
	return typed[int16](l, v, dispatch.ReadBufferShort, o, offset)
}

func (l *Library) WriteBufferShort(v any, o adapter.Order, offset int64, x int16) error {
	_, err := l.Send(v, dispatch.WriteBufferShort, o, offset, x)
	return err
}

func (l *Library) ReadBufferInt(v any, o adapter.Order, offset int64) (int32, error) {
	return typed[int32](l, v, dispatch.ReadBufferInt, o, offset)
}

func (l *Library) WriteBufferInt(v any, o adapter.Order, offset int64, x int32) error {
	_, err := l.Send(v, dispatch.WriteBufferInt, o, offset, x)
	return err
}

func (l *Library) ReadBufferLong(v any, o adapter.Order, offset int64) (int64, error) {
	return typed[int64](l, v, dispatch.ReadBufferLong, o, offset)
}

func (l *Library) WriteBufferLong(v any, o adapter.Order, offset int64, x int64) error {
	_, err := l.Send(v, dispatch.WriteBufferLong, o, offset, x)
	return err
}

func (l *Library) ReadBufferFloat(v any, o adapter.Order, offset int64) (float32, error) {
	return typed[float32](l, v, dispatch.ReadBufferFloat, o, offset)
}

func (l *Library) WriteBufferFloat(v any, o adapter.Order, offset int64, x float32) error {
	_, err := l.Send(v, dispatch.WriteBufferFloat, o, offset, x)
	return err
}

func (l *Library) ReadBufferDouble(v any, o adapter.Order, offset int64) (float64, error) {
	return typed[float64](l, v, dispatch.ReadBufferDouble, o, offset)
}

func (l *Library) WriteBufferDouble(v any, o adapter.Order, offset int64, x float64) error {
	_, err := l.Send(v, dispatch.WriteBufferDouble, o, offset, x)
	return err
}

func (l *Library) IsDate(v any) bool     { return l.query(v, dispatch.IsDate) }
func (l *Library) IsTime(v any) bool     { return l.query(v, dispatch.IsTime) }
func (l *Library) IsTimeZone(v any) bool { return l.query(v, dispatch.IsTimeZone) }
func (l *Library) IsDuration(v any) bool { return l.query(v, dispatch.IsDuration) }

func (l *Library) AsDate(v any) (convert.LocalDate, error) {
	return typed[convert.LocalDate](l, v, dispatch.AsDate)
}

func (l *Library) AsTime(v any) (convert.LocalTime, error) {
	return typed[convert.LocalTime](l, v, dispatch.AsTime)
}

func (l *Library) AsTimeZone(v any) (*time.Location, error) {
	return typed[*time.Location](l, v, dispatch.AsTimeZone)
}

// AsInstant returns the instant in UTC
func (l *Library) AsInstant(v any) (time.Time, error) {
	return typed[time.Time](l, v, dispatch.AsInstant)
}

func (l *Library) AsDuration(v any) (time.Duration, error) {
	return typed[time.Duration](l, v, dispatch.AsDuration)
}
