package vm

import (
	"encoding/binary"
	"math"

	hostinterop "github.com/wippyai/hostinterop"
	"github.com/wippyai/hostinterop/managed"
)

// byteStore is the backing storage of a ByteBuffer
type byteStore interface {
	load(off, n int) ([]byte, bool)
	store(off int, b []byte) bool
}

type heapStore []byte

func (h heapStore) load(off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > len(h) {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, h[off:off+n])
	return out, true
}

func (h heapStore) store(off int, b []byte) bool {
	if off < 0 || off+len(b) > len(h) {
		return false
	}
	copy(h[off:], b)
	return true
}

// directStore is a window [base, base+size) of a Memory
type directStore struct {
	mem  hostinterop.Memory
	base uint32
	size int
}

func (d directStore) load(off, n int) ([]byte, bool) {
	if off < 0 || n < 0 || off+n > d.size {
		return nil, false
	}
	b, err := d.mem.Read(d.base+uint32(off), uint32(n))
	if err != nil {
		return nil, false
	}
	out := make([]byte, n)
	copy(out, b)
	return out, true
}

func (d directStore) store(off int, b []byte) bool {
	if off < 0 || off+len(b) > d.size {
		return false
	}
	return d.mem.Write(d.base+uint32(off), b) == nil
}

type bufferState struct {
	data      byteStore
	limit     int
	readOnly  bool
	bigEndian bool
}

func (s *bufferState) order() binary.ByteOrder {
	if s.bigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func (m *Machine) bootstrapBuffers() {
	str := m.known[managed.TypeString]
	boolean := m.prims[managed.PrimBoolean]
	i8 := m.prims[managed.PrimByte]
	i16 := m.prims[managed.PrimShort]
	i32 := m.prims[managed.PrimInt]
	i64 := m.prims[managed.PrimLong]
	f32 := m.prims[managed.PrimFloat]
	f64 := m.prims[managed.PrimDouble]

	order := m.register(ClassSpec{Name: "java.nio.ByteOrder", Final: true})
	m.known[managed.TypeByteOrder] = order
	m.bigEndian = &Object{class: order, native: "BIG_ENDIAN"}
	m.littleEndian = &Object{class: order, native: "LITTLE_ENDIAN"}
	order.statics = append(order.statics,
		&Field{name: "BIG_ENDIAN", typ: order, decl: order, final: true, static: true, public: true, value: m.bigEndian},
		&Field{name: "LITTLE_ENDIAN", typ: order, decl: order, final: true, static: true, public: true, value: m.littleEndian},
	)
	m.addMethods(order,
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return m.Str(self.native.(string)), nil
		}},
		MethodSpec{Name: "nativeOrder", Static: true, Return: order, Fn: func(m *Machine, _ *Object, _ []managed.Value) (managed.Value, error) {
			return m.littleEndian, nil
		}},
	)

	state := func(self *Object) *bufferState { return self.native.(*bufferState) }
	oob := func(m *Machine, index int32, width int, limit int) error {
		return m.Throwf(managed.TypeIndexOutOfBounds, "index %d, width %d, limit %d", index, width, limit)
	}
	read := func(m *Machine, self *Object, index managed.Value, width int) ([]byte, error) {
		st := state(self)
		i := index.(int32)
		if i < 0 || int(i)+width > st.limit {
			return nil, oob(m, i, width, st.limit)
		}
		b, ok := st.data.load(int(i), width)
		if !ok {
			return nil, oob(m, i, width, st.limit)
		}
		return b, nil
	}
	write := func(m *Machine, self *Object, index managed.Value, b []byte) error {
		st := state(self)
		if st.readOnly {
			return m.Throw(managed.TypeReadOnlyBuffer, "")
		}
		i := index.(int32)
		if i < 0 || int(i)+len(b) > st.limit || !st.data.store(int(i), b) {
			return oob(m, i, len(b), st.limit)
		}
		return nil
	}
	getter := func(name string, ret *Class, width int, decode func(binary.ByteOrder, []byte) managed.Value) MethodSpec {
		return MethodSpec{Name: name, Params: []*Class{i32}, Return: ret, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			b, err := read(m, self, args[0], width)
			if err != nil {
				return nil, err
			}
			return decode(state(self).order(), b), nil
		}}
	}
	putter := func(name string, param *Class, width int, encode func(binary.ByteOrder, []byte, managed.Value)) MethodSpec {
		return MethodSpec{Name: name, Params: []*Class{i32, param}, Return: m.known[managed.TypeByteBuffer], Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			b := make([]byte, width)
			encode(state(self).order(), b, args[1])
			if err := write(m, self, args[0], b); err != nil {
				return nil, err
			}
			return self, nil
		}}
	}

	buffer := m.register(ClassSpec{Name: "java.nio.ByteBuffer", Abstract: true})
	m.known[managed.TypeByteBuffer] = buffer

	accessors := []MethodSpec{
		{Name: "limit", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(state(self).limit), nil
		}},
		{Name: "capacity", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(state(self).limit), nil
		}},
		{Name: "isReadOnly", Return: boolean, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return state(self).readOnly, nil
		}},
		{Name: "order", Return: order, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			if state(self).bigEndian {
				return m.bigEndian, nil
			}
			return m.littleEndian, nil
		}},
		{Name: "order", Params: []*Class{order}, Return: buffer, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			bo, ok := args[0].(*Object)
			if !ok || m.IsNull(bo) {
				return nil, m.Throw(managed.TypeNullPointer, "order(null)")
			}
			state(self).bigEndian = bo == m.bigEndian
			return self, nil
		}},
		getter("get", i8, 1, func(_ binary.ByteOrder, b []byte) managed.Value { return int8(b[0]) }),
		getter("getShort", i16, 2, func(o binary.ByteOrder, b []byte) managed.Value { return int16(o.Uint16(b)) }),
		getter("getInt", i32, 4, func(o binary.ByteOrder, b []byte) managed.Value { return int32(o.Uint32(b)) }),
		getter("getLong", i64, 8, func(o binary.ByteOrder, b []byte) managed.Value { return int64(o.Uint64(b)) }),
		getter("getFloat", f32, 4, func(o binary.ByteOrder, b []byte) managed.Value { return math.Float32frombits(o.Uint32(b)) }),
		getter("getDouble", f64, 8, func(o binary.ByteOrder, b []byte) managed.Value { return math.Float64frombits(o.Uint64(b)) }),
		putter("put", i8, 1, func(_ binary.ByteOrder, b []byte, v managed.Value) { b[0] = byte(v.(int8)) }),
		putter("putShort", i16, 2, func(o binary.ByteOrder, b []byte, v managed.Value) { o.PutUint16(b, uint16(v.(int16))) }),
		putter("putInt", i32, 4, func(o binary.ByteOrder, b []byte, v managed.Value) { o.PutUint32(b, uint32(v.(int32))) }),
		putter("putLong", i64, 8, func(o binary.ByteOrder, b []byte, v managed.Value) { o.PutUint64(b, uint64(v.(int64))) }),
		putter("putFloat", f32, 4, func(o binary.ByteOrder, b []byte, v managed.Value) { o.PutUint32(b, math.Float32bits(v.(float32))) }),
		putter("putDouble", f64, 8, func(o binary.ByteOrder, b []byte, v managed.Value) { o.PutUint64(b, math.Float64bits(v.(float64))) }),
		{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			return m.Str(self.class.name + "[pos=0 lim=" + boxString(int32(st.limit)) + " cap=" + boxString(int32(st.limit)) + "]"), nil
		}},
	}

	// get(int index, byte[] dst, int offset, int length)
	bulk := MethodSpec{Name: "get", Params: []*Class{i32, m.arrayOf(i8), i32, i32}, Return: buffer,
		Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := state(self)
			index, off, n := args[0].(int32), args[2].(int32), args[3].(int32)
			dst, ok := args[1].(*Object)
			if !ok || m.IsNull(dst) {
				return nil, m.Throw(managed.TypeNullPointer, "get(null)")
			}
			elems := m.elements(dst)
			if index < 0 || off < 0 || n < 0 || int(index)+int(n) > st.limit || int(off)+int(n) > len(elems) {
				return nil, oob(m, index, int(n), st.limit)
			}
			b, ok := st.data.load(int(index), int(n))
			if !ok {
				return nil, oob(m, index, int(n), st.limit)
			}
			for i, x := range b {
				elems[int(off)+i] = int8(x)
			}
			return self, nil
		}}

	heap := m.register(ClassSpec{Name: "java.nio.HeapByteBuffer", Super: buffer})
	m.addMethods(heap, accessors...)
	m.addMethods(heap, bulk)

	direct := m.register(ClassSpec{Name: "java.nio.DirectByteBuffer", Super: buffer})
	m.addMethods(direct, accessors...)
	m.addMethods(direct, bulk)

	// The read-only view has no bulk get; callers fall back to per-byte reads.
	readOnly := m.register(ClassSpec{Name: "java.nio.HeapByteBufferR", Super: buffer, Final: true})
	m.addMethods(readOnly, accessors...)

	m.addMethods(buffer,
		MethodSpec{Name: "allocate", Static: true, Params: []*Class{i32}, Return: buffer, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			n := args[0].(int32)
			if n < 0 {
				return nil, m.Throwf(managed.TypeIllegalArgument, "capacity < 0: (%d < 0)", n)
			}
			return m.NewByteBuffer(int(n)), nil
		}},
		MethodSpec{Name: "wrap", Static: true, Params: []*Class{m.arrayOf(i8)}, Return: buffer, Fn: func(m *Machine, _ *Object, args []managed.Value) (managed.Value, error) {
			src, ok := args[0].(*Object)
			if !ok || m.IsNull(src) {
				return nil, m.Throw(managed.TypeNullPointer, "wrap(null)")
			}
			elems := m.elements(src)
			raw := make([]byte, len(elems))
			for i, e := range elems {
				raw[i] = byte(e.(int8))
			}
			return m.WrapBytes(raw), nil
		}},
	)
}

func (m *Machine) newBuffer(class string, st *bufferState) *Object {
	st.bigEndian = true
	return &Object{class: m.std(class), native: st}
}

// NewByteBuffer allocates a zeroed heap buffer of capacity n
func (m *Machine) NewByteBuffer(n int) *Object {
	return m.newBuffer("java.nio.HeapByteBuffer", &bufferState{data: make(heapStore, n), limit: n})
}

// WrapBytes creates a heap buffer sharing b
func (m *Machine) WrapBytes(b []byte) *Object {
	return m.newBuffer("java.nio.HeapByteBuffer", &bufferState{data: heapStore(b), limit: len(b)})
}

// NewDirectBuffer creates a buffer over size bytes of mem starting at base
func (m *Machine) NewDirectBuffer(mem hostinterop.Memory, base uint32, size int) (*Object, error) {
	if size < 0 || uint64(base)+uint64(size) > uint64(mem.Size()) {
		return nil, m.Throwf(managed.TypeIndexOutOfBounds, "direct buffer [%d, %d) exceeds memory size %d", base, uint64(base)+uint64(size), mem.Size())
	}
	return m.newBuffer("java.nio.DirectByteBuffer", &bufferState{data: directStore{mem: mem, base: base, size: size}, limit: size}), nil
}

// AsReadOnly returns a read-only view sharing the storage of buf
func (m *Machine) AsReadOnly(buf *Object) *Object {
	st := buf.native.(*bufferState)
	view := &bufferState{data: st.data, limit: st.limit, readOnly: true}
	o := m.newBuffer("java.nio.HeapByteBufferR", view)
	view.bigEndian = st.bigEndian
	return o
}
