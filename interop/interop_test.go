package interop

import (
	stderrors "errors"
	"fmt"
	"math"
	"math/big"
	"slices"
	"testing"
	"time"
	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
	"github.com/wippyai/hostinterop/vm"
)

type fixture struct {
	lib    *Library
	router *dispatch.Router
	m      *vm.Machine
}

func setup(t *testing.T) *fixture {
	t.Helper()
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	r, err := dispatch.NewRouter(c, dispatch.DefaultOptions())
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	m := vm.New(vm.Options{Classify: Classify})
	if _, err := r.Attach(m); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	return &fixture{lib: NewLibrary(r, Options{}), router: r, m: m}
}

func wantKind(t *testing.T, err error, kind errors.Kind) {
	t.Helper()
	if !errors.IsKind(err, kind) {
		t.Fatalf("err = %v, want %s", err, kind)
	}
}

func str(t *testing.T, l *Library, v any) string {
	t.Helper()
	s, err := l.AsString(v)
	if err != nil {
		t.Fatalf("AsString(%v): %v", v, err)
	}
	return s
}

// definePoint defines demo.Point with a public field, a final field, a
// private field, a static counter and an overloaded method.
func definePoint(t *testing.T, m *vm.Machine) *vm.Class {
	t.Helper()
	i32 := m.Prim(managed.PrimInt)
	s := m.KnownClass(managed.TypeString)
	c, err := m.DefineClass(vm.ClassSpec{
		Name: "demo.Point",
		Fields: []vm.FieldSpec{
			{Name: "x", Type: i32},
			{Name: "id", Type: i32, Final: true},
			{Name: "secret", Type: i32, Private: true},
			{Name: "count", Type: i32, Static: true, Value: int32(1)},
		},
		Methods: []vm.MethodSpec{
			{Name: "<init>", Params: []*vm.Class{i32}, Fn: func(m *vm.Machine, self *vm.Object, args []managed.Value) (managed.Value, error) {
				m.LookupField(self.Class(), "x", false).Set(self, args[0])
				return nil, nil
			}},
			{Name: "scale", Params: []*vm.Class{i32}, Return: i32, Fn: func(m *vm.Machine, self *vm.Object, args []managed.Value) (managed.Value, error) {
				x := m.LookupField(self.Class(), "x", false).Get(self).(int32)
				return x * args[0].(int32), nil
			}},
			{Name: "scale", Params: []*vm.Class{s}, Return: s, Fn: func(m *vm.Machine, _ *vm.Object, args []managed.Value) (managed.Value, error) {
				v, _ := m.HostString(args[0].(managed.Object))
				return m.Str("scaled:" + v), nil
			}},
			{Name: "describe", Static: true, Return: s, Fn: func(m *vm.Machine, _ *vm.Object, _ []managed.Value) (managed.Value, error) {
				return m.Str("point"), nil
			}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newPoint(t *testing.T, f *fixture, c *vm.Class, x int32) managed.Object {
	t.Helper()
	obj, err := f.lib.Instantiate(f.m.Mirror(c), x)
	if err != nil {
		t.Fatalf("Instantiate: %v", err)
	}
	return obj.(managed.Object)
}

func TestClassify(t *testing.T) {
	f := setup(t)
	m := f.m
	zone, err := m.NewZoneID("UTC")
	if err != nil {
		t.Fatal(err)
	}
	custom := definePoint(t, m)

	tests := []struct {
		name string
		obj  managed.Object
		want managed.DispatchID
	}{
		{"null", m.Null(), IDNull},
		{"boolean", m.MustBox(true), IDBoolean},
		{"byte", m.MustBox(int8(1)), IDByte},
		{"short", m.MustBox(int16(1)), IDShort},
		{"integer", m.MustBox(int32(1)), IDInteger},
		{"long", m.MustBox(int64(1)), IDLong},
		{"float", m.MustBox(float32(1)), IDFloat},
		{"double", m.MustBox(float64(1)), IDDouble},
		{"character", m.MustBox(uint16('A')), IDCharacter},
		{"string", m.Str("s"), IDString},
		{"big integer", m.NewBigInteger(big.NewInt(7)), IDBigInteger},
		{"array", m.ArrayOf(m.Prim(managed.PrimInt), int32(1)), IDArray},
		{"array list", m.NewArrayList(), IDList},
		{"unmodifiable list", m.NewUnmodifiableList(), IDList},
		{"hash map", m.NewHashMap(), IDMap},
		{"iterator", m.NewIterator(func() (managed.Value, bool) { return nil, false }), IDIterator},
		{"byte buffer", m.NewByteBuffer(4), IDByteBuffer},
		{"class mirror", m.Mirror(custom), IDClass},
		{"local date", m.NewLocalDate(2024, time.March, 1), IDLocalDate},
		{"local time", m.NewLocalTime(1, 2, 3, 4), IDLocalTime},
		{"zone", zone, IDZoneID},
		{"instant", m.NewInstant(time.Unix(0, 0)), IDInstant},
		{"zoned", m.NewZonedDateTime(time.Unix(0, 0).UTC()), IDZonedDateTime},
		{"date", m.NewDate(time.Unix(0, 0)), IDDate},
		{"duration", m.NewDuration(1, 0), IDDuration},
		{"throwable", m.NewThrowable(m.KnownClass(managed.TypeIllegalArgument), "bad", nil), IDThrowable},
		{"custom class", m.Array(custom, 0), IDArray},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.obj.Type().DispatchID()
			if got != tt.want {
				t.Fatalf("dispatch id = %s, want %s", CategoryName(got), CategoryName(tt.want))
			}
		})
	}

	if got := Classify(custom); got != IDObject {
		t.Fatalf("custom class classified as %s", CategoryName(got))
	}
	if got := CategoryName(idCount + 5); got != "unknown" {
		t.Fatalf("CategoryName out of range = %q", got)
	}
}

func TestPrimitives(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m

	t.Run("go values", func(t *testing.T) {
		if !l.IsNumber(int32(300)) || l.FitsInByte(int32(300)) || !l.FitsInShort(int32(300)) {
			t.Fatal("int32(300) fits short only")
		}
		if !l.FitsInInt(float64(2)) || l.FitsInInt(1.5) {
			t.Fatal("integral doubles fit int, fractional ones do not")
		}
		if _, err := l.AsByte(int32(300)); !errors.IsKind(err, errors.KindTypeMismatch) {
			t.Fatalf("AsByte(300) err = %v", err)
		}
		if s := str(t, l, uint16('A')); s != "A" {
			t.Fatalf("char as string = %q", s)
		}
		if !l.IsBoolean(true) || l.IsBoolean(int32(1)) {
			t.Fatal("IsBoolean")
		}
	})

	t.Run("boxed values", func(t *testing.T) {
		n := m.MustBox(int32(42))
		if !l.IsNumber(n) || l.IsString(n) {
			t.Fatal("boxed int is a number")
		}
		v, err := l.AsLong(n)
		if err != nil || v != 42 {
			t.Fatalf("AsLong = %d, %v", v, err)
		}
		_, err = l.AsBoolean(n)
		wantKind(t, err, errors.KindTypeMismatch)

		b, err := l.AsBoolean(m.MustBox(true))
		if err != nil || !b {
			t.Fatalf("AsBoolean = %v, %v", b, err)
		}
		if s := str(t, l, m.MustBox(uint16('A'))); s != "A" {
			t.Fatalf("boxed char as string = %q", s)
		}
		if s, err := l.AsTruffleString(m.Str("hi")); err != nil || s != "hi" {
			t.Fatalf("AsTruffleString = %q, %v", s, err)
		}
	})

	t.Run("big integer", func(t *testing.T) {
		huge := new(big.Int).Lsh(big.NewInt(1), 80)
		bi := m.NewBigInteger(huge)
		if l.FitsInLong(bi) || !l.FitsInBigInteger(bi) {
			t.Fatal("2^80 fits only a big integer")
		}
		got, err := l.AsBigInteger(bi)
		if err != nil || got.Cmp(huge) != 0 {
			t.Fatalf("AsBigInteger = %v, %v", got, err)
		}
		small := m.NewBigInteger(big.NewInt(-5))
		if v, err := l.AsInt(small); err != nil || v != -5 {
			t.Fatalf("AsInt = %d, %v", v, err)
		}
	})

	t.Run("plain objects", func(t *testing.T) {
		obj := m.NewHashMap()
		if l.IsNumber(obj) || l.IsBoolean(obj) {
			t.Fatal("a map is no primitive")
		}
		_, err := l.AsBoolean(obj)
		wantKind(t, err, errors.KindUnsupported)
	})
}

func TestArrays(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	arr := m.ArrayOf(m.Prim(managed.PrimInt), int32(1), int32(2), int32(3))

	if !l.HasArrayElements(arr) {
		t.Fatal("array has elements")
	}
	n, err := l.GetArraySize(arr)
	if err != nil || n != 3 {
		t.Fatalf("size = %d, %v", n, err)
	}
	if !l.IsArrayElementReadable(arr, 2) || l.IsArrayElementReadable(arr, 3) {
		t.Fatal("readable bounds")
	}
	_, err = l.ReadArrayElement(arr, 5)
	wantKind(t, err, errors.KindInvalidIndex)

	if err := l.WriteArrayElement(arr, 1, int64(9)); err != nil {
		t.Fatalf("write: %v", err)
	}
	v, err := l.ReadArrayElement(arr, 1)
	if err != nil || v != int32(9) {
		t.Fatalf("read back = %v (%T), %v", v, v, err)
	}
	wantKind(t, l.WriteArrayElement(arr, 0, "x"), errors.KindTypeMismatch)
	wantKind(t, l.RemoveArrayElement(arr, 0), errors.KindUnsupported)

	if !l.HasIterator(arr) {
		t.Fatal("arrays are iterable")
	}
	it, err := l.GetIterator(arr)
	if err != nil {
		t.Fatalf("GetIterator: %v", err)
	}
	elems, err := l.Elements(it)
	if err != nil {
		t.Fatalf("Elements: %v", err)
	}
	if !slices.Equal(elems, []any{int32(1), int32(9), int32(3)}) {
		t.Fatalf("elements = %v", elems)
	}
	_, err = l.GetIteratorNextElement(it)
	if !errors.IsStopIteration(err) {
		t.Fatalf("exhausted iterator err = %v", err)
	}
}

func TestSendShortArguments(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	arr := m.ArrayOf(m.Prim(managed.PrimInt), int32(1), int32(2))

	tests := []struct {
		name string
		recv any
		msg  dispatch.Message
		args []any
	}{
		{"read element without index", arr, dispatch.ReadArrayElement, nil},
		{"write element without value", arr, dispatch.WriteArrayElement, []any{int64(0)}},
		{"read buffer short", arr, dispatch.ReadBuffer, []any{int64(0), []byte{0}}},
		{"identity on primitive", int32(1), dispatch.IsIdentical, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Send(tt.recv, tt.msg, tt.args...)
			wantKind(t, err, errors.KindArity)
			var e *errors.Error
			if !stderrors.As(err, &e) || e.Phase != errors.PhaseDispatch {
				t.Fatalf("err = %#v", err)
			}
		})
	}

	v, err := l.Send(arr, dispatch.ReadArrayElement, int64(1))
	if err != nil || v != int32(2) {
		t.Fatalf("full argument list = %v, %v", v, err)
	}
}

func TestList(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	list := m.NewArrayList(m.Str("a"), m.Str("b"))

	if !l.IsArrayElementInsertable(list, 2) || l.IsArrayElementInsertable(list, 1) {
		t.Fatal("only the append position is insertable")
	}
	if err := l.WriteArrayElement(list, 2, "c"); err != nil {
		t.Fatalf("append: %v", err)
	}
	if n, _ := l.GetArraySize(list); n != 3 {
		t.Fatalf("size after append = %d", n)
	}
	if !l.IsArrayElementRemovable(list, 0) {
		t.Fatal("element 0 is removable")
	}
	if err := l.RemoveArrayElement(list, 0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	first, err := l.ReadArrayElement(list, 0)
	if err != nil {
		t.Fatal(err)
	}
	if s := str(t, l, first); s != "b" {
		t.Fatalf("first after remove = %q", s)
	}
	_, err = l.ReadArrayElement(list, 7)
	wantKind(t, err, errors.KindInvalidIndex)

	it, err := l.GetIterator(list)
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsIterator(it) {
		t.Fatal("GetIterator returned a non-iterator")
	}
	var got []string
	for {
		e, err := l.GetIteratorNextElement(it)
		if errors.IsStopIteration(err) {
			break
		}
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, str(t, l, e))
	}
	if !slices.Equal(got, []string{"b", "c"}) {
		t.Fatalf("iterated %v", got)
	}

	ro := m.NewUnmodifiableList(m.Str("a"))
	wantKind(t, l.WriteArrayElement(ro, 0, "z"), errors.KindUnsupported)
	wantKind(t, l.RemoveArrayElement(ro, 0), errors.KindUnsupported)
}

func TestMap(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	hm := m.NewHashMap()

	if !l.HasHashEntries(hm) {
		t.Fatal("map has hash entries")
	}
	if !l.IsHashEntryInsertable(hm, "a") || l.IsHashEntryExisting(hm, "a") {
		t.Fatal("empty map")
	}
	if err := l.WriteHashEntry(hm, "a", int32(1)); err != nil {
		t.Fatal(err)
	}
	if err := l.WriteHashEntry(hm, "b", int32(2)); err != nil {
		t.Fatal(err)
	}
	if n, err := l.GetHashSize(hm); err != nil || n != 2 {
		t.Fatalf("size = %d, %v", n, err)
	}
	if !l.IsHashEntryExisting(hm, "a") || !l.IsHashEntryWritable(hm, "a") || !l.IsHashEntryWritable(hm, "new") {
		t.Fatal("existing and writable")
	}
	v, err := l.ReadHashValue(hm, "a")
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := l.AsInt(v); n != 1 {
		t.Fatalf("a = %v", v)
	}
	_, err = l.ReadHashValue(hm, "missing")
	wantKind(t, err, errors.KindUnknownKey)
	def, err := l.ReadHashValueOrDefault(hm, "missing", "fallback")
	if err != nil || def != "fallback" {
		t.Fatalf("default = %v, %v", def, err)
	}

	keysIt, err := l.GetHashKeysIterator(hm)
	if err != nil {
		t.Fatal(err)
	}
	keys, err := l.Elements(keysIt)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, k := range keys {
		names = append(names, str(t, l, k))
	}
	if !slices.Equal(names, []string{"a", "b"}) {
		t.Fatalf("keys = %v", names)
	}

	valsIt, err := l.GetHashValuesIterator(hm)
	if err != nil {
		t.Fatal(err)
	}
	vals, err := l.Elements(valsIt)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 {
		t.Fatalf("values = %v", vals)
	}

	entriesIt, err := l.GetHashEntriesIterator(hm)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := l.Elements(entriesIt)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := l.GetArraySize(entries[0]); n != 2 {
		t.Fatalf("entry size = %d", n)
	}
	wantKind(t, l.WriteArrayElement(entries[0], 0, "k"), errors.KindUnsupported)

	if err := l.RemoveHashEntry(hm, "a"); err != nil {
		t.Fatal(err)
	}
	wantKind(t, l.RemoveHashEntry(hm, "a"), errors.KindUnknownKey)

	frozen := m.NewImmutableMap(m.Str("k"), m.MustBox(int32(1)))
	wantKind(t, l.WriteHashEntry(frozen, "k", int32(2)), errors.KindUnsupported)
}

func TestMembers(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	pc := definePoint(t, m)
	p := newPoint(t, f, pc, 4)

	names, err := l.GetMembers(p)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"id", "scale", "x"} {
		if !slices.Contains(names, want) {
			t.Fatalf("members %v lack %q", names, want)
		}
	}
	for _, hidden := range []string{"secret", "count", "describe"} {
		if slices.Contains(names, hidden) {
			t.Fatalf("members %v expose %q", names, hidden)
		}
	}
	if !slices.IsSorted(names) {
		t.Fatalf("members not sorted: %v", names)
	}

	tests := []struct {
		name       string
		member     string
		readable   bool
		modifiable bool
		invocable  bool
	}{
		{"public field", "x", true, true, false},
		{"final field", "id", true, false, false},
		{"private field", "secret", false, false, false},
		{"method", "scale", true, false, true},
		{"unknown", "nope", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := l.IsMemberReadable(p, tt.member); got != tt.readable {
				t.Errorf("readable = %v", got)
			}
			if got := l.IsMemberModifiable(p, tt.member); got != tt.modifiable {
				t.Errorf("modifiable = %v", got)
			}
			if got := l.IsMemberInvocable(p, tt.member); got != tt.invocable {
				t.Errorf("invocable = %v", got)
			}
		})
	}

	x, err := l.ReadMember(p, "x")
	if err != nil || x != int32(4) {
		t.Fatalf("x = %v, %v", x, err)
	}
	if err := l.WriteMember(p, "x", int64(6)); err != nil {
		t.Fatal(err)
	}
	wantKind(t, l.WriteMember(p, "x", "six"), errors.KindTypeMismatch)
	wantKind(t, l.WriteMember(p, "id", int32(1)), errors.KindUnsupported)
	_, err = l.ReadMember(p, "secret")
	wantKind(t, err, errors.KindUnknownIdentifier)

	t.Run("invoke", func(t *testing.T) {
		got, err := l.InvokeMember(p, "scale", int32(3))
		if err != nil || got != int32(18) {
			t.Fatalf("scale(3) = %v, %v", got, err)
		}
		got, err = l.InvokeMember(p, "scale", "k")
		if err != nil {
			t.Fatal(err)
		}
		if s := str(t, l, got); s != "scaled:k" {
			t.Fatalf("scale(k) = %q", s)
		}
		_, err = l.InvokeMember(p, "scale", true)
		wantKind(t, err, errors.KindNoApplicable)
		_, err = l.InvokeMember(p, "scale", int32(1), int32(2))
		wantKind(t, err, errors.KindArity)
	})

	t.Run("bound method", func(t *testing.T) {
		v, err := l.ReadMember(p, "scale")
		if err != nil {
			t.Fatal(err)
		}
		bm, ok := v.(*BoundMethod)
		if !ok {
			t.Fatalf("scale read as %T", v)
		}
		if !l.IsExecutable(bm) || bm.String() != "demo.Point.scale" {
			t.Fatalf("bound method %s", bm)
		}
		if name, _ := l.GetExecutableName(bm); name != "scale" {
			t.Fatalf("executable name = %q", name)
		}
		got, err := l.Execute(bm, int32(2))
		if err != nil || got != int32(12) {
			t.Fatalf("Execute = %v, %v", got, err)
		}
		decl, err := l.GetDeclaringMetaObject(bm)
		if err != nil {
			t.Fatal(err)
		}
		if n, _ := l.GetMetaQualifiedName(decl); n != "demo.Point" {
			t.Fatalf("declaring = %q", n)
		}
	})

	t.Run("meta object", func(t *testing.T) {
		meta, err := l.GetMetaObject(p)
		if err != nil {
			t.Fatal(err)
		}
		if !l.IsMetaObject(meta) || l.IsMetaObject(p) {
			t.Fatal("only the mirror is a meta-object")
		}
		if n, _ := l.GetMetaQualifiedName(meta); n != "demo.Point" {
			t.Fatalf("qualified = %q", n)
		}
		if n, _ := l.GetMetaSimpleName(meta); n != "Point" {
			t.Fatalf("simple = %q", n)
		}
		if !l.IsMetaInstance(meta, p) || l.IsMetaInstance(meta, m.Str("x")) {
			t.Fatal("IsMetaInstance")
		}
		strMeta := m.Mirror(m.KnownClass(managed.TypeString))
		if !l.IsMetaInstance(strMeta, "go string") {
			t.Fatal("a Go string is an instance of String")
		}

		statics, err := l.GetMembers(meta)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Contains(statics, "count") || !slices.Contains(statics, "describe") || slices.Contains(statics, "x") {
			t.Fatalf("static members = %v", statics)
		}
		if err := l.WriteMember(meta, "count", int32(7)); err != nil {
			t.Fatal(err)
		}
		if c, _ := l.ReadMember(meta, "count"); c != int32(7) {
			t.Fatalf("count = %v", c)
		}
		d, err := l.InvokeMember(meta, "describe")
		if err != nil {
			t.Fatal(err)
		}
		if s := str(t, l, d); s != "point" {
			t.Fatalf("describe = %q", s)
		}

		if !l.IsInstantiable(meta) || l.IsInstantiable(m.Mirror(m.Prim(managed.PrimInt))) {
			t.Fatal("IsInstantiable")
		}
		if !l.HasMetaParents(meta) {
			t.Fatal("Point extends Object")
		}
		parents, err := l.GetMetaParents(meta)
		if err != nil {
			t.Fatal(err)
		}
		first, err := l.ReadArrayElement(parents, 0)
		if err != nil {
			t.Fatal(err)
		}
		if n, _ := l.GetMetaQualifiedName(first); n != m.ObjectClass().Name() {
			t.Fatalf("first parent = %q", n)
		}
	})
}

func TestExceptions(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	iae := m.KnownClass(managed.TypeIllegalArgument)
	cause := m.NewThrowable(iae, "", nil)
	exc := m.NewThrowable(iae, "bad input", cause, "demo.Main.run", "demo.Main.main")

	if !l.IsException(exc) || l.IsException(m.Str("x")) {
		t.Fatal("IsException")
	}
	if typ, _ := l.GetExceptionType(exc); typ != ExceptionRuntimeError {
		t.Fatalf("type = %q", typ)
	}
	if msg, err := l.GetExceptionMessage(exc); err != nil || msg != "bad input" {
		t.Fatalf("message = %q, %v", msg, err)
	}
	if !l.HasExceptionCause(exc) || l.HasExceptionCause(cause) {
		t.Fatal("HasExceptionCause")
	}
	got, err := l.GetExceptionCause(exc)
	if err != nil || got != managed.Object(cause) {
		t.Fatalf("cause = %v, %v", got, err)
	}
	if l.HasExceptionMessage(cause) {
		t.Fatal("cause has no message")
	}
	_, err = l.GetExceptionMessage(cause)
	wantKind(t, err, errors.KindUnsupported)

	trace, err := l.GetExceptionStackTrace(exc)
	if err != nil {
		t.Fatal(err)
	}
	if n, _ := l.GetArraySize(trace); n != 2 {
		t.Fatalf("trace size = %d", n)
	}
	frame, _ := l.ReadArrayElement(trace, 0)
	if s := str(t, l, frame); s != "demo.Main.run" {
		t.Fatalf("frame 0 = %q", s)
	}

	err = l.ThrowException(exc)
	var fault *errors.ManagedFault
	if !stderrors.As(err, &fault) {
		t.Fatalf("ThrowException err = %v", err)
	}
	if fault.TypeName != iae.Name() || fault.Message != "bad input" {
		t.Fatalf("fault = %+v", fault)
	}
	th, ok := managed.AsThrowable(err)
	if !ok || th.Exception != managed.Object(exc) {
		t.Fatal("fault does not carry the exception")
	}

	wantKind(t, l.ThrowException(m.NewHashMap()), errors.KindUnsupported)
}

func TestDateTime(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m

	d := m.NewLocalDate(2024, time.February, 29)
	if !l.IsDate(d) || l.IsTime(d) || l.IsTimeZone(d) {
		t.Fatal("local date queries")
	}
	date, err := l.AsDate(d)
	if err != nil || date != (convert.LocalDate{Year: 2024, Month: time.February, Day: 29}) {
		t.Fatalf("AsDate = %v, %v", date, err)
	}
	_, err = l.AsInstant(d)
	wantKind(t, err, errors.KindUnsupported)

	lt := m.NewLocalTime(13, 45, 30, 500)
	tod, err := l.AsTime(lt)
	if err != nil || tod != (convert.LocalTime{Hour: 13, Minute: 45, Second: 30, Nano: 500}) {
		t.Fatalf("AsTime = %v, %v", tod, err)
	}

	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	at := time.Date(2024, time.July, 1, 12, 30, 0, 7, berlin)
	zdt := m.NewZonedDateTime(at)
	if !l.IsDate(zdt) || !l.IsTime(zdt) || !l.IsTimeZone(zdt) {
		t.Fatal("zoned date time is date, time and zone")
	}
	loc, err := l.AsTimeZone(zdt)
	if err != nil || loc.String() != "Europe/Berlin" {
		t.Fatalf("zone = %v, %v", loc, err)
	}
	inst, err := l.AsInstant(zdt)
	if err != nil || !inst.Equal(at) || inst.Location() != time.UTC {
		t.Fatalf("AsInstant = %v, %v", inst, err)
	}

	zone, err := m.NewZoneID("Europe/Berlin")
	if err != nil {
		t.Fatal(err)
	}
	if !l.IsTimeZone(zone) || l.IsDate(zone) {
		t.Fatal("zone queries")
	}

	now := time.Date(2023, time.January, 2, 3, 4, 5, 6, time.UTC)
	in := m.NewInstant(now)
	got, err := l.AsInstant(in)
	if err != nil || !got.Equal(now) {
		t.Fatalf("instant = %v, %v", got, err)
	}
	if z, _ := l.AsTimeZone(in); z != time.UTC {
		t.Fatalf("instant zone = %v", z)
	}

	legacy := m.NewDate(now)
	got, err = l.AsInstant(legacy)
	if err != nil || !got.Equal(now.Truncate(time.Millisecond)) {
		t.Fatalf("date instant = %v, %v", got, err)
	}

	dur := m.NewDuration(90, 5)
	if !l.IsDuration(dur) || l.IsDuration(in) {
		t.Fatal("IsDuration")
	}
	dv, err := l.AsDuration(dur)
	if err != nil || dv != 90*time.Second+5 {
		t.Fatalf("duration = %v, %v", dv, err)
	}
	_, err = l.AsDuration(m.NewDuration(math.MaxInt64/int64(time.Second)+1, 0))
	wantKind(t, err, errors.KindTypeMismatch)
}

func TestBuffer(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	buf := m.NewByteBuffer(16)

	if !l.HasBufferElements(buf) {
		t.Fatal("buffer has elements")
	}
	if n, err := l.GetBufferSize(buf); err != nil || n != 16 {
		t.Fatalf("size = %d, %v", n, err)
	}
	if ok, _ := l.IsBufferWritable(buf); !ok {
		t.Fatal("fresh buffer is writable")
	}

	if err := l.WriteBufferInt(buf, adapter.LittleEndian, 0, 0x01020304); err != nil {
		t.Fatal(err)
	}
	if b, _ := l.ReadBufferByte(buf, 0); b != 0x04 {
		t.Fatalf("little endian low byte = %#x", b)
	}
	if v, _ := l.ReadBufferInt(buf, adapter.BigEndian, 0); v != 0x04030201 {
		t.Fatalf("big endian read = %#x", v)
	}
	if err := l.WriteBufferDouble(buf, adapter.BigEndian, 8, math.Pi); err != nil {
		t.Fatal(err)
	}
	if v, _ := l.ReadBufferDouble(buf, adapter.BigEndian, 8); v != math.Pi {
		t.Fatalf("double = %v", v)
	}
	if err := l.WriteBufferShort(buf, adapter.BigEndian, 4, -2); err != nil {
		t.Fatal(err)
	}
	if v, _ := l.ReadBufferShort(buf, adapter.BigEndian, 4); v != -2 {
		t.Fatalf("short = %d", v)
	}

	_, err := l.ReadBufferLong(buf, adapter.LittleEndian, 12)
	wantKind(t, err, errors.KindInvalidBufferOffset)
	wantKind(t, l.WriteBufferByte(buf, 16, 1), errors.KindInvalidBufferOffset)

	dst := make([]byte, 6)
	if err := l.ReadBuffer(buf, 0, dst, 2, 4); err != nil {
		t.Fatal(err)
	}
	if dst[2] != 0x04 || dst[5] != 0x01 || dst[0] != 0 {
		t.Fatalf("bulk read = %v", dst)
	}
	wantKind(t, l.ReadBuffer(buf, 0, dst, 4, 4), errors.KindInvalidBufferOffset)

	wrapped := m.WrapBytes([]byte{0, 0, 0, 42})
	if v, _ := l.ReadBufferInt(wrapped, adapter.BigEndian, 0); v != 42 {
		t.Fatalf("wrapped = %d", v)
	}

	ro := m.AsReadOnly(buf)
	if ok, _ := l.IsBufferWritable(ro); ok {
		t.Fatal("read-only buffer reports writable")
	}
	wantKind(t, l.WriteBufferByte(ro, 0, 1), errors.KindUnsupported)
}

func TestIdentityAndDisplay(t *testing.T) {
	f := setup(t)
	l, m := f.lib, f.m
	p := newPoint(t, f, definePoint(t, m), 1)

	h1, err := l.IdentityHashCode(p)
	if err != nil {
		t.Fatal(err)
	}
	h2, _ := l.IdentityHashCode(p)
	if h1 != h2 {
		t.Fatalf("hash changed: %d != %d", h1, h2)
	}
	if want := fmt.Sprintf("demo.Point@%x", uint32(h1)); l.ToDisplayString(p) != want {
		t.Fatalf("display = %q, want %q", l.ToDisplayString(p), want)
	}

	if !l.IsIdentical(p, p) || l.IsIdentical(p, m.NewHashMap()) {
		t.Fatal("IsIdentical")
	}
	if got := l.IsIdenticalOrUndefined(int32(1), int32(1)); got != dispatch.TriUndefined {
		t.Fatalf("primitive identity = %s", got)
	}
	if got := l.IsIdenticalOrUndefined(p, p); got != dispatch.TriTrue {
		t.Fatalf("object identity = %s", got)
	}

	if s := l.ToDisplayString(m.Null()); s != "null" {
		t.Fatalf("null display = %q", s)
	}
	if s := l.ToDisplayString(nil); s != "null" {
		t.Fatalf("nil display = %q", s)
	}
	if !l.IsNull(nil) || !l.IsNull(m.Null()) || l.IsNull(p) {
		t.Fatal("IsNull")
	}

	eager := NewLibrary(f.router, Options{DisplaySideEffects: true})
	if s := eager.ToDisplayString(m.MustBox(int32(42))); s != "42" {
		t.Fatalf("boxed display = %q", s)
	}

	if lang, _ := l.GetLanguage(p); lang != "java" {
		t.Fatalf("language = %q", lang)
	}
	if native, err := l.ToNative(p); err != nil || native != nil {
		t.Fatalf("ToNative = %v, %v", native, err)
	}
}

func TestSharingAcrossContexts(t *testing.T) {
	f := setup(t)
	m2 := vm.New(vm.Options{Classify: Classify})
	if _, err := f.router.Attach(m2); err != nil {
		t.Fatal(err)
	}

	if v, err := f.lib.AsInt(f.m.MustBox(int32(5))); err != nil || v != 5 {
		t.Fatalf("AsInt integer = %d, %v", v, err)
	}
	if v, err := f.lib.AsInt(m2.MustBox(int64(6))); err != nil || v != 6 {
		t.Fatalf("AsInt long = %d, %v", v, err)
	}

	shared := f.router.Shared()
	if shared.Len() != 1 {
		t.Fatalf("shared entries = %d, want one handler for every boxed category", shared.Len())
	}
	if n := shared.PolymorphicLen(dispatch.AsInt); n != 2 {
		t.Fatalf("polymorphic entries = %d", n)
	}

	if err := f.router.Detach(m2); err != nil {
		t.Fatal(err)
	}
	_, err := f.lib.AsInt(m2.MustBox(int64(6)))
	wantKind(t, err, errors.KindClosed)
	if _, err := f.lib.AsInt(f.m.MustBox(int32(5))); err != nil {
		t.Fatalf("surviving context: %v", err)
	}
}

func TestBoundMethodAfterDetach(t *testing.T) {
	f := setup(t)
	p := newPoint(t, f, definePoint(t, f.m), 2)
	v, err := f.lib.ReadMember(p, "scale")
	if err != nil {
		t.Fatal(err)
	}
	if err := f.router.Detach(f.m); err != nil {
		t.Fatal(err)
	}
	_, err = f.lib.Execute(v, int32(1))
	wantKind(t, err, errors.KindClosed)
}

func TestHostValues(t *testing.T) {
	f := setup(t)
	l := f.lib
	type opaque struct{ n int }
	v := opaque{1}

	if l.HasMembers(v) || l.HasArrayElements(v) || l.IsNull(v) {
		t.Fatal("opaque host values answer the defaults")
	}
	if !l.IsIdentical(v, opaque{1}) {
		t.Fatal("comparable host values compare by value")
	}
	if l.IsIdentical([]int{1}, []int{1}) {
		t.Fatal("uncomparable host values are never identical")
	}
	if s := l.ToDisplayString(v); s != "{1}" {
		t.Fatalf("display = %q", s)
	}
	_, err := l.GetArraySize(v)
	wantKind(t, err, errors.KindUnsupported)
	_, err = l.Send(v, dispatch.MessageCount)
	wantKind(t, err, errors.KindInvalidInput)
}

func TestConcurrentContexts(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatal(err)
	}
	r, err := dispatch.NewRouter(c, dispatch.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	lib := NewLibrary(r, Options{})

	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			m := vm.New(vm.Options{Classify: Classify})
			if _, err := r.Attach(m); err != nil {
				return err
			}
			list := m.NewArrayList()
			for j := int32(0); j < 50; j++ {
				if err := lib.WriteArrayElement(list, int64(j), j); err != nil {
					return err
				}
			}
			n, err := lib.GetArraySize(list)
			if err != nil {
				return err
			}
			if n != 50 {
				return fmt.Errorf("size %d", n)
			}
			return r.Detach(m)
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if st := r.Stats(); st.Instances != 0 {
		t.Fatalf("instances left attached: %d", st.Instances)
	}
}
