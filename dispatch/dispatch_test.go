package dispatch

import (
	"fmt"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
	"github.com/wippyai/hostinterop/vm"
)

const (
	idObject managed.DispatchID = iota + 1
	idBare
	idCounter
	idArray
	idIterator
	idDict
	idMoment
)

func classify(t managed.Type) managed.DispatchID {
	if t.Kind() == managed.KindArray {
		return idArray
	}
	switch t.Name() {
	case "demo.Bare":
		return idBare
	case "demo.Counter":
		return idCounter
	case "java.util.Iterators$Itr":
		return idIterator
	case "demo.Dict":
		return idDict
	case "demo.Moment":
		return idMoment
	}
	return idObject
}

func always(v any) Handler {
	return func(managed.Object, []any) (any, error) { return v, nil }
}

func counterN(recv managed.Object) int32 {
	rt := recv.Type().Runtime()
	return rt.LookupField(recv.Type(), "n", false).Get(recv).(int32)
}

func machineOf(recv managed.Object) *vm.Machine {
	return recv.Type().Runtime().(*vm.Machine)
}

func newCatalog() *Catalog {
	c := NewCatalog()

	obj := c.MustDefine(idObject, "object", nil)
	obj.Handle(IsNull, func(recv managed.Object, _ []any) (any, error) {
		return recv.Type().Runtime().IsNull(recv), nil
	})
	obj.Local(IdentityHashCode, func(env Env) Handler {
		return func(recv managed.Object, _ []any) (any, error) {
			return env.Instance.IdentityHash(recv)
		}
	})
	obj.Handle(IsIdenticalOrUndefined, func(recv managed.Object, args []any) (any, error) {
		o, ok := args[0].(managed.Object)
		if !ok {
			return TriFalse, nil
		}
		return TriOf(recv == o), nil
	})

	c.MustDefine(idBare, "bare", nil)

	counter := c.MustDefine(idCounter, "counter", obj)
	counter.Handle(HasArrayElements, always(true))
	counter.Handle(GetArraySize, func(recv managed.Object, _ []any) (any, error) {
		return int64(counterN(recv)), nil
	})
	counter.Handle(ReadArrayElement, func(recv managed.Object, args []any) (any, error) {
		i := args[0].(int64)
		if i < 0 || i >= int64(counterN(recv)) {
			return nil, errors.InvalidIndex(errors.PhaseAdapter, i)
		}
		return i * 10, nil
	})
	counter.Local(ReadMember, func(env Env) Handler {
		id := env.Instance.ID()
		return func(managed.Object, []any) (any, error) { return id, nil }
	})

	arr := c.MustDefine(idArray, "array", obj)
	arr.Handle(HasArrayElements, always(true))
	arr.Handle(ReadArrayElement, func(recv managed.Object, args []any) (any, error) {
		rt := recv.Type().Runtime()
		i := args[0].(int64)
		if i < 0 || i >= int64(rt.ArrayLength(recv)) {
			return nil, errors.InvalidIndex(errors.PhaseAdapter, i)
		}
		return rt.ArrayGet(recv, int(i)), nil
	})

	it := c.MustDefine(idIterator, "iterator", obj)
	it.Handle(IsIterator, always(true))
	it.Handle(HasIteratorNextElement, func(recv managed.Object, _ []any) (any, error) {
		return adapter.NewIterator(recv.Type().Runtime(), recv).HasNext()
	})
	it.Handle(GetIteratorNextElement, func(recv managed.Object, _ []any) (any, error) {
		return adapter.NewIterator(recv.Type().Runtime(), recv).Next()
	})

	dict := c.MustDefine(idDict, "dict", obj)
	dict.Handle(HasHashEntries, always(true))
	dict.Handle(IsHashEntryReadable, func(_ managed.Object, args []any) (any, error) {
		return args[0] == "a", nil
	})
	dict.Handle(IsHashEntryInsertable, func(_ managed.Object, args []any) (any, error) {
		return args[0] != "a", nil
	})
	dict.Handle(ReadHashValue, func(_ managed.Object, args []any) (any, error) {
		if args[0] == "a" {
			return int32(1), nil
		}
		return nil, errors.UnknownKey(errors.PhaseAdapter, args[0])
	})
	dict.Handle(GetHashEntriesIterator, func(recv managed.Object, _ []any) (any, error) {
		m := machineOf(recv)
		entries := []managed.Value{
			m.ArrayOf(m.ObjectClass(), m.Str("a"), m.MustBox(int32(1))),
			m.ArrayOf(m.ObjectClass(), m.Str("b"), m.MustBox(int32(2))),
		}
		pos := 0
		return m.NewIterator(func() (managed.Value, bool) {
			if pos >= len(entries) {
				return nil, false
			}
			pos++
			return entries[pos-1], true
		}), nil
	})

	moment := c.MustDefine(idMoment, "moment", obj)
	moment.Handle(IsDate, always(true))
	moment.Handle(IsTime, always(true))
	moment.Handle(IsTimeZone, always(true))
	moment.Handle(AsDate, always(convert.LocalDate{Year: 2024, Month: time.March, Day: 10}))
	moment.Handle(AsTime, always(convert.LocalTime{Hour: 12, Minute: 30}))
	moment.Handle(AsTimeZone, always(time.UTC))

	c.Seal()
	return c
}

var noArgCtor = []vm.MethodSpec{
	{Name: "<init>", Fn: func(*vm.Machine, *vm.Object, []managed.Value) (managed.Value, error) { return nil, nil }},
}

type fixture struct {
	m    *vm.Machine
	in   *Instance
	bare managed.Object
	dict managed.Object
}

func newRouter(t testing.TB, opts Options) *Router {
	t.Helper()
	r, err := NewRouter(newCatalog(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func attach(t testing.TB, r *Router) *fixture {
	t.Helper()
	m := vm.New(vm.Options{Classify: classify})
	in, err := r.Attach(m)
	if err != nil {
		t.Fatal(err)
	}
	bare := m.MustDefine(vm.ClassSpec{Name: "demo.Bare", Methods: noArgCtor})
	m.MustDefine(vm.ClassSpec{
		Name:   "demo.Counter",
		Fields: []vm.FieldSpec{{Name: "n", Type: m.Prim(managed.PrimInt)}},
		Methods: []vm.MethodSpec{
			{Name: "<init>", Params: []*vm.Class{m.Prim(managed.PrimInt)}, Fn: func(m *vm.Machine, self *vm.Object, args []managed.Value) (managed.Value, error) {
				m.LookupField(self.Class(), "n", false).Set(self, args[0])
				return nil, nil
			}},
		},
	})
	dict := m.MustDefine(vm.ClassSpec{Name: "demo.Dict", Methods: noArgCtor})
	f := &fixture{m: m, in: in}
	f.bare = f.instantiate(t, bare)
	f.dict = f.instantiate(t, dict)
	return f
}

func (f *fixture) instantiate(t testing.TB, c *vm.Class, args ...any) managed.Object {
	t.Helper()
	v, err := f.in.Invoker().Instantiate(c, args)
	if err != nil {
		t.Fatal(err)
	}
	return v.(managed.Object)
}

func (f *fixture) counter(t testing.TB, n int32) managed.Object {
	t.Helper()
	c, _ := f.m.Class("demo.Counter")
	return f.instantiate(t, c, n)
}

func (f *fixture) moment(t testing.TB) managed.Object {
	t.Helper()
	c, ok := f.m.Class("demo.Moment")
	if !ok {
		c = f.m.MustDefine(vm.ClassSpec{Name: "demo.Moment", Methods: noArgCtor})
	}
	return f.instantiate(t, c)
}

func TestMessageCatalogue(t *testing.T) {
	if MessageCount != 130 {
		t.Fatalf("MessageCount = %d", MessageCount)
	}
	for _, msg := range Messages() {
		got, ok := ParseMessage(msg.String())
		if !ok || got != msg {
			t.Errorf("ParseMessage(%q) = %v, %v", msg, got, ok)
		}
	}
	if m, ok := ParseMessage("fitsinint"); !ok || m != FitsInInt {
		t.Errorf("case-insensitive parse = %v, %v", m, ok)
	}
	if _, ok := ParseMessage("Frobnicate"); ok {
		t.Error("unknown message parsed")
	}

	tests := []struct {
		msg      Message
		query    bool
		fallback Fallback
	}{
		{HasMembers, true, FallbackFalse},
		{FitsInLong, true, FallbackFalse},
		{IsIdenticalOrUndefined, true, FallbackUndefined},
		{IsIdentical, true, FallbackDerived},
		{IsHashEntryWritable, true, FallbackDerived},
		{HasIterator, true, FallbackDerived},
		{AsInt, false, FallbackUnsupported},
		{InvokeMember, false, FallbackUnsupported},
		{GetHashKeysIterator, false, FallbackDerived},
		{ToDisplayString, false, FallbackDerived},
		{AsTruffleString, false, FallbackDerived},
	}
	for _, tt := range tests {
		t.Run(tt.msg.String(), func(t *testing.T) {
			if tt.msg.IsQuery() != tt.query {
				t.Errorf("IsQuery = %v", !tt.query)
			}
			if got := FallbackOf(tt.msg); got != tt.fallback {
				t.Errorf("FallbackOf = %s, want %s", got, tt.fallback)
			}
		})
	}
}

func TestArity(t *testing.T) {
	tests := []struct {
		msg  Message
		want int
	}{
		{HasMembers, 0},
		{ToDisplayString, 0},
		{ReadArrayElement, 1},
		{IsIdentical, 1},
		{ReadBufferByte, 1},
		{WriteHashEntry, 2},
		{ReadBufferDouble, 2},
		{WriteBufferLong, 3},
		{ReadBuffer, 4},
	}
	for _, tt := range tests {
		if got := tt.msg.Arity(); got != tt.want {
			t.Errorf("%s.Arity() = %d, want %d", tt.msg, got, tt.want)
		}
	}

	if err := CheckArgs(WriteMember, []any{"x"}); !errors.IsKind(err, errors.KindArity) {
		t.Errorf("short WriteMember err = %v", err)
	}
	if err := CheckArgs(WriteMember, []any{"x", int32(1)}); err != nil {
		t.Errorf("full WriteMember err = %v", err)
	}

	r := newRouter(t, DefaultOptions())
	f := attach(t, r)
	for _, msg := range []Message{ReadArrayElement, IsIdentical, ReadMember, WriteBufferInt} {
		if _, err := r.Route(f.bare, msg); !errors.IsKind(err, errors.KindArity) {
			t.Errorf("Route(%s) without arguments err = %v", msg, err)
		}
	}
}

func TestUnsupportedDetail(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	f := attach(t, r)

	err := unsupported(f.bare, AsInt, "100% opaque")
	e, ok := err.(*errors.Error)
	if !ok || e.Detail != "100% opaque" || e.Kind != errors.KindUnsupported {
		t.Fatalf("err = %#v", err)
	}
	_, err = r.Route(f.bare, GetIterator)
	if e, ok := err.(*errors.Error); !ok || e.Detail != "receiver is not iterable" {
		t.Fatalf("GetIterator err = %#v", err)
	}
}

func TestCatalogResolution(t *testing.T) {
	c := newCatalog()

	if !c.IsShareable(idCounter, IsNull) || c.Source(idCounter, IsNull) != idObject {
		t.Error("inherited shared handler must resolve to the declaring table")
	}
	if c.IsShareable(idCounter, ReadMember) || !c.Implements(idCounter, ReadMember) {
		t.Error("local handler reported shareable")
	}
	if c.IsShareable(idBare, IsNull) || c.Implements(idBare, IsNull) {
		t.Error("bare table has no parent and no handlers")
	}
	if c.IsShareable(999, IsNull) || c.Factory(999, IsNull) != nil {
		t.Error("unknown id resolved")
	}
	if c.Name(idDict) != "dict" || c.Name(999) != "dispatch(999)" {
		t.Errorf("names = %q, %q", c.Name(idDict), c.Name(999))
	}

	if _, err := c.Define(50, "late", nil); !errors.IsKind(err, errors.KindRegistration) {
		t.Errorf("define after seal err = %v", err)
	}
	tbl, _ := c.Table(idBare)
	func() {
		defer func() {
			err, _ := recover().(error)
			if !errors.IsKind(err, errors.KindRegistration) {
				t.Errorf("install after seal panic = %v", err)
			}
		}()
		tbl.Handle(HasMembers, always(true))
	}()

	fresh := NewCatalog()
	fresh.MustDefine(1, "one", nil)
	if _, err := fresh.Define(1, "again", nil); !errors.IsKind(err, errors.KindRegistration) {
		t.Errorf("duplicate id err = %v", err)
	}
	if _, err := NewRouter(fresh, DefaultOptions()); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("router over unsealed catalog err = %v", err)
	}
}

func TestSharedAndLocalRouting(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	a, b := attach(t, r), attach(t, r)
	ca, cb := a.counter(t, 3), b.counter(t, 5)

	for _, tc := range []struct {
		obj  managed.Object
		want int64
	}{{ca, 3}, {cb, 5}} {
		got, err := r.Route(tc.obj, GetArraySize)
		if err != nil || got != tc.want {
			t.Errorf("GetArraySize = %v, %v, want %d", got, err, tc.want)
		}
	}

	ida, _ := r.Route(ca, ReadMember, "x")
	idb, _ := r.Route(cb, ReadMember, "x")
	if ida != a.m.ID() || idb != b.m.ID() {
		t.Errorf("local handlers leaked state: %v %v", ida, idb)
	}

	for _, obj := range []managed.Object{ca, cb, a.dict, b.dict} {
		if v, err := r.Route(obj, IsNull); err != nil || v != false {
			t.Fatalf("IsNull = %v, %v", v, err)
		}
	}
	if v, _ := r.Route(a.m.Null(), IsNull); v != true {
		t.Error("IsNull(null) = false")
	}

	// every IsNull route shares the handler declared by the object table
	if got := r.Shared().Len(); got != 2 {
		t.Errorf("shared entries = %d, want 2 (GetArraySize, IsNull)", got)
	}
	if got := r.Shared().PolymorphicLen(IsNull); got != 3 {
		t.Errorf("IsNull polymorphic entries = %d, want 3", got)
	}
	st := r.Stats()
	if st.PICHits == 0 || st.Instances != 2 || st.LocalMisses != 2 {
		t.Errorf("stats = %+v", st)
	}
}

func TestDefaults(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	f := attach(t, r)

	t.Run("static", func(t *testing.T) {
		tests := []struct {
			msg  Message
			args []any
			want any
			kind errors.Kind
		}{
			{HasMembers, nil, false, ""},
			{FitsInInt, nil, false, ""},
			{IsIdenticalOrUndefined, []any{f.bare}, TriUndefined, ""},
			{IsIdentical, []any{f.bare}, false, ""},
			{HasIterator, nil, false, ""},
			{ToNative, nil, nil, ""},
			{ToDisplayString, []any{false}, "demo.Bare", ""},
			{AsInt, nil, nil, errors.KindUnsupported},
			{AsTruffleString, nil, nil, errors.KindUnsupported},
			{GetIterator, nil, nil, errors.KindUnsupported},
			{IsBufferWritable, nil, nil, errors.KindUnsupported},
			{AsInstant, nil, nil, errors.KindUnsupported},
			{WriteMember, []any{"x", int32(1)}, nil, errors.KindUnsupported},
		}
		for _, tt := range tests {
			t.Run(tt.msg.String(), func(t *testing.T) {
				got, err := r.Route(f.bare, tt.msg, tt.args...)
				if tt.kind != "" {
					if !errors.IsKind(err, tt.kind) {
						t.Fatalf("err = %v, want %s", err, tt.kind)
					}
					return
				}
				if err != nil || got != tt.want {
					t.Errorf("got %v, %v, want %v", got, err, tt.want)
				}
			})
		}
	})

	t.Run("iterator over array elements", func(t *testing.T) {
		c := f.counter(t, 3)
		if !r.Query(c, HasIterator) {
			t.Fatal("HasIterator must follow HasArrayElements")
		}
		v, err := r.Route(c, GetIterator)
		if err != nil {
			t.Fatal(err)
		}
		seq := v.(adapter.Sequence)
		var got []any
		for {
			ok, err := seq.HasNext()
			if err != nil || !ok {
				break
			}
			x, err := seq.Next()
			if err != nil {
				t.Fatal(err)
			}
			got = append(got, x)
		}
		if fmt.Sprint(got) != "[0 10 20]" {
			t.Errorf("elements = %v", got)
		}
		if _, err := seq.Next(); !errors.IsStopIteration(err) {
			t.Errorf("past the end err = %v", err)
		}
	})

	t.Run("identity", func(t *testing.T) {
		c, other := f.counter(t, 1), f.counter(t, 1)
		if !r.Query(c, IsIdentical, c) || r.Query(c, IsIdentical, other) {
			t.Error("IsIdentical must follow IsIdenticalOrUndefined")
		}
		h, _ := f.in.IdentityHash(c)
		want := fmt.Sprintf("demo.Counter@%x", uint32(h))
		if s, _ := r.Route(c, ToDisplayString, false); s != want {
			t.Errorf("display = %v, want %s", s, want)
		}
	})

	t.Run("hash", func(t *testing.T) {
		if v, _ := r.Route(f.dict, ReadHashValueOrDefault, "a", int32(9)); v != int32(1) {
			t.Errorf("present key = %v", v)
		}
		if v, _ := r.Route(f.dict, ReadHashValueOrDefault, "z", int32(9)); v != int32(9) {
			t.Errorf("missing key = %v", v)
		}
		if !r.Query(f.dict, IsHashEntryWritable, "z") || !r.Query(f.dict, IsHashEntryExisting, "a") {
			t.Error("writable/existing derive from insertable/readable")
		}
		if r.Query(f.dict, IsHashEntryExisting, "z") {
			t.Error("missing key exists")
		}

		for _, tc := range []struct {
			msg  Message
			want string
		}{{GetHashKeysIterator, "[a b]"}, {GetHashValuesIterator, "[1 2]"}} {
			v, err := r.Route(f.dict, tc.msg)
			if err != nil {
				t.Fatal(err)
			}
			seq := v.(adapter.Sequence)
			var got []string
			for ok, _ := seq.HasNext(); ok; ok, _ = seq.HasNext() {
				x, err := seq.Next()
				if err != nil {
					t.Fatal(err)
				}
				s, err := f.m.ToString(x.(managed.Object))
				if err != nil {
					t.Fatal(err)
				}
				got = append(got, s)
			}
			if fmt.Sprint(got) != tc.want {
				t.Errorf("%s = %v, want %s", tc.msg, got, tc.want)
			}
		}
	})

	t.Run("instant", func(t *testing.T) {
		v, err := r.Route(f.moment(t), AsInstant)
		if err != nil {
			t.Fatal(err)
		}
		want := time.Date(2024, time.March, 10, 12, 30, 0, 0, time.UTC)
		if !v.(time.Time).Equal(want) {
			t.Errorf("instant = %v", v)
		}
	})

	if r.Stats().Defaults == 0 {
		t.Error("defaults not counted")
	}
}

func TestInstanceOverrides(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	a, b := attach(t, r), attach(t, r)

	err := a.in.Register(idCounter, IsNull, always(true))
	if !errors.IsKind(err, errors.KindRegistration) {
		t.Errorf("override of a shared pair err = %v", err)
	}

	if err := a.in.Register(idBare, HasMembers, always(true)); err != nil {
		t.Fatal(err)
	}
	if !r.Query(a.bare, HasMembers) {
		t.Error("override not used")
	}
	if r.Query(b.bare, HasMembers) {
		t.Error("override leaked into another instance")
	}

	ca := a.counter(t, 1)
	r.Route(ca, ReadMember, "x")
	if err := a.in.Register(idCounter, ReadMember, always("mine")); err != nil {
		t.Fatal(err)
	}
	if v, _ := r.Route(ca, ReadMember, "x"); v != "mine" {
		t.Errorf("override after resolution = %v", v)
	}
}

func TestDetach(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	a, b := attach(t, r), attach(t, r)
	ca := a.counter(t, 2)

	if _, err := r.Attach(a.m); !errors.IsKind(err, errors.KindRegistration) {
		t.Errorf("double attach err = %v", err)
	}
	if err := r.Detach(a.m); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []Message{IsNull, ReadMember, HasMembers} {
		if _, err := r.Route(ca, msg); !errors.IsKind(err, errors.KindClosed) {
			t.Errorf("%s on detached instance err = %v", msg, err)
		}
	}
	if r.Query(ca, IsNull) {
		t.Error("query on detached instance must answer false")
	}
	if err := r.Detach(a.m); !errors.IsKind(err, errors.KindNotFound) {
		t.Errorf("second detach err = %v", err)
	}
	if _, err := a.in.IdentityHash(ca); !errors.IsKind(err, errors.KindClosed) {
		t.Errorf("identity after detach err = %v", err)
	}

	if v, err := r.Route(b.counter(t, 4), GetArraySize); err != nil || v != int64(4) {
		t.Errorf("other instance = %v, %v", v, err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if st := r.Stats(); st.Instances != 0 {
		t.Errorf("instances after close = %d", st.Instances)
	}
}

func TestPolymorphicCacheOverflow(t *testing.T) {
	r := newRouter(t, Options{SharedCacheLimit: 1})
	f := attach(t, r)
	c := f.counter(t, 1)

	for i := 0; i < 3; i++ {
		for _, obj := range []managed.Object{c, f.dict} {
			if v, err := r.Route(obj, IsNull); err != nil || v != false {
				t.Fatalf("IsNull = %v, %v", v, err)
			}
		}
	}
	st := r.Stats()
	if r.Shared().PolymorphicLen(IsNull) != 1 {
		t.Errorf("polymorphic entries = %d", r.Shared().PolymorphicLen(IsNull))
	}
	if st.PICHits != 2 || st.PICOverflows != 3 || st.GenericCalls != 3 {
		t.Errorf("stats = %+v", st)
	}
	if st.SharedEntries != 1 {
		t.Errorf("shared entries = %d", st.SharedEntries)
	}
}

func TestDisableSharing(t *testing.T) {
	r := newRouter(t, Options{DisableSharing: true})
	a, b := attach(t, r), attach(t, r)
	for _, f := range []*fixture{a, b} {
		if v, err := r.Route(f.counter(t, 2), GetArraySize); err != nil || v != int64(2) {
			t.Fatalf("GetArraySize = %v, %v", v, err)
		}
	}
	st := r.Stats()
	if st.SharedEntries != 0 || st.LocalMisses != 2 {
		t.Errorf("stats = %+v", st)
	}
	if a.in.LocalLen() != 1 || b.in.LocalLen() != 1 {
		t.Error("each instance builds its own handler")
	}
}

func TestConcurrentInstances(t *testing.T) {
	r := newRouter(t, DefaultOptions())
	const instances = 4

	var g errgroup.Group
	for i := 0; i < instances; i++ {
		f := attach(t, r)
		c := f.counter(t, int32(i+1))
		want := int64(i + 1)
		g.Go(func() error {
			for j := 0; j < 200; j++ {
				n, err := r.Route(c, GetArraySize)
				if err != nil {
					return err
				}
				if n != want {
					return fmt.Errorf("instance %s saw size %v, want %d", f.m.ID(), n, want)
				}
				id, err := r.Route(c, ReadMember, "x")
				if err != nil {
					return err
				}
				if id != f.m.ID() {
					return fmt.Errorf("instance %s saw local state of %v", f.m.ID(), id)
				}
				if _, err := r.Route(c, IdentityHashCode); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if got := r.Shared().Len(); got != 1 {
		t.Errorf("shared entries = %d, want 1", got)
	}
	if st := r.Stats(); st.Instances != instances {
		t.Errorf("stats = %+v", st)
	}
}

func BenchmarkRouteShared(b *testing.B) {
	r := newRouter(b, DefaultOptions())
	f := attach(b, r)
	c := f.counter(b, 8)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Route(c, GetArraySize); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkRouteLocal(b *testing.B) {
	r := newRouter(b, DefaultOptions())
	f := attach(b, r)
	c := f.counter(b, 8)
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Route(c, ReadMember, "x"); err != nil {
			b.Fatal(err)
		}
	}
}
