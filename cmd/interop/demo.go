package main

import (
	"fmt"
	"math/big"
	"slices"
	"strings"

	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
	"github.com/wippyai/hostinterop/vm"
)

// step sends one message to a named target
type step struct {
	target string
	msg    dispatch.Message
	args   []any
}

type demo struct {
	name  string
	about string
	steps []step
}

var demos = []demo{
	{"list", "array messages on an ArrayList", []step{
		{"list", dispatch.HasArrayElements, nil},
		{"list", dispatch.GetArraySize, nil},
		{"list", dispatch.ReadArrayElement, []any{int64(0)}},
		{"list", dispatch.IsArrayElementInsertable, []any{int64(3)}},
		{"list", dispatch.WriteArrayElement, []any{int64(3), "delta"}},
		{"list", dispatch.GetArraySize, nil},
		{"list", dispatch.ReadArrayElement, []any{int64(9)}},
		{"frozen", dispatch.WriteArrayElement, []any{int64(0), "x"}},
	}},
	{"map", "hash messages on a HashMap", []step{
		{"map", dispatch.HasHashEntries, nil},
		{"map", dispatch.GetHashSize, nil},
		{"map", dispatch.ReadHashValue, []any{"one"}},
		{"map", dispatch.WriteHashEntry, []any{"three", int32(3)}},
		{"map", dispatch.IsHashEntryExisting, []any{"three"}},
		{"map", dispatch.ReadHashValue, []any{"four"}},
		{"map", dispatch.ReadHashValueOrDefault, []any{"four", int32(0)}},
	}},
	{"buffer", "byte order aware buffer access", []step{
		{"buffer", dispatch.GetBufferSize, nil},
		{"buffer", dispatch.WriteBufferInt, []any{adapter.LittleEndian, int64(0), int32(0x01020304)}},
		{"buffer", dispatch.ReadBufferByte, []any{int64(0)}},
		{"buffer", dispatch.ReadBufferInt, []any{adapter.BigEndian, int64(0)}},
		{"buffer", dispatch.ReadBufferLong, []any{adapter.LittleEndian, int64(12)}},
	}},
	{"numbers", "lossless numeric coercion", []step{
		{"int", dispatch.FitsInByte, nil},
		{"int", dispatch.FitsInShort, nil},
		{"int", dispatch.AsLong, nil},
		{"double", dispatch.FitsInInt, nil},
		{"double", dispatch.AsInt, nil},
		{"bigint", dispatch.FitsInLong, nil},
		{"bigint", dispatch.AsBigInteger, nil},
		{"int", dispatch.AsBoolean, nil},
	}},
	{"overloads", "member access and overload resolution", []step{
		{"calc", dispatch.GetMembers, nil},
		{"calc", dispatch.InvokeMember, []any{"f", int32(1)}},
		{"calc", dispatch.InvokeMember, []any{"f", "text"}},
		{"calc", dispatch.InvokeMember, []any{"f", true}},
		{"calc", dispatch.InvokeMember, []any{"add", int8(5)}},
		{"calc", dispatch.ReadMember, []any{"base"}},
		{"calc-class", dispatch.InvokeMember, []any{"twice", int32(21)}},
		{"calc-class", dispatch.GetMetaSimpleName, nil},
	}},
}

func findDemo(name string) ([]demo, error) {
	if name == "all" {
		return demos, nil
	}
	for _, d := range demos {
		if d.name == name {
			return []demo{d}, nil
		}
	}
	names := make([]string, 0, len(demos))
	for _, d := range demos {
		names = append(names, d.name)
	}
	return nil, fmt.Errorf("unknown demo %q (have %s, all)", name, strings.Join(names, ", "))
}

// buildTargets populates a machine with the demo objects
func buildTargets(m *vm.Machine) (map[string]any, error) {
	calc, err := defineCalc(m)
	if err != nil {
		return nil, err
	}
	obj, err := newCalc(m, calc, 10)
	if err != nil {
		return nil, err
	}

	hm := m.NewHashMap()
	m.MapPut(hm, m.Str("one"), m.MustBox(int32(1)))
	m.MapPut(hm, m.Str("two"), m.MustBox(int32(2)))

	return map[string]any{
		"list":       m.NewArrayList(m.Str("alpha"), m.Str("beta"), m.Str("gamma")),
		"frozen":     m.NewUnmodifiableList(m.Str("fixed")),
		"map":        hm,
		"buffer":     m.NewByteBuffer(16),
		"int":        m.MustBox(int32(300)),
		"double":     m.MustBox(float64(2)),
		"bigint":     m.NewBigInteger(new(big.Int).Lsh(big.NewInt(1), 70)),
		"calc":       obj,
		"calc-class": m.Mirror(calc),
		"null":       m.Null(),
	}, nil
}

func targetNames(targets map[string]any) []string {
	names := make([]string, 0, len(targets))
	for n := range targets {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func defineCalc(m *vm.Machine) (*vm.Class, error) {
	i32 := m.Prim(managed.PrimInt)
	str := m.KnownClass(managed.TypeString)
	base := func(m *vm.Machine, self *vm.Object) int32 {
		return m.LookupField(self.Class(), "base", false).Get(self).(int32)
	}
	return m.DefineClass(vm.ClassSpec{
		Name:   "demo.Calc",
		Fields: []vm.FieldSpec{{Name: "base", Type: i32}},
		Methods: []vm.MethodSpec{
			{Name: "<init>", Params: []*vm.Class{i32}, Fn: func(m *vm.Machine, self *vm.Object, args []managed.Value) (managed.Value, error) {
				m.LookupField(self.Class(), "base", false).Set(self, args[0])
				return nil, nil
			}},
			{Name: "f", Params: []*vm.Class{i32}, Return: str, Fn: func(m *vm.Machine, _ *vm.Object, args []managed.Value) (managed.Value, error) {
				return m.Str(fmt.Sprintf("f(int %d)", args[0])), nil
			}},
			{Name: "f", Params: []*vm.Class{str}, Return: str, Fn: func(m *vm.Machine, _ *vm.Object, args []managed.Value) (managed.Value, error) {
				s, _ := m.HostString(args[0].(managed.Object))
				return m.Str("f(String " + s + ")"), nil
			}},
			{Name: "add", Params: []*vm.Class{i32}, Return: i32, Fn: func(m *vm.Machine, self *vm.Object, args []managed.Value) (managed.Value, error) {
				return base(m, self) + args[0].(int32), nil
			}},
			{Name: "twice", Static: true, Params: []*vm.Class{i32}, Return: i32, Fn: func(_ *vm.Machine, _ *vm.Object, args []managed.Value) (managed.Value, error) {
				return args[0].(int32) * 2, nil
			}},
		},
	})
}

func newCalc(m *vm.Machine, c *vm.Class, base int32) (managed.Object, error) {
	ctors := m.LookupMethods(c, "<init>", 1, false)
	if len(ctors) == 0 {
		return nil, fmt.Errorf("%s has no constructor", c.Name())
	}
	obj, err := m.Invoke(ctors[0], nil, []managed.Value{base})
	if err != nil {
		return nil, err
	}
	return obj.(managed.Object), nil
}
