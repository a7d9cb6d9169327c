package vm

import (
	"math/big"
	"strings"

	"github.com/wippyai/hostinterop/managed"
)

type listState struct {
	items []managed.Value
}

// mapState is an insertion-ordered hash map keyed by managed equality
type mapState struct {
	keys     []managed.Value
	vals     []managed.Value
	index    map[any]int
	readOnly bool
}

type entryState struct {
	owner *mapState
	key   managed.Value
}

type boxKey struct {
	class *Class
	value managed.Value
}

type stringKey string
type bigKey string

// hashKey maps a managed value onto a Go map key with managed equals semantics
// for strings, boxes and big integers and identity for everything else.
func (m *Machine) hashKey(v managed.Value) any {
	obj, ok := v.(*Object)
	if !ok {
		return v
	}
	if s, ok := m.HostString(obj); ok {
		return stringKey(s)
	}
	if n, ok := obj.native.(*big.Int); ok {
		return bigKey(n.String())
	}
	if obj.class.super == m.known[managed.TypeNumber] || obj.class == m.known[managed.TypeBoolean] || obj.class == m.known[managed.TypeCharacter] {
		return boxKey{class: obj.class, value: obj.fields[0]}
	}
	return obj
}

func (s *mapState) find(m *Machine, key managed.Value) (int, bool) {
	i, ok := s.index[m.hashKey(key)]
	return i, ok
}

func (s *mapState) put(m *Machine, key, val managed.Value) managed.Value {
	if i, ok := s.find(m, key); ok {
		old := s.vals[i]
		s.vals[i] = val
		return old
	}
	s.index[m.hashKey(key)] = len(s.keys)
	s.keys = append(s.keys, key)
	s.vals = append(s.vals, val)
	return m.null
}

func (s *mapState) remove(m *Machine, key managed.Value) managed.Value {
	i, ok := s.find(m, key)
	if !ok {
		return m.null
	}
	old := s.vals[i]
	delete(s.index, m.hashKey(key))
	s.keys = append(s.keys[:i], s.keys[i+1:]...)
	s.vals = append(s.vals[:i], s.vals[i+1:]...)
	for j := i; j < len(s.keys); j++ {
		s.index[m.hashKey(s.keys[j])] = j
	}
	return old
}

func (m *Machine) bootstrapCollections() {
	obj := m.objectClass
	str := m.known[managed.TypeString]
	boolean := m.prims[managed.PrimBoolean]
	i32 := m.prims[managed.PrimInt]

	iterable := m.register(ClassSpec{Name: "java.lang.Iterable", Interface: true})
	m.known[managed.TypeIterable] = iterable
	iterator := m.register(ClassSpec{Name: "java.util.Iterator", Interface: true})
	m.known[managed.TypeIterator] = iterator
	collection := m.register(ClassSpec{Name: "java.util.Collection", Interface: true, Interfaces: []*Class{iterable}})
	list := m.register(ClassSpec{Name: "java.util.List", Interface: true, Interfaces: []*Class{collection}})
	m.known[managed.TypeList] = list
	set := m.register(ClassSpec{Name: "java.util.Set", Interface: true, Interfaces: []*Class{collection}})
	mapIface := m.register(ClassSpec{Name: "java.util.Map", Interface: true})
	m.known[managed.TypeMap] = mapIface
	entry := m.register(ClassSpec{Name: "java.util.Map$Entry", Interface: true})
	m.known[managed.TypeMapEntry] = entry

	nsee := func(m *Machine) error { return m.Throw(managed.TypeNoSuchElement, "") }
	iterClass := m.register(ClassSpec{Name: "java.util.Iterators$Itr", Final: true, Interfaces: []*Class{iterator}})
	peeked := func(self *Object) *peekIter { return self.native.(*peekIter) }
	m.addMethods(iterClass,
		MethodSpec{Name: "hasNext", Return: boolean, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return peeked(self).hasNextPeek(), nil
		}},
		MethodSpec{Name: "next", Return: obj, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			v, ok := peeked(self).take()
			if !ok {
				return nil, nsee(m)
			}
			return v, nil
		}},
	)

	listItems := func(self *Object) *listState { return self.native.(*listState) }
	checkIndex := func(m *Machine, i int32, n int) error {
		if i < 0 || int(i) >= n {
			return m.Throwf(managed.TypeIndexOutOfBounds, "Index %d out of bounds for length %d", i, n)
		}
		return nil
	}
	readOnly := func(m *Machine, _ *Object, _ []managed.Value) (managed.Value, error) {
		return nil, m.Throw(managed.TypeUnsupportedOperation, "")
	}

	listReads := []MethodSpec{
		{Name: "size", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(len(listItems(self).items)), nil
		}},
		{Name: "isEmpty", Return: boolean, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return len(listItems(self).items) == 0, nil
		}},
		{Name: "get", Params: []*Class{i32}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := listItems(self)
			i := args[0].(int32)
			if err := checkIndex(m, i, len(st.items)); err != nil {
				return nil, err
			}
			return st.items[i], nil
		}},
		{Name: "iterator", Return: iterator, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := listItems(self)
			pos := 0
			return m.NewIterator(func() (managed.Value, bool) {
				if pos >= len(st.items) {
					return nil, false
				}
				v := st.items[pos]
				pos++
				return v, true
			}), nil
		}},
		{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			parts := make([]string, 0, len(listItems(self).items))
			for _, v := range listItems(self).items {
				s, err := m.stringOf(v)
				if err != nil {
					return nil, err
				}
				parts = append(parts, s)
			}
			return m.Str("[" + strings.Join(parts, ", ") + "]"), nil
		}},
	}

	arrayList := m.register(ClassSpec{Name: "java.util.ArrayList", Interfaces: []*Class{list}})
	m.addMethods(arrayList, listReads...)
	m.addMethods(arrayList,
		MethodSpec{Name: "<init>", Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			self.native = &listState{}
			return nil, nil
		}},
		MethodSpec{Name: "set", Params: []*Class{i32, obj}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := listItems(self)
			i := args[0].(int32)
			if err := checkIndex(m, i, len(st.items)); err != nil {
				return nil, err
			}
			old := st.items[i]
			st.items[i] = args[1]
			return old, nil
		}},
		MethodSpec{Name: "add", Params: []*Class{obj}, Return: boolean, Fn: func(_ *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := listItems(self)
			st.items = append(st.items, args[0])
			return true, nil
		}},
		MethodSpec{Name: "remove", Params: []*Class{i32}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := listItems(self)
			i := args[0].(int32)
			if err := checkIndex(m, i, len(st.items)); err != nil {
				return nil, err
			}
			old := st.items[i]
			st.items = append(st.items[:i], st.items[i+1:]...)
			return old, nil
		}},
		MethodSpec{Name: "clear", Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			listItems(self).items = nil
			return nil, nil
		}},
	)

	unmodifiable := m.register(ClassSpec{Name: "java.util.Collections$UnmodifiableList", Final: true, Interfaces: []*Class{list}})
	m.addMethods(unmodifiable, listReads...)
	m.addMethods(unmodifiable,
		MethodSpec{Name: "set", Params: []*Class{i32, obj}, Return: obj, Fn: readOnly},
		MethodSpec{Name: "add", Params: []*Class{obj}, Return: boolean, Fn: readOnly},
		MethodSpec{Name: "remove", Params: []*Class{i32}, Return: obj, Fn: readOnly},
	)

	m.bootstrapMaps(mapIface, entry, set, iterator)
}

// peekIter adapts a pull function into hasNext/next
type peekIter struct {
	src    func() (managed.Value, bool)
	head   managed.Value
	primed bool
	done   bool
}

func (p *peekIter) fill() {
	if p.primed || p.done {
		return
	}
	v, ok := p.src()
	if !ok {
		p.done = true
		return
	}
	p.head, p.primed = v, true
}

func (p *peekIter) hasNextPeek() bool {
	p.fill()
	return p.primed
}

func (p *peekIter) take() (managed.Value, bool) {
	p.fill()
	if !p.primed {
		return nil, false
	}
	v := p.head
	p.head, p.primed = nil, false
	return v, true
}

func (m *Machine) bootstrapMaps(mapIface, entry, set, iterator *Class) {
	obj := m.objectClass
	str := m.known[managed.TypeString]
	boolean := m.prims[managed.PrimBoolean]
	i32 := m.prims[managed.PrimInt]
	state := func(self *Object) *mapState { return self.native.(*mapState) }
	entryOf := func(self *Object) *entryState { return self.native.(*entryState) }

	node := m.register(ClassSpec{Name: "java.util.HashMap$Node", Final: true, Interfaces: []*Class{entry}})
	m.addMethods(node,
		MethodSpec{Name: "getKey", Return: obj, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return entryOf(self).key, nil
		}},
		MethodSpec{Name: "getValue", Return: obj, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			e := entryOf(self)
			if i, ok := e.owner.find(m, e.key); ok {
				return e.owner.vals[i], nil
			}
			return m.null, nil
		}},
		MethodSpec{Name: "setValue", Params: []*Class{obj}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			e := entryOf(self)
			if e.owner.readOnly {
				return nil, m.Throw(managed.TypeUnsupportedOperation, "")
			}
			return e.owner.put(m, e.key, args[0]), nil
		}},
		MethodSpec{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			e := entryOf(self)
			k, err := m.stringOf(e.key)
			if err != nil {
				return nil, err
			}
			var v managed.Value = m.null
			if i, ok := e.owner.find(m, e.key); ok {
				v = e.owner.vals[i]
			}
			vs, err := m.stringOf(v)
			if err != nil {
				return nil, err
			}
			return m.Str(k + "=" + vs), nil
		}},
	)

	entrySet := m.register(ClassSpec{Name: "java.util.HashMap$EntrySet", Final: true, Interfaces: []*Class{set}})
	m.addMethods(entrySet,
		MethodSpec{Name: "size", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(len(state(self).keys)), nil
		}},
		MethodSpec{Name: "iterator", Return: iterator, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			keys := append([]managed.Value(nil), st.keys...)
			pos := 0
			return m.NewIterator(func() (managed.Value, bool) {
				if pos >= len(keys) {
					return nil, false
				}
				k := keys[pos]
				pos++
				return &Object{class: node, native: &entryState{owner: st, key: k}}, true
			}), nil
		}},
	)

	reads := []MethodSpec{
		{Name: "size", Return: i32, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return int32(len(state(self).keys)), nil
		}},
		{Name: "isEmpty", Return: boolean, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return len(state(self).keys) == 0, nil
		}},
		{Name: "containsKey", Params: []*Class{obj}, Return: boolean, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			_, ok := state(self).find(m, args[0])
			return ok, nil
		}},
		{Name: "get", Params: []*Class{obj}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := state(self)
			if i, ok := st.find(m, args[0]); ok {
				return st.vals[i], nil
			}
			return m.null, nil
		}},
		{Name: "entrySet", Return: set, Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			return &Object{class: entrySet, native: state(self)}, nil
		}},
		{Name: "toString", Return: str, Fn: func(m *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
			st := state(self)
			parts := make([]string, 0, len(st.keys))
			for i, k := range st.keys {
				ks, err := m.stringOf(k)
				if err != nil {
					return nil, err
				}
				vs, err := m.stringOf(st.vals[i])
				if err != nil {
					return nil, err
				}
				parts = append(parts, ks+"="+vs)
			}
			return m.Str("{" + strings.Join(parts, ", ") + "}"), nil
		}},
	}
	writes := []MethodSpec{
		{Name: "put", Params: []*Class{obj, obj}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := state(self)
			if st.readOnly {
				return nil, m.Throw(managed.TypeUnsupportedOperation, "")
			}
			return st.put(m, args[0], args[1]), nil
		}},
		{Name: "remove", Params: []*Class{obj}, Return: obj, Fn: func(m *Machine, self *Object, args []managed.Value) (managed.Value, error) {
			st := state(self)
			if st.readOnly {
				return nil, m.Throw(managed.TypeUnsupportedOperation, "")
			}
			return st.remove(m, args[0]), nil
		}},
	}

	hashMap := m.register(ClassSpec{Name: "java.util.HashMap", Interfaces: []*Class{mapIface}})
	m.addMethods(hashMap, reads...)
	m.addMethods(hashMap, writes...)
	m.addMethods(hashMap, MethodSpec{Name: "<init>", Fn: func(_ *Machine, self *Object, _ []managed.Value) (managed.Value, error) {
		self.native = &mapState{index: make(map[any]int)}
		return nil, nil
	}})

	immutable := m.register(ClassSpec{Name: "java.util.ImmutableCollections$MapN", Final: true, Interfaces: []*Class{mapIface}})
	m.addMethods(immutable, reads...)
	m.addMethods(immutable, writes...)
}

// NewIterator creates a managed iterator pulling from next
func (m *Machine) NewIterator(next func() (managed.Value, bool)) *Object {
	c := m.std("java.util.Iterators$Itr")
	return &Object{class: c, native: &peekIter{src: next}}
}

// NewArrayList creates an ArrayList holding values
func (m *Machine) NewArrayList(values ...managed.Value) *Object {
	c := m.std("java.util.ArrayList")
	return &Object{class: c, native: &listState{items: append([]managed.Value(nil), values...)}}
}

// NewUnmodifiableList creates a read-only list view over values
func (m *Machine) NewUnmodifiableList(values ...managed.Value) *Object {
	c := m.std("java.util.Collections$UnmodifiableList")
	return &Object{class: c, native: &listState{items: append([]managed.Value(nil), values...)}}
}

// NewHashMap creates an empty insertion-ordered HashMap
func (m *Machine) NewHashMap() *Object {
	c := m.std("java.util.HashMap")
	return &Object{class: c, native: &mapState{index: make(map[any]int)}}
}

// NewImmutableMap creates a map whose mutators throw
func (m *Machine) NewImmutableMap(pairs ...managed.Value) *Object {
	st := &mapState{index: make(map[any]int)}
	for i := 0; i+1 < len(pairs); i += 2 {
		st.put(m, pairs[i], pairs[i+1])
	}
	st.readOnly = true
	c := m.std("java.util.ImmutableCollections$MapN")
	return &Object{class: c, native: st}
}

// MapPut stores a pair in a HashMap from Go
func (m *Machine) MapPut(mapObj *Object, key, val managed.Value) {
	mapObj.native.(*mapState).put(m, key, val)
}

// std returns a bootstrap class
func (m *Machine) std(name string) *Class {
	c, ok := m.Class(name)
	if !ok {
		panic("vm: missing bootstrap class " + name)
	}
	return c
}

// stringOf renders an element that may be an object or a raw primitive
func (m *Machine) stringOf(v managed.Value) (string, error) {
	if o, ok := v.(managed.Object); ok {
		return m.ToString(o)
	}
	return boxString(v), nil
}
