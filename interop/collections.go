package interop

import (
	"github.com/wippyai/hostinterop/adapter"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
)

// indexed is the array protocol over one adapter view
type indexed interface {
	IsReadable(i int64) bool
	IsModifiable(i int64) bool
	Read(i int64) (any, error)
	Write(i int64, v any) error
}

func installIndexed[V indexed](t *dispatch.Table, view func(managed.Runtime, managed.Object) V, size func(V) (int64, error)) {
	get := func(recv managed.Object) V { return view(runtimeOf(recv), recv) }

	t.Handle(dispatch.HasArrayElements, always(true))
	t.Handle(dispatch.GetArraySize, func(recv managed.Object, _ []any) (any, error) {
		return size(get(recv))
	})
	t.Handle(dispatch.IsArrayElementReadable, indexQuery(dispatch.IsArrayElementReadable, func(recv managed.Object, i int64) bool {
		return get(recv).IsReadable(i)
	}))
	t.Handle(dispatch.IsArrayElementModifiable, indexQuery(dispatch.IsArrayElementModifiable, func(recv managed.Object, i int64) bool {
		return get(recv).IsModifiable(i)
	}))
	t.Handle(dispatch.ReadArrayElement, func(recv managed.Object, args []any) (any, error) {
		i, err := indexArg(args, 0, dispatch.ReadArrayElement)
		if err != nil {
			return nil, err
		}
		return get(recv).Read(i)
	})
	t.Handle(dispatch.WriteArrayElement, func(recv managed.Object, args []any) (any, error) {
		i, err := indexArg(args, 0, dispatch.WriteArrayElement)
		if err != nil {
			return nil, err
		}
		return nil, get(recv).Write(i, argAt(args, 1, dispatch.WriteArrayElement))
	})
}

// indexQuery answers false for an index that is not an integer
func indexQuery(msg dispatch.Message, fn func(managed.Object, int64) bool) dispatch.Handler {
	return func(recv managed.Object, args []any) (any, error) {
		i, err := indexArg(args, 0, msg)
		if err != nil {
			return false, nil
		}
		return fn(recv, i), nil
	}
}

func installArray(t *dispatch.Table) {
	installIndexed(t, adapter.NewArray, func(a *adapter.Array) (int64, error) { return a.Size(), nil })
	t.Handle(dispatch.RemoveArrayElement, func(recv managed.Object, args []any) (any, error) {
		i, err := indexArg(args, 0, dispatch.RemoveArrayElement)
		if err != nil {
			return nil, err
		}
		return nil, adapter.NewArray(runtimeOf(recv), recv).Remove(i)
	})
}

func installList(t *dispatch.Table) {
	get := func(recv managed.Object) *adapter.List { return adapter.NewList(runtimeOf(recv), recv) }
	installIndexed(t, adapter.NewList, (*adapter.List).Size)
	t.Handle(dispatch.IsArrayElementRemovable, indexQuery(dispatch.IsArrayElementRemovable, func(recv managed.Object, i int64) bool {
		return get(recv).IsRemovable(i)
	}))
	t.Handle(dispatch.IsArrayElementInsertable, indexQuery(dispatch.IsArrayElementInsertable, func(recv managed.Object, i int64) bool {
		return get(recv).IsInsertable(i)
	}))
	t.Handle(dispatch.RemoveArrayElement, func(recv managed.Object, args []any) (any, error) {
		i, err := indexArg(args, 0, dispatch.RemoveArrayElement)
		if err != nil {
			return nil, err
		}
		return nil, get(recv).Remove(i)
	})
}

func installMapEntry(t *dispatch.Table) {
	installIndexed(t, adapter.NewMapEntry, func(e *adapter.MapEntry) (int64, error) { return e.Size(), nil })
}

func installIterable(t *dispatch.Table) {
	t.Handle(dispatch.HasIterator, always(true))
	t.Handle(dispatch.GetIterator, func(recv managed.Object, _ []any) (any, error) {
		return adapter.NewIterable(runtimeOf(recv), recv).Iterator()
	})
}

func installIterator(t *dispatch.Table) {
	t.Handle(dispatch.IsIterator, always(true))
	t.Handle(dispatch.HasIteratorNextElement, func(recv managed.Object, _ []any) (any, error) {
		return adapter.NewIterator(runtimeOf(recv), recv).HasNext()
	})
	t.Handle(dispatch.GetIteratorNextElement, func(recv managed.Object, _ []any) (any, error) {
		return adapter.NewIterator(runtimeOf(recv), recv).Next()
	})
}

func installMap(t *dispatch.Table) {
	get := func(recv managed.Object) *adapter.Map { return adapter.NewMap(runtimeOf(recv), recv) }
	query := func(msg dispatch.Message, fn func(*adapter.Map, any) bool) dispatch.Handler {
		return func(recv managed.Object, args []any) (any, error) {
			return fn(get(recv), argAt(args, 0, msg)), nil
		}
	}

	t.Handle(dispatch.HasHashEntries, always(true))
	t.Handle(dispatch.GetHashSize, func(recv managed.Object, _ []any) (any, error) {
		return get(recv).Size()
	})
	t.Handle(dispatch.IsHashEntryReadable, query(dispatch.IsHashEntryReadable, (*adapter.Map).IsReadable))
	t.Handle(dispatch.IsHashEntryModifiable, query(dispatch.IsHashEntryModifiable, (*adapter.Map).IsModifiable))
	t.Handle(dispatch.IsHashEntryInsertable, query(dispatch.IsHashEntryInsertable, (*adapter.Map).IsInsertable))
	t.Handle(dispatch.IsHashEntryRemovable, query(dispatch.IsHashEntryRemovable, (*adapter.Map).IsRemovable))
	t.Handle(dispatch.ReadHashValue, func(recv managed.Object, args []any) (any, error) {
		return get(recv).Read(argAt(args, 0, dispatch.ReadHashValue))
	})
	t.Handle(dispatch.WriteHashEntry, func(recv managed.Object, args []any) (any, error) {
		return nil, get(recv).Write(argAt(args, 0, dispatch.WriteHashEntry), argAt(args, 1, dispatch.WriteHashEntry))
	})
	t.Handle(dispatch.RemoveHashEntry, func(recv managed.Object, args []any) (any, error) {
		return nil, get(recv).Remove(argAt(args, 0, dispatch.RemoveHashEntry))
	})
	t.Handle(dispatch.GetHashEntriesIterator, func(recv managed.Object, _ []any) (any, error) {
		return get(recv).EntriesIterator()
	})
}
