package interop

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/managed"
)

// mirrored returns the type a meta-object stands for
func mirrored(recv managed.Object, msg dispatch.Message) (managed.Type, error) {
	t, ok := runtimeOf(recv).Mirrored(recv)
	if !ok {
		return nil, unsupported(recv, msg, "receiver mirrors no type")
	}
	return t, nil
}

func metaQuery(fn func(managed.Type) bool) dispatch.Handler {
	return func(recv managed.Object, _ []any) (any, error) {
		t, ok := runtimeOf(recv).Mirrored(recv)
		return ok && fn(t), nil
	}
}

func metaValue(msg dispatch.Message, fn func(managed.Type) any) dispatch.Handler {
	return func(recv managed.Object, _ []any) (any, error) {
		t, err := mirrored(recv, msg)
		if err != nil {
			return nil, err
		}
		return fn(t), nil
	}
}

func parentsOf(t managed.Type) []managed.Type {
	var out []managed.Type
	if s := t.Super(); s != nil {
		out = append(out, s)
	}
	return append(out, t.Interfaces()...)
}

func instantiable(t managed.Type) bool {
	return t.Kind() == managed.KindObject && !t.IsAbstract()
}

// isMetaInstance answers whether v is an instance of t. Primitive protocol
// values are instances of the boxed type they convert to.
func isMetaInstance(rt managed.Runtime, t managed.Type, v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case managed.Object:
		return !rt.IsNull(x) && rt.IsInstanceOf(x, t)
	}
	if n := convert.NaturalType(rt, v); n != nil {
		return n.IsSubtypeOf(t)
	}
	return false
}

func installClass(t *dispatch.Table) {
	installMembers(t, staticMembers)

	t.Handle(dispatch.IsMetaObject, metaQuery(func(managed.Type) bool { return true }))
	t.Handle(dispatch.GetMetaQualifiedName, metaValue(dispatch.GetMetaQualifiedName, func(t managed.Type) any {
		return t.Name()
	}))
	t.Handle(dispatch.GetMetaSimpleName, metaValue(dispatch.GetMetaSimpleName, func(t managed.Type) any {
		return t.SimpleName()
	}))
	t.Handle(dispatch.IsMetaInstance, func(recv managed.Object, args []any) (any, error) {
		mt, err := mirrored(recv, dispatch.IsMetaInstance)
		if err != nil {
			return nil, err
		}
		return isMetaInstance(runtimeOf(recv), mt, argAt(args, 0, dispatch.IsMetaInstance)), nil
	})
	t.Handle(dispatch.HasMetaParents, metaQuery(func(t managed.Type) bool {
		return len(parentsOf(t)) > 0
	}))
	t.Handle(dispatch.GetMetaParents, func(recv managed.Object, _ []any) (any, error) {
		mt, err := mirrored(recv, dispatch.GetMetaParents)
		if err != nil {
			return nil, err
		}
		parents := parentsOf(mt)
		if len(parents) == 0 {
			return nil, unsupported(recv, dispatch.GetMetaParents, "type has no parents")
		}
		rt := runtimeOf(recv)
		arr := rt.NewArray(rt.Known(managed.TypeClass), len(parents))
		for i, p := range parents {
			rt.ArraySet(arr, i, rt.Mirror(p))
		}
		return arr, nil
	})
	t.Handle(dispatch.IsInstantiable, metaQuery(instantiable))
	t.Local(dispatch.Instantiate, func(env dispatch.Env) dispatch.Handler {
		iv := env.Instance.Invoker()
		return func(recv managed.Object, args []any) (any, error) {
			mt, err := mirrored(recv, dispatch.Instantiate)
			if err != nil {
				return nil, err
			}
			return iv.Instantiate(mt, args)
		}
	})
}
