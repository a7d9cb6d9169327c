package interop

import (
	"fmt"
	"slices"

	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/invoke"
	"github.com/wippyai/hostinterop/managed"
)

// members is the member view of a receiver: the instance members of an
// object, or the static members of the type a meta-object mirrors.
type members struct {
	rt     managed.Runtime
	typ    managed.Type
	recv   managed.Object
	static bool
}

func instanceMembers(recv managed.Object) members {
	return members{rt: runtimeOf(recv), typ: recv.Type(), recv: recv}
}

// staticMembers views the statics of the mirrored type, or the instance
// members of recv itself when recv mirrors nothing.
func staticMembers(recv managed.Object) members {
	rt := runtimeOf(recv)
	if t, ok := rt.Mirrored(recv); ok {
		return members{rt: rt, typ: t, static: true}
	}
	return instanceMembers(recv)
}

func (m members) names() []string {
	var out []string
	for _, f := range m.rt.Fields(m.typ, m.static) {
		out = append(out, f.Name())
	}
	for _, meth := range m.rt.Methods(m.typ, m.static) {
		out = append(out, meth.Name())
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func (m members) field(name string) managed.Field {
	f := m.rt.LookupField(m.typ, name, m.static)
	if f == nil || !f.IsPublic() {
		return nil
	}
	return f
}

func (m members) invocable(name string) bool {
	return invoke.IsInvocable(m.rt, m.typ, name, m.static)
}

func (m members) readable(name string) bool {
	return m.field(name) != nil || m.invocable(name)
}

func (m members) modifiable(name string) bool {
	f := m.field(name)
	return f != nil && !f.IsFinal()
}

func (m members) unknown(name string) error {
	return errors.UnknownIdentifier(errors.PhaseMember, m.typ.Name(), name)
}

func (m members) read(in *dispatch.Instance, name string) (any, error) {
	if f := m.field(name); f != nil {
		return convert.ToProtocol(m.rt, f.Get(m.recv)), nil
	}
	if m.invocable(name) {
		return &BoundMethod{recv: m.recv, typ: m.typ, name: name, static: m.static, in: in}, nil
	}
	return nil, m.unknown(name)
}

func (m members) write(name string, v any) error {
	f := m.field(name)
	if f == nil {
		return m.unknown(name)
	}
	if f.IsFinal() {
		return errors.New(errors.PhaseMember, errors.KindUnsupported).
			ManagedType(m.typ.Name()).
			Path(name).
			Detail("field is final").
			Build()
	}
	mv, err := convert.ToManaged(m.rt, v, f.Type())
	if err != nil {
		return err
	}
	f.Set(m.recv, mv)
	return nil
}

func (m members) invoke(iv *invoke.Invoker, name string, args []any) (any, error) {
	if m.static {
		return iv.InvokeStatic(m.typ, name, args)
	}
	return iv.Invoke(m.recv, name, args)
}

// installMembers wires the member messages over view
func installMembers(t *dispatch.Table, view func(managed.Object) members) {
	t.Handle(dispatch.HasMembers, always(true))
	t.Handle(dispatch.GetMembers, func(recv managed.Object, _ []any) (any, error) {
		return view(recv).names(), nil
	})
	t.Handle(dispatch.IsMemberReadable, memberQuery(dispatch.IsMemberReadable, view, members.readable))
	t.Handle(dispatch.IsMemberModifiable, memberQuery(dispatch.IsMemberModifiable, view, members.modifiable))
	t.Handle(dispatch.IsMemberInvocable, memberQuery(dispatch.IsMemberInvocable, view, members.invocable))
	t.Handle(dispatch.WriteMember, func(recv managed.Object, args []any) (any, error) {
		name, err := nameArg(args, 0, dispatch.WriteMember)
		if err != nil {
			return nil, err
		}
		return nil, view(recv).write(name, argAt(args, 1, dispatch.WriteMember))
	})
	t.Local(dispatch.ReadMember, func(env dispatch.Env) dispatch.Handler {
		in := env.Instance
		return func(recv managed.Object, args []any) (any, error) {
			name, err := nameArg(args, 0, dispatch.ReadMember)
			if err != nil {
				return nil, err
			}
			return view(recv).read(in, name)
		}
	})
	t.Local(dispatch.InvokeMember, func(env dispatch.Env) dispatch.Handler {
		iv := env.Instance.Invoker()
		return func(recv managed.Object, args []any) (any, error) {
			name, err := nameArg(args, 0, dispatch.InvokeMember)
			if err != nil {
				return nil, err
			}
			return view(recv).invoke(iv, name, args[1:])
		}
	})
}

func memberQuery(msg dispatch.Message, view func(managed.Object) members, fn func(members, string) bool) dispatch.Handler {
	return func(recv managed.Object, args []any) (any, error) {
		name, err := nameArg(args, 0, msg)
		if err != nil {
			return false, nil
		}
		return fn(view(recv), name), nil
	}
}

func installObject(t *dispatch.Table) {
	installMembers(t, instanceMembers)

	t.Handle(dispatch.HasMetaObject, always(true))
	t.Handle(dispatch.GetMetaObject, func(recv managed.Object, _ []any) (any, error) {
		return runtimeOf(recv).Mirror(recv.Type()), nil
	})
	t.Handle(dispatch.HasLanguage, always(true))
	t.Handle(dispatch.GetLanguage, func(recv managed.Object, _ []any) (any, error) {
		return runtimeOf(recv).Language(), nil
	})
	t.Handle(dispatch.IsIdenticalOrUndefined, func(recv managed.Object, args []any) (any, error) {
		other, ok := argAt(args, 0, dispatch.IsIdenticalOrUndefined).(managed.Object)
		return dispatch.TriOf(ok && other == recv), nil
	})
	t.Local(dispatch.IdentityHashCode, func(env dispatch.Env) dispatch.Handler {
		in := env.Instance
		return func(recv managed.Object, _ []any) (any, error) {
			return in.IdentityHash(recv)
		}
	})
	t.Local(dispatch.ToDisplayString, func(env dispatch.Env) dispatch.Handler {
		in := env.Instance
		return func(recv managed.Object, args []any) (any, error) {
			return displayString(in, recv, boolArg(args, 0))
		}
	})
}

// displayString renders recv through its own toString when side effects
// are allowed, and as Type@identity otherwise.
func displayString(in *dispatch.Instance, recv managed.Object, sideEffects bool) (string, error) {
	rt := runtimeOf(recv)
	if sideEffects {
		v, err := sendKnown(rt, recv, managed.MethodToString)
		if err != nil {
			return "", err
		}
		if o, ok := v.(managed.Object); ok {
			if s, ok := rt.HostString(o); ok {
				return s, nil
			}
		}
		return "null", nil
	}
	h, err := in.IdentityHash(recv)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s@%x", recv.Type().Name(), uint32(h)), nil
}

func installNull(t *dispatch.Table) {
	t.Handle(dispatch.IsNull, always(true))
	t.Handle(dispatch.HasLanguage, always(true))
	t.Handle(dispatch.GetLanguage, func(recv managed.Object, _ []any) (any, error) {
		return runtimeOf(recv).Language(), nil
	})
	t.Handle(dispatch.ToDisplayString, always("null"))
	t.Handle(dispatch.IsIdenticalOrUndefined, func(recv managed.Object, args []any) (any, error) {
		switch other := argAt(args, 0, dispatch.IsIdenticalOrUndefined).(type) {
		case nil:
			return dispatch.TriTrue, nil
		case managed.Object:
			return dispatch.TriOf(runtimeOf(recv).IsNull(other)), nil
		}
		return dispatch.TriFalse, nil
	})
}
