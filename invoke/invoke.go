package invoke

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Invoker resolves and invokes methods on one managed runtime.
// Candidate lists are cached per (type, name, arity, static); the cache
// belongs to a single runtime instance and is never shared.
type Invoker struct {
	rt     managed.Runtime
	cache  sync.Map // memberKey -> []Candidate
	hits   atomic.Uint64
	misses atomic.Uint64
}

type memberKey struct {
	typ    managed.Type
	name   string
	arity  int
	static bool
}

// CacheStats reports member cache effectiveness
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

// New creates an Invoker for rt
func New(rt managed.Runtime) *Invoker {
	return &Invoker{rt: rt}
}

// Runtime returns the runtime the invoker calls into
func (iv *Invoker) Runtime() managed.Runtime { return iv.rt }

// Lookup returns the cached candidates for name on t
func (iv *Invoker) Lookup(t managed.Type, name string, arity int, static bool) []Candidate {
	key := memberKey{typ: t, name: name, arity: arity, static: static}
	if cached, ok := iv.cache.Load(key); ok {
		iv.hits.Add(1)
		return cached.([]Candidate)
	}
	iv.misses.Add(1)
	cands := Lookup(iv.rt, t, name, arity, static)
	actual, _ := iv.cache.LoadOrStore(key, cands)
	return actual.([]Candidate)
}

// IsInvocable reports whether name can be invoked on t with some arity
func (iv *Invoker) IsInvocable(t managed.Type, name string, static bool) bool {
	return IsInvocable(iv.rt, t, name, static)
}

// Stats returns member cache statistics
func (iv *Invoker) Stats() CacheStats {
	n := 0
	iv.cache.Range(func(_, _ any) bool {
		n++
		return true
	})
	return CacheStats{Hits: iv.hits.Load(), Misses: iv.misses.Load(), Entries: n}
}

// Invoke calls the instance method name on recv
func (iv *Invoker) Invoke(recv managed.Object, name string, args []any) (any, error) {
	if iv.rt.IsNull(recv) {
		return nil, errors.Unsupported(errors.PhaseInvoke, "invoke on null")
	}
	return iv.call(recv, recv.Type(), name, args, false)
}

// InvokeStatic calls the static method name declared by t
func (iv *Invoker) InvokeStatic(t managed.Type, name string, args []any) (any, error) {
	return iv.call(nil, t, name, args, true)
}

// Instantiate runs the constructor of t that accepts args
func (iv *Invoker) Instantiate(t managed.Type, args []any) (any, error) {
	if t.Kind() != managed.KindObject || t.IsAbstract() {
		return nil, errors.New(errors.PhaseInvoke, errors.KindUnsupported).
			ManagedType(t.Name()).
			Detail("type is not instantiable").
			Build()
	}
	return iv.call(nil, t, "<init>", args, false)
}

func (iv *Invoker) call(recv managed.Object, t managed.Type, name string, args []any, static bool) (any, error) {
	cands := iv.Lookup(t, name, len(args), static)
	if len(cands) == 0 {
		Logger().Debug("no candidates",
			zap.String("type", t.Name()),
			zap.String("member", name),
			zap.Int("argc", len(args)))
		return nil, errors.Arity(errors.PhaseInvoke, t.Name(), name, len(args))
	}

	var (
		target    managed.Method
		converted []managed.Value
		err       error
	)
	switch {
	case len(cands) == 1 && !cands[0].VarArgs:
		c := cands[0]
		if len(c.Params) != len(args) {
			errors.Fatal("%s accepted %d arguments but declares %d", name, len(args), len(c.Params))
		}
		target = c.Method
		converted, err = convertAll(iv.rt, c.Params, args)
		if err != nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindNoApplicable).
				ManagedType(t.Name()).
				Path(name).
				Cause(err).
				Detail("argument does not fit the declared parameter").
				Build()
		}
	case len(cands) == 1:
		target = cands[0].Method
		converted, err = Match(iv.rt, cands[0], args)
		if err != nil {
			return nil, errors.New(errors.PhaseInvoke, errors.KindNoApplicable).
				ManagedType(t.Name()).
				Path(name).
				Cause(err).
				Detail("arguments do not match the varargs signature").
				Build()
		}
	default:
		c, conv, matched := Select(iv.rt, cands, args)
		if matched != 1 {
			Logger().Debug("overload not resolved",
				zap.String("type", t.Name()),
				zap.String("member", name),
				zap.Int("candidates", len(cands)),
				zap.Int("matched", matched))
			return nil, errors.NoApplicableOverload(errors.PhaseInvoke, t.Name(), name, matched)
		}
		target, converted = c.Method, conv
	}

	res, err := iv.rt.Invoke(target, recv, converted)
	if err != nil {
		return nil, convert.Fault(err)
	}
	if target.IsConstructor() {
		return res, nil
	}
	return convert.ToProtocol(iv.rt, res), nil
}
