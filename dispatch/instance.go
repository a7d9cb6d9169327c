package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/invoke"
	"github.com/wippyai/hostinterop/managed"
	"github.com/wippyai/hostinterop/resource"
)

type localKey struct {
	id  managed.DispatchID
	msg Message
}

// localEntry is a resolved pair. A nil handler means the message default.
type localEntry struct {
	h Handler
}

// Instance is the dispatch state of one attached managed runtime: handlers
// built for it, per-instance overrides, member lookup caches and handles.
type Instance struct {
	router  *Router
	rt      managed.Runtime
	invoker *invoke.Invoker
	handles *resource.Table

	local     sync.Map // localKey -> localEntry
	overrides sync.Map // localKey -> Handler

	hits   atomic.Uint64
	misses atomic.Uint64
	closed atomic.Bool
}

// Runtime returns the managed runtime the instance serves
func (in *Instance) Runtime() managed.Runtime { return in.rt }

// ID returns the id of the managed runtime
func (in *Instance) ID() string { return in.rt.ID() }

// Invoker returns the instance's invocation engine and member cache
func (in *Instance) Invoker() *invoke.Invoker { return in.invoker }

// Handles returns the instance's handle table
func (in *Instance) Handles() *resource.Table { return in.handles }

// Router returns the router the instance is attached to
func (in *Instance) Router() *Router { return in.router }

// Closed reports whether the instance was detached
func (in *Instance) Closed() bool { return in.closed.Load() }

// IdentityHash returns the instance-local identity hash of obj.
// It is stable for the lifetime of the instance and never zero.
func (in *Instance) IdentityHash(obj managed.Object) (int32, error) {
	h := in.handles.Intern(resource.KindIdentity, obj)
	if h == 0 {
		return 0, errors.Closed(errors.PhaseDispatch, "instance "+in.ID())
	}
	return int32(h), nil
}

// Register overrides the handler of (id, msg) for this instance only.
// Shareable pairs cannot be overridden.
func (in *Instance) Register(id managed.DispatchID, msg Message, h Handler) error {
	what := fmt.Sprintf("%s.%s", in.router.catalog.Name(id), msg)
	switch {
	case in.closed.Load():
		return errors.Registration(what, errors.Closed(errors.PhaseRegister, "instance "+in.ID()))
	case msg >= MessageCount:
		return errors.Registration(what, errors.InvalidInput(errors.PhaseRegister, "message outside the catalogue"))
	case h == nil:
		return errors.Registration(what, errors.InvalidInput(errors.PhaseRegister, "nil handler"))
	case in.router.shareable(id, msg):
		return errors.Registration(what, errors.InvalidInput(errors.PhaseRegister, "pair is served from the shared cache"))
	}
	in.overrides.Store(localKey{id: id, msg: msg}, h)
	in.local.Delete(localKey{id: id, msg: msg})
	return nil
}

// handler resolves a non-shareable pair. nil means the message default.
func (in *Instance) handler(id managed.DispatchID, msg Message) Handler {
	key := localKey{id: id, msg: msg}
	if h, ok := in.overrides.Load(key); ok {
		return h.(Handler)
	}
	if e, ok := in.local.Load(key); ok {
		in.hits.Add(1)
		return e.(localEntry).h
	}
	in.misses.Add(1)

	var e localEntry
	if f := in.router.catalog.Factory(id, msg); f != nil {
		e.h = f.New(Env{Router: in.router, Instance: in})
	}
	actual, _ := in.local.LoadOrStore(key, e)
	return actual.(localEntry).h
}

// LocalLen returns the number of pairs resolved by this instance
func (in *Instance) LocalLen() int {
	n := 0
	in.local.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (in *Instance) close() error {
	if !in.closed.CompareAndSwap(false, true) {
		return nil
	}
	Logger().Debug("instance detached",
		zap.String("id", in.ID()),
		zap.Int("handles", in.handles.Len()),
		zap.Int("local", in.LocalLen()))
	return in.handles.Close()
}
