package dispatch

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/invoke"
	"github.com/wippyai/hostinterop/managed"
	"github.com/wippyai/hostinterop/resource"
)

// Options configures a Router
type Options struct {
	// SharedCacheLimit bounds each per-message polymorphic cache.
	// Zero selects DefaultSharedCacheLimit; a negative value disables it.
	SharedCacheLimit int
	// DisableSharing builds every handler per instance.
	DisableSharing bool
}

// DefaultOptions returns the default router options
func DefaultOptions() Options {
	return Options{SharedCacheLimit: DefaultSharedCacheLimit}
}

// Stats is a snapshot of routing counters
type Stats struct {
	SharedEntries int
	PICHits       uint64
	PICMisses     uint64
	PICOverflows  uint64
	GenericCalls  uint64
	LocalHits     uint64
	LocalMisses   uint64
	Defaults      uint64
	Instances     int
}

// Router sends protocol messages to the handler selected by the receiver's
// dispatch id. Shareable pairs are served from the process-wide shared cache;
// the rest are resolved by the instance that owns the receiver's runtime.
type Router struct {
	catalog *Catalog
	shared  *SharedCache
	opts    Options

	instances sync.Map // managed.Runtime -> *Instance

	detachedHits   atomic.Uint64
	detachedMisses atomic.Uint64
	defaults       atomic.Uint64
}

// NewRouter creates a router over a sealed catalog
func NewRouter(c *Catalog, opts Options) (*Router, error) {
	if c == nil || !c.Sealed() {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "router needs a sealed catalog")
	}
	limit := opts.SharedCacheLimit
	if limit == 0 {
		limit = DefaultSharedCacheLimit
	}
	r := &Router{catalog: c, opts: opts}
	r.shared = newSharedCache(c, r, limit)
	return r, nil
}

// Catalog returns the catalog the router serves
func (r *Router) Catalog() *Catalog { return r.catalog }

// Shared returns the shared handler cache
func (r *Router) Shared() *SharedCache { return r.shared }

func (r *Router) shareable(id managed.DispatchID, msg Message) bool {
	return !r.opts.DisableSharing && r.catalog.IsShareable(id, msg)
}

// Attach creates the dispatch instance of rt
func (r *Router) Attach(rt managed.Runtime) (*Instance, error) {
	if rt == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil runtime")
	}
	in := &Instance{
		router:  r,
		rt:      rt,
		invoker: invoke.New(rt),
		handles: resource.NewTable(),
	}
	if _, loaded := r.instances.LoadOrStore(rt, in); loaded {
		return nil, errors.Registration("instance "+rt.ID(),
			errors.InvalidInput(errors.PhaseRegister, "runtime already attached"))
	}
	Logger().Debug("instance attached", zap.String("id", rt.ID()))
	return in, nil
}

// Detach removes the instance of rt. Routing its objects afterwards fails
// with KindClosed.
func (r *Router) Detach(rt managed.Runtime) error {
	v, ok := r.instances.LoadAndDelete(rt)
	if !ok {
		return errors.NotFound(errors.PhaseDispatch, "instance", rt.ID())
	}
	return r.retire(v.(*Instance))
}

func (r *Router) retire(in *Instance) error {
	err := in.close()
	r.detachedHits.Add(in.hits.Load())
	r.detachedMisses.Add(in.misses.Load())
	return err
}

// Instance returns the instance attached for rt
func (r *Router) Instance(rt managed.Runtime) (*Instance, bool) {
	v, ok := r.instances.Load(rt)
	if !ok {
		return nil, false
	}
	return v.(*Instance), true
}

// InstanceOf returns the instance owning obj's runtime
func (r *Router) InstanceOf(obj managed.Object) (*Instance, error) {
	rt := obj.Type().Runtime()
	in, ok := r.Instance(rt)
	if !ok {
		return nil, errors.Closed(errors.PhaseDispatch, "instance "+rt.ID())
	}
	return in, nil
}

// Lookup returns the handler serving (obj, msg), or nil when the message
// falls back to its default. Objects of detached runtimes fail with
// KindClosed whatever the message.
func (r *Router) Lookup(obj managed.Object, msg Message) (Handler, error) {
	if msg >= MessageCount {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "message outside the catalogue")
	}
	in, err := r.InstanceOf(obj)
	if err != nil {
		return nil, err
	}
	id := obj.Type().DispatchID()
	if r.shareable(id, msg) {
		return r.shared.Get(id, msg), nil
	}
	return in.handler(id, msg), nil
}

// Route sends msg to obj
func (r *Router) Route(obj managed.Object, msg Message, args ...any) (any, error) {
	if obj == nil {
		return nil, errors.InvalidInput(errors.PhaseDispatch, "nil receiver")
	}
	if err := CheckArgs(msg, args); err != nil {
		return nil, err
	}
	h, err := r.Lookup(obj, msg)
	if err != nil {
		return nil, err
	}
	if h == nil {
		r.defaults.Add(1)
		return r.fallback(obj, msg, args)
	}
	return h(obj, args)
}

// Implements reports whether obj's category or instance handles msg itself
func (r *Router) Implements(obj managed.Object, msg Message) bool {
	h, err := r.Lookup(obj, msg)
	return err == nil && h != nil
}

// Stats returns a snapshot of the routing counters
func (r *Router) Stats() Stats {
	st := Stats{
		SharedEntries: r.shared.Len(),
		PICHits:       r.shared.hits.Load(),
		PICMisses:     r.shared.misses.Load(),
		PICOverflows:  r.shared.overflows.Load(),
		GenericCalls:  r.shared.generic.Load(),
		Defaults:      r.defaults.Load(),
	}
	st.LocalHits = r.detachedHits.Load()
	st.LocalMisses = r.detachedMisses.Load()
	r.instances.Range(func(_, v any) bool {
		in := v.(*Instance)
		st.LocalHits += in.hits.Load()
		st.LocalMisses += in.misses.Load()
		st.Instances++
		return true
	})
	return st
}

// Close detaches every instance
func (r *Router) Close() error {
	var first error
	r.instances.Range(func(k, _ any) bool {
		v, ok := r.instances.LoadAndDelete(k)
		if !ok {
			return true
		}
		if err := r.retire(v.(*Instance)); err != nil && first == nil {
			first = err
		}
		return true
	})
	return first
}
