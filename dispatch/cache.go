package dispatch

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/managed"
)

// DefaultSharedCacheLimit bounds each per-message polymorphic cache
const DefaultSharedCacheLimit = 8

type sharedKey struct {
	source managed.DispatchID
	msg    Message
}

type picEntry struct {
	id managed.DispatchID
	h  Handler
}

// pic is a bounded polymorphic cache from concrete dispatch id to handler.
// Readers load an immutable slice; writers replace it by compare-and-swap.
type pic struct {
	entries    atomic.Pointer[[]picEntry]
	overflowed atomic.Bool
}

func (p *pic) lookup(id managed.DispatchID) Handler {
	cur := p.entries.Load()
	if cur == nil {
		return nil
	}
	for _, e := range *cur {
		if e.id == id {
			return e.h
		}
	}
	return nil
}

// insert adds (id, h) unless the cache is full. It reports false on overflow.
func (p *pic) insert(id managed.DispatchID, h Handler, limit int) bool {
	for {
		cur := p.entries.Load()
		var old []picEntry
		if cur != nil {
			old = *cur
		}
		for _, e := range old {
			if e.id == id {
				return true
			}
		}
		if len(old) >= limit {
			return false
		}
		next := make([]picEntry, len(old), len(old)+1)
		copy(next, old)
		next = append(next, picEntry{id: id, h: h})
		if p.entries.CompareAndSwap(cur, &next) {
			return true
		}
	}
}

func (p *pic) len() int {
	if cur := p.entries.Load(); cur != nil {
		return len(*cur)
	}
	return 0
}

// SharedCache holds the handlers usable by every instance. Entries are keyed
// by the declaring category and installed with compute-if-absent: concurrent
// builders may race, one result wins and the rest are dropped.
type SharedCache struct {
	catalog *Catalog
	router  *Router
	limit   int

	handlers sync.Map // sharedKey -> Handler
	pics     [MessageCount]pic

	entries   atomic.Int64
	hits      atomic.Uint64
	misses    atomic.Uint64
	overflows atomic.Uint64
	generic   atomic.Uint64
}

func newSharedCache(c *Catalog, r *Router, limit int) *SharedCache {
	return &SharedCache{catalog: c, router: r, limit: limit}
}

// Get returns the shared handler of (id, msg). The pair must be shareable.
func (s *SharedCache) Get(id managed.DispatchID, msg Message) Handler {
	p := &s.pics[msg]
	if h := p.lookup(id); h != nil {
		s.hits.Add(1)
		return h
	}
	s.misses.Add(1)

	h := s.resolve(id, msg)
	if s.limit <= 0 || !p.insert(id, h, s.limit) {
		s.overflows.Add(1)
		s.generic.Add(1)
		if p.overflowed.CompareAndSwap(false, true) {
			Logger().Warn("polymorphic cache full, using generic path",
				zap.Stringer("message", msg),
				zap.Int("limit", s.limit),
				zap.String("category", s.catalog.Name(id)))
		}
	}
	return h
}

// resolve is the generic path: one map lookup by the declaring category
func (s *SharedCache) resolve(id managed.DispatchID, msg Message) Handler {
	key := sharedKey{source: s.catalog.Source(id, msg), msg: msg}
	if h, ok := s.handlers.Load(key); ok {
		return h.(Handler)
	}
	f := s.catalog.Factory(id, msg)
	h := f.New(Env{Router: s.router})
	actual, loaded := s.handlers.LoadOrStore(key, h)
	if !loaded {
		s.entries.Add(1)
		Logger().Debug("shared handler promoted",
			zap.Stringer("message", msg),
			zap.String("source", s.catalog.Name(key.source)),
			zap.String("category", s.catalog.Name(id)))
	}
	return actual.(Handler)
}

// Len returns the number of shared handlers built so far
func (s *SharedCache) Len() int { return int(s.entries.Load()) }

// PolymorphicLen returns how many concrete ids the cache of msg holds
func (s *SharedCache) PolymorphicLen(msg Message) int {
	if msg >= MessageCount {
		return 0
	}
	return s.pics[msg].len()
}
