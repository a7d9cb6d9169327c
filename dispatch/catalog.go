package dispatch

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Handler implements one message for one dispatch category.
// recv is the managed receiver; args are protocol values.
type Handler func(recv managed.Object, args []any) (any, error)

// Env is what a factory may capture when it builds a handler.
// Instance is nil when the handler is built for the shared cache.
type Env struct {
	Router   *Router
	Instance *Instance
}

// Factory builds the handler of one (category, message) pair.
// A shared factory must build handlers that read nothing but their receiver
// and arguments; they are reused by every attached instance.
type Factory struct {
	Shared bool
	New    func(Env) Handler
}

// Table is the handler table of one dispatch category. Slots left empty are
// inherited from the parent table.
type Table struct {
	id      managed.DispatchID
	name    string
	parent  *Table
	entries [MessageCount]*Factory
	catalog *Catalog
}

// ID returns the dispatch id of the table
func (t *Table) ID() managed.DispatchID { return t.id }

// Name returns the category name
func (t *Table) Name() string { return t.name }

// Parent returns the table slots are inherited from
func (t *Table) Parent() *Table { return t.parent }

func (t *Table) set(msg Message, f *Factory) *Table {
	if msg >= MessageCount {
		errors.Fatal("message %d outside the catalogue", msg)
	}
	if t.catalog.sealed.Load() {
		panic(errors.Registration(fmt.Sprintf("%s.%s", t.name, msg), ErrSealed))
	}
	t.entries[msg] = f
	return t
}

// Shared installs a shareable handler factory for msg
func (t *Table) Shared(msg Message, fn func(Env) Handler) *Table {
	return t.set(msg, &Factory{Shared: true, New: fn})
}

// Local installs a factory whose handlers are built per instance
func (t *Table) Local(msg Message, fn func(Env) Handler) *Table {
	return t.set(msg, &Factory{New: fn})
}

// Handle installs a shareable handler that needs nothing from its Env
func (t *Table) Handle(msg Message, h Handler) *Table {
	return t.Shared(msg, func(Env) Handler { return h })
}

// ErrSealed is the cause of registration attempts after Seal
var ErrSealed = errors.InvalidInput(errors.PhaseRegister, "catalog is sealed")

// Catalog is the process-wide set of handler tables. It is mutable until
// Seal and immutable afterwards, so routing reads it without locks.
type Catalog struct {
	mu     sync.Mutex
	tables map[managed.DispatchID]*Table
	sealed atomic.Bool

	resolved  [][MessageCount]*Factory
	source    [][MessageCount]managed.DispatchID
	shareable [][MessageCount]bool
	names     []string
}

// NewCatalog creates an empty catalog
func NewCatalog() *Catalog {
	return &Catalog{tables: make(map[managed.DispatchID]*Table)}
}

// Define registers the table of a dispatch category
func (c *Catalog) Define(id managed.DispatchID, name string, parent *Table) (*Table, error) {
	if c.sealed.Load() {
		return nil, errors.Registration(name, ErrSealed)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if prev, ok := c.tables[id]; ok {
		return nil, errors.Registration(name,
			fmt.Errorf("dispatch id %d already defined by %s", id, prev.name))
	}
	if parent != nil && parent.catalog != c {
		return nil, errors.Registration(name, fmt.Errorf("parent %s belongs to another catalog", parent.name))
	}
	t := &Table{id: id, name: name, parent: parent, catalog: c}
	c.tables[id] = t
	return t, nil
}

// MustDefine is Define that panics on error
func (c *Catalog) MustDefine(id managed.DispatchID, name string, parent *Table) *Table {
	t, err := c.Define(id, name, parent)
	if err != nil {
		panic(err)
	}
	return t
}

// Table returns the table registered for id
func (c *Catalog) Table(id managed.DispatchID) (*Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.tables[id]
	return t, ok
}

// Seal resolves inheritance and freezes the catalog. Sealing twice is a no-op.
func (c *Catalog) Seal() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed.Load() {
		return
	}

	var maxID managed.DispatchID
	for id := range c.tables {
		if id > maxID {
			maxID = id
		}
	}
	n := int(maxID) + 1
	c.resolved = make([][MessageCount]*Factory, n)
	c.source = make([][MessageCount]managed.DispatchID, n)
	c.shareable = make([][MessageCount]bool, n)
	c.names = make([]string, n)

	for id, t := range c.tables {
		c.names[id] = t.name
		for msg := Message(0); msg < MessageCount; msg++ {
			c.source[id][msg] = id
			for k := t; k != nil; k = k.parent {
				if f := k.entries[msg]; f != nil {
					c.resolved[id][msg] = f
					c.source[id][msg] = k.id
					c.shareable[id][msg] = f.Shared
					break
				}
			}
		}
	}
	c.sealed.Store(true)
	Logger().Debug("catalog sealed")
}

// Sealed reports whether Seal has run
func (c *Catalog) Sealed() bool { return c.sealed.Load() }

func (c *Catalog) known(id managed.DispatchID) bool {
	return int(id) < len(c.names) && c.names[id] != ""
}

// IsShareable reports whether the handler of (id, msg) may be served from
// the shared cache. Pairs without a handler are never shareable: they
// resolve per instance and fall back to the message default.
func (c *Catalog) IsShareable(id managed.DispatchID, msg Message) bool {
	return c.known(id) && msg < MessageCount && c.shareable[id][msg]
}

// Source returns the id of the table that declares the handler of (id, msg)
func (c *Catalog) Source(id managed.DispatchID, msg Message) managed.DispatchID {
	if !c.known(id) || msg >= MessageCount {
		return id
	}
	return c.source[id][msg]
}

// Factory returns the resolved factory of (id, msg), or nil
func (c *Catalog) Factory(id managed.DispatchID, msg Message) *Factory {
	if !c.known(id) || msg >= MessageCount {
		return nil
	}
	return c.resolved[id][msg]
}

// Name returns the category name of id
func (c *Catalog) Name(id managed.DispatchID) string {
	if c.known(id) {
		return c.names[id]
	}
	return fmt.Sprintf("dispatch(%d)", id)
}

// Implements reports whether the category of id handles msg itself
func (c *Catalog) Implements(id managed.DispatchID, msg Message) bool {
	return c.Factory(id, msg) != nil
}
