package runtime

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/interop"
	"github.com/wippyai/hostinterop/vm"
)

// Context is one isolated managed runtime attached to an engine
type Context struct {
	id       string
	engine   *Engine
	machine  *vm.Machine
	instance *dispatch.Instance

	memOnce sync.Once
	mem     *vm.LinearMemory
	memErr  error

	closed atomic.Bool
}

// NewContext creates a managed runtime and attaches it to the engine
func (e *Engine) NewContext() (*Context, error) {
	id := uuid.NewString()
	m := vm.New(vm.Options{
		ID:       id,
		Language: e.opts.Language,
		Classify: interop.Classify,
	})
	in, err := e.router.Attach(m)
	if err != nil {
		return nil, err
	}
	c := &Context{id: id, engine: e, machine: m, instance: in}
	if err := e.register(c); err != nil {
		_ = e.router.Detach(m)
		return nil, err
	}
	Logger().Debug("context created", zap.String("id", id))
	return c, nil
}

// ID returns the context's unique id
func (c *Context) ID() string { return c.id }

// Machine returns the managed runtime of the context
func (c *Context) Machine() *vm.Machine { return c.machine }

// Library returns the protocol library. It is shared by every context of
// the engine and accepts values from any of them.
func (c *Context) Library() *interop.Library { return c.engine.lib }

// Instance returns the dispatch instance of the context
func (c *Context) Instance() *dispatch.Instance { return c.instance }

// Send sends msg to recv
func (c *Context) Send(recv any, msg dispatch.Message, args ...any) (any, error) {
	return c.engine.lib.Send(recv, msg, args...)
}

// DirectBuffer creates a ByteBuffer over size bytes of the context's
// linear memory, starting at base. The memory is allocated on first use.
func (c *Context) DirectBuffer(ctx context.Context, base uint32, size int) (*vm.Object, error) {
	if c.closed.Load() {
		return nil, errors.Closed(errors.PhaseAdapter, "context "+c.id)
	}
	pages := c.engine.opts.MemoryPages
	if pages == 0 {
		return nil, errors.Unsupported(errors.PhaseAdapter, "context has no linear memory")
	}
	c.memOnce.Do(func() {
		c.mem, c.memErr = vm.NewLinearMemory(ctx, pages)
	})
	if c.memErr != nil {
		return nil, c.memErr
	}
	return c.machine.NewDirectBuffer(c.mem, base, size)
}

// Closed reports whether Close was called
func (c *Context) Closed() bool { return c.closed.Load() }

// Close detaches the context and releases its linear memory. Messages sent
// to its objects fail with errors.KindClosed afterwards.
func (c *Context) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	c.engine.forget(c.id)
	err := c.engine.router.Detach(c.machine)
	c.memOnce.Do(func() {})
	if c.mem != nil {
		if merr := c.mem.Close(context.Background()); merr != nil && err == nil {
			err = merr
		}
	}
	Logger().Debug("context closed", zap.String("id", c.id))
	return err
}
