package runtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/hostinterop/dispatch"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/interop"
	"github.com/wippyai/hostinterop/invoke"
	"github.com/wippyai/hostinterop/vm"
)

// Engine is the process-wide half of the interop layer: the sealed handler
// catalog, the router with its shared cache, and the library callers send
// messages through.
type Engine struct {
	opts   Options
	router *dispatch.Router
	lib    *interop.Library

	mu       sync.Mutex
	contexts map[string]*Context
	closed   bool
}

// New creates an engine. A non-nil opts.Logger is installed in every
// package that logs.
func New(opts Options) (*Engine, error) {
	if opts.Language == "" {
		opts.Language = "java"
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		SetLogger(opts.Logger)
		dispatch.SetLogger(opts.Logger.Named("dispatch"))
		invoke.SetLogger(opts.Logger.Named("invoke"))
		vm.SetLogger(opts.Logger.Named("vm"))
	}

	catalog, err := interop.NewCatalog()
	if err != nil {
		return nil, err
	}
	router, err := dispatch.NewRouter(catalog, dispatch.Options{
		SharedCacheLimit: opts.SharedCacheLimit,
		DisableSharing:   opts.DisableSharing,
	})
	if err != nil {
		return nil, err
	}

	Logger().Info("engine created",
		zap.Int("shared_cache_limit", opts.SharedCacheLimit),
		zap.Bool("sharing", !opts.DisableSharing),
		zap.String("language", opts.Language))

	return &Engine{
		opts:     opts,
		router:   router,
		lib:      interop.NewLibrary(router, interop.Options{DisplaySideEffects: opts.DisplaySideEffects}),
		contexts: make(map[string]*Context),
	}, nil
}

// Options returns the options the engine was created with
func (e *Engine) Options() Options { return e.opts }

// Library returns the engine-wide protocol library
func (e *Engine) Library() *interop.Library { return e.lib }

// Router returns the dispatch router
func (e *Engine) Router() *dispatch.Router { return e.router }

// Stats returns the routing counters
func (e *Engine) Stats() dispatch.Stats { return e.router.Stats() }

// Contexts returns the number of open contexts
func (e *Engine) Contexts() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contexts)
}

// Context returns the open context with the given id
func (e *Engine) Context(id string) (*Context, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.contexts[id]
	return c, ok
}

func (e *Engine) forget(id string) {
	e.mu.Lock()
	delete(e.contexts, id)
	e.mu.Unlock()
}

// Close closes every open context. The engine cannot create contexts
// afterwards.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	open := make([]*Context, 0, len(e.contexts))
	for _, c := range e.contexts {
		open = append(open, c)
	}
	e.mu.Unlock()

	var first error
	for _, c := range open {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	Logger().Info("engine closed", zap.Int("contexts", len(open)))
	return first
}

func (e *Engine) register(c *Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return errors.Closed(errors.PhaseDispatch, "engine")
	}
	e.contexts[c.id] = c
	return nil
}
