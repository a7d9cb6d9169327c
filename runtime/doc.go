// Package runtime provides the high-level API over the interop layer.
//
// # Quick Start
//
//	eng, err := runtime.New(runtime.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer eng.Close()
//
//	ctx, err := eng.NewContext()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	m := ctx.Machine()
//	list := m.NewArrayList(m.Str("a"), m.Str("b"))
//	n, _ := ctx.Library().GetArraySize(list) // 2
//
// # Engines and Contexts
//
// An Engine owns the handler catalog and the dispatch router. It is safe
// for concurrent use and normally lives for the whole process. Every
// Context is one isolated managed runtime attached to the engine: its types
// are its own, but dispatch decisions for shareable handlers are made once
// per engine and reused by all contexts.
//
// Closing a Context detaches it. Messages sent to its objects afterwards
// fail with errors.KindClosed.
//
// # Configuration
//
// Options can be built in code or read from a TOML file:
//
//	shared_cache_limit   = 8
//	disable_sharing      = false
//	display_side_effects = true
//	language             = "java"
//	log_level            = "info"
//	memory_pages         = 1
//
// The INTEROP_LOG_LEVEL environment variable overrides log_level.
package runtime
