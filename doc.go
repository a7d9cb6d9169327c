// Package hostinterop lets a dynamic host language operate on objects of a
// statically typed managed runtime.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	hostinterop/         Root package with the Memory interface for direct buffers
//	├── managed/         Runtime, Type, Field and Method abstractions of the managed side
//	├── vm/              In-process managed runtime implementing managed.Runtime
//	├── coerce/          Lossless numeric and string coercion rules
//	├── convert/         Host value to managed slot conversion, unboxing, BigInteger
//	├── adapter/         Array, List, Map, Map.Entry, Iterator, Iterable and ByteBuffer adapters
//	├── invoke/          Member lookup, overload resolution and invocation
//	├── dispatch/        Protocol messages, per-type handler tables and the shared cache
//	├── interop/         Dispatch ids, classification and the handler library
//	├── resource/        Handle tables for identity hashes and host-held objects
//	├── runtime/         Engine wiring runtimes, contexts and configuration
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	eng, err := runtime.New(runtime.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	ctx, _ := eng.NewContext()
//	m := ctx.Machine()
//	list := m.NewArrayList(m.Str("a"), m.Str("b"))
//	size, err := ctx.Library().GetArraySize(list)
//
// Objects from runtimes attached to the same engine share dispatch decisions
// through a process-wide cache keyed by type and message; handlers bound to a
// specific runtime stay local to it.
package hostinterop
