// Package dispatch routes protocol messages to the handler that implements
// them for the receiver's dispatch category.
//
// Every managed type carries a dense DispatchID. A Catalog holds one Table of
// handler factories per id; tables inherit empty slots from their parent, the
// way a class vtable inherits methods. Once sealed the catalog is immutable
// and records, for every (id, message) pair, the resolved factory, the id of
// the table that declared it and whether it is shareable.
//
// A Router serves many managed runtimes at once. Each runtime is attached as
// an Instance. Routing a message works as follows:
//
//   - shareable pairs are served from the SharedCache: a per-message bounded
//     polymorphic cache from concrete id to handler, backed by a map keyed by
//     the declaring id and filled with compute-if-absent
//   - other pairs ask the receiver's Instance, which checks its overrides and
//     then builds and caches the handler from the catalog
//   - pairs nobody implements answer the message default (see FallbackOf)
//
// Shared handlers are built without an Instance and must read nothing but
// their receiver and arguments. Reads of the shared state take no locks.
//
// Query messages (Is*, Has*, FitsIn*) default to false; IsIdenticalOrUndefined
// defaults to TriUndefined; a few messages derive their default from other
// messages; every other message fails with KindUnsupported.
package dispatch
