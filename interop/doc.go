// Package interop implements the protocol for managed objects.
//
// Every managed type is classified into a dispatch category when it is
// defined (see Classify). NewCatalog builds the handler table of each
// category; categories inherit from one another the way the managed types
// do, so a List answers the iterable messages and every boxed value answers
// the object messages.
//
// Library is the entry point for callers. It sends messages to any protocol
// value:
//
//	lib := interop.NewLibrary(router, interop.Options{})
//	if lib.HasArrayElements(list) {
//		n, _ := lib.GetArraySize(list)
//		first, _ := lib.ReadArrayElement(list, 0)
//	}
//
// Managed receivers go through the dispatch router. Go primitives are
// answered by the coercion rules, members read as methods come back as
// *BoundMethod, and iterators built on the host side answer the iterator
// messages directly.
package interop
