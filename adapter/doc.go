// Package adapter presents managed collections through the protocol's array,
// hash, iterator and buffer views.
//
// Every view is a thin handle over one managed object. Views never cache
// managed state: sizes, membership and order flags are read from the managed
// object on every call, so a view stays correct while the collection mutates
// underneath it.
//
// Managed exceptions the view understands are reinterpreted as protocol
// errors (index out of bounds becomes KindInvalidIndex, unsupported operation
// becomes KindUnsupported). Every other managed exception passes through as
// *errors.ManagedFault.
package adapter
