// Package invoke resolves a member name and protocol arguments to exactly one
// managed method and calls it.
//
// Resolution has three paths:
//
//   - a single fixed-arity candidate is called directly after converting
//     each argument to its declared parameter type
//   - a single varargs candidate matches the fixed prefix positionally and
//     packs the trailing arguments into an array of the varargs element type
//   - several candidates go through the selector, which converts the
//     arguments against each candidate and succeeds only when exactly one
//     accepts them
//
// No candidate of the requested arity yields KindArity; a failed or
// ambiguous selection yields KindNoApplicable. Managed exceptions raised by
// the callee surface as *errors.ManagedFault.
package invoke
