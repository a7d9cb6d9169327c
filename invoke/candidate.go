package invoke

import (
	"github.com/wippyai/hostinterop/convert"
	"github.com/wippyai/hostinterop/errors"
	"github.com/wippyai/hostinterop/managed"
)

// Candidate is one overload considered during resolution
type Candidate struct {
	Method  managed.Method
	Params  []managed.Type
	VarArgs bool
}

func candidatesOf(methods []managed.Method) []Candidate {
	if len(methods) == 0 {
		return nil
	}
	out := make([]Candidate, len(methods))
	for i, m := range methods {
		out[i] = Candidate{Method: m, Params: m.Params(), VarArgs: m.IsVarArgs()}
	}
	return out
}

// Lookup returns the candidates named name on t that accept arity
// arguments, exactly or through a varargs tail.
func Lookup(rt managed.Runtime, t managed.Type, name string, arity int, static bool) []Candidate {
	return candidatesOf(rt.LookupMethods(t, name, arity, static))
}

// IsInvocable reports whether t has a public method named name of any arity
func IsInvocable(rt managed.Runtime, t managed.Type, name string, static bool) bool {
	for _, m := range rt.Methods(t, static) {
		if m.Name() == name {
			return true
		}
	}
	return false
}

// Match converts args against the parameters of c. A varargs candidate
// accepts either an already materialized trailing array or the loose
// trailing arguments, which are packed into a fresh array.
func Match(rt managed.Runtime, c Candidate, args []any) ([]managed.Value, error) {
	n := len(c.Params)
	if !c.VarArgs {
		if len(args) != n {
			return nil, errors.Arity(errors.PhaseInvoke, c.Method.Declaring().Name(), c.Method.Name(), len(args))
		}
		return convertAll(rt, c.Params, args)
	}

	if len(args) < n-1 {
		return nil, errors.Arity(errors.PhaseInvoke, c.Method.Declaring().Name(), c.Method.Name(), len(args))
	}
	out := make([]managed.Value, n)
	for i := 0; i < n-1; i++ {
		v, err := convert.ToManaged(rt, args[i], c.Params[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}

	tail := c.Params[n-1]
	if len(args) == n {
		if v, err := convert.ToManaged(rt, args[n-1], tail); err == nil {
			out[n-1] = v
			return out, nil
		}
	}

	rest := args[n-1:]
	component := tail.Component()
	if component == nil {
		errors.Fatal("varargs parameter of %s is not an array", c.Method.Name())
	}
	arr := rt.NewArray(component, len(rest))
	for i, a := range rest {
		v, err := convert.ToManaged(rt, a, component)
		if err != nil {
			return nil, err
		}
		rt.ArraySet(arr, i, v)
	}
	out[n-1] = arr
	return out, nil
}

func convertAll(rt managed.Runtime, params []managed.Type, args []any) ([]managed.Value, error) {
	out := make([]managed.Value, len(args))
	for i, a := range args {
		v, err := convert.ToManaged(rt, a, params[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// Select runs the type-directed selector: every candidate is matched
// against args and the call is resolved only when exactly one matches.
// matched reports how many candidates accepted the arguments.
func Select(rt managed.Runtime, cands []Candidate, args []any) (c Candidate, converted []managed.Value, matched int) {
	for _, cand := range cands {
		conv, err := Match(rt, cand, args)
		if err != nil {
			continue
		}
		matched++
		if matched == 1 {
			c, converted = cand, conv
		}
	}
	if matched != 1 {
		return Candidate{}, nil, matched
	}
	return c, converted, matched
}
