// Package stdlib implements tremor-script's intrinsic function
// modules (array, record, string, json, …). Each module registers its
// functions into a Registry that eval.Context dispatches module::name
// calls through, mirroring the teacher's engine.Catalog pattern of a
// name-keyed function registry built up by independent Register calls
// (engine.go, before it was trimmed as test-only scaffolding).
package stdlib

import (
	"fmt"

	"github.com/tremor-rt/tremor/value"
)

// Func is one intrinsic implementation: a fixed or variadic argument
// list in, a single Value out.
type Func func(args []value.Value) (value.Value, error)

// Registry is a name-keyed table of intrinsic functions, keyed by
// "module::name" (top-level functions like `type::of` use module
// "type", bare functions like `len` use an empty module).
type Registry struct {
	fns map[string]Func
}

func key(module, name string) string {
	if module == "" {
		return name
	}
	return module + "::" + name
}

// Register adds fn under module::name, overwriting any previous
// registration (tests commonly register fakes this way).
func (r *Registry) Register(module, name string, fn Func) {
	if r.fns == nil {
		r.fns = make(map[string]Func)
	}
	r.fns[key(module, name)] = fn
}

// Has reports whether module::name is registered.
func (r *Registry) Has(module, name string) bool {
	_, ok := r.fns[key(module, name)]
	return ok
}

// Clone returns a shallow copy whose function table can be extended
// with Register without mutating the receiver — used by the pipeline
// runtime to add one windowed select's `aggr::*` bindings for the
// lifetime of a single emission.
func (r *Registry) Clone() *Registry {
	out := &Registry{fns: make(map[string]Func, len(r.fns))}
	for k, v := range r.fns {
		out.fns[k] = v
	}
	return out
}

// Call invokes module::name with args.
func (r *Registry) Call(module, name string, args []value.Value) (value.Value, error) {
	fn, ok := r.fns[key(module, name)]
	if !ok {
		return nil, fmt.Errorf("no intrinsic function `%s`", key(module, name))
	}
	return fn(args)
}

// NewRegistry builds the default Registry with every built-in module
// wired in (spec.md §6, expanded by SPEC_FULL.md's DOMAIN STACK
// table).
func NewRegistry() *Registry {
	r := &Registry{}
	registerArray(r)
	registerRecord(r)
	registerStringModule(r)
	registerJSON(r)
	registerBase64(r)
	registerURL(r)
	registerRegex(r)
	registerMath(r)
	registerTypeModule(r)
	registerRandom(r)
	registerRangeModule(r)
	registerPathModule(r)
	registerSizeModule(r)
	registerSystem(r)
	registerOrigin(r)
	registerChash(r)
	return r
}

func argErr(module, name string, want, got int) error {
	return fmt.Errorf("%s::%s expects %d argument(s), got %d", module, name, want, got)
}

func typeErr(module, name string, i int, want string, v value.Value) error {
	return fmt.Errorf("%s::%s argument %d must be %s, got %s", module, name, i, want, v.Kind())
}
