// Package eval implements the tremor-script evaluator: expressions,
// match, let, for, user/intrinsic functions, and emit/drop, threaded
// against the four-slot event envelope (spec.md §4.C).
package eval

import (
	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/errs"
	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

// Envelope is the (event, state, meta, args) tuple threaded through
// evaluation (spec.md §3). State persists across Run calls on the
// same operator; Event/Meta/Args are supplied fresh per event.
type Envelope struct {
	Event value.Value
	State value.Value
	Meta  value.Value
	Args  value.Value
}

// Emission is one (value, port) pair produced by `emit` or by the
// implicit "terminate on port out" rule.
type Emission struct {
	Value value.Value
	Port  string
}

// Result is the outcome of running a script against an Envelope.
type Result struct {
	Envelope  *Envelope
	Emissions []Emission
}

// Context configures one evaluation: the intrinsic registry, the
// user-defined functions in scope, and the tail-recursion depth limit
// (default 1024, spec.md §4.C) below which user function calls are
// permitted.
type Context struct {
	Registry       *stdlib.Registry
	Fns            map[string]*ast.FnDef
	RecursionLimit int
}

// NewContext builds a Context from a parsed Script's own fn
// definitions (plus any closed-over ones from an enclosing scope) and
// the default intrinsic registry.
func NewContext(fns []*ast.FnDef, reg *stdlib.Registry) *Context {
	return NewContextWithLimit(fns, reg, 1024)
}

// NewContextWithLimit is NewContext with an operator-supplied
// recursion depth limit (spec.md §4.C, overridable via `tremor server
// run --recursion-limit`).
func NewContextWithLimit(fns []*ast.FnDef, reg *stdlib.Registry, limit int) *Context {
	m := make(map[string]*ast.FnDef, len(fns))
	for _, fn := range fns {
		m[fn.Name] = fn
	}
	if limit <= 0 {
		limit = 1024
	}
	return &Context{Registry: reg, Fns: m, RecursionLimit: limit}
}

// flowKind is the short-circuit signal threaded out of expression
// evaluation instead of relying on host exceptions (spec.md §9 design
// note: "never rely on host exceptions for steady-state control
// flow").
type flowKind int

const (
	flowNone flowKind = iota
	flowEmit
	flowDrop
)

type flow struct {
	kind     flowKind
	emission Emission
}

type interp struct {
	ctx    *Context
	env    *Envelope
	locals []map[string]value.Value
	depth  int
}

func (it *interp) pushScope() { it.locals = append(it.locals, map[string]value.Value{}) }
func (it *interp) popScope()  { it.locals = it.locals[:len(it.locals)-1] }

func (it *interp) bind(name string, v value.Value) {
	it.locals[len(it.locals)-1][name] = v
}

func (it *interp) lookupLocal(name string) (value.Value, bool) {
	for i := len(it.locals) - 1; i >= 0; i-- {
		if v, ok := it.locals[i][name]; ok {
			return v, true
		}
	}
	return nil, false
}

// Run evaluates every statement in script against env in order,
// applying the slot-assignment and emit/drop rules. On a normal fall
// off the end, the current event is emitted on port "out" (spec.md
// §4.C termination rule).
func Run(script *ast.Script, env *Envelope, ctx *Context) (*Result, error) {
	it := &interp{ctx: ctx, env: env}
	it.pushScope()
	defer it.popScope()

	res := &Result{Envelope: env}
	for _, stmt := range script.Body {
		_, fl, err := it.eval(stmt)
		if err != nil {
			return nil, err
		}
		switch fl.kind {
		case flowEmit:
			res.Emissions = append(res.Emissions, fl.emission)
			return res, nil
		case flowDrop:
			return res, nil
		}
	}
	res.Emissions = append(res.Emissions, Emission{Value: env.Event, Port: "out"})
	return res, nil
}

// EvalExpr evaluates a single expression (a select's where/having
// predicate, a group-by key expression, or a projected field) against
// env with locals pre-bound into its own scope — used by the query
// operators to expose `group`/`window` and to resolve `aggr::*` calls
// through a per-emission Registry (spec.md §4.E "Result bindings").
func EvalExpr(e ast.Expr, env *Envelope, ctx *Context, locals map[string]value.Value) (value.Value, error) {
	it := &interp{ctx: ctx, env: env}
	it.pushScope()
	defer it.popScope()
	for k, v := range locals {
		it.bind(k, v)
	}
	v, fl, err := it.eval(e)
	if err != nil {
		return nil, err
	}
	if fl.kind != flowNone {
		return nil, errs.Compile.New("emit/drop is not permitted in a select expression")
	}
	return v, nil
}
