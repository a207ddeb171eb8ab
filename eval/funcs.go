package eval

import (
	"fmt"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/errs"
	"github.com/tremor-rt/tremor/value"
)

func (it *interp) evalTryDefault(n *ast.Call) (value.Value, flow, error) {
	primary, fl, err := it.eval(n.Args[0])
	if err != nil {
		fallback, ffl, ferr := it.eval(n.Args[1])
		if ferr != nil {
			return nil, noFlow, ferr
		}
		return fallback, ffl, nil
	}
	if fl.kind != flowNone {
		return primary, fl, nil
	}
	if _, isNull := primary.(value.Null); isNull {
		fallback, ffl, ferr := it.eval(n.Args[1])
		if ferr != nil {
			return nil, noFlow, ferr
		}
		return fallback, ffl, nil
	}
	return primary, noFlow, nil
}

func (it *interp) evalCall(n *ast.Call) (value.Value, flow, error) {
	// path::try_default is special: a BadAccess while evaluating its
	// first argument is the normal "use the fallback" case, not a
	// script-terminating error.
	if n.Module == "path" && n.Name == "try_default" && len(n.Args) == 2 {
		return it.evalTryDefault(n)
	}

	args := make([]value.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v, fl, err := it.eval(a)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		args = append(args, v)
	}

	if n.Module != "" {
		if it.ctx.Registry == nil {
			return nil, noFlow, errs.Internal.New("no intrinsic registry configured")
		}
		v, err := it.ctx.Registry.Call(n.Module, n.Name, args)
		if err != nil {
			return nil, noFlow, errs.Type.New(err.Error())
		}
		return v, noFlow, nil
	}

	fn, ok := it.ctx.Fns[n.Name]
	if !ok {
		return nil, noFlow, errs.Compile.New(fmt.Sprintf("no such function `%s`", n.Name))
	}
	if len(fn.Params) != len(args) {
		return nil, noFlow, errs.Type.New(fmt.Sprintf("%s expects %d arguments, got %d", n.Name, len(fn.Params), len(args)))
	}

	it.depth++
	if it.depth > it.ctx.RecursionLimit {
		it.depth--
		return nil, noFlow, errs.Recursion.New(fmt.Sprintf("recursion limit (%d) exceeded calling `%s`", it.ctx.RecursionLimit, n.Name))
	}
	defer func() { it.depth-- }()

	// User functions are pure/first-order (spec.md §4.C): a body must
	// only see its own bound parameters, never the caller's locals, so
	// evaluation runs against a fresh stack rather than one pushed atop
	// it.locals.
	savedLocals := it.locals
	it.locals = nil
	it.pushScope()
	for i, p := range fn.Params {
		it.bind(p, args[i])
	}
	v, fl, err := it.eval(fn.Body)
	it.locals = savedLocals
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return nil, noFlow, errs.Compile.New("emit/drop is not permitted inside a user-defined function body")
	}
	return v, noFlow, nil
}
