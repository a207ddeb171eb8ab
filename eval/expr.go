package eval

import (
	"fmt"

	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/errs"
	"github.com/tremor-rt/tremor/value"
)

var noFlow = flow{kind: flowNone}

// eval dispatches on the dynamic type of an ast.Expr. It returns the
// expression's value, a control-flow signal (for emit/drop), and
// an error. Errors are always wrapped in one of the errs.Kind values,
// and the first (innermost) failure is pinned to its source span so
// reporter.Format can locate it.
func (it *interp) eval(e ast.Expr) (value.Value, flow, error) {
	v, fl, err := it.evalNode(e)
	if err == nil {
		return v, fl, nil
	}
	if _, already := err.(*errs.Spanned); already {
		return v, fl, err
	}
	sp := e.Span()
	return v, fl, errs.At(err, sp.File, sp.Line, sp.Col)
}

func (it *interp) evalNode(e ast.Expr) (value.Value, flow, error) {
	switch n := e.(type) {
	case *ast.NullLit:
		return value.Null{}, noFlow, nil
	case *ast.BoolLit:
		return value.Bool(n.Value), noFlow, nil
	case *ast.IntLit:
		return value.Int(n.Value), noFlow, nil
	case *ast.FloatLit:
		return value.Float(n.Value), noFlow, nil
	case *ast.StringLit:
		return it.evalString(n)
	case *ast.BinaryLit:
		return it.evalBinaryLit(n)
	case *ast.ArrayLit:
		return it.evalArrayLit(n)
	case *ast.RecordLit:
		return it.evalRecordLit(n)
	case *ast.Path:
		v, err := it.evalPath(n)
		return v, noFlow, err
	case *ast.UnaryExpr:
		return it.evalUnary(n)
	case *ast.BinaryExpr:
		return it.evalBinary(n)
	case *ast.Call:
		return it.evalCall(n)
	case *ast.Let:
		return it.evalLet(n)
	case *ast.Match:
		return it.evalMatch(n)
	case *ast.For:
		return it.evalFor(n)
	case *ast.Emit:
		return it.evalEmit(n)
	case *ast.Drop:
		return value.Null{}, flow{kind: flowDrop}, nil
	case *ast.Block:
		return it.evalBlock(n)
	}
	return nil, noFlow, errs.Internal.New(fmt.Sprintf("unhandled node %T", e))
}

func (it *interp) evalBlock(b *ast.Block) (value.Value, flow, error) {
	var last value.Value = value.Null{}
	for _, s := range b.Stmts {
		v, fl, err := it.eval(s)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		last = v
	}
	return last, noFlow, nil
}

func (it *interp) evalString(n *ast.StringLit) (value.Value, flow, error) {
	out := ""
	for _, part := range n.Parts {
		if part.Expr == nil {
			out += part.Literal
			continue
		}
		v, fl, err := it.eval(part.Expr)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		out += stringify(v)
	}
	return value.Str(out), noFlow, nil
}

func stringify(v value.Value) string {
	switch x := v.(type) {
	case value.Str:
		return string(x)
	case value.Null:
		return "null"
	default:
		return fmt.Sprintf("%v", v)
	}
}

func (it *interp) evalBinaryLit(n *ast.BinaryLit) (value.Value, flow, error) {
	var out value.Bytes
	for _, seg := range n.Segments {
		v, fl, err := it.eval(seg.Value)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		i, ok := v.(value.Int)
		if !ok {
			return nil, noFlow, errs.Type.New("binary literal segments must be integers")
		}
		width := seg.Width
		if width == 0 {
			width = 8
		}
		out = appendBits(out, int64(i), width)
	}
	return out, noFlow, nil
}

// appendBits packs the low `width` bits of v, most-significant-byte
// first, matching tremor's `<< v:width >>` binary literal semantics.
func appendBits(out value.Bytes, v int64, width int) value.Bytes {
	if width < 64 {
		v &= int64(1)<<uint(width) - 1
	}
	nbytes := (width + 7) / 8
	for i := nbytes - 1; i >= 0; i-- {
		out = append(out, byte(v>>(uint(i)*8)))
	}
	return out
}

func (it *interp) evalArrayLit(n *ast.ArrayLit) (value.Value, flow, error) {
	items := make([]value.Value, 0, len(n.Items))
	for _, e := range n.Items {
		v, fl, err := it.eval(e)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		items = append(items, v)
	}
	return &value.Array{Items: items}, noFlow, nil
}

func (it *interp) evalRecordLit(n *ast.RecordLit) (value.Value, flow, error) {
	rec := value.NewRecord()
	for _, f := range n.Fields {
		kv, fl, err := it.eval(f.Key)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return kv, fl, nil
		}
		key, ok := kv.(value.Str)
		if !ok {
			return nil, noFlow, errs.Type.New("record keys must be strings")
		}
		vv, fl, err := it.eval(f.Value)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return vv, fl, nil
		}
		rec.Set(string(key), vv)
	}
	return rec, noFlow, nil
}

// evalPath resolves a Path's base slot then descends its (possibly
// dynamic) segments.
func (it *interp) evalPath(p *ast.Path) (value.Value, error) {
	root, err := it.pathRoot(p.Base)
	if err != nil {
		return nil, err
	}
	segs, err := it.resolveSegments(p.Segments)
	if err != nil {
		return nil, err
	}
	v, err := value.Get(root, segs)
	if err != nil {
		return nil, errs.BadAccess.New(err.Error())
	}
	return v, nil
}

func (it *interp) pathRoot(base string) (value.Value, error) {
	switch base {
	case "event":
		return it.env.Event, nil
	case "state":
		return it.env.State, nil
	case "meta":
		return it.env.Meta, nil
	case "args":
		return it.env.Args, nil
	}
	if v, ok := it.lookupLocal(base); ok {
		return v, nil
	}
	return nil, errs.BadAccess.New(fmt.Sprintf("Trying to access a non existing event key `%s`", base))
}

func (it *interp) resolveSegments(in []ast.PathSegment) ([]value.Segment, error) {
	out := make([]value.Segment, 0, len(in))
	for _, s := range in {
		if s.Index != nil {
			v, fl, err := it.eval(s.Index)
			if err != nil {
				return nil, err
			}
			if fl.kind != flowNone {
				return nil, errs.Internal.New("emit/drop not allowed in a path index")
			}
			iv, ok := v.(value.Int)
			if !ok {
				return nil, errs.Type.New("array index must be an integer")
			}
			out = append(out, value.Index(int(iv)))
		} else {
			out = append(out, value.Field(s.Field))
		}
	}
	return out, nil
}

func (it *interp) evalUnary(n *ast.UnaryExpr) (value.Value, flow, error) {
	v, fl, err := it.eval(n.X)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return v, fl, nil
	}
	switch n.Op {
	case "-":
		switch x := v.(type) {
		case value.Int:
			return -x, noFlow, nil
		case value.Float:
			return -x, noFlow, nil
		}
		return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot negate a %s", v.Kind()))
	case "not":
		b, ok := v.(value.Bool)
		if !ok {
			return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot negate a %s", v.Kind()))
		}
		return !b, noFlow, nil
	}
	return nil, noFlow, errs.Internal.New("unknown unary operator " + n.Op)
}

func (it *interp) evalBinary(n *ast.BinaryExpr) (value.Value, flow, error) {
	// and/or short-circuit and never evaluate Y unnecessarily.
	if n.Op == "and" || n.Op == "or" {
		lv, fl, err := it.eval(n.X)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return lv, fl, nil
		}
		lb, ok := lv.(value.Bool)
		if !ok {
			return nil, noFlow, errs.Type.New(fmt.Sprintf("expected bool, got %s", lv.Kind()))
		}
		if n.Op == "and" && !bool(lb) {
			return value.Bool(false), noFlow, nil
		}
		if n.Op == "or" && bool(lb) {
			return value.Bool(true), noFlow, nil
		}
		rv, fl, err := it.eval(n.Y)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return rv, fl, nil
		}
		rb, ok := rv.(value.Bool)
		if !ok {
			return nil, noFlow, errs.Type.New(fmt.Sprintf("expected bool, got %s", rv.Kind()))
		}
		return rb, noFlow, nil
	}

	lv, fl, err := it.eval(n.X)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return lv, fl, nil
	}
	rv, fl, err := it.eval(n.Y)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return rv, fl, nil
	}

	switch n.Op {
	case "==":
		return value.Bool(value.Equal(lv, rv)), noFlow, nil
	case "!=":
		return value.Bool(!value.Equal(lv, rv)), noFlow, nil
	case "<", "<=", ">", ">=":
		return compareOrdered(n.Op, lv, rv)
	case "+", "-", "*", "/", "%":
		return arith(n.Op, lv, rv)
	}
	return nil, noFlow, errs.Internal.New("unknown binary operator " + n.Op)
}

func compareOrdered(op string, a, b value.Value) (value.Value, flow, error) {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if aok && bok {
		return value.Bool(cmpFloat(op, af, bf)), noFlow, nil
	}
	as, aIsStr := a.(value.Str)
	bs, bIsStr := b.(value.Str)
	if aIsStr && bIsStr {
		return value.Bool(cmpString(op, string(as), string(bs))), noFlow, nil
	}
	return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot compare %s with %s", a.Kind(), b.Kind()))
}

func cmpFloat(op string, a, b float64) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func cmpString(op string, a, b string) bool {
	switch op {
	case "<":
		return a < b
	case "<=":
		return a <= b
	case ">":
		return a > b
	case ">=":
		return a >= b
	}
	return false
}

func toFloat(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x), true
	case value.Float:
		return float64(x), true
	}
	return 0, false
}

// arith applies +,-,*,/,% with tremor's no-silent-promotion rule
// (data model invariant iv): two Ints stay Int, two Floats stay
// Float, an Int mixed with a Float is a Type error, and division or
// modulo by zero is an Arith error rather than Inf/NaN.
func arith(op string, a, b value.Value) (value.Value, flow, error) {
	ai, aIsInt := a.(value.Int)
	bi, bIsInt := b.(value.Int)
	if aIsInt && bIsInt {
		if (op == "/" || op == "%") && bi == 0 {
			return nil, noFlow, errs.Arith.New("division by zero")
		}
		switch op {
		case "+":
			return ai + bi, noFlow, nil
		case "-":
			return ai - bi, noFlow, nil
		case "*":
			return ai * bi, noFlow, nil
		case "/":
			return ai / bi, noFlow, nil
		case "%":
			return ai % bi, noFlow, nil
		}
	}
	if aIsInt || bIsInt {
		return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot apply %s to %s and %s", op, a.Kind(), b.Kind()))
	}
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot apply %s to %s and %s", op, a.Kind(), b.Kind()))
	}
	switch op {
	case "+":
		return value.Float(af + bf), noFlow, nil
	case "-":
		return value.Float(af - bf), noFlow, nil
	case "*":
		return value.Float(af * bf), noFlow, nil
	case "/":
		if bf == 0 {
			return nil, noFlow, errs.Arith.New("division by zero")
		}
		return value.Float(af / bf), noFlow, nil
	case "%":
		if bf == 0 {
			return nil, noFlow, errs.Arith.New("division by zero")
		}
		return value.Float(float64(int64(af) % int64(bf))), noFlow, nil
	}
	return nil, noFlow, errs.Internal.New("unknown arithmetic operator " + op)
}

func (it *interp) evalLet(n *ast.Let) (value.Value, flow, error) {
	v, fl, err := it.eval(n.Value)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return v, fl, nil
	}
	if err := it.assign(n.Target, v); err != nil {
		return nil, noFlow, err
	}
	return v, noFlow, nil
}

// assign writes v into the slot/local named by target, following the
// no-wrap rule (spec.md §4.A): assigning `let event.x = v` never
// reboxes v into `{"x": v}`, it writes exactly v at that path.
func (it *interp) assign(target *ast.Path, v value.Value) error {
	segs, err := it.resolveSegments(target.Segments)
	if err != nil {
		return err
	}
	switch target.Base {
	case "event":
		nv, err := value.Set(it.env.Event, segs, v)
		if err != nil {
			return errs.BadAccess.New(err.Error())
		}
		it.env.Event = nv
	case "state":
		nv, err := value.Set(it.env.State, segs, v)
		if err != nil {
			return errs.BadAccess.New(err.Error())
		}
		it.env.State = nv
	case "meta":
		nv, err := value.Set(it.env.Meta, segs, v)
		if err != nil {
			return errs.BadAccess.New(err.Error())
		}
		it.env.Meta = nv
	case "args":
		return errs.BadAccess.New("args is read-only")
	default:
		if len(segs) == 0 {
			it.bind(target.Base, v)
			return nil
		}
		cur, ok := it.lookupLocal(target.Base)
		if !ok {
			cur = value.Null{}
		}
		nv, err := value.Set(cur, segs, v)
		if err != nil {
			return errs.BadAccess.New(err.Error())
		}
		it.bind(target.Base, nv)
	}
	return nil
}

func (it *interp) evalEmit(n *ast.Emit) (value.Value, flow, error) {
	val := it.env.Event
	if n.Value != nil {
		v, fl, err := it.eval(n.Value)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		val = v
	}
	port := "out"
	if n.Port != nil {
		v, fl, err := it.eval(n.Port)
		if err != nil {
			return nil, noFlow, err
		}
		if fl.kind != flowNone {
			return v, fl, nil
		}
		s, ok := v.(value.Str)
		if !ok {
			return nil, noFlow, errs.Type.New("emit port must be a string")
		}
		port = string(s)
	}
	return val, flow{kind: flowEmit, emission: Emission{Value: val, Port: port}}, nil
}

func (it *interp) evalFor(n *ast.For) (value.Value, flow, error) {
	iv, fl, err := it.eval(n.Iterable)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return iv, fl, nil
	}
	out := &value.Array{}
	switch coll := iv.(type) {
	case *value.Array:
		for i, item := range coll.Items {
			v, fl, err := it.runForBody(n, value.Int(i), item)
			if err != nil {
				return nil, noFlow, err
			}
			if fl.kind != flowNone {
				return v, fl, nil
			}
			out.Items = append(out.Items, v)
		}
	case *value.Record:
		for _, k := range coll.Keys() {
			v, fl, err := it.runForBody(n, value.Str(k), coll.Get(k))
			if err != nil {
				return nil, noFlow, err
			}
			if fl.kind != flowNone {
				return v, fl, nil
			}
			out.Items = append(out.Items, v)
		}
	default:
		return nil, noFlow, errs.Type.New(fmt.Sprintf("cannot iterate a %s", iv.Kind()))
	}
	return out, noFlow, nil
}

func (it *interp) runForBody(n *ast.For, key, val value.Value) (value.Value, flow, error) {
	it.pushScope()
	defer it.popScope()
	it.bind(n.KeyName, key)
	it.bind(n.ValName, val)
	return it.eval(n.Body)
}

func (it *interp) evalMatch(n *ast.Match) (value.Value, flow, error) {
	subject, fl, err := it.eval(n.Subject)
	if err != nil {
		return nil, noFlow, err
	}
	if fl.kind != flowNone {
		return subject, fl, nil
	}
	for _, c := range n.Cases {
		it.pushScope()
		ok, err := it.matchPattern(c.Pattern, subject)
		if err != nil {
			it.popScope()
			return nil, noFlow, err
		}
		if ok && c.Guard != nil {
			gv, gfl, gerr := it.eval(c.Guard)
			if gerr != nil {
				it.popScope()
				return nil, noFlow, gerr
			}
			if gfl.kind != flowNone {
				it.popScope()
				return gv, gfl, nil
			}
			gb, isBool := gv.(value.Bool)
			ok = isBool && bool(gb)
		}
		if !ok {
			it.popScope()
			continue
		}
		v, rfl, err := it.eval(c.Body)
		it.popScope()
		return v, rfl, err
	}
	return it.eval(n.Default)
}
