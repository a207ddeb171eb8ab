package eval

import (
	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/value"
)

// matchPattern tests subject against pat, binding any names the
// pattern captures into the current (already-pushed) scope. A failed
// match may still have bound some names; callers always pop the scope
// regardless of the boolean result.
func (it *interp) matchPattern(pat ast.Pattern, subject value.Value) (bool, error) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		return true, nil
	case *ast.BindPattern:
		it.bind(p.Name, subject)
		return true, nil
	case *ast.LiteralPattern:
		v, fl, err := it.eval(p.Value)
		if err != nil {
			return false, err
		}
		if fl.kind != flowNone {
			return false, nil
		}
		return value.Equal(v, subject), nil
	case *ast.RecordPattern:
		return it.matchRecordPattern(p, subject)
	case *ast.ArrayPattern:
		return it.matchArrayPattern(p, subject)
	}
	return false, nil
}

func (it *interp) matchRecordPattern(p *ast.RecordPattern, subject value.Value) (bool, error) {
	rec, ok := subject.(*value.Record)
	if !ok {
		return false, nil
	}
	for _, f := range p.Fields {
		switch f.Op {
		case "present":
			if !rec.Contains(f.Key) {
				return false, nil
			}
		case "absent":
			if rec.Contains(f.Key) {
				return false, nil
			}
		case "":
			if f.Nested != nil {
				if !rec.Contains(f.Key) {
					return false, nil
				}
				ok, err := it.matchPattern(f.Nested, rec.Get(f.Key))
				if err != nil || !ok {
					return false, err
				}
			}
		default:
			if !rec.Contains(f.Key) {
				return false, nil
			}
			rv, fl, err := it.eval(f.Value)
			if err != nil {
				return false, err
			}
			if fl.kind != flowNone {
				return false, nil
			}
			ok, err := matchesOp(f.Op, rec.Get(f.Key), rv)
			if err != nil || !ok {
				return false, err
			}
		}
	}
	return true, nil
}

func matchesOp(op string, a, b value.Value) (bool, error) {
	switch op {
	case "==":
		return value.Equal(a, b), nil
	case "!=":
		return !value.Equal(a, b), nil
	case "<", "<=", ">", ">=":
		r, _, err := compareOrdered(op, a, b)
		if err != nil {
			return false, nil // a type mismatch in a guard is simply a non-match
		}
		return bool(r.(value.Bool)), nil
	}
	return false, nil
}

func (it *interp) matchArrayPattern(p *ast.ArrayPattern, subject value.Value) (bool, error) {
	arr, ok := subject.(*value.Array)
	if !ok {
		return false, nil
	}
	if !p.Prefix && len(arr.Items) != len(p.Items) {
		return false, nil
	}
	if p.Prefix && len(arr.Items) < len(p.Items) {
		return false, nil
	}
	for i, item := range p.Items {
		ok, err := it.matchPattern(item, arr.Items[i])
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
