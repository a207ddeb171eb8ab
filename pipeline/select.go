package pipeline

import (
	"github.com/tremor-rt/tremor/ast"
	"github.com/tremor-rt/tremor/eval"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/value"
)

func (p *Pipeline) runSelect(n *query.Node, event, meta value.Value, nowNs int64) ([]routed, error) {
	spec := n.Select
	env := &eval.Envelope{Event: event, Meta: meta, State: value.Null{}, Args: value.Null{}}
	ctx := eval.NewContextWithLimit(nil, p.Reg, p.RecursionLimit)

	if spec.Where != nil {
		ok, err := evalBool(spec.Where, env, ctx, nil)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	groupKey := groupKeyOf(spec, env, ctx)

	if len(spec.Windows) == 0 {
		return p.projectImmediate(n, spec, env, ctx, groupKey)
	}
	return p.projectWindowed(n, spec, env, ctx, groupKey, nowNs)
}

func groupKeyOf(spec *query.SelectSpec, env *eval.Envelope, ctx *eval.Context) value.Value {
	if len(spec.GroupBy) == 0 {
		return value.Null{}
	}
	parts := make([]value.Value, 0, len(spec.GroupBy))
	for _, e := range spec.GroupBy {
		v, err := eval.EvalExpr(e, env, ctx, nil)
		if err != nil {
			v = value.Null{}
		}
		parts = append(parts, v)
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return value.GroupKey(parts...)
}

func evalBool(e ast.Expr, env *eval.Envelope, ctx *eval.Context, locals map[string]value.Value) (bool, error) {
	v, err := eval.EvalExpr(e, env, ctx, locals)
	if err != nil {
		return false, err
	}
	b, ok := v.(value.Bool)
	return ok && bool(b), nil
}

// projectImmediate handles a non-windowed select: project every event
// that passes `where` straight through to "out".
func (p *Pipeline) projectImmediate(n *query.Node, spec *query.SelectSpec, env *eval.Envelope, ctx *eval.Context, groupKey value.Value) ([]routed, error) {
	locals := map[string]value.Value{"group": groupKey}
	rec, err := projectFields(spec.Fields, env, ctx, locals)
	if err != nil {
		return nil, err
	}
	return []routed{{port: "out", event: rec, meta: env.Meta}}, nil
}

// projectWindowed feeds one event through the select's tilt-frame
// cascade, projecting and emitting only when the outermost stage
// fires (spec.md §4.E).
func (p *Pipeline) projectWindowed(n *query.Node, spec *query.SelectSpec, env *eval.Envelope, ctx *eval.Context, groupKey value.Value, nowNs int64) ([]routed, error) {
	fields := make([]value.Value, len(spec.AggCalls))
	for i, ac := range spec.AggCalls {
		if ac.Field == nil {
			fields[i] = value.Null{}
			continue
		}
		v, err := eval.EvalExpr(ac.Field, env, ctx, nil)
		if err != nil {
			return nil, err
		}
		fields[i] = v
	}

	cascade := p.cascades[n.Name]
	fired, em, err := cascade.Ingest(groupKey, fields, nowNs)
	if err != nil {
		return nil, err
	}
	if !fired {
		return nil, nil
	}

	fireReg := p.Reg.Clone()
	for i, ac := range spec.AggCalls {
		val := em.Aggs[i].Emit()
		fireReg.Register("aggr::"+ac.Spec.Module, ac.Spec.Name, func(args []value.Value) (value.Value, error) {
			return val, nil
		})
	}
	fireCtx := eval.NewContextWithLimit(nil, fireReg, p.RecursionLimit)
	windowName := ""
	if len(spec.Windows) > 0 {
		windowName = spec.Windows[len(spec.Windows)-1].Name
	}
	locals := map[string]value.Value{"group": em.Key, "window": value.Str(windowName)}

	if spec.Having != nil {
		ok, err := evalBool(spec.Having, env, fireCtx, locals)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	rec, err := projectFields(spec.Fields, env, fireCtx, locals)
	if err != nil {
		return nil, err
	}
	return []routed{{port: "out", event: rec, meta: env.Meta}}, nil
}

func projectFields(fields []ast.RecordField, env *eval.Envelope, ctx *eval.Context, locals map[string]value.Value) (value.Value, error) {
	if fields == nil {
		return env.Event, nil
	}
	rec := value.NewRecord()
	for _, f := range fields {
		kv, err := eval.EvalExpr(f.Key, env, ctx, locals)
		if err != nil {
			return nil, err
		}
		k, ok := kv.(value.Str)
		if !ok {
			continue
		}
		vv, err := eval.EvalExpr(f.Value, env, ctx, locals)
		if err != nil {
			return nil, err
		}
		rec.Set(string(k), vv)
	}
	return rec, nil
}
