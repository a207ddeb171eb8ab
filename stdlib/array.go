package stdlib

import (
	"sort"

	"github.com/tremor-rt/tremor/value"
)

func registerArray(r *Registry) {
	r.Register("array", "len", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "len", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "len", 0, "array", args[0])
		}
		return value.Int(len(a.Items)), nil
	})
	r.Register("array", "is_empty", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "is_empty", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "is_empty", 0, "array", args[0])
		}
		return value.Bool(len(a.Items) == 0), nil
	})
	r.Register("array", "contains", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("array", "contains", 2, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "contains", 0, "array", args[0])
		}
		for _, item := range a.Items {
			if value.Equal(item, args[1]) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	})
	r.Register("array", "push", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("array", "push", 2, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "push", 0, "array", args[0])
		}
		out := a.Clone().(*value.Array)
		out.Items = append(out.Items, args[1])
		return out, nil
	})
	r.Register("array", "reverse", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "reverse", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "reverse", 0, "array", args[0])
		}
		out := a.Clone().(*value.Array)
		for i, j := 0, len(out.Items)-1; i < j; i, j = i+1, j-1 {
			out.Items[i], out.Items[j] = out.Items[j], out.Items[i]
		}
		return out, nil
	})
	r.Register("array", "sort", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "sort", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "sort", 0, "array", args[0])
		}
		out := a.Clone().(*value.Array)
		sort.SliceStable(out.Items, func(i, j int) bool {
			return lessValue(out.Items[i], out.Items[j])
		})
		return out, nil
	})
	r.Register("array", "coalesce", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "coalesce", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "coalesce", 0, "array", args[0])
		}
		return value.Coalesce(a), nil
	})
	r.Register("array", "flatten", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("array", "flatten", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "flatten", 0, "array", args[0])
		}
		out := &value.Array{}
		flattenInto(out, a)
		return out, nil
	})
	r.Register("array", "join", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("array", "join", 2, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "join", 0, "array", args[0])
		}
		sep, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("array", "join", 1, "string", args[1])
		}
		out := ""
		for i, item := range a.Items {
			if i > 0 {
				out += string(sep)
			}
			s, ok := item.(value.Str)
			if !ok {
				return nil, typeErr("array", "join", 0, "array of strings", item)
			}
			out += string(s)
		}
		return value.Str(out), nil
	})
	r.Register("array", "zip", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("array", "zip", 2, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("array", "zip", 0, "array", args[0])
		}
		b, ok := args[1].(*value.Array)
		if !ok {
			return nil, typeErr("array", "zip", 1, "array", args[1])
		}
		n := len(a.Items)
		if len(b.Items) < n {
			n = len(b.Items)
		}
		out := &value.Array{}
		for i := 0; i < n; i++ {
			out.Items = append(out.Items, value.NewArray(a.Items[i], b.Items[i]))
		}
		return out, nil
	})
}

func flattenInto(out *value.Array, a *value.Array) {
	for _, item := range a.Items {
		if sub, ok := item.(*value.Array); ok {
			flattenInto(out, sub)
		} else {
			out.Items = append(out.Items, item)
		}
	}
}

func lessValue(a, b value.Value) bool {
	af, aok := numericOf(a)
	bf, bok := numericOf(b)
	if aok && bok {
		return af < bf
	}
	as, aIsStr := a.(value.Str)
	bs, bIsStr := b.(value.Str)
	if aIsStr && bIsStr {
		return as < bs
	}
	return false
}

func numericOf(v value.Value) (float64, bool) {
	switch x := v.(type) {
	case value.Int:
		return float64(x), true
	case value.Float:
		return float64(x), true
	}
	return 0, false
}
