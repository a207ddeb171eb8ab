package stdlib

import "github.com/tremor-rt/tremor/value"

// registerRangeModule implements range::range, producing an array of
// the consecutive integers in [lo, hi) — used by for-comprehensions
// that need an index range rather than an existing collection — and
// range::contains, testing lo <= v < hi.
func registerRangeModule(r *Registry) {
	r.Register("range", "contains", func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, argErr("range", "contains", 3, len(args))
		}
		lo, ok := args[0].(value.Int)
		if !ok {
			return nil, typeErr("range", "contains", 0, "integer", args[0])
		}
		hi, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("range", "contains", 1, "integer", args[1])
		}
		v, ok := args[2].(value.Int)
		if !ok {
			return nil, typeErr("range", "contains", 2, "integer", args[2])
		}
		return value.Bool(v >= lo && v < hi), nil
	})
	r.Register("range", "range", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("range", "range", 2, len(args))
		}
		lo, ok := args[0].(value.Int)
		if !ok {
			return nil, typeErr("range", "range", 0, "integer", args[0])
		}
		hi, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("range", "range", 1, "integer", args[1])
		}
		out := &value.Array{}
		for i := lo; i < hi; i++ {
			out.Items = append(out.Items, i)
		}
		return out, nil
	})
}
