package stdlib

import "github.com/tremor-rt/tremor/value"

// registerPathModule provides path::try_default, used inside
// tremor-script expressions to get a value-or-fallback without the
// caller writing a match on a BadAccess.
func registerPathModule(r *Registry) {
	r.Register("path", "try_default", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("path", "try_default", 2, len(args))
		}
		if _, isNull := args[0].(value.Null); isNull {
			return args[1], nil
		}
		return args[0], nil
	})
}
