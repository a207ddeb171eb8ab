package stdlib

import "github.com/tremor-rt/tremor/value"

// registerSizeModule implements the size:: unit helpers
// (size::kiB, size::MiB, ... size::EiB), each a one-argument function
// multiplying an integer count by its binary unit.
func registerSizeModule(r *Registry) {
	units := map[string]int64{
		"kiB": 1 << 10, "MiB": 1 << 20, "GiB": 1 << 30,
		"TiB": 1 << 40, "PiB": 1 << 50, "EiB": 1 << 60,
	}
	for name, mult := range units {
		mult := mult
		r.Register("size", name, func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, argErr("size", name, 1, len(args))
			}
			n, ok := args[0].(value.Int)
			if !ok {
				return nil, typeErr("size", name, 0, "integer", args[0])
			}
			return value.Int(int64(n) * mult), nil
		})
	}
}
