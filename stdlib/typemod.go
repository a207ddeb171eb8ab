package stdlib

import (
	"github.com/spf13/cast"
	"github.com/tremor-rt/tremor/value"
)

// registerTypeModule implements type::of and the type::as_* coercions
// using spf13/cast, the same permissive-coercion library the teacher
// already pulls in for its expression package's scalar conversions.
func registerTypeModule(r *Registry) {
	r.Register("type", "of", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "of", 1, len(args))
		}
		return value.Str(args[0].Kind()), nil
	})
	r.Register("type", "is_null", isKind("null"))
	r.Register("type", "is_bool", isKind("bool"))
	r.Register("type", "is_integer", isKind("integer"))
	r.Register("type", "is_float", isKind("float"))
	r.Register("type", "is_string", isKind("string"))
	r.Register("type", "is_array", isKind("array"))
	r.Register("type", "is_record", isKind("record"))
	r.Register("type", "is_binary", isKind("binary"))
	r.Register("type", "is_number", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "is_number", 1, len(args))
		}
		k := args[0].Kind()
		return value.Bool(k == "integer" || k == "float"), nil
	})

	r.Register("type", "as_string", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "as_string", 1, len(args))
		}
		s, err := cast.ToStringE(toGo(args[0]))
		if err != nil {
			return nil, err
		}
		return value.Str(s), nil
	})
	r.Register("type", "as_int", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "as_int", 1, len(args))
		}
		i, err := cast.ToInt64E(toGo(args[0]))
		if err != nil {
			return nil, err
		}
		return value.Int(i), nil
	})
	r.Register("type", "as_float", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "as_float", 1, len(args))
		}
		f, err := cast.ToFloat64E(toGo(args[0]))
		if err != nil {
			return nil, err
		}
		return value.Float(f), nil
	})
	r.Register("type", "as_bool", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "as_bool", 1, len(args))
		}
		b, err := cast.ToBoolE(toGo(args[0]))
		if err != nil {
			return nil, err
		}
		return value.Bool(b), nil
	})
}

func isKind(kind string) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("type", "is_"+kind, 1, len(args))
		}
		return value.Bool(args[0].Kind() == kind), nil
	}
}
