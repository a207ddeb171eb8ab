package stdlib

import (
	"math"

	"github.com/tremor-rt/tremor/value"
)

func registerMath(r *Registry) {
	r.Register("math", "max", func(args []value.Value) (value.Value, error) {
		return mathBinFloat("max", math.Max, args)
	})
	r.Register("math", "min", func(args []value.Value) (value.Value, error) {
		return mathBinFloat("min", math.Min, args)
	})
	r.Register("math", "abs", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("math", "abs", 1, len(args))
		}
		switch x := args[0].(type) {
		case value.Int:
			if x < 0 {
				return -x, nil
			}
			return x, nil
		case value.Float:
			return value.Float(math.Abs(float64(x))), nil
		}
		return nil, typeErr("math", "abs", 0, "number", args[0])
	})
	r.Register("math", "ceil", mathUnaryFloat("ceil", math.Ceil))
	r.Register("math", "floor", mathUnaryFloat("floor", math.Floor))
	r.Register("math", "round", mathUnaryFloat("round", math.Round))
	r.Register("math", "sqrt", mathUnaryFloat("sqrt", math.Sqrt))
	r.Register("math", "pow", func(args []value.Value) (value.Value, error) {
		return mathBinFloat("pow", math.Pow, args)
	})
	r.Register("math", "ln", mathUnaryFloat("ln", math.Log))
	r.Register("math", "log10", mathUnaryFloat("log10", math.Log10))
	r.Register("math", "trunc", mathUnaryFloat("trunc", math.Trunc))
}

func mathUnaryFloat(name string, f func(float64) float64) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("math", name, 1, len(args))
		}
		x, ok := numericOf(args[0])
		if !ok {
			return nil, typeErr("math", name, 0, "number", args[0])
		}
		return value.Float(f(x)), nil
	}
}

func mathBinFloat(name string, f func(a, b float64) float64, args []value.Value) (value.Value, error) {
	if len(args) != 2 {
		return nil, argErr("math", name, 2, len(args))
	}
	a, aok := numericOf(args[0])
	b, bok := numericOf(args[1])
	if !aok {
		return nil, typeErr("math", name, 0, "number", args[0])
	}
	if !bok {
		return nil, typeErr("math", name, 1, "number", args[1])
	}
	ai, aIsInt := args[0].(value.Int)
	bi, bIsInt := args[1].(value.Int)
	if aIsInt && bIsInt && (name == "max" || name == "min") {
		if name == "max" {
			if ai > bi {
				return ai, nil
			}
			return bi, nil
		}
		if ai < bi {
			return ai, nil
		}
		return bi, nil
	}
	return value.Float(f(a, b)), nil
}
