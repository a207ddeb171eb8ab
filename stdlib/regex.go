package stdlib

import (
	"regexp"

	"github.com/tremor-rt/tremor/value"
)

// registerRegex wraps regexp, the closest Go analogue of tremor's RE2
// based `re` module (the original's Rust `regex` crate is itself
// RE2-derived, so semantics line up without a third-party engine).
func registerRegex(r *Registry) {
	r.Register("re", "is_match", func(args []value.Value) (value.Value, error) {
		re, s, err := compileArgs("is_match", args)
		if err != nil {
			return nil, err
		}
		return value.Bool(re.MatchString(s)), nil
	})
	r.Register("re", "match", func(args []value.Value) (value.Value, error) {
		re, s, err := compileArgs("match", args)
		if err != nil {
			return nil, err
		}
		m := re.FindStringSubmatch(s)
		out := &value.Array{}
		for _, g := range m {
			out.Items = append(out.Items, value.Str(g))
		}
		return out, nil
	})
	r.Register("re", "replace", func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, argErr("re", "replace", 3, len(args))
		}
		pattern, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("re", "replace", 0, "string", args[0])
		}
		s, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("re", "replace", 1, "string", args[1])
		}
		repl, ok := args[2].(value.Str)
		if !ok {
			return nil, typeErr("re", "replace", 2, "string", args[2])
		}
		re, err := regexp.Compile(string(pattern))
		if err != nil {
			return nil, err
		}
		return value.Str(re.ReplaceAllString(string(s), string(repl))), nil
	})
}

func compileArgs(name string, args []value.Value) (*regexp.Regexp, string, error) {
	if len(args) != 2 {
		return nil, "", argErr("re", name, 2, len(args))
	}
	pattern, ok := args[0].(value.Str)
	if !ok {
		return nil, "", typeErr("re", name, 0, "string", args[0])
	}
	s, ok := args[1].(value.Str)
	if !ok {
		return nil, "", typeErr("re", name, 1, "string", args[1])
	}
	re, err := regexp.Compile(string(pattern))
	if err != nil {
		return nil, "", err
	}
	return re, string(s), nil
}
