package stdlib

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tremor-rt/tremor/value"
)

func registerStringModule(r *Registry) {
	r.Register("string", "len", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", "len", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "len", 0, "string", args[0])
		}
		return value.Int(utf8.RuneCountInString(string(s))), nil
	})
	r.Register("string", "bytes", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", "bytes", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "bytes", 0, "string", args[0])
		}
		return value.Int(len(string(s))), nil
	})
	r.Register("string", "uppercase", strOp(strings.ToUpper, "uppercase"))
	r.Register("string", "lowercase", strOp(strings.ToLower, "lowercase"))
	r.Register("string", "trim", strOp(strings.TrimSpace, "trim"))
	r.Register("string", "trim_start", strOp(func(s string) string { return strings.TrimLeft(s, " \t\r\n") }, "trim_start"))
	r.Register("string", "trim_end", strOp(func(s string) string { return strings.TrimRight(s, " \t\r\n") }, "trim_end"))
	r.Register("string", "capitalize", strOp(func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	}, "capitalize"))
	r.Register("string", "from_utf8_lossy", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", "from_utf8_lossy", 1, len(args))
		}
		b, ok := args[0].(value.Bytes)
		if !ok {
			return nil, typeErr("string", "from_utf8_lossy", 0, "binary", args[0])
		}
		return value.Str(strings.ToValidUTF8(string(b), "�")), nil
	})
	r.Register("string", "into_binary", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", "into_binary", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "into_binary", 0, "string", args[0])
		}
		return value.Bytes(s), nil
	})
	r.Register("string", "substr", func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, argErr("string", "substr", 3, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "substr", 0, "string", args[0])
		}
		lo, ok := args[1].(value.Int)
		if !ok {
			return nil, typeErr("string", "substr", 1, "integer", args[1])
		}
		hi, ok := args[2].(value.Int)
		if !ok {
			return nil, typeErr("string", "substr", 2, "integer", args[2])
		}
		runes := []rune(string(s))
		if lo < 0 {
			lo = 0
		}
		if hi > value.Int(len(runes)) {
			hi = value.Int(len(runes))
		}
		if hi < lo {
			return value.Str(""), nil
		}
		return value.Str(string(runes[lo:hi])), nil
	})
	r.Register("string", "is_empty", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", "is_empty", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "is_empty", 0, "string", args[0])
		}
		return value.Bool(len(s) == 0), nil
	})
	r.Register("string", "contains", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("string", "contains", 2, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "contains", 0, "string", args[0])
		}
		sub, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("string", "contains", 1, "string", args[1])
		}
		return value.Bool(strings.Contains(string(s), string(sub))), nil
	})
	r.Register("string", "split", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("string", "split", 2, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "split", 0, "string", args[0])
		}
		sep, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("string", "split", 1, "string", args[1])
		}
		out := &value.Array{}
		for _, part := range strings.Split(string(s), string(sep)) {
			out.Items = append(out.Items, value.Str(part))
		}
		return out, nil
	})
	r.Register("string", "replace", func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, argErr("string", "replace", 3, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "replace", 0, "string", args[0])
		}
		from, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("string", "replace", 1, "string", args[1])
		}
		to, ok := args[2].(value.Str)
		if !ok {
			return nil, typeErr("string", "replace", 2, "string", args[2])
		}
		return value.Str(strings.ReplaceAll(string(s), string(from), string(to))), nil
	})
	r.Register("string", "format", func(args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, argErr("string", "format", 1, len(args))
		}
		tmpl, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", "format", 0, "string", args[0])
		}
		return value.Str(formatTemplate(string(tmpl), args[1:])), nil
	})
}

func strOp(f func(string) string, name string) Func {
	return func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("string", name, 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("string", name, 0, "string", args[0])
		}
		return value.Str(f(string(s))), nil
	}
}

// formatTemplate substitutes `{}` placeholders left to right; `{{`
// and `}}` escape to a literal brace (spec.md §8 scenario 5).
func formatTemplate(tmpl string, args []value.Value) string {
	var b strings.Builder
	ai := 0
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch {
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{' && i+1 < len(tmpl) && tmpl[i+1] == '}':
			if ai < len(args) {
				b.WriteString(stringifyArg(args[ai]))
				ai++
			}
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func stringifyArg(v value.Value) string {
	switch x := v.(type) {
	case value.Str:
		return string(x)
	case *value.Record:
		return x.String()
	case *value.Array:
		return x.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
