package stdlib

import (
	"net/url"

	"github.com/tremor-rt/tremor/value"
)

// registerURL wraps net/url for query-string escaping and full URL
// parsing into a record of its components. No pack repo imports a
// third-party URL library over the standard one.
func registerURL(r *Registry) {
	r.Register("url", "encode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("url", "encode", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("url", "encode", 0, "string", args[0])
		}
		return value.Str(url.QueryEscape(string(s))), nil
	})
	r.Register("url", "decode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("url", "decode", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("url", "decode", 0, "string", args[0])
		}
		out, err := url.QueryUnescape(string(s))
		if err != nil {
			return nil, err
		}
		return value.Str(out), nil
	})
	r.Register("url", "parse", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("url", "parse", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("url", "parse", 0, "string", args[0])
		}
		u, err := url.Parse(string(s))
		if err != nil {
			return nil, err
		}
		rec := value.NewRecord()
		rec.Set("scheme", value.Str(u.Scheme))
		rec.Set("host", value.Str(u.Hostname()))
		rec.Set("port", value.Str(u.Port()))
		rec.Set("path", value.Str(u.Path))
		rec.Set("query", value.Str(u.RawQuery))
		rec.Set("fragment", value.Str(u.Fragment))
		return rec, nil
	})
}
