package stdlib

import (
	"encoding/base64"

	"github.com/tremor-rt/tremor/value"
)

// registerBase64 wraps encoding/base64. No pack repo pulls in a
// third-party base64 variant; the standard encoding is exactly
// RFC 4648 and needs no enrichment.
func registerBase64(r *Registry) {
	r.Register("base64", "encode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("base64", "encode", 1, len(args))
		}
		switch s := args[0].(type) {
		case value.Str:
			return value.Str(base64.StdEncoding.EncodeToString([]byte(s))), nil
		case value.Bytes:
			return value.Str(base64.StdEncoding.EncodeToString(s)), nil
		}
		return nil, typeErr("base64", "encode", 0, "string or binary", args[0])
	})
	r.Register("base64", "decode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("base64", "decode", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("base64", "decode", 0, "string", args[0])
		}
		out, err := base64.StdEncoding.DecodeString(string(s))
		if err != nil {
			return nil, err
		}
		return value.Str(out), nil
	})
}
