package stdlib

import (
	"fmt"

	"github.com/tremor-rt/tremor/value"
)

// registerOrigin implements origin::{scheme,host,port,path,as_uri_string}
// over the origin-uri record a connector attaches to an event's meta
// slot: {"scheme":..,"host":..,"port":..,"path":..}.
func registerOrigin(r *Registry) {
	field := func(name string) Func {
		return func(args []value.Value) (value.Value, error) {
			if len(args) != 1 {
				return nil, argErr("origin", name, 1, len(args))
			}
			rec, ok := args[0].(*value.Record)
			if !ok {
				return nil, typeErr("origin", name, 0, "record", args[0])
			}
			return rec.Get(name), nil
		}
	}
	r.Register("origin", "scheme", field("scheme"))
	r.Register("origin", "host", field("host"))
	r.Register("origin", "port", field("port"))
	r.Register("origin", "path", field("path"))
	r.Register("origin", "as_uri_string", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("origin", "as_uri_string", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("origin", "as_uri_string", 0, "record", args[0])
		}
		scheme, _ := rec.Get("scheme").(value.Str)
		host, _ := rec.Get("host").(value.Str)
		path, _ := rec.Get("path").(value.Str)
		port := rec.Get("port")
		if _, isNull := port.(value.Null); isNull {
			return value.Str(fmt.Sprintf("%s://%s%s", scheme, host, path)), nil
		}
		return value.Str(fmt.Sprintf("%s://%s:%v%s", scheme, host, port, path)), nil
	})
}
