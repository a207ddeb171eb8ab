package stdlib

import (
	"fmt"

	"github.com/tremor-rt/tremor/value"
)

func registerRecord(r *Registry) {
	r.Register("record", "len", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "len", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "len", 0, "record", args[0])
		}
		return value.Int(rec.Len()), nil
	})
	r.Register("record", "is_empty", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "is_empty", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "is_empty", 0, "record", args[0])
		}
		return value.Bool(rec.Len() == 0), nil
	})
	r.Register("record", "contains", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "contains", 2, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "contains", 0, "record", args[0])
		}
		k, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("record", "contains", 1, "string", args[1])
		}
		return value.Bool(rec.Contains(string(k))), nil
	})
	r.Register("record", "keys", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "keys", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "keys", 0, "record", args[0])
		}
		out := &value.Array{}
		for _, k := range rec.Keys() {
			out.Items = append(out.Items, value.Str(k))
		}
		return out, nil
	})
	r.Register("record", "values", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "values", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "values", 0, "record", args[0])
		}
		out := &value.Array{}
		for _, k := range rec.Keys() {
			out.Items = append(out.Items, rec.Get(k))
		}
		return out, nil
	})
	r.Register("record", "set", func(args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, argErr("record", "set", 3, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "set", 0, "record", args[0])
		}
		k, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("record", "set", 1, "string", args[1])
		}
		out := rec.Clone().(*value.Record)
		out.Set(string(k), args[2])
		return out, nil
	})
	r.Register("record", "remove", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "remove", 2, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "remove", 0, "record", args[0])
		}
		k, ok := args[1].(value.Str)
		if !ok {
			return nil, typeErr("record", "remove", 1, "string", args[1])
		}
		out := rec.Clone().(*value.Record)
		out.Delete(string(k))
		return out, nil
	})
	r.Register("record", "merge", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "merge", 2, len(args))
		}
		a, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "merge", 0, "record", args[0])
		}
		b, ok := args[1].(*value.Record)
		if !ok {
			return nil, typeErr("record", "merge", 1, "record", args[1])
		}
		out := a.Clone().(*value.Record)
		for _, k := range b.Keys() {
			out.Set(k, b.Get(k))
		}
		return out, nil
	})
	r.Register("record", "to_array", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "to_array", 1, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "to_array", 0, "record", args[0])
		}
		out := &value.Array{}
		for _, k := range rec.Keys() {
			out.Items = append(out.Items, value.NewArray(value.Str(k), rec.Get(k)))
		}
		return out, nil
	})
	r.Register("record", "from_array", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("record", "from_array", 1, len(args))
		}
		a, ok := args[0].(*value.Array)
		if !ok {
			return nil, typeErr("record", "from_array", 0, "array", args[0])
		}
		out := value.NewRecord()
		for _, item := range a.Items {
			pair, ok := item.(*value.Array)
			if !ok || len(pair.Items) != 2 {
				return nil, fmt.Errorf("record::from_array expects an array of [key, value] pairs")
			}
			k, ok := pair.Items[0].(value.Str)
			if !ok {
				return nil, fmt.Errorf("record::from_array pair key must be a string")
			}
			out.Set(string(k), pair.Items[1])
		}
		return out, nil
	})
	r.Register("record", "extract", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "extract", 2, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "extract", 0, "record", args[0])
		}
		keys, ok := args[1].(*value.Array)
		if !ok {
			return nil, typeErr("record", "extract", 1, "array", args[1])
		}
		out := value.NewRecord()
		for _, kv := range keys.Items {
			k, ok := kv.(value.Str)
			if !ok {
				continue
			}
			if rec.Contains(string(k)) {
				out.Set(string(k), rec.Get(string(k)))
			}
		}
		return out, nil
	})
	r.Register("record", "combine", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "combine", 2, len(args))
		}
		a, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "combine", 0, "record", args[0])
		}
		b, ok := args[1].(*value.Record)
		if !ok {
			return nil, typeErr("record", "combine", 1, "record", args[1])
		}
		out := a.Clone().(*value.Record)
		for _, k := range b.Keys() {
			out.Set(k, b.Get(k))
		}
		return out, nil
	})
	r.Register("record", "rename", func(args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, argErr("record", "rename", 2, len(args))
		}
		rec, ok := args[0].(*value.Record)
		if !ok {
			return nil, typeErr("record", "rename", 0, "record", args[0])
		}
		mapping, ok := args[1].(*value.Record)
		if !ok {
			return nil, typeErr("record", "rename", 1, "record", args[1])
		}
		out := value.NewRecord()
		for _, k := range rec.Keys() {
			newKey := k
			if mapping.Contains(k) {
				if s, ok := mapping.Get(k).(value.Str); ok {
					newKey = string(s)
				}
			}
			out.Set(newKey, rec.Get(k))
		}
		return out, nil
	})
}
