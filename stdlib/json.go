package stdlib

import (
	"encoding/json"

	"github.com/tremor-rt/tremor/value"
)

// registerJSON implements json::decode/json::encode on top of
// encoding/json. No third-party JSON library in the retrieved pack
// offers anything beyond what the standard decoder already gives a
// dynamically-tagged Value tree.
func registerJSON(r *Registry) {
	r.Register("json", "decode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("json", "decode", 1, len(args))
		}
		s, ok := args[0].(value.Str)
		if !ok {
			return nil, typeErr("json", "decode", 0, "string", args[0])
		}
		var raw interface{}
		if err := json.Unmarshal([]byte(s), &raw); err != nil {
			return nil, err
		}
		return fromGo(raw), nil
	})
	r.Register("json", "encode", func(args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, argErr("json", "encode", 1, len(args))
		}
		b, err := json.Marshal(toGo(args[0]))
		if err != nil {
			return nil, err
		}
		return value.Str(b), nil
	})
}

func fromGo(v interface{}) value.Value {
	switch x := v.(type) {
	case nil:
		return value.Null{}
	case bool:
		return value.Bool(x)
	case float64:
		if x == float64(int64(x)) {
			return value.Int(int64(x))
		}
		return value.Float(x)
	case string:
		return value.Str(x)
	case []interface{}:
		out := &value.Array{}
		for _, item := range x {
			out.Items = append(out.Items, fromGo(item))
		}
		return out
	case map[string]interface{}:
		out := value.NewRecord()
		for k, item := range x {
			out.Set(k, fromGo(item))
		}
		return out
	}
	return value.Null{}
}

func toGo(v value.Value) interface{} {
	switch x := v.(type) {
	case value.Null:
		return nil
	case value.Bool:
		return bool(x)
	case value.Int:
		return int64(x)
	case value.Float:
		return float64(x)
	case value.Str:
		return string(x)
	case value.Bytes:
		return []byte(x)
	case *value.Array:
		out := make([]interface{}, len(x.Items))
		for i, item := range x.Items {
			out[i] = toGo(item)
		}
		return out
	case *value.Record:
		out := make(map[string]interface{}, x.Len())
		for _, k := range x.Keys() {
			out[k] = toGo(x.Get(k))
		}
		return out
	}
	return nil
}
