package value

import "github.com/mitchellh/hashstructure"

// Hash returns a structural digest of v: two values that compare
// Equal always hash equal, including records whose fields were
// inserted in different orders. Used by the window engine for group
// keys.
func Hash(v Value) uint64 {
	h, err := hashstructure.Hash(normalize(v), nil)
	if err != nil {
		// normalize never produces cycles or unsupported kinds, so
		// this can only fire on a hashstructure internal bug.
		panic(err)
	}
	return h
}

// normalize turns a Value into plain Go data that hashstructure hashes
// order-independently for maps — giving records the same
// insertion-order-agnostic equality as Equal.
func normalize(v Value) interface{} {
	switch t := v.(type) {
	case nil:
		return nil
	case Null:
		return nil
	case Bool:
		return bool(t)
	case Int:
		return int64(t)
	case Float:
		return float64(t)
	case Str:
		return string(t)
	case Bytes:
		return []byte(t)
	case *Array:
		out := make([]interface{}, len(t.Items))
		for i, item := range t.Items {
			out[i] = normalize(item)
		}
		return out
	case *Record:
		out := make(map[string]interface{}, t.Len())
		for _, k := range t.Keys() {
			out[k] = normalize(t.Get(k))
		}
		return out
	default:
		return v
	}
}

// GroupKey builds the composite group key for `group by set(...)`: an
// ordered array whose Hash is stable regardless of how its component
// expressions were grouped.
func GroupKey(parts ...Value) *Array {
	return &Array{Items: parts}
}
