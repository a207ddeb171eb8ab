package value

import "fmt"

// Segment is one step of a path expression: a record field name or an
// array index.
type Segment struct {
	Key   string
	Index int
	IsKey bool
}

func Field(key string) Segment  { return Segment{Key: key, IsKey: true} }
func Index(i int) Segment       { return Segment{Index: i} }

// BadAccess is returned when a path descent hits a missing
// intermediate segment or a value of the wrong kind (data model
// invariant ii). The caller must create records/arrays explicitly.
type BadAccess struct {
	Path []Segment
	Msg  string
}

func (e *BadAccess) Error() string { return e.Msg }

func missingKey(key string) error {
	return &BadAccess{Msg: fmt.Sprintf("Trying to access a non existing event key `%s`", key)}
}

// Get descends root along path, returning the addressed Value.
func Get(root Value, path []Segment) (Value, error) {
	cur := root
	for _, seg := range path {
		if seg.IsKey {
			rec, ok := cur.(*Record)
			if !ok {
				return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Trying to access field `%s` of a %s", seg.Key, cur.Kind())}
			}
			if !rec.Contains(seg.Key) {
				return nil, missingKey(seg.Key)
			}
			cur = rec.Get(seg.Key)
		} else {
			arr, ok := cur.(*Array)
			if !ok {
				return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Trying to index a %s", cur.Kind())}
			}
			if seg.Index < 0 || seg.Index >= len(arr.Items) {
				return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Array index %d out of bounds", seg.Index)}
			}
			cur = arr.Items[seg.Index]
		}
	}
	return cur, nil
}

// Set returns a new root with path assigned to v, copy-on-write at
// each descended level (design note §9): only the spine from root to
// the assigned leaf is copied, sibling values are shared.
func Set(root Value, path []Segment, v Value) (Value, error) {
	if len(path) == 0 {
		return v, nil
	}
	seg := path[0]
	rest := path[1:]

	if seg.IsKey {
		var rec *Record
		switch r := root.(type) {
		case *Record:
			rec = shallowCopyRecord(r)
		case Null:
			return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Trying to assign field `%s` on null; create the record explicitly first", seg.Key)}
		default:
			return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Trying to assign field `%s` of a %s", seg.Key, root.Kind())}
		}
		var child Value
		if len(rest) == 0 {
			child = v
		} else {
			if rec.Contains(seg.Key) {
				var err error
				child, err = Set(rec.Get(seg.Key), rest, v)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, missingKey(firstMissing(rest, seg.Key))
			}
		}
		rec.Set(seg.Key, child)
		return rec, nil
	}

	arr, ok := root.(*Array)
	if !ok {
		return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Trying to index a %s", root.Kind())}
	}
	if seg.Index < 0 || seg.Index >= len(arr.Items) {
		return nil, &BadAccess{Path: path, Msg: fmt.Sprintf("Array index %d out of bounds", seg.Index)}
	}
	out := shallowCopyArray(arr)
	var child Value
	if len(rest) == 0 {
		child = v
	} else {
		var err error
		child, err = Set(out.Items[seg.Index], rest, v)
		if err != nil {
			return nil, err
		}
	}
	out.Items[seg.Index] = child
	return out, nil
}

func firstMissing(rest []Segment, fallback string) string {
	if len(rest) > 0 && rest[0].IsKey {
		return rest[0].Key
	}
	return fallback
}

func shallowCopyRecord(r *Record) *Record {
	out := NewRecord()
	for i, k := range r.keys {
		out.Set(k, r.vals[i])
	}
	return out
}

func shallowCopyArray(a *Array) *Array {
	items := make([]Value, len(a.Items))
	copy(items, a.Items)
	return &Array{Items: items}
}

// Coalesce returns a new array with every Null removed, preserving
// order.
func Coalesce(a *Array) *Array {
	out := &Array{}
	for _, v := range a.Items {
		if _, isNull := v.(Null); !isNull {
			out.Items = append(out.Items, v)
		}
	}
	return out
}
