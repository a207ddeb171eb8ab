package value

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordKeyOrder(t *testing.T) {
	r := NewRecord()
	r.Set("a", Int(1))
	r.Set("b", Int(2))
	require.Equal(t, []string{"a", "b"}, r.Keys())

	// Re-assignment keeps position (invariant iii).
	r.Set("a", Int(3))
	require.Equal(t, []string{"a", "b"}, r.Keys())
	require.Equal(t, Int(3), r.Get("a"))
}

func TestRecordEqualityIgnoresOrder(t *testing.T) {
	a := NewRecord()
	a.Set("a", Int(1))
	a.Set("b", Int(2))

	b := NewRecord()
	b.Set("b", Int(2))
	b.Set("a", Int(1))

	require.True(t, Equal(a, b))
	require.Equal(t, Hash(a), Hash(b))
}

func TestArrayEqualityRespectsOrder(t *testing.T) {
	a := NewArray(Int(1), Int(2))
	b := NewArray(Int(2), Int(1))
	require.False(t, Equal(a, b))
}

func TestPathSetRoundTrip(t *testing.T) {
	root := NewRecord()
	root.Set("a", NewRecord())

	path := []Segment{Field("a"), Field("b")}
	updated, err := Set(root, path, Int(42))
	require.NoError(t, err)

	got, err := Get(updated, path)
	require.NoError(t, err)
	require.Equal(t, Int(42), got)

	// The original root is untouched (copy-on-write).
	_, err = Get(root, path)
	require.Error(t, err)
}

func TestPathSetOnMissingIntermediateIsBadAccess(t *testing.T) {
	root := NewRecord()
	_, err := Set(root, []Segment{Field("a"), Field("b")}, Int(1))
	require.Error(t, err)
	_, ok := err.(*BadAccess)
	require.True(t, ok)
}

func TestCoalescePreservesOrder(t *testing.T) {
	arr := NewArray(Int(1), Null{}, Int(2), Null{}, Int(3))
	out := Coalesce(arr)
	require.Len(t, out.Items, 3)
	require.Equal(t, Int(1), out.Items[0])
	require.Equal(t, Int(2), out.Items[1])
	require.Equal(t, Int(3), out.Items[2])
}

func TestCloneIsDeep(t *testing.T) {
	inner := NewRecord()
	inner.Set("x", Int(1))
	root := NewRecord()
	root.Set("inner", inner)

	cloned := root.Clone().(*Record)
	inner.Set("x", Int(2))

	require.Equal(t, Int(1), cloned.Get("inner").(*Record).Get("x"))
}
