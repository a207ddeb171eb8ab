package stdlib_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

func TestStringFormatEscaping(t *testing.T) {
	reg := stdlib.NewRegistry()
	out, err := reg.Call("string", "format", []value.Value{value.Str("{{ hi {} }}"), value.Str("x")})
	require.NoError(t, err)
	assert.Equal(t, value.Str("{ hi x }"), out)
}

func TestArrayPushReverseSort(t *testing.T) {
	reg := stdlib.NewRegistry()

	pushed, err := reg.Call("array", "push", []value.Value{value.NewArray(value.Int(1), value.Int(2)), value.Int(3)})
	require.NoError(t, err)
	arr := pushed.(*value.Array)
	assert.Equal(t, []value.Value{value.Int(1), value.Int(2), value.Int(3)}, arr.Items)

	reversed, err := reg.Call("array", "reverse", []value.Value{value.NewArray(value.Int(1), value.Int(2), value.Int(3))})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(3), value.Int(2), value.Int(1)}, reversed.(*value.Array).Items)

	sorted, err := reg.Call("array", "sort", []value.Value{value.NewArray(value.Int(3), value.Int(1), value.Int(2))})
	require.NoError(t, err)
	assert.Equal(t, []value.Value{value.Int(1), value.Int(2), value.Int(3)}, sorted.(*value.Array).Items)
}

func TestRecordMergeKeepsInsertionOrder(t *testing.T) {
	reg := stdlib.NewRegistry()
	base := value.NewRecord()
	base.Set("a", value.Int(1))
	base.Set("b", value.Int(2))
	overlay := value.NewRecord()
	overlay.Set("b", value.Int(20))
	overlay.Set("c", value.Int(3))

	merged, err := reg.Call("record", "merge", []value.Value{base, overlay})
	require.NoError(t, err)
	rec := merged.(*value.Record)
	assert.Equal(t, []string{"a", "b", "c"}, rec.Keys())
	assert.Equal(t, value.Int(20), rec.Get("b"))
}

func TestJSONRoundTrip(t *testing.T) {
	reg := stdlib.NewRegistry()
	rec := value.NewRecord()
	rec.Set("n", value.Int(42))
	rec.Set("s", value.Str("hi"))

	encoded, err := reg.Call("json", "encode", []value.Value{rec})
	require.NoError(t, err)

	decoded, err := reg.Call("json", "decode", []value.Value{encoded})
	require.NoError(t, err)
	out := decoded.(*value.Record)
	assert.Equal(t, value.Int(42), out.Get("n"))
	assert.Equal(t, value.Str("hi"), out.Get("s"))
}

func TestChashJumpMatchesKnownBuckets(t *testing.T) {
	reg := stdlib.NewRegistry()
	snot, err := reg.Call("chash", "jump", []value.Value{value.Str("snot"), value.Int(9)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(8), snot)

	badger, err := reg.Call("chash", "jump", []value.Value{value.Str("badger"), value.Int(9)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), badger)
}

func TestChashJumpWithKeysMatchesKnownBucket(t *testing.T) {
	reg := stdlib.NewRegistry()
	out, err := reg.Call("chash", "jump_with_keys", []value.Value{value.Int(8), value.Int(2), value.Str("badger"), value.Int(9)})
	require.NoError(t, err)
	assert.Equal(t, value.Int(3), out)

	again, err := reg.Call("chash", "jump_with_keys", []value.Value{value.Int(8), value.Int(2), value.Str("badger"), value.Int(9)})
	require.NoError(t, err)
	assert.Equal(t, out, again, "same inputs must hash to the same bucket")
}

func TestChashRendezvousStableUnderNodeRemoval(t *testing.T) {
	reg := stdlib.NewRegistry()
	nodes := value.NewArray(value.Str("a"), value.Str("b"), value.Str("c"))
	chosen, err := reg.Call("chash", "rendezvous", []value.Value{value.Str("key-1"), nodes})
	require.NoError(t, err)

	// Remove one node that was not chosen; the key must stay put.
	var remaining []value.Value
	dropped := false
	for _, n := range nodes.Items {
		if !dropped && !value.Equal(n, chosen) {
			dropped = true
			continue
		}
		remaining = append(remaining, n)
	}
	fewerNodes := value.NewArray(remaining...)
	chosenAgain, err := reg.Call("chash", "rendezvous", []value.Value{value.Str("key-1"), fewerNodes})
	require.NoError(t, err)
	assert.Equal(t, chosen, chosenAgain)
}

func TestTypeModuleCoercions(t *testing.T) {
	reg := stdlib.NewRegistry()
	v, err := reg.Call("type", "as_int", []value.Value{value.Str("42")})
	require.NoError(t, err)
	assert.Equal(t, value.Int(42), v)

	k, err := reg.Call("type", "of", []value.Value{value.Bool(true)})
	require.NoError(t, err)
	assert.Equal(t, value.Str("bool"), k)
}
