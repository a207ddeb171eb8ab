package window

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tremor-rt/tremor/value"
)

func TestSizeWindowEmitsEveryNEvents(t *testing.T) {
	w := New(Config{Name: "by_10", SizeN: 10})
	specs := []AggSpec{{Module: "stats", Name: "sum"}}
	key := value.Str("x")
	fired := 0
	for i := int64(1); i <= 20; i++ {
		ok, em, err := w.Ingest(key, []value.Value{value.Int(i)}, specs, 0)
		require.NoError(t, err)
		if ok {
			fired++
			require.NotNil(t, em.Aggs)
		}
	}
	require.Equal(t, 2, fired)
}

func TestTiltFrameConservation(t *testing.T) {
	c := NewCascade([]Config{{Name: "a", SizeN: 4}, {Name: "b", SizeN: 2}}, []AggSpec{{Module: "stats", Name: "count"}})
	key := value.Str("g")
	fired := 0
	for i := 0; i < 16; i++ {
		ok, _, err := c.Ingest(key, []value.Value{value.Int(1)}, int64(i))
		require.NoError(t, err)
		if ok {
			fired++
		}
	}
	require.Equal(t, 2, fired) // floor(16/(4*2)) == 2
}

func TestMaxGroupsFIFOEviction(t *testing.T) {
	w := New(Config{Name: "w", SizeN: 100, MaxGroups: 2})
	specs := []AggSpec{{Module: "stats", Name: "count"}}
	_, _, err := w.Ingest(value.Str("a"), []value.Value{value.Int(1)}, specs, 0)
	require.NoError(t, err)
	_, _, err = w.Ingest(value.Str("b"), []value.Value{value.Int(1)}, specs, 0)
	require.NoError(t, err)
	_, _, err = w.Ingest(value.Str("c"), []value.Value{value.Int(1)}, specs, 0)
	require.NoError(t, err)
	require.Len(t, w.groups, 2)
	_, stillThere := w.groups[groupHashKey(value.Str("b"))]
	require.True(t, stillThere)
	_, aStillThere := w.groups[groupHashKey(value.Str("a"))]
	require.False(t, aStillThere)
}

func TestIntervalWindowFiresOnElapsedTime(t *testing.T) {
	w := New(Config{Name: "w", IntervalNs: 1000})
	specs := []AggSpec{{Module: "stats", Name: "count"}}
	ok, _, err := w.Ingest(value.Str("g"), []value.Value{value.Int(1)}, specs, 0)
	require.NoError(t, err)
	require.False(t, ok)
	ok, _, err = w.Ingest(value.Str("g"), []value.Value{value.Int(1)}, specs, 1500)
	require.NoError(t, err)
	require.True(t, ok)
}
