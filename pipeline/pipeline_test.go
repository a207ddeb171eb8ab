package pipeline_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremor-rt/tremor/internal/telemetry"
	"github.com/tremor-rt/tremor/parser"
	"github.com/tremor-rt/tremor/pipeline"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

func newPipeline(t *testing.T, src string) *pipeline.Pipeline {
	t.Helper()
	q, err := parser.ParseQuery("test.trickle", src)
	require.NoError(t, err)
	g, err := query.Compile(q)
	require.NoError(t, err)
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	log := logrus.New()
	p, err := pipeline.New(g, nil, stdlib.NewRegistry(), metrics, log)
	require.NoError(t, err)
	return p
}

// TestWindowedSumEmitsEveryTenEvents exercises a tumbling count window
// aggregating a per-group sum, firing once per ten ingested events.
func TestWindowedSumEmitsEveryTenEvents(t *testing.T) {
	p := newPipeline(t, `
define window by_10 tumbling window with size = 10;
select {"g": group, "c": aggr::stats::sum(event.c)}
from in[by_10]
group by event.g
into out;
`)

	var emitted []pipeline.Out
	for i := int64(0); i < 20; i++ {
		ev := value.NewRecord()
		ev.Set("g", value.Str("a"))
		ev.Set("c", value.Int(1))
		outs := p.Run(ev, value.NewRecord(), i)
		emitted = append(emitted, outs...)
	}

	require.Len(t, emitted, 2, "one firing per ten events across twenty events")
	for _, out := range emitted {
		assert.Equal(t, "out", out.Port)
		rec, ok := out.Event.(*value.Record)
		require.True(t, ok)
		assert.Equal(t, value.Str("a"), rec.Get("g"))
		assert.Equal(t, value.Int(10), rec.Get("c"))
	}
}

// TestTiltFrameCascadeConservesTotal mirrors the window package's
// conservation invariant end-to-end through a two-stage tilt frame:
// the outer stage's fired count must equal the number of events fed
// into the inner stage since pipeline start.
func TestTiltFrameCascadeConservesTotal(t *testing.T) {
	p := newPipeline(t, `
define window inner tumbling window with size = 5;
define window outer tumbling window with size = 2;
select {"c": aggr::stats::count()}
from in[inner, outer]
into out;
`)

	var emitted []pipeline.Out
	for i := int64(0); i < 10; i++ {
		outs := p.Run(value.NewRecord(), value.NewRecord(), i)
		emitted = append(emitted, outs...)
	}

	require.Len(t, emitted, 1, "outer stage fires once after two inner firings (5x2=10 events)")
	rec := emitted[0].Event.(*value.Record)
	assert.Equal(t, value.Int(10), rec.Get("c"))
}

// TestUnconsumedErrorPortRoutesFaultedEvents drives an event that
// fails script evaluation and checks it surfaces on the graph's "err"
// boundary with the faulting operator's name attached.
func TestUnconsumedErrorPortRoutesFaultedEvents(t *testing.T) {
	p := newPipeline(t, `
define script faulty
  let event.x = event.missing_key;
  emit;
end;
create script faulty from faulty;
select event from in into faulty;
select event from faulty into out;
select event from faulty/err into err;
`)

	outs := p.Run(value.NewRecord(), value.NewRecord(), 0)
	require.Len(t, outs, 1)
	assert.Equal(t, "err", outs[0].Port)
	rec, ok := outs[0].Event.(*value.Record)
	require.True(t, ok)
	assert.Equal(t, value.Str("faulty"), rec.Get("source"))
}
