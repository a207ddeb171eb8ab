package parser

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tremor-rt/tremor/ast"
)

func TestParseScriptAlertExample(t *testing.T) {
	src := `
let state = match state of
  case null => { "sundown_low_limit": 70, "sundown_high_limit": 80 }
  default => state
end;
match event.temperature of
  case t when t < state.sundown_low_limit => emit { "alert": true, "alert_description": "Low Temp Alarm", "temperature": t } => "err"
  default => emit event => "out"
end
`
	sc, err := ParseScript("alert.tremor", src)
	require.NoError(t, err)
	require.NotEmpty(t, sc.Body)
}

func TestParseWindowedSumQuery(t *testing.T) {
	src := `
define window by_10 tumbling window with size = 10;
select {"g": group, "c": aggr::stats::sum(event.c)} from in[by_10] group by event.g into out;
`
	q, err := ParseQuery("sum.trickle", src)
	require.NoError(t, err)
	require.Len(t, q.Stmts, 2)

	_, ok := q.Stmts[0].(*ast.DefineWindow)
	require.True(t, ok)

	sel, ok := q.Stmts[1].(*ast.Select)
	require.True(t, ok)
	require.Equal(t, "in", sel.From.Name)
	require.Equal(t, []string{"by_10"}, sel.Windows)
	require.Equal(t, "out", sel.Into.Name)
	require.Len(t, sel.GroupBy, 1)
}

func TestParseTiltFrameWindows(t *testing.T) {
	src := `select event from in[w1, w2, w3] into out;`
	q, err := ParseQuery("tilt.trickle", src)
	require.NoError(t, err)
	sel := q.Stmts[0].(*ast.Select)
	require.Equal(t, []string{"w1", "w2", "w3"}, sel.Windows)
}

func TestParseStringInterpolation(t *testing.T) {
	sc, err := ParseScript("t.tremor", `"{{ hi {event.name} }}"`)
	require.NoError(t, err)
	lit := sc.Body[0].(*ast.StringLit)
	require.True(t, len(lit.Parts) >= 2)
}

func TestParseMatchRecordPattern(t *testing.T) {
	src := `
match event of
  case %{ temperature > 100 } => emit { "alert_description": "High Temp Alarm" }
  default => drop
end
`
	sc, err := ParseScript("t.tremor", src)
	require.NoError(t, err)
	require.NotEmpty(t, sc.Body)
}
