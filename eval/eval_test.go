package eval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremor-rt/tremor/eval"
	"github.com/tremor-rt/tremor/parser"
	"github.com/tremor-rt/tremor/stdlib"
	"github.com/tremor-rt/tremor/value"
)

func runScript(t *testing.T, src string, event value.Value) *eval.Result {
	t.Helper()
	script, err := parser.ParseScript("test.tremor", src)
	require.NoError(t, err)
	env := &eval.Envelope{Event: event, State: value.Null{}, Meta: value.NewRecord(), Args: value.NewRecord()}
	ctx := eval.NewContext(script.Fns, stdlib.NewRegistry())
	res, err := eval.Run(script, env, ctx)
	require.NoError(t, err)
	return res
}

func TestLetAssignsEventPath(t *testing.T) {
	res := runScript(t, `let event.greeting = "hi"; emit;`, value.NewRecord())
	require.Len(t, res.Emissions, 1)
	rec, ok := res.Emissions[0].Value.(*value.Record)
	require.True(t, ok)
	assert.Equal(t, value.Str("hi"), rec.Get("greeting"))
	assert.Equal(t, "out", res.Emissions[0].Port)
}

func TestDropTerminatesWithNoEmission(t *testing.T) {
	res := runScript(t, `drop;`, value.NewRecord())
	assert.Empty(t, res.Emissions)
}

func TestEmitToExplicitPort(t *testing.T) {
	res := runScript(t, `emit event => "err";`, value.NewRecord())
	require.Len(t, res.Emissions, 1)
	assert.Equal(t, "err", res.Emissions[0].Port)
}

func TestArithmeticRejectsMixedIntFloat(t *testing.T) {
	script, err := parser.ParseScript("t.tremor", `let event.x = 1 + 1.5; emit;`)
	require.NoError(t, err)
	env := &eval.Envelope{Event: value.NewRecord(), State: value.Null{}, Meta: value.NewRecord(), Args: value.NewRecord()}
	ctx := eval.NewContext(script.Fns, stdlib.NewRegistry())
	_, err = eval.Run(script, env, ctx)
	assert.Error(t, err)
}

func TestMatchFirstCaseWins(t *testing.T) {
	src := `
let event.category = match event.temperature of
  case t when t < 70 => "low"
  case t when t > 80 => "high"
  default => "normal"
end;
emit;
`
	for _, tc := range []struct {
		temp int64
		want value.Value
	}{
		{65, value.Str("low")},
		{75, value.Str("normal")},
		{120, value.Str("high")},
	} {
		ev := value.NewRecord()
		ev.Set("temperature", value.Int(tc.temp))
		res := runScript(t, src, ev)
		require.Len(t, res.Emissions, 1)
		rec := res.Emissions[0].Value.(*value.Record)
		assert.Equal(t, tc.want, rec.Get("category"))
	}
}

func TestMatchRecordPatternPresentAbsent(t *testing.T) {
	src := `
let event.result = match event of
  case %{present foo} => "has_foo"
  case %{absent foo}  => "no_foo"
  default => "unreachable"
end;
emit;
`
	withFoo := value.NewRecord()
	withFoo.Set("foo", value.Int(1))
	res := runScript(t, src, withFoo)
	rec := res.Emissions[0].Value.(*value.Record)
	assert.Equal(t, value.Str("has_foo"), rec.Get("result"))

	res2 := runScript(t, src, value.NewRecord())
	rec2 := res2.Emissions[0].Value.(*value.Record)
	assert.Equal(t, value.Str("no_foo"), rec2.Get("result"))
}

func TestForComprehensionOverArray(t *testing.T) {
	src := `
let event.doubled = for event.items of
  case (i, x) => x * 2
end;
emit;
`
	ev := value.NewRecord()
	ev.Set("items", value.NewArray(value.Int(1), value.Int(2), value.Int(3)))
	res := runScript(t, src, ev)
	rec := res.Emissions[0].Value.(*value.Record)
	arr, ok := rec.Get("doubled").(*value.Array)
	require.True(t, ok)
	require.Len(t, arr.Items, 3)
	assert.Equal(t, value.Int(6), arr.Items[2])
}

func TestUserFunctionCallAndTailRecursion(t *testing.T) {
	src := `
fn count_down(n) with
  match n of
    case 0 => 0
    default => count_down(n - 1)
  end
end;
let event.done = count_down(50);
emit;
`
	res := runScript(t, src, value.NewRecord())
	rec := res.Emissions[0].Value.(*value.Record)
	assert.Equal(t, value.Int(0), rec.Get("done"))
}

func TestPathTryDefaultFallsBackOnMissingKey(t *testing.T) {
	src := `let event.safe = path::try_default(event.missing, "fallback"); emit;`
	res := runScript(t, src, value.NewRecord())
	rec := res.Emissions[0].Value.(*value.Record)
	assert.Equal(t, value.Str("fallback"), rec.Get("safe"))
}

func TestStringInterpolation(t *testing.T) {
	src := `let event.msg = "hello {event.name}!"; emit;`
	ev := value.NewRecord()
	ev.Set("name", value.Str("world"))
	res := runScript(t, src, ev)
	rec := res.Emissions[0].Value.(*value.Record)
	assert.Equal(t, value.Str("hello world!"), rec.Get("msg"))
}

func TestMissingEventKeyIsBadAccess(t *testing.T) {
	src := `let event.x = event.foo; emit;`
	script, err := parser.ParseScript("data/script_with_error.tremor", src)
	require.NoError(t, err)
	env := &eval.Envelope{Event: value.NewRecord(), State: value.Null{}, Meta: value.NewRecord(), Args: value.NewRecord()}
	ctx := eval.NewContext(script.Fns, stdlib.NewRegistry())
	_, err = eval.Run(script, env, ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Trying to access a non existing event key `foo`")
}
