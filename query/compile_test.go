package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tremor-rt/tremor/parser"
	"github.com/tremor-rt/tremor/query"
	"github.com/tremor-rt/tremor/value"
)

func compileSrc(t *testing.T, src string) (*query.Graph, error) {
	t.Helper()
	q, err := parser.ParseQuery("test.trickle", src)
	require.NoError(t, err)
	return query.Compile(q)
}

func TestCompileLinearSelectGraph(t *testing.T) {
	g, err := compileSrc(t, `
select event from in into out;
`)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, query.KindSelect, g.Nodes[0].Kind)
	assert.Len(t, g.Edges, 2)
}

func TestCompileRejectsDuplicateOperatorNames(t *testing.T) {
	_, err := compileSrc(t, `
define script greeter
  let event.greeting = "hi";
  emit;
end;
create script dupe from greeter;
create script dupe from greeter;
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate operator name")
}

func TestCompileRejectsCycle(t *testing.T) {
	_, err := compileSrc(t, `
stream a;
stream b;
select event from a into b;
select event from b into a;
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle detected")
}

func TestCompileResolvesWithArguments(t *testing.T) {
	g, err := compileSrc(t, `
define script greeter
  let event.greeting = "hi";
  emit;
end;
create script my_greeter from greeter with extra = 1;
select event from in into my_greeter;
select event from my_greeter into out;
`)
	require.NoError(t, err)
	n, ok := g.ByName["my_greeter"]
	require.True(t, ok)
	assert.Equal(t, query.KindScript, n.Kind)
	assert.Equal(t, value.Int(1), n.With["extra"])
}

func TestCompileWindowReferenceMissingIsError(t *testing.T) {
	_, err := compileSrc(t, `
select {"c": aggr::stats::count()} from in[no_such_window] into out;
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no such window definition")
}

func TestCompileInlinesNestedDefineQuery(t *testing.T) {
	g, err := compileSrc(t, `
define query inner {
  select event from in into out;
}
create query my_inner from inner;
`)
	require.NoError(t, err)
	assert.NotEmpty(t, g.Nodes, "nested query statements should be inlined and namespaced")
	for name := range g.ByName {
		assert.Contains(t, name, "my_inner::")
	}
}
