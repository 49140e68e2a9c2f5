package evaluator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollectFreesUnreachable(t *testing.T) {
	e, _ := newTestEvaluator(t)
	v, err := e.RunSource("let junk = [1, [2, 3]]\njunk = null\nlet keep = .{a: [4]}\nkeep", "")
	require.NoError(t, err)

	before := e.Heap().Live()
	freed := e.Collect(v)
	require.Equal(t, 2, freed)
	require.Equal(t, before-2, e.Heap().Live())

	s, err := Display(e.Heap(), v, false, false)
	require.NoError(t, err)
	require.Equal(t, ".{a: [4]}", s)
}

func TestCollectBuiltinSweepsBetweenStatements(t *testing.T) {
	e, _ := newTestEvaluator(t)
	_, err := e.RunSource("let junk = [1, 2]\njunk = null\ncollect()\n1", "")
	require.NoError(t, err)
	require.Less(t, e.Heap().Live(), e.Heap().Len())
}

func TestCollectKeepsCapturedValues(t *testing.T) {
	got := run(t, "func make() { let items = [1, 2]; func () { items } }\nlet f = make()\ncollect()\nlet filler = [9]\nf()")
	require.Equal(t, "[1, 2]", got)
}

func TestCollectKeepsPrototypeMethods(t *testing.T) {
	got := run(t, "let p = get_proto_obj(\"array\")\np.second = func (a) { a[1] }\np = null\ncollect()\n[5, 6].second()")
	require.Equal(t, "6", got)
}
