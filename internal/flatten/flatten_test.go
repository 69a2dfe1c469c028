package flatten

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltab/reltab/internal/parser"
)

func TestScan_PathUnionAcrossDocuments(t *testing.T) {
	coll, err := parser.ParseString(`[{"id":1,"tags":["a","b"]},{"id":2,"tags":["c"]}]`)
	require.NoError(t, err)

	paths := Scan(coll, "/")
	assert.Equal(t, []string{"id", "tags/0", "tags/1"}, paths,
		"array positions union per-position across documents")
}

func TestScan_LongerArrayInLaterDocument(t *testing.T) {
	coll, err := parser.ParseString(`[{"tags":["a"]},{"tags":["b","c","d","e"]}]`)
	require.NoError(t, err)

	paths := Scan(coll, "/")
	assert.Equal(t, []string{"tags/0", "tags/1", "tags/2", "tags/3"}, paths,
		"tags/3 exists because some document has a 4th tag")
}

func TestScan_FirstSeenOrder(t *testing.T) {
	coll, err := parser.ParseString(`[{"b":1,"a":2},{"a":3,"c":4}]`)
	require.NoError(t, err)

	paths := Scan(coll, "/")
	assert.Equal(t, []string{"b", "a", "c"}, paths,
		"column order is first-discovery order, not sorted")
}

func TestScan_NestedObjects(t *testing.T) {
	coll, err := parser.ParseString(`{"id":1,"address":{"city":"Boston","geo":{"lat":1,"lng":2}}}`)
	require.NoError(t, err)

	paths := Scan(coll, "/")
	assert.Equal(t, []string{"id", "address/city", "address/geo/lat", "address/geo/lng"}, paths)
}

func TestScan_CustomSeparator(t *testing.T) {
	coll, err := parser.ParseString(`{"address":{"city":"Boston"}}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"address.city"}, Scan(coll, "."))
	assert.Equal(t, []string{"address/city"}, Scan(coll, ""), "empty separator falls back to default")
}

func TestScan_ArrayOfObjects(t *testing.T) {
	coll, err := parser.ParseString(`{"orders":[{"sku":"x"},{"sku":"y"}]}`)
	require.NoError(t, err)

	assert.Equal(t, []string{"orders/0/sku", "orders/1/sku"}, Scan(coll, "/"))
}

func TestProject_AbsentPathsOmitted(t *testing.T) {
	coll, err := parser.ParseString(`[{"id":1,"tags":["a","b"]},{"id":2,"tags":["c"]}]`)
	require.NoError(t, err)

	row := Project(coll.Docs[1], "/")
	assert.Equal(t, "2", row["id"])
	assert.Equal(t, "c", row["tags/0"])
	_, present := row["tags/1"]
	assert.False(t, present, "shorter array leaves later positions absent, resolving to empty at write time")
}

func TestProject_ScalarRendering(t *testing.T) {
	coll, err := parser.ParseString(`{"s":"text","n":1.50,"b":true,"z":null}`)
	require.NoError(t, err)

	row := Project(coll.Docs[0], "/")
	assert.Equal(t, "text", row["s"])
	assert.Equal(t, "1.50", row["n"], "numeric literals carried as text, no coercion")
	assert.Equal(t, "true", row["b"])
	assert.Equal(t, "", row["z"], "null renders as empty")
}

func TestFlatten_ScenarioA(t *testing.T) {
	coll, err := parser.ParseString(`[{"id":1,"tags":["a","b"]},{"id":2,"tags":["c"]}]`)
	require.NoError(t, err)

	table := Flatten(coll, "/")
	assert.Equal(t, []string{"id", "tags/0", "tags/1"}, table.Columns)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "b", table.Rows[0]["tags/1"])
	assert.Equal(t, "", table.Rows[1]["tags/1"], "row 2 has tags/1 empty")
}

func TestFlatten_Completeness(t *testing.T) {
	coll, err := parser.ParseString(`[{"a":1,"b":{"c":2}},{"a":3},{"b":{"c":4},"d":5}]`)
	require.NoError(t, err)

	table := Flatten(coll, "/")
	require.Equal(t, []string{"a", "b/c", "d"}, table.Columns)

	expected := []map[string]string{
		{"a": "1", "b/c": "2", "d": ""},
		{"a": "3", "b/c": "", "d": ""},
		{"a": "", "b/c": "4", "d": "5"},
	}
	for i, want := range expected {
		for col, val := range want {
			assert.Equal(t, val, table.Rows[i][col], "row %d column %s", i, col)
		}
	}
}

func TestFlatten_Deterministic(t *testing.T) {
	const input = `[{"x":{"y":[1,2]},"z":"a"},{"x":{"y":[3]},"w":null}]`

	first, err := parser.ParseString(input)
	require.NoError(t, err)
	second, err := parser.ParseString(input)
	require.NoError(t, err)

	t1 := Flatten(first, "/")
	t2 := Flatten(second, "/")
	assert.Equal(t, t1.Columns, t2.Columns)
	assert.Equal(t, t1.Rows, t2.Rows)
}

func TestFlatten_EmptyContainersContributeNothing(t *testing.T) {
	coll, err := parser.ParseString(`{"a":{},"b":[],"c":1}`)
	require.NoError(t, err)

	table := Flatten(coll, "/")
	assert.Equal(t, []string{"c"}, table.Columns)
}
