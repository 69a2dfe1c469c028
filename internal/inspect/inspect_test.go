package inspect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reltab/reltab/internal/parser"
)

func TestAnalyze_TypesAcrossDocuments(t *testing.T) {
	coll, err := parser.ParseString(`[{"id":1,"name":"a"},{"id":"x","name":null}]`)
	require.NoError(t, err)

	report := Analyze(coll)
	assert.Equal(t, []string{"id", "name"}, report.Fields())

	id := report.Field("id")
	require.NotNil(t, id)
	assert.Contains(t, id.Types, "number")
	assert.Contains(t, id.Types, "string")

	name := report.Field("name")
	assert.Contains(t, name.Types, "string")
	assert.Contains(t, name.Types, "null")
}

func TestAnalyze_NestedShapes(t *testing.T) {
	coll, err := parser.ParseString(`{"address":{"city":"x"},"orders":[{"sku":"a"}],"tags":["y"]}`)
	require.NoError(t, err)

	report := Analyze(coll)

	address := report.Field("address")
	require.NotNil(t, address.Nested)
	assert.Equal(t, []string{"city"}, address.Nested.Fields())

	orders := report.Field("orders")
	require.NotNil(t, orders.Nested, "array-of-object elements are merged into one nested report")
	assert.Equal(t, []string{"sku"}, orders.Nested.Fields())

	tags := report.Field("tags")
	assert.Nil(t, tags.Nested, "arrays of primitives have no nested shape")
}

func TestReport_String(t *testing.T) {
	coll, err := parser.ParseString(`{"id":1,"address":{"city":"Boston"}}`)
	require.NoError(t, err)

	out := Analyze(coll).String()
	assert.Contains(t, out, "id: number")
	assert.Contains(t, out, "address: object")
	assert.Contains(t, out, "  city: string")
}

func TestReport_SortedTypeSets(t *testing.T) {
	coll, err := parser.ParseString(`[{"v":"s"},{"v":1},{"v":true}]`)
	require.NoError(t, err)

	out := Analyze(coll).String()
	assert.Contains(t, out, "v: bool, number, string", "type sets render sorted for stable output")
}
