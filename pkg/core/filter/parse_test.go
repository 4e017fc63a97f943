package filter

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlat(t *testing.T) {
	f, err := Parse([]byte(`{"genre":"sci-fi","year":1984}`))
	require.NoError(t, err)
	assert.IsType(t, Equals{}, f)
	assert.True(t, f.Match(doc))
}

func TestParseCondition(t *testing.T) {
	f, err := Parse([]byte(`{"field":"year","op":">=","value":1984}`))
	require.NoError(t, err)
	require.Equal(t, Condition{Field: "year", Op: Gte, Value: json.Number("1984")}, f)
	assert.True(t, f.Match(doc))

	f, err = Parse([]byte(`{"field":"genre","op":"exists"}`))
	require.NoError(t, err)
	assert.True(t, f.Match(doc))
}

func TestParseNested(t *testing.T) {
	expr := `{
		"and": [
			{"field": "rating", "op": "gte", "value": 4},
			{"or": [
				{"field": "year", "op": "gt", "value": 2000},
				{"field": "tags", "op": "contains", "value": "classic"}
			]},
			{"field": "year", "op": "between", "value": [1900, 1999]}
		]
	}`
	f, err := Parse([]byte(expr))
	require.NoError(t, err)
	assert.True(t, f.Match(doc))

	other := map[string]any{"rating": 4.9, "year": 1950, "tags": []string{"modern"}}
	assert.False(t, f.Match(other))
}

func TestParseEmpty(t *testing.T) {
	f, err := Parse(nil)
	require.NoError(t, err)
	assert.Nil(t, f)

	f, err = Parse([]byte(" null "))
	require.NoError(t, err)
	assert.Nil(t, f)
}

func TestParseErrors(t *testing.T) {
	bad := []string{
		`[1,2]`,
		`{"and": {"a": 1}}`,
		`{"or": [1, 2]}`,
		`{"field": "x", "op": "like", "value": 1}`,
		`{"field": "", "op": "eq", "value": 1}`,
		`{"field": "x", "op": 3}`,
		`{"field": "x", "op": "eq", "value": 1, "extra": true}`,
		`{not json`,
	}
	for _, expr := range bad {
		_, err := Parse([]byte(expr))
		assert.ErrorIs(t, err, ErrInvalidExpression, expr)
	}
}

func TestParseOpAliases(t *testing.T) {
	cases := map[string]Op{
		"==": Eq, "!=": Ne, ">": Gt, "<": Lt, ">=": Gte, "<=": Lte,
		"nin": NotIn, "range": Between, "matches": Regex, "NOT_EXISTS": NotExists,
	}
	for in, want := range cases {
		got, err := ParseOp(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestFromMapGoValues(t *testing.T) {
	f, err := FromMap(map[string]any{
		"or": []any{
			map[string]any{"field": "genre", "op": "in", "value": []string{"horror", "sci-fi"}},
			map[string]any{"genre": "fantasy"},
		},
	})
	require.NoError(t, err)
	assert.True(t, f.Match(doc))

	f, err = FromMap(nil)
	require.NoError(t, err)
	assert.Nil(t, f)
}
