package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetaValue_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value MetaValue
		want  string
	}{
		{"string", MetaStringValue("rate limited"), `"rate limited"`},
		{"number", MetaNumberValue(42.5), `42.5`},
		{
			"list",
			MetaValue{Kind: MetaList, List: []MetaValue{MetaStringValue("a"), MetaNumberValue(1)}},
			`["a",1]`,
		},
		{
			"map",
			MetaValue{Kind: MetaMap, Map: map[string]MetaValue{"limit": MetaNumberValue(100)}},
			`{"limit":100}`,
		},
		{"empty list", MetaValue{Kind: MetaList}, `[]`},
		{"empty map", MetaValue{Kind: MetaMap}, `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var decoded MetaValue
			require.NoError(t, json.Unmarshal(raw, &decoded))
			assert.Equal(t, tt.value.Kind, decoded.Kind)

			again, err := json.Marshal(decoded)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(again))
		})
	}
}

func TestMetaValue_UnmarshalRejectsBool(t *testing.T) {
	var m MetaValue
	assert.Error(t, m.UnmarshalJSON([]byte(`true`)))
}

func TestMetaFromAny(t *testing.T) {
	v := MetaFromAny(map[string]interface{}{
		"retries": 3,
		"hosts":   []interface{}{"a", "b"},
		"flag":    true,
	})
	require.Equal(t, MetaMap, v.Kind)
	assert.Equal(t, MetaNumberValue(3), v.Map["retries"])
	assert.Equal(t, MetaList, v.Map["hosts"].Kind)
	// Unsupported shapes degrade to strings instead of being dropped.
	assert.Equal(t, MetaStringValue("true"), v.Map["flag"])
}

func TestFlattenAttributes(t *testing.T) {
	attrs := []ResolvedAttribute{
		{Name: "id", Type: "string"},
		{Name: "address", Type: "Address", Children: []ResolvedAttribute{
			{Name: "street", Type: "string"},
			{Name: "country", Type: "Country", Children: []ResolvedAttribute{
				{Name: "isoCode", Type: "string"},
			}},
		}},
	}
	flat := FlattenAttributes(attrs)

	names := make([]string, 0, len(flat))
	for _, a := range flat {
		names = append(names, a.Name)
		assert.Nil(t, a.Children)
	}
	assert.Equal(t, []string{"id", "address", "street", "country", "isoCode"}, names)

	// Flattening copies; mutating the flat view must not touch the tree.
	flat[1].Name = "mutated"
	assert.Equal(t, "address", attrs[1].Name)
}

func TestParseStrategy(t *testing.T) {
	got, err := ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyEndpoint, got)

	for _, s := range []Strategy{StrategyEndpoint, StrategyFixedSize, StrategySemantic, StrategyHybrid} {
		got, err := ParseStrategy(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err = ParseStrategy("recursive")
	assert.Error(t, err)
}
