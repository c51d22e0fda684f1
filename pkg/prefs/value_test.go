package prefs_test

import (
	"encoding/json"
	"testing"

	"github.com/machlit/cutler/pkg/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b prefs.Value
		want bool
	}{
		{
			name: "equal_strings",
			a:    prefs.String("hello"),
			b:    prefs.String("hello"),
			want: true,
		},
		{
			name: "different_strings",
			a:    prefs.String("hello"),
			b:    prefs.String("world"),
			want: false,
		},
		{
			name: "equal_integers",
			a:    prefs.Integer(42),
			b:    prefs.Integer(42),
			want: true,
		},
		{
			name: "integer_never_equals_float",
			a:    prefs.Integer(1),
			b:    prefs.Float(1.0),
			want: false,
		},
		{
			name: "array_order_matters",
			a:    prefs.Array(prefs.Integer(1), prefs.Integer(2)),
			b:    prefs.Array(prefs.Integer(2), prefs.Integer(1)),
			want: false,
		},
		{
			name: "equal_arrays",
			a:    prefs.Array(prefs.String("a"), prefs.Boolean(true)),
			b:    prefs.Array(prefs.String("a"), prefs.Boolean(true)),
			want: true,
		},
		{
			name: "dictionary_order_does_not_matter",
			a: prefs.Dictionary(map[string]prefs.Value{
				"x": prefs.Integer(1),
				"y": prefs.Integer(2),
			}),
			b: prefs.Dictionary(map[string]prefs.Value{
				"y": prefs.Integer(2),
				"x": prefs.Integer(1),
			}),
			want: true,
		},
		{
			name: "dictionary_missing_key",
			a: prefs.Dictionary(map[string]prefs.Value{
				"x": prefs.Integer(1),
			}),
			b: prefs.Dictionary(map[string]prefs.Value{
				"y": prefs.Integer(1),
			}),
			want: false,
		},
		{
			name: "nested_structures",
			a: prefs.Dictionary(map[string]prefs.Value{
				"items": prefs.Array(prefs.Dictionary(map[string]prefs.Value{
					"name": prefs.String("dock"),
				})),
			}),
			b: prefs.Dictionary(map[string]prefs.Value{
				"items": prefs.Array(prefs.Dictionary(map[string]prefs.Value{
					"name": prefs.String("dock"),
				})),
			}),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value prefs.Value
	}{
		{name: "string", value: prefs.String("AppleShowAllFiles")},
		{name: "integer", value: prefs.Integer(36)},
		{name: "negative_integer", value: prefs.Integer(-12)},
		{name: "float", value: prefs.Float(0.25)},
		{name: "whole_float_stays_float", value: prefs.Float(2.0)},
		{name: "boolean", value: prefs.Boolean(true)},
		{name: "empty_array", value: prefs.Array()},
		{
			name:  "mixed_array",
			value: prefs.Array(prefs.String("a"), prefs.Integer(1), prefs.Float(1.5), prefs.Boolean(false)),
		},
		{
			name: "nested_dictionary",
			value: prefs.Dictionary(map[string]prefs.Value{
				"General":  prefs.Boolean(true),
				"MetaData": prefs.Boolean(false),
				"sizes":    prefs.Array(prefs.Integer(16), prefs.Integer(32)),
				"nested": prefs.Dictionary(map[string]prefs.Value{
					"depth": prefs.Integer(2),
				}),
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)

			var back prefs.Value
			require.NoError(t, json.Unmarshal(data, &back))
			assert.True(t, tt.value.Equal(back), "round trip changed value: %s -> %s", tt.value, back)
			assert.Equal(t, tt.value.Kind(), back.Kind())
		})
	}
}

func TestUnmarshalJSONRejectsNull(t *testing.T) {
	var v prefs.Value
	err := json.Unmarshal([]byte(`null`), &v)
	assert.Error(t, err)
}

func TestMarshalJSONRejectsInvalid(t *testing.T) {
	var zero prefs.Value
	_, err := json.Marshal(zero)
	assert.Error(t, err)
}

func TestValueString(t *testing.T) {
	v := prefs.Dictionary(map[string]prefs.Value{
		"b": prefs.Integer(2),
		"a": prefs.Array(prefs.String("x"), prefs.Float(1.5)),
	})
	// dictionary keys are sorted for deterministic output
	assert.Equal(t, "{a = [x, 1.5], b = 2}", v.String())
}
