package prefs_test

import (
	"testing"
	"time"

	"github.com/machlit/cutler/pkg/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromTOML(t *testing.T) {
	tests := []struct {
		name    string
		input   interface{}
		want    prefs.Value
		wantErr bool
	}{
		{name: "string", input: "hello", want: prefs.String("hello")},
		{name: "int64", input: int64(50), want: prefs.Integer(50)},
		{name: "float64", input: 0.5, want: prefs.Float(0.5)},
		{name: "bool", input: true, want: prefs.Boolean(true)},
		{
			name:  "array",
			input: []interface{}{int64(1), "two"},
			want:  prefs.Array(prefs.Integer(1), prefs.String("two")),
		},
		{
			name: "table",
			input: map[string]interface{}{
				"General": true,
				"size":    int64(3),
			},
			want: prefs.Dictionary(map[string]prefs.Value{
				"General": prefs.Boolean(true),
				"size":    prefs.Integer(3),
			}),
		},
		{
			name:    "datetime_rejected",
			input:   time.Now(),
			wantErr: true,
		},
		{
			name:    "nil_rejected",
			input:   nil,
			wantErr: true,
		},
		{
			name:    "nested_unsupported_rejected",
			input:   []interface{}{int64(1), time.Now()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := prefs.FromTOML(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s got %s", tt.want, got)
		})
	}
}

func TestToTOMLRoundTrip(t *testing.T) {
	original := prefs.Dictionary(map[string]prefs.Value{
		"title": prefs.String("cutler"),
		"count": prefs.Integer(7),
		"ratio": prefs.Float(1.25),
		"on":    prefs.Boolean(false),
		"list":  prefs.Array(prefs.Integer(1), prefs.Integer(2)),
	})

	raw, err := prefs.ToTOML(original)
	require.NoError(t, err)

	back, err := prefs.FromTOML(raw)
	require.NoError(t, err)
	assert.True(t, original.Equal(back))
}

func TestToTOMLRejectsInvalid(t *testing.T) {
	var zero prefs.Value
	_, err := prefs.ToTOML(zero)
	assert.Error(t, err)
}
