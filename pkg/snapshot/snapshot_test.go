package snapshot_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/prefs"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v prefs.Value) *prefs.Value { return &v }

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	snap := snapshot.New(path)
	snap.Settings = []snapshot.SettingState{
		{Domain: "com.apple.dock", Key: "tilesize", OriginalValue: ptr(prefs.Integer(36))},
		{Domain: "com.apple.finder", Key: "ShowPathbar", OriginalValue: nil},
		{Domain: "NSGlobalDomain", Key: "panes", OriginalValue: ptr(prefs.Dictionary(map[string]prefs.Value{
			"General": prefs.Boolean(true),
		}))},
	}
	snap.ExecRunCount = 2
	snap.Digest = "abc123"

	require.NoError(t, snap.Save())

	loaded, err := snapshot.Load(path)
	require.NoError(t, err)

	require.Len(t, loaded.Settings, 3)
	assert.Equal(t, "com.apple.dock", loaded.Settings[0].Domain)
	require.NotNil(t, loaded.Settings[0].OriginalValue)
	assert.True(t, prefs.Integer(36).Equal(*loaded.Settings[0].OriginalValue))

	// nil original survives as nil, never as a zero value
	assert.Nil(t, loaded.Settings[1].OriginalValue)

	require.NotNil(t, loaded.Settings[2].OriginalValue)
	assert.Equal(t, prefs.KindDictionary, loaded.Settings[2].OriginalValue.Kind())

	assert.Equal(t, 2, loaded.ExecRunCount)
	assert.Equal(t, "abc123", loaded.Digest)
	assert.NotEmpty(t, loaded.Version)
}

func TestLoadSettingsOnlyFallback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	legacy := `{"settings": [{"domain": "com.apple.dock", "key": "tilesize", "original_value": 36}]}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0644))

	snap, err := snapshot.Load(path)
	require.NoError(t, err)

	require.Len(t, snap.Settings, 1)
	require.NotNil(t, snap.Settings[0].OriginalValue)
	assert.True(t, prefs.Integer(36).Equal(*snap.Settings[0].OriginalValue))

	// metadata fields default
	assert.Equal(t, 0, snap.ExecRunCount)
	assert.Empty(t, snap.Digest)
	assert.NotEmpty(t, snap.Version)
}

func TestLoadCorruptSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not_json", content: "not json at all"},
		{name: "wrong_shape", content: `{"something": "else"}`},
		{name: "settings_not_a_list", content: `{"settings": 42}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "snapshot.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			_, err := snapshot.Load(path)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrSnapshotCorrupt))
		})
	}
}

func TestLoadMissingSnapshot(t *testing.T) {
	_, err := snapshot.Load(filepath.Join(t.TempDir(), "snapshot.json"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSnapshotNotFound))
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := snapshot.New(path)
	require.NoError(t, snap.Save())
	require.True(t, snapshot.Exists(path))

	require.NoError(t, snap.Delete())
	assert.False(t, snapshot.Exists(path))
}

func TestLookup(t *testing.T) {
	snap := snapshot.New("")
	snap.Settings = []snapshot.SettingState{
		{Domain: "com.apple.dock", Key: "tilesize", OriginalValue: ptr(prefs.Integer(36))},
		{Domain: "com.apple.dock", Key: "autohide"},
	}

	idx := snap.Lookup()
	require.Len(t, idx, 2)
	entry, ok := idx[[2]string{"com.apple.dock", "tilesize"}]
	require.True(t, ok)
	require.NotNil(t, entry.OriginalValue)
	assert.True(t, prefs.Integer(36).Equal(*entry.OriginalValue))
}

func TestFloatOriginalSurvivesAsFloat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	snap := snapshot.New(path)
	snap.Settings = []snapshot.SettingState{
		{Domain: "d", Key: "whole_float", OriginalValue: ptr(prefs.Float(2.0))},
		{Domain: "d", Key: "integer", OriginalValue: ptr(prefs.Integer(2))},
	}
	require.NoError(t, snap.Save())

	// the on-disk form distinguishes 2.0 from 2
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	loaded, err := snapshot.Load(path)
	require.NoError(t, err)
	assert.Equal(t, prefs.KindFloat, loaded.Settings[0].OriginalValue.Kind())
	assert.Equal(t, prefs.KindInteger, loaded.Settings[1].OriginalValue.Kind())
}
