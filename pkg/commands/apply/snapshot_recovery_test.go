package apply

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/machlit/cutler/pkg/paths"
	"github.com/machlit/cutler/pkg/prefs"
	"github.com/machlit/cutler/pkg/snapshot"
	"github.com/machlit/cutler/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// An unreadable snapshot must be treated like a corrupt one: the file
// may hold the real originals, so this run captures none instead of
// recording already-managed live values as pre-change state.
func TestApplyUnreadableSnapshotSuppressesCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[set.dock]\ntilesize = 50\n"), 0644))

	st := store.NewMemory()
	st.Seed("com.apple.dock", "tilesize", prefs.Integer(36))

	prev := loadSnapshot
	loadSnapshot = func(string) (*snapshot.Snapshot, error) {
		return nil, errors.New(errors.ErrSnapshotIO, "could not read snapshot")
	}
	t.Cleanup(func() { loadSnapshot = prev })

	result, err := Apply(Options{
		ConfigPath:  path,
		Store:       st,
		Commands:    CommandsOff,
		SkipRestart: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Applied)

	snap, err := snapshot.Load(paths.SnapshotPath(path))
	require.NoError(t, err)
	require.Len(t, snap.Settings, 1)
	assert.Nil(t, snap.Settings[0].OriginalValue)
}

func TestApplyMissingSnapshotStillCapturesOriginals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[set.dock]\ntilesize = 50\n"), 0644))

	st := store.NewMemory()
	st.Seed("com.apple.dock", "tilesize", prefs.Integer(36))

	_, err := Apply(Options{
		ConfigPath:  path,
		Store:       st,
		Commands:    CommandsOff,
		SkipRestart: true,
	})
	require.NoError(t, err)

	snap, err := snapshot.Load(paths.SnapshotPath(path))
	require.NoError(t, err)
	require.Len(t, snap.Settings, 1)
	require.NotNil(t, snap.Settings[0].OriginalValue)
	assert.True(t, prefs.Integer(36).Equal(*snap.Settings[0].OriginalValue))
}
