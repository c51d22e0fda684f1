package paths_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/machlit/cutler/pkg/paths"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPathEnvOverride(t *testing.T) {
	t.Setenv(paths.EnvConfigPath, "/tmp/custom/cutler.toml")
	assert.Equal(t, "/tmp/custom/cutler.toml", paths.ConfigPath())
}

func TestConfigPathPrefersExistingCandidate(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(paths.EnvConfigPath, "")

	// Second candidate exists, first does not
	bare := filepath.Join(home, ".config", "cutler.toml")
	require.NoError(t, os.MkdirAll(filepath.Dir(bare), 0755))
	require.NoError(t, os.WriteFile(bare, []byte("lock = false\n"), 0644))

	assert.Equal(t, bare, paths.ConfigPath())
}

func TestConfigPathFallsBackToPreferredLocation(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(paths.EnvConfigPath, "")

	want := filepath.Join(home, ".config", "cutler", "config.toml")
	assert.Equal(t, want, paths.ConfigPath())
}

func TestSnapshotPathIsColocated(t *testing.T) {
	got := paths.SnapshotPath("/home/u/.config/cutler/config.toml")
	assert.Equal(t, "/home/u/.config/cutler/snapshot.json", got)
}
