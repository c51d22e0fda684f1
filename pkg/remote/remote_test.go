package remote

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRemoteConfig = `[set.dock]
tilesize = 50

[vars]
hostname = "shared-mini"
`

func serveString(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchValidConfig(t *testing.T) {
	srv := serveString(t, http.StatusOK, validRemoteConfig)

	data, err := Fetch(srv.URL)
	require.NoError(t, err)
	assert.Equal(t, validRemoteConfig, string(data))
}

func TestFetchRejectsInvalidDocument(t *testing.T) {
	srv := serveString(t, http.StatusOK, "<html>not toml</html>")

	_, err := Fetch(srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetchFailed))
}

func TestFetchRejectsUnknownSections(t *testing.T) {
	srv := serveString(t, http.StatusOK, "[nonsense]\nkey = 1\n")

	_, err := Fetch(srv.URL)
	require.Error(t, err)
}

func TestFetchHTTPError(t *testing.T) {
	srv := serveString(t, http.StatusNotFound, "gone")

	_, err := Fetch(srv.URL)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetchFailed))
}

func TestInstallWritesFile(t *testing.T) {
	srv := serveString(t, http.StatusOK, validRemoteConfig)
	path := filepath.Join(t.TempDir(), "cutler", "config.toml")

	require.NoError(t, Install(srv.URL, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, validRemoteConfig, string(data))
}

func TestSyncDisabledLeavesConfigAlone(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[set.dock]\ntilesize = 1\n"), 0644))
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Same(t, cfg, Sync(cfg))
}

func TestSyncRefreshesFromRemote(t *testing.T) {
	srv := serveString(t, http.StatusOK, validRemoteConfig)
	path := filepath.Join(t.TempDir(), "config.toml")
	local := "[remote]\nurl = \"" + srv.URL + "\"\nautosync = true\n"
	require.NoError(t, os.WriteFile(path, []byte(local), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	fresh := Sync(cfg)
	require.NotNil(t, fresh)
	assert.Equal(t, validRemoteConfig, string(fresh.Raw()))
}

func TestSyncFailureFallsBackToLocal(t *testing.T) {
	srv := serveString(t, http.StatusInternalServerError, "boom")
	path := filepath.Join(t.TempDir(), "config.toml")
	local := "[remote]\nurl = \"" + srv.URL + "\"\nautosync = true\n\n[set.dock]\ntilesize = 1\n"
	require.NoError(t, os.WriteFile(path, []byte(local), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Same(t, cfg, Sync(cfg))
}
