package initialize

import (
	"path/filepath"
	"testing"

	"github.com/machlit/cutler/pkg/config"
	"github.com/machlit/cutler/pkg/domains"
	"github.com/machlit/cutler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWritesStarterConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cutler", "config.toml")

	result, err := Init(Options{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.NotEmpty(t, cfg.Set)
}

func TestInitRefusesToOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	_, err := Init(Options{ConfigPath: path})
	require.NoError(t, err)

	_, err = Init(Options{ConfigPath: path})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrInvalidInput))

	_, err = Init(Options{ConfigPath: path, Force: true})
	require.NoError(t, err)
}

func TestStarterTemplateCollects(t *testing.T) {
	set, err := domains.Collect(Starter())
	require.NoError(t, err)
	require.NotEmpty(t, set)

	names := make([]string, 0, len(set))
	for _, d := range set {
		names = append(names, d.Name)
	}
	assert.Contains(t, names, "dock")
	assert.Contains(t, names, "finder")
}
