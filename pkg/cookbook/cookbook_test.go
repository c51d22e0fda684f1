package cookbook

import (
	"testing"

	"github.com/machlit/cutler/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFindsEveryGuide(t *testing.T) {
	names := List()
	assert.Contains(t, names, "getting-started")
	assert.Contains(t, names, "config-format")
	assert.Contains(t, names, "snapshots")
	assert.IsIncreasing(t, names)
}

func TestRenderKnownGuide(t *testing.T) {
	out, err := Render("getting-started", 80)
	require.NoError(t, err)
	assert.Contains(t, out, "cutler")
}

func TestRenderUnknownGuide(t *testing.T) {
	_, err := Render("no-such-guide", 0)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))
}
