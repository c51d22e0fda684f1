package style

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSheetLoads(t *testing.T) {
	require.NoError(t, Load(embeddedSheet))

	for _, name := range []string{"Header", "Domain", "InSync", "Drift", "Missing", "Success", "Error"} {
		assert.Contains(t, Names(), name)
	}
}

func TestGetUnknownNameIsUsable(t *testing.T) {
	st := Get("NoSuchStyle")
	assert.Equal(t, "plain", st.Render("plain"))
}

func TestLoadAppliesDefinitions(t *testing.T) {
	sheet := []byte(`
colors:
  loud:
    light: "#FF0000"
    dark: "#FF4444"
styles:
  Shout:
    bold: true
    foreground: loud
`)
	require.NoError(t, Load(sheet))
	t.Cleanup(func() { _ = Load(embeddedSheet) })

	assert.True(t, Get("Shout").GetBold())
	assert.Contains(t, Names(), "Shout")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	t.Cleanup(func() { _ = Load(embeddedSheet) })
	assert.Error(t, Load([]byte("styles: [not, a, map")))
}
