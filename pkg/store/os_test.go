package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/machlit/cutler/pkg/prefs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOSRead(t *testing.T) {
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		require.Equal(t, "defaults", name)
		require.Equal(t, []string{"export", "com.apple.dock", "-"}, args)
		return []byte(dockPlist), nil
	})

	value, ok, err := s.Read("com.apple.dock", "tilesize")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, prefs.Integer(36).Equal(value))

	_, ok, err = s.Read("com.apple.dock", "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOSReadMissingDomainIsAbsent(t *testing.T) {
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		return nil, fmt.Errorf("domain com.apple.nope does not exist")
	})

	_, ok, err := s.Read("com.apple.nope", "key")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOSWriteScalar(t *testing.T) {
	var got []string
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		got = args
		return nil, nil
	})

	require.NoError(t, s.Write("com.apple.dock", "tilesize", prefs.Integer(50)))
	assert.Equal(t, []string{"write", "com.apple.dock", "tilesize", "-int", "50"}, got)
}

func TestOSWriteContainerUsesFragment(t *testing.T) {
	var got []string
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		got = args
		return nil, nil
	})

	require.NoError(t, s.Write("com.apple.finder", "FXInfoPanesExpanded",
		prefs.Dictionary(map[string]prefs.Value{"General": prefs.Boolean(true)})))

	require.Len(t, got, 4)
	assert.Equal(t, "write", got[0])
	assert.Contains(t, got[3], "<dict>")
	assert.Contains(t, got[3], "<key>General</key>")
}

func TestOSDelete(t *testing.T) {
	var got []string
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		got = args
		return nil, nil
	})

	require.NoError(t, s.Delete("com.apple.dock", "tilesize"))
	assert.Equal(t, []string{"delete", "com.apple.dock", "tilesize"}, got)
}

func TestOSListDomains(t *testing.T) {
	s := newOSWithRunner(func(name string, args ...string) ([]byte, error) {
		require.Equal(t, []string{"domains"}, args)
		return []byte("com.apple.dock, com.apple.finder, org.mozilla.firefox\n"), nil
	})

	names, err := s.ListDomains()
	require.NoError(t, err)
	assert.Equal(t, []string{"com.apple.dock", "com.apple.finder", "org.mozilla.firefox"}, names)
}

func TestMemoryStore(t *testing.T) {
	m := NewMemory()
	m.Seed("com.apple.dock", "tilesize", prefs.Integer(36))

	value, ok, err := m.Read("com.apple.dock", "tilesize")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, prefs.Integer(36).Equal(value))

	require.NoError(t, m.Write("com.apple.dock", "tilesize", prefs.Integer(50)))
	value, _, _ = m.Read("com.apple.dock", "tilesize")
	assert.True(t, prefs.Integer(50).Equal(value))

	require.NoError(t, m.Delete("com.apple.dock", "tilesize"))
	_, ok, _ = m.Read("com.apple.dock", "tilesize")
	assert.False(t, ok)

	names, err := m.ListDomains()
	require.NoError(t, err)
	assert.Equal(t, []string{"com.apple.dock"}, names)
}

func TestMemoryWriteErrorInjection(t *testing.T) {
	m := NewMemory()
	m.WriteErr = func(domain, key string) error {
		if strings.HasSuffix(key, "fails") {
			return fmt.Errorf("injected")
		}
		return nil
	}

	assert.Error(t, m.Write("d", "this-fails", prefs.Integer(1)))
	assert.NoError(t, m.Write("d", "ok", prefs.Integer(1)))
}
