// ABOUTME: Tests for the charm KV client wrapper
// ABOUTME: Uses the badger-backed test client so no server is needed

package charm

import (
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientGetSetDelete(t *testing.T) {
	c := NewTestClient(t)

	_, err := c.Get([]byte("account:missing"))
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, c.Set([]byte("account:1"), []byte(`{"id":"1"}`)))
	v, err := c.Get([]byte("account:1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"1"}`, string(v))

	require.NoError(t, c.Delete([]byte("account:1")))
	_, err = c.Get([]byte("account:1"))
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestClientKeysWithPrefix(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("account:1"), []byte("a")))
	require.NoError(t, c.Set([]byte("account:2"), []byte("b")))
	require.NoError(t, c.Set([]byte("contact:1"), []byte("c")))

	keys, err := c.KeysWithPrefix([]byte("account:"))
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestClientIsLocal(t *testing.T) {
	c := NewTestClient(t)

	id, err := c.ID()
	require.NoError(t, err)
	assert.Equal(t, "local", id)
	assert.False(t, c.Config().AutoSync)
	assert.NoError(t, c.Sync())
}

func TestLoadConfigDefaults(t *testing.T) {
	origHome := xdg.DataHome
	xdg.DataHome = t.TempDir()
	defer func() { xdg.DataHome = origHome }()
	t.Setenv("CHARM_HOST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.True(t, cfg.AutoSync)

	require.NoError(t, cfg.SetAutoSync(false))
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.AutoSync)

	t.Setenv("CHARM_HOST", "charm.example.com")
	cfg, err = LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "charm.example.com", cfg.Host)
}
