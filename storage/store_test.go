package storage

import (
	"os"
	"path/filepath"
	"testing"

	"udi-review/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOpenPath(t *testing.T) {
	t.Run("creates and connects", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "database.sqlite")
		store := OpenPath(path, zap.NewNop())
		require.True(t, store.Available())
		assert.NotNil(t, store.DB())
		assert.Equal(t, path, store.Path())
	})

	t.Run("failure leaves store unavailable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "missing-dir", "database.sqlite")
		store := OpenPath(path, zap.NewNop())
		assert.False(t, store.Available())
		assert.Nil(t, store.DB())
	})
}

func TestNewUnavailable(t *testing.T) {
	store := NewUnavailable(zap.NewNop())
	assert.False(t, store.Available())
}

func TestSeedWritableCopy(t *testing.T) {
	log := zap.NewNop()

	t.Run("copies when target missing", func(t *testing.T) {
		dir := t.TempDir()
		seed := filepath.Join(dir, "seed.sqlite")
		target := filepath.Join(dir, "writable", "database.sqlite")
		require.NoError(t, os.WriteFile(seed, []byte("seed-content"), 0o644))

		require.NoError(t, seedWritableCopy(seed, target, log))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "seed-content", string(data))
	})

	t.Run("never overwrites existing copy", func(t *testing.T) {
		dir := t.TempDir()
		seed := filepath.Join(dir, "seed.sqlite")
		target := filepath.Join(dir, "database.sqlite")
		require.NoError(t, os.WriteFile(seed, []byte("seed-content"), 0o644))
		require.NoError(t, os.WriteFile(target, []byte("reviewer-data"), 0o644))

		require.NoError(t, seedWritableCopy(seed, target, log))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "reviewer-data", string(data))
	})

	t.Run("idempotent", func(t *testing.T) {
		dir := t.TempDir()
		seed := filepath.Join(dir, "seed.sqlite")
		target := filepath.Join(dir, "database.sqlite")
		require.NoError(t, os.WriteFile(seed, []byte("seed-content"), 0o644))

		require.NoError(t, seedWritableCopy(seed, target, log))
		require.NoError(t, seedWritableCopy(seed, target, log))

		data, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "seed-content", string(data))
	})

	t.Run("missing seed", func(t *testing.T) {
		dir := t.TempDir()
		err := seedWritableCopy(filepath.Join(dir, "nope.sqlite"), filepath.Join(dir, "database.sqlite"), log)
		assert.Error(t, err)
	})
}

func TestOpenDevMode(t *testing.T) {
	cfg := &config.Config{
		AppMode: config.ModeDev,
		DBPath:  filepath.Join(t.TempDir(), "database.sqlite"),
	}
	store := Open(cfg, zap.NewNop())
	assert.True(t, store.Available())
}
