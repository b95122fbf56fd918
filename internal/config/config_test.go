package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/illmade-knight/contact-sync/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "contactsync.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.BackendMemory, cfg.Store.Backend)
	assert.Equal(t, 100, cfg.Sync.BatchSize)
	assert.Equal(t, "contacts.json", cfg.Source.File)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "sqlite"
sqlite_path = "/tmp/contacts.db"

[sync]
batch_size = 25

[log]
level = "debug"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, "/tmp/contacts.db", cfg.Store.SQLitePath)
	assert.Equal(t, 25, cfg.Sync.BatchSize)
	assert.Equal(t, "debug", cfg.Log.Level)

	t.Setenv("CONTACTSYNC_SYNC_BATCH_SIZE", "50")
	cfg, err = config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Sync.BatchSize)
}

func TestLoad_Invalid(t *testing.T) {
	t.Run("unknown backend", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[store]\nbackend = \"carddav\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown store backend")
	})

	t.Run("zero batch size", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[sync]\nbatch_size = 0\n"))
		require.Error(t, err)
	})

	t.Run("firestore without project", func(t *testing.T) {
		_, err := config.Load(writeConfig(t, "[store]\nbackend = \"firestore\"\n"))
		require.Error(t, err)
	})

	t.Run("explicit missing file", func(t *testing.T) {
		_, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
		require.Error(t, err)
	})
}
