package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "users.bin", cfg.Storage.UsersFile)
	assert.Equal(t, "books.bin", cfg.Storage.BooksFile)
	assert.True(t, cfg.Console.Interactive)
	assert.False(t, cfg.Catalog.MonotonicIDs)
	assert.Equal(t, "error", cfg.Logger.Level)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.yaml")
	body := `
storage:
  users_file: /tmp/u.bin
  books_file: /tmp/b.bin
console:
  interactive: false
catalog:
  monotonic_ids: true
logger:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/u.bin", cfg.Storage.UsersFile)
	assert.Equal(t, "/tmp/b.bin", cfg.Storage.BooksFile)
	assert.False(t, cfg.Console.Interactive)
	assert.True(t, cfg.Catalog.MonotonicIDs)
	assert.Equal(t, "debug", cfg.Logger.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("LIBRARY_STORAGE_BOOKS_FILE", "env-books.bin")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, "env-books.bin", cfg.Storage.BooksFile)
}

func TestLoadRejectsInvalid(t *testing.T) {
	t.Run("bad level", func(t *testing.T) {
		v := New()
		v.Set("logger.level", "verbose")
		_, err := Load(v, "")
		assert.Error(t, err)
	})

	t.Run("file output without filename", func(t *testing.T) {
		v := New()
		v.Set("logger.output", "file")
		_, err := Load(v, "")
		assert.Error(t, err)
	})

	t.Run("same path for both files", func(t *testing.T) {
		v := New()
		v.Set("storage.users_file", "data.bin")
		v.Set("storage.books_file", "data.bin")
		_, err := Load(v, "")
		assert.Error(t, err)
	})

	t.Run("missing config file", func(t *testing.T) {
		_, err := Load(New(), filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
