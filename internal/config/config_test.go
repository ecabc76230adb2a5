package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes/internal/config"
	"github.com/aretw0/notes/pkg/core"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvBaseURL, "")
	t.Setenv(config.EnvTimeout, "")
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, path, err := config.Load("", t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, core.RefreshOnSuccess, cfg.Policy())
}

func TestLoad_DiscoversProjectFile(t *testing.T) {
	isolate(t)

	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, config.FileName), []byte(`
base_url: http://notes.internal/api
timeout: 3s
refresh_policy: always
headers:
  Authorization: Bearer abc
inbox:
  pattern: "*.md"
`), 0644))

	cfg, path, err := config.Load("", nested)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, config.FileName), path)
	assert.Equal(t, "http://notes.internal/api", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, core.RefreshAlways, cfg.Policy())
	assert.Equal(t, "Bearer abc", cfg.Headers["Authorization"])
	assert.Equal(t, "*.md", cfg.Inbox.Pattern)
	// Unset keys keep their defaults.
	assert.Equal(t, core.DefaultEventBuffer, cfg.EventBuffer)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)

	file := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(file, []byte("base_url: http://from-file/api\n"), 0644))

	t.Setenv(config.EnvBaseURL, "http://from-env/api")
	t.Setenv(config.EnvTimeout, "250ms")

	cfg, path, err := config.Load(file, "")
	require.NoError(t, err)
	assert.Equal(t, file, path)
	assert.Equal(t, "http://from-env/api", cfg.BaseURL)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeout)
}

func TestLoad_Errors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	t.Run("explicit path missing", func(t *testing.T) {
		_, _, err := config.Load(filepath.Join(dir, "missing.yaml"), "")
		assert.Error(t, err)
	})

	t.Run("bad policy", func(t *testing.T) {
		file := filepath.Join(dir, "policy.yaml")
		require.NoError(t, os.WriteFile(file, []byte("refresh_policy: sometimes\n"), 0644))
		_, _, err := config.Load(file, "")
		assert.Error(t, err)
	})

	t.Run("bad timeout env", func(t *testing.T) {
		t.Setenv(config.EnvTimeout, "soon")
		_, _, err := config.Load("", dir)
		assert.Error(t, err)
	})
}

func TestFindFile_NotFound(t *testing.T) {
	_, err := config.FindFile(t.TempDir(), "definitely-not-here.yaml")
	assert.ErrorIs(t, err, config.ErrNotFound)
}
