package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.PasswordMinLen)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "port: 9090\ndata_dir: /tmp/notekeep\ntoken_ttl: 30m\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/notekeep", cfg.DataDir)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 6, cfg.PasswordMinLen) // default survives partial files
}

func TestLoadEnvSecretFallback(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.JWTSecret)
}
