package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dom/leaderboard-dashboard/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_RequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("LEADERBOARD_CONFIG", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEADERBOARD_CONFIG", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.EntriesPerPage)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Empty(t, cfg.RedisURL)
}

func TestLoad_FileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
port: "9000"
redis_url: redis://cache:6379/0
entries_per_page: 25
cors_origins:
  - https://board.example.com
jwt_secret: from-file
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("LEADERBOARD_CONFIG", path)
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("PORT", "9100")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port, "env overrides file")
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "redis://cache:6379/0", cfg.RedisURL)
	assert.Equal(t, 25, cfg.EntriesPerPage)
	assert.Equal(t, []string{"https://board.example.com"}, cfg.CORSOrigins)
}

func TestLoad_CORSOriginsFromEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEADERBOARD_CONFIG", "")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com ,")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("LEADERBOARD_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := config.Load()
	assert.Error(t, err)
}
