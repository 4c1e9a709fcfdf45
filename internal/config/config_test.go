package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  session_ttl: 45m
log:
  level: debug
postgres:
  url: postgres://quiz@localhost/quiz
quiz:
  leaderboard_size: 5
  admins: [root, alice]
  admin_password: from-file
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "postgres://quiz@localhost/quiz", cfg.Postgres.URL)
	assert.Equal(t, 5, cfg.Quiz.LeaderboardSize)
	assert.Equal(t, []string{"root", "alice"}, cfg.Quiz.Admins)
	assert.Equal(t, 45*time.Minute, Duration(cfg.Server.SessionTTL, time.Hour))
	assert.Equal(t, "quiz_session", cfg.CookieName())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Postgres.URL)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: ["), 0o600))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestDuration(t *testing.T) {
	assert.Equal(t, time.Minute, Duration("", time.Minute))
	assert.Equal(t, time.Minute, Duration("soon", time.Minute))
	assert.Equal(t, 3*time.Second, Duration("3s", time.Minute))
}

func TestAdminPasswordFromEnv(t *testing.T) {
	var cfg Config
	cfg.Quiz.AdminPassword = "from-file"

	t.Setenv("QUIZ_ADMIN_PASSWORD", "")
	assert.Equal(t, "from-file", cfg.AdminPassword())

	t.Setenv("QUIZ_ADMIN_PASSWORD", "from-env")
	assert.Equal(t, "from-env", cfg.AdminPassword())
}
