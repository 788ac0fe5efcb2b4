package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
invoice:
  outgoing_prefix: "OUT-"
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("AUTH_MODE", "legacy")
	t.Setenv("REDIS_SERVICE_PORT", "6380")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "OUT-", cfg.Invoice.OutgoingPrefix)
	assert.Equal(t, "inv", cfg.Invoice.IncomingPrefix)
	assert.Equal(t, "preserve", cfg.Invoice.IncomingPolicy)
	assert.Equal(t, "legacy", cfg.Auth.Mode)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, time.Hour, cfg.JWT.AccessTTL)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.RefreshTTL)
}

func TestArchiveValidate(t *testing.T) {
	assert.NoError(t, ArchiveConfig{}.Validate())
	assert.Error(t, ArchiveConfig{Enabled: true}.Validate())
	assert.Error(t, ArchiveConfig{Enabled: true, Bucket: "b", AccessKey: "k"}.Validate())
	assert.NoError(t, ArchiveConfig{Enabled: true, Bucket: "b"}.Validate())
}
