package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := Load()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MonitoringPort)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "advisory_db", cfg.Database.Name)
	assert.Equal(t, "test-secret", cfg.JWT.Secret)
	assert.Equal(t, 24, cfg.JWT.ExpirationHours)
	assert.Equal(t, 30, cfg.Lock.StaleAfterMinutes)
	assert.Equal(t, 30*time.Minute, cfg.StaleLockThreshold())
	assert.False(t, cfg.Archive.Enabled)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PORT", "6432")
	t.Setenv("DB_USER", "advisory")
	t.Setenv("DB_NAME", "advisory_prod")
	t.Setenv("LOCK_STALE_AFTER_MINUTES", "45")

	cfg := Load()

	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 6432, cfg.Database.Port)
	assert.Equal(t, "advisory", cfg.Database.User)
	assert.Equal(t, "advisory_prod", cfg.Database.Name)
	assert.Equal(t, 45*time.Minute, cfg.StaleLockThreshold())
}

func TestArchiveEnabledOnlyWithFullCredentials(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ARCHIVE_ACCESS_KEY", "key")
	t.Setenv("ARCHIVE_SECRET_KEY", "secret")

	cfg := Load()
	assert.False(t, cfg.Archive.Enabled, "endpoint and bucket missing")

	t.Setenv("ARCHIVE_ENDPOINT", "https://accountid.r2.cloudflarestorage.com")
	t.Setenv("ARCHIVE_BUCKET", "advisory-snapshots")

	cfg = Load()
	assert.True(t, cfg.Archive.Enabled)
	assert.Equal(t, "advisory-snapshots", cfg.Archive.Bucket)
}
