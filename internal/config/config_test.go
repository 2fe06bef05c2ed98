package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"DATABASE_URL", "DB_USER", "DB_PASSWORD", "DB_HOST", "DB_PORT", "DB_NAME",
		"HTTP_ADDR", "FOLLOWUP_DEFAULT_DELAY_DAYS", "FOLLOWUP_SMS_THRESHOLD_DAYS", "RUN_MIGRATIONS", "SCHEMA_CACHE_SIZE", "QUEUE_DRIVER", "WORKER_HTTP_ADDR"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, ":9091", cfg.WorkerHTTPAddr)
	assert.Equal(t, "postgres://postgres:@localhost:5432/handybob?sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, 3, cfg.DefaultDelayDays)
	assert.Equal(t, 2, cfg.SMSThresholdDays)
	assert.True(t, cfg.RunMigrations)
	assert.Equal(t, QueueMemory, cfg.QueueDriver)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/crm")
	t.Setenv("FOLLOWUP_DEFAULT_DELAY_DAYS", "5")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@db:5432/crm", cfg.DatabaseURL)
	assert.Equal(t, 5, cfg.DefaultDelayDays)
	assert.False(t, cfg.RunMigrations)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("FOLLOWUP_SMS_THRESHOLD_DAYS", "two")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("FOLLOWUP_SMS_THRESHOLD_DAYS", "-1")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("FOLLOWUP_SMS_THRESHOLD_DAYS", "")
	t.Setenv("QUEUE_DRIVER", "kafka")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("HANDYBOB_TEST_KEY=from-file\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HANDYBOB_TEST_KEY") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("HANDYBOB_TEST_KEY"))

	assert.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env")))
}
