package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "DEFAULT", cfg.Mongo.Profile)
	assert.NotEmpty(t, cfg.Mongo.ProfilesPath)
	assert.Equal(t, 30*time.Second, cfg.Reports.PipelineTimeout)
	assert.Empty(t, cfg.Reports.SubjectOrderField)
	assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reports.yaml")
	content := `server:
  port: 9090
mongo:
  profile: staging
reports:
  pipeline_timeout: 5s
  subject_order_field: created
log:
  level: debug`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("REPORTS_SERVER_PORT", "9191")
	t.Setenv("REPORTS_RATELIMIT_REQUESTS", "10")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "staging", cfg.Mongo.Profile)
	assert.Equal(t, 5*time.Second, cfg.Reports.PipelineTimeout)
	assert.Equal(t, "created", cfg.Reports.SubjectOrderField)
	assert.Equal(t, 10, cfg.RateLimit.Requests)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	t.Setenv("REPORTS_LOG_LEVEL", "verbose")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid config")
}
