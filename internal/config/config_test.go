package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	return dir
}

func TestLoadConfig(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "9090"
  mode: "debug"
database:
  path: "`+filepath.Join(t.TempDir(), "data", "test.db")+`"
jwt:
  secret: "short-secret"
  expire_hours: 3
progress:
  storage_key_base: "custom-key"
  history_limit: 10
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3*time.Hour, cfg.JWT.ExpireTime)
	assert.Equal(t, "custom-key", cfg.Progress.StorageKeyBase)
	assert.Equal(t, 10, cfg.Progress.HistoryLimit)

	// SQLite 数据目录自动创建
	_, statErr := os.Stat(filepath.Dir(cfg.Database.Path))
	assert.NoError(t, statErr)
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: "debug"
jwt:
  secret: "short-secret"
  expire_hours: 2
`)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	assert.Equal(t, "my-lms-progress-v2", cfg.Progress.StorageKeyBase)
	assert.Equal(t, 20, cfg.Progress.HistoryLimit)
}

func TestLoadConfigRejectsWeakSecretInRelease(t *testing.T) {
	dir := writeConfig(t, `
server:
  port: "8080"
  mode: "release"
jwt:
  secret: "short"
  expire_hours: 2
`)

	_, err := LoadConfig(dir)
	assert.Error(t, err)
}
